package lessons

import (
	"errors"
	"strings"

	"github.com/maktab-crm/schedule-service/internal/domain"
)

var (
	// ErrLessonNotFound возвращается, когда занятие не найдено
	ErrLessonNotFound = errors.New("lesson not found")

	// ErrTopicNotFound возвращается, когда тема не найдена
	ErrTopicNotFound = errors.New("lesson topic not found")

	// ErrClassSubjectNotFound возвращается, когда назначение "класс-предмет" не найдено
	ErrClassSubjectNotFound = errors.New("class subject not found")

	// ErrRoomNotFound возвращается, когда аудитория не найдена
	ErrRoomNotFound = errors.New("room not found")

	// ErrDuplicateLesson возвращается, когда занятие с таким ключом
	// (назначение, дата, номер урока) уже существует
	ErrDuplicateLesson = errors.New("lesson already exists for class subject, date and lesson number")

	// ErrDuplicateTopic возвращается, когда тема с такой позицией уже существует
	ErrDuplicateTopic = errors.New("topic already exists for subject, quarter and position")

	// ErrScheduleConflict возвращается, когда занятие пересекается по учителю
	// или аудитории с существующими занятиями
	ErrScheduleConflict = errors.New("schedule conflict")

	// ErrCannotComplete возвращается, когда занятие нельзя отметить проведенным
	ErrCannotComplete = errors.New("lesson cannot be completed")

	// ErrCannotCancel возвращается, когда занятие нельзя отменить
	ErrCannotCancel = errors.New("lesson cannot be cancelled")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidTimeRange возвращается при некорректном временном диапазоне
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)

// ConflictError ошибка конфликта расписания со списком найденных пересечений.
// Оборачивает ErrScheduleConflict.
type ConflictError struct {
	Conflicts []domain.Conflict
}

func (e *ConflictError) Error() string {
	messages := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		messages[i] = c.Message
	}
	return "schedule conflict: " + strings.Join(messages, "; ")
}

func (e *ConflictError) Unwrap() error {
	return ErrScheduleConflict
}
