package timetables

import (
	"errors"
	"strings"

	"github.com/maktab-crm/schedule-service/internal/domain"
)

var (
	// ErrTemplateNotFound возвращается, когда шаблон расписания не найден
	ErrTemplateNotFound = errors.New("timetable template not found")

	// ErrSlotNotFound возвращается, когда слот расписания не найден
	ErrSlotNotFound = errors.New("timetable slot not found")

	// ErrClassSubjectNotFound возвращается, когда назначение "класс-предмет" не найдено
	ErrClassSubjectNotFound = errors.New("class subject not found")

	// ErrRoomNotFound возвращается, когда аудитория не найдена
	ErrRoomNotFound = errors.New("room not found")

	// ErrAcademicYearNotFound возвращается, когда учебный год не найден
	ErrAcademicYearNotFound = errors.New("academic year not found")

	// ErrDuplicateTemplate возвращается, когда активный шаблон на пару
	// (филиал, учебный год) уже существует
	ErrDuplicateTemplate = errors.New("active template already exists for branch and academic year")

	// ErrDuplicateSlot возвращается, когда слот с таким ключом
	// (шаблон, класс, день, номер урока) уже существует
	ErrDuplicateSlot = errors.New("slot already exists for class, day and lesson number")

	// ErrScheduleConflict возвращается, когда слот пересекается по учителю
	// или аудитории с существующими слотами
	ErrScheduleConflict = errors.New("schedule conflict")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidTimeRange возвращается при некорректном временном диапазоне
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)

// ConflictError ошибка конфликта расписания со списком найденных пересечений.
// Оборачивает ErrScheduleConflict, так что errors.Is(err, ErrScheduleConflict)
// работает, а errors.As достает детали.
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
