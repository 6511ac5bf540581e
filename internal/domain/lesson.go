package domain

import (
	"time"

	"github.com/maktab-crm/schedule-service/pkg/types"
)

// LessonStatus статус занятия
type LessonStatus string

const (
	LessonStatusPlanned    LessonStatus = "planned"
	LessonStatusInProgress LessonStatus = "in_progress"
	LessonStatusCompleted  LessonStatus = "completed"
	LessonStatusCanceled   LessonStatus = "canceled"
)

// AllLessonStatuses все статусы занятий
var AllLessonStatuses = []LessonStatus{
	LessonStatusPlanned,
	LessonStatusInProgress,
	LessonStatusCompleted,
	LessonStatusCanceled,
}

// IsValid возвращает true для значения из перечисления
func (s LessonStatus) IsValid() bool {
	for _, valid := range AllLessonStatuses {
		if s == valid {
			return true
		}
	}
	return false
}

// LessonInstance конкретное занятие в конкретную дату. Появляется либо из
// генератора (IsAutoGenerated=true, TimetableSlotID указывает на слот-источник),
// либо руками. Кортеж (class_subject, date, lesson_number) уникален среди
// неудаленных занятий.
type LessonInstance struct {
	ID             int64
	ClassSubjectID int64

	// Денормализация из назначения "класс-предмет", см. TimetableSlot
	TeacherID   int64
	TeacherName string
	SubjectID   int64
	SubjectName string
	ClassID     int64
	ClassName   string

	Date         time.Time
	LessonNumber int
	StartTime    types.TimeString
	EndTime      types.TimeString

	RoomID   *int64
	RoomName *string

	TopicID      *int64
	Homework     *string
	TeacherNotes *string

	Status LessonStatus

	// Связь с шаблоном: занятия с IsAutoGenerated=true каскадно зачищаются
	// при удалении слота-источника
	IsAutoGenerated bool
	TimetableSlotID *int64

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsDeleted возвращает true для мягко удаленного занятия
func (l *LessonInstance) IsDeleted() bool {
	return l.DeletedAt != nil
}

// HasRoom возвращает true, если занятию назначена аудитория
func (l *LessonInstance) HasRoom() bool {
	return l.RoomID != nil
}

// IsPlanned возвращает true для еще не начатого занятия
func (l *LessonInstance) IsPlanned() bool {
	return l.Status == LessonStatusPlanned
}

// IsCanceled возвращает true для отмененного занятия
func (l *LessonInstance) IsCanceled() bool {
	return l.Status == LessonStatusCanceled
}

// CanBeCompleted можно ли отметить занятие проведенным
func (l *LessonInstance) CanBeCompleted() bool {
	return l.Status == LessonStatusPlanned || l.Status == LessonStatusInProgress
}

// CanBeCancelled можно ли отменить занятие
func (l *LessonInstance) CanBeCancelled() bool {
	return l.Status == LessonStatusPlanned || l.Status == LessonStatusInProgress
}

// IsFuture занятие на дату строго позже now (по дате, без учета времени)
func (l *LessonInstance) IsFuture(now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return l.Date.After(today)
}

// TimeRange строка "08:00 - 08:45" для человекочитаемых сообщений
func (l *LessonInstance) TimeRange() string {
	return l.StartTime.String() + " - " + l.EndTime.String()
}
