package domain

import (
	"time"

	"github.com/maktab-crm/schedule-service/pkg/types"
)

// TimetableTemplate шаблон недельного расписания филиала на учебный год.
// Из него генерируются конкретные занятия (LessonInstance).
// Среди неудаленных шаблонов пары (branch, academic_year) активным может
// быть не более одного.
type TimetableTemplate struct {
	ID             int64
	BranchID       int64
	AcademicYearID int64
	Name           string
	Description    *string
	IsActive       bool

	// Окно действия шаблона; должно лежать внутри границ учебного года
	EffectiveFrom  time.Time
	EffectiveUntil *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsDeleted возвращает true для мягко удаленного шаблона
func (t *TimetableTemplate) IsDeleted() bool {
	return t.DeletedAt != nil
}

// TimetableSlot одна повторяющаяся позиция шаблона: какой класс, по какому
// предмету, с каким учителем, в какой день/урок и в какой аудитории занимается.
// Кортеж (timetable, class, day_of_week, lesson_number) уникален среди
// неудаленных слотов.
type TimetableSlot struct {
	ID             int64
	TimetableID    int64
	ClassID        int64
	ClassSubjectID int64

	// Денормализация из назначения "класс-предмет": детектору конфликтов
	// и отображению не нужны обращения к справочным сервисам
	TeacherID   int64
	TeacherName string
	SubjectID   int64
	SubjectName string
	ClassName   string

	DayOfWeek    DayOfWeek
	LessonNumber int
	StartTime    types.TimeString
	EndTime      types.TimeString

	RoomID   *int64
	RoomName *string

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsDeleted возвращает true для мягко удаленного слота
func (s *TimetableSlot) IsDeleted() bool {
	return s.DeletedAt != nil
}

// HasRoom возвращает true, если слоту назначена аудитория
func (s *TimetableSlot) HasRoom() bool {
	return s.RoomID != nil
}

// TimeRange строка "08:00 - 08:45" для человекочитаемых сообщений
func (s *TimetableSlot) TimeRange() string {
	return s.StartTime.String() + " - " + s.EndTime.String()
}
