package timetables

import (
	"context"
	"time"

	"github.com/maktab-crm/schedule-service/internal/domain"
	"github.com/maktab-crm/schedule-service/internal/integrations/branchservice"
	"github.com/maktab-crm/schedule-service/internal/integrations/schoolservice"
)

// TimetableRepository интерфейс репозитория шаблонов расписания и слотов
type TimetableRepository interface {
	CreateTemplate(ctx context.Context, template *domain.TimetableTemplate) (*domain.TimetableTemplate, error)
	GetTemplateByID(ctx context.Context, id int64) (*domain.TimetableTemplate, error)
	ListTemplates(ctx context.Context, filter domain.TemplateFilter) ([]*domain.TimetableTemplate, error)
	UpdateTemplate(ctx context.Context, template *domain.TimetableTemplate) error
	SetTemplateActive(ctx context.Context, id int64, active bool) error
	DeactivateOtherTemplates(ctx context.Context, branchID, academicYearID, exceptID int64) error
	SoftDeleteTemplate(ctx context.Context, id int64) error

	CreateSlot(ctx context.Context, slot *domain.TimetableSlot) (*domain.TimetableSlot, error)
	GetSlotByID(ctx context.Context, id int64) (*domain.TimetableSlot, error)
	ListSlotsByTimetable(ctx context.Context, timetableID int64) ([]domain.TimetableSlot, error)
	ListSlotsForConflictCheck(ctx context.Context, timetableID int64, day domain.DayOfWeek) ([]domain.TimetableSlot, error)
	UpdateSlot(ctx context.Context, slot *domain.TimetableSlot) error
	SoftDeleteSlot(ctx context.Context, id int64) error
}

// LessonRepository интерфейс репозитория занятий (каскадная зачистка
// при удалении слота)
type LessonRepository interface {
	SoftDeleteFuturePlannedBySlot(ctx context.Context, slotID int64, from time.Time) (int64, error)
}

// SchoolServiceClient интерфейс клиента для SchoolService
type SchoolServiceClient interface {
	GetClassSubject(ctx context.Context, classSubjectID int64) (*schoolservice.ClassSubject, error)
	GetAcademicYear(ctx context.Context, academicYearID int64) (*schoolservice.AcademicYear, error)
}

// BranchServiceClient интерфейс клиента для BranchService
type BranchServiceClient interface {
	GetRoomWithGracefulDegradation(ctx context.Context, roomID int64) (*branchservice.Room, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (тестируемость)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
