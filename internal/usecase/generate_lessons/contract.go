package generate_lessons

import (
	"context"
	"time"

	"github.com/maktab-crm/schedule-service/internal/domain"
	"github.com/maktab-crm/schedule-service/internal/integrations/branchservice"
	"github.com/maktab-crm/schedule-service/internal/integrations/schoolservice"
)

// TimetableRepository интерфейс репозитория шаблонов расписания
type TimetableRepository interface {
	GetTemplateByID(ctx context.Context, id int64) (*domain.TimetableTemplate, error)
	ListTemplates(ctx context.Context, filter domain.TemplateFilter) ([]*domain.TimetableTemplate, error)
	ListSlotsByTimetable(ctx context.Context, timetableID int64) ([]domain.TimetableSlot, error)
}

// LessonRepository интерфейс репозитория занятий
type LessonRepository interface {
	Exists(ctx context.Context, classSubjectID int64, date time.Time, lessonNumber int) (bool, error)
	Create(ctx context.Context, lesson *domain.LessonInstance) (*domain.LessonInstance, error)
}

// BranchServiceClient интерфейс клиента для BranchService
type BranchServiceClient interface {
	GetCalendar(ctx context.Context, branchID int64, from, to time.Time) (*branchservice.Calendar, error)
}

// SchoolServiceClient интерфейс клиента для SchoolService (границы четверти)
type SchoolServiceClient interface {
	GetQuarter(ctx context.Context, quarterID int64) (*schoolservice.Quarter, error)
}

// TimeProvider интерфейс для получения текущего времени (тестируемость)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реализация TimeProvider на системных часах
type RealTimeProvider struct{}

func (RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
