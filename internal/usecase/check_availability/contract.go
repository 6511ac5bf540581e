package check_availability

import (
	"context"

	"github.com/maktab-crm/schedule-service/internal/domain"
	"github.com/maktab-crm/schedule-service/internal/integrations/branchservice"
	"github.com/maktab-crm/schedule-service/internal/integrations/schoolservice"
)

// LessonRepository интерфейс репозитория занятий
type LessonRepository interface {
	ListByFilter(ctx context.Context, filter domain.LessonFilter) ([]domain.LessonInstance, error)
}

// SchoolServiceClient интерфейс клиента для SchoolService (класс и его
// назначения "класс-предмет-учитель")
type SchoolServiceClient interface {
	GetClass(ctx context.Context, classID int64) (*schoolservice.Class, error)
	ListClassSubjects(ctx context.Context, classID int64) ([]schoolservice.ClassSubject, error)
}

// BranchServiceClient интерфейс клиента для BranchService (аудитории филиала)
type BranchServiceClient interface {
	ListRooms(ctx context.Context, branchID int64) ([]branchservice.Room, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
