package lessons

import (
	"context"
	"time"

	"github.com/maktab-crm/schedule-service/internal/domain"
	"github.com/maktab-crm/schedule-service/internal/integrations/branchservice"
	"github.com/maktab-crm/schedule-service/internal/integrations/schoolservice"
)

// LessonRepository интерфейс репозитория занятий
type LessonRepository interface {
	Create(ctx context.Context, lesson *domain.LessonInstance) (*domain.LessonInstance, error)
	GetByID(ctx context.Context, id int64) (*domain.LessonInstance, error)
	ListByFilter(ctx context.Context, filter domain.LessonFilter) ([]domain.LessonInstance, error)
	ListForConflictCheck(ctx context.Context, date time.Time, teacherID int64, roomID *int64) ([]domain.LessonInstance, error)
	Update(ctx context.Context, lesson *domain.LessonInstance) error
	UpdateStatus(ctx context.Context, id int64, status domain.LessonStatus) error
	SoftDelete(ctx context.Context, id int64) error
}

// TopicRepository интерфейс репозитория тем календарно-тематического плана
type TopicRepository interface {
	Create(ctx context.Context, topic *domain.LessonTopic) (*domain.LessonTopic, error)
	GetByID(ctx context.Context, id int64) (*domain.LessonTopic, error)
	ListBySubject(ctx context.Context, subjectID int64, quarterID *int64) ([]domain.LessonTopic, error)
	Update(ctx context.Context, topic *domain.LessonTopic) error
	SoftDelete(ctx context.Context, id int64) error
}

// SchoolServiceClient интерфейс клиента для SchoolService
type SchoolServiceClient interface {
	GetClassSubject(ctx context.Context, classSubjectID int64) (*schoolservice.ClassSubject, error)
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
