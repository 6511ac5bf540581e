package get_lessons

import (
	"context"

	"github.com/maktab-crm/schedule-service/internal/service/lessons/models"
)

type LessonService interface {
	GetByID(ctx context.Context, id int64) (*models.LessonResponse, error)
	List(ctx context.Context, req *models.ListLessonsRequest) (*models.LessonListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
