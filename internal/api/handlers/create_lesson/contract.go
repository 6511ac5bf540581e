package create_lesson

import (
	"context"

	"github.com/maktab-crm/schedule-service/internal/service/lessons/models"
)

type LessonService interface {
	Create(ctx context.Context, req *models.CreateLessonRequest) (*models.LessonResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
