package cancel_lesson

import (
	"context"

	"github.com/maktab-crm/schedule-service/internal/service/lessons/models"
)

type LessonService interface {
	MarkCanceled(ctx context.Context, id int64) (*models.LessonResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
