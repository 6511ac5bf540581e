package get_weekly_schedule

import (
	"context"

	"github.com/maktab-crm/schedule-service/internal/service/lessons/models"
)

type LessonService interface {
	GetWeeklySchedule(ctx context.Context, req *models.WeeklyScheduleRequest) (*models.WeeklyScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
