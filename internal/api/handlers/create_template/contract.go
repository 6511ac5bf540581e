package create_template

import (
	"context"

	"github.com/maktab-crm/schedule-service/internal/service/timetables/models"
)

type TimetableService interface {
	CreateTemplate(ctx context.Context, req *models.CreateTemplateRequest) (*models.TemplateResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
