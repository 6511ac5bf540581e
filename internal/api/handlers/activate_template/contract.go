package activate_template

import (
	"context"

	"github.com/maktab-crm/schedule-service/internal/service/timetables/models"
)

type TimetableService interface {
	ActivateTemplate(ctx context.Context, id int64) (*models.TemplateResponse, error)
	DeactivateTemplate(ctx context.Context, id int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
