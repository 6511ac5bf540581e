package get_templates

import (
	"context"

	"github.com/maktab-crm/schedule-service/internal/service/timetables/models"
)

type TimetableService interface {
	GetTemplate(ctx context.Context, id int64) (*models.TemplateResponse, error)
	ListTemplates(ctx context.Context, req *models.ListTemplatesRequest) (*models.TemplateListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
