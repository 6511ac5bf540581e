package update_topic

import (
	"context"

	"github.com/maktab-crm/schedule-service/internal/service/lessons/models"
)

type TopicService interface {
	UpdateTopic(ctx context.Context, id int64, req *models.UpdateTopicRequest) (*models.TopicResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
