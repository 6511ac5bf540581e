package create_topic

import (
	"context"

	"github.com/maktab-crm/schedule-service/internal/service/lessons/models"
)

type TopicService interface {
	CreateTopic(ctx context.Context, req *models.CreateTopicRequest) (*models.TopicResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
