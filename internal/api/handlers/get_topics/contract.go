package get_topics

import (
	"context"

	"github.com/maktab-crm/schedule-service/internal/service/lessons/models"
)

type TopicService interface {
	GetTopic(ctx context.Context, id int64) (*models.TopicResponse, error)
	ListTopics(ctx context.Context, subjectID int64, quarterID *int64) (*models.TopicListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
