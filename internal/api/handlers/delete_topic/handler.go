package delete_topic

import (
	"errors"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	"github.com/maktab-crm/schedule-service/internal/service/lessons"
)

const (
	msgInvalidTopicID = "некорректный ID темы"
	msgNotFound       = "тема не найдена"
)

type Handler struct {
	service TopicService
	logger  Logger
}

func NewHandler(service TopicService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/topics/{topicId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	topicID, err := handlers.PathInt64(r, "topicId")
	if err != nil {
		h.logger.Warn("DELETE /topics/{id} - Invalid topic ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTopicID)
		return
	}

	if err := h.service.DeleteTopic(r.Context(), topicID); err != nil {
		switch {
		case errors.Is(err, lessons.ErrTopicNotFound):
			h.logger.Warn("DELETE /topics/{id} - Topic not found: topic_id=%d", topicID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("DELETE /topics/{id} - Failed to delete topic: topic_id=%d, error=%v", topicID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /topics/{id} - Topic deleted: topic_id=%d", topicID)
	handlers.RespondNoContent(w)
}
