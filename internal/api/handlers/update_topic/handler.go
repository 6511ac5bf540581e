package update_topic

import (
	"errors"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	"github.com/maktab-crm/schedule-service/internal/service/lessons"
	"github.com/maktab-crm/schedule-service/internal/service/lessons/models"
)

const (
	msgInvalidTopicID     = "некорректный ID темы"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные темы"
	msgNotFound           = "тема не найдена"
	msgDuplicateTopic     = "тема с такой позицией уже существует для предмета и четверти"
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

// Handle PATCH /api/v1/topics/{topicId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	topicID, err := handlers.PathInt64(r, "topicId")
	if err != nil {
		h.logger.Warn("PATCH /topics/{id} - Invalid topic ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTopicID)
		return
	}

	var req models.UpdateTopicRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /topics/{id} - Invalid request body: topic_id=%d: %v", topicID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateTopic(r.Context(), topicID, &req)
	if err != nil {
		switch {
		case errors.Is(err, lessons.ErrTopicNotFound):
			h.logger.Warn("PATCH /topics/{id} - Topic not found: topic_id=%d", topicID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, lessons.ErrDuplicateTopic):
			h.logger.Warn("PATCH /topics/{id} - Duplicate topic: topic_id=%d: %v", topicID, err)
			handlers.RespondConflict(w, msgDuplicateTopic)

		case errors.Is(err, lessons.ErrInvalidInput):
			h.logger.Warn("PATCH /topics/{id} - Invalid input: topic_id=%d: %v", topicID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PATCH /topics/{id} - Failed to update topic: topic_id=%d, error=%v", topicID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /topics/{id} - Topic updated: topic_id=%d", topicID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
