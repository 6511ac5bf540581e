package create_topic

import (
	"errors"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	"github.com/maktab-crm/schedule-service/internal/service/lessons"
	"github.com/maktab-crm/schedule-service/internal/service/lessons/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные темы"
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

// Handle POST /api/v1/topics
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTopicRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /topics - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.CreateTopic(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, lessons.ErrDuplicateTopic):
			h.logger.Warn("POST /topics - Duplicate topic: subject_id=%d, position=%d", req.SubjectID, req.Position)
			handlers.RespondConflict(w, msgDuplicateTopic)

		case errors.Is(err, lessons.ErrInvalidInput):
			h.logger.Warn("POST /topics - Invalid input: subject_id=%d: %v", req.SubjectID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /topics - Failed to create topic: subject_id=%d, error=%v", req.SubjectID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /topics - Topic created: topic_id=%d, subject_id=%d", result.ID, req.SubjectID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
