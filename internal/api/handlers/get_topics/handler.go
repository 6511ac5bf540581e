package get_topics

import (
	"errors"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	"github.com/maktab-crm/schedule-service/internal/service/lessons"
)

const (
	msgInvalidTopicID   = "некорректный ID темы"
	msgInvalidSubjectID = "некорректный ID предмета"
	msgInvalidQuarterID = "некорректный ID четверти"
	msgNotFound         = "тема не найдена"
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

// HandleByID GET /api/v1/topics/{topicId}
func (h *Handler) HandleByID(w http.ResponseWriter, r *http.Request) {
	topicID, err := handlers.PathInt64(r, "topicId")
	if err != nil {
		h.logger.Warn("GET /topics/{id} - Invalid topic ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTopicID)
		return
	}

	result, err := h.service.GetTopic(r.Context(), topicID)
	if err != nil {
		switch {
		case errors.Is(err, lessons.ErrTopicNotFound):
			h.logger.Warn("GET /topics/{id} - Topic not found: topic_id=%d", topicID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /topics/{id} - Failed to get topic: topic_id=%d, error=%v", topicID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleList GET /api/v1/subjects/{subjectId}/topics?quarterId=
//
// Темы отдаются в порядке прохождения: по четверти, затем по позиции.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	subjectID, err := handlers.PathInt64(r, "subjectId")
	if err != nil {
		h.logger.Warn("GET /subjects/{id}/topics - Invalid subject ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSubjectID)
		return
	}

	quarterID, err := handlers.QueryInt64(r, "quarterId")
	if err != nil {
		h.logger.Warn("GET /subjects/{id}/topics - Invalid quarterId: subject_id=%d: %v", subjectID, err)
		handlers.RespondBadRequest(w, msgInvalidQuarterID)
		return
	}

	result, err := h.service.ListTopics(r.Context(), subjectID, quarterID)
	if err != nil {
		h.logger.Error("GET /subjects/{id}/topics - Failed to list topics: subject_id=%d, error=%v", subjectID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
