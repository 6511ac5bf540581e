package complete_lesson

import (
	"errors"
	"io"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	"github.com/maktab-crm/schedule-service/internal/service/lessons"
	"github.com/maktab-crm/schedule-service/internal/service/lessons/models"
)

const (
	msgInvalidLessonID    = "некорректный ID занятия"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные занятия"
	msgNotFound           = "занятие не найдено"
	msgTopicNotFound      = "тема не найдена"
	msgCannotComplete     = "занятие нельзя отметить проведенным в текущем статусе"
)

type Handler struct {
	service LessonService
	logger  Logger
}

func NewHandler(service LessonService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/lessons/{lessonId}/complete
//
// Тело опционально: без него занятие просто переводится в completed.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	lessonID, err := handlers.PathInt64(r, "lessonId")
	if err != nil {
		h.logger.Warn("POST /lessons/{id}/complete - Invalid lesson ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidLessonID)
		return
	}

	var req models.CompleteLessonRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("POST /lessons/{id}/complete - Invalid request body: lesson_id=%d: %v", lessonID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.MarkCompleted(r.Context(), lessonID, &req)
	if err != nil {
		switch {
		case errors.Is(err, lessons.ErrLessonNotFound):
			h.logger.Warn("POST /lessons/{id}/complete - Lesson not found: lesson_id=%d", lessonID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, lessons.ErrTopicNotFound):
			h.logger.Warn("POST /lessons/{id}/complete - Topic not found: lesson_id=%d: %v", lessonID, err)
			handlers.RespondNotFound(w, msgTopicNotFound)

		case errors.Is(err, lessons.ErrCannotComplete):
			h.logger.Warn("POST /lessons/{id}/complete - Cannot complete: lesson_id=%d: %v", lessonID, err)
			handlers.RespondConflict(w, msgCannotComplete)

		case errors.Is(err, lessons.ErrInvalidInput):
			h.logger.Warn("POST /lessons/{id}/complete - Invalid input: lesson_id=%d: %v", lessonID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /lessons/{id}/complete - Failed to complete lesson: lesson_id=%d, error=%v", lessonID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /lessons/{id}/complete - Lesson completed: lesson_id=%d", lessonID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
