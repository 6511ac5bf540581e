package cancel_lesson

import (
	"errors"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	"github.com/maktab-crm/schedule-service/internal/api/middleware"
	"github.com/maktab-crm/schedule-service/internal/service/lessons"
)

const (
	msgInvalidLessonID = "некорректный ID занятия"
	msgNotFound        = "занятие не найдено"
	msgCannotCancel    = "занятие нельзя отменить в текущем статусе"
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

// Handle POST /api/v1/lessons/{lessonId}/cancel
//
// Отмененное занятие перестает держать время учителя и аудитории.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	lessonID, err := handlers.PathInt64(r, "lessonId")
	if err != nil {
		h.logger.Warn("POST /lessons/{id}/cancel - Invalid lesson ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidLessonID)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())

	result, err := h.service.MarkCanceled(r.Context(), lessonID)
	if err != nil {
		switch {
		case errors.Is(err, lessons.ErrLessonNotFound):
			h.logger.Warn("POST /lessons/{id}/cancel - Lesson not found: lesson_id=%d", lessonID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, lessons.ErrCannotCancel):
			h.logger.Warn("POST /lessons/{id}/cancel - Cannot cancel: lesson_id=%d: %v", lessonID, err)
			handlers.RespondConflict(w, msgCannotCancel)

		default:
			h.logger.Error("POST /lessons/{id}/cancel - Failed to cancel lesson: lesson_id=%d, error=%v", lessonID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /lessons/{id}/cancel - Lesson canceled: lesson_id=%d, user_id=%d", lessonID, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
