package update_lesson

import (
	"errors"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	"github.com/maktab-crm/schedule-service/internal/service/lessons"
	"github.com/maktab-crm/schedule-service/internal/service/lessons/models"
	timetablemodels "github.com/maktab-crm/schedule-service/internal/service/timetables/models"
)

const (
	msgInvalidLessonID    = "некорректный ID занятия"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные занятия"
	msgInvalidTimeRange   = "время начала должно быть раньше времени окончания"
	msgNotFound           = "занятие не найдено"
	msgRoomNotFound       = "аудитория не найдена"
	msgTopicNotFound      = "тема не найдена"
	msgDuplicateLesson    = "занятие для этого предмета, даты и номера урока уже существует"
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

// Handle PATCH /api/v1/lessons/{lessonId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	lessonID, err := handlers.PathInt64(r, "lessonId")
	if err != nil {
		h.logger.Warn("PATCH /lessons/{id} - Invalid lesson ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidLessonID)
		return
	}

	var req models.UpdateLessonRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /lessons/{id} - Invalid request body: lesson_id=%d: %v", lessonID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), lessonID, &req)
	if err != nil {
		var conflictErr *lessons.ConflictError
		if errors.As(err, &conflictErr) {
			h.logger.Warn("PATCH /lessons/{id} - Schedule conflict: lesson_id=%d: %v", lessonID, err)
			handlers.RespondJSON(w, http.StatusConflict, timetablemodels.FromDomainConflicts(conflictErr.Conflicts))
			return
		}

		switch {
		case errors.Is(err, lessons.ErrLessonNotFound):
			h.logger.Warn("PATCH /lessons/{id} - Lesson not found: lesson_id=%d", lessonID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, lessons.ErrRoomNotFound):
			h.logger.Warn("PATCH /lessons/{id} - Room not found: lesson_id=%d: %v", lessonID, err)
			handlers.RespondNotFound(w, msgRoomNotFound)

		case errors.Is(err, lessons.ErrTopicNotFound):
			h.logger.Warn("PATCH /lessons/{id} - Topic not found: lesson_id=%d: %v", lessonID, err)
			handlers.RespondNotFound(w, msgTopicNotFound)

		case errors.Is(err, lessons.ErrDuplicateLesson):
			h.logger.Warn("PATCH /lessons/{id} - Duplicate lesson: lesson_id=%d: %v", lessonID, err)
			handlers.RespondConflict(w, msgDuplicateLesson)

		case errors.Is(err, lessons.ErrInvalidTimeRange):
			h.logger.Warn("PATCH /lessons/{id} - Invalid time range: lesson_id=%d: %v", lessonID, err)
			handlers.RespondBadRequest(w, msgInvalidTimeRange)

		case errors.Is(err, lessons.ErrInvalidInput):
			h.logger.Warn("PATCH /lessons/{id} - Invalid input: lesson_id=%d: %v", lessonID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PATCH /lessons/{id} - Failed to update lesson: lesson_id=%d, error=%v", lessonID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /lessons/{id} - Lesson updated: lesson_id=%d", lessonID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
