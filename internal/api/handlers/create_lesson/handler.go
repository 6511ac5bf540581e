package create_lesson

import (
	"errors"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	"github.com/maktab-crm/schedule-service/internal/service/lessons"
	"github.com/maktab-crm/schedule-service/internal/service/lessons/models"
	timetablemodels "github.com/maktab-crm/schedule-service/internal/service/timetables/models"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidInput         = "некорректные данные занятия"
	msgInvalidTimeRange     = "время начала должно быть раньше времени окончания"
	msgClassSubjectNotFound = "связка класс-предмет не найдена"
	msgRoomNotFound         = "аудитория не найдена"
	msgTopicNotFound        = "тема не найдена"
	msgDuplicateLesson      = "занятие для этого предмета, даты и номера урока уже существует"
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

// Handle POST /api/v1/lessons
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLessonRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /lessons - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		var conflictErr *lessons.ConflictError
		if errors.As(err, &conflictErr) {
			h.logger.Warn("POST /lessons - Schedule conflict: class_subject_id=%d, date=%s: %v",
				req.ClassSubjectID, req.Date, err)
			handlers.RespondJSON(w, http.StatusConflict, timetablemodels.FromDomainConflicts(conflictErr.Conflicts))
			return
		}

		switch {
		case errors.Is(err, lessons.ErrClassSubjectNotFound):
			h.logger.Warn("POST /lessons - Class subject not found: class_subject_id=%d", req.ClassSubjectID)
			handlers.RespondNotFound(w, msgClassSubjectNotFound)

		case errors.Is(err, lessons.ErrRoomNotFound):
			h.logger.Warn("POST /lessons - Room not found: class_subject_id=%d: %v", req.ClassSubjectID, err)
			handlers.RespondNotFound(w, msgRoomNotFound)

		case errors.Is(err, lessons.ErrTopicNotFound):
			h.logger.Warn("POST /lessons - Topic not found: class_subject_id=%d: %v", req.ClassSubjectID, err)
			handlers.RespondNotFound(w, msgTopicNotFound)

		case errors.Is(err, lessons.ErrDuplicateLesson):
			h.logger.Warn("POST /lessons - Duplicate lesson: class_subject_id=%d, date=%s", req.ClassSubjectID, req.Date)
			handlers.RespondConflict(w, msgDuplicateLesson)

		case errors.Is(err, lessons.ErrInvalidTimeRange):
			h.logger.Warn("POST /lessons - Invalid time range: class_subject_id=%d: %v", req.ClassSubjectID, err)
			handlers.RespondBadRequest(w, msgInvalidTimeRange)

		case errors.Is(err, lessons.ErrInvalidInput):
			h.logger.Warn("POST /lessons - Invalid input: class_subject_id=%d: %v", req.ClassSubjectID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /lessons - Failed to create lesson: class_subject_id=%d, error=%v",
				req.ClassSubjectID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /lessons - Lesson created: lesson_id=%d, class_subject_id=%d, date=%s",
		result.ID, req.ClassSubjectID, req.Date)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
