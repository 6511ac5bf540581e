package get_weekly_schedule

import (
	"errors"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	"github.com/maktab-crm/schedule-service/internal/service/lessons"
	"github.com/maktab-crm/schedule-service/internal/service/lessons/models"
)

const (
	msgInvalidClassID   = "некорректный ID класса"
	msgInvalidWeekStart = "некорректная дата недели, ожидается YYYY-MM-DD"
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

// Handle GET /api/v1/classes/{classId}/schedule/weekly?weekStart=2025-09-01
//
// weekStart может быть любым днем недели, он нормализуется к понедельнику.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	classID, err := handlers.PathInt64(r, "classId")
	if err != nil {
		h.logger.Warn("GET /classes/{id}/schedule/weekly - Invalid class ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidClassID)
		return
	}

	weekStart := r.URL.Query().Get("weekStart")
	if weekStart == "" {
		h.logger.Warn("GET /classes/{id}/schedule/weekly - Missing weekStart: class_id=%d", classID)
		handlers.RespondBadRequest(w, msgInvalidWeekStart)
		return
	}

	req := &models.WeeklyScheduleRequest{
		ClassID:   classID,
		WeekStart: weekStart,
	}

	result, err := h.service.GetWeeklySchedule(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, lessons.ErrInvalidInput):
			h.logger.Warn("GET /classes/{id}/schedule/weekly - Invalid weekStart: class_id=%d, weekStart=%s",
				classID, weekStart)
			handlers.RespondBadRequest(w, msgInvalidWeekStart)

		default:
			h.logger.Error("GET /classes/{id}/schedule/weekly - Failed to get schedule: class_id=%d, error=%v",
				classID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
