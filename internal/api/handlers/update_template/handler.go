package update_template

import (
	"errors"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	"github.com/maktab-crm/schedule-service/internal/service/timetables"
	"github.com/maktab-crm/schedule-service/internal/service/timetables/models"
)

const (
	msgInvalidTemplateID  = "некорректный ID шаблона"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные шаблона"
	msgInvalidDates       = "некорректный диапазон дат действия шаблона"
	msgNotFound           = "шаблон расписания не найден"
	msgYearNotFound       = "учебный год не найден"
)

type Handler struct {
	service TimetableService
	logger  Logger
}

func NewHandler(service TimetableService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/timetables/{timetableId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	templateID, err := handlers.PathInt64(r, "timetableId")
	if err != nil {
		h.logger.Warn("PUT /timetables/{id} - Invalid template ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTemplateID)
		return
	}

	var req models.UpdateTemplateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /timetables/{id} - Invalid request body: template_id=%d: %v", templateID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateTemplate(r.Context(), templateID, &req)
	if err != nil {
		switch {
		case errors.Is(err, timetables.ErrTemplateNotFound):
			h.logger.Warn("PUT /timetables/{id} - Template not found: template_id=%d", templateID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, timetables.ErrInvalidTimeRange):
			h.logger.Warn("PUT /timetables/{id} - Invalid effective dates: template_id=%d: %v", templateID, err)
			handlers.RespondBadRequest(w, msgInvalidDates)

		case errors.Is(err, timetables.ErrInvalidInput):
			h.logger.Warn("PUT /timetables/{id} - Invalid input: template_id=%d: %v", templateID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, timetables.ErrAcademicYearNotFound):
			h.logger.Warn("PUT /timetables/{id} - Academic year not found: template_id=%d", templateID)
			handlers.RespondNotFound(w, msgYearNotFound)

		default:
			h.logger.Error("PUT /timetables/{id} - Failed to update template: template_id=%d, error=%v", templateID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /timetables/{id} - Template updated: template_id=%d", templateID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
