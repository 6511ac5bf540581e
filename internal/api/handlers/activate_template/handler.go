package activate_template

import (
	"errors"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	"github.com/maktab-crm/schedule-service/internal/service/timetables"
)

const (
	msgInvalidTemplateID = "некорректный ID шаблона"
	msgNotFound          = "шаблон расписания не найден"
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

// HandleActivate POST /api/v1/timetables/{timetableId}/activate
//
// Активация снимает флаг активности с остальных шаблонов той же пары
// филиал + учебный год, активный шаблон всегда один.
func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	templateID, err := handlers.PathInt64(r, "timetableId")
	if err != nil {
		h.logger.Warn("POST /timetables/{id}/activate - Invalid template ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTemplateID)
		return
	}

	result, err := h.service.ActivateTemplate(r.Context(), templateID)
	if err != nil {
		switch {
		case errors.Is(err, timetables.ErrTemplateNotFound):
			h.logger.Warn("POST /timetables/{id}/activate - Template not found: template_id=%d", templateID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("POST /timetables/{id}/activate - Failed to activate: template_id=%d, error=%v", templateID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /timetables/{id}/activate - Template activated: template_id=%d", templateID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleDeactivate POST /api/v1/timetables/{timetableId}/deactivate
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	templateID, err := handlers.PathInt64(r, "timetableId")
	if err != nil {
		h.logger.Warn("POST /timetables/{id}/deactivate - Invalid template ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTemplateID)
		return
	}

	if err := h.service.DeactivateTemplate(r.Context(), templateID); err != nil {
		switch {
		case errors.Is(err, timetables.ErrTemplateNotFound):
			h.logger.Warn("POST /timetables/{id}/deactivate - Template not found: template_id=%d", templateID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("POST /timetables/{id}/deactivate - Failed to deactivate: template_id=%d, error=%v", templateID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /timetables/{id}/deactivate - Template deactivated: template_id=%d", templateID)
	handlers.RespondNoContent(w)
}
