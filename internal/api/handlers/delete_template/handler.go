package delete_template

import (
	"errors"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	"github.com/maktab-crm/schedule-service/internal/api/middleware"
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

// Handle DELETE /api/v1/timetables/{timetableId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	templateID, err := handlers.PathInt64(r, "timetableId")
	if err != nil {
		h.logger.Warn("DELETE /timetables/{id} - Invalid template ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTemplateID)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())

	if err := h.service.DeleteTemplate(r.Context(), templateID); err != nil {
		switch {
		case errors.Is(err, timetables.ErrTemplateNotFound):
			h.logger.Warn("DELETE /timetables/{id} - Template not found: template_id=%d", templateID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("DELETE /timetables/{id} - Failed to delete template: template_id=%d, error=%v", templateID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /timetables/{id} - Template deleted: template_id=%d, user_id=%d", templateID, userID)
	handlers.RespondNoContent(w)
}
