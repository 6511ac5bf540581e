package create_template

import (
	"errors"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	"github.com/maktab-crm/schedule-service/internal/service/timetables"
	"github.com/maktab-crm/schedule-service/internal/service/timetables/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные шаблона"
	msgInvalidDates       = "некорректный диапазон дат действия шаблона"
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

// Handle POST /api/v1/timetables
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTemplateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /timetables - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.CreateTemplate(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, timetables.ErrInvalidTimeRange):
			h.logger.Warn("POST /timetables - Invalid effective dates: branch_id=%d: %v", req.BranchID, err)
			handlers.RespondBadRequest(w, msgInvalidDates)

		case errors.Is(err, timetables.ErrInvalidInput):
			h.logger.Warn("POST /timetables - Invalid input: branch_id=%d: %v", req.BranchID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, timetables.ErrAcademicYearNotFound):
			h.logger.Warn("POST /timetables - Academic year not found: year_id=%d", req.AcademicYearID)
			handlers.RespondNotFound(w, msgYearNotFound)

		default:
			h.logger.Error("POST /timetables - Failed to create template: branch_id=%d, error=%v", req.BranchID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /timetables - Template created: template_id=%d, branch_id=%d", result.ID, result.BranchID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
