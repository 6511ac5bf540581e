package get_templates

import (
	"errors"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	"github.com/maktab-crm/schedule-service/internal/service/timetables"
	"github.com/maktab-crm/schedule-service/internal/service/timetables/models"
)

const (
	msgInvalidTemplateID = "некорректный ID шаблона"
	msgInvalidFilter     = "некорректные параметры фильтрации"
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

// HandleByID GET /api/v1/timetables/{timetableId}
func (h *Handler) HandleByID(w http.ResponseWriter, r *http.Request) {
	templateID, err := handlers.PathInt64(r, "timetableId")
	if err != nil {
		h.logger.Warn("GET /timetables/{id} - Invalid template ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTemplateID)
		return
	}

	result, err := h.service.GetTemplate(r.Context(), templateID)
	if err != nil {
		switch {
		case errors.Is(err, timetables.ErrTemplateNotFound):
			h.logger.Warn("GET /timetables/{id} - Template not found: template_id=%d", templateID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /timetables/{id} - Failed to get template: template_id=%d, error=%v", templateID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleList GET /api/v1/timetables?branchId=&academicYearId=&onlyActive=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	branchID, err := handlers.QueryInt64(r, "branchId")
	if err != nil {
		h.logger.Warn("GET /timetables - Invalid branchId: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFilter)
		return
	}

	academicYearID, err := handlers.QueryInt64(r, "academicYearId")
	if err != nil {
		h.logger.Warn("GET /timetables - Invalid academicYearId: %v", err)
		handlers.RespondBadRequest(w, msgInvalidFilter)
		return
	}

	req := &models.ListTemplatesRequest{
		BranchID:       branchID,
		AcademicYearID: academicYearID,
		OnlyActive:     r.URL.Query().Get("onlyActive") == "true",
	}

	result, err := h.service.ListTemplates(r.Context(), req)
	if err != nil {
		h.logger.Error("GET /timetables - Failed to list templates: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
