package check_slot_conflicts

import (
	"errors"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	"github.com/maktab-crm/schedule-service/internal/service/timetables"
	"github.com/maktab-crm/schedule-service/internal/service/timetables/models"
)

const (
	msgInvalidTemplateID    = "некорректный ID шаблона"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidInput         = "некорректные данные слота"
	msgInvalidTimeRange     = "время начала должно быть раньше времени окончания"
	msgTemplateNotFound     = "шаблон расписания не найден"
	msgClassSubjectNotFound = "связка класс-предмет не найдена"
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

// Handle POST /api/v1/timetables/{timetableId}/slots/check
//
// Предпросмотр конфликтов без записи. Результат справочный: к моменту
// сохранения слота состояние могло измениться, создание перепроверяет
// конфликты под блокировкой.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	templateID, err := handlers.PathInt64(r, "timetableId")
	if err != nil {
		h.logger.Warn("POST /timetables/{id}/slots/check - Invalid template ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTemplateID)
		return
	}

	var req models.SlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /timetables/{id}/slots/check - Invalid request body: template_id=%d: %v", templateID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.CheckSlotConflicts(r.Context(), templateID, &req)
	if err != nil {
		switch {
		case errors.Is(err, timetables.ErrTemplateNotFound):
			h.logger.Warn("POST /timetables/{id}/slots/check - Template not found: template_id=%d", templateID)
			handlers.RespondNotFound(w, msgTemplateNotFound)

		case errors.Is(err, timetables.ErrClassSubjectNotFound):
			h.logger.Warn("POST /timetables/{id}/slots/check - Class subject not found: template_id=%d: %v", templateID, err)
			handlers.RespondNotFound(w, msgClassSubjectNotFound)

		case errors.Is(err, timetables.ErrInvalidTimeRange):
			h.logger.Warn("POST /timetables/{id}/slots/check - Invalid time range: template_id=%d: %v", templateID, err)
			handlers.RespondBadRequest(w, msgInvalidTimeRange)

		case errors.Is(err, timetables.ErrInvalidInput):
			h.logger.Warn("POST /timetables/{id}/slots/check - Invalid input: template_id=%d: %v", templateID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /timetables/{id}/slots/check - Failed to check conflicts: template_id=%d, error=%v", templateID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
