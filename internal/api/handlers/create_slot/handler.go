package create_slot

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
	msgRoomNotFound         = "аудитория не найдена"
	msgDuplicateSlot        = "слот для этого класса, дня и номера урока уже существует"
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

// Handle POST /api/v1/timetables/{timetableId}/slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	templateID, err := handlers.PathInt64(r, "timetableId")
	if err != nil {
		h.logger.Warn("POST /timetables/{id}/slots - Invalid template ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTemplateID)
		return
	}

	var req models.SlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /timetables/{id}/slots - Invalid request body: template_id=%d: %v", templateID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.CreateSlot(r.Context(), templateID, &req)
	if err != nil {
		h.respondSlotError(w, "POST /timetables/{id}/slots", templateID, err)
		return
	}

	h.logger.Info("POST /timetables/{id}/slots - Slot created: slot_id=%d, template_id=%d", result.ID, templateID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

// HandleBulk POST /api/v1/timetables/{timetableId}/slots/bulk
//
// Пакетное создание атомарно: конфликт или ошибка любого слота
// откатывает весь пакет.
func (h *Handler) HandleBulk(w http.ResponseWriter, r *http.Request) {
	templateID, err := handlers.PathInt64(r, "timetableId")
	if err != nil {
		h.logger.Warn("POST /timetables/{id}/slots/bulk - Invalid template ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTemplateID)
		return
	}

	var req models.BulkCreateSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /timetables/{id}/slots/bulk - Invalid request body: template_id=%d: %v", templateID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.BulkCreateSlots(r.Context(), templateID, &req)
	if err != nil {
		h.respondSlotError(w, "POST /timetables/{id}/slots/bulk", templateID, err)
		return
	}

	h.logger.Info("POST /timetables/{id}/slots/bulk - Slots created: count=%d, template_id=%d",
		len(result.Slots), templateID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

func (h *Handler) respondSlotError(w http.ResponseWriter, route string, templateID int64, err error) {
	// Конфликт расписания отдаем с деталями: кто занят и когда
	var conflictErr *timetables.ConflictError
	if errors.As(err, &conflictErr) {
		h.logger.Warn("%s - Schedule conflict: template_id=%d: %v", route, templateID, err)
		handlers.RespondJSON(w, http.StatusConflict, models.FromDomainConflicts(conflictErr.Conflicts))
		return
	}

	switch {
	case errors.Is(err, timetables.ErrTemplateNotFound):
		h.logger.Warn("%s - Template not found: template_id=%d", route, templateID)
		handlers.RespondNotFound(w, msgTemplateNotFound)

	case errors.Is(err, timetables.ErrClassSubjectNotFound):
		h.logger.Warn("%s - Class subject not found: template_id=%d: %v", route, templateID, err)
		handlers.RespondNotFound(w, msgClassSubjectNotFound)

	case errors.Is(err, timetables.ErrRoomNotFound):
		h.logger.Warn("%s - Room not found: template_id=%d: %v", route, templateID, err)
		handlers.RespondNotFound(w, msgRoomNotFound)

	case errors.Is(err, timetables.ErrDuplicateSlot):
		h.logger.Warn("%s - Duplicate slot: template_id=%d: %v", route, templateID, err)
		handlers.RespondConflict(w, msgDuplicateSlot)

	case errors.Is(err, timetables.ErrInvalidTimeRange):
		h.logger.Warn("%s - Invalid time range: template_id=%d: %v", route, templateID, err)
		handlers.RespondBadRequest(w, msgInvalidTimeRange)

	case errors.Is(err, timetables.ErrInvalidInput):
		h.logger.Warn("%s - Invalid input: template_id=%d: %v", route, templateID, err)
		handlers.RespondBadRequest(w, msgInvalidInput)

	default:
		h.logger.Error("%s - Failed to create slot: template_id=%d, error=%v", route, templateID, err)
		handlers.RespondInternalError(w)
	}
}
