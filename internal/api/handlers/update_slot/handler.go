package update_slot

import (
	"errors"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	"github.com/maktab-crm/schedule-service/internal/service/timetables"
	"github.com/maktab-crm/schedule-service/internal/service/timetables/models"
)

const (
	msgInvalidSlotID        = "некорректный ID слота"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidInput         = "некорректные данные слота"
	msgInvalidTimeRange     = "время начала должно быть раньше времени окончания"
	msgSlotNotFound         = "слот расписания не найден"
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

// Handle PUT /api/v1/slots/{slotId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := handlers.PathInt64(r, "slotId")
	if err != nil {
		h.logger.Warn("PUT /slots/{id} - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	var req models.SlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /slots/{id} - Invalid request body: slot_id=%d: %v", slotID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateSlot(r.Context(), slotID, &req)
	if err != nil {
		var conflictErr *timetables.ConflictError
		if errors.As(err, &conflictErr) {
			h.logger.Warn("PUT /slots/{id} - Schedule conflict: slot_id=%d: %v", slotID, err)
			handlers.RespondJSON(w, http.StatusConflict, models.FromDomainConflicts(conflictErr.Conflicts))
			return
		}

		switch {
		case errors.Is(err, timetables.ErrSlotNotFound):
			h.logger.Warn("PUT /slots/{id} - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, timetables.ErrClassSubjectNotFound):
			h.logger.Warn("PUT /slots/{id} - Class subject not found: slot_id=%d: %v", slotID, err)
			handlers.RespondNotFound(w, msgClassSubjectNotFound)

		case errors.Is(err, timetables.ErrRoomNotFound):
			h.logger.Warn("PUT /slots/{id} - Room not found: slot_id=%d: %v", slotID, err)
			handlers.RespondNotFound(w, msgRoomNotFound)

		case errors.Is(err, timetables.ErrDuplicateSlot):
			h.logger.Warn("PUT /slots/{id} - Duplicate slot: slot_id=%d: %v", slotID, err)
			handlers.RespondConflict(w, msgDuplicateSlot)

		case errors.Is(err, timetables.ErrInvalidTimeRange):
			h.logger.Warn("PUT /slots/{id} - Invalid time range: slot_id=%d: %v", slotID, err)
			handlers.RespondBadRequest(w, msgInvalidTimeRange)

		case errors.Is(err, timetables.ErrInvalidInput):
			h.logger.Warn("PUT /slots/{id} - Invalid input: slot_id=%d: %v", slotID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("PUT /slots/{id} - Failed to update slot: slot_id=%d, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /slots/{id} - Slot updated: slot_id=%d", slotID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
