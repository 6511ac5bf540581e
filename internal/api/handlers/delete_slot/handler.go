package delete_slot

import (
	"errors"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	"github.com/maktab-crm/schedule-service/internal/api/middleware"
	"github.com/maktab-crm/schedule-service/internal/service/timetables"
)

const (
	msgInvalidSlotID = "некорректный ID слота"
	msgNotFound      = "слот расписания не найден"
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

// Handle DELETE /api/v1/slots/{slotId}
//
// Вместе со слотом каскадно зачищаются будущие запланированные занятия,
// сгенерированные из него. Прошедшие и проведенные занятия не трогаются.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := handlers.PathInt64(r, "slotId")
	if err != nil {
		h.logger.Warn("DELETE /slots/{id} - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())

	result, err := h.service.DeleteSlot(r.Context(), slotID)
	if err != nil {
		switch {
		case errors.Is(err, timetables.ErrSlotNotFound):
			h.logger.Warn("DELETE /slots/{id} - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("DELETE /slots/{id} - Failed to delete slot: slot_id=%d, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /slots/{id} - Slot deleted: slot_id=%d, deleted_lessons=%d, user_id=%d",
		slotID, result.DeletedLessons, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
