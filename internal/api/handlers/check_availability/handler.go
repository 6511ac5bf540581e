package check_availability

import (
	"errors"
	"net/http"

	"github.com/maktab-crm/schedule-service/internal/api/handlers"
	checkAvailability "github.com/maktab-crm/schedule-service/internal/usecase/check_availability"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные параметры проверки"
	msgInvalidTimeRange   = "время начала должно быть раньше времени окончания"
	msgClassNotFound      = "класс не найден"
)

type Handler struct {
	useCase CheckAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase CheckAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/availability/check
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req checkAvailability.CheckRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /availability/check - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Check(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, checkAvailability.ErrInvalidTimeRange):
			h.logger.Warn("POST /availability/check - Invalid time range: class_id=%d: %v", req.ClassID, err)
			handlers.RespondBadRequest(w, msgInvalidTimeRange)

		case errors.Is(err, checkAvailability.ErrInvalidInput):
			h.logger.Warn("POST /availability/check - Invalid input: class_id=%d: %v", req.ClassID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, checkAvailability.ErrClassNotFound):
			h.logger.Warn("POST /availability/check - Class not found: class_id=%d", req.ClassID)
			handlers.RespondNotFound(w, msgClassNotFound)

		default:
			h.logger.Error("POST /availability/check - Failed to check availability: class_id=%d, error=%v",
				req.ClassID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
