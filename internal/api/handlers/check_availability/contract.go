package check_availability

import (
	"context"

	checkAvailability "github.com/maktab-crm/schedule-service/internal/usecase/check_availability"
)

type CheckAvailabilityUseCase interface {
	Check(ctx context.Context, req *checkAvailability.CheckRequest) (*checkAvailability.CheckResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
