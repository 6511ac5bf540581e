package delete_slot

import (
	"context"

	"github.com/maktab-crm/schedule-service/internal/service/timetables/models"
)

type TimetableService interface {
	DeleteSlot(ctx context.Context, slotID int64) (*models.DeleteSlotResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
