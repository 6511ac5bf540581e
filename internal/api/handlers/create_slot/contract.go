package create_slot

import (
	"context"

	"github.com/maktab-crm/schedule-service/internal/service/timetables/models"
)

type TimetableService interface {
	CreateSlot(ctx context.Context, timetableID int64, req *models.SlotRequest) (*models.SlotResponse, error)
	BulkCreateSlots(ctx context.Context, timetableID int64, req *models.BulkCreateSlotsRequest) (*models.SlotListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
