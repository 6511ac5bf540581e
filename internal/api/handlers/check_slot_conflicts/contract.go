package check_slot_conflicts

import (
	"context"

	"github.com/maktab-crm/schedule-service/internal/service/timetables/models"
)

type TimetableService interface {
	CheckSlotConflicts(ctx context.Context, timetableID int64, req *models.SlotRequest) (*models.ConflictCheckResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
