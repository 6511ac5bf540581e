package generate_lessons

import (
	"context"

	generateLessons "github.com/maktab-crm/schedule-service/internal/usecase/generate_lessons"
)

type GenerateLessonsUseCase interface {
	Generate(ctx context.Context, req *generateLessons.GenerateRequest) (*generateLessons.GenerateResponse, error)
	GenerateWeek(ctx context.Context, timetableID int64) (*generateLessons.GenerateResponse, error)
	GenerateMonth(ctx context.Context, timetableID int64) (*generateLessons.GenerateResponse, error)
	GenerateQuarter(ctx context.Context, timetableID, quarterID int64) (*generateLessons.GenerateResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
