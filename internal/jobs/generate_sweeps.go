package jobs

import (
	"context"
	"time"

	generateLessons "github.com/maktab-crm/schedule-service/internal/usecase/generate_lessons"
)

type LessonGenerator interface {
	GenerateWeekForAllActive(ctx context.Context) (*generateLessons.BatchGenerateResponse, error)
	GenerateMonthForAllActive(ctx context.Context) (*generateLessons.BatchGenerateResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// StartGenerateSweeps регистрирует периодическую догенерацию занятий.
// Недельная подметалка страхует от дыр в расписании между ручными запусками,
// месячная заранее раскатывает следующий месяц. Генерация идемпотентна,
// поэтому пересечение запусков безопасно.
func StartGenerateSweeps(runner *Runner, generator LessonGenerator, weekInterval, monthInterval time.Duration, logger Logger) {
	runner.Every(weekInterval, "generate_week", func(ctx context.Context) error {
		result, err := generator.GenerateWeekForAllActive(ctx)
		if err != nil {
			logger.Error("jobs: weekly lesson sweep failed: %v", err)
			return err
		}
		logger.Info("jobs: weekly lesson sweep done: templates=%d, created=%d, skipped=%d",
			len(result.Results), result.TotalCreated, result.TotalSkipped)
		return nil
	})

	runner.Every(monthInterval, "generate_month", func(ctx context.Context) error {
		result, err := generator.GenerateMonthForAllActive(ctx)
		if err != nil {
			logger.Error("jobs: monthly lesson sweep failed: %v", err)
			return err
		}
		logger.Info("jobs: monthly lesson sweep done: templates=%d, created=%d, skipped=%d",
			len(result.Results), result.TotalCreated, result.TotalSkipped)
		return nil
	})
}
