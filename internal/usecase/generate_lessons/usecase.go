// Package generate_lessons генерация занятий из недельного шаблона расписания
// за диапазон дат. Операция идемпотентна при skipExisting: повторный запуск
// за тот же диапазон не создает дубликатов и не трогает уже существующие
// занятия.
package generate_lessons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maktab-crm/schedule-service/internal/domain"
	lessonRepo "github.com/maktab-crm/schedule-service/internal/infra/storage/lesson"
	timetableRepo "github.com/maktab-crm/schedule-service/internal/infra/storage/timetable"
	schoolClient "github.com/maktab-crm/schedule-service/internal/integrations/schoolservice"
)

// UseCase генерация занятий из шаблона расписания
type UseCase struct {
	timetableRepo TimetableRepository
	lessonRepo    LessonRepository
	branchClient  BranchServiceClient
	schoolClient  SchoolServiceClient
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр usecase генерации занятий
func NewUseCase(
	timetableRepo TimetableRepository,
	lessonRepo LessonRepository,
	branchClient BranchServiceClient,
	schoolClient SchoolServiceClient,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		timetableRepo: timetableRepo,
		lessonRepo:    lessonRepo,
		branchClient:  branchClient,
		schoolClient:  schoolClient,
		timeProvider:  timeProvider,
		logger:        logger,
	}
}

// Generate генерирует занятия из шаблона за диапазон дат [startDate, endDate].
//
// Слоты шаблона загружаются один раз до прохода: шаблон без слотов - ошибка
// конфигурации, а не пустой успех. Для каждой даты диапазона праздники и
// нерабочие дни недели филиала пропускаются, по остальным берутся слоты
// шаблона на этот день недели. При skipExisting (по умолчанию) занятие
// с существующим ключом (назначение, дата, номер урока) пропускается;
// иначе вставка выполняется всегда, и нарушение уникальности фиксируется
// в списке отказов, не прерывая прогон. Гонка двух параллельных генераций
// разрешается уникальным ограничением в БД тем же способом.
func (uc *UseCase) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		uc.logger.Warn("Generate: invalid date range [%s, %s] for timetable=%d", req.StartDate, req.EndDate, req.TimetableID)
		return nil, err
	}
	skipExisting := req.SkipExisting == nil || *req.SkipExisting

	uc.logger.Info("Generate: generating lessons for timetable=%d, range [%s, %s], skip_existing=%t",
		req.TimetableID, req.StartDate, req.EndDate, skipExisting)

	template, err := uc.timetableRepo.GetTemplateByID(ctx, req.TimetableID)
	if err != nil {
		if errors.Is(err, timetableRepo.ErrTemplateNotFound) {
			uc.logger.Warn("Generate: timetable=%d not found", req.TimetableID)
			return nil, ErrTemplateNotFound
		}
		uc.logger.Error("Generate: repository error for timetable=%d: %v", req.TimetableID, err)
		return nil, fmt.Errorf("%w: Generate - get template: %v", ErrInternal, err)
	}

	if !template.IsActive {
		uc.logger.Warn("Generate: timetable=%d is not active", req.TimetableID)
		return nil, ErrTemplateNotActive
	}

	calendar, err := uc.branchClient.GetCalendar(ctx, template.BranchID, startDate, endDate)
	if err != nil {
		uc.logger.Error("Generate: failed to get calendar for branch=%d: %v", template.BranchID, err)
		return nil, fmt.Errorf("%w: branch=%d: %v", ErrCalendarUnavailable, template.BranchID, err)
	}

	slots, err := uc.timetableRepo.ListSlotsByTimetable(ctx, template.ID)
	if err != nil {
		uc.logger.Error("Generate: failed to list slots for timetable=%d: %v", template.ID, err)
		return nil, fmt.Errorf("%w: Generate - list slots: %v", ErrInternal, err)
	}
	if len(slots) == 0 {
		uc.logger.Warn("Generate: timetable=%d has no slots", template.ID)
		return nil, fmt.Errorf("%w: timetable=%d", ErrNoSlots, template.ID)
	}

	idx := buildCalendarIndex(calendar)
	byDay := slotsByDay(slots)
	resp := &GenerateResponse{TimetableID: template.ID}

	for _, date := range eligibleDates(startDate, endDate, template, idx) {
		daySlots := byDay[domain.DayOfWeekFromDate(date)]
		for i := range daySlots {
			created, failure, err := uc.generateOne(ctx, &daySlots[i], date, skipExisting)
			if err != nil {
				return nil, err
			}
			switch {
			case failure != nil:
				resp.Failed = append(resp.Failed, *failure)
			case created:
				resp.Created++
			default:
				resp.Skipped++
			}
		}
	}

	uc.logger.Info("Generate: timetable=%d done, created=%d, skipped=%d, failed=%d",
		template.ID, resp.Created, resp.Skipped, len(resp.Failed))
	return resp, nil
}

// GenerateWeek генерирует занятия на ближайшую неделю: с завтрашнего дня
// на 7 дней вперед. Регулярный запуск фоновой задачей.
func (uc *UseCase) GenerateWeek(ctx context.Context, timetableID int64) (*GenerateResponse, error) {
	tomorrow := dateOnly(uc.timeProvider.Now()).AddDate(0, 0, 1)
	return uc.Generate(ctx, &GenerateRequest{
		TimetableID: timetableID,
		StartDate:   tomorrow.Format(domain.DateFormat),
		EndDate:     tomorrow.AddDate(0, 0, 6).Format(domain.DateFormat),
	})
}

// GenerateMonth генерирует занятия на следующий календарный месяц
func (uc *UseCase) GenerateMonth(ctx context.Context, timetableID int64) (*GenerateResponse, error) {
	now := dateOnly(uc.timeProvider.Now())
	firstOfNext := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
	lastOfNext := firstOfNext.AddDate(0, 1, -1)

	return uc.Generate(ctx, &GenerateRequest{
		TimetableID: timetableID,
		StartDate:   firstOfNext.Format(domain.DateFormat),
		EndDate:     lastOfNext.Format(domain.DateFormat),
	})
}

// GenerateQuarter генерирует занятия на всю учебную четверть: границы
// [start_date, end_date] берутся из справочника SchoolService
func (uc *UseCase) GenerateQuarter(ctx context.Context, timetableID, quarterID int64) (*GenerateResponse, error) {
	quarter, err := uc.schoolClient.GetQuarter(ctx, quarterID)
	if err != nil {
		if errors.Is(err, schoolClient.ErrQuarterNotFound) {
			uc.logger.Warn("GenerateQuarter: quarter=%d not found", quarterID)
			return nil, ErrQuarterNotFound
		}
		uc.logger.Error("GenerateQuarter: failed to get quarter=%d: %v", quarterID, err)
		return nil, fmt.Errorf("%w: GenerateQuarter - get quarter: %v", ErrInternal, err)
	}

	return uc.Generate(ctx, &GenerateRequest{
		TimetableID: timetableID,
		StartDate:   quarter.StartDate,
		EndDate:     quarter.EndDate,
	})
}

// GenerateWeekForAllActive прогоняет недельную генерацию по всем активным
// шаблонам. Ошибка одного шаблона не останавливает остальные.
func (uc *UseCase) GenerateWeekForAllActive(ctx context.Context) (*BatchGenerateResponse, error) {
	return uc.generateForAllActive(ctx, uc.GenerateWeek)
}

// GenerateMonthForAllActive прогоняет месячную генерацию по всем активным
// шаблонам
func (uc *UseCase) GenerateMonthForAllActive(ctx context.Context) (*BatchGenerateResponse, error) {
	return uc.generateForAllActive(ctx, uc.GenerateMonth)
}

func (uc *UseCase) generateForAllActive(ctx context.Context, generate func(context.Context, int64) (*GenerateResponse, error)) (*BatchGenerateResponse, error) {
	templates, err := uc.timetableRepo.ListTemplates(ctx, domain.TemplateFilter{OnlyActive: true})
	if err != nil {
		uc.logger.Error("generateForAllActive: failed to list active templates: %v", err)
		return nil, fmt.Errorf("%w: generateForAllActive - list templates: %v", ErrInternal, err)
	}

	batch := &BatchGenerateResponse{Results: make([]GenerateResponse, 0, len(templates))}

	for _, template := range templates {
		result, err := generate(ctx, template.ID)
		if err != nil {
			uc.logger.Error("generateForAllActive: timetable=%d failed: %v", template.ID, err)
			continue
		}
		batch.Results = append(batch.Results, *result)
		batch.TotalCreated += result.Created
		batch.TotalSkipped += result.Skipped
	}

	uc.logger.Info("generateForAllActive: processed %d of %d templates, created=%d, skipped=%d",
		len(batch.Results), len(templates), batch.TotalCreated, batch.TotalSkipped)
	return batch, nil
}

// generateOne создает занятие из слота на дату. Возвращает true, если
// занятие создано; отказ по уникальности при skipExisting=false
// возвращается как GenerateFailure, а не ошибка.
func (uc *UseCase) generateOne(ctx context.Context, slot *domain.TimetableSlot, date time.Time, skipExisting bool) (bool, *GenerateFailure, error) {
	if skipExisting {
		exists, err := uc.lessonRepo.Exists(ctx, slot.ClassSubjectID, date, slot.LessonNumber)
		if err != nil {
			uc.logger.Error("generateOne: existence check failed for slot=%d, date=%s: %v",
				slot.ID, date.Format(domain.DateFormat), err)
			return false, nil, fmt.Errorf("%w: generateOne - existence check: %v", ErrInternal, err)
		}
		if exists {
			return false, nil, nil
		}
	}

	if _, err := uc.lessonRepo.Create(ctx, lessonFromSlot(slot, date)); err != nil {
		if errors.Is(err, lessonRepo.ErrDuplicateLesson) {
			if skipExisting {
				// Параллельный генератор успел первым - занятие уже есть
				uc.logger.Info("generateOne: lesson for slot=%d, date=%s already created concurrently",
					slot.ID, date.Format(domain.DateFormat))
				return false, nil, nil
			}
			uc.logger.Warn("generateOne: lesson for slot=%d, date=%s already exists",
				slot.ID, date.Format(domain.DateFormat))
			return false, &GenerateFailure{
				Date:           date.Format(domain.DateFormat),
				ClassSubjectID: slot.ClassSubjectID,
				LessonNumber:   slot.LessonNumber,
				Reason:         "занятие с таким ключом уже существует",
			}, nil
		}
		uc.logger.Error("generateOne: failed to create lesson for slot=%d, date=%s: %v",
			slot.ID, date.Format(domain.DateFormat), err)
		return false, nil, fmt.Errorf("%w: generateOne - create lesson: %v", ErrInternal, err)
	}

	return true, nil, nil
}

func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(domain.DateFormat, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid startDate", ErrInvalidDateRange)
	}
	end, err := time.Parse(domain.DateFormat, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid endDate", ErrInvalidDateRange)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: endDate is before startDate", ErrInvalidDateRange)
	}
	return start, end, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
