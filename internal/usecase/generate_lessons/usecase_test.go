package generate_lessons

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktab-crm/schedule-service/internal/domain"
	lessonRepo "github.com/maktab-crm/schedule-service/internal/infra/storage/lesson"
	timetableRepo "github.com/maktab-crm/schedule-service/internal/infra/storage/timetable"
	"github.com/maktab-crm/schedule-service/internal/integrations/branchservice"
	"github.com/maktab-crm/schedule-service/internal/integrations/schoolservice"
	"github.com/maktab-crm/schedule-service/pkg/ptr"
	"github.com/maktab-crm/schedule-service/pkg/types"
)

// Фейки

type fakeTimetableRepo struct {
	templates map[int64]*domain.TimetableTemplate
	slots     map[int64][]domain.TimetableSlot
}

func (f *fakeTimetableRepo) GetTemplateByID(_ context.Context, id int64) (*domain.TimetableTemplate, error) {
	template, ok := f.templates[id]
	if !ok {
		return nil, timetableRepo.ErrTemplateNotFound
	}
	return template, nil
}

func (f *fakeTimetableRepo) ListTemplates(_ context.Context, filter domain.TemplateFilter) ([]*domain.TimetableTemplate, error) {
	var result []*domain.TimetableTemplate
	for _, t := range f.templates {
		if filter.OnlyActive && !t.IsActive {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

func (f *fakeTimetableRepo) ListSlotsByTimetable(_ context.Context, timetableID int64) ([]domain.TimetableSlot, error) {
	return f.slots[timetableID], nil
}

type fakeLessonRepo struct {
	created map[string]*domain.LessonInstance
	nextID  int64
}

func lessonKey(classSubjectID int64, date time.Time, lessonNumber int) string {
	return fmt.Sprintf("%d/%s/%d", classSubjectID, date.Format(domain.DateFormat), lessonNumber)
}

func newFakeLessonRepo() *fakeLessonRepo {
	return &fakeLessonRepo{created: make(map[string]*domain.LessonInstance)}
}

func (f *fakeLessonRepo) Exists(_ context.Context, classSubjectID int64, date time.Time, lessonNumber int) (bool, error) {
	_, ok := f.created[lessonKey(classSubjectID, date, lessonNumber)]
	return ok, nil
}

func (f *fakeLessonRepo) Create(_ context.Context, l *domain.LessonInstance) (*domain.LessonInstance, error) {
	key := lessonKey(l.ClassSubjectID, l.Date, l.LessonNumber)
	if _, ok := f.created[key]; ok {
		return nil, lessonRepo.ErrDuplicateLesson
	}
	f.nextID++
	l.ID = f.nextID
	f.created[key] = l
	return l, nil
}

type fakeBranchClient struct {
	calendar *branchservice.Calendar
	err      error
}

func (f *fakeBranchClient) GetCalendar(_ context.Context, _ int64, _, _ time.Time) (*branchservice.Calendar, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.calendar, nil
}

type fakeSchoolClient struct {
	quarters map[int64]*schoolservice.Quarter
}

func (f *fakeSchoolClient) GetQuarter(_ context.Context, id int64) (*schoolservice.Quarter, error) {
	q, ok := f.quarters[id]
	if !ok {
		return nil, schoolservice.ErrQuarterNotFound
	}
	return q, nil
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Хелперы

func activeTemplate(id, branchID int64) *domain.TimetableTemplate {
	return &domain.TimetableTemplate{
		ID:             id,
		BranchID:       branchID,
		AcademicYearID: 1,
		Name:           "Основное расписание",
		IsActive:       true,
		EffectiveFrom:  time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func mondaySlot(id, timetableID int64) domain.TimetableSlot {
	return domain.TimetableSlot{
		ID:             id,
		TimetableID:    timetableID,
		ClassID:        10,
		ClassSubjectID: 3,
		TeacherID:      100,
		TeacherName:    "Иванова А.П.",
		SubjectID:      7,
		SubjectName:    "Математика",
		ClassName:      "5А",
		DayOfWeek:      domain.Monday,
		LessonNumber:   1,
		StartTime:      types.TimeString("08:00"),
		EndTime:        types.TimeString("08:45"),
	}
}

func weekdayCalendar(holidays ...string) *branchservice.Calendar {
	return &branchservice.Calendar{
		WorkingDays: []string{"monday", "tuesday", "wednesday", "thursday", "friday"},
		Holidays:    holidays,
	}
}

func newUseCase(tr *fakeTimetableRepo, lr *fakeLessonRepo, bc *fakeBranchClient) *UseCase {
	sc := &fakeSchoolClient{quarters: map[int64]*schoolservice.Quarter{
		7: {ID: 7, AcademicYearID: 1, Name: "I четверть", Number: 1, StartDate: "2025-09-01", EndDate: "2025-09-15"},
	}}
	return NewUseCase(tr, lr, bc, sc, fixedTime{time.Date(2025, 8, 31, 12, 0, 0, 0, time.UTC)}, nopLogger{})
}

// Тесты

func TestGenerate_SkipsHolidaysAndNonWorkingDays(t *testing.T) {
	tr := &fakeTimetableRepo{
		templates: map[int64]*domain.TimetableTemplate{1: activeTemplate(1, 5)},
		slots:     map[int64][]domain.TimetableSlot{1: {mondaySlot(11, 1)}},
	}
	lr := newFakeLessonRepo()

	// Понедельники диапазона: 1, 8 и 15 сентября; 8 сентября - праздник
	bc := &fakeBranchClient{calendar: weekdayCalendar("2025-09-08")}

	uc := newUseCase(tr, lr, bc)

	resp, err := uc.Generate(context.Background(), &GenerateRequest{
		TimetableID: 1,
		StartDate:   "2025-09-01",
		EndDate:     "2025-09-15",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Created)
	assert.Equal(t, 0, resp.Skipped)

	_, sep1 := lr.created[lessonKey(3, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), 1)]
	_, sep8 := lr.created[lessonKey(3, time.Date(2025, 9, 8, 0, 0, 0, 0, time.UTC), 1)]
	_, sep15 := lr.created[lessonKey(3, time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC), 1)]
	assert.True(t, sep1)
	assert.False(t, sep8)
	assert.True(t, sep15)
}

func TestGenerate_Idempotent(t *testing.T) {
	tr := &fakeTimetableRepo{
		templates: map[int64]*domain.TimetableTemplate{1: activeTemplate(1, 5)},
		slots:     map[int64][]domain.TimetableSlot{1: {mondaySlot(11, 1)}},
	}
	lr := newFakeLessonRepo()
	bc := &fakeBranchClient{calendar: weekdayCalendar("2025-09-08")}
	uc := newUseCase(tr, lr, bc)

	req := &GenerateRequest{TimetableID: 1, StartDate: "2025-09-01", EndDate: "2025-09-15"}

	first, err := uc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	// Повторный запуск за тот же диапазон ничего не создает
	second, err := uc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Skipped)
	assert.Len(t, lr.created, 2)
}

func TestGenerate_GeneratedLessonCarriesSlotData(t *testing.T) {
	slot := mondaySlot(11, 1)
	roomID := int64(5)
	roomName := "Кабинет 101"
	slot.RoomID = &roomID
	slot.RoomName = &roomName

	tr := &fakeTimetableRepo{
		templates: map[int64]*domain.TimetableTemplate{1: activeTemplate(1, 5)},
		slots:     map[int64][]domain.TimetableSlot{1: {slot}},
	}
	lr := newFakeLessonRepo()
	bc := &fakeBranchClient{calendar: weekdayCalendar()}
	uc := newUseCase(tr, lr, bc)

	_, err := uc.Generate(context.Background(), &GenerateRequest{
		TimetableID: 1,
		StartDate:   "2025-09-01",
		EndDate:     "2025-09-01",
	})
	require.NoError(t, err)

	created, ok := lr.created[lessonKey(3, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), 1)]
	require.True(t, ok)
	assert.Equal(t, domain.LessonStatusPlanned, created.Status)
	assert.True(t, created.IsAutoGenerated)
	require.NotNil(t, created.TimetableSlotID)
	assert.Equal(t, int64(11), *created.TimetableSlotID)
	assert.Equal(t, "Иванова А.П.", created.TeacherName)
	assert.Equal(t, "Математика", created.SubjectName)
	require.NotNil(t, created.RoomName)
	assert.Equal(t, "Кабинет 101", *created.RoomName)
	assert.Equal(t, types.TimeString("08:00"), created.StartTime)
	assert.Equal(t, types.TimeString("08:45"), created.EndTime)
}

func TestGenerate_RespectsEffectiveWindow(t *testing.T) {
	template := activeTemplate(1, 5)
	until := time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC)
	template.EffectiveUntil = &until

	tr := &fakeTimetableRepo{
		templates: map[int64]*domain.TimetableTemplate{1: template},
		slots:     map[int64][]domain.TimetableSlot{1: {mondaySlot(11, 1)}},
	}
	lr := newFakeLessonRepo()
	bc := &fakeBranchClient{calendar: weekdayCalendar()}
	uc := newUseCase(tr, lr, bc)

	// Понедельники 8 и 15 сентября за пределами окна действия шаблона
	resp, err := uc.Generate(context.Background(), &GenerateRequest{
		TimetableID: 1,
		StartDate:   "2025-09-01",
		EndDate:     "2025-09-15",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Created)
}

func TestGenerate_InactiveTemplate(t *testing.T) {
	template := activeTemplate(1, 5)
	template.IsActive = false

	tr := &fakeTimetableRepo{templates: map[int64]*domain.TimetableTemplate{1: template}}
	uc := newUseCase(tr, newFakeLessonRepo(), &fakeBranchClient{calendar: weekdayCalendar()})

	_, err := uc.Generate(context.Background(), &GenerateRequest{
		TimetableID: 1,
		StartDate:   "2025-09-01",
		EndDate:     "2025-09-07",
	})

	assert.ErrorIs(t, err, ErrTemplateNotActive)
}

func TestGenerate_TemplateNotFound(t *testing.T) {
	tr := &fakeTimetableRepo{templates: map[int64]*domain.TimetableTemplate{}}
	uc := newUseCase(tr, newFakeLessonRepo(), &fakeBranchClient{calendar: weekdayCalendar()})

	_, err := uc.Generate(context.Background(), &GenerateRequest{
		TimetableID: 42,
		StartDate:   "2025-09-01",
		EndDate:     "2025-09-07",
	})

	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestGenerate_InvalidDateRange(t *testing.T) {
	tr := &fakeTimetableRepo{templates: map[int64]*domain.TimetableTemplate{1: activeTemplate(1, 5)}}
	uc := newUseCase(tr, newFakeLessonRepo(), &fakeBranchClient{calendar: weekdayCalendar()})

	_, err := uc.Generate(context.Background(), &GenerateRequest{
		TimetableID: 1,
		StartDate:   "2025-09-15",
		EndDate:     "2025-09-01",
	})

	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestGenerate_CalendarUnavailable(t *testing.T) {
	tr := &fakeTimetableRepo{templates: map[int64]*domain.TimetableTemplate{1: activeTemplate(1, 5)}}
	bc := &fakeBranchClient{err: branchservice.ErrInternal}
	uc := newUseCase(tr, newFakeLessonRepo(), bc)

	_, err := uc.Generate(context.Background(), &GenerateRequest{
		TimetableID: 1,
		StartDate:   "2025-09-01",
		EndDate:     "2025-09-07",
	})

	assert.ErrorIs(t, err, ErrCalendarUnavailable)
}

func TestGenerate_ConcurrentDuplicateCountedAsSkipped(t *testing.T) {
	tr := &fakeTimetableRepo{
		templates: map[int64]*domain.TimetableTemplate{1: activeTemplate(1, 5)},
		slots:     map[int64][]domain.TimetableSlot{1: {mondaySlot(11, 1)}},
	}

	// Занятие уже в базе, но Exists его "не видит" - имитация гонки,
	// когда параллельный генератор вставил строку между проверкой и вставкой
	lr := newFakeLessonRepo()
	date := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	lr.created[lessonKey(3, date, 1)] = &domain.LessonInstance{}
	racy := &racyLessonRepo{inner: lr}

	uc := newUseCase(tr, nil, &fakeBranchClient{calendar: weekdayCalendar()})
	uc.lessonRepo = racy

	resp, err := uc.Generate(context.Background(), &GenerateRequest{
		TimetableID: 1,
		StartDate:   "2025-09-01",
		EndDate:     "2025-09-01",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, resp.Created)
	assert.Equal(t, 1, resp.Skipped)
}

// racyLessonRepo всегда отвечает "занятия нет" на Exists, но Create
// натыкается на уникальное ограничение
type racyLessonRepo struct {
	inner *fakeLessonRepo
}

func (r *racyLessonRepo) Exists(context.Context, int64, time.Time, int) (bool, error) {
	return false, nil
}

func (r *racyLessonRepo) Create(ctx context.Context, l *domain.LessonInstance) (*domain.LessonInstance, error) {
	return r.inner.Create(ctx, l)
}

func TestGenerate_NoSlots(t *testing.T) {
	tr := &fakeTimetableRepo{
		templates: map[int64]*domain.TimetableTemplate{1: activeTemplate(1, 5)},
		slots:     map[int64][]domain.TimetableSlot{},
	}
	lr := newFakeLessonRepo()
	uc := newUseCase(tr, lr, &fakeBranchClient{calendar: weekdayCalendar()})

	// Шаблон без слотов - ошибка конфигурации, а не пустой успех
	_, err := uc.Generate(context.Background(), &GenerateRequest{
		TimetableID: 1,
		StartDate:   "2025-09-01",
		EndDate:     "2025-09-15",
	})

	assert.ErrorIs(t, err, ErrNoSlots)
	assert.Empty(t, lr.created)
}

func TestGenerate_SaturdaySlotOutsideWorkingDays(t *testing.T) {
	slot := mondaySlot(11, 1)
	slot.DayOfWeek = domain.Saturday

	tr := &fakeTimetableRepo{
		templates: map[int64]*domain.TimetableTemplate{1: activeTemplate(1, 5)},
		slots:     map[int64][]domain.TimetableSlot{1: {slot}},
	}
	lr := newFakeLessonRepo()
	uc := newUseCase(tr, lr, &fakeBranchClient{calendar: weekdayCalendar()})

	// Слоты есть, но их день не входит в рабочие дни филиала:
	// это легитимный пустой результат, а не ошибка
	resp, err := uc.Generate(context.Background(), &GenerateRequest{
		TimetableID: 1,
		StartDate:   "2025-09-01",
		EndDate:     "2025-09-15",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, resp.Created)
	assert.Equal(t, 0, resp.Skipped)
	assert.Empty(t, resp.Failed)
}

func TestGenerate_SkipExistingFalseReportsFailures(t *testing.T) {
	tr := &fakeTimetableRepo{
		templates: map[int64]*domain.TimetableTemplate{1: activeTemplate(1, 5)},
		slots:     map[int64][]domain.TimetableSlot{1: {mondaySlot(11, 1)}},
	}

	// Занятие на первый понедельник уже в базе
	lr := newFakeLessonRepo()
	lr.created[lessonKey(3, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), 1)] = &domain.LessonInstance{}

	uc := newUseCase(tr, lr, &fakeBranchClient{calendar: weekdayCalendar()})

	resp, err := uc.Generate(context.Background(), &GenerateRequest{
		TimetableID:  1,
		StartDate:    "2025-09-01",
		EndDate:      "2025-09-08",
		SkipExisting: ptr.Ptr(false),
	})

	require.NoError(t, err)
	// Отказ по уникальности не прерывает прогон: второй понедельник создан
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 0, resp.Skipped)
	require.Len(t, resp.Failed, 1)
	assert.Equal(t, "2025-09-01", resp.Failed[0].Date)
	assert.Equal(t, int64(3), resp.Failed[0].ClassSubjectID)
	assert.Equal(t, 1, resp.Failed[0].LessonNumber)
	assert.NotEmpty(t, resp.Failed[0].Reason)
}

func TestGenerateQuarter_UsesQuarterBounds(t *testing.T) {
	tr := &fakeTimetableRepo{
		templates: map[int64]*domain.TimetableTemplate{1: activeTemplate(1, 5)},
		slots:     map[int64][]domain.TimetableSlot{1: {mondaySlot(11, 1)}},
	}
	lr := newFakeLessonRepo()
	uc := newUseCase(tr, lr, &fakeBranchClient{calendar: weekdayCalendar()})

	// Четверть 7: 2025-09-01 .. 2025-09-15, три понедельника
	resp, err := uc.GenerateQuarter(context.Background(), 1, 7)

	require.NoError(t, err)
	assert.Equal(t, 3, resp.Created)
	_, ok := lr.created[lessonKey(3, time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC), 1)]
	assert.True(t, ok)
}

func TestGenerateQuarter_NotFound(t *testing.T) {
	tr := &fakeTimetableRepo{
		templates: map[int64]*domain.TimetableTemplate{1: activeTemplate(1, 5)},
		slots:     map[int64][]domain.TimetableSlot{1: {mondaySlot(11, 1)}},
	}
	uc := newUseCase(tr, newFakeLessonRepo(), &fakeBranchClient{calendar: weekdayCalendar()})

	_, err := uc.GenerateQuarter(context.Background(), 1, 404)

	assert.ErrorIs(t, err, ErrQuarterNotFound)
}

func TestGenerateWeek_RangeIsTomorrowPlusSix(t *testing.T) {
	tr := &fakeTimetableRepo{
		templates: map[int64]*domain.TimetableTemplate{1: activeTemplate(1, 5)},
		slots:     map[int64][]domain.TimetableSlot{1: {mondaySlot(11, 1)}},
	}
	lr := newFakeLessonRepo()
	uc := newUseCase(tr, lr, &fakeBranchClient{calendar: weekdayCalendar()})

	// "Сегодня" 31 августа 2025 (воскресенье): диапазон 1-7 сентября,
	// в нем один понедельник
	resp, err := uc.GenerateWeek(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.Created)
	_, ok := lr.created[lessonKey(3, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), 1)]
	assert.True(t, ok)
}

func TestGenerateWeekForAllActive_SkipsInactive(t *testing.T) {
	inactive := activeTemplate(2, 6)
	inactive.IsActive = false

	tr := &fakeTimetableRepo{
		templates: map[int64]*domain.TimetableTemplate{
			1: activeTemplate(1, 5),
			2: inactive,
		},
		slots: map[int64][]domain.TimetableSlot{
			1: {mondaySlot(11, 1)},
			2: {mondaySlot(21, 2)},
		},
	}
	lr := newFakeLessonRepo()
	uc := newUseCase(tr, lr, &fakeBranchClient{calendar: weekdayCalendar()})

	batch, err := uc.GenerateWeekForAllActive(context.Background())

	require.NoError(t, err)
	require.Len(t, batch.Results, 1)
	assert.Equal(t, int64(1), batch.Results[0].TimetableID)
	assert.Equal(t, 1, batch.TotalCreated)
}
