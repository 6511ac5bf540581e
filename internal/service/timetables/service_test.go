package timetables

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktab-crm/schedule-service/internal/domain"
	timetableRepo "github.com/maktab-crm/schedule-service/internal/infra/storage/timetable"
	"github.com/maktab-crm/schedule-service/internal/integrations/branchservice"
	"github.com/maktab-crm/schedule-service/internal/integrations/schoolservice"
	"github.com/maktab-crm/schedule-service/internal/service/timetables/models"
	"github.com/maktab-crm/schedule-service/pkg/ptr"
)

// Фейки

type fakeTimetableRepo struct {
	templates      map[int64]*domain.TimetableTemplate
	slots          map[int64]*domain.TimetableSlot
	nextTemplateID int64
	nextSlotID     int64
}

func newFakeTimetableRepo() *fakeTimetableRepo {
	return &fakeTimetableRepo{
		templates: make(map[int64]*domain.TimetableTemplate),
		slots:     make(map[int64]*domain.TimetableSlot),
	}
}

func (f *fakeTimetableRepo) CreateTemplate(_ context.Context, template *domain.TimetableTemplate) (*domain.TimetableTemplate, error) {
	f.nextTemplateID++
	t := *template
	t.ID = f.nextTemplateID
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	f.templates[t.ID] = &t
	result := t
	return &result, nil
}

func (f *fakeTimetableRepo) GetTemplateByID(_ context.Context, id int64) (*domain.TimetableTemplate, error) {
	t, ok := f.templates[id]
	if !ok || t.IsDeleted() {
		return nil, timetableRepo.ErrTemplateNotFound
	}
	result := *t
	return &result, nil
}

func (f *fakeTimetableRepo) ListTemplates(_ context.Context, filter domain.TemplateFilter) ([]*domain.TimetableTemplate, error) {
	var result []*domain.TimetableTemplate
	for _, t := range f.templates {
		if t.IsDeleted() {
			continue
		}
		if filter.BranchID != nil && t.BranchID != *filter.BranchID {
			continue
		}
		if filter.AcademicYearID != nil && t.AcademicYearID != *filter.AcademicYearID {
			continue
		}
		if filter.OnlyActive && !t.IsActive {
			continue
		}
		copied := *t
		result = append(result, &copied)
	}
	return result, nil
}

func (f *fakeTimetableRepo) UpdateTemplate(_ context.Context, template *domain.TimetableTemplate) error {
	t, ok := f.templates[template.ID]
	if !ok || t.IsDeleted() {
		return timetableRepo.ErrTemplateNotFound
	}
	copied := *template
	f.templates[template.ID] = &copied
	return nil
}

func (f *fakeTimetableRepo) SetTemplateActive(_ context.Context, id int64, active bool) error {
	t, ok := f.templates[id]
	if !ok || t.IsDeleted() {
		return timetableRepo.ErrTemplateNotFound
	}
	t.IsActive = active
	return nil
}

func (f *fakeTimetableRepo) DeactivateOtherTemplates(_ context.Context, branchID, academicYearID, exceptID int64) error {
	for _, t := range f.templates {
		if t.BranchID == branchID && t.AcademicYearID == academicYearID && t.ID != exceptID {
			t.IsActive = false
		}
	}
	return nil
}

func (f *fakeTimetableRepo) SoftDeleteTemplate(_ context.Context, id int64) error {
	t, ok := f.templates[id]
	if !ok || t.IsDeleted() {
		return timetableRepo.ErrTemplateNotFound
	}
	now := time.Now()
	t.DeletedAt = &now
	t.IsActive = false
	return nil
}

func (f *fakeTimetableRepo) CreateSlot(_ context.Context, slot *domain.TimetableSlot) (*domain.TimetableSlot, error) {
	for _, existing := range f.slots {
		if existing.IsDeleted() {
			continue
		}
		if existing.TimetableID == slot.TimetableID && existing.ClassID == slot.ClassID &&
			existing.DayOfWeek == slot.DayOfWeek && existing.LessonNumber == slot.LessonNumber {
			return nil, timetableRepo.ErrDuplicateSlot
		}
	}
	f.nextSlotID++
	s := *slot
	s.ID = f.nextSlotID
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	f.slots[s.ID] = &s
	result := s
	return &result, nil
}

func (f *fakeTimetableRepo) GetSlotByID(_ context.Context, id int64) (*domain.TimetableSlot, error) {
	s, ok := f.slots[id]
	if !ok || s.IsDeleted() {
		return nil, timetableRepo.ErrSlotNotFound
	}
	result := *s
	return &result, nil
}

func (f *fakeTimetableRepo) ListSlotsByTimetable(_ context.Context, timetableID int64) ([]domain.TimetableSlot, error) {
	var result []domain.TimetableSlot
	for _, s := range f.slots {
		if !s.IsDeleted() && s.TimetableID == timetableID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (f *fakeTimetableRepo) ListSlotsForConflictCheck(_ context.Context, timetableID int64, day domain.DayOfWeek) ([]domain.TimetableSlot, error) {
	var result []domain.TimetableSlot
	for _, s := range f.slots {
		if !s.IsDeleted() && s.TimetableID == timetableID && s.DayOfWeek == day {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (f *fakeTimetableRepo) UpdateSlot(_ context.Context, slot *domain.TimetableSlot) error {
	s, ok := f.slots[slot.ID]
	if !ok || s.IsDeleted() {
		return timetableRepo.ErrSlotNotFound
	}
	copied := *slot
	f.slots[slot.ID] = &copied
	return nil
}

func (f *fakeTimetableRepo) SoftDeleteSlot(_ context.Context, id int64) error {
	s, ok := f.slots[id]
	if !ok || s.IsDeleted() {
		return timetableRepo.ErrSlotNotFound
	}
	now := time.Now()
	s.DeletedAt = &now
	return nil
}

type fakeLessonRepo struct {
	deletedBySlot int64
	gotSlotID     int64
	gotFrom       time.Time
}

func (f *fakeLessonRepo) SoftDeleteFuturePlannedBySlot(_ context.Context, slotID int64, from time.Time) (int64, error) {
	f.gotSlotID = slotID
	f.gotFrom = from
	return f.deletedBySlot, nil
}

type fakeSchoolClient struct {
	classSubjects map[int64]*schoolservice.ClassSubject
	academicYears map[int64]*schoolservice.AcademicYear
}

func (f *fakeSchoolClient) GetClassSubject(_ context.Context, id int64) (*schoolservice.ClassSubject, error) {
	cs, ok := f.classSubjects[id]
	if !ok {
		return nil, schoolservice.ErrClassSubjectNotFound
	}
	return cs, nil
}

func (f *fakeSchoolClient) GetAcademicYear(_ context.Context, id int64) (*schoolservice.AcademicYear, error) {
	year, ok := f.academicYears[id]
	if !ok {
		return nil, schoolservice.ErrAcademicYearNotFound
	}
	return year, nil
}

type fakeBranchClient struct {
	rooms    map[int64]*branchservice.Room
	degraded bool
}

func (f *fakeBranchClient) GetRoomWithGracefulDegradation(_ context.Context, roomID int64) (*branchservice.Room, error) {
	if f.degraded {
		return nil, branchservice.ErrServiceDegraded
	}
	room, ok := f.rooms[roomID]
	if !ok {
		return nil, branchservice.ErrRoomNotFound
	}
	return room, nil
}

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Хелперы сборки

func newTestService(repo *fakeTimetableRepo, lessonRepo *fakeLessonRepo) *Service {
	school := &fakeSchoolClient{
		classSubjects: map[int64]*schoolservice.ClassSubject{
			10: {ID: 10, ClassID: 1, BranchID: 1, ClassName: "5А", SubjectID: 100, SubjectName: "Математика", TeacherID: 500, TeacherName: "Иванова А.П."},
			11: {ID: 11, ClassID: 2, BranchID: 1, ClassName: "5Б", SubjectID: 100, SubjectName: "Математика", TeacherID: 500, TeacherName: "Иванова А.П."},
			12: {ID: 12, ClassID: 1, BranchID: 1, ClassName: "5А", SubjectID: 101, SubjectName: "Русский язык", TeacherID: 501, TeacherName: "Петрова Е.С."},
		},
		academicYears: map[int64]*schoolservice.AcademicYear{
			2: {ID: 2, Name: "2025/2026", StartDate: "2025-09-01", EndDate: "2026-05-31"},
		},
	}
	branch := &fakeBranchClient{rooms: map[int64]*branchservice.Room{
		5: {ID: 5, BranchID: 1, Name: "Кабинет 101", Capacity: 30},
		6: {ID: 6, BranchID: 2, Name: "Кабинет 201", Capacity: 25},
	}}
	return NewService(repo, lessonRepo, school, branch, fakeTxManager{},
		fixedTime{now: time.Date(2025, 8, 31, 12, 0, 0, 0, time.UTC)}, nopLogger{})
}

func seedTemplate(repo *fakeTimetableRepo, branchID, yearID int64, active bool) int64 {
	repo.nextTemplateID++
	id := repo.nextTemplateID
	repo.templates[id] = &domain.TimetableTemplate{
		ID:             id,
		BranchID:       branchID,
		AcademicYearID: yearID,
		Name:           "Основное расписание",
		IsActive:       active,
		EffectiveFrom:  time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	}
	return id
}

func slotRequest(classID, classSubjectID int64, day string, lessonNumber int, start, end string) *models.SlotRequest {
	return &models.SlotRequest{
		ClassID:        classID,
		ClassSubjectID: classSubjectID,
		DayOfWeek:      day,
		LessonNumber:   lessonNumber,
		StartTime:      start,
		EndTime:        end,
	}
}

// Шаблоны

func TestCreateTemplate_CreatedInactive(t *testing.T) {
	repo := newFakeTimetableRepo()
	svc := newTestService(repo, &fakeLessonRepo{})

	resp, err := svc.CreateTemplate(context.Background(), &models.CreateTemplateRequest{
		BranchID:       1,
		AcademicYearID: 2,
		Name:           "  Основное расписание  ",
		EffectiveFrom:  "2025-09-01",
	})

	require.NoError(t, err)
	assert.False(t, resp.IsActive)
	assert.Equal(t, "Основное расписание", resp.Name)
	assert.Equal(t, "2025-09-01", resp.EffectiveFrom)
}

func TestCreateTemplate_InvalidDates(t *testing.T) {
	svc := newTestService(newFakeTimetableRepo(), &fakeLessonRepo{})

	_, err := svc.CreateTemplate(context.Background(), &models.CreateTemplateRequest{
		BranchID:       1,
		AcademicYearID: 2,
		Name:           "Расписание",
		EffectiveFrom:  "2026-05-31",
		EffectiveUntil: ptr.Ptr("2025-09-01"),
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateTemplate_WindowOutsideAcademicYear(t *testing.T) {
	svc := newTestService(newFakeTimetableRepo(), &fakeLessonRepo{})

	// Учебный год 2: 2025-09-01 .. 2026-05-31
	_, err := svc.CreateTemplate(context.Background(), &models.CreateTemplateRequest{
		BranchID:       1,
		AcademicYearID: 2,
		Name:           "Расписание",
		EffectiveFrom:  "2025-08-01",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateTemplate(context.Background(), &models.CreateTemplateRequest{
		BranchID:       1,
		AcademicYearID: 2,
		Name:           "Расписание",
		EffectiveFrom:  "2025-09-01",
		EffectiveUntil: ptr.Ptr("2026-06-15"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateTemplate_AcademicYearNotFound(t *testing.T) {
	svc := newTestService(newFakeTimetableRepo(), &fakeLessonRepo{})

	_, err := svc.CreateTemplate(context.Background(), &models.CreateTemplateRequest{
		BranchID:       1,
		AcademicYearID: 404,
		Name:           "Расписание",
		EffectiveFrom:  "2025-09-01",
	})

	assert.ErrorIs(t, err, ErrAcademicYearNotFound)
}

func TestActivateTemplate_DeactivatesOthers(t *testing.T) {
	repo := newFakeTimetableRepo()
	svc := newTestService(repo, &fakeLessonRepo{})

	first := seedTemplate(repo, 1, 2, true)
	second := seedTemplate(repo, 1, 2, false)
	other := seedTemplate(repo, 9, 2, true) // другой филиал, не трогаем

	resp, err := svc.ActivateTemplate(context.Background(), second)

	require.NoError(t, err)
	assert.True(t, resp.IsActive)
	assert.False(t, repo.templates[first].IsActive)
	assert.True(t, repo.templates[second].IsActive)
	assert.True(t, repo.templates[other].IsActive)
}

func TestActivateTemplate_NotFound(t *testing.T) {
	svc := newTestService(newFakeTimetableRepo(), &fakeLessonRepo{})

	_, err := svc.ActivateTemplate(context.Background(), 404)

	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestDeleteTemplate_KeepsSlots(t *testing.T) {
	repo := newFakeTimetableRepo()
	svc := newTestService(repo, &fakeLessonRepo{})

	id := seedTemplate(repo, 1, 2, true)
	_, err := svc.CreateSlot(context.Background(), id, slotRequest(1, 10, "monday", 1, "08:00", "08:45"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTemplate(context.Background(), id))

	assert.True(t, repo.templates[id].IsDeleted())
	// Слоты остаются: история расписания сохраняется
	assert.False(t, repo.slots[1].IsDeleted())
}

// Слоты

func TestCreateSlot_DenormalizesClassSubjectData(t *testing.T) {
	repo := newFakeTimetableRepo()
	svc := newTestService(repo, &fakeLessonRepo{})
	id := seedTemplate(repo, 1, 2, true)

	req := slotRequest(1, 10, "monday", 1, "08:00", "08:45")
	req.RoomID = ptr.Ptr(int64(5))

	resp, err := svc.CreateSlot(context.Background(), id, req)

	require.NoError(t, err)
	assert.Equal(t, int64(500), resp.TeacherID)
	assert.Equal(t, "Иванова А.П.", resp.TeacherName)
	assert.Equal(t, "Математика", resp.SubjectName)
	assert.Equal(t, "5А", resp.ClassName)
	require.NotNil(t, resp.RoomName)
	assert.Equal(t, "Кабинет 101", *resp.RoomName)
}

func TestCreateSlot_ClassSubjectMismatch(t *testing.T) {
	repo := newFakeTimetableRepo()
	svc := newTestService(repo, &fakeLessonRepo{})
	id := seedTemplate(repo, 1, 2, true)

	// class_subject 11 принадлежит классу 2, а не 1
	_, err := svc.CreateSlot(context.Background(), id, slotRequest(1, 11, "monday", 1, "08:00", "08:45"))

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateSlot_TeacherConflict(t *testing.T) {
	repo := newFakeTimetableRepo()
	svc := newTestService(repo, &fakeLessonRepo{})
	id := seedTemplate(repo, 1, 2, true)

	_, err := svc.CreateSlot(context.Background(), id, slotRequest(1, 10, "monday", 1, "08:00", "08:45"))
	require.NoError(t, err)

	// Тот же учитель (через class_subject 11), пересекающееся время, другой класс
	_, err = svc.CreateSlot(context.Background(), id, slotRequest(2, 11, "monday", 1, "08:30", "09:15"))

	require.ErrorIs(t, err, ErrScheduleConflict)
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, domain.ConflictTypeTeacher, conflictErr.Conflicts[0].Type)

	// Конфликтный слот не вставлен
	slots, _ := repo.ListSlotsByTimetable(context.Background(), id)
	assert.Len(t, slots, 1)
}

func TestCreateSlot_TouchingIntervalsNoConflict(t *testing.T) {
	repo := newFakeTimetableRepo()
	svc := newTestService(repo, &fakeLessonRepo{})
	id := seedTemplate(repo, 1, 2, true)

	_, err := svc.CreateSlot(context.Background(), id, slotRequest(1, 10, "monday", 1, "08:00", "08:45"))
	require.NoError(t, err)

	_, err = svc.CreateSlot(context.Background(), id, slotRequest(2, 11, "monday", 1, "08:45", "09:30"))
	assert.NoError(t, err)
}

func TestCreateSlot_RoomPlaceholderWhenBranchServiceDegraded(t *testing.T) {
	repo := newFakeTimetableRepo()
	svc := newTestService(repo, &fakeLessonRepo{})
	svc.branchClient.(*fakeBranchClient).degraded = true
	id := seedTemplate(repo, 1, 2, true)

	req := slotRequest(1, 10, "monday", 1, "08:00", "08:45")
	req.RoomID = ptr.Ptr(int64(5))

	resp, err := svc.CreateSlot(context.Background(), id, req)

	require.NoError(t, err)
	require.NotNil(t, resp.RoomName)
	assert.Equal(t, "room-5", *resp.RoomName)
}

func TestUpdateSlot_ExcludesSelfFromConflictCheck(t *testing.T) {
	repo := newFakeTimetableRepo()
	svc := newTestService(repo, &fakeLessonRepo{})
	id := seedTemplate(repo, 1, 2, true)

	created, err := svc.CreateSlot(context.Background(), id, slotRequest(1, 10, "monday", 1, "08:00", "08:45"))
	require.NoError(t, err)

	// Сдвиг времени того же слота не конфликтует сам с собой
	resp, err := svc.UpdateSlot(context.Background(), created.ID, slotRequest(1, 10, "monday", 1, "08:15", "09:00"))

	require.NoError(t, err)
	assert.Equal(t, "08:15", resp.StartTime)
}

func TestDeleteSlot_CascadesFutureLessons(t *testing.T) {
	repo := newFakeTimetableRepo()
	lessonRepo := &fakeLessonRepo{deletedBySlot: 7}
	svc := newTestService(repo, lessonRepo)
	id := seedTemplate(repo, 1, 2, true)

	created, err := svc.CreateSlot(context.Background(), id, slotRequest(1, 10, "monday", 1, "08:00", "08:45"))
	require.NoError(t, err)

	resp, err := svc.DeleteSlot(context.Background(), created.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.DeletedLessons)
	assert.Equal(t, created.ID, lessonRepo.gotSlotID)
	// Граница каскада - начало текущего дня: сегодняшние занятия тоже снимаются
	assert.Equal(t, time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC), lessonRepo.gotFrom)
	assert.True(t, repo.slots[created.ID].IsDeleted())
}

func TestCreateSlot_RoomFromAnotherBranch(t *testing.T) {
	repo := newFakeTimetableRepo()
	svc := newTestService(repo, &fakeLessonRepo{})
	id := seedTemplate(repo, 1, 2, true)

	// Аудитория 6 из филиала 2, класс из филиала 1
	req := slotRequest(1, 10, "monday", 1, "08:00", "08:45")
	req.RoomID = ptr.Ptr(int64(6))

	_, err := svc.CreateSlot(context.Background(), id, req)

	assert.ErrorIs(t, err, ErrInvalidInput)

	slots, _ := repo.ListSlotsByTimetable(context.Background(), id)
	assert.Empty(t, slots)
}

func TestBulkCreateSlots_AllOrNothing(t *testing.T) {
	repo := newFakeTimetableRepo()
	svc := newTestService(repo, &fakeLessonRepo{})
	id := seedTemplate(repo, 1, 2, true)

	// Второй слот пересекается с первым по учителю
	_, err := svc.BulkCreateSlots(context.Background(), id, &models.BulkCreateSlotsRequest{
		Slots: []models.SlotRequest{
			*slotRequest(1, 10, "monday", 1, "08:00", "08:45"),
			*slotRequest(2, 11, "monday", 1, "08:30", "09:15"),
		},
	})

	require.ErrorIs(t, err, ErrScheduleConflict)

	slots, _ := repo.ListSlotsByTimetable(context.Background(), id)
	assert.Empty(t, slots, "конфликт любого слота откатывает весь пакет")
}

func TestBulkCreateSlots_Success(t *testing.T) {
	repo := newFakeTimetableRepo()
	svc := newTestService(repo, &fakeLessonRepo{})
	id := seedTemplate(repo, 1, 2, true)

	resp, err := svc.BulkCreateSlots(context.Background(), id, &models.BulkCreateSlotsRequest{
		Slots: []models.SlotRequest{
			*slotRequest(1, 10, "monday", 1, "08:00", "08:45"),
			*slotRequest(1, 12, "monday", 2, "09:00", "09:45"),
		},
	})

	require.NoError(t, err)
	assert.Len(t, resp.Slots, 2)
}

func TestCheckSlotConflicts_PreviewDoesNotInsert(t *testing.T) {
	repo := newFakeTimetableRepo()
	svc := newTestService(repo, &fakeLessonRepo{})
	id := seedTemplate(repo, 1, 2, true)

	_, err := svc.CreateSlot(context.Background(), id, slotRequest(1, 10, "monday", 1, "08:00", "08:45"))
	require.NoError(t, err)

	resp, err := svc.CheckSlotConflicts(context.Background(), id, slotRequest(2, 11, "monday", 1, "08:30", "09:15"))

	require.NoError(t, err)
	assert.True(t, resp.HasConflicts)
	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, "teacher", resp.Conflicts[0].Type)

	slots, _ := repo.ListSlotsByTimetable(context.Background(), id)
	assert.Len(t, slots, 1, "предпросмотр ничего не пишет")
}
