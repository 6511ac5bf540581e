package lessons

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktab-crm/schedule-service/internal/domain"
	lessonRepo "github.com/maktab-crm/schedule-service/internal/infra/storage/lesson"
	topicRepo "github.com/maktab-crm/schedule-service/internal/infra/storage/topic"
	"github.com/maktab-crm/schedule-service/internal/integrations/branchservice"
	"github.com/maktab-crm/schedule-service/internal/integrations/schoolservice"
	"github.com/maktab-crm/schedule-service/internal/service/lessons/models"
	"github.com/maktab-crm/schedule-service/pkg/ptr"
	"github.com/maktab-crm/schedule-service/pkg/types"
)

// Фейки

type fakeLessonRepo struct {
	lessons map[int64]*domain.LessonInstance
	nextID  int64
}

func newFakeLessonRepo() *fakeLessonRepo {
	return &fakeLessonRepo{lessons: make(map[int64]*domain.LessonInstance)}
}

func (f *fakeLessonRepo) Create(_ context.Context, lesson *domain.LessonInstance) (*domain.LessonInstance, error) {
	for _, existing := range f.lessons {
		if existing.IsDeleted() {
			continue
		}
		if existing.ClassSubjectID == lesson.ClassSubjectID &&
			existing.Date.Equal(lesson.Date) && existing.LessonNumber == lesson.LessonNumber {
			return nil, lessonRepo.ErrDuplicateLesson
		}
	}
	f.nextID++
	l := *lesson
	l.ID = f.nextID
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	f.lessons[l.ID] = &l
	result := l
	return &result, nil
}

func (f *fakeLessonRepo) GetByID(_ context.Context, id int64) (*domain.LessonInstance, error) {
	l, ok := f.lessons[id]
	if !ok || l.IsDeleted() {
		return nil, lessonRepo.ErrLessonNotFound
	}
	result := *l
	return &result, nil
}

func (f *fakeLessonRepo) ListByFilter(_ context.Context, filter domain.LessonFilter) ([]domain.LessonInstance, error) {
	var result []domain.LessonInstance
	for _, l := range f.lessons {
		if l.IsDeleted() {
			continue
		}
		if filter.ClassID != nil && l.ClassID != *filter.ClassID {
			continue
		}
		if filter.TeacherID != nil && l.TeacherID != *filter.TeacherID {
			continue
		}
		if filter.DateFrom != nil && l.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && l.Date.After(*filter.DateTo) {
			continue
		}
		if !filter.IncludeCanceled && l.IsCanceled() {
			continue
		}
		result = append(result, *l)
	}
	return result, nil
}

func (f *fakeLessonRepo) ListForConflictCheck(_ context.Context, date time.Time, teacherID int64, roomID *int64) ([]domain.LessonInstance, error) {
	var result []domain.LessonInstance
	for _, l := range f.lessons {
		if l.IsDeleted() || !l.Date.Equal(date) {
			continue
		}
		if l.TeacherID == teacherID || (roomID != nil && l.RoomID != nil && *l.RoomID == *roomID) {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (f *fakeLessonRepo) Update(_ context.Context, lesson *domain.LessonInstance) error {
	l, ok := f.lessons[lesson.ID]
	if !ok || l.IsDeleted() {
		return lessonRepo.ErrLessonNotFound
	}
	copied := *lesson
	f.lessons[lesson.ID] = &copied
	return nil
}

func (f *fakeLessonRepo) UpdateStatus(_ context.Context, id int64, status domain.LessonStatus) error {
	l, ok := f.lessons[id]
	if !ok || l.IsDeleted() {
		return lessonRepo.ErrLessonNotFound
	}
	l.Status = status
	return nil
}

func (f *fakeLessonRepo) SoftDelete(_ context.Context, id int64) error {
	l, ok := f.lessons[id]
	if !ok || l.IsDeleted() {
		return lessonRepo.ErrLessonNotFound
	}
	now := time.Now()
	l.DeletedAt = &now
	return nil
}

type fakeTopicRepo struct {
	topics map[int64]*domain.LessonTopic
	nextID int64
}

func newFakeTopicRepo() *fakeTopicRepo {
	return &fakeTopicRepo{topics: make(map[int64]*domain.LessonTopic)}
}

func (f *fakeTopicRepo) Create(_ context.Context, topic *domain.LessonTopic) (*domain.LessonTopic, error) {
	for _, existing := range f.topics {
		if existing.IsDeleted() {
			continue
		}
		if existing.SubjectID == topic.SubjectID && existing.Position == topic.Position &&
			sameQuarter(existing.QuarterID, topic.QuarterID) {
			return nil, topicRepo.ErrDuplicateTopic
		}
	}
	f.nextID++
	t := *topic
	t.ID = f.nextID
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	f.topics[t.ID] = &t
	result := t
	return &result, nil
}

func (f *fakeTopicRepo) GetByID(_ context.Context, id int64) (*domain.LessonTopic, error) {
	t, ok := f.topics[id]
	if !ok || t.IsDeleted() {
		return nil, topicRepo.ErrTopicNotFound
	}
	result := *t
	return &result, nil
}

func (f *fakeTopicRepo) ListBySubject(_ context.Context, subjectID int64, quarterID *int64) ([]domain.LessonTopic, error) {
	var result []domain.LessonTopic
	for _, t := range f.topics {
		if t.IsDeleted() || t.SubjectID != subjectID {
			continue
		}
		if quarterID != nil && !sameQuarter(t.QuarterID, quarterID) {
			continue
		}
		result = append(result, *t)
	}
	return result, nil
}

func (f *fakeTopicRepo) Update(_ context.Context, topic *domain.LessonTopic) error {
	t, ok := f.topics[topic.ID]
	if !ok || t.IsDeleted() {
		return topicRepo.ErrTopicNotFound
	}
	copied := *topic
	f.topics[topic.ID] = &copied
	return nil
}

func (f *fakeTopicRepo) SoftDelete(_ context.Context, id int64) error {
	t, ok := f.topics[id]
	if !ok || t.IsDeleted() {
		return topicRepo.ErrTopicNotFound
	}
	now := time.Now()
	t.DeletedAt = &now
	return nil
}

func sameQuarter(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type fakeSchoolClient struct {
	classSubjects map[int64]*schoolservice.ClassSubject
}

func (f *fakeSchoolClient) GetClassSubject(_ context.Context, id int64) (*schoolservice.ClassSubject, error) {
	cs, ok := f.classSubjects[id]
	if !ok {
		return nil, schoolservice.ErrClassSubjectNotFound
	}
	return cs, nil
}

type fakeBranchClient struct {
	rooms map[int64]*branchservice.Room
}

func (f *fakeBranchClient) GetRoomWithGracefulDegradation(_ context.Context, roomID int64) (*branchservice.Room, error) {
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

func newTestService(lessonsRepo *fakeLessonRepo, topicsRepo *fakeTopicRepo) *Service {
	school := &fakeSchoolClient{classSubjects: map[int64]*schoolservice.ClassSubject{
		10: {ID: 10, ClassID: 1, BranchID: 1, ClassName: "5А", SubjectID: 100, SubjectName: "Математика", TeacherID: 500, TeacherName: "Иванова А.П."},
		11: {ID: 11, ClassID: 2, BranchID: 1, ClassName: "5Б", SubjectID: 100, SubjectName: "Математика", TeacherID: 500, TeacherName: "Иванова А.П."},
	}}
	branch := &fakeBranchClient{rooms: map[int64]*branchservice.Room{
		5: {ID: 5, BranchID: 1, Name: "Кабинет 101", Capacity: 30},
		6: {ID: 6, BranchID: 2, Name: "Кабинет 201", Capacity: 25},
	}}
	return NewService(lessonsRepo, topicsRepo, school, branch, fakeTxManager{},
		fixedTime{now: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}, nopLogger{})
}

func mustTime(t *testing.T, v string) types.TimeString {
	t.Helper()
	ts, err := types.NewTimeStringFromString(v)
	require.NoError(t, err)
	return ts
}

func seedLesson(t *testing.T, repo *fakeLessonRepo, status domain.LessonStatus) int64 {
	t.Helper()
	repo.nextID++
	id := repo.nextID
	repo.lessons[id] = &domain.LessonInstance{
		ID:             id,
		ClassSubjectID: 10,
		TeacherID:      500,
		TeacherName:    "Иванова А.П.",
		SubjectID:      100,
		SubjectName:    "Математика",
		ClassID:        1,
		ClassName:      "5А",
		Date:           time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC),
		LessonNumber:   1,
		StartTime:      mustTime(t, "08:00"),
		EndTime:        mustTime(t, "08:45"),
		Status:         status,
	}
	return id
}

func createRequest(classSubjectID int64, date string, lessonNumber int, start, end string) *models.CreateLessonRequest {
	return &models.CreateLessonRequest{
		ClassSubjectID: classSubjectID,
		Date:           date,
		LessonNumber:   lessonNumber,
		StartTime:      start,
		EndTime:        end,
	}
}

// Занятия

func TestCreate_DenormalizesClassSubjectData(t *testing.T) {
	repo := newFakeLessonRepo()
	svc := newTestService(repo, newFakeTopicRepo())

	req := createRequest(10, "2025-09-02", 1, "08:00", "08:45")
	req.RoomID = ptr.Ptr(int64(5))

	resp, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "planned", resp.Status)
	assert.False(t, resp.IsAutoGenerated)
	assert.Equal(t, int64(500), resp.TeacherID)
	assert.Equal(t, "Математика", resp.SubjectName)
	assert.Equal(t, "5А", resp.ClassName)
	require.NotNil(t, resp.RoomName)
	assert.Equal(t, "Кабинет 101", *resp.RoomName)
}

func TestCreate_TeacherConflict(t *testing.T) {
	repo := newFakeLessonRepo()
	svc := newTestService(repo, newFakeTopicRepo())

	_, err := svc.Create(context.Background(), createRequest(10, "2025-09-02", 1, "08:00", "08:45"))
	require.NoError(t, err)

	// Тот же учитель в другом классе, пересекающееся время
	_, err = svc.Create(context.Background(), createRequest(11, "2025-09-02", 1, "08:30", "09:15"))

	require.ErrorIs(t, err, ErrScheduleConflict)
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, domain.ConflictTypeTeacher, conflictErr.Conflicts[0].Type)
	assert.Len(t, repo.lessons, 1)
}

func TestCreate_Duplicate(t *testing.T) {
	repo := newFakeLessonRepo()
	svc := newTestService(repo, newFakeTopicRepo())

	_, err := svc.Create(context.Background(), createRequest(10, "2025-09-02", 1, "08:00", "08:45"))
	require.NoError(t, err)

	// Тот же урок того же назначения в тот же день
	_, err = svc.Create(context.Background(), createRequest(10, "2025-09-02", 1, "10:00", "10:45"))

	assert.ErrorIs(t, err, ErrDuplicateLesson)
}

func TestCreate_RoomFromAnotherBranch(t *testing.T) {
	repo := newFakeLessonRepo()
	svc := newTestService(repo, newFakeTopicRepo())

	// Аудитория 6 из филиала 2, класс назначения - из филиала 1
	req := createRequest(10, "2025-09-02", 1, "08:00", "08:45")
	req.RoomID = ptr.Ptr(int64(6))

	_, err := svc.Create(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, repo.lessons)
}

func TestUpdate_RoomFromAnotherBranch(t *testing.T) {
	repo := newFakeLessonRepo()
	svc := newTestService(repo, newFakeTopicRepo())
	id := seedLesson(t, repo, domain.LessonStatusPlanned)

	_, err := svc.Update(context.Background(), id, &models.UpdateLessonRequest{
		RoomID: ptr.Ptr(int64(6)),
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Nil(t, repo.lessons[id].RoomID)
}

func TestCreate_InvalidTimeRange(t *testing.T) {
	svc := newTestService(newFakeLessonRepo(), newFakeTopicRepo())

	_, err := svc.Create(context.Background(), createRequest(10, "2025-09-02", 1, "09:00", "08:45"))

	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestUpdate_HomeworkOnlySkipsConflictCheck(t *testing.T) {
	repo := newFakeLessonRepo()
	svc := newTestService(repo, newFakeTopicRepo())
	id := seedLesson(t, repo, domain.LessonStatusPlanned)
	// Сосед по времени: изменение только домашнего задания его не задевает
	seedLesson(t, repo, domain.LessonStatusPlanned)
	repo.lessons[2].LessonNumber = 2
	repo.lessons[2].StartTime = mustTime(t, "08:00")

	resp, err := svc.Update(context.Background(), id, &models.UpdateLessonRequest{
		Homework: ptr.Ptr("параграф 12, задачи 1-5"),
	})

	require.NoError(t, err)
	require.NotNil(t, resp.Homework)
	assert.Equal(t, "параграф 12, задачи 1-5", *resp.Homework)
}

func TestUpdate_DateChangeRechecksConflicts(t *testing.T) {
	repo := newFakeLessonRepo()
	svc := newTestService(repo, newFakeTopicRepo())

	_, err := svc.Create(context.Background(), createRequest(10, "2025-09-02", 1, "08:00", "08:45"))
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), createRequest(11, "2025-09-03", 1, "08:00", "08:45"))
	require.NoError(t, err)

	// Перенос второго занятия на день первого: учитель занят
	_, err = svc.Update(context.Background(), second.ID, &models.UpdateLessonRequest{
		Date: ptr.Ptr("2025-09-02"),
	})

	assert.ErrorIs(t, err, ErrScheduleConflict)
}

func TestMarkCompleted_SetsTopicAndHomework(t *testing.T) {
	repo := newFakeLessonRepo()
	topics := newFakeTopicRepo()
	svc := newTestService(repo, topics)
	id := seedLesson(t, repo, domain.LessonStatusPlanned)

	topic, err := svc.CreateTopic(context.Background(), &models.CreateTopicRequest{
		SubjectID:      100,
		Title:          "Дроби",
		Position:       1,
		EstimatedHours: 2,
	})
	require.NoError(t, err)

	resp, err := svc.MarkCompleted(context.Background(), id, &models.CompleteLessonRequest{
		TopicID:  &topic.ID,
		Homework: ptr.Ptr("задачи 1-10"),
	})

	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.TopicID)
	assert.Equal(t, topic.ID, *resp.TopicID)
	assert.Equal(t, domain.LessonStatusCompleted, repo.lessons[id].Status)
}

func TestMarkCompleted_AlreadyCompleted(t *testing.T) {
	repo := newFakeLessonRepo()
	svc := newTestService(repo, newFakeTopicRepo())
	id := seedLesson(t, repo, domain.LessonStatusCompleted)

	_, err := svc.MarkCompleted(context.Background(), id, &models.CompleteLessonRequest{})

	assert.ErrorIs(t, err, ErrCannotComplete)
}

func TestMarkCompleted_TopicSubjectMismatch(t *testing.T) {
	repo := newFakeLessonRepo()
	topics := newFakeTopicRepo()
	svc := newTestService(repo, topics)
	id := seedLesson(t, repo, domain.LessonStatusPlanned)

	// Тема другого предмета
	topic, err := svc.CreateTopic(context.Background(), &models.CreateTopicRequest{
		SubjectID:      999,
		Title:          "Причастия",
		Position:       1,
		EstimatedHours: 1,
	})
	require.NoError(t, err)

	_, err = svc.MarkCompleted(context.Background(), id, &models.CompleteLessonRequest{TopicID: &topic.ID})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMarkCanceled_StatusGuard(t *testing.T) {
	repo := newFakeLessonRepo()
	svc := newTestService(repo, newFakeTopicRepo())

	planned := seedLesson(t, repo, domain.LessonStatusPlanned)
	resp, err := svc.MarkCanceled(context.Background(), planned)
	require.NoError(t, err)
	assert.Equal(t, "canceled", resp.Status)

	// Повторная отмена запрещена
	_, err = svc.MarkCanceled(context.Background(), planned)
	assert.ErrorIs(t, err, ErrCannotCancel)
}

func TestGetWeeklySchedule_NormalizesToMonday(t *testing.T) {
	repo := newFakeLessonRepo()
	svc := newTestService(repo, newFakeTopicRepo())

	_, err := svc.Create(context.Background(), createRequest(10, "2025-09-02", 1, "08:00", "08:45"))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), createRequest(10, "2025-09-05", 2, "09:00", "09:45"))
	require.NoError(t, err)

	// Среда 2025-09-03 нормализуется к понедельнику 2025-09-01
	resp, err := svc.GetWeeklySchedule(context.Background(), &models.WeeklyScheduleRequest{
		ClassID:   1,
		WeekStart: "2025-09-03",
	})

	require.NoError(t, err)
	assert.Equal(t, "2025-09-01", resp.WeekStart)
	assert.Equal(t, "2025-09-07", resp.WeekEnd)
	require.Len(t, resp.Days, 7)

	assert.Equal(t, "monday", resp.Days[0].DayOfWeek)
	assert.Empty(t, resp.Days[0].Lessons)
	assert.Len(t, resp.Days[1].Lessons, 1) // вторник 2025-09-02
	assert.Len(t, resp.Days[4].Lessons, 1) // пятница 2025-09-05
	assert.Equal(t, "sunday", resp.Days[6].DayOfWeek)
}

func TestGetWeeklySchedule_InvalidWeekStart(t *testing.T) {
	svc := newTestService(newFakeLessonRepo(), newFakeTopicRepo())

	_, err := svc.GetWeeklySchedule(context.Background(), &models.WeeklyScheduleRequest{
		ClassID:   1,
		WeekStart: "03.09.2025",
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

// Темы

func TestCreateTopic_DuplicatePosition(t *testing.T) {
	svc := newTestService(newFakeLessonRepo(), newFakeTopicRepo())

	_, err := svc.CreateTopic(context.Background(), &models.CreateTopicRequest{
		SubjectID: 100, Title: "Дроби", Position: 1, EstimatedHours: 2,
	})
	require.NoError(t, err)

	_, err = svc.CreateTopic(context.Background(), &models.CreateTopicRequest{
		SubjectID: 100, Title: "Проценты", Position: 1, EstimatedHours: 2,
	})

	assert.ErrorIs(t, err, ErrDuplicateTopic)
}

func TestCreateTopic_Validation(t *testing.T) {
	svc := newTestService(newFakeLessonRepo(), newFakeTopicRepo())

	_, err := svc.CreateTopic(context.Background(), &models.CreateTopicRequest{
		SubjectID: 100, Title: "   ", Position: 1,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateTopic(context.Background(), &models.CreateTopicRequest{
		SubjectID: 100, Title: "Дроби", Position: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteTopic_LessonReferenceSurvives(t *testing.T) {
	repo := newFakeLessonRepo()
	topics := newFakeTopicRepo()
	svc := newTestService(repo, topics)
	id := seedLesson(t, repo, domain.LessonStatusPlanned)

	topic, err := svc.CreateTopic(context.Background(), &models.CreateTopicRequest{
		SubjectID: 100, Title: "Дроби", Position: 1, EstimatedHours: 2,
	})
	require.NoError(t, err)

	_, err = svc.MarkCompleted(context.Background(), id, &models.CompleteLessonRequest{TopicID: &topic.ID})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTopic(context.Background(), topic.ID))

	// Историческая ссылка занятия на тему остается
	lesson, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, lesson.TopicID)
	assert.Equal(t, topic.ID, *lesson.TopicID)
}
