package check_availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktab-crm/schedule-service/internal/domain"
	"github.com/maktab-crm/schedule-service/internal/integrations/branchservice"
	"github.com/maktab-crm/schedule-service/internal/integrations/schoolservice"
	"github.com/maktab-crm/schedule-service/pkg/ptr"
	"github.com/maktab-crm/schedule-service/pkg/types"
)

// Фейки

type fakeLessonRepo struct {
	lessons []domain.LessonInstance
}

func (f *fakeLessonRepo) ListByFilter(_ context.Context, filter domain.LessonFilter) ([]domain.LessonInstance, error) {
	var result []domain.LessonInstance
	for _, l := range f.lessons {
		if filter.DateFrom != nil && l.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && l.Date.After(*filter.DateTo) {
			continue
		}
		if !filter.IncludeCanceled && l.IsCanceled() {
			continue
		}
		result = append(result, l)
	}
	return result, nil
}

type fakeSchoolClient struct {
	classes       map[int64]*schoolservice.Class
	classSubjects map[int64][]schoolservice.ClassSubject
}

func (f *fakeSchoolClient) GetClass(_ context.Context, id int64) (*schoolservice.Class, error) {
	class, ok := f.classes[id]
	if !ok {
		return nil, schoolservice.ErrClassNotFound
	}
	return class, nil
}

func (f *fakeSchoolClient) ListClassSubjects(_ context.Context, classID int64) ([]schoolservice.ClassSubject, error) {
	return f.classSubjects[classID], nil
}

type fakeBranchClient struct {
	rooms map[int64][]branchservice.Room
}

func (f *fakeBranchClient) ListRooms(_ context.Context, branchID int64) ([]branchservice.Room, error) {
	return f.rooms[branchID], nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Хелперы

// Класс 1 филиала 5: два назначения (учителя 100 и 200) и две аудитории
func newTestUseCase(repo *fakeLessonRepo) *UseCase {
	school := &fakeSchoolClient{
		classes: map[int64]*schoolservice.Class{
			1: {ID: 1, BranchID: 5, Name: "5А"},
		},
		classSubjects: map[int64][]schoolservice.ClassSubject{
			1: {
				{ID: 10, ClassID: 1, BranchID: 5, SubjectID: 100, SubjectName: "Математика", TeacherID: 100, TeacherName: "Иванова А.П."},
				{ID: 11, ClassID: 1, BranchID: 5, SubjectID: 101, SubjectName: "Русский язык", TeacherID: 200, TeacherName: "Петрова Е.С."},
			},
		},
	}
	branch := &fakeBranchClient{rooms: map[int64][]branchservice.Room{
		5: {
			{ID: 5, BranchID: 5, Name: "Кабинет 101", Capacity: 30},
			{ID: 6, BranchID: 5, Name: "Кабинет 102", Capacity: 25},
		},
	}}
	return NewUseCase(repo, school, branch, nopLogger{})
}

func existingLesson(id int64, status domain.LessonStatus) domain.LessonInstance {
	roomID := int64(5)
	roomName := "Кабинет 101"
	return domain.LessonInstance{
		ID:           id,
		TeacherID:    100,
		TeacherName:  "Иванова А.П.",
		SubjectName:  "Математика",
		ClassName:    "5А",
		Date:         time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		LessonNumber: 1,
		StartTime:    types.TimeString("08:00"),
		EndTime:      types.TimeString("08:45"),
		RoomID:       &roomID,
		RoomName:     &roomName,
		Status:       status,
	}
}

func checkRequest(start, end string) *CheckRequest {
	return &CheckRequest{
		ClassID:   1,
		Date:      "2025-09-01",
		StartTime: start,
		EndTime:   end,
	}
}

func assignmentIDs(infos []AssignmentInfo) []int64 {
	ids := make([]int64, 0, len(infos))
	for _, a := range infos {
		ids = append(ids, a.ClassSubjectID)
	}
	return ids
}

func roomIDs(infos []RoomInfo) []int64 {
	ids := make([]int64, 0, len(infos))
	for _, r := range infos {
		ids = append(ids, r.RoomID)
	}
	return ids
}

// Тесты

func TestCheck_BusyTeacherExcludedFromAssignments(t *testing.T) {
	repo := &fakeLessonRepo{lessons: []domain.LessonInstance{existingLesson(1, domain.LessonStatusPlanned)}}
	uc := newTestUseCase(repo)

	resp, err := uc.Check(context.Background(), checkRequest("08:30", "09:15"))

	require.NoError(t, err)
	// Учитель 100 занят, его назначение выпадает; учитель 200 свободен
	assert.Equal(t, []int64{11}, assignmentIDs(resp.AvailableAssignments))
	require.NotEmpty(t, resp.Conflicts)
	assert.Equal(t, "teacher", resp.Conflicts[0].Type)
	assert.Equal(t, "Иванова А.П.", resp.Conflicts[0].TeacherName)
}

func TestCheck_BusyRoomExcludedFromRooms(t *testing.T) {
	repo := &fakeLessonRepo{lessons: []domain.LessonInstance{existingLesson(1, domain.LessonStatusPlanned)}}
	uc := newTestUseCase(repo)

	resp, err := uc.Check(context.Background(), checkRequest("08:30", "09:15"))

	require.NoError(t, err)
	// Аудитория 5 занята существующим занятием, 6 свободна
	assert.Equal(t, []int64{6}, roomIDs(resp.AvailableRooms))
}

func TestCheck_EverythingFreeWhenNoLessons(t *testing.T) {
	uc := newTestUseCase(&fakeLessonRepo{})

	resp, err := uc.Check(context.Background(), checkRequest("08:00", "08:45"))

	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11}, assignmentIDs(resp.AvailableAssignments))
	assert.Equal(t, []int64{5, 6}, roomIDs(resp.AvailableRooms))
	assert.Empty(t, resp.Conflicts)
}

func TestCheck_TouchingIntervalsAvailable(t *testing.T) {
	repo := &fakeLessonRepo{lessons: []domain.LessonInstance{existingLesson(1, domain.LessonStatusPlanned)}}
	uc := newTestUseCase(repo)

	// Интервалы полуоткрытые: начало ровно в конец занятого не пересекается
	resp, err := uc.Check(context.Background(), checkRequest("08:45", "09:30"))

	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11}, assignmentIDs(resp.AvailableAssignments))
	assert.Equal(t, []int64{5, 6}, roomIDs(resp.AvailableRooms))
	assert.Empty(t, resp.Conflicts)
}

func TestCheck_CanceledLessonDoesNotBlock(t *testing.T) {
	repo := &fakeLessonRepo{lessons: []domain.LessonInstance{existingLesson(1, domain.LessonStatusCanceled)}}
	uc := newTestUseCase(repo)

	resp, err := uc.Check(context.Background(), checkRequest("08:00", "08:45"))

	require.NoError(t, err)
	assert.Equal(t, []int64{10, 11}, assignmentIDs(resp.AvailableAssignments))
	assert.Equal(t, []int64{5, 6}, roomIDs(resp.AvailableRooms))
}

func TestCheck_ExcludeSelfOnReschedule(t *testing.T) {
	repo := &fakeLessonRepo{lessons: []domain.LessonInstance{existingLesson(7, domain.LessonStatusPlanned)}}
	uc := newTestUseCase(repo)

	req := checkRequest("08:00", "08:45")
	req.ExcludeLessonID = ptr.Ptr(int64(7))

	resp, err := uc.Check(context.Background(), req)

	require.NoError(t, err)
	// Само переносимое занятие время не держит
	assert.Equal(t, []int64{10, 11}, assignmentIDs(resp.AvailableAssignments))
	assert.Equal(t, []int64{5, 6}, roomIDs(resp.AvailableRooms))
}

func TestCheck_ClassNotFound(t *testing.T) {
	uc := newTestUseCase(&fakeLessonRepo{})

	req := checkRequest("08:00", "08:45")
	req.ClassID = 404

	_, err := uc.Check(context.Background(), req)

	assert.ErrorIs(t, err, ErrClassNotFound)
}

func TestCheck_InvalidTimeRange(t *testing.T) {
	uc := newTestUseCase(&fakeLessonRepo{})

	_, err := uc.Check(context.Background(), checkRequest("09:00", "08:00"))

	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestCheck_InvalidDate(t *testing.T) {
	uc := newTestUseCase(&fakeLessonRepo{})

	req := checkRequest("08:00", "08:45")
	req.Date = "01.09.2025"

	_, err := uc.Check(context.Background(), req)

	assert.ErrorIs(t, err, ErrInvalidInput)
}
