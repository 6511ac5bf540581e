// Package check_availability подбор свободных назначений и аудиторий класса
// на интервал в конкретную дату, без записи. Каждый кандидат прогоняется
// через чистый детектор конфликтов как гипотетическое занятие.
package check_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maktab-crm/schedule-service/internal/conflicts"
	"github.com/maktab-crm/schedule-service/internal/domain"
	schoolClient "github.com/maktab-crm/schedule-service/internal/integrations/schoolservice"
	"github.com/maktab-crm/schedule-service/pkg/types"
)

// UseCase подбор свободных назначений и аудиторий
type UseCase struct {
	lessonRepo   LessonRepository
	schoolClient SchoolServiceClient
	branchClient BranchServiceClient
	logger       Logger
}

// NewUseCase создает новый экземпляр usecase проверки доступности
func NewUseCase(
	lessonRepo LessonRepository,
	schoolClient SchoolServiceClient,
	branchClient BranchServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		lessonRepo:   lessonRepo,
		schoolClient: schoolClient,
		branchClient: branchClient,
		logger:       logger,
	}
}

// Check перебирает назначения класса и аудитории его филиала и возвращает
// те, что свободны на интервал. Интервалы полуоткрытые: касание концов
// занятостью не считается. Отмененные занятия время не держат.
func (uc *UseCase) Check(ctx context.Context, req *CheckRequest) (*CheckResponse, error) {
	window, err := buildWindow(req)
	if err != nil {
		uc.logger.Warn("Check: invalid request for class=%d: %v", req.ClassID, err)
		return nil, err
	}

	class, err := uc.schoolClient.GetClass(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, schoolClient.ErrClassNotFound) {
			uc.logger.Warn("Check: class id=%d not found", req.ClassID)
			return nil, ErrClassNotFound
		}
		uc.logger.Error("Check: failed to get class id=%d: %v", req.ClassID, err)
		return nil, fmt.Errorf("%w: Check - failed to get class: %v", ErrInternal, err)
	}

	assignments, err := uc.schoolClient.ListClassSubjects(ctx, req.ClassID)
	if err != nil {
		uc.logger.Error("Check: failed to list class subjects for class=%d: %v", req.ClassID, err)
		return nil, fmt.Errorf("%w: Check - failed to list class subjects: %v", ErrInternal, err)
	}

	rooms, err := uc.branchClient.ListRooms(ctx, class.BranchID)
	if err != nil {
		uc.logger.Error("Check: failed to list rooms for branch=%d: %v", class.BranchID, err)
		return nil, fmt.Errorf("%w: Check - failed to list rooms: %v", ErrInternal, err)
	}

	// Занятия даты достаются один раз, кандидаты проверяются в памяти
	existing, err := uc.lessonRepo.ListByFilter(ctx, domain.LessonFilter{
		DateFrom: &window.date,
		DateTo:   &window.date,
	})
	if err != nil {
		uc.logger.Error("Check: repository error for class=%d, date=%s: %v", req.ClassID, req.Date, err)
		return nil, fmt.Errorf("%w: Check - repository error: %v", ErrInternal, err)
	}

	resp := &CheckResponse{
		ClassID:              req.ClassID,
		Date:                 req.Date,
		AvailableAssignments: make([]AssignmentInfo, 0, len(assignments)),
		AvailableRooms:       make([]RoomInfo, 0, len(rooms)),
		Conflicts:            make([]ConflictInfo, 0),
	}

	for i := range assignments {
		candidate := window.candidate()
		candidate.TeacherID = assignments[i].TeacherID

		found := conflicts.DetectLessonConflicts(candidate, existing)
		if len(found) == 0 {
			resp.AvailableAssignments = append(resp.AvailableAssignments, AssignmentInfo{
				ClassSubjectID: assignments[i].ID,
				SubjectID:      assignments[i].SubjectID,
				SubjectName:    assignments[i].SubjectName,
				TeacherID:      assignments[i].TeacherID,
				TeacherName:    assignments[i].TeacherName,
			})
			continue
		}
		appendConflicts(resp, found)
	}

	for i := range rooms {
		roomID := rooms[i].ID
		candidate := window.candidate()
		candidate.RoomID = &roomID

		found := conflicts.DetectLessonConflicts(candidate, existing)
		if len(found) == 0 {
			resp.AvailableRooms = append(resp.AvailableRooms, RoomInfo{
				RoomID:   rooms[i].ID,
				Name:     rooms[i].Name,
				Capacity: rooms[i].Capacity,
			})
			continue
		}
		appendConflicts(resp, found)
	}

	uc.logger.Info("Check: class=%d, date=%s, interval %s-%s: %d/%d assignments, %d/%d rooms free",
		req.ClassID, req.Date, req.StartTime, req.EndTime,
		len(resp.AvailableAssignments), len(assignments), len(resp.AvailableRooms), len(rooms))

	return resp, nil
}

// checkWindow валидированный интервал проверки
type checkWindow struct {
	date            time.Time
	startTime       types.TimeString
	endTime         types.TimeString
	excludeLessonID int64
}

// candidate собирает синтетическое занятие для чистого детектора конфликтов.
// Детектор пропускает кандидата по совпадению ID: так исключается само
// занятие при переносе.
func (w checkWindow) candidate() domain.LessonInstance {
	return domain.LessonInstance{
		ID:        w.excludeLessonID,
		Date:      w.date,
		StartTime: w.startTime,
		EndTime:   w.endTime,
		Status:    domain.LessonStatusPlanned,
	}
}

func buildWindow(req *CheckRequest) (*checkWindow, error) {
	if req.ClassID <= 0 {
		return nil, fmt.Errorf("%w: classId is required", ErrInvalidInput)
	}

	date, err := time.Parse(domain.DateFormat, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date", ErrInvalidInput)
	}

	startTime, err := types.NewTimeStringFromString(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid startTime", ErrInvalidInput)
	}
	endTime, err := types.NewTimeStringFromString(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endTime", ErrInvalidInput)
	}
	if !startTime.IsBefore(endTime) {
		return nil, fmt.Errorf("%w: startTime must be before endTime", ErrInvalidTimeRange)
	}

	window := &checkWindow{date: date, startTime: startTime, endTime: endTime}
	if req.ExcludeLessonID != nil {
		window.excludeLessonID = *req.ExcludeLessonID
	}

	return window, nil
}

func appendConflicts(resp *CheckResponse, found []domain.Conflict) {
	for _, c := range found {
		resp.Conflicts = append(resp.Conflicts, ConflictInfo{
			Type:        string(c.Type),
			Message:     c.Message,
			LessonID:    c.LessonID,
			TeacherName: c.Details.TeacherName,
			RoomName:    c.Details.RoomName,
			ClassName:   c.Details.ClassName,
			TimeRange:   c.Details.TimeRange,
		})
	}
}
