package lessons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maktab-crm/schedule-service/internal/conflicts"
	"github.com/maktab-crm/schedule-service/internal/domain"
	lessonRepo "github.com/maktab-crm/schedule-service/internal/infra/storage/lesson"
	branchClient "github.com/maktab-crm/schedule-service/internal/integrations/branchservice"
	schoolClient "github.com/maktab-crm/schedule-service/internal/integrations/schoolservice"
	"github.com/maktab-crm/schedule-service/internal/service/lessons/models"
	"github.com/maktab-crm/schedule-service/pkg/types"
)

// Service сервис для работы с занятиями и темами
type Service struct {
	lessonRepo   LessonRepository
	topicRepo    TopicRepository
	schoolClient SchoolServiceClient
	branchClient BranchServiceClient
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса занятий
func NewService(
	lessonRepo LessonRepository,
	topicRepo TopicRepository,
	schoolClient SchoolServiceClient,
	branchClient BranchServiceClient,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		lessonRepo:   lessonRepo,
		topicRepo:    topicRepo,
		schoolClient: schoolClient,
		branchClient: branchClient,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Create создает занятие вручную (вне генератора) со встречной проверкой
// конфликтов по учителю и аудитории в одной Serializable транзакции
func (s *Service) Create(ctx context.Context, req *models.CreateLessonRequest) (*models.LessonResponse, error) {
	s.logger.Info("Create: creating lesson for class_subject=%d, date=%s, lesson=%d",
		req.ClassSubjectID, req.Date, req.LessonNumber)

	lesson, err := s.buildLesson(ctx, req)
	if err != nil {
		return nil, err
	}

	var created *domain.LessonInstance

	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if err := s.checkLessonConflictsInTx(ctx, lesson); err != nil {
			return err
		}

		createdLesson, err := s.lessonRepo.Create(ctx, lesson)
		if err != nil {
			if errors.Is(err, lessonRepo.ErrDuplicateLesson) {
				return ErrDuplicateLesson
			}
			return fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
		}

		created = createdLesson
		return nil
	})

	if err != nil {
		s.logLessonError("Create", req.ClassSubjectID, err)
		return nil, err
	}

	s.logger.Info("Create: successfully created lesson id=%d", created.ID)
	return models.FromDomainLesson(created), nil
}

// GetByID получает занятие по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.LessonResponse, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, lessonRepo.ErrLessonNotFound) {
			s.logger.Warn("GetByID: lesson id=%d not found", id)
			return nil, ErrLessonNotFound
		}
		s.logger.Error("GetByID: repository error for lesson id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainLesson(lesson), nil
}

// List получает занятия по фильтру
func (s *Service) List(ctx context.Context, req *models.ListLessonsRequest) (*models.LessonListResponse, error) {
	filter, err := toDomainLessonFilter(req)
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, err
	}

	lessons, err := s.lessonRepo.ListByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d lessons", len(lessons))
	return models.FromDomainLessonList(lessons), nil
}

// GetWeeklySchedule получает расписание класса на неделю, сгруппированное
// по дням с понедельника по воскресенье. Дни без занятий присутствуют
// в ответе с пустым списком.
func (s *Service) GetWeeklySchedule(ctx context.Context, req *models.WeeklyScheduleRequest) (*models.WeeklyScheduleResponse, error) {
	if req.ClassID <= 0 {
		return nil, fmt.Errorf("%w: classId is required", ErrInvalidInput)
	}

	anchor, err := time.Parse(domain.DateFormat, req.WeekStart)
	if err != nil {
		s.logger.Warn("GetWeeklySchedule: invalid weekStart=%s", req.WeekStart)
		return nil, fmt.Errorf("%w: invalid weekStart", ErrInvalidInput)
	}

	weekStart := startOfWeek(anchor)
	weekEnd := weekStart.AddDate(0, 0, 6)

	s.logger.Info("GetWeeklySchedule: fetching schedule for class=%d, week %s - %s",
		req.ClassID, weekStart.Format(domain.DateFormat), weekEnd.Format(domain.DateFormat))

	lessons, err := s.lessonRepo.ListByFilter(ctx, domain.LessonFilter{
		ClassID:  &req.ClassID,
		DateFrom: &weekStart,
		DateTo:   &weekEnd,
	})
	if err != nil {
		s.logger.Error("GetWeeklySchedule: repository error for class=%d: %v", req.ClassID, err)
		return nil, fmt.Errorf("%w: GetWeeklySchedule - repository error: %v", ErrInternal, err)
	}

	resp := &models.WeeklyScheduleResponse{
		ClassID:   req.ClassID,
		WeekStart: weekStart.Format(domain.DateFormat),
		WeekEnd:   weekEnd.Format(domain.DateFormat),
		Days:      make([]models.DaySchedule, 0, 7),
	}

	for i := 0; i < 7; i++ {
		date := weekStart.AddDate(0, 0, i)
		day := models.DaySchedule{
			Date:      date.Format(domain.DateFormat),
			DayOfWeek: string(domain.DayOfWeekFromDate(date)),
			Lessons:   make([]models.LessonResponse, 0),
		}

		for j := range lessons {
			if sameDate(lessons[j].Date, date) {
				day.Lessons = append(day.Lessons, *models.FromDomainLesson(&lessons[j]))
			}
		}

		resp.Days = append(resp.Days, day)
	}

	return resp, nil
}

// Update обновляет занятие. При изменении даты, времени или аудитории
// выполняется встречная проверка конфликтов.
func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateLessonRequest) (*models.LessonResponse, error) {
	s.logger.Info("Update: updating lesson id=%d", id)

	var updated *domain.LessonInstance

	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		lesson, err := s.lessonRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, lessonRepo.ErrLessonNotFound) {
				return ErrLessonNotFound
			}
			return fmt.Errorf("%w: Update - get lesson: %v", ErrInternal, err)
		}

		timingChanged, err := s.applyLessonUpdate(ctx, lesson, req)
		if err != nil {
			return err
		}

		if timingChanged {
			if err := s.checkLessonConflictsInTx(ctx, lesson); err != nil {
				return err
			}
		}

		if err := s.lessonRepo.Update(ctx, lesson); err != nil {
			if errors.Is(err, lessonRepo.ErrLessonNotFound) {
				return ErrLessonNotFound
			}
			if errors.Is(err, lessonRepo.ErrDuplicateLesson) {
				return ErrDuplicateLesson
			}
			return fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
		}

		updated = lesson
		return nil
	})

	if err != nil {
		s.logLessonError("Update", id, err)
		return nil, err
	}

	s.logger.Info("Update: successfully updated lesson id=%d", id)
	return models.FromDomainLesson(updated), nil
}

// MarkCompleted отмечает занятие проведенным. Разрешено только для
// запланированных и идущих занятий. Опционально проставляет тему
// и домашнее задание.
func (s *Service) MarkCompleted(ctx context.Context, id int64, req *models.CompleteLessonRequest) (*models.LessonResponse, error) {
	s.logger.Info("MarkCompleted: completing lesson id=%d", id)

	lesson, err := s.lessonRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, lessonRepo.ErrLessonNotFound) {
			s.logger.Warn("MarkCompleted: lesson id=%d not found", id)
			return nil, ErrLessonNotFound
		}
		s.logger.Error("MarkCompleted: repository error for lesson id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: MarkCompleted - repository error: %v", ErrInternal, err)
	}

	if !lesson.CanBeCompleted() {
		s.logger.Warn("MarkCompleted: lesson id=%d cannot be completed, status=%s", id, lesson.Status)
		return nil, ErrCannotComplete
	}

	if req.TopicID != nil {
		if err := s.resolveTopic(ctx, lesson, *req.TopicID); err != nil {
			return nil, err
		}
	}
	if req.Homework != nil {
		if len(*req.Homework) > domain.MaxHomeworkLength {
			return nil, fmt.Errorf("%w: homework is too long", ErrInvalidInput)
		}
		lesson.Homework = req.Homework
	}

	lesson.Status = domain.LessonStatusCompleted

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.lessonRepo.Update(ctx, lesson); err != nil {
			return fmt.Errorf("%w: MarkCompleted - update fields: %v", ErrInternal, err)
		}
		if err := s.lessonRepo.UpdateStatus(ctx, id, domain.LessonStatusCompleted); err != nil {
			return fmt.Errorf("%w: MarkCompleted - update status: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("MarkCompleted: transaction error for lesson id=%d: %v", id, err)
		return nil, err
	}

	s.logger.Info("MarkCompleted: successfully completed lesson id=%d", id)
	return models.FromDomainLesson(lesson), nil
}

// MarkCanceled отменяет занятие. Разрешено только для запланированных
// и идущих занятий. Отмененное занятие не держит время учителя и аудитории.
func (s *Service) MarkCanceled(ctx context.Context, id int64) (*models.LessonResponse, error) {
	s.logger.Info("MarkCanceled: cancelling lesson id=%d", id)

	lesson, err := s.lessonRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, lessonRepo.ErrLessonNotFound) {
			s.logger.Warn("MarkCanceled: lesson id=%d not found", id)
			return nil, ErrLessonNotFound
		}
		s.logger.Error("MarkCanceled: repository error for lesson id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: MarkCanceled - repository error: %v", ErrInternal, err)
	}

	if !lesson.CanBeCancelled() {
		s.logger.Warn("MarkCanceled: lesson id=%d cannot be cancelled, status=%s", id, lesson.Status)
		return nil, ErrCannotCancel
	}

	if err := s.lessonRepo.UpdateStatus(ctx, id, domain.LessonStatusCanceled); err != nil {
		if errors.Is(err, lessonRepo.ErrLessonNotFound) {
			return nil, ErrLessonNotFound
		}
		s.logger.Error("MarkCanceled: repository error for lesson id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: MarkCanceled - repository error: %v", ErrInternal, err)
	}

	lesson.Status = domain.LessonStatusCanceled
	s.logger.Info("MarkCanceled: successfully cancelled lesson id=%d", id)
	return models.FromDomainLesson(lesson), nil
}

// Delete мягко удаляет занятие
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.logger.Info("Delete: deleting lesson id=%d", id)

	if err := s.lessonRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, lessonRepo.ErrLessonNotFound) {
			s.logger.Warn("Delete: lesson id=%d not found", id)
			return ErrLessonNotFound
		}
		s.logger.Error("Delete: repository error for lesson id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: successfully deleted lesson id=%d", id)
	return nil
}

// Вспомогательные методы

// buildLesson валидирует запрос и собирает доменное занятие, денормализуя
// данные назначения "класс-предмет" и имя аудитории
func (s *Service) buildLesson(ctx context.Context, req *models.CreateLessonRequest) (*domain.LessonInstance, error) {
	if req.ClassSubjectID <= 0 {
		return nil, fmt.Errorf("%w: classSubjectId is required", ErrInvalidInput)
	}
	if req.LessonNumber < domain.MinLessonNumber || req.LessonNumber > domain.MaxLessonNumber {
		return nil, fmt.Errorf("%w: lessonNumber must be between %d and %d",
			ErrInvalidInput, domain.MinLessonNumber, domain.MaxLessonNumber)
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

	classSubject, err := s.schoolClient.GetClassSubject(ctx, req.ClassSubjectID)
	if err != nil {
		if errors.Is(err, schoolClient.ErrClassSubjectNotFound) {
			s.logger.Warn("buildLesson: class subject id=%d not found", req.ClassSubjectID)
			return nil, ErrClassSubjectNotFound
		}
		s.logger.Error("buildLesson: failed to get class subject id=%d: %v", req.ClassSubjectID, err)
		return nil, fmt.Errorf("%w: buildLesson - failed to get class subject: %v", ErrInternal, err)
	}

	lesson := &domain.LessonInstance{
		ClassSubjectID:  req.ClassSubjectID,
		TeacherID:       classSubject.TeacherID,
		TeacherName:     classSubject.TeacherName,
		SubjectID:       classSubject.SubjectID,
		SubjectName:     classSubject.SubjectName,
		ClassID:         classSubject.ClassID,
		ClassName:       classSubject.ClassName,
		Date:            date,
		LessonNumber:    req.LessonNumber,
		StartTime:       startTime,
		EndTime:         endTime,
		RoomID:          req.RoomID,
		Status:          domain.LessonStatusPlanned,
		IsAutoGenerated: false,
	}

	if req.RoomID != nil {
		if err := s.resolveRoom(ctx, lesson, *req.RoomID, classSubject.BranchID); err != nil {
			return nil, err
		}
	}
	if req.TopicID != nil {
		if err := s.resolveTopic(ctx, lesson, *req.TopicID); err != nil {
			return nil, err
		}
	}

	return lesson, nil
}

// applyLessonUpdate применяет частичное обновление к занятию.
// Возвращает true, если изменились дата, время или аудитория
// (потребуется перепроверка конфликтов).
func (s *Service) applyLessonUpdate(ctx context.Context, lesson *domain.LessonInstance, req *models.UpdateLessonRequest) (bool, error) {
	timingChanged := false

	if req.Date != nil {
		date, err := time.Parse(domain.DateFormat, *req.Date)
		if err != nil {
			return false, fmt.Errorf("%w: invalid date", ErrInvalidInput)
		}
		lesson.Date = date
		timingChanged = true
	}
	if req.LessonNumber != nil {
		if *req.LessonNumber < domain.MinLessonNumber || *req.LessonNumber > domain.MaxLessonNumber {
			return false, fmt.Errorf("%w: lessonNumber must be between %d and %d",
				ErrInvalidInput, domain.MinLessonNumber, domain.MaxLessonNumber)
		}
		lesson.LessonNumber = *req.LessonNumber
	}
	if req.StartTime != nil {
		startTime, err := types.NewTimeStringFromString(*req.StartTime)
		if err != nil {
			return false, fmt.Errorf("%w: invalid startTime", ErrInvalidInput)
		}
		lesson.StartTime = startTime
		timingChanged = true
	}
	if req.EndTime != nil {
		endTime, err := types.NewTimeStringFromString(*req.EndTime)
		if err != nil {
			return false, fmt.Errorf("%w: invalid endTime", ErrInvalidInput)
		}
		lesson.EndTime = endTime
		timingChanged = true
	}
	if !lesson.StartTime.IsBefore(lesson.EndTime) {
		return false, fmt.Errorf("%w: startTime must be before endTime", ErrInvalidTimeRange)
	}
	if req.RoomID != nil {
		// Филиал класса узнаем по назначению занятия
		classSubject, err := s.schoolClient.GetClassSubject(ctx, lesson.ClassSubjectID)
		if err != nil {
			if errors.Is(err, schoolClient.ErrClassSubjectNotFound) {
				return false, ErrClassSubjectNotFound
			}
			return false, fmt.Errorf("%w: applyLessonUpdate - failed to get class subject: %v", ErrInternal, err)
		}
		if err := s.resolveRoom(ctx, lesson, *req.RoomID, classSubject.BranchID); err != nil {
			return false, err
		}
		timingChanged = true
	}
	if req.TopicID != nil {
		if err := s.resolveTopic(ctx, lesson, *req.TopicID); err != nil {
			return false, err
		}
	}
	if req.Homework != nil {
		if len(*req.Homework) > domain.MaxHomeworkLength {
			return false, fmt.Errorf("%w: homework is too long", ErrInvalidInput)
		}
		lesson.Homework = req.Homework
	}
	if req.TeacherNotes != nil {
		if len(*req.TeacherNotes) > domain.MaxTeacherNotesLength {
			return false, fmt.Errorf("%w: teacherNotes is too long", ErrInvalidInput)
		}
		lesson.TeacherNotes = req.TeacherNotes
	}

	return timingChanged, nil
}

func (s *Service) resolveRoom(ctx context.Context, lesson *domain.LessonInstance, roomID, branchID int64) error {
	room, err := s.branchClient.GetRoomWithGracefulDegradation(ctx, roomID)
	switch {
	case err == nil:
		// Аудитория должна быть в филиале класса
		if room.BranchID != branchID {
			s.logger.Warn("resolveRoom: room id=%d belongs to branch=%d, class branch=%d",
				roomID, room.BranchID, branchID)
			return fmt.Errorf("%w: room belongs to another branch", ErrInvalidInput)
		}
		lesson.RoomID = &roomID
		lesson.RoomName = &room.Name
		return nil
	case errors.Is(err, branchClient.ErrRoomNotFound):
		s.logger.Warn("resolveRoom: room id=%d not found", roomID)
		return ErrRoomNotFound
	case errors.Is(err, branchClient.ErrServiceDegraded):
		placeholder := fmt.Sprintf("room-%d", roomID)
		lesson.RoomID = &roomID
		lesson.RoomName = &placeholder
		return nil
	default:
		s.logger.Error("resolveRoom: failed to get room id=%d: %v", roomID, err)
		return fmt.Errorf("%w: resolveRoom - failed to get room: %v", ErrInternal, err)
	}
}

func (s *Service) resolveTopic(ctx context.Context, lesson *domain.LessonInstance, topicID int64) error {
	topic, err := s.topicRepo.GetByID(ctx, topicID)
	if err != nil {
		s.logger.Warn("resolveTopic: topic id=%d not found: %v", topicID, err)
		return ErrTopicNotFound
	}

	// Тема должна относиться к предмету занятия
	if topic.SubjectID != lesson.SubjectID {
		s.logger.Warn("resolveTopic: topic id=%d belongs to subject=%d, lesson subject=%d",
			topicID, topic.SubjectID, lesson.SubjectID)
		return fmt.Errorf("%w: topic does not belong to the lesson subject", ErrInvalidInput)
	}

	lesson.TopicID = &topicID
	return nil
}

// checkLessonConflictsInTx встречная проверка конфликтов внутри транзакции
func (s *Service) checkLessonConflictsInTx(ctx context.Context, lesson *domain.LessonInstance) error {
	existing, err := s.lessonRepo.ListForConflictCheck(ctx, lesson.Date, lesson.TeacherID, lesson.RoomID)
	if err != nil {
		return fmt.Errorf("%w: conflict check - repository error: %v", ErrInternal, err)
	}

	if found := conflicts.DetectLessonConflicts(*lesson, existing); len(found) > 0 {
		return &ConflictError{Conflicts: found}
	}

	return nil
}

func toDomainLessonFilter(req *models.ListLessonsRequest) (domain.LessonFilter, error) {
	filter := domain.LessonFilter{
		ClassID:         req.ClassID,
		TeacherID:       req.TeacherID,
		ClassSubjectID:  req.ClassSubjectID,
		IncludeCanceled: req.IncludeCanceled,
	}

	if req.DateFrom != nil {
		from, err := time.Parse(domain.DateFormat, *req.DateFrom)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid dateFrom", ErrInvalidInput)
		}
		filter.DateFrom = &from
	}
	if req.DateTo != nil {
		to, err := time.Parse(domain.DateFormat, *req.DateTo)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid dateTo", ErrInvalidInput)
		}
		filter.DateTo = &to
	}
	if req.Status != nil {
		status, ok := models.ToDomainLessonStatus(*req.Status)
		if !ok {
			return filter, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	return filter, nil
}

// startOfWeek нормализует дату к понедельнику её недели
func startOfWeek(date time.Time) time.Time {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (s *Service) logLessonError(method string, id int64, err error) {
	switch {
	case errors.Is(err, ErrLessonNotFound),
		errors.Is(err, ErrDuplicateLesson),
		errors.Is(err, ErrScheduleConflict),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidTimeRange):
		s.logger.Warn("%s: id=%d: %v", method, id, err)
	default:
		s.logger.Error("%s: id=%d: %v", method, id, err)
	}
}
