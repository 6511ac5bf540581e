package timetables

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maktab-crm/schedule-service/internal/conflicts"
	"github.com/maktab-crm/schedule-service/internal/domain"
	timetableRepo "github.com/maktab-crm/schedule-service/internal/infra/storage/timetable"
	branchClient "github.com/maktab-crm/schedule-service/internal/integrations/branchservice"
	schoolClient "github.com/maktab-crm/schedule-service/internal/integrations/schoolservice"
	"github.com/maktab-crm/schedule-service/internal/service/timetables/models"
	"github.com/maktab-crm/schedule-service/pkg/types"
)

// CreateSlot создает слот шаблона со встречной проверкой конфликтов.
// Проверка и вставка выполняются в одной Serializable транзакции:
// две параллельные записи пересекающихся слотов не пройдут обе.
func (s *Service) CreateSlot(ctx context.Context, timetableID int64, req *models.SlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("CreateSlot: creating slot for timetable=%d, class=%d, day=%s, lesson=%d",
		timetableID, req.ClassID, req.DayOfWeek, req.LessonNumber)

	slot, err := s.buildSlot(ctx, timetableID, req)
	if err != nil {
		return nil, err
	}

	var created *domain.TimetableSlot

	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if _, err := s.timetableRepo.GetTemplateByID(ctx, timetableID); err != nil {
			if errors.Is(err, timetableRepo.ErrTemplateNotFound) {
				return ErrTemplateNotFound
			}
			return fmt.Errorf("%w: CreateSlot - get template: %v", ErrInternal, err)
		}

		if err := s.checkSlotConflictsInTx(ctx, slot); err != nil {
			return err
		}

		createdSlot, err := s.timetableRepo.CreateSlot(ctx, slot)
		if err != nil {
			if errors.Is(err, timetableRepo.ErrDuplicateSlot) {
				return ErrDuplicateSlot
			}
			return fmt.Errorf("%w: CreateSlot - repository error: %v", ErrInternal, err)
		}

		created = createdSlot
		return nil
	})

	if err != nil {
		s.logSlotError("CreateSlot", timetableID, err)
		return nil, err
	}

	s.logger.Info("CreateSlot: successfully created slot id=%d", created.ID)
	return models.FromDomainSlot(created), nil
}

// UpdateSlot обновляет слот со встречной проверкой конфликтов.
// Сам слот из проверки исключается.
func (s *Service) UpdateSlot(ctx context.Context, slotID int64, req *models.SlotRequest) (*models.SlotResponse, error) {
	s.logger.Info("UpdateSlot: updating slot id=%d", slotID)

	var updated *domain.TimetableSlot

	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		existing, err := s.timetableRepo.GetSlotByID(ctx, slotID)
		if err != nil {
			if errors.Is(err, timetableRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("%w: UpdateSlot - get slot: %v", ErrInternal, err)
		}

		slot, err := s.buildSlot(ctx, existing.TimetableID, req)
		if err != nil {
			return err
		}
		slot.ID = existing.ID
		slot.CreatedAt = existing.CreatedAt

		if err := s.checkSlotConflictsInTx(ctx, slot); err != nil {
			return err
		}

		if err := s.timetableRepo.UpdateSlot(ctx, slot); err != nil {
			if errors.Is(err, timetableRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			if errors.Is(err, timetableRepo.ErrDuplicateSlot) {
				return ErrDuplicateSlot
			}
			return fmt.Errorf("%w: UpdateSlot - repository error: %v", ErrInternal, err)
		}

		updated = slot
		return nil
	})

	if err != nil {
		s.logSlotError("UpdateSlot", slotID, err)
		return nil, err
	}

	s.logger.Info("UpdateSlot: successfully updated slot id=%d", slotID)
	return models.FromDomainSlot(updated), nil
}

// DeleteSlot мягко удаляет слот и каскадно зачищает его запланированные
// автосгенерированные занятия с сегодняшнего дня включительно. Обе операции
// в одной транзакции: прошедшие и проведенные занятия каскад не трогает.
func (s *Service) DeleteSlot(ctx context.Context, slotID int64) (*models.DeleteSlotResponse, error) {
	s.logger.Info("DeleteSlot: deleting slot id=%d", slotID)

	var deletedLessons int64

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.timetableRepo.SoftDeleteSlot(ctx, slotID); err != nil {
			if errors.Is(err, timetableRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("%w: DeleteSlot - repository error: %v", ErrInternal, err)
		}

		// Колонка date хранит дату без времени: сравнение с сырым
		// timestamp пропустило бы сегодняшние занятия
		now := s.timeProvider.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		count, err := s.lessonRepo.SoftDeleteFuturePlannedBySlot(ctx, slotID, today)
		if err != nil {
			return fmt.Errorf("%w: DeleteSlot - cascade cleanup: %v", ErrInternal, err)
		}

		deletedLessons = count
		return nil
	})

	if err != nil {
		s.logSlotError("DeleteSlot", slotID, err)
		return nil, err
	}

	s.logger.Info("DeleteSlot: successfully deleted slot id=%d, cleaned %d future lessons", slotID, deletedLessons)
	return &models.DeleteSlotResponse{DeletedLessons: deletedLessons}, nil
}

// BulkCreateSlots пакетно создает слоты шаблона, всё или ничего.
// Слоты проверяются и вставляются в порядке подачи внутри одной
// Serializable транзакции: каждый следующий слот видит уже вставленные
// предыдущие, первый конфликт откатывает весь пакет.
func (s *Service) BulkCreateSlots(ctx context.Context, timetableID int64, req *models.BulkCreateSlotsRequest) (*models.SlotListResponse, error) {
	s.logger.Info("BulkCreateSlots: creating %d slots for timetable=%d", len(req.Slots), timetableID)

	if len(req.Slots) == 0 {
		return nil, fmt.Errorf("%w: slots list is empty", ErrInvalidInput)
	}

	created := make([]domain.TimetableSlot, 0, len(req.Slots))

	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		if _, err := s.timetableRepo.GetTemplateByID(ctx, timetableID); err != nil {
			if errors.Is(err, timetableRepo.ErrTemplateNotFound) {
				return ErrTemplateNotFound
			}
			return fmt.Errorf("%w: BulkCreateSlots - get template: %v", ErrInternal, err)
		}

		for i := range req.Slots {
			slot, err := s.buildSlot(ctx, timetableID, &req.Slots[i])
			if err != nil {
				return fmt.Errorf("slot %d: %w", i, err)
			}

			if err := s.checkSlotConflictsInTx(ctx, slot); err != nil {
				return fmt.Errorf("slot %d: %w", i, err)
			}

			createdSlot, err := s.timetableRepo.CreateSlot(ctx, slot)
			if err != nil {
				if errors.Is(err, timetableRepo.ErrDuplicateSlot) {
					return fmt.Errorf("slot %d: %w", i, ErrDuplicateSlot)
				}
				return fmt.Errorf("%w: BulkCreateSlots - repository error: %v", ErrInternal, err)
			}

			created = append(created, *createdSlot)
		}

		return nil
	})

	if err != nil {
		s.logSlotError("BulkCreateSlots", timetableID, err)
		return nil, err
	}

	s.logger.Info("BulkCreateSlots: successfully created %d slots for timetable=%d", len(created), timetableID)
	return models.FromDomainSlotList(created), nil
}

// ListSlots получает все слоты шаблона
func (s *Service) ListSlots(ctx context.Context, timetableID int64) (*models.SlotListResponse, error) {
	if _, err := s.timetableRepo.GetTemplateByID(ctx, timetableID); err != nil {
		if errors.Is(err, timetableRepo.ErrTemplateNotFound) {
			s.logger.Warn("ListSlots: template id=%d not found", timetableID)
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("ListSlots: repository error for template id=%d: %v", timetableID, err)
		return nil, fmt.Errorf("%w: ListSlots - repository error: %v", ErrInternal, err)
	}

	slots, err := s.timetableRepo.ListSlotsByTimetable(ctx, timetableID)
	if err != nil {
		s.logger.Error("ListSlots: repository error for template id=%d: %v", timetableID, err)
		return nil, fmt.Errorf("%w: ListSlots - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSlotList(slots), nil
}

// CheckSlotConflicts проверяет слот на конфликты без записи (предпросмотр).
// Результат носит справочный характер: между проверкой и последующим
// созданием состояние могло измениться, создание перепроверяет само.
func (s *Service) CheckSlotConflicts(ctx context.Context, timetableID int64, req *models.SlotRequest) (*models.ConflictCheckResponse, error) {
	slot, err := s.buildSlot(ctx, timetableID, req)
	if err != nil {
		return nil, err
	}

	existing, err := s.timetableRepo.ListSlotsForConflictCheck(ctx, timetableID, slot.DayOfWeek)
	if err != nil {
		s.logger.Error("CheckSlotConflicts: repository error for timetable=%d: %v", timetableID, err)
		return nil, fmt.Errorf("%w: CheckSlotConflicts - repository error: %v", ErrInternal, err)
	}

	found := conflicts.DetectSlotConflicts(*slot, existing)
	s.logger.Info("CheckSlotConflicts: found %d conflicts for timetable=%d", len(found), timetableID)

	return models.FromDomainConflicts(found), nil
}

// Вспомогательные методы

// buildSlot валидирует запрос и собирает доменный слот, денормализуя
// данные назначения "класс-предмет" и имя аудитории из внешних сервисов
func (s *Service) buildSlot(ctx context.Context, timetableID int64, req *models.SlotRequest) (*domain.TimetableSlot, error) {
	if err := validateSlotRequest(req); err != nil {
		return nil, err
	}

	day, _ := domain.ParseDayOfWeek(req.DayOfWeek)
	startTime, _ := types.NewTimeStringFromString(req.StartTime)
	endTime, _ := types.NewTimeStringFromString(req.EndTime)

	classSubject, err := s.schoolClient.GetClassSubject(ctx, req.ClassSubjectID)
	if err != nil {
		if errors.Is(err, schoolClient.ErrClassSubjectNotFound) {
			s.logger.Warn("buildSlot: class subject id=%d not found", req.ClassSubjectID)
			return nil, ErrClassSubjectNotFound
		}
		s.logger.Error("buildSlot: failed to get class subject id=%d: %v", req.ClassSubjectID, err)
		return nil, fmt.Errorf("%w: buildSlot - failed to get class subject: %v", ErrInternal, err)
	}

	if classSubject.ClassID != req.ClassID {
		s.logger.Warn("buildSlot: class subject id=%d belongs to class=%d, not class=%d",
			req.ClassSubjectID, classSubject.ClassID, req.ClassID)
		return nil, fmt.Errorf("%w: class subject does not belong to the class", ErrInvalidInput)
	}

	slot := &domain.TimetableSlot{
		TimetableID:    timetableID,
		ClassID:        req.ClassID,
		ClassSubjectID: req.ClassSubjectID,
		TeacherID:      classSubject.TeacherID,
		TeacherName:    classSubject.TeacherName,
		SubjectID:      classSubject.SubjectID,
		SubjectName:    classSubject.SubjectName,
		ClassName:      classSubject.ClassName,
		DayOfWeek:      day,
		LessonNumber:   req.LessonNumber,
		StartTime:      startTime,
		EndTime:        endTime,
		RoomID:         req.RoomID,
	}

	if req.RoomID != nil {
		room, err := s.branchClient.GetRoomWithGracefulDegradation(ctx, *req.RoomID)
		switch {
		case err == nil:
			// Аудитория должна быть в филиале класса
			if room.BranchID != classSubject.BranchID {
				s.logger.Warn("buildSlot: room id=%d belongs to branch=%d, class branch=%d",
					*req.RoomID, room.BranchID, classSubject.BranchID)
				return nil, fmt.Errorf("%w: room belongs to another branch", ErrInvalidInput)
			}
			slot.RoomName = &room.Name
		case errors.Is(err, branchClient.ErrRoomNotFound):
			s.logger.Warn("buildSlot: room id=%d not found", *req.RoomID)
			return nil, ErrRoomNotFound
		case errors.Is(err, branchClient.ErrServiceDegraded):
			// BranchService недоступен: сохраняем слот с плейсхолдером,
			// конфликты по аудитории проверяются по room_id
			placeholder := fmt.Sprintf("room-%d", *req.RoomID)
			slot.RoomName = &placeholder
		default:
			s.logger.Error("buildSlot: failed to get room id=%d: %v", *req.RoomID, err)
			return nil, fmt.Errorf("%w: buildSlot - failed to get room: %v", ErrInternal, err)
		}
	}

	return slot, nil
}

// checkSlotConflictsInTx встречная проверка конфликтов внутри транзакции.
// ListSlotsForConflictCheck блокирует строки дня через FOR UPDATE.
func (s *Service) checkSlotConflictsInTx(ctx context.Context, slot *domain.TimetableSlot) error {
	existing, err := s.timetableRepo.ListSlotsForConflictCheck(ctx, slot.TimetableID, slot.DayOfWeek)
	if err != nil {
		return fmt.Errorf("%w: conflict check - repository error: %v", ErrInternal, err)
	}

	if found := conflicts.DetectSlotConflicts(*slot, existing); len(found) > 0 {
		return &ConflictError{Conflicts: found}
	}

	return nil
}

func validateSlotRequest(req *models.SlotRequest) error {
	if req.ClassID <= 0 || req.ClassSubjectID <= 0 {
		return fmt.Errorf("%w: classId and classSubjectId are required", ErrInvalidInput)
	}

	if _, err := domain.ParseDayOfWeek(req.DayOfWeek); err != nil {
		return fmt.Errorf("%w: invalid dayOfWeek", ErrInvalidInput)
	}

	if req.LessonNumber < domain.MinLessonNumber || req.LessonNumber > domain.MaxLessonNumber {
		return fmt.Errorf("%w: lessonNumber must be between %d and %d",
			ErrInvalidInput, domain.MinLessonNumber, domain.MaxLessonNumber)
	}

	startTime, err := types.NewTimeStringFromString(req.StartTime)
	if err != nil {
		return fmt.Errorf("%w: invalid startTime", ErrInvalidInput)
	}
	endTime, err := types.NewTimeStringFromString(req.EndTime)
	if err != nil {
		return fmt.Errorf("%w: invalid endTime", ErrInvalidInput)
	}
	if !startTime.IsBefore(endTime) {
		return fmt.Errorf("%w: startTime must be before endTime", ErrInvalidTimeRange)
	}

	if req.RoomID != nil && *req.RoomID <= 0 {
		return fmt.Errorf("%w: invalid roomId", ErrInvalidInput)
	}

	return nil
}

func (s *Service) logSlotError(method string, id int64, err error) {
	switch {
	case errors.Is(err, ErrTemplateNotFound),
		errors.Is(err, ErrSlotNotFound),
		errors.Is(err, ErrDuplicateSlot),
		errors.Is(err, ErrScheduleConflict),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidTimeRange):
		s.logger.Warn("%s: id=%d: %v", method, id, err)
	default:
		s.logger.Error("%s: id=%d: %v", method, id, err)
	}
}
