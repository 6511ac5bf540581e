package timetables

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/maktab-crm/schedule-service/internal/domain"
	timetableRepo "github.com/maktab-crm/schedule-service/internal/infra/storage/timetable"
	schoolClient "github.com/maktab-crm/schedule-service/internal/integrations/schoolservice"
	"github.com/maktab-crm/schedule-service/internal/service/timetables/models"
)

// Service сервис для работы с шаблонами расписания и их слотами
type Service struct {
	timetableRepo TimetableRepository
	lessonRepo    LessonRepository
	schoolClient  SchoolServiceClient
	branchClient  BranchServiceClient
	txManager     TransactionManager
	timeProvider  TimeProvider
	logger        Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	timetableRepo TimetableRepository,
	lessonRepo LessonRepository,
	schoolClient SchoolServiceClient,
	branchClient BranchServiceClient,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		timetableRepo: timetableRepo,
		lessonRepo:    lessonRepo,
		schoolClient:  schoolClient,
		branchClient:  branchClient,
		txManager:     txManager,
		timeProvider:  timeProvider,
		logger:        logger,
	}
}

// CreateTemplate создает новый шаблон расписания.
// Шаблон создается неактивным: активация - отдельная операция.
func (s *Service) CreateTemplate(ctx context.Context, req *models.CreateTemplateRequest) (*models.TemplateResponse, error) {
	s.logger.Info("CreateTemplate: creating template for branch=%d, year=%d", req.BranchID, req.AcademicYearID)

	if err := s.validateTemplateRequest(req); err != nil {
		s.logger.Warn("CreateTemplate: validation failed for branch=%d: %v", req.BranchID, err)
		return nil, err
	}

	effectiveFrom, effectiveUntil, err := parseEffectiveDates(req.EffectiveFrom, req.EffectiveUntil)
	if err != nil {
		s.logger.Warn("CreateTemplate: invalid dates for branch=%d: %v", req.BranchID, err)
		return nil, fmt.Errorf("%w: invalid effective dates", ErrInvalidInput)
	}

	if err := s.validateEffectiveWindow(ctx, req.AcademicYearID, effectiveFrom, effectiveUntil); err != nil {
		s.logger.Warn("CreateTemplate: effective window rejected for branch=%d, year=%d: %v",
			req.BranchID, req.AcademicYearID, err)
		return nil, err
	}

	template := &domain.TimetableTemplate{
		BranchID:       req.BranchID,
		AcademicYearID: req.AcademicYearID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		IsActive:       false,
		EffectiveFrom:  effectiveFrom,
		EffectiveUntil: effectiveUntil,
	}

	created, err := s.timetableRepo.CreateTemplate(ctx, template)
	if err != nil {
		s.logger.Error("CreateTemplate: repository error for branch=%d: %v", req.BranchID, err)
		return nil, fmt.Errorf("%w: CreateTemplate - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateTemplate: successfully created template id=%d", created.ID)
	return models.FromDomainTemplate(created), nil
}

// GetTemplate получает шаблон по ID
func (s *Service) GetTemplate(ctx context.Context, id int64) (*models.TemplateResponse, error) {
	template, err := s.timetableRepo.GetTemplateByID(ctx, id)
	if err != nil {
		if errors.Is(err, timetableRepo.ErrTemplateNotFound) {
			s.logger.Warn("GetTemplate: template id=%d not found", id)
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("GetTemplate: repository error for template id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetTemplate - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainTemplate(template), nil
}

// ListTemplates получает шаблоны по фильтру
func (s *Service) ListTemplates(ctx context.Context, req *models.ListTemplatesRequest) (*models.TemplateListResponse, error) {
	templates, err := s.timetableRepo.ListTemplates(ctx, req.ToDomainFilter())
	if err != nil {
		s.logger.Error("ListTemplates: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListTemplates - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListTemplates: fetched %d templates", len(templates))
	return models.FromDomainTemplateList(templates), nil
}

// UpdateTemplate обновляет поля шаблона
func (s *Service) UpdateTemplate(ctx context.Context, id int64, req *models.UpdateTemplateRequest) (*models.TemplateResponse, error) {
	s.logger.Info("UpdateTemplate: updating template id=%d", id)

	template, err := s.timetableRepo.GetTemplateByID(ctx, id)
	if err != nil {
		if errors.Is(err, timetableRepo.ErrTemplateNotFound) {
			s.logger.Warn("UpdateTemplate: template id=%d not found", id)
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("UpdateTemplate: repository error for template id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: UpdateTemplate - repository error: %v", ErrInternal, err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > domain.MaxTemplateNameLength {
			return nil, fmt.Errorf("%w: invalid template name", ErrInvalidInput)
		}
		template.Name = name
	}
	if req.Description != nil {
		template.Description = req.Description
	}
	if req.EffectiveFrom != nil {
		from, err := time.Parse(domain.DateFormat, *req.EffectiveFrom)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid effectiveFrom", ErrInvalidInput)
		}
		template.EffectiveFrom = from
	}
	if req.EffectiveUntil != nil {
		until, err := time.Parse(domain.DateFormat, *req.EffectiveUntil)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid effectiveUntil", ErrInvalidInput)
		}
		template.EffectiveUntil = &until
	}
	if template.EffectiveUntil != nil && !template.EffectiveFrom.Before(*template.EffectiveUntil) {
		return nil, fmt.Errorf("%w: effectiveFrom must be before effectiveUntil", ErrInvalidInput)
	}
	if req.EffectiveFrom != nil || req.EffectiveUntil != nil {
		if err := s.validateEffectiveWindow(ctx, template.AcademicYearID, template.EffectiveFrom, template.EffectiveUntil); err != nil {
			s.logger.Warn("UpdateTemplate: effective window rejected for template id=%d: %v", id, err)
			return nil, err
		}
	}

	if err := s.timetableRepo.UpdateTemplate(ctx, template); err != nil {
		if errors.Is(err, timetableRepo.ErrTemplateNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("UpdateTemplate: repository error for template id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: UpdateTemplate - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateTemplate: successfully updated template id=%d", id)
	return models.FromDomainTemplate(template), nil
}

// ActivateTemplate делает шаблон активным для своей пары (филиал, учебный год).
// Прочие активные шаблоны пары выключаются в той же транзакции: инвариант
// "не более одного активного шаблона" держится даже при параллельных активациях
// (Serializable + частичный уникальный индекс в БД как последний рубеж).
func (s *Service) ActivateTemplate(ctx context.Context, id int64) (*models.TemplateResponse, error) {
	s.logger.Info("ActivateTemplate: activating template id=%d", id)

	var activated *domain.TimetableTemplate

	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		template, err := s.timetableRepo.GetTemplateByID(ctx, id)
		if err != nil {
			if errors.Is(err, timetableRepo.ErrTemplateNotFound) {
				return ErrTemplateNotFound
			}
			return fmt.Errorf("%w: ActivateTemplate - get template: %v", ErrInternal, err)
		}

		if err := s.timetableRepo.DeactivateOtherTemplates(ctx, template.BranchID, template.AcademicYearID, template.ID); err != nil {
			return fmt.Errorf("%w: ActivateTemplate - deactivate others: %v", ErrInternal, err)
		}

		if err := s.timetableRepo.SetTemplateActive(ctx, template.ID, true); err != nil {
			if errors.Is(err, timetableRepo.ErrDuplicateTemplate) {
				return ErrDuplicateTemplate
			}
			return fmt.Errorf("%w: ActivateTemplate - set active: %v", ErrInternal, err)
		}

		template.IsActive = true
		activated = template
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrTemplateNotFound) || errors.Is(err, ErrDuplicateTemplate) {
			s.logger.Warn("ActivateTemplate: template id=%d: %v", id, err)
			return nil, err
		}
		s.logger.Error("ActivateTemplate: transaction error for template id=%d: %v", id, err)
		return nil, err
	}

	s.logger.Info("ActivateTemplate: successfully activated template id=%d", id)
	return models.FromDomainTemplate(activated), nil
}

// DeactivateTemplate выключает шаблон
func (s *Service) DeactivateTemplate(ctx context.Context, id int64) error {
	s.logger.Info("DeactivateTemplate: deactivating template id=%d", id)

	if err := s.timetableRepo.SetTemplateActive(ctx, id, false); err != nil {
		if errors.Is(err, timetableRepo.ErrTemplateNotFound) {
			s.logger.Warn("DeactivateTemplate: template id=%d not found", id)
			return ErrTemplateNotFound
		}
		s.logger.Error("DeactivateTemplate: repository error for template id=%d: %v", id, err)
		return fmt.Errorf("%w: DeactivateTemplate - repository error: %v", ErrInternal, err)
	}

	return nil
}

// DeleteTemplate мягко удаляет шаблон. Слоты и занятия не трогаются:
// удаленный шаблон перестает участвовать в генерации, а историю расписания
// сохраняем.
func (s *Service) DeleteTemplate(ctx context.Context, id int64) error {
	s.logger.Info("DeleteTemplate: deleting template id=%d", id)

	if err := s.timetableRepo.SoftDeleteTemplate(ctx, id); err != nil {
		if errors.Is(err, timetableRepo.ErrTemplateNotFound) {
			s.logger.Warn("DeleteTemplate: template id=%d not found", id)
			return ErrTemplateNotFound
		}
		s.logger.Error("DeleteTemplate: repository error for template id=%d: %v", id, err)
		return fmt.Errorf("%w: DeleteTemplate - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteTemplate: successfully deleted template id=%d", id)
	return nil
}

// Вспомогательные методы

func (s *Service) validateTemplateRequest(req *models.CreateTemplateRequest) error {
	if req.BranchID <= 0 || req.AcademicYearID <= 0 {
		return fmt.Errorf("%w: branchId and academicYearId are required", ErrInvalidInput)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fmt.Errorf("%w: template name is required", ErrInvalidInput)
	}
	if len(name) > domain.MaxTemplateNameLength {
		return fmt.Errorf("%w: template name is too long", ErrInvalidInput)
	}

	return nil
}

// validateEffectiveWindow проверяет, что окно действия шаблона лежит
// в границах учебного года
func (s *Service) validateEffectiveWindow(ctx context.Context, academicYearID int64, from time.Time, until *time.Time) error {
	year, err := s.schoolClient.GetAcademicYear(ctx, academicYearID)
	if err != nil {
		if errors.Is(err, schoolClient.ErrAcademicYearNotFound) {
			return ErrAcademicYearNotFound
		}
		return fmt.Errorf("%w: validateEffectiveWindow - failed to get academic year: %v", ErrInternal, err)
	}

	yearStart, err := time.Parse(domain.DateFormat, year.StartDate)
	if err != nil {
		return fmt.Errorf("%w: validateEffectiveWindow - invalid academic year start date: %v", ErrInternal, err)
	}
	yearEnd, err := time.Parse(domain.DateFormat, year.EndDate)
	if err != nil {
		return fmt.Errorf("%w: validateEffectiveWindow - invalid academic year end date: %v", ErrInternal, err)
	}

	if from.Before(yearStart) || from.After(yearEnd) {
		return fmt.Errorf("%w: effectiveFrom is outside the academic year", ErrInvalidInput)
	}
	if until != nil && until.After(yearEnd) {
		return fmt.Errorf("%w: effectiveUntil is outside the academic year", ErrInvalidInput)
	}

	return nil
}

func parseEffectiveDates(fromStr string, untilStr *string) (time.Time, *time.Time, error) {
	from, err := time.Parse(domain.DateFormat, fromStr)
	if err != nil {
		return time.Time{}, nil, err
	}

	if untilStr == nil {
		return from, nil, nil
	}

	until, err := time.Parse(domain.DateFormat, *untilStr)
	if err != nil {
		return time.Time{}, nil, err
	}
	if !from.Before(until) {
		return time.Time{}, nil, errors.New("effectiveFrom must be before effectiveUntil")
	}

	return from, &until, nil
}
