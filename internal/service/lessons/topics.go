package lessons

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/maktab-crm/schedule-service/internal/domain"
	topicRepo "github.com/maktab-crm/schedule-service/internal/infra/storage/topic"
	"github.com/maktab-crm/schedule-service/internal/service/lessons/models"
)

// CreateTopic создает тему календарно-тематического плана
func (s *Service) CreateTopic(ctx context.Context, req *models.CreateTopicRequest) (*models.TopicResponse, error) {
	s.logger.Info("CreateTopic: creating topic for subject=%d, position=%d", req.SubjectID, req.Position)

	if req.SubjectID <= 0 {
		return nil, fmt.Errorf("%w: subjectId is required", ErrInvalidInput)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if req.Position <= 0 {
		return nil, fmt.Errorf("%w: position must be positive", ErrInvalidInput)
	}
	if req.EstimatedHours < 0 {
		return nil, fmt.Errorf("%w: estimatedHours must not be negative", ErrInvalidInput)
	}

	topic := &domain.LessonTopic{
		SubjectID:      req.SubjectID,
		QuarterID:      req.QuarterID,
		Title:          title,
		Description:    req.Description,
		Position:       req.Position,
		EstimatedHours: req.EstimatedHours,
	}

	created, err := s.topicRepo.Create(ctx, topic)
	if err != nil {
		if errors.Is(err, topicRepo.ErrDuplicateTopic) {
			s.logger.Warn("CreateTopic: duplicate topic for subject=%d, position=%d", req.SubjectID, req.Position)
			return nil, ErrDuplicateTopic
		}
		s.logger.Error("CreateTopic: repository error for subject=%d: %v", req.SubjectID, err)
		return nil, fmt.Errorf("%w: CreateTopic - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateTopic: successfully created topic id=%d", created.ID)
	return models.FromDomainTopic(created), nil
}

// GetTopic получает тему по ID
func (s *Service) GetTopic(ctx context.Context, id int64) (*models.TopicResponse, error) {
	topic, err := s.topicRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, topicRepo.ErrTopicNotFound) {
			s.logger.Warn("GetTopic: topic id=%d not found", id)
			return nil, ErrTopicNotFound
		}
		s.logger.Error("GetTopic: repository error for topic id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetTopic - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainTopic(topic), nil
}

// ListTopics получает темы предмета в порядке позиций,
// опционально по четверти
func (s *Service) ListTopics(ctx context.Context, subjectID int64, quarterID *int64) (*models.TopicListResponse, error) {
	if subjectID <= 0 {
		return nil, fmt.Errorf("%w: subjectId is required", ErrInvalidInput)
	}

	topics, err := s.topicRepo.ListBySubject(ctx, subjectID, quarterID)
	if err != nil {
		s.logger.Error("ListTopics: repository error for subject=%d: %v", subjectID, err)
		return nil, fmt.Errorf("%w: ListTopics - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListTopics: fetched %d topics for subject=%d", len(topics), subjectID)
	return models.FromDomainTopicList(topics), nil
}

// UpdateTopic обновляет поля темы
func (s *Service) UpdateTopic(ctx context.Context, id int64, req *models.UpdateTopicRequest) (*models.TopicResponse, error) {
	s.logger.Info("UpdateTopic: updating topic id=%d", id)

	topic, err := s.topicRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, topicRepo.ErrTopicNotFound) {
			s.logger.Warn("UpdateTopic: topic id=%d not found", id)
			return nil, ErrTopicNotFound
		}
		s.logger.Error("UpdateTopic: repository error for topic id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: UpdateTopic - repository error: %v", ErrInternal, err)
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		topic.Title = title
	}
	if req.Description != nil {
		topic.Description = req.Description
	}
	if req.Position != nil {
		if *req.Position <= 0 {
			return nil, fmt.Errorf("%w: position must be positive", ErrInvalidInput)
		}
		topic.Position = *req.Position
	}
	if req.EstimatedHours != nil {
		if *req.EstimatedHours < 0 {
			return nil, fmt.Errorf("%w: estimatedHours must not be negative", ErrInvalidInput)
		}
		topic.EstimatedHours = *req.EstimatedHours
	}

	if err := s.topicRepo.Update(ctx, topic); err != nil {
		if errors.Is(err, topicRepo.ErrTopicNotFound) {
			return nil, ErrTopicNotFound
		}
		if errors.Is(err, topicRepo.ErrDuplicateTopic) {
			return nil, ErrDuplicateTopic
		}
		s.logger.Error("UpdateTopic: repository error for topic id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: UpdateTopic - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateTopic: successfully updated topic id=%d", id)
	return models.FromDomainTopic(topic), nil
}

// DeleteTopic мягко удаляет тему. Ссылки занятий на тему сохраняются
// как исторические.
func (s *Service) DeleteTopic(ctx context.Context, id int64) error {
	s.logger.Info("DeleteTopic: deleting topic id=%d", id)

	if err := s.topicRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, topicRepo.ErrTopicNotFound) {
			s.logger.Warn("DeleteTopic: topic id=%d not found", id)
			return ErrTopicNotFound
		}
		s.logger.Error("DeleteTopic: repository error for topic id=%d: %v", id, err)
		return fmt.Errorf("%w: DeleteTopic - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteTopic: successfully deleted topic id=%d", id)
	return nil
}
