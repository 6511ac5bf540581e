package topic

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/maktab-crm/schedule-service/internal/domain"
	"github.com/maktab-crm/schedule-service/pkg/dbmetrics"
	"github.com/maktab-crm/schedule-service/pkg/psqlbuilder"
)

// Код ошибки PostgreSQL для нарушения уникального ограничения
const pgUniqueViolation = "23505"

// Repository репозиторий для работы с темами календарно-тематического плана
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория тем
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую тему
func (r *Repository) Create(ctx context.Context, topic *domain.LessonTopic) (*domain.LessonTopic, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("lesson_topics").
		Columns(
			"subject_id",
			"quarter_id",
			"title",
			"description",
			"position",
			"estimated_hours",
		).
		Values(
			topic.SubjectID,
			topic.QuarterID,
			topic.Title,
			topic.Description,
			topic.Position,
			topic.EstimatedHours,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&topic.ID,
		&createdAt,
		&updatedAt,
	)

	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: Create: %v", ErrDuplicateTopic, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	topic.CreatedAt = createdAt.Time
	topic.UpdatedAt = updatedAt.Time

	return topic, nil
}

// GetByID получает тему по ID (мягко удаленные не возвращаются)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.LessonTopic, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := topicColumns().
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	topic, err := scanTopic(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrTopicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan topic: %v", ErrScanRow, err)
	}

	return topic, nil
}

// ListBySubject получает темы предмета, опционально по четверти,
// в порядке позиций
func (r *Repository) ListBySubject(ctx context.Context, subjectID int64, quarterID *int64) ([]domain.LessonTopic, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := topicColumns().
		Where(squirrel.Eq{"subject_id": subjectID}).
		Where("deleted_at IS NULL").
		OrderBy("quarter_id ASC NULLS FIRST, position ASC")

	if quarterID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"quarter_id": *quarterID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListBySubject - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListBySubject - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	topics := make([]domain.LessonTopic, 0)
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListBySubject - scan row: %v", ErrScanRow, err)
		}
		topics = append(topics, *topic)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListBySubject - rows error: %v", ErrScanRow, err)
	}

	return topics, nil
}

// Update обновляет поля темы
func (r *Repository) Update(ctx context.Context, topic *domain.LessonTopic) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("lesson_topics").
		Set("title", topic.Title).
		Set("description", topic.Description).
		Set("position", topic.Position).
		Set("estimated_hours", topic.EstimatedHours).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": topic.ID}).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: Update: %v", ErrDuplicateTopic, err)
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrTopicNotFound
	}

	return nil
}

// SoftDelete мягко удаляет тему
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("lesson_topics").
		Set("deleted_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SoftDelete - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SoftDelete - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SoftDelete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrTopicNotFound
	}

	return nil
}

func topicColumns() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"id",
		"subject_id",
		"quarter_id",
		"title",
		"description",
		"position",
		"estimated_hours",
		"created_at",
		"updated_at",
		"deleted_at",
	).From("lesson_topics")
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTopic(row rowScanner) (*domain.LessonTopic, error) {
	var topic domain.LessonTopic
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&topic.ID,
		&topic.SubjectID,
		&topic.QuarterID,
		&topic.Title,
		&topic.Description,
		&topic.Position,
		&topic.EstimatedHours,
		&createdAt,
		&updatedAt,
		&topic.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	topic.CreatedAt = createdAt.Time
	topic.UpdatedAt = updatedAt.Time

	return &topic, nil
}

// isUniqueViolation проверяет, что ошибка - нарушение уникального ограничения
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}
	return false
}
