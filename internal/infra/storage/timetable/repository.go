package timetable

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

// Repository репозиторий для работы с шаблонами расписания и их слотами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateTemplate создает новый шаблон расписания
func (r *Repository) CreateTemplate(ctx context.Context, template *domain.TimetableTemplate) (*domain.TimetableTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("timetable_templates").
		Columns(
			"branch_id",
			"academic_year_id",
			"name",
			"description",
			"is_active",
			"effective_from",
			"effective_until",
		).
		Values(
			template.BranchID,
			template.AcademicYearID,
			template.Name,
			template.Description,
			template.IsActive,
			template.EffectiveFrom,
			template.EffectiveUntil,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateTemplate - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&template.ID,
		&createdAt,
		&updatedAt,
	)

	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: CreateTemplate: %v", ErrDuplicateTemplate, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: CreateTemplate - execute insert: %v", ErrExecQuery, err)
	}

	template.CreatedAt = createdAt.Time
	template.UpdatedAt = updatedAt.Time

	return template, nil
}

// GetTemplateByID получает шаблон по ID (мягко удаленные не возвращаются)
func (r *Repository) GetTemplateByID(ctx context.Context, id int64) (*domain.TimetableTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := templateColumns().
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetTemplateByID - build select query: %v", ErrBuildQuery, err)
	}

	template, err := scanTemplate(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetTemplateByID - scan template: %v", ErrScanRow, err)
	}

	return template, nil
}

// ListTemplates получает шаблоны по фильтру
func (r *Repository) ListTemplates(ctx context.Context, filter domain.TemplateFilter) ([]*domain.TimetableTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := templateColumns().
		Where("deleted_at IS NULL").
		OrderBy("branch_id ASC, academic_year_id ASC, created_at DESC")

	if filter.BranchID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"branch_id": *filter.BranchID})
	}
	if filter.AcademicYearID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"academic_year_id": *filter.AcademicYearID})
	}
	if filter.OnlyActive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"is_active": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListTemplates - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListTemplates - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	templates := make([]*domain.TimetableTemplate, 0)
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListTemplates - scan row: %v", ErrScanRow, err)
		}
		templates = append(templates, template)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListTemplates - rows error: %v", ErrScanRow, err)
	}

	return templates, nil
}

// GetActiveTemplate получает активный шаблон филиала на учебный год.
// Внутри транзакции блокирует строку через FOR UPDATE.
func (r *Repository) GetActiveTemplate(ctx context.Context, branchID, academicYearID int64) (*domain.TimetableTemplate, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := templateColumns().
		Where(squirrel.Eq{
			"branch_id":        branchID,
			"academic_year_id": academicYearID,
			"is_active":        true,
		}).
		Where("deleted_at IS NULL")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveTemplate - build select query: %v", ErrBuildQuery, err)
	}

	template, err := scanTemplate(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetActiveTemplate - scan template: %v", ErrScanRow, err)
	}

	return template, nil
}

// UpdateTemplate обновляет поля шаблона
func (r *Repository) UpdateTemplate(ctx context.Context, template *domain.TimetableTemplate) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("timetable_templates").
		Set("name", template.Name).
		Set("description", template.Description).
		Set("effective_from", template.EffectiveFrom).
		Set("effective_until", template.EffectiveUntil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": template.ID}).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateTemplate - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateTemplate - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateTemplate - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrTemplateNotFound
	}

	return nil
}

// SetTemplateActive включает или выключает шаблон
func (r *Repository) SetTemplateActive(ctx context.Context, id int64, active bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("timetable_templates").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetTemplateActive - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: SetTemplateActive: %v", ErrDuplicateTemplate, err)
	}
	if err != nil {
		return fmt.Errorf("%w: SetTemplateActive - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetTemplateActive - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrTemplateNotFound
	}

	return nil
}

// DeactivateOtherTemplates выключает все активные шаблоны пары
// (филиал, учебный год), кроме указанного. Вызывается внутри транзакции
// активации, чтобы инвариант "один активный шаблон" не нарушался.
func (r *Repository) DeactivateOtherTemplates(ctx context.Context, branchID, academicYearID, exceptID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("timetable_templates").
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"branch_id":        branchID,
			"academic_year_id": academicYearID,
			"is_active":        true,
		}).
		Where(squirrel.NotEq{"id": exceptID}).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeactivateOtherTemplates - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: DeactivateOtherTemplates - execute update: %v", ErrExecQuery, err)
	}

	return nil
}

// SoftDeleteTemplate мягко удаляет шаблон
func (r *Repository) SoftDeleteTemplate(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("timetable_templates").
		Set("deleted_at", squirrel.Expr("NOW()")).
		Set("is_active", false).
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SoftDeleteTemplate - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SoftDeleteTemplate - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SoftDeleteTemplate - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrTemplateNotFound
	}

	return nil
}

func templateColumns() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"id",
		"branch_id",
		"academic_year_id",
		"name",
		"description",
		"is_active",
		"effective_from",
		"effective_until",
		"created_at",
		"updated_at",
		"deleted_at",
	).From("timetable_templates")
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*domain.TimetableTemplate, error) {
	var template domain.TimetableTemplate
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&template.ID,
		&template.BranchID,
		&template.AcademicYearID,
		&template.Name,
		&template.Description,
		&template.IsActive,
		&template.EffectiveFrom,
		&template.EffectiveUntil,
		&createdAt,
		&updatedAt,
		&template.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	template.CreatedAt = createdAt.Time
	template.UpdatedAt = updatedAt.Time

	return &template, nil
}

// isUniqueViolation проверяет, что ошибка - нарушение уникального ограничения
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}
	return false
}
