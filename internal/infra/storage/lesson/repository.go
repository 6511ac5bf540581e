package lesson

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/maktab-crm/schedule-service/internal/domain"
	"github.com/maktab-crm/schedule-service/pkg/dbmetrics"
	"github.com/maktab-crm/schedule-service/pkg/psqlbuilder"
)

// Код ошибки PostgreSQL для нарушения уникального ограничения
const pgUniqueViolation = "23505"

// Repository репозиторий для работы с занятиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория занятий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое занятие
// Если в контексте передана активная транзакция (через context.Value), использует её.
//
// При гонке двух генераторов за одну дату нарушение уникальности
// (class_subject_id, date, lesson_number) возвращается как ErrDuplicateLesson:
// вызывающий считает такое занятие уже существующим и идет дальше.
func (r *Repository) Create(ctx context.Context, lesson *domain.LessonInstance) (*domain.LessonInstance, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("lesson_instances").
		Columns(
			"class_subject_id",
			"teacher_id",
			"teacher_name",
			"subject_id",
			"subject_name",
			"class_id",
			"class_name",
			"date",
			"lesson_number",
			"start_time",
			"end_time",
			"room_id",
			"room_name",
			"topic_id",
			"homework",
			"teacher_notes",
			"status",
			"is_auto_generated",
			"timetable_slot_id",
		).
		Values(
			lesson.ClassSubjectID,
			lesson.TeacherID,
			lesson.TeacherName,
			lesson.SubjectID,
			lesson.SubjectName,
			lesson.ClassID,
			lesson.ClassName,
			lesson.Date,
			lesson.LessonNumber,
			lesson.StartTime,
			lesson.EndTime,
			lesson.RoomID,
			lesson.RoomName,
			lesson.TopicID,
			lesson.Homework,
			lesson.TeacherNotes,
			lesson.Status,
			lesson.IsAutoGenerated,
			lesson.TimetableSlotID,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&lesson.ID,
		&createdAt,
		&updatedAt,
	)

	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: Create: %v", ErrDuplicateLesson, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	lesson.CreatedAt = createdAt.Time
	lesson.UpdatedAt = updatedAt.Time

	return lesson, nil
}

// GetByID получает занятие по ID (мягко удаленные не возвращаются)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.LessonInstance, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := lessonColumns().
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	lesson, err := scanLesson(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrLessonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan lesson: %v", ErrScanRow, err)
	}

	return lesson, nil
}

// Exists проверяет, есть ли неудаленное занятие с таким ключом.
// Основная проверка идемпотентности генератора.
func (r *Repository) Exists(ctx context.Context, classSubjectID int64, date time.Time, lessonNumber int) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		From("lesson_instances").
		Where(squirrel.Eq{
			"class_subject_id": classSubjectID,
			"date":             date,
			"lesson_number":    lessonNumber,
		}).
		Where("deleted_at IS NULL").
		Limit(1).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: Exists - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: Exists - scan: %v", ErrScanRow, err)
	}

	return true, nil
}

// ListByFilter получает занятия по фильтру, отсортированные по дате
// и номеру урока
func (r *Repository) ListByFilter(ctx context.Context, filter domain.LessonFilter) ([]domain.LessonInstance, error) {
	selectBuilder := lessonColumns().
		Where("deleted_at IS NULL").
		OrderBy("date ASC, lesson_number ASC")

	if filter.ClassID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"class_id": *filter.ClassID})
	}
	if filter.TeacherID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"teacher_id": *filter.TeacherID})
	}
	if filter.ClassSubjectID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"class_subject_id": *filter.ClassSubjectID})
	}
	if filter.DateFrom != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeCanceled {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": domain.LessonStatusCanceled})
	}

	return r.listLessons(ctx, selectBuilder, "ListByFilter")
}

// ListForConflictCheck получает занятия на дату, где занят данный учитель
// или данная аудитория. Внутри транзакции блокирует строки через FOR UPDATE.
func (r *Repository) ListForConflictCheck(ctx context.Context, date time.Time, teacherID int64, roomID *int64) ([]domain.LessonInstance, error) {
	busy := squirrel.Or{squirrel.Eq{"teacher_id": teacherID}}
	if roomID != nil {
		busy = append(busy, squirrel.Eq{"room_id": *roomID})
	}

	selectBuilder := lessonColumns().
		Where(squirrel.Eq{"date": date}).
		Where(busy).
		Where(squirrel.NotEq{"status": domain.LessonStatusCanceled}).
		Where("deleted_at IS NULL").
		OrderBy("lesson_number ASC, id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	return r.listLessons(ctx, selectBuilder, "ListForConflictCheck")
}

// Update обновляет редактируемые поля занятия
func (r *Repository) Update(ctx context.Context, lesson *domain.LessonInstance) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("lesson_instances").
		Set("date", lesson.Date).
		Set("lesson_number", lesson.LessonNumber).
		Set("start_time", lesson.StartTime).
		Set("end_time", lesson.EndTime).
		Set("room_id", lesson.RoomID).
		Set("room_name", lesson.RoomName).
		Set("topic_id", lesson.TopicID).
		Set("homework", lesson.Homework).
		Set("teacher_notes", lesson.TeacherNotes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": lesson.ID}).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: Update: %v", ErrDuplicateLesson, err)
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrLessonNotFound
	}

	return nil
}

// UpdateStatus обновляет статус занятия
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.LessonStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("lesson_instances").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrLessonNotFound
	}

	return nil
}

// SoftDelete мягко удаляет занятие
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("lesson_instances").
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
		return ErrLessonNotFound
	}

	return nil
}

// SoftDeleteFuturePlannedBySlot мягко удаляет запланированные
// автосгенерированные занятия слота с даты from включительно. Каскад при
// удалении слота из шаблона: занятия сегодняшнего дня зачищаются тоже,
// прошедшие, проведенные и созданные вручную не трогаются.
// Возвращает количество зачищенных занятий.
func (r *Repository) SoftDeleteFuturePlannedBySlot(ctx context.Context, slotID int64, from time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("lesson_instances").
		Set("deleted_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"timetable_slot_id": slotID,
			"status":            domain.LessonStatusPlanned,
			"is_auto_generated": true,
		}).
		Where(squirrel.GtOrEq{"date": from}).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: SoftDeleteFuturePlannedBySlot - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: SoftDeleteFuturePlannedBySlot - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: SoftDeleteFuturePlannedBySlot - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

func (r *Repository) listLessons(ctx context.Context, selectBuilder squirrel.SelectBuilder, method string) ([]domain.LessonInstance, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, method, err)
	}
	defer rows.Close()

	lessons := make([]domain.LessonInstance, 0)
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, method, err)
		}
		lessons = append(lessons, *lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, method, err)
	}

	return lessons, nil
}

func lessonColumns() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"id",
		"class_subject_id",
		"teacher_id",
		"teacher_name",
		"subject_id",
		"subject_name",
		"class_id",
		"class_name",
		"date",
		"lesson_number",
		"start_time",
		"end_time",
		"room_id",
		"room_name",
		"topic_id",
		"homework",
		"teacher_notes",
		"status",
		"is_auto_generated",
		"timetable_slot_id",
		"created_at",
		"updated_at",
		"deleted_at",
	).From("lesson_instances")
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLesson(row rowScanner) (*domain.LessonInstance, error) {
	var lesson domain.LessonInstance
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&lesson.ID,
		&lesson.ClassSubjectID,
		&lesson.TeacherID,
		&lesson.TeacherName,
		&lesson.SubjectID,
		&lesson.SubjectName,
		&lesson.ClassID,
		&lesson.ClassName,
		&lesson.Date,
		&lesson.LessonNumber,
		&lesson.StartTime,
		&lesson.EndTime,
		&lesson.RoomID,
		&lesson.RoomName,
		&lesson.TopicID,
		&lesson.Homework,
		&lesson.TeacherNotes,
		&lesson.Status,
		&lesson.IsAutoGenerated,
		&lesson.TimetableSlotID,
		&createdAt,
		&updatedAt,
		&lesson.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	lesson.CreatedAt = createdAt.Time
	lesson.UpdatedAt = updatedAt.Time

	return &lesson, nil
}

// isUniqueViolation проверяет, что ошибка - нарушение уникального ограничения
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}
	return false
}
