package timetable

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/maktab-crm/schedule-service/internal/domain"
	"github.com/maktab-crm/schedule-service/pkg/dbmetrics"
	"github.com/maktab-crm/schedule-service/pkg/psqlbuilder"
)

// CreateSlot создает новый слот шаблона
// Если в контексте передана активная транзакция (через context.Value), использует её.
// Иначе выполняет обычный запрос без транзакции.
//
// Когда использовать транзакцию:
// - При создании слота со встречной проверкой конфликтов (race condition)
// - При пакетном создании слотов (всё или ничего)
//
// Когда можно без транзакции:
// - При импорте данных (если не критична консистентность в моменте)
func (r *Repository) CreateSlot(ctx context.Context, slot *domain.TimetableSlot) (*domain.TimetableSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("timetable_slots").
		Columns(
			"timetable_id",
			"class_id",
			"class_subject_id",
			"teacher_id",
			"teacher_name",
			"subject_id",
			"subject_name",
			"class_name",
			"day_of_week",
			"lesson_number",
			"start_time",
			"end_time",
			"room_id",
			"room_name",
		).
		Values(
			slot.TimetableID,
			slot.ClassID,
			slot.ClassSubjectID,
			slot.TeacherID,
			slot.TeacherName,
			slot.SubjectID,
			slot.SubjectName,
			slot.ClassName,
			slot.DayOfWeek,
			slot.LessonNumber,
			slot.StartTime,
			slot.EndTime,
			slot.RoomID,
			slot.RoomName,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateSlot - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&slot.ID,
		&createdAt,
		&updatedAt,
	)

	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: CreateSlot: %v", ErrDuplicateSlot, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: CreateSlot - execute insert: %v", ErrExecQuery, err)
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return slot, nil
}

// GetSlotByID получает слот по ID (мягко удаленные не возвращаются)
func (r *Repository) GetSlotByID(ctx context.Context, id int64) (*domain.TimetableSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := slotColumns().
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetSlotByID - build select query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetSlotByID - scan slot: %v", ErrScanRow, err)
	}

	return slot, nil
}

// ListSlotsByTimetable получает все слоты шаблона, отсортированные по
// дню недели и номеру урока
func (r *Repository) ListSlotsByTimetable(ctx context.Context, timetableID int64) ([]domain.TimetableSlot, error) {
	selectBuilder := slotColumns().
		Where(squirrel.Eq{"timetable_id": timetableID}).
		Where("deleted_at IS NULL").
		OrderBy("day_of_week ASC, lesson_number ASC, class_id ASC")

	return r.listSlots(ctx, selectBuilder, "ListSlotsByTimetable")
}

// ListSlotsForConflictCheck получает слоты шаблона на день недели.
// Внутри транзакции блокирует строки через FOR UPDATE, чтобы параллельная
// запись со встречной проверкой конфликтов дождалась завершения текущей.
func (r *Repository) ListSlotsForConflictCheck(ctx context.Context, timetableID int64, day domain.DayOfWeek) ([]domain.TimetableSlot, error) {
	selectBuilder := slotColumns().
		Where(squirrel.Eq{
			"timetable_id": timetableID,
			"day_of_week":  day,
		}).
		Where("deleted_at IS NULL").
		OrderBy("lesson_number ASC, id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	return r.listSlots(ctx, selectBuilder, "ListSlotsForConflictCheck")
}

// UpdateSlot обновляет поля слота
func (r *Repository) UpdateSlot(ctx context.Context, slot *domain.TimetableSlot) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("timetable_slots").
		Set("class_subject_id", slot.ClassSubjectID).
		Set("teacher_id", slot.TeacherID).
		Set("teacher_name", slot.TeacherName).
		Set("subject_id", slot.SubjectID).
		Set("subject_name", slot.SubjectName).
		Set("day_of_week", slot.DayOfWeek).
		Set("lesson_number", slot.LessonNumber).
		Set("start_time", slot.StartTime).
		Set("end_time", slot.EndTime).
		Set("room_id", slot.RoomID).
		Set("room_name", slot.RoomName).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": slot.ID}).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateSlot - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: UpdateSlot: %v", ErrDuplicateSlot, err)
	}
	if err != nil {
		return fmt.Errorf("%w: UpdateSlot - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateSlot - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

// SoftDeleteSlot мягко удаляет слот
func (r *Repository) SoftDeleteSlot(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("timetable_slots").
		Set("deleted_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where("deleted_at IS NULL").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SoftDeleteSlot - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SoftDeleteSlot - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SoftDeleteSlot - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

func (r *Repository) listSlots(ctx context.Context, selectBuilder squirrel.SelectBuilder, method string) ([]domain.TimetableSlot, error) {
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

	slots := make([]domain.TimetableSlot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, method, err)
		}
		slots = append(slots, *slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, method, err)
	}

	return slots, nil
}

func slotColumns() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"id",
		"timetable_id",
		"class_id",
		"class_subject_id",
		"teacher_id",
		"teacher_name",
		"subject_id",
		"subject_name",
		"class_name",
		"day_of_week",
		"lesson_number",
		"start_time",
		"end_time",
		"room_id",
		"room_name",
		"created_at",
		"updated_at",
		"deleted_at",
	).From("timetable_slots")
}

func scanSlot(row rowScanner) (*domain.TimetableSlot, error) {
	var slot domain.TimetableSlot
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&slot.ID,
		&slot.TimetableID,
		&slot.ClassID,
		&slot.ClassSubjectID,
		&slot.TeacherID,
		&slot.TeacherName,
		&slot.SubjectID,
		&slot.SubjectName,
		&slot.ClassName,
		&slot.DayOfWeek,
		&slot.LessonNumber,
		&slot.StartTime,
		&slot.EndTime,
		&slot.RoomID,
		&slot.RoomName,
		&createdAt,
		&updatedAt,
		&slot.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return &slot, nil
}
