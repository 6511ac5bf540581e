// Package conflicts чистый детектор пересечений расписания. Не ходит в базу:
// кандидата сравнивают со срезом уже существующих слотов или занятий, которые
// достал вызывающий. Интервалы полуоткрытые, касание концов конфликтом
// не считается.
package conflicts

import (
	"fmt"

	"github.com/maktab-crm/schedule-service/internal/domain"
	"github.com/maktab-crm/schedule-service/pkg/types"
)

// DetectSlotConflicts ищет пересечения кандидата с существующими слотами
// шаблона. Слоты другого дня недели, мягко удаленные и сам кандидат
// (по ID, при обновлении) пропускаются.
func DetectSlotConflicts(candidate domain.TimetableSlot, existing []domain.TimetableSlot) []domain.Conflict {
	var result []domain.Conflict

	for i := range existing {
		other := &existing[i]

		if other.ID == candidate.ID && candidate.ID != 0 {
			continue
		}
		if other.IsDeleted() {
			continue
		}
		if other.DayOfWeek != candidate.DayOfWeek {
			continue
		}
		if !types.Overlaps(candidate.StartTime, candidate.EndTime, other.StartTime, other.EndTime) {
			continue
		}

		if other.TeacherID == candidate.TeacherID {
			result = append(result, domain.Conflict{
				Type: domain.ConflictTypeTeacher,
				Message: fmt.Sprintf("учитель %s уже занят в %s (%s, класс %s)",
					other.TeacherName, other.TimeRange(), other.SubjectName, other.ClassName),
				SlotID: ptrOf(other.ID),
				Details: domain.ConflictDetails{
					TeacherName: other.TeacherName,
					ClassName:   other.ClassName,
					TimeRange:   other.TimeRange(),
				},
			})
		}

		if candidate.HasRoom() && other.HasRoom() && *other.RoomID == *candidate.RoomID {
			result = append(result, domain.Conflict{
				Type: domain.ConflictTypeRoom,
				Message: fmt.Sprintf("аудитория %s уже занята в %s (класс %s)",
					roomName(other.RoomName), other.TimeRange(), other.ClassName),
				SlotID: ptrOf(other.ID),
				Details: domain.ConflictDetails{
					TeacherName: other.TeacherName,
					RoomName:    roomName(other.RoomName),
					ClassName:   other.ClassName,
					TimeRange:   other.TimeRange(),
				},
			})
		}
	}

	return result
}

// DetectLessonConflicts ищет пересечения кандидата с существующими занятиями
// той же даты. Отмененные занятия время не держат и пропускаются, как и
// мягко удаленные, занятия других дат и сам кандидат.
func DetectLessonConflicts(candidate domain.LessonInstance, existing []domain.LessonInstance) []domain.Conflict {
	var result []domain.Conflict

	for i := range existing {
		other := &existing[i]

		if other.ID == candidate.ID && candidate.ID != 0 {
			continue
		}
		if other.IsDeleted() || other.IsCanceled() {
			continue
		}
		if !sameDate(other, &candidate) {
			continue
		}
		if !types.Overlaps(candidate.StartTime, candidate.EndTime, other.StartTime, other.EndTime) {
			continue
		}

		if other.TeacherID == candidate.TeacherID {
			result = append(result, domain.Conflict{
				Type: domain.ConflictTypeTeacher,
				Message: fmt.Sprintf("учитель %s уже занят в %s (%s, класс %s)",
					other.TeacherName, other.TimeRange(), other.SubjectName, other.ClassName),
				LessonID: ptrOf(other.ID),
				Details: domain.ConflictDetails{
					TeacherName: other.TeacherName,
					ClassName:   other.ClassName,
					TimeRange:   other.TimeRange(),
				},
			})
		}

		if candidate.HasRoom() && other.HasRoom() && *other.RoomID == *candidate.RoomID {
			result = append(result, domain.Conflict{
				Type: domain.ConflictTypeRoom,
				Message: fmt.Sprintf("аудитория %s уже занята в %s (класс %s)",
					roomName(other.RoomName), other.TimeRange(), other.ClassName),
				LessonID: ptrOf(other.ID),
				Details: domain.ConflictDetails{
					TeacherName: other.TeacherName,
					RoomName:    roomName(other.RoomName),
					ClassName:   other.ClassName,
					TimeRange:   other.TimeRange(),
				},
			})
		}
	}

	return result
}

// HasConflicts возвращает true, если среди найденных есть хотя бы один конфликт
func HasConflicts(found []domain.Conflict) bool {
	return len(found) > 0
}

func sameDate(a, b *domain.LessonInstance) bool {
	ay, am, ad := a.Date.Date()
	by, bm, bd := b.Date.Date()
	return ay == by && am == bm && ad == bd
}

func roomName(name *string) string {
	if name == nil {
		return "?"
	}
	return *name
}

func ptrOf(v int64) *int64 {
	return &v
}
