package generate_lessons

import (
	"time"

	"github.com/maktab-crm/schedule-service/internal/domain"
	"github.com/maktab-crm/schedule-service/internal/integrations/branchservice"
)

// calendarIndex календарь филиала, развернутый в множества для быстрых проверок
type calendarIndex struct {
	workingDays map[domain.DayOfWeek]struct{}
	holidays    map[string]struct{} // ключ YYYY-MM-DD
}

// buildCalendarIndex разворачивает календарь филиала в индекс.
// Неизвестные дни недели в working_days игнорируются.
func buildCalendarIndex(calendar *branchservice.Calendar) calendarIndex {
	idx := calendarIndex{
		workingDays: make(map[domain.DayOfWeek]struct{}, len(calendar.WorkingDays)),
		holidays:    make(map[string]struct{}, len(calendar.Holidays)),
	}

	for _, raw := range calendar.WorkingDays {
		if day, err := domain.ParseDayOfWeek(raw); err == nil {
			idx.workingDays[day] = struct{}{}
		}
	}
	for _, date := range calendar.Holidays {
		idx.holidays[date] = struct{}{}
	}

	return idx
}

// isEligible возвращает true для даты, на которую занятия генерируются:
// не праздник, рабочий день недели, внутри окна действия шаблона.
// Праздник проверяется первым: праздник в рабочий день недели всё равно
// пропускается.
func (idx calendarIndex) isEligible(date time.Time, template *domain.TimetableTemplate) bool {
	if _, holiday := idx.holidays[date.Format(domain.DateFormat)]; holiday {
		return false
	}
	if _, working := idx.workingDays[domain.DayOfWeekFromDate(date)]; !working {
		return false
	}
	if date.Before(template.EffectiveFrom) {
		return false
	}
	if template.EffectiveUntil != nil && date.After(*template.EffectiveUntil) {
		return false
	}
	return true
}

// eligibleDates перебирает диапазон [start, end] включительно и возвращает
// даты, на которые нужно генерировать занятия
func eligibleDates(start, end time.Time, template *domain.TimetableTemplate, idx calendarIndex) []time.Time {
	var dates []time.Time
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if idx.isEligible(date, template) {
			dates = append(dates, date)
		}
	}
	return dates
}

// slotsByDay раскладывает слоты шаблона по дням недели. Порядок внутри дня
// сохраняется как в выборке (номер урока, класс).
func slotsByDay(slots []domain.TimetableSlot) map[domain.DayOfWeek][]domain.TimetableSlot {
	byDay := make(map[domain.DayOfWeek][]domain.TimetableSlot)
	for _, slot := range slots {
		byDay[slot.DayOfWeek] = append(byDay[slot.DayOfWeek], slot)
	}
	return byDay
}

// lessonFromSlot собирает занятие из слота шаблона на конкретную дату
func lessonFromSlot(slot *domain.TimetableSlot, date time.Time) *domain.LessonInstance {
	slotID := slot.ID
	return &domain.LessonInstance{
		ClassSubjectID:  slot.ClassSubjectID,
		TeacherID:       slot.TeacherID,
		TeacherName:     slot.TeacherName,
		SubjectID:       slot.SubjectID,
		SubjectName:     slot.SubjectName,
		ClassID:         slot.ClassID,
		ClassName:       slot.ClassName,
		Date:            date,
		LessonNumber:    slot.LessonNumber,
		StartTime:       slot.StartTime,
		EndTime:         slot.EndTime,
		RoomID:          slot.RoomID,
		RoomName:        slot.RoomName,
		Status:          domain.LessonStatusPlanned,
		IsAutoGenerated: true,
		TimetableSlotID: &slotID,
	}
}
