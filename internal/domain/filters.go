package domain

import "time"

// TemplateFilter фильтр для выборки шаблонов расписания
type TemplateFilter struct {
	BranchID       *int64
	AcademicYearID *int64
	OnlyActive     bool
}

// LessonFilter фильтр для выборки занятий
//
// Примеры использования:
//
// 1. Расписание класса на неделю:
//    filter := domain.LessonFilter{ClassID: &classID, DateFrom: &monday, DateTo: &sunday}
//
// 2. Занятия учителя на дату:
//    filter := domain.LessonFilter{TeacherID: &teacherID, DateFrom: &date, DateTo: &date}
//
// 3. Только запланированные занятия по назначению:
//    status := domain.LessonStatusPlanned
//    filter := domain.LessonFilter{ClassSubjectID: &csID, Status: &status}
type LessonFilter struct {
	ClassID         *int64
	TeacherID       *int64
	ClassSubjectID  *int64
	DateFrom        *time.Time
	DateTo          *time.Time
	Status          *LessonStatus
	IncludeCanceled bool
}
