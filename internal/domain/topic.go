package domain

import "time"

// LessonTopic тема календарно-тематического плана по предмету. Привязывается
// к занятию через LessonInstance.TopicID. Кортеж (subject, quarter, position)
// уникален среди неудаленных тем.
type LessonTopic struct {
	ID        int64
	SubjectID int64
	QuarterID *int64

	Title       string
	Description *string

	// Порядковый номер темы внутри четверти
	Position       int
	EstimatedHours float64

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsDeleted возвращает true для мягко удаленной темы
func (t *LessonTopic) IsDeleted() bool {
	return t.DeletedAt != nil
}
