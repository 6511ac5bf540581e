package domain

// Границы номера урока внутри дня
const (
	MinLessonNumber = 1
	MaxLessonNumber = 15
)

// Прочие бизнес-ограничения
const (
	MaxTemplateNameLength = 255
	MaxHomeworkLength     = 2000
	MaxTeacherNotesLength = 2000
)

// Форматы даты и времени
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
