package domain

// ConflictType вид конфликта расписания
type ConflictType string

const (
	ConflictTypeTeacher ConflictType = "teacher"
	ConflictTypeRoom    ConflictType = "room"
)

// Conflict пересечение проверяемого интервала с существующим слотом или
// занятием: один учитель или одна аудитория заняты в перекрывающееся время
type Conflict struct {
	Type    ConflictType
	Message string

	// Заполняется то, с чем именно пересеклись
	SlotID   *int64
	LessonID *int64

	Details ConflictDetails
}

// ConflictDetails контекст конфликта для отображения
type ConflictDetails struct {
	TeacherName string
	RoomName    string
	ClassName   string
	TimeRange   string
}
