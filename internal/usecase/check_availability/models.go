package check_availability

// CheckRequest запрос на подбор свободных назначений и аудиторий класса
// на интервал в конкретную дату
type CheckRequest struct {
	ClassID   int64  `json:"classId"`
	Date      string `json:"date"`      // "2025-09-01"
	StartTime string `json:"startTime"` // "08:00"
	EndTime   string `json:"endTime"`   // "08:45"

	// Занятие, которое нужно исключить из проверки (при переносе)
	ExcludeLessonID *int64 `json:"excludeLessonId,omitempty"`
}

// AssignmentInfo свободное назначение "класс-предмет-учитель"
type AssignmentInfo struct {
	ClassSubjectID int64  `json:"classSubjectId"`
	SubjectID      int64  `json:"subjectId"`
	SubjectName    string `json:"subjectName"`
	TeacherID      int64  `json:"teacherId"`
	TeacherName    string `json:"teacherName"`
}

// RoomInfo свободная аудитория филиала
type RoomInfo struct {
	RoomID   int64  `json:"roomId"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// ConflictInfo описание одного найденного пересечения
type ConflictInfo struct {
	Type        string `json:"type"` // "teacher" | "room"
	Message     string `json:"message"`
	LessonID    *int64 `json:"lessonId,omitempty"`
	TeacherName string `json:"teacherName,omitempty"`
	RoomName    string `json:"roomName,omitempty"`
	ClassName   string `json:"className,omitempty"`
	TimeRange   string `json:"timeRange,omitempty"`
}

// CheckResponse результат подбора: назначения и аудитории, которые можно
// поставить на интервал без пересечений, и найденные пересечения занятых.
// Носит справочный характер: к моменту записи состояние могло измениться,
// операции записи перепроверяют конфликты сами.
type CheckResponse struct {
	ClassID              int64            `json:"classId"`
	Date                 string           `json:"date"`
	AvailableAssignments []AssignmentInfo `json:"availableAssignments"`
	AvailableRooms       []RoomInfo       `json:"availableRooms"`
	Conflicts            []ConflictInfo   `json:"conflicts"`
}
