package schoolservice

// ClassSubject назначение "класс-предмет-учитель" из SchoolService.
// BranchID - филиал класса, по нему проверяется принадлежность аудитории.
type ClassSubject struct {
	ID          int64  `json:"id"`
	ClassID     int64  `json:"class_id"`
	ClassName   string `json:"class_name"`
	BranchID    int64  `json:"branch_id"`
	SubjectID   int64  `json:"subject_id"`
	SubjectName string `json:"subject_name"`
	TeacherID   int64  `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
}

// Class класс из SchoolService
type Class struct {
	ID       int64  `json:"id"`
	BranchID int64  `json:"branch_id"`
	Name     string `json:"name"`
}

// Quarter учебная четверть из SchoolService
type Quarter struct {
	ID             int64  `json:"id"`
	AcademicYearID int64  `json:"academic_year_id"`
	Name           string `json:"name"`
	Number         int    `json:"number"`
	StartDate      string `json:"start_date"` // YYYY-MM-DD
	EndDate        string `json:"end_date"`   // YYYY-MM-DD
}

// AcademicYear учебный год из SchoolService
type AcademicYear struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

// ErrorResponse модель ошибки от SchoolService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
