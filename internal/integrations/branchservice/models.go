package branchservice

// Calendar календарь филиала на диапазон дат
type Calendar struct {
	// Рабочие дни недели филиала в нижнем регистре ("monday", "tuesday", ...)
	WorkingDays []string `json:"working_days"`

	// Праздничные и нерабочие даты в формате YYYY-MM-DD
	Holidays []string `json:"holidays"`
}

// Room аудитория филиала
type Room struct {
	ID       int64  `json:"id"`
	BranchID int64  `json:"branch_id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// AcademicYear учебный год с границами
type AcademicYear struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	IsCurrent bool   `json:"is_current"`
}

// ErrorResponse модель ошибки от BranchService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
