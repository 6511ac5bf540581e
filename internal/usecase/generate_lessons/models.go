package generate_lessons

// GenerateRequest запрос на генерацию занятий из шаблона за диапазон дат.
// Диапазон включительный с обеих сторон. SkipExisting по умолчанию true:
// уже существующие занятия пропускаются; при false попытка вставки
// выполняется всегда, и нарушение уникальности фиксируется как отказ
// по конкретной паре (дата, слот), не прерывая прогон.
type GenerateRequest struct {
	TimetableID  int64  `json:"timetableId"`
	StartDate    string `json:"startDate"` // "2025-09-01"
	EndDate      string `json:"endDate"`   // "2025-09-15"
	SkipExisting *bool  `json:"skipExisting,omitempty"`
}

// GenerateFailure отказ по конкретной паре (дата, слот) внутри прогона
type GenerateFailure struct {
	Date           string `json:"date"`
	ClassSubjectID int64  `json:"classSubjectId"`
	LessonNumber   int    `json:"lessonNumber"`
	Reason         string `json:"reason"`
}

// GenerateResponse результат генерации: сколько занятий создано, сколько
// пропущено как уже существующие и какие пары (дата, слот) не прошли.
// Нерабочие дни и праздники не считаются ни туда, ни туда - по ним занятия
// не предполагались.
type GenerateResponse struct {
	TimetableID int64             `json:"timetableId"`
	Created     int               `json:"created"`
	Skipped     int               `json:"skipped"`
	Failed      []GenerateFailure `json:"failed,omitempty"`
}

// BatchGenerateResponse результат генерации по всем активным шаблонам
type BatchGenerateResponse struct {
	Results      []GenerateResponse `json:"results"`
	TotalCreated int                `json:"totalCreated"`
	TotalSkipped int                `json:"totalSkipped"`
}
