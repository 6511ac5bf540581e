package timetable

import "errors"

var (
	// ErrTemplateNotFound возвращается, когда шаблон расписания не найден
	ErrTemplateNotFound = errors.New("timetable.repository: template not found")

	// ErrSlotNotFound возвращается, когда слот расписания не найден
	ErrSlotNotFound = errors.New("timetable.repository: slot not found")

	// ErrDuplicateTemplate возвращается при нарушении уникальности
	// активного шаблона на пару (филиал, учебный год)
	ErrDuplicateTemplate = errors.New("timetable.repository: duplicate active template")

	// ErrDuplicateSlot возвращается при нарушении уникальности слота
	// (шаблон, класс, день недели, номер урока)
	ErrDuplicateSlot = errors.New("timetable.repository: duplicate slot")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("timetable.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("timetable.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("timetable.repository: failed to scan row")
)
