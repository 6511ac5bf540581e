package generate_lessons

import "errors"

var (
	// ErrTemplateNotFound возвращается, когда шаблон расписания не найден
	ErrTemplateNotFound = errors.New("timetable template not found")

	// ErrTemplateNotActive возвращается при попытке генерации из неактивного шаблона
	ErrTemplateNotActive = errors.New("timetable template is not active")

	// ErrInvalidDateRange возвращается при некорректном диапазоне дат
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrNoSlots возвращается при генерации из шаблона без слотов.
	// Пустой шаблон - ошибка конфигурации, а не легитимный (0, 0).
	ErrNoSlots = errors.New("timetable template has no slots")

	// ErrQuarterNotFound возвращается, когда учебная четверть не найдена
	ErrQuarterNotFound = errors.New("quarter not found")

	// ErrCalendarUnavailable возвращается, когда календарь филиала недоступен.
	// Генерация без календаря не выполняется: лучше не создать занятия,
	// чем создать их на праздники.
	ErrCalendarUnavailable = errors.New("branch calendar unavailable")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("generate_lessons: internal error")
)
