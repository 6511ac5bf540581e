package schoolservice

import "errors"

var (
	// ErrClassSubjectNotFound возвращается, когда назначение "класс-предмет" не найдено
	ErrClassSubjectNotFound = errors.New("class subject not found")

	// ErrClassNotFound возвращается, когда класс не найден
	ErrClassNotFound = errors.New("class not found")

	// ErrAcademicYearNotFound возвращается, когда учебный год не найден
	ErrAcademicYearNotFound = errors.New("academic year not found")

	// ErrQuarterNotFound возвращается, когда учебная четверть не найдена
	ErrQuarterNotFound = errors.New("quarter not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("schoolservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("schoolservice client: invalid response")
)
