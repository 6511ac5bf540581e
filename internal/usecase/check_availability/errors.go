package check_availability

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidTimeRange возвращается при некорректном временном диапазоне
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrClassNotFound возвращается, когда класс не найден
	ErrClassNotFound = errors.New("class not found")

	// ErrInternal возвращается при внутренних ошибках
	ErrInternal = errors.New("check_availability: internal error")
)
