package topic

import "errors"

var (
	// ErrTopicNotFound возвращается, когда тема не найдена
	ErrTopicNotFound = errors.New("topic.repository: topic not found")

	// ErrDuplicateTopic возвращается при нарушении уникальности темы
	// (предмет, четверть, позиция)
	ErrDuplicateTopic = errors.New("topic.repository: duplicate topic")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("topic.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("topic.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("topic.repository: failed to scan row")
)
