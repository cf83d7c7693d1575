package port

// Fields - структурированные поля записи лога
type Fields map[string]interface{}

// LoggerPort - контракт логирования для ядра приложения.
// Конкретные адаптеры (stdout, Fluent Bit) живут в adapters/logger.
type LoggerPort interface {
	Debug(msg string, fields Fields)
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Error(msg string, err error, fields Fields)

	// WithFields возвращает логгер с постоянным набором полей
	WithFields(fields Fields) LoggerPort
}
