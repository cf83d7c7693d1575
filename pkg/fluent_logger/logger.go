package fluentlogger

import (
	"errors"
	"fmt"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// Config описывает подключение к Fluent Bit.
type Config struct {
	Host      string
	Port      int
	TagPrefix string // префикс для тегов логов сервиса, обычно имя приложения
}

// NewClient создает клиент для Fluent Bit. Успешное создание не гарантирует
// соединение: ошибки проявятся при первой отправке записи.
func NewClient(cfg Config) (*fluent.Fluent, error) {
	if cfg.TagPrefix == "" {
		return nil, errors.New("fluent tag prefix is required")
	}

	client, err := fluent.New(fluent.Config{
		FluentHost: cfg.Host,
		FluentPort: cfg.Port,
		TagPrefix:  cfg.TagPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fluent client: %w", err)
	}

	return client, nil
}
