package rabbitmq_producer

import (
	"context"
	"fmt"

	"analysis-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PublisherConfig - конфигурация публикатора событий
type PublisherConfig struct {
	rabbitmq_common.Config
	ExchangeName       string
	ExchangeType       string // direct, fanout, topic, headers
	DurableExchange    bool
	AutoDeleteExchange bool
	InternalExchange   bool
	ExchangeArgs       amqp.Table

	// При false публикатор полагается на то, что обменник
	// уже объявлен кем-то другим
	DeclareExchangeIfMissing bool

	Logger rabbitmq_common.Logger
}

func (cfg PublisherConfig) validate() error {
	if err := cfg.Config.Validate(); err != nil {
		return fmt.Errorf("invalid base config: %w", err)
	}
	if cfg.DeclareExchangeIfMissing {
		if cfg.ExchangeName != "" && cfg.ExchangeType == "" {
			return fmt.Errorf("producer: exchange type is required to declare exchange '%s'", cfg.ExchangeName)
		}
		if cfg.ExchangeType != "" && cfg.ExchangeName == "" {
			return fmt.Errorf("producer: exchange name is required to declare a '%s' exchange", cfg.ExchangeType)
		}
	}
	return nil
}

// Publisher публикует сообщения в один обменник через канал,
// полученный от ConnectionManager.
type Publisher struct {
	config     PublisherConfig
	connection *amqp.Connection
	channel    *amqp.Channel

	Logger rabbitmq_common.Logger
}

func NewPublisher(cfg PublisherConfig, connManager *rabbitmq_common.ConnectionManager) (*Publisher, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("producer: failed to get channel from manager: %w", err)
	}

	p := &Publisher{
		config:     cfg,
		connection: conn,
		channel:    ch,
		Logger:     logger,
	}
	p.Logger.Debug("Channel obtained from ConnectionManager")

	if cfg.DeclareExchangeIfMissing && cfg.ExchangeName != "" {
		p.Logger.Debug("Declaring exchange",
			"name", cfg.ExchangeName,
			"type", cfg.ExchangeType,
		)
		err = ch.ExchangeDeclare(
			cfg.ExchangeName,
			cfg.ExchangeType,
			cfg.DurableExchange,
			cfg.AutoDeleteExchange,
			cfg.InternalExchange,
			false, // no-wait
			cfg.ExchangeArgs,
		)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("producer: failed to declare exchange '%s': %w", cfg.ExchangeName, err)
		}
	} else if cfg.ExchangeName != "" {
		p.Logger.Debug("Assuming exchange already exists", "name", cfg.ExchangeName)
	}

	p.Logger.Debug("Producer ready")
	return p, nil
}

// Publish отправляет сообщение с указанным ключом маршрутизации.
// Пустое имя обменника в конфигурации означает default exchange.
func (p *Publisher) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	if p.channel == nil || p.connection == nil || p.connection.IsClosed() {
		return fmt.Errorf("producer: not connected or channel/connection is closed")
	}

	err := p.channel.PublishWithContext(
		ctx,
		p.config.ExchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("producer: failed to publish message: %w", err)
	}
	return nil
}

// Close закрывает канал публикатора. Соединением владеет
// ConnectionManager, здесь оно не закрывается.
func (p *Publisher) Close() error {
	p.Logger.Debug("Producer: Closing...")

	var firstErr error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.Logger.Error(err, "Error closing channel")
			firstErr = err
		}
		p.channel = nil
	}

	p.Logger.Info("Producer closed.")
	return firstErr
}
