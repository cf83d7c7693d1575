package rabbitmq_consumer

import (
	"context"
	"fmt"
	"sync"

	"analysis-service/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler функция-обработчик для полученных сообщений.
// Пакет сам решает, как делать ack/nack по возвращенной ошибке.
type MessageHandler func(delivery amqp.Delivery) error

// ConsumerConfig конфигурация для потребителя
type ConsumerConfig struct {
	rabbitmq_common.Config
	// Настройки очереди
	QueueName       string
	DeclareQueue    bool
	DurableQueue    bool
	ExclusiveQueue  bool
	AutoDeleteQueue bool
	QueueArgs       amqp.Table
	// Настройки обменника (если нужно объявлять или привязываться к нему)
	ExchangeNameForBind    string // Имя обменника для привязки очереди (если пусто, привязка не выполняется)
	DeclareExchangeForBind bool
	ExchangeTypeForBind    string
	DurableExchangeForBind bool
	// Настройки привязки
	RoutingKeyForBind string
	// Настройки QoS
	PrefetchCount int // 0 или меньше - без ограничений
	// Настройки потребителя
	ConsumerTag       string
	ExclusiveConsumer bool

	Logger rabbitmq_common.Logger
}

// Consumer потребляет сообщения из одной очереди с ручным подтверждением.
// Упавшее сообщение один раз возвращается в очередь (requeue), повторный
// сбой отправляет его в nack без возврата.
type Consumer struct {
	config          ConsumerConfig
	connection      *amqp.Connection
	channel         *amqp.Channel
	actualQueueName string
	handler         MessageHandler
	wg              sync.WaitGroup

	Logger rabbitmq_common.Logger
}

// NewConsumer создает нового потребителя
func NewConsumer(cfg ConsumerConfig, handler MessageHandler, connManager *rabbitmq_common.ConnectionManager) (*Consumer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("consumer: invalid base config: %w", err)
	}
	if handler == nil {
		return nil, fmt.Errorf("consumer: message handler is required")
	}
	if !cfg.DeclareQueue && cfg.QueueName == "" {
		return nil, fmt.Errorf("consumer: queue name is required if DeclareQueue is false")
	}
	if cfg.ExchangeNameForBind != "" && cfg.ExchangeTypeForBind == "" && cfg.DeclareExchangeForBind {
		return nil, fmt.Errorf("consumer: exchange type is required if declaring an exchange for binding")
	}

	c := &Consumer{
		config:  cfg,
		handler: handler,
		Logger:  logger,
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("consumer: failed to get channel from manager: %w", err)
	}
	c.connection = conn // Сохраняем ссылку для NotifyClose
	c.channel = ch
	c.Logger.Debug("Channel obtained from ConnectionManager")

	if err := c.setup(); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("consumer: setup failed: %w", err)
	}

	return c, nil
}

// setup настраивает QoS, очередь и привязку к обменнику
func (c *Consumer) setup() error {
	if c.config.PrefetchCount > 0 {
		c.Logger.Debug("Setting QoS", "prefetch_count", c.config.PrefetchCount)
		if err := c.channel.Qos(c.config.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	c.actualQueueName = c.config.QueueName
	if c.config.DeclareQueue {
		c.Logger.Debug("Declaring queue",
			"name", c.config.QueueName,
			"durable", c.config.DurableQueue,
		)
		q, err := c.channel.QueueDeclare(
			c.config.QueueName,
			c.config.DurableQueue,
			c.config.AutoDeleteQueue,
			c.config.ExclusiveQueue,
			false, // no-wait
			c.config.QueueArgs,
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue '%s': %w", c.config.QueueName, err)
		}
		c.actualQueueName = q.Name // Используем имя, возвращенное сервером
	}

	if c.config.DeclareExchangeForBind {
		c.Logger.Debug("Declaring exchange",
			"name", c.config.ExchangeNameForBind,
			"type", c.config.ExchangeTypeForBind,
		)
		err := c.channel.ExchangeDeclare(
			c.config.ExchangeNameForBind,
			c.config.ExchangeTypeForBind,
			c.config.DurableExchangeForBind,
			false, // auto-deleted
			false, // internal
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("failed to declare exchange '%s' for binding: %w", c.config.ExchangeNameForBind, err)
		}
	}

	if c.config.ExchangeNameForBind != "" {
		c.Logger.Debug("Binding queue to exchange",
			"queue_name", c.actualQueueName,
			"exchange_name", c.config.ExchangeNameForBind,
			"routing_key", c.config.RoutingKeyForBind,
		)
		err := c.channel.QueueBind(
			c.actualQueueName,
			c.config.RoutingKeyForBind,
			c.config.ExchangeNameForBind,
			false, // noWait
			nil,
		)
		if err != nil {
			return fmt.Errorf("failed to bind queue '%s' to exchange '%s': %w", c.actualQueueName, c.config.ExchangeNameForBind, err)
		}
	}

	c.Logger.Debug("Setup complete", "queue", c.actualQueueName)
	return nil
}

// StartConsuming начинает потребление сообщений и блокируется до отмены
// контекста или обрыва соединения
func (c *Consumer) StartConsuming(ctx context.Context) error {
	if c.channel == nil || c.connection == nil || c.connection.IsClosed() {
		return fmt.Errorf("consumer: not connected")
	}

	msgs, err := c.channel.Consume(
		c.actualQueueName,
		c.config.ConsumerTag,
		false, // auto-ack
		c.config.ExclusiveConsumer,
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("consumer %s: failed to register a consumer on queue '%s': %w", c.config.ConsumerTag, c.actualQueueName, err)
	}

	c.Logger.Info("[*] Waiting for messages on queue", "queue_name", c.actualQueueName)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.Logger.Info("Context cancelled for consumer. Exiting consumption loop.",
					"consumer_tag", c.config.ConsumerTag)
				return
			case d, ok := <-msgs:
				if !ok {
					c.Logger.Info("Deliveries channel closed by RabbitMQ for consumer. Exiting loop.",
						"consumer_tag", c.config.ConsumerTag)
					return
				}

				c.wg.Add(1)
				go func(delivery amqp.Delivery) {
					defer c.wg.Done()
					c.process(delivery)
				}(d)
			}
		}
	}()

	notifyClose := make(chan *amqp.Error)
	c.connection.NotifyClose(notifyClose)

	select {
	case <-ctx.Done():
		c.Logger.Info("Context cancelled. Shutting down consumer.",
			"consumer_tag", c.config.ConsumerTag)
		return nil
	case err := <-notifyClose:
		c.Logger.Error(err, "Connection closed for consumer.",
			"consumer_tag", c.config.ConsumerTag)
		return err
	}
}

func (c *Consumer) process(delivery amqp.Delivery) {
	c.Logger.Info("[->] Started processing message",
		"consumer_tag", c.config.ConsumerTag,
		"delivery_tag", delivery.DeliveryTag)

	processErr := c.handler(delivery)
	if processErr == nil {
		_ = delivery.Ack(false)
		c.Logger.Info("[+] Message Ack'd",
			"consumer_tag", c.config.ConsumerTag,
			"delivery_tag", delivery.DeliveryTag)
		return
	}

	c.Logger.Error(processErr, "Handler error for message",
		"consumer_tag", c.config.ConsumerTag,
		"delivery_tag", delivery.DeliveryTag)

	// Первый сбой возвращаем в очередь, повторный уходит в nack без requeue
	if !delivery.Redelivered {
		c.Logger.Info("Requeueing message after first failure",
			"consumer_tag", c.config.ConsumerTag,
			"delivery_tag", delivery.DeliveryTag)
		_ = delivery.Nack(false, true)
		return
	}

	c.Logger.Info("Message failed after redelivery. Nacking without requeue.",
		"consumer_tag", c.config.ConsumerTag,
		"delivery_tag", delivery.DeliveryTag)
	_ = delivery.Nack(false, false)
}

// Close дожидается обработчиков и закрывает канал потребителя
func (c *Consumer) Close() error {
	c.Logger.Debug("Waiting for message handlers to finish...")
	c.wg.Wait()
	c.Logger.Debug("All message handlers finished")

	var firstErr error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.Logger.Error(err, "Error closing channel")
			firstErr = err
		}
		c.channel = nil
	}

	c.Logger.Info("Consumer closed")
	return firstErr
}
