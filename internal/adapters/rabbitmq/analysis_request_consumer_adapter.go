package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"analysis-service/internal/constants"
	"analysis-service/internal/contextkeys"
	"analysis-service/internal/contracts"
	"analysis-service/internal/core/domain"
	"analysis-service/internal/core/port"
	"analysis-service/internal/core/port/usecases_port"
	"analysis-service/pkg/rabbitmq/rabbitmq_common"
	"analysis-service/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AnalysisRequestConsumerAdapter - входящий адаптер, который слушает очередь
// запросов на анализ, запускает композитный анализ и публикует результат
type AnalysisRequestConsumerAdapter struct {
	consumer *rabbitmq_consumer.Consumer
	useCase  usecases_port.AnalyzePropertyUseCase
	reporter port.ResultReporterPort
	logger   port.LoggerPort
}

// NewAnalysisRequestConsumerAdapter создает новый адаптер
func NewAnalysisRequestConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	useCase usecases_port.AnalyzePropertyUseCase,
	reporter port.ResultReporterPort,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*AnalysisRequestConsumerAdapter, error) {

	adapter := &AnalysisRequestConsumerAdapter{
		useCase:  useCase,
		reporter: reporter,
		logger:   logger,
	}

	// Создаем логгер для pkg-уровня с контекстом нашего компонента
	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = NewPkgLoggerBridge(pkgLogger)

	consumer, err := rabbitmq_consumer.NewConsumer(consumerCfg, adapter.messageHandler, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for analysis requests: %w", err)
	}
	adapter.consumer = consumer

	return adapter, nil
}

// messageHandler обрабатывает одно сообщение с запросом анализа.
// Ошибки данных (невалидное событие, несуществующий объект) подтверждаются,
// чтобы не зациклить сообщение; транзиентные ошибки уходят в requeue.
func (a *AnalysisRequestConsumerAdapter) messageHandler(d amqp.Delivery) error {
	traceID, _ := d.Headers["x-trace-id"].(string)
	if traceID == "" {
		traceID = uuid.New().String()
	}

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID,
		"adapter_name": "AnalysisRequestConsumerAdapter",
	})

	ctx := context.Background()
	ctx = contextkeys.ContextWithLogger(ctx, msgLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	msgLogger.Info("Received analysis request message", nil)

	if err := contracts.ValidateEvent(constants.EventAnalysisRequested, constants.EventAnalysisRequestedV1, d.Body); err != nil {
		// Сообщение не станет валиднее при повторе
		msgLogger.Warn("Invalid analysis request event, dropping", port.Fields{"validation_error": err.Error()})
		return nil
	}

	var event AnalysisRequestedEventDTO
	if err := json.Unmarshal(d.Body, &event); err != nil {
		msgLogger.Warn("Failed to unmarshal analysis request, dropping", port.Fields{"unmarshal_error": err.Error()})
		return nil
	}

	propertyID, err := uuid.Parse(event.PropertyID)
	if err != nil {
		msgLogger.Warn("Invalid property ID in analysis request, dropping", port.Fields{"property_id": event.PropertyID})
		return nil
	}

	result, err := a.useCase.Execute(ctx, propertyID)
	if err != nil {
		if errors.Is(err, domain.ErrPropertyNotFound) || errors.Is(err, domain.ErrPropertyNotCompleted) {
			msgLogger.Warn("Analysis request rejected, dropping message", port.Fields{
				"property_id": propertyID.String(),
				"reason":      err.Error(),
			})
			return nil
		}
		msgLogger.Error("Analysis failed, message will be retried", err, port.Fields{
			"property_id": propertyID.String(),
		})
		return err
	}

	if err := a.reporter.ReportCompleted(ctx, propertyID, result); err != nil {
		msgLogger.Error("Failed to publish analysis result", err, port.Fields{
			"property_id": propertyID.String(),
		})
		return err
	}

	msgLogger.Info("Analysis request processed", port.Fields{
		"property_id":      propertyID.String(),
		"investment_score": result.InvestmentScore,
	})
	return nil
}

// Start запускает потребление сообщений (блокирующий вызов)
func (a *AnalysisRequestConsumerAdapter) Start(ctx context.Context) error {
	a.logger.Info("Starting analysis request consumer...", nil)
	return a.consumer.StartConsuming(ctx)
}

// Close останавливает потребителя
func (a *AnalysisRequestConsumerAdapter) Close() error {
	a.logger.Info("Closing analysis request consumer...", nil)
	return a.consumer.Close()
}
