package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"analysis-service/internal/constants"
	"analysis-service/internal/contextkeys"
	"analysis-service/internal/core/domain"
	"analysis-service/internal/core/port"
	"analysis-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ResultReporterAdapter публикует событие о завершенном анализе
type ResultReporterAdapter struct {
	producer   *rabbitmq_producer.Publisher
	routingKey string
}

func NewResultReporterAdapter(producer *rabbitmq_producer.Publisher, routingKey string) (*ResultReporterAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &ResultReporterAdapter{
		producer:   producer,
		routingKey: routingKey,
	}, nil
}

func (a *ResultReporterAdapter) ReportCompleted(ctx context.Context, propertyID uuid.UUID, result *domain.CompositeResult) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "ResultReporterAdapter",
		"routing_key": a.routingKey,
		"property_id": propertyID.String(),
	})

	dto := AnalysisCompletedEventDTO{
		PropertyID:      propertyID.String(),
		Status:          "completed",
		InvestmentScore: result.InvestmentScore,
		Recommendation:  string(result.Recommendation),
		Analysis:        result,
		CompletedAt:     time.Now().UTC(),
	}

	body, err := json.Marshal(dto)
	if err != nil {
		adapterLogger.Error("Failed to marshal analysis result", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to marshal result for property %s: %w", propertyID, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent, // Для сохранения сообщений при перезапуске брокера
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			"x-event-type":    constants.EventAnalysisCompleted,
			"x-event-version": constants.EventAnalysisCompletedV1,
		},
	}

	traceID := contextkeys.TraceIDFromContext(ctx)
	if traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	// Таймаут на операцию публикации, если контекст его не предоставляет
	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	adapterLogger.Info("Publishing analysis result", port.Fields{"investment_score": dto.InvestmentScore})
	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish analysis result", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish result for property %s: %w", propertyID, err)
	}

	adapterLogger.Info("Successfully published analysis result", nil)
	return nil
}
