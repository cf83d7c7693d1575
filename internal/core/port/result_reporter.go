package port

import (
	"context"

	"analysis-service/internal/core/domain"

	"github.com/google/uuid"
)

// ResultReporterPort - исходящий порт для публикации готового результата анализа
type ResultReporterPort interface {
	ReportCompleted(ctx context.Context, propertyID uuid.UUID, result *domain.CompositeResult) error
}
