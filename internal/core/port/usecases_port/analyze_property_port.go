package usecases_port

import (
	"context"

	"analysis-service/internal/core/domain"

	"github.com/google/uuid"
)

type AnalyzePropertyUseCase interface {
	Execute(ctx context.Context, propertyID uuid.UUID) (*domain.CompositeResult, error)
}
