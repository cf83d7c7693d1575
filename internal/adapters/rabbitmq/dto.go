package rabbitmq

import (
	"time"

	"analysis-service/internal/core/domain"
)

// AnalysisRequestedEventDTO - входящее событие с запросом анализа объекта
type AnalysisRequestedEventDTO struct {
	PropertyID  string `json:"property_id"`
	RequestedBy string `json:"requested_by,omitempty"`
	TraceID     string `json:"trace_id,omitempty"`
}

// AnalysisCompletedEventDTO - исходящее событие с результатом анализа
type AnalysisCompletedEventDTO struct {
	PropertyID      string                  `json:"property_id"`
	Status          string                  `json:"status"`
	InvestmentScore int                     `json:"investment_score"`
	Recommendation  string                  `json:"recommendation"`
	Analysis        *domain.CompositeResult `json:"analysis"`
	CompletedAt     time.Time               `json:"completed_at"`
}
