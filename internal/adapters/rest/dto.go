package rest

import "analysis-service/internal/core/domain"

// AnalysisResponse - DTO ответа на запрос анализа объекта
type AnalysisResponse struct {
	PropertyID string                  `json:"property_id"`
	Status     string                  `json:"status"`
	Analysis   *domain.CompositeResult `json:"analysis"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
