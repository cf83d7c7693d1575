package rest

import (
	"errors"
	"net/http"

	"analysis-service/internal/contextkeys"
	"analysis-service/internal/core/domain"
	"analysis-service/internal/core/port"
	"analysis-service/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type AnalysisHandler struct {
	analyzePropertyUC usecases_port.AnalyzePropertyUseCase
	serviceName       string
}

func NewAnalysisHandler(analyzePropertyUC usecases_port.AnalyzePropertyUseCase, serviceName string) *AnalysisHandler {
	return &AnalysisHandler{
		analyzePropertyUC: analyzePropertyUC,
		serviceName:       serviceName,
	}
}

// AnalyzeProperty обрабатывает POST /api/v1/analysis/{propertyID}
func (h *AnalysisHandler) AnalyzeProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	propertyIDStr := chi.URLParam(r, "propertyID")
	propertyID, err := uuid.Parse(propertyIDStr)
	if err != nil {
		logger.Warn("Invalid property ID in request", port.Fields{"property_id": propertyIDStr})
		WriteJSONError(w, http.StatusBadRequest, "invalid property ID format")
		return
	}

	result, err := h.analyzePropertyUC.Execute(r.Context(), propertyID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPropertyNotFound):
			WriteJSONError(w, http.StatusNotFound, "property record not found")
		case errors.Is(err, domain.ErrPropertyNotCompleted):
			WriteJSONError(w, http.StatusConflict, "property record is not completed yet")
		default:
			logger.Error("Analysis failed", err, port.Fields{"property_id": propertyID.String()})
			WriteJSONError(w, http.StatusInternalServerError, "analysis failed")
		}
		return
	}

	RespondWithJSON(w, http.StatusOK, AnalysisResponse{
		PropertyID: propertyID.String(),
		Status:     "success",
		Analysis:   result,
	})
}

// Health обрабатывает GET /api/v1/health
func (h *AnalysisHandler) Health(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: h.serviceName,
	})
}
