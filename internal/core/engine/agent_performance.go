package engine

import (
	"context"
	"fmt"
	"math"

	"analysis-service/internal/contextkeys"
	"analysis-service/internal/core/domain"
	"analysis-service/internal/core/port"
)

// AgentPerformanceAnalyzer профилирует ценовое поведение агента
// по его историческому портфелю
type AgentPerformanceAnalyzer struct {
	repo   port.PropertyRepositoryPort
	cache  port.AnalysisCachePort
	params Params
}

func NewAgentPerformanceAnalyzer(repo port.PropertyRepositoryPort, cache port.AnalysisCachePort, params Params) *AgentPerformanceAnalyzer {
	return &AgentPerformanceAnalyzer{repo: repo, cache: cache, params: params}
}

// Analyze возвращает nil без ошибки, если агент неизвестен, его портфель
// меньше минимума или по локации нет средней цены для сравнения
func (a *AgentPerformanceAnalyzer) Analyze(ctx context.Context, rec *domain.PropertyRecord) (*domain.AgentInsights, error) {
	if rec.AgentName == nil || *rec.AgentName == "" {
		return nil, nil
	}
	agentName := *rec.AgentName

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"engine":     "agent_performance",
		"agent_name": agentName,
	})

	cacheKey := agentInsightsKey(agentName)
	if cached, hit := a.cache.Get(cacheKey); hit {
		if result, ok := cached.(*domain.AgentInsights); ok {
			logger.Debug("Cache hit for agent insights", nil)
			return result, nil
		}
	}

	stats, err := a.repo.AggregateAgentStats(ctx, agentName)
	if err != nil {
		logger.Error("Failed to aggregate agent stats", err, nil)
		return nil, fmt.Errorf("agent performance: failed to aggregate agent stats: %w", err)
	}
	if stats == nil || stats.ListingCount < a.params.MinAgentSample {
		logger.Info("Insufficient agent portfolio for analysis", nil)
		return nil, nil
	}

	marketAvg, err := a.repo.AggregatePricePerArea(ctx, rec.PrimaryLocality(), nil)
	if err != nil {
		logger.Error("Failed to aggregate market average", err, nil)
		return nil, fmt.Errorf("agent performance: failed to aggregate market average: %w", err)
	}
	if marketAvg == nil || *marketAvg <= 0 {
		logger.Info("No market average available for locality", nil)
		return nil, nil
	}

	vsMarketPercent := (stats.MeanPricePerArea - *marketAvg) / *marketAvg * 100

	// Стабильность цен агента: чем выше дисперсия относительно квадрата
	// среднего, тем ниже балл. Нулевая дисперсия дает 100.
	consistency := 100.0
	if stats.Variance > 0 && stats.MeanPricePerArea > 0 {
		variancePercent := stats.Variance / (stats.MeanPricePerArea * stats.MeanPricePerArea) * 100
		consistency = math.Max(0, 100-variancePercent)
	}

	result := &domain.AgentInsights{
		PortfolioSize:        stats.ListingCount,
		AvgPriceVsMarket:     vsMarketPercent,
		ConsistencyScore:     consistency,
		AvgDaysOnMarket:      stats.MeanDaysOnMarket,
		NegotiationPotential: negotiationPotential(vsMarketPercent, stats.MeanDaysOnMarket, consistency),
		PricingStyle:         pricingStyle(vsMarketPercent),
		MarketComparison: domain.AgentMarketComparison{
			AgentAvg:          stats.MeanPricePerArea,
			MarketAvg:         *marketAvg,
			DifferencePercent: vsMarketPercent,
		},
	}

	a.cache.Set(cacheKey, result, a.params.AgentInsightsTTL)
	logger.Debug("Agent insights computed", port.Fields{
		"portfolio_size": stats.ListingCount,
		"vs_market":      vsMarketPercent,
	})

	return result, nil
}

// negotiationPotential - балльная оценка пространства для торга:
// завышение над рынком, долгая экспозиция и нестабильные цены добавляют очков
func negotiationPotential(vsMarket, avgDaysOnMarket, consistency float64) domain.NegotiationPotential {
	score := 0

	switch {
	case vsMarket > 10:
		score += 40
	case vsMarket > 5:
		score += 25
	case vsMarket < -5:
		score -= 20
	}

	switch {
	case avgDaysOnMarket > 60:
		score += 30
	case avgDaysOnMarket > 30:
		score += 15
	}

	if consistency < 70 {
		score += 20
	}

	switch {
	case score >= 60:
		return domain.NegotiationHigh
	case score >= 30:
		return domain.NegotiationMedium
	default:
		return domain.NegotiationLow
	}
}

func pricingStyle(vsMarket float64) domain.PricingStyle {
	switch {
	case vsMarket > 15:
		return domain.PricingAggressive
	case vsMarket > 5:
		return domain.PricingPremium
	case vsMarket > -5:
		return domain.PricingMarketRate
	case vsMarket > -15:
		return domain.PricingCompetitive
	default:
		return domain.PricingDiscount
	}
}
