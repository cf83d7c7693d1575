package engine

import (
	"context"
	"fmt"
	"time"

	"analysis-service/internal/contextkeys"
	"analysis-service/internal/core/domain"
	"analysis-service/internal/core/port"
)

// NeighborhoodVelocityTracker отслеживает скорость появления объявлений,
// ценовой импульс и давление предложения в локации
type NeighborhoodVelocityTracker struct {
	repo   port.PropertyRepositoryPort
	cache  port.AnalysisCachePort
	params Params
	now    func() time.Time
}

func NewNeighborhoodVelocityTracker(repo port.PropertyRepositoryPort, cache port.AnalysisCachePort, params Params) *NeighborhoodVelocityTracker {
	return &NeighborhoodVelocityTracker{repo: repo, cache: cache, params: params, now: time.Now}
}

// WithClock подменяет источник времени (для тестов окон трендов)
func (t *NeighborhoodVelocityTracker) WithClock(now func() time.Time) *NeighborhoodVelocityTracker {
	t.now = now
	return t
}

// Analyze всегда возвращает результат: при пустых данных все счетчики
// нулевые, а импульс равен 0
func (t *NeighborhoodVelocityTracker) Analyze(ctx context.Context, rec *domain.PropertyRecord) (*domain.MarketMomentum, error) {
	locality := rec.PrimaryLocality()
	now := t.now()

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"engine":   "velocity_tracker",
		"locality": locality,
	})

	cacheKey := momentumKey(locality, now)
	if cached, hit := t.cache.Get(cacheKey); hit {
		if result, ok := cached.(*domain.MarketMomentum); ok {
			logger.Debug("Cache hit for market momentum", nil)
			return result, nil
		}
	}

	velocity30d, err := t.repo.CountListedSince(ctx, locality, 30)
	if err != nil {
		return nil, fmt.Errorf("velocity tracker: failed to count 30d listings: %w", err)
	}
	listed90d, err := t.repo.CountListedSince(ctx, locality, 90)
	if err != nil {
		return nil, fmt.Errorf("velocity tracker: failed to count 90d listings: %w", err)
	}
	velocity90d := float64(listed90d) / 3 // среднемесячная база

	recentAvg, err := t.repo.AggregatePricePerArea(ctx, locality, &port.TimeWindow{
		From: now.AddDate(0, 0, -30),
		To:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("velocity tracker: failed to aggregate recent prices: %w", err)
	}
	olderAvg, err := t.repo.AggregatePricePerArea(ctx, locality, &port.TimeWindow{
		From: now.AddDate(0, 0, -120),
		To:   now.AddDate(0, 0, -90),
	})
	if err != nil {
		return nil, fmt.Errorf("velocity tracker: failed to aggregate older prices: %w", err)
	}

	momentum := 0.0
	if recentAvg != nil && olderAvg != nil && *olderAvg > 0 {
		momentum = (*recentAvg - *olderAvg) / *olderAvg * 100
	}

	supplyPressure, err := t.repo.CountActive(ctx, port.ComparableFilter{
		Locality:   locality,
		OnlyActive: true,
	})
	if err != nil {
		return nil, fmt.Errorf("velocity tracker: failed to count active listings: %w", err)
	}

	temperature := marketTemperature(velocity30d, velocity90d, momentum, supplyPressure)

	result := &domain.MarketMomentum{
		ListingVelocityTrend: float64(velocity30d) - velocity90d,
		Velocity30d:          velocity30d,
		Velocity90d:          velocity90d,
		PriceMomentum30d:     momentum,
		SupplyPressure:       supplyPressure,
		MarketTemperature:    temperature,
		TimingRecommendation: timingRecommendation(temperature, momentum),
		MarketPhase:          marketPhase(momentum, velocity30d, supplyPressure),
	}

	t.cache.Set(cacheKey, result, t.params.MomentumTTL)
	logger.Debug("Market momentum computed", port.Fields{
		"velocity_30d": velocity30d,
		"momentum":     momentum,
		"temperature":  temperature,
	})

	return result, nil
}

// marketTemperature сводит три сигнала в балльную "температуру" рынка
func marketTemperature(velocity30d int, velocity90d, momentum float64, supply int) domain.MarketTemperature {
	score := 0

	// Активность относительно среднемесячной базы
	v30 := float64(velocity30d)
	if v30 > velocity90d*1.5 {
		score += 30
	} else if v30 < velocity90d*0.5 {
		score -= 20
	}

	switch {
	case momentum > 10:
		score += 25
	case momentum > 5:
		score += 15
	case momentum < -10:
		score -= 25
	case momentum < -5:
		score -= 15
	}

	if supply < 10 {
		score += 20
	} else if supply > 50 {
		score -= 20
	}

	switch {
	case score >= 40:
		return domain.TemperatureHot
	case score >= 20:
		return domain.TemperatureWarm
	case score >= -20:
		return domain.TemperatureModerate
	default:
		return domain.TemperatureCool
	}
}

func timingRecommendation(temperature domain.MarketTemperature, momentum float64) domain.TimingRecommendation {
	switch {
	case temperature == domain.TemperatureHot && momentum > 5:
		return domain.TimingActFast
	case temperature == domain.TemperatureWarm && momentum > 0:
		return domain.TimingGood
	case temperature == domain.TemperatureCool && momentum < 0:
		return domain.TimingWaitBetter
	default:
		return domain.TimingNeutral
	}
}

func marketPhase(momentum float64, velocity, supply int) domain.MarketPhase {
	switch {
	case momentum > 10 && velocity > 10 && supply < 20:
		return domain.PhaseExpansion
	case momentum > 5 && velocity > 5:
		return domain.PhaseGrowth
	case momentum < -10 && velocity < 5 && supply > 30:
		return domain.PhaseContraction
	case momentum < -5 && supply > 20:
		return domain.PhaseDecline
	default:
		return domain.PhaseStable
	}
}
