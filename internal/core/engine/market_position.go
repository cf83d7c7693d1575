package engine

import (
	"context"
	"fmt"

	"analysis-service/internal/contextkeys"
	"analysis-service/internal/core/domain"
	"analysis-service/internal/core/port"
)

// MarketPositionEngine вычисляет перцентиль цены объекта относительно
// сопоставимых предложений его локации
type MarketPositionEngine struct {
	repo   port.PropertyRepositoryPort
	cache  port.AnalysisCachePort
	params Params
}

func NewMarketPositionEngine(repo port.PropertyRepositoryPort, cache port.AnalysisCachePort, params Params) *MarketPositionEngine {
	return &MarketPositionEngine{repo: repo, cache: cache, params: params}
}

// Analyze возвращает nil без ошибки, если у объекта нет цены/площади
// или сопоставимых объектов меньше минимальной выборки
func (e *MarketPositionEngine) Analyze(ctx context.Context, rec *domain.PropertyRecord) (*domain.MarketPosition, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"engine":      "market_position",
		"property_id": rec.ID.String(),
	})

	pricePerArea, ok := rec.PricePerArea()
	if !ok {
		logger.Warn("Missing price or area data, skipping market position analysis", nil)
		return nil, nil
	}
	area, _ := rec.UsableArea()
	locality := rec.PrimaryLocality()

	cacheKey := marketPositionKey(locality, rec.PropertyType, pricePerArea, area)
	if cached, hit := e.cache.Get(cacheKey); hit {
		if result, ok := cached.(*domain.MarketPosition); ok {
			logger.Debug("Cache hit for market position", port.Fields{"locality": locality})
			return result, nil
		}
	}

	areaMin := area * (1 - e.params.ComparableAreaBand)
	areaMax := area * (1 + e.params.ComparableAreaBand)
	comparables, err := e.repo.FindComparables(ctx, port.ComparableFilter{
		Locality:      locality,
		PropertyType:  &rec.PropertyType,
		AreaMin:       &areaMin,
		AreaMax:       &areaMax,
		OnlyCompleted: true,
		ExcludeID:     &rec.ID,
	})
	if err != nil {
		logger.Error("Failed to load comparables", err, nil)
		return nil, fmt.Errorf("market position: failed to load comparables: %w", err)
	}

	pricesPerArea := make([]float64, 0, len(comparables))
	for i := range comparables {
		if v, ok := comparables[i].PricePerArea(); ok {
			pricesPerArea = append(pricesPerArea, v)
		}
	}
	if len(pricesPerArea) < e.params.MinComparableSample {
		logger.Info("Insufficient comparables for market position", port.Fields{
			"found":    len(pricesPerArea),
			"required": e.params.MinComparableSample,
		})
		return nil, nil
	}

	percentile := percentileRank(pricePerArea, pricesPerArea)
	medianPrice := median(pricesPerArea)

	category, description := classifyPosition(percentile)

	minPrice, maxPrice := pricesPerArea[0], pricesPerArea[0]
	for _, v := range pricesPerArea[1:] {
		if v < minPrice {
			minPrice = v
		}
		if v > maxPrice {
			maxPrice = v
		}
	}

	result := &domain.MarketPosition{
		MarketPercentile:      percentile,
		PositionCategory:      category,
		AdvantageDescription:  description,
		PotentialSavings:      (medianPrice - pricePerArea) * area,
		SampleSize:            len(pricesPerArea),
		PriceAdvantagePercent: (medianPrice - pricePerArea) / medianPrice * 100,
		MedianMarketPrice:     medianPrice,
		PriceRange: domain.PriceRange{
			Min:     minPrice,
			Max:     maxPrice,
			Current: pricePerArea,
		},
	}

	e.cache.Set(cacheKey, result, e.params.MarketPositionTTL)
	logger.Debug("Market position computed", port.Fields{
		"percentile":  percentile,
		"sample_size": len(pricesPerArea),
	})

	return result, nil
}

func classifyPosition(percentile float64) (domain.PositionCategory, string) {
	switch {
	case percentile <= 25:
		return domain.PositionBottomQuartile, "Priced in bottom 25% of market"
	case percentile <= 50:
		return domain.PositionBelowMedian, "Priced below market median"
	case percentile <= 75:
		return domain.PositionAboveMedian, "Priced above market median"
	default:
		return domain.PositionTopQuartile, "Priced in top 25% of market"
	}
}
