package engine

import (
	"context"
	"fmt"

	"analysis-service/internal/contextkeys"
	"analysis-service/internal/core/domain"
	"analysis-service/internal/core/port"
)

// PropertyScarcityAnalyzer оценивает, насколько редок профиль объекта
// на фоне активных и недавно проданных аналогов
type PropertyScarcityAnalyzer struct {
	repo   port.PropertyRepositoryPort
	cache  port.AnalysisCachePort
	params Params
}

func NewPropertyScarcityAnalyzer(repo port.PropertyRepositoryPort, cache port.AnalysisCachePort, params Params) *PropertyScarcityAnalyzer {
	return &PropertyScarcityAnalyzer{repo: repo, cache: cache, params: params}
}

// Analyze всегда возвращает результат: нулевые счетчики аналогов
// означают максимальную базовую редкость, а не отсутствие данных
func (s *PropertyScarcityAnalyzer) Analyze(ctx context.Context, rec *domain.PropertyRecord) (*domain.ScarcityAnalysis, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"engine":      "scarcity",
		"property_id": rec.ID.String(),
	})

	cacheKey := scarcityKey(rec.ID)
	if cached, hit := s.cache.Get(cacheKey); hit {
		if result, ok := cached.(*domain.ScarcityAnalysis); ok {
			logger.Debug("Cache hit for scarcity score", nil)
			return result, nil
		}
	}

	filter := s.similarityFilter(rec)

	similarActive, err := s.repo.CountActive(ctx, filter)
	if err != nil {
		logger.Error("Failed to count similar active listings", err, nil)
		return nil, fmt.Errorf("scarcity: failed to count similar active listings: %w", err)
	}
	historicalDemand, err := s.repo.CountRemovedSince(ctx, s.params.DemandWindowDays, filter)
	if err != nil {
		logger.Error("Failed to count removed listings", err, nil)
		return nil, fmt.Errorf("scarcity: failed to count removed listings: %w", err)
	}

	featureScore, uniqueFeatures := specialFeatures(rec)

	// Чем меньше похожих активных объявлений, тем выше база;
	// исторический спрос добавляет ограниченный бонус
	baseScarcity := 100 - similarActive*15
	if baseScarcity < 0 {
		baseScarcity = 0
	}
	demandIndicator := historicalDemand * 8
	if demandIndicator > 40 {
		demandIndicator = 40
	}
	finalScore := baseScarcity + featureScore + demandIndicator
	if finalScore > 100 {
		finalScore = 100
	}

	marketGap := domain.GapNormal
	if similarActive < 3 && historicalDemand > 5 {
		marketGap = domain.GapHighDemandLowSupply
	}

	denominator := similarActive
	if denominator < 1 {
		denominator = 1
	}

	result := &domain.ScarcityAnalysis{
		ScarcityScore:        float64(finalScore),
		SimilarActiveCount:   similarActive,
		HistoricalDemand:     historicalDemand,
		SpecialFeaturesScore: featureScore,
		UniquenessFactors:    uniqueFeatures,
		MarketGapAnalysis:    marketGap,
		ScarcityCategory:     scarcityCategory(float64(finalScore)),
		DemandSupplyRatio:    float64(historicalDemand) / float64(denominator),
	}

	s.cache.Set(cacheKey, result, s.params.ScarcityTTL)
	logger.Debug("Scarcity score computed", port.Fields{
		"score":          finalScore,
		"similar_active": similarActive,
		"demand":         historicalDemand,
	})

	return result, nil
}

// similarityFilter строит фильтр "похожих" объектов: локация, тип,
// площадь и цена в узких диапазонах. Неизвестная площадь не фильтруется.
func (s *PropertyScarcityAnalyzer) similarityFilter(rec *domain.PropertyRecord) port.ComparableFilter {
	filter := port.ComparableFilter{
		Locality:     rec.PrimaryLocality(),
		PropertyType: &rec.PropertyType,
		ExcludeID:    &rec.ID,
	}

	if area, ok := rec.UsableArea(); ok {
		areaMin := area * (1 - s.params.SimilarAreaBand)
		areaMax := area * (1 + s.params.SimilarAreaBand)
		filter.AreaMin = &areaMin
		filter.AreaMax = &areaMax
	}
	if rec.AskingPrice > 0 {
		priceMin := rec.AskingPrice * (1 - s.params.SimilarPriceBand)
		priceMax := rec.AskingPrice * (1 + s.params.SimilarPriceBand)
		filter.PriceMin = &priceMin
		filter.PriceMax = &priceMax
	}

	return filter
}

// specialFeatures начисляет бонусные баллы за особенности объекта
// и собирает их человекочитаемый список
func specialFeatures(rec *domain.PropertyRecord) (int, []string) {
	score := 0
	features := []string{}

	if rec.HasElevator != nil && *rec.HasElevator {
		score += 15
		features = append(features, "Elevator access")
	}
	if rec.FloorLevel == "ground_floor" && rec.PropertyType == domain.TypeCommercial {
		score += 25
		features = append(features, "Ground floor commercial")
	}
	if rec.Condition == domain.ConditionNew {
		score += 20
		features = append(features, "New construction")
	}
	if rec.Furnished != nil && *rec.Furnished {
		score += 10
		features = append(features, "Furnished")
	}
	if rec.Bedrooms != nil && *rec.Bedrooms >= 3 {
		score += 10
	}
	if rec.Bathrooms != nil && *rec.Bathrooms >= 2 {
		score += 5
	}
	if rec.Neighborhood != nil && *rec.Neighborhood != "" {
		features = append(features, fmt.Sprintf("Prime %s location", *rec.Neighborhood))
	}

	return score, features
}

func scarcityCategory(score float64) domain.ScarcityCategory {
	switch {
	case score >= 80:
		return domain.ScarcityExtremelyRare
	case score >= 60:
		return domain.ScarcityRare
	case score >= 40:
		return domain.ScarcityUncommon
	default:
		return domain.ScarcityCommon
	}
}
