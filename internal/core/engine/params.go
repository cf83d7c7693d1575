package engine

import (
	"time"

	"analysis-service/internal/core/domain"
)

// Params собирает все бизнес-пороги движков в одном месте.
// Значения по умолчанию откалиброваны по албанскому рынку; отдельные
// пороги можно переопределить через конфигурацию приложения.
type Params struct {
	// Подбор сопоставимых объектов
	MinComparableSample int     // минимальная выборка для позиционирования
	ComparableAreaBand  float64 // допуск по площади, доля (0.20 = ±20%)

	// Фильтр "похожести" для оценки редкости
	SimilarAreaBand  float64 // ±15%
	SimilarPriceBand float64 // ±20%
	DemandWindowDays int     // окно исторического спроса, дней

	// Анализ агента
	MinAgentSample int

	// Экономика сделки
	AcquisitionFeeRate   float64 // нотариус и оформление, доля от цены
	OperatingCostRate    float64 // эксплуатация/управление/налоги, доля от аренды
	RentRateConservative float64 // нижняя граница месячной аренды, доля от цены
	RentRateOptimistic   float64 // верхняя граница
	RentRateFallback     float64 // плоская оценка, если корректировки недоступны

	// TTL кэша по категориям
	MarketPositionTTL time.Duration
	AgentInsightsTTL  time.Duration
	MomentumTTL       time.Duration
	ScarcityTTL       time.Duration
	ROITTL            time.Duration
	AppreciationTTL   time.Duration

	// Справочные таблицы по нормализованным локациям
	LocalityRentMultipliers  map[string]float64
	TypeRentMultipliers      map[domain.PropertyType]float64
	DefaultAppreciationRates map[string]float64 // % годовых при нехватке трендовых данных
	FallbackAppreciationRate float64
	MarketAverageYields      map[string]float64 // средняя валовая доходность, %
	FallbackMarketYield      float64
}

// DefaultParams возвращает параметры по умолчанию
func DefaultParams() Params {
	return Params{
		MinComparableSample: 3,
		ComparableAreaBand:  0.20,

		SimilarAreaBand:  0.15,
		SimilarPriceBand: 0.20,
		DemandWindowDays: 180,

		MinAgentSample: 3,

		AcquisitionFeeRate:   0.03,
		OperatingCostRate:    0.25,
		RentRateConservative: 0.005,
		RentRateOptimistic:   0.008,
		RentRateFallback:     0.006,

		MarketPositionTTL: time.Hour,
		AgentInsightsTTL:  2 * time.Hour,
		MomentumTTL:       6 * time.Hour,
		ScarcityTTL:       time.Hour,
		ROITTL:            time.Hour,
		AppreciationTTL:   24 * time.Hour,

		LocalityRentMultipliers: map[string]float64{
			"tirana":  1.2,
			"vlore":   1.0,
			"durres":  0.9,
			"saranda": 1.1,
		},
		TypeRentMultipliers: map[domain.PropertyType]float64{
			domain.TypeApartment:  1.0,
			domain.TypeVilla:      1.3,
			domain.TypeCommercial: 1.1,
			domain.TypeOffice:     0.9,
			domain.TypeStudio:     0.8,
		},
		DefaultAppreciationRates: map[string]float64{
			"tirana":  8.0,
			"vlore":   6.0,
			"durres":  5.0,
			"saranda": 7.0,
		},
		FallbackAppreciationRate: 5.0,
		MarketAverageYields: map[string]float64{
			"tirana":  6.0,
			"vlore":   5.5,
			"durres":  5.0,
			"saranda": 6.5,
		},
		FallbackMarketYield: 5.5,
	}
}
