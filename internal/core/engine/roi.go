package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"analysis-service/internal/contextkeys"
	"analysis-service/internal/core/domain"
	"analysis-service/internal/core/port"
)

// ROICalculator оценивает арендную доходность, рост стоимости
// и горизонт окупаемости объекта
type ROICalculator struct {
	repo   port.PropertyRepositoryPort
	cache  port.AnalysisCachePort
	params Params
	now    func() time.Time
}

func NewROICalculator(repo port.PropertyRepositoryPort, cache port.AnalysisCachePort, params Params) *ROICalculator {
	return &ROICalculator{repo: repo, cache: cache, params: params, now: time.Now}
}

// WithClock подменяет источник времени (для тестов окон трендов)
func (c *ROICalculator) WithClock(now func() time.Time) *ROICalculator {
	c.now = now
	return c
}

// Analyze возвращает nil без ошибки, если у объекта нет положительной цены
func (c *ROICalculator) Analyze(ctx context.Context, rec *domain.PropertyRecord) (*domain.InvestmentPotential, error) {
	if rec.AskingPrice <= 0 {
		return nil, nil
	}
	locality := rec.PrimaryLocality()

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"engine":      "roi_calculator",
		"property_id": rec.ID.String(),
	})

	cacheKey := roiKey(rec.ID)
	if cached, hit := c.cache.Get(cacheKey); hit {
		if result, ok := cached.(*domain.InvestmentPotential); ok {
			logger.Debug("Cache hit for ROI estimate", nil)
			return result, nil
		}
	}

	monthlyRent := c.estimateMonthlyRent(rec)

	totalInvestment := rec.AskingPrice * (1 + c.params.AcquisitionFeeRate)
	annualRent := monthlyRent * 12
	grossYield := annualRent / totalInvestment * 100
	netYield := annualRent * (1 - c.params.OperatingCostRate) / totalInvestment * 100

	appreciation, err := c.locationAppreciationRate(ctx, locality)
	if err != nil {
		logger.Error("Failed to derive appreciation rate", err, nil)
		return nil, err
	}

	// Пятилетняя проекция: сложный рост стоимости плюс накопленная аренда
	year5Value := totalInvestment * math.Pow(1+appreciation/100, 5)
	totalReturn5y := (year5Value + annualRent*5 - totalInvestment) / totalInvestment * 100

	var breakEvenMonths, breakEvenYears *float64
	if monthlyRent > 0 {
		months := totalInvestment / monthlyRent
		years := months / 12
		breakEvenMonths = &months
		breakEvenYears = &years
	}

	result := &domain.InvestmentPotential{
		GrossAnnualYield:         grossYield,
		NetAnnualYield:           netYield,
		EstimatedMonthlyRent:     monthlyRent,
		TotalInvestmentRequired:  totalInvestment,
		LocationAppreciationRate: appreciation,
		Projected5yTotalReturn:   totalReturn5y,
		BreakEvenMonths:          breakEvenMonths,
		BreakEvenYears:           breakEvenYears,
		MarketComparison:         c.compareToMarketYields(grossYield, locality),
		InvestmentCategory:       investmentCategory(grossYield, totalReturn5y),
		RiskAdjustedReturn:       round1(math.Min(100, grossYield*10+appreciation*2)),
	}

	c.cache.Set(cacheKey, result, c.params.ROITTL)
	logger.Debug("ROI estimate computed", port.Fields{
		"gross_yield":  grossYield,
		"appreciation": appreciation,
	})

	return result, nil
}

// estimateMonthlyRent - середина коридора 0.5-0.8% от цены в месяц,
// скорректированная на локацию и тип объекта. Если коридор не задан,
// используется плоская оценка.
func (c *ROICalculator) estimateMonthlyRent(rec *domain.PropertyRecord) float64 {
	base := rec.AskingPrice * (c.params.RentRateConservative + c.params.RentRateOptimistic) / 2
	if base <= 0 {
		return math.Round(rec.AskingPrice * c.params.RentRateFallback)
	}

	localityMultiplier := 1.0
	if m, ok := c.params.LocalityRentMultipliers[domain.NormalizeLocality(rec.PrimaryLocality())]; ok {
		localityMultiplier = m
	}
	typeMultiplier := 1.0
	if m, ok := c.params.TypeRentMultipliers[rec.PropertyType]; ok {
		typeMultiplier = m
	}

	return math.Round(base * localityMultiplier * typeMultiplier)
}

// locationAppreciationRate выводит годовой рост цен из тренда средней цены
// за м²: последние 180 дней против предыдущего 90-дневного окна.
// Без трендовых данных берется ставка из справочника локаций.
func (c *ROICalculator) locationAppreciationRate(ctx context.Context, locality string) (float64, error) {
	cacheKey := appreciationKey(locality)
	if cached, hit := c.cache.Get(cacheKey); hit {
		if rate, ok := cached.(float64); ok {
			return rate, nil
		}
	}

	now := c.now()
	windowStart := now.AddDate(0, 0, -c.params.DemandWindowDays)

	recentAvg, err := c.repo.AggregatePricePerArea(ctx, locality, &port.TimeWindow{
		From: windowStart,
		To:   now,
	})
	if err != nil {
		return 0, fmt.Errorf("roi: failed to aggregate recent prices: %w", err)
	}
	olderAvg, err := c.repo.AggregatePricePerArea(ctx, locality, &port.TimeWindow{
		From: windowStart.AddDate(0, 0, -90),
		To:   windowStart,
	})
	if err != nil {
		return 0, fmt.Errorf("roi: failed to aggregate older prices: %w", err)
	}

	var rate float64
	if recentAvg != nil && olderAvg != nil && *olderAvg > 0 {
		rate = round1((*recentAvg - *olderAvg) / *olderAvg * 100)
	} else if defaultRate, ok := c.params.DefaultAppreciationRates[domain.NormalizeLocality(locality)]; ok {
		rate = defaultRate
	} else {
		rate = c.params.FallbackAppreciationRate
	}

	c.cache.Set(cacheKey, rate, c.params.AppreciationTTL)
	return rate, nil
}

func (c *ROICalculator) compareToMarketYields(grossYield float64, locality string) domain.YieldMarketComparison {
	marketAvg, ok := c.params.MarketAverageYields[domain.NormalizeLocality(locality)]
	if !ok {
		marketAvg = c.params.FallbackMarketYield
	}

	difference := grossYield - marketAvg
	vsMarketPercent := 0.0
	if marketAvg > 0 {
		vsMarketPercent = difference / marketAvg * 100
	}

	performance := "below_market"
	if difference > 0 {
		performance = "above_market"
	}

	return domain.YieldMarketComparison{
		MarketAverage:   marketAvg,
		YieldDifference: difference,
		VsMarketPercent: vsMarketPercent,
		Performance:     performance,
	}
}

func investmentCategory(grossYield, totalReturn5y float64) domain.InvestmentCategory {
	switch {
	case grossYield >= 7.0 && totalReturn5y >= 50:
		return domain.InvestmentExcellent
	case grossYield >= 6.0 && totalReturn5y >= 35:
		return domain.InvestmentGood
	case grossYield >= 5.0 && totalReturn5y >= 25:
		return domain.InvestmentModerate
	default:
		return domain.InvestmentPoor
	}
}
