package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"analysis-service/internal/core/domain"
	"analysis-service/internal/core/engine"
	"analysis-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	record  *domain.PropertyRecord
	getErr  error
	findErr error

	comparables    []domain.PropertyRecord
	listedByDays   map[int]int
	activeCount    int
	removedCount   int
	completedCount int

	avgPriceByWindow map[string]*float64
	agentStats       *port.AgentStats
}

func (f *fakeRepository) GetByID(_ context.Context, _ uuid.UUID) (*domain.PropertyRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.record, nil
}

func (f *fakeRepository) FindComparables(_ context.Context, _ port.ComparableFilter) ([]domain.PropertyRecord, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.comparables, nil
}

func (f *fakeRepository) CountListedSince(_ context.Context, _ string, days int) (int, error) {
	return f.listedByDays[days], nil
}

func (f *fakeRepository) CountActive(_ context.Context, _ port.ComparableFilter) (int, error) {
	return f.activeCount, nil
}

func (f *fakeRepository) CountRemovedSince(_ context.Context, _ int, _ port.ComparableFilter) (int, error) {
	return f.removedCount, nil
}

func (f *fakeRepository) CountCompleted(_ context.Context) (int, error) {
	return f.completedCount, nil
}

func (f *fakeRepository) AggregatePricePerArea(_ context.Context, _ string, window *port.TimeWindow) (*float64, error) {
	key := "all"
	if window != nil {
		key = window.From.Format("2006-01-02")
	}
	return f.avgPriceByWindow[key], nil
}

func (f *fakeRepository) AggregateAgentStats(_ context.Context, _ string) (*port.AgentStats, error) {
	return f.agentStats, nil
}

type fakeCache struct {
	entries map[string]interface{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]interface{})}
}

func (c *fakeCache) Get(key string) (interface{}, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *fakeCache) Set(key string, value interface{}, _ time.Duration) {
	c.entries[key] = value
}

func ptrFloat(v float64) *float64 { return &v }
func ptrString(v string) *string  { return &v }

func newUseCase(repo *fakeRepository, now time.Time) *AnalyzePropertyUseCase {
	cache := newFakeCache()
	params := engine.DefaultParams()
	clock := func() time.Time { return now }
	return NewAnalyzePropertyUseCase(
		repo,
		engine.NewMarketPositionEngine(repo, cache, params),
		engine.NewAgentPerformanceAnalyzer(repo, cache, params),
		engine.NewNeighborhoodVelocityTracker(repo, cache, params).WithClock(clock),
		engine.NewPropertyScarcityAnalyzer(repo, cache, params),
		engine.NewROICalculator(repo, cache, params).WithClock(clock),
	)
}

func comparableAt(pricePerArea float64) domain.PropertyRecord {
	return domain.PropertyRecord{
		ID:           uuid.New(),
		Location:     "Tirana",
		PropertyType: domain.TypeApartment,
		AskingPrice:  pricePerArea * 100,
		TotalArea:    ptrFloat(100),
		Status:       domain.StatusCompleted,
	}
}

func TestAnalyzeProperty_FullDataStrongBuy(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := &domain.PropertyRecord{
		ID:           uuid.New(),
		Location:     "Tirana, Blloku",
		PropertyType: domain.TypeApartment,
		AskingPrice:  120000, // 1200 за м², нижний квартиль выборки
		TotalArea:    ptrFloat(100),
		AgentName:    ptrString("Alba Invest"),
		IsActive:     true,
		Status:       domain.StatusCompleted,
	}
	recentWindow := now.AddDate(0, 0, -30).Format("2006-01-02")
	olderWindow := now.AddDate(0, 0, -120).Format("2006-01-02")
	repo := &fakeRepository{
		record: rec,
		comparables: []domain.PropertyRecord{
			comparableAt(1500),
			comparableAt(1600),
			comparableAt(1700),
			comparableAt(1800),
		},
		listedByDays:   map[int]int{30: 20, 90: 30},
		activeCount:    5,
		removedCount:   4,
		completedCount: 50,
		avgPriceByWindow: map[string]*float64{
			"all":        ptrFloat(1500),
			recentWindow: ptrFloat(1700),
			olderWindow:  ptrFloat(1500),
		},
		agentStats: &port.AgentStats{
			MeanPricePerArea: 1800,
			MeanDaysOnMarket: 75,
			ListingCount:     12,
		},
	}
	uc := newUseCase(repo, now)

	result, err := uc.Execute(context.Background(), rec.ID)

	require.NoError(t, err)
	require.NotNil(t, result)

	// Все пять факторов положительные, оценка упирается в потолок
	assert.Equal(t, 100, result.InvestmentScore)
	assert.Equal(t, domain.RecommendStrongBuy, result.Recommendation)

	require.NotNil(t, result.MarketPosition)
	assert.Equal(t, domain.PositionBottomQuartile, result.MarketPosition.PositionCategory)
	require.NotNil(t, result.AgentIntelligence)
	assert.Equal(t, domain.NegotiationHigh, result.AgentIntelligence.NegotiationPotential)
	require.NotNil(t, result.MarketMomentum)
	assert.Equal(t, domain.TemperatureHot, result.MarketMomentum.MarketTemperature)
	require.NotNil(t, result.ScarcityAnalysis)
	require.NotNil(t, result.InvestmentPotential)

	assert.Equal(t, 4, result.DataSources.ComparableProperties)
	assert.Equal(t, 12, result.DataSources.AgentProperties)
	// 20 за 30 дней + 30 за 90 дней + 5 активных
	assert.Equal(t, 55, result.DataSources.MarketDataPoints)
	assert.Equal(t, "data_driven", result.DataSources.AnalysisMethod)

	assert.NotEmpty(t, result.MarketInsights)
	assert.LessOrEqual(t, len(result.MarketInsights), 5)
	assert.NotEmpty(t, result.RiskFactors)
	assert.LessOrEqual(t, len(result.RiskFactors), 4)
	assert.NotEmpty(t, result.ActionItems)
	assert.LessOrEqual(t, len(result.ActionItems), 5)
	assert.False(t, result.AnalysisTimestamp.IsZero())
}

func TestAnalyzeProperty_SparseDataStillProducesResult(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := &domain.PropertyRecord{
		ID:           uuid.New(),
		Location:     "Shkodra",
		PropertyType: domain.TypeApartment,
		AskingPrice:  90000,
		TotalArea:    ptrFloat(60),
		Status:       domain.StatusCompleted,
	}
	repo := &fakeRepository{record: rec, completedCount: 3}
	uc := newUseCase(repo, now)

	result, err := uc.Execute(context.Background(), rec.ID)

	require.NoError(t, err)
	require.NotNil(t, result)

	// Нехватка данных не срывает анализ: субрезультаты без выборки отсутствуют
	assert.Nil(t, result.MarketPosition)
	assert.Nil(t, result.AgentIntelligence)
	require.NotNil(t, result.MarketMomentum)
	require.NotNil(t, result.ScarcityAnalysis)
	require.NotNil(t, result.InvestmentPotential)

	assert.GreaterOrEqual(t, result.InvestmentScore, 0)
	assert.LessOrEqual(t, result.InvestmentScore, 100)
	assert.Contains(t, result.MarketInsights,
		"Limited market data available (3 properties in database). Analysis based on property fundamentals and market estimates.")
	assert.Contains(t, result.RiskFactors,
		"Limited market data available - analysis based on estimates and fundamentals")
}

func TestAnalyzeProperty_NotCompletedRejected(t *testing.T) {
	rec := &domain.PropertyRecord{
		ID:       uuid.New(),
		Location: "Tirana",
		Status:   domain.StatusAnalyzing,
	}
	uc := newUseCase(&fakeRepository{record: rec}, time.Now())

	result, err := uc.Execute(context.Background(), rec.ID)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPropertyNotCompleted)
	assert.Nil(t, result)
}

func TestAnalyzeProperty_NotFoundPropagates(t *testing.T) {
	uc := newUseCase(&fakeRepository{getErr: domain.ErrPropertyNotFound}, time.Now())

	result, err := uc.Execute(context.Background(), uuid.New())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPropertyNotFound)
	assert.Nil(t, result)
}

func TestAnalyzeProperty_EngineFailureFailsAnalysis(t *testing.T) {
	rec := &domain.PropertyRecord{
		ID:           uuid.New(),
		Location:     "Tirana",
		PropertyType: domain.TypeApartment,
		AskingPrice:  150000,
		TotalArea:    ptrFloat(100),
		Status:       domain.StatusCompleted,
	}
	repoErr := errors.New("connection refused")
	uc := newUseCase(&fakeRepository{record: rec, findErr: repoErr}, time.Now())

	result, err := uc.Execute(context.Background(), rec.ID)

	require.Error(t, err)
	assert.ErrorIs(t, err, repoErr)
	assert.Nil(t, result)
}

func TestCompositeScore_AbsentFactorsKeepBase(t *testing.T) {
	assert.Equal(t, 50, compositeScore(nil, nil, nil, nil, nil))
}

func TestCompositeScore_ClampedToBounds(t *testing.T) {
	best := compositeScore(
		&domain.MarketPosition{MarketPercentile: 10},
		&domain.AgentInsights{NegotiationPotential: domain.NegotiationHigh},
		&domain.MarketMomentum{MarketTemperature: domain.TemperatureHot, PriceMomentum30d: 8},
		&domain.ScarcityAnalysis{ScarcityScore: 90},
		&domain.InvestmentPotential{GrossAnnualYield: 8},
	)
	assert.Equal(t, 100, best)

	worst := compositeScore(
		&domain.MarketPosition{MarketPercentile: 95},
		&domain.AgentInsights{NegotiationPotential: domain.NegotiationLow},
		&domain.MarketMomentum{MarketTemperature: domain.TemperatureCool, PriceMomentum30d: -8},
		&domain.ScarcityAnalysis{ScarcityScore: 10},
		&domain.InvestmentPotential{GrossAnnualYield: 2},
	)
	assert.Equal(t, 8, worst)
}

func TestDataSources_RestoresRaw90DayCount(t *testing.T) {
	// 31 объявление за 90 дней дает Velocity90d = 31/3; сумма точек
	// должна вернуть ровно 31, а не усеченные 30
	momentum := &domain.MarketMomentum{
		Velocity30d:    12,
		Velocity90d:    31.0 / 3,
		SupplyPressure: 7,
	}

	ds := dataSources(nil, nil, momentum)

	assert.Equal(t, 12+31+7, ds.MarketDataPoints)
	assert.Zero(t, ds.ComparableProperties)
	assert.Zero(t, ds.AgentProperties)
}

func TestRecommendation_TimingAdjustments(t *testing.T) {
	actFast := &domain.MarketMomentum{TimingRecommendation: domain.TimingActFast}
	waitBetter := &domain.MarketMomentum{TimingRecommendation: domain.TimingWaitBetter}

	// act_fast поднимает buy до strong_buy, wait_better опускает до hold
	assert.Equal(t, domain.RecommendStrongBuy, recommendation(70, nil, actFast))
	assert.Equal(t, domain.RecommendHold, recommendation(70, nil, waitBetter))
	assert.Equal(t, domain.RecommendHold, recommendation(85, nil, waitBetter))

	// Тайминг не трогает hold и avoid
	assert.Equal(t, domain.RecommendHold, recommendation(50, nil, actFast))
	assert.Equal(t, domain.RecommendAvoid, recommendation(30, nil, actFast))
}

func TestRecommendation_PositionAdjustments(t *testing.T) {
	bottom := &domain.MarketPosition{PositionCategory: domain.PositionBottomQuartile}
	top := &domain.MarketPosition{PositionCategory: domain.PositionTopQuartile}

	assert.Equal(t, domain.RecommendStrongBuy, recommendation(70, bottom, nil))
	assert.Equal(t, domain.RecommendHold, recommendation(70, top, nil))
	assert.Equal(t, domain.RecommendStrongBuy, recommendation(85, top, nil))
}

func TestRecommendation_ScoreBands(t *testing.T) {
	assert.Equal(t, domain.RecommendStrongBuy, recommendation(80, nil, nil))
	assert.Equal(t, domain.RecommendBuy, recommendation(65, nil, nil))
	assert.Equal(t, domain.RecommendHold, recommendation(45, nil, nil))
	assert.Equal(t, domain.RecommendAvoid, recommendation(44, nil, nil))
}
