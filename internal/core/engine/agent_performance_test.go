package engine

import (
	"context"
	"errors"
	"testing"

	"analysis-service/internal/core/domain"
	"analysis-service/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentPerformanceAnalyzer_ZeroVarianceGivesFullConsistency(t *testing.T) {
	rec := testRecord()
	rec.AgentName = ptrString("Alba Invest")
	repo := &fakeRepository{
		agentStats: &port.AgentStats{
			MeanPricePerArea: 1500,
			Variance:         0,
			MeanDaysOnMarket: 20,
			ListingCount:     8,
		},
		avgPriceByWindow: map[string]*float64{"all": ptrFloat(1500)},
	}
	analyzer := NewAgentPerformanceAnalyzer(repo, newFakeCache(), DefaultParams())

	result, err := analyzer.Analyze(context.Background(), rec)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 8, result.PortfolioSize)
	assert.InDelta(t, 0.0, result.AvgPriceVsMarket, 0.001)
	assert.Equal(t, 100.0, result.ConsistencyScore)
	assert.Equal(t, domain.PricingMarketRate, result.PricingStyle)
	assert.Equal(t, domain.NegotiationLow, result.NegotiationPotential)
	assert.Equal(t, 1500.0, result.MarketComparison.AgentAvg)
	assert.Equal(t, 1500.0, result.MarketComparison.MarketAvg)
}

func TestAgentPerformanceAnalyzer_OverpricedSlowAgentSignalsNegotiation(t *testing.T) {
	rec := testRecord()
	rec.AgentName = ptrString("Premium Homes")
	repo := &fakeRepository{
		agentStats: &port.AgentStats{
			MeanPricePerArea: 1800, // +20% к рынку
			Variance:         500000,
			MeanDaysOnMarket: 75,
			ListingCount:     12,
		},
		avgPriceByWindow: map[string]*float64{"all": ptrFloat(1500)},
	}
	analyzer := NewAgentPerformanceAnalyzer(repo, newFakeCache(), DefaultParams())

	result, err := analyzer.Analyze(context.Background(), rec)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.InDelta(t, 20.0, result.AvgPriceVsMarket, 0.001)
	assert.Equal(t, domain.PricingAggressive, result.PricingStyle)
	// Завышение (+40) и экспозиция >60 дней (+30)
	assert.Equal(t, domain.NegotiationHigh, result.NegotiationPotential)
	assert.Less(t, result.ConsistencyScore, 100.0)
}

func TestAgentPerformanceAnalyzer_UnknownAgentReturnsNil(t *testing.T) {
	rec := testRecord()
	rec.AgentName = nil
	analyzer := NewAgentPerformanceAnalyzer(&fakeRepository{}, newFakeCache(), DefaultParams())

	result, err := analyzer.Analyze(context.Background(), rec)

	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestAgentPerformanceAnalyzer_SmallPortfolioReturnsNil(t *testing.T) {
	rec := testRecord()
	rec.AgentName = ptrString("Solo Agent")
	repo := &fakeRepository{
		agentStats: &port.AgentStats{MeanPricePerArea: 1400, ListingCount: 2},
	}
	analyzer := NewAgentPerformanceAnalyzer(repo, newFakeCache(), DefaultParams())

	result, err := analyzer.Analyze(context.Background(), rec)

	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestAgentPerformanceAnalyzer_NoMarketAverageReturnsNil(t *testing.T) {
	rec := testRecord()
	rec.AgentName = ptrString("Alba Invest")
	repo := &fakeRepository{
		agentStats: &port.AgentStats{MeanPricePerArea: 1400, ListingCount: 5},
	}
	analyzer := NewAgentPerformanceAnalyzer(repo, newFakeCache(), DefaultParams())

	result, err := analyzer.Analyze(context.Background(), rec)

	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestAgentPerformanceAnalyzer_StatsErrorPropagates(t *testing.T) {
	rec := testRecord()
	rec.AgentName = ptrString("Alba Invest")
	repoErr := errors.New("query timeout")
	analyzer := NewAgentPerformanceAnalyzer(&fakeRepository{agentStatsErr: repoErr}, newFakeCache(), DefaultParams())

	_, err := analyzer.Analyze(context.Background(), rec)

	require.Error(t, err)
	assert.ErrorIs(t, err, repoErr)
}

func TestPricingStyleBoundaries(t *testing.T) {
	assert.Equal(t, domain.PricingAggressive, pricingStyle(20))
	assert.Equal(t, domain.PricingPremium, pricingStyle(10))
	assert.Equal(t, domain.PricingMarketRate, pricingStyle(0))
	assert.Equal(t, domain.PricingCompetitive, pricingStyle(-10))
	assert.Equal(t, domain.PricingDiscount, pricingStyle(-20))
}
