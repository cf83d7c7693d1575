package usecase

import (
	"testing"

	"analysis-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func bareRecord(location string, propertyType domain.PropertyType) *domain.PropertyRecord {
	return &domain.PropertyRecord{
		ID:           uuid.New(),
		Location:     location,
		PropertyType: propertyType,
		Status:       domain.StatusCompleted,
	}
}

func TestMarketInsights_NoDataFallsBackToFundamentals(t *testing.T) {
	rec := bareRecord("Shkodra", domain.TypeUnknown)

	insights := marketInsights(rec, 2, nil, nil, nil, nil, nil)

	assert.Contains(t, insights,
		"Limited market data available (2 properties in database). Analysis based on property fundamentals and market estimates.")
	assert.Contains(t, insights,
		"No comparable properties found in database. Analysis based on property fundamentals.")
	assert.GreaterOrEqual(t, len(insights), 3)
	assert.LessOrEqual(t, len(insights), 5)
}

func TestMarketInsights_StrongValueAndYield(t *testing.T) {
	rec := bareRecord("Tirana, Blloku", domain.TypeApartment)
	position := &domain.MarketPosition{MarketPercentile: 15}
	investment := &domain.InvestmentPotential{GrossAnnualYield: 7.5, NetAnnualYield: 5.6}

	insights := marketInsights(rec, 50, position, nil, nil, nil, investment)

	assert.Contains(t, insights, "Property priced in bottom 25% of market - strong value proposition")
	assert.Contains(t, insights, "Strong rental yield potential at 7.5% gross yield")
	assert.Contains(t, insights, "Positive cash flow potential with 5.6% net yield after costs")
	assert.LessOrEqual(t, len(insights), 5)
}

func TestMarketInsights_LocalityNormalization(t *testing.T) {
	rec := bareRecord("Vlorë, Lungomare", domain.TypeUnknown)

	insights := marketInsights(rec, 50, nil, nil, nil, nil, nil)

	assert.Contains(t, insights, "Vlorë coastal location provides seasonal rental opportunities")
}

func TestMarketInsights_PropertyTypeDescription(t *testing.T) {
	rec := bareRecord("Durres", domain.TypeVilla)

	insights := marketInsights(rec, 50, nil, nil, nil, nil, nil)

	assert.Contains(t, insights, "Villa properties typically offer premium rental rates and strong appreciation potential")
	assert.Contains(t, insights, "Durrës offers good value with proximity to Tirana and coastal access")
}

func TestMarketInsights_CappedAtFive(t *testing.T) {
	rec := bareRecord("Tirana", domain.TypeApartment)
	position := &domain.MarketPosition{MarketPercentile: 10}
	investment := &domain.InvestmentPotential{GrossAnnualYield: 8, NetAnnualYield: 6}
	momentum := &domain.MarketMomentum{MarketTemperature: domain.TemperatureHot, PriceMomentum30d: 12}
	scarcity := &domain.ScarcityAnalysis{ScarcityScore: 90, SimilarActiveCount: 1}
	agent := &domain.AgentInsights{PortfolioSize: 15, AvgPriceVsMarket: 12}

	insights := marketInsights(rec, 50, position, agent, momentum, scarcity, investment)

	assert.Len(t, insights, 5)
}

func TestRiskFactors_LowYieldAndLongBreakEven(t *testing.T) {
	rec := bareRecord("Tirana", domain.TypeApartment)
	breakEven := 18.2
	investment := &domain.InvestmentPotential{
		GrossAnnualYield: 3.2,
		NetAnnualYield:   2.4,
		BreakEvenYears:   &breakEven,
	}

	risks := riskFactors(rec, 50, &domain.MarketPosition{MarketPercentile: 50}, nil, nil, investment)

	assert.Contains(t, risks, "Low rental yield (3.2%) may not cover mortgage payments")
	assert.Contains(t, risks, "Low net yield (2.4%) after costs - limited cash flow")
	assert.LessOrEqual(t, len(risks), 4)
}

func TestRiskFactors_PropertyTypeAndLocation(t *testing.T) {
	rec := bareRecord("Vlore", domain.TypeVilla)

	risks := riskFactors(rec, 50, &domain.MarketPosition{MarketPercentile: 50}, nil, nil, nil)

	assert.Contains(t, risks, "Villas have higher maintenance costs and seasonal rental patterns")
	assert.Contains(t, risks, "Coastal properties have seasonal demand and weather-related risks")
}

func TestRiskFactors_AlwaysAtLeastTwo(t *testing.T) {
	rec := bareRecord("Shkodra", domain.TypeUnknown)

	risks := riskFactors(rec, 50, &domain.MarketPosition{MarketPercentile: 50}, nil, nil, nil)

	assert.GreaterOrEqual(t, len(risks), 2)
	assert.Contains(t, risks, "Standard property investment risks apply")
}

func TestRiskFactors_OverheatedMarket(t *testing.T) {
	rec := bareRecord("Shkodra", domain.TypeApartment)
	momentum := &domain.MarketMomentum{MarketTemperature: domain.TemperatureHot, PriceMomentum30d: 12}

	risks := riskFactors(rec, 50, &domain.MarketPosition{MarketPercentile: 50}, nil, momentum, nil)

	assert.Contains(t, risks, "Rapidly heating market - risk of buying at peak prices")
}

func TestActionItems_StandardItemsAlwaysPresent(t *testing.T) {
	actions := actionItems(nil, nil, nil, nil)

	assert.Equal(t, []string{
		"Schedule property viewing to assess condition",
		"Verify all property documentation and legal status",
		"Research local market trends and future development plans",
	}, actions)
}

func TestActionItems_SignalsComeFirstAndCapAtFive(t *testing.T) {
	position := &domain.MarketPosition{MarketPercentile: 10}
	agent := &domain.AgentInsights{NegotiationPotential: domain.NegotiationHigh}
	momentum := &domain.MarketMomentum{TimingRecommendation: domain.TimingActFast}
	investment := &domain.InvestmentPotential{GrossAnnualYield: 7}

	actions := actionItems(position, agent, momentum, investment)

	assert.Len(t, actions, 5)
	assert.Equal(t, "Act quickly - property priced significantly below market", actions[0])
	assert.Equal(t, "High negotiation potential - consider offering below asking price", actions[1])
	assert.Contains(t, actions, "Market timing optimal - act quickly to secure property")
	assert.Contains(t, actions, "Strong rental yield potential - secure financing pre-approval")
}

func TestCapStrings(t *testing.T) {
	items := []string{"a", "b", "c"}
	assert.Equal(t, items, capStrings(items, 5))
	assert.Equal(t, []string{"a", "b"}, capStrings(items, 2))
}
