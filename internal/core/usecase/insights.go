package usecase

import (
	"fmt"
	"math"
	"strings"

	"analysis-service/internal/core/domain"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Минимальный размер базы, ниже которого анализ считается малоданным
const minMarketDataSize = 10

var titleCaser = cases.Title(language.English)

// marketInsights собирает наблюдения по каждому субрезультату.
// Гарантируется минимум 3 позиции, максимум 5.
func marketInsights(
	rec *domain.PropertyRecord,
	completedCount int,
	position *domain.MarketPosition,
	agent *domain.AgentInsights,
	momentum *domain.MarketMomentum,
	scarcity *domain.ScarcityAnalysis,
	investment *domain.InvestmentPotential,
) []string {
	insights := make([]string, 0, 8)

	if completedCount < minMarketDataSize {
		insights = append(insights, fmt.Sprintf(
			"Limited market data available (%d properties in database). Analysis based on property fundamentals and market estimates.",
			completedCount))
	}

	if position != nil {
		switch {
		case position.MarketPercentile <= 25:
			insights = append(insights, "Property priced in bottom 25% of market - strong value proposition")
		case position.MarketPercentile <= 40:
			insights = append(insights, "Property priced below market median - good value opportunity")
		case position.MarketPercentile >= 75:
			insights = append(insights, "Property priced in top 25% of market - premium positioning")
		}
	} else {
		insights = append(insights, "No comparable properties found in database. Analysis based on property fundamentals.")
	}

	if investment != nil {
		switch {
		case investment.GrossAnnualYield >= 7.0:
			insights = append(insights, fmt.Sprintf("Strong rental yield potential at %.1f%% gross yield", investment.GrossAnnualYield))
		case investment.GrossAnnualYield >= 6.0:
			insights = append(insights, fmt.Sprintf("Competitive rental yield at %.1f%% gross yield", investment.GrossAnnualYield))
		case investment.GrossAnnualYield < 4.0:
			insights = append(insights, fmt.Sprintf("Below-average rental yield at %.1f%% - consider appreciation potential", investment.GrossAnnualYield))
		}
		if investment.NetAnnualYield > 5.0 {
			insights = append(insights, fmt.Sprintf("Positive cash flow potential with %.1f%% net yield after costs", investment.NetAnnualYield))
		}
	}

	if momentum != nil {
		switch momentum.MarketTemperature {
		case domain.TemperatureHot:
			insights = append(insights, "Market showing high activity - act quickly to secure property")
		case domain.TemperatureWarm:
			insights = append(insights, "Market showing positive momentum - good timing for investment")
		case domain.TemperatureCool:
			insights = append(insights, "Market showing reduced activity - potential for negotiation")
		}
		if momentum.PriceMomentum30d > 5 {
			insights = append(insights, fmt.Sprintf("Strong price momentum (%.1f%% in 30 days) - market heating up", momentum.PriceMomentum30d))
		} else if momentum.PriceMomentum30d < -5 {
			insights = append(insights, fmt.Sprintf("Declining prices (%.1f%% in 30 days) - buyer's market", math.Abs(momentum.PriceMomentum30d)))
		}
	}

	if scarcity != nil {
		switch {
		case scarcity.ScarcityScore >= 80:
			insights = append(insights, "Extremely rare property type - limited supply creates premium opportunity")
		case scarcity.ScarcityScore >= 60:
			insights = append(insights, "Property shows unique characteristics - competitive advantage")
		}
		if scarcity.SimilarActiveCount <= 2 {
			insights = append(insights, fmt.Sprintf("Only %d similar properties available - low supply", scarcity.SimilarActiveCount))
		} else if scarcity.SimilarActiveCount >= 10 {
			insights = append(insights, fmt.Sprintf("%d similar properties available - competitive market", scarcity.SimilarActiveCount))
		}
	}

	if agent != nil && agent.PortfolioSize > 0 {
		if agent.PortfolioSize >= 10 {
			insights = append(insights, fmt.Sprintf("Experienced agent with %d properties - professional representation", agent.PortfolioSize))
		}
		if agent.AvgPriceVsMarket > 5 {
			insights = append(insights, fmt.Sprintf("Agent typically prices %.1f%% above market - negotiation potential", agent.AvgPriceVsMarket))
		} else if agent.AvgPriceVsMarket < -5 {
			insights = append(insights, fmt.Sprintf("Agent typically prices %.1f%% below market - aggressive pricing", math.Abs(agent.AvgPriceVsMarket)))
		}
	}

	if rec.PropertyType != "" && rec.PropertyType != domain.TypeUnknown {
		insights = append(insights, fmt.Sprintf("%s properties typically offer %s",
			titleCaser.String(string(rec.PropertyType)), propertyTypeInsight(rec.PropertyType)))
	}
	if rec.Bedrooms != nil && *rec.Bedrooms >= 3 {
		insights = append(insights, "3+ bedroom properties have strong rental demand and resale potential")
	}

	location := domain.NormalizeLocality(rec.Location)
	switch {
	case strings.Contains(location, "tirana"):
		insights = append(insights, "Tirana market offers strong rental demand and capital appreciation potential")
	case strings.Contains(location, "vlore"):
		insights = append(insights, "Vlorë coastal location provides seasonal rental opportunities")
	case strings.Contains(location, "durres"):
		insights = append(insights, "Durrës offers good value with proximity to Tirana and coastal access")
	}

	if len(insights) < 3 {
		insights = append(insights,
			"Property fundamentals suggest solid investment potential",
			"Consider professional property inspection before purchase",
			"Verify all legal documentation and property status")
	}

	return capStrings(insights, 5)
}

func propertyTypeInsight(propertyType domain.PropertyType) string {
	switch propertyType {
	case domain.TypeApartment:
		return "stable rental income and moderate appreciation"
	case domain.TypeVilla:
		return "premium rental rates and strong appreciation potential"
	case domain.TypeCommercial:
		return "long-term lease stability and business growth potential"
	case domain.TypeOffice:
		return "corporate tenant stability and location-dependent value"
	case domain.TypeStudio:
		return "high rental demand from young professionals and students"
	default:
		return "good investment fundamentals"
	}
}

// riskFactors перечисляет факторы риска. Минимум 2, максимум 4.
func riskFactors(
	rec *domain.PropertyRecord,
	completedCount int,
	position *domain.MarketPosition,
	agent *domain.AgentInsights,
	momentum *domain.MarketMomentum,
	investment *domain.InvestmentPotential,
) []string {
	risks := make([]string, 0, 6)

	if completedCount < minMarketDataSize {
		risks = append(risks, "Limited market data available - analysis based on estimates and fundamentals")
	}

	if position != nil {
		if position.MarketPercentile >= 80 {
			risks = append(risks, "Property priced in top 20% of market - potential overvaluation")
		} else if position.MarketPercentile <= 20 {
			risks = append(risks, "Property priced in bottom 20% - investigate for structural or legal issues")
		}
	} else {
		risks = append(risks, "No comparable properties found - difficult to assess fair market value")
	}

	if investment != nil {
		if investment.GrossAnnualYield < 4.0 {
			risks = append(risks, fmt.Sprintf("Low rental yield (%.1f%%) may not cover mortgage payments", investment.GrossAnnualYield))
		}
		if investment.NetAnnualYield < 3.0 {
			risks = append(risks, fmt.Sprintf("Low net yield (%.1f%%) after costs - limited cash flow", investment.NetAnnualYield))
		}
		if investment.BreakEvenYears != nil && *investment.BreakEvenYears > 15 {
			risks = append(risks, fmt.Sprintf("Long break-even period (%.1f years) indicates high investment risk", *investment.BreakEvenYears))
		}
	}

	if momentum != nil {
		if momentum.MarketTemperature == domain.TemperatureHot && momentum.PriceMomentum30d > 10 {
			risks = append(risks, "Rapidly heating market - risk of buying at peak prices")
		} else if momentum.MarketTemperature == domain.TemperatureCool && momentum.PriceMomentum30d < -5 {
			risks = append(risks, "Declining market conditions - potential for further value decreases")
		}
	}

	switch rec.PropertyType {
	case domain.TypeCommercial:
		risks = append(risks, "Commercial properties have longer vacancy periods and higher tenant turnover")
	case domain.TypeVilla:
		risks = append(risks, "Villas have higher maintenance costs and seasonal rental patterns")
	}

	location := domain.NormalizeLocality(rec.Location)
	if strings.Contains(location, "tirana") {
		risks = append(risks, "Tirana market may be affected by economic policy changes and urban development")
	} else if strings.Contains(location, "vlore") {
		risks = append(risks, "Coastal properties have seasonal demand and weather-related risks")
	}

	if agent != nil && agent.PortfolioSize == 0 {
		risks = append(risks, "Limited agent history - difficult to assess pricing patterns")
	}

	if len(risks) < 2 {
		risks = append(risks,
			"Standard property investment risks apply",
			"Market conditions may change affecting property value")
	}

	return capStrings(risks, 4)
}

// actionItems формирует список рекомендованных действий. Максимум 5,
// стандартные пункты всегда добиваются в конец.
func actionItems(
	position *domain.MarketPosition,
	agent *domain.AgentInsights,
	momentum *domain.MarketMomentum,
	investment *domain.InvestmentPotential,
) []string {
	actions := make([]string, 0, 8)

	if position != nil {
		if position.MarketPercentile <= 25 {
			actions = append(actions, "Act quickly - property priced significantly below market")
		} else if position.MarketPercentile >= 75 {
			actions = append(actions, "Negotiate aggressively - property priced above market average")
		}
	}

	if agent != nil {
		switch agent.NegotiationPotential {
		case domain.NegotiationHigh:
			actions = append(actions, "High negotiation potential - consider offering below asking price")
		case domain.NegotiationLow:
			actions = append(actions, "Limited negotiation room - be prepared to pay close to asking price")
		}
	}

	if momentum != nil {
		switch momentum.TimingRecommendation {
		case domain.TimingActFast:
			actions = append(actions, "Market timing optimal - act quickly to secure property")
		case domain.TimingWaitBetter:
			actions = append(actions, "Consider waiting for better market conditions")
		}
	}

	if investment != nil {
		if investment.GrossAnnualYield >= 6.0 {
			actions = append(actions, "Strong rental yield potential - secure financing pre-approval")
		} else if investment.GrossAnnualYield < 4.0 {
			actions = append(actions, "Low yield potential - consider alternative investment strategies")
		}
	}

	actions = append(actions,
		"Schedule property viewing to assess condition",
		"Verify all property documentation and legal status",
		"Research local market trends and future development plans")

	return capStrings(actions, 5)
}

func capStrings(items []string, limit int) []string {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
