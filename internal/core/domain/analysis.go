package domain

import "time"

// Категории позиционирования относительно рынка
type PositionCategory string

const (
	PositionBottomQuartile PositionCategory = "bottom_quartile"
	PositionBelowMedian    PositionCategory = "below_median"
	PositionAboveMedian    PositionCategory = "above_median"
	PositionTopQuartile    PositionCategory = "top_quartile"
)

// Стиль ценообразования агента
type PricingStyle string

const (
	PricingAggressive  PricingStyle = "aggressive"
	PricingPremium     PricingStyle = "premium"
	PricingMarketRate  PricingStyle = "market_rate"
	PricingCompetitive PricingStyle = "competitive"
	PricingDiscount    PricingStyle = "discount"
)

// Потенциал торга с агентом
type NegotiationPotential string

const (
	NegotiationHigh   NegotiationPotential = "high"
	NegotiationMedium NegotiationPotential = "medium"
	NegotiationLow    NegotiationPotential = "low"
)

// "Температура" рынка
type MarketTemperature string

const (
	TemperatureHot      MarketTemperature = "hot"
	TemperatureWarm     MarketTemperature = "warm"
	TemperatureModerate MarketTemperature = "moderate"
	TemperatureCool     MarketTemperature = "cool"
)

// Рекомендация по таймингу покупки
type TimingRecommendation string

const (
	TimingActFast    TimingRecommendation = "act_fast"
	TimingGood       TimingRecommendation = "good_timing"
	TimingWaitBetter TimingRecommendation = "wait_better"
	TimingNeutral    TimingRecommendation = "neutral"
)

// Фаза рынка
type MarketPhase string

const (
	PhaseExpansion   MarketPhase = "expansion"
	PhaseGrowth      MarketPhase = "growth"
	PhaseContraction MarketPhase = "contraction"
	PhaseDecline     MarketPhase = "decline"
	PhaseStable      MarketPhase = "stable"
)

// Категория редкости объекта
type ScarcityCategory string

const (
	ScarcityExtremelyRare ScarcityCategory = "extremely_rare"
	ScarcityRare          ScarcityCategory = "rare"
	ScarcityUncommon      ScarcityCategory = "uncommon"
	ScarcityCommon        ScarcityCategory = "common"
)

// Оценка разрыва спроса и предложения
type MarketGap string

const (
	GapHighDemandLowSupply MarketGap = "high_demand_low_supply"
	GapNormal              MarketGap = "normal"
)

// Категория инвестиционной привлекательности
type InvestmentCategory string

const (
	InvestmentExcellent InvestmentCategory = "excellent"
	InvestmentGood      InvestmentCategory = "good"
	InvestmentModerate  InvestmentCategory = "moderate"
	InvestmentPoor      InvestmentCategory = "poor"
)

// Итоговая рекомендация
type Recommendation string

const (
	RecommendStrongBuy Recommendation = "strong_buy"
	RecommendBuy       Recommendation = "buy"
	RecommendHold      Recommendation = "hold"
	RecommendAvoid     Recommendation = "avoid"
)

// PriceRange - диапазон цен за м² по сопоставимым объектам
type PriceRange struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Current float64 `json:"current"`
}

// MarketPosition - результат движка рыночного позиционирования.
// Всегда либо заполнен целиком, либо отсутствует (nil) при нехватке данных.
type MarketPosition struct {
	MarketPercentile      float64          `json:"market_percentile"`
	PositionCategory      PositionCategory `json:"position_category"`
	AdvantageDescription  string           `json:"advantage_description"`
	PotentialSavings      float64          `json:"potential_savings"`
	SampleSize            int              `json:"sample_size"`
	PriceAdvantagePercent float64          `json:"price_advantage_percent"`
	MedianMarketPrice     float64          `json:"median_market_price"`
	PriceRange            PriceRange       `json:"price_range"`
}

// AgentMarketComparison - сравнение средних цен агента и рынка
type AgentMarketComparison struct {
	AgentAvg          float64 `json:"agent_avg"`
	MarketAvg         float64 `json:"market_avg"`
	DifferencePercent float64 `json:"difference_percent"`
}

// AgentInsights - профиль ценового поведения агента
type AgentInsights struct {
	PortfolioSize        int                   `json:"agent_portfolio_size"`
	AvgPriceVsMarket     float64               `json:"agent_avg_price_vs_market"`
	ConsistencyScore     float64               `json:"agent_consistency_score"`
	AvgDaysOnMarket      float64               `json:"agent_velocity"`
	NegotiationPotential NegotiationPotential  `json:"negotiation_potential"`
	PricingStyle         PricingStyle          `json:"agent_pricing_style"`
	MarketComparison     AgentMarketComparison `json:"market_comparison"`
}

// MarketMomentum - динамика рынка локации
type MarketMomentum struct {
	ListingVelocityTrend float64              `json:"listing_velocity_trend"`
	Velocity30d          int                  `json:"velocity_30d"`
	Velocity90d          float64              `json:"velocity_90d"`
	PriceMomentum30d     float64              `json:"price_momentum_30d"`
	SupplyPressure       int                  `json:"supply_pressure"`
	MarketTemperature    MarketTemperature    `json:"market_temperature"`
	TimingRecommendation TimingRecommendation `json:"timing_recommendation"`
	MarketPhase          MarketPhase          `json:"market_phase"`
}

// ScarcityAnalysis - оценка редкости профиля объекта
type ScarcityAnalysis struct {
	ScarcityScore        float64          `json:"scarcity_score"`
	SimilarActiveCount   int              `json:"similar_active_count"`
	HistoricalDemand     int              `json:"historical_demand"`
	SpecialFeaturesScore int              `json:"special_features_score"`
	UniquenessFactors    []string         `json:"uniqueness_factors"`
	MarketGapAnalysis    MarketGap        `json:"market_gap_analysis"`
	ScarcityCategory     ScarcityCategory `json:"scarcity_category"`
	DemandSupplyRatio    float64          `json:"demand_supply_ratio"`
}

// YieldMarketComparison - сравнение доходности со средней по локации
type YieldMarketComparison struct {
	MarketAverage   float64 `json:"market_average"`
	YieldDifference float64 `json:"yield_difference"`
	VsMarketPercent float64 `json:"vs_market_percent"`
	Performance     string  `json:"performance"` // above_market | below_market
}

// InvestmentPotential - оценка доходности объекта как инвестиции
type InvestmentPotential struct {
	GrossAnnualYield         float64               `json:"gross_annual_yield"`
	NetAnnualYield           float64               `json:"net_annual_yield"`
	EstimatedMonthlyRent     float64               `json:"estimated_monthly_rent"`
	TotalInvestmentRequired  float64               `json:"total_investment_required"`
	LocationAppreciationRate float64               `json:"location_appreciation_rate"`
	Projected5yTotalReturn   float64               `json:"projected_5y_total_return"`
	BreakEvenMonths          *float64              `json:"break_even_months"`
	BreakEvenYears           *float64              `json:"break_even_years"`
	MarketComparison         YieldMarketComparison `json:"market_comparison"`
	InvestmentCategory       InvestmentCategory    `json:"investment_category"`
	RiskAdjustedReturn       float64               `json:"risk_adjusted_return"`
}

// DataSources - блок происхождения данных: сколько точек реального рынка
// легло в основу итоговой оценки
type DataSources struct {
	ComparableProperties int    `json:"comparable_properties"`
	AgentProperties      int    `json:"agent_properties"`
	MarketDataPoints     int    `json:"market_data_points"`
	AnalysisMethod       string `json:"analysis_method"`
}

// CompositeResult - итог комплексного анализа объекта.
// Отсутствующие субрезультаты остаются nil и не участвуют во взвешивании.
type CompositeResult struct {
	InvestmentScore     int                  `json:"investment_score"`
	Recommendation      Recommendation       `json:"recommendation"`
	MarketPosition      *MarketPosition      `json:"market_position_analysis"`
	AgentIntelligence   *AgentInsights       `json:"agent_intelligence"`
	MarketMomentum      *MarketMomentum      `json:"market_momentum"`
	ScarcityAnalysis    *ScarcityAnalysis    `json:"scarcity_analysis"`
	InvestmentPotential *InvestmentPotential `json:"investment_potential"`
	MarketInsights      []string             `json:"market_insights"`
	RiskFactors         []string             `json:"risk_factors"`
	ActionItems         []string             `json:"action_items"`
	AnalysisTimestamp   time.Time            `json:"analysis_timestamp"`
	DataSources         DataSources          `json:"data_sources"`
}
