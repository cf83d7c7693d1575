package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"analysis-service/internal/contextkeys"
	"analysis-service/internal/core/domain"
	"analysis-service/internal/core/engine"
	"analysis-service/internal/core/port"

	"github.com/google/uuid"
)

// AnalyzePropertyUseCase - композитный анализ объекта: пять независимых
// движков запускаются параллельно, их результаты сводятся в единую оценку.
// Отсутствующий субрезультат (nil) не ломает анализ, ошибка любого движка - ломает.
type AnalyzePropertyUseCase struct {
	repo     port.PropertyRepositoryPort
	position *engine.MarketPositionEngine
	agent    *engine.AgentPerformanceAnalyzer
	velocity *engine.NeighborhoodVelocityTracker
	scarcity *engine.PropertyScarcityAnalyzer
	roi      *engine.ROICalculator
}

func NewAnalyzePropertyUseCase(
	repo port.PropertyRepositoryPort,
	position *engine.MarketPositionEngine,
	agent *engine.AgentPerformanceAnalyzer,
	velocity *engine.NeighborhoodVelocityTracker,
	scarcity *engine.PropertyScarcityAnalyzer,
	roi *engine.ROICalculator,
) *AnalyzePropertyUseCase {
	return &AnalyzePropertyUseCase{
		repo:     repo,
		position: position,
		agent:    agent,
		velocity: velocity,
		scarcity: scarcity,
		roi:      roi,
	}
}

func (uc *AnalyzePropertyUseCase) Execute(ctx context.Context, propertyID uuid.UUID) (*domain.CompositeResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "AnalyzeProperty",
		"property_id": propertyID.String(),
	})

	ucLogger.Info("Use case started", nil)

	rec, err := uc.repo.GetByID(ctx, propertyID)
	if err != nil {
		ucLogger.Error("Failed to load property record", err, nil)
		return nil, err
	}
	if rec.Status != domain.StatusCompleted {
		ucLogger.Warn("Property record is not completed, analysis rejected", port.Fields{
			"status": string(rec.Status),
		})
		return nil, domain.ErrPropertyNotCompleted
	}

	// Движки не зависят друг от друга, поэтому запускаем их параллельно.
	// Общего изменяемого состояния у них нет, кроме кэша.
	var (
		wg sync.WaitGroup

		marketPosition *domain.MarketPosition
		agentInsights  *domain.AgentInsights
		momentum       *domain.MarketMomentum
		scarcity       *domain.ScarcityAnalysis
		investment     *domain.InvestmentPotential

		engineErrs [5]error
	)

	wg.Add(5)
	go func() {
		defer wg.Done()
		marketPosition, engineErrs[0] = uc.position.Analyze(ctx, rec)
	}()
	go func() {
		defer wg.Done()
		agentInsights, engineErrs[1] = uc.agent.Analyze(ctx, rec)
	}()
	go func() {
		defer wg.Done()
		momentum, engineErrs[2] = uc.velocity.Analyze(ctx, rec)
	}()
	go func() {
		defer wg.Done()
		scarcity, engineErrs[3] = uc.scarcity.Analyze(ctx, rec)
	}()
	go func() {
		defer wg.Done()
		investment, engineErrs[4] = uc.roi.Analyze(ctx, rec)
	}()
	wg.Wait()

	for _, engineErr := range engineErrs {
		if engineErr != nil {
			ucLogger.Error("Analysis engine failed", engineErr, nil)
			return nil, fmt.Errorf("analyze property %s: %w", propertyID, engineErr)
		}
	}

	completedCount, err := uc.repo.CountCompleted(ctx)
	if err != nil {
		ucLogger.Error("Failed to count completed records", err, nil)
		return nil, fmt.Errorf("analyze property %s: %w", propertyID, err)
	}

	score := compositeScore(marketPosition, agentInsights, momentum, scarcity, investment)

	result := &domain.CompositeResult{
		InvestmentScore:     score,
		Recommendation:      recommendation(score, marketPosition, momentum),
		MarketPosition:      marketPosition,
		AgentIntelligence:   agentInsights,
		MarketMomentum:      momentum,
		ScarcityAnalysis:    scarcity,
		InvestmentPotential: investment,
		MarketInsights:      marketInsights(rec, completedCount, marketPosition, agentInsights, momentum, scarcity, investment),
		RiskFactors:         riskFactors(rec, completedCount, marketPosition, agentInsights, momentum, investment),
		ActionItems:         actionItems(marketPosition, agentInsights, momentum, investment),
		AnalysisTimestamp:   time.Now().UTC(),
		DataSources:         dataSources(marketPosition, agentInsights, momentum),
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"investment_score": result.InvestmentScore,
		"recommendation":   string(result.Recommendation),
	})

	return result, nil
}

// compositeScore сводит субрезультаты во взвешенную оценку 0-100.
// База 50; отсутствующий фактор просто не двигает оценку.
func compositeScore(
	position *domain.MarketPosition,
	agent *domain.AgentInsights,
	momentum *domain.MarketMomentum,
	scarcity *domain.ScarcityAnalysis,
	investment *domain.InvestmentPotential,
) int {
	score := 50.0

	// Рыночное позиционирование (вес 30%)
	if position != nil {
		switch {
		case position.MarketPercentile <= 25:
			score += 25
		case position.MarketPercentile <= 40:
			score += 15
		case position.MarketPercentile <= 60:
			score += 5
		case position.MarketPercentile <= 75:
			score -= 5
		default:
			score -= 15
		}
	}

	// Доходность (25%)
	if investment != nil {
		switch {
		case investment.GrossAnnualYield >= 7.0:
			score += 20
		case investment.GrossAnnualYield >= 6.0:
			score += 15
		case investment.GrossAnnualYield >= 5.0:
			score += 10
		case investment.GrossAnnualYield >= 4.0:
			score += 5
		default:
			score -= 10
		}
	}

	// Динамика рынка (20%)
	if momentum != nil {
		switch {
		case momentum.MarketTemperature == domain.TemperatureHot && momentum.PriceMomentum30d > 5:
			score += 15
		case momentum.MarketTemperature == domain.TemperatureWarm && momentum.PriceMomentum30d > 0:
			score += 10
		case momentum.MarketTemperature == domain.TemperatureModerate:
			score += 5
		case momentum.MarketTemperature == domain.TemperatureCool && momentum.PriceMomentum30d < 0:
			score -= 10
		}
	}

	// Редкость (15%)
	if scarcity != nil {
		switch {
		case scarcity.ScarcityScore >= 80:
			score += 12
		case scarcity.ScarcityScore >= 60:
			score += 8
		case scarcity.ScarcityScore >= 40:
			score += 4
		default:
			score -= 5
		}
	}

	// Поведение агента (10%)
	if agent != nil {
		switch agent.NegotiationPotential {
		case domain.NegotiationHigh:
			score += 8
		case domain.NegotiationMedium:
			score += 4
		default:
			score -= 2
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(score)
}

// recommendation переводит оценку в рекомендацию и корректирует ее
// по таймингу рынка и позиции в выборке (не более одного сдвига)
func recommendation(score int, position *domain.MarketPosition, momentum *domain.MarketMomentum) domain.Recommendation {
	var base domain.Recommendation
	switch {
	case score >= 80:
		base = domain.RecommendStrongBuy
	case score >= 65:
		base = domain.RecommendBuy
	case score >= 45:
		base = domain.RecommendHold
	default:
		base = domain.RecommendAvoid
	}

	if momentum != nil {
		switch momentum.TimingRecommendation {
		case domain.TimingActFast:
			if base == domain.RecommendBuy || base == domain.RecommendStrongBuy {
				return domain.RecommendStrongBuy
			}
		case domain.TimingWaitBetter:
			if base == domain.RecommendBuy || base == domain.RecommendStrongBuy {
				return domain.RecommendHold
			}
		}
	}

	if position != nil {
		if position.PositionCategory == domain.PositionBottomQuartile && base == domain.RecommendBuy {
			return domain.RecommendStrongBuy
		}
		if position.PositionCategory == domain.PositionTopQuartile && base == domain.RecommendBuy {
			return domain.RecommendHold
		}
	}

	return base
}

// dataSources собирает блок происхождения данных: сколько точек рынка
// реально участвовало в оценке
func dataSources(position *domain.MarketPosition, agent *domain.AgentInsights, momentum *domain.MarketMomentum) domain.DataSources {
	ds := domain.DataSources{AnalysisMethod: "data_driven"}
	if position != nil {
		ds.ComparableProperties = position.SampleSize
	}
	if agent != nil {
		ds.AgentProperties = agent.PortfolioSize
	}
	if momentum != nil {
		// Velocity90d - это счетчик за 90 дней, деленный на 3; округление
		// восстанавливает исходное число без потери на усечении
		listed90d := int(math.Round(momentum.Velocity90d * 3))
		ds.MarketDataPoints = momentum.Velocity30d + listed90d + momentum.SupplyPressure
	}
	return ds
}
