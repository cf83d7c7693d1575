package engine

import (
	"fmt"
	"time"

	"analysis-service/internal/core/domain"

	"github.com/google/uuid"
)

// Ключи кэша детерминированы: одинаковые входы всегда попадают в одну запись,
// разные - никогда не пересекаются. Локация нормализуется, числовые
// дискриминаторы форматируются с фиксированной точностью.

func marketPositionKey(locality string, propType domain.PropertyType, pricePerArea, area float64) string {
	return fmt.Sprintf("market_position:%s:%s:%.2f:%.1f",
		domain.NormalizeLocality(locality), propType, pricePerArea, area)
}

func agentInsightsKey(agentName string) string {
	return fmt.Sprintf("agent_insights:%s", agentName)
}

// Ключ динамики рынка дополнительно сегментирован календарным днем:
// в полночь ключ меняется и запись пересчитывается
func momentumKey(locality string, day time.Time) string {
	return fmt.Sprintf("market_momentum:%s:%s",
		domain.NormalizeLocality(locality), day.Format("2006-01-02"))
}

func scarcityKey(propertyID uuid.UUID) string {
	return fmt.Sprintf("scarcity_score:%s", propertyID)
}

func roiKey(propertyID uuid.UUID) string {
	return fmt.Sprintf("roi_estimate:%s", propertyID)
}

func appreciationKey(locality string) string {
	return fmt.Sprintf("appreciation_rate:%s", domain.NormalizeLocality(locality))
}
