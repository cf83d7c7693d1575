package postgres

import (
	"testing"
	"time"

	"analysis-service/internal/core/domain"
	"analysis-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryBuilder_EmptyFilterKeepsPriceGuard(t *testing.T) {
	where, args := applyComparableFilter(port.ComparableFilter{}).build()

	assert.Equal(t, "WHERE asking_price > 0", where)
	assert.Empty(t, args)
}

func TestQueryBuilder_FullFilter(t *testing.T) {
	propertyType := domain.TypeApartment
	areaMin, areaMax := 80.0, 120.0
	priceMin, priceMax := 100000.0, 200000.0
	excludeID := uuid.New()
	window := &port.TimeWindow{
		From: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	}

	where, args := applyComparableFilter(port.ComparableFilter{
		Locality:      "Tirana",
		PropertyType:  &propertyType,
		AreaMin:       &areaMin,
		AreaMax:       &areaMax,
		PriceMin:      &priceMin,
		PriceMax:      &priceMax,
		ListedWithin:  window,
		OnlyCompleted: true,
		OnlyActive:    true,
		ExcludeID:     &excludeID,
	}).build()

	assert.Equal(t,
		"WHERE asking_price > 0"+
			" AND location ILIKE $1"+
			" AND property_type = $2"+
			" AND COALESCE(internal_area, total_area) >= $3"+
			" AND COALESCE(internal_area, total_area) <= $4"+
			" AND COALESCE(internal_area, total_area) > 0"+
			" AND asking_price >= $5"+
			" AND asking_price <= $6"+
			" AND created_at >= $7"+
			" AND created_at < $8"+
			" AND status = 'completed'"+
			" AND is_active = true"+
			" AND id <> $9",
		where)

	require.Len(t, args, 9)
	assert.Equal(t, "%Tirana%", args[0])
	assert.Equal(t, "apartment", args[1])
	assert.Equal(t, 80.0, args[2])
	assert.Equal(t, 120.0, args[3])
	assert.Equal(t, 100000.0, args[4])
	assert.Equal(t, 200000.0, args[5])
	assert.Equal(t, window.From, args[6])
	assert.Equal(t, window.To, args[7])
	assert.Equal(t, excludeID, args[8])
}

func TestQueryBuilder_AreaGuardAppliesWithSingleBound(t *testing.T) {
	areaMin := 50.0
	where, args := applyComparableFilter(port.ComparableFilter{AreaMin: &areaMin}).build()

	assert.Contains(t, where, "COALESCE(internal_area, total_area) >= $1")
	assert.Contains(t, where, "COALESCE(internal_area, total_area) > 0")
	assert.Equal(t, []interface{}{50.0}, args)
}

func TestAgentStatsQuery_OnlyCompletedRecords(t *testing.T) {
	// Записи в статусах analyzing/failed не должны попадать в портфель
	// агента: без фильтра две завершенные и одна обрабатываемая запись
	// дали бы COUNT(*)=3 и прошли бы порог минимальной выборки
	assert.Contains(t, agentStatsQuery, "status = 'completed'")
	assert.Contains(t, agentStatsQuery, "agent_name = $1")
	assert.Contains(t, agentStatsQuery, "asking_price > 0")
}

func TestQueryBuilder_PlaceholdersStaySequential(t *testing.T) {
	priceMin := 50000.0
	excludeID := uuid.New()
	where, args := applyComparableFilter(port.ComparableFilter{
		Locality:   "Durres",
		PriceMin:   &priceMin,
		OnlyActive: true,
		ExcludeID:  &excludeID,
	}).build()

	// Статические условия не сдвигают нумерацию placeholder-ов
	assert.Contains(t, where, "location ILIKE $1")
	assert.Contains(t, where, "asking_price >= $2")
	assert.Contains(t, where, "id <> $3")
	assert.Len(t, args, 3)
}
