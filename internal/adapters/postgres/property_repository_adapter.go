package postgres

import (
	"context"
	"errors"
	"fmt"

	"analysis-service/internal/core/domain"
	"analysis-service/internal/core/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const propertyColumns = `
	id, location, neighborhood, property_type, asking_price,
	total_area, internal_area, bedrooms, bathrooms, floor_level,
	condition, furnished, has_elevator, agent_name,
	is_active, status, created_at, removed_at, days_on_market
`

// PropertyRepositoryAdapter реализует PropertyRepositoryPort для PostgreSQL.
// Адаптер только читает: записями владеют сервисы загрузки и актуализации.
type PropertyRepositoryAdapter struct {
	pool *pgxpool.Pool
}

// NewPropertyRepositoryAdapter создает новый экземпляр адаптера.
func NewPropertyRepositoryAdapter(pool *pgxpool.Pool) (*PropertyRepositoryAdapter, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PropertyRepositoryAdapter{pool: pool}, nil
}

func (a *PropertyRepositoryAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.PropertyRecord, error) {
	sqlQuery := `SELECT ` + propertyColumns + ` FROM property_records WHERE id = $1`

	row := a.pool.QueryRow(ctx, sqlQuery, id)
	rec, err := scanPropertyRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to get property record %s: %w", id, err)
	}
	return rec, nil
}

func (a *PropertyRepositoryAdapter) FindComparables(ctx context.Context, filter port.ComparableFilter) ([]domain.PropertyRecord, error) {
	whereClause, args := applyComparableFilter(filter).build()
	sqlQuery := `SELECT ` + propertyColumns + ` FROM property_records ` + whereClause

	rows, err := a.pool.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparables: %w", err)
	}
	defer rows.Close()

	var records []domain.PropertyRecord
	for rows.Next() {
		rec, err := scanPropertyRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comparables: %w", err)
	}
	return records, nil
}

func (a *PropertyRepositoryAdapter) CountListedSince(ctx context.Context, locality string, days int) (int, error) {
	sqlQuery := `
		SELECT COUNT(*) FROM property_records
		WHERE location ILIKE $1
		  AND created_at >= NOW() - make_interval(days => $2)
		  AND asking_price > 0
		  AND ` + usableAreaExpr + ` > 0`

	var count int
	err := a.pool.QueryRow(ctx, sqlQuery, "%"+locality+"%", days).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent listings: %w", err)
	}
	return count, nil
}

func (a *PropertyRepositoryAdapter) CountActive(ctx context.Context, filter port.ComparableFilter) (int, error) {
	filter.OnlyActive = true
	whereClause, args := applyComparableFilter(filter).build()
	sqlQuery := `SELECT COUNT(*) FROM property_records ` + whereClause

	var count int
	if err := a.pool.QueryRow(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active listings: %w", err)
	}
	return count, nil
}

func (a *PropertyRepositoryAdapter) CountRemovedSince(ctx context.Context, days int, filter port.ComparableFilter) (int, error) {
	qb := applyComparableFilter(filter)
	qb.addStatic("is_active = false")
	qb.addStatic("removed_at IS NOT NULL")
	qb.addCondition("removed_at >= NOW() - make_interval(days => $%d)", days)
	whereClause, args := qb.build()
	sqlQuery := `SELECT COUNT(*) FROM property_records ` + whereClause

	var count int
	if err := a.pool.QueryRow(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count removed listings: %w", err)
	}
	return count, nil
}

func (a *PropertyRepositoryAdapter) CountCompleted(ctx context.Context) (int, error) {
	var count int
	err := a.pool.QueryRow(ctx, `SELECT COUNT(*) FROM property_records WHERE status = 'completed'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed records: %w", err)
	}
	return count, nil
}

func (a *PropertyRepositoryAdapter) AggregatePricePerArea(ctx context.Context, locality string, window *port.TimeWindow) (*float64, error) {
	qb := newQueryBuilder()
	qb.addCondition("location ILIKE $%d", "%"+locality+"%")
	qb.addStatic(usableAreaExpr + " > 0")
	if window != nil {
		qb.addCondition("created_at >= $%d", window.From)
		qb.addCondition("created_at < $%d", window.To)
	}
	whereClause, args := qb.build()

	sqlQuery := `SELECT AVG(asking_price / ` + usableAreaExpr + `) FROM property_records ` + whereClause

	var avg *float64
	if err := a.pool.QueryRow(ctx, sqlQuery, args...).Scan(&avg); err != nil {
		return nil, fmt.Errorf("failed to aggregate price per area: %w", err)
	}
	return avg, nil
}

// Портфель агента считается только по завершенным записям: строки
// в статусах analyzing/failed не должны влиять на среднее и дисперсию
const agentStatsQuery = `
	SELECT
		AVG(asking_price / ` + usableAreaExpr + `),
		VAR_POP(asking_price / ` + usableAreaExpr + `),
		AVG(COALESCE(days_on_market, 0)),
		COUNT(*)
	FROM property_records
	WHERE agent_name = $1
	  AND status = 'completed'
	  AND asking_price > 0
	  AND ` + usableAreaExpr + ` > 0`

func (a *PropertyRepositoryAdapter) AggregateAgentStats(ctx context.Context, agentName string) (*port.AgentStats, error) {
	var (
		mean, variance, meanDays *float64
		count                    int
	)
	err := a.pool.QueryRow(ctx, agentStatsQuery, agentName).Scan(&mean, &variance, &meanDays, &count)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate agent stats: %w", err)
	}
	if count == 0 || mean == nil {
		return nil, nil
	}

	stats := &port.AgentStats{
		MeanPricePerArea: *mean,
		ListingCount:     count,
	}
	if variance != nil {
		stats.Variance = *variance
	}
	if meanDays != nil {
		stats.MeanDaysOnMarket = *meanDays
	}
	return stats, nil
}

// scanPropertyRecord читает одну строку со списком колонок propertyColumns
func scanPropertyRecord(row pgx.Row) (*domain.PropertyRecord, error) {
	var rec domain.PropertyRecord
	err := row.Scan(
		&rec.ID, &rec.Location, &rec.Neighborhood, &rec.PropertyType, &rec.AskingPrice,
		&rec.TotalArea, &rec.InternalArea, &rec.Bedrooms, &rec.Bathrooms, &rec.FloorLevel,
		&rec.Condition, &rec.Furnished, &rec.HasElevator, &rec.AgentName,
		&rec.IsActive, &rec.Status, &rec.CreatedAt, &rec.RemovedAt, &rec.DaysOnMarket,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
