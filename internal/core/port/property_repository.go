package port

import (
	"context"
	"time"

	"analysis-service/internal/core/domain"

	"github.com/google/uuid"
)

// TimeWindow - полуинтервал [From, To) по дате публикации записи
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// ComparableFilter описывает критерии подбора сопоставимых объектов.
// Локация сравнивается подстрокой без учета регистра. nil-поля не применяются.
type ComparableFilter struct {
	Locality     string
	PropertyType *domain.PropertyType

	// Диапазон полезной площади (внутренняя, если известна, иначе общая)
	AreaMin *float64
	AreaMax *float64

	PriceMin *float64
	PriceMax *float64

	ListedWithin *TimeWindow

	OnlyCompleted bool
	OnlyActive    bool

	ExcludeID *uuid.UUID
}

// AgentStats - агрегированная статистика по портфелю агента.
// Variance - популяционная дисперсия цены за м².
type AgentStats struct {
	MeanPricePerArea float64
	Variance         float64
	MeanDaysOnMarket float64
	ListingCount     int
}

// PropertyRepositoryPort - контракт доступа к хранилищу записей о недвижимости.
// Сервис анализа только читает: загрузкой и сохранением записей владеют другие сервисы.
type PropertyRepositoryPort interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PropertyRecord, error)

	FindComparables(ctx context.Context, filter ComparableFilter) ([]domain.PropertyRecord, error)

	// CountListedSince считает записи локации, опубликованные за последние days дней
	// (только с положительной ценой и площадью)
	CountListedSince(ctx context.Context, locality string, days int) (int, error)

	CountActive(ctx context.Context, filter ComparableFilter) (int, error)

	// CountRemovedSince считает снятые с продажи записи за последние days дней,
	// подходящие под фильтр
	CountRemovedSince(ctx context.Context, days int, filter ComparableFilter) (int, error)

	CountCompleted(ctx context.Context) (int, error)

	// AggregatePricePerArea возвращает среднюю цену за м² по локации
	// (nil - данных за окно нет)
	AggregatePricePerArea(ctx context.Context, locality string, window *TimeWindow) (*float64, error)

	AggregateAgentStats(ctx context.Context, agentName string) (*AgentStats, error)
}
