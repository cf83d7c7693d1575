package engine

import (
	"context"
	"time"

	"analysis-service/internal/core/domain"
	"analysis-service/internal/core/port"

	"github.com/google/uuid"
)

// fakeRepository - настраиваемая заглушка хранилища. Каждый метод
// возвращает заранее заданное значение и запоминает последний фильтр.
type fakeRepository struct {
	record      *domain.PropertyRecord
	getErr      error
	comparables []domain.PropertyRecord
	findErr     error

	listedByDays map[int]int
	activeCount  int
	removedCount int
	countErr     error

	completedCount int

	// Средние цены за м² по ключу окна: "all" для nil-окна,
	// иначе дата начала окна в формате 2006-01-02
	avgPriceByWindow map[string]*float64
	avgErr           error

	agentStats    *port.AgentStats
	agentStatsErr error

	lastComparableFilter port.ComparableFilter
	lastActiveFilter     port.ComparableFilter
	lastRemovedFilter    port.ComparableFilter
}

func (f *fakeRepository) GetByID(_ context.Context, _ uuid.UUID) (*domain.PropertyRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.record, nil
}

func (f *fakeRepository) FindComparables(_ context.Context, filter port.ComparableFilter) ([]domain.PropertyRecord, error) {
	f.lastComparableFilter = filter
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.comparables, nil
}

func (f *fakeRepository) CountListedSince(_ context.Context, _ string, days int) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.listedByDays[days], nil
}

func (f *fakeRepository) CountActive(_ context.Context, filter port.ComparableFilter) (int, error) {
	f.lastActiveFilter = filter
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.activeCount, nil
}

func (f *fakeRepository) CountRemovedSince(_ context.Context, _ int, filter port.ComparableFilter) (int, error) {
	f.lastRemovedFilter = filter
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.removedCount, nil
}

func (f *fakeRepository) CountCompleted(_ context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.completedCount, nil
}

func (f *fakeRepository) AggregatePricePerArea(_ context.Context, _ string, window *port.TimeWindow) (*float64, error) {
	if f.avgErr != nil {
		return nil, f.avgErr
	}
	key := "all"
	if window != nil {
		key = window.From.Format("2006-01-02")
	}
	return f.avgPriceByWindow[key], nil
}

func (f *fakeRepository) AggregateAgentStats(_ context.Context, _ string) (*port.AgentStats, error) {
	if f.agentStatsErr != nil {
		return nil, f.agentStatsErr
	}
	return f.agentStats, nil
}

// fakeCache - кэш без вытеснения, достаточный для проверки
// попаданий/промахов и записанных значений
type fakeCache struct {
	entries map[string]interface{}
	ttls    map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: make(map[string]interface{}),
		ttls:    make(map[string]time.Duration),
	}
}

func (c *fakeCache) Get(key string) (interface{}, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *fakeCache) Set(key string, value interface{}, ttl time.Duration) {
	c.entries[key] = value
	c.ttls[key] = ttl
}

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }
func ptrBool(v bool) *bool        { return &v }
func ptrString(v string) *string  { return &v }

// testRecord - типовой тиранский объект c ценой 150000 и площадью 100 м²
func testRecord() *domain.PropertyRecord {
	return &domain.PropertyRecord{
		ID:           uuid.New(),
		Location:     "Tirana, Blloku",
		PropertyType: domain.TypeApartment,
		AskingPrice:  150000,
		TotalArea:    ptrFloat(100),
		IsActive:     true,
		Status:       domain.StatusCompleted,
		CreatedAt:    time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
}

// comparableAt создает сопоставимую запись с заданной ценой за м²
// при площади 100 м²
func comparableAt(pricePerArea float64) domain.PropertyRecord {
	return domain.PropertyRecord{
		ID:           uuid.New(),
		Location:     "Tirana",
		PropertyType: domain.TypeApartment,
		AskingPrice:  pricePerArea * 100,
		TotalArea:    ptrFloat(100),
		IsActive:     true,
		Status:       domain.StatusCompleted,
	}
}
