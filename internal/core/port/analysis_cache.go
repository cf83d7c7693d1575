package port

import "time"

// AnalysisCachePort - кэш результатов движков с TTL на запись.
// Семантика last-write-wins: конкурентные промахи по одному ключу могут
// посчитать значение дважды и перезаписать друг друга - это допустимо,
// single-flight здесь намеренно не требуется.
type AnalysisCachePort interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
}
