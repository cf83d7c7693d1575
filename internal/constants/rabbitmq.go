package constants

// Имена очередей
const (
	QueueAnalysisRequests = "analysis_requests"
)

// Обменники
const (
	ExchangeAnalysisEvents = "analysis_events"
)

// Ключи маршрутизации
const (
	RoutingKeyAnalysisRequest   = "analysis.property.request"
	RoutingKeyAnalysisCompleted = "analysis.property.completed"
)

// Типы и версии событий
const (
	EventAnalysisRequested   = "AnalysisRequestedEvent"
	EventAnalysisRequestedV1 = "1.0.0"
	EventAnalysisCompleted   = "AnalysisCompletedEvent"
	EventAnalysisCompletedV1 = "1.0.0"
)
