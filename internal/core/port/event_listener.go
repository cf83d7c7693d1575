package port

import "context"

// EventListenerPort - входящий адаптер, слушающий внешние события
type EventListenerPort interface {
	Start(ctx context.Context) error
	Close() error
}
