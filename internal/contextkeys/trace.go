package contextkeys

import "context"

// Непубличный тип ключа исключает коллизии с другими пакетами
type traceIDKey struct{}

// ContextWithTraceID возвращает контекст с добавленным trace_id
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext извлекает trace_id; пустая строка, если его нет
func TraceIDFromContext(ctx context.Context) string {
	traceID, _ := ctx.Value(traceIDKey{}).(string)
	return traceID
}
