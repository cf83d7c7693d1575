package rest

import (
	"net/http"
	"time"

	"analysis-service/internal/contextkeys"
	"analysis-service/internal/core/port"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// LoggerMiddleware привязывает trace_id к каждому запросу и пишет
// access-лог со статусом и длительностью обработки.
func LoggerMiddleware(logger port.LoggerPort) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Принимаем trace_id от клиента, иначе генерируем свой
			traceID := r.Header.Get("X-Trace-ID")
			if _, err := uuid.Parse(traceID); err != nil {
				traceID = uuid.New().String()
			}

			requestLogger := logger.WithFields(port.Fields{
				"trace_id": traceID,
			})

			// В контекст уходит логгер без HTTP-полей, чтобы не
			// засорять записи бизнес-логики
			ctx := contextkeys.ContextWithLogger(r.Context(), requestLogger)
			ctx = contextkeys.ContextWithTraceID(ctx, traceID)

			accessLogger := requestLogger.WithFields(port.Fields{
				"http_method": r.Method,
				"http_path":   r.URL.Path,
				"remote_addr": r.RemoteAddr,
			})
			accessLogger.Info("Request started", nil)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			startTime := time.Now()

			next.ServeHTTP(ww, r.WithContext(ctx))

			accessLogger.Info("Request finished", port.Fields{
				"status_code":   ww.Status(),
				"bytes_written": ww.BytesWritten(),
				"duration_ms":   time.Since(startTime).Milliseconds(),
			})
		})
	}
}
