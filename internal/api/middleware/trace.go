package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskhub/internal/api/shared"
	"github.com/phrazzld/taskhub/internal/platform/logger"
)

// TraceIDHeader echoes the trace ID back to the client.
const TraceIDHeader = "X-Trace-ID"

// NewTraceMiddleware adds a trace ID to the request context and a request
// logger carrying it. It belongs early in the chain so every later handler
// logs with the trace ID.
func NewTraceMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)

			reqLog := log.With(slog.String("trace_id", traceID))
			ctx = logger.WithLogger(ctx, reqLog)

			reqLog.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			w.Header().Set(TraceIDHeader, traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
