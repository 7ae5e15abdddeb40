package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/VladKovDev/checkout-bridge/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const redacted = "[REDACTED]"

// sensitiveHeaders never reach the log verbatim.
var sensitiveHeaders = map[string]struct{}{
	"api-key":       {},
	"authorization": {},
	"cookie":        {},
	"x-signature":   {},
}

// Middleware writes one structured line per request after it completes.
func Middleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info("http request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}

// LogRequest logs the details of an inbound request at debug level. The body
// is included only for JSON payloads and is truncated to maxBody bytes.
func LogRequest(log logger.Logger, r *http.Request, body []byte) {
	const maxBody = 4096

	fields := []logger.Field{
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("method", r.Method),
		zap.String("url", r.URL.String()),
		zap.String("host", r.Host),
		zap.Any("headers", RedactHeaders(r.Header)),
		zap.Int("body_size", len(body)),
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if len(body) > maxBody {
			body = body[:maxBody]
		}
		fields = append(fields, zap.ByteString("body", body))
	}

	log.Debug("inbound request", fields...)
}

// RedactHeaders flattens headers into a map with credentials masked.
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for key, values := range h {
		if _, ok := sensitiveHeaders[strings.ToLower(key)]; ok {
			out[key] = redacted
			continue
		}
		out[key] = strings.Join(values, ", ")
	}
	return out
}
