// internal/api/middleware/idempotency.go
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

const (
	// IdempotencyKeyHeader names the client-chosen key for a create request.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotentReplayHeader marks responses served from the store.
	IdempotentReplayHeader = "Idempotent-Replayed"

	idempotencyPrefix = "idempotency:v1:"
	inProgressMarker  = "__in_progress__"
	redisOpTimeout    = 2 * time.Second
)

type storedResponse struct {
	Status  int               `json:"status"`
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers"`
}

// Idempotency replays the stored response when a POST repeats an
// Idempotency-Key already used by the same caller. Requests without the
// header, and non-POST requests, pass straight through. Responses with a
// 5xx status are not stored so the client can retry.
func Idempotency(cache *redis.Client, ttl time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyKeyHeader)
			if r.Method != http.MethodPost || key == "" {
				next.ServeHTTP(w, r)
				return
			}

			scope := "anonymous"
			if p, ok := PrincipalFromContext(r.Context()); ok {
				scope = p.Username
			}
			cacheKey := idempotencyPrefix + scope + ":" + key

			ctx, cancel := context.WithTimeout(r.Context(), redisOpTimeout)
			defer cancel()

			cached, err := cache.Get(ctx, cacheKey).Result()
			switch {
			case err == nil:
				replay(w, cached, key, logger)
				return
			case !errors.Is(err, redis.Nil):
				logger.Error("Idempotency lookup failed", "key", key, "error", err)
				writeJSONError(w, http.StatusInternalServerError, "idempotency store failure")
				return
			}

			reserved, err := cache.SetNX(ctx, cacheKey, inProgressMarker, ttl).Result()
			if err != nil {
				logger.Error("Idempotency reservation failed", "key", key, "error", err)
				writeJSONError(w, http.StatusInternalServerError, "idempotency store failure")
				return
			}
			if !reserved {
				writeJSONError(w, http.StatusConflict, "duplicate request currently processing")
				return
			}

			var body bytes.Buffer
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&body)

			next.ServeHTTP(ww, r)

			persistCtx, persistCancel := context.WithTimeout(context.Background(), redisOpTimeout)
			defer persistCancel()

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status >= http.StatusInternalServerError {
				cache.Del(persistCtx, cacheKey)
				return
			}

			stored := storedResponse{Status: status, Body: body.String(), Headers: map[string]string{}}
			for name := range w.Header() {
				if name == RequestIDHeader {
					continue
				}
				stored.Headers[name] = w.Header().Get(name)
			}

			payload, err := json.Marshal(stored)
			if err != nil {
				logger.Error("Failed to encode idempotent response", "key", key, "error", err)
				cache.Del(persistCtx, cacheKey)
				return
			}
			if err := cache.Set(persistCtx, cacheKey, payload, ttl).Err(); err != nil {
				logger.Error("Failed to persist idempotent response", "key", key, "error", err)
				cache.Del(persistCtx, cacheKey)
			}
		})
	}
}

func replay(w http.ResponseWriter, cached, key string, logger *slog.Logger) {
	if cached == inProgressMarker {
		writeJSONError(w, http.StatusConflict, "duplicate request currently processing")
		return
	}

	var stored storedResponse
	if err := json.Unmarshal([]byte(cached), &stored); err != nil {
		logger.Warn("Failed to decode stored idempotent response", "key", key, "error", err)
		writeJSONError(w, http.StatusConflict, "duplicate request")
		return
	}

	for name, value := range stored.Headers {
		w.Header().Set(name, value)
	}
	w.Header().Set(IdempotentReplayHeader, "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write([]byte(stored.Body))
}
