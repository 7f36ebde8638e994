package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/josh-kwaku/shop-ledger/internal/handler"
	"github.com/josh-kwaku/shop-ledger/internal/logging"
	"github.com/josh-kwaku/shop-ledger/internal/repository"
)

const idempotencyHeader = "Idempotency-Key"

const maxIdempotencyKeyLen = 255

type idempotencyRepository interface {
	Claim(ctx context.Context, key, requestHash string, now, expiresAt time.Time) (bool, error)
	Get(ctx context.Context, key string, now time.Time) (*repository.IdempotencyEntry, error)
	Complete(ctx context.Context, entry *repository.IdempotencyEntry) error
	Release(ctx context.Context, key, requestHash string) error
}

// Idempotency replays the stored response when a mutating request repeats an
// Idempotency-Key. The key is claimed before the handler runs, so a repeat
// that arrives while the first request is still running gets 409 instead of
// executing twice. Requests without the header pass straight through. Server
// errors release the claim so the client may retry them.
func Idempotency(repo idempotencyRepository, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(idempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if len(key) > maxIdempotencyKeyLen {
				handler.RespondAppError(w, handler.ErrInvalidRequest, nil)
				return
			}

			ctx := logging.With(r.Context(), "idempotency_key", key)
			r = r.WithContext(ctx)
			log := logging.FromContext(ctx)

			body, err := io.ReadAll(r.Body)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidRequest, nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			reqHash := requestHash(r.Method, r.URL.Path, body)
			now := time.Now().UTC()

			claimed, err := repo.Claim(ctx, key, reqHash, now, now.Add(ttl))
			if err != nil {
				log.Error("idempotency claim failed", "error", err)
				handler.RespondAppError(w, handler.ErrInternalError, nil)
				return
			}
			if !claimed {
				replay(w, r, repo, key, reqHash)
				return
			}

			// Bookkeeping after the handler must survive a client disconnect.
			storeCtx := context.WithoutCancel(ctx)
			rec := &responseRecorder{ResponseWriter: w, body: &bytes.Buffer{}, statusCode: http.StatusOK}
			defer func() {
				if rv := recover(); rv != nil {
					if err := repo.Release(storeCtx, key, reqHash); err != nil {
						log.Error("idempotency release failed", "error", err)
					}
					panic(rv)
				}
			}()

			next.ServeHTTP(rec, r)

			if rec.statusCode >= http.StatusInternalServerError {
				if err := repo.Release(storeCtx, key, reqHash); err != nil {
					log.Error("idempotency release failed", "error", err)
				}
				return
			}

			entry := &repository.IdempotencyEntry{
				Key:          key,
				RequestHash:  reqHash,
				StatusCode:   rec.statusCode,
				ResponseBody: rec.body.Bytes(),
				ExpiresAt:    time.Now().UTC().Add(ttl),
			}
			if err := repo.Complete(storeCtx, entry); err != nil {
				log.Error("idempotency cache store failed", "error", err)
			}
		})
	}
}

// replay answers a request whose key is already held by another request.
func replay(w http.ResponseWriter, r *http.Request, repo idempotencyRepository, key, reqHash string) {
	log := logging.FromContext(r.Context())

	cached, err := repo.Get(r.Context(), key, time.Now().UTC())
	if err != nil {
		log.Error("idempotency cache lookup failed", "error", err)
		handler.RespondAppError(w, handler.ErrInternalError, nil)
		return
	}

	switch {
	case cached == nil:
		// The holder released its claim between our claim and lookup.
		handler.RespondAppError(w, handler.ErrIdempotencyInProgress, nil)
	case cached.RequestHash != reqHash:
		handler.RespondAppError(w, handler.ErrIdempotencyConflict, nil)
	case cached.Pending():
		handler.RespondAppError(w, handler.ErrIdempotencyInProgress, nil)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Idempotent-Replayed", "true")
		w.WriteHeader(cached.StatusCode)
		if _, err := w.Write(cached.ResponseBody); err != nil {
			log.Error("failed to write idempotent replay", "error", err)
		}
	}
}

func requestHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
