package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/fooddash-backend/api/responses"
	pkgerrors "github.com/angelmondragon/fooddash-backend/pkg/errors"
	"github.com/angelmondragon/fooddash-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/fooddash-backend/pkg/redis"
)

const (
	IdempotencyKeyHeader    = "Idempotency-Key"
	IdempotentReplayHeader  = "Idempotent-Replayed"
	maxIdempotencyKeyLen    = 255
	cartIdempotencyTTL      = 24 * time.Hour
	checkoutIdempotencyTTL  = 7 * 24 * time.Hour
	inFlightIdempotencyTTL  = time.Minute
	maxIdempotentBodyLength = 1 << 20
)

// idempotentRoutes lists the writes a client may safely retry. Keys are
// "METHOD path" with no trailing slash.
var idempotentRoutes = map[string]time.Duration{
	http.MethodPost + " /api/v1/orders":   checkoutIdempotencyTTL,
	http.MethodPost + " /api/v1/cart/add": cartIdempotencyTTL,
}

type idempotencyRecord struct {
	RequestHash string `json:"request_hash"`
	InFlight    bool   `json:"in_flight,omitempty"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Idempotency replays the first completed response for a caller's
// Idempotency-Key. A second request arriving while the first is still
// running is rejected rather than executed twice. Server errors are not
// remembered so the client can retry them.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, ok := idempotencyTTL(r.Method, r.URL.Path)
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			clientKey := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			switch {
			case clientKey == "":
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			case len(clientKey) > maxIdempotencyKeyLen:
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key too long"))
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxIdempotentBodyLength))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(strings.NewReader(string(body)))

			hash := requestHash(r, body)
			key := store.IdempotencyKey(callerScope(r), clientKey)

			existing, err := loadRecord(ctx, store, key)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if existing != nil {
				replayOrReject(ctx, logg, w, existing, hash)
				return
			}

			claimed, err := saveRecord(ctx, store, key, idempotencyRecord{RequestHash: hash, InFlight: true}, inFlightIdempotencyTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "a request with this Idempotency-Key is already in progress"))
				return
			}

			rec := newResponseRecorder(w, true)
			next.ServeHTTP(rec, r)

			if err := store.Del(ctx, key); err != nil {
				logFailure(ctx, logg, "release idempotency claim", err)
				return
			}
			if rec.Status() >= http.StatusInternalServerError {
				return
			}
			final := idempotencyRecord{
				RequestHash: hash,
				Status:      rec.Status(),
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
			}
			if _, err := saveRecord(ctx, store, key, final, ttl); err != nil {
				logFailure(ctx, logg, "persist idempotency record", err)
			}
		})
	}
}

func idempotencyTTL(method, path string) (time.Duration, bool) {
	path = strings.TrimSuffix(path, "/")
	ttl, ok := idempotentRoutes[method+" "+path]
	return ttl, ok
}

// callerScope keeps keys from colliding across users and endpoints.
func callerScope(r *http.Request) string {
	return UserIDFromContext(r.Context()) + "|" + r.Method + "|" + strings.TrimSuffix(r.URL.Path, "/")
}

func requestHash(r *http.Request, body []byte) string {
	h := sha256.New()
	h.Write([]byte(r.Method))
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSuffix(r.URL.Path, "/")))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func loadRecord(ctx context.Context, store pkgredis.IdempotencyStore, key string) (*idempotencyRecord, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) || (err == nil && raw == "") {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func saveRecord(ctx context.Context, store pkgredis.IdempotencyStore, key string, record idempotencyRecord, ttl time.Duration) (bool, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return false, err
	}
	return store.SetNX(ctx, key, string(payload), ttl)
}

func replayOrReject(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, record *idempotencyRecord, hash string) {
	if record.RequestHash != hash {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return
	}
	if record.InFlight {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "a request with this Idempotency-Key is already in progress"))
		return
	}
	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.Header().Set(IdempotentReplayHeader, "true")
	w.WriteHeader(record.Status)
	_, _ = w.Write(record.Body)
}

func logFailure(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg != nil {
		logg.Error(ctx, msg, err)
	}
}
