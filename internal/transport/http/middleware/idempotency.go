package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"hrdesk/internal/platform/querier"
)

const IdempotencyHeader = "Idempotency-Key"

// IdempotencyTTL bounds how long a stored response is replayed. An expired key
// may be reused for a different request.
const IdempotencyTTL = 24 * time.Hour

var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

// IdempotencyStore remembers the response for a (user, endpoint, key) so a
// retried mutation replays instead of repeating.
type IdempotencyStore struct {
	DB querier.Querier
}

func NewIdempotencyStore(db querier.Querier) *IdempotencyStore {
	return &IdempotencyStore{DB: db}
}

func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func (s *IdempotencyStore) Check(ctx context.Context, orgID, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	if s == nil || s.DB == nil {
		return nil, false, nil
	}
	var storedHash string
	var stored json.RawMessage
	err := s.DB.QueryRow(ctx, `
    SELECT request_hash, response_json
    FROM idempotency_keys
    WHERE organization_id = $1 AND user_id = $2 AND key = $3 AND endpoint = $4
      AND created_at > now() - make_interval(secs => $5)
  `, orgID, userID, key, endpoint, IdempotencyTTL.Seconds()).Scan(&storedHash, &stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if storedHash != requestHash {
		return nil, false, ErrIdempotencyConflict
	}
	return stored, true, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, orgID, userID, endpoint, key, requestHash string, response json.RawMessage) error {
	if s == nil || s.DB == nil {
		return nil
	}
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO idempotency_keys (organization_id, user_id, key, endpoint, request_hash, response_json)
    VALUES ($1, $2, $3, $4, $5, $6)
    ON CONFLICT (organization_id, user_id, key, endpoint)
    DO UPDATE SET request_hash = EXCLUDED.request_hash,
                  response_json = EXCLUDED.response_json,
                  created_at = now()
    WHERE idempotency_keys.request_hash = EXCLUDED.request_hash
       OR idempotency_keys.created_at <= now() - make_interval(secs => $7)
  `, orgID, userID, key, endpoint, requestHash, response, IdempotencyTTL.Seconds())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdempotencyConflict
	}
	return nil
}
