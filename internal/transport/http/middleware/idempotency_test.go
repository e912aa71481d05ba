package middleware

import (
	"context"
	"testing"
)

func TestRequestHashDeterministic(t *testing.T) {
	hash1 := RequestHash([]byte("payload"))
	hash2 := RequestHash([]byte("payload"))
	hash3 := RequestHash([]byte("other"))

	if hash1 != hash2 {
		t.Fatal("expected deterministic hash")
	}
	if hash1 == hash3 {
		t.Fatal("expected different hash for different payload")
	}
}

func TestIdempotencyStoreWithoutDB(t *testing.T) {
	var store *IdempotencyStore
	stored, found, err := store.Check(context.Background(), "o", "u", "helpdesk.tickets.create", "k", "h")
	if err != nil || found || stored != nil {
		t.Fatalf("nil store should be a no-op, got %v %v %v", stored, found, err)
	}
	if err := store.Save(context.Background(), "o", "u", "helpdesk.tickets.create", "k", "h", nil); err != nil {
		t.Fatalf("nil store save should be a no-op: %v", err)
	}
}
