package audit

import (
	"strings"
	"testing"
)

func TestBuildBaseQueryPlaceholders(t *testing.T) {
	query, args := buildBaseQuery("SELECT COUNT(1)", "org-1", Filter{Action: "ticket.status", EntityType: EntityTicket, ActorUser: "u1"})
	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(args))
	}
	for _, want := range []string{"organization_id = $1", "action = $2", "entity_type = $3", "actor_user_id::text = $4"} {
		if !strings.Contains(query, want) {
			t.Fatalf("query %q missing %q", query, want)
		}
	}
	if strings.Contains(query, "entity_id =") {
		t.Fatalf("unexpected entity filter in %q", query)
	}
}

func TestBuildBaseQueryNoFilters(t *testing.T) {
	query, args := buildBaseQuery("SELECT 1", "org-1", Filter{})
	if len(args) != 1 || !strings.HasSuffix(query, "WHERE organization_id = $1") {
		t.Fatalf("unexpected query %q args %v", query, args)
	}
}

func TestMarshalOptional(t *testing.T) {
	payload, err := marshalOptional(nil)
	if err != nil || payload != nil {
		t.Fatalf("nil must stay nil, got %s %v", payload, err)
	}
	payload, err = marshalOptional(map[string]string{"status": "Open"})
	if err != nil || string(payload) != `{"status":"Open"}` {
		t.Fatalf("unexpected payload %s %v", payload, err)
	}
}
