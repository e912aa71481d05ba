package helpdesk

import (
	"reflect"
	"testing"
)

func TestBuildTicketWhere(t *testing.T) {
	tests := []struct {
		name      string
		filter    TicketFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "organization only",
			filter:    TicketFilter{},
			wantWhere: " WHERE t.organization_id = $1",
			wantArgs:  []any{"o-1"},
		},
		{
			name:      "participant matches creator or assignee",
			filter:    TicketFilter{Participant: "e-1"},
			wantWhere: " WHERE t.organization_id = $1 AND (t.created_by = $2 OR t.assigned_to = $2)",
			wantArgs:  []any{"o-1", "e-1"},
		},
		{
			name:      "assigned to me within participant scope",
			filter:    TicketFilter{AssignedTo: "e-1", Participant: "e-1"},
			wantWhere: " WHERE t.organization_id = $1 AND t.assigned_to = $2 AND (t.created_by = $3 OR t.assigned_to = $3)",
			wantArgs:  []any{"o-1", "e-1", "e-1"},
		},
		{
			name:      "status and search",
			filter:    TicketFilter{Status: StatusOpen, Query: "vpn"},
			wantWhere: " WHERE t.organization_id = $1 AND t.status = $2 AND (t.subject ILIKE $3 OR t.ticket_number ILIKE $3 OR cb.first_name ILIKE $3 OR cb.last_name ILIKE $3)",
			wantArgs:  []any{"o-1", StatusOpen, "%vpn%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildTicketWhere("o-1", tt.filter)
			if where != tt.wantWhere {
				t.Fatalf("where = %q, want %q", where, tt.wantWhere)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}
