package shared

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestValidatorIssuesSorted(t *testing.T) {
	v := NewValidator()
	v.Required("subject", " ", "is required")
	v.OneOf("status", "open", []string{"Open", "Closed"}, "must be a valid status")
	v.IntRange("progress", 120, 0, 100, "must be between 0 and 100")
	v.MaxLength("title", strings.Repeat("x", 11), 10)

	issues := v.Issues()
	if len(issues) != 4 {
		t.Fatalf("expected 4 issues, got %+v", issues)
	}
	if issues[0].Field != "progress" || issues[3].Field != "title" {
		t.Fatalf("issues not sorted: %+v", issues)
	}
}

func TestValidatorAcceptsValidInput(t *testing.T) {
	v := NewValidator()
	v.Required("subject", "VPN", "is required")
	v.OneOf("status", "Open", []string{"Open"}, "bad")
	v.OneOf("status", "", []string{"Open"}, "bad")
	v.IntRange("progress", 100, 0, 100, "bad")
	if v.HasIssues() {
		t.Fatalf("unexpected issues %+v", v.Issues())
	}
}

func TestOptionalDate(t *testing.T) {
	v := NewValidator()
	if d := v.OptionalDate("dueDate", ""); d != nil {
		t.Fatal("blank date should be nil")
	}
	d := v.OptionalDate("dueDate", "2025-03-04")
	if d == nil || d.Format("2006-01-02") != "2025-03-04" {
		t.Fatalf("unexpected date %v", d)
	}
	if v.OptionalDate("dueDate", "04/03/2025") != nil || !v.HasIssues() {
		t.Fatal("invalid date should record an issue")
	}
}

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=500&offset=20", nil)
	p := ParsePagination(r, 50, 200)
	if p.Limit != 200 || p.Offset != 20 {
		t.Fatalf("unexpected pagination %+v", p)
	}
	r = httptest.NewRequest("GET", "/?limit=-1&offset=x", nil)
	p = ParsePagination(r, 50, 200)
	if p.Limit != 50 || p.Offset != 0 {
		t.Fatalf("unexpected defaults %+v", p)
	}
	r = httptest.NewRequest("GET", "/?limit=25&page=3", nil)
	p = ParsePagination(r, 50, 200)
	if p.Limit != 25 || p.Offset != 50 {
		t.Fatalf("unexpected page offset %+v", p)
	}
	r = httptest.NewRequest("GET", "/?page=2&offset=5", nil)
	p = ParsePagination(r, 50, 200)
	if p.Offset != 5 {
		t.Fatalf("explicit offset must win over page, got %+v", p)
	}
}

func TestDecodeJSON(t *testing.T) {
	var body struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"x"}`))
	if err := DecodeJSON(r, &body); err != nil || body.Name != "x" {
		t.Fatalf("decode failed: %v", err)
	}
	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"other":1}`))
	if err := DecodeJSON(r, &body); err == nil {
		t.Fatal("unknown fields must be rejected")
	}
	r = httptest.NewRequest("POST", "/", strings.NewReader(""))
	if err := DecodeJSON(r, &body); err != ErrEmptyBody {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.1.2.3:5555"
	if got := ClientIP(r); got != "10.1.2.3" {
		t.Fatalf("unexpected ip %q", got)
	}
}
