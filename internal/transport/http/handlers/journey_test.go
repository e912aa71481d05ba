package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"hrdesk/internal/app/server"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		Environment:        "test",
		SessionTTL:         time.Hour,
		RequestTimeout:     15 * time.Second,
		MigrationsDir:      "../../../../migrations",
		SeedOrgName:        "Test Organization",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		EmailFrom:          "no-reply@test.local",
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
	}
}

func startApp(t *testing.T) (*server.App, *httptest.Server, config.Config) {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	t.Cleanup(app.Close)

	ts := httptest.NewServer(app.Router)
	t.Cleanup(ts.Close)
	return app, ts, cfg
}

func TestHelpdeskTicketJourney(t *testing.T) {
	app, ts, cfg := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	employeeEmail := fmt.Sprintf("ticket-%d@example.com", time.Now().UnixNano())
	createEmployeeUser(t, app, cfg, employeeEmail, "Employee123!", auth.RoleEmployee)
	employeeToken := login(t, client, ts.URL, employeeEmail, "Employee123!")

	categoryName := fmt.Sprintf("Travel %d", time.Now().UnixNano())
	category := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/helpdesk/categories", adminToken, map[string]any{
		"name": categoryName,
		"icon": "📢",
	}, http.StatusCreated)
	categoryID := decodeField(t, category, "id")

	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/helpdesk/categories", adminToken, map[string]any{
		"name": categoryName,
	}, http.StatusConflict)

	ticket := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/helpdesk/tickets", employeeToken, map[string]any{
		"subject":     "Reimbursement for conference travel",
		"description": "Receipts attached",
		"categoryId":  categoryID,
		"priority":    "High",
	}, http.StatusCreated)
	ticketID := decodeField(t, ticket, "id")
	if number := decodeField(t, ticket, "ticketNumber"); !strings.HasPrefix(number, "TKT-") {
		t.Fatalf("expected TKT- ticket number, got %q", number)
	}
	if status := decodeField(t, ticket, "status"); status != "Open" {
		t.Fatalf("expected Open, got %q", status)
	}

	doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/helpdesk/tickets/"+ticketID+"/status", employeeToken, map[string]any{
		"status": "Closed",
	}, http.StatusForbidden)

	updated := doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/helpdesk/tickets/"+ticketID+"/status", adminToken, map[string]any{
		"status": "In Progress",
	}, http.StatusOK)
	if status := decodeField(t, updated, "status"); status != "In Progress" {
		t.Fatalf("expected In Progress, got %q", status)
	}

	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/helpdesk/tickets/"+ticketID+"/comments", employeeToken, map[string]any{
		"body": "Any update?",
	}, http.StatusCreated)

	comments := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/helpdesk/tickets/"+ticketID+"/comments", employeeToken, nil, http.StatusOK)
	if n := decodeLen(t, comments); n != 1 {
		t.Fatalf("expected 1 comment, got %d", n)
	}

	history := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/helpdesk/tickets/"+ticketID+"/history", adminToken, nil, http.StatusOK)
	if n := decodeLen(t, history); n < 2 {
		t.Fatalf("expected creation and status entries, got %d", n)
	}

	mine := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/helpdesk/tickets?mine=true", employeeToken, nil, http.StatusOK)
	if n := decodeLen(t, mine); n != 1 {
		t.Fatalf("expected employee to see 1 ticket, got %d", n)
	}

	notifications := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/notifications?unread=true", employeeToken, nil, http.StatusOK)
	if n := decodeLen(t, notifications); n == 0 {
		t.Fatal("expected a status change notification")
	}

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/helpdesk/tickets/export", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv") {
		t.Fatalf("unexpected export response %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(string(raw), "Reimbursement for conference travel") {
		t.Fatalf("expected ticket in export: %s", raw)
	}
}

func TestEmployeeCannotReadOthersTicket(t *testing.T) {
	app, ts, cfg := startApp(t)
	client := ts.Client()

	suffix := time.Now().UnixNano()
	ownerEmail := fmt.Sprintf("owner-%d@example.com", suffix)
	otherEmail := fmt.Sprintf("other-%d@example.com", suffix)
	createEmployeeUser(t, app, cfg, ownerEmail, "Owner123!", auth.RoleEmployee)
	createEmployeeUser(t, app, cfg, otherEmail, "Other123!", auth.RoleEmployee)

	ownerToken := login(t, client, ts.URL, ownerEmail, "Owner123!")
	otherToken := login(t, client, ts.URL, otherEmail, "Other123!")

	ticket := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/helpdesk/tickets", ownerToken, map[string]any{
		"subject": "Payslip question",
	}, http.StatusCreated)
	ticketID := decodeField(t, ticket, "id")

	doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/helpdesk/tickets/"+ticketID, otherToken, nil, http.StatusForbidden)
	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/helpdesk/tickets/"+ticketID+"/comments", otherToken, map[string]any{
		"body": "me too",
	}, http.StatusForbidden)
}

func TestPerformanceReviewJourney(t *testing.T) {
	app, ts, cfg := startApp(t)
	client := ts.Client()

	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	employeeEmail := fmt.Sprintf("review-%d@example.com", time.Now().UnixNano())
	employeeID := createEmployeeUser(t, app, cfg, employeeEmail, "Employee123!", auth.RoleEmployee)
	employeeToken := login(t, client, ts.URL, employeeEmail, "Employee123!")

	goal := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/performance/goals", adminToken, map[string]any{
		"employeeId": employeeID,
		"title":      "Ship onboarding revamp",
		"priority":   "High",
		"startDate":  "2026-01-01",
		"dueDate":    "2026-06-30",
		"milestones": []map[string]any{
			{"title": "Draft plan", "dueDate": "2026-02-01"},
			{"title": "Pilot", "dueDate": "2026-04-01"},
		},
	}, http.StatusCreated)
	goalID := decodeField(t, goal, "id")

	progressed := doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/performance/goals/"+goalID+"/progress", employeeToken, map[string]any{
		"progressPercentage": 100,
	}, http.StatusOK)
	if status := decodeField(t, progressed, "status"); status != "completed" {
		t.Fatalf("expected completed goal, got %q", status)
	}

	categories := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/performance/review-categories", adminToken, nil, http.StatusOK)
	var categoryList []map[string]any
	if err := json.Unmarshal(categories.Data, &categoryList); err != nil {
		t.Fatalf("failed to decode categories: %v", err)
	}
	if len(categoryList) == 0 {
		t.Fatal("expected seeded review categories")
	}

	review := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/performance/reviews", adminToken, map[string]any{
		"employeeId":        employeeID,
		"reviewType":        "Annual",
		"reviewPeriodStart": "2026-01-01",
		"reviewPeriodEnd":   "2026-12-31",
	}, http.StatusCreated)
	reviewID := decodeField(t, review, "id")

	ratings := make([]map[string]any, 0, len(categoryList))
	for _, c := range categoryList {
		ratings = append(ratings, map[string]any{"categoryId": c["id"], "rating": 4})
	}
	saved := doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/performance/reviews/"+reviewID, adminToken, map[string]any{
		"status":    "Completed",
		"strengths": "Clear communicator",
		"ratings":   ratings,
	}, http.StatusOK)
	if status := decodeField(t, saved, "status"); status != "Completed" {
		t.Fatalf("expected Completed, got %q", status)
	}

	doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/performance/reviews/"+reviewID+"/response", employeeToken, map[string]any{
		"employeeComments": "Thanks for the feedback",
	}, http.StatusOK)

	doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/performance/reviews/"+reviewID+"/approve", employeeToken, nil, http.StatusForbidden)
	approved := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/performance/reviews/"+reviewID+"/approve", adminToken, nil, http.StatusOK)
	if status := decodeField(t, approved, "status"); status != "Approved" {
		t.Fatalf("expected Approved, got %q", status)
	}

	doJSON(t, client, http.MethodPut, ts.URL+"/api/v1/performance/reviews/"+reviewID, adminToken, map[string]any{
		"status": "Draft",
	}, http.StatusForbidden)

	analytics := doJSON(t, client, http.MethodGet, ts.URL+"/api/v1/performance/analytics", adminToken, nil, http.StatusOK)
	var payload map[string]any
	if err := json.Unmarshal(analytics.Data, &payload); err != nil {
		t.Fatalf("failed to decode analytics: %v", err)
	}
	if _, ok := payload["distribution"]; !ok {
		t.Fatalf("expected rating distribution in %v", payload)
	}
}

// createEmployeeUser inserts an employee profile with a login directly; the
// API has no account provisioning endpoint.
func createEmployeeUser(t *testing.T, app *server.App, cfg config.Config, email, password, role string) string {
	t.Helper()
	ctx := context.Background()

	var orgID string
	if err := app.DB.QueryRow(ctx, "SELECT id FROM organizations WHERE name = $1", cfg.SeedOrgName).Scan(&orgID); err != nil {
		t.Fatalf("failed to load organization: %v", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	var employeeID string
	if err := app.DB.QueryRow(ctx, `
    INSERT INTO employees (organization_id, first_name, last_name, email)
    VALUES ($1, 'Test', 'Employee', $2)
    RETURNING id
  `, orgID, email).Scan(&employeeID); err != nil {
		t.Fatalf("failed to insert employee: %v", err)
	}
	if _, err := app.DB.Exec(ctx, `
    INSERT INTO users (organization_id, employee_id, email, password_hash, role)
    VALUES ($1, $2, $3, $4, $5)
  `, orgID, employeeID, email, hash, role); err != nil {
		t.Fatalf("failed to insert user: %v", err)
	}
	return employeeID
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	}, http.StatusOK)
	token := decodeField(t, resp, "token")
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any, want int) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, url, want, resp.StatusCode, string(raw))
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func decodeField(t *testing.T, env envelope, field string) string {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	value, _ := payload[field].(string)
	return value
}

func decodeLen(t *testing.T, env envelope) int {
	t.Helper()
	var items []json.RawMessage
	if err := json.Unmarshal(env.Data, &items); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	return len(items)
}
