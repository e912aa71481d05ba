package handlers_test

import (
	"net/http"
	"testing"
)

func TestMutatingEndpointsReturnValidationErrors(t *testing.T) {
	_, ts, cfg := startApp(t)
	client := ts.Client()
	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)

	ticketResp := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/helpdesk/tickets", adminToken, map[string]any{
		"subject":  "",
		"priority": "urgent",
		"dueDate":  "tomorrow",
	}, http.StatusBadRequest)
	assertValidationErrorField(t, ticketResp, "subject")
	assertValidationErrorField(t, ticketResp, "priority")
	assertValidationErrorField(t, ticketResp, "dueDate")

	goalResp := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/performance/goals", adminToken, map[string]any{
		"title":     "",
		"weight":    150,
		"startDate": "2026-04-10",
		"dueDate":   "2026-04-01",
	}, http.StatusBadRequest)
	assertValidationErrorField(t, goalResp, "title")
	assertValidationErrorField(t, goalResp, "weight")
	assertValidationErrorField(t, goalResp, "dueDate")

	reviewResp := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/performance/reviews", adminToken, map[string]any{
		"employeeId":        "",
		"reviewType":        "Weekly",
		"reviewPeriodStart": "2026-12-31",
		"reviewPeriodEnd":   "2026-01-01",
	}, http.StatusBadRequest)
	assertValidationErrorField(t, reviewResp, "employeeId")
	assertValidationErrorField(t, reviewResp, "reviewType")

	categoryResp := doJSON(t, client, http.MethodPost, ts.URL+"/api/v1/helpdesk/categories", adminToken, map[string]any{
		"name": "  ",
	}, http.StatusBadRequest)
	assertValidationErrorField(t, categoryResp, "name")
}

func envelopeErrorCode(env envelope) string {
	errMap, ok := env.Error.(map[string]any)
	if !ok {
		return ""
	}
	code, _ := errMap["code"].(string)
	return code
}

func assertValidationErrorField(t *testing.T, env envelope, field string) {
	t.Helper()
	if code := envelopeErrorCode(env); code != "validation_error" {
		t.Fatalf("expected validation_error, got %+v", env.Error)
	}
	errMap, ok := env.Error.(map[string]any)
	if !ok {
		t.Fatalf("expected error object, got %T", env.Error)
	}
	details, ok := errMap["details"].(map[string]any)
	if !ok {
		t.Fatalf("expected details object, got %+v", errMap["details"])
	}
	fieldsRaw, ok := details["fields"].([]any)
	if !ok {
		t.Fatalf("expected details.fields array, got %+v", details["fields"])
	}
	for _, item := range fieldsRaw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if value, _ := entry["field"].(string); value == field {
			return
		}
	}
	t.Fatalf("expected validation field %q in %+v", field, fieldsRaw)
}
