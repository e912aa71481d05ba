package performancehandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/performance"
	"hrdesk/internal/transport/http/api"
)

type fakeService struct {
	goals        map[string]performance.Goal
	reviews      map[string]performance.Review
	createdGoals []performance.NewGoal
	savedInput   performance.ReviewInput
	savedStatus  string
	milestoneErr error
}

func newFakeService() *fakeService {
	reviewer := "e2"
	return &fakeService{
		goals: map[string]performance.Goal{"g1": {ID: "g1", EmployeeID: "e1", Status: performance.GoalInProgress, Progress: 40}},
		reviews: map[string]performance.Review{
			"r1": {ID: "r1", EmployeeID: "e1", ReviewerID: &reviewer, Status: performance.ReviewCompleted},
			"r2": {ID: "r2", EmployeeID: "e1", ReviewerID: &reviewer, Status: performance.ReviewDraft},
		},
	}
}

func (f *fakeService) CreateGoal(_ context.Context, _ auth.Session, in performance.NewGoal) (performance.Goal, error) {
	f.createdGoals = append(f.createdGoals, in)
	if f.milestoneErr != nil {
		return performance.Goal{ID: "g-new"}, fmt.Errorf("%w: %v", performance.ErrMilestonesFailed, f.milestoneErr)
	}
	return performance.Goal{ID: "g-new", Title: in.Title, Status: performance.GoalNotStarted}, nil
}

func (f *fakeService) ListGoals(context.Context, auth.Session, performance.GoalFilter) ([]performance.Goal, error) {
	return []performance.Goal{f.goals["g1"]}, nil
}

func (f *fakeService) GetGoal(_ context.Context, _ auth.Session, goalID string) (performance.Goal, error) {
	goal, ok := f.goals[goalID]
	if !ok {
		return performance.Goal{}, performance.ErrGoalNotFound
	}
	return goal, nil
}

func (f *fakeService) UpdateGoalProgress(_ context.Context, _ auth.Session, goalID string, progress int) (performance.Goal, error) {
	goal, ok := f.goals[goalID]
	if !ok {
		return performance.Goal{}, performance.ErrGoalNotFound
	}
	result := performance.ApplyProgress(goal.Status, progress, goal.UpdatedAt)
	goal.Progress = result.Progress
	goal.Status = result.Status
	return goal, nil
}

func (f *fakeService) ToggleMilestone(_ context.Context, _ auth.Session, milestoneID string) (performance.Milestone, error) {
	if milestoneID != "m1" {
		return performance.Milestone{}, performance.ErrMilestoneNotFound
	}
	return performance.Milestone{ID: "m1", IsCompleted: true}, nil
}

func (f *fakeService) AddGoalComment(_ context.Context, _ auth.Session, goalID, body string) (performance.GoalComment, error) {
	return performance.GoalComment{ID: "c1", GoalID: goalID, Body: body}, nil
}

func (f *fakeService) Analytics(context.Context, auth.Session, performance.AnalyticsFilter) (performance.Analytics, error) {
	return performance.BuildAnalytics([]string{performance.GoalCompleted, performance.GoalInProgress}, []float64{4.6}), nil
}

func (f *fakeService) ListReviewCategories(context.Context, string, bool) ([]performance.ReviewCategory, error) {
	return []performance.ReviewCategory{{ID: "k1", Name: "Quality", Weight: 1}}, nil
}

func (f *fakeService) CreateReviewCategory(_ context.Context, _ string, c performance.ReviewCategory) (performance.ReviewCategory, error) {
	c.ID = "k2"
	return c, nil
}

func (f *fakeService) CreateReview(_ context.Context, _ auth.Session, in performance.NewReview) (performance.Review, error) {
	return performance.Review{ID: "r-new", EmployeeID: in.EmployeeID, ReviewType: in.ReviewType, Status: performance.ReviewDraft}, nil
}

func (f *fakeService) ListReviews(context.Context, auth.Session, performance.ReviewFilter) ([]performance.Review, error) {
	return []performance.Review{f.reviews["r1"]}, nil
}

func (f *fakeService) GetReview(_ context.Context, session auth.Session, reviewID string) (performance.Review, error) {
	review, ok := f.reviews[reviewID]
	if !ok {
		return performance.Review{}, performance.ErrReviewNotFound
	}
	if !session.IsAdmin() && session.EmployeeID != review.EmployeeID && session.EmployeeID != *review.ReviewerID {
		return performance.Review{}, performance.ErrForbidden
	}
	return review, nil
}

func (f *fakeService) SaveReview(_ context.Context, session auth.Session, reviewID string, in performance.ReviewInput, status string) (performance.Review, error) {
	review, ok := f.reviews[reviewID]
	if !ok {
		return performance.Review{}, performance.ErrReviewNotFound
	}
	if !auth.IsEditable(auth.IsReviewer(session, *review.ReviewerID), review.Status) {
		return performance.Review{}, performance.ErrReviewNotEditable
	}
	f.savedInput = in
	f.savedStatus = status
	review.Status = status
	return review, nil
}

func (f *fakeService) Respond(_ context.Context, session auth.Session, reviewID, comments string) (performance.Review, error) {
	review := f.reviews[reviewID]
	if !auth.CanRespond(auth.IsReviewee(session, review.EmployeeID), review.Status) {
		return performance.Review{}, performance.ErrCannotRespond
	}
	review.EmployeeComments = comments
	return review, nil
}

func (f *fakeService) Approve(_ context.Context, session auth.Session, reviewID string) (performance.Review, error) {
	review := f.reviews[reviewID]
	if review.Status != performance.ReviewCompleted {
		return performance.Review{}, performance.ErrReviewNotCompleted
	}
	review.Status = performance.ReviewApproved
	return review, nil
}

func (f *fakeService) ReviewPDF(context.Context, auth.Session, string) ([]byte, error) {
	return []byte("%PDF-1.3"), nil
}

var (
	employee = auth.Session{UserID: "u1", OrganizationID: "o1", EmployeeID: "e1", Role: auth.RoleEmployee}
	manager  = auth.Session{UserID: "u2", OrganizationID: "o1", EmployeeID: "e2", Role: auth.RoleManager}
	hrAdmin  = auth.Session{UserID: "u3", OrganizationID: "o1", EmployeeID: "e3", Role: auth.RoleHR}
)

func do(t *testing.T, service *fakeService, session auth.Session, method, path, body string) (*httptest.ResponseRecorder, api.Envelope) {
	t.Helper()
	router := chi.NewRouter()
	NewHandler(service, auth.StaticPermissions{}, nil).RegisterRoutes(router)

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req = req.WithContext(auth.WithSession(req.Context(), session))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var env api.Envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
	}
	return rec, env
}

func TestCreateGoalValidation(t *testing.T) {
	service := newFakeService()
	rec, env := do(t, service, employee, http.MethodPost, "/performance/goals", `{"title":"","startDate":"2025-05-01","dueDate":"2025-04-01"}`)
	if rec.Code != http.StatusBadRequest || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation_error, got %d", rec.Code)
	}
	if len(service.createdGoals) != 0 {
		t.Fatal("invalid goal must not reach the service")
	}
}

func TestCreateGoalWithMilestones(t *testing.T) {
	service := newFakeService()
	body := `{"title":"Ship v2","priority":"High","weight":30,"milestones":[{"title":"Design","dueDate":"2025-02-01"},{"title":"Build"}]}`
	rec, env := do(t, service, employee, http.MethodPost, "/performance/goals", body)
	if rec.Code != http.StatusCreated || !env.Success {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	got := service.createdGoals[0]
	if len(got.Milestones) != 2 || got.Milestones[0].DueDate == nil || got.Milestones[1].DueDate != nil {
		t.Fatalf("unexpected milestones %+v", got.Milestones)
	}
	if got.Weight == nil || *got.Weight != 30 {
		t.Fatalf("unexpected weight %v", got.Weight)
	}
}

func TestCreateGoalMilestoneFailureReportsGoalID(t *testing.T) {
	service := newFakeService()
	service.milestoneErr = fmt.Errorf("batch failed")
	rec, env := do(t, service, employee, http.MethodPost, "/performance/goals", `{"title":"Ship","milestones":[{"title":"A"}]}`)
	if rec.Code != http.StatusInternalServerError || env.Error.Code != "milestones_failed" {
		t.Fatalf("expected milestones_failed, got %d", rec.Code)
	}
	details, _ := env.Error.Details.(map[string]any)
	if details["goalId"] != "g-new" {
		t.Fatalf("expected goal id in details, got %+v", env.Error.Details)
	}
}

func TestUpdateProgress(t *testing.T) {
	service := newFakeService()
	rec, env := do(t, service, employee, http.MethodPut, "/performance/goals/g1/progress", `{"progressPercentage":100}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, _ := env.Data.(map[string]any)
	if data["status"] != performance.GoalCompleted {
		t.Fatalf("expected completed goal, got %+v", data)
	}

	rec, _ = do(t, service, employee, http.MethodPut, "/performance/goals/g1/progress", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without progress, got %d", rec.Code)
	}
	rec, _ = do(t, service, employee, http.MethodPut, "/performance/goals/missing/progress", `{"progressPercentage":10}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestToggleMilestone(t *testing.T) {
	service := newFakeService()
	rec, _ := do(t, service, employee, http.MethodPut, "/performance/milestones/m1/toggle", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec, _ = do(t, service, employee, http.MethodPut, "/performance/milestones/nope/toggle", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSaveReview(t *testing.T) {
	service := newFakeService()
	body := `{"status":"Completed","strengths":"Ownership","ratings":[{"categoryId":"k1","rating":4,"comments":"solid"}]}`

	rec, _ := do(t, service, employee, http.MethodPut, "/performance/reviews/r2", body)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("employee lacks review permission, got %d", rec.Code)
	}

	rec, _ = do(t, service, manager, http.MethodPut, "/performance/reviews/r2", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if service.savedStatus != performance.ReviewCompleted || service.savedInput.Ratings["k1"].Rating != 4 {
		t.Fatalf("unexpected save %q %+v", service.savedStatus, service.savedInput)
	}

	rec, _ = do(t, service, manager, http.MethodPut, "/performance/reviews/r1", body)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("completed review must not be editable, got %d", rec.Code)
	}

	rec, env := do(t, service, manager, http.MethodPut, "/performance/reviews/r2", `{"status":"Approved","ratings":[{"categoryId":"k1","rating":9}]}`)
	if rec.Code != http.StatusBadRequest || env.Error.Code != "validation_error" {
		t.Fatalf("expected validation error, got %d", rec.Code)
	}
}

func TestRespondAndApprove(t *testing.T) {
	service := newFakeService()

	rec, _ := do(t, service, employee, http.MethodPut, "/performance/reviews/r1/response", `{"employeeComments":"Thanks"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec, _ = do(t, service, employee, http.MethodPut, "/performance/reviews/r2/response", `{"employeeComments":"Early"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("draft review cannot be answered, got %d", rec.Code)
	}

	rec, _ = do(t, service, manager, http.MethodPost, "/performance/reviews/r1/approve", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("manager cannot approve, got %d", rec.Code)
	}
	rec, env := do(t, service, hrAdmin, http.MethodPost, "/performance/reviews/r1/approve", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, _ := env.Data.(map[string]any)
	if data["status"] != performance.ReviewApproved {
		t.Fatalf("expected approved, got %+v", data)
	}
	rec, _ = do(t, service, hrAdmin, http.MethodPost, "/performance/reviews/r2/approve", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("draft cannot be approved, got %d", rec.Code)
	}
}

func TestReviewPDF(t *testing.T) {
	rec, _ := do(t, newFakeService(), employee, http.MethodGet, "/performance/reviews/r1/pdf", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("expected pdf, got %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
}

func TestAnalytics(t *testing.T) {
	rec, env := do(t, newFakeService(), hrAdmin, http.MethodGet, "/performance/analytics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, _ := env.Data.(map[string]any)
	if data["completionRate"] != float64(50) {
		t.Fatalf("unexpected analytics %+v", data)
	}
}
