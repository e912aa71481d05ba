package performancehandler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/performance"
	"hrdesk/internal/requestctx"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

type PerformanceService interface {
	CreateGoal(ctx context.Context, session auth.Session, in performance.NewGoal) (performance.Goal, error)
	ListGoals(ctx context.Context, session auth.Session, filter performance.GoalFilter) ([]performance.Goal, error)
	GetGoal(ctx context.Context, session auth.Session, goalID string) (performance.Goal, error)
	UpdateGoalProgress(ctx context.Context, session auth.Session, goalID string, progress int) (performance.Goal, error)
	ToggleMilestone(ctx context.Context, session auth.Session, milestoneID string) (performance.Milestone, error)
	AddGoalComment(ctx context.Context, session auth.Session, goalID, body string) (performance.GoalComment, error)
	Analytics(ctx context.Context, session auth.Session, filter performance.AnalyticsFilter) (performance.Analytics, error)
	ListReviewCategories(ctx context.Context, orgID string, activeOnly bool) ([]performance.ReviewCategory, error)
	CreateReviewCategory(ctx context.Context, orgID string, c performance.ReviewCategory) (performance.ReviewCategory, error)
	CreateReview(ctx context.Context, session auth.Session, in performance.NewReview) (performance.Review, error)
	ListReviews(ctx context.Context, session auth.Session, filter performance.ReviewFilter) ([]performance.Review, error)
	GetReview(ctx context.Context, session auth.Session, reviewID string) (performance.Review, error)
	SaveReview(ctx context.Context, session auth.Session, reviewID string, in performance.ReviewInput, status string) (performance.Review, error)
	Respond(ctx context.Context, session auth.Session, reviewID, comments string) (performance.Review, error)
	Approve(ctx context.Context, session auth.Session, reviewID string) (performance.Review, error)
	ReviewPDF(ctx context.Context, session auth.Session, reviewID string) ([]byte, error)
}

type Handler struct {
	Service PerformanceService
	Perms   middleware.PermissionStore
	Audit   audit.Recorder
}

func NewHandler(service PerformanceService, perms middleware.PermissionStore, auditSvc audit.Recorder) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/performance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPerformanceRead, h.Perms)).Get("/goals", h.handleListGoals)
		r.With(middleware.RequirePermission(auth.PermPerformanceWrite, h.Perms)).Post("/goals", h.handleCreateGoal)
		r.With(middleware.RequirePermission(auth.PermPerformanceRead, h.Perms)).Get("/goals/{goalID}", h.handleGetGoal)
		r.With(middleware.RequirePermission(auth.PermPerformanceWrite, h.Perms)).Put("/goals/{goalID}/progress", h.handleUpdateProgress)
		r.With(middleware.RequirePermission(auth.PermPerformanceWrite, h.Perms)).Post("/goals/{goalID}/comments", h.handleAddGoalComment)
		r.With(middleware.RequirePermission(auth.PermPerformanceWrite, h.Perms)).Put("/milestones/{milestoneID}/toggle", h.handleToggleMilestone)
		r.With(middleware.RequirePermission(auth.PermPerformanceRead, h.Perms)).Get("/review-categories", h.handleListReviewCategories)
		r.With(middleware.RequirePermission(auth.PermPerformanceAdmin, h.Perms)).Post("/review-categories", h.handleCreateReviewCategory)
		r.With(middleware.RequirePermission(auth.PermPerformanceRead, h.Perms)).Get("/reviews", h.handleListReviews)
		r.With(middleware.RequirePermission(auth.PermPerformanceReview, h.Perms)).Post("/reviews", h.handleCreateReview)
		r.With(middleware.RequirePermission(auth.PermPerformanceRead, h.Perms)).Get("/reviews/{reviewID}", h.handleGetReview)
		r.With(middleware.RequirePermission(auth.PermPerformanceReview, h.Perms)).Put("/reviews/{reviewID}", h.handleSaveReview)
		r.With(middleware.RequirePermission(auth.PermPerformanceWrite, h.Perms)).Put("/reviews/{reviewID}/response", h.handleRespond)
		r.With(middleware.RequirePermission(auth.PermPerformanceAdmin, h.Perms)).Post("/reviews/{reviewID}/approve", h.handleApprove)
		r.With(middleware.RequirePermission(auth.PermPerformanceRead, h.Perms)).Get("/reviews/{reviewID}/pdf", h.handleReviewPDF)
		r.With(middleware.RequirePermission(auth.PermPerformanceRead, h.Perms)).Get("/analytics", h.handleAnalytics)
	})
}

func (h *Handler) handleListGoals(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	query := r.URL.Query()
	filter := performance.GoalFilter{
		EmployeeID:   strings.TrimSpace(query.Get("employeeId")),
		DepartmentID: strings.TrimSpace(query.Get("departmentId")),
		Status:       strings.TrimSpace(query.Get("status")),
	}
	validator := shared.NewValidator()
	validator.OneOf("status", filter.Status, []string{performance.GoalNotStarted, performance.GoalInProgress, performance.GoalCompleted}, "must be not_started, in_progress or completed")
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	goals, err := h.Service.ListGoals(r.Context(), session, filter)
	if err != nil {
		writeError(w, r, err, "goal_list_failed", "failed to list goals")
		return
	}
	api.Success(w, goals, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		EmployeeID   string `json:"employeeId"`
		DepartmentID string `json:"departmentId"`
		Title        string `json:"title"`
		Description  string `json:"description"`
		Priority     string `json:"priority"`
		Weight       *int   `json:"weight"`
		StartDate    string `json:"startDate"`
		DueDate      string `json:"dueDate"`
		Milestones   []struct {
			Title   string `json:"title"`
			DueDate string `json:"dueDate"`
		} `json:"milestones"`
	}
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	validator := shared.NewValidator()
	validator.Required("title", payload.Title, "is required")
	validator.MaxLength("title", payload.Title, 200)
	validator.OneOf("priority", payload.Priority, []string{performance.PriorityLow, performance.PriorityMedium, performance.PriorityHigh}, "must be Low, Medium or High")
	if payload.Weight != nil {
		validator.IntRange("weight", *payload.Weight, 0, 100, "must be between 0 and 100")
	}
	startDate := validator.OptionalDate("startDate", payload.StartDate)
	dueDate := validator.OptionalDate("dueDate", payload.DueDate)
	if startDate != nil && dueDate != nil {
		validator.DateOrder("startDate", startDate.Time, "dueDate", dueDate.Time)
	}
	in := performance.NewGoal{
		EmployeeID:   strings.TrimSpace(payload.EmployeeID),
		DepartmentID: strings.TrimSpace(payload.DepartmentID),
		Title:        payload.Title,
		Description:  payload.Description,
		Priority:     payload.Priority,
		Weight:       payload.Weight,
		StartDate:    startDate,
		DueDate:      dueDate,
	}
	for _, m := range payload.Milestones {
		in.Milestones = append(in.Milestones, performance.NewMilestone{
			Title:   m.Title,
			DueDate: validator.OptionalDate("milestones.dueDate", m.DueDate),
		})
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	goal, err := h.Service.CreateGoal(r.Context(), session, in)
	if errors.Is(err, performance.ErrMilestonesFailed) {
		h.record(r, session, "performance.goal.create", audit.EntityGoal, goal.ID, nil, payload)
		api.FailWithDetails(w, http.StatusInternalServerError, "milestones_failed", "goal created but milestones could not be saved", map[string]any{"goalId": goal.ID}, middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		writeError(w, r, err, "goal_create_failed", "failed to create goal")
		return
	}
	h.record(r, session, "performance.goal.create", audit.EntityGoal, goal.ID, nil, payload)
	api.Created(w, goal, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	goal, err := h.Service.GetGoal(r.Context(), session, chi.URLParam(r, "goalID"))
	if err != nil {
		writeError(w, r, err, "goal_get_failed", "failed to load goal")
		return
	}
	api.Success(w, goal, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Progress *int `json:"progressPercentage"`
	}
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Progress == nil {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "progressPercentage", Reason: "is required"}})
		return
	}

	goalID := chi.URLParam(r, "goalID")
	goal, err := h.Service.UpdateGoalProgress(r.Context(), session, goalID, *payload.Progress)
	if err != nil {
		writeError(w, r, err, "goal_update_failed", "failed to update goal progress")
		return
	}
	h.record(r, session, "performance.goal.progress", audit.EntityGoal, goalID, nil, map[string]any{"progressPercentage": goal.Progress, "status": goal.Status})
	api.Success(w, goal, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleToggleMilestone(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	milestoneID := chi.URLParam(r, "milestoneID")
	milestone, err := h.Service.ToggleMilestone(r.Context(), session, milestoneID)
	if err != nil {
		writeError(w, r, err, "milestone_update_failed", "failed to update milestone")
		return
	}
	h.record(r, session, "performance.milestone.toggle", audit.EntityMilestone, milestoneID, nil, map[string]bool{"isCompleted": milestone.IsCompleted})
	api.Success(w, milestone, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddGoalComment(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Body string `json:"body"`
	}
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	validator.Required("body", payload.Body, "is required")
	validator.MaxLength("body", payload.Body, 5000)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	comment, err := h.Service.AddGoalComment(r.Context(), session, chi.URLParam(r, "goalID"), payload.Body)
	if err != nil {
		writeError(w, r, err, "goal_comment_failed", "failed to add goal comment")
		return
	}
	api.Created(w, comment, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListReviewCategories(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	activeOnly := !shared.QueryBool(r, "includeInactive")
	categories, err := h.Service.ListReviewCategories(r.Context(), session.OrganizationID, activeOnly)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "review_category_list_failed", "failed to list review categories", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, categories, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateReviewCategory(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Name         string   `json:"name"`
		Description  string   `json:"description"`
		Weight       *float64 `json:"weight"`
		DisplayOrder int      `json:"displayOrder"`
	}
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	validator.Required("name", payload.Name, "is required")
	validator.MaxLength("name", payload.Name, 100)
	if payload.Weight != nil && *payload.Weight < 0 {
		validator.Add("weight", "must not be negative")
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	category := performance.ReviewCategory{
		Name:         payload.Name,
		Description:  payload.Description,
		Weight:       1,
		DisplayOrder: payload.DisplayOrder,
		IsActive:     true,
	}
	if payload.Weight != nil {
		category.Weight = *payload.Weight
	}
	created, err := h.Service.CreateReviewCategory(r.Context(), session.OrganizationID, category)
	if err != nil {
		writeError(w, r, err, "review_category_create_failed", "failed to create review category")
		return
	}
	h.record(r, session, "performance.review_category.create", audit.EntityReviewCategory, created.ID, nil, created)
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListReviews(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	filter := performance.ReviewFilter{
		EmployeeID: strings.TrimSpace(r.URL.Query().Get("employeeId")),
		Status:     strings.TrimSpace(r.URL.Query().Get("status")),
	}
	validator := shared.NewValidator()
	validator.OneOf("status", filter.Status, []string{performance.ReviewDraft, performance.ReviewInProgress, performance.ReviewCompleted, performance.ReviewApproved}, "must be Draft, In Progress, Completed or Approved")
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	reviews, err := h.Service.ListReviews(r.Context(), session, filter)
	if err != nil {
		writeError(w, r, err, "review_list_failed", "failed to list reviews")
		return
	}
	api.Success(w, reviews, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		EmployeeID  string `json:"employeeId"`
		ReviewType  string `json:"reviewType"`
		PeriodStart string `json:"reviewPeriodStart"`
		PeriodEnd   string `json:"reviewPeriodEnd"`
	}
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	validator.Required("employeeId", payload.EmployeeID, "is required")
	validator.OneOf("reviewType", payload.ReviewType, performance.ReviewTypes, "must be Annual, Mid-Year, Quarterly or Probation")
	start := validator.OptionalDate("reviewPeriodStart", payload.PeriodStart)
	end := validator.OptionalDate("reviewPeriodEnd", payload.PeriodEnd)
	if start != nil && end != nil {
		validator.DateOrder("reviewPeriodStart", start.Time, "reviewPeriodEnd", end.Time)
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	review, err := h.Service.CreateReview(r.Context(), session, performance.NewReview{
		EmployeeID:  strings.TrimSpace(payload.EmployeeID),
		ReviewType:  payload.ReviewType,
		PeriodStart: start,
		PeriodEnd:   end,
	})
	if err != nil {
		writeError(w, r, err, "review_create_failed", "failed to create review")
		return
	}
	h.record(r, session, "performance.review.create", audit.EntityReview, review.ID, nil, payload)
	api.Created(w, review, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetReview(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	review, err := h.Service.GetReview(r.Context(), session, chi.URLParam(r, "reviewID"))
	if err != nil {
		writeError(w, r, err, "review_get_failed", "failed to load review")
		return
	}
	api.Success(w, review, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSaveReview(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Status              string `json:"status"`
		Strengths           string `json:"strengths"`
		AreasForImprovement string `json:"areasForImprovement"`
		Achievements        string `json:"achievements"`
		GoalsForNextPeriod  string `json:"goalsForNextPeriod"`
		ManagerComments     string `json:"managerComments"`
		Ratings             []struct {
			CategoryID string `json:"categoryId"`
			Rating     int    `json:"rating"`
			Comments   string `json:"comments"`
		} `json:"ratings"`
	}
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	validator.Required("status", payload.Status, "is required")
	validator.OneOf("status", payload.Status, []string{performance.ReviewDraft, performance.ReviewInProgress, performance.ReviewCompleted}, "must be Draft, In Progress or Completed")
	input := performance.ReviewInput{
		Strengths:           payload.Strengths,
		AreasForImprovement: payload.AreasForImprovement,
		Achievements:        payload.Achievements,
		GoalsForNextPeriod:  payload.GoalsForNextPeriod,
		ManagerComments:     payload.ManagerComments,
		Ratings:             make(map[string]performance.Rating, len(payload.Ratings)),
	}
	for _, rating := range payload.Ratings {
		if strings.TrimSpace(rating.CategoryID) == "" {
			validator.Add("ratings.categoryId", "is required")
			continue
		}
		validator.IntRange("ratings.rating", rating.Rating, performance.MinRating, performance.MaxRating, "must be between 0 and 5")
		input.Ratings[rating.CategoryID] = performance.Rating{CategoryID: rating.CategoryID, Rating: rating.Rating, Comments: rating.Comments}
	}
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	reviewID := chi.URLParam(r, "reviewID")
	review, err := h.Service.SaveReview(r.Context(), session, reviewID, input, payload.Status)
	if err != nil {
		writeError(w, r, err, "review_save_failed", "failed to save review")
		return
	}
	h.record(r, session, "performance.review.save", audit.EntityReview, reviewID, nil, map[string]any{"status": review.Status, "overallRating": review.OverallRating})
	api.Success(w, review, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRespond(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		EmployeeComments string `json:"employeeComments"`
	}
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	validator.MaxLength("employeeComments", payload.EmployeeComments, 5000)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	reviewID := chi.URLParam(r, "reviewID")
	review, err := h.Service.Respond(r.Context(), session, reviewID, payload.EmployeeComments)
	if err != nil {
		writeError(w, r, err, "review_response_failed", "failed to save review response")
		return
	}
	h.record(r, session, "performance.review.respond", audit.EntityReview, reviewID, nil, nil)
	api.Success(w, review, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	reviewID := chi.URLParam(r, "reviewID")
	review, err := h.Service.Approve(r.Context(), session, reviewID)
	if err != nil {
		writeError(w, r, err, "review_approve_failed", "failed to approve review")
		return
	}
	h.record(r, session, "performance.review.approve", audit.EntityReview, reviewID, map[string]string{"status": performance.ReviewCompleted}, map[string]string{"status": review.Status})
	api.Success(w, review, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReviewPDF(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	reviewID := chi.URLParam(r, "reviewID")
	data, err := h.Service.ReviewPDF(r.Context(), session, reviewID)
	if err != nil {
		writeError(w, r, err, "review_pdf_failed", "failed to render review")
		return
	}
	api.Attachment(w, "application/pdf", "performance_review_"+reviewID+".pdf", data)
}

func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	filter := performance.AnalyticsFilter{
		DepartmentID: strings.TrimSpace(r.URL.Query().Get("departmentId")),
		EmployeeID:   strings.TrimSpace(r.URL.Query().Get("employeeId")),
	}
	analytics, err := h.Service.Analytics(r.Context(), session, filter)
	if err != nil {
		writeError(w, r, err, "analytics_failed", "failed to compute performance analytics")
		return
	}
	api.Success(w, analytics, middleware.GetRequestID(r.Context()))
}

func (h *Handler) record(r *http.Request, session auth.Session, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), session.OrganizationID, session.UserID, action, entityType, entityID, middleware.GetRequestID(r.Context()), shared.ClientIP(r), before, after); err != nil {
		requestctx.Logger(r.Context()).Warn("audit "+action+" failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, performance.ErrGoalNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "goal not found", requestID)
	case errors.Is(err, performance.ErrMilestoneNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "milestone not found", requestID)
	case errors.Is(err, performance.ErrReviewNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "review not found", requestID)
	case errors.Is(err, performance.ErrForbidden),
		errors.Is(err, performance.ErrReviewNotEditable),
		errors.Is(err, performance.ErrCannotRespond):
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), requestID)
	case errors.Is(err, performance.ErrCategoryExists):
		api.Fail(w, http.StatusConflict, "category_exists", "review category already exists", requestID)
	case errors.Is(err, performance.ErrReviewNotCompleted):
		api.Fail(w, http.StatusConflict, "invalid_state", err.Error(), requestID)
	case errors.Is(err, performance.ErrInvalidReviewStatus),
		errors.Is(err, performance.ErrInvalidReviewType),
		errors.Is(err, performance.ErrInvalidRating),
		errors.Is(err, performance.ErrInvalidPeriod),
		errors.Is(err, performance.ErrInvalidWeight),
		errors.Is(err, performance.ErrInvalidPriority),
		errors.Is(err, performance.ErrTitleRequired),
		errors.Is(err, performance.ErrEmptyComment),
		errors.Is(err, performance.ErrEmployeeProfileMissing):
		api.Fail(w, http.StatusBadRequest, "invalid_request", err.Error(), requestID)
	default:
		requestctx.Logger(r.Context()).Error(code, "err", err)
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}
