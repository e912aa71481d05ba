package helpdeskhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/helpdesk"
	"hrdesk/internal/requestctx"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/middleware"
	"hrdesk/internal/transport/http/shared"
)

const createTicketEndpoint = "helpdesk.tickets.create"

type TicketService interface {
	CreateTicket(ctx context.Context, session auth.Session, in helpdesk.NewTicket) (helpdesk.Ticket, error)
	ListTickets(ctx context.Context, session auth.Session, filter helpdesk.TicketFilter) ([]helpdesk.Ticket, int, error)
	GetTicket(ctx context.Context, session auth.Session, ticketID string) (helpdesk.Ticket, error)
	ChangeStatus(ctx context.Context, session auth.Session, ticketID, newStatus string) (helpdesk.Ticket, error)
	Assign(ctx context.Context, session auth.Session, ticketID, assigneeID string) (helpdesk.Ticket, error)
	AddComment(ctx context.Context, session auth.Session, ticketID, body string) (helpdesk.Comment, error)
	ListComments(ctx context.Context, session auth.Session, ticketID string) ([]helpdesk.Comment, error)
	ListHistory(ctx context.Context, session auth.Session, ticketID string) ([]helpdesk.HistoryEntry, error)
	ListCategories(ctx context.Context, orgID string) ([]helpdesk.Category, error)
	CreateCategory(ctx context.Context, orgID, name, icon string) (helpdesk.Category, error)
	DeleteCategory(ctx context.Context, orgID, categoryID string) error
	Stats(ctx context.Context, session auth.Session) (helpdesk.Stats, error)
	Export(ctx context.Context, session auth.Session, filter helpdesk.TicketFilter) ([]byte, string, error)
}

type IdempotencyStore interface {
	Check(ctx context.Context, orgID, userID, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, orgID, userID, endpoint, key, requestHash string, response json.RawMessage) error
}

type Handler struct {
	Service     TicketService
	Perms       middleware.PermissionStore
	Audit       audit.Recorder
	Idempotency IdempotencyStore
}

func NewHandler(service TicketService, perms middleware.PermissionStore, auditSvc audit.Recorder, idem IdempotencyStore) *Handler {
	return &Handler{Service: service, Perms: perms, Audit: auditSvc, Idempotency: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/helpdesk", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermHelpdeskRead, h.Perms)).Get("/categories", h.handleListCategories)
		r.With(middleware.RequirePermission(auth.PermHelpdeskManage, h.Perms)).Post("/categories", h.handleCreateCategory)
		r.With(middleware.RequirePermission(auth.PermHelpdeskManage, h.Perms)).Delete("/categories/{categoryID}", h.handleDeleteCategory)
		r.With(middleware.RequirePermission(auth.PermHelpdeskRead, h.Perms)).Get("/stats", h.handleStats)
		r.With(middleware.RequirePermission(auth.PermHelpdeskRead, h.Perms)).Get("/tickets", h.handleListTickets)
		r.With(middleware.RequirePermission(auth.PermHelpdeskWrite, h.Perms)).Post("/tickets", h.handleCreateTicket)
		r.With(middleware.RequirePermission(auth.PermHelpdeskRead, h.Perms)).Get("/tickets/export", h.handleExport)
		r.With(middleware.RequirePermission(auth.PermHelpdeskRead, h.Perms)).Get("/tickets/{ticketID}", h.handleGetTicket)
		r.With(middleware.RequirePermission(auth.PermHelpdeskManage, h.Perms)).Put("/tickets/{ticketID}/status", h.handleChangeStatus)
		r.With(middleware.RequirePermission(auth.PermHelpdeskManage, h.Perms)).Put("/tickets/{ticketID}/assignee", h.handleAssign)
		r.With(middleware.RequirePermission(auth.PermHelpdeskRead, h.Perms)).Get("/tickets/{ticketID}/comments", h.handleListComments)
		r.With(middleware.RequirePermission(auth.PermHelpdeskWrite, h.Perms)).Post("/tickets/{ticketID}/comments", h.handleAddComment)
		r.With(middleware.RequirePermission(auth.PermHelpdeskRead, h.Perms)).Get("/tickets/{ticketID}/history", h.handleListHistory)
	})
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	categories, err := h.Service.ListCategories(r.Context(), session.OrganizationID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "category_list_failed", "failed to list categories", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, categories, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Name string `json:"name"`
		Icon string `json:"icon"`
	}
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	validator.Required("name", payload.Name, "is required")
	validator.MaxLength("name", payload.Name, 100)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	category, err := h.Service.CreateCategory(r.Context(), session.OrganizationID, payload.Name, payload.Icon)
	if err != nil {
		writeError(w, r, err, "category_create_failed", "failed to create category")
		return
	}
	h.record(r, session, "helpdesk.category.create", audit.EntityTicketCategory, category.ID, nil, category)
	api.Created(w, category, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	categoryID := chi.URLParam(r, "categoryID")
	if err := h.Service.DeleteCategory(r.Context(), session.OrganizationID, categoryID); err != nil {
		writeError(w, r, err, "category_delete_failed", "failed to delete category")
		return
	}
	h.record(r, session, "helpdesk.category.delete", audit.EntityTicketCategory, categoryID, nil, nil)
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListTickets(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	filter, ok := parseTicketFilter(w, r, session)
	if !ok {
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	filter.Limit = page.Limit
	filter.Offset = page.Offset

	tickets, total, err := h.Service.ListTickets(r.Context(), session, filter)
	if err != nil {
		writeError(w, r, err, "ticket_list_failed", "failed to list tickets")
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, tickets, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	idempotencyKey := strings.TrimSpace(r.Header.Get(middleware.IdempotencyHeader))
	requestHash := middleware.RequestHash(raw)
	if idempotencyKey != "" && h.Idempotency != nil {
		stored, found, err := h.Idempotency.Check(r.Context(), session.OrganizationID, session.UserID, createTicketEndpoint, idempotencyKey, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key reused with a different payload", middleware.GetRequestID(r.Context()))
			return
		}
		if err != nil {
			requestctx.Logger(r.Context()).Warn("idempotency check failed", "endpoint", createTicketEndpoint, "err", err)
		}
		if found {
			var replay helpdesk.Ticket
			if err := json.Unmarshal(stored, &replay); err == nil {
				api.Created(w, replay, middleware.GetRequestID(r.Context()))
				return
			}
			requestctx.Logger(r.Context()).Warn("idempotency replay decode failed", "endpoint", createTicketEndpoint)
		}
	}

	var payload struct {
		Subject     string `json:"subject"`
		Description string `json:"description"`
		CategoryID  string `json:"categoryId"`
		Priority    string `json:"priority"`
		DueDate     string `json:"dueDate"`
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	validator := shared.NewValidator()
	validator.Required("subject", payload.Subject, "is required")
	validator.MaxLength("subject", payload.Subject, 200)
	validator.OneOf("priority", payload.Priority, helpdesk.Priorities, "must be Low, Medium or High")
	dueDate := validator.OptionalDate("dueDate", payload.DueDate)
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	ticket, err := h.Service.CreateTicket(r.Context(), session, helpdesk.NewTicket{
		Subject:     payload.Subject,
		Description: payload.Description,
		CategoryID:  strings.TrimSpace(payload.CategoryID),
		Priority:    payload.Priority,
		DueDate:     dueDate,
	})
	if err != nil {
		writeError(w, r, err, "ticket_create_failed", "failed to create ticket")
		return
	}

	h.record(r, session, "helpdesk.ticket.create", audit.EntityTicket, ticket.ID, nil, ticket)
	if idempotencyKey != "" && h.Idempotency != nil {
		encoded, err := json.Marshal(ticket)
		if err != nil {
			requestctx.Logger(r.Context()).Warn("idempotency response marshal failed", "err", err)
		} else if err := h.Idempotency.Save(r.Context(), session.OrganizationID, session.UserID, createTicketEndpoint, idempotencyKey, requestHash, encoded); err != nil {
			requestctx.Logger(r.Context()).Warn("idempotency save failed", "endpoint", createTicketEndpoint, "err", err)
		}
	}
	api.Created(w, ticket, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	ticket, err := h.Service.GetTicket(r.Context(), session, chi.URLParam(r, "ticketID"))
	if err != nil {
		writeError(w, r, err, "ticket_get_failed", "failed to load ticket")
		return
	}
	api.Success(w, ticket, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	validator := shared.NewValidator()
	validator.Required("status", payload.Status, "is required")
	validator.OneOf("status", payload.Status, helpdesk.Statuses, "must be one of Open, In Progress, Resolved, Closed")
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	ticketID := chi.URLParam(r, "ticketID")
	ticket, err := h.Service.ChangeStatus(r.Context(), session, ticketID, payload.Status)
	if err != nil {
		writeError(w, r, err, "ticket_status_failed", "failed to update ticket status")
		return
	}
	h.record(r, session, "helpdesk.ticket.status", audit.EntityTicket, ticketID, nil, payload)
	api.Success(w, ticket, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		AssigneeID *string `json:"assigneeId"`
	}
	if err := shared.DecodeJSON(r, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	assigneeID := ""
	if payload.AssigneeID != nil {
		assigneeID = *payload.AssigneeID
	}

	ticketID := chi.URLParam(r, "ticketID")
	ticket, err := h.Service.Assign(r.Context(), session, ticketID, assigneeID)
	if err != nil {
		writeError(w, r, err, "ticket_assign_failed", "failed to assign ticket")
		return
	}
	h.record(r, session, "helpdesk.ticket.assign", audit.EntityTicket, ticketID, nil, map[string]string{"assigneeId": assigneeID})
	api.Success(w, ticket, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	comments, err := h.Service.ListComments(r.Context(), session, chi.URLParam(r, "ticketID"))
	if err != nil {
		writeError(w, r, err, "comment_list_failed", "failed to list comments")
		return
	}
	api.Success(w, comments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
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

	comment, err := h.Service.AddComment(r.Context(), session, chi.URLParam(r, "ticketID"), payload.Body)
	if err != nil {
		writeError(w, r, err, "comment_create_failed", "failed to add comment")
		return
	}
	api.Created(w, comment, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListHistory(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	history, err := h.Service.ListHistory(r.Context(), session, chi.URLParam(r, "ticketID"))
	if err != nil {
		writeError(w, r, err, "history_list_failed", "failed to list ticket history")
		return
	}
	api.Success(w, history, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	stats, err := h.Service.Stats(r.Context(), session)
	if err != nil {
		writeError(w, r, err, "ticket_stats_failed", "failed to compute ticket stats")
		return
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	filter, ok := parseTicketFilter(w, r, session)
	if !ok {
		return
	}
	data, filename, err := h.Service.Export(r.Context(), session, filter)
	if err != nil {
		writeError(w, r, err, "ticket_export_failed", "failed to export tickets")
		return
	}
	api.Attachment(w, "text/csv; charset=utf-8", filename, data)
}

func parseTicketFilter(w http.ResponseWriter, r *http.Request, session auth.Session) (helpdesk.TicketFilter, bool) {
	query := r.URL.Query()
	filter := helpdesk.TicketFilter{
		Status:   strings.TrimSpace(query.Get("status")),
		Priority: strings.TrimSpace(query.Get("priority")),
		Query:    strings.TrimSpace(query.Get("q")),
	}
	validator := shared.NewValidator()
	validator.OneOf("status", filter.Status, helpdesk.Statuses, "must be one of Open, In Progress, Resolved, Closed")
	validator.OneOf("priority", filter.Priority, helpdesk.Priorities, "must be Low, Medium or High")
	if validator.Reject(w, middleware.GetRequestID(r.Context())) {
		return filter, false
	}
	if shared.QueryBool(r, "mine") {
		filter.CreatedBy = session.EmployeeID
	}
	if shared.QueryBool(r, "assignedToMe") {
		filter.AssignedTo = session.EmployeeID
	}
	return filter, true
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
	case errors.Is(err, helpdesk.ErrTicketNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "ticket not found", requestID)
	case errors.Is(err, helpdesk.ErrCategoryNotFound):
		api.Fail(w, http.StatusNotFound, "category_not_found", "category not found", requestID)
	case errors.Is(err, helpdesk.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", requestID)
	case errors.Is(err, helpdesk.ErrAssigneeNotFound):
		api.Fail(w, http.StatusBadRequest, "assignee_not_found", err.Error(), requestID)
	case errors.Is(err, helpdesk.ErrCategoryExists):
		api.Fail(w, http.StatusConflict, "category_exists", "category already exists", requestID)
	case errors.Is(err, helpdesk.ErrInvalidStatus),
		errors.Is(err, helpdesk.ErrInvalidPriority),
		errors.Is(err, helpdesk.ErrEmptyComment),
		errors.Is(err, helpdesk.ErrSubjectRequired),
		errors.Is(err, helpdesk.ErrEmployeeProfileMissing):
		api.Fail(w, http.StatusBadRequest, "invalid_request", err.Error(), requestID)
	default:
		requestctx.Logger(r.Context()).Error(code, "err", err)
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}
