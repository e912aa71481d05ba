package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"hrdesk/internal/requestctx"
	"hrdesk/internal/transport/http/api"
	"hrdesk/internal/transport/http/shared"
)

// pruneThreshold is the bucket count above which expired buckets are swept.
const pruneThreshold = 4096

type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*fixedWindow)

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(fw *fixedWindow) {
		if fn != nil {
			fw.keyFn = fn
		}
	}
}

// RateLimit applies one fixed window per actor, or per client IP for
// anonymous requests.
func RateLimit(limit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	fw := newFixedWindow(limit, window, actorOrIPKey)
	for _, opt := range opts {
		opt(fw)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if fw.allow(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

type sensitiveScope int

const (
	scopeNone sensitiveScope = iota
	scopeAuth
	scopeActor
)

// sensitiveRoute matches API paths segment by segment; "*" matches any one
// segment.
type sensitiveRoute struct {
	pattern string
	scope   sensitiveScope
}

var sensitiveRoutes = []sensitiveRoute{
	{pattern: "/auth/login", scope: scopeAuth},
	{pattern: "/helpdesk/tickets", scope: scopeActor},
	{pattern: "/helpdesk/categories", scope: scopeActor},
	{pattern: "/helpdesk/tickets/*/assignee", scope: scopeActor},
	{pattern: "/performance/reviews", scope: scopeActor},
	{pattern: "/performance/review-categories", scope: scopeActor},
	{pattern: "/performance/reviews/*/approve", scope: scopeActor},
}

// SensitiveMutationRateLimit adds tighter limits on login and on writes that
// create records or change approval state. Logins are limited by IP and by
// submitted email; other writes by actor.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	authLimit := max(baseLimit/4, 1)
	mutationLimit := max(baseLimit/2, 1)
	loginByIP := newFixedWindow(authLimit, window, clientIPKey)
	loginByEmail := newFixedWindow(authLimit, window, AuthEmailOrIPKey("email"))
	writesByActor := newFixedWindow(mutationLimit, window, actorOrIPKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch sensitiveRateScope(r) {
			case scopeAuth:
				if !loginByIP.allow(w, r) || !loginByEmail.allow(w, r) {
					return
				}
			case scopeActor:
				if !writesByActor.allow(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthEmailOrIPKey keys on the lower-cased JSON body field, falling back to
// the client IP when the body has none.
func AuthEmailOrIPKey(field string) RateLimitKeyFunc {
	field = strings.TrimSpace(field)
	if field == "" {
		field = "email"
	}
	return func(r *http.Request) string {
		value := peekJSONField(r, field)
		if value == "" {
			return clientIPKey(r)
		}
		return "email:" + strings.ToLower(value)
	}
}

func actorOrIPKey(r *http.Request) string {
	if session, ok := GetSession(r.Context()); ok && session.UserID != "" {
		return "user:" + session.OrganizationID + ":" + session.UserID
	}
	return clientIPKey(r)
}

func clientIPKey(r *http.Request) string {
	return "ip:" + shared.ClientIP(r)
}

type bucket struct {
	count int
	reset time.Time
}

type fixedWindow struct {
	mu      sync.Mutex
	limit   int
	period  time.Duration
	keyFn   RateLimitKeyFunc
	buckets map[string]*bucket
}

func newFixedWindow(limit int, period time.Duration, keyFn RateLimitKeyFunc) *fixedWindow {
	if keyFn == nil {
		keyFn = actorOrIPKey
	}
	return &fixedWindow{
		limit:   limit,
		period:  period,
		keyFn:   keyFn,
		buckets: map[string]*bucket{},
	}
}

// take counts one hit against key and reports the state of its window.
func (fw *fixedWindow) take(key string, now time.Time) (remaining int, reset time.Time, ok bool) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if len(fw.buckets) > pruneThreshold {
		for k, b := range fw.buckets {
			if now.After(b.reset) {
				delete(fw.buckets, k)
			}
		}
	}

	win, found := fw.buckets[key]
	if !found || now.After(win.reset) {
		win = &bucket{reset: now.Add(fw.period)}
		fw.buckets[key] = win
	}
	win.count++
	return fw.limit - win.count, win.reset, win.count <= fw.limit
}

func (fw *fixedWindow) allow(w http.ResponseWriter, r *http.Request) bool {
	if fw.limit <= 0 {
		return true
	}
	key := fw.keyFn(r)
	if key == "" {
		key = clientIPKey(r)
	}

	now := time.Now()
	remaining, reset, ok := fw.take(key, now)
	resetIn := ceilSeconds(reset.Sub(now))

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(fw.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
	h.Set("X-RateLimit-Reset", strconv.Itoa(resetIn))
	if ok {
		return true
	}

	h.Set("Retry-After", strconv.Itoa(max(resetIn, 1)))
	requestctx.Logger(r.Context()).Warn("rate limit exceeded",
		"key", key,
		"method", r.Method,
		"path", r.URL.Path,
		"limit", fw.limit,
		"windowSec", int(fw.period.Seconds()),
	)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// peekJSONField reads a string field from a JSON body and restores the body
// for the next handler.
func peekJSONField(r *http.Request, field string) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	var value string
	if err := json.Unmarshal(payload[field], &value); err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

func sensitiveRateScope(r *http.Request) sensitiveScope {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return scopeNone
	}
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1"), "/")
	for _, route := range sensitiveRoutes {
		if matchSegments(strings.Trim(route.pattern, "/"), path) {
			return route.scope
		}
	}
	return scopeNone
}

func matchSegments(pattern, path string) bool {
	want := strings.Split(pattern, "/")
	got := strings.Split(path, "/")
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != "*" && want[i] != got[i] {
			return false
		}
	}
	return true
}
