package auth

import "context"

// Session is the authenticated caller, carried explicitly on the request
// context from sign-in until sign-out.
type Session struct {
	UserID         string `json:"userId"`
	OrganizationID string `json:"organizationId"`
	EmployeeID     string `json:"employeeId,omitempty"`
	Role           string `json:"role"`
	SessionID      string `json:"-"`
}

func (s Session) IsAdmin() bool {
	return IsAdmin(s.Role)
}

type sessionKey struct{}

func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func SessionFrom(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(Session)
	return session, ok
}
