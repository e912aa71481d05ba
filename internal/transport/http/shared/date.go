package shared

import (
	"strings"
	"time"

	"github.com/oapi-codegen/runtime/types"
)

// ParseDate accepts RFC3339 or YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(types.DateFormat, value)
}

// OptionalDate parses a date-only field; blank yields nil. Failures are
// recorded on v.
func (v *Validator) OptionalDate(field, raw string) *types.Date {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parsed, ok := v.Date(field, raw)
	if !ok {
		return nil
	}
	return &types.Date{Time: time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)}
}
