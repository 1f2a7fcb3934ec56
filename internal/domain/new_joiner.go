package domain

import (
	"strings"
	"time"
)

// NewJoiner is an onboarding record.
// Не зависит от Gin, Postgres, Redis.
type NewJoiner struct {
	ID          int64
	FullName    string
	Email       string // normalized, see NormalizeEmail
	Department  *string
	ManagerName *string
	StartDate   time.Time // UTC midnight

	CreatedAt          time.Time
	WelcomeEmailSentAt *time.Time
	LastSendError      *string
}

// NormalizeEmail lower-cases and trims an address for equality comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DateOnly drops the time component, keeping the calendar date as seen in t's location.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
