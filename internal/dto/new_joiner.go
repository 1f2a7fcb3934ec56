package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date parses startDate from JSON as either date-only ("2006-01-02") or RFC3339.
// The time component is always dropped; the calendar date is kept as written.
type Date struct{ t time.Time }

// NewDate wraps t, dropping its time component.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.t = time.Time{}
		return nil
	}
	s := strings.TrimSpace(*raw)
	layouts := []string{
		dateLayout,
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			*d = NewDate(parsed)
			return nil
		}
	}
	return fmt.Errorf("startDate: use date (YYYY-MM-DD) or RFC3339 datetime")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.t.Format(dateLayout))
}

// Time returns the date as UTC midnight, or the zero time if unset.
func (d Date) Time() time.Time { return d.t }

// CreateNewJoinerRequest is the JSON body for POST /api/new-joiners.
// Field rules are enforced by the service so that blank-after-trim values are caught.
type CreateNewJoinerRequest struct {
	FullName    string  `json:"fullName"`
	Email       string  `json:"email"`
	Department  *string `json:"department"`
	ManagerName *string `json:"managerName"`
	StartDate   Date    `json:"startDate"`
}

// NewJoinerCreatedResponse is the 201 body.
type NewJoinerCreatedResponse struct {
	ID                    int64      `json:"id"`
	FullName              string     `json:"fullName"`
	Email                 string     `json:"email"`
	StartDate             Date       `json:"startDate"`
	WelcomeEmailSentAtUtc *time.Time `json:"welcomeEmailSentAtUtc"`
}

// NewJoinerAcceptedResponse is the 202 body: the record exists but the welcome email failed.
type NewJoinerAcceptedResponse struct {
	ID              int64   `json:"id"`
	Message         string  `json:"message"`
	ErrorType       string  `json:"errorType"`
	Error           string  `json:"error"`
	ProviderMessage *string `json:"providerMessage"`
	Advice          string  `json:"advice"`
}

// NewJoinerResponse is the full record returned by GET /api/new-joiners/{id}.
type NewJoinerResponse struct {
	ID                    int64      `json:"id"`
	FullName              string     `json:"fullName"`
	Email                 string     `json:"email"`
	Department            *string    `json:"department"`
	ManagerName           *string    `json:"managerName"`
	StartDate             Date       `json:"startDate"`
	CreatedAtUtc          time.Time  `json:"createdAtUtc"`
	WelcomeEmailSentAtUtc *time.Time `json:"welcomeEmailSentAtUtc"`
	LastSendError         *string    `json:"lastSendError"`
}

// ValidationErrorResponse is the 400 body for field-level failures.
type ValidationErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}
