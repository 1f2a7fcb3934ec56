package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/cache"
	dom "github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/domain"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/email"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/logging"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/repo"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/utils"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateNewJoiner = errors.New("a new joiner with this email and start date already exists")
)

// ValidationError carries per-field messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// CreateNewJoinerInput is the caller-supplied part of a new-joiner record.
type CreateNewJoinerInput struct {
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	Department  *string   `json:"department"`
	ManagerName *string   `json:"managerName"`
	StartDate   time.Time `json:"startDate"`
}

func (in CreateNewJoinerInput) validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FullName, validation.Required),
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.StartDate, validation.Required),
	)
}

// CreateResult is the persisted record plus the outcome of its welcome email.
type CreateResult struct {
	NewJoiner dom.NewJoiner
	Delivery  email.SendResult
}

// Delivered reports whether the welcome email was accepted by the mail server.
func (r CreateResult) Delivered() bool { return r.Delivery.Success }

type NewJoinerService struct {
	repo   repo.NewJoinerRepo
	cache  *cache.NewJoinerCache
	sender email.Sender
	logger *slog.Logger
	now    func() time.Time
	sf     singleflight.Group
}

// NewNewJoinerService creates a NewJoinerService. If c is nil, caching is disabled.
func NewNewJoinerService(r repo.NewJoinerRepo, c *cache.NewJoinerCache, sender email.Sender, logger *slog.Logger) *NewJoinerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NewJoinerService{
		repo:   r,
		cache:  c,
		sender: sender,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new joiner and makes one attempt to send the welcome email.
// A delivery failure is not an error: the record is kept and the failure is
// reported in CreateResult.Delivery and persisted as LastSendError.
func (s *NewJoinerService) Create(ctx context.Context, in CreateNewJoinerInput) (CreateResult, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = dom.NormalizeEmail(in.Email)
	if err := in.validate(); err != nil {
		return CreateResult{}, toValidationError(err)
	}

	nj := dom.NewJoiner{
		FullName:    in.FullName,
		Email:       in.Email,
		Department:  trimOptional(in.Department),
		ManagerName: trimOptional(in.ManagerName),
		StartDate:   dom.DateOnly(in.StartDate),
		CreatedAt:   s.now(),
	}

	exists, err := s.repo.ExistsByEmailAndStartDate(ctx, nj.Email, nj.StartDate)
	if err != nil {
		return CreateResult{}, fmt.Errorf("check duplicate: %w", err)
	}
	if exists {
		return CreateResult{}, ErrDuplicateNewJoiner
	}

	nj, err = s.repo.Create(ctx, nj)
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return CreateResult{}, ErrDuplicateNewJoiner
		}
		return CreateResult{}, fmt.Errorf("create new joiner: %w", err)
	}

	logger := logging.FromContext(ctx, s.logger).With("new_joiner_id", nj.ID)

	subject, body := WelcomeMessage(nj)
	res := s.sender.Send(ctx, nj.Email, subject, body)
	if res.Success {
		sentAt := s.now()
		nj.WelcomeEmailSentAt = &sentAt
		nj.LastSendError = nil
		logger.Info("welcome email sent")
	} else {
		msg := res.ErrorType.String() + ": " + res.Detail()
		nj.WelcomeEmailSentAt = nil
		nj.LastSendError = &msg
		logger.Warn("welcome email failed", "error_type", res.ErrorType.String(), "error", res.ErrorMessage)
	}

	// The record and the delivery outcome are already final; a failed status
	// write leaves the row with empty delivery fields.
	if err := s.repo.UpdateSendStatus(ctx, nj.ID, nj.WelcomeEmailSentAt, nj.LastSendError); err != nil {
		logger.Error("persist welcome email status", "error", err)
	}
	s.invalidateCache(ctx, nj.ID)

	return CreateResult{NewJoiner: nj, Delivery: res}, nil
}

// GetByID returns the record with the given id or ErrNotFound.
func (s *NewJoinerService) GetByID(ctx context.Context, id int64) (dom.NewJoiner, error) {
	if s.cache != nil {
		v, err, _ := s.sf.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
			if nj, err := s.cache.Get(ctx, id); err == nil && nj != nil {
				return *nj, nil
			}
			nj, err := s.load(ctx, id)
			if err != nil {
				return nil, err
			}
			if cacheable(nj) {
				_ = s.cache.Set(ctx, nj)
			}
			return nj, nil
		})
		if err != nil {
			return dom.NewJoiner{}, err
		}
		return v.(dom.NewJoiner), nil
	}
	return s.load(ctx, id)
}

func (s *NewJoinerService) load(ctx context.Context, id int64) (dom.NewJoiner, error) {
	nj, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dom.NewJoiner{}, ErrNotFound
		}
		return dom.NewJoiner{}, err
	}
	return nj, nil
}

// cacheable reports whether nj is past its welcome email attempt. A row read
// before its status write could otherwise be cached after Create invalidates it.
func cacheable(nj dom.NewJoiner) bool {
	return nj.WelcomeEmailSentAt != nil || nj.LastSendError != nil
}

func (s *NewJoinerService) invalidateCache(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		logging.FromContext(ctx, s.logger).Warn("invalidate new joiner cache", "id", id, "error", err)
	}
}

// WelcomeMessage renders the welcome email subject and HTML body for nj.
func WelcomeMessage(nj dom.NewJoiner) (subject, body string) {
	subject = "Welcome to the team, " + nj.FullName + "!"

	name := html.EscapeString(nj.FullName)
	team := "team"
	if nj.Department != nil && *nj.Department != "" {
		team = html.EscapeString(*nj.Department)
	}
	var manager string
	if nj.ManagerName != nil && strings.TrimSpace(*nj.ManagerName) != "" {
		manager = "\n    <p>Your manager will be <strong>" + html.EscapeString(*nj.ManagerName) + "</strong>.</p>"
	}

	body = `<div style="font-family:Segoe UI,Arial,sans-serif;font-size:14px;color:#333">
    <h2>Welcome, ` + name + ` 👋</h2>
    <p>We're excited to have you join the <strong>` + team + `</strong> on <strong>` +
		nj.StartDate.Format("January 02, 2006") + `</strong>.</p>` + manager + `
    <p>Before your first day, please check your email for onboarding tasks and credentials.</p>
    <hr />
    <p>If you have any questions, reply to this email.</p>
    <p>Onboarding Team</p>
</div>`
	return subject, body
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func toValidationError(err error) error {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	fields := make(map[string]string, len(errs))
	for field, fe := range errs {
		if fe != nil {
			fields[field] = fe.Error()
		}
	}
	return &ValidationError{Fields: fields}
}
