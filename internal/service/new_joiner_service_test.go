package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	dom "github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/domain"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/email"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusUpdate struct {
	id            int64
	sentAt        *time.Time
	lastSendError *string
}

type fakeNewJoinerRepo struct {
	rows      map[int64]dom.NewJoiner
	nextID    int64
	createErr error
	updateErr error
	updates   []statusUpdate
}

func newFakeNewJoinerRepo() *fakeNewJoinerRepo {
	return &fakeNewJoinerRepo{rows: map[int64]dom.NewJoiner{}}
}

func (f *fakeNewJoinerRepo) ExistsByEmailAndStartDate(_ context.Context, email string, startDate time.Time) (bool, error) {
	for _, nj := range f.rows {
		if nj.Email == email && nj.StartDate.Equal(startDate) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNewJoinerRepo) Create(_ context.Context, nj dom.NewJoiner) (dom.NewJoiner, error) {
	if f.createErr != nil {
		return dom.NewJoiner{}, f.createErr
	}
	f.nextID++
	nj.ID = f.nextID
	f.rows[nj.ID] = nj
	return nj, nil
}

func (f *fakeNewJoinerRepo) GetByID(_ context.Context, id int64) (dom.NewJoiner, error) {
	nj, ok := f.rows[id]
	if !ok {
		return dom.NewJoiner{}, sql.ErrNoRows
	}
	return nj, nil
}

func (f *fakeNewJoinerRepo) UpdateSendStatus(_ context.Context, id int64, sentAt *time.Time, lastSendError *string) error {
	f.updates = append(f.updates, statusUpdate{id: id, sentAt: sentAt, lastSendError: lastSendError})
	if f.updateErr != nil {
		return f.updateErr
	}
	nj := f.rows[id]
	nj.WelcomeEmailSentAt = sentAt
	nj.LastSendError = lastSendError
	f.rows[id] = nj
	return nil
}

type fakeSender struct {
	result email.SendResult
	calls  int
	to     string
	body   string
}

func (f *fakeSender) Send(_ context.Context, to, _, htmlBody string) email.SendResult {
	f.calls++
	f.to = to
	f.body = htmlBody
	return f.result
}

var fixedNow = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

func newTestNewJoinerService(r *fakeNewJoinerRepo, s *fakeSender) *NewJoinerService {
	svc := NewNewJoinerService(r, nil, s, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func validInput() CreateNewJoinerInput {
	dept := "Finance"
	return CreateNewJoinerInput{
		FullName:   "Jane Doe",
		Email:      "jane@x.com",
		Department: &dept,
		StartDate:  time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreate_DeliveredSetsSentAt(t *testing.T) {
	repo := newFakeNewJoinerRepo()
	sender := &fakeSender{result: email.Succeeded()}
	svc := newTestNewJoinerService(repo, sender)

	res, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.True(t, res.Delivered())
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "jane@x.com", sender.to)

	require.Len(t, repo.updates, 1)
	require.NotNil(t, repo.updates[0].sentAt)
	assert.Equal(t, fixedNow, *repo.updates[0].sentAt)
	assert.Nil(t, repo.updates[0].lastSendError)

	stored := repo.rows[res.NewJoiner.ID]
	assert.NotNil(t, stored.WelcomeEmailSentAt)
	assert.Nil(t, stored.LastSendError)
}

func TestCreate_FailedDeliveryKeepsRecord(t *testing.T) {
	repo := newFakeNewJoinerRepo()
	sender := &fakeSender{result: email.Failed(email.Timeout, "operation timed out", "")}
	svc := newTestNewJoinerService(repo, sender)

	res, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.False(t, res.Delivered())
	assert.Equal(t, email.Timeout, res.Delivery.ErrorType)

	stored := repo.rows[res.NewJoiner.ID]
	assert.Nil(t, stored.WelcomeEmailSentAt)
	require.NotNil(t, stored.LastSendError)
	assert.Equal(t, "Timeout: operation timed out", *stored.LastSendError)
}

func TestCreate_LastSendErrorPrefersProviderMessage(t *testing.T) {
	repo := newFakeNewJoinerRepo()
	sender := &fakeSender{result: email.Failed(email.RecipientRejected, "send failed", "550 mailbox unavailable")}
	svc := newTestNewJoinerService(repo, sender)

	res, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.NotNil(t, res.NewJoiner.LastSendError)
	assert.Equal(t, "RecipientRejected: 550 mailbox unavailable", *res.NewJoiner.LastSendError)
}

func TestCreate_NormalizesInput(t *testing.T) {
	repo := newFakeNewJoinerRepo()
	svc := newTestNewJoinerService(repo, &fakeSender{result: email.Succeeded()})

	blank := "   "
	manager := "  John Smith "
	in := CreateNewJoinerInput{
		FullName:    "  Jane Doe ",
		Email:       "  Jane@X.com ",
		Department:  &blank,
		ManagerName: &manager,
		StartDate:   time.Date(2024, 1, 10, 17, 45, 0, 0, time.UTC),
	}
	res, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	nj := res.NewJoiner
	assert.Equal(t, "Jane Doe", nj.FullName)
	assert.Equal(t, "jane@x.com", nj.Email)
	assert.Nil(t, nj.Department)
	require.NotNil(t, nj.ManagerName)
	assert.Equal(t, "John Smith", *nj.ManagerName)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), nj.StartDate)
	assert.Equal(t, fixedNow, nj.CreatedAt)
}

func TestCreate_DuplicateIgnoresCaseAndWhitespace(t *testing.T) {
	repo := newFakeNewJoinerRepo()
	sender := &fakeSender{result: email.Succeeded()}
	svc := newTestNewJoinerService(repo, sender)

	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	dup := validInput()
	dup.Email = "  JANE@X.COM "
	dup.StartDate = time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
	_, err = svc.Create(context.Background(), dup)
	assert.ErrorIs(t, err, ErrDuplicateNewJoiner)
	assert.Len(t, repo.rows, 1)
	assert.Equal(t, 1, sender.calls)
}

func TestCreate_UniqueViolationIsDuplicate(t *testing.T) {
	repo := newFakeNewJoinerRepo()
	repo.createErr = &pgconn.PgError{Code: "23505"}
	sender := &fakeSender{result: email.Succeeded()}
	svc := newTestNewJoinerService(repo, sender)

	_, err := svc.Create(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrDuplicateNewJoiner)
	assert.Zero(t, sender.calls)
}

func TestCreate_Validation(t *testing.T) {
	sender := &fakeSender{result: email.Succeeded()}
	svc := newTestNewJoinerService(newFakeNewJoinerRepo(), sender)

	_, err := svc.Create(context.Background(), CreateNewJoinerInput{FullName: "   ", Email: "not-an-email"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "fullName")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "startDate")
	assert.Zero(t, sender.calls)
}

func TestCreate_StatusWriteFailureIsNotFatal(t *testing.T) {
	repo := newFakeNewJoinerRepo()
	repo.updateErr = errors.New("connection reset")
	svc := newTestNewJoinerService(repo, &fakeSender{result: email.Succeeded()})

	res, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.True(t, res.Delivered())
	assert.NotNil(t, res.NewJoiner.WelcomeEmailSentAt)
	assert.Len(t, repo.updates, 1)
}

func TestGetByID(t *testing.T) {
	repo := newFakeNewJoinerRepo()
	svc := newTestNewJoinerService(repo, &fakeSender{result: email.Succeeded()})

	res, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), res.NewJoiner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.FullName)

	_, err = svc.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWelcomeMessage(t *testing.T) {
	nj := dom.NewJoiner{
		FullName:  "Jane <b>Doe</b>",
		StartDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	}
	subject, body := WelcomeMessage(nj)
	assert.Equal(t, "Welcome to the team, Jane <b>Doe</b>!", subject)
	assert.Contains(t, body, "Jane &lt;b&gt;Doe&lt;/b&gt;")
	assert.Contains(t, body, "<strong>team</strong>")
	assert.Contains(t, body, "January 10, 2024")
	assert.NotContains(t, body, "Your manager")

	dept, mgr := "Finance", "John"
	nj.Department, nj.ManagerName = &dept, &mgr
	_, body = WelcomeMessage(nj)
	assert.Contains(t, body, "<strong>Finance</strong>")
	assert.True(t, strings.Contains(body, "Your manager will be <strong>John</strong>."))
}

func TestCacheable_OnlyAfterDeliveryAttempt(t *testing.T) {
	assert.False(t, cacheable(dom.NewJoiner{ID: 1}), "row read before its status write")

	sent := fixedNow
	assert.True(t, cacheable(dom.NewJoiner{ID: 1, WelcomeEmailSentAt: &sent}))

	msg := "Timeout: operation timed out"
	assert.True(t, cacheable(dom.NewJoiner{ID: 1, LastSendError: &msg}))
}
