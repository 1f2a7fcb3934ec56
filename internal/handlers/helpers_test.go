package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	dom "github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/domain"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/email"

	"github.com/gin-gonic/gin"
)

type memUserRepo struct {
	users map[string]dom.User
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (dom.User, error) {
	u, ok := m.users[username]
	if !ok {
		return dom.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (m *memUserRepo) Count(context.Context) (int64, error) { return int64(len(m.users)), nil }

func (m *memUserRepo) Create(_ context.Context, username, hash string, roles []string) (dom.User, error) {
	u := dom.User{ID: int64(len(m.users) + 1), Username: username, PasswordHash: hash, Roles: roles}
	m.users[username] = u
	return u, nil
}

type memNewJoinerRepo struct {
	rows   map[int64]dom.NewJoiner
	nextID int64
	getErr error
}

func newMemNewJoinerRepo() *memNewJoinerRepo {
	return &memNewJoinerRepo{rows: map[int64]dom.NewJoiner{}}
}

func (m *memNewJoinerRepo) ExistsByEmailAndStartDate(_ context.Context, e string, d time.Time) (bool, error) {
	for _, nj := range m.rows {
		if nj.Email == e && nj.StartDate.Equal(d) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memNewJoinerRepo) Create(_ context.Context, nj dom.NewJoiner) (dom.NewJoiner, error) {
	m.nextID++
	nj.ID = m.nextID
	m.rows[nj.ID] = nj
	return nj, nil
}

func (m *memNewJoinerRepo) GetByID(_ context.Context, id int64) (dom.NewJoiner, error) {
	if m.getErr != nil {
		return dom.NewJoiner{}, m.getErr
	}
	nj, ok := m.rows[id]
	if !ok {
		return dom.NewJoiner{}, sql.ErrNoRows
	}
	return nj, nil
}

func (m *memNewJoinerRepo) UpdateSendStatus(_ context.Context, id int64, sentAt *time.Time, lastErr *string) error {
	nj, ok := m.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	nj.WelcomeEmailSentAt = sentAt
	nj.LastSendError = lastErr
	m.rows[id] = nj
	return nil
}

type scriptedSender struct {
	result email.SendResult
	calls  int
}

func (s *scriptedSender) Send(context.Context, string, string, string) email.SendResult {
	s.calls++
	return s.result
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthedRequest(method, path, token string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
