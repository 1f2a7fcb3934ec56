package repo

import (
	"context"
	"database/sql"
	"time"

	dom "github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/domain"
)

type NewJoinerRepo interface {
	ExistsByEmailAndStartDate(ctx context.Context, email string, startDate time.Time) (bool, error)
	Create(ctx context.Context, nj dom.NewJoiner) (dom.NewJoiner, error)
	GetByID(ctx context.Context, id int64) (dom.NewJoiner, error)
	UpdateSendStatus(ctx context.Context, id int64, sentAt *time.Time, lastSendError *string) error
}

type PGNewJoinerRepo struct {
	db *sql.DB
}

func NewPGNewJoinerRepo(db *sql.DB) *PGNewJoinerRepo {
	return &PGNewJoinerRepo{db: db}
}

// ExistsByEmailAndStartDate expects an already normalized email and a date-only start date.
func (r *PGNewJoinerRepo) ExistsByEmailAndStartDate(ctx context.Context, email string, startDate time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM new_joiners WHERE email = $1 AND start_date = $2)`,
		email, startDate,
	).Scan(&exists)
	return exists, err
}

// Create inserts the record and returns it with its assigned id.
// A concurrent duplicate surfaces as a unique violation (23505).
func (r *PGNewJoinerRepo) Create(ctx context.Context, nj dom.NewJoiner) (dom.NewJoiner, error) {
	query := `
		INSERT INTO new_joiners (full_name, email, department, manager_name, start_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		nj.FullName, nj.Email, nj.Department, nj.ManagerName, nj.StartDate, nj.CreatedAt,
	).Scan(&nj.ID)
	if err != nil {
		return dom.NewJoiner{}, err
	}
	return nj, nil
}

func (r *PGNewJoinerRepo) GetByID(ctx context.Context, id int64) (dom.NewJoiner, error) {
	query := `
		SELECT id, full_name, email, department, manager_name, start_date,
		       created_at, welcome_email_sent_at, last_send_error
		FROM new_joiners WHERE id = $1`
	var nj dom.NewJoiner
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&nj.ID, &nj.FullName, &nj.Email, &nj.Department, &nj.ManagerName, &nj.StartDate,
		&nj.CreatedAt, &nj.WelcomeEmailSentAt, &nj.LastSendError,
	)
	if err != nil {
		return dom.NewJoiner{}, err
	}
	nj.StartDate = dom.DateOnly(nj.StartDate)
	nj.CreatedAt = nj.CreatedAt.UTC()
	if nj.WelcomeEmailSentAt != nil {
		sent := nj.WelcomeEmailSentAt.UTC()
		nj.WelcomeEmailSentAt = &sent
	}
	return nj, nil
}

// UpdateSendStatus overwrites both delivery fields. Returns sql.ErrNoRows if the id is unknown.
func (r *PGNewJoinerRepo) UpdateSendStatus(ctx context.Context, id int64, sentAt *time.Time, lastSendError *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE new_joiners SET welcome_email_sent_at = $2, last_send_error = $3 WHERE id = $1`,
		id, sentAt, lastSendError,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
