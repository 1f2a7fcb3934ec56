package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/dbx"
	dom "github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/domain"
)

// UserRepo provides user persistence.
type UserRepo interface {
	GetByUsername(ctx context.Context, username string) (dom.User, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, username, passwordHash string, roles []string) (dom.User, error)
}

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *sql.DB
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *sql.DB) *PGUserRepo {
	return &PGUserRepo{db: db}
}

// GetByUsername returns the user and its roles. Username match is exact.
// Returns sql.ErrNoRows when no such user exists.
func (r *PGUserRepo) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return dom.User{}, err
	}
	roles, err := listRoles(ctx, r.db, u.ID)
	if err != nil {
		return dom.User{}, err
	}
	u.Roles = roles
	return u, nil
}

// Count returns the number of stored users.
func (r *PGUserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Create inserts a user together with its roles in one transaction.
func (r *PGUserRepo) Create(ctx context.Context, username, passwordHash string, roles []string) (dom.User, error) {
	var u dom.User
	err := dbx.WithTx(ctx, r.db, func(ctx context.Context, tx dbx.DBTX) error {
		query := `
			INSERT INTO users (username, password_hash)
			VALUES ($1, $2)
			RETURNING id, username, password_hash, created_at`
		if err := tx.QueryRowContext(ctx, query, username, passwordHash).Scan(
			&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt,
		); err != nil {
			return err
		}
		for _, role := range roles {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, u.ID, role,
			); err != nil {
				return fmt.Errorf("insert role %q: %w", role, err)
			}
		}
		return nil
	})
	if err != nil {
		return dom.User{}, err
	}
	u.Roles = append([]string(nil), roles...)
	return u, nil
}

func listRoles(ctx context.Context, db dbx.DBTX, userID int64) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, userID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()
	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
