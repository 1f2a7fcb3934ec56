// Package utils holds parsing helpers shared by config loading and the
// Postgres-backed repositories.
package utils

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// ParseDurationEnv reads timeouts and TTLs from the environment.
// A bare integer is a number of seconds ("10" is 10s); anything else goes
// through time.ParseDuration. Negative values are rejected.
func ParseDurationEnv(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty duration")
	}
	var d time.Duration
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		d = time.Duration(n) * time.Second
	} else if d, err = time.ParseDuration(s); err != nil {
		return 0, fmt.Errorf("duration %q: want 10s, 5m or whole seconds", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q must not be negative", s)
	}
	return d, nil
}

// RedisTarget is the connection part of a redis:// or rediss:// URL.
type RedisTarget struct {
	Addr     string
	Password string
	DB       int
}

// ParseRedisURL splits a Redis URL such as redis://default:pw@host:6379/2.
func ParseRedisURL(raw string) (RedisTarget, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return RedisTarget{}, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return RedisTarget{}, fmt.Errorf("scheme must be redis or rediss, got %q", u.Scheme)
	}
	if u.Host == "" {
		return RedisTarget{}, errors.New("missing host")
	}
	t := RedisTarget{Addr: u.Host}
	if u.User != nil {
		t.Password, _ = u.User.Password()
	}
	if db := strings.Trim(u.Path, "/"); db != "" {
		if t.DB, err = strconv.Atoi(db); err != nil {
			return RedisTarget{}, fmt.Errorf("database %q is not a number", db)
		}
	}
	return t, nil
}

// IsPGUniqueViolation reports whether err wraps a Postgres unique_violation.
// Create paths use it to turn a lost insert race into a duplicate error.
func IsPGUniqueViolation(err error) bool {
	var pge *pgconn.PgError
	return errors.As(err, &pge) && pge.Code == pgUniqueViolation
}
