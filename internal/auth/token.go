package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dom "github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/domain"
)

var (
	ErrMissingSigningKey = errors.New("jwt signing key is missing")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
)

// accessClaims is the issued token body. Roles go out under the short "role"
// claim; validation accepts any spelling in RoleClaimTypes.
type accessClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"role,omitempty"`
}

// TokenService issues and validates HS256 access tokens.
type TokenService struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenService fails fast when the signing key is absent.
func NewTokenService(key []byte, issuer, audience string, ttl time.Duration) (*TokenService, error) {
	if len(key) == 0 {
		return nil, ErrMissingSigningKey
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	return &TokenService{
		key:      key,
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// CreateAccessToken signs a token for user carrying one role claim per role.
// expiresAt is the exact (second precision) expiry embedded in the token.
func (s *TokenService) CreateAccessToken(user dom.User, roles []string) (string, time.Time, error) {
	now := s.now()
	exp := jwt.NewNumericDate(now.Add(s.ttl))
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   user.Username,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: exp,
		},
		Roles: append([]string(nil), roles...),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp.Time.UTC(), nil
}

// Validate checks signature, issuer, audience and expiry with no clock-skew
// allowance, and returns the raw claims for role extraction.
func (s *TokenService) Validate(tokenString string) (jwt.MapClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(0),
		jwt.WithTimeFunc(s.now),
	)

	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
