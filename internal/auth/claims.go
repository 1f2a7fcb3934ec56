package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// RoleClaimTypes are the claim names recognized as carrying role values.
// Tokens minted by earlier portal versions used the long URI form.
var RoleClaimTypes = []string{
	"http://schemas.microsoft.com/ws/2008/06/identity/claims/role",
	"role",
	"roles",
}

// NameClaimTypes are checked in order for the caller's username.
var NameClaimTypes = []string{
	"sub",
	"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name",
	"unique_name",
	"name",
}

// Principal is the identity extracted from a validated token.
type Principal struct {
	Username string
	Roles    []string
}

// HasAnyRole reports whether p holds at least one of roles.
func (p Principal) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(p.Roles, r) {
			return true
		}
	}
	return false
}

// PrincipalFromClaims builds a Principal from validated claims.
func PrincipalFromClaims(claims jwt.MapClaims) Principal {
	return Principal{
		Username: UsernameFromClaims(claims),
		Roles:    RolesFromClaims(claims),
	}
}

// RolesFromClaims collects every value under a recognized role claim type,
// de-duplicated in first-seen order. Values may be a string or a list.
func RolesFromClaims(claims jwt.MapClaims) []string {
	roles := make([]string, 0, 2)
	add := func(v string) {
		if v != "" && !slices.Contains(roles, v) {
			roles = append(roles, v)
		}
	}
	for _, claimType := range RoleClaimTypes {
		switch v := claims[claimType].(type) {
		case string:
			add(v)
		case []string:
			for _, s := range v {
				add(s)
			}
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					add(s)
				}
			}
		}
	}
	return roles
}

// UsernameFromClaims returns the first non-empty value among NameClaimTypes.
func UsernameFromClaims(claims jwt.MapClaims) string {
	for _, claimType := range NameClaimTypes {
		if s, ok := claims[claimType].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
