// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// =============================================================================
// IDENTITY
// =============================================================================

// Identity is the signed-in shopper as described by the bearer token.
type Identity struct {
	UserID    string
	Name      string
	Email     string
	ExpiresAt time.Time
}

// Anonymous reports whether no user is known.
func (id Identity) Anonymous() bool {
	return id.UserID == "" && id.Email == ""
}

// Expired reports whether the token carried an expiry that has passed.
func (id Identity) Expired(now time.Time) bool {
	return !id.ExpiresAt.IsZero() && now.After(id.ExpiresAt)
}

// DisplayName prefers the name claim, then the email, then "Guest".
func (id Identity) DisplayName() string {
	switch {
	case id.Name != "":
		return id.Name
	case id.Email != "":
		return id.Email
	default:
		return "Guest"
	}
}

// SessionContext returns the identity keys sent alongside every chat turn.
func (id Identity) SessionContext() map[string]any {
	if id.Anonymous() {
		return nil
	}
	ctx := map[string]any{"user_id": id.UserID}
	if id.Name != "" {
		ctx["user_name"] = id.Name
	}
	if id.Email != "" {
		ctx["user_email"] = id.Email
	}
	return ctx
}

// IdentityFromToken reads the claims of a JWT without verifying its
// signature. The backend verifies the token on every request; the client
// only needs the claims for display and chat context.
func IdentityFromToken(raw string) (Identity, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	if raw == "" {
		return Identity{}, nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return Identity{}, fmt.Errorf("parse bearer token: %w", err)
	}

	id := Identity{
		UserID: firstClaim(claims, "user_id", "sub", "id"),
		Email:  firstClaim(claims, "email"),
		Name:   firstClaim(claims, "name", "first_name", "preferred_username", "username"),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	return id, nil
}

func firstClaim(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		switch v := claims[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
