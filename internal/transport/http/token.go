// Copyright 2026 The VenueCore Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/venuecore/venuecore/internal/identity"
)

// ErrInvalidToken covers every verification failure: bad signature,
// expiry, wrong issuer, malformed claims. Callers get no distinction.
var ErrInvalidToken = errors.New("invalid or expired token")

// tokenClaims carries the user identity (sub) and their tenant (tid).
// The token is deliberately permission-free: permissions resolve fresh
// on every request, so a role change takes effect without re-login.
type tokenClaims struct {
	TenantID string `json:"tid"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies API access tokens (HS256).
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer
func NewTokenIssuer(secret, issuer string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Issue mints a signed token for the user.
func (t *TokenIssuer) Issue(user *identity.User) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		TenantID: user.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the user and tenant it
// was issued for.
func (t *TokenIssuer) Verify(tokenString string) (userID, tenantID string, err error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}
	if claims.Subject == "" || claims.TenantID == "" {
		return "", "", ErrInvalidToken
	}
	return claims.Subject, claims.TenantID, nil
}
