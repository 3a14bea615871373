// Copyright (C) 2021  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package auth issues and verifies the session tokens of the api.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"

	apperrors "github.com/lukasdietrich/courrier/internal/errors"
	"github.com/lukasdietrich/courrier/internal/models"
)

const issuer = "courrier"

var (
	// ErrInvalidToken is returned for tokens that are malformed, forged or signed with another
	// secret.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", apperrors.ErrUnauthorized)
	// ErrTokenExpired is returned for tokens past their validity.
	ErrTokenExpired = fmt.Errorf("%w: token expired", apperrors.ErrUnauthorized)
	// ErrMissingSecret is returned when no signing secret is configured.
	ErrMissingSecret = errors.New("auth: no signing secret configured")
)

func init() {
	viper.SetDefault("security.jwt.secret", "")
	viper.SetDefault("security.jwt.validity", "8h")
}

// Claims are the contents of a session token.
type Claims struct {
	jwt.RegisteredClaims
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

// Actor returns the identity encoded in the claims.
func (c *Claims) Actor() (models.Actor, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return models.Actor{}, ErrInvalidToken
	}

	return models.Actor{
		UserID:   id,
		Username: c.Username,
		Role:     c.Role,
	}, nil
}

// TokenOptions configure the signing of session tokens.
type TokenOptions struct {
	Secret   []byte
	Validity time.Duration
}

// TokenOptionsFromViper reads the token options from viper.
func TokenOptionsFromViper() TokenOptions {
	return TokenOptions{
		Secret:   []byte(viper.GetString("security.jwt.secret")),
		Validity: viper.GetDuration("security.jwt.validity"),
	}
}

// Tokens issues and parses HS256 signed session tokens.
type Tokens struct {
	opts TokenOptions
	now  func() time.Time
}

// NewTokens creates a new Tokens instance. A missing secret is a configuration error, because
// every issued token would be trivially forgeable.
func NewTokens(opts TokenOptions) (*Tokens, error) {
	if len(opts.Secret) == 0 {
		return nil, ErrMissingSecret
	}

	return &Tokens{opts: opts, now: time.Now}, nil
}

// Issue creates a signed token for the user.
func (t *Tokens) Issue(user *models.UserEntity) (string, time.Time, error) {
	var (
		now     = t.now()
		expires = now.Add(t.opts.Validity)
	)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Username: user.Username,
		Role:     user.Role,
	})

	signed, err := token.SignedString(t.opts.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("could not sign token: %w", err)
	}

	return signed, expires, nil
}

// Parse verifies the signature and validity of a token and returns its claims.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(raw, &claims,
		func(*jwt.Token) (interface{}, error) {
			return t.opts.Secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)

	switch {
	case err == nil:
		return &claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}
