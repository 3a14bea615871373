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

package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lukasdietrich/courrier/internal/access"
	"github.com/lukasdietrich/courrier/internal/auth"
	"github.com/lukasdietrich/courrier/internal/models"
	"github.com/lukasdietrich/courrier/internal/register"
)

// AuthHandler handles login, logout and the account of the current user.
type AuthHandler struct {
	authenticator *register.Authenticator
	users         *register.UserService
	tokens        *auth.Tokens
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authenticator *register.Authenticator,
	users *register.UserService,
	tokens *auth.Tokens,
) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		users:         users,
		tokens:        tokens,
	}
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the session token.
type LoginResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expiresAt"`
	User      *models.UserEntity `json:"user"`
}

// Profile is the current user together with the actions its role permits.
type Profile struct {
	User    *models.UserEntity `json:"user"`
	Actions []access.Action    `json:"actions"`
}

// ChangePasswordRequest is the body of PUT /api/me/password.
type ChangePasswordRequest struct {
	Current string `json:"current"`
	Next    string `json:"next"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	user, err := h.authenticator.Auth(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	token, expires, err := h.tokens.Issue(user)
	if err != nil {
		return err
	}

	return Success(c, LoginResponse{
		Token:     token,
		ExpiresAt: expires,
		User:      user,
	})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authenticator.Logout(c.Request().Context(), actorOf(c)); err != nil {
		return err
	}

	return NoContent(c)
}

// Me handles GET /api/me
func (h *AuthHandler) Me(c echo.Context) error {
	actor := actorOf(c)

	user, err := h.users.Get(c.Request().Context(), actor, actor.UserID)
	if err != nil {
		return err
	}

	return Success(c, Profile{
		User:    user,
		Actions: access.Actions(user.Role),
	})
}

// ChangePassword handles PUT /api/me/password
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	if err := h.users.ChangePassword(c.Request().Context(), actorOf(c), req.Current, req.Next); err != nil {
		return err
	}

	return NoContent(c)
}
