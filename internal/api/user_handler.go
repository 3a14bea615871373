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
	"github.com/labstack/echo/v4"

	"github.com/lukasdietrich/courrier/internal/models"
	"github.com/lukasdietrich/courrier/internal/register"
)

// UserHandler handles the administration of accounts.
type UserHandler struct {
	users *register.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *register.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// CreatedUser is returned after creating a user. Password is only set, if it was generated.
type CreatedUser struct {
	User     *models.UserEntity `json:"user"`
	Password string             `json:"password,omitempty"`
}

// PasswordRequest is the body of POST /api/users/:id/password. An empty password is generated.
type PasswordRequest struct {
	Password string `json:"password"`
}

// List handles GET /api/users
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context(), actorOf(c))
	if err != nil {
		return err
	}

	return Success(c, users)
}

// Create handles POST /api/users
func (h *UserHandler) Create(c echo.Context) error {
	var input register.UserInput
	if err := c.Bind(&input); err != nil {
		return err
	}

	user, password, err := h.users.Create(c.Request().Context(), actorOf(c), input)
	if err != nil {
		return err
	}

	return Created(c, CreatedUser{User: user, Password: password})
}

// Get handles GET /api/users/:id
func (h *UserHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	user, err := h.users.Get(c.Request().Context(), actorOf(c), id)
	if err != nil {
		return err
	}

	return Success(c, user)
}

// Update handles PUT /api/users/:id
func (h *UserHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var update register.UserUpdate
	if err := c.Bind(&update); err != nil {
		return err
	}

	user, err := h.users.Update(c.Request().Context(), actorOf(c), id, update)
	if err != nil {
		return err
	}

	return Success(c, user)
}

// Delete handles DELETE /api/users/:id
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	deleted, err := h.users.Delete(c.Request().Context(), actorOf(c), id)
	if err != nil {
		return err
	}

	return Success(c, echo.Map{"deleted": deleted})
}

// ResetPassword handles POST /api/users/:id/password
func (h *UserHandler) ResetPassword(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req PasswordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	password, err := h.users.ResetPassword(c.Request().Context(), actorOf(c), id, req.Password)
	if err != nil {
		return err
	}

	return Success(c, echo.Map{"password": password})
}
