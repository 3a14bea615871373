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

	"github.com/lukasdietrich/courrier/internal/register"
)

// ActionHandler handles follow-up actions of mail records.
type ActionHandler struct {
	actions *register.ActionService
}

// NewActionHandler creates a new ActionHandler.
func NewActionHandler(actions *register.ActionService) *ActionHandler {
	return &ActionHandler{actions: actions}
}

// CompleteRequest is the body of POST /api/actions/:id/complete.
type CompleteRequest struct {
	Notes string `json:"notes"`
}

// ListByMail handles GET /api/mails/:direction/:id/actions
func (h *ActionHandler) ListByMail(c echo.Context) error {
	direction, id, err := mailParams(c)
	if err != nil {
		return err
	}

	actions, err := h.actions.ListByMail(c.Request().Context(), actorOf(c), direction, id)
	if err != nil {
		return err
	}

	return Success(c, actions)
}

// Create handles POST /api/mails/:direction/:id/actions
func (h *ActionHandler) Create(c echo.Context) error {
	direction, id, err := mailParams(c)
	if err != nil {
		return err
	}

	var input register.ActionInput
	if err := c.Bind(&input); err != nil {
		return err
	}

	action, err := h.actions.Create(c.Request().Context(), actorOf(c), direction, id, input)
	if err != nil {
		return err
	}

	return Created(c, action)
}

// Pending handles GET /api/actions/pending
func (h *ActionHandler) Pending(c echo.Context) error {
	actions, err := h.actions.Pending(c.Request().Context(), actorOf(c))
	if err != nil {
		return err
	}

	return Success(c, actions)
}

// Update handles PUT /api/actions/:id
func (h *ActionHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var input register.ActionInput
	if err := c.Bind(&input); err != nil {
		return err
	}

	action, err := h.actions.Update(c.Request().Context(), actorOf(c), id, input)
	if err != nil {
		return err
	}

	return Success(c, action)
}

// Complete handles POST /api/actions/:id/complete
func (h *ActionHandler) Complete(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req CompleteRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	action, err := h.actions.Complete(c.Request().Context(), actorOf(c), id, req.Notes)
	if err != nil {
		return err
	}

	return Success(c, action)
}

// Cancel handles POST /api/actions/:id/cancel
func (h *ActionHandler) Cancel(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	action, err := h.actions.Cancel(c.Request().Context(), actorOf(c), id)
	if err != nil {
		return err
	}

	return Success(c, action)
}
