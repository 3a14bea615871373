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

// ContactHandler handles the address book.
type ContactHandler struct {
	contacts *register.ContactService
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contacts *register.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// List handles GET /api/contacts
func (h *ContactHandler) List(c echo.Context) error {
	contacts, err := h.contacts.List(c.Request().Context(), actorOf(c), c.QueryParam("q"))
	if err != nil {
		return err
	}

	return Success(c, contacts)
}

// Create handles POST /api/contacts
func (h *ContactHandler) Create(c echo.Context) error {
	var input register.ContactInput
	if err := c.Bind(&input); err != nil {
		return err
	}

	contact, err := h.contacts.Create(c.Request().Context(), actorOf(c), input)
	if err != nil {
		return err
	}

	return Created(c, contact)
}

// Get handles GET /api/contacts/:id
func (h *ContactHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	contact, err := h.contacts.Get(c.Request().Context(), actorOf(c), id)
	if err != nil {
		return err
	}

	return Success(c, contact)
}

// Update handles PUT /api/contacts/:id
func (h *ContactHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var input register.ContactInput
	if err := c.Bind(&input); err != nil {
		return err
	}

	contact, err := h.contacts.Update(c.Request().Context(), actorOf(c), id, input)
	if err != nil {
		return err
	}

	return Success(c, contact)
}

// Delete handles DELETE /api/contacts/:id
func (h *ContactHandler) Delete(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.contacts.Delete(c.Request().Context(), actorOf(c), id); err != nil {
		return err
	}

	return NoContent(c)
}
