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
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"

	apperrors "github.com/lukasdietrich/courrier/internal/errors"
	"github.com/lukasdietrich/courrier/internal/models"
	"github.com/lukasdietrich/courrier/internal/register"
)

const mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// MailHandler handles incoming and outgoing mail records.
type MailHandler struct {
	mails *register.MailService
}

// NewMailHandler creates a new MailHandler.
func NewMailHandler(mails *register.MailService) *MailHandler {
	return &MailHandler{mails: mails}
}

// DueDateRequest is the body of PUT /api/mails/incoming/:id/due-date.
type DueDateRequest struct {
	DueDate      models.NullDate `json:"dueDate"`
	ConfirmClear bool            `json:"confirmClear"`
}

// List handles GET /api/mails/:direction
func (h *MailHandler) List(c echo.Context) error {
	direction, err := directionParam(c)
	if err != nil {
		return err
	}

	filter, err := bindMailFilter(c)
	if err != nil {
		return err
	}

	filter.Limit = pageLimit(filter.Limit)

	page, err := h.mails.List(c.Request().Context(), actorOf(c), direction, filter)
	if err != nil {
		return err
	}

	return Success(c, page)
}

// Create handles POST /api/mails/:direction
func (h *MailHandler) Create(c echo.Context) error {
	direction, err := directionParam(c)
	if err != nil {
		return err
	}

	var input register.MailInput
	if err := c.Bind(&input); err != nil {
		return err
	}

	mail, err := h.mails.Create(c.Request().Context(), actorOf(c), direction, input)
	if err != nil {
		return err
	}

	return Created(c, mail)
}

// NextReference handles GET /api/mails/:direction/next-reference
func (h *MailHandler) NextReference(c echo.Context) error {
	direction, err := directionParam(c)
	if err != nil {
		return err
	}

	reference, err := h.mails.PeekReference(c.Request().Context(), actorOf(c), direction)
	if err != nil {
		return err
	}

	return Success(c, echo.Map{"reference": reference})
}

// GetByReference handles GET /api/mails/:direction/by-reference/:reference
func (h *MailHandler) GetByReference(c echo.Context) error {
	direction, err := directionParam(c)
	if err != nil {
		return err
	}

	mail, err := h.mails.GetByReference(c.Request().Context(), actorOf(c), direction, c.Param("reference"))
	if err != nil {
		return err
	}

	return Success(c, mail)
}

// Get handles GET /api/mails/:direction/:id
func (h *MailHandler) Get(c echo.Context) error {
	direction, id, err := mailParams(c)
	if err != nil {
		return err
	}

	mail, err := h.mails.Get(c.Request().Context(), actorOf(c), direction, id)
	if err != nil {
		return err
	}

	return Success(c, mail)
}

// Update handles PUT /api/mails/:direction/:id
func (h *MailHandler) Update(c echo.Context) error {
	direction, id, err := mailParams(c)
	if err != nil {
		return err
	}

	var input register.MailInput
	if err := c.Bind(&input); err != nil {
		return err
	}

	mail, err := h.mails.Update(c.Request().Context(), actorOf(c), direction, id, input)
	if err != nil {
		return err
	}

	return Success(c, mail)
}

// Delete handles DELETE /api/mails/:direction/:id
func (h *MailHandler) Delete(c echo.Context) error {
	direction, id, err := mailParams(c)
	if err != nil {
		return err
	}

	if err := h.mails.Delete(c.Request().Context(), actorOf(c), direction, id); err != nil {
		return err
	}

	return NoContent(c)
}

// Transition handles POST /api/mails/:direction/:id/status
func (h *MailHandler) Transition(c echo.Context) error {
	direction, id, err := mailParams(c)
	if err != nil {
		return err
	}

	var req register.TransitionRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	mail, err := h.mails.Transition(c.Request().Context(), actorOf(c), direction, id, req)
	if err != nil {
		return err
	}

	return Success(c, mail)
}

// SetDueDate handles PUT /api/mails/incoming/:id/due-date
func (h *MailHandler) SetDueDate(c echo.Context) error {
	direction, id, err := mailParams(c)
	if err != nil {
		return err
	}

	if direction != models.Incoming {
		return apperrors.ErrNotFound
	}

	var req DueDateRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	mail, err := h.mails.SetDueDate(c.Request().Context(), actorOf(c), id, req.DueDate, req.ConfirmClear)
	if err != nil {
		return err
	}

	return Success(c, mail)
}

// Attach handles POST /api/mails/:direction/:id/attachments
func (h *MailHandler) Attach(c echo.Context) error {
	direction, id, err := mailParams(c)
	if err != nil {
		return err
	}

	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.Validation("file", "a multipart file is required")
	}

	file, err := header.Open()
	if err != nil {
		return err
	}

	defer file.Close()

	mail, err := h.mails.Attach(c.Request().Context(), actorOf(c), direction, id, header.Filename, file)
	if err != nil {
		return err
	}

	return Created(c, mail)
}

// OpenAttachment handles GET /api/mails/:direction/:id/attachments/:blob
func (h *MailHandler) OpenAttachment(c echo.Context) error {
	direction, id, err := mailParams(c)
	if err != nil {
		return err
	}

	blob := c.Param("blob")

	r, err := h.mails.OpenAttachment(c.Request().Context(), actorOf(c), direction, id, blob)
	if err != nil {
		return err
	}

	return stream(c, blob, contentType(blob), r)
}

// Detach handles DELETE /api/mails/:direction/:id/attachments/:blob
func (h *MailHandler) Detach(c echo.Context) error {
	direction, id, err := mailParams(c)
	if err != nil {
		return err
	}

	mail, err := h.mails.Detach(c.Request().Context(), actorOf(c), direction, id, c.Param("blob"))
	if err != nil {
		return err
	}

	return Success(c, mail)
}

// OpenBordereau handles GET /api/mails/outgoing/:id/bordereau
func (h *MailHandler) OpenBordereau(c echo.Context) error {
	direction, id, err := mailParams(c)
	if err != nil {
		return err
	}

	if direction != models.Outgoing {
		return apperrors.ErrNotFound
	}

	r, err := h.mails.OpenBordereau(c.Request().Context(), actorOf(c), id)
	if err != nil {
		return err
	}

	return stream(c, "bordereau.docx", mimeDocx, r)
}

// Reminders handles GET /api/reminders
func (h *MailHandler) Reminders(c echo.Context) error {
	mails, err := h.mails.Reminders(c.Request().Context(), actorOf(c))
	if err != nil {
		return err
	}

	return Success(c, mails)
}

func contentType(filename string) string {
	if t := mime.TypeByExtension(path.Ext(filename)); t != "" {
		return t
	}

	return echo.MIMEOctetStream
}

func stream(c echo.Context, filename, contentType string, r io.ReadCloser) error {
	defer r.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": filename}))

	return c.Stream(http.StatusOK, contentType, r)
}
