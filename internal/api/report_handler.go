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
	"fmt"
	"mime"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lukasdietrich/courrier/internal/backup"
	"github.com/lukasdietrich/courrier/internal/register"
)

const mimeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler handles statistics, the activity log, exports and backups.
type ReportHandler struct {
	stats   *register.StatsService
	journal *register.Journal
	exports *register.ExportService
	backups *backup.Backups
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(
	stats *register.StatsService,
	journal *register.Journal,
	exports *register.ExportService,
	backups *backup.Backups,
) *ReportHandler {
	return &ReportHandler{
		stats:   stats,
		journal: journal,
		exports: exports,
		backups: backups,
	}
}

// Stats handles GET /api/stats
func (h *ReportHandler) Stats(c echo.Context) error {
	stats, err := h.stats.Compute(c.Request().Context(), actorOf(c))
	if err != nil {
		return err
	}

	return Success(c, stats)
}

// Activity handles GET /api/activity
func (h *ReportHandler) Activity(c echo.Context) error {
	filter, err := bindActivityFilter(c)
	if err != nil {
		return err
	}

	filter.Limit = pageLimit(filter.Limit)

	page, err := h.journal.Browse(c.Request().Context(), actorOf(c), filter)
	if err != nil {
		return err
	}

	return Success(c, page)
}

// ExportMails handles GET /api/exports/mails/:direction
func (h *ReportHandler) ExportMails(c echo.Context) error {
	direction, err := directionParam(c)
	if err != nil {
		return err
	}

	filter, err := bindMailFilter(c)
	if err != nil {
		return err
	}

	b, err := h.exports.Mails(c.Request().Context(), actorOf(c), direction, filter)
	if err != nil {
		return err
	}

	return spreadsheet(c, string(direction), b)
}

// ExportContacts handles GET /api/exports/contacts
func (h *ReportHandler) ExportContacts(c echo.Context) error {
	b, err := h.exports.Contacts(c.Request().Context(), actorOf(c), c.QueryParam("q"))
	if err != nil {
		return err
	}

	return spreadsheet(c, "contacts", b)
}

// ExportActivity handles GET /api/exports/activity
func (h *ReportHandler) ExportActivity(c echo.Context) error {
	filter, err := bindActivityFilter(c)
	if err != nil {
		return err
	}

	b, err := h.exports.Activity(c.Request().Context(), actorOf(c), filter)
	if err != nil {
		return err
	}

	return spreadsheet(c, "activity", b)
}

// ListBackups handles GET /api/backups
func (h *ReportHandler) ListBackups(c echo.Context) error {
	snapshots, err := h.backups.List(c.Request().Context(), actorOf(c))
	if err != nil {
		return err
	}

	return Success(c, snapshots)
}

// CreateBackup handles POST /api/backups
func (h *ReportHandler) CreateBackup(c echo.Context) error {
	snapshot, err := h.backups.Create(c.Request().Context(), actorOf(c))
	if err != nil {
		return err
	}

	return Created(c, snapshot)
}

func spreadsheet(c echo.Context, name string, b []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": fmt.Sprintf("%s.xlsx", name)}))

	return c.Blob(http.StatusOK, mimeXlsx, b)
}
