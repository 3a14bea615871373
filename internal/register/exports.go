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

package register

import (
	"context"
	"strconv"
	"time"

	"github.com/lukasdietrich/courrier/internal/access"
	"github.com/lukasdietrich/courrier/internal/database"
	"github.com/lukasdietrich/courrier/internal/documents"
	"github.com/lukasdietrich/courrier/internal/models"
)

// SpreadsheetWriter renders tables as spreadsheets.
type SpreadsheetWriter interface {
	Write(context.Context, documents.Table) ([]byte, error)
}

var (
	mailColumns = []string{
		"reference", "date", "counterparty", "subject", "priority", "category", "status", "due date",
	}
	contactColumns = []string{
		"code", "name", "organization", "phone", "email",
	}
	activityColumns = []string{
		"time", "user", "action", "details",
	}
)

// ExportService exports query results as spreadsheets. Every export is written to the activity
// log.
type ExportService struct {
	conn        database.Conn
	mailDao     database.MailDao
	contactDao  database.ContactDao
	activityDao database.ActivityDao
	journal     *Journal
	writer      SpreadsheetWriter
}

// NewExportService creates a new ExportService.
func NewExportService(
	conn database.Conn,
	mailDao database.MailDao,
	contactDao database.ContactDao,
	activityDao database.ActivityDao,
	journal *Journal,
	writer SpreadsheetWriter,
) *ExportService {
	return &ExportService{
		conn:        conn,
		mailDao:     mailDao,
		contactDao:  contactDao,
		activityDao: activityDao,
		journal:     journal,
		writer:      writer,
	}
}

// Mails exports the mail records of direction matching filter.
func (s *ExportService) Mails(
	ctx context.Context,
	actor models.Actor,
	direction models.Direction,
	filter database.MailFilter,
) ([]byte, error) {
	if err := access.Check(actor, access.Export); err != nil {
		return nil, err
	}

	mails, err := s.mailDao.Find(ctx, s.conn, direction, filter)
	if err != nil {
		return nil, err
	}

	table := documents.Table{
		Sheet:   string(direction),
		Columns: mailColumns,
		Rows:    make([][]string, len(mails)),
	}

	for i, mail := range mails {
		due := ""
		if mail.DueDate.Valid {
			due = mail.DueDate.Date.String()
		}

		table.Rows[i] = []string{
			mail.ReferenceNo,
			mail.Date.String(),
			mail.CounterpartyName,
			mail.Subject,
			string(mail.Priority),
			string(mail.Category),
			string(mail.Status),
			due,
		}
	}

	return s.export(ctx, actor, table)
}

// Contacts exports the contacts matching search.
func (s *ExportService) Contacts(ctx context.Context, actor models.Actor, search string) ([]byte, error) {
	if err := access.Check(actor, access.Export); err != nil {
		return nil, err
	}

	contacts, err := s.contactDao.Find(ctx, s.conn, search)
	if err != nil {
		return nil, err
	}

	table := documents.Table{
		Sheet:   "contacts",
		Columns: contactColumns,
		Rows:    make([][]string, len(contacts)),
	}

	for i, contact := range contacts {
		table.Rows[i] = []string{
			contact.Code,
			contact.Name,
			contact.Organization,
			contact.Phone,
			contact.Email,
		}
	}

	return s.export(ctx, actor, table)
}

// Activity exports activity log entries. Reading the log is reserved to administrators.
func (s *ExportService) Activity(
	ctx context.Context,
	actor models.Actor,
	filter database.ActivityFilter,
) ([]byte, error) {
	if err := access.Check(actor, access.ManageUsers); err != nil {
		return nil, err
	}

	if err := access.Check(actor, access.Export); err != nil {
		return nil, err
	}

	entries, err := s.activityDao.Find(ctx, s.conn, filter)
	if err != nil {
		return nil, err
	}

	table := documents.Table{
		Sheet:   "activity",
		Columns: activityColumns,
		Rows:    make([][]string, len(entries)),
	}

	for i, entry := range entries {
		user := ""
		if entry.UserID != nil {
			user = strconv.FormatInt(*entry.UserID, 10)
		}

		table.Rows[i] = []string{
			time.Unix(entry.CreatedAt, 0).UTC().Format(time.RFC3339),
			user,
			entry.Action,
			entry.Details,
		}
	}

	return s.export(ctx, actor, table)
}

func (s *ExportService) export(ctx context.Context, actor models.Actor, table documents.Table) ([]byte, error) {
	b, err := s.writer.Write(ctx, table)
	if err != nil {
		return nil, err
	}

	if err := s.journal.Record(ctx, s.conn, actor, ActivityExport,
		"%d rows of %s exported", len(table.Rows), table.Sheet); err != nil {
		return nil, err
	}

	return b, nil
}
