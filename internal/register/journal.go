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
	"fmt"

	"github.com/lukasdietrich/courrier/internal/access"
	"github.com/lukasdietrich/courrier/internal/database"
	"github.com/lukasdietrich/courrier/internal/log"
	"github.com/lukasdietrich/courrier/internal/models"
)

// Labels of activity log entries.
const (
	ActivityLogin          = "login"
	ActivityLoginFailed    = "login_failed"
	ActivityLogout         = "logout"
	ActivityCreateMail     = "mail_create"
	ActivityUpdateMail     = "mail_update"
	ActivityTransitionMail = "mail_status"
	ActivityDueDate        = "mail_due_date"
	ActivityAttach         = "mail_attach"
	ActivityDetach         = "mail_detach"
	ActivityBordereau      = "mail_bordereau"
	ActivityDeleteMail     = "mail_delete"
	ActivityCreateContact  = "contact_create"
	ActivityUpdateContact  = "contact_update"
	ActivityDeleteContact  = "contact_delete"
	ActivityCreateUser     = "user_create"
	ActivityUpdateUser     = "user_update"
	ActivityDeactivateUser = "user_deactivate"
	ActivityDeleteUser     = "user_delete"
	ActivityPasswordReset  = "password_reset"
	ActivityPasswordChange = "password_change"
	ActivityCreateAction   = "action_create"
	ActivityUpdateAction   = "action_update"
	ActivityExport         = "export"
	ActivityBackup         = "backup"
)

// Journal appends to the activity log. Entries are written within the transaction of the
// operation they describe.
type Journal struct {
	conn        database.Conn
	activityDao database.ActivityDao
}

// NewJournal creates a new Journal.
func NewJournal(conn database.Conn, activityDao database.ActivityDao) *Journal {
	return &Journal{
		conn:        conn,
		activityDao: activityDao,
	}
}

// Record appends an entry on behalf of actor. Entries of the system actor have no user. The entry
// only persists once the transaction behind q commits.
func (j *Journal) Record(
	ctx context.Context,
	q database.Queryer,
	actor models.Actor,
	action string,
	format string,
	v ...interface{},
) error {
	entry := models.ActivityEntity{
		UserID:  actor.UserRef(),
		Action:  action,
		Details: fmt.Sprintf(format, v...),
	}

	if err := j.activityDao.Insert(ctx, q, &entry); err != nil {
		return err
	}

	log.DebugContext(ctx).
		Str("activity", entry.Action).
		Str("actor", actor.Username).
		Str("details", entry.Details).
		Msg("activity staged")

	return nil
}

// ActivityPage is a page of activity log entries together with the total number of matches.
type ActivityPage struct {
	Items []models.ActivityEntity `json:"items"`
	Total int64                   `json:"total"`
}

// Browse returns activity log entries matching the filter. Only administrators may read the log.
func (j *Journal) Browse(
	ctx context.Context,
	actor models.Actor,
	filter database.ActivityFilter,
) (*ActivityPage, error) {
	if err := access.Check(actor, access.ManageUsers); err != nil {
		return nil, err
	}

	items, err := j.activityDao.Find(ctx, j.conn, filter)
	if err != nil {
		return nil, err
	}

	total, err := j.activityDao.Count(ctx, j.conn, filter)
	if err != nil {
		return nil, err
	}

	return &ActivityPage{Items: items, Total: total}, nil
}
