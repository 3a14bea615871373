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

package lifecycle

import (
	apperrors "github.com/lukasdietrich/courrier/internal/errors"
	"github.com/lukasdietrich/courrier/internal/models"
)

// DueState is derived from the due date and status of a mail record on every read. It is never
// stored.
type DueState struct {
	Overdue     bool `json:"overdue"`
	OverdueDays int  `json:"overdueDays,omitempty"`
	DueSoon     bool `json:"dueSoon"`
	DaysLeft    int  `json:"daysLeft,omitempty"`
}

// Due derives the due state of a mail record. Mail without due date or in a terminal status is
// neither overdue nor due soon. A record is due soon, when the due date is at most threshold days
// ahead.
func Due(mail *models.MailEntity, today models.Date, threshold int) DueState {
	if !mail.DueDate.Valid || IsTerminal(mail.Direction, mail.Status) {
		return DueState{}
	}

	daysLeft := today.DaysUntil(mail.DueDate.Date)

	switch {
	case daysLeft < 0:
		return DueState{Overdue: true, OverdueDays: -daysLeft}
	case daysLeft <= threshold:
		return DueState{DueSoon: true, DaysLeft: daysLeft}
	default:
		return DueState{DaysLeft: daysLeft}
	}
}

// ChangeDueDate applies a new due date to a mail record. Only incoming mail has due dates. A due
// date can only be set while the record is not terminal. Clearing an existing due date is allowed
// in every status, but requires confirmClear.
func ChangeDueDate(mail *models.MailEntity, due models.NullDate, confirmClear bool) error {
	if mail.Direction != models.Incoming {
		return apperrors.Validation("dueDate", "%s mail has no due date", mail.Direction)
	}

	if !due.Valid {
		if mail.DueDate.Valid && !confirmClear {
			return apperrors.Validation("dueDate", "clearing the due date requires confirmation")
		}

		mail.DueDate = models.NullDate{}
		return nil
	}

	if IsTerminal(mail.Direction, mail.Status) {
		return apperrors.Validation("dueDate", "mail in status %q cannot get a due date", mail.Status)
	}

	mail.DueDate = due
	return nil
}
