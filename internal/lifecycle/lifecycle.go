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

// Package lifecycle holds the status state machines of incoming and outgoing mail and the rules
// for due dates. It does not touch storage.
package lifecycle

import (
	apperrors "github.com/lukasdietrich/courrier/internal/errors"
	"github.com/lukasdietrich/courrier/internal/models"
)

type machine struct {
	initial     models.MailStatus
	statuses    []models.MailStatus
	transitions map[models.MailStatus][]models.MailStatus
	terminal    map[models.MailStatus]bool
}

var machines = map[models.Direction]machine{
	models.Incoming: {
		initial: models.StatusNew,
		statuses: []models.MailStatus{
			models.StatusNew,
			models.StatusProcessing,
			models.StatusCompleted,
			models.StatusCancelled,
		},
		transitions: map[models.MailStatus][]models.MailStatus{
			models.StatusNew:        {models.StatusProcessing, models.StatusCancelled},
			models.StatusProcessing: {models.StatusCompleted, models.StatusCancelled},
		},
		terminal: map[models.MailStatus]bool{
			models.StatusCompleted: true,
			models.StatusCancelled: true,
		},
	},
	models.Outgoing: {
		initial: models.StatusDraft,
		statuses: []models.MailStatus{
			models.StatusDraft,
			models.StatusSent,
			models.StatusArchived,
			models.StatusCancelled,
		},
		transitions: map[models.MailStatus][]models.MailStatus{
			models.StatusDraft:    {models.StatusSent, models.StatusCancelled},
			models.StatusSent:     {models.StatusArchived, models.StatusCancelled},
			models.StatusArchived: {models.StatusSent},
		},
		terminal: map[models.MailStatus]bool{
			models.StatusCancelled: true,
		},
	},
}

func machineOf(direction models.Direction) (machine, error) {
	m, ok := machines[direction]
	if !ok {
		return machine{}, apperrors.Validation("direction", "unknown direction %q", direction)
	}

	return m, nil
}

// InitialStatus returns the status of newly created mail.
func InitialStatus(direction models.Direction) (models.MailStatus, error) {
	m, err := machineOf(direction)
	return m.initial, err
}

// Statuses returns the status vocabulary of a direction.
func Statuses(direction models.Direction) []models.MailStatus {
	return machines[direction].statuses
}

// ValidStatus checks if status belongs to the vocabulary of direction.
func ValidStatus(direction models.Direction, status models.MailStatus) bool {
	for _, known := range machines[direction].statuses {
		if known == status {
			return true
		}
	}

	return false
}

// IsTerminal checks if no transition leads out of status.
func IsTerminal(direction models.Direction, status models.MailStatus) bool {
	return machines[direction].terminal[status]
}

// NextStatuses returns the statuses reachable from status in a single transition.
func NextStatuses(direction models.Direction, status models.MailStatus) []models.MailStatus {
	return machines[direction].transitions[status]
}

// CanTransition checks if the transition from one status to another is allowed. A transition to
// the same status is never allowed.
func CanTransition(direction models.Direction, from, to models.MailStatus) bool {
	for _, next := range NextStatuses(direction, from) {
		if next == to {
			return true
		}
	}

	return false
}

// Transition validates a status change and returns a validation error for illegal ones.
func Transition(direction models.Direction, from, to models.MailStatus) error {
	if _, err := machineOf(direction); err != nil {
		return err
	}

	if !ValidStatus(direction, to) {
		return apperrors.Validation("status", "%q is not a status of %s mail", to, direction)
	}

	if !CanTransition(direction, from, to) {
		return apperrors.Validation("status", "%s mail cannot change from %q to %q", direction, from, to)
	}

	return nil
}

// RequiresBordereau checks if entering status `to` has to generate a bordereau. It is generated
// on the first entry into sent and regenerated only on request.
func RequiresBordereau(mail *models.MailEntity, to models.MailStatus, regenerate bool) bool {
	return mail.Direction == models.Outgoing &&
		to == models.StatusSent &&
		(mail.Bordereau == "" || regenerate)
}

// CanDelete checks if a mail record may be hard-deleted in its current status. Outgoing mail may
// only be deleted as draft.
func CanDelete(mail *models.MailEntity) error {
	if mail.Direction == models.Outgoing && mail.Status != models.StatusDraft {
		return apperrors.Validation("status", "outgoing mail in status %q cannot be deleted", mail.Status)
	}

	return nil
}
