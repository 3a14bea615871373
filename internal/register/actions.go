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
	"errors"
	"strings"

	"github.com/lukasdietrich/courrier/internal/access"
	"github.com/lukasdietrich/courrier/internal/database"
	apperrors "github.com/lukasdietrich/courrier/internal/errors"
	"github.com/lukasdietrich/courrier/internal/models"
)

// ActionInput holds the editable fields of a follow-up action.
type ActionInput struct {
	ActionType  string          `json:"actionType"`
	Description string          `json:"description"`
	AssignedTo  *int64          `json:"assignedTo"`
	DueDate     models.NullDate `json:"dueDate"`
	Notes       string          `json:"notes"`
}

// ActionService manages follow-up actions of mail records. An action starts pending and ends
// either completed or cancelled.
type ActionService struct {
	conn      database.Conn
	actionDao database.ActionDao
	mailDao   database.MailDao
	userDao   database.UserDao
	journal   *Journal
	clock     Clock
}

// NewActionService creates a new ActionService.
func NewActionService(
	conn database.Conn,
	actionDao database.ActionDao,
	mailDao database.MailDao,
	userDao database.UserDao,
	journal *Journal,
	clock Clock,
) *ActionService {
	return &ActionService{
		conn:      conn,
		actionDao: actionDao,
		mailDao:   mailDao,
		userDao:   userDao,
		journal:   journal,
		clock:     clock,
	}
}

// Create adds a pending action to a mail record.
func (s *ActionService) Create(
	ctx context.Context,
	actor models.Actor,
	direction models.Direction,
	mailID int64,
	input ActionInput,
) (*models.ActionEntity, error) {
	if err := access.Check(actor, access.Add); err != nil {
		return nil, err
	}

	action := models.ActionEntity{
		Direction: direction,
		MailID:    mailID,
		Status:    models.ActionPending,
		CreatedBy: actor.UserRef(),
	}

	if err := applyAction(&action, input); err != nil {
		return nil, err
	}

	err := database.WithTx(ctx, s.conn, func(tx database.Tx) error {
		mail, err := s.mailDao.FindByID(ctx, tx, direction, mailID)
		if err != nil {
			return err
		}

		if err := s.checkAssignee(ctx, tx, action.AssignedTo); err != nil {
			return err
		}

		if err := s.actionDao.Insert(ctx, tx, &action); err != nil {
			return err
		}

		return s.journal.Record(ctx, tx, actor, ActivityCreateAction,
			"action %q added to %s", action.ActionType, mail.ReferenceNo)
	})

	if err != nil {
		return nil, err
	}

	return &action, nil
}

// Update changes a pending action. Completed and cancelled actions are read-only.
func (s *ActionService) Update(
	ctx context.Context,
	actor models.Actor,
	id int64,
	input ActionInput,
) (*models.ActionEntity, error) {
	if err := access.Check(actor, access.Edit); err != nil {
		return nil, err
	}

	return s.modify(ctx, actor, id, func(action *models.ActionEntity) error {
		return applyAction(action, input)
	})
}

// Complete marks a pending action as done today.
func (s *ActionService) Complete(ctx context.Context, actor models.Actor, id int64, notes string) (*models.ActionEntity, error) {
	if err := access.Check(actor, access.Edit); err != nil {
		return nil, err
	}

	return s.modify(ctx, actor, id, func(action *models.ActionEntity) error {
		action.Status = models.ActionCompleted
		action.CompletedDate = models.SomeDate(s.clock.today())

		if notes != "" {
			action.Notes = notes
		}

		return nil
	})
}

// Cancel abandons a pending action.
func (s *ActionService) Cancel(ctx context.Context, actor models.Actor, id int64) (*models.ActionEntity, error) {
	if err := access.Check(actor, access.Edit); err != nil {
		return nil, err
	}

	return s.modify(ctx, actor, id, func(action *models.ActionEntity) error {
		action.Status = models.ActionCancelled
		return nil
	})
}

func (s *ActionService) modify(
	ctx context.Context,
	actor models.Actor,
	id int64,
	fn func(*models.ActionEntity) error,
) (*models.ActionEntity, error) {
	var action *models.ActionEntity

	err := database.WithTx(ctx, s.conn, func(tx database.Tx) error {
		var err error

		action, err = s.actionDao.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if action.Status != models.ActionPending {
			return apperrors.Validation("status", "action in status %q cannot be changed", action.Status)
		}

		if err := fn(action); err != nil {
			return err
		}

		if err := s.checkAssignee(ctx, tx, action.AssignedTo); err != nil {
			return err
		}

		if err := s.actionDao.Update(ctx, tx, action); err != nil {
			return err
		}

		return s.journal.Record(ctx, tx, actor, ActivityUpdateAction,
			"action %d (%s) is %s", action.ID, action.ActionType, action.Status)
	})

	if err != nil {
		return nil, err
	}

	return action, nil
}

// ListByMail returns the actions of a mail record.
func (s *ActionService) ListByMail(
	ctx context.Context,
	actor models.Actor,
	direction models.Direction,
	mailID int64,
) ([]models.ActionEntity, error) {
	if err := access.Check(actor, access.View); err != nil {
		return nil, err
	}

	mail, err := s.mailDao.FindByID(ctx, s.conn, direction, mailID)
	if err != nil {
		return nil, err
	}

	return s.actionDao.FindByMail(ctx, s.conn, mail)
}

// Pending returns all pending actions ordered by due date.
func (s *ActionService) Pending(ctx context.Context, actor models.Actor) ([]models.ActionEntity, error) {
	if err := access.Check(actor, access.View); err != nil {
		return nil, err
	}

	return s.actionDao.FindPending(ctx, s.conn)
}

func (s *ActionService) checkAssignee(ctx context.Context, q database.Queryer, assignee *int64) error {
	if assignee == nil {
		return nil
	}

	if _, err := s.userDao.FindByID(ctx, q, *assignee); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Validation("assignedTo", "user %d does not exist", *assignee)
		}

		return err
	}

	return nil
}

func applyAction(action *models.ActionEntity, input ActionInput) error {
	actionType := strings.TrimSpace(input.ActionType)
	if actionType == "" {
		return apperrors.Validation("actionType", "must not be empty")
	}

	action.ActionType = actionType
	action.Description = input.Description
	action.AssignedTo = input.AssignedTo
	action.DueDate = input.DueDate
	action.Notes = input.Notes

	return nil
}
