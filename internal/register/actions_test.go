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
	"testing"

	"github.com/stretchr/testify/suite"

	apperrors "github.com/lukasdietrich/courrier/internal/errors"
	"github.com/lukasdietrich/courrier/internal/models"
)

func TestActionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ActionServiceTestSuite))
}

type ActionServiceTestSuite struct {
	baseRegisterTestSuite
}

func (s *ActionServiceTestSuite) TestLifecycle() {
	mail := s.createMail(models.Incoming, "Needs a reply")

	action, err := s.actions.Create(s.ctx, s.user, models.Incoming, mail.ID, ActionInput{
		ActionType: "reply",
		AssignedTo: &s.user.UserID,
		DueDate:    models.SomeDate(s.today().AddDays(5)),
	})
	s.Require().NoError(err)
	s.Assert().Equal(models.ActionPending, action.Status)
	s.Assert().Equal(&s.user.UserID, action.CreatedBy)

	pending, err := s.actions.Pending(s.ctx, s.viewer)
	s.Require().NoError(err)
	s.Assert().Len(pending, 1)

	action, err = s.actions.Update(s.ctx, s.user, action.ID, ActionInput{
		ActionType:  "reply",
		Description: "draft answer",
	})
	s.Require().NoError(err)
	s.Assert().Equal("draft answer", action.Description)
	s.Assert().Nil(action.AssignedTo)

	action, err = s.actions.Complete(s.ctx, s.user, action.ID, "sent by fax")
	s.Require().NoError(err)
	s.Assert().Equal(models.ActionCompleted, action.Status)
	s.Assert().Equal(models.SomeDate(s.today()), action.CompletedDate)
	s.Assert().Equal("sent by fax", action.Notes)

	_, err = s.actions.Cancel(s.ctx, s.user, action.ID)
	s.Assert().ErrorIs(err, apperrors.ErrValidation)

	actions, err := s.actions.ListByMail(s.ctx, s.viewer, models.Incoming, mail.ID)
	s.Require().NoError(err)
	s.Require().Len(actions, 1)
	s.Assert().Equal(models.ActionCompleted, actions[0].Status)

	pending, err = s.actions.Pending(s.ctx, s.viewer)
	s.Require().NoError(err)
	s.Assert().Empty(pending)
}

func (s *ActionServiceTestSuite) TestCreateValidation() {
	mail := s.createMail(models.Outgoing, "Letter")

	_, err := s.actions.Create(s.ctx, s.user, models.Outgoing, mail.ID, ActionInput{})
	s.Assert().ErrorIs(err, apperrors.ErrValidation)

	unknown := int64(4711)
	_, err = s.actions.Create(s.ctx, s.user, models.Outgoing, mail.ID, ActionInput{
		ActionType: "call",
		AssignedTo: &unknown,
	})
	s.Assert().ErrorIs(err, apperrors.ErrValidation)

	_, err = s.actions.Create(s.ctx, s.user, models.Incoming, mail.ID, ActionInput{ActionType: "call"})
	s.Assert().ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.actions.Create(s.ctx, s.viewer, models.Outgoing, mail.ID, ActionInput{ActionType: "call"})
	s.Assert().ErrorIs(err, apperrors.ErrPermissionDenied)
}

func (s *ActionServiceTestSuite) TestDeletingMailRemovesActions() {
	mail := s.createMail(models.Incoming, "Short lived")

	_, err := s.actions.Create(s.ctx, s.user, models.Incoming, mail.ID, ActionInput{ActionType: "file"})
	s.Require().NoError(err)

	s.Require().NoError(s.mails.Delete(s.ctx, s.admin, models.Incoming, mail.ID))

	pending, err := s.actions.Pending(s.ctx, s.viewer)
	s.Require().NoError(err)
	s.Assert().Empty(pending)
}
