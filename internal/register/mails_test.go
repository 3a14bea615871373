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
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/courrier/internal/database"
	"github.com/lukasdietrich/courrier/internal/documents"
	apperrors "github.com/lukasdietrich/courrier/internal/errors"
	"github.com/lukasdietrich/courrier/internal/models"
)

func TestMailServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MailServiceTestSuite))
}

type MailServiceTestSuite struct {
	baseRegisterTestSuite
}

func (s *MailServiceTestSuite) expectRender(reference string) {
	s.renderer.
		On("Render",
			mock.Anything,
			mock.MatchedBy(func(fields documents.Fields) bool {
				return fields[documents.FieldReferenceNo] == reference
			}),
		).
		Return([]byte("docx:"+reference), nil).
		Once()
}

func (s *MailServiceTestSuite) transition(direction models.Direction, id int64, status models.MailStatus) *models.MailEntity {
	mail, err := s.mails.Transition(s.ctx, s.user, direction, id, TransitionRequest{Status: status})
	s.Require().NoError(err)

	return mail
}

func (s *MailServiceTestSuite) TestCreateIncoming() {
	mail, err := s.mails.Create(s.ctx, s.user, models.Incoming, MailInput{
		CounterpartyName: "  Tax Office ",
		Subject:          "Assessment 2024",
		Priority:         models.PriorityUrgent,
		Category:         models.CategoryFinancial,
		DueDate:          models.SomeDate(models.NewDate(2025, time.March, 20)),
	})
	s.Require().NoError(err)

	s.Assert().Equal("W-0001-03-2025", mail.ReferenceNo)
	s.Assert().Equal(models.StatusNew, mail.Status)
	s.Assert().Equal("Tax Office", mail.CounterpartyName)
	s.Assert().Equal(s.today(), mail.Date)
	s.Assert().Equal(&s.user.UserID, mail.CreatedBy)
	s.Assert().NotZero(mail.CreatedAt)

	view, err := s.mails.Get(s.ctx, s.viewer, models.Incoming, mail.ID)
	s.Require().NoError(err)
	s.Assert().Equal("Assessment 2024", view.Subject)
	s.Assert().Equal(models.NewDate(2025, time.March, 20), view.DueDate.Date)
	s.Assert().False(view.Due.Overdue)
	s.Assert().False(view.Due.DueSoon)
	s.Assert().Equal(6, view.Due.DaysLeft)

	entries := s.activities(ActivityCreateMail)
	s.Require().Len(entries, 1)
	s.Assert().Equal(&s.user.UserID, entries[0].UserID)
	s.Assert().Contains(entries[0].Details, "W-0001-03-2025")
}

func (s *MailServiceTestSuite) TestCreateValidation() {
	for _, input := range []MailInput{
		{CounterpartyName: "Tax Office"},
		{Subject: "No counterparty"},
		{CounterpartyName: "Tax Office", Subject: "x", Priority: "whenever"},
		{CounterpartyName: "Tax Office", Subject: "x", Category: "gossip"},
	} {
		_, err := s.mails.Create(s.ctx, s.user, models.Incoming, input)
		s.Assert().ErrorIs(err, apperrors.ErrValidation)
	}

	_, err := s.mails.Create(s.ctx, s.user, models.Outgoing, MailInput{
		CounterpartyName: "Tax Office",
		Subject:          "Reply",
		DueDate:          models.SomeDate(s.today()),
	})
	s.Assert().ErrorIs(err, apperrors.ErrValidation)

	_, err = s.mails.Create(s.ctx, s.user, models.Direction("sideways"), MailInput{
		CounterpartyName: "Tax Office",
		Subject:          "Reply",
	})
	s.Assert().ErrorIs(err, apperrors.ErrValidation)

	page, err := s.mails.List(s.ctx, s.admin, models.Incoming, database.MailFilter{})
	s.Require().NoError(err)
	s.Assert().Zero(page.Total)
}

func (s *MailServiceTestSuite) TestCreatePermission() {
	_, err := s.mails.Create(s.ctx, s.viewer, models.Incoming, MailInput{
		CounterpartyName: "Tax Office",
		Subject:          "Assessment",
	})
	s.Assert().ErrorIs(err, apperrors.ErrPermissionDenied)

	var permissionErr *apperrors.PermissionError
	s.Require().ErrorAs(err, &permissionErr)
	s.Assert().Equal("add", permissionErr.Action)

	ref, err := s.mails.PeekReference(s.ctx, s.user, models.Incoming)
	s.Require().NoError(err)
	s.Assert().Equal("W-0001-03-2025", ref)
}

func (s *MailServiceTestSuite) TestCreateCounterpartyFromContact() {
	contact := s.createContact("MOW", "Ministry of Works")

	mail, err := s.mails.Create(s.ctx, s.user, models.Incoming, MailInput{
		CounterpartyID:   &contact.ID,
		CounterpartyName: "typed by hand",
		Subject:          "Road works",
	})
	s.Require().NoError(err)
	s.Assert().Equal("Ministry of Works", mail.CounterpartyName)

	_, err = s.contacts.Update(s.ctx, s.user, contact.ID, ContactInput{
		Code: "MOW",
		Name: "Ministry of Infrastructure",
	})
	s.Require().NoError(err)

	view, err := s.mails.Get(s.ctx, s.user, models.Incoming, mail.ID)
	s.Require().NoError(err)
	s.Assert().Equal("Ministry of Works", view.CounterpartyName)

	unknown := int64(4711)
	_, err = s.mails.Create(s.ctx, s.user, models.Incoming, MailInput{
		CounterpartyID: &unknown,
		Subject:        "Road works",
	})
	s.Assert().ErrorIs(err, apperrors.ErrValidation)
}

func (s *MailServiceTestSuite) TestOutgoingSequenceInMarch() {
	var references []string

	for i := 0; i < 3; i++ {
		mail := s.createMail(models.Outgoing, "Letter")
		s.Assert().Equal(models.StatusDraft, mail.Status)

		references = append(references, mail.ReferenceNo)
	}

	s.Assert().Equal([]string{"S-0001-03-2025", "S-0002-03-2025", "S-0003-03-2025"}, references)
}

func (s *MailServiceTestSuite) TestSequenceRestartsEveryPeriod() {
	s.Assert().Equal("W-0001-03-2025", s.createMail(models.Incoming, "March").ReferenceNo)
	s.Assert().Equal("S-0001-03-2025", s.createMail(models.Outgoing, "March").ReferenceNo)

	s.now = time.Date(2025, time.April, 1, 8, 0, 0, 0, time.UTC)
	s.Assert().Equal("W-0001-04-2025", s.createMail(models.Incoming, "April").ReferenceNo)
	s.Assert().Equal("W-0002-04-2025", s.createMail(models.Incoming, "April").ReferenceNo)
}

func (s *MailServiceTestSuite) TestDeletedSequencesAreNotReused() {
	s.createMail(models.Incoming, "first")
	second := s.createMail(models.Incoming, "second")
	s.createMail(models.Incoming, "third")

	s.Require().NoError(s.mails.Delete(s.ctx, s.admin, models.Incoming, second.ID))

	fourth := s.createMail(models.Incoming, "fourth")
	s.Assert().Equal("W-0004-03-2025", fourth.ReferenceNo)

	page, err := s.mails.List(s.ctx, s.user, models.Incoming, database.MailFilter{})
	s.Require().NoError(err)
	s.Assert().EqualValues(3, page.Total)

	var sequences []int
	for _, mail := range page.Items {
		ref, err := models.ParseReference(mail.ReferenceNo)
		s.Require().NoError(err)

		sequences = append(sequences, ref.Sequence)
	}

	s.Assert().ElementsMatch([]int{1, 3, 4}, sequences)
}

func (s *MailServiceTestSuite) TestDuplicateReferenceIsRetriedOnce() {
	_, err := s.conn.ExecContext(s.ctx, `
		insert into "outgoing_mail" ( "reference_no", "counterparty_name", "subject", "status", "mail_date" )
		values ( 'S-0001-03-2025', 'Imported', 'Imported', 'draft', '2025-03-01' ) ;
	`)
	s.Require().NoError(err)

	mail := s.createMail(models.Outgoing, "After import")
	s.Assert().Equal("S-0002-03-2025", mail.ReferenceNo)

	_, err = s.conn.ExecContext(s.ctx, `
		insert into "outgoing_mail" ( "reference_no", "counterparty_name", "subject", "status", "mail_date" )
		values
			( 'S-0003-03-2025', 'Imported', 'Imported', 'draft', '2025-03-01' ) ,
			( 'S-0004-03-2025', 'Imported', 'Imported', 'draft', '2025-03-01' ) ;
	`)
	s.Require().NoError(err)

	_, err = s.mails.Create(s.ctx, s.user, models.Outgoing, MailInput{
		CounterpartyName: "Ministry of Works",
		Subject:          "Collides twice",
	})
	s.Assert().ErrorIs(err, apperrors.ErrDuplicateKey)

	peek, err := s.mails.PeekReference(s.ctx, s.user, models.Outgoing)
	s.Require().NoError(err)
	s.Assert().Equal("S-0003-03-2025", peek)
}

func (s *MailServiceTestSuite) TestIncomingScenario() {
	mail := s.createMail(models.Incoming, "Request for comment")
	s.Assert().Equal(models.StatusNew, mail.Status)
	s.Assert().False(mail.DueDate.Valid)

	mail = s.transition(models.Incoming, mail.ID, models.StatusProcessing)
	s.Assert().Equal(models.StatusProcessing, mail.Status)
	s.Assert().Equal(&s.user.UserID, mail.HandledBy)

	mail, err := s.mails.SetDueDate(s.ctx, s.user, mail.ID, models.SomeDate(s.today().AddDays(10)), false)
	s.Require().NoError(err)
	s.Assert().Equal(s.today().AddDays(10), mail.DueDate.Date)

	mail = s.transition(models.Incoming, mail.ID, models.StatusCompleted)

	_, err = s.mails.SetDueDate(s.ctx, s.user, mail.ID, models.NullDate{}, false)
	s.Assert().ErrorIs(err, apperrors.ErrValidation)

	_, err = s.mails.SetDueDate(s.ctx, s.user, mail.ID, models.NullDate{}, true)
	s.Require().NoError(err)

	view, err := s.mails.Get(s.ctx, s.user, models.Incoming, mail.ID)
	s.Require().NoError(err)
	s.Assert().Equal(models.StatusCompleted, view.Status)
	s.Assert().False(view.DueDate.Valid)
	s.Assert().Equal("W-0001-03-2025", view.ReferenceNo)

	s.Assert().Len(s.activities(ActivityTransitionMail), 2)
	s.Assert().Len(s.activities(ActivityDueDate), 2)
}

func (s *MailServiceTestSuite) TestIllegalTransitions() {
	incoming := s.createMail(models.Incoming, "in")
	s.transition(models.Incoming, incoming.ID, models.StatusProcessing)
	s.transition(models.Incoming, incoming.ID, models.StatusCompleted)

	for _, to := range []models.MailStatus{
		models.StatusNew,
		models.StatusProcessing,
		models.StatusCompleted,
		models.StatusCancelled,
		models.StatusSent,
	} {
		_, err := s.mails.Transition(s.ctx, s.user, models.Incoming, incoming.ID, TransitionRequest{Status: to})
		s.Assert().ErrorIs(err, apperrors.ErrValidation, to)
	}

	outgoing := s.createMail(models.Outgoing, "out")

	_, err := s.mails.Transition(s.ctx, s.user, models.Outgoing, outgoing.ID, TransitionRequest{
		Status: models.StatusArchived,
	})
	s.Assert().ErrorIs(err, apperrors.ErrValidation)

	_, err = s.mails.Transition(s.ctx, s.viewer, models.Outgoing, outgoing.ID, TransitionRequest{
		Status: models.StatusSent,
	})
	s.Assert().ErrorIs(err, apperrors.ErrPermissionDenied)

	view, err := s.mails.Get(s.ctx, s.user, models.Outgoing, outgoing.ID)
	s.Require().NoError(err)
	s.Assert().Equal(models.StatusDraft, view.Status)
}

func (s *MailServiceTestSuite) TestBordereauOnFirstSent() {
	contact := s.createContact("MOW", "Ministry of Works")

	mail, err := s.mails.Create(s.ctx, s.user, models.Outgoing, MailInput{
		CounterpartyID: &contact.ID,
		Subject:        "Budget request",
		Notes:          "two copies",
	})
	s.Require().NoError(err)

	s.renderer.
		On("Render", mock.Anything, documents.Fields{
			documents.FieldReferenceNo:   "S-0001-03-2025",
			documents.FieldSentDate:      "2025-03-14",
			documents.FieldRecipientName: "Ministry of Works",
			documents.FieldOrganization:  "Ministry of Works Ltd.",
			documents.FieldPhone:         "+49 30 1234567",
			documents.FieldEmail:         contact.Email,
			documents.FieldSubject:       "Budget request",
			documents.FieldNotes:         "two copies",
		}).
		Return([]byte("docx"), nil).
		Once()

	mail = s.transition(models.Outgoing, mail.ID, models.StatusSent)
	s.Require().NotEmpty(mail.Bordereau)
	first := mail.Bordereau

	mail = s.transition(models.Outgoing, mail.ID, models.StatusArchived)
	mail = s.transition(models.Outgoing, mail.ID, models.StatusSent)
	s.Assert().Equal(first, mail.Bordereau)

	r, err := s.mails.OpenBordereau(s.ctx, s.viewer, mail.ID)
	s.Require().NoError(err)

	content, err := io.ReadAll(r)
	s.Require().NoError(r.Close())
	s.Require().NoError(err)
	s.Assert().Equal("docx", string(content))

	s.Assert().Len(s.activities(ActivityBordereau), 1)
}

func (s *MailServiceTestSuite) TestBordereauRegeneratedOnRequest() {
	mail := s.createMail(models.Outgoing, "Letter")

	s.expectRender(mail.ReferenceNo)
	mail = s.transition(models.Outgoing, mail.ID, models.StatusSent)
	first := mail.Bordereau

	mail = s.transition(models.Outgoing, mail.ID, models.StatusArchived)

	s.expectRender(mail.ReferenceNo)
	mail, err := s.mails.Transition(s.ctx, s.user, models.Outgoing, mail.ID, TransitionRequest{
		Status:              models.StatusSent,
		RegenerateBordereau: true,
	})
	s.Require().NoError(err)
	s.Assert().NotEqual(first, mail.Bordereau)

	_, err = s.blobs.Reader(first)
	s.Assert().Error(err)
}

func (s *MailServiceTestSuite) TestBordereauFailureKeepsDraft() {
	mail := s.createMail(models.Outgoing, "Letter")

	s.renderer.
		On("Render", mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrTemplateMissing).
		Once()

	_, err := s.mails.Transition(s.ctx, s.user, models.Outgoing, mail.ID, TransitionRequest{
		Status: models.StatusSent,
	})
	s.Assert().ErrorIs(err, apperrors.ErrTemplateMissing)

	view, err := s.mails.Get(s.ctx, s.user, models.Outgoing, mail.ID)
	s.Require().NoError(err)
	s.Assert().Equal(models.StatusDraft, view.Status)
	s.Assert().Empty(view.Bordereau)

	_, err = s.mails.OpenBordereau(s.ctx, s.user, mail.ID)
	s.Assert().ErrorIs(err, apperrors.ErrNotFound)
}

func (s *MailServiceTestSuite) TestBordereauCarriesMailDate() {
	mail, err := s.mails.Create(s.ctx, s.user, models.Outgoing, MailInput{
		CounterpartyName: "District Court",
		Subject:          "Appeal",
		Date:             models.DateOf(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)),
	})
	s.Require().NoError(err)

	s.renderer.
		On("Render",
			mock.Anything,
			mock.MatchedBy(func(fields documents.Fields) bool {
				return fields[documents.FieldSentDate] == "2025-03-01"
			}),
		).
		Return([]byte("docx"), nil).
		Once()

	mail = s.transition(models.Outgoing, mail.ID, models.StatusSent)
	s.Assert().Equal("2025-03-01", mail.Date.String())
	s.Assert().NotEmpty(mail.Bordereau)
}

func (s *MailServiceTestSuite) TestBordereauRenderingDoesNotBlockWriters() {
	mail := s.createMail(models.Outgoing, "Slow template")

	var concurrent *models.MailEntity

	s.renderer.
		On("Render", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			ctx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
			defer cancel()

			var err error
			concurrent, err = s.mails.Create(ctx, s.user, models.Incoming, MailInput{
				CounterpartyName: "Court",
				Subject:          "Arrived while rendering",
			})
			s.Require().NoError(err)
		}).
		Return([]byte("docx"), nil).
		Once()

	mail = s.transition(models.Outgoing, mail.ID, models.StatusSent)
	s.Assert().Equal(models.StatusSent, mail.Status)
	s.Assert().NotEmpty(mail.Bordereau)

	s.Require().NotNil(concurrent)
	s.Assert().Equal("W-0001-03-2025", concurrent.ReferenceNo)
}

func (s *MailServiceTestSuite) TestBordereauDiscardedOnConcurrentChange() {
	mail := s.createMail(models.Outgoing, "Withdrawn")

	s.renderer.
		On("Render", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			s.transition(models.Outgoing, mail.ID, models.StatusCancelled)
		}).
		Return([]byte("docx"), nil).
		Once()

	_, err := s.mails.Transition(s.ctx, s.user, models.Outgoing, mail.ID, TransitionRequest{
		Status: models.StatusSent,
	})
	s.Assert().ErrorIs(err, apperrors.ErrValidation)

	view, err := s.mails.Get(s.ctx, s.user, models.Outgoing, mail.ID)
	s.Require().NoError(err)
	s.Assert().Equal(models.StatusCancelled, view.Status)
	s.Assert().Empty(view.Bordereau)
	s.Assert().Empty(s.activities(ActivityBordereau))
}

func (s *MailServiceTestSuite) TestUpdateKeepsHandler() {
	mail := s.createMail(models.Incoming, "Assigned")
	mail = s.transition(models.Incoming, mail.ID, models.StatusProcessing)
	s.Require().Equal(&s.user.UserID, mail.HandledBy)

	updated, err := s.mails.Update(s.ctx, s.user, models.Incoming, mail.ID, MailInput{
		CounterpartyName: "Court",
		Subject:          "Renamed",
	})
	s.Require().NoError(err)
	s.Assert().Equal(&s.user.UserID, updated.HandledBy)

	updated, err = s.mails.Update(s.ctx, s.user, models.Incoming, mail.ID, MailInput{
		CounterpartyName: "Court",
		Subject:          "Renamed",
		HandledBy:        &s.admin.UserID,
	})
	s.Require().NoError(err)
	s.Assert().Equal(&s.admin.UserID, updated.HandledBy)

	updated, err = s.mails.Update(s.ctx, s.user, models.Incoming, mail.ID, MailInput{
		CounterpartyName: "Court",
		Subject:          "Renamed",
		ClearHandledBy:   true,
	})
	s.Require().NoError(err)
	s.Assert().Nil(updated.HandledBy)
}

func (s *MailServiceTestSuite) TestCancelOutgoing() {
	mail := s.createMail(models.Outgoing, "Letter")

	s.expectRender(mail.ReferenceNo)
	s.transition(models.Outgoing, mail.ID, models.StatusSent)

	mail = s.transition(models.Outgoing, mail.ID, models.StatusCancelled)
	s.Assert().Equal(models.StatusCancelled, mail.Status)

	_, err := s.mails.Transition(s.ctx, s.user, models.Outgoing, mail.ID, TransitionRequest{
		Status: models.StatusSent,
	})
	s.Assert().ErrorIs(err, apperrors.ErrValidation)
}

func (s *MailServiceTestSuite) TestDeleteOutgoingOnlyAsDraft() {
	draft := s.createMail(models.Outgoing, "draft")
	sent := s.createMail(models.Outgoing, "sent")

	s.expectRender(sent.ReferenceNo)
	s.transition(models.Outgoing, sent.ID, models.StatusSent)

	s.Assert().ErrorIs(s.mails.Delete(s.ctx, s.user, models.Outgoing, draft.ID), apperrors.ErrPermissionDenied)
	s.Assert().ErrorIs(s.mails.Delete(s.ctx, s.admin, models.Outgoing, sent.ID), apperrors.ErrValidation)
	s.Assert().NoError(s.mails.Delete(s.ctx, s.admin, models.Outgoing, draft.ID))

	_, err := s.mails.Get(s.ctx, s.admin, models.Outgoing, draft.ID)
	s.Assert().ErrorIs(err, apperrors.ErrNotFound)

	s.Assert().ErrorIs(s.mails.Delete(s.ctx, s.admin, models.Outgoing, draft.ID), apperrors.ErrNotFound)
}

func (s *MailServiceTestSuite) TestUpdate() {
	mail := s.createMail(models.Incoming, "Original")

	updated, err := s.mails.Update(s.ctx, s.user, models.Incoming, mail.ID, MailInput{
		CounterpartyName: "Court",
		Subject:          "Changed",
		Priority:         models.PriorityImportant,
		DueDate:          models.SomeDate(s.today().AddDays(2)),
	})
	s.Require().NoError(err)
	s.Assert().Equal(mail.ReferenceNo, updated.ReferenceNo)
	s.Assert().Equal(mail.Date, updated.Date)
	s.Assert().Equal(models.StatusNew, updated.Status)

	view, err := s.mails.Get(s.ctx, s.user, models.Incoming, mail.ID)
	s.Require().NoError(err)
	s.Assert().Equal("Changed", view.Subject)
	s.Assert().Equal(models.PriorityImportant, view.Priority)
	s.Assert().True(view.Due.DueSoon)
	s.Assert().Equal(2, view.Due.DaysLeft)

	_, err = s.mails.Update(s.ctx, s.user, models.Incoming, mail.ID, MailInput{
		CounterpartyName: "Court",
		Subject:          "Changed",
	})
	s.Assert().ErrorIs(err, apperrors.ErrValidation)

	_, err = s.mails.Update(s.ctx, s.viewer, models.Incoming, mail.ID, MailInput{
		CounterpartyName: "Court",
		Subject:          "Changed",
	})
	s.Assert().ErrorIs(err, apperrors.ErrPermissionDenied)

	_, err = s.mails.Update(s.ctx, s.user, models.Incoming, 4711, MailInput{
		CounterpartyName: "Court",
		Subject:          "Changed",
	})
	s.Assert().ErrorIs(err, apperrors.ErrNotFound)
}

func (s *MailServiceTestSuite) TestListAndReminders() {
	for i, due := range []int{-1, 0, 3, 4} {
		mail, err := s.mails.Create(s.ctx, s.user, models.Incoming, MailInput{
			CounterpartyName: "Court",
			Subject:          "Hearing " + strings.Repeat("I", i+1),
			DueDate:          models.SomeDate(s.today().AddDays(due)),
		})
		s.Require().NoError(err)

		if due == 0 {
			s.transition(models.Incoming, mail.ID, models.StatusCancelled)
		}
	}

	reminders, err := s.mails.Reminders(s.ctx, s.viewer)
	s.Require().NoError(err)
	s.Require().Len(reminders, 2)

	s.Assert().Equal("Hearing I", reminders[0].Subject)
	s.Assert().True(reminders[0].Due.Overdue)
	s.Assert().Equal(1, reminders[0].Due.OverdueDays)

	s.Assert().Equal("Hearing III", reminders[1].Subject)
	s.Assert().True(reminders[1].Due.DueSoon)
	s.Assert().Equal(3, reminders[1].Due.DaysLeft)

	page, err := s.mails.List(s.ctx, s.viewer, models.Incoming, database.MailFilter{
		Search: "hearing iv",
	})
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Assert().EqualValues(1, page.Total)
	s.Assert().Equal("Hearing IV", page.Items[0].Subject)

	page, err = s.mails.List(s.ctx, s.viewer, models.Incoming, database.MailFilter{Limit: 1})
	s.Require().NoError(err)
	s.Assert().Len(page.Items, 1)
	s.Assert().EqualValues(4, page.Total)

	view, err := s.mails.GetByReference(s.ctx, s.viewer, models.Incoming, "W-0002-03-2025")
	s.Require().NoError(err)
	s.Assert().Equal("Hearing II", view.Subject)
}

func (s *MailServiceTestSuite) TestAttachments() {
	mail := s.createMail(models.Incoming, "With files")

	mail, err := s.mails.Attach(s.ctx, s.user, models.Incoming, mail.ID, "scan.PDF", strings.NewReader("%PDF-1.4"))
	s.Require().NoError(err)
	s.Require().Len(mail.Attachments, 1)
	s.Assert().True(strings.HasSuffix(mail.Attachments[0], ".pdf"))

	blob := mail.Attachments[0]

	r, err := s.mails.OpenAttachment(s.ctx, s.viewer, models.Incoming, mail.ID, blob)
	s.Require().NoError(err)

	content, err := io.ReadAll(r)
	s.Require().NoError(r.Close())
	s.Require().NoError(err)
	s.Assert().Equal("%PDF-1.4", string(content))

	_, err = s.mails.Attach(s.ctx, s.user, models.Incoming, mail.ID, "run.exe", strings.NewReader("MZ"))
	s.Assert().ErrorIs(err, apperrors.ErrValidation)

	_, err = s.mails.Attach(s.ctx, s.user, models.Incoming, mail.ID, "huge.png",
		bytes.NewReader(make([]byte, 65)))
	s.Assert().ErrorIs(err, apperrors.ErrValidation)

	_, err = s.mails.OpenAttachment(s.ctx, s.viewer, models.Incoming, mail.ID, "foreign.pdf")
	s.Assert().ErrorIs(err, apperrors.ErrNotFound)

	mail, err = s.mails.Detach(s.ctx, s.user, models.Incoming, mail.ID, blob)
	s.Require().NoError(err)
	s.Assert().Empty(mail.Attachments)

	_, err = s.blobs.Reader(blob)
	s.Assert().Error(err)
}
