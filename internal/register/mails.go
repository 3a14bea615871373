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
	"io"
	"sort"
	"strings"

	"github.com/lukasdietrich/courrier/internal/access"
	"github.com/lukasdietrich/courrier/internal/database"
	apperrors "github.com/lukasdietrich/courrier/internal/errors"
	"github.com/lukasdietrich/courrier/internal/lifecycle"
	"github.com/lukasdietrich/courrier/internal/log"
	"github.com/lukasdietrich/courrier/internal/models"
	"github.com/lukasdietrich/courrier/internal/storage"
)

// MailInput holds the editable fields of a mail record. The reference number is not among them,
// it is assigned once on creation and never changes.
type MailInput struct {
	CounterpartyID   *int64          `json:"counterpartyId"`
	CounterpartyName string          `json:"counterpartyName"`
	Subject          string          `json:"subject"`
	Content          string          `json:"content"`
	Notes            string          `json:"notes"`
	Priority         models.Priority `json:"priority"`
	Category         models.Category `json:"category"`
	Date             models.Date     `json:"date"`
	DueDate          models.NullDate `json:"dueDate"`
	// ConfirmClearDue has to be set to remove an existing due date.
	ConfirmClearDue bool `json:"confirmClearDue"`
	// HandledBy keeps the current handler when nil, unless ClearHandledBy is set.
	HandledBy      *int64 `json:"handledBy"`
	ClearHandledBy bool   `json:"clearHandledBy"`
}

// TransitionRequest asks for a status change of a mail record.
type TransitionRequest struct {
	Status models.MailStatus `json:"status"`
	// RegenerateBordereau renders a new bordereau, even if the record already has one.
	RegenerateBordereau bool `json:"regenerateBordereau"`
}

// MailView is a mail record together with its derived due state.
type MailView struct {
	*models.MailEntity
	Due lifecycle.DueState `json:"due"`
}

// MailPage is a page of mail records together with the total number of matches.
type MailPage struct {
	Items []MailView `json:"items"`
	Total int64      `json:"total"`
}

// MailService implements the lifecycle of mail records.
type MailService struct {
	conn       database.Conn
	mailDao    database.MailDao
	contactDao database.ContactDao
	userDao    database.UserDao
	actionDao  database.ActionDao
	allocator  *Allocator
	journal    *Journal
	uploads    *storage.Uploads
	blobs      storage.Blobs
	bordereau  *bordereauWriter
	opts       Options
	clock      Clock
}

// NewMailService creates a new MailService.
func NewMailService(
	conn database.Conn,
	mailDao database.MailDao,
	contactDao database.ContactDao,
	userDao database.UserDao,
	actionDao database.ActionDao,
	allocator *Allocator,
	journal *Journal,
	uploads *storage.Uploads,
	blobs storage.Blobs,
	renderer BordereauRenderer,
	opts Options,
	clock Clock,
) *MailService {
	return &MailService{
		conn:       conn,
		mailDao:    mailDao,
		contactDao: contactDao,
		userDao:    userDao,
		actionDao:  actionDao,
		allocator:  allocator,
		journal:    journal,
		uploads:    uploads,
		blobs:      blobs,
		bordereau: &bordereauWriter{
			renderer:   renderer,
			blobs:      blobs,
			contactDao: contactDao,
		},
		opts:  opts,
		clock: clock,
	}
}

// Create registers a new mail record in its initial status and assigns the next reference
// number. Allocation, insert and journal entry share one transaction.
func (s *MailService) Create(
	ctx context.Context,
	actor models.Actor,
	direction models.Direction,
	input MailInput,
) (*models.MailEntity, error) {
	if err := access.Check(actor, access.Add); err != nil {
		return nil, err
	}

	status, err := lifecycle.InitialStatus(direction)
	if err != nil {
		return nil, err
	}

	mail := models.MailEntity{
		Direction:   direction,
		Status:      status,
		Attachments: models.Attachments{},
		CreatedBy:   actor.UserRef(),
	}

	if err := s.apply(&mail, input); err != nil {
		return nil, err
	}

	if input.DueDate.Valid {
		if err := lifecycle.ChangeDueDate(&mail, input.DueDate, false); err != nil {
			return nil, err
		}
	}

	err = database.WithTx(ctx, s.conn, func(tx database.Tx) error {
		if err := s.resolve(ctx, tx, &mail); err != nil {
			return err
		}

		if err := s.insert(ctx, tx, &mail); err != nil {
			return err
		}

		return s.journal.Record(ctx, tx, actor, ActivityCreateMail,
			"%s mail %s registered", direction, mail.ReferenceNo)
	})

	if err != nil {
		return nil, err
	}

	return &mail, nil
}

// insert allocates a reference number and inserts mail. A duplicate reference number is retried
// once with a fresh allocation, since it points at a counter lagging behind existing rows.
func (s *MailService) insert(ctx context.Context, tx database.Tx, mail *models.MailEntity) error {
	for attempt := 0; ; attempt++ {
		ref, err := s.allocator.Next(ctx, tx, mail.Direction)
		if err != nil {
			return err
		}

		mail.ReferenceNo = ref.String()

		err = s.mailDao.Insert(ctx, tx, mail)
		if err == nil || attempt > 0 || !errors.Is(err, apperrors.ErrDuplicateKey) {
			return err
		}

		log.WarnContext(ctx).
			Str("reference", mail.ReferenceNo).
			Msg("reference number already taken, allocating again")
	}
}

// Update changes the editable fields of a mail record. Status and reference number are not
// affected.
func (s *MailService) Update(
	ctx context.Context,
	actor models.Actor,
	direction models.Direction,
	id int64,
	input MailInput,
) (*models.MailEntity, error) {
	if err := access.Check(actor, access.Edit); err != nil {
		return nil, err
	}

	var mail *models.MailEntity

	err := database.WithTx(ctx, s.conn, func(tx database.Tx) error {
		var err error

		mail, err = s.mailDao.FindByID(ctx, tx, direction, id)
		if err != nil {
			return err
		}

		if err := s.apply(mail, input); err != nil {
			return err
		}

		if !input.DueDate.Equal(mail.DueDate) {
			if err := lifecycle.ChangeDueDate(mail, input.DueDate, input.ConfirmClearDue); err != nil {
				return err
			}
		}

		if err := s.resolve(ctx, tx, mail); err != nil {
			return err
		}

		if err := s.mailDao.Update(ctx, tx, mail); err != nil {
			return err
		}

		return s.journal.Record(ctx, tx, actor, ActivityUpdateMail,
			"%s mail %s updated", direction, mail.ReferenceNo)
	})

	if err != nil {
		return nil, err
	}

	return mail, nil
}

// Transition changes the status of a mail record. The first transition of outgoing mail into
// sent renders and stores its bordereau. Later entries into sent keep the existing bordereau,
// unless a new one is requested.
func (s *MailService) Transition(
	ctx context.Context,
	actor models.Actor,
	direction models.Direction,
	id int64,
	req TransitionRequest,
) (*models.MailEntity, error) {
	if err := access.Check(actor, access.Edit); err != nil {
		return nil, err
	}

	snapshot, err := s.mailDao.FindByID(ctx, s.conn, direction, id)
	if err != nil {
		return nil, err
	}

	if err := lifecycle.Transition(direction, snapshot.Status, req.Status); err != nil {
		return nil, err
	}

	render := lifecycle.RequiresBordereau(snapshot, req.Status, req.RegenerateBordereau)

	var newBordereau string

	// Rendering happens before the write transaction, so the database stays unlocked meanwhile.
	if render {
		newBordereau, err = s.bordereau.write(ctx, s.conn, snapshot)
		if err != nil {
			return nil, err
		}
	}

	var (
		mail         *models.MailEntity
		from         models.MailStatus
		oldBordereau string
	)

	err = database.WithTx(ctx, s.conn, func(tx database.Tx) error {
		var err error

		mail, err = s.mailDao.FindByID(ctx, tx, direction, id)
		if err != nil {
			return err
		}

		if mail.Status != snapshot.Status || mail.Bordereau != snapshot.Bordereau {
			return apperrors.Validation("status", "%s mail %d was changed concurrently", direction, id)
		}

		from = mail.Status
		mail.Status = req.Status

		if mail.HandledBy == nil && req.Status == models.StatusProcessing {
			mail.HandledBy = actor.UserRef()
		}

		if render {
			oldBordereau, mail.Bordereau = mail.Bordereau, newBordereau
		}

		if err := s.mailDao.Update(ctx, tx, mail); err != nil {
			return err
		}

		if render {
			if err := s.journal.Record(ctx, tx, actor, ActivityBordereau,
				"bordereau %s generated for %s", newBordereau, mail.ReferenceNo); err != nil {
				return err
			}
		}

		return s.journal.Record(ctx, tx, actor, ActivityTransitionMail,
			"%s mail %s changed from %s to %s", direction, mail.ReferenceNo, from, mail.Status)
	})

	if err != nil {
		if newBordereau != "" {
			s.removeBlob(ctx, newBordereau)
		}

		return nil, err
	}

	if oldBordereau != "" {
		s.removeBlob(ctx, oldBordereau)
	}

	return mail, nil
}

// SetDueDate sets or clears the due date of incoming mail. An existing due date is only cleared,
// if confirmClear is set.
func (s *MailService) SetDueDate(
	ctx context.Context,
	actor models.Actor,
	id int64,
	due models.NullDate,
	confirmClear bool,
) (*models.MailEntity, error) {
	if err := access.Check(actor, access.Edit); err != nil {
		return nil, err
	}

	var mail *models.MailEntity

	err := database.WithTx(ctx, s.conn, func(tx database.Tx) error {
		var err error

		mail, err = s.mailDao.FindByID(ctx, tx, models.Incoming, id)
		if err != nil {
			return err
		}

		if err := lifecycle.ChangeDueDate(mail, due, confirmClear); err != nil {
			return err
		}

		if err := s.mailDao.Update(ctx, tx, mail); err != nil {
			return err
		}

		if !due.Valid {
			return s.journal.Record(ctx, tx, actor, ActivityDueDate,
				"due date of %s cleared", mail.ReferenceNo)
		}

		return s.journal.Record(ctx, tx, actor, ActivityDueDate,
			"due date of %s set to %s", mail.ReferenceNo, due.Date)
	})

	if err != nil {
		return nil, err
	}

	return mail, nil
}

// Delete removes a mail record together with its follow-up actions and files. Outgoing mail can
// only be deleted as draft.
func (s *MailService) Delete(ctx context.Context, actor models.Actor, direction models.Direction, id int64) error {
	if err := access.Check(actor, access.Delete); err != nil {
		return err
	}

	var mail *models.MailEntity

	err := database.WithTx(ctx, s.conn, func(tx database.Tx) error {
		var err error

		mail, err = s.mailDao.FindByID(ctx, tx, direction, id)
		if err != nil {
			return err
		}

		if err := lifecycle.CanDelete(mail); err != nil {
			return err
		}

		if err := s.actionDao.DeleteByMail(ctx, tx, mail); err != nil {
			return err
		}

		if err := s.mailDao.Delete(ctx, tx, mail); err != nil {
			return err
		}

		return s.journal.Record(ctx, tx, actor, ActivityDeleteMail,
			"%s mail %s deleted", direction, mail.ReferenceNo)
	})

	if err != nil {
		return err
	}

	for _, blob := range mail.Attachments {
		s.removeBlob(ctx, blob)
	}

	if mail.Bordereau != "" {
		s.removeBlob(ctx, mail.Bordereau)
	}

	return nil
}

// Get returns a single mail record.
func (s *MailService) Get(
	ctx context.Context,
	actor models.Actor,
	direction models.Direction,
	id int64,
) (*MailView, error) {
	if err := access.Check(actor, access.View); err != nil {
		return nil, err
	}

	mail, err := s.mailDao.FindByID(ctx, s.conn, direction, id)
	if err != nil {
		return nil, err
	}

	view := s.view(mail, s.clock.today())
	return &view, nil
}

// GetByReference returns a single mail record by its reference number.
func (s *MailService) GetByReference(
	ctx context.Context,
	actor models.Actor,
	direction models.Direction,
	reference string,
) (*MailView, error) {
	if err := access.Check(actor, access.View); err != nil {
		return nil, err
	}

	mail, err := s.mailDao.FindByReference(ctx, s.conn, direction, reference)
	if err != nil {
		return nil, err
	}

	view := s.view(mail, s.clock.today())
	return &view, nil
}

// List returns the mail records matching filter.
func (s *MailService) List(
	ctx context.Context,
	actor models.Actor,
	direction models.Direction,
	filter database.MailFilter,
) (*MailPage, error) {
	if err := access.Check(actor, access.View); err != nil {
		return nil, err
	}

	mails, err := s.mailDao.Find(ctx, s.conn, direction, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.mailDao.Count(ctx, s.conn, direction, filter)
	if err != nil {
		return nil, err
	}

	return &MailPage{
		Items: s.views(mails),
		Total: total,
	}, nil
}

// Reminders returns incoming mail, that is overdue or due soon, ordered by due date.
func (s *MailService) Reminders(ctx context.Context, actor models.Actor) ([]MailView, error) {
	if err := access.Check(actor, access.View); err != nil {
		return nil, err
	}

	today := s.clock.today()
	filter := database.MailFilter{
		Statuses: openStatuses(models.Incoming),
		DueTo:    models.SomeDate(today.AddDays(s.opts.ReminderDays)),
	}

	mails, err := s.mailDao.Find(ctx, s.conn, models.Incoming, filter)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(mails, func(i, j int) bool {
		return mails[i].DueDate.Date.Before(mails[j].DueDate.Date)
	})

	return s.views(mails), nil
}

// PeekReference previews the reference number the next new record of direction would get.
func (s *MailService) PeekReference(
	ctx context.Context,
	actor models.Actor,
	direction models.Direction,
) (string, error) {
	if err := access.Check(actor, access.Add); err != nil {
		return "", err
	}

	if !direction.Valid() {
		return "", apperrors.Validation("direction", "unknown direction %q", direction)
	}

	ref, err := s.allocator.Peek(ctx, s.conn, direction)
	if err != nil {
		return "", err
	}

	return ref.String(), nil
}

// Attach stores a file and appends it to the attachments of a mail record.
func (s *MailService) Attach(
	ctx context.Context,
	actor models.Actor,
	direction models.Direction,
	id int64,
	filename string,
	r io.Reader,
) (*models.MailEntity, error) {
	if err := access.Check(actor, access.Edit); err != nil {
		return nil, err
	}

	blob, err := s.uploads.Store(ctx, filename, r)
	if err != nil {
		return nil, err
	}

	var mail *models.MailEntity

	err = database.WithTx(ctx, s.conn, func(tx database.Tx) error {
		var err error

		mail, err = s.mailDao.FindByID(ctx, tx, direction, id)
		if err != nil {
			return err
		}

		mail.Attachments = append(mail.Attachments, blob)

		if err := s.mailDao.Update(ctx, tx, mail); err != nil {
			return err
		}

		return s.journal.Record(ctx, tx, actor, ActivityAttach,
			"%s attached to %s as %s", filename, mail.ReferenceNo, blob)
	})

	if err != nil {
		s.removeBlob(ctx, blob)
		return nil, err
	}

	return mail, nil
}

// Detach removes a file from the attachments of a mail record.
func (s *MailService) Detach(
	ctx context.Context,
	actor models.Actor,
	direction models.Direction,
	id int64,
	blob string,
) (*models.MailEntity, error) {
	if err := access.Check(actor, access.Edit); err != nil {
		return nil, err
	}

	var mail *models.MailEntity

	err := database.WithTx(ctx, s.conn, func(tx database.Tx) error {
		var err error

		mail, err = s.mailDao.FindByID(ctx, tx, direction, id)
		if err != nil {
			return err
		}

		remaining := make(models.Attachments, 0, len(mail.Attachments))
		for _, attachment := range mail.Attachments {
			if attachment != blob {
				remaining = append(remaining, attachment)
			}
		}

		if len(remaining) == len(mail.Attachments) {
			return apperrors.ErrNotFound
		}

		mail.Attachments = remaining

		if err := s.mailDao.Update(ctx, tx, mail); err != nil {
			return err
		}

		return s.journal.Record(ctx, tx, actor, ActivityDetach,
			"%s removed from %s", blob, mail.ReferenceNo)
	})

	if err != nil {
		return nil, err
	}

	if err := s.uploads.Remove(ctx, blob); err != nil {
		log.WarnContext(ctx).
			Str("blob", blob).
			Err(err).
			Msg("could not remove detached attachment")
	}

	return mail, nil
}

// OpenAttachment returns a reader to a file attached to a mail record.
func (s *MailService) OpenAttachment(
	ctx context.Context,
	actor models.Actor,
	direction models.Direction,
	id int64,
	blob string,
) (io.ReadCloser, error) {
	if err := access.Check(actor, access.View); err != nil {
		return nil, err
	}

	mail, err := s.mailDao.FindByID(ctx, s.conn, direction, id)
	if err != nil {
		return nil, err
	}

	for _, attachment := range mail.Attachments {
		if attachment == blob {
			return s.uploads.Open(blob)
		}
	}

	return nil, apperrors.ErrNotFound
}

// OpenBordereau returns a reader to the bordereau of outgoing mail.
func (s *MailService) OpenBordereau(ctx context.Context, actor models.Actor, id int64) (io.ReadCloser, error) {
	if err := access.Check(actor, access.View); err != nil {
		return nil, err
	}

	mail, err := s.mailDao.FindByID(ctx, s.conn, models.Outgoing, id)
	if err != nil {
		return nil, err
	}

	if mail.Bordereau == "" {
		return nil, apperrors.ErrNotFound
	}

	return s.blobs.Reader(mail.Bordereau)
}

// apply validates input and copies it onto mail.
func (s *MailService) apply(mail *models.MailEntity, input MailInput) error {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return apperrors.Validation("subject", "must not be empty")
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}

	if !priority.Valid() {
		return apperrors.Validation("priority", "unknown priority %q", priority)
	}

	category := input.Category
	if category == "" {
		category = models.CategoryOther
	}

	if !category.Valid() {
		return apperrors.Validation("category", "unknown category %q", category)
	}

	date := input.Date
	if date.IsZero() {
		date = mail.Date
	}

	if date.IsZero() {
		date = s.clock.today()
	}

	mail.CounterpartyID = input.CounterpartyID
	mail.CounterpartyName = strings.TrimSpace(input.CounterpartyName)
	mail.Subject = subject
	mail.Content = input.Content
	mail.Notes = input.Notes
	mail.Priority = priority
	mail.Category = category
	mail.Date = date

	if input.HandledBy != nil || input.ClearHandledBy {
		mail.HandledBy = input.HandledBy
	}

	return nil
}

// resolve writes the current name of the referenced contact into the record and checks the
// handling user. Without a contact, a free-text name is required.
func (s *MailService) resolve(ctx context.Context, q database.Queryer, mail *models.MailEntity) error {
	if mail.CounterpartyID != nil {
		contact, err := s.contactDao.FindByID(ctx, q, *mail.CounterpartyID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.Validation("counterpartyId", "contact %d does not exist", *mail.CounterpartyID)
			}

			return err
		}

		mail.CounterpartyName = contact.Name
	}

	if mail.CounterpartyName == "" {
		return apperrors.Validation("counterpartyName", "must not be empty")
	}

	if mail.HandledBy != nil {
		if _, err := s.userDao.FindByID(ctx, q, *mail.HandledBy); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.Validation("handledBy", "user %d does not exist", *mail.HandledBy)
			}

			return err
		}
	}

	return nil
}

func (s *MailService) view(mail *models.MailEntity, today models.Date) MailView {
	return MailView{
		MailEntity: mail,
		Due:        lifecycle.Due(mail, today, s.opts.ReminderDays),
	}
}

func (s *MailService) views(mails []models.MailEntity) []MailView {
	today := s.clock.today()
	views := make([]MailView, len(mails))

	for i := range mails {
		views[i] = s.view(&mails[i], today)
	}

	return views
}

func (s *MailService) removeBlob(ctx context.Context, blob string) {
	if err := s.blobs.Delete(ctx, blob); err != nil {
		log.WarnContext(ctx).
			Str("blob", blob).
			Err(err).
			Msg("could not remove blob")
	}
}

// openStatuses returns every status of direction, that is not terminal.
func openStatuses(direction models.Direction) []models.MailStatus {
	var open []models.MailStatus

	for _, status := range lifecycle.Statuses(direction) {
		if !lifecycle.IsTerminal(direction, status) {
			open = append(open, status)
		}
	}

	return open
}
