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
	"strings"

	"github.com/lukasdietrich/courrier/internal/access"
	"github.com/lukasdietrich/courrier/internal/database"
	apperrors "github.com/lukasdietrich/courrier/internal/errors"
	"github.com/lukasdietrich/courrier/internal/models"
)

// ContactInput holds the editable fields of a contact.
type ContactInput struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Organization string `json:"organization"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
}

// ContactService manages the address book of counterparties.
type ContactService struct {
	conn       database.Conn
	contactDao database.ContactDao
	mailDao    database.MailDao
	journal    *Journal
}

// NewContactService creates a new ContactService.
func NewContactService(
	conn database.Conn,
	contactDao database.ContactDao,
	mailDao database.MailDao,
	journal *Journal,
) *ContactService {
	return &ContactService{
		conn:       conn,
		contactDao: contactDao,
		mailDao:    mailDao,
		journal:    journal,
	}
}

// Create adds a new contact. Codes are unique.
func (s *ContactService) Create(
	ctx context.Context,
	actor models.Actor,
	input ContactInput,
) (*models.ContactEntity, error) {
	if err := access.Check(actor, access.Add); err != nil {
		return nil, err
	}

	var contact models.ContactEntity
	if err := applyContact(&contact, input); err != nil {
		return nil, err
	}

	err := database.WithTx(ctx, s.conn, func(tx database.Tx) error {
		if err := s.contactDao.Insert(ctx, tx, &contact); err != nil {
			return err
		}

		return s.journal.Record(ctx, tx, actor, ActivityCreateContact,
			"contact %s (%s) created", contact.Code, contact.Name)
	})

	if err != nil {
		return nil, err
	}

	return &contact, nil
}

// Update changes a contact. Mail records keep the name the contact had when they were written.
func (s *ContactService) Update(
	ctx context.Context,
	actor models.Actor,
	id int64,
	input ContactInput,
) (*models.ContactEntity, error) {
	if err := access.Check(actor, access.Edit); err != nil {
		return nil, err
	}

	var contact *models.ContactEntity

	err := database.WithTx(ctx, s.conn, func(tx database.Tx) error {
		var err error

		contact, err = s.contactDao.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := applyContact(contact, input); err != nil {
			return err
		}

		if err := s.contactDao.Update(ctx, tx, contact); err != nil {
			return err
		}

		return s.journal.Record(ctx, tx, actor, ActivityUpdateContact,
			"contact %s updated", contact.Code)
	})

	if err != nil {
		return nil, err
	}

	return contact, nil
}

// Delete removes a contact. A contact referenced by mail records of either direction is kept and
// a *apperrors.ConflictError with the number of references is returned.
func (s *ContactService) Delete(ctx context.Context, actor models.Actor, id int64) error {
	if err := access.Check(actor, access.Delete); err != nil {
		return err
	}

	return database.WithTx(ctx, s.conn, func(tx database.Tx) error {
		contact, err := s.contactDao.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}

		references, err := s.mailDao.CountByCounterparty(ctx, tx, contact)
		if err != nil {
			return err
		}

		if references > 0 {
			return &apperrors.ConflictError{
				Entity:     "contact",
				ID:         contact.ID,
				References: references,
			}
		}

		if err := s.contactDao.Delete(ctx, tx, contact); err != nil {
			return err
		}

		return s.journal.Record(ctx, tx, actor, ActivityDeleteContact,
			"contact %s (%s) deleted", contact.Code, contact.Name)
	})
}

// Get returns a single contact.
func (s *ContactService) Get(ctx context.Context, actor models.Actor, id int64) (*models.ContactEntity, error) {
	if err := access.Check(actor, access.View); err != nil {
		return nil, err
	}

	return s.contactDao.FindByID(ctx, s.conn, id)
}

// List returns all contacts matching search.
func (s *ContactService) List(ctx context.Context, actor models.Actor, search string) ([]models.ContactEntity, error) {
	if err := access.Check(actor, access.View); err != nil {
		return nil, err
	}

	return s.contactDao.Find(ctx, s.conn, search)
}

func applyContact(contact *models.ContactEntity, input ContactInput) error {
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return apperrors.Validation("code", "must not be empty")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return apperrors.Validation("name", "must not be empty")
	}

	email, err := normalizeEmail(input.Email)
	if err != nil {
		return err
	}

	phone, err := normalizePhone(input.Phone)
	if err != nil {
		return err
	}

	contact.Code = code
	contact.Name = name
	contact.Organization = strings.TrimSpace(input.Organization)
	contact.Phone = phone
	contact.Email = email

	return nil
}

func normalizeEmail(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}

	addr, err := models.ParseEmail(raw)
	if err != nil {
		return "", apperrors.Validation("email", "%q is not a valid e-mail address", raw)
	}

	return addr.String(), nil
}

func normalizePhone(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}

	phone, err := models.NormalizePhone(raw)
	if err != nil {
		return "", apperrors.Validation("phone", "%q is not a valid phone number", raw)
	}

	return phone, nil
}
