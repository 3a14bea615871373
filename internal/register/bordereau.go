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

	"github.com/lukasdietrich/courrier/internal/database"
	"github.com/lukasdietrich/courrier/internal/documents"
	"github.com/lukasdietrich/courrier/internal/models"
	"github.com/lukasdietrich/courrier/internal/storage"
)

// BordereauRenderer renders the dispatch manifest of outgoing mail.
type BordereauRenderer interface {
	Render(context.Context, documents.Fields) ([]byte, error)
}

// bordereauWriter renders bordereaux and stores them as blobs.
type bordereauWriter struct {
	renderer   BordereauRenderer
	blobs      storage.Blobs
	contactDao database.ContactDao
}

func (w *bordereauWriter) fields(ctx context.Context, q database.Queryer, mail *models.MailEntity) (documents.Fields, error) {
	fields := documents.Fields{
		documents.FieldReferenceNo:   mail.ReferenceNo,
		documents.FieldSentDate:      mail.Date.String(),
		documents.FieldRecipientName: mail.CounterpartyName,
		documents.FieldOrganization:  "",
		documents.FieldPhone:         "",
		documents.FieldEmail:         "",
		documents.FieldSubject:       mail.Subject,
		documents.FieldNotes:         mail.Notes,
	}

	if mail.CounterpartyID != nil {
		contact, err := w.contactDao.FindByID(ctx, q, *mail.CounterpartyID)
		if err != nil {
			return nil, err
		}

		fields[documents.FieldOrganization] = contact.Organization
		fields[documents.FieldPhone] = contact.Phone
		fields[documents.FieldEmail] = contact.Email
	}

	return fields, nil
}

// write renders the bordereau of mail and returns the id of the new blob.
func (w *bordereauWriter) write(ctx context.Context, q database.Queryer, mail *models.MailEntity) (string, error) {
	fields, err := w.fields(ctx, q, mail)
	if err != nil {
		return "", err
	}

	b, err := w.renderer.Render(ctx, fields)
	if err != nil {
		return "", err
	}

	id, _, err := w.blobs.Write(ctx, bytes.NewReader(b), "docx")
	return id, err
}
