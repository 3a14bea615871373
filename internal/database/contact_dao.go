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

package database

import (
	"context"

	"github.com/lukasdietrich/courrier/internal/models"
)

// ContactDao is a data access object for all contact related queries.
type ContactDao interface {
	// Insert inserts a new contact. ID and timestamps are assigned by the database.
	Insert(context.Context, Queryer, *models.ContactEntity) error
	// Update updates an existing contact.
	Update(context.Context, Queryer, *models.ContactEntity) error
	// Delete deletes an existing contact. Callers are expected to check references first.
	Delete(context.Context, Queryer, *models.ContactEntity) error
	// FindByID returns the contact with the id.
	FindByID(context.Context, Queryer, int64) (*models.ContactEntity, error)
	// Find returns contacts whose code, name or organization contain the search text. An empty
	// search matches every contact.
	Find(context.Context, Queryer, string) ([]models.ContactEntity, error)
	// Count returns the number of contacts.
	Count(context.Context, Queryer) (int64, error)
}

// contactDao is the sqlite implementation of ContactDao.
type contactDao struct{}

// NewContactDao creates a new ContactDao.
func NewContactDao() ContactDao {
	return contactDao{}
}

func (contactDao) Insert(ctx context.Context, q Queryer, contact *models.ContactEntity) error {
	const query = `
		insert into "contacts" (
			"code" ,
			"name" ,
			"organization" ,
			"phone" ,
			"email"
		) values (
			:code ,
			:name ,
			:organization ,
			:phone ,
			:email
		)
		returning "id", "created_at", "updated_at" ;
	`

	return queryNamedRow(ctx, q, query, contact, &contact.ID, &contact.CreatedAt, &contact.UpdatedAt)
}

func (contactDao) Update(ctx context.Context, q Queryer, contact *models.ContactEntity) error {
	const query = `
		update "contacts"
		set "code"         = :code ,
			"name"         = :name ,
			"organization" = :organization ,
			"phone"        = :phone ,
			"email"        = :email ,
			"updated_at"   = strftime('%s', 'now')
		where "id" = :id
		returning "updated_at" ;
	`

	return queryNamedRow(ctx, q, query, contact, &contact.UpdatedAt)
}

func (contactDao) Delete(ctx context.Context, q Queryer, contact *models.ContactEntity) error {
	const query = `
		delete from "contacts"
		where "id" = $1 ;
	`

	result, err := execPositional(ctx, q, query, contact.ID)
	if err != nil {
		return err
	}

	return ensureRowsAffected(result)
}

func (contactDao) FindByID(ctx context.Context, q Queryer, id int64) (*models.ContactEntity, error) {
	const query = `
		select *
		from "contacts"
		where "id" = $1 ;
	`

	var contact models.ContactEntity

	if err := selectOne(ctx, q, &contact, query, id); err != nil {
		return nil, err
	}

	return &contact, nil
}

func (contactDao) Find(ctx context.Context, q Queryer, search string) ([]models.ContactEntity, error) {
	const query = `
		select *
		from "contacts"
		where $1 = ''
		   or instr(fold("code"), $1) > 0
		   or instr(fold("name"), $1) > 0
		   or instr(fold("organization"), $1) > 0
		order by "name" asc, "id" asc ;
	`

	var contactSlice []models.ContactEntity

	if err := selectSlice(ctx, q, &contactSlice, query, models.Fold(search)); err != nil {
		return nil, err
	}

	return contactSlice, nil
}

func (contactDao) Count(ctx context.Context, q Queryer) (int64, error) {
	const query = `
		select count(*)
		from "contacts" ;
	`

	var count int64
	return count, selectOne(ctx, q, &count, query)
}
