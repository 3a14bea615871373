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

// UserDao is a data access object for all user related queries.
type UserDao interface {
	// Insert inserts a new user. ID and CreatedAt are assigned by the database.
	Insert(context.Context, Queryer, *models.UserEntity) error
	// Update updates the profile, role and active flag of an existing user.
	Update(context.Context, Queryer, *models.UserEntity) error
	// UpdateHash replaces the password digest of an existing user.
	UpdateHash(context.Context, Queryer, *models.UserEntity) error
	// TouchLastLogin sets the last login of a user to the current database time.
	TouchLastLogin(context.Context, Queryer, *models.UserEntity) error
	// Delete deletes an existing user.
	Delete(context.Context, Queryer, *models.UserEntity) error
	// FindByID returns the user with the id.
	FindByID(context.Context, Queryer, int64) (*models.UserEntity, error)
	// FindByUsername returns the user with the username.
	FindByUsername(context.Context, Queryer, string) (*models.UserEntity, error)
	// FindAll returns all users ordered by username.
	FindAll(context.Context, Queryer) ([]models.UserEntity, error)
	// Count returns the number of users.
	Count(context.Context, Queryer) (int64, error)
	// CountActiveAdmins returns the number of active administrators.
	CountActiveAdmins(context.Context, Queryer) (int64, error)
	// CountReferences returns the number of rows referencing a user.
	CountReferences(context.Context, Queryer, *models.UserEntity) (int64, error)
}

// userDao is the sqlite implementation of UserDao.
type userDao struct{}

// NewUserDao creates a new UserDao.
func NewUserDao() UserDao {
	return userDao{}
}

func (userDao) Insert(ctx context.Context, q Queryer, user *models.UserEntity) error {
	const query = `
		insert into "users" (
			"username" ,
			"hash" ,
			"display_name" ,
			"role" ,
			"email" ,
			"phone" ,
			"active"
		) values (
			:username ,
			:hash ,
			:display_name ,
			:role ,
			:email ,
			:phone ,
			:active
		)
		returning "id", "created_at" ;
	`

	return queryNamedRow(ctx, q, query, user, &user.ID, &user.CreatedAt)
}

func (userDao) Update(ctx context.Context, q Queryer, user *models.UserEntity) error {
	const query = `
		update "users"
		set "display_name" = :display_name ,
			"role"         = :role ,
			"email"        = :email ,
			"phone"        = :phone ,
			"active"       = :active
		where "id" = :id
		returning "id" ;
	`

	var id int64
	return queryNamedRow(ctx, q, query, user, &id)
}

func (userDao) UpdateHash(ctx context.Context, q Queryer, user *models.UserEntity) error {
	const query = `
		update "users"
		set "hash" = $1
		where "id" = $2 ;
	`

	result, err := execPositional(ctx, q, query, user.Hash, user.ID)
	if err != nil {
		return err
	}

	return ensureRowsAffected(result)
}

func (userDao) TouchLastLogin(ctx context.Context, q Queryer, user *models.UserEntity) error {
	const query = `
		update "users"
		set "last_login_at" = strftime('%s', 'now')
		where "id" = $1
		returning "last_login_at" ;
	`

	var lastLoginAt int64
	if err := queryRow(ctx, q, query, []any{user.ID}, &lastLoginAt); err != nil {
		return err
	}

	user.LastLoginAt = &lastLoginAt
	return nil
}

func (userDao) Delete(ctx context.Context, q Queryer, user *models.UserEntity) error {
	const query = `
		delete from "users"
		where "id" = $1 ;
	`

	result, err := execPositional(ctx, q, query, user.ID)
	if err != nil {
		return err
	}

	return ensureRowsAffected(result)
}

func (userDao) FindByID(ctx context.Context, q Queryer, id int64) (*models.UserEntity, error) {
	const query = `
		select *
		from "users"
		where "id" = $1 ;
	`

	var user models.UserEntity

	if err := selectOne(ctx, q, &user, query, id); err != nil {
		return nil, err
	}

	return &user, nil
}

func (userDao) FindByUsername(ctx context.Context, q Queryer, username string) (*models.UserEntity, error) {
	const query = `
		select *
		from "users"
		where "username" = $1 ;
	`

	var user models.UserEntity

	if err := selectOne(ctx, q, &user, query, username); err != nil {
		return nil, err
	}

	return &user, nil
}

func (userDao) FindAll(ctx context.Context, q Queryer) ([]models.UserEntity, error) {
	const query = `
		select *
		from "users"
		order by "username" asc ;
	`

	var userSlice []models.UserEntity

	if err := selectSlice(ctx, q, &userSlice, query); err != nil {
		return nil, err
	}

	return userSlice, nil
}

func (userDao) Count(ctx context.Context, q Queryer) (int64, error) {
	const query = `
		select count(*)
		from "users" ;
	`

	var count int64
	return count, selectOne(ctx, q, &count, query)
}

func (userDao) CountActiveAdmins(ctx context.Context, q Queryer) (int64, error) {
	const query = `
		select count(*)
		from "users"
		where "role" = $1
		  and "active" ;
	`

	var count int64
	return count, selectOne(ctx, q, &count, query, models.RoleAdmin)
}

func (userDao) CountReferences(ctx context.Context, q Queryer, user *models.UserEntity) (int64, error) {
	const query = `
		select
			( select count(*) from "incoming_mail" where "created_by" = $1 or "handled_by" = $1 ) +
			( select count(*) from "outgoing_mail" where "created_by" = $1 or "handled_by" = $1 ) +
			( select count(*) from "actions" where "created_by" = $1 or "assigned_to" = $1 ) +
			( select count(*) from "activity_log" where "user_id" = $1 ) ;
	`

	var count int64
	return count, selectOne(ctx, q, &count, query, user.ID)
}
