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

// ActionDao is a data access object for all follow-up action related queries.
type ActionDao interface {
	// Insert inserts a new action. ID and CreatedAt are assigned by the database.
	Insert(context.Context, Queryer, *models.ActionEntity) error
	// Update updates an existing action.
	Update(context.Context, Queryer, *models.ActionEntity) error
	// FindByID returns the action with the id.
	FindByID(context.Context, Queryer, int64) (*models.ActionEntity, error)
	// FindByMail returns all actions of a mail record, oldest first.
	FindByMail(context.Context, Queryer, *models.MailEntity) ([]models.ActionEntity, error)
	// FindPending returns all pending actions ordered by due date. Actions without due date come
	// last.
	FindPending(context.Context, Queryer) ([]models.ActionEntity, error)
	// DeleteByMail deletes all actions of a mail record.
	DeleteByMail(context.Context, Queryer, *models.MailEntity) error
}

// actionDao is the sqlite implementation of ActionDao.
type actionDao struct{}

// NewActionDao creates a new ActionDao.
func NewActionDao() ActionDao {
	return actionDao{}
}

func (actionDao) Insert(ctx context.Context, q Queryer, action *models.ActionEntity) error {
	const query = `
		insert into "actions" (
			"direction" ,
			"mail_id" ,
			"action_type" ,
			"description" ,
			"assigned_to" ,
			"due_date" ,
			"status" ,
			"completed_date" ,
			"notes" ,
			"created_by"
		) values (
			:direction ,
			:mail_id ,
			:action_type ,
			:description ,
			:assigned_to ,
			:due_date ,
			:status ,
			:completed_date ,
			:notes ,
			:created_by
		)
		returning "id", "created_at" ;
	`

	return queryNamedRow(ctx, q, query, action, &action.ID, &action.CreatedAt)
}

func (actionDao) Update(ctx context.Context, q Queryer, action *models.ActionEntity) error {
	const query = `
		update "actions"
		set "action_type"    = :action_type ,
			"description"    = :description ,
			"assigned_to"    = :assigned_to ,
			"due_date"       = :due_date ,
			"status"         = :status ,
			"completed_date" = :completed_date ,
			"notes"          = :notes
		where "id" = :id
		returning "id" ;
	`

	var id int64
	return queryNamedRow(ctx, q, query, action, &id)
}

func (actionDao) FindByID(ctx context.Context, q Queryer, id int64) (*models.ActionEntity, error) {
	const query = `
		select *
		from "actions"
		where "id" = $1 ;
	`

	var action models.ActionEntity

	if err := selectOne(ctx, q, &action, query, id); err != nil {
		return nil, err
	}

	return &action, nil
}

func (actionDao) FindByMail(
	ctx context.Context,
	q Queryer,
	mail *models.MailEntity,
) ([]models.ActionEntity, error) {
	const query = `
		select *
		from "actions"
		where "direction" = $1
		  and "mail_id" = $2
		order by "id" asc ;
	`

	var actionSlice []models.ActionEntity

	if err := selectSlice(ctx, q, &actionSlice, query, mail.Direction, mail.ID); err != nil {
		return nil, err
	}

	return actionSlice, nil
}

func (actionDao) FindPending(ctx context.Context, q Queryer) ([]models.ActionEntity, error) {
	const query = `
		select *
		from "actions"
		where "status" = $1
		order by "due_date" is null asc, "due_date" asc, "id" asc ;
	`

	var actionSlice []models.ActionEntity

	if err := selectSlice(ctx, q, &actionSlice, query, models.ActionPending); err != nil {
		return nil, err
	}

	return actionSlice, nil
}

func (actionDao) DeleteByMail(ctx context.Context, q Queryer, mail *models.MailEntity) error {
	const query = `
		delete from "actions"
		where "direction" = $1
		  and "mail_id" = $2 ;
	`

	_, err := execPositional(ctx, q, query, mail.Direction, mail.ID)
	return err
}
