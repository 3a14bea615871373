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
	"strings"

	"github.com/lukasdietrich/courrier/internal/models"
)

// ActivityFilter narrows the result of ActivityDao.Find. Zero values do not filter.
type ActivityFilter struct {
	UserID *int64
	Action string
	// Since and Until are inclusive bounds in unix seconds.
	Since  int64
	Until  int64
	Limit  int
	Offset int
}

func (f *ActivityFilter) where() (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if f.UserID != nil {
		clauses = append(clauses, `"user_id" = ?`)
		args = append(args, *f.UserID)
	}

	if f.Action != "" {
		clauses = append(clauses, `"action" = ?`)
		args = append(args, f.Action)
	}

	if f.Since > 0 {
		clauses = append(clauses, `"created_at" >= ?`)
		args = append(args, f.Since)
	}

	if f.Until > 0 {
		clauses = append(clauses, `"created_at" <= ?`)
		args = append(args, f.Until)
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " where " + strings.Join(clauses, " and "), args
}

// ActivityDao is a data access object for the activity log. The log is append-only, so there
// are no methods to update or delete entries.
type ActivityDao interface {
	// Insert appends a new entry. ID and CreatedAt are assigned by the database.
	Insert(context.Context, Queryer, *models.ActivityEntity) error
	// Find returns entries matching the filter, latest first.
	Find(context.Context, Queryer, ActivityFilter) ([]models.ActivityEntity, error)
	// Count returns the number of entries matching the filter, ignoring limit and offset.
	Count(context.Context, Queryer, ActivityFilter) (int64, error)
}

// activityDao is the sqlite implementation of ActivityDao.
type activityDao struct{}

// NewActivityDao creates a new ActivityDao.
func NewActivityDao() ActivityDao {
	return activityDao{}
}

func (activityDao) Insert(ctx context.Context, q Queryer, activity *models.ActivityEntity) error {
	const query = `
		insert into "activity_log" (
			"user_id" ,
			"action" ,
			"details"
		) values (
			:user_id ,
			:action ,
			:details
		)
		returning "id", "created_at" ;
	`

	return queryNamedRow(ctx, q, query, activity, &activity.ID, &activity.CreatedAt)
}

func (activityDao) Find(
	ctx context.Context,
	q Queryer,
	filter ActivityFilter,
) ([]models.ActivityEntity, error) {
	where, args := filter.where()
	query := `select * from "activity_log"` + where + ` order by "created_at" desc, "id" desc`
	query, args = page(query, args, filter.Limit, filter.Offset)

	var activitySlice []models.ActivityEntity

	if err := selectSlice(ctx, q, &activitySlice, query, args...); err != nil {
		return nil, err
	}

	return activitySlice, nil
}

func (activityDao) Count(ctx context.Context, q Queryer, filter ActivityFilter) (int64, error) {
	where, args := filter.where()

	var count int64
	return count, selectOne(ctx, q, &count, `select count(*) from "activity_log"`+where, args...)
}
