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

// ReferenceCounterDao is a data access object for the per-period sequence counters of reference
// numbers.
type ReferenceCounterDao interface {
	// Next increments the counter of a period and returns the new value. A missing counter is
	// created with value 1. Increment and read are a single statement, so concurrent callers never
	// observe the same value.
	Next(ctx context.Context, q Queryer, direction models.Direction, year, month int) (int, error)
	// Peek returns the value the next call to Next would return without reserving it.
	Peek(ctx context.Context, q Queryer, direction models.Direction, year, month int) (int, error)
	// FindAll returns all counters ordered by period.
	FindAll(context.Context, Queryer) ([]models.ReferenceCounterEntity, error)
}

// referenceCounterDao is the sqlite implementation of ReferenceCounterDao.
type referenceCounterDao struct{}

// NewReferenceCounterDao creates a new ReferenceCounterDao.
func NewReferenceCounterDao() ReferenceCounterDao {
	return referenceCounterDao{}
}

func (referenceCounterDao) Next(
	ctx context.Context,
	q Queryer,
	direction models.Direction,
	year, month int,
) (int, error) {
	const query = `
		insert into "reference_counters" (
			"direction" ,
			"year" ,
			"month" ,
			"last_sequence"
		) values (
			$1 ,
			$2 ,
			$3 ,
			1
		)
		on conflict ( "direction", "year", "month" ) do update
		set "last_sequence" = "last_sequence" + 1
		returning "last_sequence" ;
	`

	var sequence int
	return sequence, queryRow(ctx, q, query, []any{direction, year, month}, &sequence)
}

func (referenceCounterDao) Peek(
	ctx context.Context,
	q Queryer,
	direction models.Direction,
	year, month int,
) (int, error) {
	const query = `
		select coalesce(max("last_sequence"), 0) + 1
		from "reference_counters"
		where "direction" = $1
		  and "year" = $2
		  and "month" = $3 ;
	`

	var sequence int
	return sequence, selectOne(ctx, q, &sequence, query, direction, year, month)
}

func (referenceCounterDao) FindAll(ctx context.Context, q Queryer) ([]models.ReferenceCounterEntity, error) {
	const query = `
		select *
		from "reference_counters"
		order by "year" asc, "month" asc, "direction" asc ;
	`

	var counterSlice []models.ReferenceCounterEntity

	if err := selectSlice(ctx, q, &counterSlice, query); err != nil {
		return nil, err
	}

	return counterSlice, nil
}
