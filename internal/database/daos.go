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
	"database/sql"

	"github.com/jmoiron/sqlx"
)

func selectOne(ctx context.Context, q Queryer, dest any, query string, args ...any) error {
	return translateError(sqlx.GetContext(ctx, q, dest, query, args...))
}

func selectSlice(ctx context.Context, q Queryer, dest any, query string, args ...any) error {
	return translateError(sqlx.SelectContext(ctx, q, dest, query, args...))
}

func execPositional(ctx context.Context, q Queryer, query string, args ...any) (sql.Result, error) {
	result, err := q.ExecContext(ctx, query, args...)
	return result, translateError(err)
}

// queryNamedRow binds arg by name and scans the single returned row into dest. It is used for
// statements with a "returning" clause.
func queryNamedRow(ctx context.Context, q Queryer, query string, arg any, dest ...any) error {
	bound, args, err := sqlx.Named(query, arg)
	if err != nil {
		return err
	}

	return queryRow(ctx, q, q.Rebind(bound), args, dest...)
}

func queryRow(ctx context.Context, q Queryer, query string, args []any, dest ...any) error {
	return translateError(q.QueryRowxContext(ctx, query, args...).Scan(dest...))
}

func ensureRowsAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return translateError(sql.ErrNoRows)
	}

	return nil
}

// page appends limit and offset to a query.
func page(query string, args []any, limit, offset int) (string, []any) {
	if limit <= 0 && offset <= 0 {
		return query, args
	}

	if limit <= 0 {
		limit = -1
	}

	return query + ` limit ? offset ?`, append(args, limit, offset)
}
