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
	"fmt"

	"github.com/stretchr/testify/suite"
)

type baseDatabaseTestSuite struct {
	suite.Suite

	ctx  context.Context
	conn Conn
}

func (s *baseDatabaseTestSuite) SetupTest() {
	s.ctx = context.Background()

	var err error
	s.conn, err = openInMemory()
	s.Require().NoError(err)
}

func (s *baseDatabaseTestSuite) TearDownTest() {
	s.Require().NoError(s.conn.Close())
}

func (s *baseDatabaseTestSuite) requireExec(query string, args ...any) {
	_, err := s.conn.ExecContext(s.ctx, query, args...)
	s.Require().NoError(err, query)
}

// assertQuery compares the complete result set, rendering every column as text. NULL is "<nil>".
func (s *baseDatabaseTestSuite) assertQuery(query string, expected ...[]string) {
	rows, err := s.conn.QueryxContext(s.ctx, query)
	s.Require().NoError(err, query)

	defer rows.Close()

	var actual [][]string

	for rows.Next() {
		columns, err := rows.SliceScan()
		s.Require().NoError(err)

		row := make([]string, len(columns))
		for i, column := range columns {
			row[i] = columnText(column)
		}

		actual = append(actual, row)
	}

	s.Require().NoError(rows.Err())
	s.Assert().Equal(expected, actual, query)
}

func columnText(column any) string {
	switch v := column.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func ptr[T any](v T) *T {
	return &v
}
