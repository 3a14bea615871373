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

package log

import (
	"bytes"
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type baseLogTestSuite struct {
	suite.Suite

	output bytes.Buffer
}

func (s *baseLogTestSuite) SetupTest() {
	s.output.Reset()
	Logger = zerolog.New(&s.output).Level(zerolog.TraceLevel)
}

// assertEvent decodes the only line written since the last reset and compares all fields.
func (s *baseLogTestSuite) assertEvent(expected map[string]string) {
	var actual map[string]string

	s.Require().NoError(json.Unmarshal(s.output.Bytes(), &actual), s.output.String())
	s.Assert().Equal(expected, actual)
}
