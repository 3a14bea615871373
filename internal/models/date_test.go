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

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-07")
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 7, d.Day())
	assert.Equal(t, "2025-03-07", d.String())

	_, err = ParseDate("07/03/2025")
	assert.Error(t, err)
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC+1", 3600)
	d := DateOf(time.Date(2025, 3, 7, 0, 30, 0, 0, loc))
	assert.Equal(t, NewDate(2025, time.March, 7), d)
}

func TestDaysUntil(t *testing.T) {
	today := NewDate(2025, time.February, 27)

	assert.Equal(t, 3, today.DaysUntil(NewDate(2025, time.March, 2)))
	assert.Equal(t, -1, today.DaysUntil(today.AddDays(-1)))
	assert.Equal(t, 0, today.DaysUntil(today))
	assert.Equal(t, 366, NewDate(2024, 1, 1).DaysUntil(NewDate(2025, 1, 1)))
}

func TestDateScan(t *testing.T) {
	var d Date

	assert.NoError(t, d.Scan("2025-03-07"))
	assert.Equal(t, NewDate(2025, 3, 7), d)

	assert.NoError(t, d.Scan([]byte("2024-12-31")))
	assert.Equal(t, NewDate(2024, 12, 31), d)

	assert.NoError(t, d.Scan(time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, NewDate(2023, 5, 1), d)

	assert.Error(t, d.Scan(42))
}

func TestNullDate(t *testing.T) {
	var n NullDate

	assert.NoError(t, n.Scan(nil))
	assert.False(t, n.Valid)

	value, err := n.Value()
	assert.NoError(t, err)
	assert.Nil(t, value)

	assert.NoError(t, n.Scan("2025-03-17"))
	assert.True(t, n.Valid)

	value, err = n.Value()
	assert.NoError(t, err)
	assert.Equal(t, "2025-03-17", value)
}

func TestNullDateJSON(t *testing.T) {
	var payload struct {
		Due NullDate `json:"due"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"due":"2025-03-17"}`), &payload))
	assert.Equal(t, SomeDate(NewDate(2025, 3, 17)), payload.Due)

	require.NoError(t, json.Unmarshal([]byte(`{"due":null}`), &payload))
	assert.False(t, payload.Due.Valid)

	b, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":null}`, string(b))
}
