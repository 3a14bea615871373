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
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a civil date without time of day. It is stored as "YYYY-MM-DD".
type Date struct {
	t time.Time
}

// NewDate creates a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the civil date of t in the location of t.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}

	return Date{t: t}, nil
}

func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }

// IsZero checks if d is the zero value.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// DaysUntil returns the number of days from d to other. The result is negative, if other is
// before d.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// Before checks if d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

func (d Date) String() string {
	return d.t.Format(dateLayout)
}

// Scan implements the sql.Scanner interface.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v.UTC())
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("date: cannot scan %T", src)
	}
}

func (d *Date) parse(s string) error {
	v, err := ParseDate(s)
	if err != nil {
		return err
	}

	*d = v
	return nil
}

// Value implements the sql/driver.Valuer interface.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// MarshalJSON implements the json.Marshaler interface.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	return d.parse(s)
}

// NullDate is a Date that may be null.
type NullDate struct {
	Date  Date
	Valid bool
}

// SomeDate wraps d into a valid NullDate.
func SomeDate(d Date) NullDate {
	return NullDate{Date: d, Valid: true}
}

// Equal checks if both are null or both hold the same date.
func (n NullDate) Equal(other NullDate) bool {
	if n.Valid != other.Valid {
		return false
	}

	return !n.Valid || n.Date.t.Equal(other.Date.t)
}

// Scan implements the sql.Scanner interface.
func (n *NullDate) Scan(src interface{}) error {
	if src == nil {
		*n = NullDate{}
		return nil
	}

	if err := n.Date.Scan(src); err != nil {
		return err
	}

	n.Valid = true
	return nil
}

// Value implements the sql/driver.Valuer interface.
func (n NullDate) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}

	return n.Date.Value()
}

// MarshalJSON implements the json.Marshaler interface.
func (n NullDate) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}

	return n.Date.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (n *NullDate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = NullDate{}
		return nil
	}

	if err := n.Date.UnmarshalJSON(b); err != nil {
		return err
	}

	n.Valid = true
	return nil
}
