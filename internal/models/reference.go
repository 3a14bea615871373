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
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrInvalidReference is returned by ParseReference for malformed strings.
var ErrInvalidReference = errors.New("reference: invalid format")

// Reference is the human readable identifier of a mail record. It encodes direction prefix,
// sequence and period, for example "W-0007-03-2025".
type Reference struct {
	Prefix   string
	Sequence int
	Month    time.Month
	Year     int
}

var referencePattern = regexp.MustCompile(`^(.+)-(\d{4,})-(\d{2})-(\d{4})$`)

// ParseReference splits a reference string into its components.
func ParseReference(s string) (Reference, error) {
	m := referencePattern.FindStringSubmatch(s)
	if m == nil {
		return Reference{}, ErrInvalidReference
	}

	sequence, _ := strconv.Atoi(m[2])
	month, _ := strconv.Atoi(m[3])
	year, _ := strconv.Atoi(m[4])

	if month < 1 || month > 12 {
		return Reference{}, ErrInvalidReference
	}

	return Reference{
		Prefix:   m[1],
		Sequence: sequence,
		Month:    time.Month(month),
		Year:     year,
	}, nil
}

// String formats the reference. Sequences are zero-padded to four digits, larger sequences use
// their full width.
func (r Reference) String() string {
	return fmt.Sprintf("%s-%04d-%02d-%04d", r.Prefix, r.Sequence, int(r.Month), r.Year)
}
