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
)

// Attachments is the ordered list of blob ids of files attached to a mail record. It is stored as
// a json array.
type Attachments []string

// Scan implements the sql.Scanner interface.
func (a *Attachments) Scan(src interface{}) error {
	var raw []byte

	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("attachments: cannot scan %T", src)
	}

	if len(raw) == 0 {
		*a = nil
		return nil
	}

	return json.Unmarshal(raw, (*[]string)(a))
}

// Value implements the sql/driver.Valuer interface.
func (a Attachments) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}

	b, err := json.Marshal([]string(a))
	return string(b), err
}

// MarshalJSON implements the json.Marshaler interface. A nil list is encoded as an empty array.
func (a Attachments) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}

	return json.Marshal([]string(a))
}
