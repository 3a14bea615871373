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

// Actor is the identity on whose behalf an operation runs. It is passed explicitly into every
// operation instead of being read from any session.
type Actor struct {
	UserID   int64
	Username string
	Role     Role
}

// SystemActor is used for maintenance tasks started from the administration shell or during
// bootstrap. It is not backed by a row in the "users" table.
var SystemActor = Actor{
	Username: "system",
	Role:     RoleAdmin,
}

// IsSystem checks if the actor is not backed by a user row.
func (a Actor) IsSystem() bool {
	return a.UserID == 0
}

// UserRef returns the user id as a nullable column value.
func (a Actor) UserRef() *int64 {
	if a.IsSystem() {
		return nil
	}

	id := a.UserID
	return &id
}
