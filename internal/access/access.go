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

// Package access decides which role may perform which action. The table is fixed at compile
// time, so lookups are pure and safe for concurrent use.
package access

import (
	apperrors "github.com/lukasdietrich/courrier/internal/errors"
	"github.com/lukasdietrich/courrier/internal/models"
)

// Action is a capability checked before an operation.
type Action string

const (
	// View allows reading records.
	View Action = "view"
	// Add allows creating records.
	Add Action = "add"
	// Edit allows updating records and changing their status.
	Edit Action = "edit"
	// Delete allows removing records.
	Delete Action = "delete"
	// ManageUsers allows creating, updating and removing users.
	ManageUsers Action = "manage_users"
	// Export allows producing spreadsheets of query results.
	Export Action = "export"
	// ConfigureSystem allows maintenance like backups.
	ConfigureSystem Action = "configure_system"
)

type actionSet map[Action]bool

var table = map[models.Role]actionSet{
	models.RoleAdmin: {
		View:            true,
		Add:             true,
		Edit:            true,
		Delete:          true,
		ManageUsers:     true,
		Export:          true,
		ConfigureSystem: true,
	},
	models.RoleUser: {
		View:   true,
		Add:    true,
		Edit:   true,
		Export: true,
	},
	models.RoleViewer: {
		View:   true,
		Export: true,
	},
}

// Permitted reports whether role may perform action. Unknown roles and unknown actions are
// denied.
func Permitted(role models.Role, action Action) bool {
	return table[role][action]
}

// Check returns a *apperrors.PermissionError, unless the actor may perform action.
func Check(actor models.Actor, action Action) error {
	if !Permitted(actor.Role, action) {
		return &apperrors.PermissionError{
			Role:   string(actor.Role),
			Action: string(action),
		}
	}

	return nil
}

// Actions returns every action the role may perform, in a stable order.
func Actions(role models.Role) []Action {
	var actions []Action

	for _, action := range []Action{View, Add, Edit, Delete, ManageUsers, Export, ConfigureSystem} {
		if Permitted(role, action) {
			actions = append(actions, action)
		}
	}

	return actions
}
