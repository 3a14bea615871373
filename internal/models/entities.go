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

// Role is the capability class of a user.
type Role string

const (
	// RoleAdmin has every capability.
	RoleAdmin Role = "admin"
	// RoleUser may view, add, edit and export.
	RoleUser Role = "user"
	// RoleViewer is the read-only reviewer, who may view and export.
	RoleViewer Role = "viewer"
)

// Valid checks if r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleViewer:
		return true
	default:
		return false
	}
}

// UserEntity is the entity for the "users" table.
type UserEntity struct {
	ID          int64  `db:"id" json:"id"`
	Username    string `db:"username" json:"username"`
	Hash        string `db:"hash" json:"-"`
	DisplayName string `db:"display_name" json:"displayName"`
	Role        Role   `db:"role" json:"role"`
	Email       string `db:"email" json:"email,omitempty"`
	Phone       string `db:"phone" json:"phone,omitempty"`
	Active      bool   `db:"active" json:"active"`
	CreatedAt   int64  `db:"created_at" json:"createdAt"`
	LastLoginAt *int64 `db:"last_login_at" json:"lastLoginAt,omitempty"`
}

// Actor returns the request-scoped identity of the user.
func (u *UserEntity) Actor() Actor {
	return Actor{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
	}
}

// ContactEntity is the entity for the "contacts" table.
type ContactEntity struct {
	ID           int64  `db:"id" json:"id"`
	Code         string `db:"code" json:"code"`
	Name         string `db:"name" json:"name"`
	Organization string `db:"organization" json:"organization,omitempty"`
	Phone        string `db:"phone" json:"phone,omitempty"`
	Email        string `db:"email" json:"email,omitempty"`
	CreatedAt    int64  `db:"created_at" json:"createdAt"`
	UpdatedAt    int64  `db:"updated_at" json:"updatedAt"`
}

// ActionStatus is the status of a follow-up action.
type ActionStatus string

const (
	// ActionPending is an action still to be done.
	ActionPending ActionStatus = "pending"
	// ActionCompleted is a finished action. It is terminal.
	ActionCompleted ActionStatus = "completed"
	// ActionCancelled is an abandoned action. It is terminal.
	ActionCancelled ActionStatus = "cancelled"
)

// ActionEntity is the entity for the "actions" table. An action is a follow-up task tied to a
// single mail record.
type ActionEntity struct {
	ID            int64        `db:"id" json:"id"`
	Direction     Direction    `db:"direction" json:"direction"`
	MailID        int64        `db:"mail_id" json:"mailId"`
	ActionType    string       `db:"action_type" json:"actionType"`
	Description   string       `db:"description" json:"description,omitempty"`
	AssignedTo    *int64       `db:"assigned_to" json:"assignedTo,omitempty"`
	DueDate       NullDate     `db:"due_date" json:"dueDate"`
	Status        ActionStatus `db:"status" json:"status"`
	CompletedDate NullDate     `db:"completed_date" json:"completedDate"`
	Notes         string       `db:"notes" json:"notes,omitempty"`
	CreatedBy     *int64       `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt     int64        `db:"created_at" json:"createdAt"`
}

// ActivityEntity is the entity for the "activity_log" table. Entries are never updated or
// deleted.
type ActivityEntity struct {
	ID        int64  `db:"id" json:"id"`
	UserID    *int64 `db:"user_id" json:"userId,omitempty"`
	Action    string `db:"action" json:"action"`
	Details   string `db:"details" json:"details,omitempty"`
	CreatedAt int64  `db:"created_at" json:"createdAt"`
}

// ReferenceCounterEntity is the entity for the "reference_counters" table.
type ReferenceCounterEntity struct {
	Direction    Direction `db:"direction"`
	Year         int       `db:"year"`
	Month        int       `db:"month"`
	LastSequence int       `db:"last_sequence"`
}
