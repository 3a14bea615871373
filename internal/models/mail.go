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

// Direction tells if a mail record is incoming or outgoing. It governs the status vocabulary and
// the reference prefix.
type Direction string

const (
	// Incoming is mail received by the institution.
	Incoming Direction = "incoming"
	// Outgoing is mail sent by the institution.
	Outgoing Direction = "outgoing"
)

// Directions lists every known direction.
var Directions = []Direction{Incoming, Outgoing}

// Valid checks if d is a known direction.
func (d Direction) Valid() bool {
	return d == Incoming || d == Outgoing
}

// MailStatus is the lifecycle state of a mail record.
type MailStatus string

const (
	// StatusNew is the initial state of incoming mail.
	StatusNew MailStatus = "new"
	// StatusProcessing is incoming mail being worked on.
	StatusProcessing MailStatus = "processing"
	// StatusCompleted is handled incoming mail.
	StatusCompleted MailStatus = "completed"
	// StatusCancelled is mail of either direction that will not be handled.
	StatusCancelled MailStatus = "cancelled"
	// StatusDraft is the initial state of outgoing mail.
	StatusDraft MailStatus = "draft"
	// StatusSent is dispatched outgoing mail.
	StatusSent MailStatus = "sent"
	// StatusArchived is filed outgoing mail.
	StatusArchived MailStatus = "archived"
)

// Priority is the urgency of a mail record.
type Priority string

const (
	PriorityNormal    Priority = "normal"
	PriorityImportant Priority = "important"
	PriorityUrgent    Priority = "urgent"
)

// Valid checks if p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityImportant, PriorityUrgent:
		return true
	default:
		return false
	}
}

// Category is the subject area of a mail record.
type Category string

const (
	CategoryAdministrative Category = "administrative"
	CategoryFinancial      Category = "financial"
	CategoryTechnical      Category = "technical"
	CategoryLegal          Category = "legal"
	CategoryOther          Category = "other"
)

// Valid checks if c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryAdministrative, CategoryFinancial, CategoryTechnical, CategoryLegal, CategoryOther:
		return true
	default:
		return false
	}
}

// MailEntity is the entity for both the "incoming_mail" and the "outgoing_mail" table. DueDate is
// only used by incoming mail and Bordereau only by outgoing mail.
type MailEntity struct {
	ID               int64       `db:"id" json:"id"`
	Direction        Direction   `db:"-" json:"direction"`
	ReferenceNo      string      `db:"reference_no" json:"referenceNo"`
	CounterpartyID   *int64      `db:"counterparty_id" json:"counterpartyId,omitempty"`
	CounterpartyName string      `db:"counterparty_name" json:"counterpartyName"`
	Subject          string      `db:"subject" json:"subject"`
	Content          string      `db:"content" json:"content,omitempty"`
	Notes            string      `db:"notes" json:"notes,omitempty"`
	Priority         Priority    `db:"priority" json:"priority"`
	Status           MailStatus  `db:"status" json:"status"`
	Category         Category    `db:"category" json:"category"`
	Date             Date        `db:"mail_date" json:"date"`
	DueDate          NullDate    `db:"due_date" json:"dueDate"`
	Attachments      Attachments `db:"attachments" json:"attachments"`
	Bordereau        string      `db:"bordereau" json:"bordereau,omitempty"`
	CreatedAt        int64       `db:"created_at" json:"createdAt"`
	UpdatedAt        int64       `db:"updated_at" json:"updatedAt"`
	CreatedBy        *int64      `db:"created_by" json:"createdBy,omitempty"`
	HandledBy        *int64      `db:"handled_by" json:"handledBy,omitempty"`
}
