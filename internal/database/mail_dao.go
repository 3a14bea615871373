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
	"strings"

	apperrors "github.com/lukasdietrich/courrier/internal/errors"
	"github.com/lukasdietrich/courrier/internal/models"
)

// mailTables maps each direction onto its table. Table names are never taken from input.
var mailTables = map[models.Direction]string{
	models.Incoming: `"incoming_mail"`,
	models.Outgoing: `"outgoing_mail"`,
}

func mailTable(direction models.Direction) (string, error) {
	table, ok := mailTables[direction]
	if !ok {
		return "", apperrors.Validation("direction", "unknown direction %q", direction)
	}

	return table, nil
}

// MailFilter narrows the result of MailDao.Find and MailDao.Count. Zero values do not filter.
type MailFilter struct {
	Statuses       []models.MailStatus
	Priority       models.Priority
	Category       models.Category
	CounterpartyID *int64
	// DueFrom and DueTo are inclusive bounds of the due date. Rows without due date never match
	// a bounded filter.
	DueFrom models.NullDate
	DueTo   models.NullDate
	// DateFrom and DateTo are inclusive bounds of the mail date.
	DateFrom models.NullDate
	DateTo   models.NullDate
	// Search matches reference, subject and counterparty name by folded containment.
	Search string
	Limit  int
	Offset int
}

func (f *MailFilter) where() (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if len(f.Statuses) > 0 {
		placeholders := make([]string, len(f.Statuses))
		for i, status := range f.Statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}

		clauses = append(clauses, `"status" in (`+strings.Join(placeholders, ", ")+`)`)
	}

	if f.Priority != "" {
		clauses = append(clauses, `"priority" = ?`)
		args = append(args, f.Priority)
	}

	if f.Category != "" {
		clauses = append(clauses, `"category" = ?`)
		args = append(args, f.Category)
	}

	if f.CounterpartyID != nil {
		clauses = append(clauses, `"counterparty_id" = ?`)
		args = append(args, *f.CounterpartyID)
	}

	if f.DueFrom.Valid {
		clauses = append(clauses, `"due_date" >= ?`)
		args = append(args, f.DueFrom)
	}

	if f.DueTo.Valid {
		clauses = append(clauses, `"due_date" <= ?`)
		args = append(args, f.DueTo)
	}

	if f.DateFrom.Valid {
		clauses = append(clauses, `"mail_date" >= ?`)
		args = append(args, f.DateFrom)
	}

	if f.DateTo.Valid {
		clauses = append(clauses, `"mail_date" <= ?`)
		args = append(args, f.DateTo)
	}

	if search := models.Fold(f.Search); search != "" {
		clauses = append(clauses, `(
			instr(fold("reference_no"), ?) > 0 or
			instr(fold("subject"), ?) > 0 or
			instr(fold("counterparty_name"), ?) > 0
		)`)
		args = append(args, search, search, search)
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " where " + strings.Join(clauses, " and "), args
}

// MailDao is a data access object for all mail record related queries. The table is chosen by
// the direction of the record.
type MailDao interface {
	// Insert inserts a new mail record. ID and timestamps are assigned by the database.
	Insert(context.Context, Queryer, *models.MailEntity) error
	// Update updates an existing mail record. The reference number and the creator are never
	// updated.
	Update(context.Context, Queryer, *models.MailEntity) error
	// Delete deletes an existing mail record.
	Delete(context.Context, Queryer, *models.MailEntity) error
	// FindByID returns the mail record with the id.
	FindByID(context.Context, Queryer, models.Direction, int64) (*models.MailEntity, error)
	// FindByReference returns the mail record with the reference number.
	FindByReference(context.Context, Queryer, models.Direction, string) (*models.MailEntity, error)
	// Find returns all mail records matching the filter, latest first.
	Find(context.Context, Queryer, models.Direction, MailFilter) ([]models.MailEntity, error)
	// Count returns the number of mail records matching the filter, ignoring limit and offset.
	Count(context.Context, Queryer, models.Direction, MailFilter) (int64, error)
	// CountByCounterparty returns the number of mail records of both directions referencing a
	// contact.
	CountByCounterparty(context.Context, Queryer, *models.ContactEntity) (int64, error)
	// CountByStatus returns the number of mail records per status.
	CountByStatus(context.Context, Queryer, models.Direction) (map[models.MailStatus]int64, error)
}

// mailDao is the sqlite implementation of MailDao.
type mailDao struct{}

// NewMailDao creates a new MailDao.
func NewMailDao() MailDao {
	return mailDao{}
}

func (mailDao) Insert(ctx context.Context, q Queryer, mail *models.MailEntity) error {
	const queryFormat = `
		insert into %s (
			"reference_no" ,
			"counterparty_id" ,
			"counterparty_name" ,
			"subject" ,
			"content" ,
			"notes" ,
			"priority" ,
			"status" ,
			"category" ,
			"mail_date" ,
			"due_date" ,
			"attachments" ,
			"bordereau" ,
			"created_by" ,
			"handled_by"
		) values (
			:reference_no ,
			:counterparty_id ,
			:counterparty_name ,
			:subject ,
			:content ,
			:notes ,
			:priority ,
			:status ,
			:category ,
			:mail_date ,
			:due_date ,
			:attachments ,
			:bordereau ,
			:created_by ,
			:handled_by
		)
		returning "id", "created_at", "updated_at" ;
	`

	table, err := mailTable(mail.Direction)
	if err != nil {
		return err
	}

	return queryNamedRow(ctx, q, fmt.Sprintf(queryFormat, table), mail,
		&mail.ID, &mail.CreatedAt, &mail.UpdatedAt)
}

func (mailDao) Update(ctx context.Context, q Queryer, mail *models.MailEntity) error {
	const queryFormat = `
		update %s
		set "counterparty_id"   = :counterparty_id ,
			"counterparty_name" = :counterparty_name ,
			"subject"           = :subject ,
			"content"           = :content ,
			"notes"             = :notes ,
			"priority"          = :priority ,
			"status"            = :status ,
			"category"          = :category ,
			"mail_date"         = :mail_date ,
			"due_date"          = :due_date ,
			"attachments"       = :attachments ,
			"bordereau"         = :bordereau ,
			"handled_by"        = :handled_by ,
			"updated_at"        = strftime('%%s', 'now')
		where "id" = :id
		returning "updated_at" ;
	`

	table, err := mailTable(mail.Direction)
	if err != nil {
		return err
	}

	return queryNamedRow(ctx, q, fmt.Sprintf(queryFormat, table), mail, &mail.UpdatedAt)
}

func (mailDao) Delete(ctx context.Context, q Queryer, mail *models.MailEntity) error {
	const queryFormat = `
		delete from %s
		where "id" = $1 ;
	`

	table, err := mailTable(mail.Direction)
	if err != nil {
		return err
	}

	result, err := execPositional(ctx, q, fmt.Sprintf(queryFormat, table), mail.ID)
	if err != nil {
		return err
	}

	return ensureRowsAffected(result)
}

func (d mailDao) FindByID(
	ctx context.Context,
	q Queryer,
	direction models.Direction,
	id int64,
) (*models.MailEntity, error) {
	return d.findOne(ctx, q, direction, `"id"`, id)
}

func (d mailDao) FindByReference(
	ctx context.Context,
	q Queryer,
	direction models.Direction,
	reference string,
) (*models.MailEntity, error) {
	return d.findOne(ctx, q, direction, `"reference_no"`, reference)
}

func (mailDao) findOne(
	ctx context.Context,
	q Queryer,
	direction models.Direction,
	column string,
	value any,
) (*models.MailEntity, error) {
	const queryFormat = `
		select *
		from %s
		where %s = $1 ;
	`

	table, err := mailTable(direction)
	if err != nil {
		return nil, err
	}

	var mail models.MailEntity

	if err := selectOne(ctx, q, &mail, fmt.Sprintf(queryFormat, table, column), value); err != nil {
		return nil, err
	}

	mail.Direction = direction
	return &mail, nil
}

func (mailDao) Find(
	ctx context.Context,
	q Queryer,
	direction models.Direction,
	filter MailFilter,
) ([]models.MailEntity, error) {
	table, err := mailTable(direction)
	if err != nil {
		return nil, err
	}

	where, args := filter.where()
	query := `select * from ` + table + where + ` order by "mail_date" desc, "id" desc`
	query, args = page(query, args, filter.Limit, filter.Offset)

	var mailSlice []models.MailEntity

	if err := selectSlice(ctx, q, &mailSlice, query, args...); err != nil {
		return nil, err
	}

	for i := range mailSlice {
		mailSlice[i].Direction = direction
	}

	return mailSlice, nil
}

func (mailDao) Count(
	ctx context.Context,
	q Queryer,
	direction models.Direction,
	filter MailFilter,
) (int64, error) {
	table, err := mailTable(direction)
	if err != nil {
		return 0, err
	}

	where, args := filter.where()

	var count int64
	return count, selectOne(ctx, q, &count, `select count(*) from `+table+where, args...)
}

func (mailDao) CountByCounterparty(
	ctx context.Context,
	q Queryer,
	contact *models.ContactEntity,
) (int64, error) {
	const query = `
		select
			( select count(*) from "incoming_mail" where "counterparty_id" = $1 ) +
			( select count(*) from "outgoing_mail" where "counterparty_id" = $1 ) ;
	`

	var count int64
	return count, selectOne(ctx, q, &count, query, contact.ID)
}

func (mailDao) CountByStatus(
	ctx context.Context,
	q Queryer,
	direction models.Direction,
) (map[models.MailStatus]int64, error) {
	const queryFormat = `
		select "status", count(*) as "count"
		from %s
		group by "status" ;
	`

	table, err := mailTable(direction)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Status models.MailStatus `db:"status"`
		Count  int64             `db:"count"`
	}

	if err := selectSlice(ctx, q, &rows, fmt.Sprintf(queryFormat, table)); err != nil {
		return nil, err
	}

	counts := make(map[models.MailStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}
