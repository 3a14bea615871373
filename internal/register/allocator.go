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

package register

import (
	"context"
	"time"

	"github.com/lukasdietrich/courrier/internal/database"
	"github.com/lukasdietrich/courrier/internal/log"
	"github.com/lukasdietrich/courrier/internal/models"
)

// Allocator hands out reference numbers. The sequence restarts with every month and direction.
type Allocator struct {
	counterDao database.ReferenceCounterDao
	opts       Options
	clock      Clock
}

// NewAllocator creates a new Allocator.
func NewAllocator(counterDao database.ReferenceCounterDao, opts Options, clock Clock) *Allocator {
	return &Allocator{
		counterDao: counterDao,
		opts:       opts,
		clock:      clock,
	}
}

// Next reserves the next reference number of the current period. It has to be called within the
// transaction that inserts the mail record, so a rollback releases the number again. Committed
// numbers are never handed out twice, even if their record is deleted later.
func (a *Allocator) Next(ctx context.Context, tx database.Tx, direction models.Direction) (models.Reference, error) {
	now := a.clock()

	sequence, err := a.counterDao.Next(ctx, tx, direction, now.Year(), int(now.Month()))
	if err != nil {
		return models.Reference{}, err
	}

	ref := a.reference(direction, sequence, now.Year(), now.Month())

	log.DebugContext(ctx).
		Stringer("reference", ref).
		Msg("reference allocated")

	return ref, nil
}

// Peek returns the reference number the next allocation would return without reserving it. It
// is meant for previews only.
func (a *Allocator) Peek(ctx context.Context, q database.Queryer, direction models.Direction) (models.Reference, error) {
	now := a.clock()

	sequence, err := a.counterDao.Peek(ctx, q, direction, now.Year(), int(now.Month()))
	if err != nil {
		return models.Reference{}, err
	}

	return a.reference(direction, sequence, now.Year(), now.Month()), nil
}

func (a *Allocator) reference(direction models.Direction, sequence, year int, month time.Month) models.Reference {
	return models.Reference{
		Prefix:   a.opts.prefix(direction),
		Sequence: sequence,
		Month:    month,
		Year:     year,
	}
}
