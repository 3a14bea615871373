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

	"github.com/lukasdietrich/courrier/internal/access"
	"github.com/lukasdietrich/courrier/internal/database"
	"github.com/lukasdietrich/courrier/internal/models"
)

// Stats is the overview of the dashboard.
type Stats struct {
	Users              int64                       `json:"users"`
	Contacts           int64                       `json:"contacts"`
	Incoming           int64                       `json:"incoming"`
	Outgoing           int64                       `json:"outgoing"`
	IncomingNew        int64                       `json:"incomingNew"`
	IncomingProcessing int64                       `json:"incomingProcessing"`
	IncomingOverdue    int64                       `json:"incomingOverdue"`
	IncomingByStatus   map[models.MailStatus]int64 `json:"incomingByStatus"`
	OutgoingByStatus   map[models.MailStatus]int64 `json:"outgoingByStatus"`
}

// StatsService computes the dashboard overview.
type StatsService struct {
	conn       database.Conn
	userDao    database.UserDao
	contactDao database.ContactDao
	mailDao    database.MailDao
	clock      Clock
}

// NewStatsService creates a new StatsService.
func NewStatsService(
	conn database.Conn,
	userDao database.UserDao,
	contactDao database.ContactDao,
	mailDao database.MailDao,
	clock Clock,
) *StatsService {
	return &StatsService{
		conn:       conn,
		userDao:    userDao,
		contactDao: contactDao,
		mailDao:    mailDao,
		clock:      clock,
	}
}

// Compute counts records of every kind.
func (s *StatsService) Compute(ctx context.Context, actor models.Actor) (*Stats, error) {
	if err := access.Check(actor, access.View); err != nil {
		return nil, err
	}

	var (
		stats Stats
		err   error
	)

	if stats.Users, err = s.userDao.Count(ctx, s.conn); err != nil {
		return nil, err
	}

	if stats.Contacts, err = s.contactDao.Count(ctx, s.conn); err != nil {
		return nil, err
	}

	if stats.IncomingByStatus, err = s.mailDao.CountByStatus(ctx, s.conn, models.Incoming); err != nil {
		return nil, err
	}

	if stats.OutgoingByStatus, err = s.mailDao.CountByStatus(ctx, s.conn, models.Outgoing); err != nil {
		return nil, err
	}

	overdue := database.MailFilter{
		Statuses: openStatuses(models.Incoming),
		DueTo:    models.SomeDate(s.clock.today().AddDays(-1)),
	}

	if stats.IncomingOverdue, err = s.mailDao.Count(ctx, s.conn, models.Incoming, overdue); err != nil {
		return nil, err
	}

	stats.Incoming = sum(stats.IncomingByStatus)
	stats.Outgoing = sum(stats.OutgoingByStatus)
	stats.IncomingNew = stats.IncomingByStatus[models.StatusNew]
	stats.IncomingProcessing = stats.IncomingByStatus[models.StatusProcessing]

	return &stats, nil
}

func sum(counts map[models.MailStatus]int64) int64 {
	var total int64

	for _, n := range counts {
		total += n
	}

	return total
}
