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

// Package register implements the operations of the correspondence register on top of the
// database. Every operation takes the acting user explicitly and consults the access gate before
// touching any data.
package register

import (
	"time"

	"github.com/spf13/viper"

	"github.com/lukasdietrich/courrier/internal/models"
)

func init() {
	viper.SetDefault("register.prefix.incoming", "W")
	viper.SetDefault("register.prefix.outgoing", "S")
	viper.SetDefault("register.reminder.days", 3)
}

// Options is the configuration of the register.
type Options struct {
	IncomingPrefix string
	OutgoingPrefix string
	ReminderDays   int
}

// OptionsFromViper reads Options from viper.
//
// `register.prefix.incoming` and `register.prefix.outgoing` are the reference prefixes.
// `register.reminder.days` is the number of days before the due date, from which incoming mail
// is due soon.
func OptionsFromViper() Options {
	return Options{
		IncomingPrefix: viper.GetString("register.prefix.incoming"),
		OutgoingPrefix: viper.GetString("register.prefix.outgoing"),
		ReminderDays:   viper.GetInt("register.reminder.days"),
	}
}

func (o Options) prefix(direction models.Direction) string {
	if direction == models.Outgoing {
		return o.OutgoingPrefix
	}

	return o.IncomingPrefix
}

// Clock returns the current time. It determines the period of new reference numbers and the
// "today" of due dates.
type Clock func() time.Time

// NewClock returns the wall clock.
func NewClock() Clock {
	return time.Now
}

func (c Clock) today() models.Date {
	return models.DateOf(c())
}
