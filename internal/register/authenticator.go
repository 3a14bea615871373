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
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/lukasdietrich/courrier/internal/crypto"
	"github.com/lukasdietrich/courrier/internal/database"
	apperrors "github.com/lukasdietrich/courrier/internal/errors"
	"github.com/lukasdietrich/courrier/internal/log"
	"github.com/lukasdietrich/courrier/internal/models"
)

var (
	// ErrWrongCredentials is returned when a user either does not exist, is inactive or the
	// password does not match the hash.
	ErrWrongCredentials = fmt.Errorf("%w: wrong username or password", apperrors.ErrUnauthorized)
)

func init() {
	viper.SetDefault("security.auth.minDuration", "1s")
}

// Authenticator checks the credentials of users.
type Authenticator struct {
	conn    database.Conn
	userDao database.UserDao
	journal *Journal

	minDuration time.Duration
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(conn database.Conn, userDao database.UserDao, journal *Journal) *Authenticator {
	return &Authenticator{
		conn:    conn,
		userDao: userDao,
		journal: journal,

		minDuration: viper.GetDuration("security.auth.minDuration"),
	}
}

// Auth looks up an active user by name and verifies the password. Every attempt takes at least
// the configured minimum duration and is written to the activity log.
func (a *Authenticator) Auth(ctx context.Context, username, password string) (*models.UserEntity, error) {
	startTime := time.Now()
	defer a.ensureMinDuration(startTime)

	user, err := a.userDao.FindByUsername(ctx, a.conn, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.WarnContext(ctx).
				Str("username", username).
				Msg("failed auth attempt: unknown user")

			return nil, a.fail(ctx, models.SystemActor, username)
		}

		return nil, err
	}

	if !user.Active {
		log.WarnContext(ctx).
			Str("username", username).
			Msg("failed auth attempt: inactive user")

		return nil, a.fail(ctx, user.Actor(), username)
	}

	if err := crypto.Verify(user, []byte(password)); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			log.WarnContext(ctx).
				Str("username", username).
				Msg("failed auth attempt: wrong password")

			return nil, a.fail(ctx, user.Actor(), username)
		}

		return nil, err
	}

	err = database.WithTx(ctx, a.conn, func(tx database.Tx) error {
		if err := a.userDao.TouchLastLogin(ctx, tx, user); err != nil {
			return err
		}

		return a.journal.Record(ctx, tx, user.Actor(), ActivityLogin, "%s logged in", user.Username)
	})

	if err != nil {
		return nil, err
	}

	return user, nil
}

// Logout records the end of a session.
func (a *Authenticator) Logout(ctx context.Context, actor models.Actor) error {
	return a.journal.Record(ctx, a.conn, actor, ActivityLogout, "%s logged out", actor.Username)
}

// fail records a failed attempt and returns ErrWrongCredentials. Unknown users are recorded
// without user.
func (a *Authenticator) fail(ctx context.Context, actor models.Actor, username string) error {
	if err := a.journal.Record(ctx, a.conn, actor, ActivityLoginFailed,
		"failed login attempt for %q", username); err != nil {
		return err
	}

	return ErrWrongCredentials
}

func (a *Authenticator) ensureMinDuration(start time.Time) {
	elapsed := time.Since(start)
	remaining := a.minDuration - elapsed

	if remaining > 0 {
		time.Sleep(remaining)
	}
}
