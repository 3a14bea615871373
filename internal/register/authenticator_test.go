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
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/courrier/internal/database"
	apperrors "github.com/lukasdietrich/courrier/internal/errors"
	"github.com/lukasdietrich/courrier/internal/models"
)

func TestAuthenticatorTestSuite(t *testing.T) {
	suite.Run(t, new(AuthenticatorTestSuite))
}

type AuthenticatorTestSuite struct {
	baseRegisterTestSuite

	authenticator *Authenticator
}

func (s *AuthenticatorTestSuite) SetupTest() {
	s.baseRegisterTestSuite.SetupTest()

	viper.Set("security.auth.minDuration", "0")
	s.authenticator = NewAuthenticator(s.conn, database.NewUserDao(), s.journal)
}

func (s *AuthenticatorTestSuite) TestAuthSuccessful() {
	user, err := s.authenticator.Auth(s.ctx, "bob", "correct horse")
	s.Require().NoError(err)

	s.Assert().Equal(s.user, user.Actor())

	stored, err := s.users.Get(s.ctx, s.admin, s.user.UserID)
	s.Require().NoError(err)
	s.Assert().NotNil(stored.LastLoginAt)

	entries := s.activities(ActivityLogin)
	s.Require().Len(entries, 1)
	s.Assert().Equal(&s.user.UserID, entries[0].UserID)

	s.Require().NoError(s.authenticator.Logout(s.ctx, user.Actor()))
	s.Assert().Len(s.activities(ActivityLogout), 1)
}

func (s *AuthenticatorTestSuite) TestAuthWrongPassword() {
	user, err := s.authenticator.Auth(s.ctx, "bob", "wrong horse")
	s.Assert().Nil(user)
	s.Assert().ErrorIs(err, ErrWrongCredentials)
	s.Assert().ErrorIs(err, apperrors.ErrUnauthorized)

	entries := s.activities(ActivityLoginFailed)
	s.Require().Len(entries, 1)
	s.Assert().Equal(&s.user.UserID, entries[0].UserID)
}

func (s *AuthenticatorTestSuite) TestAuthUnknownUser() {
	user, err := s.authenticator.Auth(s.ctx, "mallory", "correct horse")
	s.Assert().Nil(user)
	s.Assert().ErrorIs(err, ErrWrongCredentials)

	entries := s.activities(ActivityLoginFailed)
	s.Require().Len(entries, 1)
	s.Assert().Nil(entries[0].UserID)
	s.Assert().Contains(entries[0].Details, "mallory")
}

func (s *AuthenticatorTestSuite) TestAuthInactiveUser() {
	_, err := s.users.Update(s.ctx, s.admin, s.user.UserID, UserUpdate{
		Role:   models.RoleUser,
		Active: ptr(false),
	})
	s.Require().NoError(err)

	user, err := s.authenticator.Auth(s.ctx, "bob", "correct horse")
	s.Assert().Nil(user)
	s.Assert().ErrorIs(err, ErrWrongCredentials)
}

func (s *AuthenticatorTestSuite) TestAuthMinDuration() {
	viper.Set("security.auth.minDuration", "100ms")
	s.authenticator = NewAuthenticator(s.conn, database.NewUserDao(), s.journal)

	startTime := time.Now()
	expectedEndTime := startTime.Add(100 * time.Millisecond)

	_, err := s.authenticator.Auth(s.ctx, "mallory", "correct horse")
	s.Assert().ErrorIs(err, ErrWrongCredentials)

	s.Assert().WithinDuration(expectedEndTime, time.Now(), 50*time.Millisecond)
}
