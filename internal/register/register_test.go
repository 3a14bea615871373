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

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/courrier/internal/crypto"
	"github.com/lukasdietrich/courrier/internal/database"
	"github.com/lukasdietrich/courrier/internal/log"
	"github.com/lukasdietrich/courrier/internal/models"
	"github.com/lukasdietrich/courrier/internal/storage"
)

type baseRegisterTestSuite struct {
	suite.Suite

	ctx      context.Context
	conn     database.Conn
	now      time.Time
	blobs    storage.Blobs
	renderer *MockBordereauRenderer

	journal   *Journal
	allocator *Allocator
	mails     *MailService
	contacts  *ContactService
	users     *UserService
	actions   *ActionService

	admin  models.Actor
	user   models.Actor
	viewer models.Actor
}

func (s *baseRegisterTestSuite) SetupTest() {
	viper.Set("storage.database.filename", ":memory:")
	viper.Set("security.argon2.memory", 1024)
	viper.Set("security.argon2.time", 1)
	viper.Set("security.argon2.threads", 1)

	s.openServices()
}

func (s *baseRegisterTestSuite) openServices() {
	conn, err := database.OpenConnection()
	s.Require().NoError(err)

	blobs, err := storage.NewBlobs(afero.NewMemMapFs(), crypto.NewIDGenerator(), storage.BlobsOptions{
		Foldername: "blobs",
	})
	s.Require().NoError(err)

	s.ctx = log.WithOrigin(context.Background(), "test")
	s.conn = conn
	s.now = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)
	s.blobs = blobs
	s.renderer = new(MockBordereauRenderer)

	var (
		clock = Clock(func() time.Time { return s.now })
		opts  = Options{IncomingPrefix: "W", OutgoingPrefix: "S", ReminderDays: 3}

		mailDao     = database.NewMailDao()
		contactDao  = database.NewContactDao()
		userDao     = database.NewUserDao()
		actionDao   = database.NewActionDao()
		activityDao = database.NewActivityDao()
		counterDao  = database.NewReferenceCounterDao()

		uploads = storage.NewUploads(blobs, storage.UploadOptions{
			MaxSize:    64,
			Extensions: []string{"pdf", "png"},
		})
	)

	s.journal = NewJournal(conn, activityDao)
	s.allocator = NewAllocator(counterDao, opts, clock)
	s.mails = NewMailService(conn, mailDao, contactDao, userDao, actionDao, s.allocator, s.journal,
		uploads, blobs, s.renderer, opts, clock)
	s.contacts = NewContactService(conn, contactDao, mailDao, s.journal)
	s.users = NewUserService(conn, userDao, s.journal)
	s.actions = NewActionService(conn, actionDao, mailDao, userDao, s.journal, clock)

	s.admin = s.createUser("alice", models.RoleAdmin)
	s.user = s.createUser("bob", models.RoleUser)
	s.viewer = s.createUser("carol", models.RoleViewer)
}

func (s *baseRegisterTestSuite) TearDownTest() {
	mock.AssertExpectationsForObjects(s.T(), s.renderer)
	s.Require().NoError(s.conn.Close())
}

func (s *baseRegisterTestSuite) createUser(username string, role models.Role) models.Actor {
	user, _, err := s.users.Create(s.ctx, models.SystemActor, UserInput{
		Username:    username,
		DisplayName: username,
		Role:        role,
		Password:    "correct horse",
	})
	s.Require().NoError(err)

	return user.Actor()
}

func (s *baseRegisterTestSuite) createContact(code, name string) *models.ContactEntity {
	contact, err := s.contacts.Create(s.ctx, s.admin, ContactInput{
		Code:         code,
		Name:         name,
		Organization: name + " Ltd.",
		Phone:        "+49 30 1234567",
		Email:        code + "@example.com",
	})
	s.Require().NoError(err)

	return contact
}

func (s *baseRegisterTestSuite) createMail(direction models.Direction, subject string) *models.MailEntity {
	mail, err := s.mails.Create(s.ctx, s.user, direction, MailInput{
		CounterpartyName: "Ministry of Works",
		Subject:          subject,
	})
	s.Require().NoError(err)

	return mail
}

func (s *baseRegisterTestSuite) activities(action string) []models.ActivityEntity {
	entries, err := database.NewActivityDao().Find(s.ctx, s.conn, database.ActivityFilter{Action: action})
	s.Require().NoError(err)

	return entries
}

func (s *baseRegisterTestSuite) today() models.Date {
	return models.DateOf(s.now)
}

func ptr[T any](v T) *T {
	return &v
}
