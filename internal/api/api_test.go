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

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/courrier/internal/auth"
	"github.com/lukasdietrich/courrier/internal/backup"
	"github.com/lukasdietrich/courrier/internal/crypto"
	"github.com/lukasdietrich/courrier/internal/database"
	"github.com/lukasdietrich/courrier/internal/documents"
	"github.com/lukasdietrich/courrier/internal/models"
	"github.com/lukasdietrich/courrier/internal/register"
	"github.com/lukasdietrich/courrier/internal/storage"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details json.RawMessage `json:"details"`
}

type baseAPITestSuite struct {
	suite.Suite

	ctx    context.Context
	conn   database.Conn
	users  *register.UserService
	router *echo.Echo
}

func (s *baseAPITestSuite) SetupTest() {
	viper.Set("storage.database.filename", ":memory:")
	viper.Set("security.argon2.memory", 1024)
	viper.Set("security.argon2.time", 1)
	viper.Set("security.argon2.threads", 1)
	viper.Set("security.auth.minDuration", "0s")

	conn, err := database.OpenConnection()
	s.Require().NoError(err)

	fs := afero.NewMemMapFs()

	blobs, err := storage.NewBlobs(fs, crypto.NewIDGenerator(), storage.BlobsOptions{Foldername: "blobs"})
	s.Require().NoError(err)

	tokens, err := auth.NewTokens(auth.TokenOptions{Secret: []byte("test-secret"), Validity: time.Hour})
	s.Require().NoError(err)

	var (
		clock = register.Clock(func() time.Time {
			return time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)
		})
		opts = register.Options{IncomingPrefix: "W", OutgoingPrefix: "S", ReminderDays: 3}

		mailDao     = database.NewMailDao()
		contactDao  = database.NewContactDao()
		userDao     = database.NewUserDao()
		actionDao   = database.NewActionDao()
		activityDao = database.NewActivityDao()

		uploads = storage.NewUploads(blobs, storage.UploadOptions{
			MaxSize:    1024,
			Extensions: []string{"pdf"},
		})
		renderer = documents.NewBordereau(fs, documents.BordereauOptions{
			Template: "templates/bordereau.docx",
			Timeout:  time.Second,
		})
		writer = documents.NewSpreadsheet(documents.SpreadsheetOptions{Timeout: 10 * time.Second})

		journal   = register.NewJournal(conn, activityDao)
		allocator = register.NewAllocator(database.NewReferenceCounterDao(), opts, clock)
		mails     = register.NewMailService(conn, mailDao, contactDao, userDao, actionDao, allocator, journal,
			uploads, blobs, renderer, opts, clock)
		contacts = register.NewContactService(conn, contactDao, mailDao, journal)
		users    = register.NewUserService(conn, userDao, journal)
		actions  = register.NewActionService(conn, actionDao, mailDao, userDao, journal, clock)
		stats    = register.NewStatsService(conn, userDao, contactDao, mailDao, clock)
		exports  = register.NewExportService(conn, mailDao, contactDao, activityDao, journal, writer)
		backups  = backup.NewBackups(conn, afero.NewOsFs(), journal, clock, backup.Options{
			Foldername: filepath.Join(s.T().TempDir(), "backups"),
			Keep:       3,
		})
	)

	s.ctx = context.Background()
	s.conn = conn
	s.users = users
	s.router = NewRouter(NewGate(tokens, conn, userDao), Handlers{
		Auth:     NewAuthHandler(register.NewAuthenticator(conn, userDao, journal), users, tokens),
		Mails:    NewMailHandler(mails),
		Actions:  NewActionHandler(actions),
		Contacts: NewContactHandler(contacts),
		Users:    NewUserHandler(users),
		Reports:  NewReportHandler(stats, journal, exports, backups),
	}, ServerOptions{BodyLimit: "1M"})

	s.createUser("alice", models.RoleAdmin)
	s.createUser("bob", models.RoleUser)
	s.createUser("carol", models.RoleViewer)
}

func (s *baseAPITestSuite) TearDownTest() {
	s.Require().NoError(s.conn.Close())
}

func (s *baseAPITestSuite) createUser(username string, role models.Role) {
	_, _, err := s.users.Create(s.ctx, models.SystemActor, register.UserInput{
		Username:    username,
		DisplayName: username,
		Role:        role,
		Password:    "correct horse",
	})
	s.Require().NoError(err)
}

func (s *baseAPITestSuite) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	return rec
}

func (s *baseAPITestSuite) do(method, target, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)

		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	return s.serve(req, token)
}

func (s *baseAPITestSuite) upload(target, token, filename string, content []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer

	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", filename)
	s.Require().NoError(err)

	_, err = part.Write(content)
	s.Require().NoError(err)
	s.Require().NoError(w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())

	return s.serve(req, token)
}

func (s *baseAPITestSuite) decode(rec *httptest.ResponseRecorder, status int, data interface{}) envelope {
	s.Require().Equal(status, rec.Code, rec.Body.String())

	var env envelope
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env))

	if data != nil {
		s.Require().NoError(json.Unmarshal(env.Data, data))
	}

	return env
}

func (s *baseAPITestSuite) login(username string) string {
	var resp struct {
		Token string `json:"token"`
	}

	s.decode(s.do(http.MethodPost, "/api/auth/login", "", LoginRequest{
		Username: username,
		Password: "correct horse",
	}), http.StatusOK, &resp)

	s.Require().NotEmpty(resp.Token)
	return resp.Token
}

func ptr[T any](v T) *T {
	return &v
}
