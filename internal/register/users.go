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
	"strings"
	"unicode"

	"github.com/spf13/viper"

	"github.com/lukasdietrich/courrier/internal/access"
	"github.com/lukasdietrich/courrier/internal/crypto"
	"github.com/lukasdietrich/courrier/internal/database"
	apperrors "github.com/lukasdietrich/courrier/internal/errors"
	"github.com/lukasdietrich/courrier/internal/log"
	"github.com/lukasdietrich/courrier/internal/models"
)

const generatedPasswordLength = 16

func init() {
	viper.SetDefault("security.password.minLength", 8)
	viper.SetDefault("bootstrap.admin.username", "admin")
	viper.SetDefault("bootstrap.admin.password", "")
}

// UserInput holds the fields of a new user.
type UserInput struct {
	Username    string      `json:"username"`
	DisplayName string      `json:"displayName"`
	Role        models.Role `json:"role"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	// Password is generated, if empty.
	Password string `json:"password"`
}

// UserUpdate holds the editable fields of a user. The username never changes.
type UserUpdate struct {
	DisplayName string      `json:"displayName"`
	Role        models.Role `json:"role"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	// Active keeps the current state when nil.
	Active *bool `json:"active"`
}

// UserService manages the accounts of the register.
type UserService struct {
	conn    database.Conn
	userDao database.UserDao
	journal *Journal

	minPasswordLength int
}

// NewUserService creates a new UserService.
func NewUserService(conn database.Conn, userDao database.UserDao, journal *Journal) *UserService {
	return &UserService{
		conn:    conn,
		userDao: userDao,
		journal: journal,

		minPasswordLength: viper.GetInt("security.password.minLength"),
	}
}

// Create adds a new user. If no password is given, a temporary one is generated and returned.
func (s *UserService) Create(
	ctx context.Context,
	actor models.Actor,
	input UserInput,
) (*models.UserEntity, string, error) {
	if err := access.Check(actor, access.ManageUsers); err != nil {
		return nil, "", err
	}

	user, password, err := s.prepare(input)
	if err != nil {
		return nil, "", err
	}

	err = database.WithTx(ctx, s.conn, func(tx database.Tx) error {
		if err := s.userDao.Insert(ctx, tx, user); err != nil {
			return err
		}

		return s.journal.Record(ctx, tx, actor, ActivityCreateUser,
			"user %s created with role %s", user.Username, user.Role)
	})

	if err != nil {
		return nil, "", err
	}

	if input.Password != "" {
		password = ""
	}

	return user, password, nil
}

func (s *UserService) prepare(input UserInput) (*models.UserEntity, string, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return nil, "", apperrors.Validation("username", "must be a single word")
	}

	user := models.UserEntity{
		Username: username,
		Active:   true,
	}

	if err := applyUser(&user, UserUpdate{
		DisplayName: input.DisplayName,
		Role:        input.Role,
		Email:       input.Email,
		Phone:       input.Phone,
	}); err != nil {
		return nil, "", err
	}

	password, err := s.password(input.Password)
	if err != nil {
		return nil, "", err
	}

	if err := crypto.Hash(&user, []byte(password)); err != nil {
		return nil, "", err
	}

	return &user, password, nil
}

// Update changes profile, role and active flag of a user. The last active administrator can
// neither be demoted nor deactivated.
func (s *UserService) Update(
	ctx context.Context,
	actor models.Actor,
	id int64,
	update UserUpdate,
) (*models.UserEntity, error) {
	if err := access.Check(actor, access.ManageUsers); err != nil {
		return nil, err
	}

	var user *models.UserEntity

	err := database.WithTx(ctx, s.conn, func(tx database.Tx) error {
		var err error

		user, err = s.userDao.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}

		active := user.Active
		if update.Active != nil {
			active = *update.Active
		}

		if err := s.guardLastAdmin(ctx, tx, user, update.Role, active); err != nil {
			return err
		}

		if err := applyUser(user, update); err != nil {
			return err
		}

		if err := s.userDao.Update(ctx, tx, user); err != nil {
			return err
		}

		return s.journal.Record(ctx, tx, actor, ActivityUpdateUser,
			"user %s updated (role %s, active %t)", user.Username, user.Role, user.Active)
	})

	if err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes a user. A user still referenced by mail records, actions or the activity log is
// deactivated instead, which is reported by deleted being false.
func (s *UserService) Delete(ctx context.Context, actor models.Actor, id int64) (deleted bool, err error) {
	if err := access.Check(actor, access.ManageUsers); err != nil {
		return false, err
	}

	err = database.WithTx(ctx, s.conn, func(tx database.Tx) error {
		user, err := s.userDao.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := s.guardLastAdmin(ctx, tx, user, "", false); err != nil {
			return err
		}

		references, err := s.userDao.CountReferences(ctx, tx, user)
		if err != nil {
			return err
		}

		if references > 0 {
			user.Active = false

			if err := s.userDao.Update(ctx, tx, user); err != nil {
				return err
			}

			return s.journal.Record(ctx, tx, actor, ActivityDeactivateUser,
				"user %s deactivated, %d references", user.Username, references)
		}

		if err := s.userDao.Delete(ctx, tx, user); err != nil {
			return err
		}

		deleted = true
		return s.journal.Record(ctx, tx, actor, ActivityDeleteUser,
			"user %s deleted", user.Username)
	})

	return deleted && err == nil, err
}

// ResetPassword replaces the password of a user. If no password is given, a temporary one is
// generated and returned.
func (s *UserService) ResetPassword(
	ctx context.Context,
	actor models.Actor,
	id int64,
	password string,
) (string, error) {
	if err := access.Check(actor, access.ManageUsers); err != nil {
		return "", err
	}

	generated, err := s.password(password)
	if err != nil {
		return "", err
	}

	err = database.WithTx(ctx, s.conn, func(tx database.Tx) error {
		user, err := s.userDao.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := crypto.Hash(user, []byte(generated)); err != nil {
			return err
		}

		if err := s.userDao.UpdateHash(ctx, tx, user); err != nil {
			return err
		}

		return s.journal.Record(ctx, tx, actor, ActivityPasswordReset,
			"password of %s reset", user.Username)
	})

	if err != nil || password != "" {
		return "", err
	}

	return generated, nil
}

// ChangePassword lets users replace their own password.
func (s *UserService) ChangePassword(ctx context.Context, actor models.Actor, current, next string) error {
	if actor.IsSystem() {
		return apperrors.Validation("user", "the system has no password")
	}

	if next == "" {
		return apperrors.Validation("password", "must not be empty")
	}

	if _, err := s.password(next); err != nil {
		return err
	}

	return database.WithTx(ctx, s.conn, func(tx database.Tx) error {
		user, err := s.userDao.FindByID(ctx, tx, actor.UserID)
		if err != nil {
			return err
		}

		if err := crypto.Verify(user, []byte(current)); err != nil {
			if errors.Is(err, crypto.ErrPasswordMismatch) {
				return apperrors.Validation("currentPassword", "does not match")
			}

			return err
		}

		if err := crypto.Hash(user, []byte(next)); err != nil {
			return err
		}

		if err := s.userDao.UpdateHash(ctx, tx, user); err != nil {
			return err
		}

		return s.journal.Record(ctx, tx, actor, ActivityPasswordChange,
			"%s changed the password", user.Username)
	})
}

// Get returns a single user. Users may read their own account, everything else requires the
// permission to manage users.
func (s *UserService) Get(ctx context.Context, actor models.Actor, id int64) (*models.UserEntity, error) {
	if actor.IsSystem() || actor.UserID != id {
		if err := access.Check(actor, access.ManageUsers); err != nil {
			return nil, err
		}
	}

	return s.userDao.FindByID(ctx, s.conn, id)
}

// List returns all users.
func (s *UserService) List(ctx context.Context, actor models.Actor) ([]models.UserEntity, error) {
	if err := access.Check(actor, access.ManageUsers); err != nil {
		return nil, err
	}

	return s.userDao.FindAll(ctx, s.conn)
}

// Bootstrap creates the initial administrator, if there are no users at all. The password is
// taken from `bootstrap.admin.password` or generated. Only a generated password is returned.
func (s *UserService) Bootstrap(ctx context.Context) (*models.UserEntity, string, error) {
	count, err := s.userDao.Count(ctx, s.conn)
	if err != nil || count > 0 {
		return nil, "", err
	}

	user, password, err := s.Create(ctx, models.SystemActor, UserInput{
		Username:    viper.GetString("bootstrap.admin.username"),
		DisplayName: "Administrator",
		Role:        models.RoleAdmin,
		Password:    viper.GetString("bootstrap.admin.password"),
	})

	if err != nil {
		return nil, "", err
	}

	log.WarnContext(ctx).
		Str("username", user.Username).
		Bool("generatedPassword", password != "").
		Msg("initial administrator created")

	return user, password, nil
}

// guardLastAdmin rejects changes that would leave the register without an active administrator.
func (s *UserService) guardLastAdmin(
	ctx context.Context,
	q database.Queryer,
	user *models.UserEntity,
	role models.Role,
	active bool,
) error {
	if user.Role != models.RoleAdmin || !user.Active {
		return nil
	}

	if role == models.RoleAdmin && active {
		return nil
	}

	admins, err := s.userDao.CountActiveAdmins(ctx, q)
	if err != nil {
		return err
	}

	if admins <= 1 {
		return apperrors.Validation("role", "%s is the last active administrator", user.Username)
	}

	return nil
}

// password validates a chosen password or generates a temporary one.
func (s *UserService) password(password string) (string, error) {
	if password == "" {
		return crypto.GeneratePassword(generatedPasswordLength)
	}

	if len([]rune(password)) < s.minPasswordLength {
		return "", apperrors.Validation("password", "must have at least %d characters", s.minPasswordLength)
	}

	return password, nil
}

func applyUser(user *models.UserEntity, update UserUpdate) error {
	if !update.Role.Valid() {
		return apperrors.Validation("role", "unknown role %q", update.Role)
	}

	email, err := normalizeEmail(update.Email)
	if err != nil {
		return err
	}

	phone, err := normalizePhone(update.Phone)
	if err != nil {
		return err
	}

	user.DisplayName = strings.TrimSpace(update.DisplayName)
	user.Role = update.Role
	user.Email = email
	user.Phone = phone

	if update.Active != nil {
		user.Active = *update.Active
	}

	return nil
}
