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

package main

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/lukasdietrich/courrier/internal/backup"
	"github.com/lukasdietrich/courrier/internal/database"
	"github.com/lukasdietrich/courrier/internal/log"
	"github.com/lukasdietrich/courrier/internal/models"
	"github.com/lukasdietrich/courrier/internal/register"
)

type shellCommand struct {
	Conn    database.Conn
	Users   *register.UserService
	Backups *backup.Backups
}

func (s *shellCommand) run() error {
	defer s.Conn.Close()

	shell := ishell.New()
	s.setupShell(shell)
	shell.Run()

	return nil
}

func (s *shellCommand) setupShell(shell *ishell.Shell) {
	shell.AddCmd(composeShellCmd(
		ishell.Cmd{
			Name: "users",
			Help: "manage users",
		},
		[]*ishell.Cmd{
			{
				Name: "list",
				Help: "list all users",
				Func: wrapShellFunc(s.usersList),
			},
			{
				Name: "add",
				Help: "add a new user",
				Func: wrapShellFunc(s.usersAdd),
			},
			{
				Name: "role",
				Help: "change the role of a user",
				Func: wrapShellFunc(s.usersRole),
			},
			{
				Name: "activate",
				Help: "activate a user",
				Func: wrapShellFunc(s.usersActivate(true)),
			},
			{
				Name: "deactivate",
				Help: "deactivate a user",
				Func: wrapShellFunc(s.usersActivate(false)),
			},
			{
				Name: "password",
				Help: "reset the password of a user",
				Func: wrapShellFunc(s.usersPassword),
			},
			{
				Name: "remove",
				Help: "remove a user or deactivate it, if it is still referenced",
				Func: wrapShellFunc(s.usersRemove),
			},
		},
	))

	shell.AddCmd(composeShellCmd(
		ishell.Cmd{
			Name: "backups",
			Help: "manage database backups",
		},
		[]*ishell.Cmd{
			{
				Name: "list",
				Help: "list all backups",
				Func: wrapShellFunc(s.backupsList),
			},
			{
				Name: "create",
				Help: "write a new backup",
				Func: wrapShellFunc(s.backupsCreate),
			},
		},
	))
}

func (s *shellCommand) usersList(ctx shellContext) error {
	if !ctx.checkArgs(0) {
		return errors.New("Usage: users list")
	}

	users, err := s.Users.List(ctx, models.SystemActor)
	if err != nil {
		return err
	}

	ctx.printf("\n(%d) Users:\n", len(users))
	for _, user := range users {
		state := "active"
		if !user.Active {
			state = "inactive"
		}

		ctx.printf("\t%-16s %-8s %-8s %s\n", user.Username, user.Role, state, user.DisplayName)
	}
	ctx.printf("\n")

	return nil
}

func (s *shellCommand) usersAdd(ctx shellContext) error {
	if !ctx.checkArgs(2) {
		return errors.New("Usage: users add [USERNAME] [admin|user|viewer]")
	}

	displayName, err := ctx.ask("Display name", false)
	if err != nil {
		return err
	}

	password, err := ctx.ask("Password (empty to generate)", true)
	if err != nil {
		return err
	}

	user, generated, err := s.Users.Create(ctx, models.SystemActor, register.UserInput{
		Username:    ctx.arg(0),
		DisplayName: displayName,
		Role:        models.Role(ctx.arg(1)),
		Password:    password,
	})
	if err != nil {
		return err
	}

	ctx.printf("\n\tUser %q added.\n", user.Username)
	if generated != "" {
		ctx.printf("\tTemporary password: %s\n", generated)
	}
	ctx.printf("\n")

	return nil
}

func (s *shellCommand) usersRole(ctx shellContext) error {
	if !ctx.checkArgs(2) {
		return errors.New("Usage: users role [USERNAME] [admin|user|viewer]")
	}

	return s.updateUser(ctx, ctx.arg(0), func(update *register.UserUpdate) {
		update.Role = models.Role(ctx.arg(1))
	})
}

func (s *shellCommand) usersActivate(active bool) func(shellContext) error {
	return func(ctx shellContext) error {
		if !ctx.checkArgs(1) {
			return errors.New("Usage: users activate|deactivate [USERNAME]")
		}

		return s.updateUser(ctx, ctx.arg(0), func(update *register.UserUpdate) {
			update.Active = &active
		})
	}
}

func (s *shellCommand) updateUser(ctx shellContext, username string, fn func(*register.UserUpdate)) error {
	user, err := s.findUser(ctx, username)
	if err != nil {
		return err
	}

	update := register.UserUpdate{
		DisplayName: user.DisplayName,
		Role:        user.Role,
		Email:       user.Email,
		Phone:       user.Phone,
	}

	fn(&update)

	if _, err := s.Users.Update(ctx, models.SystemActor, user.ID, update); err != nil {
		return err
	}

	ctx.printf("\n\tUser %q updated.\n\n", username)
	return nil
}

func (s *shellCommand) usersPassword(ctx shellContext) error {
	if !ctx.checkArgs(1) {
		return errors.New("Usage: users password [USERNAME]")
	}

	user, err := s.findUser(ctx, ctx.arg(0))
	if err != nil {
		return err
	}

	password, err := ctx.ask("New password (empty to generate)", true)
	if err != nil {
		return err
	}

	generated, err := s.Users.ResetPassword(ctx, models.SystemActor, user.ID, password)
	if err != nil {
		return err
	}

	ctx.printf("\n\tPassword of %q reset.\n", user.Username)
	if generated != "" {
		ctx.printf("\tTemporary password: %s\n", generated)
	}
	ctx.printf("\n")

	return nil
}

func (s *shellCommand) usersRemove(ctx shellContext) error {
	if !ctx.checkArgs(1) {
		return errors.New("Usage: users remove [USERNAME]")
	}

	user, err := s.findUser(ctx, ctx.arg(0))
	if err != nil {
		return err
	}

	deleted, err := s.Users.Delete(ctx, models.SystemActor, user.ID)
	if err != nil {
		return err
	}

	if deleted {
		ctx.printf("\n\tUser %q removed.\n\n", user.Username)
	} else {
		ctx.printf("\n\tUser %q is still referenced and was deactivated instead.\n\n", user.Username)
	}

	return nil
}

func (s *shellCommand) findUser(ctx shellContext, username string) (*models.UserEntity, error) {
	users, err := s.Users.List(ctx, models.SystemActor)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			return &users[i], nil
		}
	}

	return nil, errors.New("user " + strconv.Quote(username) + " does not exist")
}

func (s *shellCommand) backupsList(ctx shellContext) error {
	if !ctx.checkArgs(0) {
		return errors.New("Usage: backups list")
	}

	snapshots, err := s.Backups.List(ctx, models.SystemActor)
	if err != nil {
		return err
	}

	ctx.printf("\n(%d) Backups:\n", len(snapshots))
	for _, snapshot := range snapshots {
		ctx.printf("\t%s\t%d bytes\n", snapshot.Name, snapshot.Size)
	}
	ctx.printf("\n")

	return nil
}

func (s *shellCommand) backupsCreate(ctx shellContext) error {
	if !ctx.checkArgs(0) {
		return errors.New("Usage: backups create")
	}

	snapshot, err := s.Backups.Create(ctx, models.SystemActor)
	if err != nil {
		return err
	}

	ctx.printf("\n\tBackup %q written (%d bytes).\n\n", snapshot.Name, snapshot.Size)
	return nil
}

type shellContext struct {
	context.Context
	shell *ishell.Context
}

func (c *shellContext) checkArgs(n int) bool {
	return len(c.shell.Args) == n
}

func (c *shellContext) arg(i int) string {
	return c.shell.Args[i]
}

func (c *shellContext) printf(format string, v ...interface{}) {
	c.shell.Printf(format, v...)
}

func (c *shellContext) ask(prompt string, hide bool) (string, error) {
	c.printf("%s: ", prompt)

	if hide {
		return c.shell.ReadPasswordErr()
	}

	return c.shell.ReadLineErr()
}

func composeShellCmd(cmd ishell.Cmd, children []*ishell.Cmd) *ishell.Cmd {
	for _, child := range children {
		cmd.AddCmd(child)
	}

	return &cmd
}

func wrapShellFunc(fn func(shellContext) error) func(*ishell.Context) {
	return func(shell *ishell.Context) {
		ctx := shellContext{
			Context: log.WithOrigin(context.Background(), "shell"),
			shell:   shell,
		}

		if err := fn(ctx); err != nil {
			shell.Err(err)
		}
	}
}
