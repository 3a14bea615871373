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
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lukasdietrich/courrier/internal/api"
	"github.com/lukasdietrich/courrier/internal/database"
	"github.com/lukasdietrich/courrier/internal/log"
	"github.com/lukasdietrich/courrier/internal/register"
)

type startCommand struct {
	Conn   database.Conn
	Users  *register.UserService
	Server *api.Server
}

func (s *startCommand) run() error {
	defer s.Conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.bootstrap(log.WithOrigin(ctx, "bootstrap")); err != nil {
		return err
	}

	return s.Server.ListenAndServe(ctx)
}

// bootstrap creates the first administrator of an empty register.
func (s *startCommand) bootstrap(ctx context.Context) error {
	user, password, err := s.Users.Bootstrap(ctx)
	if err != nil || user == nil || password == "" {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n\tTemporary password of %q: %s\n\n", user.Username, password)
	return nil
}
