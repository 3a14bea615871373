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
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lukasdietrich/courrier/internal/auth"
	"github.com/lukasdietrich/courrier/internal/database"
	apperrors "github.com/lukasdietrich/courrier/internal/errors"
	"github.com/lukasdietrich/courrier/internal/log"
	"github.com/lukasdietrich/courrier/internal/models"
)

const (
	headerRequestID = "X-Request-Id"
	contextActor    = "actor"
	bearerPrefix    = "Bearer "
)

// requestLogger assigns a request id and logs every request after it has been handled.
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var (
				start = time.Now()
				id    = uuid.NewString()
				req   = c.Request()
				ctx   = log.WithRequest(log.WithOrigin(req.Context(), "api"), id)
			)

			c.SetRequest(req.WithContext(ctx))
			c.Response().Header().Set(headerRequestID, id)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			log.DebugContext(c.Request().Context()).
				Str("method", req.Method).
				Str("path", c.Path()).
				Int("status", c.Response().Status).
				Dur("duration", time.Since(start)).
				Msg("request handled")

			return nil
		}
	}
}

// Gate authenticates requests using bearer tokens.
type Gate struct {
	tokens  *auth.Tokens
	conn    database.Conn
	userDao database.UserDao
}

// NewGate creates a new Gate.
func NewGate(tokens *auth.Tokens, conn database.Conn, userDao database.UserDao) *Gate {
	return &Gate{
		tokens:  tokens,
		conn:    conn,
		userDao: userDao,
	}
}

// Middleware rejects requests without a valid token. The user is loaded on every request, so
// that deactivation and role changes take effect before the token expires.
func (g *Gate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return auth.ErrInvalidToken
			}

			claims, err := g.tokens.Parse(strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				return err
			}

			claimed, err := claims.Actor()
			if err != nil {
				return err
			}

			ctx := c.Request().Context()

			user, err := g.userDao.FindByID(ctx, g.conn, claimed.UserID)
			if err != nil {
				if apperrors.Code(err) == apperrors.CodeNotFound {
					return auth.ErrInvalidToken
				}

				return err
			}

			if !user.Active {
				return auth.ErrInvalidToken
			}

			c.Set(contextActor, user.Actor())
			c.SetRequest(c.Request().WithContext(log.WithUser(ctx, user.Username)))

			return next(c)
		}
	}
}

// actorOf returns the actor set by the gate.
func actorOf(c echo.Context) models.Actor {
	actor, _ := c.Get(contextActor).(models.Actor)
	return actor
}
