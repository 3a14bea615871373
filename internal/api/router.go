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

// Package api exposes the register over http. Every route except login and the health check
// requires a bearer token issued by login.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Handlers groups the route handlers.
type Handlers struct {
	Auth     *AuthHandler
	Mails    *MailHandler
	Actions  *ActionHandler
	Contacts *ContactHandler
	Users    *UserHandler
	Reports  *ReportHandler
}

// NewRouter creates the echo instance with all routes.
func NewRouter(gate *Gate, h Handlers, opts ServerOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())
	e.Use(requestLogger())
	e.Use(middleware.BodyLimit(opts.BodyLimit))

	e.GET("/health", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	public := e.Group("/api")
	public.POST("/auth/login", h.Auth.Login)

	api := e.Group("/api", gate.Middleware())
	api.POST("/auth/logout", h.Auth.Logout)
	api.GET("/me", h.Auth.Me)
	api.PUT("/me/password", h.Auth.ChangePassword)

	mails := api.Group("/mails/:direction")
	mails.GET("", h.Mails.List)
	mails.POST("", h.Mails.Create)
	mails.GET("/next-reference", h.Mails.NextReference)
	mails.GET("/by-reference/:reference", h.Mails.GetByReference)
	mails.GET("/:id", h.Mails.Get)
	mails.PUT("/:id", h.Mails.Update)
	mails.DELETE("/:id", h.Mails.Delete)
	mails.POST("/:id/status", h.Mails.Transition)
	mails.PUT("/:id/due-date", h.Mails.SetDueDate)
	mails.POST("/:id/attachments", h.Mails.Attach)
	mails.GET("/:id/attachments/:blob", h.Mails.OpenAttachment)
	mails.DELETE("/:id/attachments/:blob", h.Mails.Detach)
	mails.GET("/:id/bordereau", h.Mails.OpenBordereau)
	mails.GET("/:id/actions", h.Actions.ListByMail)
	mails.POST("/:id/actions", h.Actions.Create)

	api.GET("/reminders", h.Mails.Reminders)

	actions := api.Group("/actions")
	actions.GET("/pending", h.Actions.Pending)
	actions.PUT("/:id", h.Actions.Update)
	actions.POST("/:id/complete", h.Actions.Complete)
	actions.POST("/:id/cancel", h.Actions.Cancel)

	contacts := api.Group("/contacts")
	contacts.GET("", h.Contacts.List)
	contacts.POST("", h.Contacts.Create)
	contacts.GET("/:id", h.Contacts.Get)
	contacts.PUT("/:id", h.Contacts.Update)
	contacts.DELETE("/:id", h.Contacts.Delete)

	users := api.Group("/users")
	users.GET("", h.Users.List)
	users.POST("", h.Users.Create)
	users.GET("/:id", h.Users.Get)
	users.PUT("/:id", h.Users.Update)
	users.DELETE("/:id", h.Users.Delete)
	users.POST("/:id/password", h.Users.ResetPassword)

	api.GET("/stats", h.Reports.Stats)
	api.GET("/activity", h.Reports.Activity)
	api.GET("/exports/mails/:direction", h.Reports.ExportMails)
	api.GET("/exports/contacts", h.Reports.ExportContacts)
	api.GET("/exports/activity", h.Reports.ExportActivity)
	api.GET("/backups", h.Reports.ListBackups)
	api.POST("/backups", h.Reports.CreateBackup)

	return e
}
