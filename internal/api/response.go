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
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/lukasdietrich/courrier/internal/errors"
	"github.com/lukasdietrich/courrier/internal/log"
)

// Response is the envelope of every json response.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	// Details carries structured information about recoverable errors, like the offending field
	// of a validation error or the number of references of a conflict.
	Details interface{} `json:"details,omitempty"`
}

// Success writes data with status 200.
func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// Created writes data with status 201.
func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// NoContent writes an empty response with status 204.
func NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// Error writes err as an error envelope. Errors outside the taxonomy are logged and hidden from
// the client.
func Error(c echo.Context, err error) error {
	var (
		code    = apperrors.Code(err)
		status  = httpStatus(code)
		message = err.Error()
		details interface{}
	)

	var (
		validationErr *apperrors.ValidationError
		conflictErr   *apperrors.ConflictError
		permissionErr *apperrors.PermissionError
		httpErr       *echo.HTTPError
	)

	switch {
	case errors.As(err, &validationErr):
		details = validationErr
	case errors.As(err, &conflictErr):
		details = conflictErr
	case errors.As(err, &permissionErr):
		details = permissionErr
	}

	if !apperrors.IsRecoverable(err) {
		if errors.As(err, &httpErr) && httpErr.Code < http.StatusInternalServerError {
			status = httpErr.Code
			code = httpCode(status)
			message = http.StatusText(status)
		} else {
			log.ErrorContext(c.Request().Context()).
				Err(err).
				Str("path", c.Path()).
				Msg("request failed")

			message = http.StatusText(status)
		}
	}

	return c.JSON(status, Response{
		Success: false,
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// httpStatus maps error codes to http status codes.
func httpStatus(code string) int {
	switch code {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeDuplicateKey, apperrors.CodeReferentialConflict:
		return http.StatusConflict
	case apperrors.CodeValidation:
		return http.StatusBadRequest
	case apperrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.CodePermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// httpCode maps client error statuses raised by echo itself (unknown routes, malformed bodies)
// back to error codes.
func httpCode(status int) string {
	switch status {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return apperrors.CodeNotFound
	case http.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case http.StatusForbidden:
		return apperrors.CodePermissionDenied
	default:
		return apperrors.CodeValidation
	}
}

// errorHandler replaces the default echo error handler, so that errors returned by handlers
// and middleware share the envelope.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if err := Error(c, err); err != nil {
		log.ErrorContext(c.Request().Context()).Err(err).Msg("could not write error response")
	}
}
