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

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey indicates a unique constraint violation.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNotFound indicates an operation on a nonexistent id.
	ErrNotFound = errors.New("not found")
	// ErrReferentialConflict indicates a delete blocked by live references.
	ErrReferentialConflict = errors.New("referential conflict")
	// ErrPermissionDenied indicates a role lacking the required capability.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrTemplateMissing indicates an absent document template artifact.
	ErrTemplateMissing = errors.New("template missing")
	// ErrRenderError indicates a failed document substitution.
	ErrRenderError = errors.New("render error")
	// ErrValidation indicates a missing or malformed input.
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized indicates missing or wrong credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

// Error codes for API responses.
const (
	CodeDuplicateKey        = "DUPLICATE_KEY"
	CodeNotFound            = "NOT_FOUND"
	CodeReferentialConflict = "REFERENTIAL_CONFLICT"
	CodePermissionDenied    = "PERMISSION_DENIED"
	CodeTemplateMissing     = "TEMPLATE_MISSING"
	CodeRenderError         = "RENDER_ERROR"
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Validation creates a new ValidationError for a field.
func Validation(field, format string, v ...interface{}) error {
	return &ValidationError{
		Field:  field,
		Reason: fmt.Sprintf(format, v...),
	}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", ErrValidation, e.Reason)
	}

	return fmt.Sprintf("%v: %s: %s", ErrValidation, e.Field, e.Reason)
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ConflictError is returned when an entity cannot be deleted, because other rows still reference
// it. References is the exact number of referencing rows.
type ConflictError struct {
	Entity     string `json:"entity"`
	ID         int64  `json:"id"`
	References int64  `json:"references"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: %s %d is referenced by %d records",
		ErrReferentialConflict, e.Entity, e.ID, e.References)
}

// Unwrap returns ErrReferentialConflict.
func (e *ConflictError) Unwrap() error {
	return ErrReferentialConflict
}

// PermissionError is returned by the access gate for a denied action.
type PermissionError struct {
	Role   string `json:"role"`
	Action string `json:"action"`
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%v: role %q may not %s", ErrPermissionDenied, e.Role, e.Action)
}

// Unwrap returns ErrPermissionDenied.
func (e *PermissionError) Unwrap() error {
	return ErrPermissionDenied
}

// Code returns the api error code for an error.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateKey):
		return CodeDuplicateKey
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrReferentialConflict):
		return CodeReferentialConflict
	case errors.Is(err, ErrPermissionDenied):
		return CodePermissionDenied
	case errors.Is(err, ErrTemplateMissing):
		return CodeTemplateMissing
	case errors.Is(err, ErrRenderError):
		return CodeRenderError
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	default:
		return CodeInternalError
	}
}

// IsRecoverable reports whether err belongs to the taxonomy of user-actionable failures. Anything
// else (most notably storage connectivity) is fatal for the current request.
func IsRecoverable(err error) bool {
	return Code(err) != CodeInternalError
}
