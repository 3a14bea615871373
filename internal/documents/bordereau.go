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

// Package documents renders the files handed out by the register: the bordereau of outgoing mail
// and spreadsheet exports.
package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/lukasjarosch/go-docx"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	apperrors "github.com/lukasdietrich/courrier/internal/errors"
	"github.com/lukasdietrich/courrier/internal/log"
)

// Placeholder names of the bordereau template. They are written as "{reference_no}" in the
// document.
const (
	FieldReferenceNo   = "reference_no"
	FieldSentDate      = "sent_date"
	FieldRecipientName = "recipient_name"
	FieldOrganization  = "organization"
	FieldPhone         = "phone"
	FieldEmail         = "email"
	FieldSubject       = "subject"
	FieldNotes         = "notes"
)

func init() {
	viper.SetDefault("documents.bordereau.template", "templates/bordereau.docx")
	viper.SetDefault("documents.timeout", "30s")
}

// Fields is the flat mapping substituted into a template.
type Fields map[string]string

// BordereauOptions is the configuration of the bordereau renderer.
type BordereauOptions struct {
	Template string
	Timeout  time.Duration
}

// BordereauOptionsFromViper reads BordereauOptions from viper.
//
// `documents.bordereau.template` is the path of the docx template.
// `documents.timeout` is the upper bound of a single rendering.
func BordereauOptionsFromViper() BordereauOptions {
	return BordereauOptions{
		Template: viper.GetString("documents.bordereau.template"),
		Timeout:  viper.GetDuration("documents.timeout"),
	}
}

// Bordereau renders the dispatch manifest of outgoing mail from a docx template.
type Bordereau struct {
	fs   afero.Fs
	opts BordereauOptions
}

// NewBordereau creates a new Bordereau renderer reading its template from fs.
func NewBordereau(fs afero.Fs, opts BordereauOptions) *Bordereau {
	return &Bordereau{
		fs:   fs,
		opts: opts,
	}
}

// Render substitutes fields into the template and returns the resulting docx file. An absent
// template results in ErrTemplateMissing and a broken template in ErrRenderError.
func (b *Bordereau) Render(ctx context.Context, fields Fields) ([]byte, error) {
	template, err := afero.ReadFile(b.fs, b.opts.Template)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrTemplateMissing, b.opts.Template)
		}

		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
	defer cancel()

	log.DebugContext(ctx).
		Str("template", b.opts.Template).
		Str("reference", fields[FieldReferenceNo]).
		Msg("rendering bordereau")

	return withTimeout(ctx, func() ([]byte, error) {
		return renderDocx(template, fields)
	})
}

func renderDocx(template []byte, fields Fields) ([]byte, error) {
	doc, err := docx.OpenBytes(template)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrRenderError, err)
	}

	placeholders := make(docx.PlaceholderMap, len(fields))
	for key, value := range fields {
		placeholders[key] = value
	}

	if err := doc.ReplaceAll(placeholders); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrRenderError, err)
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrRenderError, err)
	}

	return buf.Bytes(), nil
}
