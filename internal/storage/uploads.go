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

package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/spf13/viper"

	apperrors "github.com/lukasdietrich/courrier/internal/errors"
	"github.com/lukasdietrich/courrier/internal/log"
)

func init() {
	viper.SetDefault("storage.attachments.maxSize", "10mb")
	viper.SetDefault("storage.attachments.extensions", []string{"pdf", "doc", "docx", "jpg", "jpeg", "png"})
}

// UploadOptions is the policy for files attached to mail records.
type UploadOptions struct {
	MaxSize    int64
	Extensions []string
}

// UploadOptionsFromViper reads UploadOptions from viper.
//
// `storage.attachments.maxSize` is the maximum size of a single file, e.g. "10mb".
// `storage.attachments.extensions` is the allow-list of lowercase file extensions.
func UploadOptionsFromViper() UploadOptions {
	return UploadOptions{
		MaxSize:    int64(viper.GetSizeInBytes("storage.attachments.maxSize")),
		Extensions: viper.GetStringSlice("storage.attachments.extensions"),
	}
}

// Uploads stores files attached to mail records as blobs. Only the resulting blob ids are kept
// in the database.
type Uploads struct {
	blobs Blobs
	opts  UploadOptions
}

// NewUploads creates a new Uploads service.
func NewUploads(blobs Blobs, opts UploadOptions) *Uploads {
	return &Uploads{
		blobs: blobs,
		opts:  opts,
	}
}

// Store writes the content of r to a new blob and returns its id. Files with an extension not in
// the allow-list or exceeding the size limit are rejected with a validation error.
func (u *Uploads) Store(ctx context.Context, filename string, r io.Reader) (string, error) {
	extension := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if !u.allowed(extension) {
		return "", apperrors.Validation("attachment", "extension %q of %q is not allowed", extension, filename)
	}

	id, size, err := u.blobs.Write(ctx, io.LimitReader(r, u.opts.MaxSize+1), extension)
	if err != nil {
		return "", err
	}

	if size > u.opts.MaxSize {
		if err := u.blobs.Delete(ctx, id); err != nil {
			log.WarnContext(ctx).
				Str("blob", id).
				Err(err).
				Msg("could not remove oversized attachment")
		}

		return "", apperrors.Validation("attachment", "%q exceeds the limit of %d bytes", filename, u.opts.MaxSize)
	}

	log.InfoContext(ctx).
		Str("blob", id).
		Str("filename", filename).
		Int64("size", size).
		Msg("attachment stored")

	return id, nil
}

// Open returns a reader to a stored attachment.
func (u *Uploads) Open(id string) (io.ReadCloser, error) {
	return u.blobs.Reader(id)
}

// Remove deletes a stored attachment.
func (u *Uploads) Remove(ctx context.Context, id string) error {
	return u.blobs.Delete(ctx, id)
}

func (u *Uploads) allowed(extension string) bool {
	for _, allowed := range u.opts.Extensions {
		if extension == allowed {
			return true
		}
	}

	return false
}
