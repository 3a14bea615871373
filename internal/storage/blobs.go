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
	"errors"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/courrier/internal/crypto"
	"github.com/lukasdietrich/courrier/internal/log"
)

// ErrInvalidBlobID is returned for ids, that could escape the blob folder.
var ErrInvalidBlobID = errors.New("blobs: invalid id")

func init() {
	viper.SetDefault("storage.blobs.foldername", "data/blobs")
}

// BlobsOptions is the configuration of the blob store.
type BlobsOptions struct {
	Foldername string
}

// BlobsOptionsFromViper reads BlobsOptions from viper.
//
// `storage.blobs.foldername` is the foldername for blob files.
func BlobsOptionsFromViper() BlobsOptions {
	return BlobsOptions{
		Foldername: viper.GetString("storage.blobs.foldername"),
	}
}

// Blobs is a permanent storage for blobs of data like attachments and generated documents.
type Blobs interface {
	// Write copies all the data from r to a new blob. The returned id ends with the extension, if
	// one is given.
	Write(ctx context.Context, r io.Reader, extension string) (string, int64, error)
	// Reader returns a reader to a blob. The responsibility to close the reader is on the caller.
	Reader(id string) (io.ReadCloser, error)
	// OffsetReader returns a reader to a blob with an initial offset to be skipped.
	OffsetReader(id string, offset int64) (io.ReadCloser, error)
	// Delete removes a blob.
	Delete(ctx context.Context, id string) error
}

type blobs struct {
	fs    afero.Fs
	idGen crypto.IDGenerator
}

// NewBlobs creates a new blob store within the configured folder of fs.
func NewBlobs(fs afero.Fs, idGen crypto.IDGenerator, opts BlobsOptions) (Blobs, error) {
	if err := fs.MkdirAll(opts.Foldername, 0700); err != nil {
		return nil, err
	}

	return &blobs{
		fs:    afero.NewBasePathFs(fs, opts.Foldername),
		idGen: idGen,
	}, nil
}

func (b *blobs) Write(ctx context.Context, r io.Reader, extension string) (string, int64, error) {
	id, err := b.idGen.GenerateID()
	if err != nil {
		return "", -1, err
	}

	if extension != "" {
		id += "." + extension
	}

	f, err := b.fs.Create(id)
	if err != nil {
		return "", -1, err
	}

	log.DebugContext(ctx).
		Str("blob", id).
		Msg("writing blob")

	size, err := io.Copy(f, r)
	if err != nil {
		f.Close()

		if err := b.Delete(ctx, id); err != nil {
			log.WarnContext(ctx).
				Str("blob", id).
				Err(err).
				Msg("could not remove partial blob")
		}

		return "", -1, err
	}

	return id, size, f.Close()
}

func (b *blobs) Reader(id string) (io.ReadCloser, error) {
	return b.OffsetReader(id, 0)
}

func (b *blobs) OffsetReader(id string, offset int64) (io.ReadCloser, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	f, err := b.fs.Open(id)
	if err != nil {
		return nil, err
	}

	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

func (b *blobs) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	log.DebugContext(ctx).
		Str("blob", id).
		Msg("removing blob")

	return b.fs.Remove(id)
}

func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return ErrInvalidBlobID
	}

	return nil
}
