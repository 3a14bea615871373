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

// Package backup writes consistent snapshots of the database and rotates old ones.
package backup

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/courrier/internal/access"
	"github.com/lukasdietrich/courrier/internal/database"
	"github.com/lukasdietrich/courrier/internal/log"
	"github.com/lukasdietrich/courrier/internal/models"
	"github.com/lukasdietrich/courrier/internal/register"
)

const (
	snapshotPrefix = "courrier-"
	snapshotSuffix = ".sqlite"
	snapshotLayout = "20060102-150405"
)

func init() {
	viper.SetDefault("backup.foldername", "data/backups")
	viper.SetDefault("backup.keep", 10)
}

// Options configure where snapshots are written and how many are kept.
type Options struct {
	Foldername string
	Keep       int
}

// OptionsFromViper reads the backup options from viper.
func OptionsFromViper() Options {
	return Options{
		Foldername: viper.GetString("backup.foldername"),
		Keep:       viper.GetInt("backup.keep"),
	}
}

// Snapshot describes a single backup file.
type Snapshot struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	Created time.Time `json:"created"`
}

// Backups creates snapshots using "vacuum into". The filesystem has to be backed by the same
// directory tree sqlite writes to.
type Backups struct {
	conn    database.Conn
	fs      afero.Fs
	journal *register.Journal
	clock   register.Clock
	opts    Options
}

// NewBackups creates a new Backups instance.
func NewBackups(
	conn database.Conn,
	fs afero.Fs,
	journal *register.Journal,
	clock register.Clock,
	opts Options,
) *Backups {
	return &Backups{
		conn:    conn,
		fs:      fs,
		journal: journal,
		clock:   clock,
		opts:    opts,
	}
}

// Create writes a new snapshot and removes the oldest ones beyond the configured number to
// keep.
func (b *Backups) Create(ctx context.Context, actor models.Actor) (*Snapshot, error) {
	if err := access.Check(actor, access.ConfigureSystem); err != nil {
		return nil, err
	}

	if err := b.fs.MkdirAll(b.opts.Foldername, 0700); err != nil {
		return nil, err
	}

	name := snapshotPrefix + b.clock().UTC().Format(snapshotLayout) + snapshotSuffix
	filename := path.Join(b.opts.Foldername, name)

	exists, err := afero.Exists(b.fs, filename)
	if err != nil {
		return nil, err
	}

	if exists {
		return nil, fmt.Errorf("backup %s already exists", name)
	}

	if _, err := b.conn.ExecContext(ctx, `vacuum into ? ;`, filename); err != nil {
		return nil, fmt.Errorf("could not write backup: %w", err)
	}

	info, err := b.fs.Stat(filename)
	if err != nil {
		return nil, err
	}

	log.InfoContext(ctx).
		Str("filename", filename).
		Int64("size", info.Size()).
		Msg("backup written")

	if err := b.journal.Record(ctx, b.conn, actor, register.ActivityBackup, "backup %s written", name); err != nil {
		return nil, err
	}

	if err := b.rotate(ctx); err != nil {
		return nil, err
	}

	return &Snapshot{
		Name:    name,
		Size:    info.Size(),
		Created: info.ModTime(),
	}, nil
}

// List returns all snapshots, newest first.
func (b *Backups) List(ctx context.Context, actor models.Actor) ([]Snapshot, error) {
	if err := access.Check(actor, access.ConfigureSystem); err != nil {
		return nil, err
	}

	return b.snapshots()
}

func (b *Backups) snapshots() ([]Snapshot, error) {
	infos, err := afero.ReadDir(b.fs, b.opts.Foldername)
	if err != nil {
		if exists, _ := afero.DirExists(b.fs, b.opts.Foldername); !exists {
			return nil, nil
		}

		return nil, err
	}

	var snapshots []Snapshot

	for _, info := range infos {
		name := info.Name()

		if info.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotSuffix) {
			continue
		}

		snapshots = append(snapshots, Snapshot{
			Name:    name,
			Size:    info.Size(),
			Created: info.ModTime(),
		})
	}

	// The timestamp in the name sorts lexicographically.
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Name > snapshots[j].Name
	})

	return snapshots, nil
}

func (b *Backups) rotate(ctx context.Context) error {
	if b.opts.Keep <= 0 {
		return nil
	}

	snapshots, err := b.snapshots()
	if err != nil {
		return err
	}

	for len(snapshots) > b.opts.Keep {
		oldest := snapshots[len(snapshots)-1]
		snapshots = snapshots[:len(snapshots)-1]

		if err := b.fs.Remove(path.Join(b.opts.Foldername, oldest.Name)); err != nil {
			return err
		}

		log.InfoContext(ctx).
			Str("name", oldest.Name).
			Msg("old backup removed")
	}

	return nil
}
