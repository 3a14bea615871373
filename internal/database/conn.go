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

package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"net/url"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/courrier/internal/log"
	"github.com/lukasdietrich/courrier/internal/models"
)

const (
	driverName     = "sqlite3_courrier"
	dialectName    = "sqlite3"
	changelogTable = "database_changelog"
	memoryFilename = ":memory:"
)

//go:embed changesets/*.sql
var changesetFolder embed.FS

func init() {
	viper.SetDefault("storage.database.filename", "data/courrier.sqlite")
	viper.SetDefault("storage.database.journalmode", "wal")
	viper.SetDefault("storage.database.busyTimeout", 5000)
	viper.SetDefault("storage.database.maxOpenConns", 4)

	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(c *sqlite3.SQLiteConn) error {
			return c.RegisterFunc("fold", models.Fold, true)
		},
	})

	sqlx.BindDriver(driverName, sqlx.QUESTION)
}

// Queryer is an interface for both transactions and the database connection itself.
type Queryer interface {
	sqlx.ExtContext
}

// Tx is a database transaction, which can be rolled back or committed.
type Tx interface {
	Queryer
	Commit() error
	Rollback() error
	RollbackWith(func()) error
}

type tx struct {
	*sqlx.Tx
}

func (t tx) RollbackWith(callback func()) error {
	err := t.Rollback()

	if !errors.Is(err, sql.ErrTxDone) {
		callback()
	}

	return err
}

// Conn is a connection to the sql database.
type Conn interface {
	Queryer
	Begin(context.Context) (Tx, error)
	Close() error
}

type conn struct {
	*sqlx.DB
}

func (c conn) Begin(ctx context.Context) (Tx, error) {
	rawTx, err := c.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}

	return tx{rawTx}, nil
}

// WithTx runs fn inside a transaction. The transaction is committed if fn returns without error
// and rolled back otherwise.
func WithTx(ctx context.Context, c Conn, fn func(Tx) error) error {
	tx, err := c.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		tx.RollbackWith(func() {
			log.DebugContext(ctx).Err(err).Msg("transaction rolled back")
		})

		return err
	}

	return tx.Commit()
}

// OpenConnection opens an sqlite3 database connection using the configuration from viper and
// applies all pending changesets.
func OpenConnection() (Conn, error) {
	sqliteVersion, _, _ := sqlite3.Version()

	dsn := createDataSourceName()
	log.Info().
		Str("driver", driverName).
		Str("version", sqliteVersion).
		Str("dataSourceName", dsn).
		Msg("connecting to database")

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	// Every connection to ":memory:" opens a distinct database.
	if viper.GetString("storage.database.filename") == memoryFilename {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(viper.GetInt("storage.database.maxOpenConns"))
	}

	if err := applyChangesets(db.DB); err != nil {
		db.Close()
		return nil, err
	}

	return conn{db}, nil
}

func applyChangesets(db *sql.DB) error {
	changesets := migrate.EmbedFileSystemMigrationSource{
		FileSystem: changesetFolder,
		Root:       "changesets",
	}

	migrations := migrate.MigrationSet{
		TableName: changelogTable,
	}

	n, err := migrations.Exec(db, dialectName, changesets, migrate.Up)
	if err != nil {
		return err
	}

	if n > 0 {
		log.Info().
			Int("changesets", n).
			Msg("database changesets applied")
	}

	return nil
}

func createDataSourceName() string {
	opts := make(url.Values)
	opts.Add("_foreign_keys", "true")
	opts.Add("_journal_mode", viper.GetString("storage.database.journalmode"))
	opts.Add("_busy_timeout", strconv.Itoa(viper.GetInt("storage.database.busyTimeout")))
	opts.Add("_txlock", "immediate")

	dsn := url.URL{
		Scheme:   "file",
		Opaque:   viper.GetString("storage.database.filename"),
		RawQuery: opts.Encode(),
	}

	return dsn.String()
}
