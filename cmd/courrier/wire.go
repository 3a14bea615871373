//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/lukasdietrich/courrier/internal/api"
	"github.com/lukasdietrich/courrier/internal/auth"
	"github.com/lukasdietrich/courrier/internal/backup"
	"github.com/lukasdietrich/courrier/internal/certs"
	"github.com/lukasdietrich/courrier/internal/crypto"
	"github.com/lukasdietrich/courrier/internal/database"
	"github.com/lukasdietrich/courrier/internal/documents"
	"github.com/lukasdietrich/courrier/internal/register"
	"github.com/lukasdietrich/courrier/internal/storage"
)

var wireSet = wire.NewSet(
	wire.Struct(new(startCommand), "*"),
	wire.Struct(new(shellCommand), "*"),

	database.WireSet,
	crypto.WireSet,
	storage.WireSet,
	documents.WireSet,
	register.WireSet,
	backup.WireSet,
	auth.WireSet,
	certs.WireSet,
	api.WireSet,
)

func newStartCommand() (*startCommand, error) {
	panic(wire.Build(wireSet))
}

func newShellCommand() (*shellCommand, error) {
	panic(wire.Build(wireSet))
}
