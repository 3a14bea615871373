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
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/courrier/internal/log"
)

func init() {
	viper.SetDefault("api.address", ":8080")
	viper.SetDefault("api.bodyLimit", "32M")
	viper.SetDefault("api.shutdownTimeout", "10s")
}

// ServerOptions configure the http listener.
type ServerOptions struct {
	Address         string
	BodyLimit       string
	ShutdownTimeout time.Duration
}

// ServerOptionsFromViper reads the server options from viper.
func ServerOptionsFromViper() ServerOptions {
	return ServerOptions{
		Address:         viper.GetString("api.address"),
		BodyLimit:       viper.GetString("api.bodyLimit"),
		ShutdownTimeout: viper.GetDuration("api.shutdownTimeout"),
	}
}

// Server serves the router, using tls if a config is present.
type Server struct {
	router    *echo.Echo
	tlsConfig *tls.Config
	opts      ServerOptions
}

// NewServer creates a new Server.
func NewServer(router *echo.Echo, tlsConfig *tls.Config, opts ServerOptions) *Server {
	return &Server{
		router:    router,
		tlsConfig: tlsConfig,
		opts:      opts,
	}
}

// ListenAndServe blocks until ctx is cancelled or the listener fails. Requests in flight are
// given the shutdown timeout to finish.
func (s *Server) ListenAndServe(ctx context.Context) error {
	server := http.Server{
		Addr:              s.opts.Address,
		Handler:           s.router,
		TLSConfig:         s.tlsConfig,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)

	go func() {
		log.InfoContext(ctx).
			Str("address", s.opts.Address).
			Bool("tls", s.tlsConfig != nil).
			Msg("starting api server")

		if s.tlsConfig != nil {
			errs <- server.ListenAndServeTLS("", "")
		} else {
			errs <- server.ListenAndServe()
		}
	}()

	select {
	case err := <-errs:
		return err

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()

		log.InfoContext(ctx).Msg("shutting down api server")

		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}

		if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	}
}
