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

// Package certs provides the tls configuration of the api listener.
package certs

import (
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/lukasdietrich/courrier/internal/log"
)

const (
	sourceNone  = "none"
	sourceFiles = "files"
)

func init() {
	viper.SetDefault("tls.source", sourceNone)
}

type certSource interface {
	lastUpdate() (time.Time, error)
	load() (*tls.Certificate, error)
}

// Options select the certificate source.
type Options struct {
	Source   string
	CertFile string
	KeyFile  string
}

// OptionsFromViper reads the tls options from viper.
func OptionsFromViper() Options {
	return Options{
		Source:   viper.GetString("tls.source"),
		CertFile: viper.GetString("tls.files.cert"),
		KeyFile:  viper.GetString("tls.files.key"),
	}
}

// NewTLSConfig creates a tls config, which reloads the certificate whenever the source reports
// a newer modification. A nil config is returned for the source "none", in which case the api
// is served in plain text.
func NewTLSConfig(opts Options) (*tls.Config, error) {
	var source certSource

	switch opts.Source {
	case sourceNone:
		return nil, nil
	case sourceFiles:
		source = filesCertSource{certFile: opts.CertFile, keyFile: opts.KeyFile}
	default:
		return nil, fmt.Errorf("unknown certificate source %q", opts.Source)
	}

	return newReloadingConfig(source), nil
}

func newReloadingConfig(source certSource) *tls.Config {
	var (
		current  *tls.Certificate
		modified time.Time
		lock     sync.Mutex
	)

	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		GetCertificate: func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
			lock.Lock()
			defer lock.Unlock()

			updated, err := source.lastUpdate()
			if err != nil {
				return nil, fmt.Errorf("could not check for certificate updates: %w", err)
			}

			if current == nil || updated.After(modified) {
				cert, err := source.load()
				if err != nil {
					return nil, fmt.Errorf("could not load certificate: %w", err)
				}

				current = cert
				modified = updated

				log.Debug().
					Time("modified", updated).
					Msg("certificate loaded")
			}

			return current, nil
		},
	}
}
