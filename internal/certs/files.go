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

package certs

import (
	"crypto/tls"
	"os"
	"time"

	"github.com/spf13/viper"
)

func init() {
	viper.SetDefault("tls.files.cert", "cert/courrier.crt")
	viper.SetDefault("tls.files.key", "cert/courrier.key")
}

// filesCertSource reads a pem encoded key pair from disk.
type filesCertSource struct {
	certFile string
	keyFile  string
}

func (s filesCertSource) lastUpdate() (time.Time, error) {
	var latest time.Time

	for _, filename := range [...]string{s.certFile, s.keyFile} {
		info, err := os.Stat(filename)
		if err != nil {
			return latest, err
		}

		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}

	return latest, nil
}

func (s filesCertSource) load() (*tls.Certificate, error) {
	cert, err := tls.LoadX509KeyPair(s.certFile, s.keyFile)
	if err != nil {
		return nil, err
	}

	return &cert, nil
}
