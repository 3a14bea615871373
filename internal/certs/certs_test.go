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
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKeyPair(t *testing.T, dir, commonName string, modified time.Time) Options {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: commonName},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	keyDer, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	opts := Options{
		Source:   sourceFiles,
		CertFile: filepath.Join(dir, "courrier.crt"),
		KeyFile:  filepath.Join(dir, "courrier.key"),
	}

	require.NoError(t, os.WriteFile(opts.CertFile,
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0600))
	require.NoError(t, os.WriteFile(opts.KeyFile,
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDer}), 0600))

	require.NoError(t, os.Chtimes(opts.CertFile, modified, modified))
	require.NoError(t, os.Chtimes(opts.KeyFile, modified, modified))

	return opts
}

func commonName(t *testing.T, cert *tls.Certificate) string {
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)

	return leaf.Subject.CommonName
}

func TestNone(t *testing.T) {
	config, err := NewTLSConfig(Options{Source: sourceNone})
	assert.NoError(t, err)
	assert.Nil(t, config)
}

func TestUnknownSource(t *testing.T) {
	_, err := NewTLSConfig(Options{Source: "traefik"})
	assert.Error(t, err)
}

func TestFilesReload(t *testing.T) {
	var (
		dir  = t.TempDir()
		then = time.Now().Add(-time.Minute).Truncate(time.Second)
	)

	config, err := NewTLSConfig(writeKeyPair(t, dir, "first", then))
	require.NoError(t, err)
	require.NotNil(t, config)

	cert, err := config.GetCertificate(nil)
	require.NoError(t, err)
	assert.Equal(t, "first", commonName(t, cert))

	writeKeyPair(t, dir, "second", then)

	cert, err = config.GetCertificate(nil)
	require.NoError(t, err)
	assert.Equal(t, "first", commonName(t, cert))

	writeKeyPair(t, dir, "third", then.Add(time.Second))

	cert, err = config.GetCertificate(nil)
	require.NoError(t, err)
	assert.Equal(t, "third", commonName(t, cert))
}

func TestFilesMissing(t *testing.T) {
	config, err := NewTLSConfig(Options{
		Source:   sourceFiles,
		CertFile: filepath.Join(t.TempDir(), "missing.crt"),
		KeyFile:  filepath.Join(t.TempDir(), "missing.key"),
	})
	require.NoError(t, err)

	_, err = config.GetCertificate(nil)
	assert.Error(t, err)
}
