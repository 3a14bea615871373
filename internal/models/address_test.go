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

package models

import (
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyAddress(t *testing.T) {
	addr, err := Parse("")
	assert.Equal(t, ErrInvalidAddressFormat, err)
	assert.Zero(t, addr)
}

func TestInvalidAddress(t *testing.T) {
	for _, raw := range []string{
		"no-at-sign",
		"@example.com",
		"someone@",
	} {
		addr, err := Parse(raw)
		assert.Equal(t, ErrInvalidAddressFormat, err, raw)
		assert.Zero(t, addr)
	}
}

func TestTooLongAddress(t *testing.T) {
	for _, raw := range []string{
		longString(200) + "@" + longString(200),
		longString(65) + "@a",
		longString(64) + "@" + longString(192),
	} {
		addr, err := Parse(raw)
		assert.Equal(t, ErrPathTooLong, err)
		assert.Zero(t, addr)
	}
}

func TestValidAddress(t *testing.T) {
	for _, raw := range []string{
		longString(64) + "@" + longString(100),
		longString(10) + "@" + longString(245),
	} {
		addr, err := Parse(raw)
		assert.NoError(t, err)
		assert.NotZero(t, addr)
		assert.Equal(t, raw, addr.String())
	}
}

func longString(n int) string {
	r := make([]rune, n)
	for i := 0; i < n; i++ {
		r[i] = 'a'
	}

	return string(r)
}

func TestParseEmail(t *testing.T) {
	for raw, expected := range map[string]string{
		" greffe@tribunal.example ":      "greffe@tribunal.example",
		"bureau.ordre@xn--dmin-moa0i.ma": "bureau.ordre@dömäin.ma",
		"a+b_c%d@mail.example.org":       "a+b_c%d@mail.example.org",
	} {
		addr, err := ParseEmail(raw)
		assert.NoError(t, err, raw)
		assert.Equal(t, expected, addr.String())
	}

	for _, raw := range []string{
		"nobody",
		"spaces in@example.com",
		"someone@localhost",
		"someone@example.c",
		"someone@.com",
	} {
		_, err := ParseEmail(raw)
		assert.Error(t, err, raw)
	}
}

func TestNormalizePhone(t *testing.T) {
	for raw, expected := range map[string]string{
		"+212 522 00 00 00": "+212 522 00 00 00",
		" (05) 22-334455 ":  "(05) 22-334455",
	} {
		actual, err := NormalizePhone(raw)
		assert.NoError(t, err)
		assert.Equal(t, expected, actual)
	}

	for _, raw := range []string{"1234567", "0522abc334", ""} {
		_, err := NormalizePhone(raw)
		assert.Equal(t, ErrInvalidPhone, err, raw)
	}
}

func TestDomainToASCII(t *testing.T) {
	for domain, expected := range map[string]string{
		"example.com":     "example.com",
		"dömäin.example":  "xn--dmin-moa0i.example",
		"DÖMÄIN.example":  "xn--dmin-moa0i.example",
		"déjà.vu.example": "xn--dj-kia8a.vu.example",
		"fußball.example": "fussball.example",
	} {
		actual, err := DomainToASCII(domain)
		assert.NoError(t, err)
		assert.Equal(t, expected, actual)
	}
}

func TestDomainToUnicode(t *testing.T) {
	for domain, expected := range map[string]string{
		"example.com":             "example.com",
		"xn--dmin-moa0i.example":  "dömäin.example",
		"xn--dj-kia8a.vu.example": "déjà.vu.example",
	} {
		actual, err := DomainToUnicode(domain)
		assert.NoError(t, err)
		assert.Equal(t, expected, actual)
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "ministère", Fold(" Ministère "))
	assert.Equal(t, "fussball", Fold("FUßBALL"))
	assert.Equal(t, "\u00e5", Fold("\u0041\u030A"))
	assert.Equal(t, "طلب معلومات", Fold("طلب معلومات"))
}

func TestImplementsScanner(t *testing.T) {
	addr := new(Address)
	var scanner sql.Scanner = addr

	assert.NoError(t, scanner.Scan("someone@example.com"))
	assert.Equal(t, "someone", addr.LocalPart())
	assert.Equal(t, "example.com", addr.Domain())
}

func TestImplementsValuer(t *testing.T) {
	addr, err := Parse("someone@example.com")
	assert.NoError(t, err)

	var valuer driver.Valuer = addr

	value, err := valuer.Value()
	assert.NoError(t, err)
	assert.Equal(t, "someone@example.com", value)
}
