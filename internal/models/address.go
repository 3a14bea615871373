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
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrInvalidAddressFormat is used for addresses of zero length, without an "@" sign or with a
	// domain lacking a top level part.
	ErrInvalidAddressFormat = errors.New("address: invalid format")

	// ErrPathTooLong is used for addresses, that are too long or contain a path that is too long
	// according to RFC#5321.
	ErrPathTooLong = errors.New("address: path too long")

	// ErrInvalidPhone is used for phone numbers with less than eight characters or characters
	// other than digits, spaces and "+-()".
	ErrInvalidPhone = errors.New("phone: invalid format")

	// ZeroAddress is an invalid, zero value Address.
	ZeroAddress Address
)

// Address is an e-mail address of the form "local-part@domain" as kept for contacts and users.
type Address struct {
	raw string
	at  int
}

var (
	localPartPattern = regexp.MustCompile(`^[\p{L}\p{N}._%+-]+$`)
	phonePattern     = regexp.MustCompile(`^[\d\s\-+()]{8,}$`)
)

// ParseEmail parses an address for storage. Surrounding whitespace is trimmed, the local-part
// is checked for allowed characters and the domain is transformed using DomainToUnicode.
func ParseEmail(raw string) (Address, error) {
	addr, err := ParseUnicode(strings.TrimSpace(raw))
	if err != nil {
		return addr, err
	}

	if !localPartPattern.MatchString(addr.LocalPart()) {
		return ZeroAddress, ErrInvalidAddressFormat
	}

	dot := strings.LastIndex(addr.Domain(), ".")
	if dot <= 0 || len(addr.Domain())-dot < 3 {
		return ZeroAddress, ErrInvalidAddressFormat
	}

	return addr, nil
}

// ParseUnicode calls Parse and transforms the domain part of the address using DomainToUnicode.
func ParseUnicode(raw string) (Address, error) {
	addr, err := Parse(raw)
	if err != nil {
		return addr, err
	}

	domain, err := DomainToUnicode(addr.Domain())
	if err != nil {
		return ZeroAddress, ErrInvalidAddressFormat
	}

	if domain != addr.Domain() {
		addr.raw = addr.LocalPart() + "@" + domain
	}

	return addr, nil
}

// Parse splits an address at the "@" sign and checks for size limits.
func Parse(raw string) (Address, error) {
	if len(raw) == 0 {
		return ZeroAddress, ErrInvalidAddressFormat
	}

	at := strings.LastIndex(raw, "@")
	if at <= 0 || at == len(raw)-1 {
		return ZeroAddress, ErrInvalidAddressFormat
	}

	// see RFC#5321 4.5.3.1
	if at > 64 || len(raw)-at > 256 || len(raw) > 256 {
		return ZeroAddress, ErrPathTooLong
	}

	return Address{raw, at}, nil
}

// String returns the address.
func (a Address) String() string {
	return a.raw
}

// LocalPart returns the part left of the "@" sign (exclusive).
func (a Address) LocalPart() string {
	return a.raw[:a.at]
}

// Domain return the part right of the "@" sign (exclusive).
func (a Address) Domain() string {
	return a.raw[a.at+1:]
}

// Scan implements the sql.Scanner interface.
func (a *Address) Scan(src interface{}) error {
	s, err := driver.String.ConvertValue(src)
	if err != nil {
		return err
	}

	v, err := Parse(s.(string))
	if err != nil {
		return err
	}

	*a = v
	return nil
}

// Value implements the sql/driver.Valuer interface.
func (a Address) Value() (driver.Value, error) {
	return a.raw, nil
}

// DomainToUnicode normalizes a punycode domain to unicode and applies the NFC normal form.
func DomainToUnicode(domain string) (string, error) {
	mapped, err := idna.Lookup.ToUnicode(domain)
	if err != nil {
		return domain, err
	}

	return norm.NFC.String(mapped), nil
}

// DomainToASCII transforms a unicode domain to punycode.
func DomainToASCII(domain string) (string, error) {
	mapped, err := DomainToUnicode(domain)
	if err != nil {
		return domain, err
	}

	return idna.Lookup.ToASCII(mapped)
}

// NormalizePhone trims a phone number and checks its format.
func NormalizePhone(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	if !phonePattern.MatchString(phone) {
		return "", ErrInvalidPhone
	}

	return phone, nil
}

// Fold makes free text comparable for searching. The text is trimmed, case-folded and normalized
// using NFKC so that equal looking runes are considered equal. A Caser is stateful, so every call
// gets its own.
func Fold(s string) string {
	return norm.NFKC.String(cases.Fold().String(strings.TrimSpace(s)))
}
