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

package crypto

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/google/uuid"
)

// IDGenerator is a service to generate unique string IDs.
type IDGenerator interface {
	// GenerateID generates a new id.
	GenerateID() (string, error)
}

// NewIDGenerator creates a new id generator.
func NewIDGenerator() IDGenerator {
	return &randomIDGenerator{random: rand.Reader}
}

type randomIDGenerator struct {
	random io.Reader
}

func (r randomIDGenerator) GenerateID() (string, error) {
	id, err := uuid.NewRandomFromReader(r.random)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

const passwordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GeneratePassword creates a random temporary password of the given length. Characters that are
// easily confused when read aloud or copied from paper are left out.
func GeneratePassword(length int) (string, error) {
	return generatePassword(rand.Reader, length)
}

func generatePassword(random io.Reader, length int) (string, error) {
	var (
		b   = make([]byte, length)
		max = big.NewInt(int64(len(passwordAlphabet)))
	)

	for i := range b {
		n, err := rand.Int(random, max)
		if err != nil {
			return "", err
		}

		b[i] = passwordAlphabet[n.Int64()]
	}

	return string(b), nil
}
