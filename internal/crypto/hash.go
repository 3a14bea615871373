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
	"github.com/lukasdietrich/argon2go"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/courrier/internal/models"
)

// ErrPasswordMismatch is returned when a password does not match the hash.
var ErrPasswordMismatch = argon2go.ErrMismatch

func init() {
	viper.SetDefault("security.argon2.hashlength", 32)
	viper.SetDefault("security.argon2.saltlength", 16)
	viper.SetDefault("security.argon2.time", 2)
	viper.SetDefault("security.argon2.memory", 64*1024)
	viper.SetDefault("security.argon2.threads", 4)
}

// HashOptionsFromViper reads the argon2id parameters used for new password hashes.
func HashOptionsFromViper() *argon2go.Options {
	return &argon2go.Options{
		Time:       viper.GetUint32("security.argon2.time"),
		Memory:     viper.GetUint32("security.argon2.memory"),
		Threads:    uint8(viper.GetUint32("security.argon2.threads")),
		HashLength: viper.GetUint32("security.argon2.hashlength"),
		SaltLength: viper.GetUint32("security.argon2.saltlength"),
	}
}

// Hash replaces the stored password hash of a user account.
func Hash(user *models.UserEntity, password []byte) error {
	hash, err := argon2go.Hash(password, HashOptionsFromViper())
	if err != nil {
		return err
	}

	user.Hash = hash
	return nil
}

// Verify checks a password against the stored hash. Accounts without a hash never match.
func Verify(user *models.UserEntity, password []byte) error {
	if user.Hash == "" {
		return ErrPasswordMismatch
	}

	return argon2go.Verify(password, user.Hash)
}
