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
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukasdietrich/courrier/internal/models"
)

const clerkHash = "$argon2id$v=19$m=128,t=4,p=3$bNXFICAXMjc$UFUBBgeLPRfLZCekIoSEoQ"

func TestHashOptionsFromViper(t *testing.T) {
	viper.Set("security.argon2.threads", 3)
	viper.Set("security.argon2.memory", 128)

	opts := HashOptionsFromViper()
	assert.EqualValues(t, 3, opts.Threads)
	assert.EqualValues(t, 128, opts.Memory)
}

func TestHashThenVerify(t *testing.T) {
	viper.Set("security.argon2.hashlength", 16)
	viper.Set("security.argon2.saltlength", 8)
	viper.Set("security.argon2.time", 4)
	viper.Set("security.argon2.memory", 128)
	viper.Set("security.argon2.threads", 3)

	user := models.UserEntity{Username: "clerk"}

	require.NoError(t, Hash(&user, []byte("hunter2")))
	assert.Len(t, user.Hash, len(clerkHash))
	assert.Contains(t, user.Hash, "$argon2id$v=19$m=128,t=4,p=3$")

	assert.NoError(t, Verify(&user, []byte("hunter2")))
	assert.Equal(t, ErrPasswordMismatch, Verify(&user, []byte("Hunter2")))
}

func TestVerify(t *testing.T) {
	for password, expected := range map[string]error{
		"hunter2": nil,
		"hunter3": ErrPasswordMismatch,
		"":        ErrPasswordMismatch,
	} {
		user := models.UserEntity{Hash: clerkHash}
		assert.Equal(t, expected, Verify(&user, []byte(password)), password)
	}
}

func TestVerifyWithoutHash(t *testing.T) {
	user := models.UserEntity{Username: "system"}
	assert.Equal(t, ErrPasswordMismatch, Verify(&user, nil))
	assert.Equal(t, ErrPasswordMismatch, Verify(&user, []byte("")))
}
