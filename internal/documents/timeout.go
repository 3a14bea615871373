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

package documents

import (
	"context"
	"fmt"

	apperrors "github.com/lukasdietrich/courrier/internal/errors"
)

type result struct {
	b   []byte
	err error
}

// withTimeout runs fn and waits at most until ctx is done. The document libraries are not
// cancellable, so a stuck call keeps running in the background, but the caller is released.
func withTimeout(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	done := make(chan result, 1)

	go func() {
		b, err := fn()
		done <- result{b: b, err: err}
	}()

	select {
	case r := <-done:
		return r.b, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", apperrors.ErrRenderError, ctx.Err())
	}
}
