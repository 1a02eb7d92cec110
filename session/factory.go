/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package session

import (
	"context"
	"errors"

	"github.com/tomoncle/crudal/types"
	"github.com/uptrace/bun"
)

// Factory creates a fresh session on every call.
type Factory func(ctx context.Context) (*Session, error)

// NewFactory returns a Factory whose sessions run on db.
func NewFactory(db bun.IDB, opts ...Option) Factory {
	return func(ctx context.Context) (*Session, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return New(db, opts...), nil
	}
}

func noop() {}

// Resolve picks the session a call runs in. An explicit session is used as
// is and left open. Otherwise a new session is taken from ambient and the
// returned release func closes it, discarding anything left uncommitted.
// With neither, Resolve fails with types.ErrNoSession.
func Resolve(ctx context.Context, explicit *Session, ambient Factory) (*Session, func(), error) {
	if explicit != nil {
		if explicit.Closed() {
			return nil, noop, types.ErrSessionClosed
		}
		return explicit, noop, nil
	}
	if ambient == nil {
		return nil, noop, types.ErrNoSession
	}
	s, err := ambient(ctx)
	if err != nil {
		return nil, noop, err
	}
	return s, func() {
		if err := s.Close(); err != nil {
			s.logger().WithError(err).Warn("failed to close ambient session")
		}
	}, nil
}

// Scope runs fn in a new session from f, committing when fn succeeds and
// rolling back otherwise. The session is closed before Scope returns.
func Scope(ctx context.Context, f Factory, fn func(s *Session) error) (err error) {
	if f == nil {
		return types.ErrNoSession
	}
	s, err := f(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()

	if err := fn(s); err != nil {
		return errors.Join(err, s.Rollback(ctx))
	}
	return s.Commit(ctx)
}
