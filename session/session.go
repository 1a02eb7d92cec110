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
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/crudal/types"
	"github.com/tomoncle/crudal/utils"
	"github.com/uptrace/bun"
)

var log = utils.NewLogger("SESSION")

// Session is a unit of work over a database handle. Writes open a
// transaction on first use and stay invisible to other sessions until
// Commit. Reads go through the open transaction when there is one and
// straight to the handle otherwise.
//
// A Session belongs to one caller at a time; it guards its own state but
// does not serialize the statements issued through it. Storage errors are
// returned unchanged.
type Session struct {
	id     string
	db     bun.IDB
	txOpts *sql.TxOptions

	mu     sync.Mutex
	tx     *bun.Tx
	closed bool
}

type Option func(*Session)

// WithTxOptions sets the options used when the session starts a transaction.
func WithTxOptions(opts *sql.TxOptions) Option {
	return func(s *Session) { s.txOpts = opts }
}

// New returns an open session over db.
func New(db bun.IDB, opts ...Option) *Session {
	s := &Session{id: uuid.NewString(), db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

func (s *Session) logger() *logrus.Entry {
	return log.WithField("session", s.id)
}

// Conn returns the handle reads should use.
func (s *Session) Conn() (bun.IDB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, types.ErrSessionClosed
	}
	if s.tx != nil {
		return s.tx, nil
	}
	return s.db, nil
}

// Tx returns the session transaction, starting it if needed. The
// transaction is bound to a context detached from ctx's cancellation so it
// survives the call that started it.
func (s *Session) Tx(ctx context.Context) (bun.IDB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, types.ErrSessionClosed
	}
	if s.tx != nil {
		return s.tx, nil
	}
	tx, err := s.db.BeginTx(context.WithoutCancel(ctx), s.txOpts)
	if err != nil {
		return nil, err
	}
	s.tx = &tx
	s.logger().Debug("transaction started")
	return s.tx, nil
}

// InTransaction reports whether the session holds uncommitted work.
func (s *Session) InTransaction() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx != nil
}

// Add inserts model, a struct pointer or a pointer to a slice of struct
// pointers, inside the session transaction. Generated keys are written back
// into model.
func (s *Session) Add(ctx context.Context, model any) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.NewInsert().Model(model).Exec(ctx)
	return err
}

// Refresh reloads model from the database by its primary key.
func (s *Session) Refresh(ctx context.Context, model any) error {
	conn, err := s.Conn()
	if err != nil {
		return err
	}
	return conn.NewSelect().Model(model).WherePK().Scan(ctx)
}

// Commit makes the session's writes durable. Committing a session without
// a transaction is a no-op.
func (s *Session) Commit(ctx context.Context) error {
	return s.finish(ctx, true)
}

// Rollback discards the session's writes.
func (s *Session) Rollback(ctx context.Context) error {
	return s.finish(ctx, false)
}

func (s *Session) finish(ctx context.Context, commit bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.ErrSessionClosed
	}
	if s.tx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := s.tx
	s.tx = nil
	if !commit {
		s.logger().Debug("transaction rolled back")
		return tx.Rollback()
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger().Debug("transaction committed")
	return nil
}

// Close rolls back uncommitted writes and releases the session. Closing
// twice is a no-op; any other use after Close fails with
// types.ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	s.logger().Debug("session closed with uncommitted work, rolling back")
	return tx.Rollback()
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
