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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/crudal/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type note struct {
	bun.BaseModel `bun:"table:notes"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Text string `bun:"text,notnull"`
}

// newDB returns a private in-memory database on a single connection, so
// an open session transaction must be finished before other work proceeds.
func newDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.NewCreateTable().Model((*note)(nil)).Exec(context.Background())
	require.NoError(t, err)
	return db
}

func countNotes(t *testing.T, db bun.IDB) int {
	t.Helper()
	n, err := db.NewSelect().Model((*note)(nil)).Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestSessionCommit(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	s := New(db)

	n := &note{Text: "first"}
	require.NoError(t, s.Add(ctx, n))
	assert.NotZero(t, n.ID)
	assert.True(t, s.InTransaction())

	conn, err := s.Conn()
	require.NoError(t, err)
	assert.Equal(t, 1, countNotes(t, conn), "own writes are visible before commit")

	require.NoError(t, s.Commit(ctx))
	assert.False(t, s.InTransaction())
	assert.Equal(t, 1, countNotes(t, db))
	require.NoError(t, s.Close())
}

func TestSessionRollback(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	s := New(db)

	require.NoError(t, s.Add(ctx, &note{Text: "discard"}))
	require.NoError(t, s.Rollback(ctx))
	assert.Equal(t, 0, countNotes(t, db))

	assert.NoError(t, s.Commit(ctx), "nothing to commit")
}

func TestSessionCloseDiscardsUncommitted(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	s := New(db)

	notes := []*note{{Text: "a"}, {Text: "b"}}
	require.NoError(t, s.Add(ctx, &notes))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")
	assert.True(t, s.Closed())
	assert.Equal(t, 0, countNotes(t, db))

	_, err := s.Conn()
	assert.ErrorIs(t, err, types.ErrSessionClosed)
	assert.ErrorIs(t, s.Add(ctx, &note{Text: "late"}), types.ErrSessionClosed)
	assert.ErrorIs(t, s.Commit(ctx), types.ErrSessionClosed)
}

func TestSessionRefresh(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	s := New(db)
	defer s.Close()

	n := &note{Text: "original"}
	require.NoError(t, s.Add(ctx, n))
	require.NoError(t, s.Commit(ctx))

	_, err := db.NewUpdate().Model((*note)(nil)).Set("text = ?", "changed").Where("id = ?", n.ID).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Refresh(ctx, n))
	assert.Equal(t, "changed", n.Text)
}

func TestSessionTxSurvivesCallerCancellation(t *testing.T) {
	db := newDB(t)
	s := New(db)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Add(ctx, &note{Text: "kept"}))
	cancel()

	require.NoError(t, s.Commit(context.Background()))
	assert.Equal(t, 1, countNotes(t, db))
}

func TestSessionIDsAreDistinct(t *testing.T) {
	db := newDB(t)
	assert.NotEqual(t, New(db).ID(), New(db).ID())
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)

	explicit := New(db)
	got, release, err := Resolve(ctx, explicit, nil)
	require.NoError(t, err)
	release()
	assert.Same(t, explicit, got)
	assert.False(t, explicit.Closed(), "explicit sessions are left open")

	got, release, err = Resolve(ctx, nil, NewFactory(db))
	require.NoError(t, err)
	assert.NotEqual(t, explicit.ID(), got.ID())
	release()
	assert.True(t, got.Closed(), "ambient sessions are closed on release")

	_, release, err = Resolve(ctx, nil, nil)
	release()
	assert.ErrorIs(t, err, types.ErrNoSession)
	assert.True(t, types.IsConfigurationError(err))

	require.NoError(t, explicit.Close())
	_, _, err = Resolve(ctx, explicit, NewFactory(db))
	assert.ErrorIs(t, err, types.ErrSessionClosed)
}

func TestFactoryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFactory(newDB(t))(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScope(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	f := NewFactory(db)

	var seen *Session
	err := Scope(ctx, f, func(s *Session) error {
		seen = s
		return s.Add(ctx, &note{Text: "scoped"})
	})
	require.NoError(t, err)
	assert.True(t, seen.Closed())
	assert.Equal(t, 1, countNotes(t, db))

	boom := errors.New("boom")
	err = Scope(ctx, f, func(s *Session) error {
		if err := s.Add(ctx, &note{Text: "dropped"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, countNotes(t, db))

	assert.ErrorIs(t, Scope(ctx, nil, func(*Session) error { return nil }), types.ErrNoSession)
}
