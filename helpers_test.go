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

package crudal_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomoncle/crudal"
	"github.com/tomoncle/crudal/database"
	"github.com/tomoncle/crudal/model"
	"github.com/tomoncle/crudal/session"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type Person struct {
	bun.BaseModel `bun:"table:person,alias:p"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
	Age  int    `bun:"age"`
}

// Tag claims code as its key, but the tags table is created without the
// constraint so duplicate keys can be stored.
type Tag struct {
	bun.BaseModel `bun:"table:tags"`

	Code  string `bun:"code,pk"`
	Label string `bun:"label"`
}

// newDB returns a private in-memory database on one connection. Tests must
// finish an explicit session's transaction before making ambient calls.
func newDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.CreateTables(context.Background(), db, (*Person)(nil)))
	return db
}

// tracker records every ambient session it hands out.
type tracker struct {
	mu       sync.Mutex
	sessions []*session.Session
}

func (tr *tracker) factory(db bun.IDB) session.Factory {
	return func(ctx context.Context) (*session.Session, error) {
		s := session.New(db)
		tr.mu.Lock()
		tr.sessions = append(tr.sessions, s)
		tr.mu.Unlock()
		return s, nil
	}
}

func (tr *tracker) opened() []*session.Session {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]*session.Session(nil), tr.sessions...)
}

func people(t *testing.T, db *bun.DB, opts ...crudal.Option) *crudal.Crud[Person] {
	t.Helper()
	opts = append([]crudal.Option{crudal.WithDB(db), crudal.WithRegistry(model.NewRegistry())}, opts...)
	c, err := crudal.Register[Person](db.Dialect(), opts...)
	require.NoError(t, err)
	return c
}

func seed(t *testing.T, c *crudal.Crud[Person]) []*Person {
	t.Helper()
	items := []*Person{
		{Name: "Andrew", Age: 30},
		{Name: "Beth", Age: 25},
		{Name: "Andrew", Age: 41},
		{Name: "Carl", Age: 30},
		{Name: "Dana", Age: 25},
		{Name: "Beth", Age: 30},
	}
	require.NoError(t, c.AddMany(context.Background(), nil, items, true))
	return items
}
