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

package statement

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/crudal/model"
	"github.com/tomoncle/crudal/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type person struct {
	bun.BaseModel `bun:"table:person,alias:p"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
	Age  int    `bun:"age"`
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func personMeta(t *testing.T) *model.Meta {
	t.Helper()
	meta, err := model.Inspect[person](sqlitedialect.New())
	require.NoError(t, err)
	return meta
}

func TestFiltersAreImmutable(t *testing.T) {
	base := By("name", "Andrew")
	extended := base.And("age", 30)
	other := base.And("age", 40)

	assert.Len(t, base, 1)
	assert.Equal(t, []string{"name", "age"}, extended.Columns())
	assert.Equal(t, 30, extended[1].Value)
	assert.Equal(t, 40, other[1].Value)
}

func TestBuildSelect(t *testing.T) {
	meta := personMeta(t)

	t.Run("whole model", func(t *testing.T) {
		stmt, err := BuildSelect(meta, Model(), By("name", "Andrew"))
		require.NoError(t, err)
		assert.Equal(t, KindSelect, stmt.Kind())
		assert.False(t, stmt.Target().IsTuple())
		_, hasOffset := stmt.Offset()
		_, hasRows := stmt.Rows()
		assert.False(t, hasOffset)
		assert.False(t, hasRows)
		assert.Equal(t, "SELECT * FROM person WHERE name = Andrew", stmt.String())
	})

	t.Run("column tuple", func(t *testing.T) {
		stmt, err := BuildSelect(meta, Columns("id", "name"), nil, WithOffset(2), WithRows(5))
		require.NoError(t, err)
		assert.True(t, stmt.Target().IsTuple())
		offset, _ := stmt.Offset()
		rows, _ := stmt.Rows()
		assert.Equal(t, 2, offset)
		assert.Equal(t, 5, rows)
		assert.Equal(t, "SELECT id, name FROM person OFFSET 2 LIMIT 5", stmt.String())
	})

	t.Run("unknown filter", func(t *testing.T) {
		_, err := BuildSelect(meta, Model(), By("email", "x"))
		assert.ErrorIs(t, err, types.ErrUnknownField)
		var fieldErr *types.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "email", fieldErr.Field)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := BuildSelect(meta, Columns("id", "email"), nil)
		assert.ErrorIs(t, err, types.ErrUnknownField)
	})

	t.Run("empty tuple", func(t *testing.T) {
		_, err := BuildSelect(meta, Columns(), nil)
		assert.ErrorIs(t, err, types.ErrInvalidTarget)
	})

	t.Run("duplicate filter", func(t *testing.T) {
		_, err := BuildSelect(meta, Model(), By("name", "a").And("name", "b"))
		assert.ErrorIs(t, err, types.ErrDuplicateField)
	})

	t.Run("negative paging", func(t *testing.T) {
		_, err := BuildSelect(meta, Model(), nil, WithOffset(-1))
		assert.ErrorIs(t, err, types.ErrInvalidPaging)
		_, err = BuildSelect(meta, Model(), nil, WithRows(-1))
		assert.ErrorIs(t, err, types.ErrInvalidPaging)
	})
}

func TestStatementsDoNotShareCallerSlices(t *testing.T) {
	meta := personMeta(t)
	filters := By("name", "Andrew")
	stmt, err := Find(meta, Model(), filters)
	require.NoError(t, err)

	filters[0].Value = "John"
	assert.Equal(t, "Andrew", stmt.Filters()[0].Value)

	got := stmt.Filters()
	got[0].Value = "Bob"
	assert.Equal(t, "Andrew", stmt.Filters()[0].Value)
}

func TestBuildDelete(t *testing.T) {
	meta := personMeta(t)

	stmt, err := Delete(meta, By("name", "Andrew"))
	require.NoError(t, err)
	assert.Equal(t, KindDelete, stmt.Kind())
	assert.Equal(t, "DELETE FROM person WHERE name = Andrew", stmt.String())

	_, err = Delete(meta, By("nope", 1))
	assert.ErrorIs(t, err, types.ErrUnknownField)
}

func TestBuildUpdate(t *testing.T) {
	meta := personMeta(t)

	stmt, err := Update(meta, Set("name", "John"), By("name", "Andrew"))
	require.NoError(t, err)
	assert.Equal(t, KindUpdate, stmt.Kind())
	assert.Equal(t, []string{"name"}, stmt.Values().Columns())
	assert.Equal(t, "UPDATE person SET name = John WHERE name = Andrew", stmt.String())

	_, err = Update(meta, nil, By("name", "Andrew"))
	assert.ErrorIs(t, err, types.ErrEmptyValues)
	assert.True(t, types.IsArgumentError(err))

	_, err = Update(meta, Set("email", "x"), nil)
	assert.ErrorIs(t, err, types.ErrUnknownField)
}

func TestRenderSelect(t *testing.T) {
	db := newTestDB(t)
	meta := personMeta(t)

	stmt, err := Find(meta, Model(), By("name", "Andrew").And("age", 30), WithOffset(5), WithRows(10))
	require.NoError(t, err)

	var items []*person
	query := stmt.Query(db, &items).String()
	assert.Contains(t, query, `FROM "person" AS "p"`)
	assert.Contains(t, query, `("name" = 'Andrew')`)
	assert.Contains(t, query, `("age" = 30)`)
	assert.Contains(t, query, `ORDER BY "id" ASC`)
	assert.Contains(t, query, "LIMIT 10")
	assert.Contains(t, query, "OFFSET 5")
}

func TestRenderSelectTuple(t *testing.T) {
	db := newTestDB(t)
	meta := personMeta(t)

	stmt, err := Find(meta, Columns("name"), nil)
	require.NoError(t, err)

	query := stmt.Query(db, nil).String()
	assert.Contains(t, query, `"name"`)
	assert.NotContains(t, query, `"age"`)
	assert.NotContains(t, query, "WHERE")
}

func TestRenderSelectEmptyPage(t *testing.T) {
	db := newTestDB(t)
	meta := personMeta(t)

	stmt, err := Find(meta, Model(), nil, WithRows(0))
	require.NoError(t, err)

	var items []*person
	assert.Contains(t, stmt.Query(db, &items).String(), "1 = 0")
}

func TestRenderDeleteAndUpdate(t *testing.T) {
	db := newTestDB(t)
	meta := personMeta(t)

	del, err := Delete(meta, nil)
	require.NoError(t, err)
	assert.Contains(t, del.Query(db).String(), "1 = 1")

	upd, err := Update(meta, Set("name", "John").And("age", 31), By("name", "Andrew"))
	require.NoError(t, err)
	query := upd.Query(db).String()
	assert.Contains(t, query, `"name" = 'John'`)
	assert.Contains(t, query, `"age" = 31`)
	assert.Contains(t, query, `("name" = 'Andrew')`)
}
