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

package model

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/crudal/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type person struct {
	bun.BaseModel `bun:"table:person,alias:p"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
	Age  int    `bun:"age"`
}

type membership struct {
	bun.BaseModel `bun:"table:membership"`

	GroupID  int64 `bun:"group_id,pk"`
	PersonID int64 `bun:"person_id,pk"`
}

type keyless struct {
	Name string `bun:"name"`
}

func TestInspect(t *testing.T) {
	meta, err := Inspect[person](sqlitedialect.New())
	require.NoError(t, err)

	assert.Equal(t, "person", meta.Table())
	assert.Equal(t, "person", meta.Name())
	assert.Equal(t, "id", meta.PrimaryKey())
	assert.Equal(t, []string{"id", "name", "age"}, meta.Columns())
	assert.True(t, meta.HasField("name"))
	assert.False(t, meta.HasField("Name"))
	assert.False(t, meta.HasField("email"))

	nilModel, ok := meta.NilModel().(*person)
	require.True(t, ok)
	assert.Nil(t, nilModel)
	assert.IsType(t, &person{}, meta.New())
}

func TestInspectColumnsAreCopied(t *testing.T) {
	meta, err := Inspect[person](sqlitedialect.New())
	require.NoError(t, err)

	columns := meta.Columns()
	columns[0] = "mutated"
	assert.Equal(t, "id", meta.Columns()[0])
}

func TestInspectPointerType(t *testing.T) {
	meta, err := InspectType(sqlitedialect.New(), reflect.TypeOf(&person{}))
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(person{}), meta.Type())
}

func TestInspectRejectsKeys(t *testing.T) {
	_, err := Inspect[membership](sqlitedialect.New())
	assert.ErrorIs(t, err, types.ErrCompositeKey)
	assert.True(t, types.IsConfigurationError(err))

	_, err = Inspect[keyless](sqlitedialect.New())
	assert.ErrorIs(t, err, types.ErrNoPrimaryKey)
}

func TestInspectRejectsNonStruct(t *testing.T) {
	_, err := InspectType(sqlitedialect.New(), reflect.TypeOf(42))
	assert.Error(t, err)
}

func TestMetaValue(t *testing.T) {
	meta, err := Inspect[person](sqlitedialect.New())
	require.NoError(t, err)

	p := &person{ID: 7, Name: "Andrew", Age: 31}
	v, ok := meta.Value(p, "name")
	require.True(t, ok)
	assert.Equal(t, "Andrew", v)

	v, ok = meta.Value(p, "id")
	require.True(t, ok)
	assert.Equal(t, int64(7), v)

	_, ok = meta.Value(p, "email")
	assert.False(t, ok)
	_, ok = meta.Value((*person)(nil), "name")
	assert.False(t, ok)
	_, ok = meta.Value(&keyless{}, "name")
	assert.False(t, ok)
}
