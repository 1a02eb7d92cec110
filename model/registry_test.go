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
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type team struct {
	bun.BaseModel `bun:"table:team"`

	ID int64 `bun:"id,pk,autoincrement"`
}

func TestRegistryOrdersByPriority(t *testing.T) {
	dialect := sqlitedialect.New()
	personMeta, err := Inspect[person](dialect)
	require.NoError(t, err)
	teamMeta, err := Inspect[team](dialect)
	require.NoError(t, err)

	r := NewRegistry()
	r.Register(personMeta, 10)
	r.Register(teamMeta, 1)

	models := r.Models()
	require.Len(t, models, 2)
	assert.Equal(t, "team", models[0].Table())
	assert.Equal(t, "person", models[1].Table())
}

func TestRegistryReplaceAndLookup(t *testing.T) {
	dialect := sqlitedialect.New()
	first, err := Inspect[person](dialect)
	require.NoError(t, err)
	second, err := Inspect[person](dialect)
	require.NoError(t, err)

	r := NewRegistry()
	r.Register(first, 0)
	r.Register(second, 0)
	assert.Len(t, r.Models(), 1)

	got, ok := r.Lookup(reflect.TypeOf(&person{}))
	require.True(t, ok)
	assert.Same(t, second, got)

	_, ok = r.Lookup(reflect.TypeOf(team{}))
	assert.False(t, ok)
}
