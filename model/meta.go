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
	"fmt"
	"reflect"

	"github.com/tomoncle/crudal/types"
	"github.com/uptrace/bun/schema"
)

// Meta is the fixed shape of a model: its table, ordered columns and the
// single primary-key column. It is built once and never changes.
type Meta struct {
	typ     reflect.Type
	table   string
	columns []string
	pk      string
	fields  map[string]*schema.Field
}

// Inspect builds the Meta of T using the dialect's table cache.
func Inspect[T any](dialect schema.Dialect) (*Meta, error) {
	return InspectType(dialect, reflect.TypeOf((*T)(nil)).Elem())
}

// InspectType builds the Meta of typ, which must be a struct or a pointer
// to one. Models without a primary key, or with a composite one, are rejected.
func InspectType(dialect schema.Dialect, typ reflect.Type) (*Meta, error) {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("crudal: model must be a struct, got %s", typ)
	}

	table := dialect.Tables().Get(typ)
	switch len(table.PKs) {
	case 0:
		return nil, fmt.Errorf("%w: %s", types.ErrNoPrimaryKey, typ.Name())
	case 1:
	default:
		return nil, fmt.Errorf("%w: %s has %d key columns", types.ErrCompositeKey, typ.Name(), len(table.PKs))
	}

	meta := &Meta{
		typ:     typ,
		table:   table.Name,
		columns: make([]string, 0, len(table.Fields)),
		pk:      table.PKs[0].Name,
		fields:  make(map[string]*schema.Field, len(table.Fields)),
	}
	for _, f := range table.Fields {
		meta.columns = append(meta.columns, f.Name)
		meta.fields[f.Name] = f
	}
	return meta, nil
}

// Type returns the struct type of the model.
func (m *Meta) Type() reflect.Type { return m.typ }

// Name returns the Go name of the model type.
func (m *Meta) Name() string { return m.typ.Name() }

// Table returns the table name.
func (m *Meta) Table() string { return m.table }

// PrimaryKey returns the primary-key column name.
func (m *Meta) PrimaryKey() string { return m.pk }

// Columns returns the ordered column names.
func (m *Meta) Columns() []string {
	columns := make([]string, len(m.columns))
	copy(columns, m.columns)
	return columns
}

// HasField reports whether column is a column of the model.
func (m *Meta) HasField(column string) bool {
	_, ok := m.fields[column]
	return ok
}

// NilModel returns a typed nil pointer to the model, which bun accepts as a
// table reference for bulk statements.
func (m *Meta) NilModel() any {
	return reflect.Zero(reflect.PointerTo(m.typ)).Interface()
}

// New returns a pointer to a new zero model value.
func (m *Meta) New() any {
	return reflect.New(m.typ).Interface()
}

// Value returns the value of column in item, a pointer to the model. It
// reports false for unknown columns.
func (m *Meta) Value(item any, column string) (any, bool) {
	f, ok := m.fields[column]
	if !ok {
		return nil, false
	}
	v := reflect.Indirect(reflect.ValueOf(item))
	if !v.IsValid() || v.Type() != m.typ {
		return nil, false
	}
	return f.Value(v).Interface(), true
}
