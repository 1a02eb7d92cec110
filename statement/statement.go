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
	"fmt"
	"math"
	"strings"

	"github.com/tomoncle/crudal/model"
	"github.com/tomoncle/crudal/types"
	"github.com/uptrace/bun"
)

// Kind is the variant of a Statement.
type Kind int

const (
	KindSelect Kind = iota
	KindDelete
	KindUpdate
)

func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "SELECT"
	case KindDelete:
		return "DELETE"
	case KindUpdate:
		return "UPDATE"
	default:
		return "UNKNOWN"
	}
}

// Statement is an immutable description of a select, delete or update.
type Statement interface {
	Kind() Kind
	Model() *model.Meta
	Filters() Filters
	String() string
}

// Target is what a select returns: whole model rows or a tuple of columns.
type Target struct {
	columns []string
	tuple   bool
}

// Model targets whole rows, materialized as model instances.
func Model() Target {
	return Target{}
}

// Columns targets an ordered tuple of columns.
func Columns(columns ...string) Target {
	cp := make([]string, len(columns))
	copy(cp, columns)
	return Target{columns: cp, tuple: true}
}

// IsTuple reports whether the target is a column tuple.
func (t Target) IsTuple() bool { return t.tuple }

// Columns returns the tuple columns in order, or nil for a model target.
func (t Target) Columns() []string {
	if !t.tuple {
		return nil
	}
	cp := make([]string, len(t.columns))
	copy(cp, t.columns)
	return cp
}

type paging struct {
	offset, rows       int
	hasOffset, hasRows bool
}

// Paging is an optional select pagination setting.
type Paging func(*paging)

// WithOffset skips n rows.
func WithOffset(n int) Paging {
	return func(p *paging) {
		p.offset = n
		p.hasOffset = true
	}
}

// WithRows returns at most n rows.
func WithRows(n int) Paging {
	return func(p *paging) {
		p.rows = n
		p.hasRows = true
	}
}

// SelectStatement selects rows matching its filters, ordered by primary key.
type SelectStatement struct {
	meta    *model.Meta
	columns []string
	filters []Term
	paging  paging
}

// BuildSelect builds a select of target from meta's table.
func BuildSelect(meta *model.Meta, target Target, filters Filters, opts ...Paging) (*SelectStatement, error) {
	var p paging
	for _, opt := range opts {
		opt(&p)
	}
	if p.hasOffset && p.offset < 0 {
		return nil, fmt.Errorf("%w: offset %d", types.ErrInvalidPaging, p.offset)
	}
	if p.hasRows && p.rows < 0 {
		return nil, fmt.Errorf("%w: rows %d", types.ErrInvalidPaging, p.rows)
	}

	var columns []string
	if target.IsTuple() {
		if len(target.columns) == 0 {
			return nil, fmt.Errorf("%w: empty column tuple", types.ErrInvalidTarget)
		}
		columns = make([]string, len(target.columns))
		for i, c := range target.columns {
			if !meta.HasField(c) {
				return nil, types.NewFieldError(meta.Name(), c)
			}
			columns[i] = c
		}
	}

	terms, err := checkTerms(meta, filters)
	if err != nil {
		return nil, err
	}
	return &SelectStatement{meta: meta, columns: columns, filters: terms, paging: p}, nil
}

func (s *SelectStatement) Kind() Kind { return KindSelect }

func (s *SelectStatement) Model() *model.Meta { return s.meta }

func (s *SelectStatement) Filters() Filters { return copyTerms(s.filters) }

// Target returns the select target.
func (s *SelectStatement) Target() Target {
	if s.columns == nil {
		return Model()
	}
	return Columns(s.columns...)
}

// Offset returns the row offset and whether one was set.
func (s *SelectStatement) Offset() (int, bool) { return s.paging.offset, s.paging.hasOffset }

// Rows returns the row limit and whether one was set.
func (s *SelectStatement) Rows() (int, bool) { return s.paging.rows, s.paging.hasRows }

func (s *SelectStatement) String() string {
	target := "*"
	if s.columns != nil {
		target = strings.Join(s.columns, ", ")
	}
	out := fmt.Sprintf("SELECT %s FROM %s%s", target, s.meta.Table(), describeTerms(" WHERE ", " AND ", s.filters))
	if s.paging.hasOffset {
		out += fmt.Sprintf(" OFFSET %d", s.paging.offset)
	}
	if s.paging.hasRows {
		out += fmt.Sprintf(" LIMIT %d", s.paging.rows)
	}
	return out
}

// Query renders the statement onto a new select of db scanning into dest,
// usually a pointer to a slice of model pointers. Tuple selects only load
// their columns. A nil dest references the table alone.
func (s *SelectStatement) Query(db bun.IDB, dest any) *bun.SelectQuery {
	if dest == nil {
		dest = s.meta.NilModel()
	}
	q := db.NewSelect().Model(dest)
	if s.columns != nil {
		q = q.Column(s.columns...)
	}
	for _, t := range s.filters {
		q = q.Where("? = ?", bun.Ident(t.Column), t.Value)
	}
	q = q.OrderExpr("? ASC", bun.Ident(s.meta.PrimaryKey()))

	// bun drops LIMIT 0, so an empty page is expressed as a false predicate.
	if s.paging.hasRows && s.paging.rows == 0 {
		return q.Where("1 = 0")
	}
	switch {
	case s.paging.hasRows:
		q = q.Limit(s.paging.rows)
	case s.paging.hasOffset:
		// OFFSET without LIMIT is rejected by sqlite and mysql.
		q = q.Limit(math.MaxInt32)
	}
	if s.paging.hasOffset {
		q = q.Offset(s.paging.offset)
	}
	return q
}

// DeleteStatement deletes every row matching its filters.
type DeleteStatement struct {
	meta    *model.Meta
	filters []Term
}

// BuildDelete builds a bulk delete from meta's table.
func BuildDelete(meta *model.Meta, filters Filters) (*DeleteStatement, error) {
	terms, err := checkTerms(meta, filters)
	if err != nil {
		return nil, err
	}
	return &DeleteStatement{meta: meta, filters: terms}, nil
}

func (d *DeleteStatement) Kind() Kind { return KindDelete }

func (d *DeleteStatement) Model() *model.Meta { return d.meta }

func (d *DeleteStatement) Filters() Filters { return copyTerms(d.filters) }

func (d *DeleteStatement) String() string {
	return fmt.Sprintf("DELETE FROM %s%s", d.meta.Table(), describeTerms(" WHERE ", " AND ", d.filters))
}

// Query renders the statement onto a new delete of db.
func (d *DeleteStatement) Query(db bun.IDB) *bun.DeleteQuery {
	q := db.NewDelete().Model(d.meta.NilModel())
	for _, t := range d.filters {
		q = q.Where("? = ?", bun.Ident(t.Column), t.Value)
	}
	// bun refuses a delete without WHERE.
	if len(d.filters) == 0 {
		q = q.Where("1 = 1")
	}
	return q
}

// UpdateStatement assigns values to every row matching its filters.
type UpdateStatement struct {
	meta    *model.Meta
	filters []Term
	values  []Term
}

// BuildUpdate builds a bulk update of meta's table. values must not be empty.
func BuildUpdate(meta *model.Meta, filters Filters, values Values) (*UpdateStatement, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrEmptyValues, meta.Name())
	}
	assignments, err := checkTerms(meta, values)
	if err != nil {
		return nil, err
	}
	terms, err := checkTerms(meta, filters)
	if err != nil {
		return nil, err
	}
	return &UpdateStatement{meta: meta, filters: terms, values: assignments}, nil
}

func (u *UpdateStatement) Kind() Kind { return KindUpdate }

func (u *UpdateStatement) Model() *model.Meta { return u.meta }

func (u *UpdateStatement) Filters() Filters { return copyTerms(u.filters) }

// Values returns the assignments.
func (u *UpdateStatement) Values() Values { return Values(copyTerms(u.values)) }

func (u *UpdateStatement) String() string {
	return fmt.Sprintf("UPDATE %s%s%s", u.meta.Table(),
		describeTerms(" SET ", ", ", u.values),
		describeTerms(" WHERE ", " AND ", u.filters))
}

// Query renders the statement onto a new update of db.
func (u *UpdateStatement) Query(db bun.IDB) *bun.UpdateQuery {
	q := db.NewUpdate().Model(u.meta.NilModel())
	for _, t := range u.values {
		q = q.Set("? = ?", bun.Ident(t.Column), t.Value)
	}
	for _, t := range u.filters {
		q = q.Where("? = ?", bun.Ident(t.Column), t.Value)
	}
	if len(u.filters) == 0 {
		q = q.Where("1 = 1")
	}
	return q
}

func copyTerms(terms []Term) []Term {
	out := make([]Term, len(terms))
	copy(out, terms)
	return out
}

func describeTerms(prefix, sep string, terms []Term) string {
	if len(terms) == 0 {
		return ""
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = fmt.Sprintf("%s = %v", t.Column, t.Value)
	}
	return prefix + strings.Join(parts, sep)
}
