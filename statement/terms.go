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

	"github.com/tomoncle/crudal/model"
	"github.com/tomoncle/crudal/types"
)

// Term pairs a column with a value.
type Term struct {
	Column string
	Value  any
}

// Filters is an ordered set of equality constraints combined with AND.
// An empty Filters matches every row.
type Filters []Term

// By starts a Filters with column = value.
func By(column string, value any) Filters {
	return Filters{{Column: column, Value: value}}
}

// And returns a copy of f extended with column = value.
func (f Filters) And(column string, value any) Filters {
	return Filters(appendTerm(f, column, value))
}

// Columns returns the filtered column names in order.
func (f Filters) Columns() []string {
	return termColumns(f)
}

// Values is an ordered column to new-value mapping used by updates.
type Values []Term

// Set starts a Values with column = value.
func Set(column string, value any) Values {
	return Values{{Column: column, Value: value}}
}

// And returns a copy of v extended with column = value.
func (v Values) And(column string, value any) Values {
	return Values(appendTerm(v, column, value))
}

// Columns returns the assigned column names in order.
func (v Values) Columns() []string {
	return termColumns(v)
}

// Tuple is one row of a partial projection, in projection order.
type Tuple []any

func appendTerm(terms []Term, column string, value any) []Term {
	out := make([]Term, len(terms), len(terms)+1)
	copy(out, terms)
	return append(out, Term{Column: column, Value: value})
}

func termColumns(terms []Term) []string {
	columns := make([]string, len(terms))
	for i, t := range terms {
		columns[i] = t.Column
	}
	return columns
}

// checkTerms validates terms against meta and returns a private copy.
func checkTerms(meta *model.Meta, terms []Term) ([]Term, error) {
	seen := make(map[string]struct{}, len(terms))
	out := make([]Term, len(terms))
	for i, t := range terms {
		if !meta.HasField(t.Column) {
			return nil, types.NewFieldError(meta.Name(), t.Column)
		}
		if _, ok := seen[t.Column]; ok {
			return nil, fmt.Errorf("%w: %q given twice for %s", types.ErrDuplicateField, t.Column, meta.Name())
		}
		seen[t.Column] = struct{}{}
		out[i] = t
	}
	return out, nil
}
