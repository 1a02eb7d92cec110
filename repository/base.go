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

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomoncle/crudal/model"
	"github.com/tomoncle/crudal/statement"
	"github.com/uptrace/bun"
)

type baseRepositoryImpl[T any] struct {
	meta *model.Meta
}

// NewRepository returns the repository of the model described by meta.
func NewRepository[T any](meta *model.Meta) Repository[T] {
	return &baseRepositoryImpl[T]{meta: meta}
}

func (r *baseRepositoryImpl[T]) Meta() *model.Meta { return r.meta }

func (r *baseRepositoryImpl[T]) Find(ctx context.Context, db bun.IDB, stmt *statement.SelectStatement) ([]*T, error) {
	entities := make([]*T, 0)
	if err := stmt.Query(db, &entities).Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Tuples(ctx context.Context, db bun.IDB, stmt *statement.SelectStatement) ([]statement.Tuple, error) {
	columns := stmt.Target().Columns()
	if columns == nil {
		return nil, fmt.Errorf("select of %s does not target a column tuple", r.meta.Name())
	}
	entities, err := r.Find(ctx, db, stmt)
	if err != nil {
		return nil, err
	}

	tuples := make([]statement.Tuple, len(entities))
	for i, entity := range entities {
		tuple := make(statement.Tuple, len(columns))
		for j, column := range columns {
			tuple[j], _ = r.meta.Value(entity, column)
		}
		tuples[i] = tuple
	}
	return tuples, nil
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context, db bun.IDB, stmt *statement.SelectStatement) (int, error) {
	return stmt.Query(db, nil).Count(ctx)
}

func (r *baseRepositoryImpl[T]) Exists(ctx context.Context, db bun.IDB, stmt *statement.SelectStatement) (bool, error) {
	return stmt.Query(db, nil).Exists(ctx)
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, db bun.IDB, stmt *statement.DeleteStatement) (sql.Result, error) {
	return stmt.Query(db).Exec(ctx)
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, db bun.IDB, stmt *statement.UpdateStatement) (sql.Result, error) {
	return stmt.Query(db).Exec(ctx)
}
