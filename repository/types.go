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

	"github.com/tomoncle/crudal/model"
	"github.com/tomoncle/crudal/statement"
	"github.com/uptrace/bun"
)

// QueryRepository executes select statements.
type QueryRepository[T any] interface {
	Find(ctx context.Context, db bun.IDB, stmt *statement.SelectStatement) ([]*T, error)

	Tuples(ctx context.Context, db bun.IDB, stmt *statement.SelectStatement) ([]statement.Tuple, error)

	// Count ignores the statement's paging.
	Count(ctx context.Context, db bun.IDB, stmt *statement.SelectStatement) (int, error)

	Exists(ctx context.Context, db bun.IDB, stmt *statement.SelectStatement) (bool, error)
}

// MutationRepository executes bulk delete and update statements.
type MutationRepository[T any] interface {
	Delete(ctx context.Context, db bun.IDB, stmt *statement.DeleteStatement) (sql.Result, error)

	Update(ctx context.Context, db bun.IDB, stmt *statement.UpdateStatement) (sql.Result, error)
}

// Repository runs statements built for model T on whatever handle the
// caller's session provides.
type Repository[T any] interface {
	QueryRepository[T]
	MutationRepository[T]
	Meta() *model.Meta
}
