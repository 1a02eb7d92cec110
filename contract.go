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

package crudal

import (
	"context"
	"database/sql"

	"github.com/tomoncle/crudal/session"
	"github.com/tomoncle/crudal/statement"
	"github.com/tomoncle/crudal/types"
)

// Repository is the blocking CRUD capability of model T. A nil session
// selects the model's ambient session.
type Repository[T any] interface {
	Find(ctx context.Context, sess *session.Session, filters statement.Filters, opts ...FindOption) ([]*T, error)
	Select(ctx context.Context, sess *session.Session, columns []string, filters statement.Filters, opts ...FindOption) ([]statement.Tuple, error)
	FindByPK(ctx context.Context, sess *session.Session, pk any) (*T, error)
	Exists(ctx context.Context, sess *session.Session, filters statement.Filters) (bool, error)
	All(ctx context.Context, sess *session.Session) ([]*T, error)
	Count(ctx context.Context, sess *session.Session, filters statement.Filters) (int, error)
	Page(ctx context.Context, sess *session.Session, req *types.PageRequest, filters statement.Filters) (*types.Pagination[T], error)
	Delete(ctx context.Context, sess *session.Session, filters statement.Filters, commit bool) (bool, error)
	Add(ctx context.Context, sess *session.Session, item *T, commit bool) (*T, error)
	AddMany(ctx context.Context, sess *session.Session, items []*T, commit bool) error
	Update(ctx context.Context, sess *session.Session, values statement.Values, filters statement.Filters, commit bool) (sql.Result, error)
}

// AsyncRepository is Repository with every operation returning a Future.
type AsyncRepository[T any] interface {
	Find(ctx context.Context, sess *session.Session, filters statement.Filters, opts ...FindOption) *Future[[]*T]
	Select(ctx context.Context, sess *session.Session, columns []string, filters statement.Filters, opts ...FindOption) *Future[[]statement.Tuple]
	FindByPK(ctx context.Context, sess *session.Session, pk any) *Future[*T]
	Exists(ctx context.Context, sess *session.Session, filters statement.Filters) *Future[bool]
	All(ctx context.Context, sess *session.Session) *Future[[]*T]
	Count(ctx context.Context, sess *session.Session, filters statement.Filters) *Future[int]
	Page(ctx context.Context, sess *session.Session, req *types.PageRequest, filters statement.Filters) *Future[*types.Pagination[T]]
	Delete(ctx context.Context, sess *session.Session, filters statement.Filters, commit bool) *Future[bool]
	Add(ctx context.Context, sess *session.Session, item *T, commit bool) *Future[*T]
	AddMany(ctx context.Context, sess *session.Session, items []*T, commit bool) *Future[struct{}]
	Update(ctx context.Context, sess *session.Session, values statement.Values, filters statement.Filters, commit bool) *Future[sql.Result]
}

type probe struct{}

var (
	_ Repository[probe]      = (*Crud[probe])(nil)
	_ AsyncRepository[probe] = (*AsyncCrud[probe])(nil)
)
