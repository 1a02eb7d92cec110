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
	"fmt"

	"github.com/tomoncle/crudal/session"
	"github.com/tomoncle/crudal/statement"
	"github.com/tomoncle/crudal/types"
)

// Future is the pending result of an asynchronous operation.
type Future[R any] struct {
	done chan struct{}
	val  R
	err  error
}

// Done is closed once the result is available.
func (f *Future[R]) Done() <-chan struct{} { return f.done }

// Await blocks until the operation finishes or ctx is done. Giving up on
// the wait does not stop the operation; cancel the context it was started
// with for that.
func (f *Future[R]) Await(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// spawn runs fn on its own goroutine. A panic in fn fails the future
// instead of the process.
func spawn[R any](ctx context.Context, fn func(context.Context) (R, error)) *Future[R] {
	f := &Future[R]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("crudal: operation panicked: %v", r)
			}
		}()
		f.val, f.err = fn(ctx)
	}()
	return f
}

// AsyncCrud runs the operations of a Crud on background goroutines. Each
// operation resolves and releases its session exactly like the blocking
// form; cancelling ctx aborts the in-flight statement and still closes an
// ambient session.
type AsyncCrud[T any] struct {
	crud *Crud[T]
}

// Async returns the asynchronous form of c.
func (c *Crud[T]) Async() *AsyncCrud[T] {
	return &AsyncCrud[T]{crud: c}
}

// Sync returns the blocking form.
func (a *AsyncCrud[T]) Sync() *Crud[T] { return a.crud }

func (a *AsyncCrud[T]) Find(ctx context.Context, sess *session.Session, filters statement.Filters, opts ...FindOption) *Future[[]*T] {
	return spawn(ctx, func(ctx context.Context) ([]*T, error) {
		return a.crud.Find(ctx, sess, filters, opts...)
	})
}

func (a *AsyncCrud[T]) Select(ctx context.Context, sess *session.Session, columns []string, filters statement.Filters, opts ...FindOption) *Future[[]statement.Tuple] {
	return spawn(ctx, func(ctx context.Context) ([]statement.Tuple, error) {
		return a.crud.Select(ctx, sess, columns, filters, opts...)
	})
}

func (a *AsyncCrud[T]) FindByPK(ctx context.Context, sess *session.Session, pk any) *Future[*T] {
	return spawn(ctx, func(ctx context.Context) (*T, error) {
		return a.crud.FindByPK(ctx, sess, pk)
	})
}

func (a *AsyncCrud[T]) Exists(ctx context.Context, sess *session.Session, filters statement.Filters) *Future[bool] {
	return spawn(ctx, func(ctx context.Context) (bool, error) {
		return a.crud.Exists(ctx, sess, filters)
	})
}

func (a *AsyncCrud[T]) All(ctx context.Context, sess *session.Session) *Future[[]*T] {
	return spawn(ctx, func(ctx context.Context) ([]*T, error) {
		return a.crud.All(ctx, sess)
	})
}

func (a *AsyncCrud[T]) Count(ctx context.Context, sess *session.Session, filters statement.Filters) *Future[int] {
	return spawn(ctx, func(ctx context.Context) (int, error) {
		return a.crud.Count(ctx, sess, filters)
	})
}

func (a *AsyncCrud[T]) Page(ctx context.Context, sess *session.Session, req *types.PageRequest, filters statement.Filters) *Future[*types.Pagination[T]] {
	return spawn(ctx, func(ctx context.Context) (*types.Pagination[T], error) {
		return a.crud.Page(ctx, sess, req, filters)
	})
}

func (a *AsyncCrud[T]) Delete(ctx context.Context, sess *session.Session, filters statement.Filters, commit bool) *Future[bool] {
	return spawn(ctx, func(ctx context.Context) (bool, error) {
		return a.crud.Delete(ctx, sess, filters, commit)
	})
}

func (a *AsyncCrud[T]) Add(ctx context.Context, sess *session.Session, item *T, commit bool) *Future[*T] {
	return spawn(ctx, func(ctx context.Context) (*T, error) {
		return a.crud.Add(ctx, sess, item, commit)
	})
}

func (a *AsyncCrud[T]) AddMany(ctx context.Context, sess *session.Session, items []*T, commit bool) *Future[struct{}] {
	return spawn(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.crud.AddMany(ctx, sess, items, commit)
	})
}

func (a *AsyncCrud[T]) Update(ctx context.Context, sess *session.Session, values statement.Values, filters statement.Filters, commit bool) *Future[sql.Result] {
	return spawn(ctx, func(ctx context.Context) (sql.Result, error) {
		return a.crud.Update(ctx, sess, values, filters, commit)
	})
}
