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

	"github.com/sirupsen/logrus"
	"github.com/tomoncle/crudal/model"
	"github.com/tomoncle/crudal/repository"
	"github.com/tomoncle/crudal/session"
	"github.com/tomoncle/crudal/statement"
	"github.com/tomoncle/crudal/types"
	"github.com/tomoncle/crudal/utils"
	"github.com/uptrace/bun/schema"
)

// Crud is the blocking CRUD surface of model T. Its configuration is fixed
// by Register.
//
// Every operation takes an optional session. A nil session runs the call
// in a fresh ambient session that is closed before the call returns, so
// work left uncommitted in it is discarded.
type Crud[T any] struct {
	meta     *model.Meta
	repo     repository.Repository[T]
	sessions session.Factory
	log      *logrus.Entry
}

// Register inspects T, which must have exactly one primary key column, and
// records it in the model registry.
func Register[T any](dialect schema.Dialect, opts ...Option) (*Crud[T], error) {
	cfg := config{registry: model.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = utils.NewLogger("CRUDAL")
	}

	meta, err := model.Inspect[T](dialect)
	if err != nil {
		return nil, err
	}
	cfg.registry.Register(meta, cfg.priority)

	return &Crud[T]{
		meta:     meta,
		repo:     repository.NewRepository[T](meta),
		sessions: cfg.sessions,
		log:      cfg.logger.WithField("model", meta.Name()),
	}, nil
}

// Meta returns the inspected shape of T.
func (c *Crud[T]) Meta() *model.Meta { return c.meta }

// Model returns a typed nil *T, usable as a bun table reference.
func (c *Crud[T]) Model() *T { return nil }

func (c *Crud[T]) resolve(ctx context.Context, op string, sess *session.Session) (*session.Session, func(), error) {
	s, release, err := session.Resolve(ctx, sess, c.sessions)
	if err != nil {
		c.log.WithField("op", op).WithError(err).Debug("no session")
		return nil, release, err
	}
	c.log.WithFields(logrus.Fields{"op": op, "session": s.ID(), "ambient": sess == nil}).Debug("session resolved")
	return s, release, nil
}

// Find returns the rows matching filters in primary key order.
func (c *Crud[T]) Find(ctx context.Context, sess *session.Session, filters statement.Filters, opts ...FindOption) ([]*T, error) {
	stmt, err := statement.Find(c.meta, statement.Model(), filters, opts...)
	if err != nil {
		return nil, err
	}
	sess, release, err := c.resolve(ctx, "find", sess)
	defer release()
	if err != nil {
		return nil, err
	}
	return c.find(ctx, sess, stmt)
}

func (c *Crud[T]) find(ctx context.Context, sess *session.Session, stmt *statement.SelectStatement) ([]*T, error) {
	conn, err := sess.Conn()
	if err != nil {
		return nil, err
	}
	return c.repo.Find(ctx, conn, stmt)
}

// Select returns the given columns of the rows matching filters, one tuple
// per row in primary key order.
func (c *Crud[T]) Select(ctx context.Context, sess *session.Session, columns []string, filters statement.Filters, opts ...FindOption) ([]statement.Tuple, error) {
	stmt, err := statement.Find(c.meta, statement.Columns(columns...), filters, opts...)
	if err != nil {
		return nil, err
	}
	sess, release, err := c.resolve(ctx, "select", sess)
	defer release()
	if err != nil {
		return nil, err
	}
	conn, err := sess.Conn()
	if err != nil {
		return nil, err
	}
	return c.repo.Tuples(ctx, conn, stmt)
}

// FindByPK returns the row whose primary key is pk, or nil when there is
// none. More than one match is reported as a *types.MultiplicityError.
func (c *Crud[T]) FindByPK(ctx context.Context, sess *session.Session, pk any) (*T, error) {
	stmt, err := statement.Find(c.meta, statement.Model(), statement.By(c.meta.PrimaryKey(), pk))
	if err != nil {
		return nil, err
	}
	sess, release, err := c.resolve(ctx, "find_by_pk", sess)
	defer release()
	if err != nil {
		return nil, err
	}
	items, err := c.find(ctx, sess, stmt)
	if err != nil {
		return nil, err
	}
	switch len(items) {
	case 0:
		return nil, nil
	case 1:
		return items[0], nil
	default:
		return nil, types.NewMultiplicityError(c.meta.Name(), c.meta.PrimaryKey(), pk, len(items))
	}
}

// Exists reports whether any row matches filters, reading at most one.
func (c *Crud[T]) Exists(ctx context.Context, sess *session.Session, filters statement.Filters) (bool, error) {
	stmt, err := statement.Find(c.meta, statement.Model(), filters, statement.WithRows(1))
	if err != nil {
		return false, err
	}
	sess, release, err := c.resolve(ctx, "exists", sess)
	defer release()
	if err != nil {
		return false, err
	}
	return c.exists(ctx, sess, stmt)
}

func (c *Crud[T]) exists(ctx context.Context, sess *session.Session, stmt *statement.SelectStatement) (bool, error) {
	conn, err := sess.Conn()
	if err != nil {
		return false, err
	}
	return c.repo.Exists(ctx, conn, stmt)
}

// All returns every row in primary key order.
func (c *Crud[T]) All(ctx context.Context, sess *session.Session) ([]*T, error) {
	return c.Find(ctx, sess, nil)
}

// Count returns the number of rows matching filters.
func (c *Crud[T]) Count(ctx context.Context, sess *session.Session, filters statement.Filters) (int, error) {
	stmt, err := statement.Find(c.meta, statement.Model(), filters)
	if err != nil {
		return 0, err
	}
	sess, release, err := c.resolve(ctx, "count", sess)
	defer release()
	if err != nil {
		return 0, err
	}
	conn, err := sess.Conn()
	if err != nil {
		return 0, err
	}
	return c.repo.Count(ctx, conn, stmt)
}

// Page returns one page of the rows matching filters together with their
// total count.
func (c *Crud[T]) Page(ctx context.Context, sess *session.Session, req *types.PageRequest, filters statement.Filters) (*types.Pagination[T], error) {
	if req == nil {
		req = types.NewPageRequest(1, 0)
	}
	all, err := statement.Find(c.meta, statement.Model(), filters)
	if err != nil {
		return nil, err
	}
	page, err := statement.Find(c.meta, statement.Model(), filters,
		statement.WithOffset(req.GetOffset()), statement.WithRows(req.GetPageSize()))
	if err != nil {
		return nil, err
	}
	sess, release, err := c.resolve(ctx, "page", sess)
	defer release()
	if err != nil {
		return nil, err
	}
	conn, err := sess.Conn()
	if err != nil {
		return nil, err
	}

	pagination := types.NewDefaultPagination[T](req.GetPage(), req.GetPageSize())
	total, err := c.repo.Count(ctx, conn, all)
	if err != nil || total == 0 {
		return pagination, err
	}
	items, err := c.repo.Find(ctx, conn, page)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = items
	return pagination, nil
}

// Delete removes the rows matching filters. It reports false, without
// issuing a delete, when nothing matches.
func (c *Crud[T]) Delete(ctx context.Context, sess *session.Session, filters statement.Filters, commit bool) (bool, error) {
	probe, err := statement.Find(c.meta, statement.Model(), filters, statement.WithRows(1))
	if err != nil {
		return false, err
	}
	stmt, err := statement.Delete(c.meta, filters)
	if err != nil {
		return false, err
	}
	sess, release, err := c.resolve(ctx, "delete", sess)
	defer release()
	if err != nil {
		return false, err
	}

	found, err := c.exists(ctx, sess, probe)
	if err != nil || !found {
		return false, err
	}
	tx, err := sess.Tx(ctx)
	if err != nil {
		return false, err
	}
	if _, err := c.repo.Delete(ctx, tx, stmt); err != nil {
		return false, err
	}
	if commit {
		if err := sess.Commit(ctx); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Add inserts item in the session. With commit, the session is committed
// and item reloaded from storage.
func (c *Crud[T]) Add(ctx context.Context, sess *session.Session, item *T, commit bool) (*T, error) {
	sess, release, err := c.resolve(ctx, "add", sess)
	defer release()
	if err != nil {
		return nil, err
	}
	if err := sess.Add(ctx, item); err != nil {
		return nil, err
	}
	if commit {
		if err := sess.Commit(ctx); err != nil {
			return nil, err
		}
		if err := sess.Refresh(ctx, item); err != nil {
			return nil, err
		}
	}
	return item, nil
}

// AddMany inserts items in the session as one statement.
func (c *Crud[T]) AddMany(ctx context.Context, sess *session.Session, items []*T, commit bool) error {
	if len(items) == 0 {
		return nil
	}
	sess, release, err := c.resolve(ctx, "add_many", sess)
	defer release()
	if err != nil {
		return err
	}
	if err := sess.Add(ctx, &items); err != nil {
		return err
	}
	if commit {
		return sess.Commit(ctx)
	}
	return nil
}

// Update sets values on every row matching filters and returns the driver
// result. It does not check that any row matches.
func (c *Crud[T]) Update(ctx context.Context, sess *session.Session, values statement.Values, filters statement.Filters, commit bool) (sql.Result, error) {
	stmt, err := statement.Update(c.meta, values, filters)
	if err != nil {
		return nil, err
	}
	sess, release, err := c.resolve(ctx, "update", sess)
	defer release()
	if err != nil {
		return nil, err
	}
	tx, err := sess.Tx(ctx)
	if err != nil {
		return nil, err
	}
	res, err := c.repo.Update(ctx, tx, stmt)
	if err != nil {
		return nil, err
	}
	if commit {
		if err := sess.Commit(ctx); err != nil {
			return nil, err
		}
	}
	return res, nil
}
