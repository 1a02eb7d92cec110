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
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/crudal/model"
	"github.com/tomoncle/crudal/session"
	"github.com/tomoncle/crudal/statement"
	"github.com/uptrace/bun"
)

type config struct {
	sessions session.Factory
	logger   *logrus.Logger
	priority int
	registry model.Registry
}

// Option configures a model at registration.
type Option func(*config)

// WithSessionFactory sets the ambient session factory used by calls that
// pass no session.
func WithSessionFactory(f session.Factory) Option {
	return func(c *config) { c.sessions = f }
}

// WithDB is WithSessionFactory(session.NewFactory(db, opts...)).
func WithDB(db bun.IDB, opts ...session.Option) Option {
	return WithSessionFactory(session.NewFactory(db, opts...))
}

func WithLogger(l *logrus.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithPriority orders the model among registered models, lower first.
func WithPriority(p int) Option {
	return func(c *config) { c.priority = p }
}

// WithRegistry records the model in r instead of the default registry.
func WithRegistry(r model.Registry) Option {
	return func(c *config) { c.registry = r }
}

// FindOption narrows the rows a find returns.
type FindOption = statement.Paging

// Rows limits the number of rows returned.
func Rows(n int) FindOption { return statement.WithRows(n) }

// Offset skips the first n rows in primary key order.
func Offset(n int) FindOption { return statement.WithOffset(n) }
