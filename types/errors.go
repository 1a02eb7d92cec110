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

package types

import (
	"errors"
	"fmt"
)

// Configuration errors.
var (
	// ErrNoSession is returned when a call supplies no session and the model
	// has no ambient session factory.
	ErrNoSession = errors.New("crudal: neither call session nor model session exists")

	// ErrSessionClosed is returned when a closed session is used.
	ErrSessionClosed = errors.New("crudal: session is closed")

	// ErrNoPrimaryKey is returned when registering a model without a primary key.
	ErrNoPrimaryKey = errors.New("crudal: model has no primary key")

	// ErrCompositeKey is returned when registering a model whose primary key
	// spans more than one column.
	ErrCompositeKey = errors.New("crudal: composite primary keys are not supported")
)

// Argument errors, raised while building a statement.
var (
	ErrUnknownField   = errors.New("crudal: unknown field")
	ErrDuplicateField = errors.New("crudal: duplicate field")
	ErrEmptyValues    = errors.New("crudal: update values cannot be empty")
	ErrInvalidPaging  = errors.New("crudal: invalid paging")
	ErrInvalidTarget  = errors.New("crudal: invalid select target")
)

// ErrMultipleRows is returned when a single-item lookup matches more than one row.
var ErrMultipleRows = errors.New("crudal: multiple rows found")

// FieldError reports a filter, value or projection key that is not a
// column of the model.
type FieldError struct {
	Model string
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("crudal: model %s has no field %q", e.Model, e.Field)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrUnknownField
}

// MultiplicityError carries the details of a single-item lookup that matched
// more than one row.
type MultiplicityError struct {
	Model string
	Field string
	Value any
	Count int
}

func (e *MultiplicityError) Error() string {
	return fmt.Sprintf("crudal: found more than one %s (%d) with %s=%v", e.Model, e.Count, e.Field, e.Value)
}

func (e *MultiplicityError) Is(target error) bool {
	return target == ErrMultipleRows
}

// NewFieldError creates a new FieldError.
func NewFieldError(model, field string) error {
	return &FieldError{Model: model, Field: field}
}

// NewMultiplicityError creates a new MultiplicityError.
func NewMultiplicityError(model, field string, value any, count int) error {
	return &MultiplicityError{Model: model, Field: field, Value: value, Count: count}
}

// IsConfigurationError reports whether err is a session or model
// configuration failure.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrNoSession) ||
		errors.Is(err, ErrSessionClosed) ||
		errors.Is(err, ErrNoPrimaryKey) ||
		errors.Is(err, ErrCompositeKey)
}

// IsArgumentError reports whether err was raised while validating caller
// supplied fields, values or paging.
func IsArgumentError(err error) bool {
	return errors.Is(err, ErrUnknownField) ||
		errors.Is(err, ErrDuplicateField) ||
		errors.Is(err, ErrEmptyValues) ||
		errors.Is(err, ErrInvalidPaging) ||
		errors.Is(err, ErrInvalidTarget)
}

// IsMultiplicityError reports whether err is a multiple-rows lookup failure.
func IsMultiplicityError(err error) bool {
	return errors.Is(err, ErrMultipleRows)
}
