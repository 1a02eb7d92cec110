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

package database

import (
	"context"
	"fmt"

	"github.com/tomoncle/crudal/model"
	"github.com/uptrace/bun"
)

// CreateTables creates the table of every model that does not exist yet.
// Models are bun struct pointers, typically typed nils.
func CreateTables(ctx context.Context, db bun.IDB, models ...any) error {
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table %T: %w", m, err)
		}
	}
	return nil
}

// CreateRegisteredTables creates the tables of the default model registry in
// priority order.
func CreateRegisteredTables(ctx context.Context, db bun.IDB) error {
	return CreateTables(ctx, db, model.RegisteredModelInstances()...)
}

// DropTables drops the tables of models in reverse order, ignoring missing
// ones.
func DropTables(ctx context.Context, db bun.IDB, models ...any) error {
	for i := len(models) - 1; i >= 0; i-- {
		if _, err := db.NewDropTable().Model(models[i]).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table %T: %w", models[i], err)
		}
	}
	return nil
}
