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
	"sync"

	"github.com/tomoncle/crudal/model"
	"github.com/uptrace/bun"
)

var (
	globalMu      sync.RWMutex
	globalFactory *BaseDatabaseFactory
)

// InitDB connects the process-wide database described by cfg, registers
// every known model with Bun and, when createTables is set, creates their
// missing tables.
func InitDB(ctx context.Context, cfg *Config, createTables bool) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	ApplyLogConfig(cfg.LogConfig)

	factory := NewDatabaseFactory()
	if _, err := factory.CreateFromConfig(&cfg.ConnectionConfig); err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := factory.InitializeDatabase(ctx, createTables); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	db := factory.GetDB()
	db.RegisterModel(model.RegisteredModelInstances()...)

	globalMu.Lock()
	old := globalFactory
	globalFactory = factory
	globalMu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	return db, nil
}

func factory() *BaseDatabaseFactory {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalFactory
}

// GetDB returns the process-wide database, or nil before InitDB.
func GetDB() *bun.DB {
	if f := factory(); f != nil {
		return f.GetDB()
	}
	return nil
}

func GetDatabaseManager() AbstractDatabaseManager {
	if f := factory(); f != nil {
		return f.GetManager()
	}
	return nil
}

// CloseDB closes the process-wide database.
func CloseDB() error {
	globalMu.Lock()
	f := globalFactory
	globalFactory = nil
	globalMu.Unlock()
	if f == nil {
		return nil
	}
	return f.Close()
}

func GetHealthStatus(ctx context.Context) *HealthStatus {
	if f := factory(); f != nil {
		return f.GetHealthStatus(ctx)
	}
	return &HealthStatus{LastError: ErrNotConnected.Error()}
}

func GetDatabaseStats() *DBStats {
	if f := factory(); f != nil {
		return f.GetStats()
	}
	return &DBStats{}
}
