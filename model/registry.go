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

package model

import (
	"reflect"
	"sort"
	"sync"
)

var defaultRegistry = NewRegistry()

// Registry stores the registered models and exposes them in a deterministic
// order. Priority controls ordering (lower values first), which matters when
// creating tables that reference each other.
type Registry interface {
	Register(meta *Meta, priority int)
	Lookup(typ reflect.Type) (*Meta, bool)
	Models() []*Meta
}

type entry struct {
	meta     *Meta
	priority int
	seq      int
}

type modelRegistry struct {
	entries map[reflect.Type]*entry
	seq     int
	mutex   sync.RWMutex
}

// NewRegistry returns an empty registry.
func NewRegistry() Registry {
	return &modelRegistry{entries: make(map[reflect.Type]*entry)}
}

// Register records meta; registering the same type again replaces the entry
// but keeps its original position among equal priorities.
func (r *modelRegistry) Register(meta *Meta, priority int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if e, ok := r.entries[meta.Type()]; ok {
		e.meta = meta
		e.priority = priority
		return
	}
	r.seq++
	r.entries[meta.Type()] = &entry{meta: meta, priority: priority, seq: r.seq}
}

func (r *modelRegistry) Lookup(typ reflect.Type) (*Meta, bool) {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	e, ok := r.entries[typ]
	if !ok {
		return nil, false
	}
	return e.meta, true
}

func (r *modelRegistry) Models() []*Meta {
	r.mutex.RLock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mutex.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority < entries[j].priority
		}
		return entries[i].seq < entries[j].seq
	})
	result := make([]*Meta, len(entries))
	for i, e := range entries {
		result[i] = e.meta
	}
	return result
}

// Default returns the process-wide registry.
func Default() Registry {
	return defaultRegistry
}

// RegisteredModels returns the models of the default registry sorted by
// ascending priority.
func RegisteredModels() []*Meta {
	return defaultRegistry.Models()
}

// RegisteredModelInstances returns a typed nil pointer for every model of
// the default registry, in priority order.
func RegisteredModelInstances() []interface{} {
	models := RegisteredModels()
	instances := make([]interface{}, len(models))
	for i, m := range models {
		instances[i] = m.NilModel()
	}
	return instances
}
