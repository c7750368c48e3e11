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
	"sort"
	"sync"
)

var defaultRegistry = newModelRegistry()

// SQLModel is a table model created by the migrations. Instance returns a
// Bun-compatible struct pointer; lower Priority values are created first.
type SQLModel interface {
	Instance() interface{}
	Priority() int
}

// IndexSpec is a secondary index declared by a model.
type IndexSpec struct {
	Name    string
	Columns []string
	Unique  bool
}

// IndexedModel is implemented by models whose instance needs secondary
// indexes beyond its primary key.
type IndexedModel interface {
	SQLModel
	Indexes() []IndexSpec
}

// ModelRegistry stores SQL models and exposes them in a deterministic order.
type ModelRegistry interface {
	Register(model SQLModel)
	Models() []SQLModel
}

type modelRegistry struct {
	models []SQLModel
	mutex  sync.RWMutex
}

func newModelRegistry() ModelRegistry {
	return &modelRegistry{
		models: make([]SQLModel, 0),
	}
}

func (r *modelRegistry) Register(model SQLModel) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.models = append(r.models, model)
}

func (r *modelRegistry) Models() []SQLModel {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]SQLModel, len(r.models))
	copy(result, r.models)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority() < result[j].Priority()
	})
	return result
}

// ModelAdapter wraps a struct instance, its priority and its indexes.
type ModelAdapter struct {
	instance interface{}
	priority int
	indexes  []IndexSpec
}

// NewModelAdapter wraps a struct instance into an IndexedModel.
func NewModelAdapter(instance interface{}, priority int, indexes ...IndexSpec) IndexedModel {
	return &ModelAdapter{
		instance: instance,
		priority: priority,
		indexes:  indexes,
	}
}

func (a *ModelAdapter) Instance() interface{} { return a.instance }

func (a *ModelAdapter) Priority() int { return a.priority }

func (a *ModelAdapter) Indexes() []IndexSpec { return a.indexes }

// GetRegisteredModels returns the default registry sorted by priority.
func GetRegisteredModels() []SQLModel {
	return defaultRegistry.Models()
}

// RegisteredModel adds a model to the default registry.
func RegisteredModel(model SQLModel) {
	defaultRegistry.Register(model)
}

func RegisteredModelInstances() []interface{} {
	models := GetRegisteredModels()
	instances := make([]interface{}, len(models))
	for i, model := range models {
		instances[i] = model.Instance()
	}
	return instances
}
