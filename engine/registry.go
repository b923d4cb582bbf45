/*
 * Copyright 2024 The RuleGo Authors.
 *
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

package engine

import (
	"errors"
	"fmt"
	"plugin"
	"sort"
	"sync"

	"github.com/rulego/rulego-transform/api/types"
)

// PluginsSymbol is the symbol used to identify natives in a Go plugin file.
const PluginsSymbol = "Natives"

// NativeFactory creates a new instance of a native transform.
type NativeFactory func() types.Transform

// NativePlugin is the interface a Go plugin's `Natives` symbol implements.
type NativePlugin interface {
	Natives() map[string]NativeFactory
}

// Natives is the default registry of native transforms.
// Component packages register their built-in natives here in init.
var Natives = NewNativeRegistry(nil)

// NativeRegistry resolves native transform names, the Go counterpart of class names.
type NativeRegistry struct {
	// parent is consulted for names this registry does not know.
	parent  *NativeRegistry
	natives map[string]NativeFactory
	// plugins maps a plugin name to the natives it registered.
	plugins map[string][]string
	sync.RWMutex
}

// NewNativeRegistry creates a registry falling back to parent, which may be nil.
func NewNativeRegistry(parent *NativeRegistry) *NativeRegistry {
	return &NativeRegistry{
		parent:  parent,
		natives: make(map[string]NativeFactory),
		plugins: make(map[string][]string),
	}
}

// Register adds a native. Names are unique within a registry.
func (r *NativeRegistry) Register(name string, factory NativeFactory) error {
	if name == "" || factory == nil {
		return errors.New("native name and factory are required")
	}
	r.Lock()
	defer r.Unlock()
	if _, ok := r.natives[name]; ok {
		return errors.New("the native already exists. name=" + name)
	}
	r.natives[name] = factory
	return nil
}

// RegisterPlugin registers every native exported by the Go plugin file under the plugin name.
func (r *NativeRegistry) RegisterPlugin(name string, file string) error {
	natives, err := loadPlugin(file)
	if err != nil {
		return err
	}
	r.Lock()
	defer r.Unlock()
	for k := range natives {
		if _, ok := r.natives[k]; ok {
			return errors.New("the native already exists. name=" + k)
		}
	}
	names := make([]string, 0, len(natives))
	for k, factory := range natives {
		r.natives[k] = factory
		names = append(names, k)
	}
	r.plugins[name] = names
	return nil
}

// Unregister removes a native by its name, or every native of a plugin by the plugin name.
func (r *NativeRegistry) Unregister(name string) error {
	r.Lock()
	defer r.Unlock()
	var removed = false
	if names, ok := r.plugins[name]; ok {
		for _, k := range names {
			delete(r.natives, k)
		}
		delete(r.plugins, name)
		removed = true
	}
	if _, ok := r.natives[name]; ok {
		delete(r.natives, name)
		removed = true
	}
	if !removed {
		return fmt.Errorf("native not found. name=%s", name)
	}
	return nil
}

// Has reports whether name resolves in this registry or its parents.
func (r *NativeRegistry) Has(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// New creates a new instance of the native registered as name.
func (r *NativeRegistry) New(name string) (types.Transform, error) {
	factory, ok := r.lookup(name)
	if !ok {
		return nil, fmt.Errorf("native not found. name=%s", name)
	}
	return factory(), nil
}

// Names returns the names registered in this registry, sorted. Parents are not included.
func (r *NativeRegistry) Names() []string {
	r.RLock()
	defer r.RUnlock()
	names := make([]string, 0, len(r.natives))
	for k := range r.natives {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (r *NativeRegistry) lookup(name string) (NativeFactory, bool) {
	r.RLock()
	factory, ok := r.natives[name]
	r.RUnlock()
	if !ok && r.parent != nil {
		return r.parent.lookup(name)
	}
	return factory, ok
}

// loadPlugin opens a Go plugin and returns the natives of its exported `Natives` symbol.
func loadPlugin(file string) (map[string]NativeFactory, error) {
	p, err := plugin.Open(file)
	if err != nil {
		return nil, err
	}
	sym, err := p.Lookup(PluginsSymbol)
	if err != nil {
		return nil, err
	}
	natives, ok := sym.(NativePlugin)
	if !ok {
		return nil, errors.New("invalid plugin")
	}
	return natives.Natives(), nil
}
