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

// Package types defines the contracts shared between the host dataflow engine
// and the transform core: configuration, the record model, the transform
// lifecycle and the error taxonomy.
package types

// Configuration is the node-level transform configuration, decoded with maps.Map2Struct.
type Configuration map[string]interface{}

// Metadata is a flat string key-value map, used for global properties.
type Metadata map[string]string

// NewMetadata creates an empty Metadata.
func NewMetadata() Metadata {
	return make(Metadata)
}

// BuildMetadata creates a Metadata holding a copy of data.
func BuildMetadata(data map[string]string) Metadata {
	metadata := make(Metadata, len(data))
	for k, v := range data {
		metadata[k] = v
	}
	return metadata
}

// Copy returns an independent copy.
func (md Metadata) Copy() Metadata {
	return BuildMetadata(md)
}

// Has reports whether key is present.
func (md Metadata) Has(key string) bool {
	_, ok := md[key]
	return ok
}

// GetValue returns the value of key, or "".
func (md Metadata) GetValue(key string) string {
	return md[key]
}

// PutValue sets key to value. Empty keys are ignored.
func (md Metadata) PutValue(key, value string) {
	if key != "" {
		md[key] = value
	}
}

// Values returns the underlying map.
func (md Metadata) Values() map[string]string {
	return md
}

// Node is the graph processing stage owning a transform instance.
// It is implemented by the host engine.
type Node interface {
	// Id returns the node id, unique within its graph.
	Id() string
}

// GraphContext is the runtime context of the graph a node belongs to.
// It is implemented by the host engine and is read-only for transforms.
type GraphContext interface {
	// Id returns the graph id.
	Id() string
	// Properties returns the graph parameters.
	Properties() Metadata
}
