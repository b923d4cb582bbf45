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

package transform

import (
	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/engine"
	"golang.org/x/text/cases"
)

// CopyByNameClass is the registry name of CopyByNameTransform.
const CopyByNameClass = "CopyByName"

func init() {
	_ = engine.Natives.Register(CopyByNameClass, func() types.Transform {
		return &CopyByNameTransform{}
	})
}

// FieldPair is one source-to-target field assignment of a CopyByNameMapping.
type FieldPair struct {
	Source int
	Target int
}

// CopyByNameMapping copies the fields of one record to the fields of another by name.
//
// Fields with exactly the same name are paired first. Each remaining source field is then
// paired with the first target field, in schema order, whose name is equal under Unicode
// case folding and that no other source field claimed. Source fields left over are ignored.
type CopyByNameMapping struct {
	source *types.RecordSchema
	target *types.RecordSchema
	pairs  []FieldPair
}

// NewCopyByNameMapping builds the mapping of source onto target.
func NewCopyByNameMapping(source *types.RecordSchema, target *types.RecordSchema) *CopyByNameMapping {
	m := &CopyByNameMapping{source: source, target: target}
	claimed := make([]bool, target.NumFields())
	mapped := make([]bool, source.NumFields())

	for i, f := range source.Fields() {
		if j, ok := target.FieldIndex(f.Name); ok && !claimed[j] {
			m.pairs = append(m.pairs, FieldPair{Source: i, Target: j})
			claimed[j] = true
			mapped[i] = true
		}
	}

	fold := cases.Fold()
	folded := make([]string, target.NumFields())
	for j, f := range target.Fields() {
		folded[j] = fold.String(f.Name)
	}
	for i, f := range source.Fields() {
		if mapped[i] {
			continue
		}
		name := fold.String(f.Name)
		for j := range folded {
			if !claimed[j] && folded[j] == name {
				m.pairs = append(m.pairs, FieldPair{Source: i, Target: j})
				claimed[j] = true
				break
			}
		}
	}
	return m
}

// Pairs returns the field pairs in copy order.
func (m *CopyByNameMapping) Pairs() []FieldPair {
	return m.pairs
}

// Apply copies the mapped fields of source into target.
// A value the target field cannot hold leaves that field unchanged.
func (m *CopyByNameMapping) Apply(source *types.Record, target *types.Record) {
	for _, p := range m.pairs {
		_ = target.Set(p.Target, source.Get(p.Source))
	}
}

// CopyByNameTransform copies input record i to output record i by field name.
// Outputs without a matching input are left untouched.
type CopyByNameTransform struct {
	CompiledTransform
	mappings []*CopyByNameMapping
	freed    bool
}

var _ types.RecordTransform = (*CopyByNameTransform)(nil)

// Init builds one mapping per input/output pair.
func (c *CopyByNameTransform) Init(configuration types.Configuration, in []*types.RecordSchema, out []*types.RecordSchema) error {
	if len(in) == 0 || len(out) == 0 {
		return types.NewComponentNotReady(c.NodeId(), "%s needs at least one input and one output schema", CopyByNameClass)
	}
	n := len(in)
	if len(out) < n {
		n = len(out)
	}
	c.mappings = make([]*CopyByNameMapping, n)
	for i := 0; i < n; i++ {
		c.mappings[i] = NewCopyByNameMapping(in[i], out[i])
	}
	return nil
}

// Transform applies the mappings and returns ALL.
func (c *CopyByNameTransform) Transform(in []*types.Record, out []*types.Record) (int, error) {
	if c.freed {
		return 0, types.ErrTransformFreed
	}
	if c.mappings == nil {
		return 0, types.ErrNotInitialized
	}
	c.Metrics().IncrementTotal()
	for i, m := range c.mappings {
		if i < len(in) && i < len(out) && in[i] != nil && out[i] != nil {
			m.Apply(in[i], out[i])
		}
	}
	c.Metrics().IncrementSuccess()
	return types.ALL, nil
}

func (c *CopyByNameTransform) Free() {
	c.mappings = nil
	c.freed = true
}
