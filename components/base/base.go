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

// Package base provides the building blocks shared by every transform kind:
// BaseTransform for native implementations and ScriptAdapter for interpreted ones.
package base

import (
	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/api/types/metrics"
)

// BaseTransform implements the lifecycle of types.Transform with no-op steps.
// Native transforms embed it, or a kind's Compiled base type, and implement
// the per-record operation.
type BaseTransform struct {
	node         types.Node
	graphContext types.GraphContext
	message      string
	metrics      *metrics.TransformMetrics
}

func (b *BaseTransform) SetNode(node types.Node) {
	b.node = node
}

// Node returns the owning node, may be nil.
func (b *BaseTransform) Node() types.Node {
	return b.node
}

// NodeId returns the id of the owning node, or "".
func (b *BaseTransform) NodeId() string {
	if b.node == nil {
		return ""
	}
	return b.node.Id()
}

func (b *BaseTransform) SetGraphContext(ctx types.GraphContext) {
	b.graphContext = ctx
}

// GraphContext returns the graph context, may be nil.
func (b *BaseTransform) GraphContext() types.GraphContext {
	return b.graphContext
}

func (b *BaseTransform) Init(configuration types.Configuration, in []*types.RecordSchema, out []*types.RecordSchema) error {
	return nil
}

// PreExecute clears the message of the previous run.
func (b *BaseTransform) PreExecute() error {
	b.message = ""
	return nil
}

func (b *BaseTransform) PostExecute(status types.RunStatus) error {
	return nil
}

func (b *BaseTransform) GetMessage() string {
	return b.message
}

// SetMessage stores the error message of the current run.
func (b *BaseTransform) SetMessage(message string) {
	b.message = message
}

func (b *BaseTransform) Free() {
}

// Metrics returns the call counters of the instance, created on first use.
func (b *BaseTransform) Metrics() *metrics.TransformMetrics {
	if b.metrics == nil {
		b.metrics = metrics.NewTransformMetrics()
	}
	return b.metrics
}
