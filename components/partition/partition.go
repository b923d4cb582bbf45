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

// Package partition implements the partition kind: GetOutputPort(record) routes a record
// to one of the output ports. Partition functions come from script source, a registered
// native, or one of the built-in natives chosen from the configuration:
//
//   - HashPartition when partitionKey is set,
//   - RoundRobinPartition otherwise.
package partition

import (
	"reflect"

	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/components/base"
	"github.com/rulego/rulego-transform/engine"
	"github.com/rulego/rulego-transform/utils/js"
	"github.com/rulego/rulego-transform/utils/maps"
)

// FuncGetOutputPort is the entry point of partition scripts.
const FuncGetOutputPort = "getOutputPort"

// AttributePartitionSource is the configuration key of partition source.
const AttributePartitionSource = "partitionSource"

// Descriptor is the capability table of partition functions.
var Descriptor = &engine.TransformDescriptor[types.PartitionFunction]{
	Kind:               types.KindPartition,
	EntryPoint:         FuncGetOutputPort,
	TransformInterface: engine.InterfaceOf[types.PartitionFunction](),
	CompiledBaseType:   reflect.TypeOf(CompiledPartition{}),
	FromLegacySource: func(config types.Config, sourceId string, source string) (types.PartitionFunction, error) {
		executor, err := base.NewExecutor(config, sourceId, source, js.DialectLegacy)
		if err != nil {
			return nil, err
		}
		return NewScriptPartition(executor, config.Logger), nil
	},
	FromInterpretedModern: func(executor *js.Executor, logger types.Logger) types.PartitionFunction {
		return NewScriptPartition(executor, logger)
	},
}

// CompiledPartition is the base of native partition functions.
type CompiledPartition struct {
	base.BaseTransform
}

// GetOutputPortOnError returns cause.
func (c *CompiledPartition) GetOutputPortOnError(cause error, record *types.Record) (int, error) {
	return 0, cause
}

// PartitionConfiguration is the node-level configuration of a partition function.
type PartitionConfiguration struct {
	PartitionSource string
	PartitionClass  string
	Language        string
	SourceId        string
	// PartitionKey lists the key fields of HashPartition, separated by `,` or `;`.
	PartitionKey string
}

// NewPartitionFunction creates and initializes the partition function configured by
// configuration, routing records of schema to ports partitions.
func NewPartitionFunction(config types.Config, node types.Node, configuration types.Configuration,
	schema *types.RecordSchema, partitions int) (types.PartitionFunction, error) {
	var partitionConfig PartitionConfiguration
	if err := maps.Map2Struct(configuration, &partitionConfig); err != nil {
		return nil, types.WrapComponentNotReady(nodeId(node), err, "invalid partition configuration")
	}
	if partitions <= 0 {
		return nil, types.NewComponentNotReady(nodeId(node), "at least one output port is required")
	}
	factory := engine.NewTransformFactory(Descriptor)
	factory.SetConfig(config)
	factory.SetNode(node)
	factory.SetAttributeName(AttributePartitionSource)
	factory.SetTransform(partitionConfig.PartitionSource)
	factory.SetSourceID(partitionConfig.SourceId)
	switch {
	case partitionConfig.PartitionClass != "":
		factory.SetTransformClass(partitionConfig.PartitionClass)
	case partitionConfig.PartitionKey != "":
		factory.SetTransformClass(HashPartitionClass)
	default:
		factory.SetTransformClass(RoundRobinPartitionClass)
	}
	factory.SetInSchemas(schema)
	out := make([]*types.RecordSchema, partitions)
	for i := range out {
		out[i] = schema
	}
	factory.SetOutSchemas(out...)
	if partitionConfig.Language != "" {
		language, ok := engine.ParseLanguage(partitionConfig.Language)
		if !ok {
			return nil, types.NewComponentNotReady(nodeId(node), "unknown partition language %q", partitionConfig.Language)
		}
		factory.SetLanguage(language)
	}
	return factory.CreateAndInit(configuration)
}

func nodeId(node types.Node) string {
	if node == nil {
		return ""
	}
	return node.Id()
}
