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

// Package generate implements the row-generator kind: Generate(out) fills output
// records without input and returns ALL, SKIP, a port index or a user error code.
// A generate script that returns nothing produced a record for every port.
//
// DataGenerator drives a generator for a fixed number of cycles:
//
//	{
//	  "generate": "function generate() { $out.0.id = ++seq; }",
//	  "recordsNumber": 100
//	}
package generate

import (
	"reflect"

	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/components/base"
	"github.com/rulego/rulego-transform/engine"
	"github.com/rulego/rulego-transform/utils/js"
	"github.com/rulego/rulego-transform/utils/maps"
)

// FuncGenerate is the entry point of generate scripts.
const FuncGenerate = "generate"

// AttributeGenerate is the configuration key of generate source.
const AttributeGenerate = "generate"

// Descriptor is the capability table of generators.
var Descriptor = &engine.TransformDescriptor[types.RecordGenerate]{
	Kind:               types.KindGenerate,
	EntryPoint:         FuncGenerate,
	TransformInterface: engine.InterfaceOf[types.RecordGenerate](),
	CompiledBaseType:   reflect.TypeOf(CompiledGenerate{}),
	FromLegacySource: func(config types.Config, sourceId string, source string) (types.RecordGenerate, error) {
		executor, err := base.NewExecutor(config, sourceId, source, js.DialectLegacy)
		if err != nil {
			return nil, err
		}
		return NewScriptGenerate(executor, config.Logger), nil
	},
	FromInterpretedModern: func(executor *js.Executor, logger types.Logger) types.RecordGenerate {
		return NewScriptGenerate(executor, logger)
	},
}

// CompiledGenerate is the base of native generators, which embed it and implement Generate.
type CompiledGenerate struct {
	base.BaseTransform
}

// GenerateOnError returns cause.
func (c *CompiledGenerate) GenerateOnError(cause error, out []*types.Record) (int, error) {
	return 0, cause
}

// GenerateConfiguration is the node-level configuration of a generator.
type GenerateConfiguration struct {
	Generate      string
	GenerateClass string
	Language      string
	SourceId      string
	// ErrorActions maps user error codes to STOP or CONTINUE, see engine.CreateErrorActions.
	ErrorActions string
	// RecordsNumber is the number of Generate calls of a DataGenerator run, -1 for one.
	RecordsNumber int
}

// NewRecordGenerate creates and initializes the generator configured by configuration.
func NewRecordGenerate(config types.Config, node types.Node, configuration types.Configuration, out []*types.RecordSchema) (types.RecordGenerate, error) {
	generateConfig, err := decodeConfiguration(node, configuration)
	if err != nil {
		return nil, err
	}
	factory := engine.NewTransformFactory(Descriptor)
	factory.SetConfig(config)
	factory.SetNode(node)
	factory.SetAttributeName(AttributeGenerate)
	factory.SetTransform(generateConfig.Generate)
	factory.SetTransformClass(generateConfig.GenerateClass)
	factory.SetSourceID(generateConfig.SourceId)
	factory.SetOutSchemas(out...)
	if generateConfig.Language != "" {
		language, ok := engine.ParseLanguage(generateConfig.Language)
		if !ok {
			return nil, types.NewComponentNotReady(nodeId(node), "unknown generate language %q", generateConfig.Language)
		}
		factory.SetLanguage(language)
	}
	return factory.CreateAndInit(configuration)
}

func decodeConfiguration(node types.Node, configuration types.Configuration) (GenerateConfiguration, error) {
	generateConfig := GenerateConfiguration{RecordsNumber: -1}
	if err := maps.Map2Struct(configuration, &generateConfig); err != nil {
		return generateConfig, types.WrapComponentNotReady(nodeId(node), err, "invalid generate configuration")
	}
	if generateConfig.ErrorActions == "" {
		generateConfig.ErrorActions = engine.DefaultErrorActions
	}
	if err := engine.CheckErrorActions(generateConfig.ErrorActions); err != nil {
		return generateConfig, types.WrapComponentNotReady(nodeId(node), err, "invalid errorActions")
	}
	return generateConfig, nil
}

func nodeId(node types.Node) string {
	if node == nil {
		return ""
	}
	return node.Id()
}
