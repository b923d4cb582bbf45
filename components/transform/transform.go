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

// Package transform implements the row-transform kind: Transform(in, out) returning
// ALL, SKIP, a port index or a user error code, built from a native Go type or
// legacy or modern script source. It also provides CopyByName, the name-based
// field mapper used when no hand-written mapping is needed, and Reformat,
// which drives a transform the way a reformat node does.
package transform

import (
	"reflect"

	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/components/base"
	"github.com/rulego/rulego-transform/engine"
	"github.com/rulego/rulego-transform/utils/js"
	"github.com/rulego/rulego-transform/utils/maps"
)

// FuncTransform is the entry point of transform scripts.
const FuncTransform = "transform"

// AttributeTransform is the configuration key of transform source.
const AttributeTransform = "transform"

// Descriptor is the capability table of row transforms.
var Descriptor = &engine.TransformDescriptor[types.RecordTransform]{
	Kind:               types.KindTransform,
	EntryPoint:         FuncTransform,
	TransformInterface: engine.InterfaceOf[types.RecordTransform](),
	CompiledBaseType:   reflect.TypeOf(CompiledTransform{}),
	FromLegacySource: func(config types.Config, sourceId string, source string) (types.RecordTransform, error) {
		executor, err := base.NewExecutor(config, sourceId, source, js.DialectLegacy)
		if err != nil {
			return nil, err
		}
		return NewScriptTransform(executor, config.Logger), nil
	},
	FromInterpretedModern: func(executor *js.Executor, logger types.Logger) types.RecordTransform {
		return NewScriptTransform(executor, logger)
	},
}

// CompiledTransform is the base of transforms compiled from modern source and of native
// transforms, which embed it and implement Transform.
type CompiledTransform struct {
	base.BaseTransform
}

// TransformOnError returns cause, so a failed Transform stops the run unless overridden.
func (c *CompiledTransform) TransformOnError(cause error, in []*types.Record, out []*types.Record) (int, error) {
	return 0, cause
}

// TransformConfiguration is the node-level configuration of a row transform.
type TransformConfiguration struct {
	// Transform is the transform source.
	Transform string
	// TransformClass is the name of a registered native transform, used when Transform is empty.
	TransformClass string
	// Language pins the language of Transform, detected when empty.
	Language string
	// SourceId names the compiled program, generated when empty.
	SourceId string
	// ErrorActions maps user error codes to STOP or CONTINUE, see engine.CreateErrorActions.
	ErrorActions string
}

// NewRecordTransform creates and initializes the transform configured by configuration,
// mapping in records onto out records.
func NewRecordTransform(config types.Config, node types.Node, configuration types.Configuration,
	in []*types.RecordSchema, out []*types.RecordSchema) (types.RecordTransform, error) {
	transformConfig, err := decodeConfiguration(node, configuration)
	if err != nil {
		return nil, err
	}
	factory := engine.NewTransformFactory(Descriptor)
	factory.SetConfig(config)
	factory.SetNode(node)
	factory.SetAttributeName(AttributeTransform)
	factory.SetTransform(transformConfig.Transform)
	factory.SetTransformClass(transformConfig.TransformClass)
	factory.SetSourceID(transformConfig.SourceId)
	factory.SetInSchemas(in...)
	factory.SetOutSchemas(out...)
	if transformConfig.Language != "" {
		language, ok := engine.ParseLanguage(transformConfig.Language)
		if !ok {
			return nil, types.NewComponentNotReady(nodeId(node), "unknown transform language %q", transformConfig.Language)
		}
		factory.SetLanguage(language)
	}
	return factory.CreateAndInit(configuration)
}

func decodeConfiguration(node types.Node, configuration types.Configuration) (TransformConfiguration, error) {
	var transformConfig TransformConfiguration
	if err := maps.Map2Struct(configuration, &transformConfig); err != nil {
		return transformConfig, types.WrapComponentNotReady(nodeId(node), err, "invalid transform configuration")
	}
	if transformConfig.ErrorActions == "" {
		transformConfig.ErrorActions = engine.DefaultErrorActions
	}
	if err := engine.CheckErrorActions(transformConfig.ErrorActions); err != nil {
		return transformConfig, types.WrapComponentNotReady(nodeId(node), err, "invalid errorActions")
	}
	return transformConfig, nil
}

func nodeId(node types.Node) string {
	if node == nil {
		return ""
	}
	return node.Id()
}
