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

// Package filter implements the record filter kind: the IsValid contract built from
// a native Go type, legacy or modern script source, or an expr-lang expression.
//
// 过滤器配置示例 configuration example:
//
//	{
//	  "filterExpression": "$in.0.age >= 18 && $in.0.city != null",
//	  "language": "modern"
//	}
//
// A filterExpression that declares no function is a bare boolean expression,
// wrapped into `function boolean isValid() { return (...); }`.
package filter

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/components/base"
	"github.com/rulego/rulego-transform/engine"
	"github.com/rulego/rulego-transform/utils/js"
	"github.com/rulego/rulego-transform/utils/maps"
)

// FuncIsValid is the entry point of filter scripts.
const FuncIsValid = "isValid"

// AttributeFilterExpression is the configuration key of filter source.
const AttributeFilterExpression = "filterExpression"

var declarationPattern = regexp.MustCompile(`\bfunction\s+(?:[a-z]+\s+)?[A-Za-z_$][\w$]*\s*\(`)

// Descriptor is the capability table of filters.
var Descriptor = &engine.TransformDescriptor[types.RecordFilter]{
	Kind:               types.KindFilter,
	EntryPoint:         FuncIsValid,
	TransformInterface: engine.InterfaceOf[types.RecordFilter](),
	CompiledBaseType:   reflect.TypeOf(CompiledFilter{}),
	DefaultLanguage:    engine.LanguageModern,
	FromLegacySource: func(config types.Config, sourceId string, source string) (types.RecordFilter, error) {
		executor, err := base.NewExecutor(config, sourceId, source, js.DialectLegacy)
		if err != nil {
			return nil, err
		}
		return NewScriptFilter(executor, config.Logger), nil
	},
	FromInterpretedModern: func(executor *js.Executor, logger types.Logger) types.RecordFilter {
		return NewScriptFilter(executor, logger)
	},
	FromExpression: func(config types.Config, sourceId string, source string) (types.RecordFilter, error) {
		return NewExprFilter(config, sourceId, source)
	},
	PrepareSource: wrapExpression,
}

// CompiledFilter is the base of filters compiled from modern source and of native filters,
// which embed it and implement IsValid.
type CompiledFilter struct {
	base.BaseTransform
}

// FilterConfiguration 过滤器节点配置
// FilterConfiguration is the node-level configuration of a filter.
type FilterConfiguration struct {
	// FilterExpression is the filter source, script or expression.
	FilterExpression string
	// FilterClass is the name of a registered native filter, used when FilterExpression is empty.
	FilterClass string
	// Language pins the language of FilterExpression, detected when empty.
	Language string
	// SourceId names the compiled program, generated when empty.
	SourceId string
}

// NewRecordFilter creates and initializes the filter configured by configuration for
// records of schema.
func NewRecordFilter(config types.Config, node types.Node, configuration types.Configuration, schema *types.RecordSchema) (types.RecordFilter, error) {
	var filterConfig FilterConfiguration
	if err := maps.Map2Struct(configuration, &filterConfig); err != nil {
		return nil, types.WrapComponentNotReady(nodeId(node), err, "invalid filter configuration")
	}
	factory := engine.NewTransformFactory(Descriptor)
	factory.SetConfig(config)
	factory.SetNode(node)
	factory.SetAttributeName(AttributeFilterExpression)
	factory.SetTransform(filterConfig.FilterExpression)
	factory.SetTransformClass(filterConfig.FilterClass)
	factory.SetSourceID(filterConfig.SourceId)
	factory.SetInSchemas(schema)
	if filterConfig.Language != "" {
		language, ok := engine.ParseLanguage(filterConfig.Language)
		if !ok {
			return nil, types.NewComponentNotReady(nodeId(node), "unknown filter language %q", filterConfig.Language)
		}
		factory.SetLanguage(language)
	}
	return factory.CreateAndInit(configuration)
}

// wrapExpression turns a bare boolean script expression into an isValid function.
func wrapExpression(language engine.Language, source string) string {
	if language != engine.LanguageModern && language != engine.LanguageLegacy {
		return source
	}
	if declarationPattern.MatchString(source) {
		return source
	}
	expression := strings.TrimRight(strings.TrimSpace(source), "; \t\r\n")
	header := "function isValid() {"
	if language == engine.LanguageModern {
		header = "function boolean isValid() {"
	}
	return header + "\n\treturn (\n" + expression + "\n\t);\n}"
}

func nodeId(node types.Node) string {
	if node == nil {
		return ""
	}
	return node.Id()
}
