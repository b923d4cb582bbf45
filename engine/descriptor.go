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
	"fmt"
	"reflect"

	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/utils/js"
)

// TransformDescriptor is the capability table of one transform kind. The factory selects
// one of its constructors by language instead of dispatching through the instances.
type TransformDescriptor[T types.Transform] struct {
	Kind types.TransformKind
	// EntryPoint is the mandatory script function, e.g. "isValid" or "generate".
	EntryPoint string
	// TransformInterface is the contract T implementations satisfy.
	TransformInterface reflect.Type
	// CompiledBaseType is embedded by implementations a Compiler generates from modern source.
	CompiledBaseType reflect.Type
	// DefaultLanguage is assumed when detection fails. LanguageUnknown reports the failure.
	DefaultLanguage Language
	// FromLegacySource parses and wraps legacy source. Malformed source fails with *types.ParseError.
	FromLegacySource func(config types.Config, sourceId string, source string) (T, error)
	// FromInterpretedModern wraps a ready executor of modern source.
	FromInterpretedModern func(executor *js.Executor, logger types.Logger) T
	// FromExpression builds an expression-language implementation, nil when the kind has none.
	FromExpression func(config types.Config, sourceId string, source string) (T, error)
	// PrepareSource rewrites source of the detected language before construction, may be nil.
	PrepareSource func(language Language, source string) string
}

// FromNative asserts that a native instance implements T.
func (d *TransformDescriptor[T]) FromNative(name string, instance types.Transform) (T, error) {
	t, ok := instance.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("native %s (%T) does not implement %s", name, instance, d.interfaceName())
	}
	return t, nil
}

func (d *TransformDescriptor[T]) interfaceName() string {
	if d.TransformInterface != nil {
		return d.TransformInterface.String()
	}
	return d.Kind.String()
}

// InterfaceOf returns the reflect.Type of interface I.
func InterfaceOf[I any]() reflect.Type {
	return reflect.TypeOf((*I)(nil)).Elem()
}
