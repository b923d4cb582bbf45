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
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/utils/js"
	"github.com/rulego/rulego-transform/utils/str"
)

// ConfigurationStatus collects the problems found by CheckConfig.
type ConfigurationStatus struct {
	Errors   []error
	Warnings []string
}

// IsValid reports whether no error was found. Warnings do not count.
func (s *ConfigurationStatus) IsValid() bool {
	return len(s.Errors) == 0
}

// AddError records a problem preventing the transform from being created.
func (s *ConfigurationStatus) AddError(err error) {
	s.Errors = append(s.Errors, err)
}

// AddWarning records a problem that may still fail at init.
func (s *ConfigurationStatus) AddWarning(format string, args ...interface{}) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

func (s *ConfigurationStatus) String() string {
	var sb strings.Builder
	for _, err := range s.Errors {
		sb.WriteString("ERROR: ")
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	for _, w := range s.Warnings {
		sb.WriteString("WARNING: ")
		sb.WriteString(w)
		sb.WriteString("\n")
	}
	return sb.String()
}

// TransformFactory builds ready-to-run instances of one transform kind from source text
// or a native name. A factory belongs to one node and is used from one goroutine.
type TransformFactory[T types.Transform] struct {
	descriptor    *TransformDescriptor[T]
	config        types.Config
	source        string
	className     string
	sourceId      string
	node          types.Node
	graphContext  types.GraphContext
	attributeName string
	inSchemas     []*types.RecordSchema
	outSchemas    []*types.RecordSchema
	language      Language
	compiler      Compiler
	registry      *NativeRegistry
}

// NewTransformFactory creates a factory for the kind described by descriptor,
// using the default config, the interpreted compiler and the default native registry.
func NewTransformFactory[T types.Transform](descriptor *TransformDescriptor[T]) *TransformFactory[T] {
	return &TransformFactory[T]{
		descriptor:    descriptor,
		config:        types.NewConfig(),
		registry:      Natives,
		attributeName: "transform",
	}
}

// SetTransform sets the source text. Source takes priority over a native name.
func (f *TransformFactory[T]) SetTransform(source string) {
	f.source = source
}

// SetTransformClass sets the name of a native registered in the registry.
func (f *TransformFactory[T]) SetTransformClass(name string) {
	f.className = strings.TrimSpace(name)
}

// SetSourceID names the compiled program. An empty id is replaced by a generated UUID.
func (f *TransformFactory[T]) SetSourceID(sourceId string) {
	f.sourceId = sourceId
}

// SetNode sets the node owning the created instances.
func (f *TransformFactory[T]) SetNode(node types.Node) {
	f.node = node
}

// SetGraphContext sets the graph context bound to the created instances.
func (f *TransformFactory[T]) SetGraphContext(ctx types.GraphContext) {
	f.graphContext = ctx
}

// SetAttributeName sets the configuration attribute the source came from, used in messages.
func (f *TransformFactory[T]) SetAttributeName(name string) {
	f.attributeName = name
}

// SetInSchemas sets the input schemas passed to Init.
func (f *TransformFactory[T]) SetInSchemas(schemas ...*types.RecordSchema) {
	f.inSchemas = schemas
}

// SetOutSchemas sets the output schemas passed to Init.
func (f *TransformFactory[T]) SetOutSchemas(schemas ...*types.RecordSchema) {
	f.outSchemas = schemas
}

// SetLanguage pins the language, skipping detection. LanguageUnknown restores detection.
func (f *TransformFactory[T]) SetLanguage(language Language) {
	f.language = language
}

// SetCompiler replaces the compiler of modern source.
func (f *TransformFactory[T]) SetCompiler(compiler Compiler) {
	f.compiler = compiler
}

// SetRegistry replaces the native registry.
func (f *TransformFactory[T]) SetRegistry(registry *NativeRegistry) {
	f.registry = registry
}

// SetConfig replaces the config passed to script runtimes.
func (f *TransformFactory[T]) SetConfig(config types.Config) {
	f.config = config
}

// IsTransformSpecified reports whether source or a native name is set.
func (f *TransformFactory[T]) IsTransformSpecified() bool {
	return !str.IsEmpty(f.source) || f.className != ""
}

// Language returns the language CreateTransform uses for the configured source.
func (f *TransformFactory[T]) Language() Language {
	if f.language != LanguageUnknown {
		return f.language
	}
	if language := GuessLanguage(f.source); language != LanguageUnknown {
		return language
	}
	return f.descriptor.DefaultLanguage
}

// CreateTransform creates an uninitialized instance bound to the node.
func (f *TransformFactory[T]) CreateTransform() (T, error) {
	var t T
	var err error
	switch {
	case !str.IsEmpty(f.source):
		t, err = f.createFromSource()
	case f.className != "":
		t, err = f.createFromClass(f.className)
	default:
		err = types.ErrTransformNotDefined
	}
	if err != nil {
		var zero T
		return zero, f.notReady(err)
	}
	if f.node != nil {
		t.SetNode(f.node)
	}
	if f.graphContext != nil {
		t.SetGraphContext(f.graphContext)
	}
	return t, nil
}

// CreateAndInit creates an instance and initializes it with configuration and the schemas.
// An instance failing Init is freed.
func (f *TransformFactory[T]) CreateAndInit(configuration types.Configuration) (T, error) {
	t, err := f.CreateTransform()
	if err != nil {
		return t, err
	}
	if err := t.Init(configuration, f.inSchemas, f.outSchemas); err != nil {
		t.Free()
		var zero T
		return zero, f.notReady(err)
	}
	return t, nil
}

// CheckConfig validates the configuration without creating an instance.
// Only modern source is compiled, an undetectable language is a warning.
func (f *TransformFactory[T]) CheckConfig() *ConfigurationStatus {
	status := &ConfigurationStatus{}
	if !f.IsTransformSpecified() {
		status.AddError(f.notReady(types.ErrTransformNotDefined))
		return status
	}
	if str.IsEmpty(f.source) {
		f.checkNative(status, f.className)
		return status
	}
	language := f.Language()
	switch language {
	case LanguageUnknown:
		status.AddWarning("can't determine the language of %s", f.attributeName)
	case LanguageModern:
		compiled, err := f.compilerOrDefault().Compile(f.prepare(language), f.descriptor.Kind, f.descriptor.CompiledBaseType, f.getSourceId())
		if err != nil {
			status.AddError(f.notReady(err))
		} else if t, ok := compiled.(T); ok {
			t.Free()
		}
	case LanguageNative:
		name, _ := NativeClassName(f.source)
		f.checkNative(status, name)
	case LanguageNativePreprocess:
		status.AddError(f.notReady(errUnsupported(language)))
	case LanguageExpression:
		if f.descriptor.FromExpression == nil {
			status.AddError(f.notReady(errUnsupported(language)))
		}
	}
	return status
}

// checkNative reports a native that is not registered or does not implement the kind.
func (f *TransformFactory[T]) checkNative(status *ConfigurationStatus, name string) {
	if !f.registryOrDefault().Has(name) {
		status.AddError(f.notReady(fmt.Errorf("native not found. name=%s", name)))
		return
	}
	instance, err := f.registryOrDefault().New(name)
	if err == nil {
		_, err = f.descriptor.FromNative(name, instance)
	}
	if err != nil {
		status.AddError(f.notReady(err))
	}
}

func (f *TransformFactory[T]) createFromSource() (T, error) {
	language := f.Language()
	constructor, ok := f.constructors()[language]
	if !ok {
		var zero T
		if language == LanguageUnknown {
			return zero, errors.New("can't determine transformation code language")
		}
		return zero, errUnsupported(language)
	}
	return constructor(f.prepare(language))
}

// constructors is the language dispatch table.
func (f *TransformFactory[T]) constructors() map[Language]func(source string) (T, error) {
	table := map[Language]func(source string) (T, error){
		LanguageNative: func(source string) (T, error) {
			name, ok := NativeClassName(source)
			if !ok {
				var zero T
				return zero, errors.New("native source declares no class")
			}
			return f.createFromClass(name)
		},
		LanguageModern: f.createFromModern,
	}
	if f.descriptor.FromLegacySource != nil {
		table[LanguageLegacy] = func(source string) (T, error) {
			return f.descriptor.FromLegacySource(f.config, f.getSourceId(), source)
		}
	}
	if f.descriptor.FromExpression != nil {
		table[LanguageExpression] = func(source string) (T, error) {
			return f.descriptor.FromExpression(f.config, f.getSourceId(), source)
		}
	}
	return table
}

func (f *TransformFactory[T]) createFromModern(source string) (T, error) {
	var zero T
	compiled, err := f.compilerOrDefault().Compile(source, f.descriptor.Kind, f.descriptor.CompiledBaseType, f.getSourceId())
	if err != nil {
		return zero, err
	}
	if executor, ok := compiled.(*js.Executor); ok {
		if f.descriptor.FromInterpretedModern == nil {
			return zero, errUnsupported(LanguageModern)
		}
		return f.descriptor.FromInterpretedModern(executor, f.config.Logger), nil
	}
	if t, ok := compiled.(T); ok {
		return t, nil
	}
	return zero, fmt.Errorf("compiler returned %T, expected %s", compiled, f.descriptor.interfaceName())
}

func (f *TransformFactory[T]) createFromClass(name string) (T, error) {
	instance, err := f.registryOrDefault().New(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return f.descriptor.FromNative(name, instance)
}

func (f *TransformFactory[T]) prepare(language Language) string {
	if f.descriptor.PrepareSource != nil {
		return f.descriptor.PrepareSource(language, f.source)
	}
	return f.source
}

func (f *TransformFactory[T]) getSourceId() string {
	if f.sourceId == "" {
		f.sourceId = uuid.Must(uuid.NewV4()).String()
	}
	return f.sourceId
}

func (f *TransformFactory[T]) compilerOrDefault() Compiler {
	if f.compiler == nil {
		f.compiler = NewInterpretedCompiler(f.config)
	}
	return f.compiler
}

func (f *TransformFactory[T]) registryOrDefault() *NativeRegistry {
	if f.registry == nil {
		return Natives
	}
	return f.registry
}

func (f *TransformFactory[T]) notReady(err error) error {
	var notReady *types.ComponentNotReadyError
	if errors.As(err, &notReady) && notReady.Component != "" {
		return err
	}
	component := ""
	if f.node != nil {
		component = f.node.Id()
	}
	return types.WrapComponentNotReady(component, err, "%s %s", f.descriptor.Kind, f.attributeName)
}

func errUnsupported(language Language) error {
	return fmt.Errorf("language %s is not supported", language)
}
