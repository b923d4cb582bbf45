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
	"reflect"
	"strings"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/components/base"
	"github.com/rulego/rulego-transform/test"
	"github.com/rulego/rulego-transform/utils/js"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFilter records how the factory built it.
type stubFilter struct {
	base.BaseTransform
	built    string
	source   string
	sourceId string
	executor *js.Executor
	failInit bool
	inited   bool
	freed    bool
}

func (s *stubFilter) Init(configuration types.Configuration, in []*types.RecordSchema, out []*types.RecordSchema) error {
	if s.failInit {
		return errors.New("init refused")
	}
	s.inited = true
	return nil
}

func (s *stubFilter) Free() {
	s.freed = true
}

func (s *stubFilter) IsValid(record *types.Record) (bool, error) {
	return true, nil
}

// notAFilter implements the lifecycle only.
type notAFilter struct {
	base.BaseTransform
}

func stubDescriptor() *TransformDescriptor[types.RecordFilter] {
	return &TransformDescriptor[types.RecordFilter]{
		Kind:               types.KindFilter,
		EntryPoint:         "isValid",
		TransformInterface: InterfaceOf[types.RecordFilter](),
		CompiledBaseType:   reflect.TypeOf(stubFilter{}),
		FromLegacySource: func(config types.Config, sourceId string, source string) (types.RecordFilter, error) {
			return &stubFilter{built: "legacy", source: source, sourceId: sourceId}, nil
		},
		FromInterpretedModern: func(executor *js.Executor, logger types.Logger) types.RecordFilter {
			return &stubFilter{built: "modern", executor: executor, sourceId: executor.Program().SourceId}
		},
	}
}

func stubRegistry(t *testing.T) *NativeRegistry {
	registry := NewNativeRegistry(nil)
	require.Nil(t, registry.Register("Stub", func() types.Transform { return &stubFilter{built: "native"} }))
	require.Nil(t, registry.Register("Refusing", func() types.Transform { return &stubFilter{built: "native", failInit: true} }))
	require.Nil(t, registry.Register("NotAFilter", func() types.Transform { return &notAFilter{} }))
	return registry
}

func newStubFactory(t *testing.T) *TransformFactory[types.RecordFilter] {
	factory := NewTransformFactory(stubDescriptor())
	factory.SetRegistry(stubRegistry(t))
	factory.SetNode(test.NewNode("node1"))
	return factory
}

func TestFactoryDispatch(t *testing.T) {
	tests := []struct {
		name   string
		source string
		class  string
		expect string
	}{
		{"legacy source", "//#CTL1\nfunction isValid() { return true; }", "", "legacy"},
		{"modern source", "//#CTL2\nfunction boolean isValid() { return true; }", "", "modern"},
		{"native source", "class Stub implements RecordFilter {}", "", "native"},
		{"class", "", "Stub", "native"},
		{"source beats class", "//#CTL1\nfunction isValid() { return true; }", "Stub", "legacy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := newStubFactory(t)
			factory.SetTransform(tt.source)
			factory.SetTransformClass(tt.class)
			assert.True(t, factory.IsTransformSpecified())
			f, err := factory.CreateTransform()
			require.Nil(t, err)
			stub := f.(*stubFilter)
			assert.Equal(t, tt.expect, stub.built)
			assert.Equal(t, "node1", stub.NodeId())
		})
	}
}

func TestFactoryUndetectedLanguage(t *testing.T) {
	factory := newStubFactory(t)
	factory.SetTransform("function isValid() { return true; }")
	assert.Equal(t, LanguageUnknown, factory.Language())
	_, err := factory.CreateTransform()
	assert.True(t, errors.Is(err, types.ErrComponentNotReady))
	assert.Contains(t, err.Error(), "can't determine")

	factory.SetLanguage(LanguageLegacy)
	f, err := factory.CreateTransform()
	require.Nil(t, err)
	assert.Equal(t, "legacy", f.(*stubFilter).built)
}

func TestFactoryGeneratesSourceId(t *testing.T) {
	factory := newStubFactory(t)
	factory.SetTransform("//#CTL1\nfunction isValid() { return true; }")
	f, err := factory.CreateTransform()
	require.Nil(t, err)
	_, err = uuid.FromString(f.(*stubFilter).sourceId)
	assert.Nil(t, err)

	factory = newStubFactory(t)
	factory.SetTransform("//#CTL1\nfunction isValid() { return true; }")
	factory.SetSourceID("named")
	f, err = factory.CreateTransform()
	require.Nil(t, err)
	assert.Equal(t, "named", f.(*stubFilter).sourceId)
}

func TestFactoryLanguage(t *testing.T) {
	factory := newStubFactory(t)
	factory.SetTransform("return true;")
	assert.Equal(t, LanguageUnknown, factory.Language())
	_, err := factory.CreateTransform()
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, types.ErrComponentNotReady))
	assert.Contains(t, err.Error(), "node1")

	descriptor := stubDescriptor()
	descriptor.DefaultLanguage = LanguageModern
	factory = NewTransformFactory(descriptor)
	factory.SetTransform("function boolean isValid() { return true; }")
	assert.Equal(t, LanguageModern, factory.Language())

	factory.SetTransform("//#CTL1\nfunction isValid() { return true; }")
	factory.SetLanguage(LanguageModern)
	f, err := factory.CreateTransform()
	require.Nil(t, err)
	assert.Equal(t, "modern", f.(*stubFilter).built)
}

func TestFactoryUnsupportedLanguages(t *testing.T) {
	for _, source := range []string{
		"out.x = ${in.0.x};",
		"class Missing {}",
	} {
		factory := newStubFactory(t)
		factory.SetTransform(source)
		_, err := factory.CreateTransform()
		assert.True(t, errors.Is(err, types.ErrComponentNotReady), source)
	}

	factory := newStubFactory(t)
	factory.SetTransform("true")
	factory.SetLanguage(LanguageExpression)
	_, err := factory.CreateTransform()
	assert.True(t, errors.Is(err, types.ErrComponentNotReady))
}

func TestFactoryNotDefined(t *testing.T) {
	factory := newStubFactory(t)
	factory.SetTransform("   ")
	assert.False(t, factory.IsTransformSpecified())
	_, err := factory.CreateTransform()
	assert.True(t, errors.Is(err, types.ErrTransformNotDefined))
}

func TestFactoryNativeMustImplementKind(t *testing.T) {
	factory := newStubFactory(t)
	factory.SetTransformClass("NotAFilter")
	_, err := factory.CreateTransform()
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "does not implement")
}

func TestCreateAndInit(t *testing.T) {
	factory := newStubFactory(t)
	factory.SetTransformClass("Stub")
	f, err := factory.CreateAndInit(types.Configuration{})
	require.Nil(t, err)
	assert.True(t, f.(*stubFilter).inited)

	var refused *stubFilter
	registry := NewNativeRegistry(nil)
	require.Nil(t, registry.Register("Refusing", func() types.Transform {
		refused = &stubFilter{failInit: true}
		return refused
	}))
	factory.SetRegistry(registry)
	factory.SetTransformClass("Refusing")
	_, err = factory.CreateAndInit(types.Configuration{})
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, types.ErrComponentNotReady))
	assert.True(t, refused.freed)
}

func TestCheckConfig(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		class    string
		valid    bool
		warnings int
	}{
		{"nothing", "", "", false, 0},
		{"class", "", "Stub", true, 0},
		{"missing class", "", "Missing", false, 0},
		{"unknown language", "return true;", "", true, 1},
		{"legacy is not compiled", "//#CTL1\nfunction isValid() { return (; }", "", true, 0},
		{"modern", "//#CTL2\nfunction boolean isValid() { return true; }", "", true, 0},
		{"modern syntax error", "//#CTL2\nfunction boolean isValid() { return (; }", "", false, 0},
		{"native", "class Stub {}", "", true, 0},
		{"missing native", "class Missing {}", "", false, 0},
		{"native of another kind", "class NotAFilter {}", "", false, 0},
		{"class of another kind", "", "NotAFilter", false, 0},
		{"placeholders", "${in.0.x}", "", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := newStubFactory(t)
			factory.SetTransform(tt.source)
			factory.SetTransformClass(tt.class)
			status := factory.CheckConfig()
			assert.Equal(t, tt.valid, status.IsValid(), status.String())
			assert.Equal(t, tt.warnings, len(status.Warnings))
		})
	}
}

func TestConfigurationStatusString(t *testing.T) {
	status := &ConfigurationStatus{}
	status.AddError(errors.New("broken"))
	status.AddWarning("odd %d", 1)
	assert.Equal(t, "ERROR: broken\nWARNING: odd 1\n", status.String())
}

// precompiled returns instances instead of executors.
type precompiled struct {
	result interface{}
}

func (p precompiled) Compile(source string, kind types.TransformKind, baseType reflect.Type, sourceId string) (interface{}, error) {
	if strings.Contains(source, "fail") {
		return nil, &types.ParseError{SourceId: sourceId, Line: 1, Message: "fail"}
	}
	return p.result, nil
}

func TestFactoryCustomCompiler(t *testing.T) {
	factory := newStubFactory(t)
	factory.SetTransform("//#CTL2\nfunction boolean isValid() { return true; }")
	factory.SetCompiler(precompiled{result: &stubFilter{built: "compiled"}})
	f, err := factory.CreateTransform()
	require.Nil(t, err)
	assert.Equal(t, "compiled", f.(*stubFilter).built)

	factory.SetCompiler(precompiled{result: "not a transform"})
	_, err = factory.CreateTransform()
	assert.NotNil(t, err)

	factory.SetTransform("//#CTL2\nfail")
	_, err = factory.CreateTransform()
	var parseErr *types.ParseError
	assert.True(t, errors.As(err, &parseErr))
}
