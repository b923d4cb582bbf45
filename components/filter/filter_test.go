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

package filter

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/engine"
	"github.com/rulego/rulego-transform/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFilter(t *testing.T, configuration types.Configuration) types.RecordFilter {
	f, err := NewRecordFilter(types.NewConfig(), test.NewNode("filter1"), configuration, test.PersonSchema)
	require.Nil(t, err)
	require.Nil(t, f.PreExecute())
	return f
}

func TestFilterLanguages(t *testing.T) {
	tests := []struct {
		name          string
		configuration types.Configuration
	}{
		{"modern bare expression", types.Configuration{
			"filterExpression": "$in.0.age >= 18",
		}},
		{"modern expression with marker", types.Configuration{
			"filterExpression": "//#CTL2\n$in.0.age >= 18;",
		}},
		{"modern function", types.Configuration{
			"filterExpression": "function boolean isValid() {\n\treturn $in.0.age >= 18;\n}",
		}},
		{"legacy function", types.Configuration{
			"filterExpression": "//#CTL1\nfunction isValid() { return $in.0.age >= 18; }",
		}},
		{"legacy bare expression", types.Configuration{
			"filterExpression": "$in.0.age >= 18",
			"language":         "legacy",
		}},
		{"expr", types.Configuration{
			"filterExpression": "age >= 18",
			"language":         "expr",
		}},
		{"expr with record reference", types.Configuration{
			"filterExpression": "$in.0.age >= 18 && records[0].name != nil",
			"language":         "expr",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFilter(t, tt.configuration)
			valid, err := f.IsValid(test.Person(t, 1, "ann", 30, "Berlin"))
			require.Nil(t, err)
			assert.True(t, valid)
			valid, err = f.IsValid(test.Person(t, 2, "bob", 12, "Paris"))
			require.Nil(t, err)
			assert.False(t, valid)
			test.Finish(t, f)
		})
	}
}

func TestFilterGlobalState(t *testing.T) {
	f := newFilter(t, types.Configuration{
		"filterExpression": `//#CTL2
integer seen = 0;
function boolean isValid() {
	seen = seen + 1;
	return seen % 2 == 0;
}`,
	})
	var results []bool
	for i := 0; i < 4; i++ {
		valid, err := f.IsValid(test.Person(t, int64(i), "x", 1, "y"))
		require.Nil(t, err)
		results = append(results, valid)
	}
	assert.Equal(t, []bool{false, true, false, true}, results)
}

func TestFilterProperties(t *testing.T) {
	config := types.NewConfig(types.WithProperties(map[string]string{"city": "Berlin"}))
	for _, configuration := range []types.Configuration{
		{"filterExpression": "$in.0.city == global.city"},
		{"filterExpression": "city == global.city", "language": "expr"},
	} {
		f, err := NewRecordFilter(config, test.NewNode("filter1"), configuration, test.PersonSchema)
		require.Nil(t, err)
		valid, err := f.IsValid(test.Person(t, 1, "ann", 30, "Berlin"))
		require.Nil(t, err)
		assert.True(t, valid)
	}
}

func TestFilterReturnType(t *testing.T) {
	modern := newFilter(t, types.Configuration{
		"filterExpression": "//#CTL2\nfunction isValid() { return 'yes'; }",
	})
	_, err := modern.IsValid(test.Person(t, 1, "ann", 30, "Berlin"))
	var runtimeErr *types.TransformRuntimeError
	require.True(t, errors.As(err, &runtimeErr))
	assert.Equal(t, FuncIsValid, runtimeErr.Function)
	assert.Equal(t, "boolean", runtimeErr.Expected)
	assert.Equal(t, "yes", runtimeErr.Actual)
	assert.Equal(t, err.Error(), modern.GetMessage())
	assert.Equal(t, int64(1), modern.(*ScriptFilter).Metrics().Get().Failed)

	// the next run starts with an empty message
	require.Nil(t, modern.PreExecute())
	assert.Equal(t, "", modern.GetMessage())

	legacy := newFilter(t, types.Configuration{
		"filterExpression": "//#TL\nfunction isValid() { return 'true'; }",
	})
	valid, err := legacy.IsValid(test.Person(t, 1, "ann", 30, "Berlin"))
	require.Nil(t, err)
	assert.True(t, valid)
}

func TestFilterDeclaredReturnType(t *testing.T) {
	_, err := NewRecordFilter(types.NewConfig(), test.NewNode("filter1"), types.Configuration{
		"filterExpression": "function integer isValid() { return 1; }",
	}, test.PersonSchema)
	assert.True(t, errors.Is(err, types.ErrComponentNotReady))
	assert.True(t, strings.Contains(err.Error(), "boolean"))
}

func TestFilterRuntimeError(t *testing.T) {
	f := newFilter(t, types.Configuration{
		"filterExpression": "function boolean isValid() { return $in.0.name.missing.value; }",
	})
	_, err := f.IsValid(test.Person(t, 1, "ann", 30, "Berlin"))
	var runtimeErr *types.TransformRuntimeError
	require.True(t, errors.As(err, &runtimeErr))
	assert.Equal(t, "", runtimeErr.Expected)
	assert.NotNil(t, runtimeErr.Err)
	assert.NotEqual(t, "", f.GetMessage())
}

func TestFilterLifecycle(t *testing.T) {
	factory := engine.NewTransformFactory(Descriptor)
	factory.SetTransform("$in.0.age > 1")
	f, err := factory.CreateTransform()
	require.Nil(t, err)

	_, err = f.IsValid(test.Person(t, 1, "ann", 30, "Berlin"))
	assert.True(t, errors.Is(err, types.ErrComponentNotReady))
	assert.True(t, errors.Is(err, types.ErrNotInitialized))

	require.Nil(t, f.Init(nil, []*types.RecordSchema{test.PersonSchema}, nil))
	valid, err := f.IsValid(test.Person(t, 1, "ann", 30, "Berlin"))
	require.Nil(t, err)
	assert.True(t, valid)

	f.Free()
	_, err = f.IsValid(test.Person(t, 1, "ann", 30, "Berlin"))
	assert.Equal(t, types.ErrTransformFreed, err)

	exprFilter, err := NewExprFilter(types.NewConfig(), "expr", "age > 1")
	require.Nil(t, err)
	_, err = exprFilter.IsValid(test.Person(t, 1, "ann", 30, "Berlin"))
	assert.True(t, errors.Is(err, types.ErrNotInitialized))
	exprFilter.Free()
	_, err = exprFilter.IsValid(test.Person(t, 1, "ann", 30, "Berlin"))
	assert.Equal(t, types.ErrTransformFreed, err)
}

func TestFilterHooks(t *testing.T) {
	logger := &test.BufferLogger{}
	config := types.NewConfig(types.WithLogger(logger))
	f, err := NewRecordFilter(config, test.NewNode("filter1"), types.Configuration{
		"filterExpression": `//#CTL2
integer runs = 0;
string last = "";
function void preExecute() { runs = runs + 1; }
function string getMessage() { return last; }
function boolean isValid() {
	if ($in.0.age == null) { last = "age missing in run " + runs; return false; }
	return true;
}`,
	}, test.PersonSchema)
	require.Nil(t, err)
	require.Nil(t, f.PreExecute())
	valid, err := f.IsValid(test.NewRecord(t, test.PersonSchema, int64(1), "ann"))
	require.Nil(t, err)
	assert.False(t, valid)
	assert.Equal(t, "age missing in run 1", f.GetMessage())

	_, err = NewRecordFilter(config, test.NewNode("filter2"), types.Configuration{
		"filterExpression": `//#CTL2
function boolean init() { return false; }
function boolean isValid() { return true; }`,
	}, test.PersonSchema)
	assert.True(t, errors.Is(err, types.ErrComponentNotReady))
	assert.True(t, logger.Contains("init() function failed"))
}

func TestFilterConfigurationErrors(t *testing.T) {
	tests := []struct {
		name          string
		configuration types.Configuration
		parseError    bool
	}{
		{"nothing configured", types.Configuration{}, false},
		{"unknown language", types.Configuration{"filterExpression": "true", "language": "cobol"}, false},
		{"syntax error", types.Configuration{"filterExpression": "function boolean isValid() {\n return ((;\n}"}, true},
		{"expr syntax error", types.Configuration{"filterExpression": "age >>> 1", "language": "expr"}, true},
		{"missing entry point", types.Configuration{"filterExpression": "//#CTL2\nfunction boolean check() { return true; }"}, false},
		{"unknown class", types.Configuration{"filterClass": "NoSuchFilter"}, false},
		{"placeholders", types.Configuration{"filterExpression": "return ${in.age} > 1;"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecordFilter(types.NewConfig(), test.NewNode("filter1"), tt.configuration, test.PersonSchema)
			require.NotNil(t, err)
			assert.True(t, errors.Is(err, types.ErrComponentNotReady))
			var parseErr *types.ParseError
			assert.Equal(t, tt.parseError, errors.As(err, &parseErr))
		})
	}
}

func TestFieldFilter(t *testing.T) {
	all := newFilter(t, types.Configuration{
		"filterClass":  FieldFilterName,
		"checkAllKeys": true,
		"fieldNames":   "name, age",
	})
	anyOf := newFilter(t, types.Configuration{
		"filterExpression": "class FieldFilter {}",
		"fieldNames":       "name,age",
	})
	full := test.Person(t, 1, "ann", 30, "Berlin")
	partial := test.NewRecord(t, test.PersonSchema, int64(2), "bob")
	empty := types.NewRecord(test.PersonSchema)

	for _, tt := range []struct {
		filter types.RecordFilter
		record *types.Record
		expect bool
	}{
		{all, full, true},
		{all, partial, false},
		{anyOf, partial, true},
		{anyOf, empty, false},
	} {
		valid, err := tt.filter.IsValid(tt.record)
		require.Nil(t, err)
		assert.Equal(t, tt.expect, valid)
	}
	assert.Equal(t, "filter1", all.(*FieldFilter).NodeId())

	_, err := NewRecordFilter(types.NewConfig(), nil, types.Configuration{
		"filterClass": FieldFilterName,
		"fieldNames":  "salary",
	}, test.PersonSchema)
	assert.True(t, errors.Is(err, types.ErrComponentNotReady))
}

type adultFilter struct {
	CompiledFilter
}

func (f *adultFilter) IsValid(record *types.Record) (bool, error) {
	age, _ := record.GetByName("age")
	return age != nil && age.(int32) >= 18, nil
}

type precompiler struct{}

func (precompiler) Compile(source string, kind types.TransformKind, baseType reflect.Type, sourceId string) (interface{}, error) {
	return &adultFilter{}, nil
}

func TestCompiledFilter(t *testing.T) {
	registry := engine.NewNativeRegistry(engine.Natives)
	require.Nil(t, registry.Register("AdultFilter", func() types.Transform { return &adultFilter{} }))

	factory := engine.NewTransformFactory(Descriptor)
	factory.SetRegistry(registry)
	factory.SetTransformClass("AdultFilter")
	factory.SetInSchemas(test.PersonSchema)
	f, err := factory.CreateAndInit(nil)
	require.Nil(t, err)
	valid, err := f.IsValid(test.Person(t, 1, "ann", 30, "Berlin"))
	require.Nil(t, err)
	assert.True(t, valid)

	factory = engine.NewTransformFactory(Descriptor)
	factory.SetCompiler(precompiler{})
	factory.SetTransform("//#CTL2\nfunction boolean isValid() { return $in.0.age >= 18; }")
	f, err = factory.CreateAndInit(nil)
	require.Nil(t, err)
	_, ok := f.(*adultFilter)
	assert.True(t, ok)

	// the base type compiled filters extend
	assert.Equal(t, reflect.TypeOf(CompiledFilter{}), Descriptor.CompiledBaseType)
}

func TestWrapExpression(t *testing.T) {
	assert.Equal(t, "function boolean isValid() {\n\treturn (\n$in.0.age > 1\n\t);\n}",
		wrapExpression(engine.LanguageModern, "$in.0.age > 1;"))
	assert.Equal(t, "function isValid() {\n\treturn (\n$in.0.age > 1\n\t);\n}",
		wrapExpression(engine.LanguageLegacy, "$in.0.age > 1"))
	declared := "function boolean isValid() { return true; }"
	assert.Equal(t, declared, wrapExpression(engine.LanguageModern, declared))
	assert.Equal(t, "age > 1", wrapExpression(engine.LanguageExpression, "age > 1"))
}

func TestExprFilterRecordReference(t *testing.T) {
	for _, source := range []string{"$in.0.age >= 18", "records[0].age >= 18", "$in.0.name == 'ann' && age > 20"} {
		f, err := NewExprFilter(types.NewConfig(), "adults", source)
		require.Nil(t, err, source)
		require.Nil(t, f.Init(types.Configuration{}, []*types.RecordSchema{test.PersonSchema}, nil))
		valid, err := f.IsValid(test.Person(t, 1, "ann", 30, "Berlin"))
		require.Nil(t, err, source)
		assert.True(t, valid, source)
		valid, err = f.IsValid(test.Person(t, 2, "bob", 12, "Paris"))
		require.Nil(t, err, source)
		assert.False(t, valid, source)
	}
}
