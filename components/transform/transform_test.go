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
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/engine"
	"github.com/rulego/rulego-transform/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var summarySchema = types.MustRecordSchema("summary",
	types.NewField("name", types.STRING),
	types.NewField("adult", types.BOOLEAN),
)

type emitted struct {
	port   int
	record *types.Record
}

func collect(list *[]emitted) engine.Output {
	return func(port int, record *types.Record) error {
		*list = append(*list, emitted{port: port, record: record})
		return nil
	}
}

func newTransform(t *testing.T, configuration types.Configuration, out ...*types.RecordSchema) types.RecordTransform {
	if len(out) == 0 {
		out = []*types.RecordSchema{summarySchema}
	}
	x, err := NewRecordTransform(types.NewConfig(), test.NewNode("reformat1"), configuration,
		[]*types.RecordSchema{test.PersonSchema}, out)
	require.Nil(t, err)
	require.Nil(t, x.PreExecute())
	return x
}

func TestTransformLanguages(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"legacy", `function transform() {
	$out.0.name = $in.0.name.toUpperCase();
	$out.0.adult = $in.0.age >= 18;
	return ALL;
}`},
		{"legacy marker", `//#TL
function transform() {
	$out.0.name = $in.0.name.toUpperCase();
	$out.0.adult = $in.0.age >= 18;
	return ALL;
}`},
		{"modern", `//#CTL2
function integer transform() {
	string upper = $in.0.name.toUpperCase();
	$out.0.name = upper;
	$out.0.adult = $in.0.age >= 18;
	return ALL;
}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := newTransform(t, types.Configuration{"transform": tt.source})
			out := []*types.Record{types.NewRecord(summarySchema)}
			code, err := x.Transform([]*types.Record{test.Person(t, 1, "ann", 30, "Berlin")}, out)
			require.Nil(t, err)
			assert.Equal(t, types.ALL, code)
			assert.Equal(t, "ANN", out[0].Get(0))
			assert.Equal(t, true, out[0].Get(1))
			test.Finish(t, x)
		})
	}
}

func TestTransformMustReturnCode(t *testing.T) {
	x := newTransform(t, types.Configuration{"transform": "function transform() { $out.0.name = 'x'; }"})
	_, err := x.Transform([]*types.Record{test.Person(t, 1, "ann", 30, "Berlin")},
		[]*types.Record{types.NewRecord(summarySchema)})
	var runtimeErr *types.TransformRuntimeError
	require.True(t, errors.As(err, &runtimeErr))
	assert.Equal(t, FuncTransform, runtimeErr.Function)
}

func TestTransformOnError(t *testing.T) {
	x := newTransform(t, types.Configuration{"transform": `
function transform() { throw new Error("boom"); }
function transformOnError(message, stack) {
	$out.0.name = message;
	return 0;
}`})
	in := []*types.Record{test.Person(t, 1, "ann", 30, "Berlin")}
	out := []*types.Record{types.NewRecord(summarySchema)}
	cause, err := x.Transform(in, out)
	require.NotNil(t, err)
	assert.Equal(t, 0, cause)

	code, err := x.TransformOnError(err, in, out)
	require.Nil(t, err)
	assert.Equal(t, 0, code)
	name, _ := out[0].GetByName("name")
	assert.True(t, strings.Contains(name.(string), "boom"))

	// without a handler the cause is returned
	plain := newTransform(t, types.Configuration{"transform": "function transform() { return ALL; }"})
	boom := errors.New("boom")
	_, err = plain.TransformOnError(boom, in, out)
	assert.Equal(t, boom, err)
}

func TestTransformLifecycle(t *testing.T) {
	x, err := Descriptor.FromLegacySource(types.NewConfig(), "lifecycle", "function transform() { return ALL; }")
	require.Nil(t, err)
	in := []*types.Record{test.Person(t, 1, "ann", 30, "Berlin")}
	out := []*types.Record{types.NewRecord(summarySchema)}

	_, err = x.Transform(in, out)
	assert.True(t, errors.Is(err, types.ErrNotInitialized))

	test.Start(t, x, []*types.RecordSchema{test.PersonSchema}, []*types.RecordSchema{summarySchema})
	code, err := x.Transform(in, out)
	require.Nil(t, err)
	assert.Equal(t, types.ALL, code)

	test.Finish(t, x)
	_, err = x.Transform(in, out)
	assert.Equal(t, types.ErrTransformFreed, err)
}

func TestTransformConfigurationErrors(t *testing.T) {
	tests := []struct {
		name          string
		configuration types.Configuration
	}{
		{"nothing configured", types.Configuration{}},
		{"undetectable language", types.Configuration{"transform": "$out.0.name = 'x';"}},
		{"unknown language", types.Configuration{"transform": "function transform() {}", "language": "cobol"}},
		{"missing entry point", types.Configuration{"transform": "function generate() { return ALL; }"}},
		{"wrong declared return type", types.Configuration{"transform": "function string transform() { return 'x'; }"}},
		{"unknown class", types.Configuration{"transformClass": "NoSuchTransform"}},
		{"invalid error actions", types.Configuration{"transformClass": CopyByNameClass, "errorActions": "1=RETRY"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecordTransform(types.NewConfig(), test.NewNode("reformat1"), tt.configuration,
				[]*types.RecordSchema{test.PersonSchema}, []*types.RecordSchema{summarySchema})
			require.NotNil(t, err)
			assert.True(t, errors.Is(err, types.ErrComponentNotReady), err.Error())
		})
	}
}

func TestTransformCheckConfig(t *testing.T) {
	factory := engine.NewTransformFactory(Descriptor)
	factory.SetTransform("//#CTL2\nfunction integer transform() { return ALL; }")
	assert.True(t, factory.CheckConfig().IsValid())

	factory.SetTransform("//#CTL2\nfunction integer transform() { return ALL ")
	assert.False(t, factory.CheckConfig().IsValid())
}

func TestReformat(t *testing.T) {
	source := `
function transform() {
	$out.0.name = $in.0.name;
	$out.1.name = $in.0.city;
	if ($in.0.age < 0) {
		return -3;
	}
	if ($in.0.age < 18) {
		return SKIP;
	}
	if ($in.0.city == "Paris") {
		return 1;
	}
	return ALL;
}
function getMessage() {
	return "negative age";
}`
	logger := &test.BufferLogger{}
	config := types.NewConfig(types.WithLogger(logger))
	reformat, err := NewReformat(config, test.NewNode("reformat1"), types.Configuration{
		"transform":    source,
		"errorActions": "-3=CONTINUE;MIN_INT=STOP",
	}, []*types.RecordSchema{test.PersonSchema}, []*types.RecordSchema{summarySchema, summarySchema})
	require.Nil(t, err)
	defer reformat.Free()

	inputs := make(chan []*types.Record, 4)
	inputs <- []*types.Record{test.Person(t, 1, "ann", 30, "Berlin")}
	inputs <- []*types.Record{test.Person(t, 2, "bob", 12, "Berlin")}
	inputs <- []*types.Record{test.Person(t, 3, "eve", 40, "Paris")}
	inputs <- []*types.Record{test.Person(t, 4, "kim", -1, "Rome")}
	close(inputs)

	var list []emitted
	require.Nil(t, reformat.Run(context.Background(), inputs, collect(&list)))
	require.Equal(t, 3, len(list))
	assert.Equal(t, 0, list[0].port)
	assert.Equal(t, "ann", list[0].record.Get(0))
	assert.Equal(t, 1, list[1].port)
	assert.Equal(t, "Berlin", list[1].record.Get(0))
	assert.Equal(t, 1, list[2].port)
	assert.Equal(t, "Paris", list[2].record.Get(0))
	assert.True(t, logger.Contains("negative age"))
}

func TestReformatStop(t *testing.T) {
	reformat, err := NewReformat(types.NewConfig(), test.NewNode("reformat1"), types.Configuration{
		"transform": "function transform() { return -7; }",
	}, []*types.RecordSchema{test.PersonSchema}, []*types.RecordSchema{summarySchema})
	require.Nil(t, err)
	defer reformat.Free()

	err = reformat.Process([]*types.Record{test.Person(t, 1, "ann", 30, "Berlin")}, collect(&[]emitted{}))
	var codeErr *engine.ErrorCodeError
	require.True(t, errors.As(err, &codeErr))
	assert.Equal(t, -7, codeErr.Code)
}

func TestReformatPortOutOfRange(t *testing.T) {
	reformat, err := NewReformat(types.NewConfig(), test.NewNode("reformat1"), types.Configuration{
		"transform": "function transform() { return 3; }",
	}, []*types.RecordSchema{test.PersonSchema}, []*types.RecordSchema{summarySchema})
	require.Nil(t, err)
	err = reformat.Process([]*types.Record{test.Person(t, 1, "ann", 30, "Berlin")}, collect(&[]emitted{}))
	assert.NotNil(t, err)
}

func TestReformatAborted(t *testing.T) {
	reformat, err := NewReformat(types.NewConfig(), test.NewNode("reformat1"), types.Configuration{
		"transformClass": CopyByNameClass,
	}, []*types.RecordSchema{test.PersonSchema}, []*types.RecordSchema{summarySchema})
	require.Nil(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = reformat.Run(ctx, make(chan []*types.Record), collect(&[]emitted{}))
	assert.Equal(t, context.Canceled, err)
}
