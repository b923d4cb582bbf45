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

package partition

import (
	"errors"
	"testing"

	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPartition(t *testing.T, configuration types.Configuration, partitions int) types.PartitionFunction {
	p, err := NewPartitionFunction(types.NewConfig(), test.NewNode("partition1"), configuration, test.PersonSchema, partitions)
	require.Nil(t, err)
	require.Nil(t, p.PreExecute())
	return p
}

func TestPartitionScripts(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"legacy", "function getOutputPort() { return $in.0.age < 18 ? 0 : 1; }"},
		{"modern", "function integer getOutputPort() {\n\tinteger age = $in.0.age;\n\treturn age < 18 ? 0 : 1;\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPartition(t, types.Configuration{"partitionSource": tt.source}, 2)
			port, err := p.GetOutputPort(test.Person(t, 1, "ann", 30, "Berlin"))
			require.Nil(t, err)
			assert.Equal(t, 1, port)
			port, err = p.GetOutputPort(test.Person(t, 2, "bob", 12, "Paris"))
			require.Nil(t, err)
			assert.Equal(t, 0, port)
			test.Finish(t, p)
		})
	}
}

func TestPartitionOnError(t *testing.T) {
	p := newPartition(t, types.Configuration{"partitionSource": `
function getOutputPort() { return $in.0.city.length; }
function getOutputPortOnError(message, stack) { return 0; }`}, 3)
	record := test.Person(t, 1, "ann", 30, "")
	_ = record.SetByName("city", nil)
	_, err := p.GetOutputPort(record)
	require.NotNil(t, err)
	port, err := p.GetOutputPortOnError(err, record)
	require.Nil(t, err)
	assert.Equal(t, 0, port)
}

func TestPartitionInvalidResult(t *testing.T) {
	p := newPartition(t, types.Configuration{"partitionSource": "function getOutputPort() {}"}, 2)
	_, err := p.GetOutputPort(test.Person(t, 1, "ann", 30, "Berlin"))
	var runtimeErr *types.TransformRuntimeError
	require.True(t, errors.As(err, &runtimeErr))
	assert.Equal(t, FuncGetOutputPort, runtimeErr.Function)
}

func TestRoundRobinPartition(t *testing.T) {
	p := newPartition(t, types.Configuration{}, 3)
	_, ok := p.(*RoundRobinPartition)
	require.True(t, ok)
	var ports []int
	for i := 0; i < 5; i++ {
		port, err := p.GetOutputPort(test.Person(t, int64(i), "x", 1, "y"))
		require.Nil(t, err)
		ports = append(ports, port)
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1}, ports)

	require.Nil(t, p.PreExecute())
	port, _ := p.GetOutputPort(test.Person(t, 9, "x", 1, "y"))
	assert.Equal(t, 0, port)
}

func TestHashPartition(t *testing.T) {
	p := newPartition(t, types.Configuration{"partitionKey": "city; name"}, 4)
	_, ok := p.(*HashPartition)
	require.True(t, ok)

	first, err := p.GetOutputPort(test.Person(t, 1, "ann", 30, "Berlin"))
	require.Nil(t, err)
	again, err := p.GetOutputPort(test.Person(t, 2, "ann", 50, "Berlin"))
	require.Nil(t, err)
	assert.Equal(t, first, again)
	assert.True(t, first >= 0 && first < 4)

	seen := map[int]bool{}
	for i, city := range []string{"Berlin", "Paris", "Rome", "Oslo", "Lima", "Kyiv", "Bern", "Riga"} {
		port, err := p.GetOutputPort(test.Person(t, int64(i), "ann", 1, city))
		require.Nil(t, err)
		seen[port] = true
	}
	assert.True(t, len(seen) > 1)

	_, err = NewPartitionFunction(types.NewConfig(), test.NewNode("partition1"),
		types.Configuration{"partitionKey": "country"}, test.PersonSchema, 2)
	assert.True(t, errors.Is(err, types.ErrComponentNotReady))
}

func TestPartitionConfigurationErrors(t *testing.T) {
	_, err := NewPartitionFunction(types.NewConfig(), test.NewNode("partition1"), types.Configuration{}, test.PersonSchema, 0)
	assert.True(t, errors.Is(err, types.ErrComponentNotReady))

	_, err = NewPartitionFunction(types.NewConfig(), test.NewNode("partition1"),
		types.Configuration{"partitionClass": "RangePartition"}, test.PersonSchema, 2)
	assert.True(t, errors.Is(err, types.ErrComponentNotReady))

	_, err = NewPartitionFunction(types.NewConfig(), test.NewNode("partition1"),
		types.Configuration{"partitionSource": "function transform() { return 0; }"}, test.PersonSchema, 2)
	assert.True(t, errors.Is(err, types.ErrComponentNotReady))
}

func TestParseKey(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, ParseKey(" a,b ; c;"))
	assert.Nil(t, ParseKey(""))
}
