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

package test

import (
	"testing"

	"github.com/rulego/rulego-transform/api/types"
	"github.com/stretchr/testify/require"
)

// PersonSchema is the input schema used across the component tests.
var PersonSchema = types.MustRecordSchema("person",
	types.NewField("id", types.LONG),
	types.NewField("name", types.STRING),
	types.NewField("age", types.INTEGER),
	types.NewField("city", types.STRING),
)

// NewRecord creates a record of schema holding values in field order.
func NewRecord(t testing.TB, schema *types.RecordSchema, values ...interface{}) *types.Record {
	t.Helper()
	r := types.NewRecord(schema)
	for i, v := range values {
		require.Nil(t, r.Set(i, v))
	}
	return r
}

// Person creates a PersonSchema record.
func Person(t testing.TB, id int64, name string, age int, city string) *types.Record {
	t.Helper()
	return NewRecord(t, PersonSchema, id, name, age, city)
}

// Start runs Init and PreExecute, failing the test on error.
func Start(t testing.TB, transform types.Transform, in []*types.RecordSchema, out []*types.RecordSchema) {
	t.Helper()
	require.Nil(t, transform.Init(types.Configuration{}, in, out))
	require.Nil(t, transform.PreExecute())
}

// Finish runs PostExecute with RunFinishedOk and frees transform.
func Finish(t testing.TB, transform types.Transform) {
	t.Helper()
	require.Nil(t, transform.PostExecute(types.RunFinishedOk))
	transform.Free()
}
