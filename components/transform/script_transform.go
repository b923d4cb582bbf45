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
	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/components/base"
	"github.com/rulego/rulego-transform/utils/js"
)

// ScriptTransform calls the transform function of a script for every input record set.
// Records are bound as `$in` and `$out`, transformOnError(message, stack) handles failures.
type ScriptTransform struct {
	*base.ScriptAdapter
}

var _ types.RecordTransform = (*ScriptTransform)(nil)

// NewScriptTransform wraps executor. transform must return an integer.
func NewScriptTransform(executor *js.Executor, logger types.Logger) *ScriptTransform {
	return &ScriptTransform{ScriptAdapter: base.NewScriptAdapter(executor, logger, FuncTransform, "integer", "long")}
}

// Transform returns ALL, SKIP, a port index or a user error code. Returning nothing is an error.
func (x *ScriptTransform) Transform(in []*types.Record, out []*types.Record) (int, error) {
	if err := x.Check(); err != nil {
		return 0, err
	}
	x.BindRecords(in, out)
	return x.code(x.CallEntry(base.IntResult(false)))
}

// TransformOnError calls transformOnError when declared, else returns cause.
func (x *ScriptTransform) TransformOnError(cause error, in []*types.Record, out []*types.Record) (int, error) {
	if err := x.Check(); err != nil {
		return 0, err
	}
	x.BindRecords(in, out)
	return x.code(x.CallOnError(cause, base.IntResult(false)))
}

func (x *ScriptTransform) code(result interface{}, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	code := result.(int)
	x.CountCode(code)
	return code, nil
}
