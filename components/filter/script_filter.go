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
	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/components/base"
	"github.com/rulego/rulego-transform/utils/js"
)

// ScriptFilter calls the isValid function of a script for every record.
// The record is not passed as an argument, the script reads it as `$in.0`.
type ScriptFilter struct {
	*base.ScriptAdapter
}

var _ types.RecordFilter = (*ScriptFilter)(nil)

// NewScriptFilter wraps executor. isValid must return a boolean.
func NewScriptFilter(executor *js.Executor, logger types.Logger) *ScriptFilter {
	return &ScriptFilter{ScriptAdapter: base.NewScriptAdapter(executor, logger, FuncIsValid, "boolean")}
}

// IsValid reports whether record passes. Legacy scripts may return any value convertible to a boolean.
func (f *ScriptFilter) IsValid(record *types.Record) (bool, error) {
	if err := f.Check(); err != nil {
		return false, err
	}
	f.BindInput(record)
	result, err := f.CallEntry(base.BoolResult(f.Lenient()))
	if err != nil {
		return false, err
	}
	valid := result.(bool)
	if !valid {
		f.Metrics().IncrementSkipped()
	}
	return valid, nil
}
