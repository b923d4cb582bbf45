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

package generate

import (
	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/components/base"
	"github.com/rulego/rulego-transform/utils/js"
)

// ScriptGenerate calls the generate function of a script, `$out` bound to the output records.
type ScriptGenerate struct {
	*base.ScriptAdapter
}

var _ types.RecordGenerate = (*ScriptGenerate)(nil)

// NewScriptGenerate wraps executor.
func NewScriptGenerate(executor *js.Executor, logger types.Logger) *ScriptGenerate {
	return &ScriptGenerate{ScriptAdapter: base.NewScriptAdapter(executor, logger, FuncGenerate, "integer", "long", "void")}
}

// Generate returns the code of the script, ALL when it returns nothing.
func (g *ScriptGenerate) Generate(out []*types.Record) (int, error) {
	if err := g.Check(); err != nil {
		return 0, err
	}
	g.BindRecords(nil, out)
	return g.code(g.CallEntry(base.IntResult(true)))
}

// GenerateOnError calls generateOnError when declared, else returns cause.
func (g *ScriptGenerate) GenerateOnError(cause error, out []*types.Record) (int, error) {
	if err := g.Check(); err != nil {
		return 0, err
	}
	g.BindRecords(nil, out)
	return g.code(g.CallOnError(cause, base.IntResult(true)))
}

func (g *ScriptGenerate) code(result interface{}, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	code := result.(int)
	g.CountCode(code)
	return code, nil
}
