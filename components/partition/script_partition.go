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
	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/components/base"
	"github.com/rulego/rulego-transform/utils/js"
)

// ScriptPartition calls the getOutputPort function of a script, the record bound as `$in.0`.
type ScriptPartition struct {
	*base.ScriptAdapter
}

var _ types.PartitionFunction = (*ScriptPartition)(nil)

// NewScriptPartition wraps executor.
func NewScriptPartition(executor *js.Executor, logger types.Logger) *ScriptPartition {
	return &ScriptPartition{ScriptAdapter: base.NewScriptAdapter(executor, logger, FuncGetOutputPort, "integer", "long")}
}

func (p *ScriptPartition) GetOutputPort(record *types.Record) (int, error) {
	if err := p.Check(); err != nil {
		return 0, err
	}
	p.BindInput(record)
	return p.port(p.CallEntry(base.IntResult(false)))
}

// GetOutputPortOnError calls getOutputPortOnError when declared, else returns cause.
func (p *ScriptPartition) GetOutputPortOnError(cause error, record *types.Record) (int, error) {
	if err := p.Check(); err != nil {
		return 0, err
	}
	p.BindInput(record)
	return p.port(p.CallOnError(cause, base.IntResult(false)))
}

func (p *ScriptPartition) port(result interface{}, err error) (int, error) {
	if err != nil {
		return 0, err
	}
	port := result.(int)
	p.CountCode(port)
	return port, nil
}
