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

//过滤器配置示例：
//{
//  "filterExpression": "age >= 18 && city in ['Berlin', 'Paris']",
//  "language": "expr"
//}
import (
	"errors"
	"regexp"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/file"
	"github.com/expr-lang/expr/vm"
	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/components/base"
)

const exprFunction = "expr"

// exprRecords is the variable holding the input records, `in` being an expr operator.
const exprRecords = "records"

var exprRecordRef = regexp.MustCompile(`\$in\.(\d+)\.`)

// ExprFilter 使用expr表达式过滤记录
// ExprFilter evaluates an expr-lang expression against each record.
// 通过字段名访问记录字段，例如 `age >= 18`
// Fields are variables named after the schema fields, e.g. `age >= 18`.
// `records[0].age` and `$in.0.age` address the record explicitly, `global.xx` reads config properties.
type ExprFilter struct {
	base.BaseTransform
	config      types.Config
	sourceId    string
	program     *vm.Program
	initialized bool
	freed       bool
}

var _ types.RecordFilter = (*ExprFilter)(nil)

// NewExprFilter compiles source. Malformed expressions fail with *types.ParseError.
func NewExprFilter(config types.Config, sourceId string, source string) (*ExprFilter, error) {
	source = exprRecordRef.ReplaceAllString(source, exprRecords+"[$1].")
	program, err := expr.Compile(source, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		parseErr := &types.ParseError{SourceId: sourceId, Message: err.Error()}
		var fileErr *file.Error
		if errors.As(err, &fileErr) {
			parseErr.Message = fileErr.Message
			parseErr.Line = fileErr.Line
			parseErr.Column = fileErr.Column + 1
		}
		return nil, parseErr
	}
	return &ExprFilter{config: config, sourceId: sourceId, program: program}, nil
}

// Init 初始化
func (x *ExprFilter) Init(configuration types.Configuration, in []*types.RecordSchema, out []*types.RecordSchema) error {
	if x.freed {
		return types.ErrTransformFreed
	}
	x.initialized = true
	return nil
}

// IsValid 处理记录
func (x *ExprFilter) IsValid(record *types.Record) (bool, error) {
	if x.freed {
		return false, types.ErrTransformFreed
	}
	if !x.initialized {
		return false, types.ErrNotInitialized
	}
	m := x.Metrics()
	m.IncrementTotal()
	values := record.Values()
	env := make(map[string]interface{}, len(values)+2)
	for k, v := range values {
		env[k] = v
	}
	env[exprRecords] = []map[string]interface{}{values}
	if x.config.Properties != nil {
		env[types.Global] = x.config.Properties.Values()
	}
	out, err := vm.Run(x.program, env)
	if err != nil {
		m.IncrementFailed()
		err = &types.TransformRuntimeError{Function: exprFunction, Err: err}
		x.SetMessage(err.Error())
		return false, err
	}
	valid, ok := out.(bool)
	if !ok {
		m.IncrementFailed()
		err = &types.TransformRuntimeError{Function: exprFunction, Expected: "boolean", Actual: out}
		x.SetMessage(err.Error())
		return false, err
	}
	m.IncrementSuccess()
	if !valid {
		m.IncrementSkipped()
	}
	return valid, nil
}

// Free 销毁
func (x *ExprFilter) Free() {
	x.freed = true
	x.initialized = false
	x.program = nil
}
