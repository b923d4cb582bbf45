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

package base

import (
	"errors"
	"math"

	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/utils/cast"
	"github.com/rulego/rulego-transform/utils/js"
)

// Optional script functions.
const (
	FuncInit        = "init"
	FuncPreExecute  = "preExecute"
	FuncPostExecute = "postExecute"
	FuncGetMessage  = "getMessage"
	// OnErrorSuffix names the error handler of an entry point, e.g. transformOnError.
	OnErrorSuffix = "OnError"
)

// ValidateFunc checks the result of a function call and converts it.
type ValidateFunc func(function string, result interface{}) (interface{}, error)

// NewExecutor compiles source written in dialect and creates its executor.
func NewExecutor(config types.Config, sourceId string, source string, dialect js.Dialect) (*js.Executor, error) {
	program, err := js.Compile(sourceId, source, dialect)
	if err != nil {
		return nil, err
	}
	return js.NewExecutor(config, program)
}

// ScriptAdapter runs the lifecycle of an interpreted transform on a js.Executor.
// Kind adapters embed it and implement the per-record operation on top of CallEntry.
//
// The adapter owns the current-input cell: a single record slot bound once as `$in`,
// overwritten before each single-record call.
type ScriptAdapter struct {
	BaseTransform
	executor   *js.Executor
	logger     types.Logger
	entryPoint string
	// returnTypes are the declared return types accepted for the entry point.
	returnTypes []string
	entry       *js.Function
	onError     *js.Function
	preExecute  *js.Function
	postExecute *js.Function
	getMessage  *js.Function
	input       [1]*types.Record
	initialized bool
	freed       bool
}

// NewScriptAdapter creates an adapter calling entryPoint. A declared return type of the
// entry point must be one of returnTypes.
func NewScriptAdapter(executor *js.Executor, logger types.Logger, entryPoint string, returnTypes ...string) *ScriptAdapter {
	return &ScriptAdapter{
		executor:    executor,
		logger:      types.NewLogger(logger),
		entryPoint:  entryPoint,
		returnTypes: returnTypes,
	}
}

// EntryPoint returns the name of the mandatory script function.
func (a *ScriptAdapter) EntryPoint() string {
	return a.entryPoint
}

// Lenient reports whether results are coerced instead of checked, which is the case for legacy scripts.
func (a *ScriptAdapter) Lenient() bool {
	return a.executor.Program().Dialect == js.DialectLegacy
}

// Init starts the script: global scope is kept for the life of the instance, top-level
// statements run once, the entry point is resolved, then the optional init function runs.
func (a *ScriptAdapter) Init(configuration types.Configuration, in []*types.RecordSchema, out []*types.RecordSchema) error {
	if a.freed {
		return types.ErrTransformFreed
	}
	a.executor.KeepGlobalScope()
	if err := a.executor.Init(); err != nil {
		return types.WrapComponentNotReady(a.NodeId(), err, "script initialization failed")
	}
	entry, err := a.executor.Function(a.entryPoint)
	if err != nil {
		return types.WrapComponentNotReady(a.NodeId(), err, "%s() function is not declared", a.entryPoint)
	}
	if entry.ReturnType != "" && len(a.returnTypes) > 0 && !contains(a.returnTypes, entry.ReturnType) {
		return types.NewComponentNotReady(a.NodeId(), "%s() function must be declared to return '%s', declared '%s'",
			a.entryPoint, a.returnTypes[0], entry.ReturnType)
	}
	a.entry = entry

	if fn := a.optional(FuncInit); fn != nil {
		result, err := a.executor.ExecuteFunction(fn)
		if err == nil && result == false {
			err = errors.New("init() returned false")
		}
		if err != nil {
			a.logger.Printf("node %s: %s() function failed: %s", a.NodeId(), FuncInit, err.Error())
			return types.WrapComponentNotReady(a.NodeId(), err, "%s() function failed", FuncInit)
		}
	}
	a.onError = a.optional(a.entryPoint + OnErrorSuffix)
	a.preExecute = a.optional(FuncPreExecute)
	a.postExecute = a.optional(FuncPostExecute)
	a.getMessage = a.optional(FuncGetMessage)

	a.executor.SetInputRecords(a.input[:])
	a.initialized = true
	return nil
}

// PreExecute clears the message, then runs the optional preExecute function.
func (a *ScriptAdapter) PreExecute() error {
	if err := a.Check(); err != nil {
		return err
	}
	_ = a.BaseTransform.PreExecute()
	if a.preExecute != nil {
		if _, err := a.executor.ExecuteFunction(a.preExecute); err != nil {
			return types.WrapComponentNotReady(a.NodeId(), err, "%s() function failed", FuncPreExecute)
		}
	}
	return nil
}

// PostExecute runs the optional postExecute function.
func (a *ScriptAdapter) PostExecute(status types.RunStatus) error {
	if err := a.Check(); err != nil {
		return err
	}
	if a.postExecute != nil {
		if _, err := a.executor.ExecuteFunction(a.postExecute); err != nil {
			return types.WrapComponentNotReady(a.NodeId(), err, "%s() function failed", FuncPostExecute)
		}
	}
	return nil
}

// GetMessage returns the result of the optional getMessage function when it is not empty,
// else the message recorded by the last failed call.
func (a *ScriptAdapter) GetMessage() string {
	if a.getMessage != nil && a.initialized && !a.freed {
		if result, err := a.executor.ExecuteFunction(a.getMessage); err == nil && result != nil {
			if message, err := cast.ToStringE(result); err == nil && message != "" {
				return message
			}
		}
	}
	return a.BaseTransform.GetMessage()
}

// Free releases the script runtime. Per-record calls fail with ErrTransformFreed afterwards.
func (a *ScriptAdapter) Free() {
	if a.freed {
		return
	}
	a.freed = true
	a.initialized = false
	a.executor.Free()
}

// Check returns an error when per-record calls are not allowed: ErrNotInitialized before Init,
// ErrTransformFreed after Free.
func (a *ScriptAdapter) Check() error {
	if a.freed {
		return types.ErrTransformFreed
	}
	if !a.initialized {
		return types.ErrNotInitialized
	}
	return nil
}

// BindInput stores record in the current-input cell.
func (a *ScriptAdapter) BindInput(record *types.Record) {
	a.input[0] = record
	a.executor.SetInputRecords(a.input[:])
}

// BindRecords binds the record arrays of a multi-record call.
func (a *ScriptAdapter) BindRecords(in []*types.Record, out []*types.Record) {
	if in != nil {
		a.executor.SetInputRecords(in)
	}
	a.executor.SetOutputRecords(out)
}

// CallEntry calls the entry point and validates its result.
func (a *ScriptAdapter) CallEntry(validate ValidateFunc) (interface{}, error) {
	return a.call(a.entry, validate)
}

// HasOnError reports whether the script declares an error handler for the entry point.
func (a *ScriptAdapter) HasOnError() bool {
	return a.onError != nil
}

// CallOnError calls the error handler with the message and stack trace of cause.
// Without a handler cause is returned.
func (a *ScriptAdapter) CallOnError(cause error, validate ValidateFunc) (interface{}, error) {
	if err := a.Check(); err != nil {
		return nil, err
	}
	if a.onError == nil {
		return nil, cause
	}
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	return a.call(a.onError, validate, message, js.ErrorStack(cause))
}

func (a *ScriptAdapter) call(fn *js.Function, validate ValidateFunc, args ...interface{}) (interface{}, error) {
	if err := a.Check(); err != nil {
		return nil, err
	}
	m := a.Metrics()
	m.IncrementTotal()
	result, err := a.executor.ExecuteFunction(fn, args...)
	if err != nil {
		return nil, a.Fail(&types.TransformRuntimeError{Function: fn.Name, Err: err})
	}
	if validate != nil {
		if result, err = validate(fn.Name, result); err != nil {
			return nil, a.Fail(err)
		}
	}
	m.IncrementSuccess()
	return result, nil
}

// Fail records err as the message of the current run and counts the failure.
func (a *ScriptAdapter) Fail(err error) error {
	a.Metrics().IncrementFailed()
	a.SetMessage(err.Error())
	return err
}

func (a *ScriptAdapter) optional(name string) *js.Function {
	if fn, err := a.executor.Function(name); err == nil {
		return fn
	}
	return nil
}

// BoolResult validates a boolean result. With lenient set, strings and numbers are coerced.
func BoolResult(lenient bool) ValidateFunc {
	return func(function string, result interface{}) (interface{}, error) {
		if b, ok := result.(bool); ok {
			return b, nil
		}
		if lenient && result != nil {
			if b, err := cast.ToBoolE(result); err == nil {
				return b, nil
			}
		}
		return nil, &types.TransformRuntimeError{Function: function, Expected: "boolean", Actual: result}
	}
}

// IntResult validates an integer result. With nilAsAll set, no result means types.ALL.
func IntResult(nilAsAll bool) ValidateFunc {
	return func(function string, result interface{}) (interface{}, error) {
		if result == nil && nilAsAll {
			return types.ALL, nil
		}
		if code, ok := toCode(result); ok {
			return code, nil
		}
		return nil, &types.TransformRuntimeError{Function: function, Expected: "integer", Actual: result}
	}
}

// CountCode counts SKIP and user error codes returned by a successful call.
func (a *ScriptAdapter) CountCode(code int) {
	if code == types.SKIP {
		a.Metrics().IncrementSkipped()
	} else if types.IsErrorCode(code) {
		a.Metrics().IncrementErrorCodes()
	}
}

func toCode(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || n < math.MinInt32 || n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
