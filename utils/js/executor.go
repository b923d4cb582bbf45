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

package js

import (
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/utils/runtime"
)

// ErrExecutionTimeout is returned when a script call exceeds Config.ScriptMaxExecutionTime.
var ErrExecutionTimeout = errors.New("script execution timeout")

// Function is a resolved script function.
type Function struct {
	Name string
	// ReturnType is the declared return type, "" for undeclared ones.
	ReturnType string
	callable   goja.Callable
}

// Executor runs the functions of one Program in a dedicated goja runtime.
// It is not safe for concurrent use.
type Executor struct {
	config      types.Config
	program     *Program
	udfPrograms map[string]*goja.Program
	vm          *goja.Runtime
	in          *recordArray
	out         *recordArray
	keepGlobal  bool
	freed       bool
}

// NewExecutor creates an executor for program. JavaScript UDFs of config are precompiled here.
func NewExecutor(config types.Config, program *Program) (*Executor, error) {
	e := &Executor{
		config:  config,
		program: program,
	}
	if e.config.Logger == nil {
		e.config.Logger = types.DefaultLogger()
	}
	if err := e.preCompileUdf(); err != nil {
		return nil, err
	}
	return e, nil
}

// preCompileUdf precompiles UDF JavaScript snippets.
func (e *Executor) preCompileUdf() error {
	e.udfPrograms = make(map[string]*goja.Program)
	for k, v := range e.config.Udf {
		if jsFuncStr, ok := v.(string); ok {
			p, err := goja.Compile(k, jsFuncStr, true)
			if err != nil {
				return toParseError(k, err)
			}
			e.udfPrograms[k] = p
		}
	}
	return nil
}

// Program returns the executed program.
func (e *Executor) Program() *Program {
	return e.program
}

// KeepGlobalScope keeps module-level state between calls. Without it the
// program's top-level statements are run again before every call.
func (e *Executor) KeepGlobalScope() {
	e.keepGlobal = true
}

// Init creates the runtime, installs the globals and runs the program's top-level statements.
func (e *Executor) Init() error {
	if e.freed {
		return types.ErrTransformFreed
	}
	properties := e.config.Properties
	if properties == nil {
		properties = types.NewMetadata()
	}
	vm := goja.New()
	e.in = newRecordArray(vm)
	e.out = newRecordArray(vm)

	globals := map[string]interface{}{
		"ALL":            types.ALL,
		"SKIP":           types.SKIP,
		types.Global:     properties.Values(),
		types.InRecords:  vm.NewDynamicArray(e.in),
		types.OutRecords: vm.NewDynamicArray(e.out),
		"printLog": func(v ...interface{}) {
			e.config.Logger.Printf("[%s] %s", e.program.SourceId, fmt.Sprint(v...))
		},
		copyFieldsFunc: copyFields(vm),
	}
	for k, v := range globals {
		if err := vm.Set(k, v); err != nil {
			return fmt.Errorf("set global %s: %w", k, err)
		}
	}

	for k, v := range e.config.Udf {
		var err error
		if _, ok := v.(string); ok {
			_, err = vm.RunProgram(e.udfPrograms[k])
		} else {
			err = vm.Set(k, v)
		}
		if err != nil {
			e.config.Logger.Printf("parse js script=%s error: %s", k, err.Error())
		}
	}

	e.vm = vm
	if err := e.run(func() error {
		_, err := vm.RunProgram(e.program.program)
		return err
	}); err != nil {
		e.vm = nil
		return err
	}
	return nil
}

// Function resolves the function called name. It fails with types.ErrFunctionNotFound
// when the program does not declare it.
func (e *Executor) Function(name string) (*Function, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	callable, ok := goja.AssertFunction(e.vm.Get(name))
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrFunctionNotFound, name)
	}
	return &Function{Name: name, ReturnType: e.program.ReturnType(name), callable: callable}, nil
}

// SetInputRecords binds the records visible to the script as `$in`.
// The slice is read on every access, the caller may replace its elements between calls.
func (e *Executor) SetInputRecords(records []*types.Record) {
	if e.in != nil {
		e.in.records = records
	}
}

// SetOutputRecords binds the records visible to the script as `$out`.
func (e *Executor) SetOutputRecords(records []*types.Record) {
	if e.out != nil {
		e.out.records = records
	}
}

// ExecuteFunction calls fn and returns its exported result.
// undefined and null results are returned as nil.
func (e *Executor) ExecuteFunction(fn *Function, args ...interface{}) (interface{}, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	var result interface{}
	err := e.run(func() error {
		callable := fn.callable
		if !e.keepGlobal {
			if _, err := e.vm.RunProgram(e.program.program); err != nil {
				return err
			}
			var ok bool
			if callable, ok = goja.AssertFunction(e.vm.Get(fn.Name)); !ok {
				return fmt.Errorf("%w: %s", types.ErrFunctionNotFound, fn.Name)
			}
		}
		params := make([]goja.Value, len(args))
		for i, v := range args {
			params[i] = e.vm.ToValue(v)
		}
		res, err := callable(goja.Undefined(), params...)
		if err != nil {
			return err
		}
		result = exportValue(res)
		return nil
	})
	return result, err
}

// Free releases the runtime. The executor must not be used afterwards.
func (e *Executor) Free() {
	e.freed = true
	e.vm = nil
	e.in = nil
	e.out = nil
}

func (e *Executor) ready() error {
	if e.freed {
		return types.ErrTransformFreed
	}
	if e.vm == nil {
		return types.ErrNotInitialized
	}
	return nil
}

// run executes f under the configured time budget, converting panics into errors.
func (e *Executor) run(f func() error) (err error) {
	timer := e.startTimeout(e.vm)
	defer func() {
		e.stopTimeout(e.vm, timer)
		if caught := recover(); caught != nil {
			err = runtime.Recovered(caught)
		}
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			err = ErrExecutionTimeout
		}
	}()
	return f()
}

// startTimeout returns nil if the timeout is not configured.
func (e *Executor) startTimeout(vm *goja.Runtime) *time.Timer {
	if e.config.ScriptMaxExecutionTime <= 0 {
		return nil
	}
	return time.AfterFunc(e.config.ScriptMaxExecutionTime, func() {
		vm.Interrupt("execution timeout")
	})
}

// stopTimeout also clears an interrupt that fired after the call returned.
func (e *Executor) stopTimeout(vm *goja.Runtime, timer *time.Timer) {
	if timer != nil {
		timer.Stop()
		vm.ClearInterrupt()
	}
}

// ErrorStack returns the script stack trace of err when the script threw, the Go stack
// when a host function panicked, else its message.
func ErrorStack(err error) string {
	if err == nil {
		return ""
	}
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return ex.String()
	}
	var panicErr *runtime.PanicError
	if errors.As(err, &panicErr) {
		return panicErr.Error() + "\n" + panicErr.Stack
	}
	return err.Error()
}
