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
	"github.com/dop251/goja"
	"github.com/rulego/rulego-transform/api/types"
)

const copyFieldsFunc = "__copyFields"

// recordArray exposes a slice of records as the script array `$in` or `$out`.
// The slice is looked up on every access, so records swapped into it by the
// caller are visible to the script without rebinding.
type recordArray struct {
	vm      *goja.Runtime
	records []*types.Record
	objects []*goja.Object
}

func newRecordArray(vm *goja.Runtime) *recordArray {
	return &recordArray{vm: vm}
}

func (a *recordArray) Len() int {
	return len(a.records)
}

func (a *recordArray) Get(idx int) goja.Value {
	if idx < 0 || idx >= len(a.records) {
		return goja.Undefined()
	}
	for len(a.objects) <= idx {
		a.objects = append(a.objects, nil)
	}
	if a.objects[idx] == nil {
		a.objects[idx] = a.vm.NewDynamicObject(&recordObject{array: a, index: idx})
	}
	return a.objects[idx]
}

// Set is not supported, records are bound by the host.
func (a *recordArray) Set(idx int, val goja.Value) bool {
	return false
}

func (a *recordArray) SetLen(int) bool {
	return false
}

// recordObject exposes the record at one index of a recordArray, fields addressed by name.
type recordObject struct {
	array *recordArray
	index int
}

func (o *recordObject) record() *types.Record {
	if o.index < len(o.array.records) {
		return o.array.records[o.index]
	}
	return nil
}

func (o *recordObject) Get(key string) goja.Value {
	r := o.record()
	if r == nil {
		return goja.Undefined()
	}
	v, ok := r.GetByName(key)
	if !ok {
		return goja.Undefined()
	}
	if v == nil {
		return goja.Null()
	}
	return o.array.vm.ToValue(v)
}

// Set converts val to the field type. A failed conversion throws a TypeError in the script.
func (o *recordObject) Set(key string, val goja.Value) bool {
	r := o.record()
	if r == nil {
		panic(o.array.vm.NewTypeError("record %d is not bound", o.index))
	}
	if err := r.SetByName(key, exportValue(val)); err != nil {
		panic(o.array.vm.NewTypeError("%s", err.Error()))
	}
	return true
}

func (o *recordObject) Has(key string) bool {
	if r := o.record(); r != nil {
		_, ok := r.Schema().FieldIndex(key)
		return ok
	}
	return false
}

// Delete nulls the field.
func (o *recordObject) Delete(key string) bool {
	if r := o.record(); r != nil {
		return r.SetByName(key, nil) == nil
	}
	return false
}

func (o *recordObject) Keys() []string {
	if r := o.record(); r != nil {
		return r.Schema().FieldNames()
	}
	return nil
}

// copyFields backs `$out.N.* = $in.M.*`: every field of the source record is copied
// to the target field with the same name.
func copyFields(vm *goja.Runtime) func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		to, okTo := call.Argument(0).Export().(*recordObject)
		from, okFrom := call.Argument(1).Export().(*recordObject)
		if !okTo || !okFrom {
			panic(vm.NewTypeError("wildcard copy needs two bound records"))
		}
		target, source := to.record(), from.record()
		if target == nil || source == nil {
			panic(vm.NewTypeError("wildcard copy needs two bound records"))
		}
		for i, f := range source.Schema().Fields() {
			if j, ok := target.Schema().FieldIndex(f.Name); ok {
				_ = target.Set(j, source.Get(i))
			}
		}
		return goja.Undefined()
	}
}

func exportValue(val goja.Value) interface{} {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}
