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

package engine

import (
	"reflect"
	"time"

	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/utils/cache"
	"github.com/rulego/rulego-transform/utils/js"
)

// Compiler turns modern-dialect source into something the factory can wrap:
// either a *js.Executor, wrapped by the descriptor's FromInterpretedModern,
// or an instance of the kind's contract extending baseType.
type Compiler interface {
	Compile(source string, kind types.TransformKind, baseType reflect.Type, sourceId string) (interface{}, error)
}

// ProgramTTL is how long InterpretedCompiler keeps a compiled program.
const ProgramTTL = "10m"

// Programs caches programs compiled by InterpretedCompiler, keyed by source id and source.
// A program is immutable and shared by every executor created from it.
var Programs = cache.NewMemoryCache(time.Minute)

// InterpretedCompiler compiles modern source for the script runtime.
// Compiling the same source under the same id again reuses the cached program.
type InterpretedCompiler struct {
	Config types.Config
	// Cache is Programs when nil.
	Cache *cache.MemoryCache
}

// NewInterpretedCompiler creates an InterpretedCompiler.
func NewInterpretedCompiler(config types.Config) *InterpretedCompiler {
	return &InterpretedCompiler{Config: config}
}

// Compile returns a *js.Executor. It is not initialized.
func (c *InterpretedCompiler) Compile(source string, kind types.TransformKind, baseType reflect.Type, sourceId string) (interface{}, error) {
	programs := c.Cache
	if programs == nil {
		programs = Programs
	}
	key := sourceId + "\x00" + source
	program, ok := programs.Get(key).(*js.Program)
	if !ok {
		var err error
		if program, err = js.Compile(sourceId, source, js.DialectModern); err != nil {
			return nil, err
		}
		_ = programs.Set(key, program, ProgramTTL)
	}
	return js.NewExecutor(c.Config, program)
}
