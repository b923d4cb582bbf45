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

// Package runtime formats goroutine stack traces for error reports.
package runtime

import (
	"fmt"
	"runtime"
	"strings"
)

// Stack returns the call stack of the caller of Stack's caller, one "file:line" per line.
// It is used to report where a host function called by a script panicked.
func Stack() string {
	var pc = make([]uintptr, 20)
	n := runtime.Callers(3, pc)

	var build strings.Builder
	for i := 0; i < n; i++ {
		f := runtime.FuncForPC(pc[i] - 1)
		if f == nil {
			continue
		}
		file, line := f.FileLine(pc[i] - 1)
		build.WriteString(fmt.Sprintf(" %s:%d \n", file, line))
	}
	return build.String()
}

// PanicError is a recovered panic.
type PanicError struct {
	Value interface{}
	Stack string
}

// Recovered wraps a value returned by recover. It must be called from the deferred function.
func Recovered(value interface{}) *PanicError {
	return &PanicError{Value: value, Stack: Stack()}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
