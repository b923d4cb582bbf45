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

package types

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Global is the script global holding Config.Properties.
	Global = "global"
	// InRecords is the script global holding the bound input records.
	InRecords = "$in"
	// OutRecords is the script global holding the bound output records.
	OutRecords = "$out"
)

var (
	// ErrComponentNotReady is matched by every configuration error: malformed source,
	// a missing entry point, an unparsable error-action string.
	ErrComponentNotReady = errors.New("component not ready")
	// ErrNotInitialized is returned by a per-record operation called before Init.
	ErrNotInitialized = fmt.Errorf("%w: transform not initialized", ErrComponentNotReady)
	// ErrTransformFreed is returned by a per-record operation called after Free.
	// Using a freed transform is a caller contract violation.
	ErrTransformFreed = errors.New("transform has been freed")
	// ErrFunctionNotFound is returned when a script does not declare a requested function.
	ErrFunctionNotFound = errors.New("function not found")
	// ErrTransformNotDefined is returned when neither source nor class is configured.
	ErrTransformNotDefined = fmt.Errorf("%w: transformation is not defined", ErrComponentNotReady)
)

// ComponentNotReadyError is a configuration error, raised while bringing a transform online.
// It is never retried.
type ComponentNotReadyError struct {
	// Component is the id of the node the error belongs to, may be empty.
	Component string
	Message   string
	Err       error
}

// NewComponentNotReady creates a ComponentNotReadyError with a formatted message.
func NewComponentNotReady(component string, format string, args ...interface{}) *ComponentNotReadyError {
	return &ComponentNotReadyError{Component: component, Message: fmt.Sprintf(format, args...)}
}

// WrapComponentNotReady creates a ComponentNotReadyError caused by err.
func WrapComponentNotReady(component string, err error, format string, args ...interface{}) *ComponentNotReadyError {
	return &ComponentNotReadyError{Component: component, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *ComponentNotReadyError) Error() string {
	var sb strings.Builder
	if e.Component != "" {
		sb.WriteString("[")
		sb.WriteString(e.Component)
		sb.WriteString("] ")
	}
	sb.WriteString(e.Message)
	if e.Err != nil {
		if e.Message != "" {
			sb.WriteString(": ")
		}
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ComponentNotReadyError) Unwrap() error {
	return e.Err
}

func (e *ComponentNotReadyError) Is(target error) bool {
	return target == ErrComponentNotReady
}

// ParseError reports malformed script source.
type ParseError struct {
	SourceId string
	// Line and Column are 1-based, 0 when the position is unknown.
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return "parse error: " + e.Message
}

func (e *ParseError) Is(target error) bool {
	return target == ErrComponentNotReady
}

// TransformRuntimeError is raised by a per-record operation when a script returns a value of the
// wrong type or shape, or when the script runtime throws.
type TransformRuntimeError struct {
	// Function is the script entry point that failed.
	Function string
	// Expected is the required return type, empty when the runtime threw.
	Expected string
	// Actual is the offending return value.
	Actual interface{}
	Err    error
}

func (e *TransformRuntimeError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("%s() function must return '%s', got %v (%T)", e.Function, e.Expected, e.Actual, e.Actual)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s() function failed: %s", e.Function, e.Err.Error())
	}
	return e.Function + "() function failed"
}

func (e *TransformRuntimeError) Unwrap() error {
	return e.Err
}
