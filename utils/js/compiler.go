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

// Package js provides the script runtime of interpreted transforms.
//
// Both script dialects run on the goja ECMAScript engine:
//
//   - DialectLegacy is plain ECMAScript 5.1.
//   - DialectModern adds typed function headers and typed local declarations,
//     e.g. `function integer transform() { string s = $in.0.name; ... }`.
//     The compiler records each declared return type and rewrites the
//     source to plain ECMAScript before handing it to goja.
//
// In both dialects record fields are addressed as `$in.N.field` and `$out.N.field`.
// `$out.N.* = $in.M.*` copies every field with the same name.
//
// Key components:
//   - Compile: turns source into a Program, reporting malformed source as *types.ParseError.
//   - Executor: one goja runtime bound to one Program, its globals and its record slots.
//   - Function: a resolved entry point with its declared return type.
package js

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/dop251/goja"
	"github.com/rulego/rulego-transform/api/types"
)

// Dialect is the script dialect a source is written in.
type Dialect int

const (
	DialectLegacy Dialect = iota
	DialectModern
)

func (d Dialect) String() string {
	if d == DialectModern {
		return "modern"
	}
	return "legacy"
}

// TypeTokens are the type names of the modern dialect.
var TypeTokens = []string{
	"boolean", "integer", "long", "number", "decimal", "string", "date",
	"void", "byte", "cbyte", "list", "map", "variant",
}

var (
	typeAlternation = strings.Join(TypeTokens, "|")
	// function integer transform(string a, map[string,integer] b) {
	typedFunctionPattern = regexp.MustCompile(`\bfunction\s+(` + typeAlternation + `)(?:\s*\[[^\]]*\])?\s+([A-Za-z_$][\w$]*)\s*\(([^)]*)\)`)
	// integer counter = 0; at the start of a line
	typedVariablePattern = regexp.MustCompile(`(?m)^(\s*)(?:` + typeAlternation + `)(?:\s*\[[^\]]*\])?\s+([A-Za-z_$][\w$]*)\s*(=|;)`)
	functionPattern      = regexp.MustCompile(`\bfunction\s+([A-Za-z_$][\w$]*)\s*\(`)
	recordRefPattern     = regexp.MustCompile(`\$(in|out)\.(\d+)`)
	wildcardCopyPattern  = regexp.MustCompile(`\$out\[(\d+)\]\.\*\s*=\s*\$in\[(\d+)\]\.\*`)
	bracketPattern       = regexp.MustCompile(`\[[^\]]*\]`)
	syntaxPositionRegex  = regexp.MustCompile(`Line (\d+):(\d+)\s*(.*)`)
)

// Program is compiled script source.
type Program struct {
	// SourceId names the program in error messages and stack traces.
	SourceId string
	Dialect  Dialect
	// Source is the plain ECMAScript goja executes.
	Source      string
	program     *goja.Program
	functions   []string
	returnTypes map[string]string
}

// Functions returns the names of the declared functions in declaration order.
func (p *Program) Functions() []string {
	return p.functions
}

// Declares reports whether the program declares a function named name.
func (p *Program) Declares(name string) bool {
	for _, f := range p.functions {
		if f == name {
			return true
		}
	}
	return false
}

// ReturnType returns the declared return type of function name, or "" when undeclared.
func (p *Program) ReturnType(name string) string {
	return p.returnTypes[name]
}

// Compile compiles source written in dialect.
// Malformed source is reported as a *types.ParseError.
func Compile(sourceId string, source string, dialect Dialect) (*Program, error) {
	p := &Program{
		SourceId:    sourceId,
		Dialect:     dialect,
		returnTypes: make(map[string]string),
	}
	rewritten := source
	if dialect == DialectModern {
		rewritten = typedFunctionPattern.ReplaceAllStringFunc(rewritten, func(header string) string {
			m := typedFunctionPattern.FindStringSubmatch(header)
			p.returnTypes[m[2]] = m[1]
			return "function " + m[2] + "(" + stripParamTypes(m[3]) + ")"
		})
		rewritten = typedVariablePattern.ReplaceAllString(rewritten, "${1}var ${2} ${3}")
	}
	rewritten = recordRefPattern.ReplaceAllString(rewritten, "$$${1}[${2}]")
	rewritten = wildcardCopyPattern.ReplaceAllString(rewritten, copyFieldsFunc+"($$out[${1}], $$in[${2}])")

	for _, m := range functionPattern.FindAllStringSubmatch(rewritten, -1) {
		if !p.Declares(m[1]) {
			p.functions = append(p.functions, m[1])
		}
	}
	p.Source = rewritten

	program, err := goja.Compile(sourceId, rewritten, true)
	if err != nil {
		return nil, toParseError(sourceId, err)
	}
	p.program = program
	return p, nil
}

// stripParamTypes turns "string a, map[string,integer] b" into "a, b".
func stripParamTypes(params string) string {
	params = bracketPattern.ReplaceAllString(params, "")
	if strings.TrimSpace(params) == "" {
		return ""
	}
	parts := strings.Split(params, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		fields := strings.Fields(part)
		if len(fields) > 0 {
			names = append(names, fields[len(fields)-1])
		}
	}
	return strings.Join(names, ", ")
}

func toParseError(sourceId string, err error) *types.ParseError {
	parseErr := &types.ParseError{SourceId: sourceId, Message: err.Error()}
	var syntaxErr *goja.CompilerSyntaxError
	if errors.As(err, &syntaxErr) {
		parseErr.Message = syntaxErr.Message
	}
	if m := syntaxPositionRegex.FindStringSubmatch(parseErr.Message); m != nil {
		parseErr.Line, _ = strconv.Atoi(m[1])
		parseErr.Column, _ = strconv.Atoi(m[2])
		parseErr.Message = m[3]
	}
	return parseErr
}
