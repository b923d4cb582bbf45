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

// Package str provides string utilities used when inspecting transform source code.
package str

import (
	"strings"
)

// IsEmpty reports whether s is empty or only whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// StripComments removes `//` line comments and `/* */` block comments from source.
// Comment markers inside single or double quoted string literals are kept,
// as are the newlines ending line comments and those inside block comments,
// so line numbers of the remaining code do not change.
func StripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	const (
		code = iota
		lineComment
		blockComment
		quoted
	)
	state := code
	var quote byte
	for i := 0; i < len(source); i++ {
		c := source[i]
		switch state {
		case code:
			if c == '/' && i+1 < len(source) && source[i+1] == '/' {
				state = lineComment
				i++
			} else if c == '/' && i+1 < len(source) && source[i+1] == '*' {
				state = blockComment
				sb.WriteByte(' ')
				i++
			} else {
				if c == '"' || c == '\'' {
					state = quoted
					quote = c
				}
				sb.WriteByte(c)
			}
		case lineComment:
			if c == '\n' {
				state = code
				sb.WriteByte(c)
			}
		case blockComment:
			if c == '*' && i+1 < len(source) && source[i+1] == '/' {
				state = code
				i++
			} else if c == '\n' {
				sb.WriteByte(c)
			}
		case quoted:
			sb.WriteByte(c)
			if c == '\\' && i+1 < len(source) {
				i++
				sb.WriteByte(source[i])
			} else if c == quote || c == '\n' {
				state = code
			}
		}
	}
	return sb.String()
}
