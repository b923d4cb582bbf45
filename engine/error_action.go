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
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rulego/rulego-transform/api/types"
)

// ErrorAction is what the host node does when a transform returns a user error code.
type ErrorAction int

const (
	// STOP aborts the run.
	STOP ErrorAction = iota
	// CONTINUE skips the offending record.
	CONTINUE
)

// DefaultErrorAction is used when neither the code nor MinIntCode is mapped.
const DefaultErrorAction = STOP

// MinIntCode keys the default entry, applied to codes without their own entry.
const MinIntCode = math.MinInt32

// WildcardCode is mapped to CONTINUE by a bare action such as "STOP".
// It is an error-table key, unrelated to the ALL return code sharing its value.
const WildcardCode = -1

// MinIntToken names MinIntCode in error-action strings.
const MinIntToken = "MIN_INT"

// DefaultErrorActions is the error-action string hosts use when none is configured.
const DefaultErrorActions = "-1=CONTINUE;MIN_INT=STOP"

func (a ErrorAction) String() string {
	if a == CONTINUE {
		return "CONTINUE"
	}
	return "STOP"
}

// ParseErrorAction resolves an action name, case-insensitively.
func ParseErrorAction(name string) (ErrorAction, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "STOP":
		return STOP, true
	case "CONTINUE":
		return CONTINUE, true
	default:
		return STOP, false
	}
}

// ErrorActions maps user error codes to actions. It is built once and read-only afterwards.
type ErrorActions map[int]ErrorAction

var errorActionSeparator = regexp.MustCompile(`[,;]`)

// CreateErrorActions parses an error-action string.
//
// A bare action applies to every code and also maps WildcardCode to CONTINUE: "STOP" yields
// {MIN_INT: STOP, -1: CONTINUE}. A list of `code=ACTION` pairs separated by `,` or `;`
// yields exactly the listed entries, codes being 32-bit integers or MIN_INT.
// Malformed tokens are skipped, and a string with no valid token yields {MIN_INT: STOP}.
func CreateErrorActions(s string) ErrorActions {
	actions := make(ErrorActions)
	tokens := splitErrorActions(s)
	if len(tokens) == 1 && !strings.Contains(tokens[0], "=") {
		if action, ok := ParseErrorAction(tokens[0]); ok {
			actions[MinIntCode] = action
			actions[WildcardCode] = CONTINUE
			return actions
		}
	}
	for _, token := range tokens {
		if code, action, err := parseErrorActionPair(token); err == nil {
			actions[code] = action
		}
	}
	if len(actions) == 0 {
		actions[MinIntCode] = DefaultErrorAction
	}
	return actions
}

// CheckErrorActions validates an error-action string without building it.
// It returns a ComponentNotReady error listing every malformed token.
func CheckErrorActions(s string) error {
	tokens := splitErrorActions(s)
	if len(tokens) == 1 && !strings.Contains(tokens[0], "=") {
		if _, ok := ParseErrorAction(tokens[0]); ok {
			return nil
		}
	}
	var invalid []string
	for _, token := range tokens {
		if _, _, err := parseErrorActionPair(token); err != nil {
			invalid = append(invalid, token)
		}
	}
	if len(invalid) > 0 {
		return types.NewComponentNotReady("", "invalid error actions: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// Lookup returns the action of code: its own entry, else the MIN_INT entry, else STOP.
func (t ErrorActions) Lookup(code int) ErrorAction {
	if action, ok := t[code]; ok {
		return action
	}
	if action, ok := t[MinIntCode]; ok {
		return action
	}
	return DefaultErrorAction
}

// Handle applies the action of code. CONTINUE logs a non-empty message and returns nil,
// STOP returns an *ErrorCodeError.
func (t ErrorActions) Handle(code int, message string, logger types.Logger) error {
	if t.Lookup(code) == CONTINUE {
		if logger != nil && message != "" {
			logger.Printf("transformation finished with code %d: %s", code, message)
		}
		return nil
	}
	return &ErrorCodeError{Code: code, Message: message}
}

func (t ErrorActions) String() string {
	codes := make([]int, 0, len(t))
	for code := range t {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	parts := make([]string, len(codes))
	for i, code := range codes {
		key := strconv.Itoa(code)
		if code == MinIntCode {
			key = MinIntToken
		}
		parts[i] = key + "=" + t[code].String()
	}
	return strings.Join(parts, ";")
}

// ErrorCodeError stops a run because a transform returned a code mapped to STOP.
type ErrorCodeError struct {
	Code    int
	Message string
}

func (e *ErrorCodeError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("transformation finished with code %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("transformation finished with code %d", e.Code)
}

func splitErrorActions(s string) []string {
	var tokens []string
	for _, token := range errorActionSeparator.Split(s, -1) {
		if token = strings.TrimSpace(token); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func parseErrorActionPair(token string) (int, ErrorAction, error) {
	key, value, found := strings.Cut(token, "=")
	if !found {
		return 0, STOP, fmt.Errorf("missing '=' in %q", token)
	}
	action, ok := ParseErrorAction(value)
	if !ok {
		return 0, STOP, fmt.Errorf("unknown action in %q", token)
	}
	key = strings.TrimSpace(key)
	if strings.EqualFold(key, MinIntToken) {
		return MinIntCode, action, nil
	}
	code, err := strconv.ParseInt(key, 10, 32)
	if err != nil {
		return 0, STOP, fmt.Errorf("invalid code in %q", token)
	}
	return int(code), action, nil
}
