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

// Package test provides host doubles and record helpers for transform tests.
package test

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rulego/rulego-transform/api/types"
)

// Node is a host node standing in for a graph stage in tests.
type Node struct {
	ID string
}

// NewNode creates a test node.
func NewNode(id string) *Node {
	return &Node{ID: id}
}

func (n *Node) Id() string {
	return n.ID
}

// GraphContext is a read-only graph context for tests.
type GraphContext struct {
	ID     string
	Params types.Metadata
}

// NewGraphContext creates a graph context with the given parameters.
func NewGraphContext(id string, params map[string]string) *GraphContext {
	return &GraphContext{ID: id, Params: types.BuildMetadata(params)}
}

func (g *GraphContext) Id() string {
	return g.ID
}

func (g *GraphContext) Properties() types.Metadata {
	return g.Params
}

// BufferLogger keeps every formatted line, for asserting on warnings.
type BufferLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *BufferLogger) Printf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, v...))
}

// Lines returns a copy of the logged lines.
func (l *BufferLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// Contains reports whether any logged line contains substr.
func (l *BufferLogger) Contains(substr string) bool {
	for _, line := range l.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
