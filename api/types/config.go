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
	"time"
)

// DefaultScriptMaxExecutionTime is the per-call script budget used by NewConfig.
const DefaultScriptMaxExecutionTime = time.Millisecond * 2000

// Config defines the configuration shared by every transform built by one host.
type Config struct {
	// ScriptMaxExecutionTime is the maximum execution time of a single script call, defaulting to 2000 milliseconds.
	// A value <= 0 disables the limit.
	ScriptMaxExecutionTime time.Duration
	// Logger is the logging interface, defaulting to `DefaultLogger()`.
	Logger Logger
	// Properties are global properties in key-value format.
	// Scripts read them through the `global` object, e.g. `global.threshold`.
	Properties Metadata
	// Udf is a map for registering custom Golang functions and JavaScript snippets that scripts can call at runtime.
	Udf map[string]interface{}
}

// RegisterUdf registers a custom function, replacing any function with the same name.
func (c *Config) RegisterUdf(name string, value interface{}) {
	if c.Udf == nil {
		c.Udf = make(map[string]interface{})
	}
	c.Udf[name] = value
}

// NewConfig creates a new Config with default values and applies the provided options.
func NewConfig(opts ...Option) Config {
	c := &Config{
		ScriptMaxExecutionTime: DefaultScriptMaxExecutionTime,
		Logger:                 DefaultLogger(),
		Properties:             NewMetadata(),
	}

	for _, opt := range opts {
		_ = opt(c)
	}
	return *c
}
