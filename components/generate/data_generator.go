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

package generate

import (
	"context"

	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/engine"
)

// DataGenerator runs a RecordGenerate a fixed number of times and routes what it produces.
type DataGenerator struct {
	generate      types.RecordGenerate
	actions       engine.ErrorActions
	logger        types.Logger
	recordsNumber int
	out           []*types.Record
}

// NewDataGenerator creates the generator configured by configuration and the driver running it.
func NewDataGenerator(config types.Config, node types.Node, configuration types.Configuration, out []*types.RecordSchema) (*DataGenerator, error) {
	generateConfig, err := decodeConfiguration(node, configuration)
	if err != nil {
		return nil, err
	}
	generate, err := NewRecordGenerate(config, node, configuration, out)
	if err != nil {
		return nil, err
	}
	logger := config.Logger
	if logger == nil {
		logger = types.DefaultLogger()
	}
	g := &DataGenerator{
		generate:      generate,
		actions:       engine.CreateErrorActions(generateConfig.ErrorActions),
		logger:        logger,
		recordsNumber: generateConfig.RecordsNumber,
		out:           make([]*types.Record, len(out)),
	}
	for i, schema := range out {
		g.out[i] = types.NewRecord(schema)
	}
	return g, nil
}

// Generate returns the driven generator.
func (g *DataGenerator) Generate() types.RecordGenerate {
	return g.generate
}

// Run calls Generate recordsNumber times, once when it is negative, stopping early when ctx is done.
func (g *DataGenerator) Run(ctx context.Context, output engine.Output) (err error) {
	if err = g.generate.PreExecute(); err != nil {
		return err
	}
	status := types.RunFinishedOk
	defer func() {
		if postErr := g.generate.PostExecute(status); postErr != nil && err == nil {
			err = postErr
		}
	}()
	n := g.recordsNumber
	if n < 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		if err = ctx.Err(); err != nil {
			status = types.RunAborted
			return err
		}
		if err = g.Next(output); err != nil {
			status = types.RunError
			return err
		}
	}
	return nil
}

// Next runs one generate cycle.
func (g *DataGenerator) Next(output engine.Output) error {
	for _, record := range g.out {
		record.Reset()
	}
	code, err := g.generate.Generate(g.out)
	if err != nil {
		if code, err = g.generate.GenerateOnError(err, g.out); err != nil {
			return err
		}
	}
	return engine.Route(code, g.out, output, g.actions, g.generate.GetMessage, g.logger)
}

// Free frees the driven generator.
func (g *DataGenerator) Free() {
	g.generate.Free()
}
