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

package transform

import (
	"context"

	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/engine"
)

// Reformat runs a RecordTransform over input record sets the way a reformat node does:
// it resets the output records, calls Transform, falls back to TransformOnError when
// Transform fails and routes the result with engine.Route.
type Reformat struct {
	transform types.RecordTransform
	actions   engine.ErrorActions
	logger    types.Logger
	out       []*types.Record
}

// NewReformat creates the transform configured by configuration and the driver running it.
// The errorActions key of configuration defaults to engine.DefaultErrorActions.
func NewReformat(config types.Config, node types.Node, configuration types.Configuration,
	in []*types.RecordSchema, out []*types.RecordSchema) (*Reformat, error) {
	transformConfig, err := decodeConfiguration(node, configuration)
	if err != nil {
		return nil, err
	}
	transform, err := NewRecordTransform(config, node, configuration, in, out)
	if err != nil {
		return nil, err
	}
	return NewReformatWith(transform, engine.CreateErrorActions(transformConfig.ErrorActions), config.Logger, out), nil
}

// NewReformatWith drives an initialized transform.
func NewReformatWith(transform types.RecordTransform, actions engine.ErrorActions, logger types.Logger, out []*types.RecordSchema) *Reformat {
	if logger == nil {
		logger = types.DefaultLogger()
	}
	r := &Reformat{
		transform: transform,
		actions:   actions,
		logger:    logger,
		out:       make([]*types.Record, len(out)),
	}
	for i, schema := range out {
		r.out[i] = types.NewRecord(schema)
	}
	return r
}

// Transform returns the driven transform.
func (r *Reformat) Transform() types.RecordTransform {
	return r.transform
}

// Run processes every record set received from inputs until it is closed or ctx is done.
// PreExecute and PostExecute bracket the run, PostExecute is called even when the run fails.
func (r *Reformat) Run(ctx context.Context, inputs <-chan []*types.Record, output engine.Output) (err error) {
	if err = r.transform.PreExecute(); err != nil {
		return err
	}
	status := types.RunFinishedOk
	defer func() {
		if postErr := r.transform.PostExecute(status); postErr != nil && err == nil {
			err = postErr
		}
	}()
	for {
		select {
		case <-ctx.Done():
			status = types.RunAborted
			return ctx.Err()
		case in, ok := <-inputs:
			if !ok {
				return nil
			}
			if err = r.Process(in, output); err != nil {
				status = types.RunError
				return err
			}
		}
	}
}

// Process transforms one input record set.
func (r *Reformat) Process(in []*types.Record, output engine.Output) error {
	for _, record := range r.out {
		record.Reset()
	}
	code, err := r.transform.Transform(in, r.out)
	if err != nil {
		if code, err = r.transform.TransformOnError(err, in, r.out); err != nil {
			return err
		}
	}
	return engine.Route(code, r.out, output, r.actions, r.transform.GetMessage, r.logger)
}

// Free frees the driven transform.
func (r *Reformat) Free() {
	r.transform.Free()
}
