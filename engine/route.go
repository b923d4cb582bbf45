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

	"github.com/rulego/rulego-transform/api/types"
)

// Output receives a record produced for port. The record is owned by the receiver.
type Output func(port int, record *types.Record) error

// Route sends the output records selected by code, the result of a transform or generate call.
//
//   - ALL sends every output record to its port.
//   - A port index sends only the record of that port.
//   - SKIP sends nothing.
//   - Any other negative code is handled by actions: CONTINUE drops the records and logs
//     message, STOP returns an *ErrorCodeError.
//
// Records are duplicated before being sent so out can be reused for the next call.
func Route(code int, out []*types.Record, output Output, actions ErrorActions, message func() string, logger types.Logger) error {
	switch {
	case code == types.ALL:
		for port, record := range out {
			if err := output(port, record.Duplicate()); err != nil {
				return err
			}
		}
	case types.IsPortIndex(code):
		if code >= len(out) {
			return fmt.Errorf("port %d is out of range, %d output ports are connected", code, len(out))
		}
		return output(code, out[code].Duplicate())
	case code == types.SKIP:
	default:
		return actions.Handle(code, message(), logger)
	}
	return nil
}
