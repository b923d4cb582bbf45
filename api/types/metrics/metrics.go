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

// Package metrics counts the per-record calls of transform instances and
// exposes them to Prometheus.
package metrics

import (
	"sync/atomic"
)

// TransformMetrics holds the call counters of one transform instance.
// Counters are updated atomically, so a Collector may read them while the owning node runs.
type TransformMetrics struct {
	Total      int64 // Number of per-record calls
	Success    int64 // Calls returning a valid result
	Failed     int64 // Calls raising a runtime error
	ErrorCodes int64 // Calls returning a user error code
	Skipped    int64 // Calls returning SKIP or rejecting the record
}

// NewTransformMetrics creates a new instance of TransformMetrics.
func NewTransformMetrics() *TransformMetrics {
	return &TransformMetrics{}
}

// IncrementTotal increases the total count of calls.
func (m *TransformMetrics) IncrementTotal() {
	atomic.AddInt64(&m.Total, 1)
}

// IncrementSuccess increases the count of successful calls.
func (m *TransformMetrics) IncrementSuccess() {
	atomic.AddInt64(&m.Success, 1)
}

// IncrementFailed increases the count of failed calls.
func (m *TransformMetrics) IncrementFailed() {
	atomic.AddInt64(&m.Failed, 1)
}

// IncrementErrorCodes increases the count of calls returning a user error code.
func (m *TransformMetrics) IncrementErrorCodes() {
	atomic.AddInt64(&m.ErrorCodes, 1)
}

// IncrementSkipped increases the count of skipped records.
func (m *TransformMetrics) IncrementSkipped() {
	atomic.AddInt64(&m.Skipped, 1)
}

// Get returns a copy of the current metrics.
func (m *TransformMetrics) Get() TransformMetrics {
	return TransformMetrics{
		Total:      atomic.LoadInt64(&m.Total),
		Success:    atomic.LoadInt64(&m.Success),
		Failed:     atomic.LoadInt64(&m.Failed),
		ErrorCodes: atomic.LoadInt64(&m.ErrorCodes),
		Skipped:    atomic.LoadInt64(&m.Skipped),
	}
}

// Reset resets all metrics to zero.
func (m *TransformMetrics) Reset() {
	atomic.StoreInt64(&m.Total, 0)
	atomic.StoreInt64(&m.Success, 0)
	atomic.StoreInt64(&m.Failed, 0)
	atomic.StoreInt64(&m.ErrorCodes, 0)
	atomic.StoreInt64(&m.Skipped, 0)
}
