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

package metrics

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "transform"

var (
	callsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "calls_total"),
		"Number of per-record calls of a transform instance.",
		[]string{"node", "kind"}, nil,
	)
	resultsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "results_total"),
		"Outcomes of per-record calls of a transform instance.",
		[]string{"node", "kind", "result"}, nil,
	)
)

type entry struct {
	kind    string
	metrics *TransformMetrics
}

// Collector is a prometheus.Collector reporting the registered transform instances.
type Collector struct {
	mu      sync.RWMutex
	entries map[string]entry
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{entries: make(map[string]entry)}
}

// Register adds the metrics of the instance owned by node, replacing a previous registration.
func (c *Collector) Register(node string, kind string, m *TransformMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[node] = entry{kind: kind, metrics: m}
}

// Unregister removes the instance owned by node.
func (c *Collector) Unregister(node string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, node)
}

// Nodes returns the registered node ids, sorted.
func (c *Collector) Nodes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	nodes := make([]string, 0, len(c.entries))
	for node := range c.entries {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	return nodes
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- callsDesc
	ch <- resultsDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for node, e := range c.entries {
		m := e.metrics.Get()
		ch <- prometheus.MustNewConstMetric(callsDesc, prometheus.CounterValue, float64(m.Total), node, e.kind)
		for result, v := range map[string]int64{
			"success":    m.Success,
			"failed":     m.Failed,
			"error_code": m.ErrorCodes,
			"skipped":    m.Skipped,
		} {
			ch <- prometheus.MustNewConstMetric(resultsDesc, prometheus.CounterValue, float64(v), node, e.kind, result)
		}
	}
}
