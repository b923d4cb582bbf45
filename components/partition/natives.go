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

package partition

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/engine"
	"github.com/rulego/rulego-transform/utils/cast"
)

const (
	RoundRobinPartitionClass = "RoundRobinPartition"
	HashPartitionClass       = "HashPartition"
)

var keySeparator = regexp.MustCompile(`[,;]`)

func init() {
	_ = engine.Natives.Register(RoundRobinPartitionClass, func() types.Transform {
		return &RoundRobinPartition{}
	})
	_ = engine.Natives.Register(HashPartitionClass, func() types.Transform {
		return &HashPartition{}
	})
}

// RoundRobinPartition sends records to the ports in turn.
type RoundRobinPartition struct {
	CompiledPartition
	partitions int
	last       int
}

var _ types.PartitionFunction = (*RoundRobinPartition)(nil)

func (r *RoundRobinPartition) Init(configuration types.Configuration, in []*types.RecordSchema, out []*types.RecordSchema) error {
	if len(out) == 0 {
		return types.NewComponentNotReady(r.NodeId(), "%s needs at least one output port", RoundRobinPartitionClass)
	}
	r.partitions = len(out)
	r.last = -1
	return nil
}

// PreExecute restarts from port 0.
func (r *RoundRobinPartition) PreExecute() error {
	r.last = -1
	return r.CompiledPartition.PreExecute()
}

func (r *RoundRobinPartition) GetOutputPort(record *types.Record) (int, error) {
	if r.partitions == 0 {
		return 0, types.ErrNotInitialized
	}
	r.last = (r.last + 1) % r.partitions
	return r.last, nil
}

// HashPartition sends records with equal key fields to the same port.
// The port is the FNV-1a hash of the key values modulo the number of ports.
type HashPartition struct {
	CompiledPartition
	partitions int
	keys       []int
}

var _ types.PartitionFunction = (*HashPartition)(nil)

// Init resolves the partitionKey fields of the configuration against the input schema.
func (h *HashPartition) Init(configuration types.Configuration, in []*types.RecordSchema, out []*types.RecordSchema) error {
	if len(in) == 0 || len(out) == 0 {
		return types.NewComponentNotReady(h.NodeId(), "%s needs the input schema and at least one output port", HashPartitionClass)
	}
	key, _ := configuration["partitionKey"].(string)
	names := ParseKey(key)
	if len(names) == 0 {
		return types.NewComponentNotReady(h.NodeId(), "%s needs a partitionKey", HashPartitionClass)
	}
	h.keys = make([]int, len(names))
	for i, name := range names {
		idx, ok := in[0].FieldIndex(name)
		if !ok {
			return types.NewComponentNotReady(h.NodeId(), "partition key field %s is not in %s", name, in[0].Name())
		}
		h.keys[i] = idx
	}
	h.partitions = len(out)
	return nil
}

func (h *HashPartition) GetOutputPort(record *types.Record) (int, error) {
	if h.partitions == 0 {
		return 0, types.ErrNotInitialized
	}
	hash := fnv.New32a()
	for _, idx := range h.keys {
		v := record.Get(idx)
		if v == nil {
			_, _ = hash.Write([]byte{0})
			continue
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return 0, fmt.Errorf("partition key %s: %w", record.Schema().Field(idx).Name, err)
		}
		_, _ = hash.Write([]byte(s))
		_, _ = hash.Write([]byte{1})
	}
	return int(hash.Sum32() % uint32(h.partitions)), nil
}

// ParseKey splits a key field list.
func ParseKey(key string) []string {
	var names []string
	for _, name := range keySeparator.Split(key, -1) {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
