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

// Return vocabulary of the per-record operations of transforms, generators and partitions.
// The values are shared with script runtimes, where they are exposed as the globals `ALL` and `SKIP`.
const (
	// ALL means every output port received a record.
	ALL = -1
	// SKIP means no record is produced for this cycle.
	SKIP = -2
)

// IsPortIndex reports whether code addresses a single output port.
func IsPortIndex(code int) bool {
	return code >= 0
}

// IsErrorCode reports whether code is a user error code, i.e. neither ALL, SKIP nor a port index.
// The host looks it up in the error action table.
func IsErrorCode(code int) bool {
	return code < 0 && code != ALL && code != SKIP
}

// TransformKind identifies a family of row-level logic sharing one per-record contract.
type TransformKind int

const (
	KindFilter TransformKind = iota
	KindTransform
	KindGenerate
	KindPartition
)

func (k TransformKind) String() string {
	switch k {
	case KindFilter:
		return "filter"
	case KindTransform:
		return "transform"
	case KindGenerate:
		return "generate"
	case KindPartition:
		return "partition"
	default:
		return "unknown"
	}
}

// RunStatus is the completion status of a graph run, passed to PostExecute.
type RunStatus int

const (
	RunFinishedOk RunStatus = iota
	RunError
	RunAborted
)

func (s RunStatus) String() string {
	switch s {
	case RunFinishedOk:
		return "FINISHED_OK"
	case RunError:
		return "ERROR"
	case RunAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// Transform is the lifecycle every transform implementation satisfies, whatever produced it.
//
// Lifecycle: SetNode/SetGraphContext -> Init (once) -> { PreExecute -> per-record operations -> PostExecute }
// repeated once per graph run -> Free (once). Resources acquired in Init are released in Free,
// resources acquired in PreExecute are released in PostExecute. The host calls PostExecute after
// every run, successful or not.
//
// An instance is owned by exactly one node and is never called concurrently; the records handed to
// it are reused in place across calls.
type Transform interface {
	// SetNode binds the owning node.
	SetNode(node Node)
	// SetGraphContext binds the graph runtime context, may be nil.
	SetGraphContext(ctx GraphContext)
	// Init prepares the instance. Failures are ComponentNotReady errors.
	Init(configuration Configuration, in []*RecordSchema, out []*RecordSchema) error
	// PreExecute is called once at the start of every run. It clears the last message.
	PreExecute() error
	// PostExecute is called once at the end of every run.
	PostExecute(status RunStatus) error
	// GetMessage returns the last error message of the current run, or "".
	GetMessage() string
	// Free releases everything acquired by Init. The instance must not be used afterwards.
	Free()
}

// RecordFilter decides whether a record passes.
type RecordFilter interface {
	Transform
	// IsValid reports whether record passes the filter.
	IsValid(record *Record) (bool, error)
}

// RecordTransform maps input records onto output records.
type RecordTransform interface {
	Transform
	// Transform fills out from in and returns ALL, SKIP, a port index or a user error code.
	Transform(in []*Record, out []*Record) (int, error)
	// TransformOnError is called by the host when Transform failed with cause.
	TransformOnError(cause error, in []*Record, out []*Record) (int, error)
}

// RecordGenerate produces output records without input.
type RecordGenerate interface {
	Transform
	// Generate fills out and returns ALL, SKIP, a port index or a user error code.
	Generate(out []*Record) (int, error)
	// GenerateOnError is called by the host when Generate failed with cause.
	GenerateOnError(cause error, out []*Record) (int, error)
}

// PartitionFunction routes a record to an output port.
type PartitionFunction interface {
	Transform
	// GetOutputPort returns the port index record is sent to.
	GetOutputPort(record *Record) (int, error)
	// GetOutputPortOnError is called by the host when GetOutputPort failed with cause.
	GetOutputPortOnError(cause error, record *Record) (int, error)
}
