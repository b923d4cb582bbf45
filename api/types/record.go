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
	"fmt"
	"strings"

	"github.com/rulego/rulego-transform/utils/cast"
)

// DataType is the type of a record field.
type DataType string

const (
	STRING  = DataType("string")
	INTEGER = DataType("integer")
	LONG    = DataType("long")
	NUMBER  = DataType("number")
	BOOLEAN = DataType("boolean")
	DATE    = DataType("date")
	BYTE    = DataType("byte")
)

// Convert coerces value to the Go representation of t:
// string, int32, int64, float64, bool, time.Time or []byte. nil stays nil.
func (t DataType) Convert(value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	switch t {
	case STRING:
		return cast.ToStringE(value)
	case INTEGER:
		return cast.ToInt32E(value)
	case LONG:
		return cast.ToInt64E(value)
	case NUMBER:
		return cast.ToFloat64E(value)
	case BOOLEAN:
		return cast.ToBoolE(value)
	case DATE:
		return cast.ToTimeE(value)
	case BYTE:
		return cast.ToBytesE(value)
	default:
		return nil, fmt.Errorf("unsupported data type %q", string(t))
	}
}

// FieldMeta describes one field of a record schema.
type FieldMeta struct {
	Name string
	// Label defaults to Name.
	Label string
	Type  DataType
}

// NewField creates a field descriptor labelled with its name.
func NewField(name string, dataType DataType) FieldMeta {
	return FieldMeta{Name: name, Label: name, Type: dataType}
}

// RecordSchema is an ordered, immutable list of field descriptors with unique names.
// It is shared by reference among the transforms that use it.
type RecordSchema struct {
	name    string
	fields  []FieldMeta
	indexes map[string]int
}

// NewRecordSchema creates a schema. Field names must be unique and not empty.
func NewRecordSchema(name string, fields ...FieldMeta) (*RecordSchema, error) {
	s := &RecordSchema{
		name:    name,
		fields:  make([]FieldMeta, len(fields)),
		indexes: make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema %s: field %d has no name", name, i)
		}
		if _, ok := s.indexes[f.Name]; ok {
			return nil, fmt.Errorf("schema %s: duplicate field name %s", name, f.Name)
		}
		if f.Label == "" {
			f.Label = f.Name
		}
		s.fields[i] = f
		s.indexes[f.Name] = i
	}
	return s, nil
}

// MustRecordSchema is like NewRecordSchema but panics on invalid fields.
func MustRecordSchema(name string, fields ...FieldMeta) *RecordSchema {
	s, err := NewRecordSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name.
func (s *RecordSchema) Name() string {
	return s.name
}

// NumFields returns the number of fields.
func (s *RecordSchema) NumFields() int {
	return len(s.fields)
}

// Field returns the descriptor at index i.
func (s *RecordSchema) Field(i int) FieldMeta {
	return s.fields[i]
}

// Fields returns a copy of the descriptors in declared order.
func (s *RecordSchema) Fields() []FieldMeta {
	fields := make([]FieldMeta, len(s.fields))
	copy(fields, s.fields)
	return fields
}

// FieldIndex returns the position of the field named name.
func (s *RecordSchema) FieldIndex(name string) (int, bool) {
	i, ok := s.indexes[name]
	return i, ok
}

// FieldNames returns the field names in declared order.
func (s *RecordSchema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

func (s *RecordSchema) String() string {
	var sb strings.Builder
	sb.WriteString(s.name)
	sb.WriteString("(")
	for i, f := range s.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Name)
		sb.WriteString(" ")
		sb.WriteString(string(f.Type))
	}
	sb.WriteString(")")
	return sb.String()
}

// Record is a fixed-shape tuple of typed values conforming to a schema.
// Records are overwritten in place across calls; callers that need to keep
// data must Duplicate the record.
type Record struct {
	schema *RecordSchema
	values []interface{}
}

// NewRecord creates a record with all fields null.
func NewRecord(schema *RecordSchema) *Record {
	return &Record{schema: schema, values: make([]interface{}, schema.NumFields())}
}

// Schema returns the schema the record conforms to.
func (r *Record) Schema() *RecordSchema {
	return r.schema
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.values)
}

// Get returns the value at index i.
func (r *Record) Get(i int) interface{} {
	return r.values[i]
}

// Set converts value to the type of field i and stores it.
// On a conversion error the field is left unchanged.
func (r *Record) Set(i int, value interface{}) error {
	if i < 0 || i >= len(r.values) {
		return fmt.Errorf("field index %d out of range for schema %s", i, r.schema.name)
	}
	f := r.schema.fields[i]
	v, err := f.Type.Convert(value)
	if err != nil {
		return fmt.Errorf("field %s.%s: %w", r.schema.name, f.Name, err)
	}
	r.values[i] = v
	return nil
}

// GetByName returns the value of the field named name.
func (r *Record) GetByName(name string) (interface{}, bool) {
	i, ok := r.schema.indexes[name]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// SetByName converts value and stores it in the field named name.
func (r *Record) SetByName(name string, value interface{}) error {
	i, ok := r.schema.indexes[name]
	if !ok {
		return fmt.Errorf("schema %s has no field %s", r.schema.name, name)
	}
	return r.Set(i, value)
}

// IsNull reports whether field i holds no value.
func (r *Record) IsNull(i int) bool {
	return r.values[i] == nil
}

// Reset sets every field to null.
func (r *Record) Reset() {
	for i := range r.values {
		r.values[i] = nil
	}
}

// CopyFrom copies the values of other, which must share the schema.
func (r *Record) CopyFrom(other *Record) error {
	if other.schema != r.schema {
		return fmt.Errorf("cannot copy record of schema %s into schema %s", other.schema.name, r.schema.name)
	}
	copy(r.values, other.values)
	return nil
}

// Duplicate returns an independent copy.
func (r *Record) Duplicate() *Record {
	values := make([]interface{}, len(r.values))
	copy(values, r.values)
	return &Record{schema: r.schema, values: values}
}

// Values returns a copy of the values keyed by field name.
func (r *Record) Values() map[string]interface{} {
	m := make(map[string]interface{}, len(r.values))
	for i, f := range r.schema.fields {
		m[f.Name] = r.values[i]
	}
	return m
}

func (r *Record) String() string {
	var sb strings.Builder
	sb.WriteString(r.schema.name)
	sb.WriteString("{")
	for i, f := range r.schema.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Name)
		sb.WriteString("=")
		sb.WriteString(fmt.Sprintf("%v", r.values[i]))
	}
	sb.WriteString("}")
	return sb.String()
}
