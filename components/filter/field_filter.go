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

package filter

import (
	"strings"

	"github.com/rulego/rulego-transform/api/types"
	"github.com/rulego/rulego-transform/engine"
	"github.com/rulego/rulego-transform/utils/maps"
)

// FieldFilterName is the native name of FieldFilter.
const FieldFilterName = "FieldFilter"

// init 注册FieldFilter原生过滤器
// init registers FieldFilter with the default native registry.
func init() {
	_ = engine.Natives.Register(FieldFilterName, func() types.Transform {
		return &FieldFilter{}
	})
}

// FieldFilterConfiguration FieldFilter配置结构
// FieldFilterConfiguration defines the configuration of FieldFilter.
type FieldFilterConfiguration struct {
	// CheckAllKeys 决定字段检查逻辑
	// CheckAllKeys determines the checking logic:
	//   - true: every listed field must be non-null for the record to pass
	//   - false: any listed field being non-null passes the record
	CheckAllKeys bool
	// FieldNames 逗号分隔的字段名称
	// FieldNames lists the checked fields, separated by commas.
	//
	// Example: "name,age"
	FieldNames string
}

// FieldFilter 根据指定字段是否为空过滤记录
// FieldFilter passes records whose listed fields hold values.
type FieldFilter struct {
	CompiledFilter
	// Config 字段过滤器配置
	Config  FieldFilterConfiguration
	indexes []int
}

var _ types.RecordFilter = (*FieldFilter)(nil)

// Init 初始化组件，解析字段名称并在输入schema中定位
// Init resolves the listed fields in the input schema. Unknown fields are configuration errors.
func (x *FieldFilter) Init(configuration types.Configuration, in []*types.RecordSchema, out []*types.RecordSchema) error {
	if err := maps.Map2Struct(configuration, &x.Config); err != nil {
		return types.WrapComponentNotReady(x.NodeId(), err, "invalid %s configuration", FieldFilterName)
	}
	if len(in) == 0 || in[0] == nil {
		return types.NewComponentNotReady(x.NodeId(), "%s needs an input schema", FieldFilterName)
	}
	x.indexes = x.indexes[:0]
	for _, name := range strings.Split(x.Config.FieldNames, ",") {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		i, ok := in[0].FieldIndex(name)
		if !ok {
			return types.NewComponentNotReady(x.NodeId(), "%s: schema %s has no field %s", FieldFilterName, in[0].Name(), name)
		}
		x.indexes = append(x.indexes, i)
	}
	return nil
}

// IsValid 验证记录
// IsValid applies the ALL or ANY rule. An empty field list passes every record.
func (x *FieldFilter) IsValid(record *types.Record) (bool, error) {
	m := x.Metrics()
	m.IncrementTotal()
	m.IncrementSuccess()
	if len(x.indexes) == 0 {
		return true, nil
	}
	for _, i := range x.indexes {
		isNull := record.IsNull(i)
		if x.Config.CheckAllKeys && isNull {
			m.IncrementSkipped()
			return false, nil
		}
		if !x.Config.CheckAllKeys && !isNull {
			return true, nil
		}
	}
	if !x.Config.CheckAllKeys {
		m.IncrementSkipped()
	}
	return x.Config.CheckAllKeys, nil
}
