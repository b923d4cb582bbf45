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

package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal(t *testing.T) {
	b, err := Marshal(map[string]string{"expr": "a<b && c>d"})
	require.Nil(t, err)
	assert.Equal(t, `{"expr":"a<b && c>d"}`, string(b))

	b, err = Marshal2(map[string]string{"expr": "a<b"}, true)
	require.Nil(t, err)
	assert.Equal(t, `{"expr":"a\u003cb"}`, string(b))

	_, err = Marshal(func() {})
	assert.NotNil(t, err)
}
