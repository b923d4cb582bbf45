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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuessLanguage(t *testing.T) {
	tests := []struct {
		name   string
		source string
		expect Language
	}{
		{"legacy marker", "//#TL\nfunction integer transform() { return ALL; }", LanguageLegacy},
		{"legacy alt marker", "  //#CTL1\nclass Foo {}", LanguageLegacy},
		{"legacy marker beats body", "//#CTL1\n${in.0.name}", LanguageLegacy},
		{"modern marker", "//#CTL2\nfunction transform() {}", LanguageModern},
		{"marker not at start", "var a;\n//#CTL2\n", LanguageUnknown},
		{"untyped transform", "function transform() { return ALL; }", LanguageLegacy},
		{"untyped generate", "function generate() {}", LanguageLegacy},
		{"untyped partition", "function getOutputPort() { return 0; }", LanguageLegacy},
		{"typed transform", "function string transform() {}", LanguageModern},
		{"typed generate", "function integer generate() {}", LanguageModern},
		{"commented typed header", "/* function integer transform() */\nfunction transform() {}", LanguageLegacy},
		{"commented header only", "// function transform() {}", LanguageUnknown},
		{"class", "class ReformatPerson implements RecordTransform {}", LanguageNative},
		{"placeholder", "out.name = ${in.0.name};", LanguageNativePreprocess},
		{"nothing", "return 1;", LanguageUnknown},
		{"empty", "", LanguageUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, GuessLanguage(tt.source))
		})
	}
}

func TestLegacyMarkerAlwaysWins(t *testing.T) {
	for _, body := range []string{
		"function string transform() {}",
		"class Foo {}",
		"${out.0.x} = 1",
		"garbage",
	} {
		assert.Equal(t, LanguageLegacy, GuessLanguage(LegacyMarker+"\n"+body))
		assert.Equal(t, LanguageLegacy, GuessLanguage(LegacyAltMarker+"\n"+body))
	}
}

func TestParseLanguage(t *testing.T) {
	for name, expect := range map[string]Language{
		"legacy":            LanguageLegacy,
		"CTL1":              LanguageLegacy,
		" modern ":          LanguageModern,
		"ctl2":              LanguageModern,
		"go":                LanguageNative,
		"native-preprocess": LanguageNativePreprocess,
		"expr":              LanguageExpression,
	} {
		language, ok := ParseLanguage(name)
		assert.True(t, ok, name)
		assert.Equal(t, expect, language, name)
	}
	_, ok := ParseLanguage("java")
	assert.False(t, ok)
	assert.Equal(t, "native-preprocess", LanguageNativePreprocess.String())
	assert.Equal(t, "unknown", Language(42).String())
}

func TestNativeClassName(t *testing.T) {
	name, ok := NativeClassName("// class Commented\nclass Real extends Base {}")
	assert.True(t, ok)
	assert.Equal(t, "Real", name)
	_, ok = NativeClassName("function transform() {}")
	assert.False(t, ok)
}
