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
	"regexp"
	"strings"

	"github.com/rulego/rulego-transform/utils/str"
)

// Language is the execution strategy of a transform source.
type Language int

const (
	// LanguageUnknown is returned when no check matches. It is always a configuration error.
	LanguageUnknown Language = iota
	// LanguageLegacy is the legacy script dialect.
	LanguageLegacy
	// LanguageModern is the typed script dialect, interpreted or compiled.
	LanguageModern
	// LanguageNative is Go code registered in a NativeRegistry.
	LanguageNative
	// LanguageNativePreprocess is native code with `${in.field}` placeholders needing textual substitution.
	LanguageNativePreprocess
	// LanguageExpression is an expr-lang expression. It is never detected, only pinned.
	LanguageExpression
)

var languageNames = map[Language]string{
	LanguageUnknown:          "unknown",
	LanguageLegacy:           "legacy",
	LanguageModern:           "modern",
	LanguageNative:           "native",
	LanguageNativePreprocess: "native-preprocess",
	LanguageExpression:       "expr",
}

func (l Language) String() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return languageNames[LanguageUnknown]
}

// ParseLanguage resolves a configured language name, case-insensitively.
func ParseLanguage(name string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "legacy", "tl", "ctl1":
		return LanguageLegacy, true
	case "modern", "ctl2":
		return LanguageModern, true
	case "native", "go":
		return LanguageNative, true
	case "native-preprocess":
		return LanguageNativePreprocess, true
	case "expr", "expression":
		return LanguageExpression, true
	default:
		return LanguageUnknown, false
	}
}

const (
	LegacyMarker    = "//#TL"
	LegacyAltMarker = "//#CTL1"
	ModernMarker    = "//#CTL2"
)

var (
	legacyMarkerPattern = regexp.MustCompile(`^\s*(` + regexp.QuoteMeta(LegacyMarker) + `|` + regexp.QuoteMeta(LegacyAltMarker) + `)`)
	modernMarkerPattern = regexp.MustCompile(`^\s*` + regexp.QuoteMeta(ModernMarker))
	modernEntryPattern  = regexp.MustCompile(`\bfunction\s+[a-z]+\s+(transform|generate|getOutputPort)\b`)
	legacyEntryPattern  = regexp.MustCompile(`\bfunction\s+(transform|generate|getOutputPort)\b`)
	classPattern        = regexp.MustCompile(`\bclass\s+(\w+)`)
	placeholderPattern  = regexp.MustCompile(`\$\{(out|in)\.`)
)

// GuessLanguage classifies source text. Checks run in order, first match wins:
//
//  1. a legacy marker at the start of the raw text
//  2. the modern marker at the start of the raw text
//  3. an entry point declared with a return-type token, e.g. `function integer transform`
//  4. an entry point declared without one, e.g. `function transform`
//  5. a `class Name` declaration selecting native code
//  6. a `${in.` or `${out.` placeholder selecting native code needing preprocessing
//
// Checks 3 to 6 run on the text with comments stripped.
func GuessLanguage(source string) Language {
	if legacyMarkerPattern.MatchString(source) {
		return LanguageLegacy
	}
	if modernMarkerPattern.MatchString(source) {
		return LanguageModern
	}
	code := str.StripComments(source)
	switch {
	case modernEntryPattern.MatchString(code):
		return LanguageModern
	case legacyEntryPattern.MatchString(code):
		return LanguageLegacy
	case classPattern.MatchString(code):
		return LanguageNative
	case placeholderPattern.MatchString(code):
		return LanguageNativePreprocess
	default:
		return LanguageUnknown
	}
}

// NativeClassName returns the name of the first class declared by source.
func NativeClassName(source string) (string, bool) {
	m := classPattern.FindStringSubmatch(str.StripComments(source))
	if m == nil {
		return "", false
	}
	return m[1], true
}
