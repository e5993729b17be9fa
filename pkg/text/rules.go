// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package text

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// 📏 Rule is a single total text rewrite. Applied alone it is idempotent.
type Rule interface {
	// Name identifies the rule in logs and results
	Name() string
	// Apply returns the rewritten text
	Apply(s string) string
}

// 🔄 regexRule replaces every match of re with repl
type regexRule struct {
	name string
	re   *regexp.Regexp
	repl string
}

func (r *regexRule) Name() string { return r.name }

func (r *regexRule) Apply(s string) string {
	return r.re.ReplaceAllString(s, r.repl)
}

// 🔤 nbspRule turns non-breaking space variants into plain spaces
type nbspRule struct {
	t transform.Transformer
}

func newNBSPRule() *nbspRule {
	return &nbspRule{
		t: runes.Map(func(r rune) rune {
			switch r {
			case '\u00a0', '\u2007', '\u202f':
				return ' '
			}
			return r
		}),
	}
}

func (r *nbspRule) Name() string { return "nbsp" }

func (r *nbspRule) Apply(s string) string {
	if !strings.ContainsAny(s, "\u00a0\u2007\u202f") {
		return s
	}
	out, _, err := transform.String(r.t, s)
	if err != nil {
		return s
	}
	return out
}

// ✍️ commaSpaceRule inserts one space after a comma followed by a word character
type commaSpaceRule struct{}

func (commaSpaceRule) Name() string { return "comma_space_after" }

func (commaSpaceRule) Apply(s string) string {
	if !strings.Contains(s, ",") {
		return s
	}

	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i, r := range rs {
		b.WriteRune(r)
		if r != ',' || i+1 >= len(rs) {
			continue
		}
		next := rs[i+1]
		if unicode.IsSpace(next) || unicode.IsPunct(next) || unicode.IsSymbol(next) {
			continue
		}
		// 1,5 stays a number
		if i > 0 && unicode.IsDigit(rs[i-1]) && unicode.IsDigit(next) {
			continue
		}
		b.WriteByte(' ')
	}
	return b.String()
}

var (
	horizontalRunRe   = regexp.MustCompile(`[\t\p{Zs}]{2,}`)
	paragraphRunRe    = regexp.MustCompile(`(?:\r?\n){3,}`)
	spaceBeforeMarkRe = regexp.MustCompile(`[\s\p{Zs}]+([:;!?])`)
	spaceBeforeStopRe = regexp.MustCompile(` +([.,])`)
	ellipsisRunRe     = regexp.MustCompile(`\.{4,}`)
)

// NBSPRule replaces non-breaking spaces with ordinary spaces
func NBSPRule() Rule { return newNBSPRule() }

// CollapseSpacesRule collapses runs of horizontal whitespace into one space
func CollapseSpacesRule() Rule {
	return &regexRule{name: "collapse_spaces", re: horizontalRunRe, repl: " "}
}

// 📄 paragraphRule keeps the line ending of the run it collapses
type paragraphRule struct{}

func (paragraphRule) Name() string { return "collapse_paragraphs" }

func (paragraphRule) Apply(s string) string {
	return paragraphRunRe.ReplaceAllStringFunc(s, func(run string) string {
		if strings.HasPrefix(run, "\r\n") {
			return "\r\n\r\n"
		}
		return "\n\n"
	})
}

// CollapseParagraphsRule turns three or more line breaks into a blank line
func CollapseParagraphsRule() Rule { return paragraphRule{} }

// SpaceBeforeMarkRule removes whitespace before : ; ! ?
func SpaceBeforeMarkRule() Rule {
	return &regexRule{name: "space_before_mark", re: spaceBeforeMarkRe, repl: "$1"}
}

// SpaceBeforeStopRule removes the space before . or ,
func SpaceBeforeStopRule() Rule {
	return &regexRule{name: "space_before_stop", re: spaceBeforeStopRe, repl: "$1"}
}

// CommaSpaceAfterRule inserts a space after a comma when one is missing
func CommaSpaceAfterRule() Rule { return commaSpaceRule{} }

// EllipsisRule collapses four or more dots into three
func EllipsisRule() Rule {
	return &regexRule{name: "ellipsis", re: ellipsisRunRe, repl: "..."}
}
