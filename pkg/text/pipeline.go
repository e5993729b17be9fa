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
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ✂️ CommaPolicy selects how spacing around commas is normalized
type CommaPolicy string

const (
	// CommaRemoveSpaceBefore removes a single space before '.' or ','
	CommaRemoveSpaceBefore CommaPolicy = "remove_space_before"
	// CommaInsertSpaceAfter inserts a space after ',' when one is missing
	CommaInsertSpaceAfter CommaPolicy = "insert_space_after"
)

// ParseCommaPolicy validates a policy name. Empty selects the default.
func ParseCommaPolicy(s string) (CommaPolicy, error) {
	switch CommaPolicy(strings.TrimSpace(s)) {
	case "", CommaRemoveSpaceBefore:
		return CommaRemoveSpaceBefore, nil
	case CommaInsertSpaceAfter:
		return CommaInsertSpaceAfter, nil
	}
	return "", errors.Errorf("unknown comma policy %q", s)
}

// 🔭 Scope says how much text one Normalize call sees
type Scope int

const (
	// ScopeSpan is a single text node
	ScopeSpan Scope = iota
	// ScopeDocument is the whole text of an entry, so paragraph breaks are visible
	ScopeDocument
)

// 📊 Result describes one normalization
type Result struct {
	// Original is the input text
	Original string

	// Normalized is the text after every rule ran
	Normalized string

	// WasModified is true when Normalized differs from Original
	WasModified bool

	// Applied lists the names of rules that changed the text, in order
	Applied []string
}

// 🧹 Pipeline runs a fixed, ordered list of rules
type Pipeline struct {
	rules []Rule
}

// 🏭 NewPipeline builds the canonical rule order for the given scope and policy
func NewPipeline(scope Scope, policy CommaPolicy) *Pipeline {
	rules := []Rule{
		NBSPRule(),
		CollapseSpacesRule(),
	}
	if scope == ScopeDocument {
		rules = append(rules, CollapseParagraphsRule())
	}
	rules = append(rules, SpaceBeforeMarkRule())
	if policy == CommaInsertSpaceAfter {
		rules = append(rules, CommaSpaceAfterRule())
	} else {
		rules = append(rules, SpaceBeforeStopRule())
	}
	rules = append(rules, EllipsisRule())

	return &Pipeline{rules: rules}
}

// NewPipelineFromRules builds a pipeline running rules in the given order
func NewPipelineFromRules(rules ...Rule) *Pipeline {
	return &Pipeline{rules: rules}
}

// Rules returns the rules in execution order
func (p *Pipeline) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	copy(out, p.rules)
	return out
}

// 🏃 Normalize runs every rule in order over s
func (p *Pipeline) Normalize(s string) Result {
	result := Result{
		Original:   s,
		Normalized: s,
	}

	current := s
	for _, rule := range p.rules {
		next := rule.Apply(current)
		if next != current {
			result.Applied = append(result.Applied, rule.Name())
		}
		current = next
	}

	result.Normalized = current
	result.WasModified = current != s
	return result
}

// NormalizeString is Normalize without the bookkeeping
func (p *Pipeline) NormalizeString(s string) string {
	return p.Normalize(s).Normalized
}
