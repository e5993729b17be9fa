package document

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/docscrub/pkg/markup"
)

// 🎯 Target selects entries whose text is rewritten
type Target struct {
	// Pattern is an exact entry name or a doublestar glob
	Pattern string
	// Tag wraps the text nodes; empty means the entry is plain text
	Tag markup.Tag
}

func (t Target) isGlob() bool {
	return strings.ContainsAny(t.Pattern, "*?[{")
}

// TargetSet is the ordered list of targets for one format
type TargetSet []Target

// Resolved is a target bound to an entry that exists in the package
type Resolved struct {
	Name string
	Tag  markup.Tag
}

// 🔍 Resolve lists the entries to rewrite: exact names in set order, then
// glob matches in package order. Missing names are ignored and every entry
// appears at most once.
func (ts TargetSet) Resolve(pkg *Package) []Resolved {
	var out []Resolved
	seen := make(map[string]bool)

	for _, t := range ts {
		if t.isGlob() || seen[t.Pattern] || !pkg.Has(t.Pattern) {
			continue
		}
		seen[t.Pattern] = true
		out = append(out, Resolved{Name: t.Pattern, Tag: t.Tag})
	}

	for _, name := range pkg.Names() {
		if seen[name] {
			continue
		}
		for _, t := range ts {
			if !t.isGlob() {
				continue
			}
			if ok, err := doublestar.Match(t.Pattern, name); err == nil && ok {
				seen[name] = true
				out = append(out, Resolved{Name: name, Tag: t.Tag})
				break
			}
		}
	}

	return out
}

// With returns a copy of ts extended with extra glob patterns using tag
func (ts TargetSet) With(tag markup.Tag, patterns ...string) TargetSet {
	out := make(TargetSet, 0, len(ts)+len(patterns))
	out = append(out, ts...)
	for _, p := range patterns {
		out = append(out, Target{Pattern: p, Tag: tag})
	}
	return out
}
