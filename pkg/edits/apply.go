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

package edits

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
)

// ✏️ Edit replaces Length runes starting at Offset of the pre-edit text
type Edit struct {
	Offset      int    `json:"offset"`
	Length      int    `json:"length"`
	Replacement string `json:"replacement"`
}

func (e Edit) String() string {
	return fmt.Sprintf("(%d,%d,%q)", e.Offset, e.Length, e.Replacement)
}

// 🔌 Source supplies edits for a text
type Source interface {
	Suggest(ctx context.Context, text string) ([]Edit, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context, text string) ([]Edit, error)

func (f SourceFunc) Suggest(ctx context.Context, text string) ([]Edit, error) {
	return f(ctx, text)
}

// 🔧 Apply splices edits into text in ascending offset order.
//
// Offsets refer to the original text; a running shift maps them onto the
// partially edited text. Edits with an empty replacement are skipped. The
// live text under a shifted edit is not re-checked, so overlapping edits
// drift instead of failing. Edits that land outside the current text are
// skipped. It returns the new text and the number of edits applied.
func Apply(text string, edits []Edit) (string, int) {
	if len(edits) == 0 {
		return text, 0
	}

	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b Edit) int {
		return a.Offset - b.Offset
	})

	rs := []rune(text)
	shift := 0
	applied := 0

	for _, e := range sorted {
		if e.Replacement == "" {
			continue
		}
		pos := e.Offset + shift
		if e.Offset < 0 || e.Length < 0 || pos < 0 || pos+e.Length > len(rs) {
			continue
		}

		rep := []rune(e.Replacement)
		next := make([]rune, 0, len(rs)-e.Length+len(rep))
		next = append(next, rs[:pos]...)
		next = append(next, rep...)
		next = append(next, rs[pos+e.Length:]...)
		rs = next

		shift += len(rep) - e.Length
		applied++
	}

	if applied == 0 {
		return text, 0
	}
	return string(rs), applied
}

// 🛡️ ApplyFrom asks src for edits and applies them.
//
// A failing source yields the input unchanged with zero applied edits.
func ApplyFrom(ctx context.Context, text string, src Source) (string, int) {
	if src == nil {
		return text, 0
	}

	found, err := src.Suggest(ctx, text)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("edit source unavailable, leaving text unchanged")
		return text, 0
	}

	return Apply(text, found)
}
