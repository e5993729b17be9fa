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

package rewrite

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/walteh/docscrub/pkg/correction"
	"github.com/walteh/docscrub/pkg/edits"
	"github.com/walteh/docscrub/pkg/markup"
	"github.com/walteh/docscrub/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalidText is returned for entries that are not valid UTF-8
var ErrInvalidText = errors.Base("entry is not valid utf-8")

// separator joins span texts into one correction request
const separator = "\n\n"

// 🔧 Rewriter rewrites the text content of one entry
type Rewriter struct {
	// Pipeline normalizes each markup span
	Pipeline *text.Pipeline
	// DocumentPipeline normalizes plain-text documents, falls back to Pipeline
	DocumentPipeline *text.Pipeline
	// Corrector supplies edits; nil disables corrections
	Corrector correction.Corrector
	// Language is passed through to the corrector
	Language string
}

// 🏭 New creates a rewriter with span and document scope pipelines for policy
func New(policy text.CommaPolicy, c correction.Corrector, language string) *Rewriter {
	return &Rewriter{
		Pipeline:         text.NewPipeline(text.ScopeSpan, policy),
		DocumentPipeline: text.NewPipeline(text.ScopeDocument, policy),
		Corrector:        c,
		Language:         language,
	}
}

// 📦 Outcome is the result of rewriting one entry
type Outcome struct {
	Data         string
	Changed      bool
	Spans        int
	SpansChanged int
	EditsApplied int
}

// 🎯 RewriteEntry normalizes and corrects every tag span of src.
// Bytes outside the inner text of the spans are kept as they are.
func (r *Rewriter) RewriteEntry(ctx context.Context, name string, tag markup.Tag, src string) (Outcome, error) {
	if !utf8.ValidString(src) {
		return Outcome{Data: src}, errors.Errorf("%w: %s", ErrInvalidText, name)
	}

	spans := markup.Collect(src, tag)
	if len(spans) == 0 {
		return Outcome{Data: src}, nil
	}

	normalized := make([]string, len(spans))
	for i, s := range spans {
		normalized[i] = r.Pipeline.NormalizeString(s.Inner)
	}

	final, applied := r.correct(ctx, name, normalized)

	out, changed := markup.Rewrite(src, tag, func(i int, s markup.Span) string {
		if i >= len(final) {
			return s.Inner
		}
		return final[i]
	})

	zerolog.Ctx(ctx).Debug().
		Str("entry", name).
		Str("tag", string(tag)).
		Int("spans", len(spans)).
		Int("spans_changed", changed).
		Int("edits", applied).
		Msg("rewrote entry")

	return Outcome{
		Data:         out,
		Changed:      changed > 0,
		Spans:        len(spans),
		SpansChanged: changed,
		EditsApplied: applied,
	}, nil
}

// 📄 RewriteText treats the whole of src as one span in document scope
func (r *Rewriter) RewriteText(ctx context.Context, name string, src string) (Outcome, error) {
	if !utf8.ValidString(src) {
		return Outcome{Data: src}, errors.Errorf("%w: %s", ErrInvalidText, name)
	}

	p := r.DocumentPipeline
	if p == nil {
		p = r.Pipeline
	}

	out, applied := edits.ApplyFrom(ctx, p.NormalizeString(src), correction.Source(r.Corrector, r.Language))

	o := Outcome{Data: out, Spans: 1, EditsApplied: applied}
	if out != src {
		o.Changed = true
		o.SpansChanged = 1
	}
	return o, nil
}

// correct sends one request for all texts and applies the edits that fall
// inside a single text. A failed request leaves texts as they are.
func (r *Rewriter) correct(ctx context.Context, name string, texts []string) ([]string, int) {
	if r.Corrector == nil || len(texts) == 0 {
		return texts, 0
	}

	batch := newBatch(texts)
	if strings.TrimSpace(batch.joined) == "" {
		return texts, 0
	}

	suggested, err := r.Corrector.SuggestEdits(ctx, batch.joined, r.Language)
	if err != nil {
		zerolog.Ctx(ctx).Warn().
			Err(err).
			Str("entry", name).
			Str("provider", r.Corrector.Name()).
			Msg("correction unavailable, keeping normalized text")
		return texts, 0
	}

	routed, dropped := batch.route(suggested)
	if dropped > 0 {
		zerolog.Ctx(ctx).Debug().Str("entry", name).Int("dropped", dropped).Msg("dropped edits crossing span boundaries")
	}

	out := make([]string, len(texts))
	total := 0
	for i, t := range texts {
		var n int
		out[i], n = edits.Apply(t, routed[i])
		total += n
	}
	return out, total
}
