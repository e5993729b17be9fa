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

package sanitize

import (
	"context"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/docscrub/pkg/correction"
	"github.com/walteh/docscrub/pkg/document"
	"github.com/walteh/docscrub/pkg/gate"
	"github.com/walteh/docscrub/pkg/markup"
	"github.com/walteh/docscrub/pkg/metadata"
	"github.com/walteh/docscrub/pkg/rewrite"
	"github.com/walteh/docscrub/pkg/status"
	"github.com/walteh/docscrub/pkg/text"
	"github.com/zeebo/blake3"
	"gitlab.com/tozd/go/errors"
)

// ErrNotAdmitted is returned for documents processed without a gate ticket
var ErrNotAdmitted = errors.Base("document was not admitted by the gate")

// ⚙️ Options configures an engine
type Options struct {
	CommaPolicy text.CommaPolicy
	Corrector   correction.Corrector
	Language    string
	// Concurrency bounds simultaneous entry rewrites
	Concurrency int
	// ExtraPatterns adds target entries using the format's text tag
	ExtraPatterns []string
}

// 🧼 Engine sanitizes one document at a time
type Engine struct {
	rewriter      *rewrite.Rewriter
	concurrency   int
	extraPatterns []string
}

// 🏭 New creates an engine
func New(opts Options) *Engine {
	policy := opts.CommaPolicy
	if policy == "" {
		policy = text.CommaRemoveSpaceBefore
	}
	return &Engine{
		rewriter:      rewrite.New(policy, opts.Corrector, opts.Language),
		concurrency:   opts.Concurrency,
		extraPatterns: opts.ExtraPatterns,
	}
}

// 📦 Result is a sanitized document and its change report
type Result struct {
	RequestID string
	Format    Format
	Data      []byte
	// Summary is a one-line change report, never part of Data
	Summary string
	// Digest is the hex blake3 hash of Data
	Digest string
	Report *status.Report
}

// 🚀 Process neutralizes metadata and rewrites text. It returns the complete
// output or an error, never a partial document.
func (e *Engine) Process(ctx context.Context, ticket gate.Ticket, data []byte) (*Result, error) {
	if !ticket.Valid() {
		return nil, ErrNotAdmitted
	}

	id := uuid.New().String()
	logger := zerolog.Ctx(ctx).With().Str("request_id", id).Str("filename", ticket.Filename()).Logger()
	ctx = logger.WithContext(ctx)

	profile, err := Detect(ticket.Extension(), data)
	if err != nil {
		return nil, err
	}

	pkg, err := profile.load(data)
	if err != nil {
		return nil, errors.Errorf("loading %s: %w", profile.Format, err)
	}

	cleared, err := metadata.For(profile.Metadata).Neutralize(ctx, pkg)
	if err != nil {
		return nil, errors.Errorf("neutralizing metadata: %w", err)
	}

	assembler := &document.Assembler{
		Targets:     profile.targets(e.extraPatterns),
		Rewriter:    e.rewriter,
		Concurrency: e.concurrency,
	}
	textReport, err := assembler.Run(ctx, pkg)
	if err != nil {
		return nil, errors.Errorf("rewriting text: %w", err)
	}

	report := status.NewReport()
	cleared.Track(ctx, report)
	report.Merge(ctx, textReport)

	out := data
	if len(pkg.ModifiedNames()) > 0 {
		out, err = profile.store(pkg)
		if err != nil {
			return nil, errors.Errorf("writing %s: %w", profile.Format, err)
		}
	}

	sum := blake3.Sum256(out)
	res := &Result{
		RequestID: id,
		Format:    profile.Format,
		Data:      out,
		Summary:   report.Summary(),
		Digest:    hex.EncodeToString(sum[:]),
		Report:    report,
	}

	logger.Info().
		Str("format", string(profile.Format)).
		Int("bytes_in", len(data)).
		Int("bytes_out", len(out)).
		Str("digest", res.Digest).
		Msg(res.Summary)

	return res, nil
}

// 🔎 EntryView describes one target entry found by Inspect
type EntryView struct {
	Name  string
	Tag   markup.Tag
	Spans int
}

// Inspection lists what Process would touch, without producing output
type Inspection struct {
	Format   Format
	Entries  []EntryView
	Metadata metadata.Cleared
}

// Inspect reports target entries, their span counts and metadata fields
func (e *Engine) Inspect(ctx context.Context, ticket gate.Ticket, data []byte) (*Inspection, error) {
	if !ticket.Valid() {
		return nil, ErrNotAdmitted
	}

	profile, err := Detect(ticket.Extension(), data)
	if err != nil {
		return nil, err
	}

	pkg, err := profile.load(data)
	if err != nil {
		return nil, errors.Errorf("loading %s: %w", profile.Format, err)
	}

	ins := &Inspection{Format: profile.Format}
	for _, t := range profile.targets(e.extraPatterns).Resolve(pkg) {
		src, _ := pkg.Get(t.Name)
		view := EntryView{Name: t.Name, Tag: t.Tag, Spans: 1}
		if t.Tag != "" {
			view.Spans = len(markup.Collect(string(src), t.Tag))
		}
		ins.Entries = append(ins.Entries, view)
	}

	// the package is a private copy, clearing it only yields the counts
	ins.Metadata, err = metadata.For(profile.Metadata).Neutralize(ctx, pkg)
	if err != nil {
		return nil, errors.Errorf("inspecting metadata: %w", err)
	}
	return ins, nil
}
