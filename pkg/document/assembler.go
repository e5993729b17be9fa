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

package document

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/docscrub/pkg/markup"
	"github.com/walteh/docscrub/pkg/rewrite"
	"github.com/walteh/docscrub/pkg/status"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// ErrStructureChanged marks a rewrite that altered markup outside text nodes
var ErrStructureChanged = errors.Base("rewrite changed markup structure")

// 🏗️ Assembler rewrites the target entries of a package
type Assembler struct {
	Targets  TargetSet
	Rewriter *rewrite.Rewriter
	// Concurrency bounds simultaneous entry rewrites, values below 1 mean 1
	Concurrency int
}

type entryResult struct {
	outcome rewrite.Outcome
	err     error
}

// 🚀 Run rewrites every resolved target. Entries are computed concurrently but
// written back one by one in target order. A failing entry is left untouched
// and reported; only cancellation of ctx fails the run.
func (a *Assembler) Run(ctx context.Context, pkg *Package) (*status.Report, error) {
	report := status.NewReport()
	targets := a.Targets.Resolve(pkg)

	logger := zerolog.Ctx(ctx)
	logger.Debug().Int("targets", len(targets)).Msg("resolved target entries")

	if len(targets) == 0 {
		return report, nil
	}

	limit := a.Concurrency
	if limit < 1 {
		limit = 1
	}

	results := make([]entryResult, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(limit, len(targets)))

	for i, t := range targets {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			data, _ := pkg.Get(t.Name)
			results[i] = a.rewriteOne(gctx, t, string(data))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Errorf("rewriting entries: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("rewriting entries: %w", err)
	}

	for i, t := range targets {
		r := results[i]
		info := status.EntryInfo{
			Name:         t.Name,
			Kind:         status.KindText,
			Spans:        r.outcome.Spans,
			SpansChanged: r.outcome.SpansChanged,
			Edits:        r.outcome.EditsApplied,
		}

		switch {
		case r.err != nil:
			info.Status = status.StatusFailed
			info.Error = r.err
			info.SpansChanged = 0
			info.Edits = 0
		case r.outcome.Changed:
			if err := pkg.Set(t.Name, []byte(r.outcome.Data)); err != nil {
				return nil, errors.Errorf("writing %s: %w", t.Name, err)
			}
			info.Status = status.StatusModified
		default:
			info.Status = status.StatusUnchanged
		}

		report.Track(ctx, info)
	}

	return report, nil
}

func (a *Assembler) rewriteOne(ctx context.Context, t Resolved, src string) entryResult {
	if t.Tag == "" {
		o, err := a.Rewriter.RewriteText(ctx, t.Name, src)
		return entryResult{outcome: o, err: err}
	}

	o, err := a.Rewriter.RewriteEntry(ctx, t.Name, t.Tag, src)
	if err != nil {
		return entryResult{outcome: o, err: err}
	}

	if o.Changed && markup.Skeleton(o.Data, t.Tag) != markup.Skeleton(src, t.Tag) {
		return entryResult{outcome: o, err: errors.Errorf("%w: %s", ErrStructureChanged, t.Name)}
	}
	return entryResult{outcome: o}
}
