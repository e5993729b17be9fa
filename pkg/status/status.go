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

package status

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// 📊 EntryStatus represents what happened to a package entry
type EntryStatus int

const (
	StatusUnknown   EntryStatus = iota
	StatusModified              // Text spans were rewritten
	StatusUnchanged             // Entry was processed and kept byte-identical
	StatusCleared               // Metadata fields were neutralized
	StatusFailed                // Processing failed, entry kept unchanged
)

// String returns a string representation of EntryStatus
func (s EntryStatus) String() string {
	switch s {
	case StatusModified:
		return "modified"
	case StatusUnchanged:
		return "unchanged"
	case StatusCleared:
		return "cleared"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EntryKind distinguishes text entries from metadata entries
type EntryKind string

const (
	KindText     EntryKind = "text"
	KindMetadata EntryKind = "metadata"
)

// 📄 EntryInfo describes the outcome for one entry
type EntryInfo struct {
	Name         string      // Entry name inside the package
	Kind         EntryKind   // text or metadata
	Status       EntryStatus // Outcome
	Spans        int         // Text spans found
	SpansChanged int         // Text spans whose inner text changed
	Edits        int         // Correction edits applied
	Fields       int         // Metadata fields cleared
	Error        error       // Failure cause, entry left unchanged
}

// 📈 Report accumulates entry outcomes for one document
type Report struct {
	formatter EntryFormatter

	mu      sync.RWMutex
	entries map[string]EntryInfo
	order   []string
}

// 🏭 NewReport creates an empty report
func NewReport() *Report {
	return &Report{
		formatter: NewDefaultEntryFormatter(),
		entries:   make(map[string]EntryInfo),
	}
}

// Track records info, replacing any earlier outcome for the same entry.
// The first Track call for a name fixes its position in Entries.
func (r *Report) Track(ctx context.Context, info EntryInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[info.Name]; !ok {
		r.order = append(r.order, info.Name)
	}
	r.entries[info.Name] = info

	logger := zerolog.Ctx(ctx)
	if info.Error != nil {
		logger.Warn().
			Str("entry", info.Name).
			Str("cause", r.formatter.FormatError(info.Error)).
			Msg(r.formatter.FormatEntry(info))
		return
	}
	logger.Debug().
		Str("entry", info.Name).
		Str("kind", string(info.Kind)).
		Int("spans", info.Spans).
		Int("spans_changed", info.SpansChanged).
		Int("edits", info.Edits).
		Int("fields", info.Fields).
		Msg(r.formatter.FormatEntry(info))
}

// Get returns the tracked outcome for name
func (r *Report) Get(name string) (EntryInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.entries[name]
	return info, ok
}

// Entries lists outcomes in the order entries were first tracked
func (r *Report) Entries() []EntryInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]EntryInfo, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}
	return out
}

// Merge appends the outcomes of other to r
func (r *Report) Merge(ctx context.Context, other *Report) {
	if other == nil {
		return
	}
	for _, info := range other.Entries() {
		r.Track(ctx, info)
	}
}

// 🔢 Totals are the aggregate counters of a report
type Totals struct {
	EntriesModified int
	SpansModified   int
	EditsApplied    int
	FieldsCleared   int
	EntriesFailed   int
}

// Totals sums the tracked outcomes
func (r *Report) Totals() Totals {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var t Totals
	for _, info := range r.entries {
		switch info.Status {
		case StatusModified:
			t.EntriesModified++
		case StatusFailed:
			t.EntriesFailed++
		}
		t.SpansModified += info.SpansChanged
		t.EditsApplied += info.Edits
		t.FieldsCleared += info.Fields
	}
	return t
}

// 📝 Summary renders the report as one human-readable line
func (r *Report) Summary() string {
	t := r.Totals()

	parts := []string{
		fmt.Sprintf("%d %s modified", t.EntriesModified, plural(t.EntriesModified, "entry", "entries")),
		fmt.Sprintf("%d %s rewritten", t.SpansModified, plural(t.SpansModified, "span", "spans")),
		fmt.Sprintf("%d %s applied", t.EditsApplied, plural(t.EditsApplied, "edit", "edits")),
		fmt.Sprintf("%d metadata %s cleared", t.FieldsCleared, plural(t.FieldsCleared, "field", "fields")),
	}
	if t.EntriesFailed > 0 {
		parts = append(parts, fmt.Sprintf("%d %s failed", t.EntriesFailed, plural(t.EntriesFailed, "entry", "entries")))
	}
	return strings.Join(parts, ", ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
