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
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestReport(t *testing.T) {
	tests := []struct {
		name        string
		entries     []EntryInfo
		wantTotals  Totals
		wantSummary string
	}{
		{
			name:        "empty_report",
			wantSummary: "0 entries modified, 0 spans rewritten, 0 edits applied, 0 metadata fields cleared",
		},
		{
			name: "singular_counts",
			entries: []EntryInfo{
				{Name: "word/document.xml", Kind: KindText, Status: StatusModified, Spans: 3, SpansChanged: 1, Edits: 1},
				{Name: "docProps/core.xml", Kind: KindMetadata, Status: StatusCleared, Fields: 1},
			},
			wantTotals:  Totals{EntriesModified: 1, SpansModified: 1, EditsApplied: 1, FieldsCleared: 1},
			wantSummary: "1 entry modified, 1 span rewritten, 1 edit applied, 1 metadata field cleared",
		},
		{
			name: "failed_entries_reported",
			entries: []EntryInfo{
				{Name: "word/document.xml", Kind: KindText, Status: StatusModified, Spans: 4, SpansChanged: 2},
				{Name: "word/header1.xml", Kind: KindText, Status: StatusUnchanged, Spans: 1},
				{Name: "word/footer1.xml", Kind: KindText, Status: StatusFailed, Error: errors.New("invalid utf-8")},
			},
			wantTotals:  Totals{EntriesModified: 1, SpansModified: 2, EntriesFailed: 1},
			wantSummary: "1 entry modified, 2 spans rewritten, 0 edits applied, 0 metadata fields cleared, 1 entry failed",
		},
		{
			name: "retracking_replaces_outcome",
			entries: []EntryInfo{
				{Name: "a.xml", Kind: KindText, Status: StatusModified, SpansChanged: 5},
				{Name: "a.xml", Kind: KindText, Status: StatusUnchanged},
			},
			wantSummary: "0 entries modified, 0 spans rewritten, 0 edits applied, 0 metadata fields cleared",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReport()
			for _, e := range tt.entries {
				r.Track(context.Background(), e)
			}
			assert.Equal(t, tt.wantTotals, r.Totals())
			assert.Equal(t, tt.wantSummary, r.Summary())
		})
	}
}

func TestReport_EntriesKeepFirstTrackedOrder(t *testing.T) {
	r := NewReport()
	ctx := context.Background()
	r.Track(ctx, EntryInfo{Name: "b.xml", Status: StatusUnchanged})
	r.Track(ctx, EntryInfo{Name: "a.xml", Status: StatusUnchanged})
	r.Track(ctx, EntryInfo{Name: "b.xml", Status: StatusModified})

	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "b.xml", entries[0].Name)
	assert.Equal(t, StatusModified, entries[0].Status)
	assert.Equal(t, "a.xml", entries[1].Name)

	info, ok := r.Get("a.xml")
	assert.True(t, ok)
	assert.Equal(t, StatusUnchanged, info.Status)

	_, ok = r.Get("missing.xml")
	assert.False(t, ok)
}

func TestReport_Merge(t *testing.T) {
	ctx := context.Background()
	meta := NewReport()
	meta.Track(ctx, EntryInfo{Name: "docProps/core.xml", Kind: KindMetadata, Status: StatusCleared, Fields: 3})

	r := NewReport()
	r.Track(ctx, EntryInfo{Name: "word/document.xml", Kind: KindText, Status: StatusModified, SpansChanged: 1})
	r.Merge(ctx, meta)
	r.Merge(ctx, nil)

	assert.Equal(t, 3, r.Totals().FieldsCleared)
	assert.Len(t, r.Entries(), 2)
}

func TestReport_TrackLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	ctx := logger.WithContext(context.Background())

	r := NewReport()
	r.Track(ctx, EntryInfo{Name: "word/document.xml", Kind: KindText, Status: StatusModified, Spans: 2, SpansChanged: 1, Edits: 4})
	r.Track(ctx, EntryInfo{Name: "word/footer1.xml", Kind: KindText, Status: StatusFailed, Error: errors.New("boom")})

	out := buf.String()
	assert.Contains(t, out, `"entry":"word/document.xml"`)
	assert.Contains(t, out, "Rewrote word/document.xml (1/2 spans, 4 edits)")
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, "boom")
}

func TestEntryStatus_String(t *testing.T) {
	assert.Equal(t, "modified", StatusModified.String())
	assert.Equal(t, "unchanged", StatusUnchanged.String())
	assert.Equal(t, "cleared", StatusCleared.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "unknown", EntryStatus(42).String())
}
