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

package metadata

import (
	"context"
	"sort"

	"github.com/walteh/docscrub/pkg/document"
	"github.com/walteh/docscrub/pkg/status"
)

// 🧹 Neutralizer removes identifying metadata from a package in place
type Neutralizer interface {
	// Name identifies the neutralizer in logs
	Name() string
	// Neutralize clears metadata and reports what was cleared per entry
	Neutralize(ctx context.Context, pkg *document.Package) (Cleared, error)
}

// Cleared maps an entry name to the number of metadata fields cleared in it.
// Entries that were rewritten without holding any field map to zero.
type Cleared map[string]int

// Fields sums the cleared fields
func (c Cleared) Fields() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Track records every cleared entry on report in name order
func (c Cleared) Track(ctx context.Context, report *status.Report) {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		report.Track(ctx, status.EntryInfo{
			Name:   name,
			Kind:   status.KindMetadata,
			Status: status.StatusCleared,
			Fields: c[name],
		})
	}
}

// Kind selects a neutralizer
type Kind string

const (
	KindNone Kind = "none"
	KindOPC  Kind = "opc"
	KindODF  Kind = "odf"
	KindPDF  Kind = "pdf"
)

// For returns the neutralizer for kind; unknown kinds get a no-op
func For(kind Kind) Neutralizer {
	switch kind {
	case KindOPC:
		return OPC{}
	case KindODF:
		return ODF{}
	case KindPDF:
		return PDF{}
	default:
		return None{}
	}
}

// None leaves the package untouched
type None struct{}

func (None) Name() string { return string(KindNone) }

func (None) Neutralize(ctx context.Context, pkg *document.Package) (Cleared, error) {
	return Cleared{}, nil
}
