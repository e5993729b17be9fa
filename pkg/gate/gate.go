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

package gate

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrRejected is the base of every admission failure
	ErrRejected = errors.Base("document rejected")

	ErrExtension     = errors.Errorf("%w: extension not allowed", ErrRejected)
	ErrTooLarge      = errors.Errorf("%w: document too large", ErrRejected)
	ErrEmpty         = errors.Errorf("%w: document is empty", ErrRejected)
	ErrQuotaExceeded = errors.Errorf("%w: daily quota exceeded", ErrRejected)
	ErrFormat        = errors.Errorf("%w: content does not match its extension", ErrRejected)
)

// DefaultExtensions are admitted when no allow-list is configured. They are
// also every extension the engine has a format profile for.
var DefaultExtensions = []string{".docx", ".pptx", ".xlsx", ".odt", ".pdf", ".txt", ".md"}

// DefaultMaxBytes bounds input size when none is configured
const DefaultMaxBytes int64 = 50 << 20

// ⚙️ Options configures a gate
type Options struct {
	MaxBytes   int64
	Extensions []string
	Quota      Quota
	// Check inspects the extension and bytes before any quota is taken
	Check func(ext string, data []byte) error
}

// 🚪 Gate admits documents before any processing happens
type Gate struct {
	maxBytes   int64
	extensions []string
	quota      Quota
	check      func(ext string, data []byte) error
}

// 🏭 New creates a gate. A nil quota admits without counting.
func New(opts Options) *Gate {
	g := &Gate{
		maxBytes:   opts.MaxBytes,
		extensions: normalizeExtensions(opts.Extensions),
		quota:      opts.Quota,
		check:      opts.Check,
	}
	if g.maxBytes <= 0 {
		g.maxBytes = DefaultMaxBytes
	}
	if len(g.extensions) == 0 {
		g.extensions = normalizeExtensions(DefaultExtensions)
	}
	return g
}

// 📥 Request describes a document asking for admission
type Request struct {
	Filename string
	Size     int64
	// Client keys the quota, empty means a shared bucket
	Client string
	// Data is handed to the format check when one is configured
	Data []byte
}

// 🎫 Ticket proves a document passed the gate
type Ticket struct {
	filename  string
	extension string
	size      int64
	usage     Usage
	admitted  bool
}

func (t Ticket) Filename() string  { return t.filename }
func (t Ticket) Extension() string { return t.extension }
func (t Ticket) Size() int64       { return t.size }
func (t Ticket) Usage() Usage      { return t.usage }

// Valid reports whether the ticket was issued by Admit
func (t Ticket) Valid() bool { return t.admitted }

// 🔍 Admit checks extension, size, format and quota in that order. Quota is
// only consumed for documents that pass the other checks.
func (g *Gate) Admit(ctx context.Context, req Request) (Ticket, error) {
	ext := strings.ToLower(filepath.Ext(req.Filename))
	if !slices.Contains(g.extensions, ext) {
		return Ticket{}, errors.Errorf("%w: %q", ErrExtension, ext)
	}
	if req.Size <= 0 {
		return Ticket{}, ErrEmpty
	}
	if req.Size > g.maxBytes {
		return Ticket{}, errors.Errorf("%w: %d > %d bytes", ErrTooLarge, req.Size, g.maxBytes)
	}
	if g.check != nil {
		if err := g.check(ext, req.Data); err != nil {
			return Ticket{}, errors.Errorf("%w: %v", ErrFormat, err)
		}
	}

	var usage Usage
	if g.quota != nil {
		u, err := g.quota.Take(ctx, req.Client)
		if err != nil {
			return Ticket{}, err
		}
		usage = u
	}

	zerolog.Ctx(ctx).Debug().
		Str("filename", req.Filename).
		Int64("size", req.Size).
		Int("used", usage.Used).
		Int("limit", usage.Limit).
		Msg("document admitted")

	return Ticket{
		filename:  req.Filename,
		extension: ext,
		size:      req.Size,
		usage:     usage,
		admitted:  true,
	}, nil
}

// Extensions lists the admitted extensions
func (g *Gate) Extensions() []string {
	return slices.Clone(g.extensions)
}

func normalizeExtensions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, e := range in {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}
