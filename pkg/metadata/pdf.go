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
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/walteh/docscrub/pkg/document"
	"gitlab.com/tozd/go/errors"
)

// PDFEntry is the single entry a PDF document is loaded into
const PDFEntry = "document.pdf"

// InfoFields are the document information keys that get blanked
var InfoFields = []string{
	"Title", "Author", "Subject", "Keywords",
	"Creator", "Producer", "CreationDate", "ModDate",
}

var (
	xmpBegin = []byte("<?xpacket begin=")
	xmpEnd   = []byte("<?xpacket end=")

	infoRefRe = regexp.MustCompile(`/Info\s+(\d+)\s+(\d+)\s+R`)
)

// PDF blanks Info values and XMP packets byte for byte, so every object
// keeps its offset and the cross-reference table stays valid.
type PDF struct{}

func (PDF) Name() string { return string(KindPDF) }

func (PDF) Neutralize(ctx context.Context, pkg *document.Package) (Cleared, error) {
	data, ok := pkg.Get(PDFEntry)
	if !ok {
		return Cleared{}, nil
	}

	out := bytes.Clone(data)
	fields := blankXMP(out)
	if dicts := infoDicts(out); len(dicts) > 0 {
		for _, d := range dicts {
			fields += blankInfo(ctx, d)
		}
	} else {
		zerolog.Ctx(ctx).Debug().Msg("no info dictionary found, scanning the whole pdf")
		fields += blankInfo(ctx, out)
	}

	if err := pkg.Set(PDFEntry, out); err != nil {
		return nil, errors.Errorf("clearing %s: %w", PDFEntry, err)
	}
	if fields == 0 {
		return Cleared{}, nil
	}
	return Cleared{PDFEntry: fields}, nil
}

// infoDicts returns every dictionary referenced by a trailer /Info entry.
// Each slice aliases buf, from just after << to just before the matching >>.
// Incremental updates can define the same object more than once, so every
// definition is returned.
func infoDicts(buf []byte) [][]byte {
	var out [][]byte
	seen := map[string]bool{}
	for _, m := range infoRefRe.FindAllSubmatch(buf, -1) {
		num, _ := strconv.Atoi(string(m[1]))
		gen, _ := strconv.Atoi(string(m[2]))
		key := fmt.Sprintf("%d %d", num, gen)
		if seen[key] {
			continue
		}
		seen[key] = true

		objRe := regexp.MustCompile(fmt.Sprintf(`(?:^|[^0-9])%d\s+%d\s+obj`, num, gen))
		for _, loc := range objRe.FindAllIndex(buf, -1) {
			if lo, hi, ok := dictBounds(buf, loc[1]); ok {
				out = append(out, buf[lo:hi])
			}
		}
	}
	return out
}

// dictBounds finds the dictionary starting at pos, skipping whitespace, and
// returns the range between its << and matching >>. Strings are skipped so
// brackets inside them do not count.
func dictBounds(buf []byte, pos int) (lo, hi int, ok bool) {
	for pos < len(buf) && isSpace(buf[pos]) {
		pos++
	}
	if !bytes.HasPrefix(buf[pos:], []byte("<<")) {
		return 0, 0, false
	}
	lo = pos + 2
	depth := 1
	for i := lo; i < len(buf); i++ {
		switch {
		case buf[i] == '(':
			_, end, ok := stringValue(buf, i)
			if !ok {
				return 0, 0, false
			}
			i = end
		case bytes.HasPrefix(buf[i:], []byte("<<")):
			depth++
			i++
		case bytes.HasPrefix(buf[i:], []byte(">>")):
			depth--
			if depth == 0 {
				return lo, i, true
			}
			i++
		case buf[i] == '<':
			_, end, ok := stringValue(buf, i)
			if !ok {
				return 0, 0, false
			}
			i = end
		}
	}
	return 0, 0, false
}

// blankInfo overwrites the string value of every /Key occurrence with spaces
func blankInfo(ctx context.Context, buf []byte) int {
	n := 0
	for _, key := range InfoFields {
		name := []byte("/" + key)
		for pos := 0; ; {
			i := bytes.Index(buf[pos:], name)
			if i < 0 {
				break
			}
			start := pos + i + len(name)
			pos = start

			if start < len(buf) && !isDelimiter(buf[start]) {
				continue // longer name such as /TitleX
			}

			lo, hi, ok := stringValue(buf, start)
			if !ok {
				zerolog.Ctx(ctx).Debug().Str("field", key).Int("offset", start).Msg("skipping unreadable pdf string")
				continue
			}
			if blank(buf[lo:hi]) {
				n++
			}
			pos = hi
		}
	}
	return n
}

// stringValue locates the body of the literal or hex string following pos
func stringValue(buf []byte, pos int) (lo, hi int, ok bool) {
	for pos < len(buf) && isSpace(buf[pos]) {
		pos++
	}
	if pos >= len(buf) {
		return 0, 0, false
	}

	switch buf[pos] {
	case '(':
		depth := 1
		for i := pos + 1; i < len(buf); i++ {
			switch buf[i] {
			case '\\':
				i++
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return pos + 1, i, true
				}
			}
		}
	case '<':
		if pos+1 < len(buf) && buf[pos+1] == '<' {
			return 0, 0, false
		}
		if end := bytes.IndexByte(buf[pos+1:], '>'); end >= 0 {
			return pos + 1, pos + 1 + end, true
		}
	}
	return 0, 0, false
}

// blankXMP clears the body of every XMP packet, keeping its wrapper
func blankXMP(buf []byte) int {
	n := 0
	for pos := 0; ; {
		i := bytes.Index(buf[pos:], xmpBegin)
		if i < 0 {
			return n
		}
		begin := pos + i
		headerEnd := bytes.Index(buf[begin:], []byte("?>"))
		if headerEnd < 0 {
			return n
		}
		lo := begin + headerEnd + 2

		end := bytes.Index(buf[lo:], xmpEnd)
		if end < 0 {
			return n
		}
		hi := lo + end

		if blank(buf[lo:hi]) {
			n++
		}
		pos = hi + len(xmpEnd)
	}
}

// blank replaces b with spaces and reports whether it held anything else
func blank(b []byte) bool {
	had := false
	for i, c := range b {
		if !isSpace(c) {
			had = true
		}
		b[i] = ' '
	}
	return had
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return isSpace(c)
}
