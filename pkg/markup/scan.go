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

package markup

import (
	"iter"
	"strings"
)

// 🏷️ Tag is the qualified element name wrapping a text node (e.g. "w:t")
type Tag string

// 📄 Span is one text node found in a markup stream.
//
// Only Inner is meant to change. Open and Close are the verbatim delimiters and
// src[Start:ContentStart] == Open, src[ContentEnd:End] == Close.
type Span struct {
	Open  string
	Inner string
	Close string

	Start        int // offset of '<' of the open tag
	ContentStart int // first byte of inner text
	ContentEnd   int // first byte of the close tag
	End          int // first byte after the close tag
}

// scanner states
type state int

const (
	stateSearch state = iota
	stateOpenTag
	stateInner
	stateDone
)

// 🔍 Scan lazily yields every text node delimited by tag, left to right.
//
// The first close tag after an open tag ends the span. An open tag with no
// close tag stops the scan; everything after it is treated as markup.
func Scan(src string, tag Tag) iter.Seq[Span] {
	openPrefix := "<" + string(tag)
	closeTag := "</" + string(tag) + ">"

	return func(yield func(Span) bool) {
		var (
			st    = stateSearch
			pos   = 0
			start = 0
			open  = 0 // content start
		)

		for st != stateDone {
			switch st {
			case stateSearch:
				idx := strings.Index(src[pos:], openPrefix)
				if idx < 0 {
					st = stateDone
					continue
				}
				start = pos + idx
				after := start + len(openPrefix)
				if after >= len(src) || !isNameBoundary(src[after]) {
					// "<w:tbl" and friends share the prefix
					pos = after
					continue
				}
				pos = after
				st = stateOpenTag

			case stateOpenTag:
				end, selfClosing, ok := openTagEnd(src, pos)
				if !ok {
					st = stateDone
					continue
				}
				if selfClosing {
					pos = end
					st = stateSearch
					continue
				}
				open = end
				pos = end
				st = stateInner

			case stateInner:
				idx := strings.Index(src[pos:], closeTag)
				if idx < 0 {
					st = stateDone
					continue
				}
				contentEnd := pos + idx
				end := contentEnd + len(closeTag)
				span := Span{
					Open:         src[start:open],
					Inner:        src[open:contentEnd],
					Close:        closeTag,
					Start:        start,
					ContentStart: open,
					ContentEnd:   contentEnd,
					End:          end,
				}
				if !yield(span) {
					return
				}
				pos = end
				st = stateSearch
			}
		}
	}
}

// 📋 Collect returns all spans of src in document order
func Collect(src string, tag Tag) []Span {
	var spans []Span
	for s := range Scan(src, tag) {
		spans = append(spans, s)
	}
	return spans
}

func isNameBoundary(c byte) bool {
	switch c {
	case '>', '/', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

// openTagEnd walks attributes from pos and returns the offset just past '>'.
// Quoted attribute values may contain '>'.
func openTagEnd(src string, pos int) (end int, selfClosing bool, ok bool) {
	var quote byte
	for i := pos; i < len(src); i++ {
		c := src[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i + 1, i > pos && src[i-1] == '/', true
		}
	}
	return 0, false, false
}
