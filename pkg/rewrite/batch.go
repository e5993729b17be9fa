package rewrite

import (
	"strings"
	"unicode/utf8"

	"github.com/walteh/docscrub/pkg/edits"
)

// batch is one correction request built from several span texts
type batch struct {
	joined string
	starts []int // rune offset of each text inside joined
	sizes  []int // rune length of each text
}

func newBatch(texts []string) batch {
	b := batch{
		joined: strings.Join(texts, separator),
		starts: make([]int, len(texts)),
		sizes:  make([]int, len(texts)),
	}
	sep := utf8.RuneCountInString(separator)
	pos := 0
	for i, t := range texts {
		b.starts[i] = pos
		b.sizes[i] = utf8.RuneCountInString(t)
		pos += b.sizes[i] + sep
	}
	return b
}

// route assigns each edit to the text that fully contains it and rebases its
// offset. Edits touching a separator are dropped.
func (b batch) route(in []edits.Edit) ([][]edits.Edit, int) {
	out := make([][]edits.Edit, len(b.starts))
	dropped := 0
	for _, e := range in {
		i := b.owner(e)
		if i < 0 {
			dropped++
			continue
		}
		e.Offset -= b.starts[i]
		out[i] = append(out[i], e)
	}
	return out, dropped
}

func (b batch) owner(e edits.Edit) int {
	if e.Offset < 0 || e.Length < 0 {
		return -1
	}
	end := e.Offset + e.Length
	for i, start := range b.starts {
		if e.Offset >= start && end <= start+b.sizes[i] {
			return i
		}
	}
	return -1
}
