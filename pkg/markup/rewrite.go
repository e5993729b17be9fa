package markup

import (
	"strings"
)

// ✏️ Rewrite rebuilds src with every span's inner text replaced by fn.
//
// Bytes outside Inner are copied verbatim. It returns the rebuilt text and the
// number of spans whose inner text changed.
func Rewrite(src string, tag Tag, fn func(i int, s Span) string) (string, int) {
	var (
		b       strings.Builder
		last    int
		i       int
		changed int
	)
	b.Grow(len(src))

	for s := range Scan(src, tag) {
		inner := fn(i, s)
		if inner != s.Inner {
			changed++
		}
		b.WriteString(src[last:s.ContentStart])
		b.WriteString(inner)
		last = s.ContentEnd
		i++
	}

	if changed == 0 {
		return src, 0
	}

	b.WriteString(src[last:])
	return b.String(), changed
}

// 🦴 Skeleton returns src with the inner text of every span removed
func Skeleton(src string, tag Tag) string {
	out, _ := Rewrite(src, tag, func(int, Span) string { return "" })
	return out
}
