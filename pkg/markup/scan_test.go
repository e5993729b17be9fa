package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		tag       Tag
		wantInner []string
		wantOpen  []string
	}{
		{
			name:      "simple_runs",
			src:       `<w:r><w:t>Hello</w:t></w:r><w:r><w:t>  world</w:t></w:r>`,
			tag:       "w:t",
			wantInner: []string{"Hello", "  world"},
			wantOpen:  []string{"<w:t>", "<w:t>"},
		},
		{
			name:      "attributes_preserved",
			src:       `<w:t xml:space="preserve"> a </w:t>`,
			tag:       "w:t",
			wantInner: []string{" a "},
			wantOpen:  []string{`<w:t xml:space="preserve">`},
		},
		{
			name:      "quoted_gt_in_attribute",
			src:       `<t note="a>b">x</t>`,
			tag:       "t",
			wantInner: []string{"x"},
			wantOpen:  []string{`<t note="a>b">`},
		},
		{
			name:      "prefix_sharing_elements_skipped",
			src:       `<w:tbl><w:tc><w:t>cell</w:t></w:tc></w:tbl>`,
			tag:       "w:t",
			wantInner: []string{"cell"},
			wantOpen:  []string{"<w:t>"},
		},
		{
			name:      "self_closing_is_not_a_span",
			src:       `<w:t/><w:t>x</w:t>`,
			tag:       "w:t",
			wantInner: []string{"x"},
			wantOpen:  []string{"<w:t>"},
		},
		{
			name:      "entities_left_alone",
			src:       `<t>a &amp; b</t>`,
			tag:       "t",
			wantInner: []string{"a &amp; b"},
			wantOpen:  []string{"<t>"},
		},
		{
			name:      "non_greedy_close",
			src:       `<t>one</t>mid<t>two</t>`,
			tag:       "t",
			wantInner: []string{"one", "two"},
			wantOpen:  []string{"<t>", "<t>"},
		},
		{
			name:      "empty_inner",
			src:       `<t></t>`,
			tag:       "t",
			wantInner: []string{""},
			wantOpen:  []string{"<t>"},
		},
		{
			name: "unterminated_open_stops_scan",
			src:  `<t>ok</t><t>never closed`,
			tag:  "t",
			wantInner: []string{
				"ok",
			},
			wantOpen: []string{"<t>"},
		},
		{
			name: "unterminated_open_tag",
			src:  `<t attr="x`,
			tag:  "t",
		},
		{
			name: "no_spans",
			src:  `<w:p><w:r/></w:p>`,
			tag:  "w:t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := Collect(tt.src, tt.tag)
			require.Len(t, spans, len(tt.wantInner))

			prevEnd := 0
			for i, s := range spans {
				assert.Equal(t, tt.wantInner[i], s.Inner)
				assert.Equal(t, tt.wantOpen[i], s.Open)
				assert.Equal(t, "</"+string(tt.tag)+">", s.Close)

				// offsets must line up with the source
				assert.Equal(t, s.Open, tt.src[s.Start:s.ContentStart])
				assert.Equal(t, s.Inner, tt.src[s.ContentStart:s.ContentEnd])
				assert.Equal(t, s.Close, tt.src[s.ContentEnd:s.End])
				assert.GreaterOrEqual(t, s.Start, prevEnd, "spans must not overlap")
				prevEnd = s.End
			}
		})
	}
}

func TestScan_StopsWhenYieldReturnsFalse(t *testing.T) {
	src := strings.Repeat("<t>x</t>", 10)
	count := 0
	for range Scan(src, "t") {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}

func TestRewrite(t *testing.T) {
	src := `<?xml version="1.0"?><w:p><w:r><w:t>Hello</w:t></w:r><w:r><w:t xml:space="preserve">  world</w:t></w:r></w:p>`

	out, changed := Rewrite(src, "w:t", func(i int, s Span) string {
		return strings.ToUpper(s.Inner)
	})

	assert.Equal(t, 2, changed)
	assert.Equal(t, `<?xml version="1.0"?><w:p><w:r><w:t>HELLO</w:t></w:r><w:r><w:t xml:space="preserve">  WORLD</w:t></w:r></w:p>`, out)
	assert.Equal(t, Skeleton(src, "w:t"), Skeleton(out, "w:t"), "markup skeleton must be preserved")
}

func TestRewrite_Identity(t *testing.T) {
	srcs := []string{
		``,
		`plain text`,
		`<t>a</t>`,
		`<a><t x="1">b</t>tail<t>c</t></a>`,
		`<t>open only`,
	}
	for _, src := range srcs {
		out, changed := Rewrite(src, "t", func(_ int, s Span) string { return s.Inner })
		assert.Equal(t, src, out)
		assert.Zero(t, changed)
	}
}

func TestSkeleton(t *testing.T) {
	assert.Equal(t, `<p><t></t><t a="1"></t></p>`, Skeleton(`<p><t>x</t><t a="1">yz</t></p>`, "t"))
}
