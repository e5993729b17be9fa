package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_Normalize(t *testing.T) {
	tests := []struct {
		name         string
		scope        Scope
		policy       CommaPolicy
		input        string
		want         string
		wantModified bool
		wantApplied  []string
	}{
		{
			name:         "french_spacing",
			input:        "Bonjour   ,   monde !",
			want:         "Bonjour, monde!",
			wantModified: true,
			wantApplied:  []string{"collapse_spaces", "space_before_mark", "space_before_stop"},
		},
		{
			name:         "leading_double_space_keeps_one",
			input:        "  world",
			want:         " world",
			wantModified: true,
			wantApplied:  []string{"collapse_spaces"},
		},
		{
			name:  "already_clean",
			input: "Hello",
			want:  "Hello",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:         "nbsp_variants",
			input:        "a\u00a0b\u2007c\u202fd",
			want:         "a b c d",
			wantModified: true,
			wantApplied:  []string{"nbsp"},
		},
		{
			name:         "nbsp_then_collapse",
			input:        "a\u00a0 b",
			want:         "a b",
			wantModified: true,
			wantApplied:  []string{"nbsp", "collapse_spaces"},
		},
		{
			name:         "tabs_collapse",
			input:        "a\t\t b",
			want:         "a b",
			wantModified: true,
			wantApplied:  []string{"collapse_spaces"},
		},
		{
			name:         "whitespace_before_marks",
			input:        "Quoi ? Oui ; non : peut-être\t!",
			want:         "Quoi? Oui; non: peut-être!",
			wantModified: true,
			wantApplied:  []string{"space_before_mark"},
		},
		{
			name:         "ellipsis",
			input:        "wait.....",
			want:         "wait...",
			wantModified: true,
			wantApplied:  []string{"ellipsis"},
		},
		{
			name:  "three_dots_untouched",
			input: "wait...",
			want:  "wait...",
		},
		{
			name:  "span_scope_keeps_newlines",
			input: "a\n\n\n\nb",
			want:  "a\n\n\n\nb",
		},
		{
			name:         "document_scope_collapses_newlines",
			scope:        ScopeDocument,
			input:        "a\n\n\n\nb",
			want:         "a\n\nb",
			wantModified: true,
			wantApplied:  []string{"collapse_paragraphs"},
		},
		{
			name:         "document_scope_keeps_crlf_line_endings",
			scope:        ScopeDocument,
			input:        "Intro\r\n\r\n\r\n\r\nBody",
			want:         "Intro\r\n\r\nBody",
			wantModified: true,
			wantApplied:  []string{"collapse_paragraphs"},
		},
		{
			name:         "document_scope_mixed_endings_follow_first_break",
			scope:        ScopeDocument,
			input:        "a\n\r\n\r\nb",
			want:         "a\n\nb",
			wantModified: true,
			wantApplied:  []string{"collapse_paragraphs"},
		},
		{
			name:  "document_scope_single_crlf_blank_line_untouched",
			scope: ScopeDocument,
			input: "a\r\n\r\nb",
			want:  "a\r\n\r\nb",
		},
		{
			name:         "insert_space_after_comma",
			policy:       CommaInsertSpaceAfter,
			input:        "un,deux , trois",
			want:         "un, deux , trois",
			wantModified: true,
			wantApplied:  []string{"comma_space_after"},
		},
		{
			name:   "insert_policy_keeps_decimal",
			policy: CommaInsertSpaceAfter,
			input:  "1,5 kg",
			want:   "1,5 kg",
		},
		{
			name:         "markup_escapes_preserved",
			input:        "a  &amp; b",
			want:         "a &amp; b",
			wantModified: true,
			wantApplied:  []string{"collapse_spaces"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := tt.policy
			if policy == "" {
				policy = CommaRemoveSpaceBefore
			}
			p := NewPipeline(tt.scope, policy)

			result := p.Normalize(tt.input)
			assert.Equal(t, tt.input, result.Original)
			assert.Equal(t, tt.want, result.Normalized)
			assert.Equal(t, tt.wantModified, result.WasModified)
			assert.Equal(t, tt.wantApplied, result.Applied)
		})
	}
}

func TestPipeline_Idempotent(t *testing.T) {
	inputs := []string{
		"Bonjour   ,   monde !",
		"  world",
		"a . . b",
		"x \n ?",
		"fin ....  ,",
		"\n\n \n\n\n.",
		"p\r\n\r\n\r\n\r\nq",
		"a  : ;",
		"1,5,a,b ,c",
		"a\t\u3000b ... .... ,,",
		"...... . . ..",
		"",
		" ",
		"?",
		", , ,",
	}

	for _, scope := range []Scope{ScopeSpan, ScopeDocument} {
		for _, policy := range []CommaPolicy{CommaRemoveSpaceBefore, CommaInsertSpaceAfter} {
			p := NewPipeline(scope, policy)
			for _, in := range inputs {
				once := p.NormalizeString(in)
				twice := p.Normalize(once)
				assert.Equal(t, once, twice.Normalized, "scope=%d policy=%s input=%q", scope, policy, in)
				assert.False(t, twice.WasModified, "scope=%d policy=%s input=%q", scope, policy, in)
			}
		}
	}
}

func TestRules_IdempotentAlone(t *testing.T) {
	rules := []Rule{
		NBSPRule(),
		CollapseSpacesRule(),
		CollapseParagraphsRule(),
		SpaceBeforeMarkRule(),
		SpaceBeforeStopRule(),
		CommaSpaceAfterRule(),
		EllipsisRule(),
	}
	inputs := []string{
		"a  b  c",
		"x\n\n\n\n\ny",
		"x\r\n\r\n\r\ny",
		"a  ! b ?",
		"a , b .",
		"a,b,c",
		".......",
	}
	for _, r := range rules {
		for _, in := range inputs {
			once := r.Apply(in)
			assert.Equal(t, once, r.Apply(once), "rule=%s input=%q", r.Name(), in)
		}
	}
}

func TestParseCommaPolicy(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      CommaPolicy
		wantError string
	}{
		{name: "default", input: "", want: CommaRemoveSpaceBefore},
		{name: "remove", input: "remove_space_before", want: CommaRemoveSpaceBefore},
		{name: "insert", input: " insert_space_after ", want: CommaInsertSpaceAfter},
		{name: "unknown", input: "both", wantError: "unknown comma policy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommaPolicy(tt.input)
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPipeline_Rules(t *testing.T) {
	names := func(p *Pipeline) string {
		var out []string
		for _, r := range p.Rules() {
			out = append(out, r.Name())
		}
		return strings.Join(out, ",")
	}

	assert.Equal(t, "nbsp,collapse_spaces,space_before_mark,space_before_stop,ellipsis",
		names(NewPipeline(ScopeSpan, CommaRemoveSpaceBefore)))
	assert.Equal(t, "nbsp,collapse_spaces,collapse_paragraphs,space_before_mark,comma_space_after,ellipsis",
		names(NewPipeline(ScopeDocument, CommaInsertSpaceAfter)))
}
