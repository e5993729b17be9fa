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

package correction

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/rs/zerolog"
	"github.com/walteh/docscrub/pkg/edits"
	"gitlab.com/tozd/go/errors"
)

// LanguageToolProvider talks to a LanguageTool /v2/check endpoint
const LanguageToolProvider = "languagetool"

const defaultLanguageToolEndpoint = "https://api.languagetool.org"

func init() {
	Register(LanguageToolProvider, func(ctx context.Context, opts Options) (Corrector, error) {
		return NewLanguageTool(opts), nil
	})
}

// 📝 LanguageTool is a client for the LanguageTool HTTP API
type LanguageTool struct {
	url    string
	apiKey string
	do     func(*http.Request) (*http.Response, error)
}

// 🏭 NewLanguageTool creates a client. The endpoint defaults to the public API.
func NewLanguageTool(opts Options) *LanguageTool {
	base := opts.Endpoint
	if base == "" {
		base = defaultLanguageToolEndpoint
	}
	base = strings.TrimRight(base, "/")
	if !strings.HasSuffix(base, "/v2/check") {
		base += "/v2/check"
	}

	var key string
	if opts.APIKeyEnv != "" {
		key = os.Getenv(opts.APIKeyEnv)
	}

	hc := &http.Client{Timeout: opts.Timeout}
	return &LanguageTool{
		url:    base,
		apiKey: key,
		do:     hc.Do,
	}
}

func (l *LanguageTool) Name() string { return LanguageToolProvider }

type ltResponse struct {
	Matches []struct {
		Message      string `json:"message"`
		Offset       int    `json:"offset"`
		Length       int    `json:"length"`
		Replacements []struct {
			Value string `json:"value"`
		} `json:"replacements"`
		Rule struct {
			ID string `json:"id"`
		} `json:"rule"`
	} `json:"matches"`
}

// 🔍 SuggestEdits posts text to /v2/check and keeps the first replacement of each match
func (l *LanguageTool) SuggestEdits(ctx context.Context, text, language string) ([]edits.Edit, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if language == "" {
		language = "auto"
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("language", language)
	if l.apiKey != "" {
		form.Set("apiKey", l.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := l.do(req)
	if err != nil {
		return nil, errors.Errorf("calling languagetool: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, errors.Errorf("reading response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, errors.Errorf("languagetool returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed ltResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Errorf("decoding response: %w", err)
	}

	toRune := utf16ToRuneOffsets(text)
	out := make([]edits.Edit, 0, len(parsed.Matches))
	for _, m := range parsed.Matches {
		if len(m.Replacements) == 0 {
			continue
		}
		start := toRune(m.Offset)
		end := toRune(m.Offset + m.Length)
		out = append(out, edits.Edit{
			Offset:      start,
			Length:      end - start,
			Replacement: m.Replacements[0].Value,
		})
	}

	zerolog.Ctx(ctx).Debug().
		Int("matches", len(parsed.Matches)).
		Int("edits", len(out)).
		Msg("languagetool check complete")

	return out, nil
}

// utf16ToRuneOffsets maps UTF-16 code unit offsets (as counted by the Java
// service) onto rune offsets of text.
func utf16ToRuneOffsets(text string) func(int) int {
	// units[i] is the UTF-16 offset of rune i; the last entry is the total
	units := make([]int, 0, len(text)+1)
	n := 0
	for _, r := range text {
		units = append(units, n)
		n += utf16.RuneLen(r)
	}
	units = append(units, n)

	return func(off int) int {
		if off <= 0 {
			return 0
		}
		return sort.SearchInts(units, off)
	}
}
