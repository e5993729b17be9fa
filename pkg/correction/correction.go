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
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/walteh/docscrub/pkg/edits"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Corrector is a remote grammar/style service returning offset edits
type Corrector interface {
	// Name returns the provider name (e.g. "languagetool")
	Name() string
	// SuggestEdits returns edits whose offsets count runes of text
	SuggestEdits(ctx context.Context, text, language string) ([]edits.Edit, error)
}

// ⚙️ Options configures a corrector
type Options struct {
	Provider   string
	Endpoint   string
	Language   string
	Timeout    time.Duration
	APIKeyEnv  string
	Deployment string
}

// 🏭 Factory builds a corrector from options
type Factory func(ctx context.Context, opts Options) (Corrector, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a provider available to New
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// 🎯 New builds the provider named in opts, wrapped with the configured timeout
func New(ctx context.Context, opts Options) (Corrector, error) {
	name := opts.Provider
	if name == "" {
		name = NoneProvider
	}

	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("correction provider %s not found, options: %s", name, strings.Join(Providers(), ", "))
	}

	c, err := f(ctx, opts)
	if err != nil {
		return nil, errors.Errorf("creating correction provider %s: %w", name, err)
	}

	if opts.Timeout > 0 {
		c = WithTimeout(c, opts.Timeout)
	}
	return c, nil
}

// Providers lists registered provider names
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ⏱️ timeoutCorrector bounds every call
type timeoutCorrector struct {
	next    Corrector
	timeout time.Duration
}

// WithTimeout bounds every SuggestEdits call of c by d
func WithTimeout(c Corrector, d time.Duration) Corrector {
	return &timeoutCorrector{next: c, timeout: d}
}

func (t *timeoutCorrector) Name() string { return t.next.Name() }

func (t *timeoutCorrector) SuggestEdits(ctx context.Context, text, language string) ([]edits.Edit, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	type result struct {
		edits []edits.Edit
		err   error
	}
	done := make(chan result, 1)
	go func() {
		e, err := t.next.SuggestEdits(ctx, text, language)
		done <- result{edits: e, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, errors.Errorf("%s: %w", t.next.Name(), ctx.Err())
	case r := <-done:
		return r.edits, r.err
	}
}

// 🔗 Source adapts c to an edits.Source for one language
func Source(c Corrector, language string) edits.Source {
	if c == nil {
		return nil
	}
	return edits.SourceFunc(func(ctx context.Context, text string) ([]edits.Edit, error) {
		return c.SuggestEdits(ctx, text, language)
	})
}
