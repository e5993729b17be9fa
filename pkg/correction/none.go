package correction

import (
	"context"

	"github.com/walteh/docscrub/pkg/edits"
)

// NoneProvider disables remote corrections
const NoneProvider = "none"

func init() {
	Register(NoneProvider, func(ctx context.Context, opts Options) (Corrector, error) {
		return None{}, nil
	})
}

// None never suggests anything
type None struct{}

func (None) Name() string { return NoneProvider }

func (None) SuggestEdits(ctx context.Context, text, language string) ([]edits.Edit, error) {
	return nil, nil
}
