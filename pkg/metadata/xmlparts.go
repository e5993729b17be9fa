package metadata

import (
	"bytes"
	"context"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/rs/zerolog"
	"github.com/walteh/docscrub/pkg/document"
	"gitlab.com/tozd/go/errors"
)

// xmlPart is a metadata entry that is replaced by an empty document
type xmlPart struct {
	name   string
	fields *xpath.Expr
	blank  []byte
}

// countFields returns how many metadata fields expr selects in data
func countFields(data []byte, expr *xpath.Expr) (int, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return 0, errors.Errorf("parsing xml: %w", err)
	}
	return len(xmlquery.QuerySelectorAll(doc, expr)), nil
}

// neutralizeParts overwrites every part present in pkg with its blank form.
// A part that cannot be parsed is still overwritten and counted as zero fields.
func neutralizeParts(ctx context.Context, pkg *document.Package, parts []xmlPart) (Cleared, error) {
	logger := zerolog.Ctx(ctx)
	cleared := Cleared{}

	for _, part := range parts {
		data, ok := pkg.Get(part.name)
		if !ok || bytes.Equal(data, part.blank) {
			continue
		}

		n, err := countFields(data, part.fields)
		if err != nil {
			logger.Debug().Err(err).Str("entry", part.name).Msg("could not count metadata fields")
		}

		if err := pkg.Set(part.name, part.blank); err != nil {
			return nil, errors.Errorf("clearing %s: %w", part.name, err)
		}
		cleared[part.name] = n

		logger.Debug().Str("entry", part.name).Int("fields", n).Msg("cleared metadata part")
	}

	return cleared, nil
}
