package metadata

import (
	"context"

	"github.com/antchfx/xpath"
	"github.com/walteh/docscrub/pkg/document"
)

// MetaPart holds OpenDocument metadata
const MetaPart = "meta.xml"

var odfParts = []xmlPart{
	{
		name:   MetaPart,
		fields: xpath.MustCompile(`/*/*[local-name() = 'meta']/*`),
		blank: []byte(`<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
			`<office:document-meta xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" ` +
			`xmlns:meta="urn:oasis:names:tc:opendocument:xmlns:meta:1.0" xmlns:dc="http://purl.org/dc/elements/1.1/" ` +
			`xmlns:xlink="http://www.w3.org/1999/xlink" office:version="1.2"><office:meta/></office:document-meta>`),
	},
}

// ODF clears meta.xml of OpenDocument packages
type ODF struct{}

func (ODF) Name() string { return string(KindODF) }

func (ODF) Neutralize(ctx context.Context, pkg *document.Package) (Cleared, error) {
	return neutralizeParts(ctx, pkg, odfParts)
}
