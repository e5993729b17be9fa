package metadata

import (
	"context"

	"github.com/antchfx/xpath"
	"github.com/walteh/docscrub/pkg/document"
)

const (
	CoreProperties   = "docProps/core.xml"
	AppProperties    = "docProps/app.xml"
	CustomProperties = "docProps/custom.xml"
)

// property elements directly under the root that carry a value
var opcFields = xpath.MustCompile(`/*/*[normalize-space(.) != '']`)

var opcParts = []xmlPart{
	{
		name:   CoreProperties,
		fields: opcFields,
		blank: []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
			`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
			`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
			`xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"></cp:coreProperties>`),
	},
	{
		name:   AppProperties,
		fields: opcFields,
		blank: []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
			`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" ` +
			`xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes"></Properties>`),
	},
	{
		name:   CustomProperties,
		fields: opcFields,
		blank: []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
			`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/custom-properties" ` +
			`xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes"></Properties>`),
	},
}

// OPC clears the core, extended and custom property parts of Office Open XML
// packages. Parts are emptied rather than removed so relationships stay valid.
type OPC struct{}

func (OPC) Name() string { return string(KindOPC) }

func (OPC) Neutralize(ctx context.Context, pkg *document.Package) (Cleared, error) {
	return neutralizeParts(ctx, pkg, opcParts)
}
