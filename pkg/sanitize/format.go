package sanitize

import (
	"bytes"
	"maps"
	"slices"
	"unicode/utf8"

	"github.com/walteh/docscrub/pkg/container"
	"github.com/walteh/docscrub/pkg/document"
	"github.com/walteh/docscrub/pkg/metadata"
	"gitlab.com/tozd/go/errors"
)

// ErrUnsupportedFormat is returned when the bytes do not match a known format
var ErrUnsupportedFormat = errors.Base("unsupported format")

// Format names a document format
type Format string

const (
	FormatDOCX Format = "docx"
	FormatPPTX Format = "pptx"
	FormatXLSX Format = "xlsx"
	FormatODT  Format = "odt"
	FormatPDF  Format = "pdf"
	FormatText Format = "text"
)

// Layout is how a format is loaded into a package
type Layout int

const (
	LayoutZip    Layout = iota // zip container, one entry per member
	LayoutSingle               // whole file is one entry
)

// TextEntry is the entry a plain-text document is loaded into
const TextEntry = "document.txt"

// 📋 Profile binds a format to its layout, text targets and metadata handling
type Profile struct {
	Format   Format
	Layout   Layout
	Entry    string // single entry name for LayoutSingle
	Targets  document.TargetSet
	Metadata metadata.Kind
}

var profiles = map[string]Profile{
	".docx": {
		Format: FormatDOCX,
		Layout: LayoutZip,
		Targets: document.TargetSet{
			{Pattern: "word/document.xml", Tag: "w:t"},
			{Pattern: "word/header*.xml", Tag: "w:t"},
			{Pattern: "word/footer*.xml", Tag: "w:t"},
		},
		Metadata: metadata.KindOPC,
	},
	".pptx": {
		Format:   FormatPPTX,
		Layout:   LayoutZip,
		Targets:  document.TargetSet{{Pattern: "ppt/slides/slide*.xml", Tag: "a:t"}},
		Metadata: metadata.KindOPC,
	},
	".xlsx": {
		Format:   FormatXLSX,
		Layout:   LayoutZip,
		Targets:  document.TargetSet{{Pattern: "xl/sharedStrings.xml", Tag: "t"}},
		Metadata: metadata.KindOPC,
	},
	// ODF paragraphs mix text with nested text:span and text:s elements, so
	// content.xml has no tag wrapping only literal text. Metadata only.
	".odt": {
		Format:   FormatODT,
		Layout:   LayoutZip,
		Metadata: metadata.KindODF,
	},
	".pdf": {
		Format:   FormatPDF,
		Layout:   LayoutSingle,
		Entry:    metadata.PDFEntry,
		Metadata: metadata.KindPDF,
	},
	".txt": {
		Format:   FormatText,
		Layout:   LayoutSingle,
		Entry:    TextEntry,
		Targets:  document.TargetSet{{Pattern: TextEntry}},
		Metadata: metadata.KindNone,
	},
}

func init() {
	profiles[".md"] = profiles[".txt"]
}

// Extensions lists every extension with a profile, sorted
func Extensions() []string {
	return slices.Sorted(maps.Keys(profiles))
}

// Check rejects data that Detect would refuse, for use as a gate check
func Check(ext string, data []byte) error {
	_, err := Detect(ext, data)
	return err
}

// 🔍 Detect picks the profile for ext and checks data looks like it
func Detect(ext string, data []byte) (Profile, error) {
	p, ok := profiles[ext]
	if !ok {
		return Profile{}, errors.Errorf("%w: extension %q", ErrUnsupportedFormat, ext)
	}

	switch p.Format {
	case FormatPDF:
		if !bytes.HasPrefix(data, []byte("%PDF-")) {
			return Profile{}, errors.Errorf("%w: missing pdf header", ErrUnsupportedFormat)
		}
	case FormatText:
		if !utf8.Valid(data) {
			return Profile{}, errors.Errorf("%w: text is not valid utf-8", ErrUnsupportedFormat)
		}
	default:
		if !container.IsZip(data) {
			return Profile{}, errors.Errorf("%w: %s is not a zip container", ErrUnsupportedFormat, p.Format)
		}
	}
	return p, nil
}

// load reads data into a package following the profile layout
func (p Profile) load(data []byte) (*document.Package, error) {
	if p.Layout == LayoutZip {
		return container.Read(data)
	}
	pkg := document.NewPackage()
	if err := pkg.Add(p.Entry, bytes.Clone(data), nil); err != nil {
		return nil, err
	}
	return pkg, nil
}

// store serializes pkg following the profile layout
func (p Profile) store(pkg *document.Package) ([]byte, error) {
	if p.Layout == LayoutZip {
		return container.Write(pkg)
	}
	data, ok := pkg.Get(p.Entry)
	if !ok {
		return nil, errors.Errorf("%w: %s", document.ErrEntryNotFound, p.Entry)
	}
	return data, nil
}

// targets returns the profile targets extended with extra patterns
func (p Profile) targets(extra []string) document.TargetSet {
	if len(extra) == 0 || len(p.Targets) == 0 || p.Targets[0].Tag == "" {
		return p.Targets
	}
	return p.Targets.With(p.Targets[0].Tag, extra...)
}
