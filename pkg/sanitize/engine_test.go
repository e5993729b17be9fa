package sanitize

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/docscrub/pkg/container"
	"github.com/walteh/docscrub/pkg/gate"
	"github.com/walteh/docscrub/pkg/metadata"
	"github.com/walteh/docscrub/pkg/status"
	"gitlab.com/tozd/go/errors"
)

const (
	documentXML = `<w:document><w:body><w:p><w:r><w:t>Hello  world !</w:t></w:r></w:p></w:body></w:document>`
	stylesXML   = `<w:styles><w:style w:styleId="Normal"/></w:styles>`
	coreXML     = `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Plan</dc:title><dc:creator>Jane Doe</dc:creator></cp:coreProperties>`
)

func buildZip(t *testing.T, entries ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for i := 0; i+1 < len(entries); i += 2 {
		fw, err := w.Create(entries[i])
		require.NoError(t, err)
		_, err = fw.Write([]byte(entries[i+1]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func docxFixture(t *testing.T, body string) []byte {
	return buildZip(t,
		"[Content_Types].xml", `<Types/>`,
		"word/document.xml", body,
		"word/styles.xml", stylesXML,
		metadata.CoreProperties, coreXML,
	)
}

func admit(t *testing.T, filename string, data []byte) gate.Ticket {
	t.Helper()
	ticket, err := gate.New(gate.Options{}).Admit(context.Background(), gate.Request{
		Filename: filename,
		Size:     int64(max(len(data), 1)),
	})
	require.NoError(t, err)
	return ticket
}

func entry(t *testing.T, data []byte, name string) string {
	t.Helper()
	pkg, err := container.Read(data)
	require.NoError(t, err)
	content, ok := pkg.Get(name)
	require.True(t, ok, "entry %s should exist", name)
	return string(content)
}

func TestEngine_ProcessDOCX(t *testing.T) {
	ctx := context.Background()
	src := docxFixture(t, documentXML)

	res, err := New(Options{}).Process(ctx, admit(t, "plan.docx", src), src)
	require.NoError(t, err)

	assert.Equal(t, FormatDOCX, res.Format)
	assert.NotEmpty(t, res.RequestID)
	assert.Len(t, res.Digest, 64)

	assert.Equal(t, `<w:document><w:body><w:p><w:r><w:t>Hello world!</w:t></w:r></w:p></w:body></w:document>`, entry(t, res.Data, "word/document.xml"))
	assert.Equal(t, stylesXML, entry(t, res.Data, "word/styles.xml"))

	core := entry(t, res.Data, metadata.CoreProperties)
	assert.NotContains(t, core, "Jane")
	assert.NotContains(t, core, "Plan")

	assert.Equal(t, "1 entry modified, 1 span rewritten, 0 edits applied, 2 metadata fields cleared", res.Summary)
	assert.NotContains(t, string(res.Data), res.Summary)

	entries := res.Report.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, metadata.CoreProperties, entries[0].Name)
	assert.Equal(t, status.StatusCleared, entries[0].Status)
	assert.Equal(t, "word/document.xml", entries[1].Name)
	assert.Equal(t, status.StatusModified, entries[1].Status)
}

func TestEngine_ProcessIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := New(Options{})
	src := docxFixture(t, documentXML)

	first, err := e.Process(ctx, admit(t, "plan.docx", src), src)
	require.NoError(t, err)

	second, err := e.Process(ctx, admit(t, "plan.docx", first.Data), first.Data)
	require.NoError(t, err)

	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, first.Digest, second.Digest)
	assert.Equal(t, status.Totals{}, second.Report.Totals())
}

func TestEngine_ProcessExtraPatterns(t *testing.T) {
	ctx := context.Background()
	src := buildZip(t,
		"word/document.xml", `<w:t>body</w:t>`,
		"word/footnotes.xml", `<w:t>note  one</w:t>`,
	)

	plain, err := New(Options{}).Process(ctx, admit(t, "a.docx", src), src)
	require.NoError(t, err)
	assert.Equal(t, src, plain.Data)

	extra, err := New(Options{ExtraPatterns: []string{"word/footnotes.xml"}}).Process(ctx, admit(t, "a.docx", src), src)
	require.NoError(t, err)
	assert.Equal(t, `<w:t>note one</w:t>`, entry(t, extra.Data, "word/footnotes.xml"))
}

func TestEngine_ProcessText(t *testing.T) {
	src := []byte("Intro\n\n\n\nBody  text ,done")

	res, err := New(Options{}).Process(context.Background(), admit(t, "notes.md", src), src)
	require.NoError(t, err)
	assert.Equal(t, FormatText, res.Format)
	assert.Equal(t, "Intro\n\nBody text,done", string(res.Data))
}

func TestEngine_ProcessPDF(t *testing.T) {
	src := []byte("%PDF-1.4\n1 0 obj << /Author (Jane Doe) /Pages 2 0 R >> endobj\n%%EOF")

	res, err := New(Options{}).Process(context.Background(), admit(t, "scan.pdf", src), src)
	require.NoError(t, err)

	assert.Equal(t, FormatPDF, res.Format)
	assert.Len(t, res.Data, len(src))
	assert.NotContains(t, string(res.Data), "Jane")
	assert.Equal(t, 1, res.Report.Totals().FieldsCleared)
}

func TestEngine_UnchangedDocumentIsReturnedAsIs(t *testing.T) {
	src := buildZip(t, "word/document.xml", `<w:t>Already clean.</w:t>`)

	res, err := New(Options{}).Process(context.Background(), admit(t, "a.docx", src), src)
	require.NoError(t, err)
	assert.Equal(t, src, res.Data)
	assert.Equal(t, "0 entries modified, 0 spans rewritten, 0 edits applied, 0 metadata fields cleared", res.Summary)
}

func TestEngine_ProcessErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		wantErr  error
	}{
		{
			name:     "pdf_without_header",
			filename: "a.pdf",
			data:     []byte("not a pdf"),
			wantErr:  ErrUnsupportedFormat,
		},
		{
			name:     "docx_that_is_not_zip",
			filename: "a.docx",
			data:     []byte("plain text"),
			wantErr:  ErrUnsupportedFormat,
		},
		{
			name:     "text_with_invalid_utf8",
			filename: "a.txt",
			data:     []byte("bad \xff"),
			wantErr:  ErrUnsupportedFormat,
		},
		{
			name:     "truncated_zip",
			filename: "a.docx",
			data:     []byte("PK\x03\x04truncated"),
			wantErr:  container.ErrCorrupt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(Options{}).Process(context.Background(), admit(t, tt.filename, tt.data), tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Nil(t, res)
		})
	}
}

func TestEngine_RequiresTicket(t *testing.T) {
	e := New(Options{})

	_, err := e.Process(context.Background(), gate.Ticket{}, []byte("text"))
	assert.True(t, errors.Is(err, ErrNotAdmitted))

	_, err = e.Inspect(context.Background(), gate.Ticket{}, []byte("text"))
	assert.True(t, errors.Is(err, ErrNotAdmitted))
}

func TestEngine_Inspect(t *testing.T) {
	src := buildZip(t,
		"word/document.xml", `<w:t>one</w:t><w:t>two</w:t>`,
		"word/header1.xml", `<w:t>head</w:t>`,
		metadata.CoreProperties, coreXML,
	)
	orig := bytes.Clone(src)

	ins, err := New(Options{}).Inspect(context.Background(), admit(t, "a.docx", src), src)
	require.NoError(t, err)

	assert.Equal(t, FormatDOCX, ins.Format)
	assert.Equal(t, []EntryView{
		{Name: "word/document.xml", Tag: "w:t", Spans: 2},
		{Name: "word/header1.xml", Tag: "w:t", Spans: 1},
	}, ins.Entries)
	assert.Equal(t, metadata.Cleared{metadata.CoreProperties: 2}, ins.Metadata)
	assert.Equal(t, orig, src)
}

func TestDetect(t *testing.T) {
	p, err := Detect(".md", []byte("# title"))
	require.NoError(t, err)
	assert.Equal(t, FormatText, p.Format)
	assert.Equal(t, TextEntry, p.Entry)

	_, err = Detect(".rtf", []byte("{\\rtf1}"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestProfilesCoverDefaultExtensions(t *testing.T) {
	for _, ext := range gate.DefaultExtensions {
		_, ok := profiles[ext]
		assert.True(t, ok, "extension %s should have a profile", ext)
	}
	assert.Len(t, profiles, len(gate.DefaultExtensions))
}

func TestCheck_RefusedDocumentKeepsQuota(t *testing.T) {
	ctx := context.Background()
	g := gate.New(gate.Options{Quota: gate.NewDailyQuota(1, nil), Check: Check})

	bogus := []byte("not a zip at all")
	_, err := g.Admit(ctx, gate.Request{Filename: "a.docx", Size: int64(len(bogus)), Data: bogus})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gate.ErrFormat))

	text := []byte("fine")
	ticket, err := g.Admit(ctx, gate.Request{Filename: "b.txt", Size: int64(len(text)), Data: text})
	require.NoError(t, err)
	assert.Equal(t, 0, ticket.Usage().Remaining())

	_, err = New(Options{}).Process(ctx, ticket, text)
	require.NoError(t, err)
}

func TestEngine_ProcessODTClearsMetadataOnly(t *testing.T) {
	content := `<office:document-content><office:body><office:text><text:p>Hello  <text:s/>world <text:span text:style-name="T1">again</text:span></text:p></office:text></office:body></office:document-content>`
	meta := `<office:document-meta xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:dc="http://purl.org/dc/elements/1.1/"><office:meta><dc:creator>Jane Doe</dc:creator></office:meta></office:document-meta>`
	src := buildZip(t,
		"mimetype", "application/vnd.oasis.opendocument.text",
		"content.xml", content,
		metadata.MetaPart, meta,
	)

	res, err := New(Options{}).Process(context.Background(), admit(t, "notes.odt", src), src)
	require.NoError(t, err)

	assert.Equal(t, FormatODT, res.Format)
	assert.Equal(t, content, entry(t, res.Data, "content.xml"))
	assert.NotContains(t, entry(t, res.Data, metadata.MetaPart), "Jane")
	assert.Equal(t, 1, res.Report.Totals().FieldsCleared)
	assert.Equal(t, 0, res.Report.Totals().EntriesModified)
}
