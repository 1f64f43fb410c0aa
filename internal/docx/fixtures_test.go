package docx

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const wDecl = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const wRoot = `xmlns:w="` + WordprocessingMLNamespace + `" xmlns:r="` + RelationshipsNamespace + `"`

func mainXML(body string) string {
	return wDecl + `<w:document ` + wRoot + `><w:body>` + body + `<w:sectPr/></w:body></w:document>`
}

func headerXML(content string) string {
	return wDecl + `<w:hdr ` + wRoot + `>` + content + `</w:hdr>`
}

func footerXML(content string) string {
	return wDecl + `<w:ftr ` + wRoot + `>` + content + `</w:ftr>`
}

type entry struct {
	name string
	data string
}

const contentTypes = `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`

// writeDocx writes a container holding the entries in order.
func writeDocx(t *testing.T, dir, name string, entries ...entry) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = io.WriteString(w, e.data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func writeFile(path, data string) error {
	return os.WriteFile(path, []byte(data), 0644)
}

// readEntries returns every entry of a container by name, plus the order.
func readEntries(t *testing.T, path string) (map[string]string, []string) {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	out := make(map[string]string, len(r.File))
	var order []string
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		out[f.Name] = string(data)
		order = append(order, f.Name)
	}
	return out, order
}

// sampleBody exercises every unit type of the main part. Block element
// indices: 0 heading, 1 numbered, 2 blank, 3 digits, 4 table, 5..9 the
// table's paragraphs, 10 hyperlink paragraph.
const sampleBody = `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Introduction</w:t></w:r></w:p>` +
	`<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr>` +
	`<w:r><w:rPr><w:b/></w:rPr><w:t>3)</w:t></w:r><w:r><w:rPr><w:i/></w:rPr><w:t xml:space="preserve"> Hello world</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t xml:space="preserve">   </w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>12345</w:t></w:r></w:p>` +
	`<w:tbl>` +
	`<w:tr><w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc><w:tc><w:p/></w:tc></w:tr>` +
	`<w:tr><w:tc><w:p><w:r><w:t>Line one</w:t></w:r></w:p><w:p><w:r><w:t>Line two</w:t></w:r></w:p></w:tc>` +
	`<w:tc><w:p><w:r><w:t>Value</w:t></w:r></w:p></w:tc></w:tr>` +
	`</w:tbl>` +
	`<w:p><w:hyperlink r:id="rId9"><w:r><w:t>Chapter One</w:t></w:r><w:r><w:fldChar w:fldCharType="begin"/></w:r><w:r><w:t>Details</w:t></w:r></w:hyperlink></w:p>`

const sampleHeader = `<w:p><w:r><w:t>Confidential</w:t></w:r></w:p>` +
	`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Draft</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`

const sampleStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:styles ` + wRoot + `/>`

func sampleEntries() []entry {
	return []entry{
		{"[Content_Types].xml", contentTypes},
		{"word/document.xml", mainXML(sampleBody)},
		{"word/styles.xml", sampleStyles},
		{"word/header1.xml", headerXML(sampleHeader)},
		{"word/footer1.xml", footerXML(`<w:p><w:r><w:t>Page</w:t></w:r></w:p>`)},
		{"word/media/image1.png", "\x89PNG\r\n\x1a\nbinary"},
	}
}

func writeSample(t *testing.T) string {
	t.Helper()
	return writeDocx(t, t.TempDir(), "report.docx", sampleEntries()...)
}
