package docx

import (
	"testing"

	"github.com/nerdneilsfield/go-docx-translator/internal/xmltree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitNumbering(t *testing.T) {
	tests := []struct {
		input  string
		prefix string
		rest   string
		ok     bool
	}{
		{"3) Hello world", "3) ", "Hello world", true},
		{"12. Scope", "12. ", "Scope", true},
		{"b) second item", "b) ", "second item", true},
		{"• bullet", "• ", "bullet", true},
		{"- dash", "- ", "dash", true},
		{"一. 概述", "一. ", "概述", true},
		{"Hello world", "", "", false},
		{"3)Hello", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prefix, rest, ok := SplitNumbering(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.prefix, prefix)
			assert.Equal(t, tt.rest, rest)
		})
	}
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode(" Bilingual ")
	require.NoError(t, err)
	assert.Equal(t, ModeBilingual, mode)

	mode, err = ParseMode("replace")
	require.NoError(t, err)
	assert.Equal(t, ModeReplace, mode)

	_, err = ParseMode("interleave")
	assert.Error(t, err)

	policy, err := NewPolicy(ModeBilingual, "")
	require.NoError(t, err)
	assert.Equal(t, "a / b", policy.TOCText("a", "b"))
}

func cellDoc(t *testing.T, cell string) (*xmltree.Document, xmltree.NodeID) {
	t.Helper()
	doc, err := xmltree.Parse([]byte(mainXML(`<w:tbl><w:tr>` + cell + `</w:tr></w:tbl>`)))
	require.NoError(t, err)
	cells := doc.Descendants(doc.DocumentNode(), isCell)
	require.Len(t, cells, 1)
	return doc, cells[0]
}

func paragraphTexts(doc *xmltree.Document, id xmltree.NodeID) []string {
	var out []string
	for _, p := range Paragraphs(doc, id) {
		out = append(out, ParagraphText(doc, p))
	}
	return out
}

func TestBilingualCell(t *testing.T) {
	doc, tc := cellDoc(t, `<w:tc><w:tcPr><w:tcW w:w="2000"/></w:tcPr><w:p><w:r><w:t>first</w:t></w:r></w:p><w:p><w:r><w:t>second</w:t></w:r></w:p></w:tc>`)

	BilingualPolicy{}.Cell(doc, tc, "first\nsecond", "erste und zweite")

	assert.Equal(t, []string{"first", "second", "erste und zweite"}, paragraphTexts(doc, tc))
	assert.NotEqual(t, xmltree.Nil, doc.ChildElement(tc, xmltree.Element(WordprocessingMLNamespace, "tcPr")),
		"cell properties survive the rebuild")
}

func TestBilingualCellWithoutTranslation(t *testing.T) {
	doc, tc := cellDoc(t, `<w:tc><w:p><w:r><w:t>only</w:t></w:r></w:p></w:tc>`)
	BilingualPolicy{}.Cell(doc, tc, "only", "")
	assert.Equal(t, []string{"only"}, paragraphTexts(doc, tc))
}

func TestReplaceCell(t *testing.T) {
	t.Run("single line goes to first paragraph", func(t *testing.T) {
		doc, tc := cellDoc(t, `<w:tc><w:p><w:r><w:t>a</w:t></w:r></w:p><w:p><w:r><w:t>b</w:t></w:r></w:p></w:tc>`)
		ReplacePolicy{}.Cell(doc, tc, "a\nb", "neu")
		assert.Equal(t, []string{"neu", ""}, paragraphTexts(doc, tc))
	})

	t.Run("extra lines append paragraphs", func(t *testing.T) {
		doc, tc := cellDoc(t, `<w:tc><w:p><w:r><w:t>a</w:t></w:r></w:p></w:tc>`)
		ReplacePolicy{}.Cell(doc, tc, "a", "x\ny\nz")
		assert.Equal(t, []string{"x", "y", "z"}, paragraphTexts(doc, tc))
	})

	t.Run("empty cell gets a paragraph", func(t *testing.T) {
		doc, tc := cellDoc(t, `<w:tc/>`)
		ReplacePolicy{}.Cell(doc, tc, "", "filled")
		assert.Equal(t, []string{"filled"}, paragraphTexts(doc, tc))
	})
}

func paragraphDoc(t *testing.T, p string) (*xmltree.Document, xmltree.NodeID) {
	t.Helper()
	doc, err := xmltree.Parse([]byte(mainXML(p)))
	require.NoError(t, err)
	paras := Paragraphs(doc, doc.DocumentNode())
	require.Len(t, paras, 1)
	return doc, paras[0]
}

func TestReplaceParagraph(t *testing.T) {
	t.Run("without runs", func(t *testing.T) {
		doc, p := paragraphDoc(t, `<w:p><w:pPr><w:jc w:val="center"/></w:pPr></w:p>`)
		ReplacePolicy{}.Paragraph(doc, p, "", "Titel", false)
		assert.Equal(t, []string{"Titel"}, runTexts(doc, p))
	})

	t.Run("keeps non-text run content", func(t *testing.T) {
		doc, p := paragraphDoc(t, `<w:p><w:r><w:rPr><w:u w:val="single"/></w:rPr><w:t>Go</w:t><w:tab/><w:t>on</w:t></w:r><w:r><w:t>!</w:t></w:r></w:p>`)
		ReplacePolicy{}.Paragraph(doc, p, "Goon!", "  Weiter ", false)

		assert.Equal(t, []string{"  Weiter ", ""}, runTexts(doc, p))
		runs := Runs(doc, p)
		assert.Len(t, doc.ChildElements(runs[0], xmltree.Element(WordprocessingMLNamespace, "tab")), 1)
		assert.Len(t, doc.ChildElements(runs[0], isRunProps), 1)

		texts := TextNodes(doc, runs[0])
		require.Len(t, texts, 1)
		space, _ := doc.Attr(texts[0], xmltree.XMLNamespace, "space")
		assert.Equal(t, "preserve", space)
	})

	t.Run("numbering needs two runs", func(t *testing.T) {
		doc, p := paragraphDoc(t, `<w:p><w:pPr><w:numPr/></w:pPr><w:r><w:t>1. One</w:t></w:r></w:p>`)
		ReplacePolicy{}.Paragraph(doc, p, "1. One", "1. Eins", true)
		assert.Equal(t, []string{"1. Eins"}, runTexts(doc, p))
	})
}

func TestBilingualParagraph(t *testing.T) {
	t.Run("without runs", func(t *testing.T) {
		doc, p := paragraphDoc(t, `<w:p/>`)
		BilingualPolicy{}.Paragraph(doc, p, "", "Hallo", false)
		assert.Equal(t, []string{"Hallo"}, runTexts(doc, p))
	})

	t.Run("marker prepended to translation", func(t *testing.T) {
		doc, p := paragraphDoc(t, `<w:p><w:r><w:t xml:space="preserve">3) </w:t></w:r><w:r><w:t>Hello world</w:t></w:r></w:p>`)
		BilingualPolicy{}.Paragraph(doc, p, "3) Hello world", "Hallo Welt", true)
		assert.Equal(t, []string{"3) ", "Hello world", "", "3) Hallo Welt"}, runTexts(doc, p))
	})

	t.Run("extra runs are cleared", func(t *testing.T) {
		doc, p := paragraphDoc(t, `<w:p><w:r><w:t>Hel</w:t></w:r><w:r><w:t>lo</w:t></w:r></w:p>`)
		BilingualPolicy{}.Paragraph(doc, p, "Hello", "Hallo", false)
		assert.Equal(t, []string{"Hello", "", "", "Hallo"}, runTexts(doc, p))
	})
}
