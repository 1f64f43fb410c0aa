package docx

import (
	"strings"

	"github.com/nerdneilsfield/go-docx-translator/internal/xmltree"
)

// The functions in this file are the single traversal shared by the
// Extractor and the Reinserter. Every stored address is an index into a
// slice returned by one of them, so they must stay pure and deterministic:
// depth-first, document order, selection by qualified element name.

// BlockElements returns every paragraph and table in the part, in document
// order, at any depth. element_index addresses index into this slice.
func BlockElements(doc *xmltree.Document) []xmltree.NodeID {
	return doc.Descendants(doc.DocumentNode(), isBlock)
}

// Paragraphs returns every paragraph below id.
func Paragraphs(doc *xmltree.Document, id xmltree.NodeID) []xmltree.NodeID {
	return doc.Descendants(id, isParagraph)
}

// Tables returns every table below id.
func Tables(doc *xmltree.Document, id xmltree.NodeID) []xmltree.NodeID {
	return doc.Descendants(id, isTable)
}

// Runs returns every run below id.
func Runs(doc *xmltree.Document, id xmltree.NodeID) []xmltree.NodeID {
	return doc.Descendants(id, isRun)
}

// TextNodes returns every w:t below id.
func TextNodes(doc *xmltree.Document, id xmltree.NodeID) []xmltree.NodeID {
	return doc.Descendants(id, isText)
}

// Rows returns every row below a table.
func Rows(doc *xmltree.Document, tbl xmltree.NodeID) []xmltree.NodeID {
	return doc.Descendants(tbl, isRow)
}

// Cells returns every cell below a row.
func Cells(doc *xmltree.Document, tr xmltree.NodeID) []xmltree.NodeID {
	return doc.Descendants(tr, isCell)
}

// ParagraphText concatenates the text nodes of every run of a paragraph.
func ParagraphText(doc *xmltree.Document, p xmltree.NodeID) string {
	var sb strings.Builder
	for _, r := range Runs(doc, p) {
		for _, t := range TextNodes(doc, r) {
			sb.WriteString(doc.Text(t))
		}
	}
	return sb.String()
}

// CellText joins the non-empty paragraphs of a cell with newlines and trims
// the result.
func CellText(doc *xmltree.Document, tc xmltree.NodeID) string {
	var sb strings.Builder
	paras := Paragraphs(doc, tc)
	for i, p := range paras {
		text := ParagraphText(doc, p)
		if text == "" {
			continue
		}
		sb.WriteString(text)
		if i < len(paras)-1 {
			sb.WriteByte('\n')
		}
	}
	return strings.TrimSpace(sb.String())
}

// IsHeading reports whether the paragraph references a heading style.
func IsHeading(doc *xmltree.Document, p xmltree.NodeID) bool {
	for _, s := range doc.Descendants(p, isParaStyle) {
		if v, ok := doc.Attr(s, WordprocessingMLNamespace, attrVal); ok && headingStyles[v] {
			return true
		}
	}
	return false
}

// HasNumbering reports whether the paragraph carries numbering properties.
func HasNumbering(doc *xmltree.Document, p xmltree.NodeID) bool {
	return doc.HasDescendant(p, isNumbering)
}

// NumberingStyle returns the serialized first numPr element, or "".
func NumberingStyle(doc *xmltree.Document, p xmltree.NodeID) string {
	nums := doc.Descendants(p, isNumbering)
	if len(nums) == 0 {
		return ""
	}
	return doc.Fragment(nums[0])
}

// IsTOCEntry reports whether a paragraph must be split per text node rather
// than concatenated. It is true when a field-begin marker's run is followed
// by a sibling run whose instruction text names a TOC field, or when the
// paragraph holds any hyperlink. The hyperlink arm over-approximates: an
// ordinary paragraph with a link is also split per text node.
func IsTOCEntry(doc *xmltree.Document, p xmltree.NodeID) bool {
	if doc.HasDescendant(p, isHyperlink) {
		return true
	}
	for _, fc := range doc.Descendants(p, isFieldChar) {
		if v, _ := doc.Attr(fc, WordprocessingMLNamespace, attrFldCharTyp); v != "begin" {
			continue
		}
		parent := doc.Parent(fc)
		if parent == xmltree.Nil {
			continue
		}
		for _, sib := range doc.FollowingSiblings(parent) {
			if !isRun(doc, sib) {
				continue
			}
			for _, instr := range doc.ChildElements(sib, isInstrText) {
				if strings.Contains(doc.Text(instr), "TOC") {
					return true
				}
			}
		}
	}
	return false
}

// HasFieldChar reports whether a run holds a field-character marker.
func HasFieldChar(doc *xmltree.Document, r xmltree.NodeID) bool {
	return doc.HasDescendant(r, isFieldChar)
}
