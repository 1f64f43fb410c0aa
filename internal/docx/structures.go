package docx

import (
	"github.com/nerdneilsfield/go-docx-translator/internal/xmltree"
)

// DOCX XML Namespaces
const (
	WordprocessingMLNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	RelationshipsNamespace    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// Container layout
const (
	MainPartName = "word/document.xml"
	HeaderPrefix = "word/header"
	FooterPrefix = "word/footer"
)

// WordprocessingML element names used by the traversal.
const (
	elemParagraph  = "p"
	elemTable      = "tbl"
	elemRow        = "tr"
	elemCell       = "tc"
	elemRun        = "r"
	elemText       = "t"
	elemBreak      = "br"
	elemParaProps  = "pPr"
	elemRunProps   = "rPr"
	elemParaStyle  = "pStyle"
	elemNumbering  = "numPr"
	elemFieldChar  = "fldChar"
	elemInstrText  = "instrText"
	elemHyperlink  = "hyperlink"
	attrVal        = "val"
	attrFldCharTyp = "fldCharType"
)

var (
	isParagraph = xmltree.Element(WordprocessingMLNamespace, elemParagraph)
	isTable     = xmltree.Element(WordprocessingMLNamespace, elemTable)
	isBlock     = xmltree.AnyElement(WordprocessingMLNamespace, elemParagraph, elemTable)
	isRow       = xmltree.Element(WordprocessingMLNamespace, elemRow)
	isCell      = xmltree.Element(WordprocessingMLNamespace, elemCell)
	isRun       = xmltree.Element(WordprocessingMLNamespace, elemRun)
	isText      = xmltree.Element(WordprocessingMLNamespace, elemText)
	isRunProps  = xmltree.Element(WordprocessingMLNamespace, elemRunProps)
	isNumbering = xmltree.Element(WordprocessingMLNamespace, elemNumbering)
	isFieldChar = xmltree.Element(WordprocessingMLNamespace, elemFieldChar)
	isInstrText = xmltree.Element(WordprocessingMLNamespace, elemInstrText)
	isHyperlink = xmltree.Element(WordprocessingMLNamespace, elemHyperlink)
	isParaStyle = xmltree.Element(WordprocessingMLNamespace, elemParaStyle)
)

// headingStyles are the pStyle values that mark a paragraph as a heading.
var headingStyles = map[string]bool{
	"Heading1": true,
	"Heading2": true,
	"Heading3": true,
}

// wName builds a name in the WordprocessingML namespace, reusing the prefix
// the part itself binds to that namespace.
func wName(doc *xmltree.Document, local string) xmltree.Name {
	prefix := "w"
	if root := doc.Root(); root != xmltree.Nil {
		if n := doc.Name(root); n.Space == WordprocessingMLNamespace {
			prefix = n.Prefix
		}
	}
	return xmltree.Name{Prefix: prefix, Local: local, Space: WordprocessingMLNamespace}
}

var xmlSpace = xmltree.Name{Prefix: "xml", Local: "space", Space: xmltree.XMLNamespace}
