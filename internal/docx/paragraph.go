package docx

import (
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/nerdneilsfield/go-docx-translator/internal/xmltree"
)

// numberingMarker matches a leading list marker such as "3) ", "a. ", "• ".
// regexp2 keeps \w and \d Unicode-aware and "." away from newlines.
var numberingMarker = regexp2.MustCompile(`^(\d+[\.\)]|\w+[\.\)]|•|\-|\*)\s+(.*)$`, regexp2.None)

// SplitNumbering splits a leading list marker off text. prefix keeps a
// single trailing space.
func SplitNumbering(text string) (prefix, rest string, ok bool) {
	m, err := numberingMarker.FindStringMatch(text)
	if err != nil || m == nil {
		return "", "", false
	}
	return m.GroupByNumber(1).String() + " ", m.GroupByNumber(2).String(), true
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// needsPreserve reports whether Word would collapse whitespace in text
// unless xml:space="preserve" is set.
func needsPreserve(text string) bool {
	if text == "" {
		return false
	}
	return strings.TrimSpace(text) != text || strings.ContainsAny(text, "\t\n\r") || strings.Contains(text, "  ")
}

// setNodeText sets the text of a w:t and keeps its whitespace significant.
func setNodeText(doc *xmltree.Document, t xmltree.NodeID, text string) {
	doc.SetText(t, text)
	if needsPreserve(text) {
		doc.SetAttr(t, xmlSpace, "preserve")
	}
}

func newRun(doc *xmltree.Document) xmltree.NodeID {
	return doc.NewElement(wName(doc, elemRun))
}

// appendText adds a new w:t holding text at the end of a run.
func appendText(doc *xmltree.Document, r xmltree.NodeID, text string) {
	t := doc.NewElement(wName(doc, elemText))
	setNodeText(doc, t, text)
	doc.AppendChild(r, t)
}

// appendParagraph adds a fresh unformatted paragraph with one run to parent.
func appendParagraph(doc *xmltree.Document, parent xmltree.NodeID, text string) {
	p := doc.NewElement(wName(doc, elemParagraph))
	r := newRun(doc)
	appendText(doc, r, text)
	doc.AppendChild(p, r)
	doc.AppendChild(parent, p)
}

// appendBreakRun adds a run holding a single line break to the paragraph.
func appendBreakRun(doc *xmltree.Document, p xmltree.NodeID) {
	r := newRun(doc)
	doc.AppendChild(r, doc.NewElement(wName(doc, elemBreak)))
	doc.AppendChild(p, r)
}

// appendStyledRun adds a run with a copy of like's run properties.
func appendStyledRun(doc *xmltree.Document, p, like xmltree.NodeID, text string) {
	r := newRun(doc)
	if rPr := doc.ChildElement(like, isRunProps); rPr != xmltree.Nil {
		doc.AppendChild(r, doc.Clone(rPr))
	}
	appendText(doc, r, text)
	doc.AppendChild(p, r)
}

// saveRunProps clones each run's formatting properties, keyed by run index.
func saveRunProps(doc *xmltree.Document, runs []xmltree.NodeID) map[int]xmltree.NodeID {
	saved := make(map[int]xmltree.NodeID)
	for i, r := range runs {
		if rPr := doc.ChildElement(r, isRunProps); rPr != xmltree.Nil {
			saved[i] = doc.Clone(rPr)
		}
	}
	return saved
}

// restoreRunProps re-attaches saved formatting properties by run index.
func restoreRunProps(doc *xmltree.Document, runs []xmltree.NodeID, saved map[int]xmltree.NodeID) {
	for i, rPr := range saved {
		if i >= len(runs) {
			continue
		}
		if cur := doc.ChildElement(runs[i], isRunProps); cur != xmltree.Nil {
			doc.Replace(cur, rPr)
			continue
		}
		doc.InsertChild(runs[i], 0, rPr)
	}
}

// clearTextNodes removes every w:t from the runs. Other run content (tabs,
// breaks, drawings, properties) is kept.
func clearTextNodes(doc *xmltree.Document, runs []xmltree.NodeID) {
	for _, r := range runs {
		for _, t := range TextNodes(doc, r) {
			doc.Detach(t)
		}
	}
}

// blankTextNodes empties every w:t of the paragraphs without removing them.
func blankTextNodes(doc *xmltree.Document, paras []xmltree.NodeID) {
	for _, p := range paras {
		for _, r := range Runs(doc, p) {
			for _, t := range TextNodes(doc, r) {
				doc.SetText(t, "")
			}
		}
	}
}

// fillRuns places text into the first run, or, for numbered paragraphs with
// a leading marker and at least two runs, the marker into the first run and
// the remainder into the second. It returns the run the content ended in
// and the marker that was split off.
func fillRuns(doc *xmltree.Document, runs []xmltree.NodeID, text string, hasNumbering bool) (last xmltree.NodeID, marker string) {
	if hasNumbering && len(runs) > 1 {
		if prefix, rest, ok := SplitNumbering(text); ok {
			appendText(doc, runs[0], prefix)
			appendText(doc, runs[1], rest)
			return runs[1], prefix
		}
	}
	appendText(doc, runs[0], text)
	return runs[0], ""
}
