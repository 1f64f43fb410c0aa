package docx

import (
	"fmt"
	"strings"

	"github.com/nerdneilsfield/go-docx-translator/internal/xmltree"
)

// Mode selects how translations are written back.
type Mode string

const (
	// ModeReplace overwrites the original text.
	ModeReplace Mode = "replace"
	// ModeBilingual keeps the original and adds the translation after it.
	ModeBilingual Mode = "bilingual"
)

// DefaultBilingualSeparator joins original and translation in TOC entries.
const DefaultBilingualSeparator = " / "

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeReplace:
		return ModeReplace, nil
	case ModeBilingual:
		return ModeBilingual, nil
	}
	return "", fmt.Errorf("unknown mode %q: must be %q or %q", s, ModeReplace, ModeBilingual)
}

// Policy mutates the located elements for one unit. original and translated
// are unescaped.
type Policy interface {
	Mode() Mode
	TOCText(original, translated string) string
	Paragraph(doc *xmltree.Document, p xmltree.NodeID, original, translated string, hasNumbering bool)
	Cell(doc *xmltree.Document, tc xmltree.NodeID, original, translated string)
}

// NewPolicy returns the policy for mode.
func NewPolicy(mode Mode, separator string) (Policy, error) {
	switch mode {
	case ModeReplace:
		return ReplacePolicy{}, nil
	case ModeBilingual:
		if separator == "" {
			separator = DefaultBilingualSeparator
		}
		return BilingualPolicy{Separator: separator}, nil
	}
	return nil, fmt.Errorf("unknown mode %q", mode)
}

// ReplacePolicy overwrites text while keeping run formatting.
type ReplacePolicy struct{}

func (ReplacePolicy) Mode() Mode { return ModeReplace }

func (ReplacePolicy) TOCText(_, translated string) string {
	return translated
}

func (ReplacePolicy) Paragraph(doc *xmltree.Document, p xmltree.NodeID, _, translated string, hasNumbering bool) {
	replaceParagraph(doc, p, translated, hasNumbering)
}

// Cell blanks every text node of the cell, then spreads the lines of the
// translation over the existing paragraphs, adding paragraphs as needed.
func (ReplacePolicy) Cell(doc *xmltree.Document, tc xmltree.NodeID, _, translated string) {
	paras := Paragraphs(doc, tc)
	if len(paras) == 0 {
		appendParagraph(doc, tc, translated)
		return
	}

	blankTextNodes(doc, paras)
	if !strings.Contains(translated, "\n") {
		replaceParagraph(doc, paras[0], translated, false)
		return
	}
	for i, line := range strings.Split(translated, "\n") {
		if i < len(paras) {
			replaceParagraph(doc, paras[i], line, false)
			continue
		}
		appendParagraph(doc, tc, line)
	}
}

func replaceParagraph(doc *xmltree.Document, p xmltree.NodeID, text string, hasNumbering bool) {
	runs := Runs(doc, p)
	if len(runs) == 0 {
		r := newRun(doc)
		appendText(doc, r, text)
		doc.AppendChild(p, r)
		return
	}

	saved := saveRunProps(doc, runs)
	clearTextNodes(doc, runs)
	fillRuns(doc, runs, text, hasNumbering)
	restoreRunProps(doc, runs, saved)
}

// BilingualPolicy keeps the original text and adds the translation below it.
type BilingualPolicy struct {
	Separator string
}

func (BilingualPolicy) Mode() Mode { return ModeBilingual }

func (b BilingualPolicy) TOCText(original, translated string) string {
	sep := b.Separator
	if sep == "" {
		sep = DefaultBilingualSeparator
	}
	return original + sep + translated
}

// Paragraph writes the original back into the existing runs and appends a
// line break followed by a run carrying the translation in the formatting of
// the run it follows. Numbered paragraphs repeat their marker.
func (BilingualPolicy) Paragraph(doc *xmltree.Document, p xmltree.NodeID, original, translated string, hasNumbering bool) {
	runs := Runs(doc, p)
	if len(runs) == 0 {
		r := newRun(doc)
		appendText(doc, r, translated)
		doc.AppendChild(p, r)
		return
	}

	clearTextNodes(doc, runs)
	last, marker := fillRuns(doc, runs, original, hasNumbering)
	if translated == "" {
		return
	}
	if marker != "" {
		if _, _, numbered := SplitNumbering(translated); !numbered {
			translated = marker + translated
		}
	}
	appendBreakRun(doc, p)
	appendStyledRun(doc, p, last, translated)
}

// Cell rebuilds the cell as one paragraph per original line followed by one
// paragraph per translated line.
func (BilingualPolicy) Cell(doc *xmltree.Document, tc xmltree.NodeID, original, translated string) {
	for _, p := range Paragraphs(doc, tc) {
		doc.Detach(p)
	}
	for _, line := range strings.Split(original, "\n") {
		appendParagraph(doc, tc, line)
	}
	if translated == "" {
		return
	}
	for _, line := range strings.Split(translated, "\n") {
		appendParagraph(doc, tc, line)
	}
}
