package docx

import (
	"fmt"

	"github.com/nerdneilsfield/go-docx-translator/internal/xmltree"
	"go.uber.org/zap"
)

// Extractor walks a package and produces its ordered Text Units.
type Extractor struct {
	logger   *zap.Logger
	eligible Eligibility
}

// NewExtractor creates a new extractor. A nil eligibility uses DefaultEligibility.
func NewExtractor(logger *zap.Logger, eligible Eligibility) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if eligible == nil {
		eligible = DefaultEligibility
	}
	return &Extractor{
		logger:   logger,
		eligible: eligible,
	}
}

// Extract extracts the units of the document at sourcePath and persists them
// to the workspace's source units file.
func (e *Extractor) Extract(sourcePath string, ws *Workspace) ([]TextUnit, error) {
	units, err := e.ExtractUnits(sourcePath)
	if err != nil {
		return nil, err
	}
	if err := WriteUnits(ws.SourceUnitsPath(), units); err != nil {
		return nil, fmt.Errorf("failed to persist units: %w", err)
	}
	e.logger.Info("extracted units",
		zap.String("file", Stem(sourcePath)),
		zap.Int("count", len(units)),
		zap.String("units", ws.SourceUnitsPath()))
	return units, nil
}

// ExtractUnits opens the container and returns its units without writing
// anything. Container or XML errors are fatal; no partial list is returned.
func (e *Extractor) ExtractUnits(sourcePath string) ([]TextUnit, error) {
	pkg, err := OpenPackage(sourcePath)
	if err != nil {
		return nil, err
	}
	defer pkg.Close()
	return e.ExtractPackage(pkg), nil
}

// ExtractPackage returns the units of an already opened package: main part
// first, then header/footer parts in container order. Ids run 1..N.
func (e *Extractor) ExtractPackage(pkg *Package) []TextUnit {
	x := &extraction{Extractor: e}

	x.main(pkg.Main.Doc)
	for _, part := range pkg.HeaderFooters {
		x.headerFooter(part)
	}
	return x.units
}

// extraction holds the id counter of one pass.
type extraction struct {
	*Extractor
	units []TextUnit
}

func (x *extraction) emit(text string, addr Address) {
	x.units = append(x.units, TextUnit{
		ID:      len(x.units) + 1,
		Value:   Escape(text),
		Address: addr,
	})
}

func (x *extraction) main(doc *xmltree.Document) {
	for idx, el := range BlockElements(doc) {
		switch {
		case isTable(doc, el):
			x.table(doc, el, func(row, col int) Address {
				return TableCellAddress{TableIndex: idx, Row: row, Col: col}
			})
		case isParagraph(doc, el):
			x.paragraph(doc, el, idx)
		}
	}
}

func (x *extraction) paragraph(doc *xmltree.Document, p xmltree.NodeID, idx int) {
	if IsTOCEntry(doc, p) {
		for runIdx, r := range Runs(doc, p) {
			// page-number fields
			if HasFieldChar(doc, r) {
				continue
			}
			for textIdx, t := range TextNodes(doc, r) {
				text := doc.Text(t)
				if !x.eligibleText(text) {
					continue
				}
				x.emit(text, TOCTextNodeAddress{ElementIndex: idx, RunIndex: runIdx, TextIndex: textIdx})
			}
		}
		return
	}

	text := ParagraphText(doc, p)
	if !x.eligibleText(text) {
		return
	}
	addr := ParagraphAddress{
		ElementIndex: idx,
		IsHeading:    IsHeading(doc, p),
		HasNumbering: HasNumbering(doc, p),
	}
	if addr.HasNumbering {
		addr.NumberingStyle = NumberingStyle(doc, p)
	}
	x.emit(text, addr)
}

func (x *extraction) table(doc *xmltree.Document, tbl xmltree.NodeID, address func(row, col int) Address) {
	for rowIdx, tr := range Rows(doc, tbl) {
		for colIdx, tc := range Cells(doc, tr) {
			text := CellText(doc, tc)
			if !x.eligibleText(text) {
				continue
			}
			x.emit(text, address(rowIdx, colIdx))
		}
	}
}

func (x *extraction) headerFooter(part *Part) {
	doc := part.Doc
	hf := HeaderFooterPart{File: part.Name}

	for pIdx, p := range Paragraphs(doc, doc.DocumentNode()) {
		text := ParagraphText(doc, p)
		if !x.eligibleText(text) {
			continue
		}
		x.emit(text, HeaderFooterAddress{HeaderFooterPart: hf, ParagraphIndex: pIdx})
	}

	for tblIdx, tbl := range Tables(doc, doc.DocumentNode()) {
		x.table(doc, tbl, func(row, col int) Address {
			return HeaderFooterTableCellAddress{HeaderFooterPart: hf, TableIndex: tblIdx, Row: row, Col: col}
		})
	}
}

func (x *extraction) eligibleText(text string) bool {
	if text == "" || isBlank(text) {
		return false
	}
	return x.eligible(text)
}
