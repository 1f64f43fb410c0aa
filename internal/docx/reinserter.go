package docx

import (
	"fmt"
	"os"
	"strconv"

	"github.com/nerdneilsfield/go-docx-translator/internal/xmltree"
	"go.uber.org/zap"
)

// Reinserter writes translated units back into a fresh copy of the source
// container.
type Reinserter struct {
	logger    *zap.Logger
	policy    Policy
	resultDir string
	suffix    string
}

// ReinserterOption configures a Reinserter.
type ReinserterOption func(*Reinserter)

// WithResultDir sets the directory output containers are written to.
func WithResultDir(dir string) ReinserterOption {
	return func(r *Reinserter) {
		r.resultDir = dir
	}
}

// WithOutputSuffix sets the suffix appended to the source file stem.
func WithOutputSuffix(suffix string) ReinserterOption {
	return func(r *Reinserter) {
		r.suffix = suffix
	}
}

// NewReinserter creates a reinserter. A nil policy replaces text.
func NewReinserter(logger *zap.Logger, policy Policy, opts ...ReinserterOption) *Reinserter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == nil {
		policy = ReplacePolicy{}
	}
	r := &Reinserter{
		logger:    logger,
		policy:    policy,
		resultDir: "result",
		suffix:    "_translated",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report summarizes one reinsertion.
type Report struct {
	OutputPath string
	Total      int
	Applied    int
	Missing    int
	Failed     []*ResolveError
}

// Reinsert re-opens sourcePath, applies every translation and writes the
// result container. Units without a translation or with a stale address are
// skipped and counted; only container and write errors are returned.
// A nil ws stages parts in a temporary directory removed afterwards.
func (r *Reinserter) Reinsert(sourcePath string, original []TextUnit, translated []TranslatedUnit, ws *Workspace) (*Report, error) {
	pkg, err := OpenPackage(sourcePath)
	if err != nil {
		return nil, err
	}
	defer pkg.Close()

	report := r.Apply(pkg, original, translated)

	var staging string
	if ws != nil {
		staging = ws.StagingDir()
	} else {
		staging, err = os.MkdirTemp("", "docx-staging-*")
		if err != nil {
			return nil, fmt.Errorf("create staging dir: %w", err)
		}
		defer os.RemoveAll(staging)
	}

	resultPath := ResultPath(r.resultDir, sourcePath, r.suffix)
	if err := pkg.Save(resultPath, staging); err != nil {
		return nil, err
	}
	report.OutputPath = resultPath

	r.logger.Info("translated document saved",
		zap.String("output", resultPath),
		zap.String("mode", string(r.policy.Mode())),
		zap.Int("applied", report.Applied),
		zap.Int("missing", report.Missing),
		zap.Int("failed", len(report.Failed)))
	return report, nil
}

// Apply mutates the parsed package in place. Element lists are computed
// once per part before any mutation so that stored indices refer to the
// tree as it was at extraction time.
func (r *Reinserter) Apply(pkg *Package, original []TextUnit, translated []TranslatedUnit) *Report {
	translations := TranslationMap(translated)
	a := &application{
		Reinserter: r,
		pkg:        pkg,
		blocks:     BlockElements(pkg.Main.Doc),
		parts:      make(map[string]*partIndex, len(pkg.HeaderFooters)),
	}
	for _, part := range pkg.HeaderFooters {
		root := part.Doc.DocumentNode()
		a.parts[part.Name] = &partIndex{
			part:       part,
			paragraphs: Paragraphs(part.Doc, root),
			tables:     Tables(part.Doc, root),
		}
	}

	report := &Report{Total: len(original)}
	for _, u := range original {
		value, ok := translations[strconv.Itoa(u.ID)]
		if !ok || value == "" {
			r.logger.Warn("no translation found",
				zap.Int("id", u.ID),
				zap.String("type", string(u.Type())))
			report.Missing++
			continue
		}

		if err := a.apply(u, Unescape(value)); err != nil {
			r.logger.Warn("unit address could not be resolved",
				zap.Int("id", u.ID),
				zap.String("type", string(u.Type())),
				zap.String("reason", err.Reason))
			report.Failed = append(report.Failed, err)
			continue
		}
		report.Applied++
	}
	return report
}

type partIndex struct {
	part       *Part
	paragraphs []xmltree.NodeID
	tables     []xmltree.NodeID
}

// application holds the element lists of one Apply call.
type application struct {
	*Reinserter
	pkg    *Package
	blocks []xmltree.NodeID
	parts  map[string]*partIndex
}

func (a *application) apply(u TextUnit, text string) *ResolveError {
	doc := a.pkg.Main.Doc

	switch addr := u.Address.(type) {
	case TOCTextNodeAddress:
		p, err := a.block(u, addr.ElementIndex, isParagraph, "paragraph")
		if err != nil {
			return err
		}
		runs := Runs(doc, p)
		if outOfRange(addr.RunIndex, len(runs)) {
			return resolveErrorf(u, "run index %d out of range (%d runs)", addr.RunIndex, len(runs))
		}
		texts := TextNodes(doc, runs[addr.RunIndex])
		if outOfRange(addr.TextIndex, len(texts)) {
			return resolveErrorf(u, "text index %d out of range (%d text nodes)", addr.TextIndex, len(texts))
		}
		setNodeText(doc, texts[addr.TextIndex], a.policy.TOCText(u.Text(), text))

	case ParagraphAddress:
		p, err := a.block(u, addr.ElementIndex, isParagraph, "paragraph")
		if err != nil {
			return err
		}
		a.policy.Paragraph(doc, p, u.Text(), text, addr.HasNumbering)

	case TableCellAddress:
		tbl, err := a.block(u, addr.TableIndex, isTable, "table")
		if err != nil {
			return err
		}
		tc, err := cellAt(u, doc, tbl, addr.Row, addr.Col)
		if err != nil {
			return err
		}
		a.policy.Cell(doc, tc, u.Text(), text)

	case HeaderFooterAddress:
		idx, ok := a.parts[addr.File]
		if !ok {
			return resolveErrorf(u, "part %s not found", addr.File)
		}
		if outOfRange(addr.ParagraphIndex, len(idx.paragraphs)) {
			return resolveErrorf(u, "paragraph index %d out of range (%d paragraphs)", addr.ParagraphIndex, len(idx.paragraphs))
		}
		a.policy.Paragraph(idx.part.Doc, idx.paragraphs[addr.ParagraphIndex], u.Text(), text, false)
		idx.part.MarkModified()

	case HeaderFooterTableCellAddress:
		idx, ok := a.parts[addr.File]
		if !ok {
			return resolveErrorf(u, "part %s not found", addr.File)
		}
		if outOfRange(addr.TableIndex, len(idx.tables)) {
			return resolveErrorf(u, "table index %d out of range (%d tables)", addr.TableIndex, len(idx.tables))
		}
		tc, err := cellAt(u, idx.part.Doc, idx.tables[addr.TableIndex], addr.Row, addr.Col)
		if err != nil {
			return err
		}
		a.policy.Cell(idx.part.Doc, tc, u.Text(), text)
		idx.part.MarkModified()

	default:
		return resolveErrorf(u, "unsupported address")
	}
	return nil
}

// block returns the main-part block element at idx and checks its tag.
func (a *application) block(u TextUnit, idx int, want xmltree.Match, what string) (xmltree.NodeID, *ResolveError) {
	if outOfRange(idx, len(a.blocks)) {
		return xmltree.Nil, resolveErrorf(u, "element index %d out of range (%d block elements)", idx, len(a.blocks))
	}
	el := a.blocks[idx]
	if !want(a.pkg.Main.Doc, el) {
		return xmltree.Nil, resolveErrorf(u, "element %d is not a %s", idx, what)
	}
	return el, nil
}

func cellAt(u TextUnit, doc *xmltree.Document, tbl xmltree.NodeID, row, col int) (xmltree.NodeID, *ResolveError) {
	rows := Rows(doc, tbl)
	if outOfRange(row, len(rows)) {
		return xmltree.Nil, resolveErrorf(u, "row %d out of range (%d rows)", row, len(rows))
	}
	cells := Cells(doc, rows[row])
	if outOfRange(col, len(cells)) {
		return xmltree.Nil, resolveErrorf(u, "column %d out of range (%d cells)", col, len(cells))
	}
	return cells[col], nil
}

func outOfRange(i, n int) bool {
	return i < 0 || i >= n
}
