package docx

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
)

// UnitType tags the address kind of a TextUnit.
type UnitType string

const (
	TypeTOCTextNode           UnitType = "toc_text_node"
	TypeParagraph             UnitType = "paragraph"
	TypeTableCell             UnitType = "table_cell"
	TypeHeaderFooter          UnitType = "header_footer"
	TypeHeaderFooterTableCell UnitType = "header_footer_table_cell"
)

// Sentinel code points standing in for line breaks inside unit values.
const (
	SentinelLF = "␊"
	SentinelCR = "␍"
)

var (
	escaper   = strings.NewReplacer("\n", SentinelLF, "\r", SentinelCR)
	unescaper = strings.NewReplacer(SentinelLF, "\n", SentinelCR, "\r")
)

// Escape replaces literal newlines and carriage returns with sentinels so a
// value stays on one line in the interchange format.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape restores the characters replaced by Escape.
func Unescape(s string) string {
	return unescaper.Replace(s)
}

// Address locates a TextUnit inside a package. Each variant carries only
// the coordinates its type needs.
type Address interface {
	Type() UnitType
	isAddress()
}

// TOCTextNodeAddress points at one w:t inside a TOC-like paragraph of the
// main part.
type TOCTextNodeAddress struct {
	ElementIndex int
	RunIndex     int
	TextIndex    int
}

// ParagraphAddress points at a whole paragraph of the main part, along with
// the formatting context captured at extraction time.
type ParagraphAddress struct {
	ElementIndex   int
	IsHeading      bool
	HasNumbering   bool
	NumberingStyle string
}

// TableCellAddress points at a cell of a main-part table. TableIndex is the
// table's position among the block elements.
type TableCellAddress struct {
	TableIndex int
	Row        int
	Col        int
}

// HeaderFooterPart names a header or footer part.
type HeaderFooterPart struct {
	File string // container-relative part name, the addressing key
}

// Kind returns "header" or "footer".
func (p HeaderFooterPart) Kind() string {
	if strings.Contains(p.File, "header") {
		return "header"
	}
	return "footer"
}

// Number returns the part's file stem, e.g. "header1". Informational only.
func (p HeaderFooterPart) Number() string {
	base := path.Base(p.File)
	if i := strings.Index(base, "."); i >= 0 {
		return base[:i]
	}
	return base
}

// HeaderFooterAddress points at a paragraph of a header or footer part.
type HeaderFooterAddress struct {
	HeaderFooterPart
	ParagraphIndex int
}

// HeaderFooterTableCellAddress points at a table cell of a header or footer part.
type HeaderFooterTableCellAddress struct {
	HeaderFooterPart
	TableIndex int
	Row        int
	Col        int
}

func (TOCTextNodeAddress) Type() UnitType           { return TypeTOCTextNode }
func (ParagraphAddress) Type() UnitType             { return TypeParagraph }
func (TableCellAddress) Type() UnitType             { return TypeTableCell }
func (HeaderFooterAddress) Type() UnitType          { return TypeHeaderFooter }
func (HeaderFooterTableCellAddress) Type() UnitType { return TypeHeaderFooterTableCell }

func (TOCTextNodeAddress) isAddress()           {}
func (ParagraphAddress) isAddress()             {}
func (TableCellAddress) isAddress()             {}
func (HeaderFooterAddress) isAddress()          {}
func (HeaderFooterTableCellAddress) isAddress() {}

// TextUnit is one addressable, independently translatable piece of text.
type TextUnit struct {
	ID      int
	Value   string // sentinel-escaped text
	Address Address
}

// Type returns the unit's address kind.
func (u TextUnit) Type() UnitType {
	return u.Address.Type()
}

// Text returns the unit value with line breaks restored.
func (u TextUnit) Text() string {
	return Unescape(u.Value)
}

// unitRecord is the flat interchange shape of a TextUnit.
type unitRecord struct {
	ID             *int     `json:"id,omitempty"`
	CountSrc       *int     `json:"count_src,omitempty"`
	Type           UnitType `json:"type"`
	IsHeading      *bool    `json:"is_heading,omitempty"`
	HasNumbering   *bool    `json:"has_numbering,omitempty"`
	NumberingStyle *string  `json:"numbering_style,omitempty"`
	ElementIndex   *int     `json:"element_index,omitempty"`
	RunIndex       *int     `json:"run_index,omitempty"`
	TextIndex      *int     `json:"text_index,omitempty"`
	TableIndex     *int     `json:"table_index,omitempty"`
	Row            *int     `json:"row,omitempty"`
	Col            *int     `json:"col,omitempty"`
	HFType         string   `json:"hf_type,omitempty"`
	HFFile         *string  `json:"hf_file,omitempty"`
	HFNumber       string   `json:"hf_number,omitempty"`
	ParagraphIndex *int     `json:"paragraph_index,omitempty"`
	Value          string   `json:"value"`
}

// MarshalJSON writes the flat interchange record.
func (u TextUnit) MarshalJSON() ([]byte, error) {
	rec := unitRecord{ID: &u.ID, CountSrc: &u.ID, Value: u.Value}
	switch a := u.Address.(type) {
	case TOCTextNodeAddress:
		rec.Type = TypeTOCTextNode
		rec.ElementIndex = intPtr(a.ElementIndex)
		rec.RunIndex = intPtr(a.RunIndex)
		rec.TextIndex = intPtr(a.TextIndex)
	case ParagraphAddress:
		rec.Type = TypeParagraph
		rec.ElementIndex = intPtr(a.ElementIndex)
		rec.IsHeading = &a.IsHeading
		rec.HasNumbering = &a.HasNumbering
		if a.NumberingStyle != "" {
			rec.NumberingStyle = &a.NumberingStyle
		}
	case TableCellAddress:
		rec.Type = TypeTableCell
		rec.TableIndex = intPtr(a.TableIndex)
		rec.Row = intPtr(a.Row)
		rec.Col = intPtr(a.Col)
	case HeaderFooterAddress:
		rec.Type = TypeHeaderFooter
		rec.setPart(a.HeaderFooterPart)
		rec.ParagraphIndex = intPtr(a.ParagraphIndex)
	case HeaderFooterTableCellAddress:
		rec.Type = TypeHeaderFooterTableCell
		rec.setPart(a.HeaderFooterPart)
		rec.TableIndex = intPtr(a.TableIndex)
		rec.Row = intPtr(a.Row)
		rec.Col = intPtr(a.Col)
	default:
		return nil, fmt.Errorf("%w: unit %d has no address", ErrInvalidUnit, u.ID)
	}
	return json.Marshal(rec)
}

// UnmarshalJSON reads a flat interchange record and rejects records whose
// address fields do not match their type.
func (u *TextUnit) UnmarshalJSON(data []byte) error {
	var rec unitRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	// count_src only stands in when id is absent
	var id int
	switch {
	case rec.ID != nil:
		id = *rec.ID
	case rec.CountSrc != nil:
		id = *rec.CountSrc
	}

	var addr Address
	var err error
	switch rec.Type {
	case TypeTOCTextNode:
		err = rec.require(id, "element_index", rec.ElementIndex, "run_index", rec.RunIndex, "text_index", rec.TextIndex)
		if err == nil {
			addr = TOCTextNodeAddress{ElementIndex: *rec.ElementIndex, RunIndex: *rec.RunIndex, TextIndex: *rec.TextIndex}
		}
	case TypeParagraph:
		err = rec.require(id, "element_index", rec.ElementIndex)
		if err == nil {
			a := ParagraphAddress{ElementIndex: *rec.ElementIndex}
			if rec.IsHeading != nil {
				a.IsHeading = *rec.IsHeading
			}
			if rec.HasNumbering != nil {
				a.HasNumbering = *rec.HasNumbering
			}
			if rec.NumberingStyle != nil {
				a.NumberingStyle = *rec.NumberingStyle
			}
			addr = a
		}
	case TypeTableCell:
		err = rec.require(id, "table_index", rec.TableIndex, "row", rec.Row, "col", rec.Col)
		if err == nil {
			addr = TableCellAddress{TableIndex: *rec.TableIndex, Row: *rec.Row, Col: *rec.Col}
		}
	case TypeHeaderFooter:
		err = rec.requirePart(id)
		if err == nil {
			err = rec.require(id, "paragraph_index", rec.ParagraphIndex)
		}
		if err == nil {
			addr = HeaderFooterAddress{
				HeaderFooterPart: HeaderFooterPart{File: *rec.HFFile},
				ParagraphIndex:   *rec.ParagraphIndex,
			}
		}
	case TypeHeaderFooterTableCell:
		err = rec.requirePart(id)
		if err == nil {
			err = rec.require(id, "table_index", rec.TableIndex, "row", rec.Row, "col", rec.Col)
		}
		if err == nil {
			addr = HeaderFooterTableCellAddress{
				HeaderFooterPart: HeaderFooterPart{File: *rec.HFFile},
				TableIndex:       *rec.TableIndex,
				Row:              *rec.Row,
				Col:              *rec.Col,
			}
		}
	default:
		return fmt.Errorf("%w %q (unit %d)", ErrUnknownUnitType, rec.Type, id)
	}
	if err != nil {
		return err
	}

	*u = TextUnit{ID: id, Value: rec.Value, Address: addr}
	return nil
}

func (r *unitRecord) setPart(p HeaderFooterPart) {
	file := p.File
	r.HFFile = &file
	r.HFType = p.Kind()
	r.HFNumber = p.Number()
}

func (r *unitRecord) require(id int, pairs ...interface{}) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if v, _ := pairs[i+1].(*int); v == nil {
			return fmt.Errorf("%w: %s unit %d lacks %s", ErrInvalidUnit, r.Type, id, pairs[i])
		}
	}
	return nil
}

func (r *unitRecord) requirePart(id int) error {
	if r.HFFile == nil || *r.HFFile == "" {
		return fmt.Errorf("%w: %s unit %d lacks hf_file", ErrInvalidUnit, r.Type, id)
	}
	return nil
}

func intPtr(v int) *int {
	return &v
}
