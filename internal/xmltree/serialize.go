package xmltree

import (
	"bytes"
	"sort"
	"strings"
)

// Declaration is written ahead of parts that were parsed without one.
const Declaration = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\r", "&#xD;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\t", "&#x9;",
		"\n", "&#xA;",
		"\r", "&#xD;",
	)
)

// Bytes serializes every node reachable from the document node.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	kids := d.nodes[0].children
	if len(kids) == 0 || d.nodes[kids[0]].kind != KindProcInst || d.nodes[kids[0]].target != "xml" {
		buf.WriteString(Declaration)
	}
	for _, c := range kids {
		d.write(&buf, c, nil)
	}
	return buf.Bytes()
}

// Fragment serializes the subtree at id on its own. Namespace prefixes used
// inside the subtree but declared on an ancestor are redeclared on the
// fragment root so the result parses standalone.
func (d *Document) Fragment(id NodeID) string {
	var buf bytes.Buffer
	var extra []Attr
	if d.nodes[id].kind == KindElement {
		extra = d.missingDeclarations(id)
	}
	d.write(&buf, id, extra)
	return buf.String()
}

func (d *Document) missingDeclarations(id NodeID) []Attr {
	used := map[string]string{}
	var walk func(NodeID)
	walk = func(n NodeID) {
		nd := &d.nodes[n]
		if nd.kind != KindElement {
			return
		}
		if nd.name.Prefix != "xml" {
			used[nd.name.Prefix] = nd.name.Space
		}
		for _, a := range nd.attrs {
			if a.Name.Prefix != "" && a.Name.Prefix != "xml" && a.Name.Prefix != "xmlns" {
				used[a.Name.Prefix] = a.Name.Space
			}
		}
		for _, c := range nd.children {
			walk(c)
		}
	}
	walk(id)

	for _, a := range d.nodes[id].attrs {
		switch {
		case a.Name.Prefix == "xmlns":
			delete(used, a.Name.Local)
		case a.Name.Prefix == "" && a.Name.Local == "xmlns":
			delete(used, "")
		}
	}
	if uri, ok := used[""]; ok && uri == "" {
		delete(used, "")
	}

	prefixes := make([]string, 0, len(used))
	for p := range used {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	out := make([]Attr, 0, len(prefixes))
	for _, p := range prefixes {
		if p == "" {
			out = append(out, Attr{Name: Name{Local: "xmlns", Space: XMLNSNamespace}, Value: used[p]})
			continue
		}
		out = append(out, Attr{Name: Name{Prefix: "xmlns", Local: p, Space: XMLNSNamespace}, Value: used[p]})
	}
	return out
}

func (d *Document) write(buf *bytes.Buffer, id NodeID, extra []Attr) {
	n := &d.nodes[id]
	switch n.kind {
	case KindText:
		textEscaper.WriteString(buf, n.data)
	case KindComment:
		buf.WriteString("<!--")
		buf.WriteString(n.data)
		buf.WriteString("-->")
	case KindProcInst:
		buf.WriteString("<?")
		buf.WriteString(n.target)
		// the decoder drops the whitespace between target and content
		if n.data != "" {
			buf.WriteByte(' ')
			buf.WriteString(n.data)
		}
		buf.WriteString("?>")
	case KindDirective:
		buf.WriteString("<!")
		buf.WriteString(n.data)
		buf.WriteByte('>')
	case KindElement:
		qn := n.name.Qualified()
		buf.WriteByte('<')
		buf.WriteString(qn)
		for _, a := range extra {
			writeAttr(buf, a)
		}
		for _, a := range n.attrs {
			writeAttr(buf, a)
		}
		if len(n.children) == 0 {
			buf.WriteString("/>")
			return
		}
		buf.WriteByte('>')
		for _, c := range n.children {
			d.write(buf, c, nil)
		}
		buf.WriteString("</")
		buf.WriteString(qn)
		buf.WriteByte('>')
	case KindDocument:
		for _, c := range n.children {
			d.write(buf, c, nil)
		}
	}
}

func writeAttr(buf *bytes.Buffer, a Attr) {
	buf.WriteByte(' ')
	buf.WriteString(a.Name.Qualified())
	buf.WriteString(`="`)
	attrEscaper.WriteString(buf, a.Value)
	buf.WriteByte('"')
}
