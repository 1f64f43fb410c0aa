package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// ErrNoRoot is returned when a part holds no element at all.
var ErrNoRoot = errors.New("xmltree: document has no root element")

type frame struct {
	id NodeID
	ns map[string]string
}

// Parse builds an arena from raw XML bytes. Prefixes are preserved exactly
// as written so the part serializes back with the same qualified names;
// every element and attribute name is also resolved to its namespace URI.
func Parse(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	doc := New()
	stack := []frame{{
		id: doc.DocumentNode(),
		ns: map[string]string{"xml": XMLNamespace, "xmlns": XMLNSNamespace},
	}}

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xmltree: line %d: %w", lineOf(dec), err)
		}
		top := stack[len(stack)-1]

		switch t := tok.(type) {
		case xml.StartElement:
			ns := scope(top.ns, t.Attr)
			name, err := resolve(ns, t.Name.Space, t.Name.Local, false)
			if err != nil {
				return nil, fmt.Errorf("xmltree: line %d: %w", lineOf(dec), err)
			}
			var attrs []Attr
			if len(t.Attr) > 0 {
				attrs = make([]Attr, 0, len(t.Attr))
				for _, a := range t.Attr {
					an, err := resolve(ns, a.Name.Space, a.Name.Local, true)
					if err != nil {
						return nil, fmt.Errorf("xmltree: line %d: %w", lineOf(dec), err)
					}
					attrs = append(attrs, Attr{Name: an, Value: a.Value})
				}
			}
			id := doc.alloc(node{kind: KindElement, name: name, attrs: attrs, parent: top.id})
			doc.nodes[top.id].children = append(doc.nodes[top.id].children, id)
			stack = append(stack, frame{id: id, ns: ns})

		case xml.EndElement:
			if len(stack) == 1 {
				return nil, fmt.Errorf("xmltree: line %d: unexpected end element </%s>", lineOf(dec), rawName(t.Name))
			}
			open := doc.nodes[top.id].name
			if open.Prefix != t.Name.Space || open.Local != t.Name.Local {
				return nil, fmt.Errorf("xmltree: line %d: element <%s> closed by </%s>",
					lineOf(dec), open.Qualified(), rawName(t.Name))
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			doc.appendText(top.id, string(t))

		case xml.Comment:
			doc.appendLeaf(top.id, node{kind: KindComment, data: string(t)})

		case xml.ProcInst:
			doc.appendLeaf(top.id, node{kind: KindProcInst, target: t.Target, data: string(t.Inst)})

		case xml.Directive:
			doc.appendLeaf(top.id, node{kind: KindDirective, data: string(t)})
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("xmltree: unexpected EOF inside <%s>", doc.nodes[stack[len(stack)-1].id].name.Qualified())
	}
	if doc.Root() == Nil {
		return nil, ErrNoRoot
	}
	return doc, nil
}

func (d *Document) appendLeaf(parent NodeID, n node) {
	n.parent = parent
	id := d.alloc(n)
	d.nodes[parent].children = append(d.nodes[parent].children, id)
}

// appendText merges adjacent character data (e.g. CDATA next to plain text)
// into one text node.
func (d *Document) appendText(parent NodeID, text string) {
	kids := d.nodes[parent].children
	if n := len(kids); n > 0 && d.nodes[kids[n-1]].kind == KindText {
		d.nodes[kids[n-1]].data += text
		return
	}
	d.appendLeaf(parent, node{kind: KindText, data: text})
}

func scope(parent map[string]string, attrs []xml.Attr) map[string]string {
	var ns map[string]string
	for _, a := range attrs {
		var prefix string
		switch {
		case a.Name.Space == "xmlns":
			prefix = a.Name.Local
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			prefix = ""
		default:
			continue
		}
		if ns == nil {
			ns = make(map[string]string, len(parent)+1)
			for k, v := range parent {
				ns[k] = v
			}
		}
		ns[prefix] = a.Value
	}
	if ns == nil {
		return parent
	}
	return ns
}

func resolve(ns map[string]string, prefix, local string, isAttr bool) (Name, error) {
	name := Name{Prefix: prefix, Local: local}
	switch {
	case isAttr && prefix == "" && local == "xmlns":
		name.Space = XMLNSNamespace
	case isAttr && prefix == "":
		// unprefixed attributes are in no namespace
	default:
		uri, ok := ns[prefix]
		if !ok && prefix != "" {
			return name, fmt.Errorf("unbound namespace prefix %q", prefix)
		}
		name.Space = uri
	}
	return name, nil
}

func rawName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func lineOf(dec *xml.Decoder) int {
	line, _ := dec.InputPos()
	return line
}
