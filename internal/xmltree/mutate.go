package xmltree

import (
	"strings"
)

// NewElement allocates a detached element.
func (d *Document) NewElement(name Name) NodeID {
	return d.alloc(node{kind: KindElement, name: name, parent: Nil})
}

// NewText allocates a detached text node.
func (d *Document) NewText(text string) NodeID {
	return d.alloc(node{kind: KindText, data: text, parent: Nil})
}

// AppendChild attaches child as the last child of parent, detaching it first
// if it already has a parent.
func (d *Document) AppendChild(parent, child NodeID) {
	d.Detach(child)
	d.nodes[child].parent = parent
	d.nodes[parent].children = append(d.nodes[parent].children, child)
}

// InsertChild attaches child at position index among parent's children.
func (d *Document) InsertChild(parent NodeID, index int, child NodeID) {
	d.Detach(child)
	kids := d.nodes[parent].children
	if index < 0 {
		index = 0
	}
	if index > len(kids) {
		index = len(kids)
	}
	kids = append(kids, Nil)
	copy(kids[index+1:], kids[index:])
	kids[index] = child
	d.nodes[parent].children = kids
	d.nodes[child].parent = parent
}

// Detach unlinks id from its parent. The subtree stays in the arena.
func (d *Document) Detach(id NodeID) {
	p := d.nodes[id].parent
	if p == Nil {
		return
	}
	kids := d.nodes[p].children
	for i, c := range kids {
		if c == id {
			d.nodes[p].children = append(kids[:i:i], kids[i+1:]...)
			break
		}
	}
	d.nodes[id].parent = Nil
}

// Replace puts repl where old was and detaches old.
func (d *Document) Replace(old, repl NodeID) {
	p := d.nodes[old].parent
	if p == Nil {
		return
	}
	d.Detach(repl)
	for i, c := range d.nodes[p].children {
		if c == old {
			d.nodes[p].children[i] = repl
			break
		}
	}
	d.nodes[repl].parent = p
	d.nodes[old].parent = Nil
}

// Clone deep-copies the subtree at id into new detached nodes.
func (d *Document) Clone(id NodeID) NodeID {
	src := d.nodes[id]
	n := node{
		kind:   src.kind,
		name:   src.name,
		data:   src.data,
		target: src.target,
		parent: Nil,
	}
	if len(src.attrs) > 0 {
		n.attrs = make([]Attr, len(src.attrs))
		copy(n.attrs, src.attrs)
	}
	cp := d.alloc(n)
	for _, c := range src.children {
		cc := d.Clone(c)
		d.nodes[cc].parent = cp
		d.nodes[cp].children = append(d.nodes[cp].children, cc)
	}
	return cp
}

// Text returns the concatenated direct text children of an element,
// matching what an element's leading text holds in most tree APIs for
// leaf elements such as w:t.
func (d *Document) Text(id NodeID) string {
	var sb strings.Builder
	for _, c := range d.nodes[id].children {
		if d.nodes[c].kind == KindText {
			sb.WriteString(d.nodes[c].data)
		}
	}
	return sb.String()
}

// SetText replaces every text child of an element with a single text node.
// Element children are kept.
func (d *Document) SetText(id NodeID, text string) {
	kids := d.nodes[id].children[:0:0]
	for _, c := range d.nodes[id].children {
		if d.nodes[c].kind == KindText {
			d.nodes[c].parent = Nil
			continue
		}
		kids = append(kids, c)
	}
	d.nodes[id].children = kids
	if text == "" {
		return
	}
	t := d.NewText(text)
	d.InsertChild(id, 0, t)
}
