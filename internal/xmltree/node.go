// Package xmltree holds a parsed XML part as an arena of nodes addressed by
// stable NodeID handles. Nodes are never freed: detaching a subtree only
// unlinks it from its parent, so handles taken before a mutation stay valid.
package xmltree

// Well-known namespace URIs.
const (
	XMLNamespace   = "http://www.w3.org/XML/1998/namespace"
	XMLNSNamespace = "http://www.w3.org/2000/xmlns/"
)

// NodeID is a handle into a Document's arena.
type NodeID int32

// Nil is the zero handle; it never refers to a node.
const Nil NodeID = -1

// Kind identifies what a node holds.
type Kind uint8

const (
	KindDocument Kind = iota
	KindElement
	KindText
	KindComment
	KindProcInst
	KindDirective
)

// Name is a qualified name. Prefix is kept for serialization, Space is the
// resolved namespace URI used for matching.
type Name struct {
	Prefix string
	Local  string
	Space  string
}

// Is reports whether the name resolves to the given namespace and local name.
func (n Name) Is(space, local string) bool {
	return n.Local == local && n.Space == space
}

// Qualified returns the name as written in the source, e.g. "w:p".
func (n Name) Qualified() string {
	if n.Prefix == "" {
		return n.Local
	}
	return n.Prefix + ":" + n.Local
}

// Attr is an attribute with its resolved name.
type Attr struct {
	Name  Name
	Value string
}

type node struct {
	kind     Kind
	name     Name
	attrs    []Attr
	data     string // text, comment, directive, or procinst instruction
	target   string // procinst target
	parent   NodeID
	children []NodeID
}

// Document is the arena. Index 0 is always the document node.
type Document struct {
	nodes []node
}

// New returns an empty document containing only the document node.
func New() *Document {
	d := &Document{}
	d.alloc(node{kind: KindDocument, parent: Nil})
	return d
}

func (d *Document) alloc(n node) NodeID {
	d.nodes = append(d.nodes, n)
	return NodeID(len(d.nodes) - 1)
}

func (d *Document) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(d.nodes)
}

// DocumentNode returns the handle of the document node.
func (d *Document) DocumentNode() NodeID {
	return 0
}

// Root returns the first element child of the document node, or Nil.
func (d *Document) Root() NodeID {
	for _, c := range d.nodes[0].children {
		if d.nodes[c].kind == KindElement {
			return c
		}
	}
	return Nil
}

// Len returns the number of nodes ever allocated, attached or not.
func (d *Document) Len() int {
	return len(d.nodes)
}

// Kind returns the kind of a node.
func (d *Document) Kind(id NodeID) Kind {
	return d.nodes[id].kind
}

// Name returns the name of an element node.
func (d *Document) Name(id NodeID) Name {
	return d.nodes[id].name
}

// IsElement reports whether id is an element with the given namespace and local name.
func (d *Document) IsElement(id NodeID, space, local string) bool {
	if !d.valid(id) {
		return false
	}
	n := &d.nodes[id]
	return n.kind == KindElement && n.name.Is(space, local)
}

// Parent returns the parent handle, or Nil for detached nodes and the document node.
func (d *Document) Parent(id NodeID) NodeID {
	return d.nodes[id].parent
}

// Children returns a copy of the child handles of id.
func (d *Document) Children(id NodeID) []NodeID {
	out := make([]NodeID, len(d.nodes[id].children))
	copy(out, d.nodes[id].children)
	return out
}

// Attrs returns a copy of the attributes of an element.
func (d *Document) Attrs(id NodeID) []Attr {
	out := make([]Attr, len(d.nodes[id].attrs))
	copy(out, d.nodes[id].attrs)
	return out
}

// Attr returns the value of the attribute with the given resolved name.
func (d *Document) Attr(id NodeID, space, local string) (string, bool) {
	for _, a := range d.nodes[id].attrs {
		if a.Name.Is(space, local) {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets or adds an attribute on an element.
func (d *Document) SetAttr(id NodeID, name Name, value string) {
	n := &d.nodes[id]
	for i := range n.attrs {
		if n.attrs[i].Name.Is(name.Space, name.Local) {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
}

// Data returns the character content of a text, comment, procinst or directive node.
func (d *Document) Data(id NodeID) string {
	return d.nodes[id].data
}
