package xmltree

// Match decides whether a node is selected by a query.
type Match func(d *Document, id NodeID) bool

// Element matches elements by resolved namespace and local name.
func Element(space, local string) Match {
	return func(d *Document, id NodeID) bool {
		return d.IsElement(id, space, local)
	}
}

// AnyElement matches an element whose name is one of the given locals in space.
func AnyElement(space string, locals ...string) Match {
	return func(d *Document, id NodeID) bool {
		n := &d.nodes[id]
		if n.kind != KindElement || n.name.Space != space {
			return false
		}
		for _, l := range locals {
			if n.name.Local == l {
				return true
			}
		}
		return false
	}
}

// Descendants returns every node below id (id itself excluded) selected by
// m, in document order. This is a pure function of the tree: two calls on
// an unmodified tree return identical slices.
func (d *Document) Descendants(id NodeID, m Match) []NodeID {
	var out []NodeID
	var walk func(NodeID)
	walk = func(n NodeID) {
		for _, c := range d.nodes[n].children {
			if m(d, c) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(id)
	return out
}

// HasDescendant reports whether any node below id is selected by m.
func (d *Document) HasDescendant(id NodeID, m Match) bool {
	var found bool
	var walk func(NodeID)
	walk = func(n NodeID) {
		for _, c := range d.nodes[n].children {
			if found {
				return
			}
			if m(d, c) {
				found = true
				return
			}
			walk(c)
		}
	}
	walk(id)
	return found
}

// ChildElements returns the direct children of id selected by m.
func (d *Document) ChildElements(id NodeID, m Match) []NodeID {
	var out []NodeID
	for _, c := range d.nodes[id].children {
		if m(d, c) {
			out = append(out, c)
		}
	}
	return out
}

// ChildElement returns the first direct child of id selected by m, or Nil.
func (d *Document) ChildElement(id NodeID, m Match) NodeID {
	for _, c := range d.nodes[id].children {
		if m(d, c) {
			return c
		}
	}
	return Nil
}

// FollowingSiblings returns the siblings after id, in order.
func (d *Document) FollowingSiblings(id NodeID) []NodeID {
	p := d.nodes[id].parent
	if p == Nil {
		return nil
	}
	kids := d.nodes[p].children
	for i, c := range kids {
		if c == id {
			out := make([]NodeID, len(kids)-i-1)
			copy(out, kids[i+1:])
			return out
		}
	}
	return nil
}
