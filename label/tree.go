package label

import (
	"strings"

	"github.com/wippyai/pdscore/errors"
)

// NodeID addresses a node inside its Tree. IDs are stable for the life of
// the tree: detached and removed nodes keep their slot and are never reused.
type NodeID int32

// Nil is the absent node.
const Nil NodeID = -1

// Keyword is one KEYWORD = value assignment.
type Keyword struct {
	Name  string
	Value Value
}

type node struct {
	name     string
	keywords []Keyword
	children []NodeID
	parent   NodeID
	class    Class
	removed  bool
}

// Tree is an arena of label nodes. Children are owned by their parent; the
// parent index is a back-reference only.
type Tree struct {
	nodes []node
	root  NodeID
}

// NewTree creates a tree whose root node has the given object name.
func NewTree(name string) *Tree {
	t := &Tree{}
	t.root = t.alloc(name, Nil)
	return t
}

func (t *Tree) alloc(name string, parent NodeID) NodeID {
	name = strings.ToUpper(strings.TrimSpace(name))
	t.nodes = append(t.nodes, node{
		name:   name,
		class:  ParseClass(name),
		parent: parent,
	})
	return NodeID(len(t.nodes) - 1)
}

func (t *Tree) valid(id NodeID) bool {
	return t != nil && id >= 0 && int(id) < len(t.nodes) && !t.nodes[id].removed
}

// Root returns the root node.
func (t *Tree) Root() NodeID {
	return t.root
}

// Valid reports whether id refers to a live node of this tree.
func (t *Tree) Valid(id NodeID) bool {
	return t.valid(id)
}

// Add appends a new child object under parent.
func (t *Tree) Add(parent NodeID, name string) NodeID {
	if !t.valid(parent) {
		return Nil
	}
	id := t.alloc(name, parent)
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id
}

// Class returns the object class of a node.
func (t *Tree) Class(id NodeID) Class {
	if !t.valid(id) {
		return ClassOther
	}
	return t.nodes[id].class
}

// ClassName returns the object name as written, e.g. INDEX_TABLE.
func (t *Tree) ClassName(id NodeID) string {
	if !t.valid(id) {
		return ""
	}
	return t.nodes[id].name
}

// SetClassName renames an object, updating its class.
func (t *Tree) SetClassName(id NodeID, name string) {
	if !t.valid(id) {
		return
	}
	name = strings.ToUpper(strings.TrimSpace(name))
	t.nodes[id].name = name
	t.nodes[id].class = ParseClass(name)
}

// Parent returns the parent of id, or Nil for the root and detached nodes.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return Nil
	}
	return t.nodes[id].parent
}

// Children returns the ordered children of id. The slice is a copy.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	return append([]NodeID(nil), t.nodes[id].children...)
}

// NumChildren returns the number of children of id.
func (t *Tree) NumChildren(id NodeID) int {
	if !t.valid(id) {
		return 0
	}
	return len(t.nodes[id].children)
}

// Keywords returns the ordered keywords of id. The slice is a copy.
func (t *Tree) Keywords(id NodeID) []Keyword {
	if !t.valid(id) {
		return nil
	}
	return append([]Keyword(nil), t.nodes[id].keywords...)
}

func (t *Tree) keywordIndex(id NodeID, name string) int {
	want := Canonical(name)
	for i, kw := range t.nodes[id].keywords {
		if Canonical(kw.Name) == want {
			return i
		}
	}
	return -1
}

// Lookup returns the value of a keyword, honouring legacy aliases.
func (t *Tree) Lookup(id NodeID, name string) (Value, bool) {
	if !t.valid(id) {
		return Value{}, false
	}
	i := t.keywordIndex(id, name)
	if i < 0 {
		return Value{}, false
	}
	return t.nodes[id].keywords[i].Value, true
}

// Has reports whether a keyword is present.
func (t *Tree) Has(id NodeID, name string) bool {
	_, ok := t.Lookup(id, name)
	return ok
}

// Int returns an integer keyword value.
func (t *Tree) Int(id NodeID, name string) (int64, bool) {
	v, ok := t.Lookup(id, name)
	if !ok {
		return 0, false
	}
	return v.AsInt()
}

// IntOr returns an integer keyword value or def when absent or malformed.
func (t *Tree) IntOr(id NodeID, name string, def int64) int64 {
	if n, ok := t.Int(id, name); ok {
		return n
	}
	return def
}

// Float returns a real keyword value.
func (t *Tree) Float(id NodeID, name string) (float64, bool) {
	v, ok := t.Lookup(id, name)
	if !ok {
		return 0, false
	}
	return v.AsFloat()
}

// Symbol returns an enumerated keyword value upper-cased, or "" when absent.
func (t *Tree) Symbol(id NodeID, name string) string {
	v, ok := t.Lookup(id, name)
	if !ok {
		return ""
	}
	return v.Symbol()
}

// Set replaces the value of a keyword in place, or appends it.
func (t *Tree) Set(id NodeID, name string, v Value) {
	if !t.valid(id) {
		return
	}
	if i := t.keywordIndex(id, name); i >= 0 {
		t.nodes[id].keywords[i].Value = v
		return
	}
	t.nodes[id].keywords = append(t.nodes[id].keywords, Keyword{Name: name, Value: v})
}

// Insert places a keyword at position index, shifting later keywords.
func (t *Tree) Insert(id NodeID, index int, kw Keyword) {
	if !t.valid(id) {
		return
	}
	kws := t.nodes[id].keywords
	if index < 0 || index > len(kws) {
		index = len(kws)
	}
	kws = append(kws, Keyword{})
	copy(kws[index+1:], kws[index:])
	kws[index] = kw
	t.nodes[id].keywords = kws
}

// Delete removes a keyword. It reports whether one was removed.
func (t *Tree) Delete(id NodeID, name string) bool {
	if !t.valid(id) {
		return false
	}
	i := t.keywordIndex(id, name)
	if i < 0 {
		return false
	}
	kws := t.nodes[id].keywords
	t.nodes[id].keywords = append(kws[:i], kws[i+1:]...)
	return true
}

// Rename changes a keyword's name while keeping its position and value.
func (t *Tree) Rename(id NodeID, from, to string) bool {
	if !t.valid(id) {
		return false
	}
	for i, kw := range t.nodes[id].keywords {
		if strings.EqualFold(kw.Name, from) {
			t.nodes[id].keywords[i].Name = to
			return true
		}
	}
	return false
}

// SetKeywords replaces the whole keyword list of id with a copy of kws.
func (t *Tree) SetKeywords(id NodeID, kws []Keyword) {
	if !t.valid(id) {
		return
	}
	t.nodes[id].keywords = copyKeywords(kws)
}

// Cut detaches id from its parent. The node and its subtree stay in the
// arena and can be pasted elsewhere.
func (t *Tree) Cut(id NodeID) error {
	if !t.valid(id) {
		return errors.InvalidArgument(errors.PhaseLabel, "cut: invalid node %d", id)
	}
	if id == t.root {
		return errors.InvalidArgument(errors.PhaseLabel, "cut: cannot detach the root")
	}
	p := t.nodes[id].parent
	if p != Nil {
		kids := t.nodes[p].children
		for i, c := range kids {
			if c == id {
				t.nodes[p].children = append(kids[:i], kids[i+1:]...)
				break
			}
		}
	}
	t.nodes[id].parent = Nil
	return nil
}

// Paste attaches a detached node under parent at position index
// (index < 0 appends).
func (t *Tree) Paste(id, parent NodeID, index int) error {
	if !t.valid(id) || !t.valid(parent) {
		return errors.InvalidArgument(errors.PhaseLabel, "paste: invalid node")
	}
	if t.nodes[id].parent != Nil || id == t.root {
		return errors.InvalidArgument(errors.PhaseLabel, "paste: node %d is still attached", id)
	}
	for a := parent; a != Nil; a = t.nodes[a].parent {
		if a == id {
			return errors.InvalidArgument(errors.PhaseLabel, "paste: node %d would become its own ancestor", id)
		}
	}
	kids := t.nodes[parent].children
	if index < 0 || index > len(kids) {
		index = len(kids)
	}
	kids = append(kids, Nil)
	copy(kids[index+1:], kids[index:])
	kids[index] = id
	t.nodes[parent].children = kids
	t.nodes[id].parent = parent
	return nil
}

// Remove cuts id and marks its whole subtree dead.
func (t *Tree) Remove(id NodeID) error {
	if err := t.Cut(id); err != nil {
		return err
	}
	t.Walk(id, func(n NodeID, _ int) bool {
		t.nodes[n].removed = true
		return true
	})
	return nil
}

// Walk visits id and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func (t *Tree) Walk(id NodeID, fn func(id NodeID, depth int) bool) {
	t.walk(id, 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, int) bool) {
	if id < 0 || int(id) >= len(t.nodes) {
		return
	}
	if !fn(id, depth) {
		return
	}
	for _, c := range t.nodes[id].children {
		t.walk(c, depth+1, fn)
	}
}

// CopySubtree returns a new tree holding a deep copy of id's subtree, and a
// mapping from the source IDs to the copied IDs.
func (t *Tree) CopySubtree(id NodeID) (*Tree, map[NodeID]NodeID) {
	dst := &Tree{}
	ids := make(map[NodeID]NodeID)
	if !t.valid(id) {
		dst.root = dst.alloc("ROOT", Nil)
		return dst, ids
	}
	dst.root = dst.graft(t, id, Nil, ids)
	return dst, ids
}

// Graft copies the subtree of src rooted at id under parent and returns the
// new node.
func (t *Tree) Graft(src *Tree, id, parent NodeID) NodeID {
	if !src.valid(id) || !t.valid(parent) {
		return Nil
	}
	n := t.graft(src, id, parent, nil)
	t.nodes[parent].children = append(t.nodes[parent].children, n)
	return n
}

func (t *Tree) graft(src *Tree, id, parent NodeID, ids map[NodeID]NodeID) NodeID {
	s := src.nodes[id]
	n := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{
		name:     s.name,
		class:    s.class,
		parent:   parent,
		keywords: copyKeywords(s.keywords),
	})
	if ids != nil {
		ids[id] = n
	}
	kids := make([]NodeID, 0, len(s.children))
	for _, c := range s.children {
		kids = append(kids, t.graft(src, c, n, ids))
	}
	t.nodes[n].children = kids
	return n
}

func copyKeywords(kws []Keyword) []Keyword {
	out := make([]Keyword, len(kws))
	for i, kw := range kws {
		out[i] = Keyword{Name: kw.Name, Value: copyValue(kw.Value)}
	}
	return out
}

func copyValue(v Value) Value {
	if len(v.Items) > 0 {
		items := make([]Value, len(v.Items))
		for i, it := range v.Items {
			items[i] = copyValue(it)
		}
		v.Items = items
	}
	return v
}

// Name returns the NAME keyword of a node, or its class name.
func (t *Tree) Name(id NodeID) string {
	if v, ok := t.Lookup(id, "NAME"); ok && v.Text != "" {
		return v.Text
	}
	return t.ClassName(id)
}

// Path returns the names from the root down to id, for error messages.
func (t *Tree) Path(id NodeID) []string {
	var path []string
	for n := id; t.valid(n); n = t.nodes[n].parent {
		path = append(path, t.Name(n))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// FindChild returns the first direct child of id whose NAME matches name
// (case-insensitive), or Nil.
func (t *Tree) FindChild(id NodeID, name string) NodeID {
	for _, c := range t.Children(id) {
		if strings.EqualFold(t.Name(c), name) {
			return c
		}
	}
	return Nil
}

// Find returns the first node in id's subtree, in pre-order, for which
// match returns true, or Nil.
func (t *Tree) Find(id NodeID, match func(NodeID) bool) NodeID {
	found := Nil
	t.Walk(id, func(n NodeID, _ int) bool {
		if found != Nil {
			return false
		}
		if match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// IndexOf returns the position of id among its siblings, or -1.
func (t *Tree) IndexOf(id NodeID) int {
	p := t.Parent(id)
	if p == Nil {
		return -1
	}
	for i, c := range t.nodes[p].children {
		if c == id {
			return i
		}
	}
	return -1
}
