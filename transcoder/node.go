package transcoder

import (
	"fmt"
	"strings"

	"github.com/wippyai/pdscore/label"
	"github.com/wippyai/pdscore/profile"
	"github.com/wippyai/pdscore/transcoder/internal/codec"
)

// Role tells the stream what a node does with bytes.
type Role uint8

const (
	// RoleGroup repeats its children in order.
	RoleGroup Role = iota
	// RoleValue converts one typed value per repetition.
	RoleValue
	// RoleSpare consumes source bytes and writes nothing.
	RoleSpare
	// RoleFill writes literal bytes and consumes nothing.
	RoleFill
)

var roleNames = [...]string{
	RoleGroup: "group",
	RoleValue: "value",
	RoleSpare: "spare",
	RoleFill:  "fill",
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "unknown"
}

// Layout is one side of a node: its data type (values only), its offset
// within one repetition of the parent, and its size per repetition.
type Layout struct {
	Type   profile.DataType
	Offset int64
	Size   int64
}

// Descriptor carries what the destination label needs to know about one
// label object: where its bytes landed and in which representation.
type Descriptor struct {
	Type       profile.DataType // destination type of leaf values
	Name       string           // dotted path, for issue reports
	Offset     int64            // destination offset within the enclosing record
	Size       int64            // destination bytes per repetition
	ItemBytes  int64
	ItemOffset int64
	Label      label.NodeID
	Class      label.Class
	Format     profile.Format // destination interchange format
	Bits       []BitField     // BIT_COLUMN descriptors inside each item
}

// BitField is a BIT_COLUMN: a run of bits inside every item of its parent
// column. It owns no bytes of its own.
type BitField struct {
	Label    label.NodeID
	StartBit int64 // 1-based
	Bits     int64
	Within   int64 // source bits per item
}

// Node is one step of a decomposition tree. Nodes are immutable once built
// and may be shared between trees; stream cursors live in the Stream.
type Node struct {
	Src      Layout
	Dst      Layout
	Desc     *Descriptor // nil for spares, fills and padding
	Fill     []byte      // RoleFill: bytes written per repetition
	Children []*Node
	conv     *codec.Converter
	Reps     int64
	Align    int64 // destination alignment
	Role     Role
}

// SrcBytes returns the source bytes consumed by all repetitions of n.
func (n *Node) SrcBytes() int64 {
	return n.Src.Size * n.Reps
}

// DstBytes returns the destination bytes produced by all repetitions of n.
func (n *Node) DstBytes() int64 {
	return n.Dst.Size * n.Reps
}

// NodeCount returns the number of nodes in the tree rooted at n.
func (n *Node) NodeCount() int {
	c := 1
	for _, ch := range n.Children {
		c += ch.NodeCount()
	}
	return c
}

// Leaf is one leaf instance visited by Visit.
type Leaf struct {
	Node   *Node
	Src    int64 // absolute source offset
	Dst    int64 // absolute destination offset
	Repeat int64 // repetition index of the leaf itself
}

// Visit calls fn for every value leaf instance in stream order, with
// absolute offsets. Returning false stops the walk. Spares and fills are
// skipped but still advance the offsets.
func (n *Node) Visit(fn func(Leaf) bool) {
	visit(n, 0, 0, fn)
}

func visit(n *Node, src, dst int64, fn func(Leaf) bool) (int64, int64, bool) {
	for r := int64(0); r < n.Reps; r++ {
		switch n.Role {
		case RoleGroup:
			for _, c := range n.Children {
				var ok bool
				if src, dst, ok = visit(c, src, dst, fn); !ok {
					return src, dst, false
				}
			}
			continue
		case RoleValue:
			if !fn(Leaf{Node: n, Src: src, Dst: dst, Repeat: r}) {
				return src, dst, false
			}
		}
		src += n.Src.Size
		dst += n.Dst.Size
	}
	return src, dst, true
}

// String renders the tree one node per line, for debugging and inspection.
func (n *Node) String() string {
	var b strings.Builder
	n.format(&b, 0)
	return b.String()
}

func (n *Node) format(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.Summary())
	b.WriteByte('\n')
	for _, c := range n.Children {
		c.format(b, depth+1)
	}
}

// Summary describes n on one line without its children.
func (n *Node) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s x%d", n.Role, n.Reps)
	if n.Desc != nil {
		fmt.Fprintf(&b, " %s", n.Desc.Name)
	}
	switch n.Role {
	case RoleValue:
		fmt.Fprintf(&b, " %s/%d -> %s/%d", n.Src.Type.Name, n.Src.Size, n.Dst.Type.Name, n.Dst.Size)
	case RoleFill:
		fmt.Fprintf(&b, " %q", n.Fill)
	default:
		fmt.Fprintf(&b, " src %d dst %d", n.Src.Size, n.Dst.Size)
	}
	return b.String()
}
