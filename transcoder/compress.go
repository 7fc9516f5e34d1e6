package transcoder

import (
	"bytes"

	"go.uber.org/zap"
)

// maxMergedFill bounds the literal bytes merged from adjacent fills.
const maxMergedFill = 64

// Compress returns a folded copy of the tree rooted at n. Runs of adjacent
// identical siblings become one node with the summed repetition count,
// groups holding a single child pass their repetitions down to it, and
// neighbouring spares merge. Traversal order and bytes are unchanged, so a
// compressed tree streams exactly what n streams. Descriptors of folded
// groups are dropped; leaf descriptors are kept.
func Compress(n *Node) *Node {
	if n == nil {
		return nil
	}
	out := compress(n)
	Logger().Debug("compressed decomposition tree",
		zap.Int("nodes_before", n.NodeCount()),
		zap.Int("nodes_after", out.NodeCount()))
	return out
}

func compress(n *Node) *Node {
	out := *n
	if n.Role != RoleGroup {
		return &out
	}

	var kids []*Node
	for _, ch := range n.Children {
		if ch.Reps == 0 {
			continue
		}
		c := compress(ch)
		if c.Role == RoleGroup && c.Reps == 1 {
			for _, gc := range c.Children {
				kids = merge(kids, gc)
			}
			continue
		}
		kids = merge(kids, c)
	}
	out.Children = kids

	if len(kids) == 1 {
		only := *kids[0]
		only.Reps *= out.Reps
		return &only
	}
	return &out
}

// merge appends c to kids, folding it into the last sibling when possible.
func merge(kids []*Node, c *Node) []*Node {
	if len(kids) == 0 {
		return append(kids, c)
	}
	last := kids[len(kids)-1]

	switch {
	case sameShape(last, c):
		m := *last
		m.Reps += c.Reps
		kids[len(kids)-1] = &m
	case last.Role == RoleSpare && c.Role == RoleSpare:
		kids[len(kids)-1] = spare(last.SrcBytes() + c.SrcBytes())
	case last.Role == RoleFill && c.Role == RoleFill && last.DstBytes()+c.DstBytes() <= maxMergedFill:
		b := make([]byte, 0, last.DstBytes()+c.DstBytes())
		for range last.Reps {
			b = append(b, last.Fill...)
		}
		for range c.Reps {
			b = append(b, c.Fill...)
		}
		kids[len(kids)-1] = fill(b)
	default:
		kids = append(kids, c)
	}
	return kids
}

// sameShape reports whether one repetition of a and b is structurally
// identical: same role, layouts, fill and descriptor, recursively.
func sameShape(a, b *Node) bool {
	if a.Role != b.Role || a.Desc != b.Desc || a.Align != b.Align {
		return false
	}
	if a.Src.Type != b.Src.Type || a.Src.Size != b.Src.Size ||
		a.Dst.Type != b.Dst.Type || a.Dst.Size != b.Dst.Size {
		return false
	}
	if !bytes.Equal(a.Fill, b.Fill) || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if a.Children[i].Reps != b.Children[i].Reps || !sameShape(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// Expand returns a copy of the tree rooted at n with every repetition
// unrolled into its own node. It is the inverse view of Compress and is
// meant for inspection and testing of small trees.
func Expand(n *Node) *Node {
	kids := expand(nil, n)
	if len(kids) == 1 {
		return kids[0]
	}
	g := group(1, kids...)
	g.Desc = n.Desc
	return g
}

func expand(out []*Node, n *Node) []*Node {
	for range n.Reps {
		c := *n
		c.Reps = 1
		if n.Role == RoleGroup {
			c.Children = nil
			for _, ch := range n.Children {
				c.Children = expand(c.Children, ch)
			}
		}
		out = append(out, &c)
	}
	return out
}
