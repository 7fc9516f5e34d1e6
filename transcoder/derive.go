package transcoder

import (
	"go.uber.org/zap"

	"github.com/wippyai/pdscore/errors"
	"github.com/wippyai/pdscore/label"
	"github.com/wippyai/pdscore/profile"
)

// DeriveLabel returns a copy of the object rooted at root rewritten to
// describe the destination of n: data types, widths, offsets and record
// sizes follow the built layout, and spare descriptors are removed, as are
// bit columns whose column is no longer a binary bit string or integer of
// the same width. n must be the tree built from the same label, before
// compression.
func DeriveLabel(t *label.Tree, root label.NodeID, n *Node) (*label.Tree, error) {
	if t == nil || !t.Valid(root) || n == nil {
		return nil, errors.InvalidArgument(errors.PhaseBuild, "derive label: missing label or tree")
	}

	var descs []*Descriptor
	seen := make(map[label.NodeID]bool)
	var collect func(*Node)
	collect = func(n *Node) {
		if d := n.Desc; d != nil && !seen[d.Label] {
			seen[d.Label] = true
			descs = append(descs, d)
		}
		for _, c := range n.Children {
			collect(c)
		}
	}
	collect(n)

	out, ids := t.CopySubtree(root)
	var spares []label.NodeID
	for _, d := range descs {
		id, ok := ids[d.Label]
		if !ok {
			continue
		}
		if d.Type.Enc == profile.EncSpare {
			spares = append(spares, id)
			continue
		}
		rewrite(out, id, d)
		if len(d.Bits) > 0 && !keepsBits(d) {
			for _, f := range d.Bits {
				if err := out.Remove(ids[f.Label]); err != nil {
					return nil, err
				}
			}
			Logger().Warn("dropped bit columns",
				zap.String("column", d.Name),
				zap.Int("bit_columns", len(d.Bits)),
				zap.String("data_type", d.Type.Name),
				zap.Stringer("format", d.Format))
		}
	}

	for _, id := range spares {
		p := out.Parent(id)
		if out.Class(id) == label.ClassColumn && p != label.Nil {
			if cols, ok := out.Int(p, "COLUMNS"); ok {
				out.Set(p, "COLUMNS", label.Int(cols-1))
			}
		}
		if id == out.Root() {
			continue
		}
		if err := out.Remove(id); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// keepsBits reports whether the bit columns of d still describe its
// destination items: binary bit strings or integers of the source width.
func keepsBits(d *Descriptor) bool {
	if d.Format != profile.Binary || !(d.Type.Enc.IsBits() || d.Type.Enc.IsInteger()) {
		return false
	}
	for _, f := range d.Bits {
		if f.Within != d.ItemBytes*8 {
			return false
		}
	}
	return true
}

func setIfPresent(t *label.Tree, id label.NodeID, kw string, v int64) {
	if t.Has(id, kw) {
		t.Set(id, kw, label.Int(v))
	}
}

func rewrite(t *label.Tree, id label.NodeID, d *Descriptor) {
	switch cl := t.Class(id); {
	case cl.IsTableLike():
		t.Set(id, "ROW_BYTES", label.Int(d.Size))
		t.Delete(id, "ROW_PREFIX_BYTES")
		t.Delete(id, "ROW_SUFFIX_BYTES")
		t.Set(id, "INTERCHANGE_FORMAT", label.Text(d.Format.String()))
	case cl == label.ClassColumn:
		t.Set(id, "START_BYTE", label.Int(d.Offset+1))
		t.Set(id, "DATA_TYPE", label.Text(d.Type.Name))
		t.Set(id, "BYTES", label.Int(d.Size))
		if t.IntOr(id, "ITEMS", 1) > 1 || t.Has(id, "ITEM_BYTES") {
			t.Set(id, "ITEM_BYTES", label.Int(d.ItemBytes))
		}
		if t.IntOr(id, "ITEMS", 1) > 1 || t.Has(id, "ITEM_OFFSET") {
			t.Set(id, "ITEM_OFFSET", label.Int(d.ItemOffset))
		}
	case cl == label.ClassContainer:
		t.Set(id, "START_BYTE", label.Int(d.Offset+1))
		t.Set(id, "BYTES", label.Int(d.Size))
	case cl == label.ClassElement:
		t.Set(id, "DATA_TYPE", label.Text(d.Type.Name))
		t.Set(id, "BYTES", label.Int(d.Size))
		setIfPresent(t, id, "START_BYTE", d.Offset+1)
	case cl == label.ClassCollection:
		setIfPresent(t, id, "BYTES", d.Size)
		setIfPresent(t, id, "START_BYTE", d.Offset+1)
	case cl == label.ClassArray:
		setIfPresent(t, id, "START_BYTE", d.Offset+1)
	case cl == label.ClassImage:
		t.Set(id, "SAMPLE_TYPE", label.Text(d.Type.Name))
		t.Set(id, "SAMPLE_BITS", label.Int(d.ItemBytes*8))
		t.Delete(id, "LINE_PREFIX_BYTES")
		t.Delete(id, "LINE_SUFFIX_BYTES")
	case cl == label.ClassHistogram:
		t.Set(id, "DATA_TYPE", label.Text(d.Type.Name))
		t.Set(id, "ITEM_BYTES", label.Int(d.ItemBytes))
		setIfPresent(t, id, "BYTES", d.Size)
	case cl == label.ClassQube:
		t.Set(id, "CORE_ITEM_TYPE", label.Text(d.Type.Name))
		t.Set(id, "CORE_ITEM_BYTES", label.Int(d.ItemBytes))
	}
}
