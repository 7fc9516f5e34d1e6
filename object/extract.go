package object

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/pdscore/errors"
	"github.com/wippyai/pdscore/label"
	"github.com/wippyai/pdscore/transcoder"
)

// extract runs a pruned copy of o's label over data without changing the
// representation.
func (o *Object) extract(t *label.Tree, root label.NodeID, data []byte) (*Object, error) {
	reg, cfg := o.identity()
	return transcode(t, root, data, o.Format, reg, cfg)
}

func isMember(c label.Class) bool {
	return c == label.ClassElement || c == label.ClassArray || c == label.ClassCollection
}

// ExtractSubObject returns the member target of a collection or array
// object, with every collection sibling on the way pruned. Collections
// left with a single member are replaced by that member.
func ExtractSubObject(o *Object, target label.NodeID) (*Object, error) {
	if err := o.check("extract sub-object"); err != nil {
		return nil, err
	}
	t := o.Tree
	if !t.Valid(target) || !isMember(t.Class(target)) {
		return nil, errors.InvalidArgument(errors.PhaseObject, "extract sub-object: node %d is not an element, array or collection", target)
	}
	if target == o.Root {
		return nil, errors.InvalidArgument(errors.PhaseObject, "extract sub-object: target is the whole object")
	}
	var chain []label.NodeID
	for a := target; a != o.Root; a = t.Parent(a) {
		if a == label.Nil {
			return nil, errors.NotFound(errors.PhaseObject, "sub-object", strings.Join(t.Path(target), "."))
		}
		chain = append(chain, a)
	}
	for _, a := range chain[1:] {
		if !isMember(t.Class(a)) {
			return nil, errors.Unsupported(errors.PhaseObject, t.Path(a), "sub-objects must nest in arrays and collections")
		}
	}
	if !isMember(t.Class(o.Root)) {
		return nil, errors.Unsupported(errors.PhaseObject, t.Path(o.Root), "sub-object extraction needs an array or collection")
	}

	// Pin every collection member to its source position so pruning its
	// siblings leaves gaps instead of shifting it.
	n, err := o.layout()
	if err != nil {
		return nil, err
	}
	starts, sizes := memberLayout(n)

	cp, ids := t.CopySubtree(o.Root)
	for a := target; a != o.Root; a = t.Parent(a) {
		p := t.Parent(a)
		if t.Class(p) != label.ClassCollection {
			continue
		}
		for _, sib := range t.Children(p) {
			if sib != a && isMember(t.Class(sib)) {
				if err := cp.Remove(ids[sib]); err != nil {
					return nil, err
				}
			}
		}
		cp.Set(ids[a], "START_BYTE", label.Int(starts[a]+1))
		cp.Set(ids[p], "BYTES", label.Int(sizes[p]))
	}

	out, err := o.extract(cp, cp.Root(), o.Data)
	if err != nil {
		return nil, err
	}
	out.Tree, out.Root = collapseCollections(out.Tree, out.Root)

	Logger().Debug("extracted sub-object",
		zap.String("object", o.Name()),
		zap.String("target", t.Name(target)),
		zap.Int64("bytes", out.Length))
	return out, nil
}

// memberLayout records the source offset within its parent and the source
// size of every labelled member in n.
func memberLayout(n *transcoder.Node) (map[label.NodeID]int64, map[label.NodeID]int64) {
	starts := make(map[label.NodeID]int64)
	sizes := make(map[label.NodeID]int64)
	var walk func(*transcoder.Node)
	walk = func(n *transcoder.Node) {
		if d := n.Desc; d != nil && isMember(d.Class) {
			if _, ok := starts[d.Label]; !ok {
				starts[d.Label] = n.Src.Offset
				sizes[d.Label] = n.Src.Size
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return starts, sizes
}

// collapseCollections replaces every collection holding exactly one child
// with that child.
func collapseCollections(t *label.Tree, root label.NodeID) (*label.Tree, label.NodeID) {
	for {
		id := t.Find(root, func(id label.NodeID) bool {
			return t.Class(id) == label.ClassCollection && t.NumChildren(id) == 1
		})
		if id == label.Nil {
			return t, root
		}
		child := t.Children(id)[0]
		if id == root {
			t, _ = t.CopySubtree(child)
			root = t.Root()
			t.Delete(root, "START_BYTE")
			continue
		}

		parent, idx := t.Parent(id), t.IndexOf(id)
		start, hasStart := t.Lookup(id, "START_BYTE")
		_ = t.Cut(child)
		_ = t.Paste(child, parent, idx)
		_ = t.Remove(id)
		if hasStart {
			t.Set(child, "START_BYTE", start)
		} else {
			t.Delete(child, "START_BYTE")
		}
	}
}

// ExtractSubTable returns rows [firstRow, firstRow+rowCount) of the named
// columns, in label order. An empty column list keeps every column and a
// zero rowCount runs to the last row.
func ExtractSubTable(o *Object, columns []string, firstRow, rowCount int64) (*Object, error) {
	if err := o.check("extract sub-table"); err != nil {
		return nil, err
	}
	t := o.Tree
	var keep []label.NodeID
	for _, name := range columns {
		id := t.FindChild(o.Root, name)
		if id == label.Nil || (t.Class(id) != label.ClassColumn && t.Class(id) != label.ClassContainer) {
			return nil, errors.NotFound(errors.PhaseObject, "column", name)
		}
		keep = append(keep, id)
	}
	return extractFields(o, keep, firstRow, rowCount)
}

// extractFields is ExtractSubTable over resolved field nodes. A nil keep
// list keeps every field.
func extractFields(o *Object, keep []label.NodeID, firstRow, rowCount int64) (*Object, error) {
	s, err := rowMajorTable(o, "sub-table extraction")
	if err != nil {
		return nil, err
	}
	if rowCount == 0 {
		rowCount = s.rows - firstRow
	}
	if firstRow < 0 || rowCount <= 0 || firstRow+rowCount > s.rows {
		return nil, errors.InvalidArgument(errors.PhaseObject,
			"extract sub-table: rows [%d, %d) outside table of %d rows", firstRow, firstRow+rowCount, s.rows)
	}

	t := o.Tree
	kept := make(map[label.NodeID]bool, len(keep))
	for _, id := range keep {
		kept[id] = true
	}

	cp, ids := t.CopySubtree(o.Root)
	if keep != nil {
		var count int64
		for _, id := range fields(t, o.Root) {
			switch {
			case !kept[id]:
				if err := cp.Remove(ids[id]); err != nil {
					return nil, err
				}
			case t.Class(id) == label.ClassColumn:
				count++
			}
		}
		if cp.Has(cp.Root(), "COLUMNS") {
			cp.Set(cp.Root(), "COLUMNS", label.Int(count))
		}
	}
	cp.Set(cp.Root(), "ROWS", label.Int(rowCount))

	data := o.Data[firstRow*s.stride() : (firstRow+rowCount)*s.stride()]
	out, err := o.extract(cp, cp.Root(), data)
	if err != nil {
		return nil, err
	}
	Logger().Debug("extracted sub-table",
		zap.String("object", o.Name()),
		zap.Int("columns", len(fields(out.Tree, out.Root))),
		zap.Int64("first_row", firstRow),
		zap.Int64("rows", rowCount))
	return out, nil
}

// DeleteColumn removes a column (or container) by extracting every other
// one. Unnamed fields are addressed by class; the first match goes.
func DeleteColumn(o *Object, name string) (*Object, error) {
	if err := o.check("delete column"); err != nil {
		return nil, err
	}
	t := o.Tree
	if _, err := tableOf(t, o.Root); err != nil {
		return nil, err
	}
	victim := t.FindChild(o.Root, name)
	all := fields(t, o.Root)
	keep := make([]label.NodeID, 0, len(all))
	for _, id := range all {
		if id != victim {
			keep = append(keep, id)
		}
	}
	if victim == label.Nil || len(keep) == len(all) {
		return nil, errors.NotFound(errors.PhaseObject, "column", name)
	}
	if len(keep) == 0 {
		return nil, errors.Unsupported(errors.PhaseObject, t.Path(victim), "cannot delete the only column")
	}
	return extractFields(o, keep, 0, 0)
}

// DeleteRow removes the zero-based row r of a row-major table.
func DeleteRow(o *Object, r int64) (*Object, error) {
	if err := o.check("delete row"); err != nil {
		return nil, err
	}
	s, err := rowMajorTable(o, "row deletion")
	if err != nil {
		return nil, err
	}
	if s.rows <= 1 {
		return nil, errors.Unsupported(errors.PhaseObject, o.Tree.Path(o.Root), "cannot delete the only row")
	}
	if r < 0 || r >= s.rows {
		return nil, errors.InvalidArgument(errors.PhaseObject, "delete row: row %d outside table of %d rows", r, s.rows)
	}

	stride := s.stride()
	data, err := transcoder.Alloc(int64(len(o.Data)) - stride)
	if err != nil {
		return nil, err
	}
	n := copy(data, o.Data[:r*stride])
	copy(data[n:], o.Data[(r+1)*stride:])

	lbl, _ := o.Tree.CopySubtree(o.Root)
	lbl.Set(lbl.Root(), "ROWS", label.Int(s.rows-1))

	Logger().Debug("deleted row", zap.String("object", o.Name()), zap.Int64("row", r))
	return &Object{
		Tree:     lbl,
		Root:     lbl.Root(),
		Data:     data,
		Length:   int64(len(data)),
		Format:   o.Format,
		Platform: o.Platform,
	}, nil
}

// Rect is a zero-based line and sample window of an image.
type Rect struct {
	Line, Sample   int64
	Lines, Samples int64
}

// ExtractImage copies a rectangular window out of an uncompressed
// single-band image without line prefixes or suffixes.
func ExtractImage(o *Object, r Rect) (*Object, error) {
	if err := o.check("extract image"); err != nil {
		return nil, err
	}
	t, id := o.Tree, o.Root
	if t.Class(id) != label.ClassImage {
		return nil, errors.Unsupported(errors.PhaseObject, t.Path(id), t.ClassName(id)+" is not an image")
	}
	if enc := t.Symbol(id, "ENCODING_TYPE"); enc != "" && enc != "N/A" {
		return nil, errors.Unsupported(errors.PhaseObject, t.Path(id), "partial extraction of a compressed image")
	}
	if t.IntOr(id, "BANDS", 1) != 1 {
		return nil, errors.Unsupported(errors.PhaseObject, t.Path(id), "partial extraction of a multi-band image")
	}
	if t.IntOr(id, "LINE_PREFIX_BYTES", 0) != 0 || t.IntOr(id, "LINE_SUFFIX_BYTES", 0) != 0 {
		return nil, errors.Unsupported(errors.PhaseObject, t.Path(id), "partial extraction of an image with line prefix or suffix bytes")
	}

	lines, ok := t.Int(id, "LINES")
	if !ok {
		return nil, errors.MissingKeyword(errors.PhaseObject, t.Path(id), "LINES")
	}
	samples, ok := t.Int(id, "LINE_SAMPLES")
	if !ok {
		return nil, errors.MissingKeyword(errors.PhaseObject, t.Path(id), "LINE_SAMPLES")
	}
	bits, ok := t.Int(id, "SAMPLE_BITS")
	if !ok {
		return nil, errors.MissingKeyword(errors.PhaseObject, t.Path(id), "SAMPLE_BITS")
	}
	if bits <= 0 || bits%8 != 0 {
		return nil, errors.Unsupported(errors.PhaseObject, t.Path(id), "samples must be whole bytes")
	}
	sb := bits / 8
	if want := lines * samples * sb; want != int64(len(o.Data)) {
		return nil, errors.StructuralMismatch(errors.PhaseObject, t.Path(id), "image bytes", want, int64(len(o.Data)))
	}
	if r.Line < 0 || r.Sample < 0 || r.Lines <= 0 || r.Samples <= 0 ||
		r.Line+r.Lines > lines || r.Sample+r.Samples > samples {
		return nil, errors.InvalidArgument(errors.PhaseObject,
			"extract image: window %+v outside %d lines x %d samples", r, lines, samples)
	}

	width := r.Samples * sb
	data, err := transcoder.Alloc(r.Lines * width)
	if err != nil {
		return nil, err
	}
	for i := int64(0); i < r.Lines; i++ {
		from := ((r.Line+i)*samples + r.Sample) * sb
		copy(data[i*width:(i+1)*width], o.Data[from:from+width])
	}

	lbl, _ := t.CopySubtree(id)
	lbl.Set(lbl.Root(), "LINES", label.Int(r.Lines))
	lbl.Set(lbl.Root(), "LINE_SAMPLES", label.Int(r.Samples))

	Logger().Debug("extracted image window",
		zap.String("object", o.Name()),
		zap.Int64("line", r.Line), zap.Int64("sample", r.Sample),
		zap.Int64("lines", r.Lines), zap.Int64("samples", r.Samples))
	return &Object{
		Tree:     lbl,
		Root:     lbl.Root(),
		Data:     data,
		Length:   int64(len(data)),
		Format:   o.Format,
		Platform: o.Platform,
	}, nil
}
