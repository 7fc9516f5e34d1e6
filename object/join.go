package object

import (
	"go.uber.org/zap"

	"github.com/wippyai/pdscore/errors"
	"github.com/wippyai/pdscore/label"
	"github.com/wippyai/pdscore/transcoder"
)

// JoinRows appends the rows of b to a. Both tables must share their row
// width, column count and interchange format.
func JoinRows(a, b *Object) (*Object, error) {
	if err := a.check("join rows"); err != nil {
		return nil, err
	}
	if err := b.check("join rows"); err != nil {
		return nil, err
	}
	sa, err := rowMajorTable(a, "row join")
	if err != nil {
		return nil, err
	}
	sb, err := rowMajorTable(b, "row join")
	if err != nil {
		return nil, err
	}
	if sa.stride() != sb.stride() {
		return nil, errors.StructuralMismatch(errors.PhaseObject, b.Tree.Path(b.Root), "row bytes", sa.stride(), sb.stride())
	}
	ca, cb := int64(len(fields(a.Tree, a.Root))), int64(len(fields(b.Tree, b.Root)))
	if ca != cb {
		return nil, errors.StructuralMismatch(errors.PhaseObject, b.Tree.Path(b.Root), "columns", ca, cb)
	}
	if a.Format != b.Format {
		return nil, errors.Unsupported(errors.PhaseObject, b.Tree.Path(b.Root), "joining tables of different interchange formats")
	}

	data, err := transcoder.Alloc(int64(len(a.Data) + len(b.Data)))
	if err != nil {
		return nil, err
	}
	n := copy(data, a.Data)
	copy(data[n:], b.Data)

	lbl, _ := a.Tree.CopySubtree(a.Root)
	lbl.Set(lbl.Root(), "ROWS", label.Int(sa.rows+sb.rows))

	Logger().Debug("joined rows",
		zap.String("a", a.Name()), zap.String("b", b.Name()),
		zap.Int64("rows", sa.rows+sb.rows))
	return &Object{
		Tree:     lbl,
		Root:     lbl.Root(),
		Data:     data,
		Length:   int64(len(data)),
		Format:   a.Format,
		Platform: a.Platform,
	}, nil
}

// JoinColumns places the columns of b after those of a, row by row. Both
// tables must have the same number of rows and interchange format, and no
// row prefix or suffix bytes. Rows of a and b are fed to one stream in
// turn, so neither input is concatenated in memory.
func JoinColumns(a, b *Object) (*Object, error) {
	if err := a.check("join columns"); err != nil {
		return nil, err
	}
	if err := b.check("join columns"); err != nil {
		return nil, err
	}
	sa, err := rowMajorTable(a, "column join")
	if err != nil {
		return nil, err
	}
	sb, err := rowMajorTable(b, "column join")
	if err != nil {
		return nil, err
	}
	if sa.rows != sb.rows {
		return nil, errors.StructuralMismatch(errors.PhaseObject, b.Tree.Path(b.Root), "rows", sa.rows, sb.rows)
	}
	if a.Format != b.Format {
		return nil, errors.Unsupported(errors.PhaseObject, b.Tree.Path(b.Root), "joining tables of different interchange formats")
	}
	if sa.prefix+sa.suffix+sb.prefix+sb.suffix != 0 {
		return nil, errors.Unsupported(errors.PhaseObject, a.Tree.Path(a.Root), "column join of tables with row prefix or suffix bytes")
	}

	lbl, _ := a.Tree.CopySubtree(a.Root)
	root := lbl.Root()
	var columns int64
	for _, id := range fields(lbl, root) {
		if lbl.Class(id) == label.ClassColumn {
			columns++
		}
	}
	for _, id := range fields(b.Tree, b.Root) {
		c := lbl.Graft(b.Tree, id, root)
		start, ok := lbl.Int(c, "START_BYTE")
		if !ok {
			return nil, errors.MissingKeyword(errors.PhaseObject, b.Tree.Path(id), "START_BYTE")
		}
		lbl.Set(c, "START_BYTE", label.Int(start+sa.rowBytes))
		if lbl.Class(c) == label.ClassColumn {
			columns++
		}
	}
	lbl.Set(root, "ROW_BYTES", label.Int(sa.rowBytes+sb.rowBytes))
	lbl.Set(root, "COLUMNS", label.Int(columns))

	reg, cfg := a.identity()
	n, err := transcoder.NewBuilder(reg, cfg).Build(lbl, root, a.Format)
	if err != nil {
		return nil, err
	}
	dst, err := transcoder.Alloc(n.DstBytes())
	if err != nil {
		return nil, err
	}
	s, err := transcoder.NewStream(transcoder.Compress(n), dst)
	if err != nil {
		return nil, err
	}
	for r := int64(0); r < sa.rows; r++ {
		if _, err := s.Feed(a.Data[r*sa.rowBytes : (r+1)*sa.rowBytes]); err != nil {
			return nil, err
		}
		if _, err := s.Feed(b.Data[r*sb.rowBytes : (r+1)*sb.rowBytes]); err != nil {
			return nil, err
		}
	}
	if sa.rows == 0 {
		if _, err := s.Feed(nil); err != nil {
			return nil, err
		}
	}
	if s.State() != transcoder.StateComplete {
		return nil, errors.StructuralMismatch(errors.PhaseObject, lbl.Path(root), "joined bytes", n.SrcBytes(), s.Consumed())
	}

	out, err := transcoder.DeriveLabel(lbl, root, n)
	if err != nil {
		return nil, err
	}
	Logger().Debug("joined columns",
		zap.String("a", a.Name()), zap.String("b", b.Name()),
		zap.Int64("row_bytes", n.DstBytes()/max(sa.rows, 1)))
	return &Object{
		Tree:     out,
		Root:     out.Root(),
		Data:     dst,
		Issues:   s.Issues(),
		Length:   int64(len(dst)),
		Format:   a.Format,
		Platform: a.Platform,
	}, nil
}
