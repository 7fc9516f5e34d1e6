package object

import (
	"go.uber.org/zap"

	"github.com/wippyai/pdscore/errors"
	"github.com/wippyai/pdscore/label"
	"github.com/wippyai/pdscore/profile"
	"github.com/wippyai/pdscore/transcoder"
)

// TransposeTable switches a binary table between row-major and
// column-major storage. Column-major storage holds each field, and each
// gap between fields, for all rows before the next one.
func TransposeTable(o *Object) (*Object, error) {
	if err := o.check("transpose"); err != nil {
		return nil, err
	}
	s, err := tableOf(o.Tree, o.Root)
	if err != nil {
		return nil, err
	}
	if o.Format != profile.Binary || s.prefix+s.suffix != 0 {
		return nil, errors.Unsupported(errors.PhaseObject, o.Tree.Path(o.Root),
			"transposition needs a binary table without row prefix or suffix bytes")
	}
	if want := s.rows * s.rowBytes; want != int64(len(o.Data)) {
		return nil, errors.StructuralMismatch(errors.PhaseObject, o.Tree.Path(o.Root), "table bytes", want, int64(len(o.Data)))
	}

	lbl, _ := o.Tree.CopySubtree(o.Root)
	root := lbl.Root()
	lbl.Set(root, "TABLE_STORAGE_TYPE", label.Text("ROW_MAJOR"))
	reg, cfg := o.identity()
	n, err := transcoder.NewBuilder(reg, cfg).Build(lbl, root, o.Format)
	if err != nil {
		return nil, err
	}

	data, err := transcoder.Alloc(int64(len(o.Data)))
	if err != nil {
		return nil, err
	}
	var off, base int64 // field offset in a row; field start in column-major data
	for _, f := range n.Children {
		size := f.SrcBytes()
		if size == 0 {
			continue
		}
		for r := range s.rows {
			rowAt := r*s.rowBytes + off
			colAt := base + r*size
			if s.columnMajor {
				copy(data[rowAt:rowAt+size], o.Data[colAt:colAt+size])
			} else {
				copy(data[colAt:colAt+size], o.Data[rowAt:rowAt+size])
			}
		}
		off += size
		base += size * s.rows
	}

	storage := "COLUMN_MAJOR"
	if s.columnMajor {
		storage = "ROW_MAJOR"
	}
	lbl.Set(root, "TABLE_STORAGE_TYPE", label.Text(storage))

	Logger().Debug("transposed table",
		zap.String("object", o.Name()),
		zap.String("storage", storage),
		zap.Int64("rows", s.rows))
	return &Object{
		Tree:     lbl,
		Root:     root,
		Data:     data,
		Length:   int64(len(data)),
		Format:   o.Format,
		Platform: o.Platform,
	}, nil
}
