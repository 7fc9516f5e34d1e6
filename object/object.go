package object

import (
	"go.uber.org/zap"

	"github.com/wippyai/pdscore/errors"
	"github.com/wippyai/pdscore/label"
	"github.com/wippyai/pdscore/profile"
	"github.com/wippyai/pdscore/transcoder"
)

// Object is a labelled data object: a label subtree it owns and the raw
// bytes that subtree describes. Operations never modify an Object; they
// return a new one.
type Object struct {
	Tree     *label.Tree
	Data     []byte // nil when not materialized
	Issues   []errors.Issue
	Length   int64 // declared byte length
	Root     label.NodeID
	Format   profile.Format   // interchange format of Data
	Platform profile.Platform // platform whose native types Data uses
}

// Import creates an Object from a copy of the subtree rooted at root. The
// object takes ownership of data, whose length must match the label. A nil
// data slice creates an object that is described but not materialized.
func Import(t *label.Tree, root label.NodeID, data []byte, platform profile.Platform) (*Object, error) {
	if t == nil || !t.Valid(root) {
		return nil, errors.InvalidArgument(errors.PhaseObject, "import: no label object")
	}
	lbl, _ := t.CopySubtree(root)
	o := &Object{
		Tree:     lbl,
		Root:     lbl.Root(),
		Data:     data,
		Format:   formatOf(lbl, lbl.Root()),
		Platform: platform,
	}

	n, err := o.layout()
	if err != nil {
		return nil, err
	}
	o.Length = n.SrcBytes()
	if data != nil && int64(len(data)) != o.Length {
		return nil, errors.StructuralMismatch(errors.PhaseObject, lbl.Path(o.Root), "object bytes", o.Length, int64(len(data)))
	}

	Logger().Debug("imported object",
		zap.String("object", lbl.Name(o.Root)),
		zap.Int64("bytes", o.Length),
		zap.Stringer("format", o.Format),
		zap.Stringer("platform", platform))
	return o, nil
}

// Release drops the label and the buffer. The object is unusable afterwards.
func (o *Object) Release() {
	if o == nil {
		return
	}
	o.Tree = nil
	o.Data = nil
	o.Issues = nil
	o.Root = label.Nil
	o.Length = 0
}

// Materialized reports whether the object holds its bytes.
func (o *Object) Materialized() bool {
	return o != nil && o.Data != nil
}

// Name returns the object's NAME keyword or class name.
func (o *Object) Name() string {
	return o.Tree.Name(o.Root)
}

func formatOf(t *label.Tree, id label.NodeID) profile.Format {
	if t.Symbol(id, "INTERCHANGE_FORMAT") == "ASCII" {
		return profile.ASCII
	}
	return profile.Binary
}

// identity returns the configuration that reproduces o's own representation.
func (o *Object) identity() (profile.Registry, profile.Config) {
	cfg := profile.DefaultConfig().
		WithPlatform(o.Platform).
		WithFormats(o.Format, o.Format)
	return cfg.Registry().Identity(), cfg
}

// layout builds o's decomposition tree without conversion.
func (o *Object) layout() (*transcoder.Node, error) {
	reg, cfg := o.identity()
	return transcoder.NewBuilder(reg, cfg).Build(o.Tree, o.Root, o.Format)
}

func (o *Object) check(op string) error {
	if o == nil || o.Tree == nil || !o.Tree.Valid(o.Root) {
		return errors.InvalidArgument(errors.PhaseObject, "%s: released or empty object", op)
	}
	if o.Data == nil {
		return errors.InvalidArgument(errors.PhaseObject, "%s: object %s is not materialized", op, o.Name())
	}
	return nil
}

// transcode builds the object rooted at root of t under reg and cfg, streams
// data through it and returns the result with its derived label.
func transcode(t *label.Tree, root label.NodeID, data []byte, src profile.Format,
	reg profile.Registry, cfg profile.Config,
) (*Object, error) {
	n, err := transcoder.NewBuilder(reg, cfg).Build(t, root, src)
	if err != nil {
		return nil, err
	}
	out, issues, err := transcoder.Run(transcoder.Compress(n), data)
	if err != nil {
		return nil, err
	}
	lbl, err := transcoder.DeriveLabel(t, root, n)
	if err != nil {
		return nil, err
	}
	return &Object{
		Tree:     lbl,
		Root:     lbl.Root(),
		Data:     out,
		Issues:   issues,
		Length:   int64(len(out)),
		Format:   cfg.Destination(src),
		Platform: cfg.Platform,
	}, nil
}

// table describes the row geometry of a table-like object.
type table struct {
	rows, rowBytes int64
	prefix, suffix int64
	columnMajor    bool
}

func (s table) stride() int64 {
	return s.rowBytes + s.prefix + s.suffix
}

func tableOf(t *label.Tree, id label.NodeID) (table, error) {
	if !t.Class(id).IsTableLike() {
		return table{}, errors.Unsupported(errors.PhaseObject, t.Path(id), t.ClassName(id)+" is not a table")
	}
	var s table
	var ok bool
	if s.rows, ok = t.Int(id, "ROWS"); !ok {
		return table{}, errors.MissingKeyword(errors.PhaseObject, t.Path(id), "ROWS")
	}
	if s.rowBytes, ok = t.Int(id, "ROW_BYTES"); !ok {
		return table{}, errors.MissingKeyword(errors.PhaseObject, t.Path(id), "ROW_BYTES")
	}
	s.prefix = t.IntOr(id, "ROW_PREFIX_BYTES", 0)
	s.suffix = t.IntOr(id, "ROW_SUFFIX_BYTES", 0)
	s.columnMajor = transcoder.ColumnMajor(t, id)
	return s, nil
}

func rowMajorTable(o *Object, op string) (table, error) {
	s, err := tableOf(o.Tree, o.Root)
	if err != nil {
		return s, err
	}
	if s.columnMajor {
		return s, errors.Unsupported(errors.PhaseObject, o.Tree.Path(o.Root), op+" requires a row-major table")
	}
	if want := s.rows * s.stride(); want != int64(len(o.Data)) {
		return s, errors.StructuralMismatch(errors.PhaseObject, o.Tree.Path(o.Root), "table bytes", want, int64(len(o.Data)))
	}
	return s, nil
}

// fields returns the COLUMN and CONTAINER children of a table.
func fields(t *label.Tree, id label.NodeID) []label.NodeID {
	var out []label.NodeID
	for _, c := range t.Children(id) {
		switch t.Class(c) {
		case label.ClassColumn, label.ClassContainer:
			out = append(out, c)
		}
	}
	return out
}
