package transcoder

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/pdscore/errors"
	"github.com/wippyai/pdscore/label"
	"github.com/wippyai/pdscore/profile"
	"github.com/wippyai/pdscore/transcoder/internal/codec"
	"github.com/wippyai/pdscore/transcoder/internal/layout"
)

var (
	asciiSep  = []byte(",")
	asciiTerm = []byte("\r\n")
)

// Builder derives decomposition trees from labels. A Builder is a value
// configuration and is safe for concurrent use.
type Builder struct {
	widths map[label.NodeID]int
	reg    profile.Registry
	cfg    profile.Config
}

// NewBuilder returns a builder resolving types with reg and laying out
// destinations according to cfg.
func NewBuilder(reg profile.Registry, cfg profile.Config) *Builder {
	return &Builder{reg: reg, cfg: cfg}
}

// WithWidth returns a copy of b that writes the ASCII field of descriptor id
// with the given width. Widths below the type's minimum, and zero, keep the
// registry default.
func (b *Builder) WithWidth(id label.NodeID, width int) *Builder {
	out := *b
	out.widths = make(map[label.NodeID]int, len(b.widths)+1)
	for k, v := range b.widths {
		out.widths[k] = v
	}
	out.widths[id] = width
	return &out
}

// Config returns the builder's conversion profile.
func (b *Builder) Config() profile.Config {
	return b.cfg
}

// Build walks the object rooted at root, whose data is in interchange
// format src, and returns its decomposition tree.
func (b *Builder) Build(t *label.Tree, root label.NodeID, src profile.Format) (*Node, error) {
	if t == nil || !t.Valid(root) {
		return nil, errors.InvalidArgument(errors.PhaseBuild, "build: no label object")
	}

	dst := b.cfg.Destination(src)
	policy := b.cfg.Align
	if dst == profile.ASCII {
		policy = profile.AlignNone
	}
	c := &build{
		Builder: b,
		t:       t,
		src:     src,
		dst:     dst,
		calc:    layout.NewCalculator(policy),
	}

	n, err := c.object(root)
	if err != nil {
		return nil, err
	}

	Logger().Debug("built decomposition tree",
		zap.String("object", t.Name(root)),
		zap.Int("nodes", n.NodeCount()),
		zap.Int64("src_bytes", n.SrcBytes()),
		zap.Int64("dst_bytes", n.DstBytes()),
		zap.Stringer("format", dst))
	return n, nil
}

type build struct {
	*Builder
	t        *label.Tree
	calc     *layout.Calculator
	src, dst profile.Format
}

func (c *build) ascii() bool {
	return c.dst == profile.ASCII
}

func (c *build) sep() []byte {
	if c.ascii() {
		return asciiSep
	}
	return nil
}

func (c *build) desc(id label.NodeID) *Descriptor {
	return &Descriptor{
		Label:  id,
		Class:  c.t.Class(id),
		Name:   strings.Join(c.t.Path(id), "."),
		Format: c.dst,
	}
}

// need returns a required non-negative integer keyword.
func (c *build) need(id label.NodeID, kw string) (int64, error) {
	v, ok := c.t.Lookup(id, kw)
	if !ok {
		return 0, errors.MissingKeyword(errors.PhaseBuild, c.t.Path(id), kw)
	}
	n, ok := v.AsInt()
	if !ok || n < 0 {
		return 0, errors.New(errors.PhaseBuild, errors.KindInvalidArgument).
			Path(c.t.Path(id)...).
			Keyword(kw).
			Value(v.String()).
			Detail("expected a non-negative integer").
			Build()
	}
	return n, nil
}

// optional returns a non-negative integer keyword, or def when absent.
func (c *build) optional(id label.NodeID, kw string, def int64) (int64, error) {
	if !c.t.Has(id, kw) {
		return def, nil
	}
	return c.need(id, kw)
}

func (c *build) needType(id label.NodeID, kw string) (string, error) {
	v, ok := c.t.Lookup(id, kw)
	if !ok || v.Symbol() == "" {
		return "", errors.MissingKeyword(errors.PhaseBuild, c.t.Path(id), kw)
	}
	return v.Symbol(), nil
}

func (c *build) mismatch(id label.NodeID, what string, declared, actual int64) error {
	return errors.StructuralMismatch(errors.PhaseBuild, c.t.Path(id), what, declared, actual)
}

func (c *build) product(id label.NodeID, kw string) (int64, error) {
	v, ok := c.t.Lookup(id, kw)
	if !ok {
		return 0, errors.MissingKeyword(errors.PhaseBuild, c.t.Path(id), kw)
	}
	dims, ok := v.AsInts()
	if !ok || len(dims) == 0 {
		return 0, errors.New(errors.PhaseBuild, errors.KindInvalidArgument).
			Path(c.t.Path(id)...).
			Keyword(kw).
			Detail("expected a sequence of integers").
			Build()
	}
	if axes, ok := c.t.Int(id, "AXES"); ok && axes != int64(len(dims)) {
		return 0, c.mismatch(id, "AXES", axes, int64(len(dims)))
	}
	total := int64(1)
	for _, d := range dims {
		if total, ok = layout.SafeMul(total, d); !ok {
			return 0, errors.InvalidArgument(errors.PhaseBuild, "%s overflows", kw)
		}
	}
	return total, nil
}

func withPath(err error, path []string) error {
	if e, ok := err.(*errors.Error); ok && e.Path == nil {
		e.Path = path
	}
	return err
}

func (c *build) object(id label.NodeID) (*Node, error) {
	switch cl := c.t.Class(id); {
	case cl.IsTableLike():
		return c.table(id)
	case cl == label.ClassImage:
		return c.image(id)
	case cl == label.ClassHistogram:
		return c.histogram(id)
	case cl == label.ClassQube:
		return c.qube(id)
	case cl == label.ClassArray, cl == label.ClassCollection, cl == label.ClassElement:
		return c.member(id)
	}
	return nil, errors.Unsupported(errors.PhaseBuild, c.t.Path(id),
		"no data layout for object class "+c.t.ClassName(id))
}

// value builds a leaf converting one value of typeName and width.
func (c *build) value(id label.NodeID, typeName string, width int64, d *Descriptor) (*Node, error) {
	entry, err := c.reg.LookupIn(typeName, int(width), c.src)
	if err != nil {
		return nil, withPath(err, c.t.Path(id))
	}

	src := entry.Source
	n := &Node{
		Role:  RoleValue,
		Src:   Layout{Type: src, Size: width},
		Reps:  1,
		Align: 1,
		Desc:  d,
	}
	if src.Enc == profile.EncSpare {
		n.Role = RoleSpare
		d.Type = profile.Canonical(profile.EncSpare, 0)
		return n, nil
	}

	dst := entry.Native
	if c.ascii() {
		dst = entry.ASCII
		if w := c.widths[id]; w > 0 && w >= entry.MinASCII {
			dst.Width = w
		}
	}
	n.Dst = Layout{Type: dst, Size: int64(dst.Width)}
	n.Align = c.calc.Item(dst).Align
	d.Type = dst

	n.conv, err = codec.New(src, dst, codec.Options{CheckASCII: c.cfg.CheckASCIIWrites})
	if err != nil {
		return nil, withPath(err, c.t.Path(id))
	}
	return n, nil
}

func spare(size int64) *Node {
	return &Node{Role: RoleSpare, Src: Layout{Size: size}, Reps: 1, Align: 1}
}

func fill(b []byte) *Node {
	return &Node{Role: RoleFill, Dst: Layout{Size: int64(len(b))}, Fill: b, Reps: 1, Align: 1}
}

func group(reps int64, kids ...*Node) *Node {
	g := &Node{Role: RoleGroup, Reps: reps, Align: 1, Children: kids}
	for _, k := range kids {
		g.Src.Size += k.SrcBytes()
		g.Dst.Size += k.DstBytes()
		if k.Align > g.Align {
			g.Align = k.Align
		}
	}
	return g
}

// repeat lays out reps copies of unit. Between copies it skips gap source
// bytes and writes sep; neither follows the last copy. unit must have a
// single repetition.
func repeat(unit *Node, reps, gap int64, sep []byte) *Node {
	if reps <= 1 || (gap == 0 && sep == nil) {
		unit.Reps = reps
		return unit
	}
	head := []*Node{unit}
	if gap > 0 {
		head = append(head, spare(gap))
	}
	if sep != nil {
		head = append(head, fill(sep))
	}
	out := group(1, group(reps-1, head...), unit)
	out.Desc = unit.Desc
	return out
}

type member struct {
	node  *Node
	id    label.NodeID
	start int64 // source offset in the record; -1 follows the previous member
}

// record lays out members inside one record of declared source size
// (size < 0 takes the sum of the members). Source gaps become spares;
// destination padding and ASCII separators become fills.
func (c *build) record(owner label.NodeID, members []member, size int64, term []byte) (*Node, error) {
	cursor := int64(0)
	for i := range members {
		if members[i].start < 0 {
			members[i].start = cursor
		}
		cursor = members[i].start + members[i].node.SrcBytes()
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].start < members[j].start })

	g := &Node{Role: RoleGroup, Reps: 1, Align: 1}
	rec := c.calc.Record()
	cursor = 0
	first := true
	for _, m := range members {
		if m.start < cursor {
			return nil, errors.New(errors.PhaseBuild, errors.KindStructuralMismatch).
				Path(c.t.Path(m.id)...).
				Keyword("START_BYTE").
				Value(m.start+1).
				Detail("field overlaps the previous field ending at byte %d", cursor).
				Build()
		}
		if m.start > cursor {
			g.Children = append(g.Children, spare(m.start-cursor))
		}

		n := m.node
		n.Src.Offset = m.start
		if n.DstBytes() > 0 {
			if c.ascii() && !first {
				rec.Field(layout.Info{Size: int64(len(asciiSep)), Align: 1})
				g.Children = append(g.Children, fill(asciiSep))
			}
			off, pad := rec.Field(layout.Info{Size: n.DstBytes(), Align: n.Align})
			if pad > 0 {
				g.Children = append(g.Children, fill(make([]byte, pad)))
			}
			n.Dst.Offset = off
			if n.Desc != nil {
				n.Desc.Offset = off
			}
			first = false
		}
		g.Children = append(g.Children, n)
		cursor = m.start + n.SrcBytes()
	}

	if size < 0 {
		size = cursor
	}
	if cursor > size {
		return nil, c.mismatch(owner, "record bytes", size, cursor)
	}
	if cursor < size {
		g.Children = append(g.Children, spare(size-cursor))
	}
	if term != nil {
		rec.Field(layout.Info{Size: int64(len(term)), Align: 1})
		g.Children = append(g.Children, fill(term))
	}
	info, tail := rec.Close()
	if tail > 0 {
		g.Children = append(g.Children, fill(make([]byte, tail)))
	}

	g.Src.Size = size
	g.Dst.Size = info.Size
	g.Align = info.Align
	return g, nil
}

// fieldMembers builds the COLUMN and CONTAINER children of a table row or
// container. START_BYTE is required and 1-based.
func (c *build) fieldMembers(id label.NodeID) ([]member, int64, error) {
	var members []member
	var columns int64
	for _, ch := range c.t.Children(id) {
		var n *Node
		var err error
		switch c.t.Class(ch) {
		case label.ClassColumn:
			columns++
			n, err = c.column(ch)
		case label.ClassContainer:
			n, err = c.container(ch)
		case label.ClassBitColumn:
			return nil, 0, errors.Unsupported(errors.PhaseBuild, c.t.Path(ch), "bit column outside a column")
		default:
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		sb, err := c.need(ch, "START_BYTE")
		if err != nil {
			return nil, 0, err
		}
		if sb < 1 {
			return nil, 0, errors.New(errors.PhaseBuild, errors.KindInvalidArgument).
				Path(c.t.Path(ch)...).
				Keyword("START_BYTE").
				Value(sb).
				Detail("START_BYTE is 1-based").
				Build()
		}
		members = append(members, member{node: n, id: ch, start: sb - 1})
	}
	if declared, ok := c.t.Int(id, "COLUMNS"); ok && declared != columns {
		return nil, 0, c.mismatch(id, "COLUMNS", declared, columns)
	}
	return members, columns, nil
}

// ColumnMajor reports whether the table id stores each column for every
// row before the next column (TABLE_STORAGE_TYPE = COLUMN_MAJOR).
func ColumnMajor(t *label.Tree, id label.NodeID) bool {
	return strings.Contains(t.Symbol(id, "TABLE_STORAGE_TYPE"), "COLUMN")
}

func (c *build) table(id label.NodeID) (*Node, error) {
	rows, err := c.need(id, "ROWS")
	if err != nil {
		return nil, err
	}
	rowBytes, err := c.need(id, "ROW_BYTES")
	if err != nil {
		return nil, err
	}
	prefix, err := c.optional(id, "ROW_PREFIX_BYTES", 0)
	if err != nil {
		return nil, err
	}
	suffix, err := c.optional(id, "ROW_SUFFIX_BYTES", 0)
	if err != nil {
		return nil, err
	}
	colMajor := ColumnMajor(c.t, id)
	if colMajor && (c.ascii() || prefix > 0 || suffix > 0) {
		return nil, errors.Unsupported(errors.PhaseBuild, c.t.Path(id),
			"column-major tables support binary output without row prefix or suffix only")
	}
	if _, ok := layout.SafeMul(rows, rowBytes+prefix+suffix); !ok {
		return nil, errors.InvalidArgument(errors.PhaseBuild, "table %s size overflows", c.t.Name(id))
	}

	members, _, err := c.fieldMembers(id)
	if err != nil {
		return nil, err
	}
	var term []byte
	if c.ascii() {
		term = asciiTerm
	}
	row, err := c.record(id, members, rowBytes, term)
	if err != nil {
		return nil, err
	}

	d := c.desc(id)
	d.Size = row.Dst.Size

	if colMajor {
		kids := make([]*Node, len(row.Children))
		for i, ch := range row.Children {
			kids[i] = group(rows, ch)
		}
		t := group(1, kids...)
		t.Align = row.Align
		t.Desc = d
		return t, nil
	}

	if prefix > 0 || suffix > 0 {
		kids := row.Children
		if prefix > 0 {
			kids = append([]*Node{spare(prefix)}, kids...)
		}
		if suffix > 0 {
			kids = append(kids, spare(suffix))
		}
		row.Children = kids
		row.Src.Size += prefix + suffix
	}
	row.Reps = rows
	row.Desc = d
	return row, nil
}

func (c *build) column(id label.NodeID) (*Node, error) {
	typ, err := c.needType(id, "DATA_TYPE")
	if err != nil {
		return nil, err
	}
	bytes, err := c.need(id, "BYTES")
	if err != nil {
		return nil, err
	}
	items, err := c.optional(id, "ITEMS", 1)
	if err != nil {
		return nil, err
	}
	if items < 1 {
		return nil, errors.New(errors.PhaseBuild, errors.KindInvalidArgument).
			Path(c.t.Path(id)...).Keyword("ITEMS").Value(items).
			Detail("a column holds at least one item").Build()
	}
	if !c.t.Has(id, "ITEM_BYTES") && bytes%items != 0 {
		return nil, c.mismatch(id, "BYTES per item", bytes, bytes/items*items)
	}
	itemBytes, err := c.optional(id, "ITEM_BYTES", bytes/items)
	if err != nil {
		return nil, err
	}
	itemOffset, err := c.optional(id, "ITEM_OFFSET", itemBytes)
	if err != nil {
		return nil, err
	}
	if itemOffset < itemBytes {
		return nil, c.mismatch(id, "ITEM_OFFSET", itemOffset, itemBytes)
	}
	if derived := (items-1)*itemOffset + itemBytes; derived != bytes {
		return nil, c.mismatch(id, "BYTES", bytes, derived)
	}

	d := c.desc(id)
	leaf, err := c.value(id, typ, itemBytes, d)
	if err != nil {
		return nil, err
	}
	sep := c.sep()
	if leaf.Role == RoleSpare {
		sep = nil
	}
	if d.Bits, err = c.bitFields(id, leaf.Src.Type, itemBytes); err != nil {
		return nil, err
	}
	n := repeat(leaf, items, itemOffset-itemBytes, sep)
	d.ItemBytes = leaf.Dst.Size
	d.ItemOffset = leaf.Dst.Size + int64(len(sep))
	d.Size = n.DstBytes()
	return n, nil
}

// bitFields checks the BIT_COLUMN children of a column of type src. They
// describe bits of a binary bit string or integer.
func (c *build) bitFields(id label.NodeID, src profile.DataType, itemBytes int64) ([]BitField, error) {
	if src.Enc == profile.EncSpare {
		return nil, nil
	}
	var out []BitField
	for _, ch := range c.t.Children(id) {
		if c.t.Class(ch) != label.ClassBitColumn {
			continue
		}
		if c.src == profile.ASCII || !(src.Enc.IsBits() || src.Enc.IsInteger()) {
			return nil, errors.Unsupported(errors.PhaseBuild, c.t.Path(ch),
				"bit columns need a binary bit string or integer column, not "+src.Name)
		}
		start, err := c.need(ch, "START_BIT")
		if err != nil {
			return nil, err
		}
		bits, err := c.need(ch, "BITS")
		if err != nil {
			return nil, err
		}
		if start < 1 || bits < 1 {
			return nil, errors.New(errors.PhaseBuild, errors.KindInvalidArgument).
				Path(c.t.Path(ch)...).
				Value(fmt.Sprintf("START_BIT %d BITS %d", start, bits)).
				Detail("START_BIT is 1-based and BITS is positive").
				Build()
		}
		within := itemBytes * 8
		if end := start - 1 + bits; end > within {
			return nil, c.mismatch(ch, "bit column end", end, within)
		}
		out = append(out, BitField{Label: ch, StartBit: start, Bits: bits, Within: within})
	}
	return out, nil
}

func (c *build) container(id label.NodeID) (*Node, error) {
	bytes, err := c.need(id, "BYTES")
	if err != nil {
		return nil, err
	}
	reps, err := c.optional(id, "REPETITIONS", 1)
	if err != nil {
		return nil, err
	}
	members, _, err := c.fieldMembers(id)
	if err != nil {
		return nil, err
	}
	unit, err := c.record(id, members, bytes, nil)
	if err != nil {
		return nil, err
	}
	d := c.desc(id)
	d.Size = unit.Dst.Size
	unit.Desc = d
	return repeat(unit, reps, 0, c.sep()), nil
}
