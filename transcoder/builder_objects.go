package transcoder

import (
	"strings"

	"github.com/wippyai/pdscore/errors"
	"github.com/wippyai/pdscore/label"
)

// member builds an ELEMENT, ARRAY or COLLECTION.
func (c *build) member(id label.NodeID) (*Node, error) {
	switch c.t.Class(id) {
	case label.ClassElement:
		return c.element(id)
	case label.ClassArray:
		return c.array(id)
	case label.ClassCollection:
		return c.collection(id)
	}
	return nil, errors.Unsupported(errors.PhaseBuild, c.t.Path(id),
		c.t.ClassName(id)+" cannot be a member of an array or collection")
}

func (c *build) element(id label.NodeID) (*Node, error) {
	typ, err := c.needType(id, "DATA_TYPE")
	if err != nil {
		return nil, err
	}
	bytes, err := c.need(id, "BYTES")
	if err != nil {
		return nil, err
	}
	d := c.desc(id)
	n, err := c.value(id, typ, bytes, d)
	if err != nil {
		return nil, err
	}
	d.Size = n.Dst.Size
	return n, nil
}

func (c *build) collection(id label.NodeID) (*Node, error) {
	var members []member
	for _, ch := range c.t.Children(id) {
		switch c.t.Class(ch) {
		case label.ClassElement, label.ClassArray, label.ClassCollection:
		default:
			continue
		}
		n, err := c.member(ch)
		if err != nil {
			return nil, err
		}
		start := int64(-1)
		if c.t.Has(ch, "START_BYTE") {
			sb, err := c.need(ch, "START_BYTE")
			if err != nil {
				return nil, err
			}
			if sb > 0 {
				start = sb - 1
			}
		}
		members = append(members, member{node: n, id: ch, start: start})
	}
	if len(members) == 0 {
		return nil, errors.Unsupported(errors.PhaseBuild, c.t.Path(id), "collection has no members")
	}

	size, err := c.optional(id, "BYTES", -1)
	if err != nil {
		return nil, err
	}
	g, err := c.record(id, members, size, nil)
	if err != nil {
		return nil, err
	}
	d := c.desc(id)
	d.Size = g.Dst.Size
	g.Desc = d
	return g, nil
}

func (c *build) array(id label.NodeID) (*Node, error) {
	items, err := c.product(id, "AXIS_ITEMS")
	if err != nil {
		return nil, err
	}
	var kids []label.NodeID
	for _, ch := range c.t.Children(id) {
		switch c.t.Class(ch) {
		case label.ClassElement, label.ClassArray, label.ClassCollection:
			kids = append(kids, ch)
		}
	}
	if len(kids) != 1 {
		return nil, c.mismatch(id, "array members", 1, int64(len(kids)))
	}
	unit, err := c.member(kids[0])
	if err != nil {
		return nil, err
	}
	body := repeat(unit, items, 0, c.sep())

	d := c.desc(id)
	d.Size = body.DstBytes()
	g := group(1, body)
	g.Desc = d
	return g, nil
}

// Band storage orders of a multi-band image.
const (
	bandSequential    = "BAND_SEQUENTIAL"
	lineInterleaved   = "LINE_INTERLEAVED"
	sampleInterleaved = "SAMPLE_INTERLEAVED"
)

func (c *build) image(id label.NodeID) (*Node, error) {
	if enc := c.t.Symbol(id, "ENCODING_TYPE"); enc != "" && enc != "N/A" {
		return nil, errors.Unsupported(errors.PhaseBuild, c.t.Path(id), "compressed image ("+enc+")")
	}
	lines, err := c.need(id, "LINES")
	if err != nil {
		return nil, err
	}
	samples, err := c.need(id, "LINE_SAMPLES")
	if err != nil {
		return nil, err
	}
	typ, err := c.needType(id, "SAMPLE_TYPE")
	if err != nil {
		return nil, err
	}
	bits, err := c.need(id, "SAMPLE_BITS")
	if err != nil {
		return nil, err
	}
	if bits == 0 || bits%8 != 0 {
		return nil, errors.New(errors.PhaseBuild, errors.KindUnsupported).
			Path(c.t.Path(id)...).Keyword("SAMPLE_BITS").Value(bits).
			Detail("samples must be whole bytes").Build()
	}
	bands, err := c.optional(id, "BANDS", 1)
	if err != nil {
		return nil, err
	}
	prefix, err := c.optional(id, "LINE_PREFIX_BYTES", 0)
	if err != nil {
		return nil, err
	}
	suffix, err := c.optional(id, "LINE_SUFFIX_BYTES", 0)
	if err != nil {
		return nil, err
	}

	perLine, lineReps := samples, lines
	storage := strings.ToUpper(c.t.Symbol(id, "BAND_STORAGE_TYPE"))
	switch storage {
	case "", bandSequential:
		lineReps = lines * bands
	case lineInterleaved, sampleInterleaved:
		perLine = samples * bands
	default:
		return nil, errors.Unsupported(errors.PhaseBuild, c.t.Path(id), "band storage "+storage)
	}

	d := c.desc(id)
	leaf, err := c.value(id, typ, bits/8, d)
	if err != nil {
		return nil, err
	}
	var kids []*Node
	if prefix > 0 {
		kids = append(kids, spare(prefix))
	}
	kids = append(kids, repeat(leaf, perLine, 0, c.sep()))
	if suffix > 0 {
		kids = append(kids, spare(suffix))
	}
	if c.ascii() {
		kids = append(kids, fill(asciiTerm))
	}
	line := group(lineReps, kids...)
	d.Size = line.Dst.Size
	d.ItemBytes = leaf.Dst.Size
	line.Desc = d
	return line, nil
}

func (c *build) histogram(id label.NodeID) (*Node, error) {
	typ, err := c.needType(id, "DATA_TYPE")
	if err != nil {
		return nil, err
	}
	items, err := c.need(id, "ITEMS")
	if err != nil {
		return nil, err
	}
	var width int64
	if c.t.Has(id, "ITEM_BYTES") {
		if width, err = c.need(id, "ITEM_BYTES"); err != nil {
			return nil, err
		}
	} else {
		bytes, err := c.need(id, "BYTES")
		if err != nil {
			return nil, err
		}
		if items == 0 || bytes%items != 0 {
			return nil, c.mismatch(id, "BYTES per item", bytes, items)
		}
		width = bytes / items
	}

	d := c.desc(id)
	leaf, err := c.value(id, typ, width, d)
	if err != nil {
		return nil, err
	}
	d.ItemBytes = leaf.Dst.Size
	g := group(1, repeat(leaf, items, 0, c.sep()))
	d.Size = g.Dst.Size
	g.Desc = d
	return g, nil
}

func (c *build) qube(id label.NodeID) (*Node, error) {
	if v, ok := c.t.Lookup(id, "SUFFIX_ITEMS"); ok {
		if dims, ok := v.AsInts(); ok {
			for _, n := range dims {
				if n != 0 {
					return nil, errors.Unsupported(errors.PhaseBuild, c.t.Path(id), "qube suffix planes")
				}
			}
		}
	}
	items, err := c.product(id, "CORE_ITEMS")
	if err != nil {
		return nil, err
	}
	typ, err := c.needType(id, "CORE_ITEM_TYPE")
	if err != nil {
		return nil, err
	}
	width, err := c.need(id, "CORE_ITEM_BYTES")
	if err != nil {
		return nil, err
	}

	d := c.desc(id)
	leaf, err := c.value(id, typ, width, d)
	if err != nil {
		return nil, err
	}
	d.ItemBytes = leaf.Dst.Size
	g := group(1, repeat(leaf, items, 0, c.sep()))
	d.Size = g.Dst.Size
	g.Desc = d
	return g, nil
}
