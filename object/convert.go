package object

import (
	"encoding/binary"
	"math"

	"go.uber.org/zap"

	"github.com/wippyai/pdscore/errors"
	"github.com/wippyai/pdscore/label"
	"github.com/wippyai/pdscore/profile"
	"github.com/wippyai/pdscore/transcoder"
)

// Convert re-encodes the whole object under cfg: the platform's native
// types for binary output, ASCII fields for ASCII output.
func Convert(o *Object, cfg profile.Config) (*Object, error) {
	if err := o.check("convert"); err != nil {
		return nil, err
	}
	out, err := transcode(o.Tree, o.Root, o.Data, o.Format, cfg.Registry(), cfg)
	if err != nil {
		return nil, err
	}
	Logger().Debug("converted object",
		zap.String("object", o.Name()),
		zap.Stringer("platform", cfg.Platform),
		zap.Stringer("format", out.Format),
		zap.Int64("bytes", out.Length),
		zap.Int("issues", len(out.Issues)))
	return out, nil
}

// CoerceOptions selects the single type every numeric field is converted
// to, and an optional affine rescale applied on the way.
type CoerceOptions struct {
	Type    string // destination data type name; empty keeps each field's native type
	Bytes   int    // destination width
	Rescale bool   // apply value*Scale + Offset
	Offset  float64
	Scale   float64
}

// Coerce converts every numeric field of o to one binary type. With
// Rescale set the data first passes through little-endian IEEE doubles,
// is rescaled there, and the OFFSET and SCALING_FACTOR keywords are reset
// to 0 and 1 before the final conversion.
func Coerce(o *Object, cfg profile.Config, opts CoerceOptions) (*Object, error) {
	if err := o.check("coerce"); err != nil {
		return nil, err
	}
	if opts.Rescale {
		return rescaleThenCoerce(o, cfg, opts)
	}

	cfg = cfg.WithFormats(profile.Binary, profile.Binary)
	reg := cfg.Registry()
	if opts.Type != "" {
		var err error
		if reg, err = reg.Collapse(opts.Type, opts.Bytes); err != nil {
			return nil, err
		}
	}
	out, err := transcode(o.Tree, o.Root, o.Data, o.Format, reg, cfg)
	if err != nil {
		return nil, err
	}
	Logger().Debug("coerced object",
		zap.String("object", o.Name()),
		zap.String("type", opts.Type),
		zap.Int("bytes", opts.Bytes),
		zap.Int("issues", len(out.Issues)))
	return out, nil
}

func rescaleThenCoerce(o *Object, cfg profile.Config, opts CoerceOptions) (*Object, error) {
	dcfg := profile.DefaultConfig()
	dbl, err := transcode(o.Tree, o.Root, o.Data, o.Format, dcfg.Registry().CollapseToDouble(), dcfg)
	if err != nil {
		return nil, err
	}

	n, err := dbl.layout()
	if err != nil {
		return nil, err
	}
	rescale(n, dbl.Data, opts.Scale, opts.Offset)

	dbl.Tree.Walk(dbl.Root, func(id label.NodeID, _ int) bool {
		if dbl.Tree.Has(id, "OFFSET") {
			dbl.Tree.Set(id, "OFFSET", label.Real(0))
		}
		if dbl.Tree.Has(id, "SCALING_FACTOR") {
			dbl.Tree.Set(id, "SCALING_FACTOR", label.Real(1))
		}
		return true
	})

	Logger().Debug("rescaled object",
		zap.String("object", o.Name()),
		zap.Float64("scale", opts.Scale),
		zap.Float64("offset", opts.Offset))

	next := opts
	next.Rescale = false
	out, err := Coerce(dbl, cfg, next)
	if err != nil {
		return nil, err
	}
	out.Issues = append(dbl.Issues, out.Issues...)
	return out, nil
}

// rescale applies value*scale + offset in place to every little-endian
// double and double complex leaf of buf. Complex imaginary parts are
// scaled only.
func rescale(n *transcoder.Node, buf []byte, scale, offset float64) {
	n.Visit(func(l transcoder.Leaf) bool {
		t := l.Node.Src.Type
		b := buf[l.Src : l.Src+l.Node.Src.Size]
		switch {
		case t.Enc == profile.EncPCReal && t.Width == 8:
			put(b, get(b)*scale+offset)
		case t.Enc == profile.EncPCComplex && t.Width == 16:
			put(b[:8], get(b[:8])*scale+offset)
			put(b[8:], get(b[8:])*scale)
		}
		return true
	})
}

func get(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func put(b []byte, f float64) {
	binary.LittleEndian.PutUint64(b, math.Float64bits(f))
}

// Issues wraps the conversion issues of o as an error, or returns nil.
func Issues(o *Object) error {
	if o == nil || len(o.Issues) == 0 {
		return nil
	}
	return &errors.IssuesError{Issues: o.Issues}
}
