package layout

import (
	"math"

	"github.com/wippyai/pdscore/profile"
)

// Info is the destination footprint of one item or record.
type Info struct {
	Size  int64
	Align int64
}

// Calculator computes item alignment under one alignment policy.
type Calculator struct {
	policy profile.Alignment
}

func NewCalculator(policy profile.Alignment) *Calculator {
	return &Calculator{policy: policy}
}

// Item returns the layout of a single binary value of type t.
func (c *Calculator) Item(t profile.DataType) Info {
	info := Info{Size: int64(t.Width), Align: 1}
	if t.Width <= 1 || !aligned(t.Enc) {
		return info
	}

	switch c.policy {
	case profile.AlignEven:
		info.Align = 2
	case profile.AlignRISC:
		w := t.Width
		if t.Enc.IsComplex() {
			w /= 2
		}
		info.Align = naturalAlign(w)
	}
	return info
}

// aligned reports whether values of e take part in alignment. Text, bit
// strings and BCD are byte streams and never move.
func aligned(e profile.Encoding) bool {
	return e.IsInteger() || e.IsReal() || (e.IsComplex() && !e.IsASCII())
}

// naturalAlign is the largest power of two not above min(w, 8).
func naturalAlign(w int) int64 {
	a := int64(1)
	for a*2 <= int64(w) && a < 8 {
		a *= 2
	}
	return a
}

// Record lays out consecutive fields, tracking the strictest alignment seen.
type Record struct {
	offset   int64
	maxAlign int64
}

// Record starts a new record at offset zero.
func (c *Calculator) Record() *Record {
	return &Record{maxAlign: 1}
}

// Field places a field and returns its offset and the padding inserted
// before it.
func (r *Record) Field(info Info) (offset, pad int64) {
	offset = AlignTo(r.offset, info.Align)
	pad = offset - r.offset
	if info.Align > r.maxAlign {
		r.maxAlign = info.Align
	}
	r.offset = offset + info.Size
	return offset, pad
}

// Close pads the record to its strictest alignment and returns its layout
// together with the trailing padding.
func (r *Record) Close() (Info, int64) {
	size := AlignTo(r.offset, r.maxAlign)
	return Info{Size: size, Align: r.maxAlign}, size - r.offset
}

// AlignTo rounds offset up to a multiple of align.
func AlignTo(offset, align int64) int64 {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) / align * align
}

// SafeMul multiplies two non-negative sizes, reporting overflow.
func SafeMul(a, b int64) (int64, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if b != 0 && a > math.MaxInt64/b {
		return 0, false
	}
	return a * b, true
}
