package codec

type valueKind uint8

const (
	kInt valueKind = iota
	kUint
	kFloat
	kComplex
	kBits
)

// value is the canonical form a leaf passes through between decode and encode.
type value struct {
	raw    []byte // kBits, big-endian
	i      int64
	u      uint64
	f, im  float64
	k      valueKind
	narrow bool // decoded from a 4-byte real; formats with float32 precision
}

// source returns the value in a form suitable for issue reports.
func (v value) source() any {
	switch v.k {
	case kInt:
		return v.i
	case kUint:
		return v.u
	case kComplex:
		return complex(v.f, v.im)
	case kBits:
		return v.raw
	}
	return v.f
}

// float returns v as a float64 and whether that is exact.
func (v value) float() (float64, bool) {
	switch v.k {
	case kInt:
		f := float64(v.i)
		if f >= 0x1p63 {
			return f, false
		}
		return f, int64(f) == v.i
	case kUint:
		f := float64(v.u)
		if f >= 0x1p64 {
			return f, false
		}
		return f, uint64(f) == v.u
	case kComplex:
		return v.f, v.im == 0
	case kBits:
		u, ok := bitsToUint(v.raw)
		f := float64(u)
		return f, ok && f < 0x1p64 && uint64(f) == u
	}
	return v.f, true
}

func (v value) complexParts() (float64, float64) {
	if v.k == kComplex {
		return v.f, v.im
	}
	f, _ := v.float()
	return f, 0
}

func bitsToUint(raw []byte) (uint64, bool) {
	var u uint64
	ok := true
	for i, b := range raw {
		if len(raw)-i > 8 && b != 0 {
			ok = false
		}
		u = u<<8 | uint64(b)
	}
	return u, ok
}
