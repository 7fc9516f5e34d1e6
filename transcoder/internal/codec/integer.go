package codec

import (
	"math"

	"github.com/wippyai/pdscore/errors"
	"github.com/wippyai/pdscore/profile"
)

func readUint(b []byte, msb bool) uint64 {
	var u uint64
	if msb {
		for _, x := range b {
			u = u<<8 | uint64(x)
		}
		return u
	}
	for i := len(b) - 1; i >= 0; i-- {
		u = u<<8 | uint64(b[i])
	}
	return u
}

func writeUint(b []byte, u uint64, msb bool) {
	n := len(b)
	for i := 0; i < n; i++ {
		x := byte(u >> (8 * uint(i)))
		if msb {
			b[n-1-i] = x
		} else {
			b[i] = x
		}
	}
}

func msbFirst(e profile.Encoding) bool {
	return e == profile.EncMSBInt || e == profile.EncMSBUint
}

func intDecoder(e profile.Encoding) decoder {
	msb := msbFirst(e)
	if e.IsUnsigned() {
		return func(b []byte, _ Reporter) value {
			return value{k: kUint, u: readUint(b, msb)}
		}
	}
	return func(b []byte, _ Reporter) value {
		shift := 64 - 8*uint(len(b))
		return value{k: kInt, i: int64(readUint(b, msb)<<shift) >> shift}
	}
}

func intEncoder(e profile.Encoding) encoder {
	msb := msbFirst(e)
	if e.IsUnsigned() {
		return func(b []byte, v value, r Reporter) {
			writeUint(b, toUint(v, len(b), r), msb)
		}
	}
	return func(b []byte, v value, r Reporter) {
		writeUint(b, uint64(toInt(v, len(b), r)), msb)
	}
}

// toInt narrows v to a signed integer of width bytes, clamping on overflow.
func toInt(v value, width int, r Reporter) int64 {
	bits := 8 * uint(width)
	maxV := int64(1)<<(bits-1) - 1
	minV := -maxV - 1
	if width >= 8 {
		maxV, minV = math.MaxInt64, math.MinInt64
	}

	switch v.k {
	case kInt:
		if v.i > maxV {
			r(errors.KindOverflow, v.i)
			return maxV
		}
		if v.i < minV {
			r(errors.KindOverflow, v.i)
			return minV
		}
		return v.i
	case kUint, kBits:
		u := v.u
		if v.k == kBits {
			var ok bool
			if u, ok = bitsToUint(v.raw); !ok {
				r(errors.KindOverflow, v.source())
				return maxV
			}
		}
		if u > uint64(maxV) {
			r(errors.KindOverflow, v.source())
			return maxV
		}
		return int64(u)
	}

	f, im := v.complexParts()
	if im != 0 {
		r(errors.KindPrecisionLoss, v.source())
	}
	if math.IsNaN(f) {
		r(errors.KindInvalidData, f)
		return 0
	}
	rf := math.Round(f)
	limit := math.Ldexp(1, int(bits)-1)
	if rf >= limit {
		r(errors.KindOverflow, f)
		return maxV
	}
	if rf < -limit {
		r(errors.KindOverflow, f)
		return minV
	}
	if rf != f {
		r(errors.KindPrecisionLoss, f)
	}
	return int64(rf)
}

// toUint narrows v to an unsigned integer of width bytes. Negative values
// become zero and are reported as sign loss.
func toUint(v value, width int, r Reporter) uint64 {
	bits := 8 * uint(width)
	maxV := uint64(math.MaxUint64)
	if width < 8 {
		maxV = uint64(1)<<bits - 1
	}

	switch v.k {
	case kInt:
		if v.i < 0 {
			r(errors.KindSignLoss, v.i)
			return 0
		}
		if uint64(v.i) > maxV {
			r(errors.KindOverflow, v.i)
			return maxV
		}
		return uint64(v.i)
	case kUint:
		if v.u > maxV {
			r(errors.KindOverflow, v.u)
			return maxV
		}
		return v.u
	case kBits:
		u, ok := bitsToUint(v.raw)
		if !ok || u > maxV {
			r(errors.KindOverflow, v.source())
			return maxV
		}
		return u
	}

	f, im := v.complexParts()
	if im != 0 {
		r(errors.KindPrecisionLoss, v.source())
	}
	if math.IsNaN(f) {
		r(errors.KindInvalidData, f)
		return 0
	}
	rf := math.Round(f)
	if rf < 0 {
		r(errors.KindSignLoss, f)
		return 0
	}
	if rf >= math.Ldexp(1, int(bits)) {
		r(errors.KindOverflow, f)
		return maxV
	}
	if rf != f {
		r(errors.KindPrecisionLoss, f)
	}
	return uint64(rf)
}

// BCD values are packed decimal: two digits per byte, with an optional
// trailing sign nibble (0xB or 0xD negative, 0xA, 0xC, 0xE or 0xF positive).
func decodeBCD(b []byte, r Reporter) value {
	var n int64
	neg := false
	last := 2*len(b) - 1
	for i := 0; i <= last; i++ {
		d := b[i/2]
		if i%2 == 0 {
			d >>= 4
		}
		d &= 0x0f
		if d > 9 {
			if i == last {
				neg = d == 0x0b || d == 0x0d
				continue
			}
			r(errors.KindInvalidData, append([]byte(nil), b...))
			return value{k: kInt}
		}
		if n > (math.MaxInt64-int64(d))/10 {
			r(errors.KindOverflow, append([]byte(nil), b...))
			return value{k: kInt, i: math.MaxInt64}
		}
		n = n*10 + int64(d)
	}
	if neg {
		n = -n
	}
	return value{k: kInt, i: n}
}

func encodeBCD(b []byte, v value, r Reporter) {
	n := toInt(v, 8, r)
	sign := byte(0x0c)
	u := uint64(n)
	if n < 0 {
		sign = 0x0d
		u = uint64(-n)
	}
	digits := 2*len(b) - 1
	for i := range b {
		b[i] = 0
	}
	b[len(b)-1] = sign
	for pos := digits - 1; pos >= 0; pos-- {
		d := byte(u % 10)
		u /= 10
		if pos%2 == 0 {
			b[pos/2] |= d << 4
		} else {
			b[pos/2] |= d
		}
	}
	if u != 0 {
		r(errors.KindOverflow, n)
	}
}

// encodeBits right-aligns a big-endian bit pattern into b.
func encodeBits(b []byte, v value, r Reporter) {
	raw := v.raw
	if v.k != kBits {
		var tmp [8]byte
		writeUint(tmp[:], toUint(v, 8, r), true)
		raw = tmp[:]
	}
	for i := range b {
		b[i] = 0
	}
	if len(raw) > len(b) {
		for _, x := range raw[:len(raw)-len(b)] {
			if x != 0 {
				r(errors.KindOverflow, v.source())
				break
			}
		}
		raw = raw[len(raw)-len(b):]
	}
	copy(b[len(b)-len(raw):], raw)
}
