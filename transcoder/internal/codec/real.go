package codec

import (
	"math"
	"math/big"

	"github.com/wippyai/pdscore/errors"
	"github.com/wippyai/pdscore/profile"
)

func realDecoder(e profile.Encoding, w int) decoder {
	switch e {
	case profile.EncIEEEReal, profile.EncPCReal:
		msb := e == profile.EncIEEEReal
		switch w {
		case 4:
			return func(b []byte, _ Reporter) value {
				return value{k: kFloat, f: float64(math.Float32frombits(uint32(readUint(b, msb)))), narrow: true}
			}
		case 8:
			return func(b []byte, _ Reporter) value {
				return value{k: kFloat, f: math.Float64frombits(readUint(b, msb))}
			}
		case 10:
			return func(b []byte, r Reporter) value {
				var le [10]byte
				if msb {
					reverseInto(le[:], b)
				} else {
					copy(le[:], b)
				}
				return value{k: kFloat, f: decodeExtended(le, r)}
			}
		}
	case profile.EncVAXReal:
		switch w {
		case 4:
			return vaxDecoder(vaxF)
		case 8:
			return vaxDecoder(vaxD)
		case 16:
			return vaxDecoder(vaxH)
		}
	case profile.EncVAXGReal:
		if w == 8 {
			return vaxDecoder(vaxG)
		}
	}
	return nil
}

func realEncoder(e profile.Encoding, w int) encoder {
	switch e {
	case profile.EncIEEEReal, profile.EncPCReal:
		msb := e == profile.EncIEEEReal
		switch w {
		case 4:
			return func(b []byte, v value, r Reporter) {
				f := toFloat(v, r)
				f32 := float32(f)
				switch {
				case math.IsInf(float64(f32), 0) && !math.IsInf(f, 0):
					r(errors.KindOverflow, f)
				case !math.IsNaN(f) && float64(f32) != f:
					r(errors.KindPrecisionLoss, f)
				}
				writeUint(b, uint64(math.Float32bits(f32)), msb)
			}
		case 8:
			return func(b []byte, v value, r Reporter) {
				writeUint(b, math.Float64bits(toFloat(v, r)), msb)
			}
		case 10:
			return func(b []byte, v value, r Reporter) {
				le := encodeExtended(toFloat(v, r))
				if msb {
					reverseInto(b, le[:])
				} else {
					copy(b, le[:])
				}
			}
		}
	case profile.EncVAXReal:
		switch w {
		case 4:
			return vaxEncoder(vaxF)
		case 8:
			return vaxEncoder(vaxD)
		case 16:
			return vaxEncoder(vaxH)
		}
	case profile.EncVAXGReal:
		if w == 8 {
			return vaxEncoder(vaxG)
		}
	}
	return nil
}

// toFloat converts v to float64, reporting integers too wide for a double.
func toFloat(v value, r Reporter) float64 {
	f, exact := v.float()
	if !exact {
		r(errors.KindPrecisionLoss, v.source())
	}
	return f
}

// x87 extended precision: 64-bit mantissa with explicit integer bit,
// 15-bit exponent biased by 16383, sign in the top bit. Little-endian.
const extBias = 16383

func decodeExtended(b [10]byte, r Reporter) float64 {
	mant := readUint(b[:8], false)
	se := uint16(b[8]) | uint16(b[9])<<8
	neg := se&0x8000 != 0
	exp := int(se & 0x7fff)

	var f float64
	switch {
	case exp == 0 && mant == 0:
		f = 0
	case exp == 0x7fff:
		if mant<<1 == 0 {
			f = math.Inf(1)
		} else {
			f = math.NaN()
		}
	default:
		m := new(big.Float).SetUint64(mant)
		var acc big.Accuracy
		f, acc = m.SetMantExp(m, exp-extBias-63).Float64()
		switch {
		case math.IsInf(f, 0):
			r(errors.KindOverflow, f)
		case acc != big.Exact:
			r(errors.KindPrecisionLoss, f)
		}
	}
	if neg {
		f = -f
	}
	return f
}

func encodeExtended(f float64) [10]byte {
	var b [10]byte
	var se uint16
	if math.Signbit(f) {
		se = 0x8000
		f = -f
	}
	var mant uint64
	switch {
	case f == 0:
	case math.IsInf(f, 0):
		se |= 0x7fff
		mant = 1 << 63
	case math.IsNaN(f):
		se |= 0x7fff
		mant = 0xc000000000000000
	default:
		frac, exp := math.Frexp(f)
		mant = uint64(math.Ldexp(frac, 64))
		se |= uint16(exp - 1 + extBias)
	}
	writeUint(b[:8], mant, false)
	b[8] = byte(se)
	b[9] = byte(se >> 8)
	return b
}

// vaxFormat describes a VAX floating format. All are stored as 16-bit
// little-endian words with the sign, exponent and leading fraction bits in
// the first word, and a hidden leading 0.1 binary fraction bit.
type vaxFormat struct {
	words    int
	expBits  uint
	bias     int
	fracBits uint
}

var (
	vaxF = vaxFormat{words: 2, expBits: 8, bias: 128, fracBits: 23}
	vaxD = vaxFormat{words: 4, expBits: 8, bias: 128, fracBits: 55}
	vaxG = vaxFormat{words: 4, expBits: 11, bias: 1024, fracBits: 52}
	vaxH = vaxFormat{words: 8, expBits: 15, bias: 16384, fracBits: 112}
)

func (vf vaxFormat) word(b []byte, i int) uint64 {
	if i >= vf.words {
		return 0
	}
	return uint64(b[2*i]) | uint64(b[2*i+1])<<8
}

func vaxDecoder(vf vaxFormat) decoder {
	return func(b []byte, r Reporter) value {
		var hi uint64
		for i := 0; i < 4; i++ {
			hi = hi<<16 | vf.word(b, i)
		}
		neg := hi>>63 != 0
		exp := int(hi>>(63-vf.expBits)) & (1<<vf.expBits - 1)
		frac := hi << (1 + vf.expBits)
		var sticky bool
		if vf.words > 4 {
			frac |= vf.word(b, 4) << (vf.expBits + 1 - 16)
			for i := 5; i < vf.words; i++ {
				sticky = sticky || vf.word(b, i) != 0
			}
		}

		v := value{k: kFloat, narrow: vf.words == 2}
		if exp == 0 {
			if neg {
				// reserved operand
				r(errors.KindInvalidData, append([]byte(nil), b...))
			}
			return v
		}
		mbits, carry, inexact := round52(frac, sticky)
		if carry {
			exp++
		}
		if inexact {
			r(errors.KindPrecisionLoss, append([]byte(nil), b...))
		}
		v.f = math.Ldexp(float64(mbits), exp-vf.bias-1-52)
		if neg {
			v.f = -v.f
		}
		return v
	}
}

// round52 rounds a top-aligned fraction to the 52 bits of a double, to
// nearest with ties to even, and restores the hidden bit. sticky marks
// non-zero fraction bits below the 64 in frac.
func round52(frac uint64, sticky bool) (mbits uint64, carry, inexact bool) {
	const half = 1 << 11
	mbits = frac >> 12
	rem := frac & (1<<12 - 1)
	inexact = rem != 0 || sticky
	if rem > half || (rem == half && (sticky || mbits&1 == 1)) {
		mbits++
		if mbits == 1<<52 {
			mbits = 0
			carry = true
		}
	}
	return mbits | 1<<52, carry, inexact
}

func vaxEncoder(vf vaxFormat) encoder {
	maxExp := 1<<vf.expBits - 1
	return func(b []byte, v value, r Reporter) {
		f := toFloat(v, r)
		for i := range b {
			b[i] = 0
		}
		if f == 0 {
			return
		}
		if math.IsNaN(f) {
			r(errors.KindInvalidData, f)
			return
		}

		var sign uint64
		if f < 0 {
			sign = 1 << 63
			f = -f
		}

		var exp int
		var frac uint64 // fraction without hidden bit, top-aligned
		if math.IsInf(f, 0) {
			r(errors.KindOverflow, f)
			exp = maxExp + 1
		} else {
			m, e := math.Frexp(f)
			mbits := uint64(math.Ldexp(m, 53)) // 53 significant bits, hidden bit at 52
			exp = e + vf.bias
			if vf.fracBits < 52 {
				shift := 52 - vf.fracBits
				rounded := (mbits + 1<<(shift-1)) >> shift
				if rounded<<shift != mbits {
					r(errors.KindPrecisionLoss, f)
				}
				if rounded == 1<<(vf.fracBits+1) {
					rounded >>= 1
					exp++
				}
				mbits = rounded << shift
			}
			frac = (mbits &^ (1 << 52)) << 12
		}

		switch {
		case exp > maxExp:
			if !math.IsInf(f, 0) {
				r(errors.KindOverflow, f)
			}
			exp = maxExp
			frac = ^uint64(0) << (64 - min(vf.fracBits, 64))
		case exp < 1:
			r(errors.KindPrecisionLoss, f)
			return
		}

		hi := sign | uint64(exp)<<(63-vf.expBits) | frac>>(1+vf.expBits)
		for i := 0; i < vf.words && i < 4; i++ {
			w := hi >> (48 - 16*uint(i))
			b[2*i] = byte(w)
			b[2*i+1] = byte(w >> 8)
		}
		if vf.words > 4 {
			w := frac << (64 - (1 + vf.expBits))
			w >>= 48
			b[8] = byte(w)
			b[9] = byte(w >> 8)
		}
	}
}
