package codec

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/wippyai/pdscore/errors"
)

// ASCII fields are right-justified and blank padded. A value that does not
// fit is written as a field of '*'.

func fieldText(b []byte) string {
	return strings.TrimSpace(string(b))
}

func parseASCIIInt(b []byte, r Reporter) value {
	s := fieldText(b)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return value{k: kInt, i: i}
	}
	if u, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 64); err == nil {
		return value{k: kUint, u: u}
	}
	if f, ok := parseReal(s); ok {
		return value{k: kFloat, f: f}
	}
	r(errors.KindInvalidData, s)
	return value{k: kInt}
}

func parseASCIIReal(b []byte, r Reporter) value {
	s := fieldText(b)
	f, ok := parseReal(s)
	if !ok {
		r(errors.KindInvalidData, s)
	}
	return value{k: kFloat, f: f}
}

func parseASCIIComplex(b []byte, r Reporter) value {
	s := fieldText(b)
	parts := strings.FieldsFunc(s, func(c rune) bool { return c == ' ' || c == ',' || c == '\t' })
	if len(parts) != 2 {
		r(errors.KindInvalidData, s)
		return value{k: kComplex}
	}
	re, ok1 := parseReal(parts[0])
	im, ok2 := parseReal(parts[1])
	if !ok1 || !ok2 {
		r(errors.KindInvalidData, s)
	}
	return value{k: kComplex, f: re, im: im}
}

func parseASCIIBits(b []byte, r Reporter) value {
	s := fieldText(b)
	if len(s)%2 == 1 {
		s = "0" + s
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		r(errors.KindInvalidData, s)
		return value{k: kBits}
	}
	return value{k: kBits, raw: raw}
}

// parseReal accepts Fortran style D exponents as well as Go float syntax.
func parseReal(s string) (float64, bool) {
	s = strings.Map(func(c rune) rune {
		if c == 'D' || c == 'd' {
			return 'E'
		}
		return c
	}, s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}

// putField right-justifies s in b. It reports whether s fit.
func putField(b []byte, s string) bool {
	if len(s) > len(b) {
		for i := range b {
			b[i] = '*'
		}
		return false
	}
	pad := len(b) - len(s)
	for i := 0; i < pad; i++ {
		b[i] = ' '
	}
	copy(b[pad:], s)
	return true
}

func asciiIntEncoder(opts Options) encoder {
	return func(b []byte, v value, r Reporter) {
		var s string
		switch v.k {
		case kInt:
			s = strconv.FormatInt(v.i, 10)
		case kUint:
			s = strconv.FormatUint(v.u, 10)
		default:
			s = strconv.FormatInt(toInt(v, 8, r), 10)
		}
		if !putField(b, s) && opts.CheckASCII {
			r(errors.KindOverflow, v.source())
		}
	}
}

// formatReal returns the shortest representation of f that fits width,
// trading significant digits for space when needed.
func formatReal(f float64, narrow bool, width int) (string, bool) {
	bitSize := 64
	if narrow {
		bitSize = 32
	}
	s := strconv.FormatFloat(f, 'G', -1, bitSize)
	if len(s) <= width {
		return s, true
	}
	for prec := 16; prec >= 1; prec-- {
		s = strconv.FormatFloat(f, 'G', prec, bitSize)
		if len(s) <= width {
			return s, true
		}
	}
	return s, false
}

func asciiRealEncoder(opts Options) encoder {
	return func(b []byte, v value, r Reporter) {
		f := toFloat(v, r)
		s, ok := formatReal(f, v.narrow, len(b))
		if !putField(b, s) || !ok {
			if opts.CheckASCII {
				r(errors.KindOverflow, f)
			}
		}
	}
}

func asciiComplexEncoder(opts Options) encoder {
	return func(b []byte, v value, r Reporter) {
		re, im := v.complexParts()
		half := (len(b) - 1) / 2
		rs, ok1 := formatReal(re, v.narrow, half)
		is, ok2 := formatReal(im, v.narrow, half)
		fit := putField(b[:half], rs) && ok1
		b[half] = ' '
		fit = putField(b[half+1:], is) && ok2 && fit
		if !fit && opts.CheckASCII {
			r(errors.KindOverflow, complex(re, im))
		}
	}
}

func asciiBitsEncoder(opts Options) encoder {
	return func(b []byte, v value, r Reporter) {
		raw := v.raw
		if v.k != kBits {
			var tmp [8]byte
			writeUint(tmp[:], toUint(v, 8, r), true)
			raw = tmp[:]
		}
		if !putField(b, strings.ToUpper(hex.EncodeToString(raw))) && opts.CheckASCII {
			r(errors.KindOverflow, v.source())
		}
	}
}
