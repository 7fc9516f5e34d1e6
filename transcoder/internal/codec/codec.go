package codec

// Leaf Conversion Strategy
//
// Every leaf is converted by decoding its source bytes into a canonical
// value (int64, uint64, float64, complex pair, raw bits or text) and
// encoding that value into the destination representation.
//
// # Fast Paths
//
// Two cases skip the canonical value entirely:
//   - Identical encoding and width: the bytes are copied.
//   - Byte-order twins of the same width (MSB/LSB integers, IEEE/PC reals,
//     MSB/LSB bit strings): the bytes are reversed, per half for complex.
//
// # Issues
//
// Range and precision problems are not failures. They are passed to the
// Reporter with the offending source value and the conversion continues
// with a clamped or rounded result.

import (
	"github.com/wippyai/pdscore/errors"
	"github.com/wippyai/pdscore/profile"
)

// Reporter receives non-fatal conversion problems.
type Reporter func(kind errors.Kind, value any)

// Options tune a Converter.
type Options struct {
	// CheckASCII reports values that do not fit their ASCII field.
	CheckASCII bool
}

type mode uint8

const (
	modeGeneral mode = iota
	modeCopy
	modeReverse
	modeReverseHalves
	modePad // text or spare: copy and pad
)

// Converter converts single values from one data type to another.
// It is stateless after construction and safe for concurrent use.
type Converter struct {
	src, dst profile.DataType
	decode   decoder
	encode   encoder
	mode     mode
	opts     Options
}

type decoder func(b []byte, r Reporter) value
type encoder func(b []byte, v value, r Reporter)

// New returns a Converter from src to dst. Widths are the byte widths of a
// single value in each representation.
func New(src, dst profile.DataType, opts Options) (*Converter, error) {
	if src.Width < 0 || dst.Width < 0 {
		return nil, errors.InvalidArgument(errors.PhaseStream, "negative width converting %s to %s", src.Name, dst.Name)
	}
	c := &Converter{src: src, dst: dst, opts: opts}

	switch {
	case src.Enc == profile.EncSpare || dst.Enc == profile.EncSpare:
		c.mode = modePad
		return c, nil
	case src.Enc == dst.Enc && src.Width == dst.Width:
		c.mode = modeCopy
		return c, nil
	case src.Width == dst.Width && byteOrderTwins(src.Enc, dst.Enc):
		c.mode = modeReverse
		if src.Enc.IsComplex() {
			c.mode = modeReverseHalves
		}
		return c, nil
	case src.Enc == profile.EncCharacter && dst.Enc == profile.EncCharacter:
		c.mode = modePad
		return c, nil
	}

	if category(src.Enc) != category(dst.Enc) {
		return nil, errors.New(errors.PhaseStream, errors.KindUnsupported).
			DataType(src.Name).
			Detail("cannot convert %s to %s", src.Name, dst.Name).
			Build()
	}

	var err error
	if c.decode, err = decoderFor(src); err != nil {
		return nil, err
	}
	if c.encode, err = encoderFor(dst, opts); err != nil {
		return nil, err
	}
	return c, nil
}

// Source returns the source data type.
func (c *Converter) Source() profile.DataType { return c.src }

// Dest returns the destination data type.
func (c *Converter) Dest() profile.DataType { return c.dst }

// Convert converts one value. len(src) must equal the source width and
// len(dst) the destination width.
func (c *Converter) Convert(dst, src []byte, r Reporter) {
	if r == nil {
		r = discard
	}
	switch c.mode {
	case modeCopy:
		copy(dst, src)
	case modeReverse:
		reverseInto(dst, src)
	case modeReverseHalves:
		h := len(src) / 2
		reverseInto(dst[:h], src[:h])
		reverseInto(dst[h:], src[h:])
	case modePad:
		pad := byte(0)
		if c.dst.Enc == profile.EncCharacter {
			pad = ' '
		}
		n := copy(dst, src)
		for i := n; i < len(dst); i++ {
			dst[i] = pad
		}
		if c.opts.CheckASCII && c.dst.Enc == profile.EncCharacter && len(src) > len(dst) {
			for _, b := range src[len(dst):] {
				if b != ' ' {
					r(errors.KindOverflow, string(src))
					break
				}
			}
		}
	default:
		c.encode(dst, c.decode(src, r), r)
	}
}

func discard(errors.Kind, any) {}

func reverseInto(dst, src []byte) {
	n := len(src)
	for i := 0; i < n; i++ {
		dst[i] = src[n-1-i]
	}
}

func byteOrderTwins(a, b profile.Encoding) bool {
	pair := func(x, y profile.Encoding) bool {
		return (a == x && b == y) || (a == y && b == x)
	}
	return pair(profile.EncMSBInt, profile.EncLSBInt) ||
		pair(profile.EncMSBUint, profile.EncLSBUint) ||
		pair(profile.EncIEEEReal, profile.EncPCReal) ||
		pair(profile.EncIEEEComplex, profile.EncPCComplex) ||
		pair(profile.EncMSBBits, profile.EncLSBBits)
}

type cat uint8

const (
	catOther cat = iota
	catNumber
	catBits
	catText
)

func category(e profile.Encoding) cat {
	switch {
	case e.IsNumeric() || e.IsComplex():
		return catNumber
	case e.IsBits():
		return catBits
	case e == profile.EncCharacter:
		return catText
	}
	return catOther
}

func decoderFor(t profile.DataType) (decoder, error) {
	w := t.Width
	switch t.Enc {
	case profile.EncMSBInt, profile.EncLSBInt, profile.EncMSBUint, profile.EncLSBUint:
		if !validIntWidth(w) {
			break
		}
		return intDecoder(t.Enc), nil
	case profile.EncIEEEReal, profile.EncPCReal, profile.EncVAXReal, profile.EncVAXGReal:
		if d := realDecoder(t.Enc, w); d != nil {
			return d, nil
		}
	case profile.EncIEEEComplex, profile.EncPCComplex, profile.EncVAXComplex, profile.EncVAXGComplex:
		if w%2 != 0 {
			break
		}
		half := realDecoder(t.Enc.ComponentOf(), w/2)
		if half == nil {
			break
		}
		return func(b []byte, r Reporter) value {
			re := half(b[:w/2], r)
			im := half(b[w/2:], r)
			return value{k: kComplex, f: re.f, im: im.f, narrow: re.narrow}
		}, nil
	case profile.EncMSBBits:
		return func(b []byte, _ Reporter) value {
			return value{k: kBits, raw: append([]byte(nil), b...)}
		}, nil
	case profile.EncLSBBits:
		return func(b []byte, _ Reporter) value {
			raw := make([]byte, len(b))
			reverseInto(raw, b)
			return value{k: kBits, raw: raw}
		}, nil
	case profile.EncBCD:
		return decodeBCD, nil
	case profile.EncASCIIInt:
		return parseASCIIInt, nil
	case profile.EncASCIIReal:
		return parseASCIIReal, nil
	case profile.EncASCIIComplex:
		return parseASCIIComplex, nil
	case profile.EncASCIIBits:
		return parseASCIIBits, nil
	}
	return nil, errors.UnknownDataType(errors.PhaseStream, nil, t.Name, w)
}

func encoderFor(t profile.DataType, opts Options) (encoder, error) {
	w := t.Width
	switch t.Enc {
	case profile.EncMSBInt, profile.EncLSBInt, profile.EncMSBUint, profile.EncLSBUint:
		if !validIntWidth(w) {
			break
		}
		return intEncoder(t.Enc), nil
	case profile.EncIEEEReal, profile.EncPCReal, profile.EncVAXReal, profile.EncVAXGReal:
		if e := realEncoder(t.Enc, w); e != nil {
			return e, nil
		}
	case profile.EncIEEEComplex, profile.EncPCComplex, profile.EncVAXComplex, profile.EncVAXGComplex:
		if w%2 != 0 {
			break
		}
		half := realEncoder(t.Enc.ComponentOf(), w/2)
		if half == nil {
			break
		}
		return func(b []byte, v value, r Reporter) {
			re, im := v.complexParts()
			half(b[:w/2], value{k: kFloat, f: re, narrow: v.narrow}, r)
			half(b[w/2:], value{k: kFloat, f: im, narrow: v.narrow}, r)
		}, nil
	case profile.EncMSBBits:
		return func(b []byte, v value, r Reporter) { encodeBits(b, v, r) }, nil
	case profile.EncLSBBits:
		return func(b []byte, v value, r Reporter) {
			encodeBits(b, v, r)
			for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
				b[i], b[j] = b[j], b[i]
			}
		}, nil
	case profile.EncBCD:
		return encodeBCD, nil
	case profile.EncASCIIInt:
		return asciiIntEncoder(opts), nil
	case profile.EncASCIIReal:
		return asciiRealEncoder(opts), nil
	case profile.EncASCIIComplex:
		return asciiComplexEncoder(opts), nil
	case profile.EncASCIIBits:
		return asciiBitsEncoder(opts), nil
	}
	return nil, errors.UnknownDataType(errors.PhaseStream, nil, t.Name, w)
}

func validIntWidth(w int) bool {
	return w == 1 || w == 2 || w == 4 || w == 8
}
