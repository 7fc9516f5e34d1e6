package codec

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/pdscore/errors"
	"github.com/wippyai/pdscore/profile"
)

type recorder struct {
	kinds  []errors.Kind
	values []any
}

func (r *recorder) report(k errors.Kind, v any) {
	r.kinds = append(r.kinds, k)
	r.values = append(r.values, v)
}

func convert(t *testing.T, src, dst profile.DataType, in []byte, opts Options) ([]byte, *recorder) {
	t.Helper()
	c, err := New(src, dst, opts)
	if err != nil {
		t.Fatalf("New(%s/%d, %s/%d): %v", src.Name, src.Width, dst.Name, dst.Width, err)
	}
	out := make([]byte, dst.Width)
	rec := &recorder{}
	c.Convert(out, in, rec.report)
	return out, rec
}

func dt(enc profile.Encoding, w int) profile.DataType {
	return profile.Canonical(enc, w)
}

func TestFastPaths(t *testing.T) {
	tests := []struct {
		name     string
		src, dst profile.DataType
		in, want []byte
		mode     mode
	}{
		{"copy", dt(profile.EncLSBInt, 4), dt(profile.EncLSBInt, 4), []byte{1, 2, 3, 4}, []byte{1, 2, 3, 4}, modeCopy},
		{"int reverse", dt(profile.EncLSBInt, 4), dt(profile.EncMSBInt, 4), []byte{1, 2, 3, 4}, []byte{4, 3, 2, 1}, modeReverse},
		{"real reverse", dt(profile.EncPCReal, 8), dt(profile.EncIEEEReal, 8),
			[]byte{1, 2, 3, 4, 5, 6, 7, 8}, []byte{8, 7, 6, 5, 4, 3, 2, 1}, modeReverse},
		{"complex halves", dt(profile.EncIEEEComplex, 8), dt(profile.EncPCComplex, 8),
			[]byte{1, 2, 3, 4, 5, 6, 7, 8}, []byte{4, 3, 2, 1, 8, 7, 6, 5}, modeReverseHalves},
		{"bits reverse", dt(profile.EncLSBBits, 2), dt(profile.EncMSBBits, 2), []byte{0x01, 0x80}, []byte{0x80, 0x01}, modeReverse},
		{"char pad", dt(profile.EncCharacter, 3), dt(profile.EncCharacter, 5), []byte("abc"), []byte("abc  "), modePad},
		{"char truncate", dt(profile.EncCharacter, 5), dt(profile.EncCharacter, 2), []byte("abcde"), []byte("ab"), modePad},
		{"spare", dt(profile.EncSpare, 2), dt(profile.EncSpare, 0), []byte{9, 9}, []byte{}, modePad},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.src, tt.dst, Options{})
			if err != nil {
				t.Fatal(err)
			}
			if c.mode != tt.mode {
				t.Errorf("mode = %d, want %d", c.mode, tt.mode)
			}
			got, _ := convert(t, tt.src, tt.dst, tt.in, Options{})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("bytes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIntegerNarrowing(t *testing.T) {
	tests := []struct {
		name     string
		src, dst profile.DataType
		in, want []byte
		issue    errors.Kind
	}{
		{"widen negative", dt(profile.EncLSBInt, 1), dt(profile.EncMSBInt, 4), []byte{0xff}, []byte{0xff, 0xff, 0xff, 0xff}, ""},
		{"unsigned widen", dt(profile.EncLSBUint, 1), dt(profile.EncMSBInt, 2), []byte{0xff}, []byte{0x00, 0xff}, ""},
		{"overflow high", dt(profile.EncMSBInt, 4), dt(profile.EncMSBInt, 2), []byte{0x00, 0x01, 0x86, 0xa0}, []byte{0x7f, 0xff}, errors.KindOverflow},
		{"overflow low", dt(profile.EncMSBInt, 4), dt(profile.EncLSBInt, 1), []byte{0xff, 0xff, 0xff, 0x00}, []byte{0x80}, errors.KindOverflow},
		{"sign loss", dt(profile.EncLSBInt, 2), dt(profile.EncMSBUint, 2), []byte{0xff, 0xff}, []byte{0, 0}, errors.KindSignLoss},
		{"uint overflow", dt(profile.EncMSBUint, 2), dt(profile.EncMSBInt, 2), []byte{0xff, 0xff}, []byte{0x7f, 0xff}, errors.KindOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rec := convert(t, tt.src, tt.dst, tt.in, Options{})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("bytes mismatch (-want +got):\n%s", diff)
			}
			if tt.issue == "" {
				if len(rec.kinds) != 0 {
					t.Errorf("unexpected issues %v", rec.kinds)
				}
				return
			}
			if len(rec.kinds) != 1 || rec.kinds[0] != tt.issue {
				t.Errorf("issues = %v, want [%s]", rec.kinds, tt.issue)
			}
		})
	}
}

func TestRealToInteger(t *testing.T) {
	src := dt(profile.EncPCReal, 8)
	in := make([]byte, 8)

	writeUint(in, math.Float64bits(2.5), false)
	got, rec := convert(t, src, dt(profile.EncMSBInt, 2), in, Options{})
	if diff := cmp.Diff([]byte{0, 3}, got); diff != "" {
		t.Errorf("2.5 rounded (-want +got):\n%s", diff)
	}
	if len(rec.kinds) != 1 || rec.kinds[0] != errors.KindPrecisionLoss {
		t.Errorf("issues = %v", rec.kinds)
	}

	writeUint(in, math.Float64bits(math.NaN()), false)
	_, rec = convert(t, src, dt(profile.EncMSBInt, 2), in, Options{})
	if len(rec.kinds) != 1 || rec.kinds[0] != errors.KindInvalidData {
		t.Errorf("NaN issues = %v", rec.kinds)
	}

	writeUint(in, math.Float64bits(-3), false)
	got, rec = convert(t, src, dt(profile.EncLSBUint, 1), in, Options{})
	if got[0] != 0 || len(rec.kinds) != 1 || rec.kinds[0] != errors.KindSignLoss {
		t.Errorf("-3 to uint8: %v %v", got, rec.kinds)
	}
}

func TestKnownRealEncodings(t *testing.T) {
	tests := []struct {
		name string
		dst  profile.DataType
		want []byte
	}{
		{"vax f", dt(profile.EncVAXReal, 4), []byte{0x80, 0x40, 0, 0}},
		{"vax d", dt(profile.EncVAXReal, 8), []byte{0x80, 0x40, 0, 0, 0, 0, 0, 0}},
		{"vax g", dt(profile.EncVAXGReal, 8), []byte{0x10, 0x40, 0, 0, 0, 0, 0, 0}},
		{"vax h", dt(profile.EncVAXReal, 16), []byte{0x01, 0x40, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
		{"x87", dt(profile.EncPCReal, 10), []byte{0, 0, 0, 0, 0, 0, 0, 0x80, 0xff, 0x3f}},
		{"x87 msb", dt(profile.EncIEEEReal, 10), []byte{0x3f, 0xff, 0x80, 0, 0, 0, 0, 0, 0, 0}},
		{"ieee4 msb", dt(profile.EncIEEEReal, 4), []byte{0x3f, 0x80, 0, 0}},
	}

	one := make([]byte, 8)
	writeUint(one, math.Float64bits(1), true)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rec := convert(t, dt(profile.EncIEEEReal, 8), tt.dst, one, Options{})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("1.0 encoding (-want +got):\n%s", diff)
			}
			if len(rec.kinds) != 0 {
				t.Errorf("unexpected issues %v", rec.kinds)
			}
		})
	}
}

func TestRealRoundTrip(t *testing.T) {
	doubles := []float64{0, 1, -1, 0.1, -123.456, 3.141592653589793, 1e-30, 6.02214076e23, 1.5e38}
	formats := []profile.DataType{
		dt(profile.EncIEEEReal, 8),
		dt(profile.EncIEEEReal, 10),
		dt(profile.EncPCReal, 10),
		dt(profile.EncVAXReal, 8),
		dt(profile.EncVAXGReal, 8),
		dt(profile.EncVAXReal, 16),
	}
	src := dt(profile.EncPCReal, 8)

	for _, mid := range formats {
		t.Run(profile.QCode(mid), func(t *testing.T) {
			for _, f := range doubles {
				in := make([]byte, 8)
				writeUint(in, math.Float64bits(f), false)
				encoded, rec := convert(t, src, mid, in, Options{})
				back, rec2 := convert(t, mid, src, encoded, Options{})
				if diff := cmp.Diff(in, back); diff != "" {
					t.Errorf("%g round trip (-want +got):\n%s", f, diff)
				}
				if len(rec.kinds)+len(rec2.kinds) != 0 {
					t.Errorf("%g: issues %v %v", f, rec.kinds, rec2.kinds)
				}
			}
		})
	}
}

func TestFloatRoundTripVAXF(t *testing.T) {
	for _, f := range []float32{1, -2.5, 0.1, 1234.5678, 1e-20, 1.5e38} {
		in := make([]byte, 4)
		writeUint(in, uint64(math.Float32bits(f)), false)
		vax, rec := convert(t, dt(profile.EncPCReal, 4), dt(profile.EncVAXReal, 4), in, Options{})
		back, _ := convert(t, dt(profile.EncVAXReal, 4), dt(profile.EncPCReal, 4), vax, Options{})
		if diff := cmp.Diff(in, back); diff != "" {
			t.Errorf("%g round trip (-want +got):\n%s", f, diff)
		}
		if len(rec.kinds) != 0 {
			t.Errorf("%g: issues %v", f, rec.kinds)
		}
	}
}

func TestRealNarrowingIssues(t *testing.T) {
	in := make([]byte, 8)
	writeUint(in, math.Float64bits(0.1), true)
	_, rec := convert(t, dt(profile.EncIEEEReal, 8), dt(profile.EncIEEEReal, 4), in, Options{})
	if len(rec.kinds) != 1 || rec.kinds[0] != errors.KindPrecisionLoss {
		t.Errorf("0.1 to float: %v", rec.kinds)
	}

	writeUint(in, math.Float64bits(1e300), true)
	_, rec = convert(t, dt(profile.EncIEEEReal, 8), dt(profile.EncVAXReal, 8), in, Options{})
	if len(rec.kinds) != 1 || rec.kinds[0] != errors.KindOverflow {
		t.Errorf("1e300 to VAX D: %v", rec.kinds)
	}

	// VAX reserved operand: sign set, exponent zero.
	_, rec = convert(t, dt(profile.EncVAXReal, 4), dt(profile.EncPCReal, 4), []byte{0, 0x80, 0, 0}, Options{})
	if len(rec.kinds) != 1 || rec.kinds[0] != errors.KindInvalidData {
		t.Errorf("reserved operand: %v", rec.kinds)
	}
}

func TestWideRealToDouble(t *testing.T) {
	double := func(f float64) []byte {
		b := make([]byte, 8)
		writeUint(b, math.Float64bits(f), false)
		return b
	}
	tests := []struct {
		name  string
		src   profile.DataType
		in    []byte
		want  []byte
		issue bool
	}{
		{"extended exact", dt(profile.EncPCReal, 10),
			[]byte{0, 0, 0, 0, 0, 0, 0, 0xc0, 0xff, 0x3f}, double(1.5), false},
		{"extended 1+2^-63", dt(profile.EncPCReal, 10),
			[]byte{1, 0, 0, 0, 0, 0, 0, 0x80, 0xff, 0x3f}, double(1), true},
		{"extended rounds up", dt(profile.EncPCReal, 10),
			[]byte{0, 0x06, 0, 0, 0, 0, 0, 0x80, 0xff, 0x3f}, double(1 + 0x1p-52), true},
		{"vax d exact", dt(profile.EncVAXReal, 8),
			[]byte{0x80, 0x40, 0, 0, 0, 0, 0, 0}, double(1), false},
		{"vax d 1+2^-55", dt(profile.EncVAXReal, 8),
			[]byte{0x80, 0x40, 0, 0, 0, 0, 0x01, 0}, double(1), true},
		{"vax d rounds up", dt(profile.EncVAXReal, 8),
			[]byte{0x80, 0x40, 0, 0, 0, 0, 0x06, 0}, double(1 + 0x1p-52), true},
		{"vax h low words", dt(profile.EncVAXReal, 16),
			[]byte{0x01, 0x40, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x01, 0}, double(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rec := convert(t, tt.src, dt(profile.EncPCReal, 8), tt.in, Options{})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("bytes mismatch (-want +got):\n%s", diff)
			}
			var want []errors.Kind
			if tt.issue {
				want = []errors.Kind{errors.KindPrecisionLoss}
			}
			if diff := cmp.Diff(want, rec.kinds); diff != "" {
				t.Errorf("issues mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestASCIIFormatting(t *testing.T) {
	i4 := func(v int32) []byte {
		b := make([]byte, 4)
		writeUint(b, uint64(uint32(v)), false)
		return b
	}
	f4 := func(v float32) []byte {
		b := make([]byte, 4)
		writeUint(b, uint64(math.Float32bits(v)), false)
		return b
	}

	tests := []struct {
		name     string
		src, dst profile.DataType
		in       []byte
		want     string
		overflow bool
	}{
		{"int", dt(profile.EncLSBInt, 4), dt(profile.EncASCIIInt, 5), i4(42), "   42", false},
		{"negative int", dt(profile.EncLSBInt, 4), dt(profile.EncASCIIInt, 12), i4(-1000000), "    -1000000", false},
		{"int overflow", dt(profile.EncLSBInt, 4), dt(profile.EncASCIIInt, 3), i4(12345), "***", true},
		{"float32 shortest", dt(profile.EncPCReal, 4), dt(profile.EncASCIIReal, 15), f4(0.1), "            0.1", false},
		{"float reduced", dt(profile.EncPCReal, 4), dt(profile.EncASCIIReal, 6), f4(3.14159), "3.1416", false},
		{"bits", dt(profile.EncMSBBits, 2), dt(profile.EncASCIIBits, 5), []byte{0x0a, 0xf0}, " 0AF0", false},
		{"bcd", dt(profile.EncBCD, 2), dt(profile.EncASCIIInt, 5), []byte{0x12, 0x3d}, " -123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rec := convert(t, tt.src, tt.dst, tt.in, Options{CheckASCII: true})
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			reported := len(rec.kinds) == 1 && rec.kinds[0] == errors.KindOverflow
			if reported != tt.overflow {
				t.Errorf("overflow reported = %v, issues %v", reported, rec.kinds)
			}
		})
	}

	// Without checks the field is still starred but nothing is reported.
	got, rec := convert(t, dt(profile.EncLSBInt, 4), dt(profile.EncASCIIInt, 3), i4(12345), Options{})
	if string(got) != "***" || len(rec.kinds) != 0 {
		t.Errorf("unchecked overflow: %q %v", got, rec.kinds)
	}
}

func TestASCIIParsing(t *testing.T) {
	tests := []struct {
		name    string
		src     profile.DataType
		in      string
		dst     profile.DataType
		want    []byte
		invalid bool
	}{
		{"int", dt(profile.EncASCIIInt, 6), "  -42 ", dt(profile.EncMSBInt, 2), []byte{0xff, 0xd6}, false},
		{"plus int", dt(profile.EncASCIIInt, 4), " +7 ", dt(profile.EncMSBInt, 1), []byte{7}, false},
		{"fortran real", dt(profile.EncASCIIReal, 8), "  1.5D2 ", dt(profile.EncMSBInt, 2), []byte{0, 150}, false},
		{"garbage", dt(profile.EncASCIIInt, 4), " x1 ", dt(profile.EncMSBInt, 2), []byte{0, 0}, true},
		{"hex bits", dt(profile.EncASCIIBits, 5), "  AF0", dt(profile.EncMSBBits, 2), []byte{0x0a, 0xf0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rec := convert(t, tt.src, tt.dst, []byte(tt.in), Options{})
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("bytes mismatch (-want +got):\n%s", diff)
			}
			invalid := len(rec.kinds) == 1 && rec.kinds[0] == errors.KindInvalidData
			if invalid != tt.invalid {
				t.Errorf("invalid reported = %v, issues %v", invalid, rec.kinds)
			}
		})
	}
}

func TestASCIIRealRoundTrip(t *testing.T) {
	for _, f := range []float64{0.1, -2.5e-300, 123456789.123, math.Pi} {
		in := make([]byte, 8)
		writeUint(in, math.Float64bits(f), false)
		text, _ := convert(t, dt(profile.EncPCReal, 8), dt(profile.EncASCIIReal, 24), in, Options{})
		back, rec := convert(t, dt(profile.EncASCIIReal, 24), dt(profile.EncPCReal, 8), text, Options{})
		if diff := cmp.Diff(in, back); diff != "" {
			t.Errorf("%g via %q (-want +got):\n%s", f, text, diff)
		}
		if len(rec.kinds) != 0 {
			t.Errorf("%g: issues %v", f, rec.kinds)
		}
	}
}

func TestASCIIComplex(t *testing.T) {
	in := make([]byte, 16)
	writeUint(in[:8], math.Float64bits(1.5), true)
	writeUint(in[8:], math.Float64bits(-2), true)
	text, _ := convert(t, dt(profile.EncIEEEComplex, 16), dt(profile.EncASCIIComplex, 11), in, Options{})
	if string(text) != "  1.5    -2" {
		t.Errorf("complex text = %q", text)
	}
	back, rec := convert(t, dt(profile.EncASCIIComplex, 11), dt(profile.EncIEEEComplex, 16), text, Options{})
	if diff := cmp.Diff(in, back); diff != "" || len(rec.kinds) != 0 {
		t.Errorf("complex round trip (-want +got):\n%s %v", diff, rec.kinds)
	}
}

func TestUnsupportedPairs(t *testing.T) {
	if _, err := New(dt(profile.EncCharacter, 4), dt(profile.EncMSBInt, 4), Options{}); !errors.IsKind(err, errors.KindUnsupported) {
		t.Errorf("character to integer: %v", err)
	}
	if _, err := New(dt(profile.EncMSBInt, 3), dt(profile.EncLSBInt, 4), Options{}); !errors.IsKind(err, errors.KindUnknownDataType) {
		t.Errorf("3-byte integer: %v", err)
	}
	if _, err := New(dt(profile.EncVAXGReal, 4), dt(profile.EncPCReal, 4), Options{}); !errors.IsKind(err, errors.KindUnknownDataType) {
		t.Errorf("4-byte G float: %v", err)
	}
}
