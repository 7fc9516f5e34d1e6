package profile

import (
	"fmt"
	"strings"

	"github.com/wippyai/pdscore/errors"
)

// Platform identifies one predefined target profile.
type Platform uint8

const (
	LSBIEEE Platform = iota // little-endian IEEE (x86-64, ARM)
	PCIEEE                  // PC little-endian IEEE with 10-byte extended reals
	MSBIEEE                 // big-endian IEEE (SPARC, 68k, POWER)
	VAXD                    // VAX with D-floating doubles
	VAXG                    // VAX with G-floating doubles
	numPlatforms
)

var platformNames = [...]string{
	LSBIEEE: "lsb-ieee",
	PCIEEE:  "pc-ieee",
	MSBIEEE: "msb-ieee",
	VAXD:    "vax-d",
	VAXG:    "vax-g",
}

func (p Platform) String() string {
	if p < numPlatforms {
		return platformNames[p]
	}
	return "unknown"
}

// ParsePlatform resolves a platform by name.
func ParsePlatform(name string) (Platform, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for p := Platform(0); p < numPlatforms; p++ {
		if platformNames[p] == name {
			return p, nil
		}
	}
	return 0, errors.InvalidArgument(errors.PhaseProfile, "unknown platform %q", name)
}

// Platforms returns every predefined platform.
func Platforms() []Platform {
	out := make([]Platform, 0, numPlatforms)
	for p := Platform(0); p < numPlatforms; p++ {
		out = append(out, p)
	}
	return out
}

// Entry is one row of a platform's type conversion table.
type Entry struct {
	QCode    string
	Source   DataType
	Native   DataType // binary representation on the platform
	ASCII    DataType // text representation; Width is the default field width
	MinASCII int      // narrowest field that still round-trips
}

// Supported reports whether the entry is real rather than the unknown sentinel.
func (e Entry) Supported() bool {
	return e.QCode != unknownQCode
}

const unknownQCode = "?"

// unknownEntry is returned for type/width pairs with no table row.
var unknownEntry = Entry{QCode: unknownQCode}

type slot struct {
	enc   Encoding
	width int // 0 matches any width
}

type platformSpec struct {
	ints, uints Encoding
	bits        Encoding
	reals       map[int]DataType
}

var platformSpecs = [numPlatforms]platformSpec{
	LSBIEEE: {
		ints: EncLSBInt, uints: EncLSBUint, bits: EncLSBBits,
		reals: map[int]DataType{
			4: Canonical(EncPCReal, 4), 8: Canonical(EncPCReal, 8),
			10: Canonical(EncPCReal, 8), 16: Canonical(EncPCReal, 8),
		},
	},
	PCIEEE: {
		ints: EncLSBInt, uints: EncLSBUint, bits: EncLSBBits,
		reals: map[int]DataType{
			4: Canonical(EncPCReal, 4), 8: Canonical(EncPCReal, 8),
			10: Canonical(EncPCReal, 10), 16: Canonical(EncPCReal, 10),
		},
	},
	MSBIEEE: {
		ints: EncMSBInt, uints: EncMSBUint, bits: EncMSBBits,
		reals: map[int]DataType{
			4: Canonical(EncIEEEReal, 4), 8: Canonical(EncIEEEReal, 8),
			10: Canonical(EncIEEEReal, 10), 16: Canonical(EncIEEEReal, 10),
		},
	},
	VAXD: {
		ints: EncLSBInt, uints: EncLSBUint, bits: EncLSBBits,
		reals: map[int]DataType{
			4: Canonical(EncVAXReal, 4), 8: Canonical(EncVAXReal, 8),
			10: Canonical(EncVAXReal, 16), 16: Canonical(EncVAXReal, 16),
		},
	},
	VAXG: {
		ints: EncLSBInt, uints: EncLSBUint, bits: EncLSBBits,
		reals: map[int]DataType{
			4: Canonical(EncVAXReal, 4), 8: Canonical(EncVAXGReal, 8),
			10: Canonical(EncVAXReal, 16), 16: Canonical(EncVAXReal, 16),
		},
	},
}

// Default ASCII field widths and the narrowest usable width per binary width.
var (
	asciiIntWidth  = map[int]int{1: 5, 2: 7, 4: 12, 8: 21}
	asciiIntMin    = map[int]int{1: 4, 2: 6, 4: 11, 8: 20}
	asciiRealWidth = map[int]int{4: 15, 8: 24, 10: 28, 16: 28}
)

const asciiRealMin = 8

// realWidths lists the widths each real family supports.
var realWidths = map[Encoding][]int{
	EncIEEEReal: {4, 8, 10},
	EncPCReal:   {4, 8, 10},
	EncVAXReal:  {4, 8, 16},
	EncVAXGReal: {8},
}

var tables [numPlatforms]map[slot]Entry

func init() {
	for p := Platform(0); p < numPlatforms; p++ {
		tables[p] = buildTable(platformSpecs[p])
	}
}

func buildTable(ps platformSpec) map[slot]Entry {
	t := make(map[slot]Entry)
	add := func(src, native, ascii DataType, minASCII int) {
		t[slot{src.Enc, src.Width}] = Entry{
			QCode:    QCode(native),
			Source:   src,
			Native:   native,
			ASCII:    ascii,
			MinASCII: minASCII,
		}
	}

	for _, w := range []int{1, 2, 4, 8} {
		ascii := Canonical(EncASCIIInt, asciiIntWidth[w])
		for _, enc := range []Encoding{EncMSBInt, EncLSBInt} {
			add(Canonical(enc, w), Canonical(ps.ints, w), ascii, asciiIntMin[w])
		}
		for _, enc := range []Encoding{EncMSBUint, EncLSBUint} {
			add(Canonical(enc, w), Canonical(ps.uints, w), ascii, asciiIntMin[w])
		}
	}

	for enc, widths := range realWidths {
		for _, w := range widths {
			native := ps.reals[w]
			add(Canonical(enc, w), native, Canonical(EncASCIIReal, asciiRealWidth[w]), asciiRealMin)

			cnative := Canonical(native.Enc.ComplexOf(), native.Width*2)
			cascii := Canonical(EncASCIIComplex, asciiRealWidth[w]*2+1)
			add(Canonical(enc.ComplexOf(), w*2), cnative, cascii, asciiRealMin*2+1)
		}
	}

	// Width-independent families. A zero width in Native or ASCII means
	// "derived from the source width" and is resolved by Lookup.
	for _, enc := range []Encoding{EncMSBBits, EncLSBBits} {
		add(Canonical(enc, 0), Canonical(ps.bits, 0), Canonical(EncASCIIBits, 0), 0)
	}
	add(Canonical(EncBCD, 0), Canonical(EncBCD, 0), Canonical(EncASCIIInt, 0), 0)
	add(Canonical(EncCharacter, 0), Canonical(EncCharacter, 0), Canonical(EncCharacter, 0), 1)
	add(Canonical(EncASCIIInt, 0), Canonical(ps.ints, 4), Canonical(EncASCIIInt, 0), 1)
	add(Canonical(EncASCIIReal, 0), ps.reals[8], Canonical(EncASCIIReal, 0), 1)
	add(Canonical(EncASCIIComplex, 0), Canonical(ps.reals[8].Enc.ComplexOf(), ps.reals[8].Width*2), Canonical(EncASCIIComplex, 0), 3)
	add(Canonical(EncASCIIBits, 0), Canonical(ps.bits, 0), Canonical(EncASCIIBits, 0), 1)
	add(Canonical(EncSpare, 0), Canonical(EncSpare, 0), Canonical(EncSpare, 0), 0)
	return t
}

// QCode returns the identifier of a native binary representation.
func QCode(d DataType) string {
	switch d.Enc {
	case EncMSBInt:
		return fmt.Sprintf("int%d-msb", d.Width)
	case EncLSBInt:
		return fmt.Sprintf("int%d-lsb", d.Width)
	case EncMSBUint:
		return fmt.Sprintf("uint%d-msb", d.Width)
	case EncLSBUint:
		return fmt.Sprintf("uint%d-lsb", d.Width)
	case EncIEEEReal:
		return fmt.Sprintf("ieee%d-msb", d.Width)
	case EncPCReal:
		return fmt.Sprintf("ieee%d-lsb", d.Width)
	case EncVAXReal:
		switch d.Width {
		case 4:
			return "vaxf4"
		case 8:
			return "vaxd8"
		default:
			return fmt.Sprintf("vaxh%d", d.Width)
		}
	case EncVAXGReal:
		return fmt.Sprintf("vaxg%d", d.Width)
	case EncIEEEComplex, EncPCComplex, EncVAXComplex, EncVAXGComplex:
		return "c" + QCode(Canonical(d.Enc.ComponentOf(), d.Width/2))
	case EncMSBBits:
		return "bits-msb"
	case EncLSBBits:
		return "bits-lsb"
	case EncBCD:
		return "bcd"
	case EncCharacter:
		return "char"
	case EncASCIIInt:
		return "ascii-int"
	case EncASCIIReal:
		return "ascii-real"
	case EncASCIIComplex:
		return "ascii-complex"
	case EncASCIIBits:
		return "ascii-bits"
	case EncSpare:
		return "spare"
	}
	return unknownQCode
}

// Registry resolves data types against one platform table. It is an
// immutable value: overrides such as Collapse and Identity return a new
// Registry and leave the receiver untouched.
type Registry struct {
	collapse *DataType
	platform Platform
	identity bool
}

// NewRegistry returns the registry for a platform.
func NewRegistry(p Platform) Registry {
	return Registry{platform: p}
}

// Platform returns the registry's platform.
func (r Registry) Platform() Platform {
	return r.platform
}

// IsIdentity reports whether the registry maps every type onto itself.
func (r Registry) IsIdentity() bool {
	return r.identity
}

// Lookup returns the conversion entry for a binary field of a type and
// byte width.
func (r Registry) Lookup(typeName string, width int) (Entry, error) {
	return r.LookupIn(typeName, width, Binary)
}

// LookupIn returns the conversion entry for a field stored in interchange
// format f. See TypeIn for how ASCII fields resolve binary type names.
func (r Registry) LookupIn(typeName string, width int, f Format) (Entry, error) {
	src := TypeIn(typeName, width, f)
	e, err := r.base(src)
	if err != nil {
		return e, err
	}
	switch {
	case r.identity:
		e.Native = src
		e.QCode = QCode(Canonical(src.Enc, width))
		if src.Enc.IsASCII() {
			e.ASCII = src
		}
	case r.collapse != nil && src.Enc.IsNumeric():
		e.Native = *r.collapse
		e.QCode = QCode(e.Native)
	case r.collapse != nil && src.Enc.IsComplex():
		target := *r.collapse
		if !target.Enc.IsReal() {
			return unknownEntry, errors.New(errors.PhaseProfile, errors.KindUnsupported).
				DataType(src.Name).
				Detail("complex data cannot be coerced to %s", target.Name).
				Build()
		}
		e.Native = Canonical(target.Enc.ComplexOf(), target.Width*2)
		e.QCode = QCode(e.Native)
	}
	return e, nil
}

func (r Registry) base(src DataType) (Entry, error) {
	if src.Enc == EncUnknown {
		return unknownEntry, errors.New(errors.PhaseProfile, errors.KindUnknownDataType).
			DataType(src.Name).
			Detail("unrecognized data type").
			Build()
	}
	if src.Width <= 0 && src.Enc != EncSpare {
		return unknownEntry, errors.UnknownDataType(errors.PhaseProfile, nil, src.Name, src.Width)
	}
	table := tables[r.platform]
	e, ok := table[slot{src.Enc, src.Width}]
	if !ok {
		e, ok = table[slot{src.Enc, 0}]
		if !ok {
			return unknownEntry, errors.UnknownDataType(errors.PhaseProfile, nil, src.Name, src.Width)
		}
		e = resolveWildcard(e, src)
	}
	e.Source = src
	return e, nil
}

func resolveWildcard(e Entry, src DataType) Entry {
	w := src.Width
	switch src.Enc {
	case EncMSBBits, EncLSBBits:
		e.Native.Width = w
		e.ASCII.Width = 2*w + 1
		e.MinASCII = 2 * w
	case EncBCD:
		e.Native.Width = w
		e.ASCII.Width = 2*w + 1
		e.MinASCII = 2 * w
	case EncASCIIInt:
		if w > asciiIntWidth[4] {
			e.Native.Width = 8
		}
		e.ASCII.Width = w
	case EncASCIIBits:
		n := w / 2
		if n < 1 {
			n = 1
		}
		e.Native.Width = n
		e.ASCII.Width = w
	case EncCharacter, EncASCIIReal, EncASCIIComplex, EncSpare:
		if e.Native.Width == 0 {
			e.Native.Width = w
		}
		e.ASCII.Width = w
	}
	if src.Enc == EncCharacter {
		e.Native.Name = src.Name
		e.ASCII.Name = src.Name
	}
	e.QCode = QCode(e.Native)
	return e
}

// Collapse returns a registry that maps every numeric source type onto the
// given native type. Complex sources map onto the complex counterpart of a
// real target; non-numeric sources keep their usual mapping.
func (r Registry) Collapse(typeName string, width int) (Registry, error) {
	target := Type(typeName, width)
	if !target.Enc.IsInteger() && !target.Enc.IsReal() {
		return r, errors.New(errors.PhaseProfile, errors.KindUnsupported).
			DataType(target.Name).
			Detail("coercion target must be a binary integer or real").
			Build()
	}
	if _, err := NewRegistry(r.platform).base(target); err != nil {
		return r, err
	}
	target.Name = target.Enc.String()
	out := r
	out.identity = false
	out.collapse = &target
	return out, nil
}

// CollapseToDouble returns a registry mapping every numeric type onto the
// platform's native 8-byte real.
func (r Registry) CollapseToDouble() Registry {
	d := NativeDouble(r.platform)
	out, _ := r.Collapse(d.Name, d.Width)
	return out
}

// Identity returns a registry that maps every type onto itself, for pure
// extraction without conversion.
func (r Registry) Identity() Registry {
	out := r
	out.identity = true
	out.collapse = nil
	return out
}

// NativeDouble returns the platform's native 8-byte real type.
func NativeDouble(p Platform) DataType {
	if p >= numPlatforms {
		p = LSBIEEE
	}
	return platformSpecs[p].reals[8]
}
