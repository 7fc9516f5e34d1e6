package profile

import "strings"

// Encoding is the binary or textual representation family of a data type.
type Encoding uint8

const (
	EncUnknown Encoding = iota
	EncMSBInt
	EncLSBInt
	EncMSBUint
	EncLSBUint
	EncIEEEReal // big-endian IEEE 754, 10 bytes is x87 extended
	EncPCReal   // little-endian IEEE 754
	EncVAXReal  // VAX F (4), D (8), H (16)
	EncVAXGReal // VAX G (8)
	EncIEEEComplex
	EncPCComplex
	EncVAXComplex
	EncVAXGComplex
	EncMSBBits
	EncLSBBits
	EncBCD
	EncCharacter
	EncASCIIInt
	EncASCIIReal
	EncASCIIComplex
	EncASCIIBits
	EncSpare
)

var encodingNames = [...]string{
	EncUnknown:      "unknown",
	EncMSBInt:       "MSB_INTEGER",
	EncLSBInt:       "LSB_INTEGER",
	EncMSBUint:      "MSB_UNSIGNED_INTEGER",
	EncLSBUint:      "LSB_UNSIGNED_INTEGER",
	EncIEEEReal:     "IEEE_REAL",
	EncPCReal:       "PC_REAL",
	EncVAXReal:      "VAX_REAL",
	EncVAXGReal:     "VAXG_REAL",
	EncIEEEComplex:  "IEEE_COMPLEX",
	EncPCComplex:    "PC_COMPLEX",
	EncVAXComplex:   "VAX_COMPLEX",
	EncVAXGComplex:  "VAXG_COMPLEX",
	EncMSBBits:      "MSB_BIT_STRING",
	EncLSBBits:      "LSB_BIT_STRING",
	EncBCD:          "BCD",
	EncCharacter:    "CHARACTER",
	EncASCIIInt:     "ASCII_INTEGER",
	EncASCIIReal:    "ASCII_REAL",
	EncASCIIComplex: "ASCII_COMPLEX",
	EncASCIIBits:    "ASCII_BIT_STRING",
	EncSpare:        "N/A",
}

func (e Encoding) String() string {
	if int(e) < len(encodingNames) {
		return encodingNames[e]
	}
	return "unknown"
}

// IsASCII reports whether values of this encoding are text.
func (e Encoding) IsASCII() bool {
	switch e {
	case EncCharacter, EncASCIIInt, EncASCIIReal, EncASCIIComplex, EncASCIIBits:
		return true
	}
	return false
}

// IsNumeric reports whether the encoding holds a number that can be rescaled.
func (e Encoding) IsNumeric() bool {
	switch e {
	case EncMSBInt, EncLSBInt, EncMSBUint, EncLSBUint,
		EncIEEEReal, EncPCReal, EncVAXReal, EncVAXGReal,
		EncBCD, EncASCIIInt, EncASCIIReal:
		return true
	}
	return false
}

// IsInteger reports whether the encoding is a binary integer.
func (e Encoding) IsInteger() bool {
	switch e {
	case EncMSBInt, EncLSBInt, EncMSBUint, EncLSBUint:
		return true
	}
	return false
}

// IsUnsigned reports whether the encoding is an unsigned binary integer.
func (e Encoding) IsUnsigned() bool {
	return e == EncMSBUint || e == EncLSBUint
}

// IsReal reports whether the encoding is a binary floating point real.
func (e Encoding) IsReal() bool {
	switch e {
	case EncIEEEReal, EncPCReal, EncVAXReal, EncVAXGReal:
		return true
	}
	return false
}

// IsComplex reports whether the encoding is a pair of reals.
func (e Encoding) IsComplex() bool {
	switch e {
	case EncIEEEComplex, EncPCComplex, EncVAXComplex, EncVAXGComplex, EncASCIIComplex:
		return true
	}
	return false
}

// IsBits reports whether the encoding is a bit string.
func (e Encoding) IsBits() bool {
	return e == EncMSBBits || e == EncLSBBits || e == EncASCIIBits
}

// ComponentOf returns the real encoding of one half of a complex encoding.
func (e Encoding) ComponentOf() Encoding {
	switch e {
	case EncIEEEComplex:
		return EncIEEEReal
	case EncPCComplex:
		return EncPCReal
	case EncVAXComplex:
		return EncVAXReal
	case EncVAXGComplex:
		return EncVAXGReal
	case EncASCIIComplex:
		return EncASCIIReal
	}
	return EncUnknown
}

// ComplexOf returns the complex encoding whose halves use e.
func (e Encoding) ComplexOf() Encoding {
	switch e {
	case EncIEEEReal:
		return EncIEEEComplex
	case EncPCReal:
		return EncPCComplex
	case EncVAXReal:
		return EncVAXComplex
	case EncVAXGReal:
		return EncVAXGComplex
	case EncASCIIReal:
		return EncASCIIComplex
	}
	return EncUnknown
}

// DataType is a named representation with a byte width.
type DataType struct {
	Name  string
	Enc   Encoding
	Width int
}

func (d DataType) String() string {
	return d.Name
}

// typeNames lists every PDS data type name accepted in labels.
var typeNames = map[string]Encoding{
	"MSB_INTEGER":          EncMSBInt,
	"INTEGER":              EncMSBInt,
	"SUN_INTEGER":          EncMSBInt,
	"MAC_INTEGER":          EncMSBInt,
	"LSB_INTEGER":          EncLSBInt,
	"PC_INTEGER":           EncLSBInt,
	"VAX_INTEGER":          EncLSBInt,
	"MSB_UNSIGNED_INTEGER": EncMSBUint,
	"UNSIGNED_INTEGER":     EncMSBUint,
	"SUN_UNSIGNED_INTEGER": EncMSBUint,
	"MAC_UNSIGNED_INTEGER": EncMSBUint,
	"LSB_UNSIGNED_INTEGER": EncLSBUint,
	"PC_UNSIGNED_INTEGER":  EncLSBUint,
	"VAX_UNSIGNED_INTEGER": EncLSBUint,
	"IEEE_REAL":            EncIEEEReal,
	"REAL":                 EncIEEEReal,
	"FLOAT":                EncIEEEReal,
	"SUN_REAL":             EncIEEEReal,
	"MAC_REAL":             EncIEEEReal,
	"PC_REAL":              EncPCReal,
	"VAX_REAL":             EncVAXReal,
	"VAX_DOUBLE":           EncVAXReal,
	"VAXG_REAL":            EncVAXGReal,
	"IEEE_COMPLEX":         EncIEEEComplex,
	"COMPLEX":              EncIEEEComplex,
	"SUN_COMPLEX":          EncIEEEComplex,
	"MAC_COMPLEX":          EncIEEEComplex,
	"PC_COMPLEX":           EncPCComplex,
	"VAX_COMPLEX":          EncVAXComplex,
	"VAXG_COMPLEX":         EncVAXGComplex,
	"MSB_BIT_STRING":       EncMSBBits,
	"BIT_STRING":           EncMSBBits,
	"SUN_BIT_STRING":       EncMSBBits,
	"LSB_BIT_STRING":       EncLSBBits,
	"VAX_BIT_STRING":       EncLSBBits,
	"BCD":                  EncBCD,
	"CHARACTER":            EncCharacter,
	"DATE":                 EncCharacter,
	"TIME":                 EncCharacter,
	"BOOLEAN":              EncCharacter,
	"ASCII_INTEGER":        EncASCIIInt,
	"ASCII_REAL":           EncASCIIReal,
	"ASCII_COMPLEX":        EncASCIIComplex,
	"ASCII_BIT_STRING":     EncASCIIBits,
	"N/A":                  EncSpare,
	"SPARE":                EncSpare,
}

// ResolveType returns the encoding of a PDS data type name, or EncUnknown.
func ResolveType(name string) Encoding {
	return typeNames[strings.ToUpper(strings.TrimSpace(name))]
}

// Type builds a DataType from a label type name and byte width.
func Type(name string, width int) DataType {
	name = strings.ToUpper(strings.TrimSpace(name))
	return DataType{Name: name, Enc: ResolveType(name), Width: width}
}

// TypeIn builds a DataType for a field stored in interchange format f.
// ASCII fields read binary family names (INTEGER, REAL, SUN_INTEGER, ...)
// as the text form of that family; the label name is kept.
func TypeIn(name string, width int, f Format) DataType {
	d := Type(name, width)
	if f != ASCII {
		return d
	}
	switch {
	case d.Enc.IsInteger():
		d.Enc = EncASCIIInt
	case d.Enc.IsReal():
		d.Enc = EncASCIIReal
	case d.Enc == EncIEEEComplex, d.Enc == EncPCComplex, d.Enc == EncVAXComplex, d.Enc == EncVAXGComplex:
		d.Enc = EncASCIIComplex
	case d.Enc == EncMSBBits, d.Enc == EncLSBBits:
		d.Enc = EncASCIIBits
	}
	return d
}

// Canonical returns the DataType named by its encoding's canonical name.
func Canonical(enc Encoding, width int) DataType {
	return DataType{Name: enc.String(), Enc: enc, Width: width}
}
