package label

import (
	"strconv"
	"strings"
)

// ValueKind distinguishes the structured forms a keyword value can take.
type ValueKind uint8

const (
	KindScalar ValueKind = iota
	KindSequence
	KindSet
	KindPointer
)

// Value is a keyword value. Scalars keep their text as written so that
// numbers survive a round trip unchanged.
type Value struct {
	Text  string  // scalar text, unquoted
	Unit  string  // scalar unit without angle brackets, e.g. BYTES
	File  string  // pointer file name, empty for same-file pointers
	Items []Value // sequence or set members
	// Offset is the pointer location. Units follow OffsetUnit: RECORDS
	// (1-based record number, the default) or BYTES (1-based byte).
	Offset     int64
	OffsetUnit string
	Kind       ValueKind
}

// Text returns an unquoted scalar value.
func Text(s string) Value {
	return Value{Kind: KindScalar, Text: s}
}

// Int returns an integer scalar value.
func Int(n int64) Value {
	return Value{Kind: KindScalar, Text: strconv.FormatInt(n, 10)}
}

// Real returns a floating point scalar value.
func Real(f float64) Value {
	return Value{Kind: KindScalar, Text: strconv.FormatFloat(f, 'G', -1, 64)}
}

// WithUnit returns a scalar carrying a unit such as BYTES.
func WithUnit(v Value, unit string) Value {
	v.Unit = unit
	return v
}

// Seq returns a sequence value.
func Seq(items ...Value) Value {
	return Value{Kind: KindSequence, Items: items}
}

// Set returns a set value.
func Set(items ...Value) Value {
	return Value{Kind: KindSet, Items: items}
}

// Pointer returns a pointer value locating data in file at offset.
func Pointer(file string, offset int64, unit string) Value {
	return Value{Kind: KindPointer, File: file, Offset: offset, OffsetUnit: unit}
}

// ParseScalar splits scalar text such as `12 <BYTES>` into value and unit and
// strips surrounding quotes.
func ParseScalar(s string) Value {
	s = strings.TrimSpace(s)
	var unit string
	if i := strings.IndexByte(s, '<'); i >= 0 && strings.HasSuffix(s, ">") {
		unit = strings.TrimSpace(s[i+1 : len(s)-1])
		s = strings.TrimSpace(s[:i])
	}
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		s = s[1 : len(s)-1]
	}
	return Value{Kind: KindScalar, Text: s, Unit: unit}
}

// AsInt interprets a scalar as an integer. PDS based integers (2#1010#,
// 16#FF#) are accepted.
func (v Value) AsInt() (int64, bool) {
	if v.Kind != KindScalar {
		return 0, false
	}
	s := strings.TrimSpace(v.Text)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if base, digits, ok := splitBased(s); ok {
		if n, err := strconv.ParseInt(digits, base, 64); err == nil {
			return n, true
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return int64(f), true
	}
	return 0, false
}

func splitBased(s string) (int, string, bool) {
	hash := strings.IndexByte(s, '#')
	if hash <= 0 || !strings.HasSuffix(s, "#") || len(s) <= hash+2 {
		return 0, "", false
	}
	base, err := strconv.Atoi(s[:hash])
	if err != nil || base < 2 || base > 16 {
		return 0, "", false
	}
	return base, s[hash+1 : len(s)-1], true
}

// AsFloat interprets a scalar as a real number.
func (v Value) AsFloat() (float64, bool) {
	if v.Kind != KindScalar {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
	if err != nil {
		if n, ok := v.AsInt(); ok {
			return float64(n), true
		}
		return 0, false
	}
	return f, true
}

// AsInts interprets a sequence (or a lone scalar) as integers.
func (v Value) AsInts() ([]int64, bool) {
	if v.Kind == KindScalar {
		n, ok := v.AsInt()
		if !ok {
			return nil, false
		}
		return []int64{n}, true
	}
	if v.Kind != KindSequence && v.Kind != KindSet {
		return nil, false
	}
	out := make([]int64, len(v.Items))
	for i, it := range v.Items {
		n, ok := it.AsInt()
		if !ok {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

// Symbol returns scalar text normalised for comparison with enumerated
// values such as ROW_MAJOR or BINARY.
func (v Value) Symbol() string {
	return strings.ToUpper(strings.TrimSpace(v.Text))
}

// String renders the value in label notation.
func (v Value) String() string {
	switch v.Kind {
	case KindSequence, KindSet:
		open, closing := "(", ")"
		if v.Kind == KindSet {
			open, closing = "{", "}"
		}
		parts := make([]string, len(v.Items))
		for i, it := range v.Items {
			parts[i] = it.String()
		}
		return open + strings.Join(parts, ", ") + closing
	case KindPointer:
		loc := strconv.FormatInt(v.Offset, 10)
		if v.OffsetUnit == "BYTES" {
			loc += " <BYTES>"
		}
		if v.File == "" {
			return loc
		}
		if v.Offset == 0 {
			return strconv.Quote(v.File)
		}
		return "(" + strconv.Quote(v.File) + ", " + loc + ")"
	default:
		s := v.Text
		if needsQuotes(s) {
			s = strconv.Quote(s)
		}
		if v.Unit != "" {
			s += " <" + v.Unit + ">"
		}
		return s
	}
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.', r == '-', r == '+', r == '#', r == '/', r == ':':
		default:
			return true
		}
	}
	return false
}

// AsPointer normalises the accepted pointer spellings into a KindPointer
// value: `12`, `12 <BYTES>`, `"FILE.DAT"`, `("FILE.DAT", 12)` and
// `("FILE.DAT", 12 <BYTES>)`. Values that are none of these are returned
// unchanged.
func AsPointer(v Value) Value {
	switch v.Kind {
	case KindPointer:
		return v
	case KindScalar:
		if n, ok := v.AsInt(); ok {
			return Pointer("", n, pointerUnit(v.Unit))
		}
		if v.Text != "" {
			return Pointer(v.Text, 0, "RECORDS")
		}
	case KindSequence:
		if len(v.Items) == 2 && v.Items[0].Kind == KindScalar {
			if n, ok := v.Items[1].AsInt(); ok {
				return Pointer(v.Items[0].Text, n, pointerUnit(v.Items[1].Unit))
			}
		}
	}
	return v
}

func pointerUnit(u string) string {
	if strings.EqualFold(u, "BYTES") {
		return "BYTES"
	}
	return "RECORDS"
}

// IsPointer reports whether a keyword name uses the ^OBJECT pointer form.
func IsPointer(name string) bool {
	return strings.HasPrefix(strings.TrimSpace(name), "^")
}
