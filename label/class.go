package label

import "strings"

// Class is the closed set of object classes the engine understands.
type Class uint8

const (
	ClassOther Class = iota
	ClassRoot
	ClassTable
	ClassSpectrum
	ClassSeries
	ClassPalette
	ClassGazetteer
	ClassImage
	ClassQube
	ClassArray
	ClassCollection
	ClassElement
	ClassColumn
	ClassBitColumn
	ClassContainer
	ClassHistogram
	ClassHistory
)

var classNames = [...]string{
	ClassOther:      "OTHER",
	ClassRoot:       "ROOT",
	ClassTable:      "TABLE",
	ClassSpectrum:   "SPECTRUM",
	ClassSeries:     "SERIES",
	ClassPalette:    "PALETTE",
	ClassGazetteer:  "GAZETTEER",
	ClassImage:      "IMAGE",
	ClassQube:       "QUBE",
	ClassArray:      "ARRAY",
	ClassCollection: "COLLECTION",
	ClassElement:    "ELEMENT",
	ClassColumn:     "COLUMN",
	ClassBitColumn:  "BIT_COLUMN",
	ClassContainer:  "CONTAINER",
	ClassHistogram:  "HISTOGRAM",
	ClassHistory:    "HISTORY",
}

// suffix order matters: BIT_COLUMN must be tried before COLUMN
var classSuffixes = []Class{
	ClassBitColumn,
	ClassColumn,
	ClassTable,
	ClassSpectrum,
	ClassSeries,
	ClassPalette,
	ClassGazetteer,
	ClassImage,
	ClassQube,
	ClassArray,
	ClassCollection,
	ClassElement,
	ClassContainer,
	ClassHistogram,
	ClassHistory,
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// ParseClass maps an OBJECT name to its class. Names such as INDEX_TABLE or
// ENGINEERING_IMAGE resolve by suffix; unrecognised names yield ClassOther.
func ParseClass(name string) Class {
	name = strings.ToUpper(strings.TrimSpace(name))
	for c := ClassTable; c <= ClassHistory; c++ {
		if classNames[c] == name {
			return c
		}
	}
	for _, c := range classSuffixes {
		if strings.HasSuffix(name, "_"+classNames[c]) {
			return c
		}
	}
	if name == "ROOT" {
		return ClassRoot
	}
	return ClassOther
}

// IsTableLike reports whether objects of this class share the TABLE layout keywords.
func (c Class) IsTableLike() bool {
	switch c {
	case ClassTable, ClassSpectrum, ClassSeries, ClassPalette, ClassGazetteer:
		return true
	}
	return false
}
