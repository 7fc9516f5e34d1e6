// Package pdscore converts labelled scientific data objects between
// platform representations.
//
// A label describes the layout of a data object: tables of typed columns,
// images, arrays, collections and qubes. The engine turns that description
// into a decomposition tree of typed leaves and streams the raw bytes
// through it, re-encoding every value for a target platform or as ASCII.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	pdscore/
//	├── label/           Arena label tree, keyword values, YAML form
//	├── profile/         Platform type registries and conversion profiles
//	├── transcoder/      Decomposition tree builder, compressor and stream
//	│   └── internal/    Value codecs and record layout
//	├── object/          Object edits: convert, coerce, extract, join, transpose
//	├── migrate/         Label schema generation migration
//	├── errors/          Structured error types and conversion issues
//	└── cmd/pdsconv/     Command line front end
//
// # Quick Start
//
// Convert a little-endian table to big-endian:
//
//	o, err := object.Import(tree, tableID, data, profile.LSBIEEE)
//	if err != nil {
//		return err
//	}
//	be, err := object.Convert(o, profile.DefaultConfig().WithPlatform(profile.MSBIEEE))
//
// Stream a large object in pieces:
//
//	n, err := transcoder.NewBuilder(cfg.Registry(), cfg).Build(tree, id, profile.Binary)
//	s, err := transcoder.NewStream(transcoder.Compress(n), dst)
//	for chunk := range chunks {
//		if state, err := s.Feed(chunk); err != nil || state == transcoder.StateComplete {
//			break
//		}
//	}
//
// # Conversion Issues
//
// Values that do not survive conversion (overflow, sign loss, precision
// loss, unparseable ASCII) are clamped or rounded and reported once per
// field and kind after the conversion finishes. They never abort it.
package pdscore
