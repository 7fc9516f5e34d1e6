// Package profile holds the conversion profile registry: the PDS data type
// names, the five predefined platform tables mapping every (type, width) to
// its native binary representation and ASCII field defaults, and the Config
// value that selects a platform, destination formats and alignment.
//
// Nothing here is process-wide mutable state. A Registry is a value; the
// overrides used by coercion (Collapse) and pure extraction (Identity) return
// new values:
//
//	reg := profile.NewRegistry(profile.MSBIEEE)
//	e, err := reg.Lookup("LSB_INTEGER", 4)   // e.Native = MSB_INTEGER/4
//	dbl := reg.CollapseToDouble()            // every numeric type -> IEEE_REAL/8
//
// Platforms:
//
//	lsb-ieee  little-endian IEEE, no extended reals
//	pc-ieee   little-endian IEEE with 10-byte extended reals
//	msb-ieee  big-endian IEEE
//	vax-d     VAX F and D floating, H for extended
//	vax-g     VAX F and G floating, H for extended
package profile
