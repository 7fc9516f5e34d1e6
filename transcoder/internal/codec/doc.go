// Package codec converts single values between PDS binary and ASCII
// representations.
//
// Supported representations:
//   - Integers: signed and unsigned, 1/2/4/8 bytes, either byte order
//   - IEEE reals: 4/8 bytes and the 10-byte x87 extended format, either order
//   - VAX reals: F (4), D (8), G (8) and H (16) floating
//   - Complex pairs of any of the reals above
//   - Bit strings, packed BCD and CHARACTER
//   - ASCII integer, real, complex and hexadecimal bit string fields
//
// Values that do not survive narrowing are clamped or rounded and reported
// through a Reporter; they never fail a conversion.
//
// This package is internal to the transcoder.
package codec
