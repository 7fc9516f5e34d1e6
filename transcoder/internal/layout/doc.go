// Package layout computes destination offsets and alignment padding for
// converted binary records.
//
// # Layout Rules
//
// Alignment applies only to binary numeric items:
//   - None: items are packed
//   - Even: multi-byte items start on even offsets
//   - RISC: items start on multiples of their natural size (complex values
//     use their component size, 10-byte reals align to 8); records are
//     padded to their strictest item alignment
//
// Character data, bit strings and BCD are byte streams and never move.
//
// # Usage
//
//	calc := layout.NewCalculator(profile.AlignRISC)
//	rec := calc.Record()
//	off, pad := rec.Field(calc.Item(t))
//	info, tail := rec.Close()
//
// This package is internal to the transcoder.
package layout
