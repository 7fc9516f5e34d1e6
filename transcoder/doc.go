// Package transcoder converts the raw bytes of a labelled data object
// between binary representations and ASCII.
//
// Conversion is planned once per object. A Builder walks the label and
// produces a decomposition tree: every node records its source layout, its
// destination layout and a repetition count. Value leaves carry a prepared
// converter; spares consume source bytes without output; fills write
// literal bytes (alignment padding, ASCII separators, row terminators).
//
//	┌──────────┐  Build   ┌──────────┐ Compress ┌──────────┐  Feed  ┌─────────┐
//	│  label   │ ───────► │   tree   │ ───────► │  folded  │ ─────► │  bytes  │
//	└──────────┘          └──────────┘          └──────────┘        └─────────┘
//	      ▲                     │ DeriveLabel
//	      └─────────────────────┘
//
// # Key Types
//
//	Builder  - derives trees from labels under a profile.Config
//	Node     - one step of a decomposition tree
//	Stream   - resumable cursor converting input slices into a buffer
//
// # Streaming
//
// A Stream accepts input in slices of any size:
//
//	s, _ := transcoder.NewStream(tree, dst)
//	for _, row := range rows {
//	    state, err := s.Feed(row) // StateAwaitingInput until the last row
//	}
//
// A slice may end between values or inside a spare, never inside a value.
// Range and precision problems do not stop the stream; they are collected
// per field and kind and returned by Issues.
//
// # Alignment
//
// Binary destinations follow profile.Alignment: Even starts multi-byte items
// on even offsets, RISC on multiples of their size up to 8, and records are
// padded to their widest alignment. Items inside one column are packed.
package transcoder
