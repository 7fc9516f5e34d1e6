// Package object implements edits on labelled data objects: whole-object
// conversion, coercion with rescale, sub-object and sub-table extraction,
// row and column deletion, table joins, image windows and table
// transposition.
//
// Every operation takes Objects and returns a new Object with its own label
// copy and buffer; inputs are never modified. Layout-changing edits are
// expressed through the transcoder: the edited label is rebuilt into a
// decomposition tree and the data streamed through it, so offsets, gaps and
// alignment of the surviving fields follow from the label alone.
//
//	o, err := object.Import(tree, tableID, data, profile.LSBIEEE)
//	be, err := object.Convert(o, profile.DefaultConfig().WithPlatform(profile.MSBIEEE))
//	slim, err := object.DeleteColumn(be, "QUALITY")
//
// Range and precision problems met while converting do not fail an
// operation. They are attached to the result as Issues.
package object
