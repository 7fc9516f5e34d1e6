// Package label holds the structural description of a dataset: a tree of
// OBJECT nodes, each with a class, an ordered keyword list and ordered
// children.
//
// Trees are arenas. Nodes are addressed by NodeID and structural edits (Cut,
// Paste, Remove, Graft) only relink indices, so an ID taken before an edit
// can never point at an unrelated node afterwards.
//
//	t := label.NewTree("TABLE")
//	t.Set(t.Root(), "ROWS", label.Int(3))
//	col := t.Add(t.Root(), "COLUMN")
//	t.Set(col, "DATA_TYPE", label.Text("LSB_INTEGER"))
//
// Parsing the ODL text grammar is not part of this package. LoadYAML and
// MarshalYAML provide a YAML form used for fixtures and tooling, and Dump
// renders OBJECT/END_OBJECT notation for diagnostics.
package label
