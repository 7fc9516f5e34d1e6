package label

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleTable() (*Tree, NodeID, NodeID) {
	t := NewTree("ROOT")
	tbl := t.Add(t.Root(), "INDEX_TABLE")
	t.Set(tbl, "ROWS", Int(3))
	t.Set(tbl, "ROW_BYTES", Int(8))
	a := t.Add(tbl, "COLUMN")
	t.Set(a, "NAME", Text("A"))
	t.Set(a, "DATA_TYPE", Text("LSB_INTEGER"))
	b := t.Add(tbl, "COLUMN")
	t.Set(b, "NAME", Text("B"))
	return t, tbl, b
}

func TestParseClass(t *testing.T) {
	tests := []struct {
		name string
		want Class
	}{
		{"TABLE", ClassTable},
		{"index_table", ClassTable},
		{"ENGINEERING_IMAGE", ClassImage},
		{"BIT_COLUMN", ClassBitColumn},
		{"STATUS_BIT_COLUMN", ClassBitColumn},
		{"COLUMN", ClassColumn},
		{"SPECTRUM", ClassSpectrum},
		{"FILE", ClassOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseClass(tt.name); got != tt.want {
				t.Errorf("ParseClass(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}

	if !ClassGazetteer.IsTableLike() || ClassImage.IsTableLike() {
		t.Error("IsTableLike classification wrong")
	}
}

func TestKeywordAliases(t *testing.T) {
	tr := NewTree("IMAGE")
	tr.Set(tr.Root(), "IMAGE_LINES", Int(10))

	n, ok := tr.Int(tr.Root(), "LINES")
	if !ok || n != 10 {
		t.Fatalf("LINES via alias = %d, %v", n, ok)
	}

	// Set through the canonical name replaces the aliased keyword in place.
	tr.Set(tr.Root(), "LINES", Int(11))
	kws := tr.Keywords(tr.Root())
	if len(kws) != 1 || kws[0].Name != "IMAGE_LINES" || kws[0].Value.Text != "11" {
		t.Errorf("keywords = %+v", kws)
	}
}

func TestKeywordEdits(t *testing.T) {
	tr := NewTree("TABLE")
	r := tr.Root()
	tr.Set(r, "ROWS", Int(1))
	tr.Set(r, "COLUMNS", Int(2))
	tr.Insert(r, 0, Keyword{Name: "INTERCHANGE_FORMAT", Value: Text("BINARY")})

	if !tr.Rename(r, "ROWS", "TABLE_ROWS") {
		t.Fatal("rename failed")
	}
	if !tr.Delete(r, "COLUMNS") {
		t.Fatal("delete failed")
	}
	got := []string{}
	for _, kw := range tr.Keywords(r) {
		got = append(got, kw.Name)
	}
	if diff := cmp.Diff([]string{"INTERCHANGE_FORMAT", "TABLE_ROWS"}, got); diff != "" {
		t.Errorf("keywords mismatch (-want +got):\n%s", diff)
	}
}

func TestCutPaste(t *testing.T) {
	tr, tbl, b := sampleTable()

	if err := tr.Cut(b); err != nil {
		t.Fatal(err)
	}
	if tr.NumChildren(tbl) != 1 || tr.Parent(b) != Nil {
		t.Fatal("cut did not detach")
	}
	if err := tr.Paste(b, tbl, 0); err != nil {
		t.Fatal(err)
	}
	kids := tr.Children(tbl)
	if kids[0] != b {
		t.Errorf("pasted node not first: %v", kids)
	}

	if err := tr.Paste(b, tbl, 0); err == nil {
		t.Error("pasting an attached node should fail")
	}
	if err := tr.Cut(tbl); err != nil {
		t.Fatal(err)
	}
	if err := tr.Paste(tbl, b, -1); err == nil {
		t.Error("pasting a node under its own descendant should fail")
	}
	if err := tr.Cut(tr.Root()); err == nil {
		t.Error("cutting the root should fail")
	}
}

func TestRemoveKeepsIDsStable(t *testing.T) {
	tr, tbl, b := sampleTable()
	a := tr.Children(tbl)[0]

	if err := tr.Remove(b); err != nil {
		t.Fatal(err)
	}
	if tr.Valid(b) {
		t.Error("removed node still valid")
	}
	c := tr.Add(tbl, "COLUMN")
	if c == b {
		t.Error("removed slot was reused")
	}
	if tr.Name(a) != "A" {
		t.Errorf("sibling disturbed: %q", tr.Name(a))
	}
}

func TestCopySubtreeAndGraft(t *testing.T) {
	tr, tbl, _ := sampleTable()

	cp, ids := tr.CopySubtree(tbl)
	if cp.ClassName(cp.Root()) != "INDEX_TABLE" || cp.Class(cp.Root()) != ClassTable {
		t.Fatalf("root = %s", cp.ClassName(cp.Root()))
	}
	if len(ids) != 3 {
		t.Errorf("id map has %d entries, want 3", len(ids))
	}

	// Mutating the copy must not touch the original.
	cp.Set(cp.Root(), "ROWS", Int(99))
	if n, _ := tr.Int(tbl, "ROWS"); n != 3 {
		t.Errorf("original ROWS changed to %d", n)
	}

	dst := NewTree("ROOT")
	g := dst.Graft(cp, cp.Root(), dst.Root())
	if dst.NumChildren(g) != 2 || dst.Parent(g) != dst.Root() {
		t.Error("graft did not attach subtree")
	}
}

func TestPathAndFind(t *testing.T) {
	tr, tbl, b := sampleTable()

	if diff := cmp.Diff([]string{"ROOT", "INDEX_TABLE", "B"}, tr.Path(b)); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
	if got := tr.FindChild(tbl, "b"); got != b {
		t.Errorf("FindChild = %d, want %d", got, b)
	}
	found := tr.Find(tr.Root(), func(id NodeID) bool {
		return tr.Symbol(id, "DATA_TYPE") == "LSB_INTEGER"
	})
	if tr.Name(found) != "A" {
		t.Errorf("Find returned %q", tr.Name(found))
	}
	if tr.IndexOf(b) != 1 {
		t.Errorf("IndexOf = %d", tr.IndexOf(b))
	}
}

func TestValueParsing(t *testing.T) {
	v := ParseScalar(`12 <BYTES>`)
	if v.Text != "12" || v.Unit != "BYTES" {
		t.Errorf("ParseScalar = %+v", v)
	}
	if n, ok := Text("16#FF#").AsInt(); !ok || n != 255 {
		t.Errorf("based int = %d, %v", n, ok)
	}
	if f, ok := Text("1.5E2").AsFloat(); !ok || f != 150 {
		t.Errorf("float = %v, %v", f, ok)
	}
	ints, ok := Seq(Int(2), Int(3)).AsInts()
	if !ok || len(ints) != 2 || ints[1] != 3 {
		t.Errorf("AsInts = %v, %v", ints, ok)
	}

	p := AsPointer(Seq(Text("DATA.TAB"), WithUnit(Int(513), "BYTES")))
	if p.Kind != KindPointer || p.File != "DATA.TAB" || p.Offset != 513 || p.OffsetUnit != "BYTES" {
		t.Errorf("AsPointer = %+v", p)
	}
	if got := p.String(); got != `("DATA.TAB", 513 <BYTES>)` {
		t.Errorf("pointer String = %s", got)
	}
}

const yamlTable = `
object: TABLE
keywords:
  - INTERCHANGE_FORMAT: BINARY
  - ROWS: 3
  - ROW_BYTES: 4
  - DESCRIPTION: "Test table"
  - ^STRUCTURE: {file: "ROW.FMT"}
  - AXIS_ITEMS: [2, 3]
objects:
  - object: COLUMN
    keywords:
      - NAME: VALUE
      - DATA_TYPE: LSB_INTEGER
      - START_BYTE: 1
      - BYTES: "4 <BYTES>"
`

func TestYAMLRoundTrip(t *testing.T) {
	tr, err := LoadYAML([]byte(yamlTable))
	if err != nil {
		t.Fatal(err)
	}
	r := tr.Root()
	if tr.Class(r) != ClassTable || tr.NumChildren(r) != 1 {
		t.Fatalf("unexpected tree: %s", tr.Dump(r))
	}
	ptr, _ := tr.Lookup(r, "^STRUCTURE")
	if ptr.Kind != KindPointer || ptr.File != "ROW.FMT" {
		t.Errorf("pointer = %+v", ptr)
	}
	col := tr.Children(r)[0]
	if n, _ := tr.Int(col, "BYTES"); n != 4 {
		t.Errorf("BYTES = %d", n)
	}

	out, err := tr.MarshalYAML(r)
	if err != nil {
		t.Fatal(err)
	}
	again, err := LoadYAML(out)
	if err != nil {
		t.Fatalf("reload: %v\n%s", err, out)
	}
	if diff := cmp.Diff(tr.Dump(r), again.Dump(again.Root())); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDump(t *testing.T) {
	tr, tbl, _ := sampleTable()
	out := tr.Dump(tbl)
	for _, s := range []string{"OBJECT = INDEX_TABLE", "ROWS      = 3", "NAME      = A", "END_OBJECT = COLUMN"} {
		if !strings.Contains(out, s) {
			t.Errorf("dump missing %q:\n%s", s, out)
		}
	}
}
