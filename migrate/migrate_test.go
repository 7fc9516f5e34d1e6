package migrate

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/pdscore/errors"
	"github.com/wippyai/pdscore/label"
)

func names(kws []label.Keyword) []string {
	out := make([]string, len(kws))
	for i, kw := range kws {
		out[i] = kw.Name
	}
	return out
}

func TestDetect(t *testing.T) {
	flat := label.NewTree("ROOT")
	flat.Set(flat.Root(), "FILE_TYPE", label.Text("TABLE"))

	sfdu := label.NewTree("ROOT")
	sfdu.Set(sfdu.Root(), "CCSD3ZF0000100000001NJPL3IF0PDS200000001", label.Text("SFDU_LABEL"))
	sfdu.Add(sfdu.Root(), "TABLE")

	current := label.NewTree("ROOT")
	current.Set(current.Root(), "PDS_VERSION_ID", label.Text("PDS3"))
	current.Add(current.Root(), "IMAGE")

	// FILE_TYPE alongside sub-objects is not a flat label
	nested := label.NewTree("ROOT")
	nested.Set(nested.Root(), "FILE_TYPE", label.Text("TABLE"))
	nested.Add(nested.Root(), "TABLE")

	tests := []struct {
		name string
		tree *label.Tree
		want Generation
	}{
		{"flat", flat, FileType},
		{"sfdu", sfdu, SFDU},
		{"current", current, Current},
		{"nested file type", nested, Current},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.tree); got != tt.want {
				t.Errorf("Detect = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMigrateFlatLabel(t *testing.T) {
	in := label.NewTree("ROOT")
	r := in.Root()
	in.Set(r, "RECORD_TYPE", label.Text("FIXED_LENGTH"))
	in.Set(r, "RECORD_BYTES", label.Int(8))
	in.Set(r, "LABEL_RECORDS", label.Int(4))
	in.Set(r, "FILE_TYPE", label.Text("TABLE"))
	in.Set(r, "TABLE_ROWS", label.Int(10))
	in.Set(r, "TABLE_ROW_BYTES", label.Int(8))
	in.Set(r, "SPACECRAFT_NAME", label.Text("VOYAGER_2"))
	before := in.Dump(r)

	out, rep, err := Migrate(in)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Generation != FileType || !rep.Changed() {
		t.Errorf("report = %+v", rep)
	}
	if in.Dump(r) != before {
		t.Error("input label modified")
	}

	root := out.Root()
	wantRoot := []string{"PDS_VERSION_ID", "RECORD_TYPE", "RECORD_BYTES", "LABEL_RECORDS", "SPACECRAFT_NAME", "^TABLE"}
	if diff := cmp.Diff(wantRoot, names(out.Keywords(root))); diff != "" {
		t.Errorf("root keywords (-want +got):\n%s", diff)
	}
	if p, _ := out.Lookup(root, "^TABLE"); p.Kind != label.KindPointer || p.Offset != 5 {
		t.Errorf("^TABLE = %+v", p)
	}

	tbl := out.FindChild(root, "TABLE")
	if tbl == label.Nil || out.Class(tbl) != label.ClassTable {
		t.Fatalf("no TABLE object:\n%s", out.Dump(root))
	}
	if diff := cmp.Diff([]string{"ROWS", "ROW_BYTES"}, names(out.Keywords(tbl))); diff != "" {
		t.Errorf("table keywords (-want +got):\n%s", diff)
	}
	if rows, _ := out.Int(tbl, "ROWS"); rows != 10 {
		t.Errorf("ROWS = %d", rows)
	}
}

func TestMigrateSFDULabel(t *testing.T) {
	in := label.NewTree("ROOT")
	r := in.Root()
	in.Set(r, "CCSD3ZF0000100000001NJPL3IF0PDS200000001", label.Text("SFDU_LABEL"))
	in.Set(r, "RECORD_TYPE", label.Text("FIXED_LENGTH"))
	in.Set(r, "IMAGE_POINTER", label.Int(3))
	in.Set(r, "POINTER_TO_TABLE", label.Seq(label.Text("DATA.TAB"), label.WithUnit(label.Int(100), "BYTES")))
	img := in.Add(r, "IMAGE")
	in.Set(img, "IMAGE_LINES", label.Int(800))
	in.Set(img, "LINE_SAMPLES", label.Int(800))

	out, rep, err := Migrate(in)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Generation != SFDU {
		t.Errorf("generation = %s", rep.Generation)
	}

	root := out.Root()
	want := []string{"PDS_VERSION_ID", "RECORD_TYPE", "^IMAGE", "^TABLE"}
	if diff := cmp.Diff(want, names(out.Keywords(root))); diff != "" {
		t.Errorf("root keywords (-want +got):\n%s", diff)
	}
	if p, _ := out.Lookup(root, "^IMAGE"); p.Kind != label.KindPointer || p.Offset != 3 || p.OffsetUnit != "RECORDS" {
		t.Errorf("^IMAGE = %+v", p)
	}
	if p, _ := out.Lookup(root, "^TABLE"); p.File != "DATA.TAB" || p.Offset != 100 || p.OffsetUnit != "BYTES" {
		t.Errorf("^TABLE = %+v", p)
	}

	oimg := out.FindChild(root, "IMAGE")
	if diff := cmp.Diff([]string{"LINES", "LINE_SAMPLES"}, names(out.Keywords(oimg))); diff != "" {
		t.Errorf("image keywords (-want +got):\n%s", diff)
	}

	var actions []Action
	for _, c := range rep.Changes {
		actions = append(actions, c.Action)
	}
	wantActions := []Action{ActionRemove, ActionPointer, ActionPointer, ActionRename, ActionInsert}
	if diff := cmp.Diff(wantActions, actions); diff != "" {
		t.Errorf("actions (-want +got):\n%s", diff)
	}
}

func TestMigrateCurrentLabel(t *testing.T) {
	in := label.NewTree("ROOT")
	r := in.Root()
	in.Set(r, "PDS_VERSION_ID", label.Text("PDS3"))
	in.Set(r, "^TABLE", label.Pointer("", 5, "RECORDS"))
	tbl := in.Add(r, "TABLE")
	in.Set(tbl, "ROWS", label.Int(2))

	out, rep, err := Migrate(in)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Generation != Current || rep.Changed() {
		t.Errorf("report = %+v", rep)
	}
	if diff := cmp.Diff(in.Dump(r), out.Dump(out.Root())); diff != "" {
		t.Errorf("current label changed (-in +out):\n%s", diff)
	}
}

func TestMigrateDropsDuplicateAlias(t *testing.T) {
	in := label.NewTree("ROOT")
	r := in.Root()
	in.Set(r, "PDS_VERSION_ID", label.Text("PDS3"))
	tbl := in.Add(r, "TABLE")
	in.SetKeywords(tbl, []label.Keyword{
		{Name: "TABLE_ROWS", Value: label.Int(9)},
		{Name: "ROWS", Value: label.Int(10)},
	})

	out, rep, err := Migrate(in)
	if err != nil {
		t.Fatal(err)
	}
	otbl := out.FindChild(out.Root(), "TABLE")
	if diff := cmp.Diff([]string{"ROWS"}, names(out.Keywords(otbl))); diff != "" {
		t.Errorf("keywords (-want +got):\n%s", diff)
	}
	if rows, _ := out.Int(otbl, "ROWS"); rows != 10 {
		t.Errorf("ROWS = %d, want the current keyword to win", rows)
	}
	if len(rep.Changes) != 1 || rep.Changes[0].Action != ActionRemove {
		t.Errorf("changes = %v", rep.Changes)
	}
}

func TestMigrateErrors(t *testing.T) {
	if _, _, err := Migrate(nil); !errors.IsKind(err, errors.KindInvalidArgument) {
		t.Errorf("nil tree: %v", err)
	}

	flat := label.NewTree("ROOT")
	flat.Set(flat.Root(), "FILE_TYPE", label.Text(""))
	if _, _, err := Migrate(flat); !errors.IsKind(err, errors.KindMissingKeyword) {
		t.Errorf("empty FILE_TYPE: %v", err)
	}
}

func TestChangeString(t *testing.T) {
	tests := []struct {
		c    Change
		want string
	}{
		{Change{Path: []string{"ROOT", "TABLE"}, Action: ActionRename, From: "TABLE_ROWS", To: "ROWS"}, "ROOT.TABLE: rename TABLE_ROWS -> ROWS"},
		{Change{Path: []string{"ROOT"}, Action: ActionInsert, To: "PDS_VERSION_ID"}, "ROOT: insert PDS_VERSION_ID"},
		{Change{Path: []string{"ROOT"}, Action: ActionRemove, From: "FILE_TYPE"}, "ROOT: remove FILE_TYPE"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
