package transcoder

import (
	"encoding/binary"
	"testing"

	"github.com/wippyai/pdscore/label"
	"github.com/wippyai/pdscore/profile"
)

type col struct {
	name       string
	typ        string
	start      int64
	bytes      int64
	items      int64
	itemBytes  int64
	itemOffset int64
}

// table builds a ROOT > TABLE label with the given columns.
func table(rows, rowBytes int64, cols ...col) (*label.Tree, label.NodeID) {
	t := label.NewTree("ROOT")
	tbl := t.Add(t.Root(), "TABLE")
	t.Set(tbl, "NAME", label.Text("T"))
	t.Set(tbl, "ROWS", label.Int(rows))
	t.Set(tbl, "ROW_BYTES", label.Int(rowBytes))
	t.Set(tbl, "COLUMNS", label.Int(int64(len(cols))))
	for _, c := range cols {
		id := t.Add(tbl, "COLUMN")
		t.Set(id, "NAME", label.Text(c.name))
		t.Set(id, "DATA_TYPE", label.Text(c.typ))
		t.Set(id, "START_BYTE", label.Int(c.start))
		t.Set(id, "BYTES", label.Int(c.bytes))
		if c.items > 0 {
			t.Set(id, "ITEMS", label.Int(c.items))
		}
		if c.itemBytes > 0 {
			t.Set(id, "ITEM_BYTES", label.Int(c.itemBytes))
		}
		if c.itemOffset > 0 {
			t.Set(id, "ITEM_OFFSET", label.Int(c.itemOffset))
		}
	}
	return t, tbl
}

func mustBuild(t *testing.T, cfg profile.Config, tr *label.Tree, id label.NodeID, src profile.Format) *Node {
	t.Helper()
	n, err := NewBuilder(cfg.Registry(), cfg).Build(tr, id, src)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return n
}

func mustRun(t *testing.T, n *Node, src []byte) []byte {
	t.Helper()
	out, _, err := Run(n, src)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return out
}

func le32(vs ...int32) []byte {
	b := make([]byte, 0, 4*len(vs))
	for _, v := range vs {
		b = binary.LittleEndian.AppendUint32(b, uint32(v))
	}
	return b
}

func be32(vs ...int32) []byte {
	b := make([]byte, 0, 4*len(vs))
	for _, v := range vs {
		b = binary.BigEndian.AppendUint32(b, uint32(v))
	}
	return b
}

func find(t *label.Tree, name string) label.NodeID {
	return t.Find(t.Root(), func(id label.NodeID) bool { return t.Name(id) == name })
}

func msb() profile.Config {
	return profile.DefaultConfig().WithPlatform(profile.MSBIEEE)
}

func lsb() profile.Config {
	return profile.DefaultConfig()
}
