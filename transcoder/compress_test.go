package transcoder

import (
	"bytes"
	"testing"

	"github.com/wippyai/pdscore/label"
	"github.com/wippyai/pdscore/profile"
)

func TestCompressFoldsRows(t *testing.T) {
	tr, tbl := table(100000, 10,
		col{name: "A", typ: "MSB_INTEGER", start: 1, bytes: 2},
		col{name: "B", typ: "IEEE_REAL", start: 3, bytes: 8},
	)
	n := mustBuild(t, lsb(), tr, tbl, profile.Binary)
	c := Compress(n)

	if c.NodeCount() > 3 {
		t.Errorf("compressed tree has %d nodes:\n%s", c.NodeCount(), c)
	}
	if c.SrcBytes() != n.SrcBytes() || c.DstBytes() != n.DstBytes() {
		t.Errorf("sizes changed: %d/%d -> %d/%d", n.SrcBytes(), n.DstBytes(), c.SrcBytes(), c.DstBytes())
	}
}

func TestCompressSingleChildWrapper(t *testing.T) {
	leaf := spare(4)
	inner := group(3, leaf)
	outer := group(2, inner)

	c := Compress(outer)
	if c.Role != RoleSpare || c.SrcBytes() != 24 {
		t.Errorf("compressed = %s", c.Summary())
	}
}

func TestCompressMergesSiblings(t *testing.T) {
	pair := group(2, spare(1), fill([]byte("x")))
	g := group(1, spare(2), spare(3), fill([]byte{','}), fill([]byte{' '}), pair)

	c := Compress(g)
	if len(c.Children) != 3 {
		t.Fatalf("children = %d:\n%s", len(c.Children), c)
	}
	if c.Children[0].Role != RoleSpare || c.Children[0].SrcBytes() != 5 {
		t.Errorf("spare = %s", c.Children[0].Summary())
	}
	if c.Children[1].Role != RoleFill || string(c.Children[1].Fill) != ", " {
		t.Errorf("fill = %s", c.Children[1].Summary())
	}
	if c.Children[2].Reps != 2 {
		t.Errorf("pair = %s", c.Children[2].Summary())
	}
}

// Compressed, uncompressed and fully expanded trees stream the same bytes.
func TestCompressPreservesOutput(t *testing.T) {
	type fixture struct {
		name string
		cfg  profile.Config
		tree func() (*label.Tree, label.NodeID)
		src  []byte
	}

	rows := func(n int, row []byte) []byte {
		return bytes.Repeat(row, n)
	}

	fixtures := []fixture{
		{
			name: "binary gaps",
			cfg:  msb(),
			tree: func() (*label.Tree, label.NodeID) {
				return table(5, 9,
					col{name: "A", typ: "LSB_INTEGER", start: 1, bytes: 2},
					col{name: "B", typ: "PC_REAL", start: 5, bytes: 4})
			},
			src: rows(5, []byte{1, 2, 0, 0, 0, 0, 0x80, 0x3f, 9}),
		},
		{
			name: "risc items",
			cfg:  lsb().WithAlignment(profile.AlignRISC),
			tree: func() (*label.Tree, label.NodeID) {
				return table(4, 11,
					col{name: "C", typ: "CHARACTER", start: 1, bytes: 1},
					col{name: "V", typ: "MSB_INTEGER", start: 2, bytes: 10, items: 3, itemBytes: 2, itemOffset: 4})
			},
			src: rows(4, []byte{'x', 0, 1, 0, 0, 0, 2, 0, 0, 0, 3}),
		},
		{
			name: "ascii",
			cfg:  lsb().WithASCIIOutput(),
			tree: func() (*label.Tree, label.NodeID) {
				return table(3, 6,
					col{name: "A", typ: "LSB_UNSIGNED_INTEGER", start: 1, bytes: 2},
					col{name: "B", typ: "LSB_INTEGER", start: 3, bytes: 4, items: 2, itemBytes: 2})
			},
			src: rows(3, []byte{7, 0, 1, 0, 0xff, 0xff}),
		},
	}

	for _, fx := range fixtures {
		t.Run(fx.name, func(t *testing.T) {
			tr, id := fx.tree()
			n := mustBuild(t, fx.cfg, tr, id, profile.Binary)

			plain := mustRun(t, n, fx.src)
			folded := mustRun(t, Compress(n), fx.src)
			unrolled := mustRun(t, Expand(n), fx.src)

			if !bytes.Equal(plain, folded) {
				t.Errorf("compressed output differs:\n% x\n% x", plain, folded)
			}
			if !bytes.Equal(plain, unrolled) {
				t.Errorf("expanded output differs:\n% x\n% x", plain, unrolled)
			}
			if Compress(n).NodeCount() > n.NodeCount() {
				t.Errorf("compression grew the tree")
			}
		})
	}
}
