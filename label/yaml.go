package label

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/wippyai/pdscore/errors"
)

// The YAML form is a fixture and tooling format for label trees:
//
//	object: TABLE
//	keywords:
//	  - ROWS: 3
//	  - ^STRUCTURE: {file: "ROW.FMT"}
//	objects:
//	  - object: COLUMN
//	    keywords:
//	      - NAME: TIME
//
// Keywords are a list of single-entry maps so their order survives. Scalars
// with units are written as strings ("12 <BYTES>"), sets as {set: [...]},
// pointers as {file, offset, unit}.
type nodeDoc struct {
	Object   string           `yaml:"object"`
	Keywords []map[string]any `yaml:"keywords,omitempty"`
	Objects  []nodeDoc        `yaml:"objects,omitempty"`
}

// LoadYAML parses the YAML form of a label tree.
func LoadYAML(data []byte) (*Tree, error) {
	var doc nodeDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.PhaseLabel, errors.KindInvalidArgument, err, "parse label yaml")
	}
	if doc.Object == "" {
		doc.Object = "ROOT"
	}
	t := NewTree(doc.Object)
	if err := t.fill(t.root, doc); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadYAMLFile reads and parses a YAML label file.
func LoadYAMLFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLabel, errors.KindInvalidArgument, err, "read "+path)
	}
	return LoadYAML(data)
}

func (t *Tree) fill(id NodeID, doc nodeDoc) error {
	for _, m := range doc.Keywords {
		if len(m) != 1 {
			return errors.InvalidArgument(errors.PhaseLabel, "%s: keyword entries must have exactly one key, got %d", doc.Object, len(m))
		}
		for name, raw := range m {
			v, err := valueFromYAML(raw)
			if err != nil {
				return errors.New(errors.PhaseLabel, errors.KindInvalidArgument).
					Path(t.Path(id)...).
					Keyword(name).
					Cause(err).
					Build()
			}
			if strings.HasPrefix(name, "^") {
				v = AsPointer(v)
			}
			t.nodes[id].keywords = append(t.nodes[id].keywords, Keyword{Name: strings.ToUpper(name), Value: v})
		}
	}
	for _, child := range doc.Objects {
		c := t.Add(id, child.Object)
		if err := t.fill(c, child); err != nil {
			return err
		}
	}
	return nil
}

func valueFromYAML(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Text("NULL"), nil
	case string:
		return ParseScalar(v), nil
	case bool:
		return Text(strings.ToUpper(strconv.FormatBool(v))), nil
	case int:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint64:
		return Text(strconv.FormatUint(v, 10)), nil
	case float64:
		return Real(v), nil
	case []any:
		items := make([]Value, 0, len(v))
		for _, it := range v {
			iv, err := valueFromYAML(it)
			if err != nil {
				return Value{}, err
			}
			items = append(items, iv)
		}
		return Seq(items...), nil
	case map[string]any:
		if set, ok := v["set"]; ok {
			s, err := valueFromYAML(set)
			if err != nil {
				return Value{}, err
			}
			s.Kind = KindSet
			return s, nil
		}
		p := Value{Kind: KindPointer, OffsetUnit: "RECORDS"}
		if f, ok := v["file"].(string); ok {
			p.File = f
		}
		if off, ok := v["offset"]; ok {
			ov, err := valueFromYAML(off)
			if err != nil {
				return Value{}, err
			}
			n, ok := ov.AsInt()
			if !ok {
				return Value{}, fmt.Errorf("pointer offset %v is not an integer", off)
			}
			p.Offset = n
		}
		if u, ok := v["unit"].(string); ok {
			p.OffsetUnit = strings.ToUpper(u)
		}
		return p, nil
	default:
		return Value{}, fmt.Errorf("unsupported yaml value %T", raw)
	}
}

// MarshalYAML renders the subtree rooted at id in the YAML form.
func (t *Tree) MarshalYAML(id NodeID) ([]byte, error) {
	if !t.valid(id) {
		return nil, errors.InvalidArgument(errors.PhaseLabel, "marshal: invalid node %d", id)
	}
	out, err := yaml.Marshal(t.doc(id))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLabel, errors.KindInvalidArgument, err, "encode label yaml")
	}
	return out, nil
}

func (t *Tree) doc(id NodeID) nodeDoc {
	n := t.nodes[id]
	d := nodeDoc{Object: n.name}
	for _, kw := range n.keywords {
		d.Keywords = append(d.Keywords, map[string]any{kw.Name: valueToYAML(kw.Value)})
	}
	for _, c := range n.children {
		d.Objects = append(d.Objects, t.doc(c))
	}
	return d
}

func valueToYAML(v Value) any {
	switch v.Kind {
	case KindSequence:
		items := make([]any, len(v.Items))
		for i, it := range v.Items {
			items[i] = valueToYAML(it)
		}
		return items
	case KindSet:
		items := make([]any, len(v.Items))
		for i, it := range v.Items {
			items[i] = valueToYAML(it)
		}
		return map[string]any{"set": items}
	case KindPointer:
		m := map[string]any{"offset": v.Offset}
		if v.File != "" {
			m["file"] = v.File
		}
		if v.OffsetUnit != "" {
			m["unit"] = v.OffsetUnit
		}
		return m
	default:
		if v.Unit != "" {
			return v.Text + " <" + v.Unit + ">"
		}
		if n, err := strconv.ParseInt(v.Text, 10, 64); err == nil {
			return n
		}
		if looksNumeric(v.Text) {
			if f, err := strconv.ParseFloat(v.Text, 64); err == nil {
				return f
			}
		}
		return v.Text
	}
}

// Dump renders a subtree in label notation (OBJECT/END_OBJECT blocks).
// It is meant for diagnostics and diffs, not as a replacement for a label
// printer.
func (t *Tree) Dump(id NodeID) string {
	var b strings.Builder
	t.dump(&b, id, 0)
	return b.String()
}

func (t *Tree) dump(b *strings.Builder, id NodeID, depth int) {
	if !t.valid(id) {
		return
	}
	n := t.nodes[id]
	indent := strings.Repeat("  ", depth)
	inner := indent
	isObject := n.class != ClassRoot
	if isObject {
		fmt.Fprintf(b, "%sOBJECT = %s\n", indent, n.name)
		inner = indent + "  "
	}
	width := 0
	for _, kw := range n.keywords {
		if len(kw.Name) > width {
			width = len(kw.Name)
		}
	}
	for _, kw := range n.keywords {
		fmt.Fprintf(b, "%s%-*s = %s\n", inner, width, kw.Name, kw.Value.String())
	}
	for _, c := range n.children {
		next := depth
		if isObject {
			next = depth + 1
		}
		t.dump(b, c, next)
	}
	if isObject {
		fmt.Fprintf(b, "%sEND_OBJECT = %s\n", indent, n.name)
	}
}

func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == '+', r == 'E', r == 'e':
		default:
			return false
		}
	}
	return true
}
