package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/pdscore/errors"
	"github.com/wippyai/pdscore/label"
	"github.com/wippyai/pdscore/migrate"
	"github.com/wippyai/pdscore/object"
	"github.com/wippyai/pdscore/profile"
	"github.com/wippyai/pdscore/transcoder"
)

type options struct {
	labelFile    string
	dataFile     string
	objectName   string
	configFile   string
	platform     string
	align        string
	coerce       string
	columns      string
	deleteColumn string
	outFile      string
	outLabel     string
	firstRow     int64
	rowCount     int64
	offset       float64
	scale        float64
	ascii        bool
	checkASCII   bool
	inspect      bool
	migrate      bool
	diff         bool
	transpose    bool
}

func main() {
	var o options
	flag.StringVar(&o.labelFile, "label", "", "Label file in YAML form")
	flag.StringVar(&o.dataFile, "data", "", "Data file the label describes")
	flag.StringVar(&o.objectName, "object", "", "Name or class of the data object (default: first data object)")
	flag.StringVar(&o.configFile, "config", "", "Conversion profile YAML")
	flag.StringVar(&o.platform, "platform", "", "Target platform (lsb-ieee, pc-ieee, msb-ieee, vax-d, vax-g)")
	flag.StringVar(&o.align, "align", "", "Alignment of binary output (none, even, risc)")
	flag.BoolVar(&o.ascii, "ascii", false, "Write every field as ASCII")
	flag.BoolVar(&o.checkASCII, "check-ascii", false, "Report values that overflow their ASCII field")
	flag.StringVar(&o.coerce, "coerce", "", "Coerce every numeric field to TYPE:BYTES")
	flag.Float64Var(&o.offset, "offset", 0, "Rescale offset applied with -coerce")
	flag.Float64Var(&o.scale, "scale", 0, "Rescale factor applied with -coerce (0 disables rescale)")
	flag.StringVar(&o.columns, "columns", "", "Keep only these table columns (comma-separated)")
	flag.Int64Var(&o.firstRow, "first", 0, "First table row to keep (zero-based)")
	flag.Int64Var(&o.rowCount, "rows", 0, "Number of table rows to keep (0 = to the end)")
	flag.StringVar(&o.deleteColumn, "delete-column", "", "Remove a table column")
	flag.BoolVar(&o.transpose, "transpose", false, "Switch a table between row-major and column-major storage")
	flag.StringVar(&o.outFile, "out", "", "Write converted data here")
	flag.StringVar(&o.outLabel, "out-label", "", "Write the updated label here (default: stdout)")
	flag.BoolVar(&o.inspect, "inspect", false, "Print the decomposition tree and exit")
	flag.BoolVar(&o.migrate, "migrate", false, "Migrate the label to the current schema and exit")
	flag.BoolVar(&o.diff, "diff", false, "With -migrate, show a diff of the label")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if o.labelFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: pdsconv -label <label.yaml> -data <file> [-platform name] [-ascii] [-out file]")
		fmt.Fprintln(os.Stderr, "       pdsconv -label <label.yaml> -data <file> -inspect")
		fmt.Fprintln(os.Stderr, "       pdsconv -label <label.yaml> -migrate [-diff]")
		os.Exit(1)
	}

	log, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	transcoder.SetLogger(log.Named("transcoder"))
	object.SetLogger(log.Named("object"))
	migrate.SetLogger(log.Named("migrate"))

	if err := run(o, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	return cfg.Build()
}

func run(o options, log *zap.Logger) error {
	tree, err := label.LoadYAMLFile(o.labelFile)
	if err != nil {
		return err
	}
	out := newPrinter(os.Stdout)

	if o.migrate {
		return runMigrate(o, tree, out)
	}
	if o.dataFile == "" {
		return fmt.Errorf("-data is required unless -migrate is given")
	}

	cfg, err := config(o)
	if err != nil {
		return err
	}

	id, err := findObject(tree, o.objectName)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(o.dataFile)
	if err != nil {
		return fmt.Errorf("read data: %w", err)
	}

	platform, err := sourcePlatform(tree)
	if err != nil {
		return err
	}
	// Length comes from the label; Import with nil data reads no bytes.
	desc, err := object.Import(tree, id, nil, platform)
	if err != nil {
		return err
	}
	data, err := dataRange(tree, id, raw, desc.Length)
	if err != nil {
		return err
	}
	obj, err := object.Import(tree, id, data, platform)
	if err != nil {
		return err
	}
	defer obj.Release()
	log.Info("loaded object",
		zap.String("object", obj.Name()),
		zap.Int64("bytes", obj.Length),
		zap.Stringer("format", obj.Format))

	if o.inspect {
		n, err := transcoder.NewBuilder(cfg.Registry(), cfg).Build(obj.Tree, obj.Root, obj.Format)
		if err != nil {
			return err
		}
		out.tree(obj.Name(), n, transcoder.Compress(n))
		return nil
	}

	res, err := edit(o, obj, cfg)
	if err != nil {
		return err
	}
	defer res.Release()

	if o.outFile != "" {
		if err := os.WriteFile(o.outFile, res.Data, 0o644); err != nil {
			return fmt.Errorf("write data: %w", err)
		}
	}
	if err := writeLabel(o.outLabel, res.Tree, res.Root, out); err != nil {
		return err
	}
	out.issues(res.Issues)
	log.Info("wrote object",
		zap.String("object", res.Name()),
		zap.Int64("bytes", res.Length),
		zap.Int("issues", len(res.Issues)))
	return nil
}

// edit applies the requested object operations in order: row and column
// selection, column deletion, transposition, then conversion or coercion.
func edit(o options, obj *object.Object, cfg profile.Config) (*object.Object, error) {
	cur := obj
	step := func(next *object.Object, err error) error {
		if err != nil {
			return err
		}
		if cur != obj {
			cur.Release()
		}
		cur = next
		return nil
	}

	if o.columns != "" || o.firstRow != 0 || o.rowCount != 0 {
		var cols []string
		if o.columns != "" {
			cols = strings.Split(o.columns, ",")
		}
		if err := step(object.ExtractSubTable(cur, cols, o.firstRow, o.rowCount)); err != nil {
			return nil, err
		}
	}
	if o.deleteColumn != "" {
		if err := step(object.DeleteColumn(cur, o.deleteColumn)); err != nil {
			return nil, err
		}
	}
	if o.transpose {
		if err := step(object.TransposeTable(cur)); err != nil {
			return nil, err
		}
	}

	if o.coerce != "" {
		opts, err := parseCoerce(o.coerce)
		if err != nil {
			return nil, err
		}
		if o.scale != 0 {
			opts.Rescale, opts.Scale, opts.Offset = true, o.scale, o.offset
		}
		if err := step(object.Coerce(cur, cfg, opts)); err != nil {
			return nil, err
		}
		return cur, nil
	}
	if err := step(object.Convert(cur, cfg)); err != nil {
		return nil, err
	}
	return cur, nil
}

func runMigrate(o options, tree *label.Tree, out *printer) error {
	migrated, rep, err := migrate.Migrate(tree)
	if err != nil {
		return err
	}
	out.report(rep)
	if o.diff {
		out.diff(tree.Dump(tree.Root()), migrated.Dump(migrated.Root()))
	}
	if o.outLabel != "" || !o.diff {
		return writeLabel(o.outLabel, migrated, migrated.Root(), out)
	}
	return nil
}

func writeLabel(path string, t *label.Tree, id label.NodeID, out *printer) error {
	if path == "" {
		out.label(t.Dump(id))
		return nil
	}
	b, err := t.MarshalYAML(id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write label: %w", err)
	}
	return nil
}

func config(o options) (profile.Config, error) {
	cfg := profile.DefaultConfig()
	if o.configFile != "" {
		var err error
		if cfg, err = profile.LoadConfig(o.configFile); err != nil {
			return cfg, err
		}
	}
	if o.platform != "" {
		p, err := profile.ParsePlatform(o.platform)
		if err != nil {
			return cfg, err
		}
		cfg = cfg.WithPlatform(p)
	}
	if o.align != "" {
		a, err := profile.ParseAlignment(o.align)
		if err != nil {
			return cfg, err
		}
		cfg = cfg.WithAlignment(a)
	}
	if o.ascii {
		cfg = cfg.WithASCIIOutput()
	}
	if o.checkASCII {
		cfg = cfg.WithASCIIChecks(true)
	}
	return cfg, nil
}

// sourcePlatform reads the platform the data was written on from a
// PLATFORM keyword on the label root, defaulting to lsb-ieee.
func sourcePlatform(t *label.Tree) (profile.Platform, error) {
	v, ok := t.Lookup(t.Root(), "PLATFORM")
	if !ok {
		return profile.LSBIEEE, nil
	}
	return profile.ParsePlatform(v.Text)
}

// findObject returns the named object, or the first child of the root
// that describes data.
func findObject(t *label.Tree, name string) (label.NodeID, error) {
	root := t.Root()
	if name != "" {
		id := t.Find(root, func(id label.NodeID) bool {
			return id != root && (strings.EqualFold(t.Name(id), name) || strings.EqualFold(t.ClassName(id), name))
		})
		if id == label.Nil {
			return label.Nil, errors.NotFound(errors.PhaseObject, "object", name)
		}
		return id, nil
	}
	if c := t.Class(root); c != label.ClassRoot && c != label.ClassOther {
		return root, nil
	}
	for _, c := range t.Children(root) {
		switch t.Class(c) {
		case label.ClassOther, label.ClassHistory:
			continue
		}
		return c, nil
	}
	return label.Nil, errors.NotFound(errors.PhaseObject, "object", "data object under "+t.Name(root))
}

// dataRange locates the object's bytes in raw using its ^OBJECT pointer
// on the label root. Without a pointer the object starts at byte 0.
func dataRange(t *label.Tree, id label.NodeID, raw []byte, length int64) ([]byte, error) {
	root := t.Root()
	var start int64
	if id != root {
		for _, key := range []string{t.Name(id), t.ClassName(id)} {
			v, ok := t.Lookup(root, "^"+key)
			if !ok {
				continue
			}
			p := label.AsPointer(v)
			if p.Kind != label.KindPointer {
				return nil, errors.InvalidArgument(errors.PhaseObject, "^%s: not a pointer", key)
			}
			switch {
			case p.OffsetUnit == "BYTES":
				start = p.Offset - 1
			case p.File != "" && p.Offset == 0:
				start = 0
			default:
				recordBytes, ok := t.Int(root, "RECORD_BYTES")
				if !ok {
					return nil, errors.MissingKeyword(errors.PhaseObject, t.Path(root), "RECORD_BYTES")
				}
				start = (p.Offset - 1) * recordBytes
			}
			break
		}
	}
	if start < 0 || start+length > int64(len(raw)) {
		return nil, errors.StructuralMismatch(errors.PhaseObject, t.Path(id), "data file bytes", start+length, int64(len(raw)))
	}
	return raw[start : start+length], nil
}

// parseCoerce reads TYPE:BYTES, e.g. IEEE_REAL:8.
func parseCoerce(s string) (object.CoerceOptions, error) {
	typ, width, ok := strings.Cut(s, ":")
	if !ok {
		return object.CoerceOptions{}, errors.InvalidArgument(errors.PhaseProfile, "coerce %q: want TYPE:BYTES", s)
	}
	n, err := strconv.Atoi(width)
	if err != nil || n <= 0 {
		return object.CoerceOptions{}, errors.InvalidArgument(errors.PhaseProfile, "coerce %q: bad byte count", s)
	}
	return object.CoerceOptions{Type: strings.ToUpper(strings.TrimSpace(typ)), Bytes: n}, nil
}
