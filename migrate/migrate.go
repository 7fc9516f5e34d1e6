package migrate

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/pdscore/errors"
	"github.com/wippyai/pdscore/label"
)

// Generation is the label schema generation a tree was written in.
type Generation uint8

const (
	// Current labels need at most alias and pointer normalisation.
	Current Generation = iota
	// SFDU labels open with an SFDU wrapper keyword.
	SFDU
	// FileType labels are flat: no sub-objects, the data object named by
	// FILE_TYPE and described by keywords at the top level.
	FileType
)

var generationNames = [...]string{
	Current:  "current",
	SFDU:     "sfdu",
	FileType: "file-type",
}

func (g Generation) String() string {
	if int(g) < len(generationNames) {
		return generationNames[g]
	}
	return "unknown"
}

// Action names the kind of rewrite a Change records.
type Action string

const (
	ActionRename  Action = "rename"
	ActionPointer Action = "pointer"
	ActionRemove  Action = "remove"
	ActionInsert  Action = "insert"
	ActionMove    Action = "move"
	ActionCreate  Action = "create"
)

// Change is one rewrite applied to the label.
type Change struct {
	Path   []string // object the change applies to
	Action Action
	From   string
	To     string
}

func (c Change) String() string {
	where := strings.Join(c.Path, ".")
	switch {
	case c.From != "" && c.To != "":
		return where + ": " + string(c.Action) + " " + c.From + " -> " + c.To
	case c.To != "":
		return where + ": " + string(c.Action) + " " + c.To
	default:
		return where + ": " + string(c.Action) + " " + c.From
	}
}

// Report describes what Migrate did.
type Report struct {
	Generation Generation
	Changes    []Change
}

// Changed reports whether the label was rewritten at all.
func (r *Report) Changed() bool {
	return len(r.Changes) > 0
}

func (r *Report) add(path []string, action Action, from, to string) {
	r.Changes = append(r.Changes, Change{Path: path, Action: action, From: from, To: to})
}

// version is the PDS_VERSION_ID value of current labels.
const version = "PDS3"

// fileKeywords stay on the root when a flat label is split into a file
// header and a data object.
var fileKeywords = map[string]bool{
	"PDS_VERSION_ID":                true,
	"RECORD_TYPE":                   true,
	"RECORD_BYTES":                  true,
	"FILE_RECORDS":                  true,
	"LABEL_RECORDS":                 true,
	"DATA_SET_ID":                   true,
	"PRODUCT_ID":                    true,
	"PRODUCT_CREATION_TIME":         true,
	"SOURCE_PRODUCT_ID":             true,
	"MISSION_NAME":                  true,
	"SPACECRAFT_NAME":               true,
	"INSTRUMENT_NAME":               true,
	"TARGET_NAME":                   true,
	"START_TIME":                    true,
	"STOP_TIME":                     true,
	"SPACECRAFT_CLOCK_START_COUNT":  true,
	"SPACECRAFT_CLOCK_STOP_COUNT":   true,
	"NATIVE_START_TIME":             true,
	"NATIVE_STOP_TIME":              true,
	"PRODUCER_ID":                   true,
	"PRODUCER_INSTITUTION_NAME":     true,
	"SOFTWARE_NAME":                 true,
	"SOFTWARE_VERSION_ID":           true,
	"DESCRIPTION":                   true,
	"NOTE":                          true,
	"OBSERVATION_ID":                true,
	"PRODUCT_TYPE":                  true,
	"STANDARD_DATA_PRODUCT_ID":      true,
	"DATA_SET_NAME":                 true,
	"PRODUCT_VERSION_ID":            true,
	"PRODUCT_RELEASE_DATE":          true,
	"INSTRUMENT_HOST_NAME":          true,
	"INSTRUMENT_HOST_ID":            true,
	"MISSION_PHASE_NAME":            true,
	"ORBIT_NUMBER":                  true,
	"FILE_NAME":                     true,
	"SPACECRAFT_CLOCK_PARTITION_ID": true,
}

// Detect reports the schema generation of t.
func Detect(t *label.Tree) Generation {
	root := t.Root()
	if t.NumChildren(root) == 0 && t.Has(root, "FILE_TYPE") {
		return FileType
	}
	if kws := t.Keywords(root); len(kws) > 0 && isSFDU(kws[0]) {
		return SFDU
	}
	return Current
}

// isSFDU reports whether kw is an SFDU wrapper such as
// CCSD3ZF0000100000001NJPL3IF0PDS200000001 = SFDU_LABEL.
func isSFDU(kw label.Keyword) bool {
	name := strings.ToUpper(kw.Name)
	return strings.HasPrefix(name, "CCSD") || strings.HasPrefix(name, "NJPL") ||
		kw.Value.Symbol() == "SFDU_LABEL"
}

// legacyPointer returns the object named by a pre-caret pointer keyword:
// TABLE_POINTER and POINTER_TO_TABLE both name TABLE.
func legacyPointer(name string) (string, bool) {
	name = strings.ToUpper(name)
	if obj, ok := strings.CutSuffix(name, "_POINTER"); ok && obj != "" {
		return obj, true
	}
	if obj, ok := strings.CutPrefix(name, "POINTER_TO_"); ok && obj != "" {
		return obj, true
	}
	return "", false
}

// Migrate rewrites a copy of t into the current label schema. Legacy
// keyword aliases take their current names, legacy pointer keywords become
// ^OBJECT pointers, SFDU wrappers are dropped and PDS_VERSION_ID is set.
// A flat FILE_TYPE label is split into a file header on the root and a
// data object holding the layout keywords. The input tree is not modified.
func Migrate(t *label.Tree) (*label.Tree, *Report, error) {
	if t == nil || !t.Valid(t.Root()) {
		return nil, nil, errors.InvalidArgument(errors.PhaseMigrate, "migrate: no label")
	}
	gen := Detect(t)
	out, _ := t.CopySubtree(t.Root())
	rep := &Report{Generation: gen}
	root := out.Root()

	if gen == FileType {
		if err := splitFlat(out, rep); err != nil {
			return nil, nil, err
		}
	}

	out.Walk(root, func(id label.NodeID, _ int) bool {
		rewriteKeywords(out, id, rep)
		return true
	})

	if gen != Current {
		switch v, ok := out.Lookup(root, "PDS_VERSION_ID"); {
		case !ok:
			out.Insert(root, 0, label.Keyword{Name: "PDS_VERSION_ID", Value: label.Text(version)})
			rep.add(out.Path(root), ActionInsert, "", "PDS_VERSION_ID")
		case v.Symbol() != version:
			out.Set(root, "PDS_VERSION_ID", label.Text(version))
			rep.add(out.Path(root), ActionRename, "PDS_VERSION_ID = "+v.Text, "PDS_VERSION_ID = "+version)
		}
	}

	Logger().Debug("migrated label",
		zap.Stringer("generation", gen),
		zap.Int("changes", len(rep.Changes)))
	return out, rep, nil
}

// rewriteKeywords renames aliases, converts legacy pointers and drops SFDU
// wrappers in the keyword list of id. An alias whose current name is
// already present is dropped rather than duplicated.
func rewriteKeywords(t *label.Tree, id label.NodeID, rep *Report) {
	kws := t.Keywords(id)
	present := make(map[string]bool, len(kws))
	for _, kw := range kws {
		if !label.IsAlias(kw.Name) {
			present[strings.ToUpper(kw.Name)] = true
		}
	}

	path := t.Path(id)
	out := make([]label.Keyword, 0, len(kws))
	changed := false
	for _, kw := range kws {
		name := strings.ToUpper(kw.Name)
		switch {
		case isSFDU(kw):
			rep.add(path, ActionRemove, kw.Name, "")
			changed = true
			continue
		case label.IsAlias(name):
			to := label.Canonical(name)
			changed = true
			if present[to] {
				rep.add(path, ActionRemove, kw.Name, "")
				continue
			}
			present[to] = true
			rep.add(path, ActionRename, kw.Name, to)
			kw.Name = to
		default:
			if obj, ok := legacyPointer(name); ok {
				to := "^" + obj
				changed = true
				if present[to] {
					rep.add(path, ActionRemove, kw.Name, "")
					continue
				}
				present[to] = true
				rep.add(path, ActionPointer, kw.Name, to)
				kw = label.Keyword{Name: to, Value: label.AsPointer(kw.Value)}
			} else if label.IsPointer(name) && kw.Value.Kind != label.KindPointer {
				if p := label.AsPointer(kw.Value); p.Kind == label.KindPointer {
					kw.Value = p
					changed = true
				}
			}
		}
		out = append(out, kw)
	}
	if changed {
		t.SetKeywords(id, out)
	}
}

// splitFlat moves the data object description of a FILE_TYPE label into
// a child object named by FILE_TYPE.
func splitFlat(t *label.Tree, rep *Report) error {
	root := t.Root()
	name := t.Symbol(root, "FILE_TYPE")
	if name == "" {
		return errors.MissingKeyword(errors.PhaseMigrate, t.Path(root), "FILE_TYPE")
	}
	if label.ParseClass(name) == label.ClassOther {
		Logger().Warn("file type names no known object class", zap.String("file_type", name))
	}

	obj := t.Add(root, name)
	rep.add(t.Path(obj), ActionCreate, "", name)

	var keep, moved []label.Keyword
	for _, kw := range t.Keywords(root) {
		kname := strings.ToUpper(kw.Name)
		_, legacy := legacyPointer(kname)
		switch {
		case kname == "FILE_TYPE":
			rep.add(t.Path(root), ActionRemove, kw.Name, "")
		case fileKeywords[kname], label.IsPointer(kname), legacy, isSFDU(kw):
			keep = append(keep, kw)
		default:
			moved = append(moved, kw)
			rep.add(t.Path(obj), ActionMove, kw.Name, "")
		}
	}
	t.SetKeywords(root, keep)
	t.SetKeywords(obj, moved)

	pointer := "^" + name
	if t.Has(root, pointer) || t.Has(root, name+"_POINTER") || t.Has(root, "POINTER_TO_"+name) {
		return nil
	}
	if n, ok := t.Int(root, "LABEL_RECORDS"); ok {
		t.Set(root, pointer, label.Pointer("", n+1, "RECORDS"))
		rep.add(t.Path(root), ActionInsert, "", pointer)
	}
	return nil
}
