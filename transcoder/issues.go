package transcoder

import (
	"go.uber.org/zap"

	"github.com/wippyai/pdscore/errors"
)

type issueKey struct {
	desc *Descriptor
	kind errors.Kind
}

// issueSet aggregates conversion problems per descriptor and kind, keeping
// first-seen order.
type issueSet struct {
	index  map[issueKey]int
	issues []errors.Issue
}

func (s *issueSet) add(d *Descriptor, kind errors.Kind, value any) {
	k := issueKey{d, kind}
	if i, ok := s.index[k]; ok {
		s.issues[i].Count++
		return
	}
	if s.index == nil {
		s.index = make(map[issueKey]int)
	}
	is := errors.Issue{First: value, Kind: kind, Count: 1}
	if d != nil {
		is.Field = d.Name
		is.DataType = d.Type.Name
	}
	s.index[k] = len(s.issues)
	s.issues = append(s.issues, is)
}

func (s *issueSet) list() []errors.Issue {
	if len(s.issues) == 0 {
		return nil
	}
	out := make([]errors.Issue, len(s.issues))
	copy(out, s.issues)
	return out
}

func (s *issueSet) log() {
	for _, is := range s.issues {
		Logger().Warn("conversion issue",
			zap.String("field", is.Field),
			zap.String("kind", string(is.Kind)),
			zap.String("type", is.DataType),
			zap.Int64("count", is.Count),
			zap.Any("first", is.First))
	}
}
