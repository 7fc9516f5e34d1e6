package transcoder

import (
	"go.uber.org/zap"

	"github.com/wippyai/pdscore/errors"
)

// State is the position of a Stream in its lifecycle.
type State uint8

const (
	StateInitialized State = iota
	StateProducing
	StateAwaitingInput
	StateComplete
	StateError
)

var stateNames = [...]string{
	StateInitialized:   "initialized",
	StateProducing:     "producing",
	StateAwaitingInput: "awaiting_input",
	StateComplete:      "complete",
	StateError:         "error",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// frame is the cursor into one group: the repetition being produced and
// the index of the child being visited.
type frame struct {
	n   *Node
	rep int64
	idx int
}

// Stream converts source bytes into a destination buffer following a
// decomposition tree. Input may arrive in slices of any size as long as no
// slice ends inside a value. A Stream is not safe for concurrent use; the
// tree it walks may be shared.
type Stream struct {
	root    *Node
	dst     []byte
	frames  *[]frame
	err     error
	cur     *Node
	report  func(errors.Kind, any)
	issues  issueSet
	out     int64 // destination bytes written
	in      int64 // source bytes consumed
	leafRep int64 // repetitions of the current leaf done
	leafOff int64 // spare bytes of the current leaf consumed
	state   State
}

// NewStream prepares a stream writing into dst, which must hold the whole
// destination of root.
func NewStream(root *Node, dst []byte) (*Stream, error) {
	if root == nil {
		return nil, errors.InvalidArgument(errors.PhaseStream, "stream: nil decomposition tree")
	}
	if need := root.DstBytes(); int64(len(dst)) < need {
		return nil, errors.StructuralMismatch(errors.PhaseStream, nil, "destination buffer", need, int64(len(dst)))
	}

	s := &Stream{root: root, dst: dst, frames: getFrames()}
	s.report = s.record
	top := &Node{Role: RoleGroup, Reps: 1, Children: []*Node{root}}
	*s.frames = append(*s.frames, frame{n: top})
	return s, nil
}

// State returns the current state.
func (s *Stream) State() State {
	return s.state
}

// Err returns the error that moved the stream to StateError.
func (s *Stream) Err() error {
	return s.err
}

// Issues returns the aggregated conversion issues seen so far.
func (s *Stream) Issues() []errors.Issue {
	return s.issues.list()
}

// Written returns the number of destination bytes produced.
func (s *Stream) Written() int64 {
	return s.out
}

// Consumed returns the number of source bytes consumed.
func (s *Stream) Consumed() int64 {
	return s.in
}

func (s *Stream) record(kind errors.Kind, value any) {
	var d *Descriptor
	if s.cur != nil {
		d = s.cur.Desc
	}
	s.issues.add(d, kind, value)
}

func (s *Stream) fail(err error) (State, error) {
	s.state = StateError
	s.err = err
	s.release()
	Logger().Debug("stream failed", zap.Error(err), zap.Int64("consumed", s.in), zap.Int64("written", s.out))
	return s.state, err
}

func (s *Stream) release() {
	if s.frames != nil {
		putFrames(s.frames)
		s.frames = nil
	}
}

// Feed consumes src and writes converted bytes. It returns
// StateAwaitingInput when src is exhausted before the tree, StateComplete
// when both end together, and StateError when src ends inside a value or
// holds bytes past the end of the tree.
func (s *Stream) Feed(src []byte) (State, error) {
	switch s.state {
	case StateError:
		return s.state, s.err
	case StateComplete:
		if len(src) > 0 {
			return s.fail(errors.StructuralMismatch(errors.PhaseStream, nil, "source bytes", s.in, s.in+int64(len(src))))
		}
		return s.state, nil
	}
	s.state = StateProducing

	for {
		frames := *s.frames
		if len(frames) == 0 {
			break
		}
		top := &frames[len(frames)-1]
		c := top.n.Children[top.idx]

		if c.Role == RoleGroup {
			if c.Reps > 0 && len(c.Children) > 0 {
				*s.frames = append(frames, frame{n: c})
				continue
			}
			s.next()
			continue
		}

		switch c.Role {
		case RoleFill:
			for ; s.leafRep < c.Reps; s.leafRep++ {
				s.out += int64(copy(s.dst[s.out:], c.Fill))
			}
		case RoleSpare:
			total := c.SrcBytes()
			take := min(total-s.leafOff, int64(len(src)))
			src = src[take:]
			s.leafOff += take
			s.in += take
			if s.leafOff < total {
				s.state = StateAwaitingInput
				return s.state, nil
			}
		case RoleValue:
			s.cur = c
			size, width := c.Src.Size, c.Dst.Size
			for ; s.leafRep < c.Reps; s.leafRep++ {
				if len(src) == 0 {
					s.state = StateAwaitingInput
					return s.state, nil
				}
				if int64(len(src)) < size {
					return s.fail(errors.New(errors.PhaseStream, errors.KindStructuralMismatch).
						Path(pathOf(c)...).
						Value(len(src)).
						Detail("input ends inside a %d-byte value at source offset %d", size, s.in).
						Build())
				}
				c.conv.Convert(s.dst[s.out:s.out+width], src[:size], s.report)
				src = src[size:]
				s.in += size
				s.out += width
			}
		}
		s.next()
	}

	if len(src) > 0 {
		return s.fail(errors.StructuralMismatch(errors.PhaseStream, nil, "source bytes", s.in, s.in+int64(len(src))))
	}
	s.state = StateComplete
	s.release()
	s.issues.log()
	return s.state, nil
}

// next moves the cursor past the current child, closing finished groups.
func (s *Stream) next() {
	s.leafRep, s.leafOff = 0, 0
	for {
		frames := *s.frames
		if len(frames) == 0 {
			return
		}
		top := &frames[len(frames)-1]
		top.idx++
		if top.idx < len(top.n.Children) {
			return
		}
		top.rep++
		if top.rep < top.n.Reps {
			top.idx = 0
			return
		}
		// group finished; advance its parent
		*s.frames = frames[:len(frames)-1]
	}
}

func pathOf(n *Node) []string {
	if n.Desc == nil || n.Desc.Name == "" {
		return nil
	}
	return []string{n.Desc.Name}
}

// Run converts a whole source buffer in one call.
func Run(root *Node, src []byte) ([]byte, []errors.Issue, error) {
	if root == nil {
		return nil, nil, errors.InvalidArgument(errors.PhaseStream, "run: nil decomposition tree")
	}
	if want := root.SrcBytes(); want != int64(len(src)) {
		return nil, nil, errors.StructuralMismatch(errors.PhaseStream, nil, "source bytes", want, int64(len(src)))
	}
	buf, err := Alloc(root.DstBytes())
	if err != nil {
		return nil, nil, err
	}
	s, err := NewStream(root, buf)
	if err != nil {
		return nil, nil, err
	}
	st, err := s.Feed(src)
	if err != nil {
		return nil, nil, err
	}
	if st != StateComplete {
		return nil, nil, errors.StructuralMismatch(errors.PhaseStream, nil, "source bytes", root.SrcBytes(), s.Consumed())
	}
	return buf, s.Issues(), nil
}
