package transcoder

import (
	"fmt"
	"sync"

	"github.com/wippyai/pdscore/errors"
)

const (
	// Pool limits to prevent memory bloat
	poolMaxFrames  = 256 // max cursor frames kept
	poolInitFrames = 8

	// MaxBuffer bounds a single destination allocation.
	MaxBuffer = 1 << 40
)

// cursor frame stack pool for streams
var framePool = sync.Pool{
	New: func() any {
		buf := make([]frame, 0, poolInitFrames)
		return &buf
	},
}

func getFrames() *[]frame {
	return framePool.Get().(*[]frame)
}

func putFrames(buf *[]frame) {
	if buf == nil || cap(*buf) > poolMaxFrames {
		return // reject oversized
	}
	clear(*buf)
	*buf = (*buf)[:0]
	framePool.Put(buf)
}

// Alloc allocates a zeroed buffer of n bytes. Oversized or failed
// allocations are returned as KindAllocation errors instead of crashing.
func Alloc(n int64) (buf []byte, err error) {
	if n < 0 || n > MaxBuffer {
		return nil, errors.AllocationFailed(errors.PhaseStream, n, nil)
	}
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = errors.AllocationFailed(errors.PhaseStream, n, fmt.Errorf("%v", r))
		}
	}()
	return make([]byte, n), nil
}
