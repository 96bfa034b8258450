package transport

import (
	"sync/atomic"

	"github.com/jpillora/sizestr"
)

// Stats tracks bytes read and written on a Connection, grounded on the
// teacher's ConnStats but counting bytes rather than connection counts,
// since a gateway Connection is long-lived and what a trace log wants is
// how much traffic has crossed it.
type Stats struct {
	bytesRead    int64
	bytesWritten int64
}

// AddRead records n bytes read.
func (s *Stats) AddRead(n int64) { atomic.AddInt64(&s.bytesRead, n) }

// AddWritten records n bytes written.
func (s *Stats) AddWritten(n int64) { atomic.AddInt64(&s.bytesWritten, n) }

// BytesRead returns the total bytes read so far.
func (s *Stats) BytesRead() int64 { return atomic.LoadInt64(&s.bytesRead) }

// BytesWritten returns the total bytes written so far.
func (s *Stats) BytesWritten() int64 { return atomic.LoadInt64(&s.bytesWritten) }

// String renders a human-readable "read/written" summary for trace logging,
// e.g. "[1.2kB/340B]".
func (s *Stats) String() string {
	return "[" + sizestr.ToString(s.BytesRead()) + "/" + sizestr.ToString(s.BytesWritten()) + "]"
}
