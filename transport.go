// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigx

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfq"
)

// Fragment flag bits. A message that fits one fragment carries both.
const (
	// FlagBegin marks the first fragment of a logical message.
	FlagBegin byte = 0x80
	// FlagEnd marks the last fragment of a logical message.
	FlagEnd byte = 0x40

	flagWhole = FlagBegin | FlagEnd
)

// Fragment is one physical transport unit. Logical messages may span
// several fragments of the same session; the channel reader reassembles
// them before classification.
type Fragment struct {
	Flags   byte
	Session Session
	Data    []byte
}

// FragmentHandler consumes one polled fragment.
type FragmentHandler func(f Fragment)

// Channel is one transport-level subscription, polled non-blocking.
type Channel interface {
	// Poll consumes up to limit fragments, invoking h per fragment.
	// Returns the number of fragments consumed; 0 when none available.
	Poll(h FragmentHandler, limit int) int
	// Close releases the subscription. Idempotent, and safe to call
	// even if the subscription was never successfully used.
	Close() error
}

// Transport opens channel subscriptions by address and stream id.
type Transport interface {
	Subscribe(address string, streamID uint32) (Channel, error)
}

// pipeCapacity is the default fragment capacity of a Pipe.
// Rounded up to a power of 2 by lfq.
const pipeCapacity = 128

// Pipe is an in-memory Channel over a bounded lock-free SPSC ring.
// One producer goroutine offers fragments, one consumer goroutine polls:
// the poller loop. Each pipe is its own session.
type Pipe struct {
	q       lfq.SPSC[Fragment]
	closed  atomix.Uint32
	session Session
}

// NewPipe creates a pipe with the given fragment capacity.
// Non-positive capacity selects the default.
func NewPipe(capacity int) *Pipe {
	if capacity <= 0 {
		capacity = pipeCapacity
	}
	p := &Pipe{session: nextSession()}
	p.q.Init(capacity)
	return p
}

// Session returns the session id stamped on this pipe's fragments.
func (p *Pipe) Session() Session {
	return p.session
}

// Offer enqueues one fragment. Returns ErrClosed after Close, or
// iox.ErrWouldBlock when the ring is full.
func (p *Pipe) Offer(f Fragment) error {
	if p.closed.Load() != 0 {
		return ErrClosed
	}
	return p.q.Enqueue(&f)
}

// Send enqueues one whole signal message: discriminant byte + payload
// in a single fragment.
func (p *Pipe) Send(kind SignalType, payload []byte) error {
	frame := make([]byte, 1+len(payload))
	frame[0] = byte(kind)
	copy(frame[1:], payload)
	return p.Offer(Fragment{Flags: flagWhole, Session: p.session, Data: frame})
}

// SendFragmented enqueues one signal message split into fragments of at
// most mtu bytes each. Fragments of one message are enqueued
// back-to-back; on a full ring mid-message the remainder is abandoned
// and the error returned, so callers should size the ring for their
// largest message.
func (p *Pipe) SendFragmented(kind SignalType, payload []byte, mtu int) error {
	if mtu <= 0 {
		return p.Send(kind, payload)
	}
	frame := make([]byte, 1+len(payload))
	frame[0] = byte(kind)
	copy(frame[1:], payload)

	for off := 0; ; off += mtu {
		end := off + mtu
		var flags byte
		if off == 0 {
			flags |= FlagBegin
		}
		if end >= len(frame) {
			end = len(frame)
			flags |= FlagEnd
		}
		err := p.Offer(Fragment{Flags: flags, Session: p.session, Data: frame[off:end]})
		if err != nil {
			return err
		}
		if flags&FlagEnd != 0 {
			return nil
		}
	}
}

// Poll implements Channel. Non-blocking: returns 0 immediately when the
// ring is empty or the pipe is closed.
func (p *Pipe) Poll(h FragmentHandler, limit int) int {
	if p.closed.Load() != 0 {
		return 0
	}
	n := 0
	for n < limit {
		f, err := p.q.Dequeue()
		if err != nil {
			break
		}
		n++
		h(f)
	}
	return n
}

// Close implements Channel. Idempotent.
func (p *Pipe) Close() error {
	p.closed.Add(1)
	return nil
}

// MemTransport maps stream ids to pipes. Register every pipe with Add
// before handing the transport to a poller; the map is not synchronized.
type MemTransport struct {
	pipes map[uint32]*Pipe
}

// NewMemTransport creates an empty in-memory transport.
func NewMemTransport() *MemTransport {
	return &MemTransport{pipes: make(map[uint32]*Pipe)}
}

// Add registers p under streamID and returns p.
func (t *MemTransport) Add(streamID uint32, p *Pipe) *Pipe {
	t.pipes[streamID] = p
	return p
}

// Subscribe implements Transport. The address is accepted unchecked:
// an in-memory transport has a single locus.
func (t *MemTransport) Subscribe(address string, streamID uint32) (Channel, error) {
	p, ok := t.pipes[streamID]
	if !ok {
		return nil, ErrUnknownStream
	}
	return p, nil
}
