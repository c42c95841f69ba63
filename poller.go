// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigx

import (
	"fmt"
	"log/slog"
	"runtime"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// StopCause is the normal (non-failure) way a poller run ended.
type StopCause int

const (
	// StopCompleted: a Complete signal was classified and the
	// subscriber received OnComplete.
	StopCompleted StopCause = iota
	// StopCancelled: the downstream cancelled; no terminal callback.
	StopCancelled
	// StopRequested: an external Shutdown call; no terminal callback.
	StopRequested
)

// String returns the stop cause name for logging.
func (c StopCause) String() string {
	switch c {
	case StopCompleted:
		return "completed"
	case StopCancelled:
		return "cancelled"
	case StopRequested:
		return "shutdown"
	}
	return "unknown"
}

// SignalPoller demultiplexes one data channel and one error channel into
// a single downstream subscriber, bounding delivery by requested demand.
// Run executes on exactly one goroutine per session; Request, Cancel and
// Shutdown may be called from any goroutine. A poller runs one session
// and is not reused.
type SignalPoller struct {
	cfg       Config
	transport Transport
	sub       Subscriber

	demand  DemandTracker
	running atomix.Uint32
	active  atomix.Uint32

	data dataClassifier
	errs errorClassifier

	// failed and failure are poller-goroutine state: a failure
	// notification already went downstream this session.
	failed  bool
	failure error
}

var _ Subscription = (*SignalPoller)(nil)

// New creates a poller for one session over the given transport,
// driving the given subscriber.
func New(cfg Config, tr Transport, sub Subscriber) *SignalPoller {
	p := &SignalPoller{
		cfg:       cfg.withDefaults(),
		transport: tr,
		sub:       sub,
	}
	p.running.Store(1)
	p.active.Store(1)
	p.data.sub = sub
	p.errs.codec = p.cfg.Serializer
	p.errs.fail = p.fail
	return p
}

// Request implements Subscription: grants demand for n more items.
func (p *SignalPoller) Request(n int64) {
	p.demand.Request(n)
}

// Cancel implements Subscription: marks the downstream inactive.
// Observed by the loop within one iteration; the session ends without a
// terminal callback but with terminal=true on the shutdown hook.
func (p *SignalPoller) Cancel() {
	p.active.Store(0)
}

// Shutdown stops the loop from outside the session. Idempotent.
// The session ends without a terminal callback and with terminal=false
// on the shutdown hook.
func (p *SignalPoller) Shutdown() {
	p.running.Store(0)
}

// Run executes the poller loop until a terminal signal, downstream
// cancellation, or Shutdown. It opens both channel subscriptions,
// attaches the subscriber, and on every exit path closes both channels
// and invokes the shutdown hook exactly once.
//
// The result is Left(err) when the session failed (remote error, decode
// failure, or a recovered callback failure) and Right(cause) otherwise.
func (p *SignalPoller) Run() kont.Either[error, StopCause] {
	slog.Debug("sigx: signal poller started")

	dataCh, err := p.transport.Subscribe(p.cfg.Address, p.cfg.DataStreamID)
	if err != nil {
		p.fail(err)
		p.cfg.OnShutdown(true)
		return kont.Left[error, StopCause](err)
	}
	errCh, err := p.transport.Subscribe(p.cfg.Address, p.cfg.ErrorStreamID)
	if err != nil {
		closeReader(newChannelReader(dataCh), "data")
		p.fail(err)
		p.cfg.OnShutdown(true)
		return kont.Left[error, StopCause](err)
	}
	dataReader := newChannelReader(dataCh)
	errReader := newChannelReader(errCh)

	terminal := false
	defer func() {
		closeReader(dataReader, "data")
		closeReader(errReader, "error")
		p.cfg.OnShutdown(terminal)
		slog.Debug("sigx: signal poller stopped", "terminal", terminal)
	}()

	p.attach()

	var bo iox.Backoff
	var demand uint64
	for p.running.Load() == 1 && p.active.Load() == 1 {
		errReader.poll(p.onErrorEnvelope, 1)
		if p.failed {
			terminal = true
			return kont.Left[error, StopCause](p.failure)
		}

		if demand == 0 {
			demand = p.demand.Take()
		}

		consumed := 0
		budget := p.cfg.FragmentLimit
		if demand < uint64(budget) {
			budget = int(demand)
		}
		if budget == 0 {
			if !p.data.hasReserved {
				// Completion probe: peek at most one fragment without
				// charging demand. A Next read here becomes the
				// reserved item.
				p.data.mode = modeProbe
				dataReader.poll(p.onDataEnvelope, 1)
				p.data.mode = modeDeliver
			}
		} else {
			if p.data.hasReserved {
				// Reserved item goes out first: arrival order.
				p.guard(p.data.deliverReserved)
				budget--
				demand--
			}
			if budget > 0 && !p.failed {
				consumed = dataReader.poll(p.onDataEnvelope, budget)
				demand -= uint64(p.data.takeDelivered())
			}
		}
		if p.failed {
			terminal = true
			return kont.Left[error, StopCause](p.failure)
		}

		if consumed == 0 {
			bo.Wait()
		} else {
			bo.Reset()
		}

		if p.data.complete {
			// The probe path refuses to poll while a reserved item is
			// held, so reaching here means nothing undelivered remains
			// ahead of the completion.
			terminal = true
			p.complete()
			return kont.Right[error, StopCause](StopCompleted)
		}
	}

	if p.active.Load() == 0 {
		terminal = true
		return kont.Right[error, StopCause](StopCancelled)
	}
	return kont.Right[error, StopCause](StopRequested)
}

// attach hands the downstream its subscription. A failure here is
// reported to the subscriber rather than propagated; the loop observes
// the failed flag on its first iteration and terminates.
func (p *SignalPoller) attach() {
	p.guard(func() { p.sub.OnSubscribe(p) })
}

func (p *SignalPoller) onDataEnvelope(env Envelope) {
	p.guard(func() {
		if !p.data.handle(env) {
			slog.Error("sigx: unrecognized signal ignored",
				"code", byte(env.Kind), "length", len(env.Payload), "session", env.Session)
		}
	})
}

func (p *SignalPoller) onErrorEnvelope(env Envelope) {
	p.guard(func() {
		if !p.errs.handle(env) {
			slog.Error("sigx: unrecognized signal ignored",
				"code", byte(env.Kind), "length", len(env.Payload), "session", env.Session)
		}
	})
}

// guard runs one classification or callback step, converting a
// recovered panic into a terminal downstream failure. runtime.Error
// panics are fatal and propagate.
func (p *SignalPoller) guard(fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if re, ok := r.(runtime.Error); ok {
			panic(re)
		}
		err, ok := r.(error)
		if !ok {
			err = fmt.Errorf("sigx: subscriber callback failure: %v", r)
		}
		p.fail(err)
	}()
	fn()
}

// fail delivers at most one failure notification per session and
// records it as the run outcome. A panic out of the subscriber's own
// OnError is swallowed: the notification is best-effort and the session
// is already terminating.
func (p *SignalPoller) fail(err error) {
	if p.failed {
		return
	}
	p.failed = true
	p.failure = err
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(runtime.Error); ok {
				panic(re)
			}
			slog.Error("sigx: subscriber OnError panicked", "panic", r)
		}
	}()
	p.sub.OnError(err)
}

// complete delivers the successful terminal callback. A panic out of
// OnComplete is recovered and logged without a follow-up OnError: the
// one terminal signal already went out.
func (p *SignalPoller) complete() {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(runtime.Error); ok {
				panic(re)
			}
			slog.Error("sigx: subscriber OnComplete panicked", "panic", r)
		}
	}()
	p.sub.OnComplete()
}

// closeReader closes one channel independently of its sibling; a close
// failure is logged and never skips the other close or the shutdown
// hook.
func closeReader(r *channelReader, name string) {
	if err := r.close(); err != nil {
		slog.Error("sigx: channel close failed", "channel", name, "error", err)
	}
}
