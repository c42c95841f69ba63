// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigx_test

import (
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/kont"
	"code.hybscloud.com/sigx"
)

// event is one recorded subscriber callback.
type event struct {
	kind    string // "subscribe", "next", "complete", "error"
	payload []byte
	err     error
}

// recorder is a Subscriber that forwards every callback into a buffered
// channel. Callbacks run on the poller goroutine; tests observe them
// through the channel, which provides the happens-before edge for
// reading sub and the counters.
type recorder struct {
	events chan event
	sub    sigx.Subscription

	// autoRequest, when positive, is requested once from OnSubscribe.
	autoRequest int64

	// granted/received track the demand-conservation invariant inline:
	// received must never pass granted at any instant.
	granted   atomix.Uint64
	received  atomix.Uint64
	violation atomix.Uint32
}

func newRecorder() *recorder {
	return &recorder{events: make(chan event, 256)}
}

func (r *recorder) OnSubscribe(s sigx.Subscription) {
	r.sub = s
	if r.autoRequest > 0 {
		r.request(r.autoRequest)
	}
	r.events <- event{kind: "subscribe"}
}

func (r *recorder) OnNext(payload []byte) {
	if r.received.Add(1) > r.granted.Load() {
		r.violation.Add(1)
	}
	r.events <- event{kind: "next", payload: payload}
}

func (r *recorder) OnComplete() {
	r.events <- event{kind: "complete"}
}

func (r *recorder) OnError(err error) {
	r.events <- event{kind: "error", err: err}
}

// request grants demand while keeping the conservation counter in sync.
func (r *recorder) request(n int64) {
	r.granted.Add(uint64(n))
	r.sub.Request(n)
}

// awaitEvent receives the next recorded callback or fails the test.
func awaitEvent(t *testing.T, r *recorder) event {
	t.Helper()
	select {
	case ev := <-r.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscriber event")
		return event{}
	}
}

// awaitKind receives the next callback and asserts its kind.
func awaitKind(t *testing.T, r *recorder, kind string) event {
	t.Helper()
	ev := awaitEvent(t, r)
	if ev.kind != kind {
		t.Fatalf("event kind got %q, want %q", ev.kind, kind)
	}
	return ev
}

// assertQuiet asserts no callback arrives within d.
func assertQuiet(t *testing.T, r *recorder, d time.Duration) {
	t.Helper()
	select {
	case ev := <-r.events:
		t.Fatalf("unexpected event %q", ev.kind)
	case <-time.After(d):
	}
}

// fixture wires one poller over an in-memory transport.
type fixture struct {
	data *sigx.Pipe
	errs *sigx.Pipe
	p    *sigx.SignalPoller

	done      chan kont.Either[error, sigx.StopCause]
	shutdowns chan bool
}

const (
	dataStream  = 1
	errorStream = 2
)

// newFixture builds the transport and poller without starting the loop,
// so tests can enqueue signals that must already be present at startup.
func newFixture(rec *recorder) *fixture {
	mt := sigx.NewMemTransport()
	f := &fixture{
		data:      mt.Add(dataStream, sigx.NewPipe(128)),
		errs:      mt.Add(errorStream, sigx.NewPipe(8)),
		done:      make(chan kont.Either[error, sigx.StopCause], 1),
		shutdowns: make(chan bool, 2),
	}
	cfg := sigx.Config{
		Address:       "mem://test",
		DataStreamID:  dataStream,
		ErrorStreamID: errorStream,
		OnShutdown:    func(terminal bool) { f.shutdowns <- terminal },
	}
	f.p = sigx.New(cfg, mt, rec)
	return f
}

func (f *fixture) start() {
	go func() { f.done <- f.p.Run() }()
}

// startPoller is the common path: build and run.
func startPoller(rec *recorder) *fixture {
	f := newFixture(rec)
	f.start()
	return f
}

// awaitDone joins the poller goroutine and returns the run outcome.
func (f *fixture) awaitDone(t *testing.T) kont.Either[error, sigx.StopCause] {
	t.Helper()
	select {
	case res := <-f.done:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for poller to stop")
		panic("unreachable")
	}
}

// awaitShutdown returns the terminal flag passed to the shutdown hook
// and asserts the hook fired exactly once.
func (f *fixture) awaitShutdown(t *testing.T) bool {
	t.Helper()
	var terminal bool
	select {
	case terminal = <-f.shutdowns:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for shutdown hook")
	}
	select {
	case <-f.shutdowns:
		t.Fatal("shutdown hook fired more than once")
	case <-time.After(50 * time.Millisecond):
	}
	return terminal
}

// wantStop asserts a Right outcome with the given cause.
func wantStop(t *testing.T, res kont.Either[error, sigx.StopCause], cause sigx.StopCause) {
	t.Helper()
	if !res.IsRight() {
		err, _ := res.GetLeft()
		t.Fatalf("run outcome got Left(%v), want Right(%v)", err, cause)
	}
	got, _ := res.GetRight()
	if got != cause {
		t.Fatalf("stop cause got %v, want %v", got, cause)
	}
}

// wantFailure asserts a Left outcome and returns the error.
func wantFailure(t *testing.T, res kont.Either[error, sigx.StopCause]) error {
	t.Helper()
	if !res.IsLeft() {
		cause, _ := res.GetRight()
		t.Fatalf("run outcome got Right(%v), want Left", cause)
	}
	err, _ := res.GetLeft()
	return err
}
