// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigx

// Subscriber is the downstream consumer of one polled stream.
// All four callbacks are invoked on the poller goroutine. After a
// terminal callback (OnComplete or OnError) no further callbacks occur.
type Subscriber interface {
	// OnSubscribe is called once before any other callback; the given
	// subscription drives demand and cancellation for this stream.
	OnSubscribe(s Subscription)
	// OnNext delivers one stream item, never exceeding requested demand.
	OnNext(payload []byte)
	// OnComplete signals successful end of stream.
	OnComplete()
	// OnError signals failed end of stream.
	OnError(err error)
}

// Subscription is the downstream's handle on an active stream.
// Both methods are safe to call from any goroutine.
type Subscription interface {
	// Request grants the poller permission to deliver n more items.
	// Non-positive n is ignored.
	Request(n int64)
	// Cancel marks the downstream as no longer interested. Cooperative:
	// the poller observes it between iterations and stops without a
	// terminal callback.
	Cancel()
}
