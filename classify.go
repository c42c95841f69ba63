// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigx

// pollMode selects how the data classifier treats a Next signal.
type pollMode int

const (
	// modeDeliver forwards Next payloads downstream and charges demand.
	modeDeliver pollMode = iota
	// modeProbe is the completion probe: the loop peeks one fragment
	// while demand is zero, looking for a Complete signal. A Next read
	// in this mode cannot be un-read and is parked as the reserved
	// item instead of being delivered.
	modeProbe
)

// dataClassifier interprets data-channel envelopes: Next and Complete.
// Single-threaded, owned by the poller loop.
type dataClassifier struct {
	sub  Subscriber
	mode pollMode

	// reserved is the one Next payload read during a completion probe.
	// The probe polls a single fragment, so at most one reserved item
	// ever exists; it is delivered ahead of any freshly polled item.
	reserved    []byte
	hasReserved bool

	delivered int  // Next signals delivered since the last takeDelivered
	complete  bool // Complete signal observed; set once, never cleared
}

// handle classifies one envelope. Returns false for unrecognized codes.
func (c *dataClassifier) handle(env Envelope) bool {
	switch env.Kind {
	case SignalNext:
		if c.mode == modeProbe {
			c.reserved = env.Payload
			c.hasReserved = true
		} else {
			c.sub.OnNext(env.Payload)
			c.delivered++
		}
	case SignalComplete:
		c.complete = true
	default:
		return false
	}
	return true
}

// takeDelivered returns and resets the per-poll Next delivery count.
func (c *dataClassifier) takeDelivered() int {
	n := c.delivered
	c.delivered = 0
	return n
}

// deliverReserved forwards the parked item downstream and clears it.
func (c *dataClassifier) deliverReserved() {
	payload := c.reserved
	c.reserved = nil
	c.hasReserved = false
	c.sub.OnNext(payload)
}

// errorClassifier interprets error-channel envelopes: Error only.
// Deserialization goes through the session's ErrorSerializer; both a
// decoded remote error and a decode failure are terminal and reach the
// subscriber through the poller's exactly-once failure notifier, which
// doubles as the error-received state the loop breaks on.
type errorClassifier struct {
	codec ErrorSerializer
	fail  func(error)
}

// handle classifies one envelope. Returns false for unrecognized codes.
func (c *errorClassifier) handle(env Envelope) bool {
	if env.Kind != SignalError {
		return false
	}
	remote, err := c.codec.Deserialize(env.Payload)
	if err != nil {
		c.fail(err)
	} else {
		c.fail(remote)
	}
	return true
}
