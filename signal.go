// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigx

// SignalType is the one-byte discriminant prefixing every reassembled
// message on the data and error channels.
type SignalType byte

const (
	// SignalNext carries one stream item; the payload bytes belong to
	// the downstream subscriber.
	SignalNext SignalType = 0x00
	// SignalComplete marks successful end of stream. Payload is ignored.
	SignalComplete SignalType = 0x01
	// SignalError carries a serialized error object on the error channel.
	SignalError SignalType = 0x02
)

// String returns the signal name for logging.
func (s SignalType) String() string {
	switch s {
	case SignalNext:
		return "Next"
	case SignalComplete:
		return "Complete"
	case SignalError:
		return "Error"
	}
	return "Unrecognized"
}

// Envelope is a typed view over one reassembled transport message.
// Ephemeral: constructed per polled message and consumed immediately by a
// classifier. The only payload that outlives its iteration is the single
// reserved Next item held by the poller during a completion probe.
type Envelope struct {
	Kind    SignalType
	Payload []byte
	Session Session
}
