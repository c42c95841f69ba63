// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigx

import "log/slog"

// channelReader wraps one transport channel with fragment reassembly.
// Classifiers behind it only ever see whole messages.
type channelReader struct {
	ch  Channel
	asm assembler
}

func newChannelReader(ch Channel) *channelReader {
	return &channelReader{ch: ch}
}

// poll consumes up to limit physical fragments, invoking h once per
// fully reassembled envelope. Returns the number of fragments consumed,
// 0 immediately when nothing is available.
func (r *channelReader) poll(h func(Envelope), limit int) int {
	return r.ch.Poll(func(f Fragment) {
		msg, ok := r.asm.add(f)
		if !ok {
			return
		}
		if len(msg) == 0 {
			slog.Warn("sigx: zero-length frame dropped", "session", f.Session)
			return
		}
		h(Envelope{Kind: SignalType(msg[0]), Payload: msg[1:], Session: f.Session})
	}, limit)
}

func (r *channelReader) close() error {
	return r.ch.Close()
}
