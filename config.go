// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigx

// defaultFragmentLimit bounds data fragments consumed per loop iteration
// when the configuration leaves FragmentLimit zero. Caps single-iteration
// latency independently of how much demand is outstanding.
const defaultFragmentLimit = 16

// Config carries the transport coordinates and collaborators of one
// poller session.
type Config struct {
	// Address is the transport address both channels subscribe on.
	Address string
	// DataStreamID is the stream carrying Next and Complete signals.
	DataStreamID uint32
	// ErrorStreamID is the stream carrying Error signals; polled first,
	// every iteration, independent of demand.
	ErrorStreamID uint32
	// FragmentLimit is the most data fragments polled per iteration.
	// Zero selects defaultFragmentLimit.
	FragmentLimit int
	// Serializer decodes error-channel payloads. Nil selects
	// TextErrorSerializer.
	Serializer ErrorSerializer
	// OnShutdown is invoked exactly once at session end. The argument is
	// true when the session ended terminally (Complete, Error, or
	// downstream cancellation) and false on an external Shutdown call.
	OnShutdown func(terminal bool)
}

func (c Config) withDefaults() Config {
	if c.FragmentLimit <= 0 {
		c.FragmentLimit = defaultFragmentLimit
	}
	if c.Serializer == nil {
		c.Serializer = TextErrorSerializer{}
	}
	if c.OnShutdown == nil {
		c.OnShutdown = func(bool) {}
	}
	return c
}
