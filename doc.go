// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sigx adapts a fragmented, session-oriented signal transport into
// the demand-driven subscriber/subscription streaming contract: a consumer
// requests N items, the poller delivers at most N, followed eventually by
// exactly one terminal signal (completion or error).
//
// # Architecture
//
//   - Transport: two independent channels polled non-blocking — a data
//     channel (Next/Complete signals) and a high-priority error channel.
//     A poll that finds nothing consumes nothing and returns 0; producer
//     backpressure surfaces as [code.hybscloud.com/iox.ErrWouldBlock].
//   - Demand: [DemandTracker] accumulates requests atomically across
//     threads; the poller drains it with a single swap-to-zero.
//   - Loop: [SignalPoller.Run] executes a single-threaded state machine
//     with adaptive backoff idling via [code.hybscloud.com/iox.Backoff].
//     It never blocks and never delivers beyond outstanding demand.
//   - In-memory transport: [Pipe] carries fragments over a bounded
//     lock-free SPSC ring from [code.hybscloud.com/lfq]; [MemTransport]
//     maps stream ids to pipes.
//
// # Signal wire format
//
// Every reassembled message starts with a one-byte discriminant:
// 0x00 Next (payload follows), 0x01 Complete (payload ignored),
// 0x02 Error (payload is a serialized error). Unknown discriminants are
// logged and skipped for forward compatibility.
//
// # Lifecycle
//
// One poller drives one downstream subscriber for one session. Run opens
// both channel subscriptions, attaches the subscriber, loops until a
// terminal signal, downstream cancellation, or [SignalPoller.Shutdown],
// then closes both channels and fires the shutdown hook exactly once.
// The run outcome is a [code.hybscloud.com/kont.Either]: Left carries the
// error that failed the stream, Right the normal [StopCause].
//
// # Example
//
//	mt := sigx.NewMemTransport()
//	data := sigx.NewPipe(128)
//	mt.Add(cfg.DataStreamID, data)
//	mt.Add(cfg.ErrorStreamID, sigx.NewPipe(8))
//
//	p := sigx.New(cfg, mt, subscriber)
//	go p.Run()
//
//	data.Send(sigx.SignalNext, payload)
//	data.Send(sigx.SignalComplete, nil)
package sigx
