// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigx

import "errors"

var (
	// ErrClosed reports an Offer on a closed pipe.
	ErrClosed = errors.New("sigx: pipe closed")
	// ErrUnknownStream reports a Subscribe on a stream id the transport
	// has no channel for.
	ErrUnknownStream = errors.New("sigx: unknown stream id")
	// ErrDecode reports an error-channel payload that cannot be
	// deserialized into an error object. Terminal for the session.
	ErrDecode = errors.New("sigx: malformed error payload")
)
