// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigx

// ErrorSerializer converts error objects to and from error-channel
// payload bytes. Implementations are supplied by the transport owner;
// TextErrorSerializer is the bundled default.
type ErrorSerializer interface {
	// Serialize encodes err as error-channel payload bytes.
	Serialize(err error) []byte
	// Deserialize decodes payload bytes into the remote error object.
	// The second result reports a decode failure, itself terminal.
	Deserialize(data []byte) (remote error, err error)
}

// RemoteError is a stream failure reported by the remote end.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "sigx: remote error: " + e.Message
}

// TextErrorSerializer round-trips the error message as raw bytes.
type TextErrorSerializer struct{}

// Serialize encodes err as its message bytes.
func (TextErrorSerializer) Serialize(err error) []byte {
	return []byte(err.Error())
}

// Deserialize decodes payload bytes into a RemoteError.
// An empty payload is a decode failure: a well-formed Error signal
// always carries a serialized error object.
func (TextErrorSerializer) Deserialize(data []byte) (remote error, err error) {
	if len(data) == 0 {
		return nil, ErrDecode
	}
	return &RemoteError{Message: string(data)}, nil
}
