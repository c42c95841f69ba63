// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigx

import "code.hybscloud.com/atomix"

// Session identifies the originating session of a fragment.
// Each call to NewPipe assigns the next session value.
type Session = uint32

// sessions is the global monotonic counter for session ids.
var sessions atomix.Uint32

// nextSession returns the next monotonically increasing session id.
func nextSession() Session {
	return sessions.Add(1)
}
