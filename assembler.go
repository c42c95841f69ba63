// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigx

// assembler reassembles logical messages from physical fragments, one
// partial buffer per session. Owned by a single channel reader, so no
// synchronization.
type assembler struct {
	partial map[Session][]byte
}

// add feeds one fragment. Returns the complete message and true when the
// fragment finished a logical message. A fragment continuing a session
// the assembler never saw a begin for is dropped.
func (a *assembler) add(f Fragment) ([]byte, bool) {
	if f.Flags&flagWhole == flagWhole {
		return f.Data, true
	}
	if f.Flags&FlagBegin != 0 {
		if a.partial == nil {
			a.partial = make(map[Session][]byte)
		}
		a.partial[f.Session] = append([]byte(nil), f.Data...)
		return nil, false
	}
	buf, ok := a.partial[f.Session]
	if !ok {
		return nil, false
	}
	buf = append(buf, f.Data...)
	if f.Flags&FlagEnd != 0 {
		delete(a.partial, f.Session)
		return buf, true
	}
	a.partial[f.Session] = buf
	return nil, false
}
