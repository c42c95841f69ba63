// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sigx

import (
	"math"

	"code.hybscloud.com/atomix"
)

// DemandTracker accumulates outstanding downstream demand across threads.
// Writers are the consumer's goroutines (Request); the single reader is
// the poller goroutine (Take). Take is a single atomic swap-to-zero, so a
// request is never lost and never double-counted.
type DemandTracker struct {
	n atomix.Uint64
}

// Request adds n to the outstanding demand. Non-positive n is ignored.
// Accumulated demand saturates at math.MaxInt64 (effectively unbounded).
func (d *DemandTracker) Request(n int64) {
	if n <= 0 {
		return
	}
	if d.n.Add(uint64(n)) > math.MaxInt64 {
		d.n.Store(math.MaxInt64)
	}
}

// Take atomically drains and returns the accumulated demand.
func (d *DemandTracker) Take() uint64 {
	return d.n.Swap(0)
}
