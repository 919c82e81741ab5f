/*
NAME
  tally.go

DESCRIPTION
  tally.go provides accounting of the records held by decoded tables.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package desc

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// Tally counts the live nodes (tables, entries, descriptors and descriptor
// payload storage) created by decoding. A nil *Tally counts nothing and never
// fails. A Tally may be shared between goroutines.
type Tally struct {
	// Max is the most nodes that may be live at once; zero means no limit.
	// Exceeding it makes allocation fail with ErrOutOfMemory.
	Max int64

	live atomic.Int64
}

// Alloc records n new nodes.
func (t *Tally) Alloc(n int) error {
	if t == nil {
		return nil
	}
	v := t.live.Add(int64(n))
	if t.Max > 0 && v > t.Max {
		t.live.Add(-int64(n))
		return errors.Wrapf(ErrOutOfMemory, "%d nodes live, limit %d", v-int64(n), t.Max)
	}
	return nil
}

// Release records n nodes freed.
func (t *Tally) Release(n int) {
	if t == nil {
		return
	}
	t.live.Add(-int64(n))
}

// Live returns the number of nodes allocated and not yet released.
func (t *Tally) Live() int64 {
	if t == nil {
		return 0
	}
	return t.live.Load()
}
