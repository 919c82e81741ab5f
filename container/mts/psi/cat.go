/*
NAME
  cat.go

DESCRIPTION
  cat.go provides decoding of the conditional access table.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package psi

import (
	"github.com/ausocean/dvbsi/container/mts/psi/desc"
)

// CAT is the conditional access table.
type CAT struct {
	table
	Descriptors desc.Chain
}

func (t *CAT) markers() []byte { return []byte{CATID} }

func (t *CAT) section(p *desc.Parser, h Header, b []byte) error {
	c, err := p.Parse(b, len(b))
	if err != nil {
		return err
	}
	t.Descriptors.Append(c)
	return nil
}

// Print implements Table.
func (t *CAT) Print(r desc.Reporter) {
	t.printHeader(r, "CAT", "id")
	t.Descriptors.Print(r, 1)
}

// Free implements Table.
func (t *CAT) Free() {
	t.Descriptors.Free(t.tally)
	t.release()
}
