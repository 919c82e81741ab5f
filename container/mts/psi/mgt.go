/*
NAME
  mgt.go

DESCRIPTION
  mgt.go provides decoding of the ATSC master guide table.

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
	"github.com/ausocean/dvbsi/container/mts/psi/field"
)

const (
	mgtFixedLen = 3
	mgtTableLen = 11
)

// MGTTable is a table entry of an ATSC MGT.
type MGTTable struct {
	Type        uint16
	PID         uint16
	Version     byte
	NumberBytes uint32
	Descriptors desc.Chain
}

// MGT is the ATSC master guide table.
type MGT struct {
	table
	ProtocolVersion byte
	Tables          []MGTTable
	Descriptors     desc.Chain
}

func (t *MGT) markers() []byte { return []byte{MGTID} }

func (t *MGT) section(p *desc.Parser, h Header, b []byte) error {
	if len(b) < mgtFixedLen {
		return truncated("MGT", mgtFixedLen, len(b))
	}
	version := b[0]
	count := int(field.Uint16(b[1:]))
	b = b[mgtFixedLen:]

	var tables []MGTTable
	fail := func(err error) error {
		freeMGTTables(p.Tally, tables)
		return err
	}
	for i := 0; i < count; i++ {
		if len(b) < mgtTableLen {
			return fail(truncated("MGT table entry", mgtTableLen, len(b)))
		}
		n := field.Length12(b[9:])
		if mgtTableLen+n > len(b) {
			return fail(truncated("MGT table descriptors", mgtTableLen+n, len(b)))
		}
		err := p.Tally.Alloc(1)
		if err != nil {
			return fail(err)
		}
		e := MGTTable{
			Type:        field.Uint16(b),
			PID:         field.PID(b[2:]),
			Version:     b[4] & 0x1f,
			NumberBytes: field.Uint32(b[5:]),
		}
		e.Descriptors, err = p.Parse(b[mgtTableLen:], n)
		if err != nil {
			p.Tally.Release(1)
			return fail(err)
		}
		tables = append(tables, e)
		b = b[mgtTableLen+n:]
	}

	if len(b) < loopLengthLen {
		return fail(truncated("MGT descriptors length", loopLengthLen, len(b)))
	}
	n := field.Length12(b)
	if loopLengthLen+n > len(b) {
		return fail(truncated("MGT descriptors", loopLengthLen+n, len(b)))
	}
	top, err := p.Parse(b[loopLengthLen:], n)
	if err != nil {
		return fail(err)
	}
	if extra := len(b) - loopLengthLen - n; extra != 0 {
		p.Warn(&desc.SpuriousError{What: "MGT", N: extra})
	}

	if !t.live {
		t.ProtocolVersion = version
	}
	t.Tables = append(t.Tables, tables...)
	t.Descriptors.Append(top)
	return nil
}

// Print implements Table.
func (t *MGT) Print(r desc.Reporter) {
	t.printHeader(r, "MGT", "id")
	r.Printf(1, "protocol version %d", t.ProtocolVersion)
	for _, e := range t.Tables {
		r.Printf(1, "table type %#04x, PID %#04x, version %d, %d bytes", e.Type, e.PID, e.Version, e.NumberBytes)
		e.Descriptors.Print(r, 2)
	}
	t.Descriptors.Print(r, 1)
}

// Free implements Table.
func (t *MGT) Free() {
	freeMGTTables(t.tally, t.Tables)
	t.Tables = nil
	t.Descriptors.Free(t.tally)
	t.release()
}

func freeMGTTables(tally *desc.Tally, ts []MGTTable) {
	freeChains(tally, len(ts), func(i int) *desc.Chain { return &ts[i].Descriptors })
}
