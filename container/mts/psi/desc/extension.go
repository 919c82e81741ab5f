/*
NAME
  extension.go

DESCRIPTION
  extension.go provides the DVB extension descriptor and the T2 delivery
  system descriptor carried in it.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package desc

import (
	"github.com/ausocean/dvbsi/container/mts/psi/field"
)

// Extension is a DVB extension descriptor with an extension tag we do not
// decode.
type Extension struct {
	Header
	ExtensionTag byte
	Data         []byte
}

// T2Subcell is a DVB-T2 sub-cell.
type T2Subcell struct {
	CellIDExtension     byte
	TransposerFrequency uint64 // Hz.
}

// T2Cell is a DVB-T2 cell and its centre frequencies.
type T2Cell struct {
	CellID            uint16
	CentreFrequencies []uint64 // Hz.
	Subcells          []T2Subcell
}

// T2Delivery is the DVB-T2 delivery system descriptor. The fields after
// SystemID are only present when Extended is set.
type T2Delivery struct {
	Header
	PLPID            byte
	SystemID         uint16
	Extended         bool
	SISOMISO         byte
	Bandwidth        byte
	GuardInterval    byte
	TransmissionMode byte
	OtherFrequency   bool
	TFS              bool
	Cells            []T2Cell
}

const (
	t2BaseLen     = 3
	t2ExtendedLen = 5
	t2SubcellLen  = 5
)

func newExtension(p *Parser, h Header, b []byte) (Descriptor, error) {
	if len(b) < 1 {
		return nil, truncated("extension descriptor", 1, len(b))
	}
	if b[0] == ExtensionTagT2Delivery {
		return newT2Delivery(p, h, b[1:])
	}
	d := &Extension{Header: h, ExtensionTag: b[0]}
	var err error
	d.Data, err = p.copyBytes(b[1:])
	return d, err
}

func newT2Delivery(p *Parser, h Header, b []byte) (Descriptor, error) {
	if len(b) < t2BaseLen {
		return nil, truncated("T2 delivery descriptor", t2BaseLen, len(b))
	}
	d := &T2Delivery{Header: h, PLPID: b[0], SystemID: field.Uint16(b[1:])}
	b = b[t2BaseLen:]
	if len(b) == 0 {
		return d, nil
	}
	if len(b) < 2 {
		return nil, truncated("T2 delivery descriptor", t2ExtendedLen, t2BaseLen+len(b))
	}
	d.Extended = true
	br := field.NewBitReader(b[:2])
	d.SISOMISO = byte(readBits(br, 2))
	d.Bandwidth = byte(readBits(br, 4))
	br.Skip(2)
	d.GuardInterval = byte(readBits(br, 3))
	d.TransmissionMode = byte(readBits(br, 3))
	d.OtherFrequency = readBool(br)
	d.TFS = readBool(br)
	b = b[2:]
	if len(b) == 0 {
		return d, nil
	}

	var cells []T2Cell
	for len(b) != 0 {
		var (
			c   T2Cell
			err error
		)
		c, b, err = d.cell(b)
		if err != nil {
			return nil, err
		}
		cells = append(cells, c)
	}
	err := p.store()
	if err != nil {
		return nil, err
	}
	d.Cells = cells
	return d, nil
}

// cell decodes one cell from the start of b, returning it and the bytes after
// it.
func (d *T2Delivery) cell(b []byte) (T2Cell, []byte, error) {
	var c T2Cell
	if len(b) < 2 {
		return c, nil, truncated("T2 cell", 2, len(b))
	}
	c.CellID = field.Uint16(b)
	b = b[2:]

	if d.TFS {
		if len(b) < 1 {
			return c, nil, truncated("T2 cell frequency loop", 1, 0)
		}
		n := int(b[0])
		if 1+n > len(b) {
			return c, nil, truncated("T2 cell frequency loop", 1+n, len(b))
		}
		for i := 1; i+4 <= 1+n; i += 4 {
			c.CentreFrequencies = append(c.CentreFrequencies, uint64(field.Uint32(b[i:]))*field.TerrestrialFrequencyMul)
		}
		b = b[1+n:]
	} else {
		if len(b) < 4 {
			return c, nil, truncated("T2 cell centre frequency", 4, len(b))
		}
		c.CentreFrequencies = []uint64{uint64(field.Uint32(b)) * field.TerrestrialFrequencyMul}
		b = b[4:]
	}

	if len(b) < 1 {
		return c, nil, truncated("T2 subcell loop", 1, 0)
	}
	n := int(b[0])
	if 1+n > len(b) {
		return c, nil, truncated("T2 subcell loop", 1+n, len(b))
	}
	for i := 1; i+t2SubcellLen <= 1+n; i += t2SubcellLen {
		c.Subcells = append(c.Subcells, T2Subcell{
			CellIDExtension:     b[i],
			TransposerFrequency: uint64(field.Uint32(b[i+1:])) * field.TerrestrialFrequencyMul,
		})
	}
	return c, b[1+n:], nil
}

func printExtension(r Reporter, indent int, d Descriptor) {
	switch e := d.(type) {
	case *T2Delivery:
		r.Printf(indent, "T2 delivery system, PLP id: %d, T2 system id: %#04x", e.PLPID, e.SystemID)
		if !e.Extended {
			return
		}
		r.Printf(indent, "SISO/MISO: %d, bandwidth: %d", e.SISOMISO, e.Bandwidth)
		r.Printf(indent, "guard interval: %d, transmission mode: %d", e.GuardInterval, e.TransmissionMode)
		r.Printf(indent, "other frequency: %v, TFS: %v", e.OtherFrequency, e.TFS)
		for _, c := range e.Cells {
			r.Printf(indent, "cell id: %d", c.CellID)
			for _, f := range c.CentreFrequencies {
				r.Printf(indent+1, "centre frequency: %d Hz", f)
			}
			for _, s := range c.Subcells {
				r.Printf(indent+1, "subcell %d, transposer frequency: %d Hz", s.CellIDExtension, s.TransposerFrequency)
			}
		}
	case *Extension:
		r.Printf(indent, "extension tag: %#02x", e.ExtensionTag)
		r.Printf(indent, "data: % x", e.Data)
	}
}

func freeExtension(t *Tally, d Descriptor) {
	switch e := d.(type) {
	case *T2Delivery:
		if e.Cells != nil {
			t.Release(1)
			e.Cells = nil
		}
	case *Extension:
		releaseBytes(t, &e.Data)
	}
}
