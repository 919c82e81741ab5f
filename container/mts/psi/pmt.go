/*
NAME
  pmt.go

DESCRIPTION
  pmt.go provides decoding of the program map table.

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
	pmtFixedLen  = 4
	pmtStreamLen = 5
)

// Stream is an elementary stream entry of a PMT.
type Stream struct {
	Type        byte
	PID         uint16
	Descriptors desc.Chain
}

// PMT is the program map table.
type PMT struct {
	table
	PCRPID      uint16
	Descriptors desc.Chain
	Streams     []Stream
}

// ProgramNumber returns the program number the PMT describes.
func (t *PMT) ProgramNumber() uint16 { return t.ID }

func (t *PMT) markers() []byte { return []byte{PMTID} }

func (t *PMT) section(p *desc.Parser, h Header, b []byte) error {
	if len(b) < pmtFixedLen {
		return truncated("PMT", pmtFixedLen, len(b))
	}
	pcr := field.PID(b)
	n := field.Length10(b[2:])
	if pmtFixedLen+n > len(b) {
		return truncated("PMT program info", pmtFixedLen+n, len(b))
	}
	top, err := p.Parse(b[pmtFixedLen:], n)
	if err != nil {
		return err
	}
	b = b[pmtFixedLen+n:]

	var streams []Stream
	fail := func(err error) error {
		freeStreams(p.Tally, streams)
		top.Free(p.Tally)
		return err
	}
	for len(b) >= pmtStreamLen {
		n := field.Length10(b[3:])
		if pmtStreamLen+n > len(b) {
			return fail(truncated("PMT stream info", pmtStreamLen+n, len(b)))
		}
		err := p.Tally.Alloc(1)
		if err != nil {
			return fail(err)
		}
		s := Stream{Type: b[0], PID: field.PID(b[1:])}
		s.Descriptors, err = p.Parse(b[pmtStreamLen:], n)
		if err != nil {
			p.Tally.Release(1)
			return fail(err)
		}
		streams = append(streams, s)
		b = b[pmtStreamLen+n:]
	}
	if len(b) != 0 {
		p.Warn(&desc.SpuriousError{What: "PMT", N: len(b)})
	}

	if !t.live {
		t.PCRPID = pcr
	}
	t.Descriptors.Append(top)
	t.Streams = append(t.Streams, streams...)
	return nil
}

// Print implements Table.
func (t *PMT) Print(r desc.Reporter) {
	t.printHeader(r, "PMT", "program number")
	r.Printf(1, "PCR PID %#04x", t.PCRPID)
	t.Descriptors.Print(r, 1)
	for _, s := range t.Streams {
		r.Printf(1, "stream type %#02x, PID %#04x", s.Type, s.PID)
		s.Descriptors.Print(r, 2)
	}
}

// Free implements Table.
func (t *PMT) Free() {
	freeStreams(t.tally, t.Streams)
	t.Streams = nil
	t.Descriptors.Free(t.tally)
	t.release()
}

func freeStreams(tally *desc.Tally, s []Stream) {
	freeChains(tally, len(s), func(i int) *desc.Chain { return &s[i].Descriptors })
}
