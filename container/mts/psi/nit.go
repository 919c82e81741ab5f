/*
NAME
  nit.go

DESCRIPTION
  nit.go provides decoding of the DVB network information table.

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
	loopLengthLen   = 2
	nitTransportLen = 6
)

// Transport is a transport stream entry of a NIT.
type Transport struct {
	TransportID       uint16
	OriginalNetworkID uint16
	Descriptors       desc.Chain
}

// NIT is the network information table.
type NIT struct {
	table
	Descriptors desc.Chain
	Transports  []Transport
}

// NetworkID returns the id of the network the NIT describes.
func (t *NIT) NetworkID() uint16 { return t.ID }

func (t *NIT) markers() []byte { return []byte{NITActualID, NITOtherID} }

func (t *NIT) section(p *desc.Parser, h Header, b []byte) error {
	if len(b) < loopLengthLen {
		return truncated("NIT network descriptors length", loopLengthLen, len(b))
	}
	n := field.Length12(b)
	if loopLengthLen+n > len(b) {
		return truncated("NIT network descriptors", loopLengthLen+n, len(b))
	}
	top, err := p.Parse(b[loopLengthLen:], n)
	if err != nil {
		return err
	}
	b = b[loopLengthLen+n:]

	var transports []Transport
	fail := func(err error) error {
		freeTransports(p.Tally, transports)
		top.Free(p.Tally)
		return err
	}
	if len(b) < loopLengthLen {
		return fail(truncated("NIT transport loop length", loopLengthLen, len(b)))
	}
	n = field.Length12(b)
	if loopLengthLen+n > len(b) {
		return fail(truncated("NIT transport loop", loopLengthLen+n, len(b)))
	}
	extra := len(b) - loopLengthLen - n
	b = b[loopLengthLen : loopLengthLen+n]

	for len(b) >= nitTransportLen {
		n := field.Length12(b[4:])
		if nitTransportLen+n > len(b) {
			return fail(truncated("NIT transport descriptors", nitTransportLen+n, len(b)))
		}
		err := p.Tally.Alloc(1)
		if err != nil {
			return fail(err)
		}
		ts := Transport{TransportID: field.Uint16(b), OriginalNetworkID: field.Uint16(b[2:])}
		ts.Descriptors, err = p.Parse(b[nitTransportLen:], n)
		if err != nil {
			p.Tally.Release(1)
			return fail(err)
		}
		transports = append(transports, ts)
		b = b[nitTransportLen+n:]
	}
	if extra += len(b); extra != 0 {
		p.Warn(&desc.SpuriousError{What: "NIT", N: extra})
	}

	t.Descriptors.Append(top)
	t.Transports = append(t.Transports, transports...)
	return nil
}

// Print implements Table.
func (t *NIT) Print(r desc.Reporter) {
	t.printHeader(r, "NIT", "network id")
	t.Descriptors.Print(r, 1)
	for _, ts := range t.Transports {
		r.Printf(1, "transport stream id %d, original network id %d", ts.TransportID, ts.OriginalNetworkID)
		ts.Descriptors.Print(r, 2)
	}
}

// Free implements Table.
func (t *NIT) Free() {
	freeTransports(t.tally, t.Transports)
	t.Transports = nil
	t.Descriptors.Free(t.tally)
	t.release()
}

func freeTransports(tally *desc.Tally, ts []Transport) {
	freeChains(tally, len(ts), func(i int) *desc.Chain { return &ts[i].Descriptors })
}
