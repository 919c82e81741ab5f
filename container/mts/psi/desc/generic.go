/*
NAME
  generic.go

DESCRIPTION
  generic.go provides the opaque descriptor used for unknown tags and the
  small fixed layout MPEG and DVB descriptors.

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

// Opaque holds the verbatim payload of a descriptor without a decoder.
type Opaque struct {
	Header
	Data []byte
}

func newOpaque(p *Parser, h Header, b []byte) (Descriptor, error) {
	d := &Opaque{Header: h}
	var err error
	d.Data, err = p.copyBytes(b)
	return d, err
}

func printOpaque(r Reporter, indent int, d Descriptor) {
	r.Printf(indent, "data: % x", d.(*Opaque).Data)
}

func freeOpaque(t *Tally, d Descriptor) {
	o := d.(*Opaque)
	releaseBytes(t, &o.Data)
}

// copyBytes returns an owned copy of b, accounting for its storage. An empty
// b gives a nil slice and no storage.
func (p *Parser) copyBytes(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, nil
	}
	err := p.store()
	if err != nil {
		return nil, err
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c, nil
}

// releaseBytes releases storage obtained from copyBytes.
func releaseBytes(t *Tally, b *[]byte) {
	if *b != nil {
		t.Release(1)
		*b = nil
	}
}

// Registration is the MPEG registration descriptor.
type Registration struct {
	Header
	FormatIdentifier [4]byte
	AdditionalInfo   []byte
}

const registrationLen = 4

func newRegistration(p *Parser, h Header, b []byte) (Descriptor, error) {
	if len(b) < registrationLen {
		return nil, truncated("registration descriptor", registrationLen, len(b))
	}
	d := &Registration{Header: h}
	copy(d.FormatIdentifier[:], b)
	var err error
	d.AdditionalInfo, err = p.copyBytes(b[registrationLen:])
	return d, err
}

func printRegistration(r Reporter, indent int, d Descriptor) {
	reg := d.(*Registration)
	r.Printf(indent, "format identifier: %q", reg.FormatIdentifier[:])
	if len(reg.AdditionalInfo) != 0 {
		r.Printf(indent, "additional info: % x", reg.AdditionalInfo)
	}
}

func freeRegistration(t *Tally, d Descriptor) { releaseBytes(t, &d.(*Registration).AdditionalInfo) }

// CA is the MPEG conditional access descriptor.
type CA struct {
	Header
	CASystemID  uint16
	CAPID       uint16
	PrivateData []byte
}

const caLen = 4

func newCA(p *Parser, h Header, b []byte) (Descriptor, error) {
	if len(b) < caLen {
		return nil, truncated("CA descriptor", caLen, len(b))
	}
	d := &CA{
		Header:     h,
		CASystemID: field.Uint16(b),
		CAPID:      field.PID(b[2:]),
	}
	var err error
	d.PrivateData, err = p.copyBytes(b[caLen:])
	return d, err
}

func printCA(r Reporter, indent int, d Descriptor) {
	ca := d.(*CA)
	r.Printf(indent, "CA system id: %#04x", ca.CASystemID)
	r.Printf(indent, "CA PID: %#04x", ca.CAPID)
	if len(ca.PrivateData) != 0 {
		r.Printf(indent, "private data: % x", ca.PrivateData)
	}
}

func freeCA(t *Tally, d Descriptor) { releaseBytes(t, &d.(*CA).PrivateData) }

// StreamIdentifier is the DVB stream identifier descriptor.
type StreamIdentifier struct {
	Header
	ComponentTag byte
}

func newStreamIdentifier(p *Parser, h Header, b []byte) (Descriptor, error) {
	if len(b) < 1 {
		return nil, truncated("stream identifier descriptor", 1, len(b))
	}
	return &StreamIdentifier{Header: h, ComponentTag: b[0]}, nil
}

func printStreamIdentifier(r Reporter, indent int, d Descriptor) {
	r.Printf(indent, "component tag: %#02x", d.(*StreamIdentifier).ComponentTag)
}

// PrivateDataSpecifier is the DVB private data specifier descriptor.
type PrivateDataSpecifier struct {
	Header
	Specifier uint32
}

func newPrivateDataSpecifier(p *Parser, h Header, b []byte) (Descriptor, error) {
	if len(b) < 4 {
		return nil, truncated("private data specifier descriptor", 4, len(b))
	}
	return &PrivateDataSpecifier{Header: h, Specifier: field.Uint32(b)}, nil
}

func printPrivateDataSpecifier(r Reporter, indent int, d Descriptor) {
	r.Printf(indent, "specifier: %#08x", d.(*PrivateDataSpecifier).Specifier)
}
