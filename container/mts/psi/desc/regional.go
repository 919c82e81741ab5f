/*
NAME
  regional.go

DESCRIPTION
  regional.go provides the ATSC service location and ISDB TS information
  descriptors.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package desc

import (
	"github.com/asticode/go-astikit"

	"github.com/ausocean/dvbsi/container/mts/psi/field"
)

// ServiceLocationElement is one elementary stream of an ATSC service location
// descriptor.
type ServiceLocationElement struct {
	StreamType    byte
	ElementaryPID uint16
	Language      string
}

// ServiceLocation is the ATSC service location descriptor.
type ServiceLocation struct {
	Header
	PCRPID   uint16
	Elements []ServiceLocationElement
}

const (
	serviceLocationLen        = 3
	serviceLocationElementLen = 6
)

func newServiceLocation(p *Parser, h Header, b []byte) (Descriptor, error) {
	if len(b) < serviceLocationLen {
		return nil, truncated("service location descriptor", serviceLocationLen, len(b))
	}
	d := &ServiceLocation{Header: h, PCRPID: field.PID(b)}
	n := int(b[2])
	b = b[serviceLocationLen:]
	if want := n * serviceLocationElementLen; want > len(b) {
		return nil, truncated("service location elements", want, len(b))
	}
	if n == 0 {
		return d, nil
	}
	err := p.store()
	if err != nil {
		return nil, err
	}
	d.Elements = make([]ServiceLocationElement, 0, n)
	err = p.entries("service location descriptor", b[:n*serviceLocationElementLen], serviceLocationElementLen, func(e []byte) {
		d.Elements = append(d.Elements, ServiceLocationElement{
			StreamType:    e[0],
			ElementaryPID: field.PID(e[1:]),
			Language:      string(e[3:6]),
		})
	})
	if err != nil {
		p.Tally.Release(1)
		return nil, err
	}
	if extra := len(b) - n*serviceLocationElementLen; extra != 0 {
		p.Warn(&SpuriousError{What: "service location descriptor", N: extra})
	}
	return d, nil
}

func printServiceLocation(r Reporter, indent int, d Descriptor) {
	s := d.(*ServiceLocation)
	r.Printf(indent, "PCR PID: %#04x", s.PCRPID)
	for _, e := range s.Elements {
		r.Printf(indent, "stream type: %#02x, PID: %#04x, language: %s", e.StreamType, e.ElementaryPID, e.Language)
	}
}

func freeServiceLocation(t *Tally, d Descriptor) {
	s := d.(*ServiceLocation)
	if s.Elements != nil {
		t.Release(1)
		s.Elements = nil
	}
}

// TransmissionType is one transmission type loop of an ISDB TS information
// descriptor.
type TransmissionType struct {
	Info       byte
	ServiceIDs []uint16
}

// TSInformation is the ISDB TS information descriptor.
type TSInformation struct {
	Header
	RemoteControlKeyID byte
	Name               Text
	Types              []TransmissionType
}

func newTSInformation(p *Parser, h Header, b []byte) (Descriptor, error) {
	it := astikit.NewBytesIterator(b)
	bs, err := it.NextBytesNoCopy(2)
	if err != nil {
		return nil, truncated("TS information descriptor", 2, len(b))
	}
	d := &TSInformation{Header: h, RemoteControlKeyID: bs[0]}
	nameLen := int(bs[1] >> 2)
	count := int(bs[1] & 0x03)
	name, err := it.NextBytes(nameLen)
	if err != nil {
		return nil, truncated("TS name", 2+nameLen, len(b))
	}
	d.Name = Text(name)

	var types []TransmissionType
	for i := 0; i < count; i++ {
		bs, err = it.NextBytesNoCopy(2)
		if err != nil {
			return nil, truncated("transmission type", it.Offset()+2, len(b))
		}
		tt := TransmissionType{Info: bs[0]}
		n := int(bs[1])
		for j := 0; j < n; j++ {
			id, err := it.NextBytesNoCopy(2)
			if err != nil {
				return nil, truncated("transmission type service", it.Offset()+2, len(b))
			}
			tt.ServiceIDs = append(tt.ServiceIDs, field.Uint16(id))
		}
		types = append(types, tt)
	}
	if it.HasBytesLeft() {
		p.Warn(&SpuriousError{What: "TS information descriptor", N: len(b) - it.Offset()})
	}
	if len(types) != 0 {
		err = p.store()
		if err != nil {
			return nil, err
		}
		d.Types = types
	}
	return d, nil
}

func printTSInformation(r Reporter, indent int, d Descriptor) {
	ts := d.(*TSInformation)
	r.Printf(indent, "remote control key id: %d", ts.RemoteControlKeyID)
	r.Printf(indent, "TS name: %s", ts.Name)
	for _, t := range ts.Types {
		r.Printf(indent, "transmission type: %#02x", t.Info)
		for _, id := range t.ServiceIDs {
			r.Printf(indent+1, "service id: %d", id)
		}
	}
}

func freeTSInformation(t *Tally, d Descriptor) {
	ts := d.(*TSInformation)
	if ts.Types != nil {
		t.Release(1)
		ts.Types = nil
	}
}
