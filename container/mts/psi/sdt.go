/*
NAME
  sdt.go

DESCRIPTION
  sdt.go provides decoding of the DVB service description table.

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
	sdtFixedLen   = 3
	sdtServiceLen = 5
)

// Running status values of SDT services and EIT events.
const (
	RunningUndefined = iota
	RunningNotRunning
	RunningStartsSoon
	RunningPausing
	RunningRunning
	RunningOffAir
)

// Service is a service entry of an SDT.
type Service struct {
	ServiceID           uint16
	EITSchedule         bool
	EITPresentFollowing bool
	RunningStatus       byte
	FreeCA              bool
	Descriptors         desc.Chain
}

// SDT is the service description table.
type SDT struct {
	table
	OriginalNetworkID uint16
	Services          []Service
}

// TransportStreamID returns the id of the transport stream the SDT
// describes.
func (t *SDT) TransportStreamID() uint16 { return t.ID }

func (t *SDT) markers() []byte { return []byte{SDTActualID, SDTOtherID} }

func (t *SDT) section(p *desc.Parser, h Header, b []byte) error {
	if len(b) < sdtFixedLen {
		return truncated("SDT", sdtFixedLen, len(b))
	}
	onid := field.Uint16(b)
	b = b[sdtFixedLen:]

	var services []Service
	for len(b) >= sdtServiceLen {
		n := field.Length12(b[3:])
		if sdtServiceLen+n > len(b) {
			freeServices(p.Tally, services)
			return truncated("SDT service descriptors", sdtServiceLen+n, len(b))
		}
		err := p.Tally.Alloc(1)
		if err != nil {
			freeServices(p.Tally, services)
			return err
		}
		s := Service{
			ServiceID:           field.Uint16(b),
			EITSchedule:         b[2]&0x02 != 0,
			EITPresentFollowing: b[2]&0x01 != 0,
			RunningStatus:       b[3] >> 5,
			FreeCA:              b[3]&0x10 != 0,
		}
		s.Descriptors, err = p.Parse(b[sdtServiceLen:], n)
		if err != nil {
			p.Tally.Release(1)
			freeServices(p.Tally, services)
			return err
		}
		services = append(services, s)
		b = b[sdtServiceLen+n:]
	}
	if len(b) != 0 {
		p.Warn(&desc.SpuriousError{What: "SDT", N: len(b)})
	}

	if !t.live {
		t.OriginalNetworkID = onid
	}
	t.Services = append(t.Services, services...)
	return nil
}

// Print implements Table.
func (t *SDT) Print(r desc.Reporter) {
	t.printHeader(r, "SDT", "transport stream id")
	r.Printf(1, "original network id %d", t.OriginalNetworkID)
	for _, s := range t.Services {
		r.Printf(1, "service id %d, running status %d, free CA %v, EIT schedule %v, EIT present/following %v",
			s.ServiceID, s.RunningStatus, s.FreeCA, s.EITSchedule, s.EITPresentFollowing)
		s.Descriptors.Print(r, 2)
	}
}

// Free implements Table.
func (t *SDT) Free() {
	freeServices(t.tally, t.Services)
	t.Services = nil
	t.release()
}

func freeServices(tally *desc.Tally, s []Service) {
	freeChains(tally, len(s), func(i int) *desc.Chain { return &s[i].Descriptors })
}
