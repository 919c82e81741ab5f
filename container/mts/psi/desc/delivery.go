/*
NAME
  delivery.go

DESCRIPTION
  delivery.go provides the DVB delivery system descriptors: satellite, cable,
  terrestrial and frequency list.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package desc

import (
	"github.com/pkg/errors"

	"github.com/ausocean/dvbsi/container/mts/psi/field"
)

// Fixed payload lengths of the delivery system descriptors.
const (
	satelliteDeliveryLen   = 11
	cableDeliveryLen       = 11
	terrestrialDeliveryLen = 11
)

// bcd decodes a BCD field, reporting an invalid digit as a warning.
func (p *Parser) bcd(what string, v uint32, digits int) uint32 {
	r, err := field.BCDN(v, digits)
	if err != nil {
		p.Warn(errors.Wrap(err, what))
	}
	return r
}

// SatelliteDelivery is the DVB satellite delivery system descriptor.
type SatelliteDelivery struct {
	Header
	Frequency        uint64 // kHz.
	OrbitalPosition  uint16 // Tenths of a degree.
	WestEast         bool   // East if set.
	Polarization     byte
	RollOff          byte
	ModulationSystem byte // 0 DVB-S, 1 DVB-S2.
	ModulationType   byte
	SymbolRate       uint64 // Symbols per second.
	FECInner         byte
}

func newSatelliteDelivery(p *Parser, h Header, b []byte) (Descriptor, error) {
	if len(b) < satelliteDeliveryLen {
		return nil, truncated("satellite delivery descriptor", satelliteDeliveryLen, len(b))
	}
	d := &SatelliteDelivery{Header: h}
	d.Frequency = uint64(p.bcd("satellite frequency", field.Uint32(b), 8)) * field.SatelliteFrequencyMul
	d.OrbitalPosition = uint16(p.bcd("orbital position", uint32(field.Uint16(b[4:])), 4))

	br := field.NewBitReader(b[6:satelliteDeliveryLen])
	d.WestEast, _ = br.ReadBool()
	d.Polarization = byte(readBits(br, 2))
	d.RollOff = byte(readBits(br, 2))
	d.ModulationSystem = byte(readBits(br, 1))
	d.ModulationType = byte(readBits(br, 2))
	d.SymbolRate = uint64(p.bcd("satellite symbol rate", uint32(readBits(br, 28)), 7)) * field.SymbolRateMul
	d.FECInner = byte(readBits(br, 4))
	return d, nil
}

func printSatelliteDelivery(r Reporter, indent int, d Descriptor) {
	s := d.(*SatelliteDelivery)
	dir := "W"
	if s.WestEast {
		dir = "E"
	}
	r.Printf(indent, "frequency: %d kHz", s.Frequency)
	r.Printf(indent, "orbital position: %d.%d %s", s.OrbitalPosition/10, s.OrbitalPosition%10, dir)
	r.Printf(indent, "polarization: %d, roll off: %d", s.Polarization, s.RollOff)
	r.Printf(indent, "modulation system: %d, modulation type: %d", s.ModulationSystem, s.ModulationType)
	r.Printf(indent, "symbol rate: %d", s.SymbolRate)
	r.Printf(indent, "FEC inner: %d", s.FECInner)
}

// CableDelivery is the DVB cable delivery system descriptor.
type CableDelivery struct {
	Header
	Frequency  uint64 // Hz.
	FECOuter   byte
	Modulation byte
	SymbolRate uint64 // Symbols per second.
	FECInner   byte
}

func newCableDelivery(p *Parser, h Header, b []byte) (Descriptor, error) {
	if len(b) < cableDeliveryLen {
		return nil, truncated("cable delivery descriptor", cableDeliveryLen, len(b))
	}
	d := &CableDelivery{
		Header:     h,
		Frequency:  uint64(p.bcd("cable frequency", field.Uint32(b), 8)) * field.CableFrequencyMul,
		FECOuter:   b[5] & 0x0f,
		Modulation: b[6],
	}
	rate := field.Uint32(b[7:])
	d.SymbolRate = uint64(p.bcd("cable symbol rate", rate>>4, 7)) * field.SymbolRateMul
	d.FECInner = byte(rate & 0x0f)
	return d, nil
}

func printCableDelivery(r Reporter, indent int, d Descriptor) {
	c := d.(*CableDelivery)
	r.Printf(indent, "frequency: %d Hz", c.Frequency)
	r.Printf(indent, "FEC outer: %d, FEC inner: %d", c.FECOuter, c.FECInner)
	r.Printf(indent, "modulation: %d", c.Modulation)
	r.Printf(indent, "symbol rate: %d", c.SymbolRate)
}

// TerrestrialDelivery is the DVB terrestrial delivery system descriptor.
type TerrestrialDelivery struct {
	Header
	CentreFrequency  uint64 // Hz.
	Bandwidth        byte
	Priority         bool
	TimeSlicing      bool
	MPEFEC           bool
	Constellation    byte
	Hierarchy        byte
	CodeRateHP       byte
	CodeRateLP       byte
	GuardInterval    byte
	TransmissionMode byte
	OtherFrequency   bool
}

func newTerrestrialDelivery(p *Parser, h Header, b []byte) (Descriptor, error) {
	if len(b) < terrestrialDeliveryLen {
		return nil, truncated("terrestrial delivery descriptor", terrestrialDeliveryLen, len(b))
	}
	d := &TerrestrialDelivery{
		Header:          h,
		CentreFrequency: uint64(field.Uint32(b)) * field.TerrestrialFrequencyMul,
	}
	br := field.NewBitReader(b[4:7])
	d.Bandwidth = byte(readBits(br, 3))
	d.Priority, _ = br.ReadBool()
	d.TimeSlicing = !readBool(br)
	d.MPEFEC = !readBool(br)
	br.Skip(2)
	d.Constellation = byte(readBits(br, 2))
	d.Hierarchy = byte(readBits(br, 3))
	d.CodeRateHP = byte(readBits(br, 3))
	d.CodeRateLP = byte(readBits(br, 3))
	d.GuardInterval = byte(readBits(br, 2))
	d.TransmissionMode = byte(readBits(br, 2))
	d.OtherFrequency, _ = br.ReadBool()
	return d, nil
}

func printTerrestrialDelivery(r Reporter, indent int, d Descriptor) {
	t := d.(*TerrestrialDelivery)
	r.Printf(indent, "centre frequency: %d Hz", t.CentreFrequency)
	r.Printf(indent, "bandwidth: %d, priority: %v", t.Bandwidth, t.Priority)
	r.Printf(indent, "time slicing: %v, MPE-FEC: %v", t.TimeSlicing, t.MPEFEC)
	r.Printf(indent, "constellation: %d, hierarchy: %d", t.Constellation, t.Hierarchy)
	r.Printf(indent, "code rate HP: %d, LP: %d", t.CodeRateHP, t.CodeRateLP)
	r.Printf(indent, "guard interval: %d, transmission mode: %d", t.GuardInterval, t.TransmissionMode)
	r.Printf(indent, "other frequency: %v", t.OtherFrequency)
}

// Frequency list coding types.
const (
	CodingSatellite   = 1
	CodingCable       = 2
	CodingTerrestrial = 3
)

// FrequencyList is the DVB frequency list descriptor. Frequencies are in the
// units of the matching delivery system descriptor.
type FrequencyList struct {
	Header
	CodingType  byte
	Frequencies []uint64
}

func newFrequencyList(p *Parser, h Header, b []byte) (Descriptor, error) {
	if len(b) < 1 {
		return nil, truncated("frequency list descriptor", 1, len(b))
	}
	d := &FrequencyList{Header: h, CodingType: b[0] & 0x03}
	b = b[1:]
	n := len(b) / 4
	if n == 0 {
		return d, nil
	}
	err := p.store()
	if err != nil {
		return nil, err
	}
	d.Frequencies = make([]uint64, 0, n)
	err = p.entries("frequency list descriptor", b, 4, func(e []byte) {
		v := field.Uint32(e)
		f := uint64(v)
		switch d.CodingType {
		case CodingSatellite:
			f = uint64(p.bcd("frequency list entry", v, 8)) * field.SatelliteFrequencyMul
		case CodingCable:
			f = uint64(p.bcd("frequency list entry", v, 8)) * field.CableFrequencyMul
		case CodingTerrestrial:
			f *= field.TerrestrialFrequencyMul
		}
		d.Frequencies = append(d.Frequencies, f)
	})
	if err != nil {
		p.Tally.Release(1)
		return nil, err
	}
	return d, nil
}

func printFrequencyList(r Reporter, indent int, d Descriptor) {
	f := d.(*FrequencyList)
	r.Printf(indent, "coding type: %d", f.CodingType)
	for _, v := range f.Frequencies {
		r.Printf(indent, "frequency: %d", v)
	}
}

func freeFrequencyList(t *Tally, d Descriptor) {
	f := d.(*FrequencyList)
	if f.Frequencies != nil {
		t.Release(1)
		f.Frequencies = nil
	}
}

// readBits reads from a BitReader whose source length has already been
// checked against the fields being read.
func readBits(br *field.BitReader, n int) uint64 {
	v, _ := br.ReadBits(n)
	return v
}

func readBool(br *field.BitReader) bool {
	v, _ := br.ReadBool()
	return v
}
