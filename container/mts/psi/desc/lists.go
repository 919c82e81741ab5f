/*
NAME
  lists.go

DESCRIPTION
  lists.go provides the descriptors made of a repeated fixed size entry:
  language, CA identifier, service list, logical channel number and ISDB
  partial reception.

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

// entries walks b as a sequence of size byte entries, calling fn with each.
// A short tail is reported as spurious.
func (p *Parser) entries(what string, b []byte, size int, fn func(e []byte)) error {
	it := astikit.NewBytesIterator(b)
	for it.Len()-it.Offset() >= size {
		e, err := it.NextBytesNoCopy(size)
		if err != nil {
			return err
		}
		fn(e)
	}
	if it.HasBytesLeft() {
		p.Warn(&SpuriousError{What: what, N: it.Len() - it.Offset()})
	}
	return nil
}

// LanguageEntry is one entry of an ISO 639 language descriptor.
type LanguageEntry struct {
	Language  string
	AudioType byte
}

// Language is the ISO 639 language descriptor. Language and AudioType are
// those of the first entry.
type Language struct {
	Header
	Language  string
	AudioType byte
	Entries   []LanguageEntry
}

const languageEntryLen = 4

func newLanguage(p *Parser, h Header, b []byte) (Descriptor, error) {
	d := &Language{Header: h}
	n := len(b) / languageEntryLen
	if n == 0 {
		if len(b) != 0 {
			return nil, truncated("language descriptor", languageEntryLen, len(b))
		}
		return d, nil
	}
	err := p.store()
	if err != nil {
		return nil, err
	}
	d.Entries = make([]LanguageEntry, 0, n)
	err = p.entries("language descriptor", b, languageEntryLen, func(e []byte) {
		d.Entries = append(d.Entries, LanguageEntry{Language: string(e[:3]), AudioType: e[3]})
	})
	if err != nil {
		p.Tally.Release(1)
		return nil, err
	}
	d.Language = d.Entries[0].Language
	d.AudioType = d.Entries[0].AudioType
	return d, nil
}

func printLanguage(r Reporter, indent int, d Descriptor) {
	for _, e := range d.(*Language).Entries {
		r.Printf(indent, "language: %s, audio type: %d", e.Language, e.AudioType)
	}
}

func freeLanguage(t *Tally, d Descriptor) {
	l := d.(*Language)
	if l.Entries != nil {
		t.Release(1)
		l.Entries = nil
	}
}

// CAIdentifier is the DVB CA identifier descriptor.
type CAIdentifier struct {
	Header
	CASystemIDs []uint16
}

func newCAIdentifier(p *Parser, h Header, b []byte) (Descriptor, error) {
	d := &CAIdentifier{Header: h}
	n := len(b) / 2
	if n == 0 {
		return d, nil
	}
	err := p.store()
	if err != nil {
		return nil, err
	}
	d.CASystemIDs = make([]uint16, 0, n)
	err = p.entries("CA identifier descriptor", b, 2, func(e []byte) {
		d.CASystemIDs = append(d.CASystemIDs, field.Uint16(e))
	})
	if err != nil {
		p.Tally.Release(1)
		return nil, err
	}
	return d, nil
}

func printCAIdentifier(r Reporter, indent int, d Descriptor) {
	for _, id := range d.(*CAIdentifier).CASystemIDs {
		r.Printf(indent, "CA system id: %#04x", id)
	}
}

func freeCAIdentifier(t *Tally, d Descriptor) {
	c := d.(*CAIdentifier)
	if c.CASystemIDs != nil {
		t.Release(1)
		c.CASystemIDs = nil
	}
}

// ServiceListEntry is one entry of a service list descriptor.
type ServiceListEntry struct {
	ServiceID   uint16
	ServiceType byte
}

// ServiceList is the DVB service list descriptor.
type ServiceList struct {
	Header
	Services []ServiceListEntry
}

const serviceListEntryLen = 3

func newServiceList(p *Parser, h Header, b []byte) (Descriptor, error) {
	d := &ServiceList{Header: h}
	n := len(b) / serviceListEntryLen
	if n == 0 {
		return d, nil
	}
	err := p.store()
	if err != nil {
		return nil, err
	}
	d.Services = make([]ServiceListEntry, 0, n)
	err = p.entries("service list descriptor", b, serviceListEntryLen, func(e []byte) {
		d.Services = append(d.Services, ServiceListEntry{ServiceID: field.Uint16(e), ServiceType: e[2]})
	})
	if err != nil {
		p.Tally.Release(1)
		return nil, err
	}
	return d, nil
}

func printServiceList(r Reporter, indent int, d Descriptor) {
	for _, s := range d.(*ServiceList).Services {
		r.Printf(indent, "service id: %d, type: %#02x", s.ServiceID, s.ServiceType)
	}
}

func freeServiceList(t *Tally, d Descriptor) {
	s := d.(*ServiceList)
	if s.Services != nil {
		t.Release(1)
		s.Services = nil
	}
}

// LogicalChannelEntry is one entry of a logical channel number descriptor.
type LogicalChannelEntry struct {
	ServiceID uint16
	Visible   bool
	Number    uint16
}

// LogicalChannel is the EACEM/NorDig logical channel number descriptor. The
// order of Channels is that of the broadcast.
type LogicalChannel struct {
	Header
	Channels []LogicalChannelEntry
}

const logicalChannelEntryLen = 4

func newLogicalChannel(p *Parser, h Header, b []byte) (Descriptor, error) {
	d := &LogicalChannel{Header: h}
	n := len(b) / logicalChannelEntryLen
	if n == 0 {
		return d, nil
	}
	err := p.store()
	if err != nil {
		return nil, err
	}
	d.Channels = make([]LogicalChannelEntry, 0, n)
	err = p.entries("logical channel descriptor", b, logicalChannelEntryLen, func(e []byte) {
		d.Channels = append(d.Channels, LogicalChannelEntry{
			ServiceID: field.Uint16(e),
			Visible:   e[2]&0x80 != 0,
			Number:    field.Bits16(e[2:], 0, 10),
		})
	})
	if err != nil {
		p.Tally.Release(1)
		return nil, err
	}
	return d, nil
}

func printLogicalChannel(r Reporter, indent int, d Descriptor) {
	for _, c := range d.(*LogicalChannel).Channels {
		r.Printf(indent, "service id: %d, LCN: %d, visible: %v", c.ServiceID, c.Number, c.Visible)
	}
}

func freeLogicalChannel(t *Tally, d Descriptor) {
	l := d.(*LogicalChannel)
	if l.Channels != nil {
		t.Release(1)
		l.Channels = nil
	}
}

// PartialReception is the ISDB partial reception descriptor.
type PartialReception struct {
	Header
	ServiceIDs []uint16
}

func newPartialReception(p *Parser, h Header, b []byte) (Descriptor, error) {
	d := &PartialReception{Header: h}
	n := len(b) / 2
	if n == 0 {
		return d, nil
	}
	err := p.store()
	if err != nil {
		return nil, err
	}
	d.ServiceIDs = make([]uint16, 0, n)
	err = p.entries("partial reception descriptor", b, 2, func(e []byte) {
		d.ServiceIDs = append(d.ServiceIDs, field.Uint16(e))
	})
	if err != nil {
		p.Tally.Release(1)
		return nil, err
	}
	return d, nil
}

func printPartialReception(r Reporter, indent int, d Descriptor) {
	for _, id := range d.(*PartialReception).ServiceIDs {
		r.Printf(indent, "service id: %d", id)
	}
}

func freePartialReception(t *Tally, d Descriptor) {
	pr := d.(*PartialReception)
	if pr.ServiceIDs != nil {
		t.Release(1)
		pr.ServiceIDs = nil
	}
}
