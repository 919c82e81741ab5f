/*
NAME
  eit.go

DESCRIPTION
  eit.go provides decoding of the DVB event information table.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package psi

import (
	"time"

	"github.com/pkg/errors"

	"github.com/ausocean/dvbsi/container/mts/psi/desc"
	"github.com/ausocean/dvbsi/container/mts/psi/field"
)

const (
	eitFixedLen = 6
	eitEventLen = 12
)

// Event is an event entry of an EIT.
type Event struct {
	EventID       uint16
	Start         time.Time // Zero if undefined.
	Duration      time.Duration
	RunningStatus byte
	FreeCA        bool
	Descriptors   desc.Chain
}

// EIT is the event information table.
type EIT struct {
	table
	TransportID       uint16
	OriginalNetworkID uint16
	LastSegment       byte
	LastTableID       byte
	Events            []Event
}

// ServiceID returns the id of the service whose events the EIT holds.
func (t *EIT) ServiceID() uint16 { return t.ID }

func (t *EIT) markers() []byte {
	ids := make([]byte, 0, EITScheduleLastID-EITActualID+1)
	for id := EITActualID; id <= EITScheduleLastID; id++ {
		ids = append(ids, byte(id))
	}
	return ids
}

func (t *EIT) section(p *desc.Parser, h Header, b []byte) error {
	if len(b) < eitFixedLen {
		return truncated("EIT", eitFixedLen, len(b))
	}
	fixed := b[:eitFixedLen]
	b = b[eitFixedLen:]

	var events []Event
	for len(b) >= eitEventLen {
		n := field.Length12(b[10:])
		if eitEventLen+n > len(b) {
			freeEvents(p.Tally, events)
			return truncated("EIT event descriptors", eitEventLen+n, len(b))
		}
		err := p.Tally.Alloc(1)
		if err != nil {
			freeEvents(p.Tally, events)
			return err
		}
		e := Event{
			EventID:       field.Uint16(b),
			RunningStatus: b[10] >> 5,
			FreeCA:        b[10]&0x10 != 0,
		}
		if !undefined(b[2:7]) {
			e.Start, err = field.MJDTime(b[2:7])
			if err != nil {
				p.Warn(errors.Wrapf(err, "event %d start time", e.EventID))
			}
		}
		if !undefined(b[7:10]) {
			e.Duration, err = field.BCDDuration(b[7:10])
			if err != nil {
				p.Warn(errors.Wrapf(err, "event %d duration", e.EventID))
			}
		}
		e.Descriptors, err = p.Parse(b[eitEventLen:], n)
		if err != nil {
			p.Tally.Release(1)
			freeEvents(p.Tally, events)
			return err
		}
		events = append(events, e)
		b = b[eitEventLen+n:]
	}
	if len(b) != 0 {
		p.Warn(&desc.SpuriousError{What: "EIT", N: len(b)})
	}

	if !t.live {
		t.TransportID = field.Uint16(fixed)
		t.OriginalNetworkID = field.Uint16(fixed[2:])
		t.LastSegment = fixed[4]
		t.LastTableID = fixed[5]
	}
	t.Events = append(t.Events, events...)
	return nil
}

// undefined reports whether every bit of a time field is set, which marks
// the field as undefined.
func undefined(b []byte) bool {
	for _, v := range b {
		if v != 0xff {
			return false
		}
	}
	return true
}

// Print implements Table.
func (t *EIT) Print(r desc.Reporter) {
	t.printHeader(r, "EIT", "service id")
	r.Printf(1, "transport stream id %d, original network id %d", t.TransportID, t.OriginalNetworkID)
	r.Printf(1, "last segment %d, last table id %#02x", t.LastSegment, t.LastTableID)
	for _, e := range t.Events {
		start := "undefined"
		if !e.Start.IsZero() {
			start = e.Start.Format(time.RFC3339)
		}
		r.Printf(1, "event id %d, start %s, duration %v, running status %d, free CA %v",
			e.EventID, start, e.Duration, e.RunningStatus, e.FreeCA)
		e.Descriptors.Print(r, 2)
	}
}

// Free implements Table.
func (t *EIT) Free() {
	freeEvents(t.tally, t.Events)
	t.Events = nil
	t.release()
}

func freeEvents(tally *desc.Tally, e []Event) {
	freeChains(tally, len(e), func(i int) *desc.Chain { return &e[i].Descriptors })
}
