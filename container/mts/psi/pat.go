/*
NAME
  pat.go

DESCRIPTION
  pat.go provides decoding of the program association table.

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

const patEntryLen = 4

// Program is a PAT entry. Program number zero maps the network PID.
type Program struct {
	Number uint16
	PID    uint16
}

// PAT is the program association table.
type PAT struct {
	table
	Programs []Program
}

// TransportStreamID returns the transport stream id of the PAT.
func (t *PAT) TransportStreamID() uint16 { return t.ID }

// PMTPIDs returns the PMT PID of each program, skipping the network PID.
func (t *PAT) PMTPIDs() []uint16 {
	var pids []uint16
	for _, p := range t.Programs {
		if p.Number != 0 {
			pids = append(pids, p.PID)
		}
	}
	return pids
}

func (t *PAT) markers() []byte { return []byte{PATID} }

// section collects program entries until the loop ends or an entry carries
// the null PID, which ends collection for the section.
func (t *PAT) section(p *desc.Parser, h Header, b []byte) error {
	var progs []Program
	for len(b) >= patEntryLen {
		pid := field.PID(b[2:])
		if pid == field.NullPID {
			b = nil
			break
		}
		err := p.Tally.Alloc(1)
		if err != nil {
			p.Tally.Release(len(progs))
			return err
		}
		progs = append(progs, Program{Number: field.Uint16(b), PID: pid})
		b = b[patEntryLen:]
	}
	if len(b) != 0 {
		p.Warn(&desc.SpuriousError{What: "PAT", N: len(b)})
	}
	t.Programs = append(t.Programs, progs...)
	return nil
}

// Print implements Table.
func (t *PAT) Print(r desc.Reporter) {
	t.printHeader(r, "PAT", "transport stream id")
	for _, p := range t.Programs {
		if p.Number == 0 {
			r.Printf(1, "network PID %#04x", p.PID)
			continue
		}
		r.Printf(1, "program %d, PMT PID %#04x", p.Number, p.PID)
	}
}

// Free implements Table.
func (t *PAT) Free() {
	t.tally.Release(len(t.Programs))
	t.Programs = nil
	t.release()
}
