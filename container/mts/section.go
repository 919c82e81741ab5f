/*
NAME
  section.go

DESCRIPTION
  section.go provides the SectionAssembler, which rebuilds PSI/SI sections
  from the MPEG-TS packets of a single PID.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mts

import (
	"github.com/Comcast/gots/packet"
	gotspsi "github.com/Comcast/gots/psi"
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/dvbsi/container/mts/psi"
	"github.com/ausocean/dvbsi/container/mts/psi/field"
)

// ErrUnexpectedPID is returned when a packet is written to an assembler for
// another PID.
var ErrUnexpectedPID = errors.New("packet PID does not match assembler")

// noCC is the expected continuity counter before any packet is seen.
const noCC = 16

// stuffing fills the remainder of a packet after the last section.
const stuffing = 0xff

// SectionAssembler reassembles the sections carried on one PID. Sections may
// span packets and several may share a packet. A SectionAssembler is not safe
// for concurrent use.
type SectionAssembler struct {
	pid      uint16
	log      logging.Logger
	checkCRC bool

	buf    []byte // Section bytes collected so far.
	active bool   // Whether buf holds the start of a section.
	expCC  int
}

// NewSectionAssembler returns a SectionAssembler for sections on pid. If
// checkCRC is true, sections with a syntax indicator whose CRC does not match
// are dropped.
func NewSectionAssembler(pid uint16, log logging.Logger, checkCRC bool) *SectionAssembler {
	return &SectionAssembler{pid: pid, log: log, checkCRC: checkCRC, expCC: noCC}
}

// PID returns the PID the assembler collects.
func (a *SectionAssembler) PID() uint16 { return a.pid }

// Reset discards any partly assembled section.
func (a *SectionAssembler) Reset() {
	a.buf = a.buf[:0]
	a.active = false
	a.expCC = noCC
}

// Write consumes one MPEG-TS packet and returns the sections it completes.
// Each returned section is a copy owned by the caller.
func (a *SectionAssembler) Write(b []byte) ([][]byte, error) {
	if len(b) != PacketSize {
		return nil, ErrInvalidLen
	}
	if b[0] != SyncByte {
		return nil, ErrNoSync
	}
	var pkt packet.Packet
	copy(pkt[:], b)
	if pid := packet.Pid(&pkt); uint16(pid) != a.pid {
		return nil, errors.Wrapf(ErrUnexpectedPID, "got PID %#04x, want %#04x", pid, a.pid)
	}

	payload, err := packet.Payload(&pkt)
	if err != nil || len(payload) == 0 {
		// Adaptation field only.
		return nil, nil
	}

	cc := ContinuityCounter(b)
	switch {
	case a.expCC == noCC || cc == a.expCC:
	case cc == (a.expCC-1)&0x0f:
		a.log.Debug("dropping duplicate packet", "PID", a.pid, "cc", cc)
		return nil, nil
	default:
		if a.active {
			a.log.Warning("continuity error, dropping partial section", "PID", a.pid, "cc", cc, "expected", a.expCC)
		}
		a.buf = a.buf[:0]
		a.active = false
	}
	a.expCC = (cc + 1) & 0x0f

	if !packet.PayloadUnitStartIndicator(&pkt) {
		if !a.active {
			return nil, nil
		}
		a.buf = append(a.buf, payload...)
		return a.sections(), nil
	}

	pointer := int(payload[0])
	if 1+pointer > len(payload) {
		a.log.Warning("pointer field past end of packet", "PID", a.pid, "pointer", pointer)
		a.buf = a.buf[:0]
		a.active = false
		return nil, nil
	}

	var out [][]byte
	if a.active {
		a.buf = append(a.buf, payload[1:1+pointer]...)
		out = a.sections()
		if len(a.buf) != 0 {
			a.log.Warning("section interrupted by new section", "PID", a.pid, "have", len(a.buf))
		}
	}
	if 1+pointer+lengthFieldEnd <= len(payload) {
		a.log.Debug("section start", "PID", a.pid, "table id", gotspsi.TableID(payload), "section length", gotspsi.SectionLength(payload))
	}
	a.buf = append(a.buf[:0], payload[1+pointer:]...)
	a.active = true
	return append(out, a.sections()...), nil
}

// lengthFieldEnd is the number of bytes of a section up to the end of its
// section_length field.
const lengthFieldEnd = 3

// sections removes and returns the complete sections at the start of the
// assembly buffer.
func (a *SectionAssembler) sections() [][]byte {
	var out [][]byte
	for {
		if len(a.buf) == 0 || a.buf[0] == stuffing {
			a.buf = a.buf[:0]
			a.active = false
			return out
		}
		if len(a.buf) < lengthFieldEnd {
			return out
		}
		n := lengthFieldEnd + field.Length12(a.buf[1:])
		if n > psi.MaxSectionLen {
			a.log.Warning("section too long, dropping", "PID", a.pid, "length", n)
			a.buf = a.buf[:0]
			a.active = false
			return out
		}
		if len(a.buf) < n {
			return out
		}

		s := make([]byte, n)
		copy(s, a.buf)
		a.buf = a.buf[:copy(a.buf, a.buf[n:])]

		if a.checkCRC && s[1]&0x80 != 0 && !psi.ValidCRC(s) {
			a.log.Warning("section CRC mismatch, dropping", "PID", a.pid, "table id", s[0])
			continue
		}
		out = append(out, s)
	}
}
