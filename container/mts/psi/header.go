/*
NAME
  header.go

DESCRIPTION
  header.go provides parsing of the common long section header.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package psi

import (
	"encoding/binary"

	"github.com/ausocean/dvbsi/container/mts/psi/field"
)

// Bit masks of the header's packed fields.
const (
	syntaxMask      = 0x80
	privateMask     = 0x40
	lengthResMask   = 0x30
	versionResMask  = 0xc0
	currentNextMask = 0x01
)

// Header is the common long section header.
type Header struct {
	TableID       byte
	Syntax        bool
	Private       bool
	SectionLength int    // Bytes following the section_length field, CRC included.
	ID            uint16 // Transport stream, program, network or service id.
	Version       byte
	CurrentNext   bool
	SectionID     byte
	LastSection   byte

	// Reserved holds the two reserved bits following the private
	// indicator in bits 3-2 and the two preceding the version in bits 1-0.
	Reserved byte
}

// ParseHeader parses the first HeaderLen bytes of b. The caller must ensure
// b holds at least HeaderLen bytes.
func ParseHeader(b []byte) Header {
	return Header{
		TableID:       b[0],
		Syntax:        b[1]&syntaxMask != 0,
		Private:       b[1]&privateMask != 0,
		SectionLength: field.Length12(b[1:]),
		ID:            field.Uint16(b[3:]),
		Version:       field.Version(b[5]),
		CurrentNext:   b[5]&currentNextMask != 0,
		SectionID:     b[6],
		LastSection:   b[7],
		Reserved:      (b[1]&lengthResMask)>>2 | (b[5]&versionResMask)>>6,
	}
}

// Bytes returns the wire form of h.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderLen)
	b[0] = h.TableID
	l := uint16(h.SectionLength&0x0fff) | uint16(h.Reserved&0x0c)<<10
	if h.Syntax {
		l |= syntaxMask << 8
	}
	if h.Private {
		l |= privateMask << 8
	}
	binary.BigEndian.PutUint16(b[1:], l)
	binary.BigEndian.PutUint16(b[3:], h.ID)
	b[5] = (h.Reserved&0x03)<<6 | (h.Version&0x1f)<<1
	if h.CurrentNext {
		b[5] |= currentNextMask
	}
	b[6] = h.SectionID
	b[7] = h.LastSection
	return b
}
