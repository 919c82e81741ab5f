/*
NAME
  psi.go

DESCRIPTION
  psi.go provides the table record interface, table ids and common record
  state shared by the table decoders.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package psi decodes MPEG-TS program specific information and the DVB and
// ATSC service information tables carried alongside it. Sections are decoded
// into table records that accumulate the sections of a multi-section table.
package psi

import (
	"github.com/pkg/errors"

	"github.com/ausocean/dvbsi/container/mts/psi/desc"
)

// Section layout.
const (
	HeaderLen     = 8    // Common long section header.
	CRCSize       = 4    // CRC-32 trailer.
	MaxSectionLen = 4096 // Largest private section, header included.

	// lengthOffset is the number of bytes preceding the end of the
	// section_length field; section_length counts the bytes after it.
	lengthOffset = 3
)

// Table IDs.
const (
	PATID              = 0x00
	CATID              = 0x01
	PMTID              = 0x02
	NITActualID        = 0x40
	NITOtherID         = 0x41
	SDTActualID        = 0x42
	SDTOtherID         = 0x46
	EITActualID        = 0x4e
	EITOtherID         = 0x4f
	EITScheduleFirstID = 0x50
	EITScheduleLastID  = 0x6f
	MGTID              = 0xc7
)

// Table is a decoded table record. A Table is populated by Decoder.Decode,
// one section per call, and released with Free.
type Table interface {
	// Head returns the header of the first section decoded into the table.
	Head() Header

	// Sections returns the section numbers decoded into the table, in
	// decode order.
	Sections() []byte

	// Print renders the table and its descriptors to r.
	Print(r desc.Reporter)

	// Free releases every entry and descriptor owned by the table. Free on
	// a table that is already free, or that was never populated, does
	// nothing.
	Free()

	base() *table
	markers() []byte
	section(p *desc.Parser, h Header, b []byte) error
}

// New returns an empty table record for the given table id.
func New(tableID byte) (Table, error) {
	switch {
	case tableID == PATID:
		return &PAT{}, nil
	case tableID == CATID:
		return &CAT{}, nil
	case tableID == PMTID:
		return &PMT{}, nil
	case tableID == NITActualID, tableID == NITOtherID:
		return &NIT{}, nil
	case tableID == SDTActualID, tableID == SDTOtherID:
		return &SDT{}, nil
	case tableID >= EITActualID && tableID <= EITScheduleLastID:
		return &EIT{}, nil
	case tableID == MGTID:
		return &MGT{}, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedTable, "table id %#02x", tableID)
	}
}

// table holds the state common to every table record.
type table struct {
	Header
	sections []byte
	tally    *desc.Tally
	live     bool
}

// Head implements Table.
func (t *table) Head() Header { return t.Header }

// Sections implements Table.
func (t *table) Sections() []byte { return t.sections }

func (t *table) base() *table { return t }

// release releases the record node of a populated table.
func (t *table) release() {
	if !t.live {
		return
	}
	t.tally.Release(1)
	t.live = false
	t.sections = nil
}

// printHeader prints the header line common to all tables.
func (t *table) printHeader(r desc.Reporter, name string, id string) {
	r.Printf(0, "%s: table id %#02x, %s %d, version %d, current %v, sections %v of %d",
		name, t.TableID, id, t.ID, t.Version, t.CurrentNext, t.sections, t.LastSection)
}

// freeChains frees the descriptor chain of each of n entries, as returned by
// chain.
func freeChains(tally *desc.Tally, n int, chain func(i int) *desc.Chain) {
	for i := 0; i < n; i++ {
		chain(i).Free(tally)
	}
	tally.Release(n)
}
