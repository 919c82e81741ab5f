/*
NAME
  decoder.go

DESCRIPTION
  decoder.go provides the Decoder, which validates a section and dispatches
  it to the decoder of the table it is being accumulated into.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package psi

import (
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/dvbsi/container/mts/psi/desc"
)

// Result describes a successful section decode.
type Result struct {
	// N is the number of bytes of the section consumed, header and CRC
	// included.
	N int

	// Warnings holds the non-fatal conditions met during the decode.
	Warnings []error
}

// Decoder decodes sections into table records. A Decoder is not safe for
// concurrent use; separate Decoders share no state.
type Decoder struct {
	log      logging.Logger
	tally    *desc.Tally
	checkCRC bool
}

// NewDecoder returns a new Decoder logging to log and configured by the given
// options.
func NewDecoder(log logging.Logger, options ...func(*Decoder) error) (*Decoder, error) {
	d := &Decoder{log: log}
	for _, option := range options {
		err := option(d)
		if err != nil {
			return nil, errors.Wrap(err, "could not apply decoder option")
		}
	}
	return d, nil
}

// WithTally is an option that can be passed to NewDecoder to count the nodes
// of decoded records in t. When t has a limit, decodes that would exceed it
// fail with ErrOutOfMemory.
func WithTally(t *desc.Tally) func(*Decoder) error {
	return func(d *Decoder) error {
		if t == nil {
			return errors.New("nil tally")
		}
		d.tally = t
		d.log.Debug("configured node tally", "max", t.Max)
		return nil
	}
}

// CheckCRC is an option that can be passed to NewDecoder to verify the CRC of
// each section before decoding it.
func CheckCRC(check bool) func(*Decoder) error {
	return func(d *Decoder) error {
		d.checkCRC = check
		d.log.Debug("configured CRC check", "enabled", check)
		return nil
	}
}

// Tally returns the node tally used by d, which may be nil.
func (d *Decoder) Tally() *desc.Tally { return d.tally }

// Decode decodes the section at the start of b into t. If t has not yet been
// populated, the section's table id must be one t accepts and the section
// becomes its first; otherwise the section must carry the same table id and
// its entries are appended to those already held.
//
// On error t is left as it was before the call.
func (d *Decoder) Decode(t Table, b []byte) (Result, error) {
	tb := t.base()
	want := t.markers()
	if tb.live {
		want = []byte{tb.TableID}
	}
	if len(b) == 0 {
		return Result{}, truncated("section", HeaderLen, 0)
	}
	if !contains(want, b[0]) {
		return Result{}, &MarkerError{Got: b[0], Want: want}
	}
	if len(b) < HeaderLen {
		return Result{}, truncated("section header", HeaderLen, len(b))
	}

	h := ParseHeader(b)
	n := lengthOffset + h.SectionLength
	if n < HeaderLen+CRCSize {
		return Result{}, truncated("section length", HeaderLen+CRCSize, n)
	}
	if len(b) < n {
		return Result{}, truncated("section", n, len(b))
	}
	if d.checkCRC && !ValidCRC(b[:n]) {
		return Result{}, errors.Wrapf(ErrInvalidCRC, "table id %#02x section %d", h.TableID, h.SectionID)
	}

	fresh := !tb.live
	if fresh {
		err := d.tally.Alloc(1)
		if err != nil {
			return Result{}, err
		}
	}

	p := &desc.Parser{Log: d.log, Tally: d.tally}
	err := t.section(p, h, b[HeaderLen:n-CRCSize])
	if err != nil {
		if fresh {
			d.tally.Release(1)
		}
		d.log.Debug("could not decode section", "table id", h.TableID, "section", h.SectionID, "error", err.Error())
		return Result{Warnings: p.Warnings}, errors.Wrapf(err, "could not decode table %#02x section %d", h.TableID, h.SectionID)
	}

	if fresh {
		tb.Header = h
		tb.tally = d.tally
		tb.live = true
	}
	tb.sections = append(tb.sections, h.SectionID)
	d.log.Debug("decoded section", "table id", h.TableID, "id", h.ID, "section", h.SectionID, "last", h.LastSection, "warnings", len(p.Warnings))
	return Result{N: n, Warnings: p.Warnings}, nil
}

// DecodePAT decodes a PAT section into t, or into a new PAT if t is nil, and
// returns the table.
func (d *Decoder) DecodePAT(t *PAT, b []byte) (*PAT, Result, error) {
	fresh := t == nil
	if fresh {
		t = &PAT{}
	}
	res, err := d.Decode(t, b)
	if err != nil && fresh {
		return nil, res, err
	}
	return t, res, err
}

// DecodeCAT decodes a CAT section into t, or into a new CAT if t is nil.
func (d *Decoder) DecodeCAT(t *CAT, b []byte) (*CAT, Result, error) {
	fresh := t == nil
	if fresh {
		t = &CAT{}
	}
	res, err := d.Decode(t, b)
	if err != nil && fresh {
		return nil, res, err
	}
	return t, res, err
}

// DecodePMT decodes a PMT section into t, or into a new PMT if t is nil.
func (d *Decoder) DecodePMT(t *PMT, b []byte) (*PMT, Result, error) {
	fresh := t == nil
	if fresh {
		t = &PMT{}
	}
	res, err := d.Decode(t, b)
	if err != nil && fresh {
		return nil, res, err
	}
	return t, res, err
}

// DecodeNIT decodes a NIT section into t, or into a new NIT if t is nil.
func (d *Decoder) DecodeNIT(t *NIT, b []byte) (*NIT, Result, error) {
	fresh := t == nil
	if fresh {
		t = &NIT{}
	}
	res, err := d.Decode(t, b)
	if err != nil && fresh {
		return nil, res, err
	}
	return t, res, err
}

// DecodeSDT decodes an SDT section into t, or into a new SDT if t is nil.
func (d *Decoder) DecodeSDT(t *SDT, b []byte) (*SDT, Result, error) {
	fresh := t == nil
	if fresh {
		t = &SDT{}
	}
	res, err := d.Decode(t, b)
	if err != nil && fresh {
		return nil, res, err
	}
	return t, res, err
}

// DecodeEIT decodes an EIT section into t, or into a new EIT if t is nil.
func (d *Decoder) DecodeEIT(t *EIT, b []byte) (*EIT, Result, error) {
	fresh := t == nil
	if fresh {
		t = &EIT{}
	}
	res, err := d.Decode(t, b)
	if err != nil && fresh {
		return nil, res, err
	}
	return t, res, err
}

// DecodeMGT decodes an ATSC MGT section into t, or into a new MGT if t is nil.
func (d *Decoder) DecodeMGT(t *MGT, b []byte) (*MGT, Result, error) {
	fresh := t == nil
	if fresh {
		t = &MGT{}
	}
	res, err := d.Decode(t, b)
	if err != nil && fresh {
		return nil, res, err
	}
	return t, res, err
}

func contains(s []byte, v byte) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
