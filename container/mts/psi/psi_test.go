/*
NAME
  psi_test.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package psi

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/ausocean/dvbsi/container/mts/psi/desc"
)

const errCmp = "Incorrect output, for: %v \nwant: %v, \ngot:  %v"

// section returns a long section with the given header fields and body,
// closed by a valid CRC.
func section(tableID byte, id uint16, num, last byte, body []byte) []byte {
	h := Header{
		TableID:       tableID,
		Syntax:        true,
		SectionLength: HeaderLen - lengthOffset + len(body) + CRCSize,
		ID:            id,
		CurrentNext:   true,
		SectionID:     num,
		LastSection:   last,
		Reserved:      0x0f,
	}
	return AppendCRC(append(h.Bytes(), body...))
}

func cat(b ...[]byte) []byte { return bytes.Join(b, nil) }

func newDecoder(t *testing.T, options ...func(*Decoder) error) *Decoder {
	d, err := NewDecoder((*logging.TestLogger)(t), options...)
	if err != nil {
		t.Fatalf("could not create decoder: %v", err)
	}
	return d
}

func TestHeaderRoundTrip(t *testing.T) {
	tests := [][]byte{
		{0x00, 0xb0, 0x0d, 0x00, 0x01, 0xc1, 0x00, 0x00},
		{0x02, 0xb0, 0x17, 0x00, 0x01, 0xc1, 0x00, 0x00},
		{0x40, 0xf0, 0x21, 0x30, 0x39, 0xdd, 0x01, 0x01},
		{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
	}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		b := make([]byte, HeaderLen)
		rng.Read(b)
		tests = append(tests, b)
	}
	for _, b := range tests {
		got := ParseHeader(b).Bytes()
		if !bytes.Equal(got, b) {
			t.Errorf(errCmp, "header round trip", b, got)
		}
	}
}

func TestParseHeader(t *testing.T) {
	got := ParseHeader([]byte{0x40, 0xf0, 0x21, 0x30, 0x39, 0xdd, 0x01, 0x02})
	want := Header{
		TableID:       0x40,
		Syntax:        true,
		Private:       true,
		SectionLength: 0x021,
		ID:            0x3039,
		Version:       0x0e,
		CurrentNext:   true,
		SectionID:     1,
		LastSection:   2,
		Reserved:      0x0f,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
}

func TestPAT(t *testing.T) {
	in := []byte{
		0x00, 0xb0, 0x0d, 0x00, 0x01, 0xc1, 0x00, 0x00,
		0x00, 0x01, 0xe0, 0x20,
		0x00, 0x00, 0x00, 0x00, // CRC placeholder.
	}
	d := newDecoder(t)
	pat, res, err := d.DecodePAT(nil, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.N != len(in) {
		t.Errorf(errCmp, "bytes consumed", len(in), res.N)
	}
	want := []Program{{Number: 1, PID: 0x20}}
	if diff := cmp.Diff(want, pat.Programs); diff != "" {
		t.Errorf("programs mismatch (-want +got):\n%s", diff)
	}
	if pat.TransportStreamID() != 1 {
		t.Errorf(errCmp, "transport stream id", 1, pat.TransportStreamID())
	}
	if !cmp.Equal(pat.Sections(), []byte{0}) {
		t.Errorf(errCmp, "sections", []byte{0}, pat.Sections())
	}
}

func TestPATNullPID(t *testing.T) {
	entries := [][]byte{
		{0x00, 0x00, 0xe0, 0x10},
		{0x00, 0x01, 0xe1, 0x00},
		{0x00, 0x02, 0xe2, 0x00},
		{0x00, 0x03, 0xe3, 0x00},
	}
	null := []byte{0x00, 0x09, 0xff, 0xff}
	for k := 0; k <= len(entries); k++ {
		body := cat(cat(entries[:k]...), null, cat(entries[k:]...))
		pat, res, err := newDecoder(t).DecodePAT(nil, section(PATID, 1, 0, 0, body))
		if err != nil {
			t.Fatalf("unexpected error for k=%d: %v", k, err)
		}
		if len(pat.Programs) != k {
			t.Errorf(errCmp, "programs before null PID", k, len(pat.Programs))
		}
		if len(res.Warnings) != 0 {
			t.Errorf("unexpected warnings: %v", res.Warnings)
		}
	}
}

func TestPATSpuriousBytes(t *testing.T) {
	body := []byte{0x00, 0x01, 0xe1, 0x00, 0xaa, 0xbb}
	pat, res, err := newDecoder(t).DecodePAT(nil, section(PATID, 1, 0, 0, body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pat.Programs) != 1 {
		t.Errorf(errCmp, "programs", 1, len(pat.Programs))
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], ErrSpuriousBytes) {
		t.Errorf("expected spurious bytes warning, got: %v", res.Warnings)
	}
}

func TestInvalidMarker(t *testing.T) {
	d := newDecoder(t)
	patSec := section(PATID, 1, 0, 1, []byte{0x00, 0x01, 0xe1, 0x00})
	pmtSec := section(PMTID, 1, 0, 0, []byte{0xe1, 0x00, 0xf0, 0x00})

	pat, _, err := d.DecodePAT(nil, pmtSec)
	var me *MarkerError
	if !errors.As(err, &me) || me.Got != PMTID {
		t.Fatalf("expected marker error, got: %v", err)
	}
	if pat != nil {
		t.Error("expected no table from failed first section")
	}

	pat, _, err = d.DecodePAT(nil, patSec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := append([]Program(nil), pat.Programs...)
	_, _, err = d.DecodePAT(pat, pmtSec)
	if !errors.Is(err, ErrInvalidMarker) {
		t.Fatalf("expected invalid marker, got: %v", err)
	}
	if diff := cmp.Diff(before, pat.Programs); diff != "" {
		t.Errorf("programs changed by rejected section (-want +got):\n%s", diff)
	}
	if !cmp.Equal(pat.Sections(), []byte{0}) {
		t.Errorf(errCmp, "sections", []byte{0}, pat.Sections())
	}

	// A continuation must carry the table id of the first section.
	nit, _, err := d.DecodeNIT(nil, section(NITActualID, 1, 0, 1, []byte{0xf0, 0x00, 0xf0, 0x00}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _, err = d.DecodeNIT(nit, section(NITOtherID, 1, 1, 1, []byte{0xf0, 0x00, 0xf0, 0x00}))
	if !errors.Is(err, ErrInvalidMarker) {
		t.Errorf("expected invalid marker for other network continuation, got: %v", err)
	}
}

// pmtBody is a PMT with a CA descriptor, an H.264 stream with a stream
// identifier and an audio stream with a language descriptor.
var pmtBody = []byte{
	0xe1, 0x00, // PCR PID 0x100.
	0xf0, 0x06, // Program info length.
	0x09, 0x04, 0x0b, 0x00, 0xe1, 0x23,
	0x1b, 0xe1, 0x00, 0xf0, 0x03,
	0x52, 0x01, 0x01,
	0x03, 0xe1, 0x01, 0xf0, 0x06,
	0x0a, 0x04, 'e', 'n', 'g', 0x00,
}

func TestPMT(t *testing.T) {
	tally := &desc.Tally{}
	d := newDecoder(t, WithTally(tally))
	pmt, res, err := d.DecodePMT(nil, section(PMTID, 7, 0, 0, pmtBody))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if pmt.PCRPID != 0x100 || pmt.ProgramNumber() != 7 {
		t.Errorf("unexpected fixed fields: PCR PID %#x, program %d", pmt.PCRPID, pmt.ProgramNumber())
	}
	want := []Stream{
		{
			Type: 0x1b,
			PID:  0x100,
			Descriptors: desc.Chain{
				&desc.StreamIdentifier{Header: desc.Header{Tag: desc.TagStreamIdentifier, Length: 1}, ComponentTag: 1},
			},
		},
		{
			Type: 0x03,
			PID:  0x101,
			Descriptors: desc.Chain{
				&desc.Language{
					Header:   desc.Header{Tag: desc.TagLanguage, Length: 4},
					Language: "eng",
					Entries:  []desc.LanguageEntry{{Language: "eng"}},
				},
			},
		},
	}
	if diff := cmp.Diff(want, pmt.Streams); diff != "" {
		t.Errorf("streams mismatch (-want +got):\n%s", diff)
	}
	if ca, ok := pmt.Descriptors.Find(desc.TagCA).(*desc.CA); !ok || ca.CAPID != 0x123 {
		t.Errorf("unexpected program descriptors: %v", pmt.Descriptors)
	}

	pmt.Free()
	if tally.Live() != 0 {
		t.Errorf(errCmp, "live nodes after free", 0, tally.Live())
	}
}

func TestTruncated(t *testing.T) {
	tests := []struct {
		name    string
		tableID byte
		body    []byte
	}{
		{
			name:    "program info past section",
			tableID: PMTID,
			body:    []byte{0xe1, 0x00, 0xf0, 0x08, 0x52, 0x01, 0x01},
		},
		{
			name:    "stream info past section",
			tableID: PMTID,
			body:    []byte{0xe1, 0x00, 0xf0, 0x00, 0x1b, 0xe1, 0x00, 0xf0, 0x04, 0x52, 0x01, 0x01},
		},
		{
			name:    "descriptor past stream info",
			tableID: PMTID,
			body:    []byte{0xe1, 0x00, 0xf0, 0x00, 0x1b, 0xe1, 0x00, 0xf0, 0x03, 0x52, 0x02, 0x01},
		},
		{
			name:    "transport loop past section",
			tableID: NITActualID,
			body:    []byte{0xf0, 0x00, 0xf0, 0x0c, 0x00, 0x01, 0x00, 0x02, 0xf0, 0x00},
		},
		{
			name:    "missing transport loop length",
			tableID: NITActualID,
			body:    []byte{0xf0, 0x02, 0x40, 0x00},
		},
		{
			name:    "service descriptors past section",
			tableID: SDTActualID,
			body:    []byte{0x00, 0x01, 0xff, 0x00, 0x01, 0xfc, 0x80, 0x05, 0x48, 0x01},
		},
		{
			name:    "event descriptors past section",
			tableID: EITActualID,
			body: []byte{
				0x00, 0x01, 0x00, 0x02, 0x00, 0x4e,
				0x00, 0x01, 0xc0, 0x79, 0x12, 0x45, 0x00, 0x01, 0x45, 0x30, 0x80, 0x03,
			},
		},
		{
			name:    "fewer tables than defined",
			tableID: MGTID,
			body:    []byte{0x00, 0x00, 0x02, 0x00, 0x00, 0xfd, 0x00, 0xe0, 0x00, 0x00, 0x00, 0x10, 0xf0, 0x00},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tally := &desc.Tally{}
			d := newDecoder(t, WithTally(tally))
			sec := section(test.tableID, 1, 0, 0, test.body)
			tab, err := New(test.tableID)
			if err != nil {
				t.Fatalf("could not create table: %v", err)
			}
			_, err = d.Decode(tab, sec[:len(sec):len(sec)])
			var te *desc.TruncatedError
			if !errors.As(err, &te) {
				t.Fatalf("expected truncated error, got: %v", err)
			}
			if te.Want <= te.Have {
				t.Errorf("truncated error does not name a shortfall: %v", te)
			}
			if tally.Live() != 0 {
				t.Errorf(errCmp, "live nodes after failure", 0, tally.Live())
			}
			if len(tab.Sections()) != 0 {
				t.Errorf("failed decode recorded sections %v", tab.Sections())
			}
		})
	}
}

// TestShortBuffer checks that every buffer shorter than a section fails
// without reading past its end.
func TestShortBuffer(t *testing.T) {
	sec := section(PMTID, 1, 0, 0, pmtBody)
	d := newDecoder(t)
	for n := 0; n < len(sec); n++ {
		b := append([]byte(nil), sec[:n]...)
		_, _, err := d.DecodePMT(nil, b[:n:n])
		if !errors.Is(err, ErrTruncated) {
			t.Errorf("buffer of %d bytes: expected truncated error, got: %v", n, err)
		}
	}
}

func TestSectionLengthBound(t *testing.T) {
	// Bytes after the declared section are not decoded.
	sec := section(PATID, 1, 0, 0, []byte{0x00, 0x01, 0xe1, 0x00})
	in := cat(sec, []byte{0x00, 0x02, 0xe2, 0x00})
	pat, res, err := newDecoder(t).DecodePAT(nil, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.N != len(sec) {
		t.Errorf(errCmp, "bytes consumed", len(sec), res.N)
	}
	if len(pat.Programs) != 1 {
		t.Errorf(errCmp, "programs", 1, len(pat.Programs))
	}
}

// NIT sections used by the reassembly tests.
var (
	nitName = []byte{0x40, 0x03, 'N', 'e', 't'}
	nitLCN  = []byte{0x83, 0x04, 0x00, 0x01, 0xfc, 0x05}

	nitTransport1 = []byte{0x00, 0x01, 0x20, 0x85, 0xf0, 0x06, 0x83, 0x04, 0x00, 0x01, 0xfc, 0x05}
	nitTransport2 = []byte{0x00, 0x02, 0x20, 0x85, 0xf0, 0x03, 0x52, 0x01, 0x02}
	nitTransport3 = []byte{0x00, 0x03, 0x20, 0x85, 0xf0, 0x00}
)

func nitBody(top, transports []byte) []byte {
	return cat(
		[]byte{0xf0 | byte(len(top)>>8), byte(len(top))},
		top,
		[]byte{0xf0 | byte(len(transports)>>8), byte(len(transports))},
		transports,
	)
}

func TestNITReassembly(t *testing.T) {
	s0 := section(NITActualID, 0x3039, 0, 1, nitBody(nitName, cat(nitTransport1, nitTransport2)))
	s1 := section(NITActualID, 0x3039, 1, 1, nitBody(nitLCN, nitTransport3))
	whole := section(NITActualID, 0x3039, 0, 0, nitBody(cat(nitName, nitLCN), cat(nitTransport1, nitTransport2, nitTransport3)))

	d := newDecoder(t)
	nit, _, err := d.DecodeNIT(nil, s0)
	if err != nil {
		t.Fatalf("could not decode first section: %v", err)
	}
	firstTransport := nit.Transports[0]
	nit, _, err = d.DecodeNIT(nit, s1)
	if err != nil {
		t.Fatalf("could not decode second section: %v", err)
	}

	ref, _, err := d.DecodeNIT(nil, whole)
	if err != nil {
		t.Fatalf("could not decode combined section: %v", err)
	}

	if diff := cmp.Diff(ref.Transports, nit.Transports); diff != "" {
		t.Errorf("transports mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ref.Descriptors, nit.Descriptors); diff != "" {
		t.Errorf("network descriptors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(firstTransport, nit.Transports[0]); diff != "" {
		t.Errorf("first section entry changed by continuation (-want +got):\n%s", diff)
	}
	if !cmp.Equal(nit.Sections(), []byte{0, 1}) {
		t.Errorf(errCmp, "sections", []byte{0, 1}, nit.Sections())
	}
	if nit.NetworkID() != 0x3039 {
		t.Errorf(errCmp, "network id", 0x3039, nit.NetworkID())
	}
}

func TestCAT(t *testing.T) {
	tally := &desc.Tally{}
	d := newDecoder(t, WithTally(tally))

	cas := []byte{0x09, 0x04, 0x0b, 0x00, 0xe1, 0x23}
	tab, res, err := d.DecodeCAT(nil, section(CATID, 0xffff, 0, 1, cas))
	if err != nil {
		t.Fatalf("could not decode first section: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	first := tab.Descriptors[0]

	more := []byte{0x09, 0x06, 0x18, 0x00, 0xe2, 0x00, 0xaa, 0xbb}
	tab, _, err = d.DecodeCAT(tab, section(CATID, 0xffff, 1, 1, more))
	if err != nil {
		t.Fatalf("could not decode second section: %v", err)
	}
	if len(tab.Descriptors) != 2 || tab.Descriptors[0] != first {
		t.Fatalf("continuation did not append: %v", tab.Descriptors)
	}
	ca0 := tab.Descriptors[0].(*desc.CA)
	ca1 := tab.Descriptors[1].(*desc.CA)
	if ca0.CASystemID != 0x0b00 || ca0.CAPID != 0x123 {
		t.Errorf("unexpected first CA descriptor: %+v", ca0)
	}
	if ca1.CASystemID != 0x1800 || ca1.CAPID != 0x200 || !cmp.Equal(ca1.PrivateData, []byte{0xaa, 0xbb}) {
		t.Errorf("unexpected second CA descriptor: %+v", ca1)
	}
	if !cmp.Equal(tab.Sections(), []byte{0, 1}) {
		t.Errorf(errCmp, "sections", []byte{0, 1}, tab.Sections())
	}

	var buf bytes.Buffer
	tab.Print(desc.NewWriterReporter(&buf))
	if !strings.Contains(buf.String(), "CAT:") {
		t.Errorf("unexpected print output:\n%s", buf.String())
	}

	tab.Free()
	if tally.Live() != 0 {
		t.Errorf(errCmp, "live nodes after free", 0, tally.Live())
	}
	tab.Free()
	if tally.Live() != 0 {
		t.Errorf(errCmp, "live nodes after second free", 0, tally.Live())
	}
}

// contents returns the exported entry lists and fixed fields of a table, for
// comparing tables decoded from different section splits.
func contents(tab Table) interface{} {
	switch tab := tab.(type) {
	case *CAT:
		return tab.Descriptors
	case *PMT:
		return struct {
			PCRPID      uint16
			Descriptors desc.Chain
			Streams     []Stream
		}{tab.PCRPID, tab.Descriptors, tab.Streams}
	case *SDT:
		return struct {
			OriginalNetworkID uint16
			Services          []Service
		}{tab.OriginalNetworkID, tab.Services}
	case *EIT:
		return struct {
			TransportID       uint16
			OriginalNetworkID uint16
			LastSegment       byte
			LastTableID       byte
			Events            []Event
		}{tab.TransportID, tab.OriginalNetworkID, tab.LastSegment, tab.LastTableID, tab.Events}
	case *MGT:
		return struct {
			ProtocolVersion byte
			Tables          []MGTTable
			Descriptors     desc.Chain
		}{tab.ProtocolVersion, tab.Tables, tab.Descriptors}
	}
	panic("unexpected table type")
}

func TestContinuation(t *testing.T) {
	const sid = desc.TagStreamIdentifier
	var (
		ca       = []byte{0x09, 0x04, 0x0b, 0x00, 0xe1, 0x23}
		ca2      = []byte{0x09, 0x04, 0x18, 0x00, 0xe2, 0x00}
		sid1     = []byte{sid, 0x01, 0x01}
		sid2     = []byte{sid, 0x01, 0x02}
		stream1  = []byte{0x1b, 0xe1, 0x00, 0xf0, 0x03, sid, 0x01, 0x07}
		stream2  = []byte{0x03, 0xe1, 0x01, 0xf0, 0x00}
		service1 = []byte{0x10, 0x41, 0xfd, 0x80, 0x03, sid, 0x01, 0x03}
		service2 = []byte{0x10, 0x42, 0xfe, 0x90, 0x00}
		event1   = []byte{0x00, 0x2a, 0xc0, 0x79, 0x12, 0x45, 0x00, 0x01, 0x45, 0x30, 0x80, 0x03, sid, 0x01, 0x04}
		event2   = append(append([]byte{0x00, 0x2b}, bytes.Repeat([]byte{0xff}, 8)...), 0x20, 0x00)
		mgtTab1  = []byte{0x00, 0x00, 0xff, 0xfb, 0xe3, 0x00, 0x00, 0x01, 0x00, 0xf0, 0x00}
		mgtTab2  = []byte{0x01, 0x00, 0xe1, 0xd0, 0xe1, 0x00, 0x00, 0x02, 0x00, 0xf0, 0x03, sid, 0x01, 0x05}
	)

	tests := []struct {
		name   string
		id     byte
		first  []byte
		second []byte
		whole  []byte
	}{
		{
			name:   "CAT",
			id:     CATID,
			first:  ca,
			second: ca2,
			whole:  cat(ca, ca2),
		},
		{
			name:   "PMT",
			id:     PMTID,
			first:  cat([]byte{0xe1, 0x00, 0xf0, 0x06}, ca, stream1),
			second: cat([]byte{0xe2, 0x00, 0xf0, 0x03}, sid1, stream2),
			whole:  cat([]byte{0xe1, 0x00, 0xf0, 0x09}, ca, sid1, stream1, stream2),
		},
		{
			name:   "SDT",
			id:     SDTActualID,
			first:  cat([]byte{0x20, 0x85, 0xff}, service1),
			second: cat([]byte{0x99, 0x99, 0xff}, service2),
			whole:  cat([]byte{0x20, 0x85, 0xff}, service1, service2),
		},
		{
			name:   "EIT",
			id:     EITActualID,
			first:  cat([]byte{0x00, 0x01, 0x20, 0x85, 0x00, 0x4e}, event1),
			second: cat([]byte{0x00, 0x02, 0x11, 0x11, 0x08, 0x4f}, event2),
			whole:  cat([]byte{0x00, 0x01, 0x20, 0x85, 0x00, 0x4e}, event1, event2),
		},
		{
			name:   "MGT",
			id:     MGTID,
			first:  cat([]byte{0x00, 0x00, 0x01}, mgtTab1, []byte{0xf0, 0x03}, sid1),
			second: cat([]byte{0x05, 0x00, 0x01}, mgtTab2, []byte{0xf0, 0x03}, sid2),
			whole:  cat([]byte{0x00, 0x00, 0x02}, mgtTab1, mgtTab2, []byte{0xf0, 0x06}, sid1, sid2),
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tally := &desc.Tally{}
			d := newDecoder(t, WithTally(tally))

			got, err := New(test.id)
			if err != nil {
				t.Fatalf("could not create table: %v", err)
			}
			for i, body := range [][]byte{test.first, test.second} {
				res, err := d.Decode(got, section(test.id, 1, byte(i), 1, body))
				if err != nil {
					t.Fatalf("could not decode section %d: %v", i, err)
				}
				if len(res.Warnings) != 0 {
					t.Errorf("unexpected warnings for section %d: %v", i, res.Warnings)
				}
			}

			want, err := New(test.id)
			if err != nil {
				t.Fatalf("could not create table: %v", err)
			}
			_, err = d.Decode(want, section(test.id, 1, 0, 0, test.whole))
			if err != nil {
				t.Fatalf("could not decode combined section: %v", err)
			}

			if diff := cmp.Diff(contents(want), contents(got)); diff != "" {
				t.Errorf("table mismatch (-want +got):\n%s", diff)
			}
			if !cmp.Equal(got.Sections(), []byte{0, 1}) {
				t.Errorf(errCmp, "sections", []byte{0, 1}, got.Sections())
			}

			got.Free()
			want.Free()
			if tally.Live() != 0 {
				t.Errorf(errCmp, "live nodes after free", 0, tally.Live())
			}
		})
	}
}

func TestFreeBaseline(t *testing.T) {
	tally := &desc.Tally{}
	d := newDecoder(t, WithTally(tally))
	var tables []Table

	nit, _, err := d.DecodeNIT(nil, section(NITActualID, 1, 0, 1, nitBody(nitName, cat(nitTransport1, nitTransport2))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nit, _, err = d.DecodeNIT(nit, section(NITActualID, 1, 1, 1, nitBody(nitLCN, nitTransport3)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tables = append(tables, nit)

	pmt, _, err := d.DecodePMT(nil, section(PMTID, 1, 0, 0, pmtBody))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tables = append(tables, pmt)

	pat, _, err := d.DecodePAT(nil, section(PATID, 1, 0, 0, []byte{0x00, 0x01, 0xe1, 0x00}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tables = append(tables, pat)

	if tally.Live() == 0 {
		t.Fatal("expected live nodes after decoding")
	}
	for _, tab := range tables {
		tab.Free()
	}
	if tally.Live() != 0 {
		t.Errorf(errCmp, "live nodes after free", 0, tally.Live())
	}
	for _, tab := range tables {
		tab.Free()
	}
	if tally.Live() != 0 {
		t.Errorf(errCmp, "live nodes after second free", 0, tally.Live())
	}

	// A table that was never populated can be freed.
	(&EIT{}).Free()
	if tally.Live() != 0 {
		t.Errorf(errCmp, "live nodes after freeing empty table", 0, tally.Live())
	}
}

func TestOutOfMemory(t *testing.T) {
	tally := &desc.Tally{Max: 6}
	d := newDecoder(t, WithTally(tally))

	// Table, one transport and its descriptor.
	s0 := section(NITActualID, 1, 0, 1, nitBody(nil, nitTransport2))
	nit, _, err := d.DecodeNIT(nil, s0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	base := tally.Live()
	before := append([]Transport(nil), nit.Transports...)

	s1 := section(NITActualID, 1, 1, 1, nitBody(nitName, cat(nitTransport1, nitTransport2, nitTransport3)))
	_, _, err = d.DecodeNIT(nit, s1)
	if !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("expected out of memory, got: %v", err)
	}
	if tally.Live() != base {
		t.Errorf(errCmp, "live nodes after failed continuation", base, tally.Live())
	}
	if diff := cmp.Diff(before, nit.Transports); diff != "" {
		t.Errorf("transports changed by failed continuation (-want +got):\n%s", diff)
	}
	if len(nit.Descriptors) != 0 {
		t.Errorf("network descriptors changed by failed continuation: %v", nit.Descriptors)
	}
	nit.Free()
	if tally.Live() != 0 {
		t.Errorf(errCmp, "live nodes after free", 0, tally.Live())
	}
}

func TestCRC(t *testing.T) {
	pat := []byte{0x00, 0xb0, 0x0d, 0x00, 0x01, 0xc1, 0x00, 0x00, 0x00, 0x01, 0xf0, 0x00, 0x2a, 0xb1, 0x04, 0xb2}
	if !ValidCRC(pat) {
		t.Errorf("expected valid CRC for %x", pat)
	}
	if got := AppendCRC(append([]byte(nil), pat[:12]...)); !bytes.Equal(got, pat) {
		t.Errorf(errCmp, "AppendCRC", pat, got)
	}

	d := newDecoder(t, CheckCRC(true))
	_, _, err := d.DecodePAT(nil, pat)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	bad := append([]byte(nil), pat...)
	bad[9] = 0x02
	_, _, err = d.DecodePAT(nil, bad)
	if !errors.Is(err, ErrInvalidCRC) {
		t.Errorf("expected CRC error, got: %v", err)
	}
}

func TestSDT(t *testing.T) {
	body := []byte{
		0x20, 0x85, 0xff, // Original network id, reserved.
		0x10, 0x41, 0xfd, 0x80, 0x0e,
		0x48, 0x0c, 0x01, 0x03, 'B', 'B', 'C', 0x06, 0x05, 'B', 'B', 'C', ' ', '1',
	}
	sdt, res, err := newDecoder(t).DecodeSDT(nil, section(SDTActualID, 0x1004, 0, 0, body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if sdt.OriginalNetworkID != 0x2085 || sdt.TransportStreamID() != 0x1004 {
		t.Errorf("unexpected fixed fields: %d %d", sdt.OriginalNetworkID, sdt.TransportStreamID())
	}
	if len(sdt.Services) != 1 {
		t.Fatalf(errCmp, "services", 1, len(sdt.Services))
	}
	s := sdt.Services[0]
	if s.ServiceID != 0x1041 || s.EITSchedule || !s.EITPresentFollowing || s.RunningStatus != RunningRunning || s.FreeCA {
		t.Errorf("unexpected service: %+v", s)
	}
	if svc, ok := s.Descriptors.Find(desc.TagService).(*desc.Service); !ok || svc.Name.String() != "BBC 1" {
		t.Errorf("unexpected service descriptors: %v", s.Descriptors)
	}
}

func TestEIT(t *testing.T) {
	body := []byte{
		0x00, 0x01, 0x20, 0x85, 0x00, 0x4e,
		0x00, 0x2a, 0xc0, 0x79, 0x12, 0x45, 0x00, 0x01, 0x45, 0x30, 0x80, 0x0d,
		0x4d, 0x0b, 'e', 'n', 'g', 0x04, 'N', 'e', 'w', 's', 0x02, 'H', 'i',
		0x00, 0x2b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x20, 0x00,
	}
	eit, res, err := newDecoder(t).DecodeEIT(nil, section(EITActualID, 0x1041, 0, 1, body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if eit.ServiceID() != 0x1041 || eit.TransportID != 1 || eit.OriginalNetworkID != 0x2085 || eit.LastTableID != EITActualID {
		t.Errorf("unexpected fixed fields: %+v", eit.Head())
	}
	if len(eit.Events) != 2 {
		t.Fatalf(errCmp, "events", 2, len(eit.Events))
	}
	e := eit.Events[0]
	start := time.Date(1993, time.October, 13, 12, 45, 0, 0, time.UTC)
	if e.EventID != 42 || !e.Start.Equal(start) || e.Duration != time.Hour+45*time.Minute+30*time.Second {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.RunningStatus != RunningRunning {
		t.Errorf(errCmp, "running status", RunningRunning, e.RunningStatus)
	}
	if ev, ok := e.Descriptors.Find(desc.TagShortEvent).(*desc.ShortEvent); !ok || ev.Name.String() != "News" {
		t.Errorf("unexpected event descriptors: %v", e.Descriptors)
	}
	if u := eit.Events[1]; !u.Start.IsZero() || u.Duration != 0 || u.RunningStatus != RunningNotRunning {
		t.Errorf("unexpected undefined event: %+v", u)
	}
}

func TestMGT(t *testing.T) {
	body := []byte{
		0x00,       // Protocol version.
		0x00, 0x02, // Tables defined.
		0x00, 0x00, 0xff, 0xfb, 0xe3, 0x00, 0x00, 0x01, 0x00, 0xf0, 0x00,
		0x01, 0x00, 0xe1, 0xd0, 0xe1, 0x00, 0x00, 0x02, 0x00, 0xf0, 0x03, 0x52, 0x01, 0x07,
		0xf0, 0x00,
	}
	mgt, res, err := newDecoder(t).DecodeMGT(nil, section(MGTID, 0, 0, 0, body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	want := []MGTTable{
		{Type: 0x0000, PID: 0x1ffb, Version: 3, NumberBytes: 0x100},
		{
			Type:        0x0100,
			PID:         0x1d0,
			Version:     1,
			NumberBytes: 0x200,
			Descriptors: desc.Chain{
				&desc.StreamIdentifier{Header: desc.Header{Tag: desc.TagStreamIdentifier, Length: 1}, ComponentTag: 7},
			},
		},
	}
	if diff := cmp.Diff(want, mgt.Tables); diff != "" {
		t.Errorf("tables mismatch (-want +got):\n%s", diff)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		id   byte
		want Table
	}{
		{PATID, &PAT{}},
		{CATID, &CAT{}},
		{PMTID, &PMT{}},
		{NITOtherID, &NIT{}},
		{SDTOtherID, &SDT{}},
		{EITScheduleFirstID + 3, &EIT{}},
		{MGTID, &MGT{}},
	}
	for _, test := range tests {
		got, err := New(test.id)
		if err != nil {
			t.Errorf("unexpected error for %#02x: %v", test.id, err)
			continue
		}
		if !contains(got.markers(), test.id) {
			t.Errorf("table for %#02x does not accept its id", test.id)
		}
	}
	_, err := New(0x70)
	if !errors.Is(err, ErrUnsupportedTable) {
		t.Errorf("expected unsupported table error, got: %v", err)
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	pat, _, err := newDecoder(t).DecodePAT(nil, section(PATID, 1, 0, 0, []byte{0x00, 0x00, 0xe0, 0x10, 0x00, 0x01, 0xe1, 0x00}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pat.Print(desc.NewWriterReporter(&buf))
	want := "PAT: table id 0x00, transport stream id 1, version 0, current true, sections [0] of 0\n" +
		"  network PID 0x0010\n" +
		"  program 1, PMT PID 0x0100\n"
	if buf.String() != want {
		t.Errorf(errCmp, "PAT print", want, buf.String())
	}
}
