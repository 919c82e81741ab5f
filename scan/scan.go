/*
NAME
  scan.go

DESCRIPTION
  scan.go provides the Scanner, which reads MPEG-TS packets, reassembles the
  PSI/SI sections they carry and decodes them into complete tables.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package scan collects the PSI/SI tables of a transport stream.
package scan

import (
	"context"
	"io"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/dvbsi/container/mts"
	"github.com/ausocean/dvbsi/container/mts/psi"
	"github.com/ausocean/dvbsi/container/mts/psi/desc"
	"github.com/ausocean/dvbsi/scan/config"
)

// ErrClosed is returned when a closed Scanner is used.
var ErrClosed = errors.New("scanner is closed")

// wellKnownPIDs carry SI tables in every stream.
var wellKnownPIDs = []uint16{
	mts.PATPID,
	mts.CATPID,
	mts.NITPID,
	mts.SDTPID,
	mts.EITPID,
	mts.PSIPPID,
}

// key identifies one version of one table.
type key struct {
	tableID byte
	id      uint16
	version byte
}

// pending is a table whose sections are being collected.
type pending struct {
	table    psi.Table
	seen     [256]bool
	complete bool
}

// Stats counts the work done by a Scanner.
type Stats struct {
	Packets  int // Packets read.
	Sections int // Sections decoded.
	Repeats  int // Sections skipped because they were already decoded.
	Skipped  int // Sections of unsupported tables or next versions.
	Errors   int // Sections that could not be decoded.
	Warnings int // Warnings raised by decoded sections.
}

// Scanner reads MPEG-TS packets and accumulates the tables carried on the
// well known SI PIDs, any configured PIDs and, when following PMTs, the PMT
// PIDs announced by the PAT. A Scanner is not safe for concurrent use.
type Scanner struct {
	cfg config.Config
	log logging.Logger
	dec *psi.Decoder

	asm    map[uint16]*mts.SectionAssembler
	tables map[key]*pending
	done   []psi.Table
	stats  Stats
	pkt    []byte
	closed bool
}

// NewScanner returns a new Scanner configured by c. c is validated, and
// c.Logger is used for logging.
func NewScanner(c config.Config) (*Scanner, error) {
	if c.Logger == nil {
		return nil, errors.New("no logger")
	}
	err := c.Validate()
	if err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	s := &Scanner{
		cfg:    c,
		log:    c.Logger,
		asm:    make(map[uint16]*mts.SectionAssembler),
		tables: make(map[key]*pending),
		pkt:    make([]byte, mts.PacketSize),
	}
	tally := &desc.Tally{Max: int64(c.MaxDescriptors)}
	s.dec, err = psi.NewDecoder(s.log, psi.WithTally(tally), psi.CheckCRC(c.CheckCRC))
	if err != nil {
		return nil, errors.Wrap(err, "could not create decoder")
	}

	for _, pid := range wellKnownPIDs {
		s.addPID(pid)
	}
	for _, pid := range c.PIDs {
		s.addPID(pid)
	}
	return s, nil
}

// addPID starts collecting sections on pid.
func (s *Scanner) addPID(pid uint16) {
	if _, ok := s.asm[pid]; ok {
		return
	}
	s.log.Debug("scanning PID", "pid", pid)
	s.asm[pid] = mts.NewSectionAssembler(pid, s.log, s.cfg.CheckCRC)
}

// Scan reads packets from r until r is exhausted, the configured packet limit
// is reached or ctx is cancelled. A trailing partial packet is ignored.
//
// Each call treats r as a new stream, so sections left partly assembled by an
// earlier call are discarded. Tables are kept across calls.
func (s *Scanner) Scan(ctx context.Context, r io.Reader) error {
	if s.closed {
		return ErrClosed
	}
	for _, a := range s.asm {
		a.Reset()
	}
	for {
		err := ctx.Err()
		if err != nil {
			return err
		}
		if s.cfg.PacketLimit > 0 && s.stats.Packets >= s.cfg.PacketLimit {
			s.log.Debug("packet limit reached", "packets", s.stats.Packets)
			return nil
		}

		err = s.read(r)
		switch err {
		case nil:
		case io.EOF:
			return nil
		case io.ErrUnexpectedEOF:
			s.log.Debug("ignoring trailing partial packet")
			return nil
		default:
			return errors.Wrap(err, "could not read packet")
		}

		err = s.WritePacket(s.pkt)
		if err != nil {
			return err
		}
	}
}

// read reads the next packet into s.pkt, skipping any bytes preceding a
// sync byte.
func (s *Scanner) read(r io.Reader) error {
	_, err := io.ReadFull(r, s.pkt)
	if err != nil {
		return err
	}
	skipped := 0
	for s.pkt[0] != mts.SyncByte {
		i, err := mts.Sync(s.pkt[1:])
		if err != nil {
			i = len(s.pkt) - 1
		}
		i++
		skipped += i
		copy(s.pkt, s.pkt[i:])
		_, err = io.ReadFull(r, s.pkt[len(s.pkt)-i:])
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return err
		}
	}
	if skipped != 0 {
		s.log.Warning("lost packet sync", "skipped", skipped)
	}
	return nil
}

// WritePacket processes a single 188 byte packet. Packets on PIDs that are
// not being scanned are ignored.
func (s *Scanner) WritePacket(pkt []byte) error {
	if s.closed {
		return ErrClosed
	}
	pid, err := mts.PID(pkt)
	if err != nil {
		return errors.Wrap(err, "could not get packet PID")
	}
	s.stats.Packets++

	a, ok := s.asm[pid]
	if !ok {
		return nil
	}
	sections, err := a.Write(pkt)
	if err != nil {
		s.log.Warning("could not assemble sections", "pid", pid, "error", err.Error())
		return nil
	}
	for _, sec := range sections {
		s.section(pid, sec)
	}
	return nil
}

// section decodes sec into the table it belongs to.
func (s *Scanner) section(pid uint16, sec []byte) {
	if len(sec) < psi.HeaderLen {
		s.stats.Skipped++
		return
	}
	h := psi.ParseHeader(sec)
	if !h.Syntax || !h.CurrentNext {
		s.stats.Skipped++
		return
	}

	k := key{tableID: h.TableID, id: h.ID, version: h.Version}
	p, ok := s.tables[k]
	if ok && (p.complete || p.seen[h.SectionID]) {
		s.stats.Repeats++
		return
	}

	if !ok {
		t, err := psi.New(h.TableID)
		if err != nil {
			s.log.Debug("skipping section", "pid", pid, "table id", h.TableID)
			s.stats.Skipped++
			return
		}
		p = &pending{table: t}
	}

	res, err := s.dec.Decode(p.table, sec)
	s.stats.Warnings += len(res.Warnings)
	for _, w := range res.Warnings {
		s.log.Debug("section warning", "pid", pid, "table id", h.TableID, "warning", w.Error())
	}
	if err != nil {
		s.stats.Errors++
		s.log.Warning("could not decode section", "pid", pid, "error", err.Error())
		return
	}
	s.stats.Sections++
	s.tables[k] = p
	p.seen[h.SectionID] = true

	for i := 0; i <= int(h.LastSection); i++ {
		if !p.seen[i] {
			return
		}
	}
	p.complete = true
	s.done = append(s.done, p.table)
	s.log.Info("table complete", "pid", pid, "table id", h.TableID, "id", h.ID, "version", h.Version, "sections", int(h.LastSection)+1)

	if pat, ok := p.table.(*psi.PAT); ok && s.cfg.FollowPMT {
		for _, pmt := range pat.PMTPIDs() {
			s.addPID(pmt)
		}
	}
}

// Tables returns the complete tables in the order they were completed. The
// tables are owned by the Scanner and are freed by Close.
func (s *Scanner) Tables() []psi.Table { return s.done }

// Pending returns the number of tables that have been started but not
// completed.
func (s *Scanner) Pending() int {
	n := 0
	for _, p := range s.tables {
		if !p.complete {
			n++
		}
	}
	return n
}

// PIDs returns the number of PIDs being scanned.
func (s *Scanner) PIDs() int { return len(s.asm) }

// Stats returns the counts of work done so far.
func (s *Scanner) Stats() Stats { return s.stats }

// Live returns the number of decoded nodes held by the Scanner.
func (s *Scanner) Live() int64 { return s.dec.Tally().Live() }

// Print writes the complete tables to r.
func (s *Scanner) Print(r desc.Reporter) {
	for _, t := range s.done {
		t.Print(r)
	}
}

// Close frees every table held by the Scanner, complete or not. Close may be
// called more than once.
func (s *Scanner) Close() error {
	if s.closed {
		return nil
	}
	for _, p := range s.tables {
		p.table.Free()
	}
	s.tables = nil
	s.done = nil
	s.closed = true
	if live := s.Live(); live != 0 {
		s.log.Warning("nodes still live after close", "live", live)
	}
	return nil
}
