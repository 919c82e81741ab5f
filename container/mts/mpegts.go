/*
NAME
  mpegts.go - provides MPEG-TS packet constants and helpers used to pull
  sections out of a transport stream.

DESCRIPTION
  See Readme.md

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mts provides MPEG-TS (mts) packet handling and the reassembly of
// PSI/SI sections from transport stream packets.
package mts

import (
	"github.com/pkg/errors"
)

// PacketSize is the size of an MPEG-TS packet.
const PacketSize = 188

// HeadSize is the size of an MPEG-TS packet header.
const HeadSize = 4

// SyncByte starts every MPEG-TS packet.
const SyncByte = 0x47

// Well known program IDs of PSI/SI packets.
const (
	PATPID  = 0x0000
	CATPID  = 0x0001
	NITPID  = 0x0010
	SDTPID  = 0x0011
	EITPID  = 0x0012
	PSIPPID = 0x1ffb // ATSC base PID.
	NullPID = 0x1fff
)

// Errors used by packet helpers.
var (
	ErrInvalidLen = errors.New("MPEG-TS data not of valid length")
	ErrNoSync     = errors.New("could not find MPEG-TS sync")
)

// PID returns the packet identifier for the given packet.
func PID(p []byte) (uint16, error) {
	if len(p) < PacketSize {
		return 0, errors.New("packet length less than 188")
	}
	return uint16(p[1]&0x1f)<<8 | uint16(p[2]), nil
}

// ContinuityCounter returns the continuity counter of the given packet.
func ContinuityCounter(p []byte) int { return int(p[3] & 0x0f) }

// Sync returns the index of the first packet in d, which is the first sync
// byte followed by another a packet later, or the last sync byte if d holds
// less than two packets from it.
func Sync(d []byte) (int, error) {
	for i, b := range d {
		if b != SyncByte {
			continue
		}
		if i+PacketSize >= len(d) || d[i+PacketSize] == SyncByte {
			return i, nil
		}
	}
	return -1, ErrNoSync
}
