/*
NAME
  field.go

DESCRIPTION
  field.go converts the big-endian and bit-packed fields of SI/PSI sections
  into host values.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package field provides decoding of the fixed-layout fields found in MPEG-TS
// SI/PSI sections: big-endian integers, bit fields and binary-coded decimal.
// None of the functions here allocate or modify their input.
package field

import "encoding/binary"

// NullPID is the PID of MPEG-TS null packets.
const NullPID = 0x1fff

// Masks for common packed fields.
const (
	pidMask    = 0x1fff
	length12   = 0x0fff
	length10   = 0x03ff
	versionMsk = 0x3e
)

// Uint16 returns the big-endian uint16 at the start of b.
func Uint16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }

// Uint24 returns the big-endian 24 bit value at the start of b.
func Uint24(b []byte) uint32 {
	_ = b[2]
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// Uint32 returns the big-endian uint32 at the start of b.
func Uint32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }

// Bits16 extracts a width bit field from the big-endian 16 bit value at the
// start of b, shift being the position of the field's least significant bit.
func Bits16(b []byte, shift, width uint) uint16 {
	return (Uint16(b) >> shift) & (1<<width - 1)
}

// Bits32 is Bits16 for 32 bit values.
func Bits32(b []byte, shift, width uint) uint32 {
	return (Uint32(b) >> shift) & (1<<width - 1)
}

// PID returns the 13 bit PID held in the low bits of the 16 bit field at the
// start of b; the three reserved high bits are dropped.
func PID(b []byte) uint16 { return Uint16(b) & pidMask }

// Length12 returns the 12 bit length held in the low bits of the 16 bit
// field at the start of b.
func Length12(b []byte) int { return int(Uint16(b) & length12) }

// Length10 returns the 10 bit length held in the low bits of the 16 bit
// field at the start of b.
func Length10(b []byte) int { return int(Uint16(b) & length10) }

// Version returns the 5 bit version number from a version/current_next octet.
func Version(b byte) byte { return (b & versionMsk) >> 1 }
