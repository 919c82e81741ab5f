/*
NAME
  crc.go

DESCRIPTION
  crc.go provides the MPEG-2 CRC-32 that closes every long section.

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
	"hash/crc32"
	"math/bits"
)

var crcTable = crc32MakeTable(bits.Reverse32(crc32.IEEE))

// CRC32 returns the MPEG-2 CRC-32 of b.
func CRC32(b []byte) uint32 { return crc32Update(0xffffffff, crcTable, b) }

// ValidCRC reports whether section, which must end with its CRC trailer,
// passes its CRC check. The CRC of a section including an intact trailer is
// zero.
func ValidCRC(section []byte) bool {
	if len(section) < CRCSize {
		return false
	}
	return CRC32(section) == 0
}

// AppendCRC appends the CRC of b to b.
func AppendCRC(b []byte) []byte {
	return binary.BigEndian.AppendUint32(b, CRC32(b))
}

func crc32MakeTable(poly uint32) *crc32.Table {
	var t crc32.Table
	for i := range t {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return &t
}

func crc32Update(crc uint32, tab *crc32.Table, p []byte) uint32 {
	for _, v := range p {
		crc = tab[byte(crc>>24)^v] ^ (crc << 8)
	}
	return crc
}
