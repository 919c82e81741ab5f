/*
NAME
  bitreader.go

DESCRIPTION
  bitreader.go provides a bit reader over a byte slice for the bit-packed
  fields of SI/PSI sections and descriptors.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package field

import "io"

// BitReader reads bits, most significant first, from a byte slice. The slice
// is never modified.
type BitReader struct {
	b     []byte
	n     uint64
	bits  int
	nRead int
}

// NewBitReader returns a new BitReader reading from b.
func NewBitReader(b []byte) *BitReader {
	return &BitReader{b: b}
}

// ReadBits reads n bits (n <= 56) from the source and returns them in the
// least-significant part of a uint64.
// For example, with a source as []byte{0x8f,0xe3} (1000 1111, 1110 0011), we
// would get the following results for consecutive reads with n values:
// n = 4, res = 0x8 (1000)
// n = 2, res = 0x3 (0011)
// n = 4, res = 0xf (1111)
// n = 6, res = 0x23 (0010 0011)
func (br *BitReader) ReadBits(n int) (uint64, error) {
	for n > br.bits {
		if br.nRead >= len(br.b) {
			return 0, io.ErrUnexpectedEOF
		}
		br.n <<= 8
		br.n |= uint64(br.b[br.nRead])
		br.nRead++
		br.bits += 8
	}

	// Shift the desired bits into the least-significant places and mask off
	// anything above.
	r := (br.n >> uint(br.bits-n)) & ((1 << uint(n)) - 1)
	br.bits -= n
	return r, nil
}

// ReadBool reads a single bit as a bool.
func (br *BitReader) ReadBool() (bool, error) {
	b, err := br.ReadBits(1)
	return b == 1, err
}

// Skip discards n bits.
func (br *BitReader) Skip(n int) error {
	for n > 32 {
		if _, err := br.ReadBits(32); err != nil {
			return err
		}
		n -= 32
	}
	_, err := br.ReadBits(n)
	return err
}

// ByteAligned returns true if the reader position is at the start of a byte,
// and false otherwise.
func (br *BitReader) ByteAligned() bool {
	return br.bits == 0
}

// BytesRead returns the number of bytes that have been read by the BitReader.
func (br *BitReader) BytesRead() int {
	return br.nRead
}

// Remaining returns the unread whole bytes of the source. Any bits of a
// partially consumed byte are dropped.
func (br *BitReader) Remaining() []byte {
	return br.b[br.nRead:]
}
