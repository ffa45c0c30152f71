/*
DESCRIPTION
  bitreader.go provides a bit reader implementation that reads from a byte
  slice holding a raw byte sequence payload.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package bits provides a bit reader implementation backed by a byte slice.
package bits

import "io"

// BitReader is a bit reader that provides methods for reading bits from a
// byte slice. The reader does not own the slice; callers must not modify it
// while reading.
type BitReader struct {
	b    []byte
	byte int // Index of the current byte.
	bit  int // Offset of the next bit within the current byte, 0 to 7.
}

// NewBitReader returns a new BitReader reading from b.
func NewBitReader(b []byte) *BitReader {
	return &BitReader{b: b}
}

// ReadBits reads n bits from the source and returns them in the
// least-significant part of a uint64.
// For example, with a source as []byte{0x8f,0xe3} (1000 1111, 1110 0011), we
// would get the following results for consecutive reads with n values:
// n = 4, res = 0x8 (1000)
// n = 2, res = 0x3 (0011)
// n = 4, res = 0xf (1111)
// n = 6, res = 0x23 (0010 0011)
// If fewer than n bits remain io.ErrUnexpectedEOF is returned and the reader
// position is unchanged.
func (br *BitReader) ReadBits(n int) (uint64, error) {
	if n > br.BitsRemaining() {
		return 0, io.ErrUnexpectedEOF
	}
	var r uint64
	for n > 0 {
		rem := 8 - br.bit
		take := n
		if take > rem {
			take = rem
		}
		cur := br.b[br.byte] >> uint(rem-take) & (1<<uint(take) - 1)
		r = r<<uint(take) | uint64(cur)
		br.bit += take
		if br.bit == 8 {
			br.bit = 0
			br.byte++
		}
		n -= take
	}
	return r, nil
}

// ReadFlag reads a single bit and returns it as a bool.
func (br *BitReader) ReadFlag() (bool, error) {
	b, err := br.ReadBits(1)
	return b == 1, err
}

// PeekBits provides the next n bits returning them in the least-significant
// part of a uint64, without advancing through the source.
func (br *BitReader) PeekBits(n int) (uint64, error) {
	saved := *br
	r, err := br.ReadBits(n)
	*br = saved
	return r, err
}

// ByteAligned returns true if the reader position is at the start of a byte,
// and false otherwise.
func (br *BitReader) ByteAligned() bool {
	return br.bit == 0
}

// Off returns the current offset from the starting bit of the current byte.
func (br *BitReader) Off() int {
	return br.bit
}

// BitsRead returns the number of bits that have been read by the BitReader.
func (br *BitReader) BitsRead() int {
	return br.byte*8 + br.bit
}

// BitsRemaining returns the number of unread bits left in the source.
func (br *BitReader) BitsRemaining() int {
	return (len(br.b)-br.byte)*8 - br.bit
}
