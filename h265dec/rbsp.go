/*
NAME
  rbsp.go

DESCRIPTION
  rbsp.go provides extraction of raw byte sequence payloads from NAL unit
  payloads, and checks on the rbsp_trailing_bits structure.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package h265dec

import "github.com/ausocean/hevc/h265dec/bits"

// rbspFromNALU returns the raw byte sequence payload for the given NAL unit
// payload (the bytes following the two byte NAL unit header), removing any
// emulation prevention bytes, i.e. each 0x00 0x00 0x03 sequence becomes
// 0x00 0x00 as specified in section 7.3.1.1 of ITU-T H.265. A 0x03 that is
// not preceded by two zero bytes is kept.
func rbspFromNALU(payload []byte) []byte {
	rbsp := make([]byte, 0, len(payload))
	nZeros := 0
	for _, b := range payload {
		if b == 0x03 && nZeros >= 2 {
			nZeros = 0
			continue
		}
		if b == 0x00 {
			nZeros++
		} else {
			nZeros = 0
		}
		rbsp = append(rbsp, b)
	}
	return rbsp
}

// readRBSPTrailingBits consumes the rbsp_trailing_bits structure specified in
// section 7.3.1.1, i.e. a single 1 stop bit followed by zero bits up to the
// next byte boundary. ErrRBSPTrailingBits is returned if the pattern is not
// found.
func readRBSPTrailingBits(br *bits.BitReader) error {
	b, err := br.ReadBits(1)
	if err != nil {
		return ErrUnexpectedEnd
	}
	if b != 1 {
		return ErrRBSPTrailingBits
	}
	for !br.ByteAligned() {
		b, err = br.ReadBits(1)
		if err != nil {
			return ErrUnexpectedEnd
		}
		if b != 0 {
			return ErrRBSPTrailingBits
		}
	}
	return nil
}

// moreRBSPData returns true if there is syntax data left in br before the
// rbsp_trailing_bits structure, using the process described in section
// 7.4.3.1.1, i.e. whether any bit after the current position differs from
// the trailing bits pattern of a stop bit and zero padding at the end of the
// payload.
func moreRBSPData(br *bits.BitReader) bool {
	rem := br.BitsRemaining()
	if rem == 0 {
		return false
	}

	// Find the last 1 bit in the remaining data; syntax data precedes it, the
	// 1 and following zeros are rbsp_trailing_bits (plus any zero byte
	// padding). Scan on a copy so the reader position is unchanged.
	tmp := *br
	lastOne := -1
	idx := 0
	for rem > 0 {
		n := rem
		if n > 32 {
			n = 32
		}
		v, err := tmp.ReadBits(n)
		if err != nil {
			return false
		}
		for i := 0; i < n; i++ {
			if v>>uint(n-1-i)&1 == 1 {
				lastOne = idx + i
			}
		}
		idx += n
		rem -= n
	}
	return lastOne > 0
}
