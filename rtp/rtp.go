/*
NAME
  rtp.go

DESCRIPTION
  rtp.go provides parsing of the fixed RTP packet header fields needed by
  the HEVC payload handling in this package.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package rtp provides handling of the RTP payload format for HEVC video
// specified in RFC 7798: single NAL unit packets, aggregation packets and
// fragmentation units.
package rtp

import (
	"encoding/binary"
	"errors"
)

const (
	rtpVer           = 2  // Version of RTP that this package is compatible with.
	defaultHeadSize  = 12 // Header size of an RTP packet.
	optionalFieldIdx = 12 // Index of optional fields including CSRC and extension header.
)

const badVer = "incompatible RTP version"

// Marker returns the state of the RTP marker bit, and an error if parsing
// fails.
func Marker(d []byte) (bool, error) {
	if len(d) < defaultHeadSize {
		return false, errors.New("invalid RTP packet length")
	}
	if version(d) != rtpVer {
		return false, errors.New(badVer)
	}
	return d[1]&0x80 != 0, nil
}

// Payload returns the payload from an RTP packet provided the version is
// compatible, otherwise an error is returned.
func Payload(d []byte) ([]byte, error) {
	err := checkPacket(d)
	if err != nil {
		return nil, err
	}
	extLen := 0
	if hasExt(d) {
		extLen = 4 + 4*(int(binary.BigEndian.Uint16(d[optionalFieldIdx+4*csrcCount(d)+2:])))
	}
	payloadIdx := optionalFieldIdx + 4*csrcCount(d) + extLen
	if payloadIdx > len(d) {
		return nil, errors.New("invalid RTP packet length")
	}
	return d[payloadIdx:], nil
}

// checkPacket checks the validity of the packet, firstly by checking size
// and then also checking that version is compatible with these utilities.
func checkPacket(d []byte) error {
	if len(d) < defaultHeadSize {
		return errors.New("invalid RTP packet length")
	}
	if version(d) != rtpVer {
		return errors.New(badVer)
	}
	return nil
}

// hasExt returns true if an extension is present in the RTP packet.
func hasExt(d []byte) bool {
	return (d[0] & 0x10 >> 4) == 1
}

// csrcCount returns the number of CSRC fields.
func csrcCount(d []byte) int {
	return int(d[0] & 0x0f)
}

// version returns the version of the RTP packet.
func version(d []byte) int {
	return int(d[0] & 0xc0 >> 6)
}
