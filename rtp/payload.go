/*
NAME
  payload.go

DESCRIPTION
  payload.go provides parsing of the RFC 7798 HEVC RTP payload structures:
  single NAL unit packets, aggregation packets and fragmentation units.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package rtp

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Payload header NALU types from RFC 7798 section 4.4.
const (
	TypeAggregation   = 48
	TypeFragmentation = 49
	TypePACI          = 50
)

// FragmentationUnit holds the decoded fields of an FU payload.
type FragmentationUnit struct {
	// Start and End are the S and E bits of the FU header.
	Start bool
	End   bool

	// Type is the fu_type field, i.e. the NAL unit type of the fragmented
	// unit.
	Type uint8

	// Fragment is the FU payload, excluding the payload header, FU header
	// and any DONL field. For a start fragment NALU reconstructs the
	// original two byte NAL unit header.
	Fragment []byte

	// The payload header bytes of the carrying packet, used to reconstruct
	// the NAL unit header of a start fragment.
	payloadHdr [2]byte
}

// NALU returns the fragment prefixed with the reconstructed NAL unit header
// when this is a start fragment, and the bare fragment otherwise.
func (f *FragmentationUnit) NALU() []byte {
	if !f.Start {
		return f.Fragment
	}
	hdr := []byte{
		f.payloadHdr[0]&0x81 | f.Type<<1,
		f.payloadHdr[1],
	}
	return append(hdr, f.Fragment...)
}

// Packet holds one parsed RFC 7798 payload.
type Packet struct {
	// Type is the NAL unit type of the payload header; at most 47 for a
	// single NAL unit packet, or one of TypeAggregation, TypeFragmentation
	// and TypePACI.
	Type uint8

	// Single holds the complete NAL unit (header included) for a single NAL
	// unit packet.
	Single []byte

	// Aggregated holds the contained NAL units, in carriage order, for an
	// aggregation packet.
	Aggregated [][]byte

	// FU holds the fragmentation unit fields for a fragmentation packet.
	FU *FragmentationUnit
}

// ParsePayload parses an RFC 7798 payload (the RTP payload, after the RTP
// header). donl indicates the stream carries DONL/DOND fields, i.e.
// sprop-max-don-diff is greater than 0.
func ParsePayload(d []byte, donl bool) (*Packet, error) {
	if len(d) < 2 {
		return nil, errors.New("payload too short for payload header")
	}
	p := &Packet{Type: d[0] >> 1 & 0x3f}

	switch p.Type {
	case TypeAggregation:
		return p, p.parseAggregation(d, donl)
	case TypeFragmentation:
		return p, p.parseFragmentation(d, donl)
	case TypePACI:
		return p, errors.New("PACI packets are unsupported")
	default:
		if donl {
			if len(d) < 4 {
				return nil, errors.New("payload too short for DONL")
			}
			d = append(d[:2:2], d[4:]...)
		}
		p.Single = d
		return p, nil
	}
}

// parseAggregation parses the aggregation units of an AP payload following
// RFC 7798 section 4.4.2.
func (p *Packet) parseAggregation(d []byte, donl bool) error {
	idx := 2
	first := true
	for idx < len(d) {
		if donl {
			if first {
				idx += 2
			} else {
				idx++
			}
		}
		if idx+2 > len(d) {
			return errors.New("aggregation unit truncated at size field")
		}
		size := int(binary.BigEndian.Uint16(d[idx:]))
		idx += 2
		if idx+size > len(d) {
			return errors.New("aggregation unit truncated at NAL data")
		}
		p.Aggregated = append(p.Aggregated, d[idx:idx+size])
		idx += size
		first = false
	}
	if len(p.Aggregated) < 2 {
		return errors.New("aggregation packet must contain at least two NAL units")
	}
	return nil
}

// parseFragmentation parses an FU payload following RFC 7798 section 4.4.3.
func (p *Packet) parseFragmentation(d []byte, donl bool) error {
	if len(d) < 3 {
		return errors.New("payload too short for FU header")
	}
	fu := &FragmentationUnit{
		Start:      d[2]&0x80 != 0,
		End:        d[2]&0x40 != 0,
		Type:       d[2] & 0x3f,
		payloadHdr: [2]byte{d[0], d[1]},
	}
	frag := d[3:]
	if donl && fu.Start {
		if len(frag) < 2 {
			return errors.New("payload too short for DONL")
		}
		frag = frag[2:]
	}
	fu.Fragment = frag
	p.FU = fu
	return nil
}
