/*
DESCRIPTION
  bitstream.go provides the bitstream parser, which frames NAL units in an
  Annex B byte stream, dispatches each to its payload parser and maintains
  the parser state.

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

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ausocean/hevc/h265dec/bits"
)

// NALUnit holds a framed NAL unit together with its parsed payload. Exactly
// one payload field is non-nil for the parameter set, slice, AUD and SEI
// types; other types retain the raw payload only. Err records a payload
// parse failure; the header and raw bytes remain valid in that case.
type NALUnit struct {
	// Index locates the unit in the source byte stream.
	Index NALUIndex

	// The NAL unit header.
	Header *NALUHeader

	// Raw holds the unit's payload bytes including the two header bytes,
	// before emulation prevention removal.
	Raw []byte

	VPS   *VPS
	SPS   *SPS
	PPS   *PPS
	Slice *SliceSegmentLayer
	AUD   *AUD
	SEI   *SEI

	// Err is the payload parse failure for this unit, if any.
	Err error
}

// Bitstream is the result of parsing a byte stream: the NAL units in stream
// order.
type Bitstream struct {
	NALUnits []*NALUnit
}

// BitstreamParser parses Annex B byte streams NAL unit by NAL unit,
// accumulating parameter sets into its State.
type BitstreamParser struct {
	// State holds the active parameter sets. A zero State is replaced with
	// a fresh one on first use.
	State *ParserState

	// Log receives structured parse diagnostics. Defaults to a no-op
	// logger.
	Log zerolog.Logger
}

// NewBitstreamParser returns a BitstreamParser with a fresh parser state and
// a no-op logger.
func NewBitstreamParser() *BitstreamParser {
	return &BitstreamParser{State: NewParserState(), Log: zerolog.Nop()}
}

// Parse frames and parses every NAL unit in data, in stream order. Per-NAL
// payload failures are recorded on the unit and parsing continues with the
// next unit; parameter set writes take effect before any subsequent unit is
// parsed. An ErrInvalidStartCode is returned if data is non-empty and no
// start code is found; an empty data yields an empty result.
func (p *BitstreamParser) Parse(data []byte) (*Bitstream, error) {
	if p.State == nil {
		p.State = NewParserState()
	}
	bs := &Bitstream{}
	if len(data) == 0 {
		return bs, nil
	}

	idxs := FindNALUnits(data)
	if len(idxs) == 0 {
		return bs, ErrInvalidStartCode
	}

	for _, idx := range idxs {
		raw := data[idx.PayloadStartOffset : idx.PayloadStartOffset+idx.PayloadSize]
		n := p.parseNALUnit(raw)
		n.Index = idx
		if n.Err != nil {
			p.Log.Warn().Int("offset", idx.StartOffset).Err(n.Err).Msg("NAL unit parse failed")
		} else if n.Header != nil {
			p.Log.Debug().Int("offset", idx.StartOffset).Uint8("type", n.Header.Type).Msg("parsed NAL unit")
		}
		bs.NALUnits = append(bs.NALUnits, n)
	}
	return bs, nil
}

// parseNALUnit parses a single NAL unit from its raw payload bytes (header
// included, emulation prevention still present).
func (p *BitstreamParser) parseNALUnit(raw []byte) *NALUnit {
	n := &NALUnit{Raw: raw}

	hdr, err := NewNALUHeader(bits.NewBitReader(raw))
	if err != nil {
		n.Err = errors.Wrap(err, "could not parse NAL unit header")
		return n
	}
	n.Header = hdr

	if len(raw) < 2 {
		return n
	}
	rbsp := rbspFromNALU(raw[2:])

	switch {
	case hdr.Type == NALTypeVPS:
		v, err := NewVPS(bits.NewBitReader(rbsp))
		if err != nil {
			n.Err = errors.Wrap(err, "could not parse VPS")
			return n
		}
		n.VPS = v
		p.State.putVPS(v)

	case hdr.Type == NALTypeSPS:
		s, err := NewSPS(bits.NewBitReader(rbsp))
		if err != nil {
			n.Err = errors.Wrap(err, "could not parse SPS")
			return n
		}
		n.SPS = s
		p.State.putSPS(s)

	case hdr.Type == NALTypePPS:
		pps, err := NewPPS(bits.NewBitReader(rbsp))
		if err != nil {
			n.Err = errors.Wrap(err, "could not parse PPS")
			return n
		}
		n.PPS = pps
		p.State.putPPS(pps)

	case IsSliceSegment(hdr.Type):
		l, err := NewSliceSegmentLayer(rbsp, hdr.Type, p.State)
		if err != nil {
			n.Err = errors.Wrap(err, "could not parse slice segment layer")
			return n
		}
		n.Slice = l

	case hdr.Type == NALTypeAUD:
		a, err := NewAUD(bits.NewBitReader(rbsp))
		if err != nil {
			n.Err = errors.Wrap(err, "could not parse AUD")
			return n
		}
		n.AUD = a

	case hdr.Type == NALTypePrefixSEI || hdr.Type == NALTypeSuffixSEI:
		n.SEI = &SEI{Payload: rbsp}

	case hdr.Type == NALTypeEOS, hdr.Type == NALTypeEOB, hdr.Type == NALTypeFD:
		// Header-only, or filler payload ignored.

	default:
		// Unknown and reserved types are preserved as opaque bytes.
	}
	return n
}
