/*
DESCRIPTION
  nalu.go provides the NAL unit header structure, NAL unit type constants
  from Table 7-1 of ITU-T H.265, and the Annex B byte stream framer.

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

	"github.com/ausocean/hevc/h265dec/bits"
)

// NAL unit types as specified in Table 7-1 of ITU-T H.265.
const (
	NALTypeTrailN       = 0
	NALTypeTrailR       = 1
	NALTypeTSAN         = 2
	NALTypeTSAR         = 3
	NALTypeSTSAN        = 4
	NALTypeSTSAR        = 5
	NALTypeRADLN        = 6
	NALTypeRADLR        = 7
	NALTypeRASLN        = 8
	NALTypeRASLR        = 9
	NALTypeBLAWLP       = 16
	NALTypeBLAWRADL     = 17
	NALTypeBLANLP       = 18
	NALTypeIDRWRADL     = 19
	NALTypeIDRNLP       = 20
	NALTypeCRA          = 21
	NALTypeRSVIRAPVCL22 = 22
	NALTypeRSVIRAPVCL23 = 23
	NALTypeVPS          = 32
	NALTypeSPS          = 33
	NALTypePPS          = 34
	NALTypeAUD          = 35
	NALTypeEOS          = 36
	NALTypeEOB          = 37
	NALTypeFD           = 38
	NALTypePrefixSEI    = 39
	NALTypeSuffixSEI    = 40
)

// IsSliceSegment returns true if the given NAL unit type carries a slice
// segment, i.e. is a VCL type with a slice_segment_layer_rbsp() payload.
func IsSliceSegment(t uint8) bool {
	return t <= NALTypeRASLR || (t >= NALTypeBLAWLP && t <= NALTypeCRA)
}

// IsIRAP returns true if the given NAL unit type is an intra random access
// point type, i.e. in the range BLA_W_LP to RSV_IRAP_VCL23.
func IsIRAP(t uint8) bool {
	return t >= NALTypeBLAWLP && t <= NALTypeRSVIRAPVCL23
}

// IsIDR returns true if the given NAL unit type is an instantaneous decoding
// refresh type.
func IsIDR(t uint8) bool {
	return t == NALTypeIDRWRADL || t == NALTypeIDRNLP
}

// NALUHeader describes a NAL unit header as defined by section 7.3.1.2 in
// the specifications. Field semantics are defined in section 7.4.2.2.
type NALUHeader struct {
	// forbidden_zero_bit, always 0.
	ForbiddenZeroBit uint8

	// nal_unit_type, specifies the type of RBSP data contained in the NAL
	// unit as defined in Table 7-1.
	Type uint8

	// nuh_layer_id, identifier of the layer to which the NAL unit belongs.
	LayerID uint8

	// nuh_temporal_id_plus1 minus 1 specifies a temporal identifier for the
	// NAL unit. Must not be 0.
	TemporalIDPlus1 uint8
}

// NewNALUHeader parses a NAL unit header from br following the syntax
// structure specified in section 7.3.1.2, and returns as a new NALUHeader.
func NewNALUHeader(br *bits.BitReader) (*NALUHeader, error) {
	h := &NALUHeader{}
	r := newFieldReader(br)

	h.ForbiddenZeroBit = uint8(r.readBits(1))
	h.Type = uint8(r.readBits(6))
	h.LayerID = uint8(r.readBits(6))
	h.TemporalIDPlus1 = uint8(r.readBits(3))

	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not read NAL unit header")
	}
	if h.ForbiddenZeroBit != 0 {
		return nil, SyntaxError{Field: "forbidden_zero_bit", Value: int64(h.ForbiddenZeroBit), Min: 0, Max: 0}
	}
	if h.TemporalIDPlus1 == 0 {
		return nil, SyntaxError{Field: "nuh_temporal_id_plus1", Value: 0, Min: 1, Max: 7}
	}
	return h, nil
}

// NALUIndex locates a NAL unit within an Annex B byte stream.
type NALUIndex struct {
	// StartOffset is the offset of the first byte of the start code.
	StartOffset int

	// PayloadStartOffset is the offset immediately after the start code,
	// pointing at the NAL unit header.
	PayloadStartOffset int

	// PayloadSize is the NAL unit size in bytes counting from
	// PayloadStartOffset.
	PayloadSize int
}

// FindNALUnits scans data for 0x000001 and 0x00000001 start code prefixes
// and returns an index for each NAL unit found, in stream order. A trailing
// NAL unit with no following start code terminates at the end of data. If
// data is non-empty and contains no start code the result is empty.
func FindNALUnits(data []byte) []NALUIndex {
	var idxs []NALUIndex
	i := 0
	for i+3 <= len(data) {
		if !(data[i] == 0 && data[i+1] == 0 && data[i+2] == 1) {
			i++
			continue
		}

		// Fold a preceding zero byte into the start code.
		start := i
		if start > 0 && data[start-1] == 0 {
			start--
		}
		payload := i + 3

		if n := len(idxs); n > 0 {
			idxs[n-1].PayloadSize = start - idxs[n-1].PayloadStartOffset
		}
		idxs = append(idxs, NALUIndex{StartOffset: start, PayloadStartOffset: payload})
		i = payload
	}
	if n := len(idxs); n > 0 {
		idxs[n-1].PayloadSize = len(data) - idxs[n-1].PayloadStartOffset
	}
	return idxs
}

// AUD describes an access unit delimiter as defined by section 7.3.2.5 in
// the specifications.
type AUD struct {
	// pic_type, indicates the slice_type values that may be present in the
	// access unit, per Table 7-2.
	PicType uint8
}

// NewAUD parses an access unit delimiter from br following the syntax
// structure specified in section 7.3.2.5, and returns as a new AUD.
func NewAUD(br *bits.BitReader) (*AUD, error) {
	r := newFieldReader(br)
	a := &AUD{PicType: uint8(r.readBits(3))}
	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not read pic_type")
	}
	if err := readRBSPTrailingBits(br); err != nil {
		return nil, err
	}
	return a, nil
}

// SEI holds a raw supplemental enhancement information payload. SEI message
// syntax is not decoded; the RBSP bytes are retained for callers.
type SEI struct {
	Payload []byte
}
