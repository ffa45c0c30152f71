/*
DESCRIPTION
  qp.go provides extraction of luminance slice QP values from byte streams.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package h265dec

// SliceQpY parses the byte stream in data using state and returns the
// luminance QP of each slice segment, computed per equation 7-54 as
// 26 + init_qp_minus26 + slice_qp_delta. Slices whose PPS cannot be
// resolved, and NAL units that are not slice segments, contribute no value.
func SliceQpY(data []byte, state *ParserState) []int32 {
	p := &BitstreamParser{State: state}
	bs, err := p.Parse(data)
	if err != nil {
		return nil
	}

	var qps []int32
	for _, n := range bs.NALUnits {
		if n.Header == nil || n.Slice == nil {
			continue
		}
		if qp, ok := sliceQpY(n.Header.Type, n.Slice.Header, state); ok {
			qps = append(qps, qp)
		}
	}
	return qps
}

// SliceQpYFromNALU computes the luminance QP for a single NAL unit payload
// (two byte header included, emulation prevention still present). The second
// return is false if the unit is not a slice segment or its parameter sets
// cannot be resolved through state.
func SliceQpYFromNALU(payload []byte, state *ParserState) (int32, bool) {
	if len(payload) < 2 {
		return 0, false
	}
	nalType := payload[0] >> 1 & 0x3f
	if !IsSliceSegment(nalType) {
		return 0, false
	}
	l, err := NewSliceSegmentLayer(rbspFromNALU(payload[2:]), nalType, state)
	if err != nil {
		return 0, false
	}
	return sliceQpY(nalType, l.Header, state)
}

// sliceQpY computes the luminance QP for a parsed slice segment header, per
// equation 7-54. The second return is false if the header is absent, is not
// a slice type, or its PPS is not in state.
func sliceQpY(nalType uint8, h *SliceSegmentHeader, state *ParserState) (int32, bool) {
	if h == nil || !IsSliceSegment(nalType) {
		return 0, false
	}
	pps := state.GetPPS(h.PPSID)
	if pps == nil {
		return 0, false
	}
	return int32(26 + pps.InitQpMinus26 + h.SliceQpDelta), true
}
