/*
NAME
  qp.go

DESCRIPTION
  qp.go provides luminance slice QP extraction from RFC 7798 payloads.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>
*/

package rtp

import (
	"github.com/pkg/errors"

	"github.com/ausocean/hevc/h265dec"
)

// SliceQpY returns the luminance QP carried by an RFC 7798 payload, using
// the most recently completed NAL unit in the packet: the unit itself for a
// single NAL unit packet, the last contained unit for an aggregation packet,
// and the reconstructed unit of a fragmentation packet only when its start
// bit is set. The second return is false when the packet supplies no QP,
// i.e. it holds no slice segment, a non-start fragment, or a slice whose
// parameter sets cannot be resolved through state.
func SliceQpY(payload []byte, donl bool, state *h265dec.ParserState) (int32, bool, error) {
	p, err := ParsePayload(payload, donl)
	if err != nil {
		return 0, false, errors.Wrap(err, "could not parse RTP payload")
	}

	var nalu []byte
	switch {
	case p.Single != nil:
		nalu = p.Single
	case len(p.Aggregated) > 0:
		nalu = p.Aggregated[len(p.Aggregated)-1]
	case p.FU != nil:
		if !p.FU.Start {
			return 0, false, nil
		}
		nalu = p.FU.NALU()
	default:
		return 0, false, nil
	}

	qp, ok := h265dec.SliceQpYFromNALU(nalu, state)
	return qp, ok, nil
}
