/*
DESCRIPTION
  dump.go provides human and machine readable rendering of parsed bitstream
  results.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package h265dec

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// naluTypeNames maps the Table 7-1 type values that have dedicated payload
// handling to short names for dump output.
var naluTypeNames = map[uint8]string{
	NALTypeTrailN:    "TRAIL_N",
	NALTypeTrailR:    "TRAIL_R",
	NALTypeTSAN:      "TSA_N",
	NALTypeTSAR:      "TSA_R",
	NALTypeSTSAN:     "STSA_N",
	NALTypeSTSAR:     "STSA_R",
	NALTypeRADLN:     "RADL_N",
	NALTypeRADLR:     "RADL_R",
	NALTypeRASLN:     "RASL_N",
	NALTypeRASLR:     "RASL_R",
	NALTypeBLAWLP:    "BLA_W_LP",
	NALTypeBLAWRADL:  "BLA_W_RADL",
	NALTypeBLANLP:    "BLA_N_LP",
	NALTypeIDRWRADL:  "IDR_W_RADL",
	NALTypeIDRNLP:    "IDR_N_LP",
	NALTypeCRA:       "CRA_NUT",
	NALTypeVPS:       "VPS_NUT",
	NALTypeSPS:       "SPS_NUT",
	NALTypePPS:       "PPS_NUT",
	NALTypeAUD:       "AUD_NUT",
	NALTypeEOS:       "EOS_NUT",
	NALTypeEOB:       "EOB_NUT",
	NALTypeFD:        "FD_NUT",
	NALTypePrefixSEI: "PREFIX_SEI_NUT",
	NALTypeSuffixSEI: "SUFFIX_SEI_NUT",
}

// NALUTypeName returns a short name for the given NAL unit type, or a
// numeric fallback for reserved and unspecified types.
func NALUTypeName(t uint8) string {
	if n, ok := naluTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("NUT_%d", t)
}

// Dump writes a human readable summary of bs to w, one line per NAL unit
// with nested detail for parameter sets and slices.
func Dump(w io.Writer, bs *Bitstream) error {
	for i, n := range bs.NALUnits {
		if n.Header == nil {
			fmt.Fprintf(w, "nal %d: offset=%d size=%d unparsed header: %v\n", i, n.Index.StartOffset, n.Index.PayloadSize, n.Err)
			continue
		}
		fmt.Fprintf(w, "nal %d: %s offset=%d size=%d layer=%d tid=%d\n", i,
			NALUTypeName(n.Header.Type), n.Index.StartOffset, n.Index.PayloadSize,
			n.Header.LayerID, n.Header.TemporalIDPlus1-1)

		switch {
		case n.Err != nil:
			fmt.Fprintf(w, "  error: %v\n", n.Err)
		case n.VPS != nil:
			fmt.Fprintf(w, "  vps id=%d max_sub_layers=%d\n", n.VPS.ID, n.VPS.MaxSubLayersMinus1+1)
		case n.SPS != nil:
			fmt.Fprintf(w, "  sps id=%d chroma_format_idc=%d %dx%d rps=%d\n", n.SPS.ID,
				n.SPS.ChromaFormatIDC, n.SPS.Width(), n.SPS.Height(), len(n.SPS.ShortTermRefPicSets))
		case n.PPS != nil:
			fmt.Fprintf(w, "  pps id=%d sps_id=%d init_qp=%d\n", n.PPS.ID, n.PPS.SPSID, 26+n.PPS.InitQpMinus26)
		case n.Slice != nil:
			fmt.Fprintf(w, "  slice type=%d pps_id=%d qp_delta=%d first=%v\n", n.Slice.Header.SliceType,
				n.Slice.Header.PPSID, n.Slice.Header.SliceQpDelta, n.Slice.Header.FirstSliceSegmentInPicFlag)
		}
	}
	return nil
}

// DumpJSON writes bs to w as JSON, omitting raw payload bytes.
func DumpJSON(w io.Writer, bs *Bitstream) error {
	type unit struct {
		Type   string      `json:"type"`
		Index  NALUIndex   `json:"index"`
		Header *NALUHeader `json:"header,omitempty"`
		VPS    *VPS        `json:"vps,omitempty"`
		SPS    *SPS        `json:"sps,omitempty"`
		PPS    *PPS        `json:"pps,omitempty"`
		Slice  *SliceSegmentHeader `json:"slice,omitempty"`
		AUD    *AUD        `json:"aud,omitempty"`
		Err    string      `json:"error,omitempty"`
	}

	units := make([]unit, 0, len(bs.NALUnits))
	for _, n := range bs.NALUnits {
		u := unit{Index: n.Index, Header: n.Header, VPS: n.VPS, SPS: n.SPS, PPS: n.PPS, AUD: n.AUD}
		if n.Header != nil {
			u.Type = NALUTypeName(n.Header.Type)
		}
		if n.Slice != nil {
			u.Slice = n.Slice.Header
		}
		if n.Err != nil {
			u.Err = n.Err.Error()
		}
		units = append(units, u)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(units)
}
