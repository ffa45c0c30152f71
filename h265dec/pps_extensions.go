/*
DESCRIPTION
  pps_extensions.go provides parsing of the PPS range and screen content
  coding extension syntax structures.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package h265dec

import (
	"github.com/pkg/errors"

	"github.com/ausocean/hevc/h265dec/bits"
)

// PPSRangeExtension describes a pps_range_extension syntax structure as
// defined by section 7.3.2.3.2 in the specifications.
type PPSRangeExtension struct {
	// log2_max_transform_skip_block_size_minus2, present only when the PPS
	// transform_skip_enabled_flag is set.
	Log2MaxTransformSkipBlockSizeMinus2 uint64

	CrossComponentPredictionEnabledFlag bool

	// chroma_qp_offset_list_enabled_flag and its dependent fields.
	ChromaQpOffsetListEnabledFlag bool
	DiffCuChromaQpOffsetDepth     uint64
	ChromaQpOffsetListLenMinus1   uint64
	CbQpOffsetList                []int64
	CrQpOffsetList                []int64

	Log2SaoOffsetScaleLuma   uint64
	Log2SaoOffsetScaleChroma uint64
}

// NewPPSRangeExtension parses a pps_range_extension syntax structure from br
// following the structure specified in section 7.3.2.3.2.
// transformSkipEnabled is the containing PPS's transform_skip_enabled_flag.
func NewPPSRangeExtension(br *bits.BitReader, transformSkipEnabled bool) (*PPSRangeExtension, error) {
	e := &PPSRangeExtension{}
	r := newFieldReader(br)

	if transformSkipEnabled {
		e.Log2MaxTransformSkipBlockSizeMinus2 = r.readUe()
	}
	e.CrossComponentPredictionEnabledFlag = r.readFlag()

	e.ChromaQpOffsetListEnabledFlag = r.readFlag()
	if e.ChromaQpOffsetListEnabledFlag {
		e.DiffCuChromaQpOffsetDepth = r.readUe()
		e.ChromaQpOffsetListLenMinus1 = r.readUe()
		if r.err() == nil {
			if err := checkRange("chroma_qp_offset_list_len_minus1", int64(e.ChromaQpOffsetListLenMinus1), 0, 5); err != nil {
				return nil, err
			}
		}
		for i := 0; i <= int(e.ChromaQpOffsetListLenMinus1); i++ {
			cb := r.readSe()
			cr := r.readSe()
			if r.err() != nil {
				break
			}
			if err := checkRange("cb_qp_offset_list", cb, -12, 12); err != nil {
				return nil, err
			}
			if err := checkRange("cr_qp_offset_list", cr, -12, 12); err != nil {
				return nil, err
			}
			e.CbQpOffsetList = append(e.CbQpOffsetList, cb)
			e.CrQpOffsetList = append(e.CrQpOffsetList, cr)
		}
	}

	e.Log2SaoOffsetScaleLuma = r.readUe()
	e.Log2SaoOffsetScaleChroma = r.readUe()

	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not parse pps_range_extension")
	}
	return e, nil
}

// PPSSCCExtension describes a pps_scc_extension syntax structure as defined
// by section 7.3.2.3.3 in the specifications.
type PPSSCCExtension struct {
	// pps_curr_pic_ref_enabled_flag, true means the current picture may be a
	// reference for prediction of slices referring to this PPS.
	CurrPicRefEnabledFlag bool

	// residual_adaptive_colour_transform_enabled_flag and its dependent
	// ACT QP offset fields.
	ResidualAdaptiveColourTransformEnabledFlag bool
	SliceActQpOffsetsPresentFlag               bool
	ActYQpOffsetPlus5                          int64
	ActCbQpOffsetPlus5                         int64
	ActCrQpOffsetPlus3                         int64

	// pps_palette_predictor_initializers_present_flag and its dependent
	// fields; the initializer table is sized numComps x
	// pps_num_palette_predictor_initializers where numComps is 1 for
	// monochrome_palette_flag set and 3 otherwise.
	PalettePredictorInitializersPresentFlag bool
	NumPalettePredictorInitializers         uint64
	MonochromePaletteFlag                   bool
	LumaBitDepthEntryMinus8                 uint64
	ChromaBitDepthEntryMinus8               uint64
	PalettePredictorInitializers            [][]uint64
}

// NewPPSSCCExtension parses a pps_scc_extension syntax structure from br
// following the structure specified in section 7.3.2.3.3.
func NewPPSSCCExtension(br *bits.BitReader) (*PPSSCCExtension, error) {
	e := &PPSSCCExtension{}
	r := newFieldReader(br)

	e.CurrPicRefEnabledFlag = r.readFlag()

	e.ResidualAdaptiveColourTransformEnabledFlag = r.readFlag()
	if e.ResidualAdaptiveColourTransformEnabledFlag {
		e.SliceActQpOffsetsPresentFlag = r.readFlag()
		e.ActYQpOffsetPlus5 = r.readSe()
		e.ActCbQpOffsetPlus5 = r.readSe()
		e.ActCrQpOffsetPlus3 = r.readSe()
		if r.err() == nil {
			if err := checkRange("pps_act_y_qp_offset_plus5", e.ActYQpOffsetPlus5, -7, 17); err != nil {
				return nil, err
			}
			if err := checkRange("pps_act_cb_qp_offset_plus5", e.ActCbQpOffsetPlus5, -7, 17); err != nil {
				return nil, err
			}
			if err := checkRange("pps_act_cr_qp_offset_plus3", e.ActCrQpOffsetPlus3, -9, 15); err != nil {
				return nil, err
			}
		}
	}

	e.PalettePredictorInitializersPresentFlag = r.readFlag()
	if e.PalettePredictorInitializersPresentFlag {
		e.NumPalettePredictorInitializers = r.readUe()
		if r.err() == nil {
			if err := checkRange("pps_num_palette_predictor_initializers", int64(e.NumPalettePredictorInitializers), 0, 128); err != nil {
				return nil, err
			}
		}
		if e.NumPalettePredictorInitializers > 0 {
			e.MonochromePaletteFlag = r.readFlag()
			e.LumaBitDepthEntryMinus8 = r.readUe()
			if !e.MonochromePaletteFlag {
				e.ChromaBitDepthEntryMinus8 = r.readUe()
			}

			numComps := 3
			if e.MonochromePaletteFlag {
				numComps = 1
			}
			for comp := 0; comp < numComps; comp++ {
				depth := int(e.LumaBitDepthEntryMinus8) + 8
				if comp != 0 {
					depth = int(e.ChromaBitDepthEntryMinus8) + 8
				}
				var entries []uint64
				for i := 0; i < int(e.NumPalettePredictorInitializers); i++ {
					entries = append(entries, r.readBits(depth))
				}
				e.PalettePredictorInitializers = append(e.PalettePredictorInitializers, entries)
			}
		}
	}

	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not parse pps_scc_extension")
	}
	return e, nil
}
