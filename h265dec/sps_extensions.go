/*
DESCRIPTION
  sps_extensions.go provides parsing of the SPS range, multilayer, 3D and
  screen content coding extension syntax structures.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package h265dec

import (
	"github.com/pkg/errors"

	"github.com/ausocean/hevc/h265dec/bits"
)

// SPSRangeExtension describes a sps_range_extension syntax structure as
// defined by section 7.3.2.2.2 in the specifications.
type SPSRangeExtension struct {
	TransformSkipRotationEnabledFlag    bool
	TransformSkipContextEnabledFlag     bool
	ImplicitRdpcmEnabledFlag            bool
	ExplicitRdpcmEnabledFlag            bool
	ExtendedPrecisionProcessingFlag     bool
	IntraSmoothingDisabledFlag          bool
	HighPrecisionOffsetsEnabledFlag     bool
	PersistentRiceAdaptationEnabledFlag bool
	CabacBypassAlignmentEnabledFlag     bool
}

// NewSPSRangeExtension parses a sps_range_extension syntax structure from br
// following the structure specified in section 7.3.2.2.2.
func NewSPSRangeExtension(br *bits.BitReader) (*SPSRangeExtension, error) {
	e := &SPSRangeExtension{}
	r := newFieldReader(br)

	e.TransformSkipRotationEnabledFlag = r.readFlag()
	e.TransformSkipContextEnabledFlag = r.readFlag()
	e.ImplicitRdpcmEnabledFlag = r.readFlag()
	e.ExplicitRdpcmEnabledFlag = r.readFlag()
	e.ExtendedPrecisionProcessingFlag = r.readFlag()
	e.IntraSmoothingDisabledFlag = r.readFlag()
	e.HighPrecisionOffsetsEnabledFlag = r.readFlag()
	e.PersistentRiceAdaptationEnabledFlag = r.readFlag()
	e.CabacBypassAlignmentEnabledFlag = r.readFlag()

	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not parse sps_range_extension")
	}
	return e, nil
}

// SPSMultilayerExtension describes a sps_multilayer_extension syntax
// structure as defined by section 7.3.2.2.4 in the specifications.
type SPSMultilayerExtension struct {
	InterViewMvVertConstraintFlag bool
}

// NewSPSMultilayerExtension parses a sps_multilayer_extension syntax
// structure from br following the structure specified in section 7.3.2.2.4.
func NewSPSMultilayerExtension(br *bits.BitReader) (*SPSMultilayerExtension, error) {
	r := newFieldReader(br)
	e := &SPSMultilayerExtension{InterViewMvVertConstraintFlag: r.readFlag()}
	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not parse sps_multilayer_extension")
	}
	return e, nil
}

// SPS3DExtension describes a sps_3d_extension syntax structure as defined by
// section 7.3.2.2.5 in the specifications. Array fields are indexed by the
// depth layer flag d, 0 for texture and 1 for depth.
type SPS3DExtension struct {
	IvDiMcEnabledFlag        [2]bool
	IvMvScalEnabledFlag      [2]bool
	Log2IvmcSubPbSizeMinus3  uint64
	IvResPredEnabledFlag     bool
	DepthRefEnabledFlag      bool
	VspMcEnabledFlag         bool
	DbbpEnabledFlag          bool
	TexMcEnabledFlag         bool
	Log2TexmcSubPbSizeMinus3 uint64
	IntraContourEnabledFlag  bool
	IntraDcOnlyWedgeEnabledFlag bool
	CqtCuPartPredEnabledFlag bool
	InterDcOnlyEnabledFlag   bool
	SkipIntraEnabledFlag     bool
}

// NewSPS3DExtension parses a sps_3d_extension syntax structure from br
// following the structure specified in section 7.3.2.2.5.
func NewSPS3DExtension(br *bits.BitReader) (*SPS3DExtension, error) {
	e := &SPS3DExtension{}
	r := newFieldReader(br)

	e.IvDiMcEnabledFlag[0] = r.readFlag()
	e.IvMvScalEnabledFlag[0] = r.readFlag()
	e.Log2IvmcSubPbSizeMinus3 = r.readUe()
	e.IvResPredEnabledFlag = r.readFlag()
	e.DepthRefEnabledFlag = r.readFlag()
	e.VspMcEnabledFlag = r.readFlag()
	e.DbbpEnabledFlag = r.readFlag()

	e.IvDiMcEnabledFlag[1] = r.readFlag()
	e.IvMvScalEnabledFlag[1] = r.readFlag()
	e.TexMcEnabledFlag = r.readFlag()
	e.Log2TexmcSubPbSizeMinus3 = r.readUe()
	e.IntraContourEnabledFlag = r.readFlag()
	e.IntraDcOnlyWedgeEnabledFlag = r.readFlag()
	e.CqtCuPartPredEnabledFlag = r.readFlag()
	e.InterDcOnlyEnabledFlag = r.readFlag()
	e.SkipIntraEnabledFlag = r.readFlag()

	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not parse sps_3d_extension")
	}
	return e, nil
}

// SPSSCCExtension describes a sps_scc_extension syntax structure as defined
// by section 7.3.2.2.3 in the specifications.
type SPSSCCExtension struct {
	// sps_curr_pic_ref_enabled_flag, true means the current picture may be a
	// reference for its own prediction.
	CurrPicRefEnabledFlag bool

	// palette_mode_enabled_flag and its dependent fields. palette_max_size
	// is at most 64 and delta_palette_max_predictor_size at most 128.
	PaletteModeEnabledFlag       bool
	PaletteMaxSize               uint64
	DeltaPaletteMaxPredictorSize uint64

	// sps_palette_predictor_initializers_present_flag and the initializer
	// table, sized numComps x (sps_num_palette_predictor_initializers_minus1
	// + 1) where numComps is 1 for monochrome and 3 otherwise.
	PalettePredictorInitializersPresentFlag  bool
	NumPalettePredictorInitializersMinus1    uint64
	PalettePredictorInitializers             [][]uint64

	// motion_vector_resolution_control_idc; the reserved value 3 is
	// tolerated as the standard directs decoders to allow it.
	MotionVectorResolutionControlIDC uint8

	IntraBoundaryFilteringDisabledFlag bool
}

// NewSPSSCCExtension parses a sps_scc_extension syntax structure from br
// following the structure specified in section 7.3.2.2.3. chromaFormatIDC,
// bitDepthLumaMinus8 and bitDepthChromaMinus8 are supplied by the containing
// SPS and size the palette predictor initializer entries.
func NewSPSSCCExtension(br *bits.BitReader, chromaFormatIDC uint64, bitDepthLumaMinus8, bitDepthChromaMinus8 uint64) (*SPSSCCExtension, error) {
	e := &SPSSCCExtension{}
	r := newFieldReader(br)

	e.CurrPicRefEnabledFlag = r.readFlag()

	e.PaletteModeEnabledFlag = r.readFlag()
	if e.PaletteModeEnabledFlag {
		e.PaletteMaxSize = r.readUe()
		e.DeltaPaletteMaxPredictorSize = r.readUe()
		if r.err() == nil {
			if err := checkRange("palette_max_size", int64(e.PaletteMaxSize), 0, 64); err != nil {
				return nil, err
			}
			if err := checkRange("delta_palette_max_predictor_size", int64(e.DeltaPaletteMaxPredictorSize), 0, 128); err != nil {
				return nil, err
			}
		}

		e.PalettePredictorInitializersPresentFlag = r.readFlag()
		if e.PalettePredictorInitializersPresentFlag {
			e.NumPalettePredictorInitializersMinus1 = r.readUe()
			if r.err() == nil {
				if err := checkRange("sps_num_palette_predictor_initializers_minus1", int64(e.NumPalettePredictorInitializersMinus1), 0, 127); err != nil {
					return nil, err
				}
			}

			numComps := 3
			if chromaFormatIDC == 0 {
				numComps = 1
			}
			for comp := 0; comp < numComps; comp++ {
				depth := int(bitDepthLumaMinus8) + 8
				if comp != 0 {
					depth = int(bitDepthChromaMinus8) + 8
				}
				var entries []uint64
				for i := 0; i <= int(e.NumPalettePredictorInitializersMinus1); i++ {
					entries = append(entries, r.readBits(depth))
				}
				e.PalettePredictorInitializers = append(e.PalettePredictorInitializers, entries)
			}
		}
	}

	e.MotionVectorResolutionControlIDC = uint8(r.readBits(2))
	e.IntraBoundaryFilteringDisabledFlag = r.readFlag()

	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not parse sps_scc_extension")
	}
	return e, nil
}
