/*
DESCRIPTION
  vui.go provides parsing of the vui_parameters syntax structure.

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

// Aspect ratio identifiers from Table E-1.
const (
	AspectRatioUnspecified = 0
	AspectRatioExtendedSAR = 255
)

// VUIParameters describes a vui_parameters syntax structure as defined by
// section E.2.1 in the specifications. Semantics for fields are defined in
// section E.3.1.
type VUIParameters struct {
	// aspect_ratio_info_present_flag and its dependent fields; sar_width and
	// sar_height are present only for aspect_ratio_idc == 255 (Extended_SAR).
	AspectRatioInfoPresentFlag bool
	AspectRatioIDC             uint8
	SARWidth                   uint16
	SARHeight                  uint16

	// overscan_info_present_flag and overscan_appropriate_flag.
	OverscanInfoPresentFlag bool
	OverscanAppropriateFlag bool

	// video_signal_type_present_flag and its dependent fields.
	VideoSignalTypePresentFlag  bool
	VideoFormat                 uint8
	VideoFullRangeFlag          bool
	ColourDescriptionPresentFlag bool
	ColourPrimaries             uint8
	TransferCharacteristics     uint8
	MatrixCoeffs                uint8

	// chroma_loc_info_present_flag and the chroma sample location fields,
	// each in the range 0 to 5.
	ChromaLocInfoPresentFlag        bool
	ChromaSampleLocTypeTopField    uint64
	ChromaSampleLocTypeBottomField uint64

	NeutralChromaIndicationFlag bool
	FieldSeqFlag                bool
	FrameFieldInfoPresentFlag   bool

	// default_display_window_flag and the window offsets.
	DefaultDisplayWindowFlag bool
	DefDispWinLeftOffset     uint64
	DefDispWinRightOffset    uint64
	DefDispWinTopOffset      uint64
	DefDispWinBottomOffset   uint64

	// vui_timing_info_present_flag and its dependent fields.
	TimingInfoPresentFlag        bool
	NumUnitsInTick               uint32
	TimeScale                    uint32
	PocProportionalToTimingFlag  bool
	NumTicksPocDiffOneMinus1     uint64

	// vui_hrd_parameters_present_flag and the HRD parameters.
	HRDParametersPresentFlag bool
	HRDParameters            *HRDParameters

	// bitstream_restriction_flag and its dependent fields.
	BitstreamRestrictionFlag         bool
	TilesFixedStructureFlag          bool
	MotionVectorsOverPicBoundariesFlag bool
	RestrictedRefPicListsFlag        bool
	MinSpatialSegmentationIDC        uint64
	MaxBytesPerPicDenom              uint64
	MaxBitsPerMinCuDenom             uint64
	Log2MaxMvLengthHorizontal        uint64
	Log2MaxMvLengthVertical          uint64
}

// Framerate returns vui_time_scale / vui_num_units_in_tick when timing info
// is present, and 0 otherwise.
func (p *VUIParameters) Framerate() float64 {
	if !p.TimingInfoPresentFlag || p.NumUnitsInTick == 0 {
		return 0
	}
	return float64(p.TimeScale) / float64(p.NumUnitsInTick)
}

// NewVUIParameters parses a vui_parameters syntax structure from br
// following the structure specified in section E.2.1, and returns as a new
// VUIParameters. spsMaxSubLayersMinus1 is supplied by the containing SPS.
func NewVUIParameters(br *bits.BitReader, spsMaxSubLayersMinus1 int) (*VUIParameters, error) {
	p := &VUIParameters{}
	r := newFieldReader(br)

	p.AspectRatioInfoPresentFlag = r.readFlag()
	if p.AspectRatioInfoPresentFlag {
		p.AspectRatioIDC = uint8(r.readBits(8))
		if p.AspectRatioIDC == AspectRatioExtendedSAR {
			p.SARWidth = uint16(r.readBits(16))
			p.SARHeight = uint16(r.readBits(16))
		}
	}

	p.OverscanInfoPresentFlag = r.readFlag()
	if p.OverscanInfoPresentFlag {
		p.OverscanAppropriateFlag = r.readFlag()
	}

	p.VideoSignalTypePresentFlag = r.readFlag()
	if p.VideoSignalTypePresentFlag {
		p.VideoFormat = uint8(r.readBits(3))
		p.VideoFullRangeFlag = r.readFlag()
		p.ColourDescriptionPresentFlag = r.readFlag()
		if p.ColourDescriptionPresentFlag {
			p.ColourPrimaries = uint8(r.readBits(8))
			p.TransferCharacteristics = uint8(r.readBits(8))
			p.MatrixCoeffs = uint8(r.readBits(8))
		}
	}

	p.ChromaLocInfoPresentFlag = r.readFlag()
	if p.ChromaLocInfoPresentFlag {
		p.ChromaSampleLocTypeTopField = r.readUe()
		p.ChromaSampleLocTypeBottomField = r.readUe()
		if r.err() == nil {
			if err := checkRange("chroma_sample_loc_type_top_field", int64(p.ChromaSampleLocTypeTopField), 0, 5); err != nil {
				return nil, err
			}
			if err := checkRange("chroma_sample_loc_type_bottom_field", int64(p.ChromaSampleLocTypeBottomField), 0, 5); err != nil {
				return nil, err
			}
		}
	}

	p.NeutralChromaIndicationFlag = r.readFlag()
	p.FieldSeqFlag = r.readFlag()
	p.FrameFieldInfoPresentFlag = r.readFlag()

	p.DefaultDisplayWindowFlag = r.readFlag()
	if p.DefaultDisplayWindowFlag {
		p.DefDispWinLeftOffset = r.readUe()
		p.DefDispWinRightOffset = r.readUe()
		p.DefDispWinTopOffset = r.readUe()
		p.DefDispWinBottomOffset = r.readUe()
		if r.err() == nil {
			for _, c := range []struct {
				name string
				v    uint64
			}{
				{"def_disp_win_left_offset", p.DefDispWinLeftOffset},
				{"def_disp_win_right_offset", p.DefDispWinRightOffset},
				{"def_disp_win_top_offset", p.DefDispWinTopOffset},
				{"def_disp_win_bottom_offset", p.DefDispWinBottomOffset},
			} {
				if err := checkRange(c.name, int64(c.v), 0, 16384); err != nil {
					return nil, err
				}
			}
		}
	}

	p.TimingInfoPresentFlag = r.readFlag()
	if p.TimingInfoPresentFlag {
		p.NumUnitsInTick = uint32(r.readBits(32))
		p.TimeScale = uint32(r.readBits(32))
		p.PocProportionalToTimingFlag = r.readFlag()
		if p.PocProportionalToTimingFlag {
			p.NumTicksPocDiffOneMinus1 = r.readUe()
			if r.err() == nil {
				if err := checkRange("vui_num_ticks_poc_diff_one_minus1", int64(p.NumTicksPocDiffOneMinus1), 0, 1<<32-2); err != nil {
					return nil, err
				}
			}
		}
		p.HRDParametersPresentFlag = r.readFlag()
		if p.HRDParametersPresentFlag && r.err() == nil {
			var err error
			p.HRDParameters, err = NewHRDParameters(br, true, spsMaxSubLayersMinus1)
			if err != nil {
				return nil, errors.Wrap(err, "could not parse hrd_parameters")
			}
		}
	}

	p.BitstreamRestrictionFlag = r.readFlag()
	if p.BitstreamRestrictionFlag {
		p.TilesFixedStructureFlag = r.readFlag()
		p.MotionVectorsOverPicBoundariesFlag = r.readFlag()
		p.RestrictedRefPicListsFlag = r.readFlag()
		p.MinSpatialSegmentationIDC = r.readUe()
		p.MaxBytesPerPicDenom = r.readUe()
		p.MaxBitsPerMinCuDenom = r.readUe()
		p.Log2MaxMvLengthHorizontal = r.readUe()
		p.Log2MaxMvLengthVertical = r.readUe()
		if r.err() == nil {
			for _, c := range []struct {
				name string
				v    uint64
				max  int64
			}{
				{"min_spatial_segmentation_idc", p.MinSpatialSegmentationIDC, 4095},
				{"max_bytes_per_pic_denom", p.MaxBytesPerPicDenom, 16},
				{"max_bits_per_min_cu_denom", p.MaxBitsPerMinCuDenom, 16},
				{"log2_max_mv_length_horizontal", p.Log2MaxMvLengthHorizontal, 15},
				{"log2_max_mv_length_vertical", p.Log2MaxMvLengthVertical, 15},
			} {
				if err := checkRange(c.name, int64(c.v), 0, c.max); err != nil {
					return nil, err
				}
			}
		}
	}

	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not parse vui_parameters")
	}
	return p, nil
}
