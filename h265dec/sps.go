/*
DESCRIPTION
  sps.go provides parsing of the sequence parameter set.

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

// Chroma format identifiers from Table 6-1.
const (
	chromaMonochrome = 0
	chroma420        = 1
	chroma422        = 2
	chroma444        = 3
)

var subWidthC = [4]int{1, 2, 2, 1}
var subHeightC = [4]int{1, 2, 1, 1}

// SPS describes a sequence parameter set as defined by section 7.3.2.2.1 in
// the specifications. For semantics see section 7.4.3.2.1.
type SPS struct {
	// sps_video_parameter_set_id, the VPS referenced by this SPS.
	VPSID uint8

	// sps_max_sub_layers_minus1 plus 1 specifies the maximum number of
	// temporal sub-layers; in the range 0 to 6.
	MaxSubLayersMinus1 uint8

	// sps_temporal_id_nesting_flag.
	TemporalIDNestingFlag bool

	// The profile_tier_level structure specified in section 7.3.3.
	ProfileTierLevel *ProfileTierLevel

	// sps_seq_parameter_set_id, identifies the SPS for reference by the PPS;
	// in the range 0 to 15.
	ID uint64

	// chroma_format_idc, specifies the chroma sampling relative to the luma
	// sampling as specified in clause 6.2; in the range 0 to 3.
	ChromaFormatIDC uint64

	// separate_colour_plane_flag, present for chroma_format_idc == 3; true
	// means the three components are coded separately.
	SeparateColourPlaneFlag bool

	// pic_width_in_luma_samples and pic_height_in_luma_samples.
	PicWidthInLumaSamples  uint64
	PicHeightInLumaSamples uint64

	// conformance_window_flag and the cropping offsets.
	ConformanceWindowFlag bool
	ConfWinLeftOffset     uint64
	ConfWinRightOffset    uint64
	ConfWinTopOffset      uint64
	ConfWinBottomOffset   uint64

	// bit_depth_luma_minus8 and bit_depth_chroma_minus8, each in the range
	// 0 to 8.
	BitDepthLumaMinus8   uint64
	BitDepthChromaMinus8 uint64

	// log2_max_pic_order_cnt_lsb_minus4, in the range 0 to 12.
	Log2MaxPicOrderCntLsbMinus4 uint64

	// sps_sub_layer_ordering_info_present_flag and the per-sub-layer DPB
	// sizing fields; when the flag is false only the entry for
	// sps_max_sub_layers_minus1 is coded.
	SubLayerOrderingInfoPresentFlag bool
	MaxDecPicBufferingMinus1        []uint64
	MaxNumReorderPics               []uint64
	MaxLatencyIncreasePlus1         []uint64

	Log2MinLumaCodingBlockSizeMinus3     uint64
	Log2DiffMaxMinLumaCodingBlockSize    uint64
	Log2MinLumaTransformBlockSizeMinus2  uint64
	Log2DiffMaxMinLumaTransformBlockSize uint64
	MaxTransformHierarchyDepthInter      uint64
	MaxTransformHierarchyDepthIntra      uint64

	// scaling_list_enabled_flag and the optional scaling list data.
	ScalingListEnabledFlag         bool
	ScalingListDataPresentFlag     bool
	ScalingListData                *ScalingListData

	AmpEnabledFlag                  bool
	SampleAdaptiveOffsetEnabledFlag bool

	// pcm_enabled_flag and its dependent fields.
	PCMEnabledFlag                        bool
	PCMSampleBitDepthLumaMinus1           uint8
	PCMSampleBitDepthChromaMinus1         uint8
	Log2MinPCMLumaCodingBlockSizeMinus3   uint64
	Log2DiffMaxMinPCMLumaCodingBlockSize  uint64
	PCMLoopFilterDisabledFlag             bool

	// The ordered short-term reference picture set vector, sized
	// num_short_term_ref_pic_sets (at most 64). Entries may reference
	// earlier entries by index.
	ShortTermRefPicSets []*ShortTermRPS

	// long_term_ref_pics_present_flag and its dependent fields;
	// num_long_term_ref_pics_sps is at most 32.
	LongTermRefPicsPresentFlag bool
	LtRefPicPocLsbSps          []uint64
	UsedByCurrPicLtSpsFlag     []bool

	TemporalMvpEnabledFlag       bool
	StrongIntraSmoothingEnabledFlag bool

	// vui_parameters_present_flag and the optional VUI.
	VUIParametersPresentFlag bool
	VUIParameters            *VUIParameters

	// sps_extension_present_flag, the four extension flags plus
	// sps_extension_4bits, and the optional extension structures. Absence of
	// an extension is distinct from an all-zero extension.
	ExtensionPresentFlag bool
	RangeExtensionFlag      bool
	MultilayerExtensionFlag bool
	Ext3DFlag               bool
	SCCExtensionFlag        bool
	Extension4Bits          uint8
	RangeExtension      *SPSRangeExtension
	MultilayerExtension *SPSMultilayerExtension
	Ext3D               *SPS3DExtension
	SCCExtension        *SPSSCCExtension
}

// ChromaArrayType returns chroma_format_idc when separate_colour_plane_flag
// is false and 0 otherwise, per section 7.4.3.2.1.
func (s *SPS) ChromaArrayType() uint64 {
	if s.SeparateColourPlaneFlag {
		return chromaMonochrome
	}
	return s.ChromaFormatIDC
}

// MaxNumPics returns the decoded picture buffer bound for the highest
// sub-layer, i.e. sps_max_dec_pic_buffering_minus1[sps_max_sub_layers_minus1],
// which bounds reference picture counts.
func (s *SPS) MaxNumPics() int {
	return int(s.MaxDecPicBufferingMinus1[s.MaxSubLayersMinus1])
}

// Width returns the video width after conformance window cropping.
func (s *SPS) Width() int {
	w := int(s.PicWidthInLumaSamples)
	if s.ConformanceWindowFlag {
		w -= int(s.ConfWinLeftOffset+s.ConfWinRightOffset) * subWidthC[s.ChromaFormatIDC]
	}
	return w
}

// Height returns the video height after conformance window cropping.
func (s *SPS) Height() int {
	h := int(s.PicHeightInLumaSamples)
	if s.ConformanceWindowFlag {
		h -= int(s.ConfWinTopOffset+s.ConfWinBottomOffset) * subHeightC[s.ChromaFormatIDC]
	}
	return h
}

// CtbLog2SizeY returns the luma coding tree block size log2, equation 7-15.
func (s *SPS) CtbLog2SizeY() uint64 {
	return s.Log2MinLumaCodingBlockSizeMinus3 + 3 + s.Log2DiffMaxMinLumaCodingBlockSize
}

// PicSizeInCtbsY returns the picture size in coding tree blocks, equations
// 7-10 to 7-22.
func (s *SPS) PicSizeInCtbsY() int {
	ctbSize := uint64(1) << s.CtbLog2SizeY()
	w := (s.PicWidthInLumaSamples + ctbSize - 1) / ctbSize
	h := (s.PicHeightInLumaSamples + ctbSize - 1) / ctbSize
	return int(w * h)
}

// NewSPS parses a sequence parameter set RBSP from br following the syntax
// structure specified in section 7.3.2.2.1, and returns as a new SPS.
func NewSPS(br *bits.BitReader) (*SPS, error) {
	s := &SPS{}
	r := newFieldReader(br)

	s.VPSID = uint8(r.readBits(4))
	s.MaxSubLayersMinus1 = uint8(r.readBits(3))
	s.TemporalIDNestingFlag = r.readFlag()
	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not read SPS header fields")
	}
	if err := checkRange("sps_max_sub_layers_minus1", int64(s.MaxSubLayersMinus1), 0, 6); err != nil {
		return nil, err
	}

	var err error
	s.ProfileTierLevel, err = NewProfileTierLevel(br, true, int(s.MaxSubLayersMinus1))
	if err != nil {
		return nil, errors.Wrap(err, "could not parse profile_tier_level")
	}

	s.ID = r.readUe()
	s.ChromaFormatIDC = r.readUe()
	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not read SPS id fields")
	}
	if err := checkRange("sps_seq_parameter_set_id", int64(s.ID), 0, 15); err != nil {
		return nil, err
	}
	if err := checkRange("chroma_format_idc", int64(s.ChromaFormatIDC), 0, 3); err != nil {
		return nil, err
	}
	if s.ChromaFormatIDC == chroma444 {
		s.SeparateColourPlaneFlag = r.readFlag()
	}

	s.PicWidthInLumaSamples = r.readUe()
	s.PicHeightInLumaSamples = r.readUe()

	s.ConformanceWindowFlag = r.readFlag()
	if s.ConformanceWindowFlag {
		s.ConfWinLeftOffset = r.readUe()
		s.ConfWinRightOffset = r.readUe()
		s.ConfWinTopOffset = r.readUe()
		s.ConfWinBottomOffset = r.readUe()
	}

	s.BitDepthLumaMinus8 = r.readUe()
	s.BitDepthChromaMinus8 = r.readUe()
	s.Log2MaxPicOrderCntLsbMinus4 = r.readUe()
	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not read bit depth fields")
	}
	if err := checkRange("bit_depth_luma_minus8", int64(s.BitDepthLumaMinus8), 0, 8); err != nil {
		return nil, err
	}
	if err := checkRange("bit_depth_chroma_minus8", int64(s.BitDepthChromaMinus8), 0, 8); err != nil {
		return nil, err
	}
	if err := checkRange("log2_max_pic_order_cnt_lsb_minus4", int64(s.Log2MaxPicOrderCntLsbMinus4), 0, 12); err != nil {
		return nil, err
	}

	s.SubLayerOrderingInfoPresentFlag = r.readFlag()
	s.MaxDecPicBufferingMinus1 = make([]uint64, s.MaxSubLayersMinus1+1)
	s.MaxNumReorderPics = make([]uint64, s.MaxSubLayersMinus1+1)
	s.MaxLatencyIncreasePlus1 = make([]uint64, s.MaxSubLayersMinus1+1)
	start := int(s.MaxSubLayersMinus1)
	if s.SubLayerOrderingInfoPresentFlag {
		start = 0
	}
	for i := start; i <= int(s.MaxSubLayersMinus1); i++ {
		s.MaxDecPicBufferingMinus1[i] = r.readUe()
		s.MaxNumReorderPics[i] = r.readUe()
		s.MaxLatencyIncreasePlus1[i] = r.readUe()
	}

	s.Log2MinLumaCodingBlockSizeMinus3 = r.readUe()
	s.Log2DiffMaxMinLumaCodingBlockSize = r.readUe()
	s.Log2MinLumaTransformBlockSizeMinus2 = r.readUe()
	s.Log2DiffMaxMinLumaTransformBlockSize = r.readUe()
	s.MaxTransformHierarchyDepthInter = r.readUe()
	s.MaxTransformHierarchyDepthIntra = r.readUe()

	s.ScalingListEnabledFlag = r.readFlag()
	if s.ScalingListEnabledFlag {
		s.ScalingListDataPresentFlag = r.readFlag()
		if s.ScalingListDataPresentFlag && r.err() == nil {
			s.ScalingListData, err = NewScalingListData(br)
			if err != nil {
				return nil, errors.Wrap(err, "could not parse scaling_list_data")
			}
		}
	}

	s.AmpEnabledFlag = r.readFlag()
	s.SampleAdaptiveOffsetEnabledFlag = r.readFlag()

	s.PCMEnabledFlag = r.readFlag()
	if s.PCMEnabledFlag {
		s.PCMSampleBitDepthLumaMinus1 = uint8(r.readBits(4))
		s.PCMSampleBitDepthChromaMinus1 = uint8(r.readBits(4))
		s.Log2MinPCMLumaCodingBlockSizeMinus3 = r.readUe()
		s.Log2DiffMaxMinPCMLumaCodingBlockSize = r.readUe()
		s.PCMLoopFilterDisabledFlag = r.readFlag()
	}

	numRps := r.readUe()
	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not read num_short_term_ref_pic_sets")
	}
	if err := checkRange("num_short_term_ref_pic_sets", int64(numRps), 0, 64); err != nil {
		return nil, err
	}
	for i := 0; i < int(numRps); i++ {
		rps, err := NewShortTermRPS(br, i, int(numRps), s.ShortTermRefPicSets, s.MaxNumPics())
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse st_ref_pic_set %d", i)
		}
		s.ShortTermRefPicSets = append(s.ShortTermRefPicSets, rps)
	}

	s.LongTermRefPicsPresentFlag = r.readFlag()
	if s.LongTermRefPicsPresentFlag {
		numLt := r.readUe()
		if r.err() != nil {
			return nil, errors.Wrap(r.err(), "could not read num_long_term_ref_pics_sps")
		}
		if err := checkRange("num_long_term_ref_pics_sps", int64(numLt), 0, 32); err != nil {
			return nil, err
		}
		for i := 0; i < int(numLt); i++ {
			s.LtRefPicPocLsbSps = append(s.LtRefPicPocLsbSps, r.readBits(int(s.Log2MaxPicOrderCntLsbMinus4)+4))
			s.UsedByCurrPicLtSpsFlag = append(s.UsedByCurrPicLtSpsFlag, r.readFlag())
		}
	}

	s.TemporalMvpEnabledFlag = r.readFlag()
	s.StrongIntraSmoothingEnabledFlag = r.readFlag()

	s.VUIParametersPresentFlag = r.readFlag()
	if s.VUIParametersPresentFlag && r.err() == nil {
		s.VUIParameters, err = NewVUIParameters(br, int(s.MaxSubLayersMinus1))
		if err != nil {
			return nil, errors.Wrap(err, "could not parse vui_parameters")
		}
	}

	s.ExtensionPresentFlag = r.readFlag()
	if s.ExtensionPresentFlag {
		s.RangeExtensionFlag = r.readFlag()
		s.MultilayerExtensionFlag = r.readFlag()
		s.Ext3DFlag = r.readFlag()
		s.SCCExtensionFlag = r.readFlag()
		s.Extension4Bits = uint8(r.readBits(4))
		if r.err() != nil {
			return nil, errors.Wrap(r.err(), "could not read SPS extension flags")
		}

		if s.RangeExtensionFlag {
			s.RangeExtension, err = NewSPSRangeExtension(br)
			if err != nil {
				return nil, errors.Wrap(err, "could not parse sps_range_extension")
			}
		}
		if s.MultilayerExtensionFlag {
			s.MultilayerExtension, err = NewSPSMultilayerExtension(br)
			if err != nil {
				return nil, errors.Wrap(err, "could not parse sps_multilayer_extension")
			}
		}
		if s.Ext3DFlag {
			s.Ext3D, err = NewSPS3DExtension(br)
			if err != nil {
				return nil, errors.Wrap(err, "could not parse sps_3d_extension")
			}
		}
		if s.SCCExtensionFlag {
			s.SCCExtension, err = NewSPSSCCExtension(br, s.ChromaFormatIDC, s.BitDepthLumaMinus8, s.BitDepthChromaMinus8)
			if err != nil {
				return nil, errors.Wrap(err, "could not parse sps_scc_extension")
			}
		}
		if s.Extension4Bits != 0 {
			for moreRBSPData(br) {
				r.readBits(1) // sps_extension_data_flag
			}
		}
	}

	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not parse SPS")
	}
	if err := readRBSPTrailingBits(br); err != nil {
		return nil, err
	}
	return s, nil
}
