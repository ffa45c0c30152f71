/*
DESCRIPTION
  pps.go provides parsing of the picture parameter set.

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

// PPS describes a picture parameter set as defined by section 7.3.2.3.1 in
// the specifications. For semantics see section 7.4.3.3.1.
type PPS struct {
	// pps_pic_parameter_set_id, identifies the PPS for reference by the
	// slice segment headers; in the range 0 to 63.
	ID uint64

	// pps_seq_parameter_set_id, the SPS referenced by this PPS; in the range
	// 0 to 15.
	SPSID uint64

	DependentSliceSegmentsEnabledFlag bool
	OutputFlagPresentFlag             bool
	NumExtraSliceHeaderBits           uint8
	SignDataHidingEnabledFlag         bool
	CabacInitPresentFlag              bool

	// num_ref_idx_l0_default_active_minus1 and the l1 counterpart, each in
	// the range 0 to 14.
	NumRefIdxL0DefaultActiveMinus1 uint64
	NumRefIdxL1DefaultActiveMinus1 uint64

	// init_qp_minus26 plus 26 specifies the initial SliceQpY for each slice
	// referring to the PPS, modified by slice_qp_delta.
	InitQpMinus26 int64

	ConstrainedIntraPredFlag bool
	TransformSkipEnabledFlag bool

	// cu_qp_delta_enabled_flag and diff_cu_qp_delta_depth.
	CuQpDeltaEnabledFlag bool
	DiffCuQpDeltaDepth   uint64

	// pps_cb_qp_offset and pps_cr_qp_offset, each in the range -12 to 12.
	CbQpOffset int64
	CrQpOffset int64

	SliceChromaQpOffsetsPresentFlag bool
	WeightedPredFlag                bool
	WeightedBipredFlag              bool
	TransquantBypassEnabledFlag     bool

	// tiles_enabled_flag and its dependent fields; the column and row
	// vectors are present only when uniform_spacing_flag is false.
	TilesEnabledFlag              bool
	EntropyCodingSyncEnabledFlag  bool
	NumTileColumnsMinus1          uint64
	NumTileRowsMinus1             uint64
	UniformSpacingFlag            bool
	ColumnWidthMinus1             []uint64
	RowHeightMinus1               []uint64
	LoopFilterAcrossTilesEnabledFlag bool

	LoopFilterAcrossSlicesEnabledFlag bool

	// deblocking_filter_control_present_flag and its dependent fields.
	DeblockingFilterControlPresentFlag  bool
	DeblockingFilterOverrideEnabledFlag bool
	DeblockingFilterDisabledFlag        bool
	BetaOffsetDiv2                      int64
	TcOffsetDiv2                        int64

	// pps_scaling_list_data_present_flag and the optional scaling list.
	ScalingListDataPresentFlag bool
	ScalingListData            *ScalingListData

	ListsModificationPresentFlag    bool
	Log2ParallelMergeLevelMinus2    uint64
	SliceSegmentHeaderExtensionPresentFlag bool

	// pps_extension_present_flag, the four extension flags plus
	// pps_extension_4bits, and the optional extension structures. The
	// multilayer and 3D extension payloads are not decoded; their presence
	// is recorded and remaining extension bits are skipped.
	ExtensionPresentFlag    bool
	RangeExtensionFlag      bool
	MultilayerExtensionFlag bool
	Ext3DFlag               bool
	SCCExtensionFlag        bool
	Extension4Bits          uint8
	RangeExtension          *PPSRangeExtension
	SCCExtension            *PPSSCCExtension
}

// NewPPS parses a picture parameter set RBSP from br following the syntax
// structure specified in section 7.3.2.3.1, and returns as a new PPS.
func NewPPS(br *bits.BitReader) (*PPS, error) {
	p := &PPS{}
	r := newFieldReader(br)

	p.ID = r.readUe()
	p.SPSID = r.readUe()
	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not read PPS id fields")
	}
	if err := checkRange("pps_pic_parameter_set_id", int64(p.ID), 0, 63); err != nil {
		return nil, err
	}
	if err := checkRange("pps_seq_parameter_set_id", int64(p.SPSID), 0, 15); err != nil {
		return nil, err
	}

	p.DependentSliceSegmentsEnabledFlag = r.readFlag()
	p.OutputFlagPresentFlag = r.readFlag()
	p.NumExtraSliceHeaderBits = uint8(r.readBits(3))
	p.SignDataHidingEnabledFlag = r.readFlag()
	p.CabacInitPresentFlag = r.readFlag()

	p.NumRefIdxL0DefaultActiveMinus1 = r.readUe()
	p.NumRefIdxL1DefaultActiveMinus1 = r.readUe()
	p.InitQpMinus26 = r.readSe()
	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not read reference defaults")
	}
	if err := checkRange("num_ref_idx_l0_default_active_minus1", int64(p.NumRefIdxL0DefaultActiveMinus1), 0, 14); err != nil {
		return nil, err
	}
	if err := checkRange("num_ref_idx_l1_default_active_minus1", int64(p.NumRefIdxL1DefaultActiveMinus1), 0, 14); err != nil {
		return nil, err
	}
	// Lower bound is -(26 + QpBdOffsetY) with QpBdOffsetY at most 36.
	if err := checkRange("init_qp_minus26", p.InitQpMinus26, -62, 25); err != nil {
		return nil, err
	}

	p.ConstrainedIntraPredFlag = r.readFlag()
	p.TransformSkipEnabledFlag = r.readFlag()

	p.CuQpDeltaEnabledFlag = r.readFlag()
	if p.CuQpDeltaEnabledFlag {
		p.DiffCuQpDeltaDepth = r.readUe()
	}

	p.CbQpOffset = r.readSe()
	p.CrQpOffset = r.readSe()
	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not read chroma QP offsets")
	}
	if err := checkRange("pps_cb_qp_offset", p.CbQpOffset, -12, 12); err != nil {
		return nil, err
	}
	if err := checkRange("pps_cr_qp_offset", p.CrQpOffset, -12, 12); err != nil {
		return nil, err
	}
	// log2_diff_max_min_luma_coding_block_size is at most 3, which bounds
	// diff_cu_qp_delta_depth without the SPS.
	if err := checkRange("diff_cu_qp_delta_depth", int64(p.DiffCuQpDeltaDepth), 0, 3); err != nil {
		return nil, err
	}

	p.SliceChromaQpOffsetsPresentFlag = r.readFlag()
	p.WeightedPredFlag = r.readFlag()
	p.WeightedBipredFlag = r.readFlag()
	p.TransquantBypassEnabledFlag = r.readFlag()
	p.TilesEnabledFlag = r.readFlag()
	p.EntropyCodingSyncEnabledFlag = r.readFlag()

	if p.TilesEnabledFlag {
		p.NumTileColumnsMinus1 = r.readUe()
		p.NumTileRowsMinus1 = r.readUe()
		p.UniformSpacingFlag = r.readFlag()
		if r.err() != nil {
			return nil, errors.Wrap(r.err(), "could not read tile counts")
		}
		// PicWidthInCtbsY is not knowable without the SPS; the counts are
		// checked against fixed upper bounds instead.
		if err := checkRange("num_tile_columns_minus1", int64(p.NumTileColumnsMinus1), 0, 441); err != nil {
			return nil, err
		}
		if err := checkRange("num_tile_rows_minus1", int64(p.NumTileRowsMinus1), 0, 440); err != nil {
			return nil, err
		}
		if !p.UniformSpacingFlag {
			for i := 0; i < int(p.NumTileColumnsMinus1); i++ {
				p.ColumnWidthMinus1 = append(p.ColumnWidthMinus1, r.readUe())
			}
			for i := 0; i < int(p.NumTileRowsMinus1); i++ {
				p.RowHeightMinus1 = append(p.RowHeightMinus1, r.readUe())
			}
		}
		p.LoopFilterAcrossTilesEnabledFlag = r.readFlag()
	}

	p.LoopFilterAcrossSlicesEnabledFlag = r.readFlag()

	p.DeblockingFilterControlPresentFlag = r.readFlag()
	if p.DeblockingFilterControlPresentFlag {
		p.DeblockingFilterOverrideEnabledFlag = r.readFlag()
		p.DeblockingFilterDisabledFlag = r.readFlag()
		if !p.DeblockingFilterDisabledFlag {
			p.BetaOffsetDiv2 = r.readSe()
			p.TcOffsetDiv2 = r.readSe()
			if r.err() != nil {
				return nil, errors.Wrap(r.err(), "could not read deblocking offsets")
			}
			if err := checkRange("pps_beta_offset_div2", p.BetaOffsetDiv2, -6, 6); err != nil {
				return nil, err
			}
			if err := checkRange("pps_tc_offset_div2", p.TcOffsetDiv2, -6, 6); err != nil {
				return nil, err
			}
		}
	}

	p.ScalingListDataPresentFlag = r.readFlag()
	if p.ScalingListDataPresentFlag && r.err() == nil {
		var err error
		p.ScalingListData, err = NewScalingListData(br)
		if err != nil {
			return nil, errors.Wrap(err, "could not parse scaling_list_data")
		}
	}

	p.ListsModificationPresentFlag = r.readFlag()
	p.Log2ParallelMergeLevelMinus2 = r.readUe()
	p.SliceSegmentHeaderExtensionPresentFlag = r.readFlag()

	p.ExtensionPresentFlag = r.readFlag()
	if p.ExtensionPresentFlag {
		p.RangeExtensionFlag = r.readFlag()
		p.MultilayerExtensionFlag = r.readFlag()
		p.Ext3DFlag = r.readFlag()
		p.SCCExtensionFlag = r.readFlag()
		p.Extension4Bits = uint8(r.readBits(4))
		if r.err() != nil {
			return nil, errors.Wrap(r.err(), "could not read PPS extension flags")
		}

		if p.RangeExtensionFlag {
			var err error
			p.RangeExtension, err = NewPPSRangeExtension(br, p.TransformSkipEnabledFlag)
			if err != nil {
				return nil, errors.Wrap(err, "could not parse pps_range_extension")
			}
		}
		if p.MultilayerExtensionFlag || p.Ext3DFlag {
			// The multilayer and 3D extension syntax is not decoded; the
			// remaining extension bits also cover any pps_extension_4bits
			// data, so consume up to the trailing bits and finish.
			for moreRBSPData(br) {
				r.readBits(1)
			}
			if r.err() != nil {
				return nil, errors.Wrap(r.err(), "could not skip PPS extension data")
			}
			if err := readRBSPTrailingBits(br); err != nil {
				return nil, err
			}
			return p, nil
		}
		if p.SCCExtensionFlag {
			var err error
			p.SCCExtension, err = NewPPSSCCExtension(br)
			if err != nil {
				return nil, errors.Wrap(err, "could not parse pps_scc_extension")
			}
		}
		if p.Extension4Bits != 0 {
			for moreRBSPData(br) {
				r.readBits(1) // pps_extension_data_flag
			}
		}
	}

	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not parse PPS")
	}
	if err := readRBSPTrailingBits(br); err != nil {
		return nil, err
	}
	return p, nil
}
