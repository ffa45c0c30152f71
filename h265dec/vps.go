/*
DESCRIPTION
  vps.go provides parsing of the video parameter set.

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

// VPS describes a video parameter set as defined by section 7.3.2.1 in the
// specifications. For semantics see section 7.4.3.1.
type VPS struct {
	// vps_video_parameter_set_id, identifies the VPS for reference by other
	// syntax elements.
	ID uint8

	VPSBaseLayerInternalFlag  bool
	VPSBaseLayerAvailableFlag bool

	// vps_max_layers_minus1 plus 1 specifies the maximum allowed number of
	// layers in each CVS referring to the VPS.
	MaxLayersMinus1 uint8

	// vps_max_sub_layers_minus1 plus 1 specifies the maximum number of
	// temporal sub-layers; in the range 0 to 6.
	MaxSubLayersMinus1 uint8

	// vps_temporal_id_nesting_flag, specifies whether inter prediction is
	// additionally restricted.
	TemporalIDNestingFlag bool

	// The profile_tier_level structure specified in section 7.3.3.
	ProfileTierLevel *ProfileTierLevel

	// vps_sub_layer_ordering_info_present_flag and the per-sub-layer DPB
	// sizing fields; when the flag is false only the entry for
	// vps_max_sub_layers_minus1 is coded and applies to all sub-layers.
	SubLayerOrderingInfoPresentFlag bool
	MaxDecPicBufferingMinus1        []uint64
	MaxNumReorderPics               []uint64
	MaxLatencyIncreasePlus1         []uint64

	// vps_max_layer_id and the layer set inclusion flags,
	// layer_id_included_flag[i][j] for layer set i.
	MaxLayerID           uint8
	NumLayerSetsMinus1   uint64
	LayerIDIncludedFlag  [][]bool

	// vps_timing_info_present_flag and its dependent fields.
	TimingInfoPresentFlag       bool
	NumUnitsInTick              uint32
	TimeScale                   uint32
	PocProportionalToTimingFlag bool
	NumTicksPocDiffOneMinus1    uint64

	// vps_num_hrd_parameters entries, each an hrd_layer_set_idx with a
	// cprms_present_flag (inferred 1 for the first) and HRD parameters.
	HrdLayerSetIdx   []uint64
	CprmsPresentFlag []bool
	HRDParameters    []*HRDParameters

	// vps_extension_flag; extension payload bits are not decoded.
	ExtensionFlag bool
}

// Framerate returns vps_time_scale / vps_num_units_in_tick when timing info
// is present, and 0 otherwise.
func (v *VPS) Framerate() float64 {
	if !v.TimingInfoPresentFlag || v.NumUnitsInTick == 0 {
		return 0
	}
	return float64(v.TimeScale) / float64(v.NumUnitsInTick)
}

// NewVPS parses a video parameter set RBSP from br following the syntax
// structure specified in section 7.3.2.1, and returns as a new VPS.
func NewVPS(br *bits.BitReader) (*VPS, error) {
	v := &VPS{}
	r := newFieldReader(br)

	v.ID = uint8(r.readBits(4))
	v.VPSBaseLayerInternalFlag = r.readFlag()
	v.VPSBaseLayerAvailableFlag = r.readFlag()
	v.MaxLayersMinus1 = uint8(r.readBits(6))
	v.MaxSubLayersMinus1 = uint8(r.readBits(3))
	v.TemporalIDNestingFlag = r.readFlag()
	r.readBits(16) // vps_reserved_0xffff_16bits
	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not read VPS header fields")
	}
	if err := checkRange("vps_max_sub_layers_minus1", int64(v.MaxSubLayersMinus1), 0, 6); err != nil {
		return nil, err
	}

	var err error
	v.ProfileTierLevel, err = NewProfileTierLevel(br, true, int(v.MaxSubLayersMinus1))
	if err != nil {
		return nil, errors.Wrap(err, "could not parse profile_tier_level")
	}

	v.SubLayerOrderingInfoPresentFlag = r.readFlag()
	v.MaxDecPicBufferingMinus1 = make([]uint64, v.MaxSubLayersMinus1+1)
	v.MaxNumReorderPics = make([]uint64, v.MaxSubLayersMinus1+1)
	v.MaxLatencyIncreasePlus1 = make([]uint64, v.MaxSubLayersMinus1+1)
	start := int(v.MaxSubLayersMinus1)
	if v.SubLayerOrderingInfoPresentFlag {
		start = 0
	}
	for i := start; i <= int(v.MaxSubLayersMinus1); i++ {
		v.MaxDecPicBufferingMinus1[i] = r.readUe()
		v.MaxNumReorderPics[i] = r.readUe()
		v.MaxLatencyIncreasePlus1[i] = r.readUe()
	}

	v.MaxLayerID = uint8(r.readBits(6))
	v.NumLayerSetsMinus1 = r.readUe()
	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not read layer set fields")
	}
	if err := checkRange("vps_num_layer_sets_minus1", int64(v.NumLayerSetsMinus1), 0, 1023); err != nil {
		return nil, err
	}
	for i := 1; i <= int(v.NumLayerSetsMinus1); i++ {
		var included []bool
		for j := 0; j <= int(v.MaxLayerID); j++ {
			included = append(included, r.readFlag())
		}
		v.LayerIDIncludedFlag = append(v.LayerIDIncludedFlag, included)
	}

	v.TimingInfoPresentFlag = r.readFlag()
	if v.TimingInfoPresentFlag {
		v.NumUnitsInTick = uint32(r.readBits(32))
		v.TimeScale = uint32(r.readBits(32))
		v.PocProportionalToTimingFlag = r.readFlag()
		if v.PocProportionalToTimingFlag {
			v.NumTicksPocDiffOneMinus1 = r.readUe()
		}

		numHrd := r.readUe()
		if r.err() != nil {
			return nil, errors.Wrap(r.err(), "could not read vps_num_hrd_parameters")
		}
		if err := checkRange("vps_num_hrd_parameters", int64(numHrd), 0, int64(v.NumLayerSetsMinus1)+1); err != nil {
			return nil, err
		}
		for i := 0; i < int(numHrd); i++ {
			v.HrdLayerSetIdx = append(v.HrdLayerSetIdx, r.readUe())
			cprms := true
			if i > 0 {
				cprms = r.readFlag()
			}
			v.CprmsPresentFlag = append(v.CprmsPresentFlag, cprms)
			if r.err() != nil {
				return nil, errors.Wrap(r.err(), "could not read hrd_layer_set_idx")
			}
			hrd, err := NewHRDParameters(br, cprms, int(v.MaxSubLayersMinus1))
			if err != nil {
				return nil, errors.Wrap(err, "could not parse hrd_parameters")
			}
			v.HRDParameters = append(v.HRDParameters, hrd)
		}
	}

	v.ExtensionFlag = r.readFlag()
	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not parse VPS")
	}
	if v.ExtensionFlag {
		for moreRBSPData(br) {
			r.readBits(1) // vps_extension_data_flag
		}
	}
	if err := readRBSPTrailingBits(br); err != nil {
		return nil, err
	}
	return v, nil
}
