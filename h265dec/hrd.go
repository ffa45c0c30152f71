/*
DESCRIPTION
  hrd.go provides parsing of the hrd_parameters and sub_layer_hrd_parameters
  syntax structures.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package h265dec

import (
	"github.com/pkg/errors"

	"github.com/ausocean/hevc/h265dec/bits"
)

// SubLayerHRDParameters describes a sub_layer_hrd_parameters syntax
// structure as defined by section E.2.3 in the specifications. Each slice of
// fields is sized CpbCnt = cpb_cnt_minus1[i] + 1 of the owning layer.
type SubLayerHRDParameters struct {
	// bit_rate_value_minus1[j], specifies (with bit_rate_scale) the maximum
	// input bit rate for the j-th CPB.
	BitRateValueMinus1 []uint64

	// cpb_size_value_minus1[j], specifies (with cpb_size_scale) the CPB size
	// for the j-th CPB when the CPB operates at the access unit level.
	CPBSizeValueMinus1 []uint64

	// cpb_size_du_value_minus1[j] and bit_rate_du_value_minus1[j], present
	// when sub_pic_hrd_params_present_flag is set.
	CPBSizeDuValueMinus1 []uint64
	BitRateDuValueMinus1 []uint64

	// cbr_flag[j], false specifies intermittent bit rate mode, true constant
	// bit rate mode.
	CBRFlag []bool
}

// newSubLayerHRDParameters parses a sub_layer_hrd_parameters structure with
// cpbCnt entries following section E.2.3.
func newSubLayerHRDParameters(r *fieldReader, cpbCnt int, subPicHRDParams bool) *SubLayerHRDParameters {
	h := &SubLayerHRDParameters{}
	for j := 0; j < cpbCnt; j++ {
		h.BitRateValueMinus1 = append(h.BitRateValueMinus1, r.readUe())
		h.CPBSizeValueMinus1 = append(h.CPBSizeValueMinus1, r.readUe())
		if subPicHRDParams {
			h.CPBSizeDuValueMinus1 = append(h.CPBSizeDuValueMinus1, r.readUe())
			h.BitRateDuValueMinus1 = append(h.BitRateDuValueMinus1, r.readUe())
		}
		h.CBRFlag = append(h.CBRFlag, r.readFlag())
	}
	return h
}

// HRDParameters describes a hrd_parameters syntax structure as defined by
// section E.2.2 in the specifications. Sub-layer slices are sized
// maxNumSubLayersMinus1 + 1.
type HRDParameters struct {
	// nal_hrd_parameters_present_flag and vcl_hrd_parameters_present_flag;
	// present only when commonInfPresentFlag was set by the caller.
	NALHRDParametersPresentFlag bool
	VCLHRDParametersPresentFlag bool

	// sub_pic_hrd_params_present_flag and its dependent fields.
	SubPicHRDParamsPresentFlag       bool
	TickDivisorMinus2                uint8
	DuCPBRemovalDelayIncrementLengthMinus1 uint8
	SubPicCPBParamsInPicTimingSEIFlag bool
	DPBOutputDelayDuLengthMinus1     uint8

	// bit_rate_scale and cpb_size_scale, scale factors for the sub-layer
	// rate and size values.
	BitRateScale uint8
	CPBSizeScale uint8

	// cpb_size_du_scale, present when sub_pic_hrd_params_present_flag.
	CPBSizeDuScale uint8

	InitialCPBRemovalDelayLengthMinus1 uint8
	AuCPBRemovalDelayLengthMinus1      uint8
	DPBOutputDelayLengthMinus1         uint8

	// Per sub-layer fields, sized maxNumSubLayersMinus1 + 1.
	FixedPicRateGeneralFlag   []bool
	FixedPicRateWithinCVSFlag []bool
	ElementalDurationInTcMinus1 []uint64
	LowDelayHRDFlag           []bool
	CPBCntMinus1              []uint64

	// Per sub-layer HRD blocks; entries are nil when the corresponding
	// present flag was not set.
	NALSubLayerHRD []*SubLayerHRDParameters
	VCLSubLayerHRD []*SubLayerHRDParameters
}

// NewHRDParameters parses a hrd_parameters syntax structure from br
// following the structure specified in section E.2.2, and returns as a new
// HRDParameters. commonInfPresentFlag and maxNumSubLayersMinus1 are supplied
// by the containing VUI or VPS.
func NewHRDParameters(br *bits.BitReader, commonInfPresentFlag bool, maxNumSubLayersMinus1 int) (*HRDParameters, error) {
	h := &HRDParameters{}
	r := newFieldReader(br)

	if commonInfPresentFlag {
		h.NALHRDParametersPresentFlag = r.readFlag()
		h.VCLHRDParametersPresentFlag = r.readFlag()
		if h.NALHRDParametersPresentFlag || h.VCLHRDParametersPresentFlag {
			h.SubPicHRDParamsPresentFlag = r.readFlag()
			if h.SubPicHRDParamsPresentFlag {
				h.TickDivisorMinus2 = uint8(r.readBits(8))
				h.DuCPBRemovalDelayIncrementLengthMinus1 = uint8(r.readBits(5))
				h.SubPicCPBParamsInPicTimingSEIFlag = r.readFlag()
				h.DPBOutputDelayDuLengthMinus1 = uint8(r.readBits(5))
			}
			h.BitRateScale = uint8(r.readBits(4))
			h.CPBSizeScale = uint8(r.readBits(4))
			if h.SubPicHRDParamsPresentFlag {
				h.CPBSizeDuScale = uint8(r.readBits(4))
			}
			h.InitialCPBRemovalDelayLengthMinus1 = uint8(r.readBits(5))
			h.AuCPBRemovalDelayLengthMinus1 = uint8(r.readBits(5))
			h.DPBOutputDelayLengthMinus1 = uint8(r.readBits(5))
		}
	}

	for i := 0; i <= maxNumSubLayersMinus1; i++ {
		fixedGeneral := r.readFlag()
		h.FixedPicRateGeneralFlag = append(h.FixedPicRateGeneralFlag, fixedGeneral)

		fixedWithinCVS := fixedGeneral
		if !fixedGeneral {
			fixedWithinCVS = r.readFlag()
		}
		h.FixedPicRateWithinCVSFlag = append(h.FixedPicRateWithinCVSFlag, fixedWithinCVS)

		var lowDelay bool
		var elemental, cpbCnt uint64
		if fixedWithinCVS {
			elemental = r.readUe()
			if err := checkRange("elemental_duration_in_tc_minus1", int64(elemental), 0, 2047); err != nil {
				return nil, err
			}
		} else {
			lowDelay = r.readFlag()
		}
		h.ElementalDurationInTcMinus1 = append(h.ElementalDurationInTcMinus1, elemental)
		h.LowDelayHRDFlag = append(h.LowDelayHRDFlag, lowDelay)

		if !lowDelay {
			cpbCnt = r.readUe()
			if err := checkRange("cpb_cnt_minus1", int64(cpbCnt), 0, 31); err != nil {
				return nil, err
			}
		}
		h.CPBCntMinus1 = append(h.CPBCntMinus1, cpbCnt)

		var nal, vcl *SubLayerHRDParameters
		if h.NALHRDParametersPresentFlag {
			nal = newSubLayerHRDParameters(r, int(cpbCnt)+1, h.SubPicHRDParamsPresentFlag)
		}
		if h.VCLHRDParametersPresentFlag {
			vcl = newSubLayerHRDParameters(r, int(cpbCnt)+1, h.SubPicHRDParamsPresentFlag)
		}
		h.NALSubLayerHRD = append(h.NALSubLayerHRD, nal)
		h.VCLSubLayerHRD = append(h.VCLSubLayerHRD, vcl)

		if r.err() != nil {
			return nil, errors.Wrap(r.err(), "could not parse hrd_parameters sub-layer")
		}
	}

	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not parse hrd_parameters")
	}
	return h, nil
}
