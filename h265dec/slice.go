/*
DESCRIPTION
  slice.go provides parsing of the slice segment header and its nested
  ref_pic_lists_modification and pred_weight_table structures.

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

// Slice types from Table 7-7.
const (
	SliceTypeB = 0
	SliceTypeP = 1
	SliceTypeI = 2
)

// RefPicListsModification describes a ref_pic_lists_modification syntax
// structure as defined by section 7.3.6.2 in the specifications. Entry
// fields are sized num_ref_idx_lX_active_minus1 + 1 and coded with
// Ceil(Log2(NumPicTotalCurr)) bits each.
type RefPicListsModification struct {
	RefPicListModificationFlagL0 bool
	ListEntryL0                  []uint64
	RefPicListModificationFlagL1 bool
	ListEntryL1                  []uint64
}

// newRefPicListsModification parses a ref_pic_lists_modification structure
// following section 7.3.6.2.
func newRefPicListsModification(r *fieldReader, sliceType uint64, numRefIdxL0, numRefIdxL1, numPicTotalCurr int) *RefPicListsModification {
	m := &RefPicListsModification{}
	n := ceilLog2(numPicTotalCurr)

	m.RefPicListModificationFlagL0 = r.readFlag()
	if m.RefPicListModificationFlagL0 {
		for i := 0; i <= numRefIdxL0; i++ {
			m.ListEntryL0 = append(m.ListEntryL0, r.readBits(n))
		}
	}
	if sliceType == SliceTypeB {
		m.RefPicListModificationFlagL1 = r.readFlag()
		if m.RefPicListModificationFlagL1 {
			for i := 0; i <= numRefIdxL1; i++ {
				m.ListEntryL1 = append(m.ListEntryL1, r.readBits(n))
			}
		}
	}
	return m
}

// PredWeightTable describes a pred_weight_table syntax structure as defined
// by section 7.3.6.3 in the specifications.
type PredWeightTable struct {
	// luma_log2_weight_denom, in the range 0 to 7.
	LumaLog2WeightDenom uint64

	// delta_chroma_log2_weight_denom, present when ChromaArrayType != 0.
	DeltaChromaLog2WeightDenom int64

	LumaWeightL0Flag   []bool
	ChromaWeightL0Flag []bool
	DeltaLumaWeightL0  []int64
	LumaOffsetL0       []int64
	DeltaChromaWeightL0 [][2]int64
	DeltaChromaOffsetL0 [][2]int64

	LumaWeightL1Flag   []bool
	ChromaWeightL1Flag []bool
	DeltaLumaWeightL1  []int64
	LumaOffsetL1       []int64
	DeltaChromaWeightL1 [][2]int64
	DeltaChromaOffsetL1 [][2]int64
}

// parseWeights reads one direction of the weight table into the given
// slices.
func parseWeights(r *fieldReader, n int, chroma bool) (lumaFlag, chromaFlag []bool, deltaLuma, lumaOff []int64, deltaChromaW, deltaChromaO [][2]int64) {
	for i := 0; i <= n; i++ {
		lumaFlag = append(lumaFlag, r.readFlag())
	}
	if chroma {
		for i := 0; i <= n; i++ {
			chromaFlag = append(chromaFlag, r.readFlag())
		}
	}
	for i := 0; i <= n; i++ {
		var dlw, lo int64
		if lumaFlag[i] {
			dlw = r.readSe()
			lo = r.readSe()
		}
		deltaLuma = append(deltaLuma, dlw)
		lumaOff = append(lumaOff, lo)

		var dcw, dco [2]int64
		if chroma && chromaFlag[i] {
			for j := 0; j < 2; j++ {
				dcw[j] = r.readSe()
				dco[j] = r.readSe()
			}
		}
		deltaChromaW = append(deltaChromaW, dcw)
		deltaChromaO = append(deltaChromaO, dco)
	}
	return
}

// newPredWeightTable parses a pred_weight_table structure following section
// 7.3.6.3.
func newPredWeightTable(r *fieldReader, sliceType uint64, numRefIdxL0, numRefIdxL1 int, chromaArrayType uint64) (*PredWeightTable, error) {
	t := &PredWeightTable{}
	chroma := chromaArrayType != 0

	t.LumaLog2WeightDenom = r.readUe()
	if r.err() == nil {
		if err := checkRange("luma_log2_weight_denom", int64(t.LumaLog2WeightDenom), 0, 7); err != nil {
			return nil, err
		}
	}
	if chroma {
		t.DeltaChromaLog2WeightDenom = r.readSe()
	}

	t.LumaWeightL0Flag, t.ChromaWeightL0Flag, t.DeltaLumaWeightL0, t.LumaOffsetL0, t.DeltaChromaWeightL0, t.DeltaChromaOffsetL0 = parseWeights(r, numRefIdxL0, chroma)
	if sliceType == SliceTypeB {
		t.LumaWeightL1Flag, t.ChromaWeightL1Flag, t.DeltaLumaWeightL1, t.LumaOffsetL1, t.DeltaChromaWeightL1, t.DeltaChromaOffsetL1 = parseWeights(r, numRefIdxL1, chroma)
	}
	return t, nil
}

// SliceSegmentHeader describes a slice segment header as defined by section
// 7.3.6.1 in the specifications. For semantics see section 7.4.7.1. The
// header borrows the referenced PPS and SPS from the parser state during the
// parse only; references are resolved by id, not retained.
type SliceSegmentHeader struct {
	// The NAL unit type of the containing NAL unit; conditions much of the
	// header syntax.
	NALType uint8

	FirstSliceSegmentInPicFlag bool

	// no_output_of_prior_pics_flag, present for IRAP NAL unit types.
	NoOutputOfPriorPicsFlag bool

	// slice_pic_parameter_set_id, in the range 0 to 63.
	PPSID uint64

	// dependent_slice_segment_flag and slice_segment_address. A dependent
	// slice segment inherits the remaining fields from the preceding
	// independent segment; they are left zero here.
	DependentSliceSegmentFlag bool
	SliceSegmentAddress       uint64

	SliceReservedFlag []bool

	// slice_type, in the range 0 to 2 (B, P, I).
	SliceType uint64

	PicOutputFlag bool
	ColourPlaneID uint8

	// slice_pic_order_cnt_lsb, present for non-IDR NAL unit types.
	SlicePicOrderCntLsb uint64

	// Short-term RPS selection: either an index into the SPS vector or an
	// inline set parsed at stRpsIdx == num_short_term_ref_pic_sets.
	ShortTermRefPicSetSpsFlag bool
	ShortTermRefPicSet        *ShortTermRPS
	ShortTermRefPicSetIdx     uint64

	// Long-term reference picture fields.
	NumLongTermSps         uint64
	NumLongTermPics        uint64
	LtIdxSps               []uint64
	PocLsbLt               []uint64
	UsedByCurrPicLtFlag    []bool
	DeltaPocMsbPresentFlag []bool
	DeltaPocMsbCycleLt     []uint64

	TemporalMvpEnabledFlag bool

	SaoLumaFlag   bool
	SaoChromaFlag bool

	// Reference index counts; defaulted from the PPS when the override flag
	// is not set.
	NumRefIdxActiveOverrideFlag bool
	NumRefIdxL0ActiveMinus1     uint64
	NumRefIdxL1ActiveMinus1     uint64

	RefPicListsModification *RefPicListsModification

	MvdL1ZeroFlag bool
	CabacInitFlag bool

	CollocatedFromL0Flag bool
	CollocatedRefIdx     uint64

	PredWeightTable *PredWeightTable

	FiveMinusMaxNumMergeCand uint64
	UseIntegerMvFlag         bool

	// slice_qp_delta and the optional per-slice chroma QP offsets.
	SliceQpDelta     int64
	SliceCbQpOffset  int64
	SliceCrQpOffset  int64
	SliceActYQpOffset  int64
	SliceActCbQpOffset int64
	SliceActCrQpOffset int64

	CuChromaQpOffsetEnabledFlag bool

	DeblockingFilterOverrideFlag      bool
	SliceDeblockingFilterDisabledFlag bool
	SliceBetaOffsetDiv2               int64
	SliceTcOffsetDiv2                 int64

	SliceLoopFilterAcrossSlicesEnabledFlag bool

	// Entry point offsets for tiles or wavefront parallel processing.
	NumEntryPointOffsets uint64
	OffsetLenMinus1      uint64
	EntryPointOffsetMinus1 []uint64

	// slice_segment_header_extension_data_byte values.
	ExtensionDataBytes []byte

	// NumPicTotalCurr as derived by section 7.4.7.2.
	NumPicTotalCurr int
}

// NewSliceSegmentHeader parses a slice segment header RBSP from br following
// the syntax structure specified in section 7.3.6.1, and returns as a new
// SliceSegmentHeader. The referenced PPS, and transitively SPS, are resolved
// through state; a MissingParamSetError is returned if either is absent.
func NewSliceSegmentHeader(br *bits.BitReader, nalType uint8, state *ParserState) (*SliceSegmentHeader, error) {
	h := &SliceSegmentHeader{NALType: nalType, CollocatedFromL0Flag: true}
	r := newFieldReader(br)

	h.FirstSliceSegmentInPicFlag = r.readFlag()
	if IsIRAP(nalType) {
		h.NoOutputOfPriorPicsFlag = r.readFlag()
	}

	h.PPSID = r.readUe()
	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not read slice_pic_parameter_set_id")
	}
	if err := checkRange("slice_pic_parameter_set_id", int64(h.PPSID), 0, 63); err != nil {
		return nil, err
	}

	pps := state.GetPPS(h.PPSID)
	if pps == nil {
		return nil, MissingParamSetError{Kind: "PPS", ID: h.PPSID}
	}
	sps := state.GetSPS(pps.SPSID)
	if sps == nil {
		return nil, MissingParamSetError{Kind: "SPS", ID: pps.SPSID}
	}

	if !h.FirstSliceSegmentInPicFlag {
		if pps.DependentSliceSegmentsEnabledFlag {
			h.DependentSliceSegmentFlag = r.readFlag()
		}
		h.SliceSegmentAddress = r.readBits(ceilLog2(sps.PicSizeInCtbsY()))
	}

	if !h.DependentSliceSegmentFlag {
		if err := h.parseIndependent(r, br, pps, sps); err != nil {
			return nil, err
		}
	}

	if pps.TilesEnabledFlag || pps.EntropyCodingSyncEnabledFlag {
		h.NumEntryPointOffsets = r.readUe()
		if h.NumEntryPointOffsets > 0 {
			h.OffsetLenMinus1 = r.readUe()
			if r.err() != nil {
				return nil, errors.Wrap(r.err(), "could not read offset_len_minus1")
			}
			if err := checkRange("offset_len_minus1", int64(h.OffsetLenMinus1), 0, 31); err != nil {
				return nil, err
			}
			for i := 0; i < int(h.NumEntryPointOffsets); i++ {
				h.EntryPointOffsetMinus1 = append(h.EntryPointOffsetMinus1, r.readBits(int(h.OffsetLenMinus1)+1))
			}
		}
	}

	if pps.SliceSegmentHeaderExtensionPresentFlag {
		extLen := r.readUe()
		if r.err() != nil {
			return nil, errors.Wrap(r.err(), "could not read slice_segment_header_extension_length")
		}
		if err := checkRange("slice_segment_header_extension_length", int64(extLen), 0, 256); err != nil {
			return nil, err
		}
		for i := 0; i < int(extLen); i++ {
			h.ExtensionDataBytes = append(h.ExtensionDataBytes, byte(r.readBits(8)))
		}
	}

	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not parse slice segment header")
	}

	// byte_alignment(): a 1 bit then zero bits to the boundary precede the
	// slice segment data.
	b, err := br.ReadBits(1)
	if err != nil {
		return nil, ErrUnexpectedEnd
	}
	if b != 1 {
		return nil, ErrRBSPTrailingBits
	}
	for !br.ByteAligned() {
		b, err = br.ReadBits(1)
		if err != nil {
			return nil, ErrUnexpectedEnd
		}
		if b != 0 {
			return nil, ErrRBSPTrailingBits
		}
	}
	return h, nil
}

// parseIndependent reads the fields present only for independent slice
// segments.
func (h *SliceSegmentHeader) parseIndependent(r *fieldReader, br *bits.BitReader, pps *PPS, sps *SPS) error {
	for i := 0; i < int(pps.NumExtraSliceHeaderBits); i++ {
		h.SliceReservedFlag = append(h.SliceReservedFlag, r.readFlag())
	}

	h.SliceType = r.readUe()
	if r.err() != nil {
		return errors.Wrap(r.err(), "could not read slice_type")
	}
	if err := checkRange("slice_type", int64(h.SliceType), 0, 2); err != nil {
		return err
	}

	if pps.OutputFlagPresentFlag {
		h.PicOutputFlag = r.readFlag()
	}
	if sps.SeparateColourPlaneFlag {
		h.ColourPlaneID = uint8(r.readBits(2))
	}

	var currRps *ShortTermRPS
	if !IsIDR(h.NALType) {
		h.SlicePicOrderCntLsb = r.readBits(int(sps.Log2MaxPicOrderCntLsbMinus4) + 4)

		h.ShortTermRefPicSetSpsFlag = r.readFlag()
		if !h.ShortTermRefPicSetSpsFlag {
			n := len(sps.ShortTermRefPicSets)
			rps, err := NewShortTermRPS(br, n, n, sps.ShortTermRefPicSets, sps.MaxNumPics())
			if err != nil {
				return errors.Wrap(err, "could not parse slice st_ref_pic_set")
			}
			h.ShortTermRefPicSet = rps
			currRps = rps
		} else if len(sps.ShortTermRefPicSets) > 1 {
			h.ShortTermRefPicSetIdx = r.readBits(ceilLog2(len(sps.ShortTermRefPicSets)))
		}
		if currRps == nil && int(h.ShortTermRefPicSetIdx) < len(sps.ShortTermRefPicSets) {
			currRps = sps.ShortTermRefPicSets[h.ShortTermRefPicSetIdx]
		}

		if sps.LongTermRefPicsPresentFlag {
			if len(sps.LtRefPicPocLsbSps) > 0 {
				h.NumLongTermSps = r.readUe()
				if r.err() == nil {
					if err := checkRange("num_long_term_sps", int64(h.NumLongTermSps), 0, int64(len(sps.LtRefPicPocLsbSps))); err != nil {
						return err
					}
				}
			}
			h.NumLongTermPics = r.readUe()
			if r.err() != nil {
				return errors.Wrap(r.err(), "could not read long-term picture counts")
			}

			for i := 0; i < int(h.NumLongTermSps+h.NumLongTermPics); i++ {
				var idx, poc uint64
				var used bool
				if i < int(h.NumLongTermSps) {
					if len(sps.LtRefPicPocLsbSps) > 1 {
						idx = r.readBits(ceilLog2(len(sps.LtRefPicPocLsbSps)))
					}
					if int(idx) < len(sps.UsedByCurrPicLtSpsFlag) {
						used = sps.UsedByCurrPicLtSpsFlag[idx]
					}
				} else {
					poc = r.readBits(int(sps.Log2MaxPicOrderCntLsbMinus4) + 4)
					used = r.readFlag()
				}
				h.LtIdxSps = append(h.LtIdxSps, idx)
				h.PocLsbLt = append(h.PocLsbLt, poc)
				h.UsedByCurrPicLtFlag = append(h.UsedByCurrPicLtFlag, used)

				msbPresent := r.readFlag()
				h.DeltaPocMsbPresentFlag = append(h.DeltaPocMsbPresentFlag, msbPresent)
				var cycle uint64
				if msbPresent {
					cycle = r.readUe()
				}
				h.DeltaPocMsbCycleLt = append(h.DeltaPocMsbCycleLt, cycle)
			}
		}

		if sps.TemporalMvpEnabledFlag {
			h.TemporalMvpEnabledFlag = r.readFlag()
		}
	}

	h.NumPicTotalCurr = h.deriveNumPicTotalCurr(currRps, pps)

	if sps.SampleAdaptiveOffsetEnabledFlag {
		h.SaoLumaFlag = r.readFlag()
		if sps.ChromaArrayType() != 0 {
			h.SaoChromaFlag = r.readFlag()
		}
	}

	if h.SliceType == SliceTypeP || h.SliceType == SliceTypeB {
		if err := h.parseInterFields(r, br, pps, sps); err != nil {
			return err
		}
	}

	h.SliceQpDelta = r.readSe()
	if r.err() != nil {
		return errors.Wrap(r.err(), "could not read slice_qp_delta")
	}
	// SliceQpY must lie in [-QpBdOffsetY, 51], equation 7-54.
	qpy := 26 + pps.InitQpMinus26 + h.SliceQpDelta
	if err := checkRange("slice_qp_delta (SliceQpY)", qpy, -6*int64(sps.BitDepthLumaMinus8), 51); err != nil {
		return err
	}

	if pps.SliceChromaQpOffsetsPresentFlag {
		h.SliceCbQpOffset = r.readSe()
		h.SliceCrQpOffset = r.readSe()
		if r.err() == nil {
			if err := checkRange("slice_cb_qp_offset", h.SliceCbQpOffset, -12, 12); err != nil {
				return err
			}
			if err := checkRange("slice_cr_qp_offset", h.SliceCrQpOffset, -12, 12); err != nil {
				return err
			}
		}
	}
	if pps.SCCExtension != nil && pps.SCCExtension.SliceActQpOffsetsPresentFlag {
		h.SliceActYQpOffset = r.readSe()
		h.SliceActCbQpOffset = r.readSe()
		h.SliceActCrQpOffset = r.readSe()
	}
	if pps.RangeExtension != nil && pps.RangeExtension.ChromaQpOffsetListEnabledFlag {
		h.CuChromaQpOffsetEnabledFlag = r.readFlag()
	}

	if pps.DeblockingFilterOverrideEnabledFlag {
		h.DeblockingFilterOverrideFlag = r.readFlag()
	}
	if h.DeblockingFilterOverrideFlag {
		h.SliceDeblockingFilterDisabledFlag = r.readFlag()
		if !h.SliceDeblockingFilterDisabledFlag {
			h.SliceBetaOffsetDiv2 = r.readSe()
			h.SliceTcOffsetDiv2 = r.readSe()
			if r.err() == nil {
				if err := checkRange("slice_beta_offset_div2", h.SliceBetaOffsetDiv2, -6, 6); err != nil {
					return err
				}
				if err := checkRange("slice_tc_offset_div2", h.SliceTcOffsetDiv2, -6, 6); err != nil {
					return err
				}
			}
		}
	} else {
		h.SliceDeblockingFilterDisabledFlag = pps.DeblockingFilterDisabledFlag
	}

	if pps.LoopFilterAcrossSlicesEnabledFlag &&
		(h.SaoLumaFlag || h.SaoChromaFlag || !h.SliceDeblockingFilterDisabledFlag) {
		h.SliceLoopFilterAcrossSlicesEnabledFlag = r.readFlag()
	}
	return r.err()
}

// parseInterFields reads the fields present only for P and B slices.
func (h *SliceSegmentHeader) parseInterFields(r *fieldReader, br *bits.BitReader, pps *PPS, sps *SPS) error {
	h.NumRefIdxL0ActiveMinus1 = pps.NumRefIdxL0DefaultActiveMinus1
	h.NumRefIdxL1ActiveMinus1 = pps.NumRefIdxL1DefaultActiveMinus1

	h.NumRefIdxActiveOverrideFlag = r.readFlag()
	if h.NumRefIdxActiveOverrideFlag {
		h.NumRefIdxL0ActiveMinus1 = r.readUe()
		if h.SliceType == SliceTypeB {
			h.NumRefIdxL1ActiveMinus1 = r.readUe()
		}
		if r.err() != nil {
			return errors.Wrap(r.err(), "could not read reference counts")
		}
		if err := checkRange("num_ref_idx_l0_active_minus1", int64(h.NumRefIdxL0ActiveMinus1), 0, 14); err != nil {
			return err
		}
		if err := checkRange("num_ref_idx_l1_active_minus1", int64(h.NumRefIdxL1ActiveMinus1), 0, 14); err != nil {
			return err
		}
	}

	if pps.ListsModificationPresentFlag && h.NumPicTotalCurr > 1 {
		h.RefPicListsModification = newRefPicListsModification(r, h.SliceType,
			int(h.NumRefIdxL0ActiveMinus1), int(h.NumRefIdxL1ActiveMinus1), h.NumPicTotalCurr)
	}

	if h.SliceType == SliceTypeB {
		h.MvdL1ZeroFlag = r.readFlag()
	}
	if pps.CabacInitPresentFlag {
		h.CabacInitFlag = r.readFlag()
	}

	if h.TemporalMvpEnabledFlag {
		if h.SliceType == SliceTypeB {
			h.CollocatedFromL0Flag = r.readFlag()
		}
		if (h.CollocatedFromL0Flag && h.NumRefIdxL0ActiveMinus1 > 0) ||
			(!h.CollocatedFromL0Flag && h.NumRefIdxL1ActiveMinus1 > 0) {
			h.CollocatedRefIdx = r.readUe()
		}
	}

	if (pps.WeightedPredFlag && h.SliceType == SliceTypeP) ||
		(pps.WeightedBipredFlag && h.SliceType == SliceTypeB) {
		t, err := newPredWeightTable(r, h.SliceType,
			int(h.NumRefIdxL0ActiveMinus1), int(h.NumRefIdxL1ActiveMinus1), sps.ChromaArrayType())
		if err != nil {
			return err
		}
		h.PredWeightTable = t
	}

	h.FiveMinusMaxNumMergeCand = r.readUe()
	if r.err() != nil {
		return errors.Wrap(r.err(), "could not read five_minus_max_num_merge_cand")
	}
	if err := checkRange("five_minus_max_num_merge_cand", int64(h.FiveMinusMaxNumMergeCand), 0, 4); err != nil {
		return err
	}

	if sps.SCCExtension != nil && sps.SCCExtension.MotionVectorResolutionControlIDC == 2 {
		h.UseIntegerMvFlag = r.readFlag()
	}
	return r.err()
}

// deriveNumPicTotalCurr computes NumPicTotalCurr per section 7.4.7.2.
func (h *SliceSegmentHeader) deriveNumPicTotalCurr(currRps *ShortTermRPS, pps *PPS) int {
	n := 0
	if currRps != nil {
		for i := 0; i < currRps.NumNegativePics; i++ {
			if currRps.UsedByCurrPicS0[i] {
				n++
			}
		}
		for i := 0; i < currRps.NumPositivePics; i++ {
			if currRps.UsedByCurrPicS1[i] {
				n++
			}
		}
	}
	for _, used := range h.UsedByCurrPicLtFlag {
		if used {
			n++
		}
	}
	if pps.SCCExtension != nil && pps.SCCExtension.CurrPicRefEnabledFlag {
		n++
	}
	return n
}

// SliceSegmentLayer wraps a slice segment header together with the
// entropy-coded slice segment data, which is not decoded.
type SliceSegmentLayer struct {
	Header *SliceSegmentHeader

	// Data holds the remaining RBSP bytes following the slice segment
	// header byte alignment.
	Data []byte
}

// NewSliceSegmentLayer parses a slice_segment_layer_rbsp from rbsp for the
// given NAL unit type, retaining the undecoded slice data.
func NewSliceSegmentLayer(rbsp []byte, nalType uint8, state *ParserState) (*SliceSegmentLayer, error) {
	br := bits.NewBitReader(rbsp)
	h, err := NewSliceSegmentHeader(br, nalType, state)
	if err != nil {
		return nil, err
	}
	l := &SliceSegmentLayer{Header: h}
	if n := br.BitsRead() / 8; n < len(rbsp) {
		l.Data = rbsp[n:]
	}
	return l, nil
}
