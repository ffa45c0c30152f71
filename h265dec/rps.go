/*
DESCRIPTION
  rps.go provides parsing of the st_ref_pic_set syntax structure and the
  derivation of its reference picture set variables.

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

// ShortTermRPS describes a st_ref_pic_set syntax structure as defined by
// section 7.3.7 in the specifications, along with the variables derived from
// it by the process in section 7.4.8. Entries reference earlier entries of
// the same ordered vector by index, never by pointer.
type ShortTermRPS struct {
	// Index of this entry within the SPS's ordered vector, i.e. stRpsIdx.
	Idx int

	// inter_ref_pic_set_prediction_flag, true means this set is predicted
	// from an earlier set in the vector.
	InterRefPicSetPredictionFlag bool

	// delta_idx_minus1 plus 1 specifies the distance back to the reference
	// set; present only when stRpsIdx == num_short_term_ref_pic_sets.
	DeltaIdxMinus1 uint64

	// delta_rps_sign and abs_delta_rps_minus1 together give the POC shift
	// applied to the reference set, deltaRps =
	// (1 - 2*delta_rps_sign) * (abs_delta_rps_minus1 + 1).
	DeltaRpsSign      bool
	AbsDeltaRpsMinus1 uint64

	// used_by_curr_pic_flag[j] and use_delta_flag[j] for
	// j = 0..NumDeltaPocs(RefRpsIdx); use_delta_flag defaults to true when
	// not present.
	UsedByCurrPicFlag []bool
	UseDeltaFlag      []bool

	// Explicit form fields.
	NumNegativePicsField uint64
	NumPositivePicsField uint64
	DeltaPocS0Minus1     []uint64
	UsedByCurrPicS0Flag  []bool
	DeltaPocS1Minus1     []uint64
	UsedByCurrPicS1Flag  []bool

	// Variables derived per section 7.4.8; valid for both forms.
	NumNegativePics int
	NumPositivePics int
	DeltaPocS0      []int32
	UsedByCurrPicS0 []bool
	DeltaPocS1      []int32
	UsedByCurrPicS1 []bool
}

// NumDeltaPocs returns NumNegativePics + NumPositivePics as derived for this
// entry (equation 7-71).
func (s *ShortTermRPS) NumDeltaPocs() int {
	return s.NumNegativePics + s.NumPositivePics
}

// DeltaPoc returns DeltaPocS0[j] for j < NumNegativePics and
// DeltaPocS1[j - NumNegativePics] otherwise.
func (s *ShortTermRPS) DeltaPoc(j int) int32 {
	if j < s.NumNegativePics {
		return s.DeltaPocS0[j]
	}
	return s.DeltaPocS1[j-s.NumNegativePics]
}

// UsedByCurrPic returns the derived used-by-current-picture flag for delta
// POC index j, ordered as DeltaPoc.
func (s *ShortTermRPS) UsedByCurrPic(j int) bool {
	if j < s.NumNegativePics {
		return s.UsedByCurrPicS0[j]
	}
	return s.UsedByCurrPicS1[j-s.NumNegativePics]
}

// NewShortTermRPS parses a st_ref_pic_set syntax structure from br following
// the structure specified in section 7.3.7 and eagerly derives its reference
// picture set variables. stRpsIdx is the index being parsed,
// numShortTermRefPicSets is the SPS's num_short_term_ref_pic_sets, prior is
// the ordered vector of previously parsed entries and maxNumPics bounds the
// picture counts (sps_max_dec_pic_buffering_minus1 of the highest sub-layer).
func NewShortTermRPS(br *bits.BitReader, stRpsIdx, numShortTermRefPicSets int, prior []*ShortTermRPS, maxNumPics int) (*ShortTermRPS, error) {
	s := &ShortTermRPS{Idx: stRpsIdx}
	r := newFieldReader(br)

	if stRpsIdx != 0 {
		s.InterRefPicSetPredictionFlag = r.readFlag()
	}

	if s.InterRefPicSetPredictionFlag {
		if stRpsIdx == numShortTermRefPicSets {
			s.DeltaIdxMinus1 = r.readUe()
		}
		if r.err() != nil {
			return nil, errors.Wrap(r.err(), "could not read delta_idx_minus1")
		}
		if err := checkRange("delta_idx_minus1", int64(s.DeltaIdxMinus1), 0, int64(stRpsIdx-1)); err != nil {
			return nil, err
		}
		refRpsIdx := stRpsIdx - (int(s.DeltaIdxMinus1) + 1)
		ref := prior[refRpsIdx]

		s.DeltaRpsSign = r.readFlag()
		s.AbsDeltaRpsMinus1 = r.readUe()
		if r.err() != nil {
			return nil, errors.Wrap(r.err(), "could not read abs_delta_rps_minus1")
		}
		if err := checkRange("abs_delta_rps_minus1", int64(s.AbsDeltaRpsMinus1), 0, 32767); err != nil {
			return nil, err
		}

		for j := 0; j <= ref.NumDeltaPocs(); j++ {
			used := r.readFlag()
			s.UsedByCurrPicFlag = append(s.UsedByCurrPicFlag, used)
			useDelta := true
			if !used {
				useDelta = r.readFlag()
			}
			s.UseDeltaFlag = append(s.UseDeltaFlag, useDelta)
		}
		if r.err() != nil {
			return nil, errors.Wrap(r.err(), "could not read inter prediction flags")
		}

		s.deriveFromRef(ref)
		return s, nil
	}

	s.NumNegativePicsField = r.readUe()
	s.NumPositivePicsField = r.readUe()
	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not read picture counts")
	}
	if err := checkRange("num_negative_pics", int64(s.NumNegativePicsField), 0, int64(maxNumPics)); err != nil {
		return nil, err
	}
	if err := checkRange("num_positive_pics", int64(s.NumPositivePicsField), 0, int64(maxNumPics)-int64(s.NumNegativePicsField)); err != nil {
		return nil, err
	}

	for i := 0; i < int(s.NumNegativePicsField); i++ {
		s.DeltaPocS0Minus1 = append(s.DeltaPocS0Minus1, r.readUe())
		s.UsedByCurrPicS0Flag = append(s.UsedByCurrPicS0Flag, r.readFlag())
	}
	for i := 0; i < int(s.NumPositivePicsField); i++ {
		s.DeltaPocS1Minus1 = append(s.DeltaPocS1Minus1, r.readUe())
		s.UsedByCurrPicS1Flag = append(s.UsedByCurrPicS1Flag, r.readFlag())
	}
	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not read delta POCs")
	}

	s.deriveExplicit()
	return s, nil
}

// deriveExplicit computes the derived variables for the explicit form using
// equations 7-65 to 7-68: delta POCs accumulate from the coded minus-one
// deltas, negative for S0 and positive for S1.
func (s *ShortTermRPS) deriveExplicit() {
	s.NumNegativePics = int(s.NumNegativePicsField)
	s.NumPositivePics = int(s.NumPositivePicsField)

	poc := int32(0)
	for i := 0; i < s.NumNegativePics; i++ {
		poc -= int32(s.DeltaPocS0Minus1[i]) + 1
		s.DeltaPocS0 = append(s.DeltaPocS0, poc)
		s.UsedByCurrPicS0 = append(s.UsedByCurrPicS0, s.UsedByCurrPicS0Flag[i])
	}
	poc = 0
	for i := 0; i < s.NumPositivePics; i++ {
		poc += int32(s.DeltaPocS1Minus1[i]) + 1
		s.DeltaPocS1 = append(s.DeltaPocS1, poc)
		s.UsedByCurrPicS1 = append(s.UsedByCurrPicS1, s.UsedByCurrPicS1Flag[i])
	}
}

// deriveFromRef computes the derived variables by predictive reconstruction
// from the referenced entry using equations 7-59 to 7-64. The iteration
// orders matter: candidate delta POCs must come out sorted by distance from
// zero, descending from -1 for S0 and ascending from +1 for S1.
func (s *ShortTermRPS) deriveFromRef(ref *ShortTermRPS) {
	deltaRps := int32(s.AbsDeltaRpsMinus1) + 1
	if s.DeltaRpsSign {
		deltaRps = -deltaRps
	}
	nRef := ref.NumDeltaPocs()

	// Negative half (equation 7-61).
	for j := nRef - 1; j >= ref.NumNegativePics; j-- {
		dPoc := ref.DeltaPoc(j) + deltaRps
		if dPoc < 0 && s.UseDeltaFlag[j] {
			s.DeltaPocS0 = append(s.DeltaPocS0, dPoc)
			s.UsedByCurrPicS0 = append(s.UsedByCurrPicS0, s.UsedByCurrPicFlag[j])
		}
	}
	if deltaRps < 0 && s.UseDeltaFlag[nRef] {
		s.DeltaPocS0 = append(s.DeltaPocS0, deltaRps)
		s.UsedByCurrPicS0 = append(s.UsedByCurrPicS0, s.UsedByCurrPicFlag[nRef])
	}
	for j := 0; j < ref.NumNegativePics; j++ {
		dPoc := ref.DeltaPocS0[j] + deltaRps
		if dPoc < 0 && s.UseDeltaFlag[j] {
			s.DeltaPocS0 = append(s.DeltaPocS0, dPoc)
			s.UsedByCurrPicS0 = append(s.UsedByCurrPicS0, s.UsedByCurrPicFlag[j])
		}
	}
	s.NumNegativePics = len(s.DeltaPocS0)

	// Positive half (equation 7-63).
	for j := ref.NumNegativePics - 1; j >= 0; j-- {
		dPoc := ref.DeltaPocS0[j] + deltaRps
		if dPoc > 0 && s.UseDeltaFlag[j] {
			s.DeltaPocS1 = append(s.DeltaPocS1, dPoc)
			s.UsedByCurrPicS1 = append(s.UsedByCurrPicS1, s.UsedByCurrPicFlag[j])
		}
	}
	if deltaRps > 0 && s.UseDeltaFlag[nRef] {
		s.DeltaPocS1 = append(s.DeltaPocS1, deltaRps)
		s.UsedByCurrPicS1 = append(s.UsedByCurrPicS1, s.UsedByCurrPicFlag[nRef])
	}
	for j := ref.NumNegativePics; j < nRef; j++ {
		dPoc := ref.DeltaPoc(j) + deltaRps
		if dPoc > 0 && s.UseDeltaFlag[j] {
			s.DeltaPocS1 = append(s.DeltaPocS1, dPoc)
			s.UsedByCurrPicS1 = append(s.UsedByCurrPicS1, s.UsedByCurrPicFlag[j])
		}
	}
	s.NumPositivePics = len(s.DeltaPocS1)
}
