/*
DESCRIPTION
  rps_test.go provides testing for functionality found in rps.go.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package h265dec

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/hevc/h265dec/bits"
)

// explicitRPS parses an explicit st_ref_pic_set usable as a reference for
// the prediction tests: two negative pictures at POC deltas -1 and -3 and
// one positive at +1.
func explicitRPS(t *testing.T) *ShortTermRPS {
	in := "011" + // ue(v) num_negative_pics = 2
		"010" + // ue(v) num_positive_pics = 1
		"1" + // ue(v) delta_poc_s0_minus1[0] = 0
		"1" + // u(1) used_by_curr_pic_s0_flag[0] = 1
		"010" + // ue(v) delta_poc_s0_minus1[1] = 1
		"0" + // u(1) used_by_curr_pic_s0_flag[1] = 0
		"1" + // ue(v) delta_poc_s1_minus1[0] = 0
		"1" // u(1) used_by_curr_pic_s1_flag[0] = 1
	b, err := binToSlice(in)
	if err != nil {
		t.Fatalf("unexpected binToSlice error: %v", err)
	}
	s, err := NewShortTermRPS(bits.NewBitReader(b), 0, 2, nil, 8)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	return s
}

func TestNewShortTermRPSExplicit(t *testing.T) {
	s := explicitRPS(t)

	if s.NumNegativePics != 2 || s.NumPositivePics != 1 {
		t.Fatalf("unexpected picture counts.\nGot: %d,%d\nWant: %d,%d\n",
			s.NumNegativePics, s.NumPositivePics, 2, 1)
	}
	if diff := cmp.Diff([]int32{-1, -3}, s.DeltaPocS0); diff != "" {
		t.Errorf("unexpected DeltaPocS0 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int32{1}, s.DeltaPocS1); diff != "" {
		t.Errorf("unexpected DeltaPocS1 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{true, false}, s.UsedByCurrPicS0); diff != "" {
		t.Errorf("unexpected UsedByCurrPicS0 (-want +got):\n%s", diff)
	}
	if s.NumDeltaPocs() != 3 {
		t.Errorf("unexpected NumDeltaPocs.\nGot: %d\nWant: %d\n", s.NumDeltaPocs(), 3)
	}
}

func TestNewShortTermRPSInterPrediction(t *testing.T) {
	ref := explicitRPS(t)

	// stRpsIdx 1 of 2, so delta_idx_minus1 is not coded and the reference
	// is entry 0. deltaRps is -1.
	in := "1" + // u(1) inter_ref_pic_set_prediction_flag = 1
		"1" + // u(1) delta_rps_sign = 1
		"1" + // ue(v) abs_delta_rps_minus1 = 0
		strings.Repeat("1", 4) // u(1) used_by_curr_pic_flag[0..3] = 1
	b, err := binToSlice(in)
	if err != nil {
		t.Fatalf("unexpected binToSlice error: %v", err)
	}
	s, err := NewShortTermRPS(bits.NewBitReader(b), 1, 2, []*ShortTermRPS{ref}, 8)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	// Shifting the reference set {-1,-3,+1} by -1 gives candidates
	// {-2,-4,0} plus the -1 of deltaRps itself; 0 is dropped as it is not
	// negative, so S0 is {-1,-2,-4} in ascending distance and S1 empty.
	if diff := cmp.Diff([]int32{-1, -2, -4}, s.DeltaPocS0); diff != "" {
		t.Errorf("unexpected DeltaPocS0 (-want +got):\n%s", diff)
	}
	if s.NumNegativePics != 3 || s.NumPositivePics != 0 {
		t.Errorf("unexpected picture counts.\nGot: %d,%d\nWant: %d,%d\n",
			s.NumNegativePics, s.NumPositivePics, 3, 0)
	}
}

func TestNewShortTermRPSDeltaIdx(t *testing.T) {
	ref := explicitRPS(t)
	other := &ShortTermRPS{Idx: 1} // Empty set at index 1.

	// Parsed at stRpsIdx == num_short_term_ref_pic_sets, as a slice header
	// does, so delta_idx_minus1 is coded: 1, referencing entry 0 two back.
	// deltaRps is +2, shifting {-1,-3,+1} to {1,-1,3}.
	in := "1" + // u(1) inter_ref_pic_set_prediction_flag = 1
		"010" + // ue(v) delta_idx_minus1 = 1
		"0" + // u(1) delta_rps_sign = 0
		"010" + // ue(v) abs_delta_rps_minus1 = 1
		strings.Repeat("1", 4) // u(1) used_by_curr_pic_flag[0..3] = 1
	b, err := binToSlice(in)
	if err != nil {
		t.Fatalf("unexpected binToSlice error: %v", err)
	}
	s, err := NewShortTermRPS(bits.NewBitReader(b), 2, 2, []*ShortTermRPS{ref, other}, 8)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if diff := cmp.Diff([]int32{-1}, s.DeltaPocS0); diff != "" {
		t.Errorf("unexpected DeltaPocS0 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int32{1, 2, 3}, s.DeltaPocS1); diff != "" {
		t.Errorf("unexpected DeltaPocS1 (-want +got):\n%s", diff)
	}
}

func TestNewShortTermRPSErrors(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		stRpsIdx   int
		numSets    int
		prior      []*ShortTermRPS
		maxNumPics int
	}{
		{
			name: "num_negative_pics too large",
			in: "0001001" + // ue(v) num_negative_pics = 8
				"1", // ue(v) num_positive_pics = 0
			stRpsIdx:   0,
			numSets:    1,
			maxNumPics: 4,
		},
		{
			name: "abs_delta_rps_minus1 too large",
			in: "1" + // inter_ref_pic_set_prediction_flag = 1
				"0" + // delta_rps_sign
				"0000000000000001000000000000001", // ue(v) = 32768
			stRpsIdx:   1,
			numSets:    2,
			prior:      []*ShortTermRPS{{}},
			maxNumPics: 4,
		},
		{
			name:       "reader underflow",
			in:         "011",
			stRpsIdx:   0,
			numSets:    1,
			maxNumPics: 4,
		},
	}

	for _, test := range tests {
		b, err := binToSlice(test.in)
		if err != nil {
			t.Fatalf("unexpected binToSlice error: %v for test: %s", err, test.name)
		}
		_, err = NewShortTermRPS(bits.NewBitReader(b), test.stRpsIdx, test.numSets, test.prior, test.maxNumPics)
		if err == nil {
			t.Errorf("expected error for test: %s", test.name)
		}
	}
}

func TestNewShortTermRPSBoundary(t *testing.T) {
	// abs_delta_rps_minus1 of 32767 is the maximum permitted value.
	ref := explicitRPS(t)
	in := "1" + // inter_ref_pic_set_prediction_flag = 1
		"1" + // delta_rps_sign = 1
		"0000000000000001000000000000000" + // ue(v) abs_delta_rps_minus1 = 32767
		strings.Repeat("10", 4) // used_by_curr_pic_flag[0] = 1, then used_by_curr_pic_flag = 0 and use_delta_flag = 1 for j = 1..3
	b, err := binToSlice(in)
	if err != nil {
		t.Fatalf("unexpected binToSlice error: %v", err)
	}
	s, err := NewShortTermRPS(bits.NewBitReader(b), 1, 2, []*ShortTermRPS{ref}, 8)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if s.AbsDeltaRpsMinus1 != 32767 {
		t.Errorf("unexpected abs_delta_rps_minus1.\nGot: %d\nWant: %d\n", s.AbsDeltaRpsMinus1, 32767)
	}
}
