/*
DESCRIPTION
  ptl_test.go provides testing for functionality found in ptl.go.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package h265dec

import (
	"strings"
	"testing"

	"github.com/ausocean/hevc/h265dec/bits"
)

// ptlMainProfile is a general-only profile_tier_level for Main profile,
// level 4.0, as emitted for sps_max_sub_layers_minus1 == 0.
const ptlMainProfile = "00" + // u(2) general_profile_space = 0
	"0" + // u(1) general_tier_flag = 0
	"00001" + // u(5) general_profile_idc = 1
	"01100000000000000000000000000000" + // u(1)x32 compatibility, [1] and [2] set
	"1" + // u(1) general_progressive_source_flag = 1
	"0" + // u(1) general_interlaced_source_flag = 0
	"0" + // u(1) general_non_packed_constraint_flag = 0
	"1" + // u(1) general_frame_only_constraint_flag = 1
	"0000000000000000000000000000000000000000000" + // 43 reserved bits
	"0" + // u(1) general_inbld_flag = 0
	"01111000" // u(8) general_level_idc = 120

func TestNewProfileTierLevel(t *testing.T) {
	b, err := binToSlice(ptlMainProfile)
	if err != nil {
		t.Fatalf("unexpected binToSlice error: %v", err)
	}
	p, err := NewProfileTierLevel(bits.NewBitReader(b), true, 0)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if p.General.ProfileIDC != 1 {
		t.Errorf("unexpected profile_idc.\nGot: %d\nWant: %d\n", p.General.ProfileIDC, 1)
	}
	if !p.General.ProfileCompatibilityFlag[1] || !p.General.ProfileCompatibilityFlag[2] {
		t.Error("expected compatibility flags 1 and 2 to be set")
	}
	if p.General.ProfileCompatibilityFlag[0] || p.General.ProfileCompatibilityFlag[4] {
		t.Error("did not expect compatibility flags 0 or 4 to be set")
	}
	if !p.General.ProgressiveSourceFlag || !p.General.FrameOnlyConstraintFlag {
		t.Error("expected progressive and frame only flags to be set")
	}
	if p.GeneralLevelIDC != 120 {
		t.Errorf("unexpected level_idc.\nGot: %d\nWant: %d\n", p.GeneralLevelIDC, 120)
	}
}

func TestNewProfileTierLevelSubLayers(t *testing.T) {
	// One sub-layer with only the level present.
	in := ptlMainProfile +
		"0" + // sub_layer_profile_present_flag[0] = 0
		"1" + // sub_layer_level_present_flag[0] = 1
		strings.Repeat("00", 7) + // reserved_zero_2bits for i = 1..7
		"01011010" // sub_layer_level_idc[0] = 90

	b, err := binToSlice(in)
	if err != nil {
		t.Fatalf("unexpected binToSlice error: %v", err)
	}
	p, err := NewProfileTierLevel(bits.NewBitReader(b), true, 1)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if p.SubLayerProfilePresentFlag[0] {
		t.Error("did not expect sub_layer_profile_present_flag")
	}
	if !p.SubLayerLevelPresentFlag[0] {
		t.Error("expected sub_layer_level_present_flag")
	}
	if p.SubLayerLevelIDC[0] != 90 {
		t.Errorf("unexpected sub_layer_level_idc.\nGot: %d\nWant: %d\n", p.SubLayerLevelIDC[0], 90)
	}
}

func TestNewProfileTierLevelUnderflow(t *testing.T) {
	b, err := binToSlice("0000")
	if err != nil {
		t.Fatalf("unexpected binToSlice error: %v", err)
	}
	if _, err = NewProfileTierLevel(bits.NewBitReader(b), true, 0); err == nil {
		t.Error("expected error for truncated profile_tier_level")
	}
}
