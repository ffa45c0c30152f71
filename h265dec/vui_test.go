/*
DESCRIPTION
  vui_test.go provides testing for functionality found in vui.go and hrd.go.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package h265dec

import (
	"testing"

	"github.com/ausocean/hevc/h265dec/bits"
)

func TestNewVUIParametersMinimal(t *testing.T) {
	// Every presence flag off.
	in := "0" + // aspect_ratio_info_present_flag
		"0" + // overscan_info_present_flag
		"0" + // video_signal_type_present_flag
		"0" + // chroma_loc_info_present_flag
		"0" + // neutral_chroma_indication_flag
		"0" + // field_seq_flag
		"0" + // frame_field_info_present_flag
		"0" + // default_display_window_flag
		"0" + // vui_timing_info_present_flag
		"0" // bitstream_restriction_flag
	b, err := binToSlice(in)
	if err != nil {
		t.Fatalf("unexpected binToSlice error: %v", err)
	}
	p, err := NewVUIParameters(bits.NewBitReader(b), 0)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if p.Framerate() != 0 {
		t.Errorf("unexpected framerate.\nGot: %f\nWant: %f\n", p.Framerate(), 0.0)
	}
}

func TestNewVUIParametersTiming(t *testing.T) {
	in := "1" + // aspect_ratio_info_present_flag = 1
		"00000001" + // aspect_ratio_idc = 1 (square)
		"0" + // overscan_info_present_flag
		"0" + // video_signal_type_present_flag
		"0" + // chroma_loc_info_present_flag
		"0" + // neutral_chroma_indication_flag
		"0" + // field_seq_flag
		"0" + // frame_field_info_present_flag
		"0" + // default_display_window_flag
		"1" + // vui_timing_info_present_flag = 1
		"00000000000000000000001111101000" + // vui_num_units_in_tick = 1000
		"00000000000000000111010100110000" + // vui_time_scale = 30000
		"0" + // vui_poc_proportional_to_timing_flag
		"0" + // vui_hrd_parameters_present_flag
		"0" // bitstream_restriction_flag
	b, err := binToSlice(in)
	if err != nil {
		t.Fatalf("unexpected binToSlice error: %v", err)
	}
	p, err := NewVUIParameters(bits.NewBitReader(b), 0)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if p.AspectRatioIDC != 1 {
		t.Errorf("unexpected aspect_ratio_idc.\nGot: %d\nWant: %d\n", p.AspectRatioIDC, 1)
	}
	if p.NumUnitsInTick != 1000 || p.TimeScale != 30000 {
		t.Errorf("unexpected timing fields.\nGot: %d,%d\nWant: %d,%d\n",
			p.NumUnitsInTick, p.TimeScale, 1000, 30000)
	}
	if p.Framerate() != 30 {
		t.Errorf("unexpected framerate.\nGot: %f\nWant: %f\n", p.Framerate(), 30.0)
	}
}

func TestNewVUIParametersHRD(t *testing.T) {
	in := "0" + // aspect_ratio_info_present_flag
		"0" + // overscan_info_present_flag
		"0" + // video_signal_type_present_flag
		"0" + // chroma_loc_info_present_flag
		"000" + // neutral chroma, field seq, frame field info
		"0" + // default_display_window_flag
		"1" + // vui_timing_info_present_flag = 1
		"00000000000000000000000000000001" + // vui_num_units_in_tick = 1
		"00000000000000000000000000011110" + // vui_time_scale = 30
		"0" + // vui_poc_proportional_to_timing_flag
		"1" + // vui_hrd_parameters_present_flag = 1
		// hrd_parameters(1, 0):
		"1" + // nal_hrd_parameters_present_flag = 1
		"0" + // vcl_hrd_parameters_present_flag = 0
		"0" + // sub_pic_hrd_params_present_flag = 0
		"0000" + // bit_rate_scale = 0
		"0000" + // cpb_size_scale = 0
		"00000" + // initial_cpb_removal_delay_length_minus1 = 0
		"00000" + // au_cpb_removal_delay_length_minus1 = 0
		"00000" + // dpb_output_delay_length_minus1 = 0
		// Sub-layer 0:
		"0" + // fixed_pic_rate_general_flag = 0
		"0" + // fixed_pic_rate_within_cvs_flag = 0
		"0" + // low_delay_hrd_flag = 0
		"1" + // ue(v) cpb_cnt_minus1 = 0
		// sub_layer_hrd_parameters(0), one CPB:
		"010" + // ue(v) bit_rate_value_minus1[0] = 1
		"011" + // ue(v) cpb_size_value_minus1[0] = 2
		"1" + // cbr_flag[0] = 1
		"0" // bitstream_restriction_flag
	b, err := binToSlice(in)
	if err != nil {
		t.Fatalf("unexpected binToSlice error: %v", err)
	}
	p, err := NewVUIParameters(bits.NewBitReader(b), 0)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	h := p.HRDParameters
	if h == nil {
		t.Fatal("expected hrd parameters")
	}
	if !h.NALHRDParametersPresentFlag || h.VCLHRDParametersPresentFlag {
		t.Error("unexpected hrd presence flags")
	}
	if len(h.CPBCntMinus1) != 1 || h.CPBCntMinus1[0] != 0 {
		t.Errorf("unexpected cpb_cnt_minus1: %v", h.CPBCntMinus1)
	}
	sub := h.NALSubLayerHRD[0]
	if sub == nil {
		t.Fatal("expected NAL sub-layer hrd parameters")
	}
	if sub.BitRateValueMinus1[0] != 1 || sub.CPBSizeValueMinus1[0] != 2 || !sub.CBRFlag[0] {
		t.Errorf("unexpected sub-layer hrd values: %+v", sub)
	}
}

func TestNewVUIParametersRangeChecks(t *testing.T) {
	// chroma_sample_loc_type_top_field of 6 is out of range.
	in := "0" + // aspect_ratio_info_present_flag
		"0" + // overscan_info_present_flag
		"0" + // video_signal_type_present_flag
		"1" + // chroma_loc_info_present_flag = 1
		"00111" + // ue(v) chroma_sample_loc_type_top_field = 6
		"1" // ue(v) chroma_sample_loc_type_bottom_field = 0
	b, err := binToSlice(in)
	if err != nil {
		t.Fatalf("unexpected binToSlice error: %v", err)
	}
	if _, err = NewVUIParameters(bits.NewBitReader(b), 0); err == nil {
		t.Error("expected error for out of range chroma sample location")
	}
}
