/*
DESCRIPTION
  streams_test.go provides shared test vectors and byte stream assembly
  helpers used by the parameter set, slice and bitstream tests.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package h265dec

import "testing"

// vpsMain is a minimal VPS RBSP for a single layer, single sub-layer
// stream using the Main profile.
const vpsMain = "0000" + // u(4) vps_video_parameter_set_id = 0
	"1" + // u(1) vps_base_layer_internal_flag = 1
	"1" + // u(1) vps_base_layer_available_flag = 1
	"000000" + // u(6) vps_max_layers_minus1 = 0
	"000" + // u(3) vps_max_sub_layers_minus1 = 0
	"1" + // u(1) vps_temporal_id_nesting_flag = 1
	"1111111111111111" + // u(16) vps_reserved_0xffff_16bits
	ptlMainProfile +
	"1" + // u(1) vps_sub_layer_ordering_info_present_flag = 1
	"00101" + // ue(v) vps_max_dec_pic_buffering_minus1[0] = 4
	"011" + // ue(v) vps_max_num_reorder_pics[0] = 2
	"1" + // ue(v) vps_max_latency_increase_plus1[0] = 0
	"000000" + // u(6) vps_max_layer_id = 0
	"1" + // ue(v) vps_num_layer_sets_minus1 = 0
	"0" + // u(1) vps_timing_info_present_flag = 0
	"0" + // u(1) vps_extension_flag = 0
	"1" // rbsp_stop_one_bit

// spsMain is a 176x144 4:2:0 Main profile SPS RBSP with a single
// short-term reference picture set holding one negative picture at -4.
const spsMain = "0000" + // u(4) sps_video_parameter_set_id = 0
	"000" + // u(3) sps_max_sub_layers_minus1 = 0
	"1" + // u(1) sps_temporal_id_nesting_flag = 1
	ptlMainProfile +
	"1" + // ue(v) sps_seq_parameter_set_id = 0
	"010" + // ue(v) chroma_format_idc = 1
	"000000010110001" + // ue(v) pic_width_in_luma_samples = 176
	"000000010010001" + // ue(v) pic_height_in_luma_samples = 144
	"0" + // u(1) conformance_window_flag = 0
	"1" + // ue(v) bit_depth_luma_minus8 = 0
	"1" + // ue(v) bit_depth_chroma_minus8 = 0
	"00101" + // ue(v) log2_max_pic_order_cnt_lsb_minus4 = 4
	"1" + // u(1) sps_sub_layer_ordering_info_present_flag = 1
	"00101" + // ue(v) sps_max_dec_pic_buffering_minus1[0] = 4
	"011" + // ue(v) sps_max_num_reorder_pics[0] = 2
	"1" + // ue(v) sps_max_latency_increase_plus1[0] = 0
	"1" + // ue(v) log2_min_luma_coding_block_size_minus3 = 0
	"011" + // ue(v) log2_diff_max_min_luma_coding_block_size = 2
	"1" + // ue(v) log2_min_luma_transform_block_size_minus2 = 0
	"00100" + // ue(v) log2_diff_max_min_luma_transform_block_size = 3
	"1" + // ue(v) max_transform_hierarchy_depth_inter = 0
	"1" + // ue(v) max_transform_hierarchy_depth_intra = 0
	"0" + // u(1) scaling_list_enabled_flag = 0
	"1" + // u(1) amp_enabled_flag = 1
	"1" + // u(1) sample_adaptive_offset_enabled_flag = 1
	"0" + // u(1) pcm_enabled_flag = 0
	"010" + // ue(v) num_short_term_ref_pic_sets = 1
	// st_ref_pic_set(0):
	"010" + // ue(v) num_negative_pics = 1
	"1" + // ue(v) num_positive_pics = 0
	"00100" + // ue(v) delta_poc_s0_minus1[0] = 3
	"1" + // u(1) used_by_curr_pic_s0_flag[0] = 1
	"0" + // u(1) long_term_ref_pics_present_flag = 0
	"1" + // u(1) sps_temporal_mvp_enabled_flag = 1
	"1" + // u(1) strong_intra_smoothing_enabled_flag = 1
	"0" + // u(1) vui_parameters_present_flag = 0
	"0" + // u(1) sps_extension_present_flag = 0
	"1" // rbsp_stop_one_bit

// ppsMain is a minimal PPS RBSP referring to spsMain with init_qp_minus26
// of 0.
const ppsMain = "1" + // ue(v) pps_pic_parameter_set_id = 0
	"1" + // ue(v) pps_seq_parameter_set_id = 0
	"0" + // u(1) dependent_slice_segments_enabled_flag = 0
	"0" + // u(1) output_flag_present_flag = 0
	"000" + // u(3) num_extra_slice_header_bits = 0
	"1" + // u(1) sign_data_hiding_enabled_flag = 1
	"0" + // u(1) cabac_init_present_flag = 0
	"1" + // ue(v) num_ref_idx_l0_default_active_minus1 = 0
	"1" + // ue(v) num_ref_idx_l1_default_active_minus1 = 0
	"1" + // se(v) init_qp_minus26 = 0
	"0" + // u(1) constrained_intra_pred_flag = 0
	"0" + // u(1) transform_skip_enabled_flag = 0
	"0" + // u(1) cu_qp_delta_enabled_flag = 0
	"1" + // se(v) pps_cb_qp_offset = 0
	"1" + // se(v) pps_cr_qp_offset = 0
	"0" + // u(1) pps_slice_chroma_qp_offsets_present_flag = 0
	"0" + // u(1) weighted_pred_flag = 0
	"0" + // u(1) weighted_bipred_flag = 0
	"0" + // u(1) transquant_bypass_enabled_flag = 0
	"0" + // u(1) tiles_enabled_flag = 0
	"0" + // u(1) entropy_coding_sync_enabled_flag = 0
	"1" + // u(1) pps_loop_filter_across_slices_enabled_flag = 1
	"0" + // u(1) deblocking_filter_control_present_flag = 0
	"0" + // u(1) pps_scaling_list_data_present_flag = 0
	"0" + // u(1) lists_modification_present_flag = 0
	"1" + // ue(v) log2_parallel_merge_level_minus2 = 0
	"0" + // u(1) slice_segment_header_extension_present_flag = 0
	"0" + // u(1) pps_extension_present_flag = 0
	"1" // rbsp_stop_one_bit

// sliceQp22 is an I slice segment header for the above SPS and PPS with
// slice_qp_delta of -4, i.e. a SliceQpY of 22. The NAL unit type is
// TRAIL_R.
const sliceQp22 = "1" + // u(1) first_slice_segment_in_pic_flag = 1
	"1" + // ue(v) slice_pic_parameter_set_id = 0
	"011" + // ue(v) slice_type = 2 (I)
	"00000000" + // u(8) slice_pic_order_cnt_lsb = 0
	"1" + // u(1) short_term_ref_pic_set_sps_flag = 1
	"0" + // u(1) slice_temporal_mvp_enabled_flag = 0
	"1" + // u(1) slice_sao_luma_flag = 1
	"1" + // u(1) slice_sao_chroma_flag = 1
	"0001001" + // se(v) slice_qp_delta = -4
	"1" + // u(1) slice_loop_filter_across_slices_enabled_flag = 1
	"1" // byte alignment bit, zero padded by binToSlice

// mustBin converts a binary string to bytes, failing the test on error.
func mustBin(t *testing.T, s string) []byte {
	t.Helper()
	b, err := binToSlice(s)
	if err != nil {
		t.Fatalf("unexpected binToSlice error: %v", err)
	}
	return b
}

// nalu assembles a NAL unit from its two header bytes and RBSP, applying
// emulation prevention.
func nalu(hdr [2]byte, rbsp []byte) []byte {
	return append([]byte{hdr[0], hdr[1]}, emulationPrevent(rbsp)...)
}

// annexB assembles an Annex B byte stream, prefixing each NAL unit with a
// four byte start code.
func annexB(nalus ...[]byte) []byte {
	var out []byte
	for _, n := range nalus {
		out = append(out, 0x00, 0x00, 0x00, 0x01)
		out = append(out, n...)
	}
	return out
}

// testStream assembles the VPS/SPS/PPS/slice stream used by the bitstream
// and QP tests.
func testStream(t *testing.T, extra ...[]byte) []byte {
	t.Helper()
	nalus := [][]byte{
		nalu([2]byte{0x40, 0x01}, mustBin(t, vpsMain)),
		nalu([2]byte{0x42, 0x01}, mustBin(t, spsMain)),
		nalu([2]byte{0x44, 0x01}, mustBin(t, ppsMain)),
		nalu([2]byte{0x02, 0x01}, mustBin(t, sliceQp22)),
	}
	nalus = append(nalus, extra...)
	return annexB(nalus...)
}
