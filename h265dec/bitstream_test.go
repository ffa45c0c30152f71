/*
DESCRIPTION
  bitstream_test.go provides testing for the bitstream parser in
  bitstream.go and the QP extraction in qp.go.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package h265dec

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseBitstream(t *testing.T) {
	p := NewBitstreamParser()
	bs, err := p.Parse(testStream(t))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if len(bs.NALUnits) != 4 {
		t.Fatalf("unexpected NAL unit count.\nGot: %d\nWant: %d\n", len(bs.NALUnits), 4)
	}
	for i, n := range bs.NALUnits {
		if n.Err != nil {
			t.Fatalf("unexpected parse error for NAL %d: %v", i, n.Err)
		}
	}

	wantTypes := []uint8{NALTypeVPS, NALTypeSPS, NALTypePPS, NALTypeTrailR}
	for i, n := range bs.NALUnits {
		if n.Header.Type != wantTypes[i] {
			t.Errorf("unexpected type for NAL %d.\nGot: %d\nWant: %d\n", i, n.Header.Type, wantTypes[i])
		}
	}

	if v := p.State.GetVPS(0); v == nil {
		t.Error("expected VPS 0 in parser state")
	} else if v.MaxDecPicBufferingMinus1[0] != 4 {
		t.Errorf("unexpected vps_max_dec_pic_buffering_minus1.\nGot: %d\nWant: %d\n", v.MaxDecPicBufferingMinus1[0], 4)
	}
	if s := p.State.GetSPS(0); s == nil {
		t.Error("expected SPS 0 in parser state")
	} else if s.ChromaFormatIDC != 1 {
		t.Errorf("unexpected chroma_format_idc.\nGot: %d\nWant: %d\n", s.ChromaFormatIDC, 1)
	}
	if p.State.GetPPS(0) == nil {
		t.Error("expected PPS 0 in parser state")
	}
	if bs.NALUnits[3].Slice == nil {
		t.Error("expected parsed slice segment")
	}
}

func TestParseBitstreamEmpty(t *testing.T) {
	p := NewBitstreamParser()
	bs, err := p.Parse(nil)
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if len(bs.NALUnits) != 0 {
		t.Errorf("unexpected NAL unit count.\nGot: %d\nWant: %d\n", len(bs.NALUnits), 0)
	}
}

func TestParseBitstreamNoStartCode(t *testing.T) {
	p := NewBitstreamParser()
	_, err := p.Parse([]byte{0xde, 0xad, 0xbe, 0xef})
	if err != ErrInvalidStartCode {
		t.Errorf("unexpected error.\nGot: %v\nWant: %v\n", err, ErrInvalidStartCode)
	}
}

func TestParseBitstreamHeaderOnly(t *testing.T) {
	// A start code and a NAL header with an unspecified type and no
	// payload parses without error.
	p := NewBitstreamParser()
	bs, err := p.Parse([]byte{0x00, 0x00, 0x00, 0x01, 0x60, 0x01})
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	if len(bs.NALUnits) != 1 {
		t.Fatalf("unexpected NAL unit count.\nGot: %d\nWant: %d\n", len(bs.NALUnits), 1)
	}
	n := bs.NALUnits[0]
	if n.Err != nil {
		t.Fatalf("unexpected parse error: %v", n.Err)
	}
	if n.Header.Type != 48 {
		t.Errorf("unexpected type.\nGot: %d\nWant: %d\n", n.Header.Type, 48)
	}
}

func TestParseBitstreamUnknownTypeOpaque(t *testing.T) {
	// A reserved non-VCL type keeps its raw bytes and is not an error.
	raw := []byte{0x52, 0x01, 0xde, 0xad, 0xbe, 0xef} // Type 41, RSV_NVCL.
	p := NewBitstreamParser()
	bs, err := p.Parse(annexB(raw))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}
	n := bs.NALUnits[0]
	if n.Err != nil {
		t.Fatalf("unexpected parse error: %v", n.Err)
	}
	if !bytes.Equal(n.Raw, raw) {
		t.Errorf("unexpected raw bytes.\nGot: %v\nWant: %v\n", n.Raw, raw)
	}
}

// TestParseBitstreamTruncatedNAL checks that a truncated parameter set is
// recorded against its NAL unit and does not stop the parse or corrupt the
// state.
func TestParseBitstreamTruncatedNAL(t *testing.T) {
	sps := nalu([2]byte{0x42, 0x01}, mustBin(t, spsMain))
	truncated := sps[:6]
	pps := nalu([2]byte{0x44, 0x01}, mustBin(t, ppsMain))

	p := NewBitstreamParser()
	bs, err := p.Parse(annexB(truncated, sps, pps))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	if bs.NALUnits[0].Err == nil {
		t.Error("expected error recorded for truncated SPS")
	}
	if bs.NALUnits[1].Err != nil || bs.NALUnits[2].Err != nil {
		t.Error("did not expect errors for complete parameter sets")
	}
	if p.State.GetSPS(0) == nil || p.State.GetPPS(0) == nil {
		t.Error("expected complete parameter sets in state")
	}
}

func TestSliceQpY(t *testing.T) {
	// VPS/SPS/PPS then a slice with slice_qp_delta of -4 and
	// init_qp_minus26 of 0 gives a QP of 22.
	state := NewParserState()
	got := SliceQpY(testStream(t), state)
	if diff := cmp.Diff([]int32{22}, got); diff != "" {
		t.Errorf("unexpected QPs (-want +got):\n%s", diff)
	}
}

func TestSliceQpYPerSlice(t *testing.T) {
	// Two further slices after the first; each contributes a value.
	slice := nalu([2]byte{0x02, 0x01}, mustBin(t, sliceQp22))
	state := NewParserState()
	got := SliceQpY(testStream(t, slice, slice), state)
	if diff := cmp.Diff([]int32{22, 22, 22}, got); diff != "" {
		t.Errorf("unexpected QPs (-want +got):\n%s", diff)
	}
}

// TestSliceQpYMissingPPS checks that a slice referring to an absent PPS
// yields no value without affecting other slices.
func TestSliceQpYMissingPPS(t *testing.T) {
	// A slice referring to PPS id 1, which is never parsed.
	badSlice := "1" + // first_slice_segment_in_pic_flag = 1
		"010" + // ue(v) slice_pic_parameter_set_id = 1
		"1" // padding to keep the NAL non-empty
	bad := nalu([2]byte{0x02, 0x01}, mustBin(t, badSlice))

	state := NewParserState()
	got := SliceQpY(testStream(t, bad), state)
	if diff := cmp.Diff([]int32{22}, got); diff != "" {
		t.Errorf("unexpected QPs (-want +got):\n%s", diff)
	}
}

func TestDumpSmoke(t *testing.T) {
	p := NewBitstreamParser()
	bs, err := p.Parse(testStream(t))
	if err != nil {
		t.Fatalf("did not expect error: %v", err)
	}

	var text, js bytes.Buffer
	if err := Dump(&text, bs); err != nil {
		t.Fatalf("did not expect Dump error: %v", err)
	}
	if text.Len() == 0 {
		t.Error("expected Dump output")
	}
	if err := DumpJSON(&js, bs); err != nil {
		t.Fatalf("did not expect DumpJSON error: %v", err)
	}
	if js.Len() == 0 {
		t.Error("expected DumpJSON output")
	}
}
