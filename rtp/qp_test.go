/*
NAME
  qp_test.go

DESCRIPTION
  qp_test.go provides testing for the QP extraction in qp.go.

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>
*/

package rtp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ausocean/hevc/h265dec"
)

// binToSlice converts a string of binary into a byte slice, ignoring
// spaces and zero padding the final byte.
func binToSlice(t *testing.T, s string) []byte {
	t.Helper()
	var (
		a     byte = 0x80
		cur   byte
		bytes []byte
	)
	for _, c := range s {
		switch c {
		case ' ':
			continue
		case '1':
			cur |= a
		case '0':
		default:
			t.Fatal(errors.New("invalid binary string"))
		}
		a >>= 1
		if a == 0 {
			bytes = append(bytes, cur)
			cur = 0
			a = 0x80
		}
	}
	if a != 0x80 {
		bytes = append(bytes, cur)
	}
	return bytes
}

// Test vectors matching the h265dec package's constructed stream: a Main
// profile 176x144 SPS, a PPS with init_qp_minus26 of 0, and an I slice with
// slice_qp_delta of -4.
const (
	testPTL = "00" + "0" + "00001" +
		"01100000000000000000000000000000" +
		"1" + "0" + "0" + "1" +
		"0000000000000000000000000000000000000000000" + "0" +
		"01111000"

	testSPS = "0000" + "000" + "1" + testPTL +
		"1" + "010" +
		"000000010110001" + "000000010010001" +
		"0" + "1" + "1" + "00101" +
		"1" + "00101" + "011" + "1" +
		"1" + "011" + "1" + "00100" + "1" + "1" +
		"0" + "1" + "1" + "0" +
		"010" + "010" + "1" + "00100" + "1" +
		"0" + "1" + "1" + "0" + "0" + "1"

	testPPS = "1" + "1" + "0" + "0" + "000" + "1" + "0" +
		"1" + "1" + "1" + "0" + "0" + "0" + "1" + "1" + "0" +
		"0" + "0" + "0" + "0" + "0" + "1" + "0" + "0" + "0" +
		"1" + "0" + "0" + "1"

	testSlice = "1" + "1" + "011" + "00000000" + "1" + "0" +
		"1" + "1" + "0001001" + "1" + "1"
)

// emulationPrevent inserts emulation prevention bytes so an RBSP can be
// carried in a NAL unit without forming start codes.
func emulationPrevent(b []byte) []byte {
	out := make([]byte, 0, len(b))
	nZeros := 0
	for _, c := range b {
		if nZeros >= 2 && c <= 0x03 {
			out = append(out, 0x03)
			nZeros = 0
		}
		if c == 0x00 {
			nZeros++
		} else {
			nZeros = 0
		}
		out = append(out, c)
	}
	return out
}

// testState returns a parser state loaded with the test SPS and PPS by
// parsing a small Annex B stream.
func testState(t *testing.T) *h265dec.ParserState {
	t.Helper()
	stream := []byte{0x00, 0x00, 0x00, 0x01, 0x42, 0x01}
	stream = append(stream, emulationPrevent(binToSlice(t, testSPS))...)
	stream = append(stream, 0x00, 0x00, 0x00, 0x01, 0x44, 0x01)
	stream = append(stream, emulationPrevent(binToSlice(t, testPPS))...)

	p := h265dec.NewBitstreamParser()
	bs, err := p.Parse(stream)
	require.NoError(t, err)
	for _, n := range bs.NALUnits {
		require.NoError(t, n.Err)
	}
	require.NotNil(t, p.State.GetSPS(0))
	require.NotNil(t, p.State.GetPPS(0))
	return p.State
}

// sliceNALU returns the test slice as a complete NAL unit with a TRAIL_R
// header.
func sliceNALU(t *testing.T) []byte {
	t.Helper()
	return append([]byte{0x02, 0x01}, binToSlice(t, testSlice)...)
}

func TestSliceQpYSingle(t *testing.T) {
	state := testState(t)

	qp, ok, err := SliceQpY(sliceNALU(t), false, state)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int32(22), qp)
}

func TestSliceQpYAggregation(t *testing.T) {
	state := testState(t)
	slice := sliceNALU(t)

	// An AP carrying a filler NAL then the slice; the last contained NAL
	// supplies the QP.
	payload := []byte{0x60, 0x01}
	payload = append(payload, 0x00, 0x02, 0x4c, 0x01) // FD_NUT, 2 bytes.
	payload = append(payload, 0x00, byte(len(slice)))
	payload = append(payload, slice...)

	qp, ok, err := SliceQpY(payload, false, state)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int32(22), qp)
}

func TestSliceQpYFragmentation(t *testing.T) {
	state := testState(t)
	slice := sliceNALU(t)

	// A start fragment carries the slice header, so the QP is available.
	start := []byte{0x62, 0x01, 0x80 | 0x01}
	start = append(start, slice[2:]...)

	qp, ok, err := SliceQpY(start, false, state)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int32(22), qp)

	// A non-start fragment yields no value.
	middle := []byte{0x62, 0x01, 0x01, 0xaa, 0xbb}
	_, ok, err = SliceQpY(middle, false, state)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSliceQpYNonSlice(t *testing.T) {
	state := testState(t)

	// An AUD is not a slice segment.
	_, ok, err := SliceQpY([]byte{0x46, 0x01, 0x50}, false, state)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSliceQpYMissingPPS(t *testing.T) {
	// Fresh state with no parameter sets.
	state := h265dec.NewParserState()
	_, ok, err := SliceQpY(sliceNALU(t), false, state)
	require.NoError(t, err)
	assert.False(t, ok)
}
