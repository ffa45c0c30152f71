/*
NAME
  parse.go

DESCRIPTION
  parse.go provides parsing processes for syntax elements of different
  descriptors specified in 7.2 of ITU-T H.265.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package h265dec

import (
	"io"

	"github.com/pkg/errors"

	"github.com/ausocean/hevc/h265dec/bits"
)

// fieldReader provides methods for reading bool and int fields from a
// bits.BitReader with a sticky error that may be checked after a series of
// parsing read calls.
type fieldReader struct {
	e  error
	br *bits.BitReader
}

// newFieldReader returns a new fieldReader.
func newFieldReader(br *bits.BitReader) *fieldReader {
	return &fieldReader{br: br}
}

// readBits returns a uint64 from reading n bits from br. If we have an error
// already, we do not continue with the read.
func (r *fieldReader) readBits(n int) uint64 {
	if r.e != nil {
		return 0
	}
	b, err := r.br.ReadBits(n)
	if err == io.ErrUnexpectedEOF {
		err = ErrUnexpectedEnd
	}
	r.e = err
	return b
}

// readFlag parses a syntax element of u(1) descriptor and returns it as a
// bool. The read does not happen if the fieldReader has a non-nil error.
func (r *fieldReader) readFlag() bool {
	return r.readBits(1) == 1
}

// readUe parses a syntax element of ue(v) descriptor, i.e. an unsigned
// integer Exp-Golomb-coded element using the method specified in section 9.2
// of ITU-T H.265. The read does not happen if the fieldReader has a non-nil
// error.
func (r *fieldReader) readUe() uint64 {
	if r.e != nil {
		return 0
	}
	var i uint64
	i, r.e = readUe(r.br)
	return i
}

// readSe parses a syntax element of se(v) descriptor, i.e. a signed integer
// Exp-Golomb-coded element, using the method described in sections 9.2 and
// 9.2.2. The read does not happen if the fieldReader has a non-nil error.
func (r *fieldReader) readSe() int64 {
	if r.e != nil {
		return 0
	}
	var i int64
	i, r.e = readSe(r.br)
	return i
}

// err returns the fieldReader's sticky error e.
func (r *fieldReader) err() error {
	return r.e
}

// readUe parses a syntax element of ue(v) descriptor, i.e. an unsigned
// integer Exp-Golomb-coded element using the method specified in section 9.2
// of ITU-T H.265: count leading zero bits k, then value = 2^k - 1 + the next
// k bits. Values must fit in 32 bits.
func readUe(br *bits.BitReader) (uint64, error) {
	var nZeros int
	for {
		b, err := br.ReadBits(1)
		if err != nil {
			return 0, errors.Wrap(ErrUnexpectedEnd, "could not read leading zeros")
		}
		if b == 1 {
			break
		}
		nZeros++
		if nZeros > 31 {
			return 0, SyntaxError{Field: "ue(v)", Value: int64(nZeros), Min: 0, Max: 31}
		}
	}
	rem, err := br.ReadBits(nZeros)
	if err != nil {
		return 0, errors.Wrap(ErrUnexpectedEnd, "could not read ue(v) suffix")
	}
	return 1<<uint(nZeros) - 1 + rem, nil
}

// readSe parses a syntax element with descriptor se(v), i.e. a signed
// integer Exp-Golomb-coded element, using the method described in sections
// 9.2 and 9.2.2 of ITU-T H.265, mapping codeNum k to (-1)^(k+1) * Ceil(k/2).
func readSe(br *bits.BitReader) (int64, error) {
	k, err := readUe(br)
	if err != nil {
		return 0, errors.Wrap(err, "error reading ue(v)")
	}
	v := int64(k+1) / 2
	if k%2 == 0 {
		v = -v
	}
	return v, nil
}
