/*
NAME
  extract.go

DESCRIPTION
  extract.go provides an extractor for taking RTP HEVC (H265) packets and
  extracting access units in Annex B byte stream format.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package rtp

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// Buffer sizes.
const (
	maxAUSize  = 100000
	maxRTPSize = 4096
)

// Extractor is an RTP HEVC access unit extractor. Extracted access units
// are written in Annex B byte stream format, suitable for the h265dec
// bitstream parser.
type Extractor struct {
	donl bool          // Indicates whether DONL and DOND will be used for the RTP stream.
	buf  *bytes.Buffer // Holds the current access unit.
	frag bool          // Indicates if we're currently dealing with a fragmentation packet.
}

// NewExtractor returns a new Extractor.
func NewExtractor(donl bool) *Extractor {
	return &Extractor{
		donl: donl,
		buf:  bytes.NewBuffer(make([]byte, 0, maxAUSize)),
	}
}

// Extract continually reads RTP packets from the io.Reader src and extracts
// H.265 access units which are written to the io.Writer dst. Extract expects
// that for each read from src, a single RTP packet is received.
func (e *Extractor) Extract(dst io.Writer, src io.Reader) error {
	buf := make([]byte, maxRTPSize)
	for {
		n, err := src.Read(buf)
		if err == io.EOF {
			if e.buf.Len() == 0 {
				return io.EOF
			}
			return io.ErrUnexpectedEOF
		}
		if err != nil {
			return err
		}

		payload, err := Payload(buf[:n])
		if err != nil {
			return errors.Wrap(err, "could not get rtp payload")
		}

		pkt, err := ParsePayload(payload, e.donl)
		if err != nil {
			return errors.Wrap(err, "could not parse rtp payload")
		}

		// An interrupted fragmentation discards the partial access unit.
		if e.frag && pkt.FU == nil {
			e.buf.Reset()
			e.frag = false
			continue
		}

		switch {
		case pkt.Single != nil:
			e.writeWithPrefix(pkt.Single)
		case pkt.Aggregated != nil:
			for _, nalu := range pkt.Aggregated {
				e.writeWithPrefix(nalu)
			}
		case pkt.FU != nil:
			e.handleFragmentation(pkt.FU)
		}

		markerIsSet, err := Marker(buf[:n])
		if err != nil {
			return errors.Wrap(err, "could not get marker bit")
		}

		if markerIsSet {
			_, err := e.buf.WriteTo(dst)
			if err != nil {
				return errors.Wrap(err, "could not write access unit")
			}
			e.buf.Reset()
		}
	}
}

// handleFragmentation writes fragmentation unit data to the Extractor's buf,
// prefixing a start code and the reconstructed NAL header for the start
// fragment.
func (e *Extractor) handleFragmentation(fu *FragmentationUnit) {
	switch {
	case fu.Start && !fu.End:
		e.frag = true
		e.writeWithPrefix(fu.NALU())
	case fu.Start && fu.End:
		e.writeWithPrefix(fu.NALU())
	case fu.End:
		e.frag = false
		fallthrough
	default:
		e.writeNoPrefix(fu.Fragment)
	}
}

// writeWithPrefix writes a NAL unit to the Extractor's buf in byte stream
// format using the start code.
func (e *Extractor) writeWithPrefix(d []byte) {
	const prefix = "\x00\x00\x00\x01"
	e.buf.Write([]byte(prefix))
	e.buf.Write(d)
}

// writeNoPrefix writes data to the Extractor's buf. This is used for non
// start fragmentations of a NALU.
func (e *Extractor) writeNoPrefix(d []byte) {
	e.buf.Write(d)
}
