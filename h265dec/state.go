/*
DESCRIPTION
  state.go provides the parser state holding active parameter sets across
  NAL units.

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

import "sync"

// ParserState holds the active parameter sets keyed by their identifiers so
// that later NAL units can resolve their parameter set references. Writes
// happen only at the end of a successful parameter set parse and are
// last-writer-wins; getters return the stored value, which is never mutated
// after insertion, so a value observed at the start of a slice parse remains
// a stable snapshot for the duration of that parse.
type ParserState struct {
	mu  sync.RWMutex
	vps map[uint8]*VPS
	sps map[uint64]*SPS
	pps map[uint64]*PPS
}

// NewParserState returns a new empty ParserState.
func NewParserState() *ParserState {
	return &ParserState{
		vps: make(map[uint8]*VPS),
		sps: make(map[uint64]*SPS),
		pps: make(map[uint64]*PPS),
	}
}

// GetVPS returns the VPS with the given id, or nil if absent.
func (s *ParserState) GetVPS(id uint8) *VPS {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vps[id]
}

// GetSPS returns the SPS with the given id, or nil if absent.
func (s *ParserState) GetSPS(id uint64) *SPS {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sps[id]
}

// GetPPS returns the PPS with the given id, or nil if absent.
func (s *ParserState) GetPPS(id uint64) *PPS {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pps[id]
}

func (s *ParserState) putVPS(v *VPS) {
	s.mu.Lock()
	s.vps[v.ID] = v
	s.mu.Unlock()
}

func (s *ParserState) putSPS(v *SPS) {
	s.mu.Lock()
	s.sps[v.ID] = v
	s.mu.Unlock()
}

func (s *ParserState) putPPS(v *PPS) {
	s.mu.Lock()
	s.pps[v.ID] = v
	s.mu.Unlock()
}
