/*
DESCRIPTION
  ptl.go provides parsing of the profile_tier_level syntax structure.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package h265dec

import (
	"github.com/pkg/errors"

	"github.com/ausocean/hevc/h265dec/bits"
)

// ProfileTierLevelBlock holds the profile and constraint fields shared by the
// general layer and by sub-layers of a profile_tier_level structure, as
// defined by section 7.3.3 in the specifications. Field semantics are defined
// in section 7.4.4.
type ProfileTierLevelBlock struct {
	// profile_space, context for the interpretation of profile_idc.
	ProfileSpace uint8

	// tier_flag, specifies the tier context for level_idc.
	TierFlag bool

	// profile_idc, indicates a profile to which the CVS conforms.
	ProfileIDC uint8

	// profile_compatibility_flag[j], true indicates conformance with the
	// profile indicated by profile_idc equal to j.
	ProfileCompatibilityFlag [32]bool

	ProgressiveSourceFlag   bool
	InterlacedSourceFlag    bool
	NonPackedConstraintFlag bool
	FrameOnlyConstraintFlag bool

	// Constraint flags present for the range extensions and related
	// profiles; see the profile_idc gating in section 7.3.3.
	Max12BitConstraintFlag      bool
	Max10BitConstraintFlag      bool
	Max8BitConstraintFlag       bool
	Max422ChromaConstraintFlag  bool
	Max420ChromaConstraintFlag  bool
	MaxMonochromeConstraintFlag bool
	IntraConstraintFlag         bool
	OnePictureOnlyConstraintFlag bool
	LowerBitRateConstraintFlag  bool
	Max14BitConstraintFlag      bool

	// inbld_flag, indicates support of the INBLD capability.
	InbldFlag bool
}

// constraintFlagsProfile returns true if the constraint flag block is
// present for the block's profile per the gating in section 7.3.3.
func (b *ProfileTierLevelBlock) constraintFlagsProfile() bool {
	for _, j := range []uint8{4, 5, 6, 7, 8, 9, 10, 11} {
		if b.ProfileIDC == j || b.ProfileCompatibilityFlag[j] {
			return true
		}
	}
	return false
}

// max14BitProfile returns true if max_14bit_constraint_flag is present for
// the block's profile.
func (b *ProfileTierLevelBlock) max14BitProfile() bool {
	for _, j := range []uint8{5, 9, 10, 11} {
		if b.ProfileIDC == j || b.ProfileCompatibilityFlag[j] {
			return true
		}
	}
	return false
}

// inbldProfile returns true if inbld_flag is present for the block's profile.
func (b *ProfileTierLevelBlock) inbldProfile() bool {
	for _, j := range []uint8{1, 2, 3, 4, 5, 9, 11} {
		if b.ProfileIDC == j || b.ProfileCompatibilityFlag[j] {
			return true
		}
	}
	return false
}

// parse reads the 88 bit profile block shared by the general layer and
// profile-present sub-layers.
func (b *ProfileTierLevelBlock) parse(r *fieldReader) {
	b.ProfileSpace = uint8(r.readBits(2))
	b.TierFlag = r.readFlag()
	b.ProfileIDC = uint8(r.readBits(5))
	for j := 0; j < 32; j++ {
		b.ProfileCompatibilityFlag[j] = r.readFlag()
	}
	b.ProgressiveSourceFlag = r.readFlag()
	b.InterlacedSourceFlag = r.readFlag()
	b.NonPackedConstraintFlag = r.readFlag()
	b.FrameOnlyConstraintFlag = r.readFlag()

	if b.constraintFlagsProfile() {
		b.Max12BitConstraintFlag = r.readFlag()
		b.Max10BitConstraintFlag = r.readFlag()
		b.Max8BitConstraintFlag = r.readFlag()
		b.Max422ChromaConstraintFlag = r.readFlag()
		b.Max420ChromaConstraintFlag = r.readFlag()
		b.MaxMonochromeConstraintFlag = r.readFlag()
		b.IntraConstraintFlag = r.readFlag()
		b.OnePictureOnlyConstraintFlag = r.readFlag()
		b.LowerBitRateConstraintFlag = r.readFlag()
		if b.max14BitProfile() {
			b.Max14BitConstraintFlag = r.readFlag()
			r.readBits(32)
			r.readBits(1) // reserved_zero_33bits
		} else {
			r.readBits(32)
			r.readBits(2) // reserved_zero_34bits
		}
	} else {
		r.readBits(32)
		r.readBits(11) // reserved_zero_43bits
	}

	if b.inbldProfile() {
		b.InbldFlag = r.readFlag()
	} else {
		r.readBits(1) // reserved_zero_bit
	}
}

// ProfileTierLevel describes a profile_tier_level syntax structure as
// defined by section 7.3.3 in the specifications.
type ProfileTierLevel struct {
	// General layer profile block; present when profilePresentFlag is set
	// by the caller.
	General ProfileTierLevelBlock

	// general_level_idc, indicates the level to which the CVS conforms.
	GeneralLevelIDC uint8

	// sub_layer_profile_present_flag[i] and sub_layer_level_present_flag[i],
	// sized maxNumSubLayersMinus1.
	SubLayerProfilePresentFlag []bool
	SubLayerLevelPresentFlag   []bool

	// Per sub-layer profile blocks and levels; entries valid only when the
	// corresponding present flag is set.
	SubLayerProfile  []ProfileTierLevelBlock
	SubLayerLevelIDC []uint8
}

// NewProfileTierLevel parses a profile_tier_level syntax structure from br
// following the structure specified in section 7.3.3, and returns as a new
// ProfileTierLevel. profilePresentFlag and maxNumSubLayersMinus1 are
// supplied by the containing VPS or SPS.
func NewProfileTierLevel(br *bits.BitReader, profilePresentFlag bool, maxNumSubLayersMinus1 int) (*ProfileTierLevel, error) {
	p := &ProfileTierLevel{}
	r := newFieldReader(br)

	if profilePresentFlag {
		p.General.parse(r)
	}
	p.GeneralLevelIDC = uint8(r.readBits(8))

	p.SubLayerProfilePresentFlag = make([]bool, maxNumSubLayersMinus1)
	p.SubLayerLevelPresentFlag = make([]bool, maxNumSubLayersMinus1)
	p.SubLayerProfile = make([]ProfileTierLevelBlock, maxNumSubLayersMinus1)
	p.SubLayerLevelIDC = make([]uint8, maxNumSubLayersMinus1)

	for i := 0; i < maxNumSubLayersMinus1; i++ {
		p.SubLayerProfilePresentFlag[i] = r.readFlag()
		p.SubLayerLevelPresentFlag[i] = r.readFlag()
	}
	if maxNumSubLayersMinus1 > 0 {
		for i := maxNumSubLayersMinus1; i < 8; i++ {
			r.readBits(2) // reserved_zero_2bits
		}
	}
	for i := 0; i < maxNumSubLayersMinus1; i++ {
		if p.SubLayerProfilePresentFlag[i] {
			p.SubLayerProfile[i].parse(r)
		}
		if p.SubLayerLevelPresentFlag[i] {
			p.SubLayerLevelIDC[i] = uint8(r.readBits(8))
		}
	}

	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not parse profile_tier_level")
	}
	return p, nil
}
