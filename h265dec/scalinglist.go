/*
DESCRIPTION
  scalinglist.go provides parsing of the scaling_list_data syntax structure.

AUTHORS
  Saxon Nelson-Milton <saxon@ausocean.org>, The Australian Ocean Laboratory (AusOcean)
*/

package h265dec

import (
	"github.com/pkg/errors"

	"github.com/ausocean/hevc/h265dec/bits"
)

// ScalingListData describes a scaling_list_data syntax structure as defined
// by section 7.3.4 in the specifications. All arrays are indexed
// [sizeId][matrixId]; for sizeId 3 only matrixId 0 and 3 are coded (the
// matrixId loop steps by 3) and the remaining entries are unused.
type ScalingListData struct {
	// scaling_list_pred_mode_flag[sizeId][matrixId], false means the scaling
	// list is predicted from a reference list, true means it is coded
	// explicitly.
	PredModeFlag [4][6]bool

	// scaling_list_pred_matrix_id_delta[sizeId][matrixId], identifies the
	// reference list when prediction is used; 0 selects the default list.
	PredMatrixIDDelta [4][6]uint64

	// scaling_list_dc_coef_minus8[sizeId-2][matrixId], DC coefficient for
	// sizes 16x16 and 32x32.
	DCCoefMinus8 [2][6]int64

	// scaling_list_delta_coef[sizeId][matrixId][i], the coded differences
	// of an explicitly coded list, as read; the ScalingList values they
	// accumulate to are not derived.
	DeltaCoef [4][6][]int64
}

// NewScalingListData parses a scaling_list_data syntax structure from br
// following the structure specified in section 7.3.4, and returns as a new
// ScalingListData.
func NewScalingListData(br *bits.BitReader) (*ScalingListData, error) {
	s := &ScalingListData{}
	r := newFieldReader(br)

	for sizeID := 0; sizeID < 4; sizeID++ {
		step := 1
		if sizeID == 3 {
			step = 3
		}
		for matrixID := 0; matrixID < 6; matrixID += step {
			s.PredModeFlag[sizeID][matrixID] = r.readFlag()
			if !s.PredModeFlag[sizeID][matrixID] {
				delta := r.readUe()
				if err := checkRange("scaling_list_pred_matrix_id_delta", int64(delta), 0, int64(matrixID/step)); err != nil {
					return nil, err
				}
				s.PredMatrixIDDelta[sizeID][matrixID] = delta
				continue
			}

			coefNum := 64
			if sizeID == 0 {
				coefNum = 16
			}
			if sizeID > 1 {
				dc := r.readSe()
				if err := checkRange("scaling_list_dc_coef_minus8", dc, -7, 247); err != nil {
					return nil, err
				}
				s.DCCoefMinus8[sizeID-2][matrixID] = dc
			}
			for i := 0; i < coefNum; i++ {
				d := r.readSe()
				if r.err() != nil {
					break
				}
				if err := checkRange("scaling_list_delta_coef", d, -128, 127); err != nil {
					return nil, err
				}
				s.DeltaCoef[sizeID][matrixID] = append(s.DeltaCoef[sizeID][matrixID], d)
			}
		}
	}

	if r.err() != nil {
		return nil, errors.Wrap(r.err(), "could not parse scaling_list_data")
	}
	return s, nil
}
