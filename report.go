// Copyright 2021 Airbus Defence and Space
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package coreg

import "github.com/geoalign/coreg/raster"

// ShiftReport is the Orchestrator's external interface (spec.md §4.6):
// immutable once returned, consumed by the external warping collaborator.
type ShiftReport struct {
	Success bool

	// ShiftPxX, ShiftPxY is the corrected pixel shift, in target-image
	// pixel units. Nil on any non-success outcome.
	ShiftPxX, ShiftPxY *float64
	// ShiftMapX, ShiftMapY is the corrected map-unit shift. Nil on any
	// non-success outcome.
	ShiftMapX, ShiftMapY *float64

	VecLengthMap *float64
	VecAngleDeg  *float64

	Reliability *float64

	SSIMBefore, SSIMAfter *float64
	SSIMImproved          *bool

	// OriginalMapInfo and UpdatedMapInfo are the target raster's
	// geotransform before and after applying the correction.
	OriginalMapInfo raster.GeoTransform
	UpdatedMapInfo  raster.GeoTransform

	RefProjection    string
	RefGeoTransform  raster.GeoTransform
	// RefTopLeftAnchors is the reference raster's top-left 2x2 pixel grid
	// anchors, in map coordinates, for downstream grid-alignment checks.
	RefTopLeftAnchors [2][2][2]float64

	UsedFFTFallback bool

	// Errors is the ordered Error Log accumulated during the run; empty on
	// a clean success.
	Errors []*Error
}
