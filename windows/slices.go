// Copyright 2023 the rasterkit authors
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

package windows

import "fmt"

// Slice mirrors a start:stop slice expression along a single raster axis.
// An unset start resolves to 0 and an unset stop resolves to the full
// extent of the axis. Negative bounds are offsets from the far edge, as in
// array slicing.
type Slice struct {
	start, stop       float64
	hasStart, hasStop bool
}

// Span returns the slice expression start:stop.
func Span(start, stop float64) Slice {
	return Slice{start: start, stop: stop, hasStart: true, hasStop: true}
}

// From returns the open-ended slice expression start:
func From(start float64) Slice {
	return Slice{start: start, hasStart: true}
}

// Until returns the open-start slice expression :stop
func Until(stop float64) Slice {
	return Slice{stop: stop, hasStop: true}
}

// Full returns the all-covering slice expression :
func Full() Slice {
	return Slice{}
}

// resolve evaluates the slice against an axis of the given extent. A
// negative extent means the extent is unknown, in which case open stops and
// negative bounds cannot be resolved.
func (s Slice) resolve(extent float64, axis string) (start, stop float64, err error) {
	start = 0
	if s.hasStart {
		start = s.start
		if start < 0 {
			if extent < 0 {
				return 0, 0, fmt.Errorf("%s start %g needs an extent: %w", axis, start, ErrInvalidWindow)
			}
			start += extent
		}
	}
	if s.hasStop {
		stop = s.stop
		if stop < 0 {
			if extent < 0 {
				return 0, 0, fmt.Errorf("%s stop %g needs an extent: %w", axis, stop, ErrInvalidWindow)
			}
			stop += extent
		}
	} else {
		if extent < 0 {
			return 0, 0, fmt.Errorf("open %s stop needs an extent: %w", axis, ErrInvalidWindow)
		}
		stop = extent
	}
	if stop < start {
		return 0, 0, fmt.Errorf("%s range (%g, %g): %w", axis, start, stop, ErrInvalidWindow)
	}
	return start, stop, nil
}

// FromSlices builds a window from a row and a column slice expression.
// height and width give the extent of the raster the slices apply to and
// are only required to resolve open stops or negative bounds: pass -1 for
// either when unknown.
//
//	FromSlices(Until(4), Until(4), -1, -1)  == Window(0, 0, 4, 4)
//	FromSlices(From(4), From(4), h, w)      == Window(4, 4, w-4, h-4)
//	FromSlices(From(-10), Full(), h, w)     == Window(0, h-10, w, 10)
func FromSlices(rows, cols Slice, height, width float64) (Window, error) {
	r0, r1, err := rows.resolve(height, "row")
	if err != nil {
		return Window{}, err
	}
	c0, c1, err := cols.resolve(width, "col")
	if err != nil {
		return Window{}, err
	}
	return Window{ColOff: c0, RowOff: r0, Width: c1 - c0, Height: r1 - r0}, nil
}
