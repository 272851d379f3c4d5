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

// Package windows implements rectangular subsets of a raster's pixel grid.
//
// A Window bounds read and write operations so that only the pixels of
// interest are transferred, and drives block-aligned iteration over a
// band's native tiling. Windows are pure values: they carry no reference to
// pixel data and are combined structurally.
package windows

import (
	"errors"
	"fmt"
	"math"

	"github.com/spatialgo/rasterkit/affine"
)

var (
	// ErrInvalidWindow is returned when resolving bounds that produce a
	// negative width or height.
	ErrInvalidWindow = errors.New("invalid window")
	// ErrEmptyIntersection is returned by Intersection for windows that do
	// not overlap. Non-overlapping windows have no canonical empty
	// intersection: callers that can accept one should test with
	// Intersects first.
	ErrEmptyIntersection = errors.New("windows do not intersect")
)

// Window is a rectangular subset of a raster, expressed in pixel
// coordinates. Offsets may be negative or fractional; Width and Height are
// never negative in a well-formed window.
type Window struct {
	ColOff, RowOff float64
	Width, Height  float64
}

// New returns the window at colOff,rowOff spanning width x height pixels.
// Negative spans are rejected with ErrInvalidWindow.
func New(colOff, rowOff, width, height float64) (Window, error) {
	if width < 0 || height < 0 {
		return Window{}, fmt.Errorf("window %gx%g: %w", width, height, ErrInvalidWindow)
	}
	return Window{ColOff: colOff, RowOff: rowOff, Width: width, Height: height}, nil
}

// Empty reports wether the window covers no pixels.
func (w Window) Empty() bool {
	return w.Width == 0 || w.Height == 0
}

// ColRange returns the start and stop columns of the window.
func (w Window) ColRange() (start, stop float64) {
	return w.ColOff, w.ColOff + w.Width
}

// RowRange returns the start and stop rows of the window.
func (w Window) RowRange() (start, stop float64) {
	return w.RowOff, w.RowOff + w.Height
}

// Slices returns the row and column ranges of the window as slice
// expressions, the reverse of FromSlices.
func (w Window) Slices() (rows, cols Slice) {
	return Span(w.RowOff, w.RowOff+w.Height), Span(w.ColOff, w.ColOff+w.Width)
}

// Union returns the smallest window covering both w and o.
func (w Window) Union(o Window) Window {
	c0 := math.Min(w.ColOff, o.ColOff)
	r0 := math.Min(w.RowOff, o.RowOff)
	c1 := math.Max(w.ColOff+w.Width, o.ColOff+o.Width)
	r1 := math.Max(w.RowOff+w.Height, o.RowOff+o.Height)
	return Window{ColOff: c0, RowOff: r0, Width: c1 - c0, Height: r1 - r0}
}

// Intersects reports wether w and o overlap by at least one pixel fraction.
// Windows that only share an edge do not intersect.
func (w Window) Intersects(o Window) bool {
	return w.ColOff < o.ColOff+o.Width && o.ColOff < w.ColOff+w.Width &&
		w.RowOff < o.RowOff+o.Height && o.RowOff < w.RowOff+w.Height
}

// Intersection returns the largest window contained in both w and o, or
// ErrEmptyIntersection if they do not overlap.
func (w Window) Intersection(o Window) (Window, error) {
	if !w.Intersects(o) {
		return Window{}, fmt.Errorf("%v / %v: %w", w, o, ErrEmptyIntersection)
	}
	c0 := math.Max(w.ColOff, o.ColOff)
	r0 := math.Max(w.RowOff, o.RowOff)
	c1 := math.Min(w.ColOff+w.Width, o.ColOff+o.Width)
	r1 := math.Min(w.RowOff+w.Height, o.RowOff+o.Height)
	return Window{ColOff: c0, RowOff: r0, Width: c1 - c0, Height: r1 - r0}, nil
}

// Contains reports wether o lies entirely inside w.
func (w Window) Contains(o Window) bool {
	return o.ColOff >= w.ColOff && o.ColOff+o.Width <= w.ColOff+w.Width &&
		o.RowOff >= w.RowOff && o.RowOff+o.Height <= w.RowOff+w.Height
}

// ContainsPoint reports wether the fractional pixel coordinate col,row lies
// inside the window.
func (w Window) ContainsPoint(col, row float64) bool {
	return col >= w.ColOff && col < w.ColOff+w.Width &&
		row >= w.RowOff && row < w.RowOff+w.Height
}

// Crop clips the window to the extent of a height x width raster.
func (w Window) Crop(height, width float64) Window {
	c0 := math.Min(math.Max(w.ColOff, 0), width)
	r0 := math.Min(math.Max(w.RowOff, 0), height)
	c1 := math.Max(math.Min(w.ColOff+w.Width, width), 0)
	r1 := math.Max(math.Min(w.RowOff+w.Height, height), 0)
	if c1 < c0 {
		c1 = c0
	}
	if r1 < r0 {
		r1 = r0
	}
	return Window{ColOff: c0, RowOff: r0, Width: c1 - c0, Height: r1 - r0}
}

// Rounding selects how fractional window bounds are snapped to whole
// pixels.
type Rounding int

const (
	// Floor rounds towards negative infinity
	Floor Rounding = iota
	// Ceil rounds towards positive infinity
	Ceil
	// Nearest rounds half away from zero
	Nearest
)

func (r Rounding) apply(v float64) float64 {
	switch r {
	case Ceil:
		return math.Ceil(v)
	case Nearest:
		return math.Round(v)
	default:
		return math.Floor(v)
	}
}

// String implements Stringer
func (r Rounding) String() string {
	switch r {
	case Ceil:
		return "ceil"
	case Nearest:
		return "round"
	default:
		return "floor"
	}
}

// RoundOffsets snaps the window offsets to whole pixels, keeping the
// opposite edges in place so that the rounded window still covers the
// original stop bounds.
func (w Window) RoundOffsets(r Rounding) Window {
	c0 := r.apply(w.ColOff)
	r0 := r.apply(w.RowOff)
	return Window{
		ColOff: c0,
		RowOff: r0,
		Width:  w.Width + w.ColOff - c0,
		Height: w.Height + w.RowOff - r0,
	}
}

// RoundShape snaps the window width and height to whole pixels.
func (w Window) RoundShape(r Rounding) Window {
	return Window{
		ColOff: w.ColOff,
		RowOff: w.RowOff,
		Width:  r.apply(w.Width),
		Height: r.apply(w.Height),
	}
}

// Round returns the smallest whole-pixel window covering w, i.e. offsets
// floored and stop bounds ceiled.
func (w Window) Round() Window {
	return w.RoundOffsets(Floor).RoundShape(Ceil)
}

// Transform returns the affine transform of the subraster bounded by w,
// relative to the transform tr of the full raster.
func (w Window) Transform(tr affine.Transform) affine.Transform {
	return tr.Mul(affine.Translation(w.ColOff, w.RowOff))
}

// Bounds returns the georeferenced extent covered by the window under the
// raster transform tr, in the order left,bottom,right,top. Rotated
// transforms are handled by sweeping the four corners.
func (w Window) Bounds(tr affine.Transform) (left, bottom, right, top float64) {
	left, bottom = math.Inf(1), math.Inf(1)
	right, top = math.Inf(-1), math.Inf(-1)
	for _, c := range w.corners() {
		x, y := tr.Apply(c[0], c[1])
		left = math.Min(left, x)
		bottom = math.Min(bottom, y)
		right = math.Max(right, x)
		top = math.Max(top, y)
	}
	return
}

func (w Window) corners() [4][2]float64 {
	return [4][2]float64{
		{w.ColOff, w.RowOff},
		{w.ColOff + w.Width, w.RowOff},
		{w.ColOff, w.RowOff + w.Height},
		{w.ColOff + w.Width, w.RowOff + w.Height},
	}
}

// FromBounds returns the window covering the georeferenced extent
// left,bottom,right,top under the raster transform tr. The resulting
// offsets and spans are fractional; use Round before handing the window to
// pixel I/O.
func FromBounds(tr affine.Transform, left, bottom, right, top float64) (Window, error) {
	inv, err := tr.Invert()
	if err != nil {
		return Window{}, fmt.Errorf("window from bounds: %w", err)
	}
	cmin, rmin := math.Inf(1), math.Inf(1)
	cmax, rmax := math.Inf(-1), math.Inf(-1)
	for _, p := range [4][2]float64{{left, bottom}, {left, top}, {right, bottom}, {right, top}} {
		col, row := inv.Apply(p[0], p[1])
		cmin = math.Min(cmin, col)
		rmin = math.Min(rmin, row)
		cmax = math.Max(cmax, col)
		rmax = math.Max(rmax, row)
	}
	return Window{ColOff: cmin, RowOff: rmin, Width: cmax - cmin, Height: rmax - rmin}, nil
}

// String implements Stringer
func (w Window) String() string {
	return fmt.Sprintf("Window(col_off=%g, row_off=%g, width=%g, height=%g)",
		w.ColOff, w.RowOff, w.Width, w.Height)
}
