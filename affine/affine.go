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

// Package affine implements the 2D affine transformation used to relate
// pixel (col,row) indices to georeferenced (x,y) coordinates.
//
// A Transform is the augmented matrix
//
//	| x |   | A  B  C | | col |
//	| y | = | D  E  F | | row |
//	| 1 |   | 0  0  1 | |  1  |
//
// C and F are the world coordinates of the raster's upper left corner. Note
// that GDAL orders the same six coefficients differently; use
// FromGeoTransform and Transform.GeoTransform when interoperating with GDAL
// style geotransform arrays.
package affine

import (
	"errors"
	"fmt"
	"math"
)

// ErrSingularTransform is returned when inverting a transform whose
// determinant is zero or too close to zero for a meaningful inverse.
var ErrSingularTransform = errors.New("singular transform")

// singularTol is relative to the magnitude of the determinant terms so that
// uniformly scaled transforms do not spuriously report as singular.
const singularTol = 1e-10

// Transform is an immutable 2D affine transformation. The zero value is the
// (degenerate) all-zero matrix; use Identity for a no-op transform.
type Transform struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{1, 0, 0, 0, 1, 0}
}

// Translation returns a transform offsetting coordinates by xoff,yoff.
func Translation(xoff, yoff float64) Transform {
	return Transform{1, 0, xoff, 0, 1, yoff}
}

// Scale returns a transform scaling coordinates by sx,sy.
func Scale(sx, sy float64) Transform {
	return Transform{sx, 0, 0, 0, sy, 0}
}

// Rotation returns a transform rotating coordinates by angle degrees
// counter-clockwise around the origin.
func Rotation(angle float64) Transform {
	rad := angle * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Transform{cos, -sin, 0, sin, cos, 0}
}

// FromOrigin returns the transform of a north-up raster whose upper left
// corner sits at west,north with the given pixel sizes. ysize is expressed
// as a positive height, i.e. the resulting E coefficient is -ysize.
func FromOrigin(west, north, xsize, ysize float64) Transform {
	return Transform{xsize, 0, west, 0, -ysize, north}
}

// FromBounds returns the transform of a north-up raster of width x height
// pixels covering the given georeferenced extent.
func FromBounds(west, south, east, north float64, width, height int) Transform {
	return Transform{
		(east - west) / float64(width), 0, west,
		0, (south - north) / float64(height), north,
	}
}

// FromGeoTransform converts a GDAL geotransform array, ordered
// [C, A, B, F, D, E], to a Transform.
func FromGeoTransform(gt [6]float64) Transform {
	return Transform{gt[1], gt[2], gt[0], gt[4], gt[5], gt[3]}
}

// GeoTransform returns the transform as a GDAL geotransform array.
func (t Transform) GeoTransform() [6]float64 {
	return [6]float64{t.C, t.A, t.B, t.F, t.D, t.E}
}

// Apply maps the pixel coordinate col,row to its x,y world coordinate.
func (t Transform) Apply(col, row float64) (x, y float64) {
	return t.A*col + t.B*row + t.C, t.D*col + t.E*row + t.F
}

// Determinant returns the determinant of the linear part of the transform.
func (t Transform) Determinant() float64 {
	return t.A*t.E - t.B*t.D
}

// Invert returns the transform mapping world coordinates back to pixel
// coordinates. ErrSingularTransform is returned if the determinant is zero
// within floating point tolerance.
func (t Transform) Invert() (Transform, error) {
	det := t.Determinant()
	if math.Abs(det) <= singularTol*(math.Abs(t.A*t.E)+math.Abs(t.B*t.D)) {
		return Transform{}, fmt.Errorf("invert [%g %g %g %g]: %w", t.A, t.B, t.D, t.E, ErrSingularTransform)
	}
	idet := 1 / det
	ra := t.E * idet
	rb := -t.B * idet
	rd := -t.D * idet
	re := t.A * idet
	return Transform{
		ra, rb, -t.C*ra - t.F*rb,
		rd, re, -t.C*rd - t.F*re,
	}, nil
}

// Mul composes two transforms. The returned transform applies o first, then
// t, i.e. t.Mul(o).Apply(p) == t.Apply(o.Apply(p)).
func (t Transform) Mul(o Transform) Transform {
	return Transform{
		t.A*o.A + t.B*o.D,
		t.A*o.B + t.B*o.E,
		t.A*o.C + t.B*o.F + t.C,
		t.D*o.A + t.E*o.D,
		t.D*o.B + t.E*o.E,
		t.D*o.C + t.E*o.F + t.F,
	}
}

// Resolution returns the absolute pixel width and height of the transform.
func (t Transform) Resolution() (xres, yres float64) {
	return math.Abs(t.A), math.Abs(t.E)
}

// IsRectilinear reports wether the transform has no rotation or shear terms,
// i.e. pixel rows and columns are parallel to the coordinate axes.
func (t Transform) IsRectilinear() bool {
	return t.B == 0 && t.D == 0
}

// IsIdentity reports wether the transform is the identity.
func (t Transform) IsIdentity() bool {
	return t == Identity()
}

// AlmostEqual reports wether all coefficients of the two transforms are
// within tol of each other.
func (t Transform) AlmostEqual(o Transform, tol float64) bool {
	return math.Abs(t.A-o.A) <= tol &&
		math.Abs(t.B-o.B) <= tol &&
		math.Abs(t.C-o.C) <= tol &&
		math.Abs(t.D-o.D) <= tol &&
		math.Abs(t.E-o.E) <= tol &&
		math.Abs(t.F-o.F) <= tol
}

// String implements Stringer
func (t Transform) String() string {
	return fmt.Sprintf("|% g,% g,% g|\n|% g,% g,% g|",
		t.A, t.B, t.C, t.D, t.E, t.F)
}
