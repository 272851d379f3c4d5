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

import (
	"errors"
	"testing"

	"github.com/spatialgo/rasterkit/affine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	w, err := New(10, 100, 490, 400)
	require.NoError(t, err)
	assert.Equal(t, Window{10, 100, 490, 400}, w)
	_, err = New(0, 0, -1, 10)
	assert.True(t, errors.Is(err, ErrInvalidWindow))
	_, err = New(0, 0, 10, -1)
	assert.True(t, errors.Is(err, ErrInvalidWindow))
}

func TestFromSlices(t *testing.T) {
	w, err := FromSlices(Until(4), Until(4), -1, -1)
	require.NoError(t, err)
	assert.Equal(t, Window{0, 0, 4, 4}, w)

	w, err = FromSlices(From(4), From(4), 1000, 500)
	require.NoError(t, err)
	assert.Equal(t, Window{4, 4, 500 - 4, 1000 - 4}, w)

	w, err = FromSlices(Span(10, 500), Span(100, 500), -1, -1)
	require.NoError(t, err)
	assert.Equal(t, Window{100, 10, 400, 490}, w)

	// negative bounds count from the far edge
	w, err = FromSlices(From(-10), Full(), 1000, 500)
	require.NoError(t, err)
	assert.Equal(t, Window{0, 990, 500, 10}, w)

	w, err = FromSlices(Span(-100, -50), Span(-100, -50), 1000, 500)
	require.NoError(t, err)
	assert.Equal(t, Window{400, 900, 50, 50}, w)

	// open or negative bounds without an extent
	_, err = FromSlices(Full(), Full(), -1, -1)
	assert.True(t, errors.Is(err, ErrInvalidWindow))
	_, err = FromSlices(From(-10), Until(4), -1, -1)
	assert.True(t, errors.Is(err, ErrInvalidWindow))

	// inverted range
	_, err = FromSlices(Span(10, 4), Until(4), -1, -1)
	assert.True(t, errors.Is(err, ErrInvalidWindow))
}

func TestSlicesRoundTrip(t *testing.T) {
	w := Window{100, 10, 400, 490}
	rows, cols := w.Slices()
	w2, err := FromSlices(rows, cols, -1, -1)
	require.NoError(t, err)
	assert.Equal(t, w, w2)
}

func TestUnionIntersection(t *testing.T) {
	w1 := Window{10, 100, 490, 400}
	w2 := Window{50, 10, 200, 140}

	u := w1.Union(w2)
	assert.Equal(t, Window{10, 10, 490, 490}, u)
	assert.Equal(t, u, w2.Union(w1))
	assert.True(t, u.Contains(w1))
	assert.True(t, u.Contains(w2))

	i, err := w1.Intersection(w2)
	require.NoError(t, err)
	assert.Equal(t, Window{50, 100, 200, 50}, i)
	i2, err := w2.Intersection(w1)
	require.NoError(t, err)
	assert.Equal(t, i, i2)
	assert.True(t, w1.Contains(i))
	assert.True(t, w2.Contains(i))
}

func TestEmptyIntersection(t *testing.T) {
	w1 := Window{0, 0, 10, 10}
	w2 := Window{20, 20, 10, 10}
	assert.False(t, w1.Intersects(w2))
	_, err := w1.Intersection(w2)
	assert.True(t, errors.Is(err, ErrEmptyIntersection))

	// edge-adjacent windows do not intersect
	w3 := Window{10, 0, 10, 10}
	assert.False(t, w1.Intersects(w3))
	_, err = w1.Intersection(w3)
	assert.True(t, errors.Is(err, ErrEmptyIntersection))
}

func TestCrop(t *testing.T) {
	w := Window{-10, -10, 520, 420}
	assert.Equal(t, Window{0, 0, 500, 400}, w.Crop(400, 500))
	// fully outside the extent
	assert.Equal(t, 0.0, Window{600, 0, 10, 10}.Crop(400, 500).Width)
	// already inside
	in := Window{10, 10, 20, 20}
	assert.Equal(t, in, in.Crop(400, 500))
}

func TestRounding(t *testing.T) {
	w := Window{10.2, 9.8, 99.5, 100.1}

	ro := w.RoundOffsets(Floor)
	assert.Equal(t, 10.0, ro.ColOff)
	assert.Equal(t, 9.0, ro.RowOff)
	// stop bounds stay put when offsets are floored
	assert.InDelta(t, 109.7, ro.ColOff+ro.Width, 1e-9)
	assert.InDelta(t, 109.9, ro.RowOff+ro.Height, 1e-9)

	rs := w.RoundShape(Ceil)
	assert.Equal(t, 100.0, rs.Width)
	assert.Equal(t, 101.0, rs.Height)

	r := w.Round()
	assert.Equal(t, Window{10, 9, 100, 101}, r)
	assert.True(t, r.Contains(w))
}

func TestWindowTransformAndBounds(t *testing.T) {
	tr := affine.FromOrigin(101985.0, 2826915.0, 300.0, 300.0)
	w := Window{256, 256, 128, 128}

	wtr := w.Transform(tr)
	x, y := wtr.Apply(0, 0)
	wantX, wantY := tr.Apply(256, 256)
	assert.Equal(t, wantX, x)
	assert.Equal(t, wantY, y)

	left, bottom, right, top := w.Bounds(tr)
	assert.Equal(t, 101985.0+256*300, left)
	assert.Equal(t, 101985.0+384*300, right)
	assert.Equal(t, 2826915.0-384*300, bottom)
	assert.Equal(t, 2826915.0-256*300, top)

	w2, err := FromBounds(tr, left, bottom, right, top)
	require.NoError(t, err)
	assert.InDelta(t, w.ColOff, w2.ColOff, 1e-9)
	assert.InDelta(t, w.RowOff, w2.RowOff, 1e-9)
	assert.InDelta(t, w.Width, w2.Width, 1e-9)
	assert.InDelta(t, w.Height, w2.Height, 1e-9)
}

func TestFromBoundsSingular(t *testing.T) {
	_, err := FromBounds(affine.Transform{}, 0, 0, 1, 1)
	assert.True(t, errors.Is(err, affine.ErrSingularTransform))
}

func TestContainsPoint(t *testing.T) {
	w := Window{10, 10, 5, 5}
	assert.True(t, w.ContainsPoint(10, 10))
	assert.True(t, w.ContainsPoint(14.9, 14.9))
	assert.False(t, w.ContainsPoint(15, 10))
	assert.False(t, w.ContainsPoint(10, 9.9))
}
