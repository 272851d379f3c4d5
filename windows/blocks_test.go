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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectBlocks(width, height, bw, bh int) []Block {
	var blocks []Block
	for bl, ok := Blocks(width, height, bw, bh), true; ok; bl, ok = bl.Next() {
		blocks = append(blocks, bl)
	}
	return blocks
}

func TestBlocksCoverage(t *testing.T) {
	cases := []struct {
		w, h, bw, bh int
	}{
		{791, 718, 791, 3}, // striped tif layout
		{791, 718, 256, 256},
		{512, 512, 256, 256},
		{100, 100, 100, 100},
		{10, 10, 16, 16}, // single block larger than the raster
		{1, 1, 1, 1},
	}
	for _, c := range cases {
		blocks := collectBlocks(c.w, c.h, c.bw, c.bh)
		nx := (c.w + c.bw - 1) / c.bw
		ny := (c.h + c.bh - 1) / c.bh
		require.Len(t, blocks, nx*ny, "%dx%d/%dx%d", c.w, c.h, c.bw, c.bh)

		full := Window{0, 0, float64(c.w), float64(c.h)}
		union := blocks[0].Window
		var area float64
		for _, bl := range blocks {
			union = union.Union(bl.Window)
			area += bl.Window.Width * bl.Window.Height
			assert.True(t, full.Contains(bl.Window))
		}
		assert.Equal(t, full, union)
		// no gaps and no overlaps
		assert.Equal(t, float64(c.w*c.h), area)
		for i := range blocks {
			for j := i + 1; j < len(blocks); j++ {
				assert.False(t, blocks[i].Window.Intersects(blocks[j].Window),
					"%v / %v", blocks[i].Window, blocks[j].Window)
			}
		}
	}
}

func TestBlocksOrder(t *testing.T) {
	blocks := collectBlocks(600, 500, 256, 256)
	require.Len(t, blocks, 3*2)
	want := []Window{
		{0, 0, 256, 256}, {256, 0, 256, 256}, {512, 0, 88, 256},
		{0, 256, 256, 244}, {256, 256, 256, 244}, {512, 256, 88, 244},
	}
	for i, bl := range blocks {
		assert.Equal(t, want[i], bl.Window, "block %d", i)
		assert.Equal(t, i%3, bl.Col)
		assert.Equal(t, i/3, bl.Row)
	}
}

func TestBlocksRestartable(t *testing.T) {
	first := Blocks(600, 500, 256, 256)
	var n1 int
	for bl, ok := first, true; ok; bl, ok = bl.Next() {
		_ = bl
		n1++
	}
	// the first block is unchanged and iterates again
	var n2 int
	for bl, ok := first, true; ok; bl, ok = bl.Next() {
		_ = bl
		n2++
	}
	assert.Equal(t, n1, n2)
	assert.Equal(t, Window{0, 0, 256, 256}, first.Window)
}

func TestBlockWindow(t *testing.T) {
	assert.Equal(t, Window{512, 256, 88, 244}, BlockWindow(600, 500, 256, 256, 2, 1))
	assert.Equal(t, Window{}, BlockWindow(600, 500, 256, 256, 3, 0))
	assert.Equal(t, Window{}, BlockWindow(600, 500, 256, 256, -1, 0))

	nx, ny := BlockCount(600, 500, 256, 256)
	assert.Equal(t, 3, nx)
	assert.Equal(t, 2, ny)
}
