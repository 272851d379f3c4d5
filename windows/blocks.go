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

// Block is one tile of a raster's native block layout. Row and Col are the
// block indices in the layout grid, Window the pixel region the block
// covers. Blocks on the right and bottom edges are clipped to the raster
// extent.
type Block struct {
	Row, Col int
	Window   Window
	grid     blockGrid
}

type blockGrid struct {
	w, h   int // raster size
	bw, bh int // block size
	nx, ny int // grid size
}

func (g blockGrid) window(i, j int) Window {
	w, h := g.bw, g.bh
	if i == g.nx-1 {
		w = g.w - i*g.bw
	}
	if j == g.ny-1 {
		h = g.h - j*g.bh
	}
	return Window{
		ColOff: float64(i * g.bw),
		RowOff: float64(j * g.bh),
		Width:  float64(w),
		Height: float64(h),
	}
}

// Blocks returns the first block of the layout covering a width x height
// raster tiled in blockWidth x blockHeight blocks. Iteration is row-major,
// the blocks covering the raster extent exactly with no overlap:
//
//	for bl, ok := windows.Blocks(w, h, bw, bh), true; ok; bl, ok = bl.Next() {
//		...
//	}
//
// All sizes must be strictly positive.
func Blocks(width, height, blockWidth, blockHeight int) Block {
	g := blockGrid{
		w: width, h: height,
		bw: blockWidth, bh: blockHeight,
		nx: (width + blockWidth - 1) / blockWidth,
		ny: (height + blockHeight - 1) / blockHeight,
	}
	return Block{Window: g.window(0, 0), grid: g}
}

// Next returns the following block in scanline order. It returns
// Block{},false once the layout is exhausted. Next does not mutate its
// receiver: keeping the first block around restarts the iteration.
func (b Block) Next() (Block, bool) {
	nb := b
	nb.Col++
	if nb.Col >= nb.grid.nx {
		nb.Col = 0
		nb.Row++
	}
	if nb.Row >= nb.grid.ny {
		return Block{}, false
	}
	nb.Window = nb.grid.window(nb.Col, nb.Row)
	return nb, true
}

// Count returns the number of blocks in the column and row dimensions of
// the layout.
func (b Block) Count() (nx, ny int) {
	return b.grid.nx, b.grid.ny
}

// BlockCount returns the number of blocks needed to tile a width x height
// raster in blockWidth x blockHeight blocks.
func BlockCount(width, height, blockWidth, blockHeight int) (nx, ny int) {
	return (width + blockWidth - 1) / blockWidth,
		(height + blockHeight - 1) / blockHeight
}

// BlockWindow returns the window of the i,j block of a width x height
// raster tiled in blockWidth x blockHeight blocks. The empty window is
// returned for indices outside the layout grid.
func BlockWindow(width, height, blockWidth, blockHeight, i, j int) Window {
	nx, ny := BlockCount(width, height, blockWidth, blockHeight)
	if i < 0 || j < 0 || i >= nx || j >= ny {
		return Window{}
	}
	g := blockGrid{w: width, h: height, bw: blockWidth, bh: blockHeight, nx: nx, ny: ny}
	return g.window(i, j)
}
