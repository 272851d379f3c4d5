// Copyright 2023 the rasterkit authors.
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

package rasterkit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spatialgo/rasterkit/affine"
	"github.com/spatialgo/rasterkit/windows"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnv(t *testing.T) *Env {
	t.Helper()
	env, err := NewEnv(context.Background())
	require.NoError(t, err)
	return env
}

func TestCreateReadWrite(t *testing.T) {
	env := testEnv(t)
	tmpname := filepath.Join(t.TempDir(), "test.tif")

	tr := affine.FromOrigin(100000, 200000, 10, 10)
	ds, err := env.Create(LocalPath(tmpname), "GTiff", 8, 8, 1, Byte,
		Georeference(tr),
		Projection("EPSG:32618"),
		NoData(255),
	)
	require.NoError(t, err)

	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(t, ds.Write(data))
	require.NoError(t, ds.Close())

	ds, err = env.Open(LocalPath(tmpname))
	require.NoError(t, err)
	defer ds.Close()

	w, h := ds.Shape()
	assert.Equal(t, 8, w)
	assert.Equal(t, 8, h)
	assert.Equal(t, 1, ds.Count())
	assert.Equal(t, Byte, ds.DataType())

	back := make([]byte, 64)
	require.NoError(t, ds.Read(back))
	assert.Equal(t, data, back)

	// windowed read
	win, err := windows.New(2, 1, 4, 3)
	require.NoError(t, err)
	sub := make([]byte, 12)
	require.NoError(t, ds.Read(sub, InWindow(win)))
	assert.Equal(t, byte(8+2), sub[0])
	assert.Equal(t, byte(3*8+5), sub[11])

	// fractional windows are rounded outward before reading
	fwin := windows.Window{ColOff: 2.4, RowOff: 1.2, Width: 3.2, Height: 2.4}
	fsub := make([]byte, (2+2)*(1+2))
	require.NoError(t, ds.Read(fsub, InWindow(fwin)))
	assert.Equal(t, byte(8+2), fsub[0])

	// windows entirely off the raster fail
	owin, err := windows.New(100, 100, 4, 4)
	require.NoError(t, err)
	err = ds.Read(sub, InWindow(owin))
	assert.ErrorIs(t, err, ErrWindowOutOfBounds)
}

func TestWriteWindow(t *testing.T) {
	env := testEnv(t)
	tmpname := filepath.Join(t.TempDir(), "test.tif")

	ds, err := env.Create(LocalPath(tmpname), "GTiff", 8, 8, 1, Byte)
	require.NoError(t, err)
	defer ds.Close()

	patch := []byte{1, 2, 3, 4}
	win, err := windows.New(3, 3, 2, 2)
	require.NoError(t, err)
	require.NoError(t, ds.Write(patch, InWindow(win)))

	back := make([]byte, 4)
	require.NoError(t, ds.Read(back, InWindow(win)))
	assert.Equal(t, patch, back)

	full := make([]byte, 64)
	require.NoError(t, ds.Read(full))
	assert.Equal(t, byte(0), full[0])
	assert.Equal(t, byte(1), full[3*8+3])
	assert.Equal(t, byte(4), full[4*8+4])
}

func TestReadDecimated(t *testing.T) {
	env := testEnv(t)
	tmpname := filepath.Join(t.TempDir(), "test.tif")

	ds, err := env.Create(LocalPath(tmpname), "GTiff", 8, 8, 1, Byte)
	require.NoError(t, err)
	defer ds.Close()

	// constant 2x2 cells so the 2:1 nearest decimation is exact
	data := make([]byte, 64)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			data[row*8+col] = byte((row/2)*4 + col/2)
		}
	}
	require.NoError(t, ds.Write(data))

	small := make([]byte, 16)
	require.NoError(t, ds.Read(small, BufferSize(4, 4)))
	for i := range small {
		assert.Equal(t, byte(i), small[i], "pixel %d", i)
	}

	// decimating a window works the same way
	win, err := windows.New(0, 0, 4, 4)
	require.NoError(t, err)
	quarter := make([]byte, 4)
	require.NoError(t, ds.Read(quarter, InWindow(win), BufferSize(2, 2)))
	assert.Equal(t, []byte{0, 1, 4, 5}, quarter)
}

func TestReadBands(t *testing.T) {
	env := testEnv(t)
	tmpname := filepath.Join(t.TempDir(), "test.tif")

	ds, err := env.Create(LocalPath(tmpname), "GTiff", 4, 4, 3, Byte)
	require.NoError(t, err)
	defer ds.Close()

	for band := 0; band < 3; band++ {
		fill := make([]byte, 16)
		for i := range fill {
			fill[i] = byte(10 * (band + 1))
		}
		require.NoError(t, ds.Write(fill, Bands(band)))
	}

	// default read is all bands, pixel interleaved
	all := make([]byte, 48)
	require.NoError(t, ds.Read(all))
	assert.Equal(t, []byte{10, 20, 30}, all[:3])
	assert.Equal(t, []byte{10, 20, 30}, all[45:])

	one := make([]byte, 16)
	require.NoError(t, ds.Read(one, Bands(2)))
	for i := range one {
		assert.Equal(t, byte(30), one[i], "pixel %d", i)
	}

	two := make([]byte, 32)
	require.NoError(t, ds.Read(two, Bands(0, 2)))
	assert.Equal(t, []byte{10, 30}, two[:2])

	planar := make([]byte, 48)
	require.NoError(t, ds.Read(planar, BandInterleaved()))
	assert.Equal(t, byte(10), planar[0])
	assert.Equal(t, byte(10), planar[15])
	assert.Equal(t, byte(20), planar[16])
	assert.Equal(t, byte(30), planar[47])
}

func TestCreateNonLocal(t *testing.T) {
	env := testEnv(t)
	_, err := env.Create(MemoryFile{Name: "x.tif"}, "GTiff", 4, 4, 1, Byte)
	assert.ErrorIs(t, err, ErrReadOnlyPath)
	_, err = env.Create(RemoteURI{Scheme: "gs", Bucket: "b", Key: "x.tif"}, "GTiff", 4, 4, 1, Byte)
	assert.ErrorIs(t, err, ErrReadOnlyPath)
}

func TestClosedDataset(t *testing.T) {
	env := testEnv(t)
	tmpname := filepath.Join(t.TempDir(), "test.tif")
	ds, err := env.Create(LocalPath(tmpname), "GTiff", 4, 4, 1, Byte)
	require.NoError(t, err)
	require.NoError(t, ds.Close())

	assert.ErrorIs(t, ds.Close(), ErrClosed)
	assert.ErrorIs(t, ds.Read(make([]byte, 16)), ErrClosed)
	assert.ErrorIs(t, ds.Write(make([]byte, 16)), ErrClosed)
	_, err = ds.Transform()
	assert.ErrorIs(t, err, ErrClosed)
	w, h := ds.Shape()
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestGeoreferencing(t *testing.T) {
	env := testEnv(t)
	tmpname := filepath.Join(t.TempDir(), "test.tif")

	tr := affine.FromOrigin(100000, 200000, 10, 10)
	ds, err := env.Create(LocalPath(tmpname), "GTiff", 48, 32, 1, Byte,
		Georeference(tr), Projection("EPSG:32618"))
	require.NoError(t, err)
	defer ds.Close()

	got, err := ds.Transform()
	require.NoError(t, err)
	assert.True(t, got.AlmostEqual(tr, 1e-9))
	assert.Equal(t, "EPSG:32618", ds.CRS())

	left, bottom, right, top, err := ds.Bounds()
	require.NoError(t, err)
	assert.InDelta(t, 100000, left, 1e-6)
	assert.InDelta(t, 199680, bottom, 1e-6)
	assert.InDelta(t, 100480, right, 1e-6)
	assert.InDelta(t, 200000, top, 1e-6)

	row, col, err := ds.Index(100245, 199835)
	require.NoError(t, err)
	assert.Equal(t, 16, row)
	assert.Equal(t, 24, col)

	x, y, err := ds.XY(16, 24)
	require.NoError(t, err)
	assert.InDelta(t, 100245, x, 1e-6)
	assert.InDelta(t, 199835, y, 1e-6)

	win, err := ds.Window(100100, 199900, 100200, 200000)
	require.NoError(t, err)
	assert.InDelta(t, 10, win.ColOff, 1e-9)
	assert.InDelta(t, 0, win.RowOff, 1e-9)
	assert.InDelta(t, 10, win.Width, 1e-9)
	assert.InDelta(t, 10, win.Height, 1e-9)

	wtr, err := ds.WindowTransform(win)
	require.NoError(t, err)
	wx, wy := wtr.Apply(0, 0)
	assert.InDelta(t, 100100, wx, 1e-9)
	assert.InDelta(t, 200000, wy, 1e-9)

	xres, yres, err := ds.Resolution()
	require.NoError(t, err)
	assert.InDelta(t, 10, xres, 1e-9)
	assert.InDelta(t, 10, yres, 1e-9)
}

func TestBlockWindows(t *testing.T) {
	env := testEnv(t)
	tmpname := filepath.Join(t.TempDir(), "test.tif")

	ds, err := env.Create(LocalPath(tmpname), "GTiff", 48, 32, 1, Byte,
		CreationOption("TILED=YES", "BLOCKXSIZE=16", "BLOCKYSIZE=16"))
	require.NoError(t, err)
	defer ds.Close()

	bw, bh, err := ds.BlockSize(0)
	require.NoError(t, err)
	assert.Equal(t, 16, bw)
	assert.Equal(t, 16, bh)

	bl, err := ds.BlockWindows(0)
	require.NoError(t, err)
	nx, ny := bl.Count()
	assert.Equal(t, 3, nx)
	assert.Equal(t, 2, ny)

	var union windows.Window
	n := 0
	for ok := true; ok; bl, ok = bl.Next() {
		if n == 0 {
			union = bl.Window
		} else {
			union = union.Union(bl.Window)
		}
		n++
	}
	assert.Equal(t, 6, n)
	assert.Equal(t, windows.Window{Width: 48, Height: 32}, union)
}

func TestProfile(t *testing.T) {
	env := testEnv(t)
	tmpname := filepath.Join(t.TempDir(), "test.tif")

	tr := affine.FromOrigin(0, 100, 1, 1)
	ds, err := env.Create(LocalPath(tmpname), "GTiff", 10, 100, 3, UInt16,
		Georeference(tr), NoData(0))
	require.NoError(t, err)
	defer ds.Close()

	prof, err := ds.Profile()
	require.NoError(t, err)
	assert.Equal(t, tmpname, prof.Path)
	assert.Equal(t, "GTiff", prof.Driver)
	assert.Equal(t, 10, prof.Width)
	assert.Equal(t, 100, prof.Height)
	assert.Equal(t, 3, prof.Count)
	require.NotNil(t, prof.NoData)
	assert.Equal(t, 0.0, *prof.NoData)
	require.NotNil(t, prof.Transform)
	assert.Equal(t, tr, affine.Transform{
		A: prof.Transform[0], B: prof.Transform[1], C: prof.Transform[2],
		D: prof.Transform[3], E: prof.Transform[4], F: prof.Transform[5],
	})
}

func TestMemoryDataset(t *testing.T) {
	env := testEnv(t)
	tmpname := filepath.Join(t.TempDir(), "test.tif")

	ds, err := env.Create(LocalPath(tmpname), "GTiff", 8, 8, 1, Byte)
	require.NoError(t, err)
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(t, ds.Write(data))
	require.NoError(t, ds.Close())

	raw, err := os.ReadFile(tmpname)
	require.NoError(t, err)

	fs := NewMemFS()
	fs.WriteFile("test.tif", raw)
	menv, err := NewEnv(context.Background(), WithMemFS(fs))
	require.NoError(t, err)

	mds, err := menv.Open(MemoryFile{Name: "test.tif"})
	require.NoError(t, err)
	defer mds.Close()

	back := make([]byte, 64)
	require.NoError(t, mds.Read(back))
	assert.Equal(t, data, back)
}

func TestSettingsFromEnvironment(t *testing.T) {
	t.Setenv("RASTERKIT_BLOCKSIZE", "512k")
	t.Setenv("RASTERKIT_NUM_CACHED_BLOCKS", "64")
	t.Setenv("RASTERKIT_CONFIG", "GDAL_NUM_THREADS=2,GTIFF_DIRECT_IO=YES")

	s, err := SettingsFromEnvironment()
	require.NoError(t, err)
	assert.Equal(t, "512k", s.BlockSize)
	assert.Equal(t, 64, s.NumCachedBlocks)
	assert.False(t, s.GCS)

	opts := s.EnvOptions()
	env, err := NewEnv(context.Background(), opts...)
	require.NoError(t, err)
	assert.Contains(t, env.Config(), "GDAL_NUM_THREADS=2")
	assert.Contains(t, env.Config(), "GTIFF_DIRECT_IO=YES")
}
