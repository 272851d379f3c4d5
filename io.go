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

package rasterkit

import (
	"fmt"

	"github.com/airbusgeo/godal"
	"github.com/spatialgo/rasterkit/windows"
)

// resolveWindow rounds a fractional window outward to whole pixels and
// clips it to the raster extent. The engine expects integral offsets and
// spans.
func resolveWindow(w *windows.Window, width, height int) (srcX, srcY, srcW, srcH int, err error) {
	full := windows.Window{Width: float64(width), Height: float64(height)}
	rw := full
	if w != nil {
		rw = w.Round().Crop(float64(height), float64(width))
		if rw.Empty() {
			return 0, 0, 0, 0, fmt.Errorf("%v: %w", *w, ErrWindowOutOfBounds)
		}
	}
	return int(rw.ColOff), int(rw.RowOff), int(rw.Width), int(rw.Height), nil
}

func (d *Dataset) ioOptions(ro *ioOpts, srcW, srcH int) []godal.DatasetIOOption {
	gopts := []godal.DatasetIOOption{godal.Window(srcW, srcH)}
	if len(ro.bands) > 0 {
		gopts = append(gopts, godal.Bands(ro.bands...))
	}
	if ro.resampling != godal.Nearest {
		gopts = append(gopts, godal.Resampling(ro.resampling))
	}
	if ro.bandInterleaved {
		gopts = append(gopts, godal.BandInterleaved())
	}
	if len(d.env.config) > 0 {
		gopts = append(gopts, godal.ConfigOption(d.env.config...))
	}
	if d.env.eh != nil {
		gopts = append(gopts, godal.ErrLogger(d.env.eh))
	}
	return gopts
}

// Read fills buffer with the dataset's pixels. buffer must be a slice of
// the appropriate Go type for the dataset's pixel data type, sized to the
// window (or to BufferSize when decimating). The default reads the whole
// raster, all bands, pixel interleaved. Multiple Reads may run
// concurrently.
func (d *Dataset) Read(buffer interface{}, opts ...IOOption) error {
	ro := ioOpts{}
	for _, o := range opts {
		o.setIOOpt(&ro)
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	ds, err := d.engine()
	if err != nil {
		return err
	}
	st := ds.Structure()
	srcX, srcY, srcW, srcH, err := resolveWindow(ro.window, st.SizeX, st.SizeY)
	if err != nil {
		return fmt.Errorf("read %s: %w", d.path, err)
	}
	bufW, bufH := srcW, srcH
	if ro.bufWidth > 0 {
		bufW, bufH = ro.bufWidth, ro.bufHeight
	}
	if err := ds.Read(srcX, srcY, buffer, bufW, bufH, d.ioOptions(&ro, srcW, srcH)...); err != nil {
		return fmt.Errorf("read %s: %w", d.path, err)
	}
	return nil
}

// Write copies buffer into the dataset's pixels. The dataset must have
// been opened with Update or created through Env.Create. Writes are
// serialized: two goroutines may not write through the same handle
// concurrently.
func (d *Dataset) Write(buffer interface{}, opts ...IOOption) error {
	ro := ioOpts{}
	for _, o := range opts {
		o.setIOOpt(&ro)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	ds, err := d.engine()
	if err != nil {
		return err
	}
	st := ds.Structure()
	srcX, srcY, srcW, srcH, err := resolveWindow(ro.window, st.SizeX, st.SizeY)
	if err != nil {
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	bufW, bufH := srcW, srcH
	if ro.bufWidth > 0 {
		bufW, bufH = ro.bufWidth, ro.bufHeight
	}
	if err := ds.Write(srcX, srcY, buffer, bufW, bufH, d.ioOptions(&ro, srcW, srcH)...); err != nil {
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	return nil
}

// BlockSize returns the native block dimensions of the given 0-indexed
// band, as reported by the engine. Reads and writes aligned to this
// tiling avoid decoding the same block twice.
func (d *Dataset) BlockSize(band int) (blockWidth, blockHeight int, err error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ds, err := d.engine()
	if err != nil {
		return 0, 0, err
	}
	bands := ds.Bands()
	if band < 0 || band >= len(bands) {
		return 0, 0, fmt.Errorf("band %d out of range [0,%d)", band, len(bands))
	}
	st := bands[band].Structure()
	return st.BlockSizeX, st.BlockSizeY, nil
}

// BlockWindows returns the first block of the band's native layout, from
// which the full row-major block sequence can be walked:
//
//	bl, err := ds.BlockWindows(0)
//	for ok := err == nil; ok; bl, ok = bl.Next() {
//		err := ds.Read(buf, rasterkit.InWindow(bl.Window), rasterkit.Bands(0))
//		...
//	}
func (d *Dataset) BlockWindows(band int) (windows.Block, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ds, err := d.engine()
	if err != nil {
		return windows.Block{}, err
	}
	bands := ds.Bands()
	if band < 0 || band >= len(bands) {
		return windows.Block{}, fmt.Errorf("band %d out of range [0,%d)", band, len(bands))
	}
	st := bands[band].Structure()
	return windows.Blocks(st.SizeX, st.SizeY, st.BlockSizeX, st.BlockSizeY), nil
}
