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

// Package rasterkit provides file-like access to georeferenced raster
// datasets: open, windowed read/write, close. Pixel decoding, compression,
// reprojection and storage access are delegated to the GDAL engine through
// github.com/airbusgeo/godal; this package owns the ergonomics around it:
// an explicit Env instead of process-global engine state, a closed Path
// variant instead of duck-typed location strings, and the window and
// transform arithmetic of the companion windows and affine packages.
//
//	env, err := rasterkit.NewEnv(ctx, rasterkit.WithGCS())
//	...
//	ds, err := env.Open(rasterkit.LocalPath("scene.tif"))
//	defer ds.Close()
//	w := windows.Window{ColOff: 256, RowOff: 256, Width: 512, Height: 512}
//	pix := make([]byte, 512*512)
//	err = ds.Read(pix, rasterkit.InWindow(w), rasterkit.Bands(0))
package rasterkit

import (
	"errors"
	"fmt"
	"sync"

	"github.com/airbusgeo/godal"
)

var (
	// ErrClosed is returned by operations on a closed Dataset.
	ErrClosed = errors.New("dataset closed")
	// ErrReadOnlyPath is returned when creating a dataset on a Path
	// variant that cannot be written through the engine.
	ErrReadOnlyPath = errors.New("path is not writable")
	// ErrWindowOutOfBounds is returned by I/O whose window, once rounded
	// and clipped, covers no pixels of the dataset.
	ErrWindowOutOfBounds = errors.New("window outside dataset extent")
)

// DataType is a pixel data type, re-exported from the engine.
type DataType = godal.DataType

// Supported pixel data types
const (
	Byte    = godal.Byte
	UInt16  = godal.UInt16
	Int16   = godal.Int16
	UInt32  = godal.UInt32
	Int32   = godal.Int32
	Float32 = godal.Float32
	Float64 = godal.Float64
)

// ResamplingAlg is a resampling method, re-exported from the engine.
type ResamplingAlg = godal.ResamplingAlg

// Dataset is an open raster. It wraps the engine handle together with the
// Env it was opened through and its resolved Path.
//
// A Dataset may be shared between goroutines: reads run concurrently,
// writes and metadata mutations are serialized behind an internal lock.
// Concurrency of the underlying pixel I/O is then bounded only by the
// engine's own guarantees.
type Dataset struct {
	mu   sync.RWMutex
	ds   *godal.Dataset
	env  *Env
	path Path
}

// Open opens the raster at p. The engine configuration carried by the Env
// is applied to this call only.
func (e *Env) Open(p Path, opts ...OpenOption) (*Dataset, error) {
	oo := openOpts{}
	for _, o := range opts {
		o.setOpenOpt(&oo)
	}
	gopts := []godal.OpenOption{godal.RasterOnly()}
	if len(e.config) > 0 {
		gopts = append(gopts, godal.ConfigOption(e.config...))
	}
	if e.eh != nil {
		gopts = append(gopts, godal.ErrLogger(e.eh))
	}
	if oo.update {
		gopts = append(gopts, godal.Update())
	}
	if oo.shared {
		gopts = append(gopts, godal.Shared())
	}
	if len(oo.drivers) > 0 {
		gopts = append(gopts, godal.Drivers(oo.drivers...))
	}
	if len(oo.driverKV) > 0 {
		gopts = append(gopts, godal.DriverOpenOption(oo.driverKV...))
	}
	ds, err := godal.Open(p.VSIPath(), gopts...)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	return &Dataset{ds: ds, env: e, path: p}, nil
}

// Create creates a new raster of width x height pixels and count bands at
// p. Only LocalPath targets are writable: the archive, remote and memory
// variants are all read-only through the engine's handler interface.
func (e *Env) Create(p Path, driver string, width, height, count int, dtype DataType, opts ...CreateOption) (*Dataset, error) {
	if _, ok := p.(LocalPath); !ok {
		return nil, fmt.Errorf("create %s: %w", p, ErrReadOnlyPath)
	}
	co := createOpts{}
	for _, o := range opts {
		o.setCreateOpt(&co)
	}
	gopts := []godal.DatasetCreateOption{}
	if len(e.config) > 0 {
		gopts = append(gopts, godal.ConfigOption(e.config...))
	}
	if e.eh != nil {
		gopts = append(gopts, godal.ErrLogger(e.eh))
	}
	if len(co.creation) > 0 {
		gopts = append(gopts, godal.CreationOption(co.creation...))
	}
	ds, err := godal.Create(godal.DriverName(driver), p.VSIPath(), count, dtype, width, height, gopts...)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", p, err)
	}
	d := &Dataset{ds: ds, env: e, path: p}
	if co.transform != nil {
		if err := d.SetTransform(*co.transform); err != nil {
			d.Close()
			return nil, err
		}
	}
	if co.crs != "" {
		if err := d.SetCRS(co.crs); err != nil {
			d.Close()
			return nil, err
		}
	}
	if co.nodata != nil {
		if err := d.SetNoData(*co.nodata); err != nil {
			d.Close()
			return nil, err
		}
	}
	return d, nil
}

// Path returns the resolved path the dataset was opened from.
func (d *Dataset) Path() Path {
	return d.path
}

// Close releases the engine handle, flushing any pending writes. Closing an
// already closed dataset returns ErrClosed.
func (d *Dataset) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ds == nil {
		return ErrClosed
	}
	err := d.ds.Close()
	d.ds = nil
	if err != nil {
		return fmt.Errorf("close %s: %w", d.path, err)
	}
	return nil
}

// engine returns the live handle. Callers must hold d.mu.
func (d *Dataset) engine() (*godal.Dataset, error) {
	if d.ds == nil {
		return nil, ErrClosed
	}
	return d.ds, nil
}
