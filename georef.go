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
	"math"

	"github.com/airbusgeo/godal"
	"github.com/spatialgo/rasterkit/affine"
	"github.com/spatialgo/rasterkit/windows"
)

// Transform returns the dataset's pixel-to-world transform.
func (d *Dataset) Transform() (affine.Transform, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ds, err := d.engine()
	if err != nil {
		return affine.Transform{}, err
	}
	gt, err := ds.GeoTransform()
	if err != nil {
		return affine.Transform{}, fmt.Errorf("geotransform of %s: %w", d.path, err)
	}
	return affine.FromGeoTransform(gt), nil
}

// SetTransform sets the dataset's pixel-to-world transform.
func (d *Dataset) SetTransform(tr affine.Transform) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	ds, err := d.engine()
	if err != nil {
		return err
	}
	if err := ds.SetGeoTransform(tr.GeoTransform()); err != nil {
		return fmt.Errorf("set geotransform of %s: %w", d.path, err)
	}
	return nil
}

// CRS returns the dataset's coordinate reference system as an
// authority:code pair when one is identified (e.g. "EPSG:32618"), falling
// back to the raw WKT, or "" for non-georeferenced datasets.
func (d *Dataset) CRS() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.ds == nil {
		return ""
	}
	sr := d.ds.SpatialRef()
	defer sr.Close()
	if name, code := sr.AuthorityName(""), sr.AuthorityCode(""); name != "" && code != "" {
		return name + ":" + code
	}
	return d.ds.Projection()
}

// SetCRS sets the dataset's coordinate reference system. crs accepts
// anything the engine understands: "EPSG:4326", WKT, proj4.
func (d *Dataset) SetCRS(crs string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	ds, err := d.engine()
	if err != nil {
		return err
	}
	sr, err := godal.NewSpatialRef(crs)
	if err != nil {
		return fmt.Errorf("parse crs %q: %w", crs, err)
	}
	defer sr.Close()
	if err := ds.SetSpatialRef(sr); err != nil {
		return fmt.Errorf("set crs of %s: %w", d.path, err)
	}
	return nil
}

// NoData returns the nodata value of the dataset's first band.
func (d *Dataset) NoData() (nodata float64, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.ds == nil {
		return 0, false
	}
	bands := d.ds.Bands()
	if len(bands) == 0 {
		return 0, false
	}
	return bands[0].NoData()
}

// SetNoData sets the nodata value of all bands.
func (d *Dataset) SetNoData(nd float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	ds, err := d.engine()
	if err != nil {
		return err
	}
	if err := ds.SetNoData(nd); err != nil {
		return fmt.Errorf("set nodata of %s: %w", d.path, err)
	}
	return nil
}

// Bounds returns the dataset's georeferenced extent in the order
// left,bottom,right,top.
func (d *Dataset) Bounds() (left, bottom, right, top float64, err error) {
	tr, err := d.Transform()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	w, h := d.Shape()
	left, bottom, right, top = windows.Window{Width: float64(w), Height: float64(h)}.Bounds(tr)
	return left, bottom, right, top, nil
}

// WindowBounds returns the georeferenced extent covered by w, in the order
// left,bottom,right,top.
func (d *Dataset) WindowBounds(w windows.Window) (left, bottom, right, top float64, err error) {
	tr, err := d.Transform()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	left, bottom, right, top = w.Bounds(tr)
	return left, bottom, right, top, nil
}

// WindowTransform returns the pixel-to-world transform of the subraster
// bounded by w.
func (d *Dataset) WindowTransform(w windows.Window) (affine.Transform, error) {
	tr, err := d.Transform()
	if err != nil {
		return affine.Transform{}, err
	}
	return w.Transform(tr), nil
}

// Window returns the window covering the georeferenced extent
// left,bottom,right,top, with fractional offsets and spans. The window is
// not clipped to the dataset extent.
func (d *Dataset) Window(left, bottom, right, top float64) (windows.Window, error) {
	tr, err := d.Transform()
	if err != nil {
		return windows.Window{}, err
	}
	return windows.FromBounds(tr, left, bottom, right, top)
}

// Index returns the row and column of the pixel containing the world
// coordinate x,y. The returned indices may fall outside the raster extent.
func (d *Dataset) Index(x, y float64) (row, col int, err error) {
	tr, err := d.Transform()
	if err != nil {
		return 0, 0, err
	}
	inv, err := tr.Invert()
	if err != nil {
		return 0, 0, fmt.Errorf("index on %s: %w", d.path, err)
	}
	fcol, frow := inv.Apply(x, y)
	return int(math.Floor(frow)), int(math.Floor(fcol)), nil
}

// XY returns the world coordinate of the center of the pixel at row,col.
func (d *Dataset) XY(row, col int) (x, y float64, err error) {
	tr, err := d.Transform()
	if err != nil {
		return 0, 0, err
	}
	x, y = tr.Apply(float64(col)+0.5, float64(row)+0.5)
	return x, y, nil
}

// Resolution returns the absolute pixel width and height of the dataset in
// world units.
func (d *Dataset) Resolution() (xres, yres float64, err error) {
	tr, err := d.Transform()
	if err != nil {
		return 0, 0, err
	}
	xres, yres = tr.Resolution()
	return xres, yres, nil
}
