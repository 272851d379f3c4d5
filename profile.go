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

// Shape returns the dataset's pixel dimensions. A closed dataset has shape
// 0,0.
func (d *Dataset) Shape() (width, height int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.ds == nil {
		return 0, 0
	}
	st := d.ds.Structure()
	return st.SizeX, st.SizeY
}

// Count returns the number of bands.
func (d *Dataset) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.ds == nil {
		return 0
	}
	return d.ds.Structure().NBands
}

// DataType returns the pixel data type of the dataset's bands.
func (d *Dataset) DataType() DataType {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.ds == nil {
		return 0
	}
	return d.ds.Structure().DataType
}

// Profile is a snapshot of a dataset's structure and georeferencing,
// suitable for JSON output or for creating a compatible dataset.
type Profile struct {
	Path        string      `json:"path,omitempty"`
	Driver      string      `json:"driver"`
	DataType    string      `json:"dtype"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Count       int         `json:"count"`
	CRS         string      `json:"crs,omitempty"`
	Transform   *[6]float64 `json:"transform,omitempty"`
	Bounds      *[4]float64 `json:"bounds,omitempty"`
	NoData      *float64    `json:"nodata,omitempty"`
	BlockWidth  int         `json:"blockxsize"`
	BlockHeight int         `json:"blockysize"`
}

// Profile returns the dataset's profile. Transform and Bounds are nil for
// non-georeferenced datasets; Transform uses the row-major affine
// coefficient order A,B,C,D,E,F, not the engine's geotransform order.
func (d *Dataset) Profile() (Profile, error) {
	d.mu.RLock()
	ds, err := d.engine()
	if err != nil {
		d.mu.RUnlock()
		return Profile{}, err
	}
	st := ds.Structure()
	p := Profile{
		Path:        d.path.String(),
		Driver:      ds.Driver().ShortName(),
		DataType:    st.DataType.String(),
		Width:       st.SizeX,
		Height:      st.SizeY,
		Count:       st.NBands,
		BlockWidth:  st.BlockSizeX,
		BlockHeight: st.BlockSizeY,
	}
	d.mu.RUnlock()

	p.CRS = d.CRS()
	if nd, ok := d.NoData(); ok {
		p.NoData = &nd
	}
	if tr, err := d.Transform(); err == nil {
		p.Transform = &[6]float64{tr.A, tr.B, tr.C, tr.D, tr.E, tr.F}
		left, bottom, right, top, err := d.Bounds()
		if err == nil {
			p.Bounds = &[4]float64{left, bottom, right, top}
		}
	}
	return p, nil
}
