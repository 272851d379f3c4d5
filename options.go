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
	"github.com/spatialgo/rasterkit/affine"
	"github.com/spatialgo/rasterkit/windows"
)

type openOpts struct {
	update   bool
	shared   bool
	drivers  []string
	driverKV []string
}

// OpenOption is an option that can be passed to Env.Open()
//
// Available OpenOptions are:
//
// • Update
//
// • Shared
//
// • AllowedDrivers
//
// • DriverOption
type OpenOption interface {
	setOpenOpt(oo *openOpts)
}

type openUpdateOpt struct{}

// Update opens the dataset writable instead of the default read-only.
func Update() OpenOption {
	return openUpdateOpt{}
}

func (openUpdateOpt) setOpenOpt(oo *openOpts) {
	oo.update = true
}

type openSharedOpt struct{}

// Shared opens the dataset with engine-level handle sharing.
func Shared() OpenOption {
	return openSharedOpt{}
}

func (openSharedOpt) setOpenOpt(oo *openOpts) {
	oo.shared = true
}

type allowedDriversOpt struct {
	drivers []string
}

// AllowedDrivers restricts the raster drivers the engine may probe when
// opening, e.g. AllowedDrivers("GTiff").
func AllowedDrivers(names ...string) OpenOption {
	return allowedDriversOpt{names}
}

func (o allowedDriversOpt) setOpenOpt(oo *openOpts) {
	oo.drivers = append(oo.drivers, o.drivers...)
}

type driverOptionOpt struct {
	kv []string
}

// DriverOption sets a driver-specific KEY=VALUE open option, e.g.
// DriverOption("NUM_THREADS=8").
func DriverOption(keyval ...string) OpenOption {
	return driverOptionOpt{keyval}
}

func (o driverOptionOpt) setOpenOpt(oo *openOpts) {
	oo.driverKV = append(oo.driverKV, o.kv...)
}

type createOpts struct {
	creation  []string
	nodata    *float64
	transform *affine.Transform
	crs       string
}

// CreateOption is an option that can be passed to Env.Create()
//
// Available CreateOptions are:
//
// • CreationOption
//
// • NoData
//
// • Georeference
//
// • Projection
type CreateOption interface {
	setCreateOpt(co *createOpts)
}

type creationOpt struct {
	kv []string
}

// CreationOption sets a driver-specific KEY=VALUE creation option, e.g.
// CreationOption("TILED=YES", "BLOCKXSIZE=256").
func CreationOption(keyval ...string) CreateOption {
	return creationOpt{keyval}
}

func (o creationOpt) setCreateOpt(co *createOpts) {
	co.creation = append(co.creation, o.kv...)
}

type nodataOpt struct {
	nd float64
}

// NoData sets the nodata value of all bands of the created dataset.
func NoData(nd float64) CreateOption {
	return nodataOpt{nd}
}

func (o nodataOpt) setCreateOpt(co *createOpts) {
	co.nodata = &o.nd
}

type georeferenceOpt struct {
	tr affine.Transform
}

// Georeference sets the pixel-to-world transform of the created dataset.
func Georeference(tr affine.Transform) CreateOption {
	return georeferenceOpt{tr}
}

func (o georeferenceOpt) setCreateOpt(co *createOpts) {
	co.transform = &o.tr
}

type projectionOpt struct {
	crs string
}

// Projection sets the coordinate reference system of the created dataset.
// crs accepts anything the engine understands: "EPSG:4326", WKT, proj4.
func Projection(crs string) CreateOption {
	return projectionOpt{crs}
}

func (o projectionOpt) setCreateOpt(co *createOpts) {
	co.crs = o.crs
}

type ioOpts struct {
	window          *windows.Window
	bands           []int
	resampling      ResamplingAlg
	bufWidth        int
	bufHeight       int
	bandInterleaved bool
}

// IOOption is an option that can be passed to Dataset.Read() and
// Dataset.Write()
//
// Available IOOptions are:
//
// • InWindow
//
// • Bands
//
// • Resampling
//
// • BufferSize
//
// • BandInterleaved
type IOOption interface {
	setIOOpt(ro *ioOpts)
}

type windowOpt struct {
	w windows.Window
}

// InWindow bounds the operation to the given window. Fractional windows
// are rounded outward to whole pixels and clipped to the dataset extent
// before being handed to the engine.
func InWindow(w windows.Window) IOOption {
	return windowOpt{w}
}

func (o windowOpt) setIOOpt(ro *ioOpts) {
	w := o.w
	ro.window = &w
}

type bandsOpt struct {
	bands []int
}

// Bands restricts the operation to the given 0-indexed bands. The default
// is all bands.
func Bands(bands ...int) IOOption {
	return bandsOpt{bands}
}

func (o bandsOpt) setIOOpt(ro *ioOpts) {
	ro.bands = append(ro.bands, o.bands...)
}

type resamplingOpt struct {
	alg ResamplingAlg
}

// Resampling selects the resampling method used when the buffer size
// differs from the window size. The default is nearest neighbour.
func Resampling(alg ResamplingAlg) IOOption {
	return resamplingOpt{alg}
}

func (o resamplingOpt) setIOOpt(ro *ioOpts) {
	ro.resampling = o.alg
}

type bufferSizeOpt struct {
	w, h int
}

// BufferSize sets the pixel dimensions of the caller's buffer. When it
// differs from the window size the engine decimates or replicates pixels,
// which is how decimated overview-level reads are expressed. The default
// buffer size is the rounded window size.
func BufferSize(width, height int) IOOption {
	return bufferSizeOpt{width, height}
}

func (o bufferSizeOpt) setIOOpt(ro *ioOpts) {
	ro.bufWidth = o.w
	ro.bufHeight = o.h
}

type bandInterleavedOpt struct{}

// BandInterleaved makes multi-band reads return a band-interleaved buffer
// (r1..rn, g1..gn, b1..bn) instead of the default pixel-interleaved one
// (r1g1b1, r2g2b2, ...). Only meaningful for reads.
func BandInterleaved() IOOption {
	return bandInterleavedOpt{}
}

func (bandInterleavedOpt) setIOOpt(ro *ioOpts) {
	ro.bandInterleaved = true
}
