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
	"fmt"

	"github.com/airbusgeo/godal"
)

// Translate converts the dataset to a new file using gdal_translate style
// switches, e.g.
//
//	out, err := ds.Translate(rasterkit.LocalPath("out.tif"),
//		[]string{"-of", "GTiff", "-co", "TILED=YES"})
//
// The destination must be a LocalPath, other path variants are read only
// and return ErrReadOnlyPath. The returned dataset is open in update mode
// and shares the source dataset's environment.
func (d *Dataset) Translate(p Path, switches []string) (*Dataset, error) {
	if _, ok := p.(LocalPath); !ok {
		return nil, fmt.Errorf("translate to %s: %w", p, ErrReadOnlyPath)
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	ds, err := d.engine()
	if err != nil {
		return nil, err
	}
	topts := []godal.DatasetTranslateOption{}
	if len(d.env.config) > 0 {
		topts = append(topts, godal.ConfigOption(d.env.config...))
	}
	if d.env.eh != nil {
		topts = append(topts, godal.ErrLogger(d.env.eh))
	}
	out, err := ds.Translate(p.VSIPath(), switches, topts...)
	if err != nil {
		return nil, fmt.Errorf("translate %s: %w", p, err)
	}
	return &Dataset{ds: out, env: d.env, path: p}, nil
}

// BuildOverviews computes reduced resolution layers for the dataset. With
// no arguments the engine picks power of two levels down to 256 pixels.
// The dataset must have been opened with Update.
func (d *Dataset) BuildOverviews(levels ...int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	ds, err := d.engine()
	if err != nil {
		return err
	}
	bopts := []godal.BuildOverviewsOption{}
	if len(levels) > 0 {
		bopts = append(bopts, godal.Levels(levels...))
	}
	if len(d.env.config) > 0 {
		bopts = append(bopts, godal.ConfigOption(d.env.config...))
	}
	if d.env.eh != nil {
		bopts = append(bopts, godal.ErrLogger(d.env.eh))
	}
	if err := ds.BuildOverviews(bopts...); err != nil {
		return fmt.Errorf("build overviews: %w", err)
	}
	return nil
}
