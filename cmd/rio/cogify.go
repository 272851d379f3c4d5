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

package main

import (
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"github.com/airbusgeo/cogger"
	"github.com/spatialgo/rasterkit"
	"github.com/spf13/cobra"
)

var (
	cogOut       string
	cogTmpdir    string
	cogOverviews bool
)

func init() {
	cogCmd.Flags().StringVarP(&cogOut, "out", "o", "out-cog.tif", "output cog name")
	cogCmd.Flags().StringVar(&cogTmpdir, "tmp", ".", "directory to use for temp file")
	cogCmd.Flags().BoolVar(&cogOverviews, "ovr", true, "compute overviews")
}

var cogCmd = &cobra.Command{
	Use:   "cogify [flags] -- dataset [translate switches]*",
	Short: "convert a raster to a cloud optimized geotiff",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		in, err := rasterkit.ParsePath(args[0])
		if err != nil {
			return err
		}
		out, err := rasterkit.ParsePath(cogOut)
		if err != nil {
			return err
		}
		switches := args[1:]
		if len(switches) == 0 {
			switches = []string{
				"-co", "BLOCKXSIZE=256",
				"-co", "BLOCKYSIZE=256",
				"-co", "COMPRESS=LZW",
			}
		}
		switches = append(switches,
			"-co", "TILED=YES",
			"-co", "BIGTIFF=YES",
			"-of", "GTiff",
		)

		env, err := newEnv(ctx, in, out)
		if err != nil {
			return err
		}
		ds, err := env.Open(in)
		if err != nil {
			return err
		}
		defer ds.Close()

		tmpf, err := os.CreateTemp(cogTmpdir, "*.tif")
		if err != nil {
			return err
		}
		tmpf.Close()
		tmpname := tmpf.Name()
		defer os.Remove(tmpname)

		log.Debugw("translating", "in", in.String(), "tmp", tmpname)
		tiled, err := ds.Translate(rasterkit.LocalPath(tmpname), switches)
		if err != nil {
			return err
		}
		if cogOverviews {
			if err := tiled.BuildOverviews(); err != nil {
				tiled.Close()
				return err
			}
		}
		if err := tiled.Close(); err != nil {
			return fmt.Errorf("close temp tif: %w", err)
		}

		tmpr, err := os.Open(tmpname)
		if err != nil {
			return fmt.Errorf("re-open temp tif %s: %w", tmpname, err)
		}
		defer tmpr.Close()

		w, err := cogWriter(cmd, out)
		if err != nil {
			return err
		}
		log.Debugw("assembling cog", "out", out.String())
		if err := cogger.Rewrite(w, tmpr); err != nil {
			return fmt.Errorf("cogger.rewrite: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("close %s: %w", out, err)
		}
		return nil
	},
}

// cogWriter opens the final destination. Unlike dataset creation, the cog
// assembly step is a plain byte stream and can target gs:// directly.
func cogWriter(cmd *cobra.Command, out rasterkit.Path) (io.WriteCloser, error) {
	switch p := out.(type) {
	case rasterkit.LocalPath:
		w, err := os.Create(string(p))
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", p, err)
		}
		return w, nil
	case rasterkit.RemoteURI:
		if p.Scheme != "gs" {
			return nil, fmt.Errorf("unsupported output scheme %s", p.Scheme)
		}
		cl, err := storage.NewClient(cmd.Context())
		if err != nil {
			return nil, fmt.Errorf("storage client: %w", err)
		}
		return cl.Bucket(p.Bucket).Object(p.Key).NewWriter(cmd.Context()), nil
	default:
		return nil, fmt.Errorf("unsupported output path %s", out)
	}
}
