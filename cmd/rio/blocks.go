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
	"encoding/json"
	"fmt"

	"github.com/spatialgo/rasterkit"
	"github.com/spf13/cobra"
)

var blocksBand int

func init() {
	blocksCmd.Flags().IntVar(&blocksBand, "band", 0, "band whose native tiling to walk")
}

type blockInfo struct {
	Row    int     `json:"row"`
	Col    int     `json:"col"`
	ColOff float64 `json:"col_off"`
	RowOff float64 `json:"row_off"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

var blocksCmd = &cobra.Command{
	Use:   "blocks dataset",
	Short: "print the native block layout of a band as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := rasterkit.ParsePath(args[0])
		if err != nil {
			return err
		}
		env, err := newEnv(ctx, p)
		if err != nil {
			return err
		}
		ds, err := env.Open(p)
		if err != nil {
			return err
		}
		defer ds.Close()
		bl, err := ds.BlockWindows(blocksBand)
		if err != nil {
			return err
		}
		nx, ny := bl.Count()
		infos := make([]blockInfo, 0, nx*ny)
		for ok := true; ok; bl, ok = bl.Next() {
			infos = append(infos, blockInfo{
				Row:    bl.Row,
				Col:    bl.Col,
				ColOff: bl.Window.ColOff,
				RowOff: bl.Window.RowOff,
				Width:  bl.Window.Width,
				Height: bl.Window.Height,
			})
		}
		b, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}
