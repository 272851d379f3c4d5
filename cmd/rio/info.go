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

var infoCmd = &cobra.Command{
	Use:   "info dataset",
	Short: "print dataset structure and georeferencing as JSON",
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
		prof, err := ds.Profile()
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(prof, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}
