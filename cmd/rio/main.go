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

// rio is a command line tool to inspect and convert georeferenced rasters.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spatialgo/rasterkit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	gsBlockSize string
	gsNumBlocks int
	configKV    []string
	verbose     bool

	log *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:           "rio",
	Short:         "inspect and convert georeferenced rasters",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg = zap.NewDevelopmentConfig()
		}
		l, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		log = l.Sugar()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&gsBlockSize, "gs.blocksize", "512k", "gs:// block size")
	rootCmd.PersistentFlags().IntVar(&gsNumBlocks, "gs.numblocks", 512, "number of gs:// blocks to cache")
	rootCmd.PersistentFlags().StringArrayVar(&configKV, "config", nil, "engine config KEY=VALUE (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(infoCmd, boundsCmd, blocksCmd, cogCmd)
}

// newEnv builds the session used by all subcommands. Remote access is only
// wired when the invocation actually references a remote path, so purely
// local usage does not require cloud credentials.
func newEnv(ctx context.Context, paths ...rasterkit.Path) (*rasterkit.Env, error) {
	opts := []rasterkit.EnvOption{
		rasterkit.WithBlockCache(gsBlockSize, gsNumBlocks),
	}
	for _, kv := range configKV {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("malformed --config %q, want KEY=VALUE", kv)
		}
		opts = append(opts, rasterkit.WithConfig(k, v))
	}
	for _, p := range paths {
		if needsGCS(p) {
			opts = append(opts, rasterkit.WithGCS())
			break
		}
	}
	return rasterkit.NewEnvFromEnvironment(ctx, opts...)
}

func needsGCS(p rasterkit.Path) bool {
	switch pp := p.(type) {
	case rasterkit.RemoteURI:
		return pp.Scheme == "gs"
	case rasterkit.ArchiveMember:
		return needsGCS(pp.Archive)
	}
	return false
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
