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
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/airbusgeo/osio"
	osioGcs "github.com/airbusgeo/osio/gcs"
	osioS3 "github.com/airbusgeo/osio/s3"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	awsS3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/caarlos0/env/v11"
)

// Env carries the engine configuration for a set of dataset operations.
// The engine itself is stateful (driver registry, error stack, dozens of
// config options); Env keeps that state out of the process globals by
// passing its config key=values explicitly into every engine call it
// makes. Driver and VSI handler registration remain engine-global and are
// performed at most once per process, on first need.
//
// An Env is immutable after construction and safe for concurrent use.
type Env struct {
	config []string
	mem    *MemFS
	eh     godal.ErrorHandler
}

var registerDriversOnce sync.Once

var (
	vsiMu       sync.Mutex
	vsiPrefixes = map[string]bool{}
)

// registerVSI installs a handler for prefix unless one is already
// installed. Handler registration is engine-global: the first registration
// for a prefix wins for the lifetime of the process. The prefix is stripped
// before keys reach the handler, so a MemFS stores bare names and a
// gcs.Handler sees bucket/object keys.
func registerVSI(prefix string, handler godal.KeySizerReaderAt) error {
	vsiMu.Lock()
	defer vsiMu.Unlock()
	if vsiPrefixes[prefix] {
		return nil
	}
	if err := godal.RegisterVSIHandler(prefix, handler, godal.VSIHandlerStripPrefix(true)); err != nil {
		return fmt.Errorf("register vsi handler %s: %w", prefix, err)
	}
	vsiPrefixes[prefix] = true
	return nil
}

type envConfig struct {
	config          []string
	mem             *MemFS
	eh              godal.ErrorHandler
	gcs             bool
	s3              bool
	s3opts          S3Options
	blockSize       string
	numCachedBlocks int
	handlers        map[string]godal.KeySizerReaderAt
	drivers         []string
}

// EnvOption modifies the configuration of a new Env.
type EnvOption func(*envConfig)

// WithConfig adds an engine configuration option, e.g.
// WithConfig("GDAL_NUM_THREADS", "4"). The option is scoped to calls made
// through the Env; the process-global engine configuration is untouched.
func WithConfig(key, value string) EnvOption {
	return func(c *envConfig) {
		c.config = append(c.config, key+"="+value)
	}
}

// WithErrorHandler overrides the engine's default policy of treating every
// emitted message of warning severity or higher as an error.
func WithErrorHandler(eh godal.ErrorHandler) EnvOption {
	return func(c *envConfig) {
		c.eh = eh
	}
}

// WithMemFS attaches an in-memory filesystem to the Env, making MemoryFile
// paths openable.
func WithMemFS(m *MemFS) EnvOption {
	return func(c *envConfig) {
		c.mem = m
	}
}

// WithGCS makes gs:// RemoteURI paths openable, reading through a cached
// osio adapter over Google Cloud Storage.
func WithGCS() EnvOption {
	return func(c *envConfig) {
		c.gcs = true
	}
}

// S3Options configures WithS3. The zero value uses the ambient AWS
// credential chain and region.
type S3Options struct {
	Region                string
	Endpoint              string
	SharedCredentialsFile string
}

// WithS3 makes s3:// RemoteURI paths openable, reading through a cached
// osio adapter over S3 (or any S3-compatible endpoint).
func WithS3(opts S3Options) EnvOption {
	return func(c *envConfig) {
		c.s3 = true
		c.s3opts = opts
	}
}

// WithBlockCache tunes the remote-storage adapters installed by WithGCS
// and WithS3: blockSize is the size of each range request (e.g. "1Mb"),
// numCachedBlocks the number of blocks kept in memory.
func WithBlockCache(blockSize string, numCachedBlocks int) EnvOption {
	return func(c *envConfig) {
		c.blockSize = blockSize
		c.numCachedBlocks = numCachedBlocks
	}
}

// WithVSIHandler installs a custom storage handler for the given prefix,
// e.g. the one returned by gcs.NewHandler.
func WithVSIHandler(prefix string, handler godal.KeySizerReaderAt) EnvOption {
	return func(c *envConfig) {
		if c.handlers == nil {
			c.handlers = map[string]godal.KeySizerReaderAt{}
		}
		c.handlers[prefix] = handler
	}
}

// WithDrivers registers extra raster drivers beyond the engine's default
// set, e.g. WithDrivers("PNG").
func WithDrivers(names ...string) EnvOption {
	return func(c *envConfig) {
		c.drivers = append(c.drivers, names...)
	}
}

// NewEnv returns an Env ready for opening datasets. ctx is only used while
// setting up remote storage clients.
func NewEnv(ctx context.Context, opts ...EnvOption) (*Env, error) {
	c := envConfig{
		blockSize:       "1Mb",
		numCachedBlocks: 500,
	}
	for _, o := range opts {
		o(&c)
	}

	registerDriversOnce.Do(godal.RegisterAll)
	for _, name := range c.drivers {
		if err := godal.RegisterRaster(godal.DriverName(name)); err != nil {
			return nil, fmt.Errorf("register driver %s: %w", name, err)
		}
	}

	if c.gcs {
		handle, err := osioGcs.Handle(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs handle: %w", err)
		}
		adapter, err := osio.NewAdapter(handle,
			osio.BlockSize(c.blockSize),
			osio.NumCachedBlocks(c.numCachedBlocks))
		if err != nil {
			return nil, fmt.Errorf("gcs adapter: %w", err)
		}
		if err := registerVSI("gs://", adapter); err != nil {
			return nil, err
		}
	}
	if c.s3 {
		adapter, err := newS3Adapter(ctx, c.s3opts, c.blockSize, c.numCachedBlocks)
		if err != nil {
			return nil, err
		}
		if err := registerVSI("s3://", adapter); err != nil {
			return nil, err
		}
	}
	if c.mem != nil {
		if err := registerVSI(memPrefix, c.mem); err != nil {
			return nil, err
		}
	}
	for prefix, handler := range c.handlers {
		if err := registerVSI(prefix, handler); err != nil {
			return nil, err
		}
	}

	return &Env{config: c.config, mem: c.mem, eh: c.eh}, nil
}

func newS3Adapter(ctx context.Context, s3opts S3Options, blockSize string, numCachedBlocks int) (*osio.Adapter, error) {
	var loadOpts []func(*awsConfig.LoadOptions) error
	if s3opts.SharedCredentialsFile != "" {
		loadOpts = append(loadOpts, awsConfig.WithSharedCredentialsFiles([]string{s3opts.SharedCredentialsFile}))
	}
	if s3opts.Region != "" {
		loadOpts = append(loadOpts, awsConfig.WithRegion(s3opts.Region))
	}
	if s3opts.Endpoint != "" {
		resolver := aws.EndpointResolverFunc(func(service, region string) (aws.Endpoint, error) {
			return aws.Endpoint{
				PartitionID:       "aws",
				URL:               s3opts.Endpoint,
				SigningRegion:     region,
				HostnameImmutable: true,
			}, nil
		})
		loadOpts = append(loadOpts, awsConfig.WithEndpointResolver(resolver))
	}
	cfg, err := awsConfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	handle, err := osioS3.Handle(ctx, osioS3.S3Client(awsS3.NewFromConfig(cfg)))
	if err != nil {
		return nil, fmt.Errorf("s3 handle: %w", err)
	}
	adapter, err := osio.NewAdapter(handle,
		osio.BlockSize(blockSize),
		osio.NumCachedBlocks(numCachedBlocks))
	if err != nil {
		return nil, fmt.Errorf("s3 adapter: %w", err)
	}
	return adapter, nil
}

// Config returns a copy of the engine config key=values carried by the Env.
func (e *Env) Config() []string {
	out := make([]string, len(e.config))
	copy(out, e.config)
	return out
}

// Settings are the Env parameters readable from the process environment.
type Settings struct {
	BlockSize            string   `env:"RASTERKIT_BLOCKSIZE" envDefault:"1Mb"`
	NumCachedBlocks      int      `env:"RASTERKIT_NUM_CACHED_BLOCKS" envDefault:"500"`
	GCS                  bool     `env:"RASTERKIT_WITH_GCS"`
	S3                   bool     `env:"RASTERKIT_WITH_S3"`
	AWSRegion            string   `env:"AWS_REGION"`
	AWSEndpoint          string   `env:"AWS_ENDPOINT"`
	AWSSharedCredentials string   `env:"AWS_SHARED_CREDENTIALS_FILE"`
	Config               []string `env:"RASTERKIT_CONFIG" envSeparator:","`
}

// SettingsFromEnvironment reads Settings from RASTERKIT_* (and AWS_*)
// environment variables.
func SettingsFromEnvironment() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse environment: %w", err)
	}
	return s, nil
}

// EnvOptions translates the settings to Env options.
func (s Settings) EnvOptions() []EnvOption {
	opts := []EnvOption{WithBlockCache(s.BlockSize, s.NumCachedBlocks)}
	if s.GCS {
		opts = append(opts, WithGCS())
	}
	if s.S3 {
		opts = append(opts, WithS3(S3Options{
			Region:                s.AWSRegion,
			Endpoint:              s.AWSEndpoint,
			SharedCredentialsFile: s.AWSSharedCredentials,
		}))
	}
	for _, kv := range s.Config {
		if k, v, ok := cutKV(kv); ok {
			opts = append(opts, WithConfig(k, v))
		}
	}
	return opts
}

func cutKV(kv string) (key, value string, ok bool) {
	return strings.Cut(kv, "=")
}

// NewEnvFromEnvironment builds an Env from RASTERKIT_* environment
// variables, for callers that configure through the process environment
// rather than code.
func NewEnvFromEnvironment(ctx context.Context, extra ...EnvOption) (*Env, error) {
	s, err := SettingsFromEnvironment()
	if err != nil {
		return nil, err
	}
	return NewEnv(ctx, append(s.EnvOptions(), extra...)...)
}
