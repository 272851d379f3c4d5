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

// Package gcs exposes google cloud storage objects to the raster engine's
// virtual filesystem layer. Reads go through an in-memory block cache so
// that the engine's many small header requests do not each translate to a
// storage API call. Register a handler on an environment with
//
//	h, err := gcs.NewHandler(ctx)
//	env, err := rasterkit.NewEnv(ctx, rasterkit.WithVSIHandler("gs://", h))
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"

	"cloud.google.com/go/storage"
	lru "github.com/hashicorp/golang-lru"
	"github.com/spatialgo/rasterkit/internal/blockcache"
	"google.golang.org/api/googleapi"
)

const (
	defaultBlockSize       = 1024 * 1024
	defaultMaxCachedBlocks = 1000
	defaultMaxCachedSizes  = 10000
)

// Handler reads bucket/object keys from google cloud storage. It implements
// the key based reader interface expected by the engine's VSI layer.
type Handler struct {
	ctx            context.Context
	client         *storage.Client
	billingProject string
	blockSize      uint
	maxBlocks      int
	maxSizes       int

	cache *blockcache.BlockCache
	sizes *lru.Cache
}

// Option is an option that can be passed to NewHandler
type Option func(h *Handler)

// Client sets the cloud storage client used by the handler. If not provided,
// a default client will be created with storage.NewClient
func Client(cl *storage.Client) Option {
	return func(h *Handler) {
		h.client = cl
	}
}

// BillingProject sets the project name which should be billed for the
// requests. This is mandatory if the bucket is in requester-pays mode.
func BillingProject(project string) Option {
	return func(h *Handler) {
		h.billingProject = project
	}
}

// BlockSize sets the size in bytes of the individual requests made to the
// storage API. Defaults to 1Mb.
func BlockSize(bytes uint) Option {
	return func(h *Handler) {
		h.blockSize = bytes
	}
}

// MaxCachedBlocks sets the number of blocks kept in the handler's lru cache.
// Defaults to 1000.
func MaxCachedBlocks(n int) Option {
	return func(h *Handler) {
		h.maxBlocks = n
	}
}

// MaxCachedSizes sets the number of object sizes kept in the handler's
// metadata cache. Defaults to 10000.
func MaxCachedSizes(n int) Option {
	return func(h *Handler) {
		h.maxSizes = n
	}
}

// NewHandler returns a Handler that can be registered on an environment with
// rasterkit.WithVSIHandler.
//
// ctx is used for every request sent to the storage API over the lifetime of
// the handler, not just for its construction.
func NewHandler(ctx context.Context, opts ...Option) (*Handler, error) {
	h := &Handler{
		ctx:       ctx,
		blockSize: defaultBlockSize,
		maxBlocks: defaultMaxCachedBlocks,
		maxSizes:  defaultMaxCachedSizes,
	}
	for _, o := range opts {
		o(h)
	}
	if h.client == nil {
		cl, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage client: %w", err)
		}
		h.client = cl
	}
	store, err := blockcache.NewLRU(h.maxBlocks)
	if err != nil {
		return nil, fmt.Errorf("block store: %w", err)
	}
	h.cache = blockcache.New(rawSource{h}, store, h.blockSize)
	h.sizes, err = lru.New(h.maxSizes)
	if err != nil {
		return nil, fmt.Errorf("size cache: %w", err)
	}
	return h, nil
}

// parseKey splits a "bucket/path/to/object" key. The scheme prefix must
// have been stripped by the VSI layer: a key still carrying "gs://" would
// otherwise resolve to a bucket named "gs:", so those are rejected.
func parseKey(key string) (bucket, object string, err error) {
	bucket, object, ok := strings.Cut(key, "/")
	if !ok || bucket == "" || object == "" || strings.Contains(bucket, ":") {
		return "", "", syscall.ENOENT
	}
	return bucket, object, nil
}

func (h *Handler) object(bucket, object string) *storage.ObjectHandle {
	o := h.client.Bucket(bucket).Object(object)
	if h.billingProject != "" {
		o = h.client.Bucket(bucket).UserProject(h.billingProject).Object(object)
	}
	return o
}

// Size returns the size of the given object, or syscall.ENOENT if the bucket
// or object does not exist. Sizes are cached, as are missing objects.
func (h *Handler) Size(key string) (int64, error) {
	if s, ok := h.sizes.Get(key); ok {
		size := s.(int64)
		if size < 0 {
			return 0, syscall.ENOENT
		}
		return size, nil
	}
	bucket, object, err := parseKey(key)
	if err != nil {
		return 0, err
	}
	attrs, err := h.object(bucket, object).Attrs(h.ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			h.sizes.Add(key, int64(-1))
			return 0, syscall.ENOENT
		}
		return 0, fmt.Errorf("attrs %s: %w", key, err)
	}
	h.sizes.Add(key, attrs.Size)
	return attrs.Size, nil
}

// ReadAt reads len(p) bytes at offset off from the given object, serving
// from cached blocks where possible. It follows io.ReaderAt semantics,
// returning io.EOF on short reads past the end of the object.
func (h *Handler) ReadAt(key string, p []byte, off int64) (int, error) {
	if s, ok := h.sizes.Get(key); ok {
		size := s.(int64)
		if size < 0 {
			return 0, syscall.ENOENT
		}
		if off >= size {
			return 0, io.EOF
		}
	}
	return h.cache.ReadAt(key, p, off)
}

// Invalidate drops all cached blocks and metadata for the given object. Use
// it after an object has been rewritten in place.
func (h *Handler) Invalidate(key string) {
	h.sizes.Remove(key)
	h.cache.PurgeKey(key)
}

// rawSource performs the actual range requests on behalf of the block cache.
type rawSource struct {
	h *Handler
}

func (s rawSource) ReadAt(key string, p []byte, off int64) (int, error) {
	bucket, object, err := parseKey(key)
	if err != nil {
		return 0, err
	}
	r, err := s.h.object(bucket, object).NewRangeReader(s.h.ctx, off, int64(len(p)))
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 416 {
			return 0, io.EOF
		}
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			s.h.sizes.Add(key, int64(-1))
			return 0, syscall.ENOENT
		}
		return 0, fmt.Errorf("new reader %s: %w", key, err)
	}
	defer r.Close()
	s.h.sizes.Add(key, r.Attrs.Size)
	n, err := io.ReadFull(r, p)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, err
}
