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

// Package blockcache caches fixed-size chunks of slow keyed readers, so
// that the many small scattered reads a raster decoder issues against a
// remote object translate into few large range requests.
package blockcache

import (
	"errors"
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru"
	"github.com/vburenin/nsync"
)

// Source reads from the resource identified by key at a byte offset, with
// io.ReaderAt semantics per key. Implementations must support concurrent
// calls.
type Source interface {
	ReadAt(key string, p []byte, off int64) (int, error)
}

// Store is the pluggable cache backend. Implementations must be safe for
// concurrent use.
type Store interface {
	Add(key string, block uint, data []byte)
	Get(key string, block uint) ([]byte, bool)
	PurgeKey(key string)
	Purge()
}

// DefaultBlockSize is used when New is given a zero block size.
const DefaultBlockSize = 64 * 1024

// BlockCache exposes a Source through a cache of fixed-size blocks.
// Concurrent reads of the same missing block are collapsed into a single
// request to the source.
type BlockCache struct {
	blockSize int64
	src       Source
	store     Store
	flight    *nsync.NamedOnceMutex
}

// New wraps src in a BlockCache holding blocks of blockSize bytes in
// store.
func New(src Source, store Store, blockSize uint) *BlockCache {
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	return &BlockCache{
		blockSize: int64(blockSize),
		src:       src,
		store:     store,
		flight:    nsync.NewNamedOnceMutex(),
	}
}

// PurgeKey drops all cached blocks of key.
func (c *BlockCache) PurgeKey(key string) {
	c.store.PurgeKey(key)
}

// Purge drops the whole cache.
func (c *BlockCache) Purge() {
	c.store.Purge()
}

// ReadAt reads len(p) bytes of key starting at off, io.ReaderAt style:
// a short read returns io.EOF.
func (c *BlockCache) ReadAt(key string, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	first := off / c.blockSize
	last := (off + int64(len(p)) - 1) / c.blockSize
	n := 0
	for id := first; id <= last; id++ {
		data, err := c.block(key, id)
		if err != nil {
			return n, err
		}
		start := int64(0)
		if blockOff := id * c.blockSize; off > blockOff {
			start = off - blockOff
		}
		if start >= int64(len(data)) {
			return n, io.EOF
		}
		n += copy(p[n:], data[start:])
		if int64(len(data)) < c.blockSize {
			break
		}
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// block returns the id'th block of key, from the store when cached,
// fetching it at most once otherwise.
func (c *BlockCache) block(key string, id int64) ([]byte, error) {
	if data, ok := c.store.Get(key, uint(id)); ok {
		return data, nil
	}
	flightKey := fmt.Sprintf("%s#%d", key, id)
	if c.flight.Lock(flightKey) {
		defer c.flight.Unlock(flightKey)
		data, err := c.fetch(key, id)
		if err != nil {
			return nil, err
		}
		c.store.Add(key, uint(id), data)
		return data, nil
	}
	// another goroutine was fetching this block while we waited
	if data, ok := c.store.Get(key, uint(id)); ok {
		return data, nil
	}
	// it must have failed; retry ourselves
	return c.fetch(key, id)
}

func (c *BlockCache) fetch(key string, id int64) ([]byte, error) {
	buf := make([]byte, c.blockSize)
	n, err := c.src.ReadAt(key, buf, id*c.blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

// LRU is the default Store, a fixed-capacity in-memory LRU.
type LRU struct {
	c *lru.Cache
}

var _ Store = &LRU{}

// NewLRU returns a Store evicting past entries blocks.
func NewLRU(entries int) (*LRU, error) {
	c, err := lru.New(entries)
	if err != nil {
		return nil, fmt.Errorf("lru.new: %w", err)
	}
	return &LRU{c: c}, nil
}

func storeKey(key string, block uint) string {
	return fmt.Sprintf("%s#%d", key, block)
}

func (l *LRU) Add(key string, block uint, data []byte) {
	l.c.Add(storeKey(key, block), data)
}

func (l *LRU) Get(key string, block uint) ([]byte, bool) {
	v, ok := l.c.Get(storeKey(key, block))
	if !ok {
		return nil, false
	}
	return v.([]byte), true
}

func (l *LRU) PurgeKey(key string) {
	prefix := key + "#"
	for _, k := range l.c.Keys() {
		if sk, ok := k.(string); ok && len(sk) > len(prefix) && sk[:len(prefix)] == prefix {
			l.c.Remove(k)
		}
	}
}

func (l *LRU) Purge() {
	l.c.Purge()
}
