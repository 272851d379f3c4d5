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
	"io"
	"sync"
	"syscall"
)

// memPrefix is the VSI prefix memory files are registered under. It is
// deliberately not a user-facing scheme: MemoryFile paths render to it.
const memPrefix = "rkmem://"

// MemFS holds raster bytes in memory and serves them to the engine as a
// read-only virtual filesystem. It is safe for concurrent use. Attach a
// MemFS to an Env with WithMemFS, then open files through MemoryFile paths.
type MemFS struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemFS returns an empty in-memory filesystem.
func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

// WriteFile stores data under name, replacing any previous content. The
// byte slice is retained, not copied.
func (m *MemFS) WriteFile(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
}

// Remove deletes the named file. Removing a missing file is a no-op.
func (m *MemFS) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, name)
}

// Size returns the byte size of the named file, or syscall.ENOENT if it
// does not exist. The engine uses this as its existence probe.
func (m *MemFS) Size(key string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[key]
	if !ok {
		return -1, syscall.ENOENT
	}
	return int64(len(data)), nil
}

// ReadAt reads from the named file at the given offset, io.ReaderAt style.
func (m *MemFS) ReadAt(key string, buf []byte, off int64) (int, error) {
	m.mu.RLock()
	data, ok := m.files[key]
	m.mu.RUnlock()
	if !ok {
		return 0, syscall.ENOENT
	}
	if off >= int64(len(data)) {
		return 0, io.EOF
	}
	n := copy(buf, data[off:])
	if n < len(buf) {
		return n, io.EOF
	}
	return n, nil
}
