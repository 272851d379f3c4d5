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
	"io"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemFS(t *testing.T) {
	fs := NewMemFS()
	fs.WriteFile("scene.tif", []byte("0123456789"))

	size, err := fs.Size("scene.tif")
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)

	buf := make([]byte, 4)
	n, err := fs.ReadAt("scene.tif", buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte("0123"), buf)

	n, err = fs.ReadAt("scene.tif", buf, 8)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte("89"), buf[:n])

	_, err = fs.ReadAt("scene.tif", buf, 10)
	assert.Equal(t, io.EOF, err)

	_, err = fs.Size("missing.tif")
	assert.Equal(t, syscall.ENOENT, err)
	_, err = fs.ReadAt("missing.tif", buf, 0)
	assert.Equal(t, syscall.ENOENT, err)

	// the engine strips the registered prefix before calling the handler,
	// so files are stored and fetched under their bare names
	assert.Equal(t, memPrefix+"scene.tif", MemoryFile{Name: "scene.tif"}.VSIPath())
	_, err = fs.Size(memPrefix + "scene.tif")
	assert.Equal(t, syscall.ENOENT, err)

	fs.Remove("scene.tif")
	_, err = fs.Size("scene.tif")
	assert.Equal(t, syscall.ENOENT, err)
}
