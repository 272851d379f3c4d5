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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePathLocal(t *testing.T) {
	p, err := ParsePath("/data/scene.tif")
	require.NoError(t, err)
	assert.Equal(t, LocalPath("/data/scene.tif"), p)
	assert.Equal(t, "/data/scene.tif", p.VSIPath())

	p, err = ParsePath("scene.tif")
	require.NoError(t, err)
	assert.Equal(t, LocalPath("scene.tif"), p)

	// raw engine paths pass through untouched
	p, err = ParsePath("/vsicurl/https://host/scene.tif")
	require.NoError(t, err)
	assert.Equal(t, LocalPath("/vsicurl/https://host/scene.tif"), p)
}

func TestParsePathRemote(t *testing.T) {
	p, err := ParsePath("gs://bucket/path/to/scene.tif")
	require.NoError(t, err)
	uri, ok := p.(RemoteURI)
	require.True(t, ok)
	assert.Equal(t, "gs", uri.Scheme)
	assert.Equal(t, "bucket", uri.Bucket)
	assert.Equal(t, "path/to/scene.tif", uri.Key)
	assert.Equal(t, "gs://bucket/path/to/scene.tif", p.VSIPath())

	p, err = ParsePath("s3://bucket/scene.tif")
	require.NoError(t, err)
	assert.Equal(t, RemoteURI{Scheme: "s3", Bucket: "bucket", Key: "scene.tif"}, p)

	_, err = ParsePath("gs://bucketonly")
	assert.ErrorIs(t, err, ErrBadPath)
	_, err = ParsePath("gs:///nokey")
	assert.ErrorIs(t, err, ErrBadPath)
}

func TestParsePathArchive(t *testing.T) {
	p, err := ParsePath("zip:///data/scenes.zip!a/b.tif")
	require.NoError(t, err)
	am, ok := p.(ArchiveMember)
	require.True(t, ok)
	assert.Equal(t, Zip, am.Format)
	assert.Equal(t, LocalPath("/data/scenes.zip"), am.Archive)
	assert.Equal(t, "a/b.tif", am.Member)
	assert.Equal(t, "/vsizip//data/scenes.zip/a/b.tif", p.VSIPath())

	p, err = ParsePath("tar://gs://bucket/scenes.tar!b.tif")
	require.NoError(t, err)
	am, ok = p.(ArchiveMember)
	require.True(t, ok)
	assert.Equal(t, Tar, am.Format)
	assert.Equal(t, RemoteURI{Scheme: "gs", Bucket: "bucket", Key: "scenes.tar"}, am.Archive)
	assert.Equal(t, "/vsitar/gs://bucket/scenes.tar/b.tif", p.VSIPath())

	// gzip wraps a single file, no member needed
	p, err = ParsePath("gzip:///data/scene.tif.gz")
	require.NoError(t, err)
	assert.Equal(t, "/vsigzip//data/scene.tif.gz", p.VSIPath())

	_, err = ParsePath("zip://!member.tif")
	assert.ErrorIs(t, err, ErrBadPath)
	_, err = ParsePath("zip://tar:///data/a.tar!b.zip!c.tif")
	assert.ErrorIs(t, err, ErrBadPath)
}

func TestParsePathMemory(t *testing.T) {
	p, err := ParsePath("mem://scene.tif")
	require.NoError(t, err)
	assert.Equal(t, MemoryFile{Name: "scene.tif"}, p)
	assert.Equal(t, "mem://scene.tif", p.String())

	_, err = ParsePath("mem://")
	assert.ErrorIs(t, err, ErrBadPath)

	_, err = ParsePath("")
	assert.ErrorIs(t, err, ErrBadPath)
}
