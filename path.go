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
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrBadPath is returned by ParsePath for strings that do not resolve to
// any Path variant.
var ErrBadPath = errors.New("badly formatted dataset path")

// Path identifies a raster resource. It is a closed set of variants,
// resolved once at the boundary instead of re-inspecting strings on every
// call: LocalPath, RemoteURI, ArchiveMember and MemoryFile.
type Path interface {
	// VSIPath renders the engine-facing name of the resource.
	VSIPath() string
	fmt.Stringer

	sealedPath()
}

// LocalPath is a raster on the local filesystem. Raw engine paths (those
// beginning with /vsi) are carried through LocalPath unchanged.
type LocalPath string

func (p LocalPath) VSIPath() string { return string(p) }

// String implements Stringer
func (p LocalPath) String() string { return string(p) }
func (p LocalPath) sealedPath()    {}

// RemoteURI is an object-storage resource, addressed by scheme, bucket and
// object key. Reading a RemoteURI requires the scheme's VSI handler to be
// registered on the Env (see WithGCS, WithS3 and WithVSIHandler).
type RemoteURI struct {
	Scheme string
	Bucket string
	Key    string
}

func (p RemoteURI) VSIPath() string {
	return fmt.Sprintf("%s://%s/%s", p.Scheme, p.Bucket, p.Key)
}

// String implements Stringer
func (p RemoteURI) String() string { return p.VSIPath() }
func (p RemoteURI) sealedPath()    {}

// ArchiveFormat is the container format of an ArchiveMember.
type ArchiveFormat int

const (
	// Zip archive
	Zip ArchiveFormat = iota
	// Tar archive, optionally gzip compressed
	Tar
	// Gzip single-member compression
	Gzip
)

func (f ArchiveFormat) vsiPrefix() string {
	switch f {
	case Tar:
		return "/vsitar/"
	case Gzip:
		return "/vsigzip/"
	default:
		return "/vsizip/"
	}
}

// String implements Stringer
func (f ArchiveFormat) String() string {
	switch f {
	case Tar:
		return "tar"
	case Gzip:
		return "gzip"
	default:
		return "zip"
	}
}

// ArchiveMember is a raster stored inside an archive, which may itself live
// on any other Path.
type ArchiveMember struct {
	Format  ArchiveFormat
	Archive Path
	Member  string
}

func (p ArchiveMember) VSIPath() string {
	if p.Member == "" {
		return p.Format.vsiPrefix() + p.Archive.VSIPath()
	}
	return p.Format.vsiPrefix() + p.Archive.VSIPath() + "/" + strings.TrimPrefix(p.Member, "/")
}

// String implements Stringer
func (p ArchiveMember) String() string {
	return fmt.Sprintf("%s://%s!%s", p.Format, p.Archive, p.Member)
}
func (p ArchiveMember) sealedPath() {}

// MemoryFile is a raster held in an Env's in-memory filesystem (see
// WithMemFS). Memory files are read-only.
type MemoryFile struct {
	Name string
}

func (p MemoryFile) VSIPath() string { return memPrefix + p.Name }

// String implements Stringer
func (p MemoryFile) String() string { return "mem://" + p.Name }
func (p MemoryFile) sealedPath()    {}

var uriRe = regexp.MustCompile(`^(?P<scheme>[a-zA-Z][a-zA-Z0-9+.-]*)://(?P<bucket>[^/]+)/(?P<key>.+)$`)

var archiveSchemes = map[string]ArchiveFormat{
	"zip":  Zip,
	"tar":  Tar,
	"gzip": Gzip,
}

// ParsePath resolves a path string to its Path variant:
//
//	/data/scene.tif                local file
//	gs://bucket/scene.tif          remote object
//	zip:///data/scenes.zip!a.tif   archive member (also tar, gzip)
//	zip://gs://bucket/s.zip!a.tif  archive member on a remote object
//	mem://scene.tif                in-memory file
//
// Anything without a scheme, including raw /vsi engine paths, resolves to a
// LocalPath.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("empty path: %w", ErrBadPath)
	}
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return LocalPath(s), nil
	}
	if format, isArchive := archiveSchemes[scheme]; isArchive {
		inner, member, _ := strings.Cut(rest, "!")
		if inner == "" {
			return nil, fmt.Errorf("%q: empty archive path: %w", s, ErrBadPath)
		}
		archive, err := ParsePath(inner)
		if err != nil {
			return nil, err
		}
		if _, nested := archive.(ArchiveMember); nested {
			return nil, fmt.Errorf("%q: nested archives are not supported: %w", s, ErrBadPath)
		}
		return ArchiveMember{Format: format, Archive: archive, Member: member}, nil
	}
	if scheme == "mem" {
		if rest == "" {
			return nil, fmt.Errorf("%q: empty memory file name: %w", s, ErrBadPath)
		}
		return MemoryFile{Name: rest}, nil
	}
	m := uriRe.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("%q: %w", s, ErrBadPath)
	}
	return RemoteURI{Scheme: m[1], Bucket: m[2], Key: m[3]}, nil
}
