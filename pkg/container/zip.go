// Copyright 2025 walteh LLC
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

package container

import (
	"archive/zip"
	"bytes"
	"io"

	"github.com/walteh/docscrub/pkg/document"
	"gitlab.com/tozd/go/errors"
)

// ErrCorrupt is returned when the container cannot be read
var ErrCorrupt = errors.Base("corrupt container")

// maxEntrySize bounds the decompressed size of a single entry
const maxEntrySize = 256 << 20

var zipMagic = []byte("PK\x03\x04")

// IsZip reports whether data starts with a zip local file header
func IsZip(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic)
}

// 📦 Read decodes a zip container into a package. Every entry keeps a
// reference to its archive member so untouched entries can be copied raw.
func Read(data []byte) (*document.Package, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Errorf("%w: %v", ErrCorrupt, err)
	}

	pkg := document.NewPackage()
	for _, f := range r.File {
		content, err := readEntry(f)
		if err != nil {
			return nil, errors.Errorf("%w: reading %s: %v", ErrCorrupt, f.Name, err)
		}
		if err := pkg.Add(f.Name, content, f); err != nil {
			return nil, errors.Errorf("%w: %v", ErrCorrupt, err)
		}
	}
	return pkg, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	if f.FileInfo().IsDir() {
		return nil, nil
	}
	if f.UncompressedSize64 > maxEntrySize {
		return nil, errors.Errorf("entry too large: %d bytes", f.UncompressedSize64)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
	if err != nil {
		return nil, err
	}
	if len(content) > maxEntrySize {
		return nil, errors.Errorf("entry exceeds %d bytes", maxEntrySize)
	}
	return content, nil
}

// 💾 Write encodes pkg as a zip container in package order. Unmodified
// entries read from an archive are copied without recompression.
func Write(pkg *document.Package) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for e := range pkg.All() {
		if !e.Modified() && e.Origin != nil {
			if err := w.Copy(e.Origin); err != nil {
				return nil, errors.Errorf("copying %s: %w", e.Name, err)
			}
			continue
		}

		header := &zip.FileHeader{Name: e.Name, Method: zip.Deflate}
		if e.Origin != nil {
			h := e.Origin.FileHeader
			h.Extra = nil
			header = &h
		}

		fw, err := w.CreateHeader(header)
		if err != nil {
			return nil, errors.Errorf("creating %s: %w", e.Name, err)
		}
		if _, err := fw.Write(e.Data); err != nil {
			return nil, errors.Errorf("writing %s: %w", e.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, errors.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}
