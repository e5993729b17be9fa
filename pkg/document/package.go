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

package document

import (
	"archive/zip"
	"bytes"
	"iter"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrDuplicateEntry = errors.Base("duplicate entry")
	ErrEntryNotFound  = errors.Base("entry not found")
)

// 📄 Entry is one named member of a package
type Entry struct {
	Name string
	Data []byte
	// Origin is the archive member the entry was read from, nil for entries
	// created in memory. Unmodified entries are copied from it raw.
	Origin *zip.File

	modified bool
}

// Modified reports whether Set replaced the entry's bytes
func (e Entry) Modified() bool { return e.modified }

// 📦 Package is an ordered set of uniquely named entries
type Package struct {
	entries []*Entry
	index   map[string]int
}

// 🏭 NewPackage creates an empty package
func NewPackage() *Package {
	return &Package{index: make(map[string]int)}
}

// Add appends an entry. Names must be unique.
func (p *Package) Add(name string, data []byte, origin *zip.File) error {
	if _, ok := p.index[name]; ok {
		return errors.Errorf("%w: %s", ErrDuplicateEntry, name)
	}
	p.index[name] = len(p.entries)
	p.entries = append(p.entries, &Entry{Name: name, Data: data, Origin: origin})
	return nil
}

// Len returns the number of entries
func (p *Package) Len() int { return len(p.entries) }

// Names lists entry names in package order
func (p *Package) Names() []string {
	out := make([]string, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.Name
	}
	return out
}

// Has reports whether name exists
func (p *Package) Has(name string) bool {
	_, ok := p.index[name]
	return ok
}

// Get returns the bytes of name
func (p *Package) Get(name string) ([]byte, bool) {
	i, ok := p.index[name]
	if !ok {
		return nil, false
	}
	return p.entries[i].Data, true
}

// 📝 Set replaces the bytes of an existing entry wholesale.
// Identical bytes leave the entry unmodified.
func (p *Package) Set(name string, data []byte) error {
	i, ok := p.index[name]
	if !ok {
		return errors.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	e := p.entries[i]
	if bytes.Equal(e.Data, data) {
		return nil
	}
	e.Data = data
	e.modified = true
	return nil
}

// All yields entries in package order
func (p *Package) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range p.entries {
			if !yield(*e) {
				return
			}
		}
	}
}

// ModifiedNames lists the entries replaced through Set
func (p *Package) ModifiedNames() []string {
	var out []string
	for _, e := range p.entries {
		if e.modified {
			out = append(out, e.Name)
		}
	}
	return out
}
