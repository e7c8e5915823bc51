// Package store reads and writes snapshot files.
//
// A snapshot file holds one entry per recorded snapshot. An entry is the
// snapshot identifier immediately followed by the serialized value, which
// may span several lines. Entries are kept sorted and separated by one
// blank line, and the file ends with a newline:
//
//	pkg.TestA={
//	  "id": "x"
//	}
//
//	pkg.TestB[empty]=[]
//
// A Store is loaded once, changed in memory and written back with Flush.
// It is not safe for concurrent use.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/signadot/snapshot/debug"
	"github.com/signadot/snapshot/ident"
)

var (
	ErrIO    = errors.New("snapshot store i/o error")
	ErrEntry = errors.New("invalid snapshot entry")
)

// Ext is the snapshot file extension.
const Ext = ".snap"

type Store struct {
	path    string
	entries map[string]string
	unnamed []string
	loaded  []byte
}

// New returns an empty store for path without reading it.
func New(path string) *Store {
	return &Store{path: path, entries: map[string]string{}}
}

// PathFor returns the snapshot file of unit under base. Dots in unit
// become directory separators.
func PathFor(base, unit string) string {
	parts := append([]string{base}, strings.Split(unit, ".")...)
	return filepath.Join(parts...) + Ext
}

// Load reads the snapshot file at path. A missing file gives an empty
// store.
func Load(path string) (*Store, error) {
	s := New(path)
	d, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if debug.Store() {
				debug.Logf("store %s: no file\n", path)
			}
			return s, nil
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrIO, path, err)
	}
	s.loaded = d
	for _, raw := range splitEntries(string(d)) {
		name, _, ok := ident.Split(raw)
		if !ok {
			s.unnamed = append(s.unnamed, raw)
			continue
		}
		if debug.Store() {
			if _, dup := s.entries[name]; dup {
				debug.Logf("store %s: %s appears more than once, keeping the last\n", path, name)
			}
		}
		s.entries[name] = raw
	}
	if debug.Store() {
		debug.Logf("store %s: loaded %d entries, %d unnamed\n", path, len(s.entries), len(s.unnamed))
	}
	return s, nil
}

// splitEntries splits file content into raw entries. An entry starts at
// the first line and at every line that begins with an identifier,
// whether or not a blank line precedes it. Blank lines in front of an
// entry and at the end are dropped.
func splitEntries(text string) []string {
	var (
		res    []string
		cur    []string
		blanks int
	)
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			blanks++
			continue
		}
		if cur == nil || ident.IsStart(line) {
			if cur != nil {
				res = append(res, strings.Join(cur, "\n"))
			}
			cur = []string{line}
			blanks = 0
			continue
		}
		for ; blanks > 0; blanks-- {
			cur = append(cur, "")
		}
		cur = append(cur, line)
	}
	if cur != nil {
		res = append(res, strings.Join(cur, "\n"))
	}
	return res
}

func (s *Store) Path() string {
	return s.path
}

// Len returns the number of named entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Get returns the raw entry named name.
func (s *Store) Get(name string) (string, bool) {
	raw, ok := s.entries[name]
	return raw, ok
}

// Value returns the serialized value of the entry named name.
func (s *Store) Value(name string) (string, bool) {
	raw, ok := s.entries[name]
	if !ok {
		return "", false
	}
	return raw[len(name):], true
}

// Put inserts raw, replacing any entry with the same name.
func (s *Store) Put(raw string) error {
	name, _, ok := ident.Split(raw)
	if !ok {
		return fmt.Errorf("%w: no identifier in %.40q", ErrEntry, raw)
	}
	return s.put(name, raw)
}

// PutNamed inserts raw under name. raw must begin with exactly name.
func (s *Store) PutNamed(name, raw string) error {
	got, _, ok := ident.Split(raw)
	if !ok || got != name {
		return fmt.Errorf("%w: %.40q does not read back as %s", ErrEntry, raw, name)
	}
	return s.put(name, raw)
}

// put stores raw unless a line after the first would start a new entry
// when the file is loaded again.
func (s *Store) put(name, raw string) error {
	if _, rest, ok := strings.Cut(raw, "\n"); ok {
		for _, line := range strings.Split(rest, "\n") {
			if ident.IsStart(line) {
				return fmt.Errorf("%w: %s: value line %.40q reads as a new entry", ErrEntry, name, line)
			}
		}
	}
	if debug.Store() {
		debug.Logf("store %s: put %s\n", s.path, name)
	}
	s.entries[name] = raw
	return nil
}

// Delete removes the entry named name.
func (s *Store) Delete(name string) bool {
	if _, ok := s.entries[name]; !ok {
		return false
	}
	delete(s.entries, name)
	return true
}

// Names returns the names of the entries in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Unnamed returns the blocks of the loaded file which do not start with
// an identifier. They are written back unchanged.
func (s *Store) Unnamed() []string {
	return slices.Clone(s.unnamed)
}

// Entries returns all raw entries in ascending order.
func (s *Store) Entries() []string {
	res := make([]string, 0, len(s.entries)+len(s.unnamed))
	for _, raw := range s.entries {
		res = append(res, raw)
	}
	res = append(res, s.unnamed...)
	slices.Sort(res)
	return res
}

// Bytes returns the file content Flush writes, nil when there are no
// entries.
func (s *Store) Bytes() []byte {
	entries := s.Entries()
	if len(entries) == 0 {
		return nil
	}
	return []byte(strings.Join(entries, "\n\n") + "\n")
}

// Changed reports whether Flush would write.
func (s *Store) Changed() bool {
	d := s.Bytes()
	return d != nil && !bytes.Equal(d, s.loaded)
}

// Flush writes the store to its path. Nothing is written when the store
// is empty or unchanged since it was loaded.
func (s *Store) Flush() error {
	if !s.Changed() {
		if debug.Store() {
			debug.Logf("store %s: nothing to flush\n", s.path)
		}
		return nil
	}
	d := s.Bytes()
	if err := writeFile(s.path, d); err != nil {
		return err
	}
	if debug.Store() {
		debug.Logf("store %s: wrote %d entries\n", s.path, len(s.entries))
	}
	s.loaded = d
	return nil
}

func writeFile(path string, d []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %w", ErrIO, dir, err)
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("%w: create temp: %w", ErrIO, err)
	}
	tempPath := f.Name()
	if _, err := f.Write(d); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("%w: write %s: %w", ErrIO, tempPath, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("%w: sync %s: %w", ErrIO, tempPath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("%w: close %s: %w", ErrIO, tempPath, err)
	}
	if err := os.Chmod(tempPath, 0o644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("%w: chmod %s: %w", ErrIO, tempPath, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("%w: rename %s: %w", ErrIO, path, err)
	}
	return nil
}
