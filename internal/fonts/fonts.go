// Package fonts discovers outline fonts in a directory and resolves the
// user's selection to a descriptor the title renderer can load.
package fonts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/image/font/sfnt"
)

// ErrNoFontSelected is returned when a font is required but none could be
// resolved (empty directory, bad selector, or zero-value descriptor).
var ErrNoFontSelected = errors.New("no font selected and no default font available")

// Format is the outline-font container format, derived from the extension.
type Format string

const (
	FormatTTF Format = "ttf"
	FormatOTF Format = "otf"
)

// Descriptor identifies one usable font file. The core never mutates a
// descriptor; it is handed through to the rendering primitive as-is.
type Descriptor struct {
	Path   string
	Name   string
	Format Format
}

// Zero reports whether the descriptor carries no font.
func (d Descriptor) Zero() bool { return d.Path == "" }

// Scan lists the .ttf/.otf files directly inside dir, sorted by display
// name. The display name comes from the font's own name table; files whose
// name table cannot be read fall back to the file stem and are still
// usable.
func Scan(dir string) ([]Descriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan fonts in %q: %w", dir, err)
	}

	var list []Descriptor
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		var format Format
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".ttf":
			format = FormatTTF
		case ".otf":
			format = FormatOTF
		default:
			continue
		}

		path := filepath.Join(dir, e.Name())
		list = append(list, Descriptor{
			Path:   path,
			Name:   displayName(path, e.Name()),
			Format: format,
		})
	}

	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// displayName reads the family name from the font's sfnt name table,
// falling back to the file stem.
func displayName(path, base string) string {
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	data, err := os.ReadFile(path)
	if err != nil {
		return stem
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return stem
	}
	name, err := f.Name(nil, sfnt.NameIDFamily)
	if err != nil || name == "" {
		return stem
	}
	return name
}

// Select resolves a user selector against the scanned list. An empty
// selector picks the first font (the default); a number is a 1-based index
// into the list; anything else matches display names case-insensitively,
// exact match first, then unique prefix.
func Select(list []Descriptor, selector string) (Descriptor, error) {
	if len(list) == 0 {
		return Descriptor{}, ErrNoFontSelected
	}
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return list[0], nil
	}

	if idx, err := strconv.Atoi(selector); err == nil {
		if idx < 1 || idx > len(list) {
			return Descriptor{}, fmt.Errorf("%w: index %d out of range 1-%d", ErrNoFontSelected, idx, len(list))
		}
		return list[idx-1], nil
	}

	lower := strings.ToLower(selector)
	for _, d := range list {
		if strings.ToLower(d.Name) == lower {
			return d, nil
		}
	}

	var prefix []Descriptor
	for _, d := range list {
		if strings.HasPrefix(strings.ToLower(d.Name), lower) {
			prefix = append(prefix, d)
		}
	}
	if len(prefix) == 1 {
		return prefix[0], nil
	}
	if len(prefix) > 1 {
		return Descriptor{}, fmt.Errorf("%w: %q is ambiguous (%d matches)", ErrNoFontSelected, selector, len(prefix))
	}
	return Descriptor{}, fmt.Errorf("%w: no font named %q", ErrNoFontSelected, selector)
}
