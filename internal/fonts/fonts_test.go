package fonts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("not a real font"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Zebra.ttf")
	writeFile(t, dir, "alpha.otf")
	writeFile(t, dir, "notes.txt")
	writeFile(t, dir, "image.png")
	if err := os.Mkdir(filepath.Join(dir, "nested.ttf"), 0o755); err != nil {
		t.Fatal(err)
	}

	list, err := Scan(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d descriptors, want 2: %+v", len(list), list)
	}
	// Unparsable files fall back to the file stem; list is sorted by name.
	if list[0].Name != "Zebra" || list[1].Name != "alpha" {
		t.Errorf("names = %q, %q", list[0].Name, list[1].Name)
	}
	if list[0].Format != FormatTTF || list[1].Format != FormatOTF {
		t.Errorf("formats = %q, %q", list[0].Format, list[1].Format)
	}
}

func TestScan_MissingDir(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestSelect(t *testing.T) {
	list := []Descriptor{
		{Path: "/f/Lato.ttf", Name: "Lato", Format: FormatTTF},
		{Path: "/f/Oswald.ttf", Name: "Oswald", Format: FormatTTF},
		{Path: "/f/Oxygen.otf", Name: "Oxygen", Format: FormatOTF},
	}

	cases := []struct {
		name     string
		selector string
		wantName string
		wantErr  bool
	}{
		{"empty picks default first", "", "Lato", false},
		{"one-based index", "2", "Oswald", false},
		{"index out of range", "4", "", true},
		{"exact name", "oswald", "Oswald", false},
		{"unique prefix", "lat", "Lato", false},
		{"ambiguous prefix", "o", "", true},
		{"unknown name", "futura", "", true},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Select(list, tt.selector)
			if tt.wantErr {
				if !errors.Is(err, ErrNoFontSelected) {
					t.Errorf("err = %v, want ErrNoFontSelected", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if d.Name != tt.wantName {
				t.Errorf("selected %q, want %q", d.Name, tt.wantName)
			}
		})
	}
}

func TestSelect_EmptyList(t *testing.T) {
	if _, err := Select(nil, ""); !errors.Is(err, ErrNoFontSelected) {
		t.Errorf("err = %v, want ErrNoFontSelected", err)
	}
}
