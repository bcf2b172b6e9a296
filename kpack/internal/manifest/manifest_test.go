// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package manifest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeBins(t *testing.T, bins map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range bins {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestPlan(t *testing.T) {
	dir := writeBins(t, map[string][]byte{"b.bin": {2}, "a.bin": {1}})
	names, err := Discover(dir, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	m := Plan(dir, names)
	type row struct {
		Name, Path, Tag, Section, Start, End string
		Index                                int
	}
	var got []row
	for _, e := range m.Entries {
		got = append(got, row{
			e.Name, e.Path, e.Tag(), e.Section(), e.StartSym(), e.EndSym(), e.Index,
		})
	}
	want := []row{
		{
			"a.bin", filepath.Join(dir, "a.bin"),
			"app0", ".data.app0", "app_0_start", "app_0_end", 0,
		}, {
			"b.bin", filepath.Join(dir, "b.bin"),
			"app1", ".data.app1", "app_1_start", "app_1_end", 1,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Plan diff (-want +got):\n%s", diff)
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}
}

func TestPlanTagsUnique(t *testing.T) {
	names := make([]string, 25)
	for i := range names {
		names[i] = string(rune('a'+i)) + ".bin"
	}
	m := Plan("bin", names)
	seen := make(map[string]bool)
	for i, e := range m.Entries {
		if e.Index != i {
			t.Errorf("%s: Index = %d, want %d", e.Name, e.Index, i)
		}
		if seen[e.Tag()] {
			t.Errorf("%s: tag %s used twice", e.Name, e.Tag())
		}
		seen[e.Tag()] = true
	}
}

func TestLoad(t *testing.T) {
	bins := map[string][]byte{
		"a.bin": {0x13, 0x05, 0x00, 0x00},
		"b.bin": bytes.Repeat([]byte{0xaa}, 3*PageSize+1),
		"empty": {},
	}
	dir := writeBins(t, bins)
	names, err := Discover(dir, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	imgs, err := Plan(dir, names).Load(0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(imgs) != len(bins) {
		t.Fatalf("Load returned %d images, want %d", len(imgs), len(bins))
	}
	for i, img := range imgs {
		if img.Index != i {
			t.Errorf("%s: Index = %d, want %d", img.Name, img.Index, i)
		}
		if !bytes.Equal(img.Data, bins[img.Name]) {
			t.Errorf("%s: data differs from the file", img.Name)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	dir := writeBins(t, map[string][]byte{"a.bin": {1, 2, 3}, "b.bin": {4}})
	m := Plan(dir, []string{"a.bin", "b.bin", "c.bin"})
	for _, test := range []struct {
		desc     string
		m        *Manifest
		maxSize  uint64
		wantPath string
		wantErr  error
	}{
		{
			desc:     "missing",
			m:        m,
			wantPath: filepath.Join(dir, "c.bin"),
			wantErr:  os.ErrNotExist,
		}, {
			desc:     "too large",
			m:        &Manifest{dir, m.Entries[:2]},
			maxSize:  2,
			wantPath: filepath.Join(dir, "a.bin"),
			wantErr:  ErrTooLarge,
		},
	} {
		t.Run(test.desc, func(t *testing.T) {
			imgs, err := test.m.Load(test.maxSize)
			if imgs != nil {
				t.Errorf("Load returned %d images with an error", len(imgs))
			}
			var ie *InclusionError
			if !errors.As(err, &ie) {
				t.Fatalf("Load: got %v, want InclusionError", err)
			}
			if ie.Path != test.wantPath {
				t.Errorf("Path = %q, want %q", ie.Path, test.wantPath)
			}
			if !errors.Is(err, test.wantErr) {
				t.Errorf("err = %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := Plan(dir, []string{"sub"}).Load(0)
	if !errors.Is(err, ErrNotRegular) {
		t.Errorf("Load: got %v, want %v", err, ErrNotRegular)
	}
}

func TestAlignUp(t *testing.T) {
	for _, test := range []struct {
		v, a, want uint64
	}{
		{0, PageSize, 0},
		{1, PageSize, PageSize},
		{PageSize - 1, PageSize, PageSize},
		{PageSize, PageSize, PageSize},
		{PageSize + 1, PageSize, 2 * PageSize},
		{0x80200123, PageSize, 0x80201000},
		{5, 4, 8},
	} {
		if got := AlignUp(test.v, test.a); got != test.want {
			t.Errorf("AlignUp(%#x, %#x) = %#x, want %#x", test.v, test.a, got, test.want)
		}
	}
}

func TestLayout(t *testing.T) {
	e := func(i int) *Entry { return &Entry{Name: "x", Index: i} }
	imgs := []Image{
		{e(0), []byte{1}},
		{e(1), bytes.Repeat([]byte{2}, PageSize)},
		{e(2), nil},
		{e(3), bytes.Repeat([]byte{3}, PageSize+1)},
		{e(4), []byte{4, 4}},
	}
	const base = 0x80400010
	rs := Layout(imgs, base)
	want := []uint64{0x80401000, 0x80402000, 0x80403000, 0x80403000, 0x80405000}
	var got []uint64
	for i := range rs {
		got = append(got, rs[i].Addr)
		if rs[i].Addr%PageSize != 0 {
			t.Errorf("region %d at %#x is not page aligned", i, rs[i].Addr)
		}
		if n := rs[i].End() - rs[i].Addr; n != uint64(len(imgs[i].Data)) {
			t.Errorf("region %d: End-Addr = %d, want %d", i, n, len(imgs[i].Data))
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Layout addresses diff (-want +got):\n%s", diff)
	}
	if rs := Layout(nil, base); len(rs) != 0 {
		t.Errorf("Layout(nil) = %v, want no regions", rs)
	}
}

func TestErrorMessages(t *testing.T) {
	de := &DiscoveryError{"user/target/bin", os.ErrNotExist}
	if got, want := de.Error(), "discover user/target/bin: file does not exist"; got != want {
		t.Errorf("DiscoveryError = %q, want %q", got, want)
	}
	ie := &InclusionError{"user/target/bin/a.bin", ErrTooLarge}
	if got, want := ie.Error(), "include user/target/bin/a.bin: file too large"; got != want {
		t.Errorf("InclusionError = %q, want %q", got, want)
	}
}
