// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package manifest discovers the user binaries to be packed into the kernel
// image and assigns each of them its index, region tag and symbol names.
//
// The linker script and the assembly table are generated from the same
// Manifest value so the .data.app<i> sections reserved by the first one
// always match the sections defined by the second one.
package manifest

import (
	"io"
	"os"
	"path/filepath"
	"strconv"

	"k8s.io/klog/v2"
)

// PageSize is the page size of the target. Every embedded binary starts on
// its own page.
const PageSize = 0x1000

// Entry describes one user binary.
type Entry struct {
	Name  string // base name, as found in the directory
	Path  string // path used to read and to .incbin the file
	Index int    // position in the canonical order
}

// Tag returns the region tag: app<index>.
func (e *Entry) Tag() string { return "app" + strconv.Itoa(e.Index) }

// Section returns the name of the data section that holds the binary.
func (e *Entry) Section() string { return ".data." + e.Tag() }

// StartSym returns the label placed before the first byte of the binary.
func (e *Entry) StartSym() string { return "app_" + strconv.Itoa(e.Index) + "_start" }

// EndSym returns the label placed after the last byte of the binary.
func (e *Entry) EndSym() string { return "app_" + strconv.Itoa(e.Index) + "_end" }

// Manifest is the ordered list of binaries of one generation run.
type Manifest struct {
	Dir     string
	Entries []*Entry
}

// Len returns the number of binaries.
func (m *Manifest) Len() int { return len(m.Entries) }

// Plan assigns indices to names in the order given. The names are expected
// to be sorted by Discover.
func Plan(dir string, names []string) *Manifest {
	m := &Manifest{Dir: dir, Entries: make([]*Entry, len(names))}
	for i, name := range names {
		m.Entries[i] = &Entry{
			Name:  name,
			Path:  filepath.Join(dir, name),
			Index: i,
		}
	}
	return m
}

// Image is an entry with the content of its file.
type Image struct {
	*Entry
	Data []byte
}

// Load reads all binaries of the manifest. It fails on the first file that
// cannot be read in full or is larger than maxSize (0 means no limit).
func (m *Manifest) Load(maxSize uint64) ([]Image, error) {
	imgs := make([]Image, len(m.Entries))
	for i, e := range m.Entries {
		data, err := readBin(e.Path, maxSize)
		if err != nil {
			return nil, &InclusionError{e.Path, err}
		}
		klog.V(1).Infof("%s: %s (%d bytes)", e.Tag(), e.Path, len(data))
		imgs[i] = Image{e, data}
	}
	return imgs, nil
}

func readBin(name string, maxSize uint64) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, ErrNotRegular
	}
	size := fi.Size()
	if maxSize != 0 && uint64(size) > maxSize {
		return nil, ErrTooLarge
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) != size {
		return nil, ErrSizeChanged
	}
	return data, nil
}

// AlignUp rounds v up to the multiple of a. The a must be a power of two.
func AlignUp(v, a uint64) uint64 {
	return (v + a - 1) &^ (a - 1)
}

// Region is the placement of an image in the application area, as the
// linker script lays it out: every region starts at a page boundary.
type Region struct {
	Image
	Addr uint64
}

// End returns the address just past the last byte of the image.
func (r *Region) End() uint64 { return r.Addr + uint64(len(r.Data)) }

// Layout places the images one after another starting from the first page
// boundary at or above base.
func Layout(imgs []Image, base uint64) []Region {
	rs := make([]Region, len(imgs))
	addr := base
	for i, img := range imgs {
		addr = AlignUp(addr, PageSize)
		rs[i] = Region{img, addr}
		addr += uint64(len(img.Data))
	}
	return rs
}
