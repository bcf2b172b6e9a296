// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"errors"
	"io"
	"sort"

	"github.com/embeddedgo/kpack/kpack/internal/manifest"
)

type Section struct {
	Name string // region tag
	Addr uint64 // address of the first byte
	Data []byte // section data
}

type Sections []*Section

// RegionSections returns the sections that the linker script gives to the
// laid out regions.
func RegionSections(rs []manifest.Region) Sections {
	ss := make(Sections, len(rs))
	for i := range rs {
		r := &rs[i]
		ss[i] = &Section{r.Tag(), r.Addr, r.Data}
	}
	return ss
}

// SortByAddr sorts sections according to the Addr field.
func (ss Sections) SortByAddr() {
	sort.SliceStable(
		ss,
		func(i, j int) bool {
			return ss[i].Addr < ss[j].Addr
		},
	)
}

// Size returns the number of bytes between the beginning of the first
// section and the end of the last one. The sections must be sorted.
func (ss Sections) Size() int {
	if len(ss) == 0 {
		return 0
	}
	last := ss[len(ss)-1]
	return int(last.Addr + uint64(len(last.Data)) - ss[0].Addr)
}

// Flatten flattens sections by writting their data to the provided io.Writer
// according to the Addr field (before writting the sections are sorted using
// SortByAddr method). The gaps between sections are filled using the pad byte.
func (ss Sections) Flatten(w io.Writer, pad byte) (n int, err error) {
	if len(ss) == 0 {
		return
	}
	ss.SortByAddr()
	pa := ss[0].Addr
	n, err = w.Write(ss[0].Data)
	if err != nil {
		return
	}
	pa += uint64(n)
	var padCache []byte
	for _, s := range ss[1:] {
		if s.Addr < pa {
			err = errors.New("flatten: overlaping sections")
			return
		}
		m := int(s.Addr - pa)
		if m != 0 {
			m, err = w.Write(PadBytes(&padCache, m, pad))
			n += m
			if err != nil {
				return
			}
			pa += uint64(m)
		}
		m, err = w.Write(s.Data)
		n += m
		if err != nil {
			return
		}
		pa += uint64(m)
	}
	return
}

// PadBytes returns the slice containing n byte equal b.
func PadBytes(cache *[]byte, n int, b byte) []byte {
	if len(*cache) < n {
		*cache = make([]byte, n)
		for i := range *cache {
			(*cache)[i] = b
		}
	}
	return (*cache)[:n]
}
