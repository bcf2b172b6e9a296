// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"flag"

	"github.com/embeddedgo/kpack/kpack/internal/manifest"
)

// Source describes where the user binaries come from.
type Source struct {
	Dir     string
	Pattern string
	MaxName int
	MaxApps int
	MaxSize uint64
}

// DefaultSource returns the Source used when no flags are given.
func DefaultSource() *Source {
	return &Source{Dir: BinDir, MaxName: manifest.DefaultMaxName}
}

// SourceFlags registers the flags that describe the source of binaries.
func SourceFlags(fs *flag.FlagSet) *Source {
	src := DefaultSource()
	fs.StringVar(&src.Dir, "dir", src.Dir, "directory with the user program `binaries`")
	fs.StringVar(
		&src.Pattern, "pattern", src.Pattern,
		"pack only the files whose names match the `glob`",
	)
	fs.IntVar(
		&src.MaxName, "maxname", src.MaxName,
		"maximum name `length` in bytes, 0 means no limit",
	)
	fs.IntVar(
		&src.MaxApps, "maxapps", src.MaxApps,
		"maximum `number` of binaries, 0 means no limit",
	)
	fs.Uint64Var(
		&src.MaxSize, "maxsize", src.MaxSize,
		"maximum binary `size` in bytes, 0 means no limit",
	)
	return src
}

// Manifest discovers the binaries and plans their regions.
func (src *Source) Manifest() (*manifest.Manifest, error) {
	names, err := manifest.Discover(
		src.Dir,
		&manifest.Options{
			Pattern: src.Pattern,
			MaxName: src.MaxName,
			MaxApps: src.MaxApps,
		},
	)
	if err != nil {
		return nil, err
	}
	return manifest.Plan(src.Dir, names), nil
}

// Images is like Manifest but also reads all the binaries.
func (src *Source) Images() (*manifest.Manifest, []manifest.Image, error) {
	m, err := src.Manifest()
	if err != nil {
		return nil, nil, err
	}
	imgs, err := m.Load(src.MaxSize)
	if err != nil {
		return nil, nil, err
	}
	return m, imgs, nil
}
