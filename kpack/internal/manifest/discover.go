// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"k8s.io/klog/v2"
)

// DefaultMaxName is the longest name the kernel loader can copy into its
// name table (MAX_STR_LEN without the terminating NUL).
const DefaultMaxName = 199

var (
	ErrNotRegular   = errors.New("not a regular file")
	ErrDuplicate    = errors.New("duplicate name")
	ErrNameTooLong  = errors.New("name too long")
	ErrTooMany      = errors.New("too many binaries")
	ErrTooLarge     = errors.New("file too large")
	ErrSizeChanged  = errors.New("file changed while reading")
	ErrUnknownImage = errors.New("no such binary")
)

// Options controls which directory entries are taken as user binaries.
type Options struct {
	Pattern string // glob the names must match, empty matches every name
	MaxName int    // maximum name length in bytes, 0 means no limit
	MaxApps int    // maximum number of binaries, 0 means no limit
}

// Discover lists dir and returns the names of the binaries found there in
// the canonical (byte-wise lexicographic) order. Every entry that passes the
// Pattern filter must be a regular file or a symbolic link to one.
func Discover(dir string, opts *Options) ([]string, error) {
	return discover(os.DirFS(dir), dir, opts)
}

func discover(fsys fs.FS, dir string, opts *Options) ([]string, error) {
	if opts == nil {
		opts = new(Options)
	}
	des, err := fs.ReadDir(fsys, ".")
	if err != nil {
		var pe *fs.PathError
		if errors.As(err, &pe) {
			err = pe.Err
		}
		return nil, &DiscoveryError{dir, err}
	}
	names := make([]string, 0, len(des))
	for _, de := range des {
		name := de.Name()
		if opts.Pattern != "" {
			ok, err := path.Match(opts.Pattern, name)
			if err != nil {
				return nil, &DiscoveryError{dir, err}
			}
			if !ok {
				klog.V(2).Infof("discover: skipping %s", name)
				continue
			}
		}
		p := filepath.Join(dir, name)
		typ := de.Type()
		if typ&fs.ModeSymlink != 0 {
			fi, err := fs.Stat(fsys, name)
			if err != nil {
				return nil, &DiscoveryError{p, err}
			}
			typ = fi.Mode().Type()
		}
		if !typ.IsRegular() {
			return nil, &DiscoveryError{p, ErrNotRegular}
		}
		if opts.MaxName > 0 && len(name) > opts.MaxName {
			return nil, &DiscoveryError{
				p, fmt.Errorf("%w: %d > %d bytes", ErrNameTooLong, len(name), opts.MaxName),
			}
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for i := 1; i < len(names); i++ {
		if names[i] == names[i-1] {
			return nil, &DiscoveryError{filepath.Join(dir, names[i]), ErrDuplicate}
		}
	}
	if opts.MaxApps > 0 && len(names) > opts.MaxApps {
		return nil, &DiscoveryError{
			dir, fmt.Errorf("%w: %d > %d", ErrTooMany, len(names), opts.MaxApps),
		}
	}
	klog.V(1).Infof("discover: %d binaries in %s", len(names), dir)
	return names, nil
}
