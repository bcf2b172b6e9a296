// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package manifest

// DiscoveryError is returned when the directory with user binaries cannot be
// listed or contains entries that cannot be packed.
type DiscoveryError struct {
	Path string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return "discover " + e.Path + ": " + e.Err.Error()
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// InclusionError is returned when a binary cannot be read in full.
type InclusionError struct {
	Path string
	Err  error
}

func (e *InclusionError) Error() string {
	return "include " + e.Path + ": " + e.Err.Error()
}

func (e *InclusionError) Unwrap() error { return e.Err }
