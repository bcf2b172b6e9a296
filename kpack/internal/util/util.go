// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"flag"
	"fmt"
	"os"

	"k8s.io/klog/v2"
)

// Default locations, relative to the root of the OS source tree.
const (
	BinDir  = "./user/target/bin"
	LdFile  = "os/kernel_app.ld"
	AsmFile = "os/link_app.S"
)

func Warn(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
}

// FatalErr prints an error description and exits the program if the
// err != nil.
func FatalErr(what string, err error) {
	if err == nil {
		return
	}
	klog.Flush()
	s := err.Error() + "\n"
	if what != "" {
		s = what + ": " + s
	}
	os.Stderr.WriteString(s)
	os.Exit(1)
}

// LogFlags registers the klog flags (-v, -vmodule, ...) in fs.
func LogFlags(fs *flag.FlagSet) {
	klog.InitFlags(fs)
}
