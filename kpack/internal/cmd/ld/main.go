// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ld

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/embeddedgo/kpack/kpack/internal/ldscript"
	"github.com/embeddedgo/kpack/kpack/internal/util"
	"k8s.io/klog/v2"
)

const Descr = "generate the kernel linker script with a page aligned region for every binary"

// ConfigFlags registers the linker script flags.
func ConfigFlags(fs *flag.FlagSet) *ldscript.Config {
	cfg := ldscript.DefaultConfig()
	fs.Uint64Var(&cfg.Base, "base", cfg.Base, "kernel load `address`")
	fs.StringVar(&cfg.Entry, "entry", cfg.Entry, "entry point `symbol`")
	fs.StringVar(&cfg.Arch, "arch", cfg.Arch, "output `architecture`")
	return cfg
}

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [OPTIONS]\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	src := util.SourceFlags(fs)
	cfg := ConfigFlags(fs)
	out := fs.String("o", util.LdFile, "output `file`")
	util.LogFlags(fs)
	fs.Parse(args)
	if fs.NArg() != 0 {
		fs.Usage()
		os.Exit(1)
	}
	util.FatalErr(cmd, Run(src, cfg, *out))
	klog.Flush()
}

// Run writes the linker script for the binaries described by src to out.
func Run(src *util.Source, cfg *ldscript.Config, out string) error {
	m, err := src.Manifest()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err = ldscript.Write(&buf, m, cfg); err != nil {
		return err
	}
	if err = util.WriteFile(out, buf.Bytes()); err != nil {
		return err
	}
	klog.V(1).Infof("ld: %s: %d regions", out, m.Len())
	return nil
}
