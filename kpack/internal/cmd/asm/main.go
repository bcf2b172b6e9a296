// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/embeddedgo/kpack/kpack/internal/asmtab"
	"github.com/embeddedgo/kpack/kpack/internal/util"
	"k8s.io/klog/v2"
)

const Descr = "generate the assembly table that embeds the binaries into the kernel"

// OptionFlags registers the assembly table flags.
func OptionFlags(fs *flag.FlagSet) *asmtab.Options {
	opts := new(asmtab.Options)
	fs.BoolVar(
		&opts.Inline, "inline", false,
		"emit the binaries as .byte data instead of .incbin",
	)
	fs.StringVar(
		&opts.InitProc, "init", "",
		"emit INIT_PROC naming the first user process `binary`",
	)
	return opts
}

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [OPTIONS]\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	src := util.SourceFlags(fs)
	opts := OptionFlags(fs)
	out := fs.String("o", util.AsmFile, "output `file`")
	util.LogFlags(fs)
	fs.Parse(args)
	if fs.NArg() != 0 {
		fs.Usage()
		os.Exit(1)
	}
	util.FatalErr(cmd, Run(src, opts, *out))
	klog.Flush()
}

// Run writes the assembly table for the binaries described by src to out.
func Run(src *util.Source, opts *asmtab.Options, out string) error {
	_, imgs, err := src.Images()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err = asmtab.Write(&buf, imgs, opts); err != nil {
		return err
	}
	if err = util.WriteFile(out, buf.Bytes()); err != nil {
		return err
	}
	klog.V(1).Infof("asm: %s: %d binaries", out, len(imgs))
	return nil
}
