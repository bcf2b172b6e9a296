// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pack

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/embeddedgo/kpack/kpack/internal/asmtab"
	"github.com/embeddedgo/kpack/kpack/internal/cmd/asm"
	"github.com/embeddedgo/kpack/kpack/internal/cmd/ld"
	"github.com/embeddedgo/kpack/kpack/internal/ldscript"
	"github.com/embeddedgo/kpack/kpack/internal/util"
	"k8s.io/klog/v2"
)

const Descr = "generate both the linker script and the assembly table"

// Outputs are the paths of the generated files.
type Outputs struct {
	Ld  string
	Asm string
}

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [OPTIONS]\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	src := util.SourceFlags(fs)
	cfg := ld.ConfigFlags(fs)
	opts := asm.OptionFlags(fs)
	var out Outputs
	fs.StringVar(&out.Ld, "ld", util.LdFile, "output linker script `file`")
	fs.StringVar(&out.Asm, "asm", util.AsmFile, "output assembly `file`")
	util.LogFlags(fs)
	fs.Parse(args)
	if fs.NArg() != 0 {
		fs.Usage()
		os.Exit(1)
	}
	util.FatalErr(cmd, Run(src, cfg, opts, &out))
	klog.Flush()
}

// Run generates both artifacts from one manifest. Nothing is written unless
// both of them have been rendered.
func Run(src *util.Source, cfg *ldscript.Config, opts *asmtab.Options, out *Outputs) error {
	m, imgs, err := src.Images()
	if err != nil {
		return err
	}
	if m.Len() == 0 {
		util.Warn("pack: no binaries in %s", src.Dir)
	}
	var ldBuf, asmBuf bytes.Buffer
	if err = ldscript.Write(&ldBuf, m, cfg); err != nil {
		return err
	}
	if err = asmtab.Write(&asmBuf, imgs, opts); err != nil {
		return err
	}
	if err = util.WriteFile(out.Ld, ldBuf.Bytes()); err != nil {
		return err
	}
	if err = util.WriteFile(out.Asm, asmBuf.Bytes()); err != nil {
		// The linker script is already replaced. Do not leave the old table
		// next to it.
		os.Remove(out.Asm)
		return err
	}
	klog.V(1).Infof("pack: %d binaries, %s, %s", m.Len(), out.Ld, out.Asm)
	return nil
}
