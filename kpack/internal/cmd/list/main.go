// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package list

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/embeddedgo/kpack/kpack/internal/manifest"
	"github.com/embeddedgo/kpack/kpack/internal/util"
)

const Descr = "print the binaries and their regions in the packing order"

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [OPTIONS]\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	src := util.SourceFlags(fs)
	base := fs.Uint64("base", 0, "`address` of the first region")
	util.LogFlags(fs)
	fs.Parse(args)
	if fs.NArg() != 0 {
		fs.Usage()
		os.Exit(1)
	}
	_, imgs, err := src.Images()
	util.FatalErr(cmd, err)
	util.FatalErr(cmd, Print(os.Stdout, manifest.Layout(imgs, *base)))
}

// Print writes a table describing rs to w.
func Print(w io.Writer, rs []manifest.Region) error {
	tw := new(tabwriter.Writer)
	tw.Init(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tSECTION\tSTART\tEND\tSIZE\tNAME")
	for i := range rs {
		r := &rs[i]
		fmt.Fprintf(
			tw, "%d\t%s\t%#x\t%#x\t%d\t%s\n",
			r.Index, r.Section(), r.Addr, r.End(), len(r.Data), r.Name,
		)
	}
	return tw.Flush()
}
