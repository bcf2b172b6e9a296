// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/embeddedgo/kpack/kpack/internal/manifest"
	"github.com/embeddedgo/kpack/kpack/internal/util"
	"github.com/marcinbor85/gohex"
	"k8s.io/klog/v2"
)

const (
	DescrBin = "write the packed binaries as a flat image, one page aligned region each"
	DescrHex = "write the packed binaries in the Intel HEX format"
)

func Main(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s [OPTIONS] [%s]\nOptions:\n",
			cmd, strings.ToUpper(cmd),
		)
		fs.PrintDefaults()
	}
	src := util.SourceFlags(fs)
	base := fs.Uint64("base", 0, "`address` of the first region")
	pad := fs.Uint(
		"pad", 0,
		"pad `byte` used to fill the gaps between regions (bin only)",
	)
	util.LogFlags(fs)
	fs.Parse(args)
	if fs.NArg() > 1 {
		fs.Usage()
		os.Exit(1)
	}
	out := fs.Arg(0)
	if out == "" {
		out = "apps." + cmd
	}
	util.FatalErr(cmd, Run(src, cmd, *base, byte(*pad), out))
	klog.Flush()
}

// Run lays out the binaries described by src from base and writes them to
// out in the given format: "bin" or "hex".
func Run(src *util.Source, format string, base uint64, pad byte, out string) error {
	_, imgs, err := src.Images()
	if err != nil {
		return err
	}
	ss := util.RegionSections(manifest.Layout(imgs, base))
	buf := bytes.NewBuffer(make([]byte, 0, ss.Size()))
	switch format {
	case "bin":
		_, err = ss.Flatten(buf, pad)
	case "hex":
		err = WriteHex(buf, ss)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}
	if err = util.WriteFile(out, buf.Bytes()); err != nil {
		return err
	}
	klog.V(1).Infof("%s: %s: %d regions", format, out, len(ss))
	return nil
}

// WriteHex writes ss to buf in the Intel HEX format.
func WriteHex(buf *bytes.Buffer, ss util.Sections) error {
	mem := gohex.NewMemory()
	for _, s := range ss {
		if len(s.Data) == 0 {
			continue
		}
		addr := uint32(s.Addr)
		if uint64(addr) != s.Addr || s.Addr+uint64(len(s.Data)) > 1<<32 {
			return fmt.Errorf("%s: the address %#x doesn't fit in 32 bits", s.Name, s.Addr)
		}
		if err := mem.AddBinary(addr, s.Data); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
	}
	return mem.DumpIntelHex(buf, 16)
}
