// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Kpack packs the user program binaries into a RISC-V kernel image. It
// generates the linker script that reserves a page aligned .data.app<i>
// region for every binary and the assembly file that fills these regions
// and describes them to the kernel loader.
package main

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/embeddedgo/kpack/kpack/internal/cmd/asm"
	"github.com/embeddedgo/kpack/kpack/internal/cmd/bin"
	"github.com/embeddedgo/kpack/kpack/internal/cmd/ld"
	"github.com/embeddedgo/kpack/kpack/internal/cmd/list"
	"github.com/embeddedgo/kpack/kpack/internal/cmd/pack"
)

type tool struct {
	descr string
	main  func(cmd string, args []string)
}

var tools = map[string]tool{
	"asm":  {asm.Descr, asm.Main},
	"bin":  {bin.DescrBin, bin.Main},
	"hex":  {bin.DescrHex, bin.Main},
	"ld":   {ld.Descr, ld.Main},
	"list": {list.Descr, list.Main},
	"pack": {pack.Descr, pack.Main},
}

func printToolList() {
	names := slices.Sorted(maps.Keys(tools))
	maxLen := 0
	for _, k := range names {
		if maxLen < len(k) {
			maxLen = len(k)
		}
	}
	uw := os.Stderr
	uw.WriteString("Usage:\n  kpack COMMAND [ARGUMENTS]\n\n")
	uw.WriteString("Available commands:\n")
	for _, name := range names {
		fmt.Fprintf(uw, "  %*s  %s\n", maxLen, name, tools[name].descr)
	}
}

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-h" {
		printToolList()
		return
	}
	tool, ok := tools[os.Args[1]]
	if !ok {
		printToolList()
		os.Exit(1)
	}
	tool.main(os.Args[1], os.Args[2:])
}
