// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ldscript generates the kernel linker script that reserves one page
// aligned .data.app<i> region for every embedded user binary.
package ldscript

import (
	"fmt"
	"io"
	"text/template"

	"github.com/embeddedgo/kpack/kpack/internal/manifest"
)

type Config struct {
	Arch  string // OUTPUT_ARCH
	Entry string // ENTRY symbol
	Base  uint64 // load address of the kernel
}

// DefaultConfig returns the configuration for a RISC-V kernel loaded by the
// SBI firmware at 0x80200000.
func DefaultConfig() *Config {
	return &Config{Arch: "riscv", Entry: "_entry", Base: 0x80200000}
}

const tmplText = `OUTPUT_ARCH({{.Arch}})
ENTRY({{.Entry}})
BASE_ADDRESS = {{hex .Base}};

SECTIONS
{
    . = BASE_ADDRESS;
    skernel = .;

    s_text = .;
    .text : {
        *(.text.entry)
        *(.text .text.*)
        . = ALIGN({{hex .Page}});
        *(trampsec)
        . = ALIGN({{hex .Page}});
    }

    . = ALIGN(4K);
    e_text = .;
    s_rodata = .;
    .rodata : {
        *(.rodata .rodata.*)
    }

    . = ALIGN(4K);
    e_rodata = .;
    s_data = .;
    .data : {
        *(.data)
{{- range .Entries}}
        . = ALIGN({{hex $.Page}});
        *({{.Section}})
{{- end}}

        . = ALIGN({{hex .Page}});
        *(.data.*)
        *(.sdata .sdata.*)
    }

    . = ALIGN(4K);
    e_data = .;
    .bss : {
        *(.bss.stack)
        s_bss = .;
        *(.bss .bss.*)
        *(.sbss .sbss.*)
    }

    . = ALIGN(4K);
    e_bss = .;
    ekernel = .;

    /DISCARD/ : {
        *(.eh_frame)
    }
}
`

var tmpl = template.Must(
	template.New("ld").Funcs(template.FuncMap{"hex": hex}).Parse(tmplText),
)

func hex(v uint64) string { return fmt.Sprintf("%#x", v) }

type tmplData struct {
	*Config
	Page    uint64
	Entries []*manifest.Entry
}

// Write writes the linker script for m to w. The output depends only on m
// and cfg. A nil cfg means DefaultConfig.
func Write(w io.Writer, m *manifest.Manifest, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return tmpl.Execute(w, &tmplData{
		Config:  cfg,
		Page:    manifest.PageSize,
		Entries: m.Entries,
	})
}
