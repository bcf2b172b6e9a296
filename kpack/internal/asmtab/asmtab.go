// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asmtab generates the assembly file that embeds the user binaries
// into the kernel together with the table the kernel loader reads at boot:
//
//	_app_num:   .quad N, then N+1 addresses (app_0_start ... app_N-1_start,
//	            app_N-1_end), no addresses at all if N == 0
//	_app_names: N NUL terminated names
//
// Every binary is placed in its own .data.app<i> section between the
// app_<i>_start and app_<i>_end labels.
package asmtab

import (
	"bufio"
	"io"
	"path/filepath"
	"strconv"

	"github.com/embeddedgo/kpack/kpack/internal/manifest"
)

type Options struct {
	// Inline emits the content of every binary as .byte directives instead
	// of referring to the file with .incbin.
	Inline bool

	// InitProc, if not empty, is emitted as the NUL terminated INIT_PROC
	// string. It must name one of the binaries.
	InitProc string
}

const (
	bytesPerLine = 16
	tableAlign   = 3 // log2 of the .quad size
)

// Write writes the assembly table for imgs to w. The imgs must be in the
// manifest order.
func Write(w io.Writer, imgs []manifest.Image, opts *Options) error {
	if opts == nil {
		opts = new(Options)
	}
	if opts.InitProc != "" && !hasImage(imgs, opts.InitProc) {
		return &manifest.InclusionError{
			Path: opts.InitProc,
			Err:  manifest.ErrUnknownImage,
		}
	}
	bw := bufio.NewWriter(w)

	// The alignment applies to the current section, so it follows the switch.
	bw.WriteString("    .section .data\n")
	directive(bw, ".p2align", strconv.Itoa(tableAlign))
	bw.WriteString("    .global _app_num\n")
	bw.WriteString("_app_num:\n")
	directive(bw, ".quad", strconv.Itoa(len(imgs)))
	for _, img := range imgs {
		directive(bw, ".quad", img.StartSym())
	}
	if n := len(imgs); n != 0 {
		directive(bw, ".quad", imgs[n-1].EndSym())
	}

	bw.WriteString("\n    .global _app_names\n")
	bw.WriteString("_app_names:\n")
	for _, img := range imgs {
		directive(bw, ".string", Quote(img.Name))
	}

	if opts.InitProc != "" {
		bw.WriteString("\n    .global INIT_PROC\n")
		bw.WriteString("INIT_PROC:\n")
		directive(bw, ".string", Quote(opts.InitProc))
	}

	for _, img := range imgs {
		bw.WriteString("\n")
		directive(bw, ".section", img.Section())
		directive(bw, ".global", img.StartSym())
		label(bw, img.StartSym())
		if opts.Inline {
			writeBytes(bw, img.Data)
		} else {
			directive(bw, ".incbin", Quote(filepath.ToSlash(img.Path)))
		}
		directive(bw, ".global", img.EndSym())
		label(bw, img.EndSym())
	}
	return bw.Flush()
}

func hasImage(imgs []manifest.Image, name string) bool {
	for _, img := range imgs {
		if img.Name == name {
			return true
		}
	}
	return false
}

func directive(bw *bufio.Writer, name, arg string) {
	bw.WriteString("    ")
	bw.WriteString(name)
	bw.WriteByte(' ')
	bw.WriteString(arg)
	bw.WriteByte('\n')
}

func label(bw *bufio.Writer, sym string) {
	bw.WriteString(sym)
	bw.WriteString(":\n")
}

const hexDigits = "0123456789abcdef"

func writeBytes(bw *bufio.Writer, data []byte) {
	for len(data) != 0 {
		n := min(len(data), bytesPerLine)
		bw.WriteString("    .byte ")
		for i, b := range data[:n] {
			if i != 0 {
				bw.WriteByte(',')
			}
			bw.WriteString("0x")
			bw.WriteByte(hexDigits[b>>4])
			bw.WriteByte(hexDigits[b&15])
		}
		bw.WriteByte('\n')
		data = data[n:]
	}
}

// Quote returns s as a GNU assembler string literal. Quotes and backslashes
// are escaped, control and non-ASCII bytes are written as octal escapes.
func Quote(s string) string {
	b := make([]byte, 0, len(s)+2)
	b = append(b, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			b = append(b, '\\', c)
		case c < ' ' || c >= 0x7f:
			b = append(b, '\\', '0'+c>>6, '0'+c>>3&7, '0'+c&7)
		default:
			b = append(b, c)
		}
	}
	return string(append(b, '"'))
}
