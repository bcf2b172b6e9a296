// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ld

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/embeddedgo/kpack/kpack/internal/ldscript"
	"github.com/embeddedgo/kpack/kpack/internal/manifest"
	"github.com/embeddedgo/kpack/kpack/internal/util"
	"github.com/google/go-cmp/cmp"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.bin", "a.bin"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	src := util.DefaultSource()
	src.Dir = dir
	out := filepath.Join(t.TempDir(), "kernel_app.ld")
	if err := Run(src, ldscript.DefaultConfig(), out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "        *(.data)\n" +
		"        . = ALIGN(0x1000);\n        *(.data.app0)\n" +
		"        . = ALIGN(0x1000);\n        *(.data.app1)\n\n"
	if !strings.Contains(string(b), want) {
		t.Errorf("linker script does not contain:\n%s", want)
	}
}

func TestRunMissingDir(t *testing.T) {
	src := util.DefaultSource()
	src.Dir = filepath.Join(t.TempDir(), "bin")
	out := filepath.Join(t.TempDir(), "kernel_app.ld")
	err := Run(src, ldscript.DefaultConfig(), out)
	var de *manifest.DiscoveryError
	if !errors.As(err, &de) || de.Path != src.Dir {
		t.Fatalf("Run: got %v, want DiscoveryError for %s", err, src.Dir)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output written on failure: %v", err)
	}
}

func TestConfigFlags(t *testing.T) {
	flags := flag.NewFlagSet("ld", flag.ContinueOnError)
	cfg := ConfigFlags(flags)
	if err := flags.Parse([]string{"-base", "0x80000000", "-entry", "start"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := &ldscript.Config{Arch: "riscv", Entry: "start", Base: 0x80000000}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Config diff (-want +got):\n%s", diff)
	}
}
