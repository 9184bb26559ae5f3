/*
Copyright 2024 The QuarXTor Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package qconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.L0Chunk != 8*1024 {
		t.Fatalf("got l0 chunk %d, want 8192", cfg.L0Chunk)
	}
	if cfg.RAMLimitBytes != 0 {
		t.Fatalf("got ram limit %d, want 0 (disabled)", cfg.RAMLimitBytes)
	}
	if !cfg.ImportSkipSymlink || !cfg.ImportSkipZero || !cfg.ImportSkipDevices || !cfg.ImportSkipSpecial {
		t.Fatal("expected symlink/zero/devices/special skip defaults to be true")
	}
	if cfg.ImportSkipHidden {
		t.Fatal("expected hidden-file skip default to be false")
	}
	if cfg.FSImportZThreshold != 10 {
		t.Fatalf("got z threshold %d, want 10", cfg.FSImportZThreshold)
	}
	if cfg.CodecCompressThresholdBytes != 256 {
		t.Fatalf("got codec compress threshold %d, want 256", cfg.CodecCompressThresholdBytes)
	}
}

func TestApplyFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quarxctl.ini")
	contents := "" +
		"# a comment\n" +
		"; also a comment\n" +
		"l0_chunk=4096\n" +
		"ram.limit=256m\n" +
		"import.skip_hidden=yes\n" +
		"analysis.fs_stats_fallback=on\n" +
		"codec.compress_threshold=1k\n" +
		"unknown.key=ignored\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	if err := applyFile(&cfg, path); err != nil {
		t.Fatal(err)
	}
	if cfg.L0Chunk != 4096 {
		t.Fatalf("got l0 chunk %d, want 4096", cfg.L0Chunk)
	}
	if cfg.RAMLimitBytes != 256*1024*1024 {
		t.Fatalf("got ram limit %d, want 256MiB", cfg.RAMLimitBytes)
	}
	if !cfg.ImportSkipHidden {
		t.Fatal("expected import.skip_hidden to be overridden to true")
	}
	if !cfg.AnalysisFSStatsFallback {
		t.Fatal("expected analysis.fs_stats_fallback to be overridden to true")
	}
	if cfg.CodecCompressThresholdBytes != 1024 {
		t.Fatalf("got codec compress threshold %d, want 1024", cfg.CodecCompressThresholdBytes)
	}
}

func TestApplyFileMissingIsNotAnError(t *testing.T) {
	cfg := Default()
	if err := applyFile(&cfg, filepath.Join(t.TempDir(), "does-not-exist.ini")); err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Fatal("expected config to remain at defaults")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quarxctl.ini")
	if err := os.WriteFile(path, []byte("ram.limit=256m\nl0_chunk=4096\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("QUARX_RAM_LIMIT", "unlimited")
	t.Setenv("QUARX_L0_CHUNK", "2048")

	cfg := Default()
	if err := applyFile(&cfg, path); err != nil {
		t.Fatal(err)
	}
	applyEnv(&cfg)
	if cfg.RAMLimitBytes != ^uint64(0) {
		t.Fatalf("got ram limit %d, want max uint64", cfg.RAMLimitBytes)
	}
	if cfg.L0Chunk != 2048 {
		t.Fatalf("got l0 chunk %d, want 2048", cfg.L0Chunk)
	}
}

func TestParseSizeBytes(t *testing.T) {
	cases := map[string]uint64{
		"none":      0,
		"off":       0,
		"0":         0,
		"full":      ^uint64(0),
		"unlimited": ^uint64(0),
		"123":       123,
		"512k":      512 * 1024,
		"10m":       10 * 1024 * 1024,
		"16g":       16 * 1024 * 1024 * 1024,
	}
	for in, want := range cases {
		got, ok := parseSizeBytes(in)
		if !ok {
			t.Fatalf("parseSizeBytes(%q): expected ok", in)
		}
		if got != want {
			t.Fatalf("parseSizeBytes(%q) = %d, want %d", in, got, want)
		}
	}
	if _, ok := parseSizeBytes("not-a-size"); ok {
		t.Fatal("expected failure for garbage input")
	}
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"1", "true", "yes", "on", "TRUE"} {
		if b, ok := parseBool(v); !ok || !b {
			t.Fatalf("parseBool(%q) = %v, %v; want true, true", v, b, ok)
		}
	}
	for _, v := range []string{"0", "false", "no", "off"} {
		if b, ok := parseBool(v); !ok || b {
			t.Fatalf("parseBool(%q) = %v, %v; want false, true", v, b, ok)
		}
	}
	if _, ok := parseBool("maybe"); ok {
		t.Fatal("expected failure for unrecognized token")
	}
}
