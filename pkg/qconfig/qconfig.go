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

// Package qconfig loads the ambient configuration consumed by the qblk
// command line: an l0_chunk hint and RAM-tier limit, plus the FS-importer
// and analysis toggles the block engine itself is unaware of (see
// spec.md §6's external-interfaces collaborator list). Sources, lowest to
// highest precedence: built-in defaults, an ini-style file, then
// environment variables.
//
// There is no ecosystem ini-parsing library in play here deliberately:
// the grammar below (key=value lines, '#'/';' comments, a dotted key
// namespace) is a direct port of this project's own hand-rolled parser,
// and no richer ini/toml/yaml library would simplify matching it
// byte-for-byte.
package qconfig

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Config is the full set of recognized settings.
type Config struct {
	L0Chunk uint64

	ImportMinFileSize uint64
	ImportSkipHidden  bool
	ImportSkipSymlink bool
	ImportSkipZero    bool
	ImportSkipDevices bool
	ImportSkipSpecial bool

	// RAMLimitBytes is the byte ceiling for a future RAM tier: 0 disables
	// it, MaxUint64 means unlimited.
	RAMLimitBytes uint64

	FSImportUseZ        bool
	FSImportZThreshold  uint64
	AnalysisEnableZNode bool

	// AnalysisFSStatsFallback selects, when a block has no Z-node, whether
	// fs-stats falls back to reading the payload (true, expensive) or
	// reports size 0 (false, cheap).
	AnalysisFSStatsFallback bool

	// CodecCompressThresholdBytes gates cmd/qblk's put-codec
	// --compress-recipe-data path: input at or below this size is stored
	// as-is, since zstd's framing overhead usually exceeds the saving on
	// small inputs. Not part of the original configuration module; a
	// qblk-specific knob layered on top of it.
	CodecCompressThresholdBytes uint64
}

// Default returns the built-in defaults, matching this project's original
// configuration module value-for-value.
func Default() Config {
	return Config{
		L0Chunk: 8 * 1024,

		ImportMinFileSize: 0,
		ImportSkipHidden:  false,
		ImportSkipSymlink: true,
		ImportSkipZero:    true,
		ImportSkipDevices: true,
		ImportSkipSpecial: true,

		RAMLimitBytes: 0,

		FSImportUseZ:       true,
		FSImportZThreshold: 10,

		AnalysisEnableZNode:     true,
		AnalysisFSStatsFallback: false,

		CodecCompressThresholdBytes: 256,
	}
}

// DefaultPath returns the conventional config file location:
// $XDG_CONFIG_HOME/quarxtor/quarxctl.ini, falling back to
// $HOME/.config/quarxtor/quarxctl.ini, falling back to quarxctl.ini in the
// working directory.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "quarxtor", "quarxctl.ini")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "quarxtor", "quarxctl.ini")
	}
	return "quarxctl.ini"
}

// Load builds a Config from defaults, the file at DefaultPath (if it
// exists; a missing file is not an error), and environment overrides.
func Load() (Config, error) {
	cfg := Default()
	if err := applyFile(&cfg, DefaultPath()); err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

// applyFile reads path as an ini-style key=value file and merges
// recognized keys into cfg. A missing file is silently treated as "no
// overrides", matching the original's read_to_string-or-skip behavior.
func applyFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "qconfig: opening %s", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		applyKey(cfg, strings.TrimSpace(key), strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "qconfig: reading %s", path)
	}
	return nil
}

func applyKey(cfg *Config, key, value string) {
	switch key {
	case "l0_chunk":
		if n, ok := parseUint(value); ok {
			cfg.L0Chunk = n
		}
	case "import.min_file_size":
		if n, ok := parseUint(value); ok {
			cfg.ImportMinFileSize = n
		}
	case "import.skip_hidden":
		if b, ok := parseBool(value); ok {
			cfg.ImportSkipHidden = b
		}
	case "import.skip_symlink":
		if b, ok := parseBool(value); ok {
			cfg.ImportSkipSymlink = b
		}
	case "import.skip_zero":
		if b, ok := parseBool(value); ok {
			cfg.ImportSkipZero = b
		}
	case "import.skip_devices":
		if b, ok := parseBool(value); ok {
			cfg.ImportSkipDevices = b
		}
	case "import.skip_special":
		if b, ok := parseBool(value); ok {
			cfg.ImportSkipSpecial = b
		}
	case "ram.limit":
		if n, ok := parseSizeBytes(value); ok {
			cfg.RAMLimitBytes = n
		}
	case "fs_import.use_z":
		if b, ok := parseBool(value); ok {
			cfg.FSImportUseZ = b
		}
	case "fs_import.z_threshold":
		if n, ok := parseUint(value); ok {
			cfg.FSImportZThreshold = n
		}
	case "analysis.enable_znode":
		if b, ok := parseBool(value); ok {
			cfg.AnalysisEnableZNode = b
		}
	case "analysis.fs_stats_fallback":
		if b, ok := parseBool(value); ok {
			cfg.AnalysisFSStatsFallback = b
		}
	case "codec.compress_threshold":
		if n, ok := parseSizeBytes(value); ok {
			cfg.CodecCompressThresholdBytes = n
		}
	default:
		// unknown keys are ignored, forward-compatibly
	}
}

// envOverride applies the environment variable named name, when set, via
// apply.
func envOverride(name string, apply func(string)) {
	if v, ok := os.LookupEnv(name); ok {
		apply(v)
	}
}

func applyEnv(cfg *Config) {
	envOverride("QUARX_L0_CHUNK", func(v string) {
		if n, ok := parseUint(v); ok {
			cfg.L0Chunk = n
		}
	})
	envOverride("QUARX_IMPORT_MIN_FILE_SIZE", func(v string) {
		if n, ok := parseUint(v); ok {
			cfg.ImportMinFileSize = n
		}
	})
	envOverride("QUARX_IMPORT_SKIP_HIDDEN", func(v string) {
		if b, ok := parseBool(v); ok {
			cfg.ImportSkipHidden = b
		}
	})
	envOverride("QUARX_IMPORT_SKIP_SYMLINK", func(v string) {
		if b, ok := parseBool(v); ok {
			cfg.ImportSkipSymlink = b
		}
	})
	envOverride("QUARX_IMPORT_SKIP_ZERO", func(v string) {
		if b, ok := parseBool(v); ok {
			cfg.ImportSkipZero = b
		}
	})
	envOverride("QUARX_IMPORT_SKIP_DEVICES", func(v string) {
		if b, ok := parseBool(v); ok {
			cfg.ImportSkipDevices = b
		}
	})
	envOverride("QUARX_IMPORT_SKIP_SPECIAL", func(v string) {
		if b, ok := parseBool(v); ok {
			cfg.ImportSkipSpecial = b
		}
	})
	envOverride("QUARX_RAM_LIMIT", func(v string) {
		if n, ok := parseSizeBytes(v); ok {
			cfg.RAMLimitBytes = n
		}
	})
	envOverride("QUARX_FS_IMPORT_USE_Z", func(v string) {
		if b, ok := parseBool(v); ok {
			cfg.FSImportUseZ = b
		}
	})
	envOverride("QUARX_FS_IMPORT_Z_THRESHOLD", func(v string) {
		if n, ok := parseUint(v); ok {
			cfg.FSImportZThreshold = n
		}
	})
	envOverride("QUARX_ANALYSIS_ENABLE_ZNODE", func(v string) {
		if b, ok := parseBool(v); ok {
			cfg.AnalysisEnableZNode = b
		}
	})
	envOverride("QUARX_ANALYSIS_FS_STATS_FALLBACK", func(v string) {
		if b, ok := parseBool(v); ok {
			cfg.AnalysisFSStatsFallback = b
		}
	})
	envOverride("QUARX_CODEC_COMPRESS_THRESHOLD", func(v string) {
		if n, ok := parseSizeBytes(v); ok {
			cfg.CodecCompressThresholdBytes = n
		}
	})
}

func parseUint(s string) (uint64, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

// parseSizeBytes parses a human-friendly byte count:
//
//	"none", "off", "0"  -> 0
//	"full", "unlimited" -> math.MaxUint64
//	"16g", "256m", "512k", "123" -> bytes, 1024-based
func parseSizeBytes(s string) (uint64, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "none", "off", "0":
		return 0, true
	case "full", "unlimited":
		return ^uint64(0), true
	}

	splitAt := len(v)
	for i, ch := range v {
		if ch < '0' || ch > '9' {
			splitAt = i
			break
		}
	}
	numPart, suffix := v[:splitAt], v[splitAt:]
	if numPart == "" {
		return 0, false
	}
	base, err := strconv.ParseUint(numPart, 10, 64)
	if err != nil {
		return 0, false
	}

	var mul uint64
	switch suffix {
	case "":
		mul = 1
	case "k", "kb":
		mul = 1024
	case "m", "mb":
		mul = 1024 * 1024
	case "g", "gb":
		mul = 1024 * 1024 * 1024
	default:
		return 0, false
	}

	result := base * mul
	if mul != 0 && result/mul != base {
		return 0, false // overflow
	}
	return result, true
}
