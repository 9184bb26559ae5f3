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

package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"quarxtor.org/core/pkg/blockcodec"
	"quarxtor.org/core/pkg/cmdmain"
	"quarxtor.org/core/pkg/qconfig"
	"quarxtor.org/core/pkg/qtypes"
)

// codecNone marks CodecRecipe.Codec.CodecId when recipe_data is stored as
// given, with no compression applied.
const codecNone qtypes.CodecId = 0

// codecZstd is the CLI's own convention for CodecRecipe.Codec.CodecId: it
// identifies recipe_data as a zstd-compressed blob. The block engine never
// interprets this value; it is opaque payload as far as pkg/blockstore and
// pkg/objectgraph are concerned.
const codecZstd qtypes.CodecId = 1

func init() {
	cmdmain.RegisterCommand("put-l0", func(fl *flag.FlagSet) cmdmain.CommandRunner {
		c := &putL0Cmd{}
		fl.StringVar(&c.store, "store", "", "path to the block log")
		fl.StringVar(&c.input, "in", "-", "input file, or - for stdin")
		return c
	})
	cmdmain.RegisterCommand("put-codec", func(fl *flag.FlagSet) cmdmain.CommandRunner {
		c := &putCodecCmd{}
		fl.StringVar(&c.store, "store", "", "path to the block log")
		fl.StringVar(&c.input, "in", "-", "input file, or - for stdin")
		fl.Uint64Var(&c.recipeID, "recipe-id", 1, "recipe identifier")
		fl.BoolVar(&c.compress, "compress-recipe-data", false,
			"zstd-compress recipe_data when it exceeds the configured threshold (see codec.compress_threshold)")
		return c
	})
}

type putL0Cmd struct {
	store string
	input string
}

func (c *putL0Cmd) Usage() {
	fmt.Fprintln(cmdmain.Stderr, "usage: qblk put-l0 -store PATH [-in FILE]")
}

func (c *putL0Cmd) Describe() string { return "append a raw L0 block" }

func (c *putL0Cmd) RunCommand(args []string) error {
	if c.store == "" {
		return cmdmain.UsageError("-store is required")
	}
	raw, err := readInput(c.input)
	if err != nil {
		return err
	}

	s, err := openStore(c.store)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.PutL0(raw)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmdmain.Stdout, id)
	return nil
}

type putCodecCmd struct {
	store    string
	input    string
	recipeID uint64
	compress bool
}

func (c *putCodecCmd) Usage() {
	fmt.Fprintln(cmdmain.Stderr, "usage: qblk put-codec -store PATH [-in FILE] [-recipe-id N] [-compress-recipe-data]")
}

func (c *putCodecCmd) Describe() string {
	return "append input as a Multi/CodecRecipe block, optionally zstd-compressing recipe_data"
}

// RunCommand stores the input as recipe_data inside a CodecRecipe, with no
// fallback block list. The block engine's closure walker treats such a
// block as having no children (spec.md §4.6); compression here is purely a
// CLI-side convenience over an opaque blob the core never looks inside.
//
// With -compress-recipe-data, input is zstd-compressed only when it
// exceeds qconfig's codec.compress_threshold (default 256 bytes) — below
// that, zstd's own framing overhead tends to outweigh the saving, so the
// input is stored as-is under codecNone instead.
func (c *putCodecCmd) RunCommand(args []string) error {
	if c.store == "" {
		return cmdmain.UsageError("-store is required")
	}
	raw, err := readInput(c.input)
	if err != nil {
		return err
	}

	recipeData := raw
	codecID := codecNone
	if c.compress {
		cfg, err := qconfig.Load()
		if err != nil {
			return err
		}
		if uint64(len(raw)) > cfg.CodecCompressThresholdBytes {
			enc, err := zstd.NewWriter(nil)
			if err != nil {
				return err
			}
			recipeData = enc.EncodeAll(raw, nil)
			if err := enc.Close(); err != nil {
				return err
			}
			codecID = codecZstd
		}
	}

	s, err := openStore(c.store)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.PutMulti(blockcodec.MultiRecipe{
		Kind: blockcodec.RecipeCodec,
		Codec: blockcodec.CodecRecipe{
			Codec:      blockcodec.CodecRef{CodecId: codecID},
			RecipeId:   c.recipeID,
			RecipeData: recipeData,
			HasData:    true,
		},
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmdmain.Stdout, id)
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmdmain.Stdin)
	}
	return os.ReadFile(path)
}
