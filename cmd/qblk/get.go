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
	"strconv"

	"github.com/klauspost/compress/zstd"

	"quarxtor.org/core/pkg/blockcodec"
	"quarxtor.org/core/pkg/cmdmain"
	"quarxtor.org/core/pkg/filestore"
	"quarxtor.org/core/pkg/netcore"
	"quarxtor.org/core/pkg/qtypes"
)

func init() {
	cmdmain.RegisterCommand("get", func(fl *flag.FlagSet) cmdmain.CommandRunner {
		c := &getCmd{}
		fl.StringVar(&c.store, "store", "", "path to the block log")
		fl.BoolVar(&c.asPushFrame, "as-push-frame", false,
			"wrap the fetched block frame inside a netcore PushBlocks wire frame and print it, instead of decoding fields")
		return c
	})
}

type getCmd struct {
	store       string
	asPushFrame bool
}

func (c *getCmd) Usage() {
	fmt.Fprintln(cmdmain.Stderr, "usage: qblk get -store PATH [-as-push-frame] <id>")
}

func (c *getCmd) Describe() string { return "read back one block by identifier" }

func (c *getCmd) RunCommand(args []string) error {
	if c.store == "" {
		return cmdmain.UsageError("-store is required")
	}
	if len(args) != 1 {
		return cmdmain.UsageError("expected exactly one block id")
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return cmdmain.UsageError("invalid block id: " + err.Error())
	}

	s, err := openStore(c.store)
	if err != nil {
		return err
	}
	defer s.Close()

	if c.asPushFrame {
		return c.runAsPushFrame(s, qtypes.BlockId(id))
	}

	kind, hash, body, err := s.GetTyped(qtypes.BlockId(id))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmdmain.Stdout, "id:   %d\n", id)
	fmt.Fprintf(cmdmain.Stdout, "kind: %s\n", kind)
	fmt.Fprintf(cmdmain.Stdout, "hash: %x\n", hash)

	switch kind {
	case qtypes.KindL0:
		fmt.Fprintf(cmdmain.Stdout, "size: %d bytes\n", len(body.L0))
	case qtypes.KindMulti:
		printMulti(body.Multi)
	case qtypes.KindZ:
		fmt.Fprintf(cmdmain.Stdout, "range: [%d, %d]  z_type=%d  meta=%d bytes\n",
			body.Z.FirstL0, body.Z.LastL0, body.Z.ZType, len(body.Z.Meta))
	case qtypes.KindObject:
		fmt.Fprintf(cmdmain.Stdout, "root: %s  obj_type=%d  meta=%d bytes\n",
			body.Object.Root, body.Object.ObjType, len(body.Object.Meta))
	}
	return nil
}

// runAsPushFrame demonstrates the only point of contact between the block
// engine and pkg/netcore: it fetches id's already-encoded block frame
// (get_frame output) and wraps it, unexamined, inside a PushBlocks wire
// frame, then writes the resulting bytes to stdout. netcore never parses
// the block frame it carries; it is opaque payload to this layer exactly
// as PushBlocksPayload documents.
func (c *getCmd) runAsPushFrame(s *filestore.Store, id qtypes.BlockId) error {
	raw, err := s.GetFrame(id)
	if err != nil {
		return err
	}
	wire := netcore.EncodeFrame(netcore.FramePushBlocks, 0, raw)
	fmt.Fprintf(cmdmain.Stdout, "%x\n", wire)
	return nil
}

func printMulti(m blockcodec.MultiRecipe) {
	switch m.Kind {
	case blockcodec.RecipeAggregate:
		fmt.Fprintf(cmdmain.Stdout, "recipe: Aggregate  blocks=%v\n", m.Aggregate.Blocks)
	case blockcodec.RecipeCodec:
		c := m.Codec
		fmt.Fprintf(cmdmain.Stdout, "recipe: CodecRecipe  codec_id=%d  recipe_id=%d  has_data=%v  has_blocks=%v\n",
			c.Codec.CodecId, c.RecipeId, c.HasData, c.HasBlocks)
		if c.HasData && c.Codec.CodecId == codecZstd {
			dec, err := zstd.NewReader(nil)
			if err == nil {
				if plain, err := dec.DecodeAll(c.RecipeData, nil); err == nil {
					fmt.Fprintf(cmdmain.Stdout, "recipe_data: %d bytes zstd -> %d bytes plain\n",
						len(c.RecipeData), len(plain))
				}
				dec.Close()
			}
		}
	case blockcodec.RecipeCustom:
		fmt.Fprintf(cmdmain.Stdout, "recipe: Custom  kind_id=%d  payload=%d bytes\n",
			m.Custom.KindId, len(m.Custom.Payload))
	}
}
