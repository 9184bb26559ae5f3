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
	"strings"

	"quarxtor.org/core/pkg/blockcodec"
	"quarxtor.org/core/pkg/cmdmain"
	"quarxtor.org/core/pkg/qtypes"
)

func init() {
	cmdmain.RegisterCommand("put-aggregate", func(fl *flag.FlagSet) cmdmain.CommandRunner {
		c := &putAggregateCmd{}
		fl.StringVar(&c.store, "store", "", "path to the block log")
		return c
	})
	cmdmain.RegisterCommand("put-z", func(fl *flag.FlagSet) cmdmain.CommandRunner {
		c := &putZCmd{}
		fl.StringVar(&c.store, "store", "", "path to the block log")
		fl.Uint64Var(&c.zType, "z-type", 0, "opaque analyzer type tag")
		return c
	})
	cmdmain.RegisterCommand("put-object", func(fl *flag.FlagSet) cmdmain.CommandRunner {
		c := &putObjectCmd{}
		fl.StringVar(&c.store, "store", "", "path to the block log")
		fl.Uint64Var(&c.rootKind, "root-kind", 0, "root block kind (0=L0,1=Multi,2=Z,3=Object)")
		fl.Uint64Var(&c.objType, "obj-type", 0, "opaque object type tag")
		return c
	})
}

type putAggregateCmd struct{ store string }

func (c *putAggregateCmd) Usage() {
	fmt.Fprintln(cmdmain.Stderr, "usage: qblk put-aggregate -store PATH <id>[,<id>...]")
}

func (c *putAggregateCmd) Describe() string {
	return "append a Multi/Aggregate block referencing the given child ids"
}

func (c *putAggregateCmd) RunCommand(args []string) error {
	if c.store == "" {
		return cmdmain.UsageError("-store is required")
	}
	if len(args) != 1 {
		return cmdmain.UsageError("expected one comma-separated list of ids (may be empty)")
	}

	var blocks []qtypes.BlockId
	if args[0] != "" {
		for _, tok := range strings.Split(args[0], ",") {
			id, err := strconv.ParseUint(tok, 10, 64)
			if err != nil {
				return cmdmain.UsageError("invalid id " + tok + ": " + err.Error())
			}
			blocks = append(blocks, id)
		}
	}

	s, err := openStore(c.store)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.PutMulti(blockcodec.MultiRecipe{
		Kind:      blockcodec.RecipeAggregate,
		Aggregate: blockcodec.AggregateRecipe{Blocks: blocks},
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmdmain.Stdout, id)
	return nil
}

type putZCmd struct {
	store string
	zType uint64
}

func (c *putZCmd) Usage() {
	fmt.Fprintln(cmdmain.Stderr, "usage: qblk put-z -store PATH [-z-type N] <first-l0> <last-l0>")
}

func (c *putZCmd) Describe() string { return "append a Z structural-range block" }

func (c *putZCmd) RunCommand(args []string) error {
	if c.store == "" {
		return cmdmain.UsageError("-store is required")
	}
	if len(args) != 2 {
		return cmdmain.UsageError("expected <first-l0> <last-l0>")
	}
	first, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return cmdmain.UsageError("invalid first-l0: " + err.Error())
	}
	last, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return cmdmain.UsageError("invalid last-l0: " + err.Error())
	}
	if last < first {
		return cmdmain.UsageError("last-l0 must be >= first-l0 (I4)")
	}

	s, err := openStore(c.store)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.PutZ(blockcodec.ZPayload{FirstL0: first, LastL0: last, ZType: uint32(c.zType)})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmdmain.Stdout, id)
	return nil
}

type putObjectCmd struct {
	store    string
	rootKind uint64
	objType  uint64
}

func (c *putObjectCmd) Usage() {
	fmt.Fprintln(cmdmain.Stderr, "usage: qblk put-object -store PATH [-root-kind K] [-obj-type N] <root-id>")
}

func (c *putObjectCmd) Describe() string { return "append an Object root block" }

func (c *putObjectCmd) RunCommand(args []string) error {
	if c.store == "" {
		return cmdmain.UsageError("-store is required")
	}
	if len(args) != 1 {
		return cmdmain.UsageError("expected exactly one root id")
	}
	rootID, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return cmdmain.UsageError("invalid root id: " + err.Error())
	}
	kind := qtypes.BlockKind(c.rootKind)
	if !kind.Valid() {
		return cmdmain.UsageError("invalid -root-kind")
	}

	s, err := openStore(c.store)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.PutObject(blockcodec.ObjectPayload{
		Root:    qtypes.BlockRef{Kind: kind, Id: rootID},
		ObjType: uint32(c.objType),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmdmain.Stdout, id)
	return nil
}
