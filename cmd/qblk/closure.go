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

	"quarxtor.org/core/pkg/cmdmain"
	"quarxtor.org/core/pkg/objectgraph"
	"quarxtor.org/core/pkg/qtypes"
)

func init() {
	cmdmain.RegisterCommand("closure", func(fl *flag.FlagSet) cmdmain.CommandRunner {
		c := &closureCmd{}
		fl.StringVar(&c.store, "store", "", "path to the block log")
		fl.BoolVar(&c.anyRoot, "any-root", false, "allow a non-Object root (skips the Object typing check)")
		return c
	})
}

type closureCmd struct {
	store   string
	anyRoot bool
}

func (c *closureCmd) Usage() {
	fmt.Fprintln(cmdmain.Stderr, "usage: qblk closure -store PATH [-any-root] <root-id>")
}

func (c *closureCmd) Describe() string { return "compute the reachable-set closure from a root block" }

func (c *closureCmd) RunCommand(args []string) error {
	if c.store == "" {
		return cmdmain.UsageError("-store is required")
	}
	if len(args) != 1 {
		return cmdmain.UsageError("expected exactly one root block id")
	}
	root, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return cmdmain.UsageError("invalid root id: " + err.Error())
	}

	s, err := openStore(c.store)
	if err != nil {
		return err
	}
	defer s.Close()

	var closure objectgraph.Closure
	if c.anyRoot {
		closure, err = objectgraph.ComputeClosure(s, qtypes.BlockId(root))
	} else {
		closure, err = objectgraph.ComputeClosureFromObject(s, qtypes.BlockId(root))
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmdmain.Stdout, "roots:  %v\n", closure.Roots)
	fmt.Fprintf(cmdmain.Stdout, "blocks: %v\n", closure.Blocks)
	fmt.Fprintf(cmdmain.Stdout, "count:  %d\n", len(closure.Blocks))
	return nil
}
