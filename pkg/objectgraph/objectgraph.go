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

// Package objectgraph computes the reachable set of blocks from a root
// identifier, using the typed children-extraction rules per block kind.
// It is a pure consumer of blockstore.Store: it holds no state of its own
// beyond the traversal's visited set and stack.
package objectgraph

import (
	"quarxtor.org/core/pkg/blockcodec"
	"quarxtor.org/core/pkg/blockstore"
	"quarxtor.org/core/pkg/qtypes"
)

// Closure is the result of a graph traversal: the roots it was computed
// from and every block reached, in pop order (the order blocks were first
// visited).
type Closure struct {
	Roots  []qtypes.BlockId
	Blocks []qtypes.BlockId
}

// children returns the set of identifiers a block's body directly
// references, per the per-kind extraction rules. A (kind, body) mismatch
// — a decoded body whose populated field disagrees with kind — yields no
// children rather than an error; blockstore.GetTyped is expected to have
// already rejected any frame where the body's own discriminant disagrees
// with the declared kind.
func children(kind qtypes.BlockKind, body blockstore.BlockBody) []qtypes.BlockId {
	if body.Kind != kind {
		return nil
	}
	switch kind {
	case qtypes.KindL0:
		return nil

	case qtypes.KindMulti:
		switch body.Multi.Kind {
		case blockcodec.RecipeAggregate:
			return body.Multi.Aggregate.Blocks
		case blockcodec.RecipeCodec:
			if body.Multi.Codec.HasBlocks {
				return body.Multi.Codec.Blocks
			}
			return nil
		case blockcodec.RecipeCustom:
			return nil
		default:
			return nil
		}

	case qtypes.KindZ:
		z := body.Z
		if z.LastL0 < z.FirstL0 {
			return nil
		}
		out := make([]qtypes.BlockId, 0, z.LastL0-z.FirstL0+1)
		for id := z.FirstL0; id <= z.LastL0; id++ {
			out = append(out, id)
		}
		return out

	case qtypes.KindObject:
		return []qtypes.BlockId{body.Object.Root.Id}

	default:
		return nil
	}
}

// ComputeClosure performs an iterative depth-first traversal starting at
// root, over store. Blocks are appended to the result in pop order:
// children are pushed in the order the block lists them, so after the
// root comes the subtree of its last-listed unvisited child, then the
// earlier siblings.
// On any read failure, the traversal aborts and the error is returned with
// no partial closure.
func ComputeClosure(store blockstore.Store, root qtypes.BlockId) (Closure, error) {
	visited := make(map[qtypes.BlockId]struct{})
	stack := []qtypes.BlockId{root}
	var blocks []qtypes.BlockId

	for len(stack) > 0 {
		n := len(stack) - 1
		id := stack[n]
		stack = stack[:n]

		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}

		kind, _, body, err := store.GetTyped(id)
		if err != nil {
			return Closure{}, err
		}
		blocks = append(blocks, id)

		for _, child := range children(kind, body) {
			if _, ok := visited[child]; !ok {
				stack = append(stack, child)
			}
		}
	}

	return Closure{Roots: []qtypes.BlockId{root}, Blocks: blocks}, nil
}

// ComputeClosureFromObject is ComputeClosure with a leading typing sanity
// check: root must decode as an Object block, or the call fails with
// KindCorrupt before any traversal happens.
func ComputeClosureFromObject(store blockstore.Store, root qtypes.BlockId) (Closure, error) {
	kind, _, _, err := store.GetTyped(root)
	if err != nil {
		return Closure{}, err
	}
	if kind != qtypes.KindObject {
		return Closure{}, blockstore.CorruptError(root, errKindNotObject{got: kind})
	}
	return ComputeClosure(store, root)
}

type errKindNotObject struct{ got qtypes.BlockKind }

func (e errKindNotObject) Error() string {
	return "objectgraph: root block is not an Object (got " + e.got.String() + ")"
}
