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

// Package qtypes defines the identifier, kind, and reference types shared
// by every layer of the QuarXTor block engine.
package qtypes

import "fmt"

// BlockId, ObjectId, CodecId, DictId, and ClusterId are all dense, unsigned
// 64-bit identifiers. ObjectId/CodecId/DictId/ClusterId are aliases of
// BlockId's underlying type rather than BlockId itself, since they live in
// separate identifier spaces.
type (
	BlockId   = uint64
	ObjectId  = uint64
	CodecId   = uint64
	DictId    = uint64
	ClusterId = uint64
)

// BlockKind is the closed, four-member taxonomy of block kinds. It is
// encoded as a single byte on the wire (see pkg/blockframe) and must never
// grow beyond these four values: the wire format has no extension point for
// a fifth kind.
type BlockKind uint8

const (
	KindL0 BlockKind = iota
	KindMulti
	KindZ
	KindObject
)

func (k BlockKind) String() string {
	switch k {
	case KindL0:
		return "L0"
	case KindMulti:
		return "Multi"
	case KindZ:
		return "Z"
	case KindObject:
		return "Object"
	default:
		return fmt.Sprintf("BlockKind(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the four defined kinds.
func (k BlockKind) Valid() bool {
	return k <= KindObject
}

// OptionalId is an explicit option type for identifiers that may be absent
// in memory. On the wire, absence is instead represented by the sentinel
// value 0 (see pkg/blockcodec); OptionalId exists so in-memory code never
// has to treat 0 as ambiguous between "absent" and "the first-ever block".
type OptionalId struct {
	id    uint64
	valid bool
}

// Some wraps a present identifier.
func Some(id uint64) OptionalId { return OptionalId{id: id, valid: true} }

// None represents an absent identifier.
func None() OptionalId { return OptionalId{} }

// Get returns the wrapped identifier and whether it is present.
func (o OptionalId) Get() (uint64, bool) { return o.id, o.valid }

// IsSome reports whether the option holds a value.
func (o OptionalId) IsSome() bool { return o.valid }

// RefKind is the discriminant of a BlockRef, using the same byte encoding as
// BlockKind (0=L0, 1=Multi, 2=Z, 3=Object).
type RefKind = BlockKind

// BlockRef is a typed reference to any block kind: a (kind, id) pair. It is
// the payload of an Object block's root reference.
type BlockRef struct {
	Kind RefKind
	Id   BlockId
}

func (r BlockRef) String() string {
	return fmt.Sprintf("%s(%d)", r.Kind, r.Id)
}

// ZNodeMeta is a small, core-agnostic helper for callers building Z-block
// meta payloads that describe a cheap-size / light-analytics summary of the
// covered L0 range. The core never interprets Z.meta; this type exists only
// so importers have a conventional shape to encode into it.
type ZNodeMeta struct {
	SizeBytes uint64
	Blocks    uint32
}

// ObjTypeZNode is the conventional Object.obj_type value used by callers
// that store a ZNodeMeta-shaped payload as an object's meta bytes.
const ObjTypeZNode uint32 = 3
