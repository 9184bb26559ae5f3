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

package blockstore

import (
	"quarxtor.org/core/pkg/blockcodec"
	"quarxtor.org/core/pkg/blockframe"
	"quarxtor.org/core/pkg/qtypes"

	"lukechampine.com/blake3"
)

// BlockBody is the typed, reconstructed content of a block: the dual of
// BlockKind with the payload decoded from TLV. Exactly one field is valid,
// selected by Kind.
type BlockBody struct {
	Kind   qtypes.BlockKind
	L0     []byte
	Multi  blockcodec.MultiRecipe
	Z      blockcodec.ZPayload
	Object blockcodec.ObjectPayload
}

// Store is the synchronous read/write contract every block-store backend
// implements. Every successful Put* call returns an identifier equal to
// the previous identifier plus one, starting at 0, and makes the block
// readable to later Get* calls.
type Store interface {
	// PutL0 writes a raw L0 payload and returns its assigned identifier.
	PutL0(raw []byte) (qtypes.BlockId, error)
	// PutMulti writes a Multi block from its recipe.
	PutMulti(recipe blockcodec.MultiRecipe) (qtypes.BlockId, error)
	// PutZ writes a Z block.
	PutZ(z blockcodec.ZPayload) (qtypes.BlockId, error)
	// PutObject writes an Object block.
	PutObject(o blockcodec.ObjectPayload) (qtypes.BlockId, error)

	// GetTyped reads back a block's kind, content hash, and decoded
	// body. It fails with KindOutOfRange for an unknown identifier and
	// KindCorrupt on an integrity violation.
	GetTyped(id qtypes.BlockId) (qtypes.BlockKind, [blockframe.HashLen]byte, BlockBody, error)
	// GetFrame returns the entire persisted frame for id, usable for
	// forwarding to peers without re-encoding.
	GetFrame(id qtypes.BlockId) ([]byte, error)
}

// HashPayload computes the BLAKE3 digest of payload, the integrity hash
// stored in a frame per spec invariant I2: the hash covers the payload
// bytes, never the frame header or the pre-TLV inner bytes.
func HashPayload(payload []byte) [blockframe.HashLen]byte {
	return blake3.Sum256(payload)
}

// MakeFrameL0 builds a complete L0 frame for id from raw bytes, computing
// both the TLV payload and its content hash.
func MakeFrameL0(id qtypes.BlockId, raw []byte) []byte {
	payload := blockcodec.EncodeL0(raw)
	hash := HashPayload(payload)
	return blockframe.Encode(qtypes.KindL0, id, hash, payload)
}

// MakeFrameMulti builds a complete Multi frame for id from a recipe.
func MakeFrameMulti(id qtypes.BlockId, recipe blockcodec.MultiRecipe) []byte {
	payload := blockcodec.EncodeMultiRecipe(recipe)
	hash := HashPayload(payload)
	return blockframe.Encode(qtypes.KindMulti, id, hash, payload)
}

// MakeFrameZ builds a complete Z frame for id.
func MakeFrameZ(id qtypes.BlockId, z blockcodec.ZPayload) []byte {
	payload := blockcodec.EncodeZ(z)
	hash := HashPayload(payload)
	return blockframe.Encode(qtypes.KindZ, id, hash, payload)
}

// MakeFrameObject builds a complete Object frame for id.
func MakeFrameObject(id qtypes.BlockId, o blockcodec.ObjectPayload) []byte {
	payload := blockcodec.EncodeObject(o)
	hash := HashPayload(payload)
	return blockframe.Encode(qtypes.KindObject, id, hash, payload)
}

// DecodeFrameTyped fully decodes a raw frame into its kind, identifier,
// content hash, and typed body. It wraps both frame-level and
// payload-level decode failures as KindDecode store errors.
func DecodeFrameTyped(buf []byte) (qtypes.BlockKind, qtypes.BlockId, [blockframe.HashLen]byte, BlockBody, error) {
	kind, id, hash, payload, err := blockframe.Decode(buf)
	if err != nil {
		return 0, 0, hash, BlockBody{}, DecodeError(err)
	}

	body := BlockBody{Kind: kind}
	switch kind {
	case qtypes.KindL0:
		raw, err := blockcodec.DecodeL0(payload)
		if err != nil {
			return 0, 0, hash, BlockBody{}, DecodeError(err)
		}
		body.L0 = raw

	case qtypes.KindMulti:
		recipe, err := blockcodec.DecodeMultiRecipe(payload)
		if err != nil {
			return 0, 0, hash, BlockBody{}, DecodeError(err)
		}
		body.Multi = recipe

	case qtypes.KindZ:
		z, err := blockcodec.DecodeZ(payload)
		if err != nil {
			return 0, 0, hash, BlockBody{}, DecodeError(err)
		}
		body.Z = z

	case qtypes.KindObject:
		o, err := blockcodec.DecodeObject(payload)
		if err != nil {
			return 0, 0, hash, BlockBody{}, DecodeError(err)
		}
		body.Object = o
	}

	return kind, id, hash, body, nil
}
