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

package blockcodec

import (
	"quarxtor.org/core/pkg/qtypes"
	"quarxtor.org/core/pkg/tlv"
)

// RecipeKind discriminates the three Multi recipe variants. Exactly one is
// ever populated on a given MultiRecipe value.
type RecipeKind uint8

const (
	RecipeAggregate RecipeKind = iota
	RecipeCodec
	RecipeCustom
)

// CodecRef is an abstract, cluster-oriented reference to a codec.
type CodecRef struct {
	CodecId qtypes.CodecId
	Cluster qtypes.OptionalId
}

// DictRef is a reference to a dictionary inside a codec, with an optional
// back-reference to the object graph that holds the dictionary as data.
type DictRef struct {
	DictId   qtypes.DictId
	Cluster  qtypes.OptionalId
	ObjectId qtypes.OptionalId
}

// AggregateRecipe is an ordered list of child block identifiers, typically
// L0.
type AggregateRecipe struct {
	Blocks []qtypes.BlockId
}

// CodecRecipe ties a recipe to a codec (and optional dictionary), with an
// optional opaque recipe_data blob and an optional fallback child list.
type CodecRecipe struct {
	Codec       CodecRef
	Dict        *DictRef
	RecipeId    uint64
	RecipeData  []byte // meaningful only when HasData is set; present-but-empty data decodes as nil
	HasData     bool
	Blocks      []qtypes.BlockId
	HasBlocks   bool
}

// CustomRecipe is opaque to the core: the payload's internal structure,
// including any child pointers it may encode, is not interpreted.
type CustomRecipe struct {
	KindId  uint32
	Payload []byte
}

// MultiRecipe is the tagged union of the three recipe variants that make up
// a Multi block's body.
type MultiRecipe struct {
	Kind      RecipeKind
	Aggregate AggregateRecipe
	Codec     CodecRecipe
	Custom    CustomRecipe
}

func clusterToWire(o qtypes.OptionalId) uint64 {
	if v, ok := o.Get(); ok {
		return v
	}
	return 0
}

func wireToCluster(v uint64) qtypes.OptionalId {
	if v == 0 {
		return qtypes.None()
	}
	return qtypes.Some(v)
}

// EncodeMultiRecipe serializes a MultiRecipe into its TLV payload, per the
// recipe's variant: 0x10 Aggregate, 0x11 CodecRecipe, 0x12 Custom.
func EncodeMultiRecipe(r MultiRecipe) []byte {
	switch r.Kind {
	case RecipeAggregate:
		var buf []byte
		for _, id := range r.Aggregate.Blocks {
			buf = append(buf, tlv.PutU64(id)...)
		}
		return tlv.Write(TagMultiAggregate, buf)

	case RecipeCodec:
		c := r.Codec
		var buf []byte
		buf = append(buf, tlv.PutU64(c.Codec.CodecId)...)
		buf = append(buf, tlv.PutU64(clusterToWire(c.Codec.Cluster))...)

		if c.Dict != nil {
			buf = append(buf, 1)
			buf = append(buf, tlv.PutU64(c.Dict.DictId)...)
			buf = append(buf, tlv.PutU64(clusterToWire(c.Dict.Cluster))...)
			buf = append(buf, tlv.PutU64(clusterToWire(c.Dict.ObjectId))...)
		} else {
			buf = append(buf, 0)
		}

		buf = append(buf, tlv.PutU64(c.RecipeId)...)

		if c.HasData {
			buf = append(buf, 1)
			buf = append(buf, tlv.PutU32(uint32(len(c.RecipeData)))...)
			buf = append(buf, c.RecipeData...)
		} else {
			buf = append(buf, 0)
		}

		if c.HasBlocks {
			buf = append(buf, 1)
			buf = append(buf, tlv.PutU32(uint32(len(c.Blocks)))...)
			for _, id := range c.Blocks {
				buf = append(buf, tlv.PutU64(id)...)
			}
		} else {
			buf = append(buf, 0)
		}

		return tlv.Write(TagMultiCodecRecipe, buf)

	case RecipeCustom:
		var buf []byte
		buf = append(buf, tlv.PutU32(r.Custom.KindId)...)
		buf = append(buf, r.Custom.Payload...)
		return tlv.Write(TagMultiCustom, buf)
	}
	return nil
}

// DecodeMultiRecipe parses a Multi block's TLV payload back into a
// MultiRecipe. The tags are tried in the order 0x10, 0x11, 0x12 and the
// first one present decides the variant; any other variant tag in the same
// payload is ignored. A payload with none of them fails with ErrMissingTag.
func DecodeMultiRecipe(payload []byte) (MultiRecipe, error) {
	records, err := tlv.ReadAll(payload)
	if err != nil {
		return MultiRecipe{}, err
	}

	if v, ok := tlv.Find(records, TagMultiAggregate); ok {
		if len(v)%8 != 0 {
			return MultiRecipe{}, ErrTruncated
		}
		ids := make([]qtypes.BlockId, 0, len(v)/8)
		for off := 0; off < len(v); off += 8 {
			id, err := tlv.GetU64(v[off : off+8])
			if err != nil {
				return MultiRecipe{}, err
			}
			ids = append(ids, id)
		}
		return MultiRecipe{Kind: RecipeAggregate, Aggregate: AggregateRecipe{Blocks: ids}}, nil
	}

	if v, ok := tlv.Find(records, TagMultiCodecRecipe); ok {
		return decodeCodecRecipe(v)
	}

	if v, ok := tlv.Find(records, TagMultiCustom); ok {
		if len(v) < 4 {
			return MultiRecipe{}, ErrTruncated
		}
		kindId, err := tlv.GetU32(v[0:4])
		if err != nil {
			return MultiRecipe{}, err
		}
		payload := append([]byte(nil), v[4:]...)
		return MultiRecipe{Kind: RecipeCustom, Custom: CustomRecipe{KindId: kindId, Payload: payload}}, nil
	}

	return MultiRecipe{}, ErrMissingTag
}

func decodeCodecRecipe(b []byte) (MultiRecipe, error) {
	pos := 0
	need := func(n int) error {
		if len(b) < pos+n {
			return ErrTruncated
		}
		return nil
	}

	if err := need(8); err != nil {
		return MultiRecipe{}, err
	}
	codecId, err := tlv.GetU64(b[pos : pos+8])
	if err != nil {
		return MultiRecipe{}, err
	}
	pos += 8

	if err := need(8); err != nil {
		return MultiRecipe{}, err
	}
	codecClusterRaw, err := tlv.GetU64(b[pos : pos+8])
	if err != nil {
		return MultiRecipe{}, err
	}
	pos += 8

	if err := need(1); err != nil {
		return MultiRecipe{}, err
	}
	dictFlag := b[pos]
	pos++
	if dictFlag != 0 && dictFlag != 1 {
		return MultiRecipe{}, ErrBadDiscriminant
	}

	var dict *DictRef
	if dictFlag == 1 {
		if err := need(24); err != nil {
			return MultiRecipe{}, err
		}
		dictId, _ := tlv.GetU64(b[pos : pos+8])
		pos += 8
		dictClusterRaw, _ := tlv.GetU64(b[pos : pos+8])
		pos += 8
		dictObjectRaw, _ := tlv.GetU64(b[pos : pos+8])
		pos += 8
		dict = &DictRef{
			DictId:   dictId,
			Cluster:  wireToCluster(dictClusterRaw),
			ObjectId: wireToCluster(dictObjectRaw),
		}
	}

	if err := need(8); err != nil {
		return MultiRecipe{}, err
	}
	recipeId, err := tlv.GetU64(b[pos : pos+8])
	if err != nil {
		return MultiRecipe{}, err
	}
	pos += 8

	if err := need(1); err != nil {
		return MultiRecipe{}, err
	}
	hasData := b[pos]
	pos++
	if hasData != 0 && hasData != 1 {
		return MultiRecipe{}, ErrBadDiscriminant
	}

	var recipeData []byte
	if hasData == 1 {
		if err := need(4); err != nil {
			return MultiRecipe{}, err
		}
		dataLen, err := tlv.GetU32(b[pos : pos+4])
		if err != nil {
			return MultiRecipe{}, err
		}
		pos += 4
		if err := need(int(dataLen)); err != nil {
			return MultiRecipe{}, err
		}
		recipeData = append([]byte(nil), b[pos:pos+int(dataLen)]...)
		pos += int(dataLen)
	}

	if err := need(1); err != nil {
		return MultiRecipe{}, err
	}
	hasBlocks := b[pos]
	pos++
	if hasBlocks != 0 && hasBlocks != 1 {
		return MultiRecipe{}, ErrBadDiscriminant
	}

	var blocks []qtypes.BlockId
	if hasBlocks == 1 {
		if err := need(4); err != nil {
			return MultiRecipe{}, err
		}
		count, err := tlv.GetU32(b[pos : pos+4])
		if err != nil {
			return MultiRecipe{}, err
		}
		pos += 4
		blocks = make([]qtypes.BlockId, 0, count)
		for i := uint32(0); i < count; i++ {
			if err := need(8); err != nil {
				return MultiRecipe{}, err
			}
			id, _ := tlv.GetU64(b[pos : pos+8])
			pos += 8
			blocks = append(blocks, id)
		}
	}

	return MultiRecipe{
		Kind: RecipeCodec,
		Codec: CodecRecipe{
			Codec:      CodecRef{CodecId: codecId, Cluster: wireToCluster(codecClusterRaw)},
			Dict:       dict,
			RecipeId:   recipeId,
			RecipeData: recipeData,
			HasData:    hasData == 1,
			Blocks:     blocks,
			HasBlocks:  hasBlocks == 1,
		},
	}, nil
}
