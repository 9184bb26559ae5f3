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
	"bytes"
	"reflect"
	"testing"

	"quarxtor.org/core/pkg/qtypes"
)

func TestL0RoundTrip(t *testing.T) {
	payload := EncodeL0([]byte("hello-l0"))
	raw, err := DecodeL0(payload)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(raw, []byte("hello-l0")) {
		t.Fatalf("got %q, want %q", raw, "hello-l0")
	}
}

func TestL0EmptyPayload(t *testing.T) {
	payload := EncodeL0(nil)
	raw, err := DecodeL0(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 0 {
		t.Fatalf("got %q, want empty", raw)
	}
}

func TestMultiAggregateRoundTrip(t *testing.T) {
	r := MultiRecipe{Kind: RecipeAggregate, Aggregate: AggregateRecipe{Blocks: []qtypes.BlockId{0, 1, 5}}}
	payload := EncodeMultiRecipe(r)
	got, err := DecodeMultiRecipe(payload)
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != RecipeAggregate {
		t.Fatalf("got kind %v, want RecipeAggregate", got.Kind)
	}
	if !reflect.DeepEqual(got.Aggregate.Blocks, r.Aggregate.Blocks) {
		t.Fatalf("got %v, want %v", got.Aggregate.Blocks, r.Aggregate.Blocks)
	}
}

func TestMultiAggregateEmpty(t *testing.T) {
	r := MultiRecipe{Kind: RecipeAggregate, Aggregate: AggregateRecipe{Blocks: nil}}
	payload := EncodeMultiRecipe(r)
	got, err := DecodeMultiRecipe(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Aggregate.Blocks) != 0 {
		t.Fatalf("got %v, want empty", got.Aggregate.Blocks)
	}
}

func TestMultiCodecRecipeFullRoundTrip(t *testing.T) {
	r := MultiRecipe{
		Kind: RecipeCodec,
		Codec: CodecRecipe{
			Codec:      CodecRef{CodecId: 9, Cluster: qtypes.Some(3)},
			Dict:       &DictRef{DictId: 4, Cluster: qtypes.None(), ObjectId: qtypes.Some(77)},
			RecipeId:   123,
			RecipeData: []byte("params"),
			HasData:    true,
			Blocks:     []qtypes.BlockId{1, 2, 3},
			HasBlocks:  true,
		},
	}
	payload := EncodeMultiRecipe(r)
	got, err := DecodeMultiRecipe(payload)
	if err != nil {
		t.Fatal(err)
	}
	if got.Codec.Codec.CodecId != 9 {
		t.Fatalf("codec id mismatch: %v", got.Codec.Codec.CodecId)
	}
	if v, ok := got.Codec.Codec.Cluster.Get(); !ok || v != 3 {
		t.Fatalf("codec cluster mismatch: %v %v", v, ok)
	}
	if got.Codec.Dict == nil {
		t.Fatal("expected dict to be present")
	}
	if _, ok := got.Codec.Dict.Cluster.Get(); ok {
		t.Fatal("expected dict cluster to be absent")
	}
	if v, ok := got.Codec.Dict.ObjectId.Get(); !ok || v != 77 {
		t.Fatalf("dict object id mismatch: %v %v", v, ok)
	}
	if !bytes.Equal(got.Codec.RecipeData, []byte("params")) {
		t.Fatalf("recipe data mismatch: %q", got.Codec.RecipeData)
	}
	if !reflect.DeepEqual(got.Codec.Blocks, []qtypes.BlockId{1, 2, 3}) {
		t.Fatalf("blocks mismatch: %v", got.Codec.Blocks)
	}
}

func TestMultiCodecRecipeNoBlocksNoData(t *testing.T) {
	r := MultiRecipe{
		Kind: RecipeCodec,
		Codec: CodecRecipe{
			Codec:    CodecRef{CodecId: 1, Cluster: qtypes.None()},
			RecipeId: 1,
		},
	}
	payload := EncodeMultiRecipe(r)
	got, err := DecodeMultiRecipe(payload)
	if err != nil {
		t.Fatal(err)
	}
	if got.Codec.Dict != nil {
		t.Fatal("expected no dict")
	}
	if got.Codec.HasData {
		t.Fatal("expected no recipe data")
	}
	if got.Codec.HasBlocks {
		t.Fatal("expected no blocks")
	}
}

func TestMultiCustomRoundTrip(t *testing.T) {
	r := MultiRecipe{Kind: RecipeCustom, Custom: CustomRecipe{KindId: 42, Payload: []byte("opaque")}}
	payload := EncodeMultiRecipe(r)
	got, err := DecodeMultiRecipe(payload)
	if err != nil {
		t.Fatal(err)
	}
	if got.Custom.KindId != 42 {
		t.Fatalf("kind id mismatch: %v", got.Custom.KindId)
	}
	if !bytes.Equal(got.Custom.Payload, []byte("opaque")) {
		t.Fatalf("payload mismatch: %q", got.Custom.Payload)
	}
}

func TestZRoundTrip(t *testing.T) {
	z := ZPayload{FirstL0: 0, LastL0: 0, ZType: 1, Meta: nil}
	payload := EncodeZ(z)
	got, err := DecodeZ(payload)
	if err != nil {
		t.Fatal(err)
	}
	if got.FirstL0 != 0 || got.LastL0 != 0 || got.ZType != 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestZMissingRequiredTag(t *testing.T) {
	_, err := DecodeZ(nil)
	if err != ErrMissingTag {
		t.Fatalf("got %v, want ErrMissingTag", err)
	}
}

func TestObjectRoundTrip(t *testing.T) {
	o := ObjectPayload{Root: qtypes.BlockRef{Kind: qtypes.KindMulti, Id: 1}, ObjType: 42, Meta: []byte("obj-meta")}
	payload := EncodeObject(o)
	got, err := DecodeObject(payload)
	if err != nil {
		t.Fatal(err)
	}
	if got.Root != o.Root {
		t.Fatalf("got root %v, want %v", got.Root, o.Root)
	}
	if got.ObjType != 42 {
		t.Fatalf("got obj type %v, want 42", got.ObjType)
	}
	if !bytes.Equal(got.Meta, []byte("obj-meta")) {
		t.Fatalf("got meta %q, want %q", got.Meta, "obj-meta")
	}
}

func TestObjectBadRefKind(t *testing.T) {
	root := append([]byte{9}, make([]byte, 8)...) // kind byte 9 is invalid
	payload := append([]byte(nil), 0x30, 0, 0, 0, 9)
	payload = append(payload, root...)
	payload = append(payload, 0x31, 0, 0, 0, 4, 0, 0, 0, 0)
	payload = append(payload, 0x32, 0, 0, 0, 0)
	if _, err := DecodeObject(payload); err != ErrBadDiscriminant {
		t.Fatalf("got %v, want ErrBadDiscriminant", err)
	}
}
