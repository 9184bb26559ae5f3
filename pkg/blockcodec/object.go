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

// ObjectPayload is the root body of an Object block: a single typed
// reference to any block kind, an object type tag, and opaque metadata.
// Id and hash live outside the payload, at the frame layer.
type ObjectPayload struct {
	Root    qtypes.BlockRef
	ObjType uint32
	Meta    []byte
}

// EncodeObject serializes an ObjectPayload into its three-tag TLV payload.
func EncodeObject(o ObjectPayload) []byte {
	root := make([]byte, 0, 9)
	root = append(root, byte(o.Root.Kind))
	root = append(root, tlv.PutU64(o.Root.Id)...)

	var out []byte
	out = append(out, tlv.Write(TagObjectRoot, root)...)
	out = append(out, tlv.Write(TagObjectType, tlv.PutU32(o.ObjType))...)
	out = append(out, tlv.Write(TagObjectMeta, o.Meta)...)
	return out
}

// DecodeObject parses an Object block's TLV payload. Root and ObjType are
// required; Meta defaults to empty when absent.
func DecodeObject(payload []byte) (ObjectPayload, error) {
	records, err := tlv.ReadAll(payload)
	if err != nil {
		return ObjectPayload{}, err
	}

	rootRaw, ok := tlv.Find(records, TagObjectRoot)
	if !ok {
		return ObjectPayload{}, ErrMissingTag
	}
	if len(rootRaw) != 9 {
		return ObjectPayload{}, ErrTruncated
	}
	kind := qtypes.BlockKind(rootRaw[0])
	if !kind.Valid() {
		return ObjectPayload{}, ErrBadDiscriminant
	}
	id, err := tlv.GetU64(rootRaw[1:])
	if err != nil {
		return ObjectPayload{}, err
	}

	typeRaw, ok := tlv.Find(records, TagObjectType)
	if !ok {
		return ObjectPayload{}, ErrMissingTag
	}
	objType, err := tlv.GetU32(typeRaw)
	if err != nil {
		return ObjectPayload{}, err
	}

	meta, _ := tlv.Find(records, TagObjectMeta)

	return ObjectPayload{
		Root:    qtypes.BlockRef{Kind: kind, Id: id},
		ObjType: objType,
		Meta:    append([]byte(nil), meta...),
	}, nil
}
