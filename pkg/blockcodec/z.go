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

// ZPayload is the structural-range body of a Z block: an inclusive
// [FirstL0, LastL0] range plus an opaque analyzer type tag and metadata.
// Id and hash live outside the payload, at the frame layer.
type ZPayload struct {
	FirstL0 qtypes.BlockId
	LastL0  qtypes.BlockId
	ZType   uint32
	Meta    []byte
}

// EncodeZ serializes a ZPayload into its four-tag TLV payload.
func EncodeZ(z ZPayload) []byte {
	var out []byte
	out = append(out, tlv.Write(TagZFirst, tlv.PutU64(z.FirstL0))...)
	out = append(out, tlv.Write(TagZLast, tlv.PutU64(z.LastL0))...)
	out = append(out, tlv.Write(TagZType, tlv.PutU32(z.ZType))...)
	out = append(out, tlv.Write(TagZMeta, z.Meta)...)
	return out
}

// DecodeZ parses a Z block's TLV payload. FirstL0, LastL0, and ZType are
// required; Meta defaults to empty when absent.
func DecodeZ(payload []byte) (ZPayload, error) {
	records, err := tlv.ReadAll(payload)
	if err != nil {
		return ZPayload{}, err
	}

	firstRaw, ok := tlv.Find(records, TagZFirst)
	if !ok {
		return ZPayload{}, ErrMissingTag
	}
	first, err := tlv.GetU64(firstRaw)
	if err != nil {
		return ZPayload{}, err
	}

	lastRaw, ok := tlv.Find(records, TagZLast)
	if !ok {
		return ZPayload{}, ErrMissingTag
	}
	last, err := tlv.GetU64(lastRaw)
	if err != nil {
		return ZPayload{}, err
	}

	typeRaw, ok := tlv.Find(records, TagZType)
	if !ok {
		return ZPayload{}, ErrMissingTag
	}
	zType, err := tlv.GetU32(typeRaw)
	if err != nil {
		return ZPayload{}, err
	}

	meta, _ := tlv.Find(records, TagZMeta)

	return ZPayload{
		FirstL0: first,
		LastL0:  last,
		ZType:   zType,
		Meta:    append([]byte(nil), meta...),
	}, nil
}
