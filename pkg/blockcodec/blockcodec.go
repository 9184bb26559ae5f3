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

// Package blockcodec encodes and decodes the four per-kind block payloads
// (L0 raw, Multi recipe, Z range, Object root) over the pkg/tlv wire
// format. Each kind's payload is a concatenation of TLV records with
// kind-specific tags; the tag namespace is partitioned by kind so a
// corrupted-kind frame is easy to detect. Decoders scan for the first
// matching tag and ignore unknown tags, which keeps the format forward
// compatible: a future tag slots in without breaking older readers.
package blockcodec

import "github.com/pkg/errors"

// Tag values, partitioned by block kind.
const (
	TagL0Raw = 0x01

	TagMultiAggregate   = 0x10
	TagMultiCodecRecipe = 0x11
	TagMultiCustom      = 0x12

	TagZFirst = 0x20
	TagZLast  = 0x21
	TagZType  = 0x22
	TagZMeta  = 0x23

	TagObjectRoot = 0x30
	TagObjectType = 0x31
	TagObjectMeta = 0x32
)

// ErrMissingTag is returned when a required TLV tag is absent from a
// payload.
var ErrMissingTag = errors.New("blockcodec: required tag missing")

// ErrBadDiscriminant is returned when an option or reference-kind byte on
// the wire carries a value outside its defined range.
var ErrBadDiscriminant = errors.New("blockcodec: invalid discriminant byte")

// ErrTruncated is returned when a fixed-size inner field runs past the end
// of its containing TLV value.
var ErrTruncated = errors.New("blockcodec: truncated field")
