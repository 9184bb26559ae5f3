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

import "quarxtor.org/core/pkg/tlv"

// EncodeL0 wraps raw block bytes in a single tag-0x01 TLV record. L0 is the
// atomic physical block (typically 8 KiB); the core places no upper bound
// on its size beyond the TLV 32-bit length field.
func EncodeL0(raw []byte) []byte {
	return tlv.Write(TagL0Raw, raw)
}

// DecodeL0 extracts the raw bytes from an L0 payload. The tag 0x01 record
// is required; it is not present, decoding fails.
func DecodeL0(payload []byte) ([]byte, error) {
	records, err := tlv.ReadAll(payload)
	if err != nil {
		return nil, err
	}
	raw, ok := tlv.Find(records, TagL0Raw)
	if !ok {
		return nil, ErrMissingTag
	}
	return append([]byte(nil), raw...), nil
}
