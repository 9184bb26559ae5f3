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

// Package tlv implements the tag-length-value primitives that every typed
// block payload in QuarXTor is built from: a one-byte tag, a four-byte
// big-endian length, and the value bytes. Fixed big-endian widths remove
// any endianness negotiation; the 32-bit length field bounds a single TLV
// value to ~4 GiB, far above any realistic block size.
package tlv

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ErrShortRecord is returned when a TLV record header (5 bytes) does not
// fit in the remaining buffer.
var ErrShortRecord = errors.New("tlv: truncated record header")

// ErrShortValue is returned when a TLV record's declared length exceeds the
// remaining buffer.
var ErrShortValue = errors.New("tlv: declared length exceeds buffer")

// ErrBadWidth is returned by the fixed-width integer decoders when the
// input does not match the expected width.
var ErrBadWidth = errors.New("tlv: integer length mismatch")

// Record is a single decoded (tag, value) pair.
type Record struct {
	Tag   byte
	Value []byte
}

// Write encodes one TLV record: tag, then a 4-byte big-endian length, then
// value.
func Write(tag byte, value []byte) []byte {
	out := make([]byte, 0, 5+len(value))
	out = append(out, tag)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(value)))
	out = append(out, lenBuf[:]...)
	out = append(out, value...)
	return out
}

// ReadAll consumes the entire buffer into a flat sequence of records. It
// fails if a record header doesn't fit, or a declared length exceeds the
// remaining buffer. Duplicate tags are permitted at this layer; the
// higher-level codec decides semantics.
func ReadAll(buf []byte) ([]Record, error) {
	var out []Record
	for len(buf) > 0 {
		if len(buf) < 5 {
			return nil, ErrShortRecord
		}
		tag := buf[0]
		length := binary.BigEndian.Uint32(buf[1:5])
		buf = buf[5:]
		if uint64(len(buf)) < uint64(length) {
			return nil, ErrShortValue
		}
		value := buf[:length]
		buf = buf[length:]
		out = append(out, Record{Tag: tag, Value: value})
	}
	return out, nil
}

// Find returns the value of the first record matching tag, and whether it
// was found. Callers use this to implement "first match wins, unknown tags
// ignored" semantics.
func Find(records []Record, tag byte) ([]byte, bool) {
	for _, r := range records {
		if r.Tag == tag {
			return r.Value, true
		}
	}
	return nil, false
}

// PutU32 encodes x as 4 big-endian bytes.
func PutU32(x uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], x)
	return b[:]
}

// PutU64 encodes x as 8 big-endian bytes.
func PutU64(x uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], x)
	return b[:]
}

// GetU32 decodes a 4-byte big-endian value; it fails if b is not exactly 4
// bytes long.
func GetU32(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, ErrBadWidth
	}
	return binary.BigEndian.Uint32(b), nil
}

// GetU64 decodes an 8-byte big-endian value; it fails if b is not exactly 8
// bytes long.
func GetU64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, ErrBadWidth
	}
	return binary.BigEndian.Uint64(b), nil
}
