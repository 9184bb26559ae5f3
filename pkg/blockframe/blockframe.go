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

// Package blockframe wraps a block kind, identifier, content hash, and
// payload into the canonical on-disk frame, and decodes it back. The fixed
// header layout allows random-access reads: a caller can read the first 12
// bytes, learn the payload length, and read the rest in one further seek.
//
//	offset  size  field
//	0       4     magic  = ASCII "QBLK"
//	4       1     kind   ∈ {0,1,2,3}
//	5       1     flags  (0, reserved)
//	6       2     reserved (0)
//	8       4     payload_len (big-endian u32)
//	12      32    content_hash (BLAKE3(payload))
//	44      8     block_id (big-endian u64)
//	52      N     payload bytes
package blockframe

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"quarxtor.org/core/pkg/qtypes"
)

// Magic is the fixed four-byte frame prefix.
var Magic = [4]byte{'Q', 'B', 'L', 'K'}

// HeaderLen is the length, in bytes, of everything before the payload.
const HeaderLen = 4 + 1 + 1 + 2 + 4 + 32 + 8 // 52

// HashLen is the length of the content hash.
const HashLen = 32

// ErrShortBuffer is returned when a buffer is too small to hold even the
// fixed header, or shorter than the header plus the declared payload
// length.
var ErrShortBuffer = errors.New("blockframe: buffer shorter than declared frame length")

// ErrBadMagic is returned when the frame's first four bytes are not
// "QBLK".
var ErrBadMagic = errors.New("blockframe: bad magic")

// ErrBadKind is returned when the frame's kind byte is outside {0,1,2,3}.
var ErrBadKind = errors.New("blockframe: kind byte out of range")

// Header is the fixed, 12-byte-prefix-readable portion of a decoded frame,
// useful to callers that want the payload length before reading the rest.
type Header struct {
	Kind       qtypes.BlockKind
	PayloadLen uint32
}

// Encode packs kind, id, hash, and payload into a single frame. Total frame
// length is HeaderLen + len(payload).
func Encode(kind qtypes.BlockKind, id qtypes.BlockId, hash [HashLen]byte, payload []byte) []byte {
	out := make([]byte, 0, HeaderLen+len(payload))
	out = append(out, Magic[:]...)
	out = append(out, byte(kind))
	out = append(out, 0) // flags
	out = append(out, 0, 0) // reserved
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	out = append(out, lenBuf[:]...)
	out = append(out, hash[:]...)
	var idBuf [8]byte
	binary.BigEndian.PutUint64(idBuf[:], id)
	out = append(out, idBuf[:]...)
	out = append(out, payload...)
	return out
}

// DecodeHeader reads just the first 12 bytes of a frame to learn its kind
// and payload length, without requiring the full frame to be in memory.
// The caller is expected to have at least 12 bytes available.
func DecodeHeader(first12 []byte) (Header, error) {
	if len(first12) < 12 {
		return Header{}, ErrShortBuffer
	}
	if string(first12[0:4]) != string(Magic[:]) {
		return Header{}, ErrBadMagic
	}
	kind := qtypes.BlockKind(first12[4])
	if !kind.Valid() {
		return Header{}, ErrBadKind
	}
	payloadLen := binary.BigEndian.Uint32(first12[8:12])
	return Header{Kind: kind, PayloadLen: payloadLen}, nil
}

// Decode parses a complete frame buffer into its kind, id, hash, and
// payload. It fails if the buffer is shorter than HeaderLen+payload_len, if
// the magic doesn't match, or if the kind byte is outside {0..3}.
func Decode(buf []byte) (kind qtypes.BlockKind, id qtypes.BlockId, hash [HashLen]byte, payload []byte, err error) {
	if len(buf) < HeaderLen {
		return 0, 0, hash, nil, ErrShortBuffer
	}
	hdr, err := DecodeHeader(buf[:12])
	if err != nil {
		return 0, 0, hash, nil, err
	}
	want := HeaderLen + int(hdr.PayloadLen)
	if len(buf) < want {
		return 0, 0, hash, nil, ErrShortBuffer
	}
	copy(hash[:], buf[12:44])
	id = binary.BigEndian.Uint64(buf[44:52])
	payload = append([]byte(nil), buf[52:want]...)
	return hdr.Kind, id, hash, payload, nil
}

// Len returns the total frame length (header + payload) for a given
// payload size, without building the frame.
func Len(payloadLen int) int {
	return HeaderLen + payloadLen
}
