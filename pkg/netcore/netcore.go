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

// Package netcore defines the network frame, payload, and capability data
// shapes that would carry block frames between peers (spec.md §6's
// collaborator contract: Hello/Caps/GetBlocks/PushBlocks/GetObject/
// PushObject/Ping/Pong). The block engine itself never imports this
// package — it is pure wire-shape plumbing with no transport, no dialing,
// no session state, kept here only so a future transport layer has a
// typed frame to send get_frame/put_* results over.
package netcore

import (
	"encoding/binary"
	"fmt"

	"quarxtor.org/core/pkg/qtypes"
	"quarxtor.org/core/pkg/tlv"
)

// NodeId abstractly identifies a peer; it shares BlockId's underlying
// representation but lives in its own namespace.
type NodeId = uint64

// ProtocolVersion is the two-field version pair advertised in Hello.
type ProtocolVersion struct {
	Major uint16
	Minor uint16
}

// FrameKind enumerates the eight frame types this layer is aware of.
type FrameKind uint8

const (
	FrameHello FrameKind = iota + 1
	FrameCaps
	FrameGetBlocks
	FramePushBlocks
	FrameGetObject
	FramePushObject
	FramePing
	FramePong
)

func (k FrameKind) String() string {
	switch k {
	case FrameHello:
		return "Hello"
	case FrameCaps:
		return "Caps"
	case FrameGetBlocks:
		return "GetBlocks"
	case FramePushBlocks:
		return "PushBlocks"
	case FrameGetObject:
		return "GetObject"
	case FramePushObject:
		return "PushObject"
	case FramePing:
		return "Ping"
	case FramePong:
		return "Pong"
	default:
		return fmt.Sprintf("FrameKind(%d)", uint8(k))
	}
}

func (k FrameKind) Valid() bool { return k >= FrameHello && k <= FramePong }

// FrameHeaderLen is the size, in bytes, of a Frame's fixed header: kind(1)
// + flags(1) + payload length, big-endian u32 (4).
const FrameHeaderLen = 1 + 1 + 4

// FrameHeader is the fixed prefix of a network frame.
type FrameHeader struct {
	Kind   FrameKind
	Flags  byte
	Length uint32
}

// Frame is the generic envelope: a header plus an opaque payload, whose
// structure depends on Kind. PushBlocksPayload and PushObjectPayload carry
// already-encoded block-engine bytes (get_frame output) straight through,
// unexamined by this layer.
type Frame struct {
	Header  FrameHeader
	Payload []byte
}

// EncodeFrame packs kind, flags, and payload into a single wire frame.
func EncodeFrame(kind FrameKind, flags byte, payload []byte) []byte {
	out := make([]byte, 0, FrameHeaderLen+len(payload))
	out = append(out, byte(kind), flags)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	out = append(out, lenBuf[:]...)
	out = append(out, payload...)
	return out
}

// DecodeFrame parses a complete wire frame.
func DecodeFrame(buf []byte) (Frame, error) {
	if len(buf) < FrameHeaderLen {
		return Frame{}, ErrInvalidFrame
	}
	kind := FrameKind(buf[0])
	if !kind.Valid() {
		return Frame{}, ErrInvalidFrame
	}
	length := binary.BigEndian.Uint32(buf[2:6])
	if uint32(len(buf)-FrameHeaderLen) < length {
		return Frame{}, ErrInvalidFrame
	}
	payload := append([]byte(nil), buf[FrameHeaderLen:FrameHeaderLen+int(length)]...)
	return Frame{
		Header:  FrameHeader{Kind: kind, Flags: buf[1], Length: length},
		Payload: payload,
	}, nil
}

// Tags for the small TLV-framed payloads below. This namespace is private
// to netcore and unrelated to pkg/blockcodec's tag space.
const (
	tagHelloNode    = 0x01
	tagHelloVerMaj  = 0x02
	tagHelloVerMin  = 0x03
	tagBlockIDsList = 0x01
	tagObjectID     = 0x01
)

// HelloPayload introduces a peer and the protocol version it speaks.
type HelloPayload struct {
	Node    NodeId
	Version ProtocolVersion
}

// EncodeHello serializes a HelloPayload to TLV.
func EncodeHello(h HelloPayload) []byte {
	var out []byte
	out = append(out, tlv.Write(tagHelloNode, tlv.PutU64(h.Node))...)
	out = append(out, tlv.Write(tagHelloVerMaj, tlv.PutU32(uint32(h.Version.Major)))...)
	out = append(out, tlv.Write(tagHelloVerMin, tlv.PutU32(uint32(h.Version.Minor)))...)
	return out
}

// DecodeHello parses a HelloPayload's TLV encoding.
func DecodeHello(payload []byte) (HelloPayload, error) {
	records, err := tlv.ReadAll(payload)
	if err != nil {
		return HelloPayload{}, ErrDecode
	}
	nodeRaw, ok := tlv.Find(records, tagHelloNode)
	if !ok {
		return HelloPayload{}, ErrDecode
	}
	node, err := tlv.GetU64(nodeRaw)
	if err != nil {
		return HelloPayload{}, ErrDecode
	}
	majRaw, ok := tlv.Find(records, tagHelloVerMaj)
	if !ok {
		return HelloPayload{}, ErrDecode
	}
	maj, err := tlv.GetU32(majRaw)
	if err != nil {
		return HelloPayload{}, ErrDecode
	}
	minRaw, ok := tlv.Find(records, tagHelloVerMin)
	if !ok {
		return HelloPayload{}, ErrDecode
	}
	min, err := tlv.GetU32(minRaw)
	if err != nil {
		return HelloPayload{}, ErrDecode
	}
	return HelloPayload{Node: node, Version: ProtocolVersion{Major: uint16(maj), Minor: uint16(min)}}, nil
}

// GetBlocksPayload requests a set of block identifiers from a peer.
type GetBlocksPayload struct {
	Ids []qtypes.BlockId
}

// EncodeGetBlocks serializes a GetBlocksPayload to TLV.
func EncodeGetBlocks(p GetBlocksPayload) []byte {
	var buf []byte
	for _, id := range p.Ids {
		buf = append(buf, tlv.PutU64(id)...)
	}
	return tlv.Write(tagBlockIDsList, buf)
}

// DecodeGetBlocks parses a GetBlocksPayload's TLV encoding.
func DecodeGetBlocks(payload []byte) (GetBlocksPayload, error) {
	records, err := tlv.ReadAll(payload)
	if err != nil {
		return GetBlocksPayload{}, ErrDecode
	}
	v, ok := tlv.Find(records, tagBlockIDsList)
	if !ok {
		return GetBlocksPayload{}, ErrDecode
	}
	if len(v)%8 != 0 {
		return GetBlocksPayload{}, ErrDecode
	}
	ids := make([]qtypes.BlockId, 0, len(v)/8)
	for off := 0; off < len(v); off += 8 {
		id, err := tlv.GetU64(v[off : off+8])
		if err != nil {
			return GetBlocksPayload{}, ErrDecode
		}
		ids = append(ids, id)
	}
	return GetBlocksPayload{Ids: ids}, nil
}

// PushBlocksPayload carries already-encoded block frames (get_frame
// output), concatenated, unexamined by this layer.
type PushBlocksPayload struct {
	Raw []byte
}

// GetObjectPayload requests a single object by identifier.
type GetObjectPayload struct {
	Id qtypes.ObjectId
}

// EncodeGetObject serializes a GetObjectPayload to TLV.
func EncodeGetObject(p GetObjectPayload) []byte {
	return tlv.Write(tagObjectID, tlv.PutU64(p.Id))
}

// DecodeGetObject parses a GetObjectPayload's TLV encoding.
func DecodeGetObject(payload []byte) (GetObjectPayload, error) {
	records, err := tlv.ReadAll(payload)
	if err != nil {
		return GetObjectPayload{}, ErrDecode
	}
	v, ok := tlv.Find(records, tagObjectID)
	if !ok {
		return GetObjectPayload{}, ErrDecode
	}
	id, err := tlv.GetU64(v)
	if err != nil {
		return GetObjectPayload{}, ErrDecode
	}
	return GetObjectPayload{Id: id}, nil
}

// PushObjectPayload carries an encoded object plus the tree beneath it,
// unexamined by this layer.
type PushObjectPayload struct {
	Raw []byte
}

// CapabilityKind discriminates a Capability announcement.
type CapabilityKind uint8

const (
	CapabilityCodecs CapabilityKind = iota
	CapabilityDicts
	CapabilityClusters
)

// Capability announces the set of codec, dictionary, or cluster
// identifiers a peer supports. Exactly one of Codecs/Dicts/Clusters is
// populated, selected by Kind.
type Capability struct {
	Kind     CapabilityKind
	Codecs   []qtypes.CodecId
	Dicts    []qtypes.DictId
	Clusters []qtypes.ClusterId
}
