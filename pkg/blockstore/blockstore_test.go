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
	"bytes"
	"testing"

	"quarxtor.org/core/pkg/blockcodec"
	"quarxtor.org/core/pkg/qtypes"
)

func TestMakeFrameL0AndDecode(t *testing.T) {
	frame := MakeFrameL0(0, []byte("hello-l0"))
	kind, id, hash, body, err := DecodeFrameTyped(frame)
	if err != nil {
		t.Fatal(err)
	}
	if kind != qtypes.KindL0 || id != 0 {
		t.Fatalf("got kind %v id %v", kind, id)
	}
	wantHash := HashPayload(blockcodec.EncodeL0([]byte("hello-l0")))
	if hash != wantHash {
		t.Fatalf("hash mismatch: got %x want %x", hash, wantHash)
	}
	if !bytes.Equal(body.L0, []byte("hello-l0")) {
		t.Fatalf("got body %q", body.L0)
	}
}

func TestDecodeFrameTypedBadMagic(t *testing.T) {
	frame := MakeFrameL0(0, nil)
	frame[0] = 'X'
	if _, _, _, _, err := DecodeFrameTyped(frame); err == nil {
		t.Fatal("expected decode error")
	} else if se, ok := err.(*Error); !ok || se.Kind != KindDecode {
		t.Fatalf("got %v, want KindDecode", err)
	}
}
