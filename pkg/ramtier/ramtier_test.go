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

package ramtier

import (
	"path/filepath"
	"testing"

	"quarxtor.org/core/pkg/blockstore"
	"quarxtor.org/core/pkg/filestore"
)

func TestDisabledLimit(t *testing.T) {
	inner, err := filestore.Open(filepath.Join(t.TempDir(), "blocks.qblk"))
	if err != nil {
		t.Fatal(err)
	}
	defer inner.Close()

	tier := New[blockstore.Store](inner, 0)
	if tier.Enabled() {
		t.Fatal("expected disabled tier")
	}
	if tier.IsUnlimited() {
		t.Fatal("limit 0 must not be unlimited")
	}
}

func TestUnlimitedSentinel(t *testing.T) {
	inner, err := filestore.Open(filepath.Join(t.TempDir(), "blocks.qblk"))
	if err != nil {
		t.Fatal(err)
	}
	defer inner.Close()

	tier := New[blockstore.Store](inner, Unlimited)
	if !tier.Enabled() {
		t.Fatal("expected enabled tier")
	}
	if !tier.IsUnlimited() {
		t.Fatal("expected unlimited tier")
	}
}

func TestCountersStartAtZeroAndAreIndependentlyMutable(t *testing.T) {
	inner, err := filestore.Open(filepath.Join(t.TempDir(), "blocks.qblk"))
	if err != nil {
		t.Fatal(err)
	}
	defer inner.Close()

	tier := New[blockstore.Store](inner, 1<<20)
	snap := tier.Snapshot()
	if snap != (Stats{}) {
		t.Fatalf("got %+v, want zero value", snap)
	}

	tier.IncHits()
	tier.IncHits()
	tier.IncMisses()
	tier.AddUsedBytes(128)
	tier.IncBlocks()
	tier.IncInserts()
	tier.IncEvictions()

	snap = tier.Snapshot()
	want := Stats{UsedBytes: 128, Blocks: 1, Hits: 2, Misses: 1, Inserts: 1, Evictions: 1}
	if snap != want {
		t.Fatalf("got %+v, want %+v", snap, want)
	}
}

func TestInnerRoundTrips(t *testing.T) {
	inner, err := filestore.Open(filepath.Join(t.TempDir(), "blocks.qblk"))
	if err != nil {
		t.Fatal(err)
	}
	defer inner.Close()

	tier := New[blockstore.Store](inner, Unlimited)
	if _, err := tier.Inner().PutL0([]byte("via-tier")); err != nil {
		t.Fatal(err)
	}
	_, _, body, err := tier.Inner().GetTyped(0)
	if err != nil {
		t.Fatal(err)
	}
	if string(body.L0) != "via-tier" {
		t.Fatalf("got %q", body.L0)
	}
}
