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

// Package ramtier is the contract surface for a future in-memory caching
// tier in front of any blockstore.Store. It deliberately implements none
// of the block-store contract and caches nothing: it exists so admission,
// eviction, and coherence policy can be designed later against a stable
// shape, the way pkg/blobserver/stats collects telemetry in front of a
// real blobserver.Storage without participating in the read/write path
// itself.
package ramtier

import "sync/atomic"

// Unlimited is the sentinel limit meaning "no byte ceiling".
const Unlimited uint64 = ^uint64(0)

// Stats is an immutable snapshot of a Tier's counters at the moment it was
// taken. The counters themselves are relaxed-ordering atomics: they are
// approximate telemetry, not a coherence mechanism.
type Stats struct {
	UsedBytes uint64
	Blocks    uint64
	Hits      uint64
	Misses    uint64
	Inserts   uint64
	Evictions uint64
}

// Tier wraps an inner block store of type S with a byte limit and six
// monotone counters. Limit 0 means the tier is logically disabled; limit
// Unlimited means no ceiling. Neither admission nor eviction is
// implemented here — Tier does not satisfy blockstore.Store and never
// will on its own; it is a building block for whatever caching layer is
// designed on top of it.
type Tier[S any] struct {
	inner S
	limit uint64

	usedBytes atomic.Uint64
	blocks    atomic.Uint64
	hits      atomic.Uint64
	misses    atomic.Uint64
	inserts   atomic.Uint64
	evictions atomic.Uint64
}

// New wraps inner with a RAM tier contract at the given byte limit.
func New[S any](inner S, limit uint64) *Tier[S] {
	return &Tier[S]{inner: inner, limit: limit}
}

// Limit returns the configured byte ceiling (0 = disabled, Unlimited = no
// ceiling).
func (t *Tier[S]) Limit() uint64 { return t.limit }

// Enabled reports whether the tier has a non-zero limit.
func (t *Tier[S]) Enabled() bool { return t.limit != 0 }

// IsUnlimited reports whether the tier's limit is the Unlimited sentinel.
func (t *Tier[S]) IsUnlimited() bool { return t.limit == Unlimited }

// Inner returns the wrapped store for read access.
func (t *Tier[S]) Inner() S { return t.inner }

// InnerMut returns a pointer to the wrapped store for callers that need
// to replace or reconfigure it; S is expected to be a reference-like type
// (an interface or a pointer) in practice, same as the field it exposes.
func (t *Tier[S]) InnerMut() *S { return &t.inner }

// Snapshot returns the current value of every counter. Because the
// counters use relaxed atomic loads independently of one another, a
// snapshot is not a single consistent point-in-time view across all six
// fields — acceptable for telemetry, per spec.md §5.
func (t *Tier[S]) Snapshot() Stats {
	return Stats{
		UsedBytes: t.usedBytes.Load(),
		Blocks:    t.blocks.Load(),
		Hits:      t.hits.Load(),
		Misses:    t.misses.Load(),
		Inserts:   t.inserts.Load(),
		Evictions: t.evictions.Load(),
	}
}

// The following are exposed so a future caching layer built on top of Tier
// can drive the counters without reaching into unexported fields; Tier
// itself never calls them.

// AddUsedBytes adjusts the used-bytes counter by delta (may be negative
// via wraparound semantics of unsigned subtraction, matching Rust's
// wrapping counters).
func (t *Tier[S]) AddUsedBytes(delta uint64) { t.usedBytes.Add(delta) }

// IncBlocks increments the resident-block count.
func (t *Tier[S]) IncBlocks() { t.blocks.Add(1) }

// DecBlocks decrements the resident-block count.
func (t *Tier[S]) DecBlocks() { t.blocks.Add(^uint64(0)) }

// IncHits increments the cache-hit counter.
func (t *Tier[S]) IncHits() { t.hits.Add(1) }

// IncMisses increments the cache-miss counter.
func (t *Tier[S]) IncMisses() { t.misses.Add(1) }

// IncInserts increments the insert counter.
func (t *Tier[S]) IncInserts() { t.inserts.Add(1) }

// IncEvictions increments the eviction counter.
func (t *Tier[S]) IncEvictions() { t.evictions.Add(1) }
