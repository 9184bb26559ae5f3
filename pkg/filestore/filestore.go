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

// Package filestore implements the append-only, single-file block store:
// one log file plus an in-memory identifier-to-offset index rebuilt by
// scanning on open. Identifier assignment is implicit in frame position,
// so there is no separate index file and no class of id/offset consistency
// bugs to guard against. This is the direct descendant of
// pkg/blobserver/diskpacked's append+lock+scan-on-open design, simplified
// to a single log file and a plain offset slice in place of diskpacked's
// multi-pack-file layout and external kvfile index.
package filestore

import (
	"encoding/binary"
	"io"
	"log"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"quarxtor.org/core/pkg/blockcodec"
	"quarxtor.org/core/pkg/blockframe"
	"quarxtor.org/core/pkg/blockstore"
	"quarxtor.org/core/pkg/qtypes"
)

// Store is an append-only, file-backed block store. The file handle is
// guarded by a single mutex: only one goroutine may seek+read or
// seek+append at a time, and the identifier index is mutated only by
// appenders under that same lock. This is the minimum correct design per
// spec.md §9; a future implementation MAY switch to a read-write lock to
// parallelize readers, since the log is append-only.
type Store struct {
	path string

	mu     sync.Mutex
	file   *os.File
	index  []uint64 // offset of each block's frame, by BlockId
	closed bool
}

var _ blockstore.Store = (*Store)(nil)

// Open opens or creates the log file at path and rebuilds the identifier
// index by scanning it from the start. Re-opening a store after a process
// restart reproduces the exact same index, because the index is nothing
// more than a cache of frame start offsets.
func Open(path string) (*Store, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, blockstore.IoError(errors.Wrapf(err, "opening %s", path))
	}
	s := &Store{path: path, file: f}
	if err := s.rebuildIndex(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// rebuildIndex scans the log from offset 0, pushing the start offset of
// every complete frame it finds. It stops cleanly at end-of-file, and it
// stops (without error) the moment a frame's magic fails to match or a
// frame's declared length runs past the end of the file: the torn-tail
// recovery policy treats everything before that point as the valid log and
// everything from that point on as an in-flight write that never
// completed. The index builder never truncates the file.
func (s *Store) rebuildIndex() error {
	s.index = s.index[:0]

	info, err := s.file.Stat()
	if err != nil {
		return blockstore.IoError(err)
	}
	size := info.Size()

	var offset int64
	hdr := make([]byte, 12)
	for {
		if _, err := s.file.Seek(offset, io.SeekStart); err != nil {
			return blockstore.IoError(err)
		}
		n, err := io.ReadFull(s.file, hdr)
		if err == io.EOF || (err == io.ErrUnexpectedEOF && n < len(hdr)) {
			break
		}
		if err != nil {
			return blockstore.IoError(err)
		}

		h, err := blockframe.DecodeHeader(hdr)
		if err != nil {
			log.Printf("filestore: %s: stopping recovery at offset %d: %v (torn tail)", s.path, offset, err)
			break
		}

		frameLen := int64(blockframe.Len(int(h.PayloadLen)))
		next := offset + frameLen
		if next < offset {
			return blockstore.CorruptError(0, errors.New("filestore: offset overflow while rebuilding index"))
		}
		if next > size {
			log.Printf("filestore: %s: stopping recovery at offset %d: frame runs past end of file (torn tail)", s.path, offset)
			break
		}
		s.index = append(s.index, uint64(offset))
		offset = next
	}
	return nil
}

// Len returns the number of blocks currently indexed.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.index)
}

// Close releases the underlying file handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}

func (s *Store) nextIDLocked() qtypes.BlockId {
	return qtypes.BlockId(len(s.index))
}

// appendFrameLocked writes frame immediately after the last indexed frame
// (so a torn suffix left by an interrupted append is overwritten) and
// records its start offset in the index. Must be called with mu held.
func (s *Store) appendFrameLocked(frame []byte) (qtypes.BlockId, error) {
	if s.closed {
		return 0, blockstore.IoError(errors.New("filestore: write to closed store"))
	}
	var offset int64
	if n := len(s.index); n > 0 {
		last := int64(s.index[n-1])
		hdr := make([]byte, 12)
		if _, err := s.file.ReadAt(hdr, last); err != nil {
			return 0, blockstore.IoError(err)
		}
		h, err := blockframe.DecodeHeader(hdr)
		if err != nil {
			return 0, blockstore.CorruptError(qtypes.BlockId(n-1), err)
		}
		offset = last + int64(blockframe.Len(int(h.PayloadLen)))
	}
	if _, err := s.file.Seek(offset, io.SeekStart); err != nil {
		return 0, blockstore.IoError(err)
	}
	if _, err := s.file.Write(frame); err != nil {
		return 0, blockstore.IoError(err)
	}
	if err := s.file.Sync(); err != nil {
		return 0, blockstore.IoError(err)
	}
	id := qtypes.BlockId(len(s.index))
	s.index = append(s.index, uint64(offset))
	return id, nil
}

// PutL0 writes a raw L0 payload.
func (s *Store) PutL0(raw []byte) (qtypes.BlockId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextIDLocked()
	return s.appendFrameLocked(blockstore.MakeFrameL0(id, raw))
}

// PutMulti writes a Multi block from its recipe.
func (s *Store) PutMulti(recipe blockcodec.MultiRecipe) (qtypes.BlockId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextIDLocked()
	return s.appendFrameLocked(blockstore.MakeFrameMulti(id, recipe))
}

// PutZ writes a Z block.
func (s *Store) PutZ(z blockcodec.ZPayload) (qtypes.BlockId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextIDLocked()
	return s.appendFrameLocked(blockstore.MakeFrameZ(id, z))
}

// PutObject writes an Object block.
func (s *Store) PutObject(o blockcodec.ObjectPayload) (qtypes.BlockId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextIDLocked()
	return s.appendFrameLocked(blockstore.MakeFrameObject(id, o))
}

// readFrameAtLocked reads the complete frame starting at offset. Must be
// called with mu held.
func (s *Store) readFrameAtLocked(offset uint64) ([]byte, error) {
	if _, err := s.file.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, blockstore.IoError(err)
	}
	hdr := make([]byte, 12)
	if _, err := io.ReadFull(s.file, hdr); err != nil {
		return nil, blockstore.IoError(err)
	}
	h, err := blockframe.DecodeHeader(hdr)
	if err != nil {
		return nil, blockstore.CorruptError(0, err)
	}
	rest := make([]byte, blockframe.HeaderLen-len(hdr)+int(h.PayloadLen))
	if _, err := io.ReadFull(s.file, rest); err != nil {
		return nil, blockstore.IoError(err)
	}
	full := make([]byte, 0, len(hdr)+len(rest))
	full = append(full, hdr...)
	full = append(full, rest...)
	return full, nil
}

// GetTyped resolves id to an offset, reads the frame, and decodes it into
// a typed body. It fails with KindOutOfRange for an unknown identifier and
// KindCorrupt if the decoded frame's identifier disagrees with id.
func (s *Store) GetTyped(id qtypes.BlockId) (qtypes.BlockKind, [blockframe.HashLen]byte, blockstore.BlockBody, error) {
	s.mu.Lock()
	if id >= qtypes.BlockId(len(s.index)) {
		s.mu.Unlock()
		return 0, [blockframe.HashLen]byte{}, blockstore.BlockBody{}, blockstore.OutOfRangeError(id)
	}
	offset := s.index[id]
	frame, err := s.readFrameAtLocked(offset)
	s.mu.Unlock()
	if err != nil {
		return 0, [blockframe.HashLen]byte{}, blockstore.BlockBody{}, err
	}

	kind, decodedID, hash, body, err := blockstore.DecodeFrameTyped(frame)
	if err != nil {
		return 0, [blockframe.HashLen]byte{}, blockstore.BlockBody{}, err
	}
	if decodedID != id {
		return 0, [blockframe.HashLen]byte{}, blockstore.BlockBody{}, blockstore.CorruptError(id,
			errors.Errorf("frame id %d does not match requested id %d", decodedID, id))
	}
	return kind, hash, body, nil
}

// GetFrame returns the entire persisted frame for id, usable for
// forwarding without re-encoding.
func (s *Store) GetFrame(id qtypes.BlockId) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id >= qtypes.BlockId(len(s.index)) {
		return nil, blockstore.OutOfRangeError(id)
	}
	return s.readFrameAtLocked(s.index[id])
}

// IndexChecksum returns an xxhash64 digest of the in-memory offset index,
// a cheap non-cryptographic signature a caller can compare across two
// supposedly-identical stores (e.g. a primary and a replica produced by
// copying the log file) without re-hashing every payload with BLAKE3. It
// says nothing about payload integrity by itself; pair it with Verify for
// that.
func (s *Store) IndexChecksum() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := xxhash.New()
	var buf [8]byte
	for _, offset := range s.index {
		binary.BigEndian.PutUint64(buf[:], offset)
		h.Write(buf[:])
	}
	return h.Sum64()
}

// Verify walks every indexed identifier, recomputing BLAKE3 over each
// payload and comparing it against the hash stored in the frame. It
// returns the identifier and error of the first mismatch found, or 0 and
// nil if every block checks out. This supplements spec.md §6's "callers
// may independently recompute and compare" with a ready-made sweep, in the
// spirit of the teacher's diskpacked.Walk/Reindex consistency checks.
func (s *Store) Verify() (qtypes.BlockId, error) {
	n := s.Len()
	for id := qtypes.BlockId(0); id < qtypes.BlockId(n); id++ {
		frame, err := s.GetFrame(id)
		if err != nil {
			return id, err
		}
		kind, decodedID, hash, payload, err := blockframe.Decode(frame)
		if err != nil {
			return id, blockstore.DecodeError(err)
		}
		if decodedID != id {
			return id, blockstore.CorruptError(id, errors.Errorf("frame id %d != index id %d", decodedID, id))
		}
		if !kind.Valid() {
			return id, blockstore.CorruptError(id, errors.Errorf("invalid kind byte %d", kind))
		}
		if got := blockstore.HashPayload(payload); got != hash {
			return id, blockstore.CorruptError(id, errors.New("payload hash mismatch"))
		}
	}
	return 0, nil
}
