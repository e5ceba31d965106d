// Copyright © 2018-2020 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package cht implements the on-disk compact hash table: an
// open-addressing, fixed-capacity table that packs a key fingerprint and
// a taxon value into one 32-bit cell, loaded read-only via mmap so
// worker goroutines can share it without copying or locking.
package cht

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// Magic is the 8-byte magic number at the start of a compact hash table file.
var Magic = [8]byte{'t', 'a', 'x', 'o', 'c', 'h', 't', '1'}

// ErrInvalidFileFormat means the magic number didn't match.
var ErrInvalidFileFormat = errors.New("cht: invalid compact hash table file")

// ErrTruncatedFile means the file is shorter than capacity*4+header bytes.
var ErrTruncatedFile = errors.New("cht: truncated compact hash table file")

const headerLen = 8 + 8 + 8 + 8 // magic + capacity + key_bits + value_bits
const cellSize = 4

// Header mirrors the on-disk header: magic, capacity, key_bits, value_bits.
// value_mask is derived, not stored redundantly on disk beyond value_bits.
type Header struct {
	Capacity  uint64
	KeyBits   uint64
	ValueBits uint64
	ValueMask uint32
}

// Table is a read-only, memory-mapped compact hash table.
type Table struct {
	Header

	f      *os.File
	region mmap.MMap
	cells  []byte // region, offset past the header
}

// Load opens path, validates its header, and memory-maps the cell array
// read-only. The returned Table is safe for concurrent Lookup calls.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cht: open %s", path)
	}

	var hdr [headerLen]byte
	if _, err = readFull(f, hdr[:]); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "cht: read header of %s", path)
	}

	var m [8]byte
	copy(m[:], hdr[:8])
	if m != Magic {
		f.Close()
		return nil, ErrInvalidFileFormat
	}

	capacity := binary.LittleEndian.Uint64(hdr[8:16])
	keyBits := binary.LittleEndian.Uint64(hdr[16:24])
	valueBits := binary.LittleEndian.Uint64(hdr[24:32])

	if capacity == 0 {
		f.Close()
		return nil, errors.Wrapf(ErrInvalidFileFormat, "capacity=0")
	}
	if keyBits+valueBits != 32 || valueBits == 0 || valueBits >= 32 {
		f.Close()
		return nil, errors.Wrapf(ErrInvalidFileFormat, "key_bits=%d value_bits=%d", keyBits, valueBits)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	wantSize := int64(headerLen) + int64(capacity)*cellSize
	if info.Size() < wantSize {
		f.Close()
		return nil, ErrTruncatedFile
	}

	region, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "cht: mmap")
	}

	valueMask := uint32(1)<<valueBits - 1

	return &Table{
		Header: Header{
			Capacity:  capacity,
			KeyBits:   keyBits,
			ValueBits: valueBits,
			ValueMask: valueMask,
		},
		f:      f,
		region: region,
		cells:  []byte(region)[headerLen:],
	}, nil
}

// Close unmaps the region and closes the underlying file.
func (t *Table) Close() error {
	if t.region != nil {
		if err := t.region.Unmap(); err != nil {
			return err
		}
		t.region = nil
	}
	return t.f.Close()
}

func (t *Table) cell(i uint64) uint32 {
	o := i * cellSize
	return binary.LittleEndian.Uint32(t.cells[o : o+4])
}

// OccupiedCells walks the full cell array and counts the non-empty
// slots, for reporting load factor. O(capacity); meant for an info
// command, not the hot lookup path.
func (t *Table) OccupiedCells() uint64 {
	var n uint64
	for i := uint64(0); i < t.Capacity; i++ {
		if t.cell(i) != 0 {
			n++
		}
	}
	return n
}

// Lookup probes the table for minimizer (already canonicalized and
// toggled by the scanner) and returns the raw cell value (fingerprint
// stripped, value bits only) or 0 on a miss. Probing is linear with
// wraparound, bounded at capacity so a saturated table can't loop
// forever.
func (t *Table) Lookup(minimizer uint64) uint32 {
	h := FMix64(minimizer)
	fingerprint := uint32(h >> (64 - t.KeyBits))
	slot := h % t.Capacity

	for probes := uint64(0); probes < t.Capacity; probes++ {
		cell := t.cell(slot)
		if cell == 0 {
			return 0 // empty slot: miss
		}
		cellFingerprint := cell >> t.ValueBits
		if cellFingerprint == fingerprint {
			return cell & t.ValueMask
		}
		slot++
		if slot == t.Capacity {
			slot = 0
		}
	}
	return 0
}

func readFull(f *os.File, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := f.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
		if m == 0 {
			return n, fmt.Errorf("cht: unexpected EOF")
		}
	}
	return n, nil
}

// FMix64 is the 64-bit finalizer of MurmurHash3, used both to derive a
// table's probe hash from an already-canonicalized minimizer and, in
// the scanner, to support hash-based minimizer subsampling.
func FMix64(k uint64) uint64 {
	k ^= k >> 33
	k *= 0xff51afd7ed558ccd
	k ^= k >> 33
	k *= 0xc4ceb9fe1a85ec53
	k ^= k >> 33
	return k
}
