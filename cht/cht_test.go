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

package cht

import (
	"os"
	"testing"
)

func buildTable(t *testing.T, capacity, keyBits, valueBits uint64, entries map[uint64]uint32) string {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "cht-*.bin")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := WriteHeader(f, capacity, keyBits, valueBits); err != nil {
		t.Fatal(err)
	}

	cells := make([]uint32, capacity)
	for minimizer, value := range entries {
		h := FMix64(minimizer)
		fingerprint := uint32(h >> (64 - keyBits))
		if fingerprint == 0 {
			fingerprint = 1 // build-time rewrite rule for the empty-slot sentinel
		}
		slot := h % capacity
		for cells[slot] != 0 {
			slot = (slot + 1) % capacity
		}
		cells[slot] = PackCell(fingerprint, value, valueBits)
	}
	for _, c := range cells {
		if err := WriteCell(f, c); err != nil {
			t.Fatal(err)
		}
	}

	return f.Name()
}

func TestLookupRoundTrip(t *testing.T) {
	entries := map[uint64]uint32{
		0x2D8:  7,
		0x218:  42,
		0xABCD: 1000,
		0x1:    255,
	}
	path := buildTable(t, 101, 24, 8, entries)

	table, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer table.Close()

	for minimizer, value := range entries {
		if got := table.Lookup(minimizer); got != value {
			t.Errorf("Lookup(%#x) = %d, want %d", minimizer, got, value)
		}
	}
}

func TestLookupMiss(t *testing.T) {
	path := buildTable(t, 101, 24, 8, map[uint64]uint32{0x2D8: 7})

	table, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer table.Close()

	if got := table.Lookup(0xdeadbeef); got != 0 {
		t.Errorf("Lookup of absent key = %d, want 0", got)
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "cht-*.bin")
	if err != nil {
		t.Fatal(err)
	}
	f.Write(make([]byte, headerLen+4))
	f.Close()

	if _, err := Load(f.Name()); err != ErrInvalidFileFormat {
		t.Errorf("Load() err = %v, want ErrInvalidFileFormat", err)
	}
}

func TestOccupiedCellsCountsNonEmptySlots(t *testing.T) {
	entries := map[uint64]uint32{
		0x2D8:  7,
		0x218:  42,
		0xABCD: 1000,
	}
	path := buildTable(t, 101, 24, 8, entries)

	table, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer table.Close()

	if got := table.OccupiedCells(); got != uint64(len(entries)) {
		t.Errorf("OccupiedCells() = %d, want %d", got, len(entries))
	}
}

func TestOccupiedCellsEmptyTable(t *testing.T) {
	path := buildTable(t, 101, 24, 8, nil)

	table, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer table.Close()

	if got := table.OccupiedCells(); got != 0 {
		t.Errorf("OccupiedCells() = %d, want 0", got)
	}
}

func TestFMix64Deterministic(t *testing.T) {
	if FMix64(0) != FMix64(0) {
		t.Fatal("FMix64 must be a pure function")
	}
	if FMix64(0) == FMix64(1) {
		t.Fatal("FMix64 should not collide on trivial inputs")
	}
}
