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

package taxoclass

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"
)

// buildTaxonomy writes a minimal valid taxonomy file to a temp path and
// loads it back, for tests that need a *Taxonomy without a fixture file.
// parents[0] and parents[1] are not validated by LoadTaxonomy but are
// loaded as the sentinel's and root's ParentID, so callers pass 0 for
// both; parents[i] for i>=2 must be < i.
func buildTaxonomy(t *testing.T, parents []uint32, externalIDs []uint64) *Taxonomy {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(TaxonomyMagic[:])
	var u64 [8]byte
	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(u64[:], v)
		buf.Write(u64[:])
	}
	putU64(uint64(len(parents)))
	putU64(0) // name arena len
	putU64(0) // rank arena len

	for i, p := range parents {
		putU64(uint64(p))    // parent_id
		putU64(0)            // first_child
		putU64(0)            // child_count
		putU64(0)            // name_offset
		putU64(0)            // rank_offset
		putU64(externalIDs[i]) // external_id
		putU64(0)            // godparent_id
	}

	f, err := os.CreateTemp(t.TempDir(), "taxonomy-*.bin")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.Write(buf.Bytes()); err != nil {
		t.Fatal(err)
	}

	tax, err := LoadTaxonomy(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	return tax
}

// Taxonomy shape used across tests: root=1; A=2, B=3 children of 1.
func lcaTieTaxonomy(t *testing.T) *Taxonomy {
	return buildTaxonomy(t,
		[]uint32{0, 0, 1, 1},
		[]uint64{0, 1, 2, 3},
	)
}

func TestTaxonomyLCASelfAndCommutative(t *testing.T) {
	tax := lcaTieTaxonomy(t)

	if got := tax.LCA(2, 2); got != 2 {
		t.Errorf("LCA(a,a) = %d, want 2", got)
	}
	if a, b := tax.LCA(2, 3), tax.LCA(3, 2); a != b {
		t.Errorf("LCA not commutative: %d vs %d", a, b)
	}
}

func TestTaxonomyLCAWithSentinel(t *testing.T) {
	tax := lcaTieTaxonomy(t)

	if got := tax.LCA(0, 3); got != 3 {
		t.Errorf("LCA(0,x) = %d, want 3", got)
	}
	if got := tax.LCA(3, 0); got != 3 {
		t.Errorf("LCA(x,0) = %d, want 3", got)
	}
}

func TestTaxonomyLCAOfSiblingsIsParent(t *testing.T) {
	tax := lcaTieTaxonomy(t)

	if got := tax.LCA(2, 3); got != 1 {
		t.Errorf("LCA(A,B) = %d, want 1 (root)", got)
	}
}

func TestTaxonomyIsAncestorOf(t *testing.T) {
	tax := lcaTieTaxonomy(t)

	if !tax.IsAncestorOf(1, 2) {
		t.Error("expected root to be an ancestor of A")
	}
	if tax.IsAncestorOf(2, 3) {
		t.Error("A must not be an ancestor of its sibling B")
	}
	if tax.IsAncestorOf(0, 2) || tax.IsAncestorOf(2, 0) {
		t.Error("node 0 can never be an ancestor or have one")
	}
	if !tax.IsAncestorOf(2, 2) {
		t.Error("a node must be its own ancestor")
	}
}

func TestTaxonomyIsAncestorOfDeepChain(t *testing.T) {
	// root=1; 2 child of 1; 3 child of 2; 4 child of 3.
	tax := buildTaxonomy(t,
		[]uint32{0, 0, 1, 2, 3},
		[]uint64{0, 1, 2, 3, 4},
	)

	if !tax.IsAncestorOf(1, 4) {
		t.Error("root must be ancestor of the deepest leaf")
	}
	if tax.IsAncestorOf(4, 1) {
		t.Error("a leaf is never an ancestor of the root")
	}
}

func TestLoadTaxonomyRejectsBadMagic(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "taxonomy-*.bin")
	if err != nil {
		t.Fatal(err)
	}
	f.Write(make([]byte, taxonomyHeaderLen))
	f.Close()

	if _, err := LoadTaxonomy(f.Name()); err == nil {
		t.Fatal("expected an error loading a file with a bad magic number")
	}
}

func TestLoadTaxonomyRejectsOutOfOrderParent(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(TaxonomyMagic[:])
	var u64 [8]byte
	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(u64[:], v)
		buf.Write(u64[:])
	}
	putU64(3) // node_count
	putU64(0)
	putU64(0)
	// node 0 (sentinel)
	for i := 0; i < 7; i++ {
		putU64(0)
	}
	// node 1 (root)
	for i := 0; i < 7; i++ {
		putU64(0)
	}
	// node 2 with parent_id == 2 (not < own id): invalid
	putU64(2)
	for i := 0; i < 6; i++ {
		putU64(0)
	}

	f, err := os.CreateTemp(t.TempDir(), "taxonomy-*.bin")
	if err != nil {
		t.Fatal(err)
	}
	f.Write(buf.Bytes())
	f.Close()

	if _, err := LoadTaxonomy(f.Name()); err == nil {
		t.Fatal("expected an error loading a taxonomy with parent_id >= own id")
	}
}
