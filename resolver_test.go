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

import "testing"

func TestRequiredScoreRoundsUp(t *testing.T) {
	if got := RequiredScore(0.1, 9); got != 1 {
		t.Errorf("RequiredScore(0.1, 9) = %d, want 1", got)
	}
	if got := RequiredScore(0, 100); got != 0 {
		t.Errorf("RequiredScore(0, 100) = %d, want 0", got)
	}
}

func TestResolveTreeClearWinnerWithNoClimb(t *testing.T) {
	// root=1; A=2, B=3 children of 1.
	tax := lcaTieTaxonomy(t)
	counts := map[uint32]uint64{2: 5, 3: 1}

	got := ResolveTree(tax, counts, 1)
	if got != 2 {
		t.Errorf("ResolveTree() = %d, want 2", got)
	}
}

func TestResolveTreeTieFoldsToLCA(t *testing.T) {
	tax := lcaTieTaxonomy(t)
	counts := map[uint32]uint64{2: 3, 3: 3}

	// requiredScore 0 so phase 2 never runs and the call is the phase-1
	// LCA fold itself, even though the LCA has no direct hits of its own.
	got := ResolveTree(tax, counts, 0)
	if got != 1 {
		t.Errorf("ResolveTree() on a tie = %d, want root (1)", got)
	}
}

func TestResolveTreeClimbsToMeetRequiredScore(t *testing.T) {
	// root=1; A=2 child of 1; B=3 child of A; C=4 child of B.
	tax := buildTaxonomy(t,
		[]uint32{0, 0, 1, 2, 3},
		[]uint64{0, 1, 2, 3, 4},
	)
	counts := map[uint32]uint64{3: 5, 4: 1}

	// phase 1 picks C (ancestor-path score 1+5=6: its own hit plus B's),
	// but the climb starts from C's own direct count (1), which doesn't
	// meet a required score of 6. Phase 2 rescores C's subtree (1), still
	// short, so it climbs to B, whose subtree score (5+1=6) meets the
	// threshold, and stops at B without climbing any further to A.
	got := ResolveTree(tax, counts, 6)
	if got != 3 {
		t.Errorf("ResolveTree() = %d, want 3 (stop at B, its own subtree already meets requiredScore)", got)
	}
}

func TestResolveTreeStopsAtLCAWhenItsOwnSubtreeSatisfiesScore(t *testing.T) {
	// root=1; P=2 child of 1; leaf=3, sibling=4 children of P.
	tax := buildTaxonomy(t,
		[]uint32{0, 0, 1, 2, 2},
		[]uint64{0, 1, 2, 3, 4},
	)
	counts := map[uint32]uint64{3: 1, 4: 1}

	// phase 1 ties between the two leaves and folds to their LCA, P,
	// which has no direct hits of its own (maxScore resets to 0).
	// Phase 2 must recompute P's own subtree score (1+1=2) and stop
	// there, since it already meets requiredScore=2 — climbing to root
	// first and rescoring there would also reach 2 and wrongly report
	// the root instead of P.
	got := ResolveTree(tax, counts, 2)
	if got != 2 {
		t.Errorf("ResolveTree() = %d, want 2 (P, not climbing past it to root)", got)
	}
}

func TestResolveTreeUnclassifiedWhenNoTaxonMeetsScore(t *testing.T) {
	tax := lcaTieTaxonomy(t)
	counts := map[uint32]uint64{2: 1}

	got := ResolveTree(tax, counts, 100)
	if got != 0 {
		t.Errorf("ResolveTree() = %d, want 0 (unclassified)", got)
	}
}

func TestResolveAppliesMinimumHitGroupsGate(t *testing.T) {
	tax := lcaTieTaxonomy(t)
	counts := map[uint32]uint64{2: 5}

	res := Resolve(tax, counts, 1, 1, 2, nil)
	if res.CallTaxon != 0 || res.Flag != "U" {
		t.Errorf("Resolve() with too few hit groups = %+v, want unclassified", res)
	}
}

func TestResolveIncrementsCallTaxonReadCount(t *testing.T) {
	tax := lcaTieTaxonomy(t)
	counts := map[uint32]uint64{2: 5}
	counters := make(map[uint32]*TaxonCounters)

	res := Resolve(tax, counts, 1, 1, 1, counters)
	if res.CallTaxon != 2 || res.Flag != "C" {
		t.Fatalf("Resolve() = %+v, want a call to taxon 2", res)
	}
	if counters[2] == nil || counters[2].ReadCount != 1 {
		t.Errorf("counters[2].ReadCount = %+v, want 1", counters[2])
	}
}
