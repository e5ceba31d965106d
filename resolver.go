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
	"math"

	"github.com/twotwotwo/sorts"
)

// RequiredScore computes ⌈confidence_threshold · total_kmers⌉. A
// threshold of 0 always yields 0, which permits any positive score.
func RequiredScore(confidenceThreshold float64, totalKmers int) int {
	return int(math.Ceil(confidenceThreshold * float64(totalKmers)))
}

// sortedTaxa returns the keys of counts in ascending order so resolver
// runs are deterministic despite Go's randomized map iteration, using
// a sort.Interface wired to github.com/twotwotwo/sorts' parallel sort
// for the larger hit maps a long read can produce.
func sortedTaxa(counts map[uint32]uint64) []uint32 {
	taxa := make([]uint32, 0, len(counts))
	for t := range counts {
		taxa = append(taxa, t)
	}
	sorts.Quicksort(uint32Slice(taxa))
	return taxa
}

type uint32Slice []uint32

func (s uint32Slice) Len() int           { return len(s) }
func (s uint32Slice) Less(i, j int) bool { return s[i] < s[j] }
func (s uint32Slice) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }

// ancestorScore sums counts[u] over every observed taxon u that is an
// ancestor of (or equal to) taxon — the root-to-leaf path score phase 1
// uses to pick the initial candidate.
func ancestorScore(tax *Taxonomy, counts map[uint32]uint64, taxa []uint32, taxon uint32) uint64 {
	var score uint64
	for _, u := range taxa {
		if tax.IsAncestorOf(u, taxon) {
			score += counts[u]
		}
	}
	return score
}

// scoreOf sums counts[u] over every observed taxon u that is a
// descendant of (or equal to) taxon — the subtree score phase 2 uses
// while climbing toward the root.
func scoreOf(tax *Taxonomy, counts map[uint32]uint64, taxa []uint32, taxon uint32) uint64 {
	var score uint64
	for _, u := range taxa {
		if tax.IsAncestorOf(taxon, u) {
			score += counts[u]
		}
	}
	return score
}

// ResolveTree runs the two-phase Kraken2 resolution: pick the taxon
// maximizing root-to-leaf path score (ties folded by LCA), then, at
// that taxon and each ancestor in turn, check whether its own subtree
// score meets requiredScore before climbing further.
func ResolveTree(tax *Taxonomy, counts map[uint32]uint64, requiredScore int) uint32 {
	taxa := sortedTaxa(counts)

	var maxTaxon uint32
	var maxScore uint64

	for _, t := range taxa {
		score := ancestorScore(tax, counts, taxa, t)
		if score > maxScore {
			maxScore = score
			maxTaxon = t
		} else if score == maxScore {
			maxTaxon = tax.LCA(maxTaxon, t)
		}
	}

	maxScore = counts[maxTaxon]

	for maxTaxon != 0 && maxScore < uint64(requiredScore) {
		maxScore = scoreOf(tax, counts, taxa, maxTaxon)
		if maxScore >= uint64(requiredScore) {
			break
		}
		maxTaxon = tax.Nodes[maxTaxon].ParentID
	}

	return maxTaxon
}

// ResolveReadResult is the outcome of classifying one read (or pair):
// the call taxon (0 means unclassified) and its classification flag.
type ResolveReadResult struct {
	CallTaxon uint32
	Flag      string // "C" or "U"
}

// Resolve runs the full read call: ResolveTree's two phases, then
// the minimum-hit-groups gate applied after climbing (the Open Question
// resolved in favor of "gate after climb", matching
// original_source/kr2r/src/classify.rs's process_hitgroup). counters,
// if non-nil, has its call taxon's read count incremented on a "C" call.
func Resolve(tax *Taxonomy, counts map[uint32]uint64, requiredScore int, hitGroups int, minimumHitGroups int, counters map[uint32]*TaxonCounters) ResolveReadResult {
	call := ResolveTree(tax, counts, requiredScore)

	if call > 0 && hitGroups < minimumHitGroups {
		call = 0
	}

	if call == 0 {
		return ResolveReadResult{CallTaxon: 0, Flag: "U"}
	}

	if counters != nil {
		c, ok := counters[call]
		if !ok {
			c = &TaxonCounters{}
			counters[call] = c
		}
		c.IncrementReadCount()
	}

	return ResolveReadResult{CallTaxon: call, Flag: "C"}
}
