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
	"strconv"
	"strings"

	"github.com/shenwei356/taxoclass/cht"
)

// AccumulateResult is what one or two mates' worth of scanning
// produces: the per-taxon hit counts, the hit-group trace, and the
// total de-duplicated minimizer count.
type AccumulateResult struct {
	Counts     map[uint32]uint64
	Group      HitGroup
	TotalKmers int
}

// Accumulate drives scanner over one or more mate byte slices (one for
// single-end, two for paired-end), looking each de-duplicated minimizer
// up in table and folding hits into counts/HitGroup/counters for a
// read or read pair. scanner is reset between mates so tail k-mers of
// one mate never fuse with the next.
func Accumulate(scanner *Scanner, table *cht.Table, tax *Taxonomy, counters map[uint32]*TaxonCounters, mates ...[]byte) AccumulateResult {
	result := AccumulateResult{Counts: make(map[uint32]uint64)}

	for _, mate := range mates {
		scanner.Reset()
		scanner.SetSequence(mate)

		start := len(result.Group.Rows)
		for {
			minimizer, ok := scanner.NextMinimizer(mate)
			if !ok {
				break
			}
			taxon := table.Lookup(minimizer)
			result.TotalKmers++
			result.Group.Rows = append(result.Group.Rows, Row{KmerID: uint32(len(result.Group.Rows)), Value: taxon})

			if taxon == 0 {
				continue
			}

			result.Counts[taxon]++
			result.Group.HitGroups++
			if counters != nil {
				c, ok := counters[taxon]
				if !ok {
					c = &TaxonCounters{}
					counters[taxon] = c
				}
				c.AddKmer(minimizer)
			}
		}
		result.Group.Ranges = append(result.Group.Ranges, Range{Start: start, End: len(result.Group.Rows)})
	}

	return result
}

// trace renders the taxon each row resolved to as its external taxid,
// the form SpaceDist expects.
func (r AccumulateResult) trace(tax *Taxonomy) []uint64 {
	out := make([]uint64, len(r.Group.Rows))
	for i, row := range r.Group.Rows {
		if row.Value == 0 || int(row.Value) >= len(tax.Nodes) {
			continue
		}
		out[i] = tax.Nodes[row.Value].ExternalID
	}
	return out
}

// ClassifiedLine assembles one output line in the Kraken2-compatible
// classify report format:
// flag \t read_id \t external_taxid \t length(s) \t positional_trace.
type ClassifiedLine struct {
	Flag            string
	ReadID          string
	ExternalTaxID   string
	Lengths         []int
	PositionalTrace string
}

// String renders the fixed tab-separated field order.
func (l ClassifiedLine) String() string {
	lengths := make([]string, len(l.Lengths))
	for i, n := range l.Lengths {
		lengths[i] = strconv.Itoa(n)
	}
	return strings.Join([]string{
		l.Flag,
		l.ReadID,
		l.ExternalTaxID,
		strings.Join(lengths, "|"),
		l.PositionalTrace,
	}, "\t")
}

// taxonLabel renders a call taxon as either its decimal external ID or,
// if useScientificName is set, the taxonomy node's name.
func taxonLabel(tax *Taxonomy, taxon uint32, useScientificName bool) string {
	if taxon == 0 {
		return "0"
	}
	if useScientificName {
		if name := tax.Name(taxon); name != "" {
			return name
		}
	}
	externalID := uint64(0)
	if int(taxon) < len(tax.Nodes) {
		externalID = tax.Nodes[taxon].ExternalID
	}
	return strconv.FormatUint(externalID, 10)
}

// ClassifyRead classifies a single-end read: readID and seq are the
// record's parsed header (portion before the first space) and sequence
// bytes.
func ClassifyRead(scanner *Scanner, table *cht.Table, tax *Taxonomy, counters map[uint32]*TaxonCounters, confidenceThreshold float64, minimumHitGroups int, useScientificName bool, readID string, seq []byte) ClassifiedLine {
	acc := Accumulate(scanner, table, tax, counters, seq)
	required := RequiredScore(confidenceThreshold, acc.TotalKmers)
	res := Resolve(tax, acc.Counts, required, acc.Group.HitGroups, minimumHitGroups, counters)

	return ClassifiedLine{
		Flag:            res.Flag,
		ReadID:          readID,
		ExternalTaxID:   taxonLabel(tax, res.CallTaxon, useScientificName),
		Lengths:         []int{len(seq)},
		PositionalTrace: SpaceDist(acc.trace(tax), acc.Group.Ranges),
	}
}

// ClassifyPair classifies a paired-end read: each mate is scanned
// independently (see Accumulate) and their hits are pooled before
// resolution.
func ClassifyPair(scanner *Scanner, table *cht.Table, tax *Taxonomy, counters map[uint32]*TaxonCounters, confidenceThreshold float64, minimumHitGroups int, useScientificName bool, readID string, mate1, mate2 []byte) ClassifiedLine {
	acc := Accumulate(scanner, table, tax, counters, mate1, mate2)
	required := RequiredScore(confidenceThreshold, acc.TotalKmers)
	res := Resolve(tax, acc.Counts, required, acc.Group.HitGroups, minimumHitGroups, counters)

	return ClassifiedLine{
		Flag:            res.Flag,
		ReadID:          readID,
		ExternalTaxID:   taxonLabel(tax, res.CallTaxon, useScientificName),
		Lengths:         []int{len(mate1), len(mate2)},
		PositionalTrace: SpaceDist(acc.trace(tax), acc.Group.Ranges),
	}
}
