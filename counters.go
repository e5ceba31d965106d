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
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/cespare/xxhash"
)

// hllPrecision fixes the register count at 2^hllPrecision = 1024,
// trading a ~3% standard error for a flat 1KiB-per-taxon footprint.
const hllPrecision = 10
const hllRegisters = 1 << hllPrecision

// DistinctKmerSketch is a HyperLogLog cardinality estimator for the
// distinct minimizers observed for one taxon.
type DistinctKmerSketch struct {
	registers [hllRegisters]uint8
}

// AddKmer hashes the canonical minimizer with cespare/xxhash and folds
// it into the sketch: the top hllPrecision bits select a register, the
// remaining bits' leading-zero count (+1) is kept if it exceeds that
// register's current value.
func (s *DistinctKmerSketch) AddKmer(minimizer uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], minimizer)
	h := xxhash.Sum64(buf[:])

	idx := h >> (64 - hllPrecision)
	rest := h<<hllPrecision | (1 << (hllPrecision - 1)) // keep a 1 so rho can't run past 64
	rho := uint8(bits.LeadingZeros64(rest) + 1)

	if rho > s.registers[idx] {
		s.registers[idx] = rho
	}
}

// Estimate returns the standard HyperLogLog cardinality estimate with
// small- and large-range bias correction.
func (s *DistinctKmerSketch) Estimate() float64 {
	m := float64(hllRegisters)
	alpha := 0.7213 / (1 + 1.079/m)

	sum := 0.0
	zeros := 0
	for _, r := range s.registers {
		sum += 1.0 / math.Pow(2, float64(r))
		if r == 0 {
			zeros++
		}
	}

	estimate := alpha * m * m / sum

	if estimate <= 2.5*m && zeros > 0 {
		return m * math.Log(m/float64(zeros))
	}
	return estimate
}

// TaxonCounters tracks, per taxon, the number of reads called to it and
// a DistinctKmerSketch over the minimizers observed for it. Aggregated
// across reads by the caller, e.g. in a report.
type TaxonCounters struct {
	ReadCount uint64
	Kmers     DistinctKmerSketch
}

// AddKmer records one observed minimizer for this taxon.
func (c *TaxonCounters) AddKmer(minimizer uint64) {
	c.Kmers.AddKmer(minimizer)
}

// IncrementReadCount records one read called to this taxon.
func (c *TaxonCounters) IncrementReadCount() {
	c.ReadCount++
}
