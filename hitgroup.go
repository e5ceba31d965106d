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
)

// Row is one emitted, looked-up minimizer: its position in the k-mer
// stream and the taxon ID the lookup resolved to (0 on a miss).
type Row struct {
	KmerID uint32
	Value  uint32
}

// Range covers a span of k-mer positions within a HitGroup's combined
// positional trace; a paired read has one Range per mate.
type Range struct {
	Start, End int
}

// HitGroup accumulates one read's (or read pair's) hits: the rows in
// emission order, the mate ranges they fall in, and the running count
// of emitted minimizers that resolved to a nonzero taxon.
type HitGroup struct {
	Rows      []Row
	Ranges    []Range
	HitGroups int // count of rows with a nonzero taxon
}

// spaceDistSeparator joins the per-mate positional trace runs.
const spaceDistSeparator = " |:| "

// SpaceDist renders a dense positional trace as runs of
// "<taxon>:<count>" separated by spaceDistSeparator between mate
// ranges. trace holds one external taxon ID (0 if
// none) per k-mer position, matching Rows' KmerID positions.
func SpaceDist(trace []uint64, ranges []Range) string {
	var mates []string
	for _, r := range ranges {
		mates = append(mates, renderRun(trace[r.Start:r.End]))
	}
	return strings.Join(mates, spaceDistSeparator)
}

func renderRun(slice []uint64) string {
	if len(slice) == 0 {
		return ""
	}
	var b strings.Builder
	cur := slice[0]
	count := 1
	for _, v := range slice[1:] {
		if v == cur {
			count++
			continue
		}
		writeRun(&b, cur, count)
		cur = v
		count = 1
	}
	writeRun(&b, cur, count)
	return b.String()
}

func writeRun(b *strings.Builder, taxon uint64, count int) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(strconv.FormatUint(taxon, 10))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(count))
}
