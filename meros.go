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

import "github.com/pkg/errors"

// BitsPerChar is the number of bits used to encode one residue. Only the
// DNA (2-bit) alphabet is implemented; the field exists so a protein mode
// could plug in 4 bits per the source design without touching the scanner.
const BitsPerChar = 2

// DefaultToggleMask randomizes minimizer ordering so raw lexicographic
// runs in the genome don't bias which l-mer of a window gets picked.
const DefaultToggleMask uint64 = 0xe37e28c4271b5a2d

// DefaultSpacedSeedMask disables spaced-seed masking.
const DefaultSpacedSeedMask uint64 = 0

// CurrentRevcomVersion is the only reverse-complement formula this
// package implements (shift-then-complement-and-mask). Indexes built
// with the older (complement-without-shift) formula must be rejected
// at load with ErrConfigMismatch.
const CurrentRevcomVersion uint8 = 1

// ErrInvalidKmer means k_mer < l_mer or l_mer is out of range.
var ErrInvalidKmer = errors.New("taxoclass: invalid k_mer/l_mer")

// Meros is the scanner configuration, fixed for the lifetime of a run.
type Meros struct {
	KMer           int    // k_mer, length of the minimizer's window-defining k-mer
	LMer           int    // l_mer, length of the window element, <= 31 for DNA
	Mask           uint64 // (1 << (l_mer*BitsPerChar)) - 1
	SpacedSeedMask uint64 // 0 disables
	ToggleMask     uint64 // masked to l_mer width
	MinClearHash   *uint64 // optional hashed-minimizer subsampling threshold
}

// NewMeros builds a Meros, applying the defaults the source uses when
// spacedSeedMask/toggleMask/minClearHash are left zero-valued/nil.
func NewMeros(kMer, lMer int, spacedSeedMask, toggleMask uint64, minClearHash *uint64) (Meros, error) {
	if lMer < 1 || lMer > 31 || kMer < lMer {
		return Meros{}, ErrInvalidKmer
	}

	mask := uint64(1)<<(uint(lMer)*BitsPerChar) - 1

	if toggleMask == 0 {
		toggleMask = DefaultToggleMask
	}
	if spacedSeedMask == 0 {
		spacedSeedMask = DefaultSpacedSeedMask
	}

	return Meros{
		KMer:           kMer,
		LMer:           lMer,
		Mask:           mask,
		SpacedSeedMask: spacedSeedMask,
		ToggleMask:     toggleMask & mask,
		MinClearHash:   minClearHash,
	}, nil
}

// WindowWidth is k_mer - l_mer, the capacity of the scanner's
// minimizer window: each minimizer is the smallest of the current
// candidate l-mer and the WindowWidth candidates before it, the
// k_mer - l_mer + 1 l-mers of one k-mer. A width of 0 (l_mer == k_mer)
// and a width of 1 (k_mer == l_mer + 1) both emit every candidate
// unchanged.
func (m Meros) WindowWidth() int {
	return m.KMer - m.LMer
}
