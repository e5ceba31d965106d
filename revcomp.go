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

// ReverseComplementLmer computes the reverse complement of the low 2*n
// bits of kmer by reversing bit-pairs (nucleotides stay intact) and then
// complementing, matching CurrentRevcomVersion. This is the "shift then
// complement-and-mask" formula; the older complement-without-shift
// formula is not implemented (indexes built with it are rejected at
// load time, see ErrConfigMismatch).
func ReverseComplementLmer(kmer uint64, n int) uint64 {
	// Swap consecutive pairs of bits.
	kmer = (kmer>>2)&0x3333333333333333 | (kmer<<2)&0xCCCCCCCCCCCCCCCC
	// Swap consecutive nibbles.
	kmer = (kmer>>4)&0x0F0F0F0F0F0F0F0F | (kmer<<4)&0xF0F0F0F0F0F0F0F0
	// Swap consecutive bytes.
	kmer = (kmer>>8)&0x00FF00FF00FF00FF | (kmer<<8)&0xFF00FF00FF00FF00
	// Swap consecutive pairs of bytes.
	kmer = (kmer>>16)&0x0000FFFF0000FFFF | (kmer<<16)&0xFFFF0000FFFF0000
	// Swap the two halves of the word.
	kmer = (kmer >> 32) | (kmer << 32)

	// Complement, shift to the right length, mask to width.
	return (^kmer >> uint(64-n*2)) & (uint64(1)<<uint(n*2) - 1)
}

// CanonicalLmer returns the smaller of lmer and its reverse complement.
func CanonicalLmer(lmer uint64, n int) uint64 {
	rc := ReverseComplementLmer(lmer, n)
	if lmer < rc {
		return lmer
	}
	return rc
}
