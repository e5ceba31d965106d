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

func TestReverseComplementLmerIsInvolution(t *testing.T) {
	for n := 1; n <= 31; n++ {
		max := uint64(1) << uint(2*n)
		step := max/997 + 1 // sample instead of exhaustively walking 4^31
		for x := uint64(0); x < max; x += step {
			got := ReverseComplementLmer(ReverseComplementLmer(x, n), n)
			if got != x {
				t.Fatalf("n=%d x=%#x: revcomp(revcomp(x)) = %#x, want %#x", n, x, got, x)
			}
		}
	}
}

func TestCanonicalLmerIsMinimumOfPair(t *testing.T) {
	for n := 1; n <= 20; n++ {
		max := uint64(1) << uint(2*n)
		step := max/131 + 1
		for x := uint64(0); x < max; x += step {
			canon := CanonicalLmer(x, n)
			rc := ReverseComplementLmer(canon, n)
			if canon > rc {
				t.Fatalf("n=%d x=%#x: canonical %#x > its own revcomp %#x", n, x, canon, rc)
			}
		}
	}
}

// TestReverseComplementLmerAgreesWithBaseAtATime cross-checks the
// scanner's bit-trick reverse complement against RevComp's base-by-base
// formula; both encode the most recently read base in the low bits, so
// they must agree for every k from 1 to 32.
func TestReverseComplementLmerAgreesWithBaseAtATime(t *testing.T) {
	for k := 1; k <= 32; k++ {
		max := uint64(1) << uint(2*k)
		if max > 1<<20 {
			max = 1 << 20 // keep the loop cheap for large k
		}
		step := max/257 + 1
		for x := uint64(0); x < max; x += step {
			got := ReverseComplementLmer(x, k)
			want := RevComp(x, k)
			if got != want {
				t.Fatalf("k=%d x=%#x: ReverseComplementLmer=%#x, RevComp=%#x", k, x, got, want)
			}
		}
	}
}
