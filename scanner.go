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

import "github.com/shenwei356/taxoclass/cht"

// windowSlot is one entry of the minimizer window's monotonic deque: a
// candidate l-mer and the cursor position it was produced at, so a
// front entry can be evicted once it falls outside the trailing window.
type windowSlot struct {
	pos       int
	candidate uint64
}

// minimizerWindow tracks the minimum candidate l-mer over the trailing
// window of the current candidate plus the capacity candidates before
// it (a capacity of 1 passes every candidate through unchanged) using
// a monotonic deque: back entries larger
// than an incoming candidate can never again be the minimum, so they're
// dropped before the new candidate is appended.
type minimizerWindow struct {
	queue    []windowSlot
	capacity int
	count    int
}

func newMinimizerWindow(capacity int) minimizerWindow {
	return minimizerWindow{capacity: capacity}
}

// next feeds one candidate l-mer in and returns the current window
// minimum once the window has filled, or false while still warming up.
func (w *minimizerWindow) next(candidate uint64) (uint64, bool) {
	if w.capacity == 1 {
		return candidate, true
	}

	for len(w.queue) > 0 && w.queue[len(w.queue)-1].candidate > candidate {
		w.queue = w.queue[:len(w.queue)-1]
	}
	w.queue = append(w.queue, windowSlot{pos: w.count, candidate: candidate})

	if w.count < w.capacity {
		w.count++
		return 0, false
	}
	if len(w.queue) > 0 && w.queue[0].pos < w.count-w.capacity {
		w.queue = w.queue[1:]
	}
	w.count++
	if len(w.queue) == 0 {
		return 0, false
	}
	return w.queue[0].candidate, true
}

func (w *minimizerWindow) clear() {
	w.count = 0
	w.queue = w.queue[:0]
}

// baseCode maps one DNA residue byte to its 2-bit code. Only the four
// unambiguous bases are accepted; everything else (IUPAC ambiguity
// codes, gaps, unexpected bytes) resets the cursor instead of encoding.
func baseCode(c byte) (uint64, bool) {
	switch c {
	case 'A', 'a':
		return 0, true
	case 'C', 'c':
		return 1, true
	case 'G', 'g':
		return 2, true
	case 'T', 't':
		return 3, true
	default:
		return 0, false
	}
}

// cursor accumulates residues into successive l-mers and feeds them
// through a minimizerWindow to find the running window minimum.
type cursor struct {
	pos, end    int
	accumulated int
	capacity    int // l_mer
	value       uint64
	mask        uint64
	window      minimizerWindow
}

func newCursor(m Meros) cursor {
	return cursor{
		capacity: m.LMer,
		mask:     m.Mask,
		window:   newMinimizerWindow(m.WindowWidth()),
	}
}

// slide advances the cursor through seq, returning the next complete
// l-mer once capacity residues have accumulated since the last reset.
// '\n' and '\r' are skipped inline; any other unrecognized byte clears
// the accumulator and the window (an ambiguous base breaks the run of
// k-mers spanning it).
func (c *cursor) slide(seq []byte) (uint64, bool) {
	for c.pos < c.end {
		ch := seq[c.pos]
		if ch == '\n' || ch == '\r' {
			c.pos++
			continue
		}
		code, ok := baseCode(ch)
		c.pos++
		if !ok {
			c.clear()
			continue
		}
		if lmer, emit := c.nextLmer(code); emit {
			return lmer, true
		}
	}
	return 0, false
}

func (c *cursor) nextLmer(code uint64) (uint64, bool) {
	c.value = (c.value<<BitsPerChar | code) & c.mask
	if c.accumulated < c.capacity {
		c.accumulated++
	}
	if c.accumulated >= c.capacity {
		return c.value, true
	}
	return 0, false
}

func (c *cursor) hasNext() bool { return c.pos < c.end }

func (c *cursor) clear() {
	c.accumulated = 0
	c.value = 0
	c.window.clear()
}

// Scanner walks a nucleotide sequence and yields successive minimizers:
// for each trailing window of the WindowWidth+1 l-mers spanning one
// k-mer, the canonical l-mer that is smallest in toggle-masked order.
type Scanner struct {
	meros         Meros
	cursor        cursor
	lastMinimizer uint64
	haveLast      bool
}

// NewScanner builds a Scanner for the given configuration. A Scanner is
// reused across reads via Reset to avoid reallocating its window.
func NewScanner(m Meros) *Scanner {
	s := &Scanner{meros: m}
	s.cursor = newCursor(m)
	return s
}

// Reset clears all accumulated state so the Scanner can be fed a new
// sequence via SetSequence.
func (s *Scanner) Reset() {
	s.cursor.clear()
	s.cursor.pos = 0
	s.cursor.end = 0
	s.lastMinimizer = 0
	s.haveLast = false
}

// SetSequence points the scanner at seq and resets the cursor to its
// start; it does not clear in-flight l-mer or window state, so unless
// the caller calls Reset first a scan can carry over from the previous
// sequence into this one.
func (s *Scanner) SetSequence(seq []byte) {
	s.cursor.pos = 0
	s.cursor.end = len(seq)
}

func (s *Scanner) toCandidateLmer(lmer uint64) uint64 {
	canon := CanonicalLmer(lmer, s.meros.LMer)
	if s.meros.SpacedSeedMask > 0 {
		canon &= s.meros.SpacedSeedMask
	}
	return canon ^ s.meros.ToggleMask
}

func (s *Scanner) nextWindow(seq []byte) (uint64, bool) {
	lmer, ok := s.cursor.slide(seq)
	if !ok {
		return 0, false
	}
	candidate := s.toCandidateLmer(lmer)
	return s.cursor.window.next(candidate)
}

// NextMinimizerInclusive returns every minimizer produced while sliding
// over seq, including immediate repeats (no de-duplication against the
// previous call's result).
func (s *Scanner) NextMinimizerInclusive(seq []byte) (uint64, bool) {
	for s.cursor.hasNext() {
		if minimizer, ok := s.nextWindow(seq); ok {
			return minimizer ^ s.meros.ToggleMask, true
		}
	}
	s.cursor.clear()
	return 0, false
}

// NextMinimizer is NextMinimizerInclusive with consecutive-duplicate
// suppression: a minimizer identical to the immediately preceding one
// (in toggled space, before the final XOR) is skipped.
func (s *Scanner) NextMinimizer(seq []byte) (uint64, bool) {
	for s.cursor.hasNext() {
		minimizer, ok := s.nextWindow(seq)
		if !ok {
			continue
		}
		if s.haveLast && minimizer == s.lastMinimizer {
			continue
		}
		s.lastMinimizer = minimizer
		s.haveLast = true
		return minimizer ^ s.meros.ToggleMask, true
	}
	return 0, false
}

// NextHashedMinimizer repeatedly pulls minimizers via
// NextMinimizerInclusive, hashes each with cht.FMix64, and returns the
// first hash that clears MinClearHash (hash-based subsampling); with no
// MinClearHash configured every hash is returned.
func (s *Scanner) NextHashedMinimizer(seq []byte) (uint64, bool) {
	for {
		minimizer, ok := s.NextMinimizerInclusive(seq)
		if !ok {
			return 0, false
		}
		hashed := cht.FMix64(minimizer)
		if s.meros.MinClearHash == nil || hashed >= *s.meros.MinClearHash {
			return hashed, true
		}
	}
}
