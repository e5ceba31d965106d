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

func TestSpaceDistSingleMateRuns(t *testing.T) {
	trace := []uint64{9, 9, 9, 0, 5}
	ranges := []Range{{Start: 0, End: 5}}

	got := SpaceDist(trace, ranges)
	want := "9:3 0:1 5:1"
	if got != want {
		t.Errorf("SpaceDist() = %q, want %q", got, want)
	}
}

func TestSpaceDistJoinsMatesWithSeparator(t *testing.T) {
	trace := []uint64{1, 1, 2}
	ranges := []Range{{Start: 0, End: 2}, {Start: 2, End: 3}}

	got := SpaceDist(trace, ranges)
	want := "1:2" + spaceDistSeparator + "2:1"
	if got != want {
		t.Errorf("SpaceDist() = %q, want %q", got, want)
	}
}

func TestSpaceDistEmptyRangeRendersEmptyRun(t *testing.T) {
	trace := []uint64{7}
	ranges := []Range{{Start: 0, End: 0}, {Start: 0, End: 1}}

	got := SpaceDist(trace, ranges)
	want := spaceDistSeparator + "7:1"
	if got != want {
		t.Errorf("SpaceDist() = %q, want %q", got, want)
	}
}
