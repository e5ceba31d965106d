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

package cht

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// WriteHeader writes the fixed-width little-endian header: magic,
// capacity, key_bits, value_bits. It is exercised by tests and by any
// external index builder that wants to emit a table this package can
// Load; this package itself only ever reads a table, never builds one.
func WriteHeader(w io.Writer, capacity, keyBits, valueBits uint64) error {
	if keyBits+valueBits != 32 {
		return errors.Errorf("cht: key_bits(%d)+value_bits(%d) must equal 32", keyBits, valueBits)
	}
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:8], capacity)
	binary.LittleEndian.PutUint64(buf[8:16], keyBits)
	binary.LittleEndian.PutUint64(buf[16:24], valueBits)
	_, err := w.Write(buf[:])
	return err
}

// WriteCell writes one 32-bit cell (fingerprint<<value_bits | value).
func WriteCell(w io.Writer, cell uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], cell)
	_, err := w.Write(buf[:])
	return err
}

// PackCell builds a cell word from a fingerprint (top key_bits) and a
// taxon value (bottom value_bits). A zero fingerprint is reserved to
// mean "empty slot"; callers building an index must rewrite any
// collision onto fingerprint 0 to a different nonzero value before
// calling this.
func PackCell(fingerprint uint32, value uint32, valueBits uint64) uint32 {
	return fingerprint<<valueBits | value&(uint32(1)<<valueBits-1)
}
