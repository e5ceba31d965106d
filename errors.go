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

// ErrConfigMismatch covers a DNA run pointed at a protein index (or vice
// versa), a reverse-complement version mismatch between the options
// file and this package's CurrentRevcomVersion, and an odd input-file
// count under paired-end mode. Fatal at startup.
var ErrConfigMismatch = errors.New("taxoclass: configuration mismatch")

// ErrIndexCorrupt covers a magic-number or size mismatch in the compact
// hash table or taxonomy file. Fatal, detected at load.
var ErrIndexCorrupt = errors.New("taxoclass: index or taxonomy file is corrupt")

// ErrMalformedRecord names an unparseable FASTQ/FASTA block. Nothing in
// this module returns it or skips such a record: the taxoclassify
// classify command exits on any error from its record reader.
var ErrMalformedRecord = errors.New("taxoclass: malformed record")

// ErrIO names an input read failure. Nothing in this module returns it
// or counts such failures: the taxoclassify classify command exits on
// any error from its record reader.
var ErrIO = errors.New("taxoclass: input read failure")

// A lookup miss (taxon 0 from the compact hash table) is not an error;
// it's the documented return value for an absent minimizer and is
// never represented as a Go error value.
