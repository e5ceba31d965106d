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
	"io"
	"os"

	"github.com/pkg/errors"
)

// OptionsMagic is the 8-byte magic number at the start of an options file.
var OptionsMagic = [8]byte{'t', 'x', 'o', 'p', 't', 's', '0', '1'}

const optionsRecordLen = 8 + 8 + 8 + 8 + 8 + 1 + 1 + 1 + 8 // magic..min_clear_hash_value

// Options is the on-disk record describing the build-time
// scanner configuration a classify run must reload verbatim.
type Options struct {
	K                 int
	L                 int
	SpacedSeedMask    uint64
	ToggleMask        uint64
	DnaDB             bool
	RevcomVersion     uint8
	MinClearHashValue *uint64
}

// LoadOptions parses an options file and validates it against this
// package's capabilities: a protein (non-DNA) build, or a build tagged
// with a reverse-complement version other than CurrentRevcomVersion,
// is rejected with ErrConfigMismatch rather than silently mishandled.
func LoadOptions(path string) (*Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "taxoclass: open %s", path)
	}
	defer f.Close()

	buf := make([]byte, optionsRecordLen)
	if _, err = io.ReadFull(f, buf); err != nil {
		return nil, errors.Wrapf(ErrIndexCorrupt, "%s: truncated options record: %s", path, err)
	}

	var magic [8]byte
	copy(magic[:], buf[:8])
	if magic != OptionsMagic {
		return nil, errors.Wrapf(ErrIndexCorrupt, "%s: bad magic", path)
	}

	opts := &Options{
		K:              int(binary.LittleEndian.Uint64(buf[8:16])),
		L:              int(binary.LittleEndian.Uint64(buf[16:24])),
		SpacedSeedMask: binary.LittleEndian.Uint64(buf[24:32]),
		ToggleMask:     binary.LittleEndian.Uint64(buf[32:40]),
		DnaDB:          buf[40] != 0,
		RevcomVersion:  buf[41],
	}

	if buf[42] != 0 {
		v := binary.LittleEndian.Uint64(buf[43:51])
		opts.MinClearHashValue = &v
	}

	if !opts.DnaDB {
		return nil, errors.Wrapf(ErrConfigMismatch, "%s: protein builds are not supported by this classifier", path)
	}
	if opts.RevcomVersion != CurrentRevcomVersion {
		return nil, errors.Wrapf(ErrConfigMismatch, "%s: revcom_version %d, this build only supports %d", path, opts.RevcomVersion, CurrentRevcomVersion)
	}

	return opts, nil
}

// Meros builds the scanner configuration this Options record describes.
func (o *Options) Meros() (Meros, error) {
	return NewMeros(o.K, o.L, o.SpacedSeedMask, o.ToggleMask, o.MinClearHashValue)
}

// WriteOptions writes an options record, for tests and any external
// index-building tool that wants to emit a file this package can load.
func WriteOptions(w io.Writer, o *Options) error {
	buf := make([]byte, optionsRecordLen)
	copy(buf[:8], OptionsMagic[:])
	binary.LittleEndian.PutUint64(buf[8:16], uint64(o.K))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(o.L))
	binary.LittleEndian.PutUint64(buf[24:32], o.SpacedSeedMask)
	binary.LittleEndian.PutUint64(buf[32:40], o.ToggleMask)
	if o.DnaDB {
		buf[40] = 1
	}
	buf[41] = o.RevcomVersion
	if o.MinClearHashValue != nil {
		buf[42] = 1
		binary.LittleEndian.PutUint64(buf[43:51], *o.MinClearHashValue)
	}
	_, err := w.Write(buf)
	return err
}
