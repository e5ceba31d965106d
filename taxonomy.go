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
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shenwei356/breader"
)

// TaxonomyMagic is the 8-byte magic number at the start of a taxonomy file.
var TaxonomyMagic = [8]byte{'t', 'a', 'x', 'o', 'n', 'o', 'm', 'y'}

const taxonomyHeaderLen = 8 + 8 + 8 + 8 // magic + node_count + name_data_len + rank_data_len
const taxonomyNodeLen = 8 * 7           // seven u64 fields per on-disk node record

// TaxonomyNode is one node of the loaded taxonomy tree. Node 0 is the
// reserved "unclassified" sentinel; node 1 is the root.
type TaxonomyNode struct {
	ParentID     uint32
	FirstChildID uint32
	ChildCount   uint32
	NameOffset   uint64
	RankOffset   uint64
	ExternalID   uint64
	GodparentID  uint32
}

// Taxonomy is a read-only, immutable tree of nodes shared by all workers.
type Taxonomy struct {
	Nodes []TaxonomyNode
	depth []uint32

	nameArena []byte
	rankArena []byte

	cacheLCA bool
	lcaCache map[uint64]uint32
}

// LoadTaxonomy parses the binary taxonomy file:
// a header naming node_count and the two arena lengths, followed by
// node_count fixed-width node records, followed by the name and rank
// UTF-8 arenas back to back.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "taxoclass: open %s", path)
	}
	defer f.Close()

	var hdr [taxonomyHeaderLen]byte
	if _, err = io.ReadFull(f, hdr[:]); err != nil {
		return nil, errors.Wrapf(ErrIndexCorrupt, "taxonomy header of %s: %s", path, err)
	}

	var magic [8]byte
	copy(magic[:], hdr[:8])
	if magic != TaxonomyMagic {
		return nil, errors.Wrapf(ErrIndexCorrupt, "%s: bad magic", path)
	}

	nodeCount := binary.LittleEndian.Uint64(hdr[8:16])
	nameLen := binary.LittleEndian.Uint64(hdr[16:24])
	rankLen := binary.LittleEndian.Uint64(hdr[24:32])

	nodes := make([]TaxonomyNode, nodeCount)
	rec := make([]byte, taxonomyNodeLen)
	for i := range nodes {
		if _, err = io.ReadFull(f, rec); err != nil {
			return nil, errors.Wrapf(ErrIndexCorrupt, "%s: truncated node record %d: %s", path, i, err)
		}
		n := TaxonomyNode{
			ParentID:     uint32(binary.LittleEndian.Uint64(rec[0:8])),
			FirstChildID: uint32(binary.LittleEndian.Uint64(rec[8:16])),
			ChildCount:   uint32(binary.LittleEndian.Uint64(rec[16:24])),
			NameOffset:   binary.LittleEndian.Uint64(rec[24:32]),
			RankOffset:   binary.LittleEndian.Uint64(rec[32:40]),
			ExternalID:   binary.LittleEndian.Uint64(rec[40:48]),
			GodparentID:  uint32(binary.LittleEndian.Uint64(rec[48:56])),
		}
		if i >= 2 && uint64(n.ParentID) >= uint64(i) {
			return nil, errors.Wrapf(ErrIndexCorrupt, "%s: node %d parent_id %d is not < own id", path, i, n.ParentID)
		}
		nodes[i] = n
	}

	nameArena := make([]byte, nameLen)
	if _, err = io.ReadFull(f, nameArena); err != nil {
		return nil, errors.Wrapf(ErrIndexCorrupt, "%s: truncated name arena: %s", path, err)
	}
	rankArena := make([]byte, rankLen)
	if _, err = io.ReadFull(f, rankArena); err != nil {
		return nil, errors.Wrapf(ErrIndexCorrupt, "%s: truncated rank arena: %s", path, err)
	}

	t := &Taxonomy{Nodes: nodes, nameArena: nameArena, rankArena: rankArena}
	t.computeDepths()
	return t, nil
}

// LoadTaxonomyFromNCBI streams an NCBI nodes.dmp-style tab/pipe
// delimited file (child id in column 1, parent id in column 3, the
// ftp.ncbi.nih.gov taxdump layout) through github.com/shenwei356/breader
// and builds the same node array and depth cache a binary-format
// Taxonomy would have. External IDs equal the NCBI taxid itself;
// name/rank arenas are empty since nodes.dmp carries names in a
// separate file this loader doesn't read.
func LoadTaxonomyFromNCBI(file string) (*Taxonomy, error) {
	type taxon struct {
		Taxid  uint32
		Parent uint32
	}

	parseFunc := func(line string) (interface{}, bool, error) {
		items := strings.Split(line, "\t")
		if len(items) < 5 {
			return nil, false, nil
		}
		// nodes.dmp fields are pipe-delimited with surrounding tabs:
		// "taxid\t|\tparent\t|\t...". Column 1 is taxid, column 3 is parent.
		child, e := strconv.Atoi(strings.TrimSpace(items[0]))
		if e != nil {
			return nil, false, e
		}
		parent, e := strconv.Atoi(strings.TrimSpace(items[2]))
		if e != nil {
			return nil, false, e
		}
		return taxon{Taxid: uint32(child), Parent: uint32(parent)}, true, nil
	}

	reader, err := breader.NewBufferedReader(file, 8, 100, parseFunc)
	if err != nil {
		return nil, errors.Wrapf(err, "taxoclass: reading %s", file)
	}

	byTaxid := make(map[uint32]uint32, 1024) // taxid -> parent taxid
	var maxTaxid uint32
	var root uint32

	for chunk := range reader.Ch {
		if chunk.Err != nil {
			return nil, errors.Wrapf(chunk.Err, "taxoclass: parsing %s", file)
		}
		for _, data := range chunk.Data {
			tax := data.(taxon)
			byTaxid[tax.Taxid] = tax.Parent
			if tax.Taxid == tax.Parent {
				root = tax.Taxid
			}
			if tax.Taxid > maxTaxid {
				maxTaxid = tax.Taxid
			}
		}
	}

	// Internal node ids are NCBI taxids directly; node 0 stays the
	// sentinel since NCBI taxids start at 1 (root), matching the on-disk
	// "node 1 is root" convention already.
	nodes := make([]TaxonomyNode, maxTaxid+1)
	for taxid, parent := range byTaxid {
		p := parent
		if taxid == root {
			p = 0
		}
		nodes[taxid] = TaxonomyNode{ParentID: p, ExternalID: uint64(taxid)}
	}

	// NCBI taxids are not in parent-before-child order, so each depth is
	// counted by walking that node's parents up to the root.
	t := &Taxonomy{Nodes: nodes, depth: make([]uint32, len(nodes))}
	for id := range nodes {
		var d uint32
		for p := nodes[id].ParentID; p != 0; p = nodes[p].ParentID {
			d++
		}
		t.depth[id] = d
	}
	return t, nil
}

func (t *Taxonomy) computeDepths() {
	t.depth = make([]uint32, len(t.Nodes))
	if len(t.Nodes) == 0 {
		return
	}
	// Node 0 (sentinel) and node 1 (root) are both depth 0; every other
	// node's depth is its parent's depth + 1. Nodes are stored in
	// parent-before-child order (validated at Load), so a single
	// forward pass suffices.
	for id := 2; id < len(t.Nodes); id++ {
		t.depth[id] = t.depth[t.Nodes[id].ParentID] + 1
	}
}

// CacheLCA enables memoization of LCA query results.
func (t *Taxonomy) CacheLCA() {
	t.cacheLCA = true
	if t.lcaCache == nil {
		t.lcaCache = make(map[uint64]uint32, 1024)
	}
}

// Name returns the UTF-8 name stored at a node's NameOffset, up to the
// next NUL byte (or end of arena).
func (t *Taxonomy) Name(id uint32) string {
	if int(id) >= len(t.Nodes) {
		return ""
	}
	return readArenaString(t.nameArena, t.Nodes[id].NameOffset)
}

func readArenaString(arena []byte, offset uint64) string {
	if offset >= uint64(len(arena)) {
		return ""
	}
	end := offset
	for end < uint64(len(arena)) && arena[end] != 0 {
		end++
	}
	return string(arena[offset:end])
}

// IsAncestorOf reports whether a is an ancestor of b (or a == b),
// walking parents from b using the depth cache to fast-reject and to
// stop ascending exactly at a's depth.
func (t *Taxonomy) IsAncestorOf(a, b uint32) bool {
	if a == 0 || b == 0 {
		return false
	}
	if int(a) >= len(t.Nodes) || int(b) >= len(t.Nodes) {
		return false
	}
	if t.depth[b] < t.depth[a] {
		return false
	}
	for t.depth[b] > t.depth[a] {
		b = t.Nodes[b].ParentID
	}
	return b == a
}

// LCA returns the lowest common ancestor of a and b.
func (t *Taxonomy) LCA(a, b uint32) uint32 {
	if a == 0 {
		return b
	}
	if b == 0 {
		return a
	}
	if a == b {
		return a
	}
	if int(a) >= len(t.Nodes) || int(b) >= len(t.Nodes) {
		return 0
	}

	var key uint64
	if t.cacheLCA {
		key = pack2uint32(a, b)
		if v, ok := t.lcaCache[key]; ok {
			return v
		}
	}

	for t.depth[a] > t.depth[b] {
		a = t.Nodes[a].ParentID
	}
	for t.depth[b] > t.depth[a] {
		b = t.Nodes[b].ParentID
	}
	for a != b {
		a = t.Nodes[a].ParentID
		b = t.Nodes[b].ParentID
	}

	if t.cacheLCA {
		t.lcaCache[key] = a
	}
	return a
}

func pack2uint32(a, b uint32) uint64 {
	if a < b {
		return uint64(a)<<32 | uint64(b)
	}
	return uint64(b)<<32 | uint64(a)
}
