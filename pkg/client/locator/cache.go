// Copyright 2026 The Accumulo Go Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package locator

import (
	"bytes"

	"github.com/google/btree"

	"github.com/tchaie/accumulo/pkg/data"
)

// cacheItem keys a tablet location by its end row. Tablets unbounded above
// are stored under a max sentinel that sorts after every real row.
type cacheItem struct {
	endRow []byte
	isMax  bool
	loc    *data.TabletLocation
}

func (a *cacheItem) Less(b btree.Item) bool {
	bi := b.(*cacheItem)
	if a.isMax {
		return false
	}
	if bi.isMax {
		return true
	}
	return bytes.Compare(a.endRow, bi.endRow) < 0
}

// tabletCache is the ordered end-row keyed map of cached tablet locations
// for one table. It is not synchronized; the owning locator serializes
// access.
type tabletCache struct {
	tree *btree.BTree
}

func newTabletCache() *tabletCache {
	return &tabletCache{tree: btree.New(32)}
}

func itemFor(loc *data.TabletLocation) *cacheItem {
	er := loc.Extent.EndRow()
	return &cacheItem{endRow: er, isMax: er == nil, loc: loc}
}

// ceiling returns the entry with the smallest end row at or after row, or
// nil when no such entry exists.
func (c *tabletCache) ceiling(row []byte) *data.TabletLocation {
	var found *data.TabletLocation
	c.tree.AscendGreaterOrEqual(&cacheItem{endRow: row}, func(i btree.Item) bool {
		found = i.(*cacheItem).loc
		return false
	})
	return found
}

// add inserts the location, replacing any entry with the same end row. The
// caller must have removed overlapping entries first.
func (c *tabletCache) add(loc *data.TabletLocation) {
	c.tree.ReplaceOrInsert(itemFor(loc))
}

// removeOverlapping deletes exactly the entries whose extents share rows
// with nke. Scanning starts at the first entry whose end row is at or after
// the successor of nke's prev end row and stops at the first entry whose
// prev end row is at or past nke's end row.
func (c *tabletCache) removeOverlapping(nke data.KeyExtent) {
	var from *cacheItem
	if per := nke.PrevEndRow(); per != nil {
		from = &cacheItem{endRow: data.FollowingRow(per)}
	} else {
		from = &cacheItem{}
	}

	var doomed []*cacheItem
	c.tree.AscendGreaterOrEqual(from, func(i btree.Item) bool {
		item := i.(*cacheItem)
		if stopRemoving(nke, item.loc.Extent) {
			return false
		}
		doomed = append(doomed, item)
		return true
	})
	for _, item := range doomed {
		c.tree.Delete(item)
	}
}

// stopRemoving reports whether ke sits entirely past nke's end row, ending
// an overlap scan.
func stopRemoving(nke, ke data.KeyExtent) bool {
	per, ner := ke.PrevEndRow(), nke.EndRow()
	return per != nil && ner != nil && bytes.Compare(per, ner) >= 0
}

// do visits every entry in end-row order until fn returns false.
func (c *tabletCache) do(fn func(*data.TabletLocation) bool) {
	c.tree.Ascend(func(i btree.Item) bool {
		return fn(i.(*cacheItem).loc)
	})
}

func (c *tabletCache) len() int { return c.tree.Len() }

func (c *tabletCache) clear() { c.tree.Clear(false) }
