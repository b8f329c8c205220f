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

package data

import (
	"bytes"
	"fmt"
	"sort"
)

// Range is a contiguous span of rows. A nil start row begins before every
// row, a nil end row extends past every row. Inclusivity flags only apply
// to bounded ends.
type Range struct {
	start     []byte
	startIncl bool
	end       []byte
	endIncl   bool
}

// NewRange builds a range with explicit bounds and inclusivity.
func NewRange(start []byte, startIncl bool, end []byte, endIncl bool) Range {
	return Range{
		start:     clone(start),
		startIncl: startIncl,
		end:       clone(end),
		endIncl:   endIncl,
	}
}

// NewRowRange builds a range inclusive on both ends. Nil rows denote
// unbounded ends.
func NewRowRange(start, end []byte) Range {
	return NewRange(start, true, end, true)
}

// ExactRowRange builds a range covering exactly one row.
func ExactRowRange(row []byte) Range {
	return NewRange(row, true, row, true)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

func (r Range) StartRow() []byte { return r.start }

func (r Range) StartInclusive() bool { return r.startIncl }

func (r Range) EndRow() []byte { return r.end }

func (r Range) EndInclusive() bool { return r.endIncl }

// EffectiveStartRow is the first row that may be in the range: the start
// row itself when inclusive, its immediate successor when exclusive, and
// nil when the range is unbounded below.
func (r Range) EffectiveStartRow() []byte {
	if r.start == nil || r.startIncl {
		return r.start
	}
	return FollowingRow(r.start)
}

// ContainsRow reports whether the row falls inside the range.
func (r Range) ContainsRow(row []byte) bool {
	if r.start != nil {
		if c := bytes.Compare(row, r.start); c < 0 || (c == 0 && !r.startIncl) {
			return false
		}
	}
	if r.end != nil {
		if c := bytes.Compare(row, r.end); c > 0 || (c == 0 && !r.endIncl) {
			return false
		}
	}
	return true
}

// ExtendsPast reports whether rows beyond the given tablet end row may
// still fall inside the range. A nil tablet end row never has rows beyond
// it.
func (r Range) ExtendsPast(tabletEndRow []byte) bool {
	if tabletEndRow == nil {
		return false
	}
	if r.end == nil {
		return true
	}
	c := bytes.Compare(r.end, FollowingRow(tabletEndRow))
	if r.endIncl {
		return c >= 0
	}
	return c > 0
}

// Compare orders ranges by effective start row, then end row; unbounded
// ends sort first and last respectively.
func (r Range) Compare(other Range) int {
	if c := compareStarts(r, other); c != 0 {
		return c
	}
	return compareEnds(r, other)
}

func compareStarts(a, b Range) int {
	as, bs := a.EffectiveStartRow(), b.EffectiveStartRow()
	switch {
	case as == nil && bs == nil:
		return 0
	case as == nil:
		return -1
	case bs == nil:
		return 1
	}
	return bytes.Compare(as, bs)
}

func compareEnds(a, b Range) int {
	switch {
	case a.end == nil && b.end == nil:
		return 0
	case a.end == nil:
		return 1
	case b.end == nil:
		return -1
	}
	if c := bytes.Compare(a.end, b.end); c != 0 {
		return c
	}
	switch {
	case a.endIncl == b.endIncl:
		return 0
	case a.endIncl:
		return 1
	}
	return -1
}

// MergeOverlappingRanges coalesces any ranges that share rows, returning a
// sorted, pairwise-disjoint set covering the same rows.
func MergeOverlappingRanges(ranges []Range) []Range {
	if len(ranges) < 2 {
		return ranges
	}
	sorted := append([]Range(nil), ranges...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Compare(sorted[j]) < 0 })

	merged := sorted[:1]
	for _, r := range sorted[1:] {
		cur := &merged[len(merged)-1]
		if rangesOverlap(*cur, r) {
			if compareEnds(*cur, r) < 0 {
				cur.end = r.end
				cur.endIncl = r.endIncl
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// rangesOverlap assumes a's effective start is not after b's.
func rangesOverlap(a, b Range) bool {
	if a.end == nil {
		return true
	}
	bs := b.EffectiveStartRow()
	if bs == nil {
		return true
	}
	c := bytes.Compare(bs, a.end)
	if c < 0 {
		return true
	}
	return c == 0 && a.endIncl
}

func (r Range) String() string {
	lower, upper := "(-inf", "+inf)"
	if r.start != nil {
		b := "("
		if r.startIncl {
			b = "["
		}
		lower = b + string(r.start)
	}
	if r.end != nil {
		b := ")"
		if r.endIncl {
			b = "]"
		}
		upper = string(r.end) + b
	}
	return fmt.Sprintf("%s,%s", lower, upper)
}
