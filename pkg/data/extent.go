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
)

// rowBound is a row boundary that may be unbounded. The zero value is
// unbounded.
type rowBound struct {
	row     string
	bounded bool
}

func boundOf(row []byte) rowBound {
	if row == nil {
		return rowBound{}
	}
	return rowBound{row: string(row), bounded: true}
}

func (b rowBound) bytes() []byte {
	if !b.bounded {
		return nil
	}
	return []byte(b.row)
}

// KeyExtent identifies a tablet: the half-open row range (prevEndRow, endRow]
// of a table. A tablet owns every row r with prevEndRow < r <= endRow. A nil
// end row means the tablet is unbounded above, a nil prev end row unbounded
// below. KeyExtent is an immutable value type and may be used as a map key.
type KeyExtent struct {
	tableID    TableID
	endRow     rowBound
	prevEndRow rowBound
}

// NewKeyExtent builds an extent. Nil rows denote unbounded ends; the row
// slices are copied.
func NewKeyExtent(table TableID, endRow, prevEndRow []byte) KeyExtent {
	return KeyExtent{
		tableID:    table,
		endRow:     boundOf(endRow),
		prevEndRow: boundOf(prevEndRow),
	}
}

func (ke KeyExtent) TableID() TableID { return ke.tableID }

// EndRow returns the inclusive upper bound, or nil when unbounded.
func (ke KeyExtent) EndRow() []byte { return ke.endRow.bytes() }

// PrevEndRow returns the exclusive lower bound, or nil when unbounded.
func (ke KeyExtent) PrevEndRow() []byte { return ke.prevEndRow.bytes() }

// Contains reports whether the extent's range owns the given row.
func (ke KeyExtent) Contains(row []byte) bool {
	if ke.prevEndRow.bounded && bytes.Compare(row, []byte(ke.prevEndRow.row)) <= 0 {
		return false
	}
	if ke.endRow.bounded && bytes.Compare(row, []byte(ke.endRow.row)) > 0 {
		return false
	}
	return true
}

// Overlaps reports whether the two extents share at least one row.
func (ke KeyExtent) Overlaps(other KeyExtent) bool {
	if ke.tableID != other.tableID {
		return false
	}
	// Disjoint iff one's end row is at or below the other's prev end row.
	if ke.endRow.bounded && other.prevEndRow.bounded &&
		ke.endRow.row <= other.prevEndRow.row {
		return false
	}
	if other.endRow.bounded && ke.prevEndRow.bounded &&
		other.endRow.row <= ke.prevEndRow.row {
		return false
	}
	return true
}

// IsPreviousExtent reports whether prev is the tablet immediately before
// this one: same table, with prev's end row equal to this extent's prev end
// row.
func (ke KeyExtent) IsPreviousExtent(prev KeyExtent) bool {
	if ke.tableID != prev.tableID {
		return false
	}
	if !prev.endRow.bounded || !ke.prevEndRow.bounded {
		return false
	}
	return prev.endRow.row == ke.prevEndRow.row
}

// Compare orders extents by (table, endRow, prevEndRow), treating an
// unbounded end row as after every row and an unbounded prev end row as
// before every row.
func (ke KeyExtent) Compare(other KeyExtent) int {
	if ke.tableID != other.tableID {
		if ke.tableID < other.tableID {
			return -1
		}
		return 1
	}
	if c := compareBounds(ke.endRow, other.endRow, 1); c != 0 {
		return c
	}
	return compareBounds(ke.prevEndRow, other.prevEndRow, -1)
}

// compareBounds compares two row bounds; unboundedSign is +1 when an
// unbounded value sorts after every row, -1 when it sorts before.
func compareBounds(a, b rowBound, unboundedSign int) int {
	switch {
	case !a.bounded && !b.bounded:
		return 0
	case !a.bounded:
		return unboundedSign
	case !b.bounded:
		return -unboundedSign
	case a.row < b.row:
		return -1
	case a.row > b.row:
		return 1
	}
	return 0
}

func (ke KeyExtent) String() string {
	format := func(b rowBound) string {
		if !b.bounded {
			return "<"
		}
		return ";" + b.row
	}
	return fmt.Sprintf("%s%s%s", ke.tableID, format(ke.endRow), format(ke.prevEndRow))
}
