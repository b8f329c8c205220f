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

// Package metadata describes the metadata table schema: the well-known
// table ids, the row encoding that maps a tablet onto its entry in the
// parent metadata tablet, and the parsing of raw metadata cells into
// tablet locations.
package metadata

import (
	"bytes"

	"github.com/cockroachdb/errors"

	"github.com/tchaie/accumulo/pkg/data"
)

// Well-known table ids.
const (
	RootTableID     data.TableID = "+r"
	MetadataTableID data.TableID = "!0"
)

// Metadata row encoding: a tablet with a bounded end row is entered under
// tableID ';' endRow. A tablet unbounded above is entered under tableID '<';
// the sentinel sorts after every ';'-prefixed row of the same table, making
// it the greatest possible row for the table.
const (
	rowSeparator byte = ';'
	lastRowByte  byte = '<'
)

// RootExtent is the single tablet of the root table.
var RootExtent = data.NewKeyExtent(RootTableID, nil, nil)

// Metadata cells. Location columns carry the hosting server address in the
// value and the server's lock session in the qualifier. The prev-row column
// closes out a tablet's metadata entry.
var (
	CurrentLocationFamily = []byte("loc")
	FutureLocationFamily  = []byte("future")
	TabletFamily          = []byte("~tab")
	PrevRowQualifier      = []byte("~pr")
)

// MetaRow encodes the row under which the tablet owning row is looked up in
// the parent metadata tablet.
func MetaRow(table data.TableID, row []byte) []byte {
	out := make([]byte, 0, len(table)+1+len(row))
	out = append(out, table...)
	out = append(out, rowSeparator)
	return append(out, row...)
}

// MaxMetaRow returns the greatest possible metadata row for the table.
func MaxMetaRow(table data.TableID) []byte {
	out := make([]byte, 0, len(table)+1)
	out = append(out, table...)
	return append(out, lastRowByte)
}

// MetaRowOfExtent encodes the extent's own metadata row: MetaRow of the end
// row for bounded tablets, MaxMetaRow otherwise.
func MetaRowOfExtent(ke data.KeyExtent) []byte {
	if er := ke.EndRow(); er != nil {
		return MetaRow(ke.TableID(), er)
	}
	return MaxMetaRow(ke.TableID())
}

// MetaRange returns the span of metadata rows holding entries for tablets
// whose end row lies inside the extent, up to and including the extent's
// own metadata row. A tablet that overlaps the extent but ends beyond its
// end row is not in the span.
func MetaRange(ke data.KeyExtent) data.Range {
	start := MetaRow(ke.TableID(), ke.PrevEndRow())
	return data.NewRange(start, ke.PrevEndRow() == nil, MetaRowOfExtent(ke), true)
}

// ParseMetaRow decodes a metadata row into the table id and end row it
// denotes. A nil end row means the sentinel (unbounded) form.
func ParseMetaRow(row []byte) (data.TableID, []byte, error) {
	if sep := bytes.IndexByte(row, rowSeparator); sep >= 0 {
		return data.TableID(row[:sep]), row[sep+1:], nil
	}
	if len(row) > 0 && row[len(row)-1] == lastRowByte {
		return data.TableID(row[:len(row)-1]), nil, nil
	}
	return "", nil, errors.Newf("invalid metadata row %q", row)
}

// EncodePrevEndRow encodes a prev end row column value: a zero byte for an
// unbounded prev end row, 0x01 followed by the row otherwise.
func EncodePrevEndRow(prevEndRow []byte) []byte {
	if prevEndRow == nil {
		return []byte{0}
	}
	out := make([]byte, 0, len(prevEndRow)+1)
	out = append(out, 1)
	return append(out, prevEndRow...)
}

// DecodePrevEndRow decodes a prev end row column value.
func DecodePrevEndRow(value []byte) ([]byte, error) {
	if len(value) == 0 {
		return nil, errors.New("empty prev end row value")
	}
	switch value[0] {
	case 0:
		return nil, nil
	case 1:
		return append([]byte(nil), value[1:]...), nil
	}
	return nil, errors.Newf("invalid prev end row encoding 0x%02x", value[0])
}

// InconsistentMetadataError indicates the metadata table reported more than
// one live location for the same tablet within a single read. It is fatal
// to the operation that observed it, never to the cache.
type InconsistentMetadataError struct {
	Detail string
}

func (e InconsistentMetadataError) Error() string {
	return "tablet has multiple locations: " + e.Detail
}

// IsInconsistentMetadata reports whether the error marks an inconsistent
// metadata read.
func IsInconsistentMetadata(err error) bool {
	return errors.HasType(err, InconsistentMetadataError{})
}
