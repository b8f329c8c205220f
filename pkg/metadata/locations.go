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

package metadata

import (
	"bytes"

	"github.com/cockroachdb/errors"

	"github.com/tchaie/accumulo/pkg/data"
)

// ParseLocationEntries converts row-sorted metadata cells into tablet
// locations. A tablet's entry is complete once its prev-row column is seen;
// a location column (current or future) seen earlier in the same row
// attaches the server and session. Tablets whose entry carries no location
// are reported as locationless. Two location columns in one row fail with
// InconsistentMetadataError.
func ParseLocationEntries(entries []data.KeyValue) (data.TabletLocations, error) {
	var out data.TabletLocations
	var location, session string
	var haveLocation bool
	var lastRow []byte

	for _, e := range entries {
		if lastRow == nil || !bytes.Equal(e.Key.Row, lastRow) {
			haveLocation = false
			lastRow = e.Key.Row
		}

		switch {
		case bytes.Equal(e.Key.Family, CurrentLocationFamily),
			bytes.Equal(e.Key.Family, FutureLocationFamily):
			if haveLocation {
				return data.TabletLocations{},
					InconsistentMetadataError{Detail: string(e.Key.Row)}
			}
			location = string(e.Value)
			session = string(e.Key.Qualifier)
			haveLocation = true

		case bytes.Equal(e.Key.Family, TabletFamily) &&
			bytes.Equal(e.Key.Qualifier, PrevRowQualifier):
			ke, err := extentFromPrevRowEntry(e)
			if err != nil {
				return data.TabletLocations{}, err
			}
			if haveLocation {
				out.Locations = append(out.Locations, data.TabletLocation{
					Extent:  ke,
					Server:  location,
					Session: session,
				})
			} else {
				out.Locationless = append(out.Locationless, ke)
			}
			haveLocation = false
		}
	}
	return out, nil
}

func extentFromPrevRowEntry(e data.KeyValue) (data.KeyExtent, error) {
	table, endRow, err := ParseMetaRow(e.Key.Row)
	if err != nil {
		return data.KeyExtent{}, err
	}
	prevEndRow, err := DecodePrevEndRow(e.Value)
	if err != nil {
		return data.KeyExtent{}, errors.Wrapf(err, "metadata row %q", e.Key.Row)
	}
	return data.NewKeyExtent(table, endRow, prevEndRow), nil
}
