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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tchaie/accumulo/pkg/data"
)

func locEntry(metaRow, session, server string) data.KeyValue {
	return data.KeyValue{
		Key: data.Key{
			Row:       []byte(metaRow),
			Family:    CurrentLocationFamily,
			Qualifier: []byte(session),
		},
		Value: []byte(server),
	}
}

func prevRowEntry(metaRow string, prevEndRow []byte) data.KeyValue {
	return data.KeyValue{
		Key: data.Key{
			Row:       []byte(metaRow),
			Family:    TabletFamily,
			Qualifier: PrevRowQualifier,
		},
		Value: EncodePrevEndRow(prevEndRow),
	}
}

func TestParseLocationEntries(t *testing.T) {
	locs, err := ParseLocationEntries([]data.KeyValue{
		locEntry("foo;g", "5", "l1"),
		prevRowEntry("foo;g", nil),
		locEntry("foo<", "6", "l2"),
		prevRowEntry("foo<", []byte("g")),
	})
	require.NoError(t, err)
	require.Empty(t, locs.Locationless)
	require.Equal(t, []data.TabletLocation{
		{Extent: data.NewKeyExtent("foo", []byte("g"), nil), Server: "l1", Session: "5"},
		{Extent: data.NewKeyExtent("foo", nil, []byte("g")), Server: "l2", Session: "6"},
	}, locs.Locations)
}

func TestParseLocationEntriesLocationless(t *testing.T) {
	locs, err := ParseLocationEntries([]data.KeyValue{
		prevRowEntry("foo;g", nil),
		locEntry("foo<", "6", "l2"),
		prevRowEntry("foo<", []byte("g")),
	})
	require.NoError(t, err)
	require.Equal(t,
		[]data.KeyExtent{data.NewKeyExtent("foo", []byte("g"), nil)},
		locs.Locationless)
	require.Len(t, locs.Locations, 1)
}

func TestParseLocationEntriesFutureLocation(t *testing.T) {
	future := data.KeyValue{
		Key: data.Key{
			Row:       []byte("foo<"),
			Family:    FutureLocationFamily,
			Qualifier: []byte("7"),
		},
		Value: []byte("l3"),
	}
	locs, err := ParseLocationEntries([]data.KeyValue{
		future,
		prevRowEntry("foo<", nil),
	})
	require.NoError(t, err)
	require.Equal(t, []data.TabletLocation{
		{Extent: data.NewKeyExtent("foo", nil, nil), Server: "l3", Session: "7"},
	}, locs.Locations)
}

func TestParseLocationEntriesMultipleLocations(t *testing.T) {
	_, err := ParseLocationEntries([]data.KeyValue{
		locEntry("foo<", "I1", "l1"),
		locEntry("foo<", "I2", "l2"),
		prevRowEntry("foo<", nil),
	})
	require.Error(t, err)
	require.True(t, IsInconsistentMetadata(err))
}

func TestParseLocationEntriesIgnoresOtherColumns(t *testing.T) {
	other := data.KeyValue{
		Key: data.Key{
			Row:       []byte("foo<"),
			Family:    []byte("file"),
			Qualifier: []byte("/t/f1.rf"),
		},
		Value: []byte("123,4"),
	}
	locs, err := ParseLocationEntries([]data.KeyValue{
		other,
		locEntry("foo<", "5", "l1"),
		prevRowEntry("foo<", nil),
	})
	require.NoError(t, err)
	require.Len(t, locs.Locations, 1)
}
