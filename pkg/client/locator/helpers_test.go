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
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tchaie/accumulo/pkg/data"
	"github.com/tchaie/accumulo/pkg/metadata"
)

var (
	rte = metadata.RootExtent
	mte = data.NewKeyExtent(metadata.MetadataTableID, nil, nil)
)

func nke(table, er, per string) data.KeyExtent {
	var endRow, prevEndRow []byte
	if er != "" {
		endRow = []byte(er)
	}
	if per != "" {
		prevEndRow = []byte(per)
	}
	return data.NewKeyExtent(data.TableID(table), endRow, prevEndRow)
}

func nr(start string, startIncl bool, end string, endIncl bool) data.Range {
	var s, e []byte
	if start != "" {
		s = []byte(start)
	}
	if end != "" {
		e = []byte(end)
	}
	return data.NewRange(s, startIncl, e, endIncl)
}

func nrr(start, end string) data.Range { return nr(start, true, end, true) }

func rowRange(r string) data.Range { return data.ExactRowRange([]byte(r)) }

func nm(row string, cols ...string) *data.Mutation {
	m := data.NewMutation([]byte(row))
	for _, c := range cols {
		m.Put([]byte("cf1"), []byte(c), []byte("v"))
	}
	return m
}

// tservers is the fake cluster: per-server, per-tablet sorted metadata
// cells.
type tservers struct {
	mu      sync.Mutex
	servers map[string]map[data.KeyExtent][]data.KeyValue
}

func newTServers() *tservers {
	return &tservers{servers: make(map[string]map[data.KeyExtent][]data.KeyValue)}
}

func (ts *tservers) upsert(server string, tablet data.KeyExtent, kv data.KeyValue) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	tablets := ts.servers[server]
	if tablets == nil {
		tablets = make(map[data.KeyExtent][]data.KeyValue)
		ts.servers[server] = tablets
	}
	entries := tablets[tablet]
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].Key.Compare(kv.Key) >= 0
	})
	if i < len(entries) && entries[i].Key.Compare(kv.Key) == 0 {
		entries[i] = kv
	} else {
		entries = append(entries, data.KeyValue{})
		copy(entries[i+1:], entries[i:])
		entries[i] = kv
	}
	tablets[tablet] = entries
}

func (ts *tservers) remove(server string, tablet data.KeyExtent, key data.Key) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	tablets := ts.servers[server]
	if tablets == nil {
		return
	}
	entries := tablets[tablet]
	for i := range entries {
		if entries[i].Key.Compare(key) == 0 {
			tablets[tablet] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

func setLocationSession(ts *tservers, server string, tablet, ke data.KeyExtent, location, session string) {
	metaRow := metadata.MetaRowOfExtent(ke)
	if location != "" {
		ts.upsert(server, tablet, data.KeyValue{
			Key: data.Key{
				Row:       metaRow,
				Family:    metadata.CurrentLocationFamily,
				Qualifier: []byte(session),
			},
			Value: []byte(location),
		})
	}
	ts.upsert(server, tablet, data.KeyValue{
		Key: data.Key{
			Row:       metaRow,
			Family:    metadata.TabletFamily,
			Qualifier: metadata.PrevRowQualifier,
		},
		Value: metadata.EncodePrevEndRow(ke.PrevEndRow()),
	})
}

func setLocation(ts *tservers, server string, tablet, ke data.KeyExtent, location string) {
	setLocationSession(ts, server, tablet, ke, location, "")
}

func clearLocation(ts *tservers, server string, tablet, ke data.KeyExtent, session string) {
	ts.remove(server, tablet, data.Key{
		Row:       metadata.MetaRowOfExtent(ke),
		Family:    metadata.CurrentLocationFamily,
		Qualifier: []byte(session),
	})
}

func createEmptyTablet(ts *tservers, server string, tablet data.KeyExtent) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	tablets := ts.servers[server]
	if tablets == nil {
		tablets = make(map[data.KeyExtent][]data.KeyValue)
		ts.servers[server] = tablets
	}
	if _, ok := tablets[tablet]; !ok {
		tablets[tablet] = []data.KeyValue{}
	}
}

func deleteServer(ts *tservers, server string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	delete(ts.servers, server)
}

func (ts *tservers) tabletEntries(server string, tablet data.KeyExtent) ([]data.KeyValue, bool, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	tablets, ok := ts.servers[server]
	if !ok {
		return nil, false, false
	}
	entries, ok := tablets[tablet]
	if !ok {
		return nil, true, false
	}
	return append([]data.KeyValue(nil), entries...), true, true
}

// testObtainer reads location entries out of the fake cluster the way the
// metadata reader would, invalidating the parent on missing servers or
// tablets.
type testObtainer struct {
	ts *tservers
}

func (o *testObtainer) LookupTablet(
	_ context.Context, loc *data.TabletLocation, row, stopRow []byte, parent TabletLocator,
) (*data.TabletLocations, error) {
	entries, serverOK, tabletOK := o.ts.tabletEntries(loc.Server, loc.Extent)
	if !serverOK {
		parent.InvalidateServer(loc.Server)
		return nil, nil
	}
	if !tabletOK {
		parent.InvalidateExtent(loc.Extent)
		return nil, nil
	}

	var picked []data.KeyValue
	for _, kv := range entries {
		if bytes.Compare(kv.Key.Row, row) >= 0 && bytes.Compare(kv.Key.Row, stopRow) <= 0 {
			picked = append(picked, kv)
		}
	}
	locs, err := metadata.ParseLocationEntries(picked)
	if err != nil {
		return nil, err
	}
	return &locs, nil
}

func (o *testObtainer) LookupTablets(
	_ context.Context, server string, tablets map[data.KeyExtent][]data.Range, parent TabletLocator,
) ([]data.TabletLocation, error) {
	o.ts.mu.Lock()
	_, serverOK := o.ts.servers[server]
	o.ts.mu.Unlock()
	if !serverOK {
		parent.InvalidateServer(server)
		return nil, nil
	}

	var picked []data.KeyValue
	var failures []data.KeyExtent
	for ke, ranges := range tablets {
		entries, _, tabletOK := o.ts.tabletEntries(server, ke)
		if !tabletOK {
			failures = append(failures, ke)
			continue
		}
		for _, kv := range entries {
			for _, r := range ranges {
				if r.ContainsRow(kv.Key.Row) {
					picked = append(picked, kv)
					break
				}
			}
		}
	}
	if len(failures) > 0 {
		parent.InvalidateExtents(failures)
	}

	sort.Slice(picked, func(i, j int) bool {
		return picked[i].Key.Compare(picked[j].Key) < 0
	})
	locs, err := metadata.ParseLocationEntries(picked)
	if err != nil {
		return nil, err
	}
	return locs.Locations, nil
}

// yesLockChecker holds every lock.
type yesLockChecker struct{}

func (yesLockChecker) IsLockHeld(string, string) bool { return true }
func (yesLockChecker) InvalidateCache(string)         {}

// setLockChecker holds exactly the server:session pairs in the set.
type setLockChecker struct {
	mu     sync.Mutex
	active map[string]bool
}

func newSetLockChecker() *setLockChecker {
	return &setLockChecker{active: make(map[string]bool)}
}

func (c *setLockChecker) add(server, session string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active[server+":"+session] = true
}

func (c *setLockChecker) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = make(map[string]bool)
}

func (c *setLockChecker) remove(server, session string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, server+":"+session)
}

func (c *setLockChecker) IsLockHeld(server, session string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active[server+":"+session]
}

func (c *setLockChecker) InvalidateCache(string) {}

// fakeRootReader serves a fixed root location, adjustable mid-test.
type fakeRootReader struct {
	mu     sync.Mutex
	server string
}

func (r *fakeRootReader) RootTabletLocation(context.Context) (*data.TabletLocation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.server == "" {
		return nil, nil
	}
	return &data.TabletLocation{Extent: rte, Server: r.server, Session: "1"}, nil
}

func (r *fakeRootReader) InvalidateCache(string) {}

func (r *fakeRootReader) setServer(server string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.server = server
}

// harness wires a root, metadata and user locator over the fake cluster.
type harness struct {
	ts         *tservers
	rootReader *fakeRootReader
	root       *RootTabletLocator
	meta       *CachingTabletLocator
	table      *CachingTabletLocator
}

type assignment struct {
	ke  data.KeyExtent
	loc string
}

func newHarness(
	ts *tservers, rootLoc, metaLoc string, table data.TableID,
	lc LockChecker, assignments ...assignment,
) *harness {
	obtainer := &testObtainer{ts: ts}
	rootReader := &fakeRootReader{server: rootLoc}
	root := NewRootTabletLocator(rootReader, yesLockChecker{}, nil)
	meta := NewCachingTabletLocator(metadata.MetadataTableID, root, obtainer, yesLockChecker{})
	tab := NewCachingTabletLocator(table, meta, obtainer, lc)

	setLocation(ts, rootLoc, rte, mte, metaLoc)
	for _, a := range assignments {
		setLocation(ts, metaLoc, mte, a.ke, a.loc)
	}
	return &harness{ts: ts, rootReader: rootReader, root: root, meta: meta, table: tab}
}

func createLocators(table data.TableID, assignments ...assignment) *harness {
	return newHarness(newTServers(), "tserver1", "tserver2", table, yesLockChecker{}, assignments...)
}

func locateTest(
	t *testing.T, tl TabletLocator, rowStr string, skipRow bool, expected data.KeyExtent, server string,
) {
	t.Helper()
	loc, err := tl.LocateTablet(context.Background(), []byte(rowStr), skipRow, false)
	require.NoError(t, err)
	if server == "" {
		require.Nil(t, loc, "expected no location for row %q, got %v", rowStr, loc)
		return
	}
	require.NotNil(t, loc, "expected %s@%s for row %q", expected, server, rowStr)
	require.Equal(t, server, loc.Server)
	require.Equal(t, expected, loc.Extent)
}

// binning is one expected (server, extent, ranges) entry of BinRanges
// output; expectBinned assembles them.
type binning struct {
	server string
	ke     data.KeyExtent
	ranges []data.Range
}

func expectBinned(bins ...binning) BinnedRanges {
	out := make(BinnedRanges)
	for _, b := range bins {
		extents := out[b.server]
		if extents == nil {
			extents = make(map[data.KeyExtent][]data.Range)
			out[b.server] = extents
		}
		extents[b.ke] = append(extents[b.ke], b.ranges...)
	}
	return out
}

func runBinRangesTest(
	t *testing.T, tl TabletLocator, ranges []data.Range,
	expected BinnedRanges, expectedFailures ...data.Range,
) {
	t.Helper()
	binned, failures, err := tl.BinRanges(context.Background(), ranges)
	require.NoError(t, err)
	require.Equal(t, expected, binned)
	require.ElementsMatch(t, expectedFailures, failures)
}

// mutationBinning is (row, server, extent): the row is expected to be bound
// for the extent on the server.
type mutationBinning struct {
	row    string
	server string
	ke     data.KeyExtent
}

func runBinMutationsTest(
	t *testing.T, tl TabletLocator, mutations []*data.Mutation,
	expected []mutationBinning, expectedFailures ...string,
) {
	t.Helper()
	binned, failures, err := tl.BinMutations(context.Background(), mutations)
	require.NoError(t, err)

	want := make(map[string]map[data.KeyExtent][]string)
	for _, e := range expected {
		extents := want[e.server]
		if extents == nil {
			extents = make(map[data.KeyExtent][]string)
			want[e.server] = extents
		}
		extents[e.ke] = append(extents[e.ke], e.row)
	}
	got := make(map[string]map[data.KeyExtent][]string)
	for server, tsm := range binned {
		extents := make(map[data.KeyExtent][]string)
		for ke, muts := range tsm.Mutations() {
			for _, m := range muts {
				extents[ke] = append(extents[ke], string(m.Row()))
			}
		}
		got[server] = extents
	}
	for _, extents := range want {
		for ke := range extents {
			sort.Strings(extents[ke])
		}
	}
	for _, extents := range got {
		for ke := range extents {
			sort.Strings(extents[ke])
		}
	}
	require.Equal(t, want, got)

	var failedRows []string
	for _, m := range failures {
		failedRows = append(failedRows, string(m.Row()))
	}
	require.ElementsMatch(t, expectedFailures, failedRows)
}
