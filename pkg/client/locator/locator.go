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

// Package locator resolves which server hosts the tablet owning a row and
// groups client operations by destination server. Locations are read
// through a recursive metadata hierarchy (root tablet, metadata table, user
// table), cached per table in an ordered map keyed by tablet end row,
// validated against the server liveness registry on every return, and
// invalidated on split, merge, migration and server failure.
package locator

import (
	"context"

	"github.com/tchaie/accumulo/pkg/data"
)

// BinnedRanges groups ranges by destination server, then by the tablet each
// server hosts.
type BinnedRanges map[string]map[data.KeyExtent][]data.Range

// BinnedMutations groups mutations by destination server.
type BinnedMutations map[string]*TabletServerMutations

// TabletLocator is the capability surface of a locator: lookups, binning
// and invalidation. Parent locators are referenced through this interface,
// never through a concrete type.
type TabletLocator interface {
	// LocateTablet returns the location of the tablet whose range contains
	// row, or the row's immediate successor when skipRow is set. It returns
	// nil without error when the location cannot be determined and retry is
	// false; with retry set it keeps trying until the context is done.
	LocateTablet(ctx context.Context, row []byte, skipRow, retry bool) (*data.TabletLocation, error)

	// BinRanges groups the ranges by the servers and tablets covering them.
	// Ranges that could not be fully covered are returned as failures and
	// are never partially bound.
	BinRanges(ctx context.Context, ranges []data.Range) (BinnedRanges, []data.Range, error)

	// BinMutations routes each mutation to the tablet owning its row.
	// Mutations whose tablet could not be determined are returned as
	// failures.
	BinMutations(ctx context.Context, mutations []*data.Mutation) (BinnedMutations, []*data.Mutation, error)

	// InvalidateExtent drops any cached entries overlapping the extent.
	InvalidateExtent(extent data.KeyExtent)

	// InvalidateExtents marks the extents for eviction; they are purged and
	// re-resolved in bulk on the next access.
	InvalidateExtents(extents []data.KeyExtent)

	// InvalidateServer drops every cached entry hosted by the server and
	// the liveness memo for it.
	InvalidateServer(server string)

	// InvalidateAll clears the cache.
	InvalidateAll()
}

// LocationObtainer fetches tablet location entries from a parent metadata
// tablet. Implementations own the wire transport and must be safe for
// concurrent use. On transport failure they invalidate the failed parent on
// parentLocator and return a nil result rather than an error; errors are
// reserved for conditions fatal to the calling operation.
type LocationObtainer interface {
	// LookupTablet reads the locations for the single tablet containing
	// row from the parent tablet at loc, bounded by stopRow.
	LookupTablet(ctx context.Context, loc *data.TabletLocation, row, stopRow []byte,
		parentLocator TabletLocator) (*data.TabletLocations, error)

	// LookupTablets resolves batched metadata ranges against one parent
	// server. Extents that could not be read are invalidated on
	// parentLocator.
	LookupTablets(ctx context.Context, server string, tablets map[data.KeyExtent][]data.Range,
		parentLocator TabletLocator) ([]data.TabletLocation, error)
}

// LockChecker answers whether a server still holds the liveness session a
// cached location was minted under. Implementations are process-wide and
// must be safe for concurrent use.
type LockChecker interface {
	IsLockHeld(server, session string) bool

	// InvalidateCache drops any memo held for the server.
	InvalidateCache(server string)
}

// RootLocationReader reads the root tablet's current location from the
// liveness registry.
type RootLocationReader interface {
	// RootTabletLocation returns nil when the registry holds no live
	// location.
	RootTabletLocation(ctx context.Context) (*data.TabletLocation, error)

	// InvalidateCache forces the next read involving the server to go back
	// to the registry.
	InvalidateCache(server string)
}

// TabletServerMutations groups the mutations bound for one server by
// extent, preserving insertion order per extent. All mutations in the group
// were validated against a single lock session.
type TabletServerMutations struct {
	session   string
	mutations map[data.KeyExtent][]*data.Mutation
}

// NewTabletServerMutations starts a group for a server holding the given
// lock session.
func NewTabletServerMutations(session string) *TabletServerMutations {
	return &TabletServerMutations{
		session:   session,
		mutations: make(map[data.KeyExtent][]*data.Mutation),
	}
}

func (t *TabletServerMutations) Session() string { return t.session }

// AddMutation appends a mutation bound for the given tablet.
func (t *TabletServerMutations) AddMutation(ke data.KeyExtent, m *data.Mutation) {
	t.mutations[ke] = append(t.mutations[ke], m)
}

// Mutations returns the grouped mutations, keyed by extent.
func (t *TabletServerMutations) Mutations() map[data.KeyExtent][]*data.Mutation {
	return t.mutations
}

// addRange records that the range is (partly) covered by the given tablet.
func addRange(binned BinnedRanges, server string, ke data.KeyExtent, r data.Range) {
	extents := binned[server]
	if extents == nil {
		extents = make(map[data.KeyExtent][]data.Range)
		binned[server] = extents
	}
	extents[ke] = append(extents[ke], r)
}
