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
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/tchaie/accumulo/pkg/data"
	"github.com/tchaie/accumulo/pkg/metadata"
)

// lookupRetryInterval is the delay between attempts when a lookup with
// retry set found no location. The caller's context bounds the loop.
const lookupRetryInterval = 100 * time.Millisecond

// CachingTabletLocator is the per-table locator. It holds the ordered cache
// of discovered tablet locations and resolves misses recursively through
// the parent metadata locator.
//
// Reads take the read lock; structural mutations (overlap removal,
// insertion, draining deferred invalidations) hold the write lock. A miss
// releases the read lock, takes the write lock and rechecks the cache
// before issuing the metadata lookup; duplicate lookups are idempotent.
type CachingTabletLocator struct {
	tableID     data.TableID
	parent      TabletLocator
	obtainer    LocationObtainer
	lockChecker LockChecker
	logger      *zap.Logger
	metrics     *Metrics

	// lastTabletRow is the greatest metadata row any tablet of this table
	// can be entered under.
	lastTabletRow []byte

	mu         sync.RWMutex
	cache      *tabletCache
	badExtents map[data.KeyExtent]struct{}
}

var _ TabletLocator = (*CachingTabletLocator)(nil)

// Option configures a CachingTabletLocator.
type Option func(*CachingTabletLocator)

// WithLogger sets the logger; the default discards.
func WithLogger(logger *zap.Logger) Option {
	return func(tl *CachingTabletLocator) { tl.logger = logger }
}

// WithMetrics attaches cache counters.
func WithMetrics(m *Metrics) Option {
	return func(tl *CachingTabletLocator) { tl.metrics = m }
}

// NewCachingTabletLocator builds a locator for tableID that resolves cache
// misses through parent.
func NewCachingTabletLocator(
	tableID data.TableID,
	parent TabletLocator,
	obtainer LocationObtainer,
	lockChecker LockChecker,
	opts ...Option,
) *CachingTabletLocator {
	tl := &CachingTabletLocator{
		tableID:       tableID,
		parent:        parent,
		obtainer:      obtainer,
		lockChecker:   lockChecker,
		logger:        zap.NewNop(),
		lastTabletRow: metadata.MaxMetaRow(tableID),
		cache:         newTabletCache(),
		badExtents:    make(map[data.KeyExtent]struct{}),
	}
	for _, opt := range opts {
		opt(tl)
	}
	return tl
}

// LocateTablet implements TabletLocator.
func (tl *CachingTabletLocator) LocateTablet(
	ctx context.Context, row []byte, skipRow, retry bool,
) (*data.TabletLocation, error) {
	if row == nil {
		return nil, errors.New("cannot locate a nil row")
	}
	lookupRow := row
	if skipRow {
		lookupRow = data.FollowingRow(row)
	}

	for {
		lcs := newLockSession(tl.lockChecker)
		loc, err := tl.locate(ctx, lookupRow, retry, true /* lock */, lcs)
		if err != nil {
			return nil, err
		}
		if retry && loc == nil {
			tl.logger.Debug("tablet location not found, retrying",
				zap.String("table", tl.tableID.String()))
			select {
			case <-ctx.Done():
				return nil, errors.Wrap(ctx.Err(), "aborted during tablet location lookup")
			case <-time.After(lookupRetryInterval):
			}
			continue
		}
		return loc, nil
	}
}

// locate probes the cache and, on a miss, refreshes it from the parent.
// Deferred invalidations are drained before the probe so a stale entry
// queued for eviction is never returned. With lock set the method manages
// the locator's own locking; otherwise the caller must hold the write
// lock.
func (tl *CachingTabletLocator) locate(
	ctx context.Context, row []byte, retry, lock bool, lcs *lockSession,
) (*data.TabletLocation, error) {
	var loc *data.TabletLocation
	if lock {
		if tl.hasBadExtents() {
			tl.mu.Lock()
			err := tl.processInvalidatedLocked(ctx, lcs)
			tl.mu.Unlock()
			if err != nil {
				return nil, err
			}
		}
		tl.mu.RLock()
		loc = lcs.check(tl.locateInCacheLocked(row))
		tl.mu.RUnlock()
	} else {
		if err := tl.processInvalidatedLocked(ctx, lcs); err != nil {
			return nil, err
		}
		loc = lcs.check(tl.locateInCacheLocked(row))
	}
	if loc != nil {
		tl.metrics.hit(tl.tableID)
		return loc, nil
	}
	tl.metrics.miss(tl.tableID)

	if lock {
		tl.mu.Lock()
		defer tl.mu.Unlock()
	}
	return tl.lookupAndCheckLocked(ctx, row, retry, lcs)
}

// lookupAndCheckLocked drains deferred invalidations, rechecks the cache,
// and falls through to the parent lookup. The write lock must be held.
func (tl *CachingTabletLocator) lookupAndCheckLocked(
	ctx context.Context, row []byte, retry bool, lcs *lockSession,
) (*data.TabletLocation, error) {
	if err := tl.processInvalidatedLocked(ctx, lcs); err != nil {
		return nil, err
	}
	if loc := lcs.check(tl.locateInCacheLocked(row)); loc != nil {
		return loc, nil
	}
	return tl.lookupTabletLocationLocked(ctx, row, retry, lcs)
}

// lookupTabletLocationLocked asks the parent for the metadata tablet
// holding this table's entry for row, reads location entries from it, and
// populates the cache. Empty metadata tablets are skipped forward until the
// table's greatest possible metadata row is passed.
func (tl *CachingTabletLocator) lookupTabletLocationLocked(
	ctx context.Context, row []byte, retry bool, lcs *lockSession,
) (*data.TabletLocation, error) {
	metadataRow := metadata.MetaRow(tl.tableID, row)

	ptl, err := tl.parent.LocateTablet(ctx, metadataRow, false, retry)
	if err != nil {
		return nil, err
	}
	if ptl != nil {
		locs, err := tl.obtainer.LookupTablet(ctx, ptl, metadataRow, tl.lastTabletRow, tl.parent)
		if err != nil {
			return nil, err
		}
		for locs != nil && len(locs.Locations) == 0 && len(locs.Locationless) == 0 {
			// The parent tablet holds no entries overlapping the sought
			// row; try the next one.
			er := ptl.Extent.EndRow()
			if er == nil || bytes.Compare(er, tl.lastTabletRow) >= 0 {
				break
			}
			ptl, err = tl.parent.LocateTablet(ctx, er, true, retry)
			if err != nil {
				return nil, err
			}
			if ptl == nil {
				break
			}
			locs, err = tl.obtainer.LookupTablet(ctx, ptl, metadataRow, tl.lastTabletRow, tl.parent)
			if err != nil {
				return nil, err
			}
		}
		if locs == nil {
			return nil, nil
		}

		seen := make(map[string]serverSession, len(locs.Locations))
		for i := range locs.Locations {
			loc := locs.Locations[i]
			key := string(metadata.MetaRowOfExtent(loc.Extent))
			if prev, ok := seen[key]; ok {
				other := serverSession{server: loc.Server, session: loc.Session}
				if prev != other {
					return nil, metadata.InconsistentMetadataError{
						Detail: loc.Extent.String(),
					}
				}
			}
			seen[key] = serverSession{server: loc.Server, session: loc.Session}
		}
		for i := range locs.Locations {
			loc := locs.Locations[i]
			if err := tl.updateCacheLocked(&loc, lcs); err != nil {
				return nil, err
			}
		}
	}

	return lcs.check(tl.locateInCacheLocked(row)), nil
}

// updateCacheLocked inserts a discovered location, clearing anything it
// overlaps first. Locations whose server no longer holds its lock are not
// cached. The write lock must be held.
func (tl *CachingTabletLocator) updateCacheLocked(
	loc *data.TabletLocation, lcs *lockSession,
) error {
	if loc.Extent.TableID() != tl.tableID {
		return errors.AssertionFailedf(
			"locator for table %s got extent %s", tl.tableID, loc.Extent)
	}
	if loc.Server == "" {
		return errors.AssertionFailedf(
			"cannot cache a location without a server: %s", loc.Extent)
	}

	tl.cache.removeOverlapping(loc.Extent)

	if lcs.check(loc) == nil {
		return nil
	}

	tl.cache.add(loc)
	tl.logger.Debug("cached tablet location",
		zap.String("table", tl.tableID.String()),
		zap.Stringer("location", loc))

	if len(tl.badExtents) > 0 {
		for ke := range tl.badExtents {
			if ke.Overlaps(loc.Extent) {
				delete(tl.badExtents, ke)
			}
		}
	}
	return nil
}

// locateInCacheLocked returns the cached entry covering row, or nil when
// the row falls in a hole. Either lock must be held.
func (tl *CachingTabletLocator) locateInCacheLocked(row []byte) *data.TabletLocation {
	loc := tl.cache.ceiling(row)
	if loc == nil {
		return nil
	}
	per := loc.Extent.PrevEndRow()
	if per == nil || bytes.Compare(per, row) < 0 {
		return loc
	}
	return nil
}

// processInvalidatedLocked purges the extents queued for eviction and
// refreshes their replacements in bulk through the parent. The write lock
// must be held. The queue survives a failed refresh.
func (tl *CachingTabletLocator) processInvalidatedLocked(
	ctx context.Context, lcs *lockSession,
) error {
	if len(tl.badExtents) == 0 {
		return nil
	}

	lookups := make([]data.Range, 0, len(tl.badExtents))
	for ke := range tl.badExtents {
		lookups = append(lookups, metadata.MetaRange(ke))
		tl.cache.removeOverlapping(ke)
	}
	lookups = data.MergeOverlappingRanges(lookups)

	binned, _, err := tl.parent.BinRanges(ctx, lookups)
	if err != nil {
		return err
	}

	// Spread the refresh load across the metadata servers.
	servers := make([]string, 0, len(binned))
	for server := range binned {
		servers = append(servers, server)
	}
	rand.Shuffle(len(servers), func(i, j int) {
		servers[i], servers[j] = servers[j], servers[i]
	})

	for _, server := range servers {
		found, err := tl.obtainer.LookupTablets(ctx, server, binned[server], tl.parent)
		if err != nil {
			return err
		}
		for i := range found {
			if err := tl.updateCacheLocked(&found[i], lcs); err != nil {
				return err
			}
		}
	}

	tl.badExtents = make(map[data.KeyExtent]struct{})
	return nil
}

func (tl *CachingTabletLocator) hasBadExtents() bool {
	tl.mu.RLock()
	defer tl.mu.RUnlock()
	return len(tl.badExtents) > 0
}

// BinRanges implements TabletLocator. Ranges are first bound from the cache
// under the read lock; the misses are sorted and resolved under the write
// lock. After the first failed resolution the remaining misses fail fast.
func (tl *CachingTabletLocator) BinRanges(
	ctx context.Context, ranges []data.Range,
) (BinnedRanges, []data.Range, error) {
	binned := make(BinnedRanges)
	lcs := newLockSession(tl.lockChecker)

	if tl.hasBadExtents() {
		tl.mu.Lock()
		err := tl.processInvalidatedLocked(ctx, lcs)
		tl.mu.Unlock()
		if err != nil {
			return nil, nil, err
		}
	}

	tl.mu.RLock()
	failures, err := tl.binRangesLocked(ctx, ranges, binned, true /* useCache */, lcs)
	tl.mu.RUnlock()
	if err != nil {
		return nil, nil, err
	}

	if len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool {
			return failures[i].Compare(failures[j]) < 0
		})
		tl.mu.Lock()
		failures, err = tl.binRangesLocked(ctx, failures, binned, false /* useCache */, lcs)
		tl.mu.Unlock()
		if err != nil {
			return nil, nil, err
		}
	}
	return binned, failures, nil
}

// binRangesLocked bins what it can and returns the rest. With useCache set
// it only reads the cache (read lock held by the caller); otherwise it may
// refresh from the parent (write lock held by the caller).
func (tl *CachingTabletLocator) binRangesLocked(
	ctx context.Context, ranges []data.Range, binned BinnedRanges, useCache bool, lcs *lockSession,
) ([]data.Range, error) {
	var failures []data.Range
	lookupFailed := false

	for _, rng := range ranges {
		if !useCache && ctx.Err() != nil {
			// Out of time: everything not yet resolved is a failure.
			failures = append(failures, rng)
			continue
		}

		startRow := rng.EffectiveStartRow()
		if startRow == nil {
			startRow = []byte{}
		}

		var loc *data.TabletLocation
		var err error
		if useCache {
			loc = lcs.check(tl.locateInCacheLocked(startRow))
		} else if !lookupFailed {
			loc, err = tl.locate(ctx, startRow, false /* retry */, false /* lock */, lcs)
			if err != nil {
				return nil, err
			}
		}
		if loc == nil {
			failures = append(failures, rng)
			if !useCache {
				lookupFailed = true
			}
			continue
		}

		covering := []*data.TabletLocation{loc}
		for loc != nil && loc.Extent.EndRow() != nil && rng.ExtendsPast(loc.Extent.EndRow()) {
			next := data.FollowingRow(loc.Extent.EndRow())
			if useCache {
				loc = lcs.check(tl.locateInCacheLocked(next))
			} else {
				loc, err = tl.locate(ctx, next, false, false, lcs)
				if err != nil {
					return nil, err
				}
			}
			if loc != nil {
				covering = append(covering, loc)
			}
		}
		if loc == nil || !isContiguous(covering) {
			// A hole was observed; never record partial bindings.
			failures = append(failures, rng)
			if !useCache {
				lookupFailed = true
			}
			continue
		}

		for _, cov := range covering {
			addRange(binned, cov.Server, cov.Extent, rng)
		}
	}
	return failures, nil
}

// isContiguous reports whether consecutive tablets chain exactly, with no
// holes or overlaps. Extents read partly from the cache and partly from the
// metadata table may disagree after concurrent merges and splits.
func isContiguous(locs []*data.TabletLocation) bool {
	for i := 1; i < len(locs); i++ {
		if !locs[i].Extent.IsPreviousExtent(locs[i-1].Extent) {
			return false
		}
	}
	return true
}

// BinMutations implements TabletLocator. Like BinRanges, a cache-only pass
// runs under the read lock and the sorted misses are resolved under the
// write lock. Each miss is looked up on its own; a row whose lookup finds
// no location is a failure without affecting the rows after it.
func (tl *CachingTabletLocator) BinMutations(
	ctx context.Context, mutations []*data.Mutation,
) (BinnedMutations, []*data.Mutation, error) {
	binned := make(BinnedMutations)
	var failures []*data.Mutation
	lcs := newLockSession(tl.lockChecker)

	if tl.hasBadExtents() {
		tl.mu.Lock()
		err := tl.processInvalidatedLocked(ctx, lcs)
		tl.mu.Unlock()
		if err != nil {
			return nil, nil, err
		}
	}

	var notInCache []*data.Mutation
	tl.mu.RLock()
	for _, m := range mutations {
		loc := lcs.check(tl.locateInCacheLocked(m.Row()))
		if loc == nil || !addMutation(binned, m, loc, lcs) {
			notInCache = append(notInCache, m)
		}
	}
	tl.mu.RUnlock()

	if len(notInCache) > 0 {
		sort.Slice(notInCache, func(i, j int) bool {
			return bytes.Compare(notInCache[i].Row(), notInCache[j].Row()) < 0
		})

		tl.mu.Lock()
		defer tl.mu.Unlock()

		for _, m := range notInCache {
			if ctx.Err() != nil {
				// Out of time: everything not yet resolved is a failure.
				failures = append(failures, m)
				continue
			}
			loc, err := tl.locate(ctx, m.Row(), false /* retry */, false /* lock */, lcs)
			if err != nil {
				return nil, nil, err
			}
			if loc == nil || !addMutation(binned, m, loc, lcs) {
				failures = append(failures, m)
			}
		}
	}
	return binned, failures, nil
}

// addMutation appends m to the group for loc's server, creating the group
// on first use. The lock is verified once per server per operation. Returns
// false when the server's lock is gone or the server shows up with a
// different session.
func addMutation(
	binned BinnedMutations, m *data.Mutation, loc *data.TabletLocation, lcs *lockSession,
) bool {
	tsm := binned[loc.Server]
	if tsm == nil {
		if lcs.check(loc) == nil {
			return false
		}
		tsm = NewTabletServerMutations(loc.Session)
		binned[loc.Server] = tsm
	}
	if tsm.Session() != loc.Session {
		return false
	}
	tsm.AddMutation(loc.Extent, m)
	return true
}

// InvalidateExtent implements TabletLocator. The extent's entries are
// dropped immediately and the extent is queued so the next access
// re-resolves its replacements in bulk.
func (tl *CachingTabletLocator) InvalidateExtent(extent data.KeyExtent) {
	tl.mu.Lock()
	tl.cache.removeOverlapping(extent)
	tl.badExtents[extent] = struct{}{}
	tl.mu.Unlock()
	tl.metrics.invalidated(tl.tableID)
	tl.logger.Debug("invalidated extent",
		zap.String("table", tl.tableID.String()), zap.Stringer("extent", extent))
}

// InvalidateExtents implements TabletLocator. The extents are queued and
// purged in bulk, under one lock acquisition, on the next access.
func (tl *CachingTabletLocator) InvalidateExtents(extents []data.KeyExtent) {
	tl.mu.Lock()
	for _, ke := range extents {
		tl.badExtents[ke] = struct{}{}
	}
	tl.mu.Unlock()
	tl.metrics.invalidated(tl.tableID)
}

// InvalidateServer implements TabletLocator. Entries hosted by the server
// are dropped immediately and queued for re-resolution; the lock checker's
// memo for the server is dropped as well. Invalidating a server across a
// metadata locator's dependents is the registry's job: dependents
// invalidate their parent from inside their own refresh path, so the
// parent must never call back into them.
func (tl *CachingTabletLocator) InvalidateServer(server string) {
	tl.mu.Lock()
	var doomed []data.KeyExtent
	tl.cache.do(func(loc *data.TabletLocation) bool {
		if loc.Server == server {
			doomed = append(doomed, loc.Extent)
		}
		return true
	})
	for _, ke := range doomed {
		tl.cache.removeOverlapping(ke)
		tl.badExtents[ke] = struct{}{}
	}
	tl.mu.Unlock()

	tl.lockChecker.InvalidateCache(server)
	tl.metrics.invalidated(tl.tableID)
	tl.logger.Debug("invalidated server",
		zap.String("table", tl.tableID.String()),
		zap.String("server", server),
		zap.Int("extents", len(doomed)))
}

// InvalidateAll implements TabletLocator.
func (tl *CachingTabletLocator) InvalidateAll() {
	tl.mu.Lock()
	tl.cache.clear()
	tl.badExtents = make(map[data.KeyExtent]struct{})
	tl.mu.Unlock()
	tl.metrics.invalidated(tl.tableID)
}

// cachedLocations returns a snapshot of the cache in end-row order.
func (tl *CachingTabletLocator) cachedLocations() []*data.TabletLocation {
	tl.mu.RLock()
	defer tl.mu.RUnlock()
	out := make([]*data.TabletLocation, 0, tl.cache.len())
	tl.cache.do(func(loc *data.TabletLocation) bool {
		out = append(out, loc)
		return true
	})
	return out
}
