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
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/tchaie/accumulo/pkg/data"
)

// rootLookupRetryInterval is the delay between registry reads while the
// root tablet has no live location.
const rootLookupRetryInterval = 500 * time.Millisecond

// RootTabletLocator resolves the root tablet. The root is a singleton, so
// there is no ordered cache: every resolution reads the liveness registry
// (through the reader's own cache) and is validated against the lock
// checker before it is returned.
type RootTabletLocator struct {
	reader      RootLocationReader
	lockChecker LockChecker
	logger      *zap.Logger

	// group coalesces concurrent registry reads.
	group singleflight.Group
}

var _ TabletLocator = (*RootTabletLocator)(nil)

// NewRootTabletLocator builds the root locator.
func NewRootTabletLocator(
	reader RootLocationReader, lockChecker LockChecker, logger *zap.Logger,
) *RootTabletLocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RootTabletLocator{reader: reader, lockChecker: lockChecker, logger: logger}
}

// rootLocation reads the registry and validates the location's lock.
func (r *RootTabletLocator) rootLocation(ctx context.Context) (*data.TabletLocation, error) {
	v, err, _ := r.group.Do("root", func() (interface{}, error) {
		return r.reader.RootTabletLocation(ctx)
	})
	if err != nil {
		return nil, err
	}
	loc, _ := v.(*data.TabletLocation)
	if loc == nil {
		return nil, nil
	}
	if !r.lockChecker.IsLockHeld(loc.Server, loc.Session) {
		r.logger.Debug("root tablet server lost its lock", zap.Stringer("location", loc))
		return nil, nil
	}
	return loc, nil
}

// LocateTablet implements TabletLocator. Every row maps to the single root
// tablet.
func (r *RootTabletLocator) LocateTablet(
	ctx context.Context, row []byte, skipRow, retry bool,
) (*data.TabletLocation, error) {
	loc, err := r.rootLocation(ctx)
	for err == nil && retry && loc == nil {
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "aborted waiting for the root tablet location")
		case <-time.After(rootLookupRetryInterval):
		}
		loc, err = r.rootLocation(ctx)
	}
	return loc, err
}

// BinRanges implements TabletLocator: every range binds to the root tablet,
// or everything fails when it has no live location.
func (r *RootTabletLocator) BinRanges(
	ctx context.Context, ranges []data.Range,
) (BinnedRanges, []data.Range, error) {
	loc, err := r.rootLocation(ctx)
	if err != nil {
		return nil, nil, err
	}
	if loc == nil {
		return make(BinnedRanges), append([]data.Range(nil), ranges...), nil
	}
	binned := make(BinnedRanges)
	for _, rng := range ranges {
		addRange(binned, loc.Server, loc.Extent, rng)
	}
	return binned, nil, nil
}

// BinMutations implements TabletLocator.
func (r *RootTabletLocator) BinMutations(
	ctx context.Context, mutations []*data.Mutation,
) (BinnedMutations, []*data.Mutation, error) {
	loc, err := r.rootLocation(ctx)
	if err != nil {
		return nil, nil, err
	}
	if loc == nil {
		return make(BinnedMutations), append([]*data.Mutation(nil), mutations...), nil
	}
	tsm := NewTabletServerMutations(loc.Session)
	for _, m := range mutations {
		tsm.AddMutation(loc.Extent, m)
	}
	return BinnedMutations{loc.Server: tsm}, nil, nil
}

// InvalidateExtent implements TabletLocator; the root has no extent cache.
func (r *RootTabletLocator) InvalidateExtent(data.KeyExtent) {}

// InvalidateExtents implements TabletLocator.
func (r *RootTabletLocator) InvalidateExtents([]data.KeyExtent) {}

// InvalidateServer implements TabletLocator. The next resolution re-reads
// the registry.
func (r *RootTabletLocator) InvalidateServer(server string) {
	r.reader.InvalidateCache(server)
}

// InvalidateAll implements TabletLocator.
func (r *RootTabletLocator) InvalidateAll() {}
