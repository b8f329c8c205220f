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
	"sync"

	"go.uber.org/zap"

	"github.com/tchaie/accumulo/pkg/data"
	"github.com/tchaie/accumulo/pkg/metadata"
)

// Registry is the process-wide table-keyed store of locators, created
// lazily. The parent graph is a fixed tree: user table locators resolve
// through the metadata table locator, which resolves through the root
// locator. The registry's lifecycle is bound to the owning client.
type Registry struct {
	obtainer    LocationObtainer
	lockChecker LockChecker
	rootReader  RootLocationReader
	logger      *zap.Logger
	metrics     *Metrics

	mu       sync.Mutex
	locators map[data.TableID]TabletLocator
}

// RegistryConfig carries the collaborators every locator shares.
type RegistryConfig struct {
	Obtainer    LocationObtainer
	LockChecker LockChecker
	RootReader  RootLocationReader

	// Logger and Metrics are optional.
	Logger  *zap.Logger
	Metrics *Metrics
}

// NewRegistry builds an empty registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		obtainer:    cfg.Obtainer,
		lockChecker: cfg.LockChecker,
		rootReader:  cfg.RootReader,
		logger:      logger,
		metrics:     cfg.Metrics,
		locators:    make(map[data.TableID]TabletLocator),
	}
}

// Locator returns the locator for tableID, creating it (and its parents)
// on first use.
func (r *Registry) Locator(tableID data.TableID) TabletLocator {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locatorLocked(tableID)
}

func (r *Registry) locatorLocked(tableID data.TableID) TabletLocator {
	if tl, ok := r.locators[tableID]; ok {
		return tl
	}

	var tl TabletLocator
	switch tableID {
	case metadata.RootTableID:
		tl = NewRootTabletLocator(r.rootReader, r.lockChecker, r.logger)
	case metadata.MetadataTableID:
		tl = NewCachingTabletLocator(
			tableID, r.locatorLocked(metadata.RootTableID), r.obtainer, r.lockChecker,
			WithLogger(r.logger), WithMetrics(r.metrics),
		)
	default:
		tl = NewCachingTabletLocator(
			tableID, r.locatorLocked(metadata.MetadataTableID), r.obtainer, r.lockChecker,
			WithLogger(r.logger), WithMetrics(r.metrics),
		)
	}
	r.locators[tableID] = tl
	return tl
}

// InvalidateServer invalidates the server on every locator. This is the
// entry point for server-death handling: a dead metadata server affects the
// routing of every table resolved through it, and individual locators never
// call back into their dependents (a dependent may be invalidating its
// parent from inside its own refresh path).
func (r *Registry) InvalidateServer(server string) {
	r.mu.Lock()
	locators := make([]TabletLocator, 0, len(r.locators))
	for _, tl := range r.locators {
		locators = append(locators, tl)
	}
	r.mu.Unlock()
	for _, tl := range locators {
		tl.InvalidateServer(server)
	}
}

// InvalidateAll clears every locator's cache.
func (r *Registry) InvalidateAll() {
	r.mu.Lock()
	locators := make([]TabletLocator, 0, len(r.locators))
	for _, tl := range r.locators {
		locators = append(locators, tl)
	}
	r.mu.Unlock()
	for _, tl := range locators {
		tl.InvalidateAll()
	}
}

// Close drops every locator. The registry stays usable; locators are
// re-created on demand.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locators = make(map[data.TableID]TabletLocator)
}
