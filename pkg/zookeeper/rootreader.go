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

package zookeeper

import (
	"context"
	"strings"

	"github.com/tchaie/accumulo/pkg/data"
	"github.com/tchaie/accumulo/pkg/metadata"
)

// RootReader resolves the root tablet's location from the registry. The
// location node holds an opaque blob of the form "SERVICE_TAG|host:port";
// only the host:port is needed here. The session comes from the hosting
// server's lock.
type RootReader struct {
	cache      *Cache
	instanceID data.InstanceID
}

// NewRootReader builds a reader for the given instance over the shared
// cache.
func NewRootReader(cache *Cache, instanceID data.InstanceID) *RootReader {
	return &RootReader{cache: cache, instanceID: instanceID}
}

// RootTabletLocation returns the root tablet's current location, or nil
// when the registry holds none or its server has no live lock.
func (r *RootReader) RootTabletLocation(context.Context) (*data.TabletLocation, error) {
	b, _, err := r.cache.Get(RootTabletLocationPath(r.instanceID))
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}

	blob := string(b)
	server := blob
	if i := strings.IndexByte(blob, '|'); i >= 0 {
		server = blob[i+1:]
	}
	if server == "" {
		return nil, nil
	}

	session, ok := lockSessionID(r.cache, ServerPath(r.instanceID, server))
	if !ok {
		return nil, nil
	}
	return &data.TabletLocation{
		Extent:  metadata.RootExtent,
		Server:  server,
		Session: session,
	}, nil
}

// InvalidateCache drops the cached root location and the server's registry
// state so the next resolution re-reads both.
func (r *RootReader) InvalidateCache(server string) {
	r.cache.Clear(RootTabletLocationPath(r.instanceID))
	if server != "" {
		r.cache.Clear(ServerPath(r.instanceID, server))
	}
}
