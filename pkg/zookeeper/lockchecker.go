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
	"fmt"
	"sort"
	"strings"

	"github.com/tchaie/accumulo/pkg/data"
)

// lockPrefix is the name prefix of the sequential ephemeral nodes servers
// create under their path when they register.
const lockPrefix = "zlock#"

// LockChecker validates tablet server liveness against the lock registry.
// A server's session token is the hex session id of the ephemeral lock
// node it holds; the token changes whenever the server re-registers.
type LockChecker struct {
	cache        *Cache
	tserversRoot string
}

// NewLockChecker builds a checker for the given instance over the shared
// cache.
func NewLockChecker(cache *Cache, instanceID data.InstanceID) *LockChecker {
	return &LockChecker{cache: cache, tserversRoot: TServersPath(instanceID)}
}

// IsLockHeld reports whether the server still holds the lock minted as
// session.
func (lc *LockChecker) IsLockHeld(server, session string) bool {
	current, ok := lockSessionID(lc.cache, lc.tserversRoot+"/"+server)
	return ok && current == session
}

// InvalidateCache drops the cached registry state for the server; the next
// check re-reads it.
func (lc *LockChecker) InvalidateCache(server string) {
	lc.cache.Clear(lc.tserversRoot + "/" + server)
}

// lockSessionID resolves the session id of the lock currently held under
// path: the ephemeral owner of the lowest-sequenced lock node. Sequential
// node names carry a fixed-width sequence suffix, so the lexicographically
// smallest name holds the lock.
func lockSessionID(cache *Cache, path string) (string, bool) {
	children, err := cache.Children(path)
	if err != nil {
		return "", false
	}
	var locks []string
	for _, child := range children {
		if strings.HasPrefix(child, lockPrefix) {
			locks = append(locks, child)
		}
	}
	if len(locks) == 0 {
		return "", false
	}
	sort.Strings(locks)

	_, stat, err := cache.Get(path + "/" + locks[0])
	if err != nil || stat == nil {
		return "", false
	}
	return fmt.Sprintf("%x", uint64(stat.EphemeralOwner)), true
}
