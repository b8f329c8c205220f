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

package data

import "fmt"

// TabletLocation pairs a tablet with the address and lock session of the
// server currently hosting it.
type TabletLocation struct {
	Extent  KeyExtent
	Server  string
	Session string
}

func (tl TabletLocation) String() string {
	return fmt.Sprintf("%s@%s[%s]", tl.Extent, tl.Server, tl.Session)
}

// TabletLocations is the result of reading tablet entries from a metadata
// tablet: the tablets that had a live location, and the extents seen
// without one.
type TabletLocations struct {
	Locations    []TabletLocation
	Locationless []KeyExtent
}
