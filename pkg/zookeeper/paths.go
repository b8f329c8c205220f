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

// Package zookeeper implements the registry-backed collaborators of the
// locator: a watched path cache, the tablet server lock checker, and the
// root tablet location reader.
package zookeeper

import "github.com/tchaie/accumulo/pkg/data"

// Registry layout. Per-instance state lives under the instance id; server
// liveness tokens are ephemeral lock nodes one level below the per-server
// path.
const (
	ZRoot          = "/accumulo"
	ZInstanceNames = ZRoot + "/instances/names"

	zTServers           = "/tservers"
	zRootTabletLocation = "/root_tablet/location"
)

// InstanceNamePath is the node mapping an instance name to its id.
func InstanceNamePath(name string) string {
	return ZInstanceNames + "/" + name
}

// InstancePath is the base path of an instance's state.
func InstancePath(id data.InstanceID) string {
	return ZRoot + "/" + id.String()
}

// TServersPath is the parent of the per-server lock paths.
func TServersPath(id data.InstanceID) string {
	return InstancePath(id) + zTServers
}

// ServerPath is the path under which a server publishes its lock.
func ServerPath(id data.InstanceID, server string) string {
	return TServersPath(id) + "/" + server
}

// RootTabletLocationPath is the well-known node holding the root tablet's
// location.
func RootTabletLocationPath(id data.InstanceID) string {
	return InstancePath(id) + zRootTabletLocation
}
