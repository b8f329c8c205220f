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

// Package data holds the value types shared by the client: table and
// instance identifiers, keys, ranges, mutations, and the tablet extents
// and locations that the locator caches.
package data

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// TableID identifies a table within an instance.
type TableID string

func (id TableID) String() string { return string(id) }

// InstanceID uniquely identifies an instance. Instances mint a UUID when
// they are initialized and publish it in the registry.
type InstanceID uuid.UUID

// ParseInstanceID parses the canonical UUID form of an instance id.
func ParseInstanceID(s string) (InstanceID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return InstanceID{}, errors.Wrapf(err, "invalid instance id %q", s)
	}
	return InstanceID(u), nil
}

func (id InstanceID) String() string { return uuid.UUID(id).String() }

// FollowingRow returns the immediate successor of row in the row ordering:
// row with a zero byte appended. The input is not modified.
func FollowingRow(row []byte) []byte {
	next := make([]byte, len(row)+1)
	copy(next, row)
	return next
}
