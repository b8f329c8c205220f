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

import "bytes"

// Key addresses a cell: row, column family, column qualifier. Only the
// parts the metadata reader needs are modeled.
type Key struct {
	Row       []byte
	Family    []byte
	Qualifier []byte
}

// Compare orders keys by row, then family, then qualifier.
func (k Key) Compare(o Key) int {
	if c := bytes.Compare(k.Row, o.Row); c != 0 {
		return c
	}
	if c := bytes.Compare(k.Family, o.Family); c != 0 {
		return c
	}
	return bytes.Compare(k.Qualifier, o.Qualifier)
}

// KeyValue is a single cell read from a table.
type KeyValue struct {
	Key   Key
	Value []byte
}
