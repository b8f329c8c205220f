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

// ColumnUpdate is a single column write carried by a mutation.
type ColumnUpdate struct {
	Family    []byte
	Qualifier []byte
	Value     []byte
}

// Mutation collects column updates against a single row.
type Mutation struct {
	row     []byte
	updates []ColumnUpdate
}

// NewMutation starts a mutation for the given row. The row must not be
// empty.
func NewMutation(row []byte) *Mutation {
	return &Mutation{row: clone(row)}
}

// Put appends a column update.
func (m *Mutation) Put(family, qualifier, value []byte) {
	m.updates = append(m.updates, ColumnUpdate{
		Family:    clone(family),
		Qualifier: clone(qualifier),
		Value:     clone(value),
	})
}

func (m *Mutation) Row() []byte { return m.row }

func (m *Mutation) Updates() []ColumnUpdate { return m.updates }
