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
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/go-zookeeper/zk"
	"go.uber.org/zap"
)

// Conn is the subset of the ZooKeeper client the cache needs. *zk.Conn
// implements it.
type Conn interface {
	GetW(path string) ([]byte, *zk.Stat, <-chan zk.Event, error)
	ChildrenW(path string) ([]string, *zk.Stat, <-chan zk.Event, error)
	ExistsW(path string) (bool, *zk.Stat, <-chan zk.Event, error)
}

type dataEntry struct {
	data   []byte
	stat   *zk.Stat
	exists bool
}

type childrenEntry struct {
	children []string
	exists   bool
}

// Cache memoizes node data and child listings, invalidating entries when
// their watches fire. Many readers may use it concurrently; it is shared
// process-wide by the lock checker, the root reader and the client.
type Cache struct {
	conn   Conn
	logger *zap.Logger

	mu       sync.RWMutex
	data     map[string]dataEntry
	children map[string]childrenEntry
}

// NewCache builds a cache over the connection. A nil logger discards.
func NewCache(conn Conn, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		conn:     conn,
		logger:   logger,
		data:     make(map[string]dataEntry),
		children: make(map[string]childrenEntry),
	}
}

// Get returns the node's data, or nil data without error when the node
// does not exist. Results are cached until the node changes.
func (c *Cache) Get(path string) ([]byte, *zk.Stat, error) {
	c.mu.RLock()
	e, ok := c.data[path]
	c.mu.RUnlock()
	if ok {
		if !e.exists {
			return nil, nil, nil
		}
		return e.data, e.stat, nil
	}

	b, stat, ch, err := c.conn.GetW(path)
	entry := dataEntry{data: b, stat: stat, exists: true}
	if errors.Is(err, zk.ErrNoNode) {
		exists, _, existsCh, existsErr := c.conn.ExistsW(path)
		if existsErr != nil {
			return nil, nil, errors.Wrapf(existsErr, "watching %s", path)
		}
		if exists {
			// Created between the calls; read again.
			return c.Get(path)
		}
		entry = dataEntry{}
		ch = existsCh
	} else if err != nil {
		return nil, nil, errors.Wrapf(err, "reading %s", path)
	}

	c.mu.Lock()
	c.data[path] = entry
	c.mu.Unlock()
	go c.watchData(path, ch)

	if !entry.exists {
		return nil, nil, nil
	}
	return entry.data, entry.stat, nil
}

// Children returns the node's children, or nil without error when the node
// does not exist. Results are cached until the child set changes.
func (c *Cache) Children(path string) ([]string, error) {
	c.mu.RLock()
	e, ok := c.children[path]
	c.mu.RUnlock()
	if ok {
		if !e.exists {
			return nil, nil
		}
		return e.children, nil
	}

	kids, _, ch, err := c.conn.ChildrenW(path)
	entry := childrenEntry{children: kids, exists: true}
	if errors.Is(err, zk.ErrNoNode) {
		exists, _, existsCh, existsErr := c.conn.ExistsW(path)
		if existsErr != nil {
			return nil, errors.Wrapf(existsErr, "watching %s", path)
		}
		if exists {
			return c.Children(path)
		}
		entry = childrenEntry{}
		ch = existsCh
	} else if err != nil {
		return nil, errors.Wrapf(err, "listing %s", path)
	}

	c.mu.Lock()
	c.children[path] = entry
	c.mu.Unlock()
	go c.watchChildren(path, ch)

	if !entry.exists {
		return nil, nil
	}
	return entry.children, nil
}

func (c *Cache) watchData(path string, ch <-chan zk.Event) {
	ev := <-ch
	c.logger.Debug("node watch fired",
		zap.String("path", path), zap.String("event", ev.Type.String()))
	c.mu.Lock()
	delete(c.data, path)
	c.mu.Unlock()
}

func (c *Cache) watchChildren(path string, ch <-chan zk.Event) {
	ev := <-ch
	c.logger.Debug("children watch fired",
		zap.String("path", path), zap.String("event", ev.Type.String()))
	c.mu.Lock()
	delete(c.children, path)
	c.mu.Unlock()
}

// Clear drops the cached state for path and everything below it.
func (c *Cache) Clear(path string) {
	prefix := path + "/"
	c.mu.Lock()
	defer c.mu.Unlock()
	for p := range c.data {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(c.data, p)
		}
	}
	for p := range c.children {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(c.children, p)
		}
	}
}

// ClearAll drops every cached entry.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]dataEntry)
	c.children = make(map[string]childrenEntry)
}
